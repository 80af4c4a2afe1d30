package mlearn

import (
	"math"
	"math/rand"
	"sort"
)

// SplitIndices partitions row indices 0..n-1 into train and test sets using
// a seeded shuffle. The same seed always yields the same partition. Returned
// index slices are sorted ascending for stable downstream iteration.
func SplitIndices(n int, testFraction float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	nTest := int(math.Round(testFraction * float64(n)))
	if nTest > n {
		nTest = n
	}
	test = append(test, perm[:nTest]...)
	train = append(train, perm[nTest:]...)
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

// StratifiedSplitIndices partitions indices so each label class appears in
// train and test in proportion to its overall share. Labels are compared by
// value; the shuffle inside each class uses a seed derived from the class
// position so the partition is deterministic.
func StratifiedSplitIndices(labels []float64, testFraction float64, seed int64) (train, test []int) {
	// Group indices per class in first-seen class order.
	classOrder := []float64{}
	byClass := map[float64][]int{}
	for i, label := range labels {
		if _, ok := byClass[label]; !ok {
			classOrder = append(classOrder, label)
		}
		byClass[label] = append(byClass[label], i)
	}

	for c, label := range classOrder {
		indices := byClass[label]
		rng := rand.New(rand.NewSource(seed + int64(c)))
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		nTest := int(math.Round(testFraction * float64(len(indices))))
		test = append(test, indices[:nTest]...)
		train = append(train, indices[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

// Subset gathers the given rows of X.
func Subset(X [][]float64, indices []int) [][]float64 {
	out := make([][]float64, len(indices))
	for i, idx := range indices {
		out[i] = X[idx]
	}
	return out
}

// SubsetVec gathers the given entries of y.
func SubsetVec(y []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = y[idx]
	}
	return out
}
