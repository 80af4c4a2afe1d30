package mlearn

import (
	"math"
	"math/rand"

	apperrors "insightlens/internal/errors"
)

// KMeansResult holds a fitted k-means partition.
type KMeansResult struct {
	Assignments []int       `json:"assignments"`
	Centroids   [][]float64 `json:"centroids"`
	Inertia     float64     `json:"inertia"`
	Iterations  int         `json:"iterations"`
}

const (
	kmeansMaxIterations = 100
	kmeansRestarts      = 10
)

// KMeans partitions the rows of X into k clusters with Lloyd iterations:
// assign each point to the nearest centroid by Euclidean distance, recompute
// centroids as assigned-point means, stop on stable assignments or the
// iteration cap. It restarts from several seeded initializations derived
// from seed and keeps the lowest-inertia run, so results are reproducible.
func KMeans(X [][]float64, k int, seed int64) (*KMeansResult, error) {
	if k < 1 {
		return nil, apperrors.NewInsufficientData("clustering", 1, k)
	}
	if len(X) < k {
		return nil, apperrors.NewInsufficientData("clustering", k, len(X))
	}

	var best *KMeansResult
	for restart := 0; restart < kmeansRestarts; restart++ {
		result := kmeansOnce(X, k, seed+int64(restart))
		if best == nil || result.Inertia < best.Inertia {
			best = result
		}
	}
	return best, nil
}

func kmeansOnce(X [][]float64, k int, seed int64) *KMeansResult {
	rng := rand.New(rand.NewSource(seed))
	nFeatures := len(X[0])

	// Initialize centroids from k distinct rows.
	centroids := make([][]float64, k)
	for i, idx := range rng.Perm(len(X))[:k] {
		centroids[i] = append([]float64(nil), X[idx]...)
	}

	assignments := make([]int, len(X))
	iterations := 0
	for ; iterations < kmeansMaxIterations; iterations++ {
		changed := false
		for i, row := range X {
			nearest := nearestCentroid(row, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed = true
			}
		}
		if !changed && iterations > 0 {
			break
		}

		// Recompute centroids; an emptied cluster keeps its previous one.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, nFeatures)
		}
		for i, row := range X {
			c := assignments[i]
			counts[c]++
			for j, v := range row {
				sums[c][j] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	inertia := 0.0
	for i, row := range X {
		inertia += squaredDistance(row, centroids[assignments[i]])
	}

	return &KMeansResult{
		Assignments: assignments,
		Centroids:   centroids,
		Inertia:     inertia,
		Iterations:  iterations,
	}
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(row, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
