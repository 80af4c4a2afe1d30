package mlearn

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is one node of a CART tree, stored in a flat slice so trees
// serialize to JSON without recursion. Leaf nodes have Left == -1; Value is
// the mean target for regression and the positive-class share for
// classification.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

type treeConfig struct {
	maxDepth       int
	minLeafSize    int
	maxFeatures    int
	classification bool
}

type treeBuilder struct {
	X          [][]float64
	y          []float64
	cfg        treeConfig
	rng        *rand.Rand
	nodes      []TreeNode
	importance []float64
	totalRows  int
}

// buildTree grows a CART tree on the given bootstrap indices and returns
// its flat node slice. Split quality is variance reduction for regression
// and Gini impurity decrease for classification; each accepted split adds
// its weighted impurity decrease to the importance accumulator.
func buildTree(X [][]float64, y []float64, indices []int, cfg treeConfig, rng *rand.Rand, importance []float64) []TreeNode {
	b := &treeBuilder{
		X:          X,
		y:          y,
		cfg:        cfg,
		rng:        rng,
		importance: importance,
		totalRows:  len(indices),
	}
	b.grow(indices, 0)
	return b.nodes
}

func (b *treeBuilder) grow(indices []int, depth int) int {
	nodeIdx := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Left: -1, Right: -1, Value: b.leafValue(indices)})

	if depth >= b.cfg.maxDepth || len(indices) < 2*b.cfg.minLeafSize || b.isPure(indices) {
		return nodeIdx
	}

	feature, threshold, gain, ok := b.bestSplit(indices)
	if !ok {
		return nodeIdx
	}

	var left, right []int
	for _, i := range indices {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.cfg.minLeafSize || len(right) < b.cfg.minLeafSize {
		return nodeIdx
	}

	b.importance[feature] += gain * float64(len(indices)) / float64(b.totalRows)

	b.nodes[nodeIdx].Feature = feature
	b.nodes[nodeIdx].Threshold = threshold
	leftIdx := b.grow(left, depth+1)
	rightIdx := b.grow(right, depth+1)
	b.nodes[nodeIdx].Left = leftIdx
	b.nodes[nodeIdx].Right = rightIdx
	return nodeIdx
}

func (b *treeBuilder) leafValue(indices []int) float64 {
	sum := 0.0
	for _, i := range indices {
		sum += b.y[i]
	}
	return sum / float64(len(indices))
}

func (b *treeBuilder) isPure(indices []int) bool {
	first := b.y[indices[0]]
	for _, i := range indices[1:] {
		if b.y[i] != first {
			return false
		}
	}
	return true
}

// impurity is Gini for classification (binary target in {0,1}) and variance
// for regression.
func (b *treeBuilder) impurity(sum, sumSq float64, n int) float64 {
	if n == 0 {
		return 0
	}
	fn := float64(n)
	if b.cfg.classification {
		p := sum / fn
		return 2 * p * (1 - p)
	}
	mean := sum / fn
	return sumSq/fn - mean*mean
}

func (b *treeBuilder) bestSplit(indices []int) (feature int, threshold float64, gain float64, ok bool) {
	features := b.sampleFeatures()

	var totalSum, totalSumSq float64
	for _, i := range indices {
		totalSum += b.y[i]
		totalSumSq += b.y[i] * b.y[i]
	}
	parentImpurity := b.impurity(totalSum, totalSumSq, len(indices))
	if parentImpurity == 0 {
		return 0, 0, 0, false
	}

	type pair struct{ x, y float64 }
	bestGain := 0.0

	values := make([]pair, len(indices))
	for _, f := range features {
		for k, i := range indices {
			values[k] = pair{b.X[i][f], b.y[i]}
		}
		sort.Slice(values, func(i, j int) bool { return values[i].x < values[j].x })

		leftSum, leftSumSq := 0.0, 0.0
		for k := 0; k < len(values)-1; k++ {
			leftSum += values[k].y
			leftSumSq += values[k].y * values[k].y
			if values[k].x == values[k+1].x {
				continue
			}

			nLeft := k + 1
			nRight := len(values) - nLeft
			leftImp := b.impurity(leftSum, leftSumSq, nLeft)
			rightImp := b.impurity(totalSum-leftSum, totalSumSq-leftSumSq, nRight)
			weighted := (float64(nLeft)*leftImp + float64(nRight)*rightImp) / float64(len(values))

			g := parentImpurity - weighted
			if g > bestGain {
				bestGain = g
				feature = f
				threshold = (values[k].x + values[k+1].x) / 2
				ok = true
			}
		}
	}
	return feature, threshold, bestGain, ok
}

// sampleFeatures picks the random feature subset considered at each split.
func (b *treeBuilder) sampleFeatures() []int {
	nFeatures := len(b.X[0])
	if b.cfg.maxFeatures >= nFeatures {
		features := make([]int, nFeatures)
		for i := range features {
			features[i] = i
		}
		return features
	}
	return b.rng.Perm(nFeatures)[:b.cfg.maxFeatures]
}

// predictTree walks a flat tree for one row.
func predictTree(nodes []TreeNode, row []float64) float64 {
	idx := 0
	for {
		node := nodes[idx]
		if node.Left == -1 {
			return node.Value
		}
		if row[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// defaultMaxFeatures mirrors the usual ensemble heuristics: sqrt of the
// feature count for classification, all features for regression.
func defaultMaxFeatures(nFeatures int, classification bool) int {
	if classification {
		m := int(math.Sqrt(float64(nFeatures)))
		if m < 1 {
			m = 1
		}
		return m
	}
	return nFeatures
}
