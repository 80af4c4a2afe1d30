package mlearn

import (
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	apperrors "insightlens/internal/errors"
)

// ForestConfig configures random-forest training.
type ForestConfig struct {
	NumTrees    int   `json:"num_trees"`
	MaxDepth    int   `json:"max_depth"`
	MinLeafSize int   `json:"min_leaf_size"`
	MaxFeatures int   `json:"max_features"` // 0 selects the default heuristic
	Seed        int64 `json:"seed"`
}

// DefaultForestConfig mirrors the reference pipeline: 100 trees, seed 42.
func DefaultForestConfig(seed int64) ForestConfig {
	return ForestConfig{
		NumTrees:    100,
		MaxDepth:    12,
		MinLeafSize: 1,
		Seed:        seed,
	}
}

// Forest is a trained random-forest model, usable as a regressor or a
// binary classifier depending on how it was trained. The struct is fully
// JSON-serializable for model bundles.
type Forest struct {
	Trees          [][]TreeNode `json:"trees"`
	NumFeatures    int          `json:"num_features"`
	Classification bool         `json:"classification"`
	Importances    []float64    `json:"importances"`
	Config         ForestConfig `json:"config"`
}

// TrainForest fits a random forest. Trees train in parallel across cores,
// but each tree derives its own seed from the configured one, so the fitted
// model is identical run to run. Binary classification expects labels in
// {0, 1}.
func TrainForest(X [][]float64, y []float64, classification bool, cfg ForestConfig) (*Forest, error) {
	model := "forest_regressor"
	if classification {
		model = "forest_classifier"
	}
	if len(X) == 0 || len(X[0]) == 0 {
		return nil, &apperrors.TrainingError{Model: model, Reason: "empty training matrix"}
	}
	if len(X) != len(y) {
		return nil, &apperrors.TrainingError{Model: model, Reason: "feature and target lengths differ"}
	}
	if cfg.NumTrees <= 0 {
		cfg.NumTrees = 100
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 12
	}
	if cfg.MinLeafSize <= 0 {
		cfg.MinLeafSize = 1
	}

	nFeatures := len(X[0])
	maxFeatures := cfg.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = defaultMaxFeatures(nFeatures, classification)
	}
	treeCfg := treeConfig{
		maxDepth:       cfg.MaxDepth,
		minLeafSize:    cfg.MinLeafSize,
		maxFeatures:    maxFeatures,
		classification: classification,
	}

	forest := &Forest{
		Trees:          make([][]TreeNode, cfg.NumTrees),
		NumFeatures:    nFeatures,
		Classification: classification,
		Config:         cfg,
	}

	importances := make([][]float64, cfg.NumTrees)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for t := 0; t < cfg.NumTrees; t++ {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(t)))

			// Bootstrap sample with replacement.
			indices := make([]int, len(X))
			for i := range indices {
				indices[i] = rng.Intn(len(X))
			}

			imp := make([]float64, nFeatures)
			forest.Trees[t] = buildTree(X, y, indices, treeCfg, rng, imp)
			importances[t] = imp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Average per-tree importances and normalize to sum 1 when nonzero.
	forest.Importances = make([]float64, nFeatures)
	total := 0.0
	for _, imp := range importances {
		for j, v := range imp {
			forest.Importances[j] += v
			total += v
		}
	}
	if total > 0 {
		for j := range forest.Importances {
			forest.Importances[j] /= total
		}
	}

	return forest, nil
}

// Predict returns per-row predictions: the mean of tree outputs for
// regression, and the 0/1 label from the averaged positive-class share for
// classification.
func (f *Forest) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		sum := 0.0
		for _, tree := range f.Trees {
			sum += predictTree(tree, row)
		}
		avg := sum / float64(len(f.Trees))
		if f.Classification {
			if avg >= 0.5 {
				out[i] = 1
			} else {
				out[i] = 0
			}
		} else {
			out[i] = avg
		}
	}
	return out
}

// PredictProba returns the averaged positive-class share per row. Only
// meaningful for classification forests.
func (f *Forest) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		sum := 0.0
		for _, tree := range f.Trees {
			sum += predictTree(tree, row)
		}
		out[i] = sum / float64(len(f.Trees))
	}
	return out
}
