package forecast

import (
	"insightlens/internal/dataset"
	apperrors "insightlens/internal/errors"
	"insightlens/internal/mlearn"
)

// minTrainingRows is the smallest feature-row count that still leaves a
// usable train/test partition after lag rows are dropped.
const minTrainingRows = 40

// ModelKind identifies the persisted bundle.
const ModelKind = "sales_forecast"

// Config controls training. TestFraction defaults to 0.2 and Seed to 42 at
// the pipeline layer; zero values here are taken literally.
//
// Chronological selects a time-ordered split with the most recent rows held
// out for testing. The default random split deliberately ignores time order
// to stay comparable with historical metric runs, even though it leaks
// near-future rows into training.
type Config struct {
	Seed          int64
	TestFraction  float64
	Chronological bool
	Forest        mlearn.ForestConfig
}

// DefaultConfig returns the standard training setup for the given seed.
func DefaultConfig(seed int64) Config {
	return Config{
		Seed:         seed,
		TestFraction: 0.2,
		Forest:       mlearn.DefaultForestConfig(seed),
	}
}

// Result bundles the fitted model with its held-out evaluation.
type Result struct {
	Bundle      *mlearn.ModelBundle
	RMSE        float64
	Importances map[string]float64
	Features    []string
	TrainRows   int
	TestRows    int
}

// Train derives features from the transaction series, splits them, fits a
// tree-ensemble regressor on the training split, and evaluates on the held
// out split. Identical input and seed produce identical results.
func Train(txns *dataset.Transactions, cfg Config) (*Result, error) {
	fs := deriveFeatures(txns)
	if len(fs.X) < minTrainingRows {
		return nil, &apperrors.InsufficientDataError{
			Operation: "sales forecasting",
			Need:      minTrainingRows,
			Got:       len(fs.X),
			Detail:    "too few rows survive lag feature derivation",
		}
	}

	var trainIdx, testIdx []int
	if cfg.Chronological {
		trainIdx, testIdx = chronologicalSplit(len(fs.X), cfg.TestFraction)
	} else {
		trainIdx, testIdx = mlearn.SplitIndices(len(fs.X), cfg.TestFraction, cfg.Seed)
	}

	XTrain := mlearn.Subset(fs.X, trainIdx)
	XTest := mlearn.Subset(fs.X, testIdx)
	yTrain := mlearn.SubsetVec(fs.Y, trainIdx)
	yTest := mlearn.SubsetVec(fs.Y, testIdx)

	var scaler mlearn.StandardScaler
	if err := scaler.Fit(XTrain, fs.Names, ModelKind); err != nil {
		return nil, err
	}
	XTrain = scaler.Transform(XTrain)
	XTest = scaler.Transform(XTest)

	forest, err := mlearn.TrainForest(XTrain, yTrain, false, cfg.Forest)
	if err != nil {
		return nil, err
	}

	importances := make(map[string]float64, len(fs.Names))
	for j, name := range fs.Names {
		importances[name] = forest.Importances[j]
	}

	return &Result{
		Bundle: &mlearn.ModelBundle{
			Kind:     ModelKind,
			Features: fs.Names,
			Scaler:   &scaler,
			Encoders: fs.Encoders,
			Forest:   forest,
		},
		RMSE:        mlearn.RMSE(forest.Predict(XTest), yTest),
		Importances: importances,
		Features:    fs.Names,
		TrainRows:   len(trainIdx),
		TestRows:    len(testIdx),
	}, nil
}

// chronologicalSplit holds out the most recent testFraction of rows. Rows
// are already in timestamp order after feature derivation.
func chronologicalSplit(n int, testFraction float64) (train, test []int) {
	nTest := int(float64(n) * testFraction)
	if nTest < 1 {
		nTest = 1
	}
	cut := n - nTest
	for i := 0; i < n; i++ {
		if i < cut {
			train = append(train, i)
		} else {
			test = append(test, i)
		}
	}
	return train, test
}
