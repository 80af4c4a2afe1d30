package mlearn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepData builds a one-feature dataset where the target jumps at x = 10.
func stepData(high float64) ([][]float64, []float64) {
	X := make([][]float64, 20)
	y := make([]float64, 20)
	for i := 0; i < 20; i++ {
		X[i] = []float64{float64(i)}
		if i >= 10 {
			y[i] = high
		}
	}
	return X, y
}

func TestForestRegressor(t *testing.T) {
	X, y := stepData(100)

	forest, err := TrainForest(X, y, false, DefaultForestConfig(42))
	require.NoError(t, err)

	preds := forest.Predict([][]float64{{2}, {15}})
	assert.InDelta(t, 0, preds[0], 0.5)
	assert.InDelta(t, 100, preds[1], 0.5)

	assert.InDelta(t, 0, RMSE(forest.Predict(X), y), 1.0)
}

func TestForestClassifier(t *testing.T) {
	X, y := stepData(1)

	forest, err := TrainForest(X, y, true, DefaultForestConfig(42))
	require.NoError(t, err)

	preds := forest.Predict(X)
	assert.Equal(t, 1.0, Accuracy(preds, y), "separable data must classify perfectly")

	for _, p := range preds {
		assert.Contains(t, []float64{0, 1}, p)
	}
}

func TestForestDeterministicUnderFixedSeed(t *testing.T) {
	X, y := stepData(100)

	a, err := TrainForest(X, y, false, DefaultForestConfig(42))
	require.NoError(t, err)
	b, err := TrainForest(X, y, false, DefaultForestConfig(42))
	require.NoError(t, err)

	assert.Equal(t, a.Predict(X), b.Predict(X))
	assert.Equal(t, a.Importances, b.Importances)

	c, err := TrainForest(X, y, false, DefaultForestConfig(7))
	require.NoError(t, err)
	assert.NotEqual(t, a.Trees, c.Trees)
}

func TestForestImportances(t *testing.T) {
	// Feature 0 carries all signal; feature 1 is noise-free constant-ish.
	X := make([][]float64, 40)
	y := make([]float64, 40)
	for i := range X {
		X[i] = []float64{float64(i), float64(i % 2)}
		if i >= 20 {
			y[i] = 50
		}
	}

	forest, err := TrainForest(X, y, false, DefaultForestConfig(42))
	require.NoError(t, err)

	require.Len(t, forest.Importances, 2)
	total := 0.0
	for _, imp := range forest.Importances {
		assert.GreaterOrEqual(t, imp, 0.0)
		total += imp
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, forest.Importances[0], forest.Importances[1],
		"the informative feature must dominate")
}

func TestTrainForestErrors(t *testing.T) {
	_, err := TrainForest(nil, nil, false, DefaultForestConfig(1))
	assert.Error(t, err)

	_, err = TrainForest([][]float64{{1}}, []float64{1, 2}, false, DefaultForestConfig(1))
	assert.Error(t, err)
}

func TestBundleRoundTrip(t *testing.T) {
	X, y := stepData(1)

	forest, err := TrainForest(X, y, true, DefaultForestConfig(42))
	require.NoError(t, err)

	var scaler StandardScaler
	require.NoError(t, scaler.Fit(X, []string{"x"}, "test"))

	var enc LabelEncoder
	enc.Fit([]string{"North", "South"})

	bundle := &ModelBundle{
		Kind:     "high_value",
		Features: []string{"x"},
		Scaler:   &scaler,
		Encoders: map[string]*LabelEncoder{"region": &enc},
		Forest:   forest,
	}

	data, err := bundle.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalBundle(data)
	require.NoError(t, err)

	assert.Equal(t, bundle.Kind, restored.Kind)
	assert.Equal(t, bundle.Features, restored.Features)
	assert.Equal(t, forest.Predict(X), restored.Forest.Predict(X),
		"round-tripped model must reproduce predictions exactly")
	assert.Equal(t, scaler.Means, restored.Scaler.Means)

	codes, err := restored.Encoders["region"].Transform([]string{"South"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, codes)
}

func TestBundleSaveLoad(t *testing.T) {
	X, y := stepData(100)
	forest, err := TrainForest(X, y, false, DefaultForestConfig(42))
	require.NoError(t, err)

	bundle := &ModelBundle{Kind: "sales_forecast", Features: []string{"x"}, Forest: forest}
	path := t.TempDir() + "/models/sales_forecast.json"

	require.NoError(t, SaveBundle(bundle, path))
	restored, err := LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, forest.Predict(X), restored.Forest.Predict(X))
}
