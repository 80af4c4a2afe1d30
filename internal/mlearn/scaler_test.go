package mlearn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "insightlens/internal/errors"
)

func TestStandardScaler(t *testing.T) {
	X := [][]float64{{1, 100}, {2, 200}, {3, 300}}

	var scaler StandardScaler
	scaled, err := scaler.FitTransform(X, []string{"a", "b"}, "test_model")
	require.NoError(t, err)

	for j := 0; j < 2; j++ {
		col := []float64{scaled[0][j], scaled[1][j], scaled[2][j]}
		assert.InDelta(t, 0, Mean(col), 1e-9)
		assert.InDelta(t, 1, PopulationStdDev(col), 1e-9)
	}

	// Transform must reuse fitted statistics, not refit.
	other := scaler.Transform([][]float64{{2, 200}})
	assert.InDelta(t, 0, other[0][0], 1e-9)
	assert.InDelta(t, 0, other[0][1], 1e-9)
}

func TestStandardScalerConstantFeature(t *testing.T) {
	X := [][]float64{{1, 7}, {2, 7}, {3, 7}}

	var scaler StandardScaler
	err := scaler.Fit(X, []string{"amount", "is_weekend"}, "sales_forecast")
	require.Error(t, err)
	assert.True(t, apperrors.IsTraining(err))
	assert.Contains(t, err.Error(), "is_weekend")
	assert.Contains(t, err.Error(), "sales_forecast")
}

func TestImputeZero(t *testing.T) {
	X := [][]float64{{1, math.NaN()}, {math.NaN(), 2}}
	ImputeZero(X)
	assert.Equal(t, [][]float64{{1, 0}, {0, 2}}, X)
}
