package mlearn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "insightlens/internal/errors"
)

func TestKMeansSeparatesObviousClusters(t *testing.T) {
	X := [][]float64{
		{0, 0}, {0.5, 0.2}, {0.1, 0.4},
		{10, 10}, {10.5, 9.8}, {9.9, 10.2},
	}

	result, err := KMeans(X, 2, 42)
	require.NoError(t, err)
	require.Len(t, result.Assignments, 6)

	low := result.Assignments[0]
	high := result.Assignments[3]
	assert.NotEqual(t, low, high)
	assert.Equal(t, []int{low, low, low, high, high, high}, result.Assignments)
}

func TestKMeansSingleCluster(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}, {5, 6}}

	result, err := KMeans(X, 1, 42)
	require.NoError(t, err)

	for _, a := range result.Assignments {
		assert.Equal(t, 0, a)
	}
	// The lone centroid is the feature-wise mean.
	assert.InDelta(t, 3, result.Centroids[0][0], 1e-9)
	assert.InDelta(t, 4, result.Centroids[0][1], 1e-9)
}

func TestKMeansDeterministic(t *testing.T) {
	X := [][]float64{{1}, {2}, {8}, {9}, {20}, {21}}

	a, err := KMeans(X, 3, 42)
	require.NoError(t, err)
	b, err := KMeans(X, 3, 42)
	require.NoError(t, err)

	assert.Equal(t, a.Assignments, b.Assignments)
	assert.Equal(t, a.Centroids, b.Centroids)
}

func TestKMeansInsufficientData(t *testing.T) {
	_, err := KMeans([][]float64{{1}, {2}}, 5, 42)
	assert.True(t, apperrors.IsInsufficientData(err))

	_, err = KMeans([][]float64{{1}}, 0, 42)
	assert.True(t, apperrors.IsInsufficientData(err))
}
