package mlearn

import (
	"fmt"
	"math"

	apperrors "insightlens/internal/errors"
)

// StandardScaler standardizes features to zero mean and unit variance.
// Statistics are fit on the training split only and then applied to both
// splits, so no test information leaks into training.
type StandardScaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// Fit learns per-feature means and standard deviations from X. A constant
// feature makes scaling singular and is reported as a TrainingError naming
// the feature.
func (s *StandardScaler) Fit(X [][]float64, featureNames []string, model string) error {
	if len(X) == 0 {
		return &apperrors.TrainingError{Model: model, Reason: "no rows to fit scaler"}
	}
	nFeatures := len(X[0])
	s.Means = make([]float64, nFeatures)
	s.Stds = make([]float64, nFeatures)

	column := make([]float64, len(X))
	for j := 0; j < nFeatures; j++ {
		for i := range X {
			column[i] = X[i][j]
		}
		s.Means[j] = Mean(column)
		s.Stds[j] = PopulationStdDev(column)
		if s.Stds[j] == 0 {
			name := fmt.Sprintf("feature_%d", j)
			if j < len(featureNames) {
				name = featureNames[j]
			}
			return &apperrors.TrainingError{Model: model, Feature: name, Reason: "constant feature, scaling is singular"}
		}
	}
	return nil
}

// Transform returns a standardized copy of X using the fitted statistics.
func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Means[j]) / s.Stds[j]
		}
		out[i] = scaled
	}
	return out
}

// FitTransform fits on X and returns its standardized copy.
func (s *StandardScaler) FitTransform(X [][]float64, featureNames []string, model string) ([][]float64, error) {
	if err := s.Fit(X, featureNames, model); err != nil {
		return nil, err
	}
	return s.Transform(X), nil
}

// ImputeZero replaces NaN cells with 0 in place and returns X. Missing
// numeric features default to 0 prior to scaling.
func ImputeZero(X [][]float64) [][]float64 {
	for _, row := range X {
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = 0
			}
		}
	}
	return X
}
