// Package segment groups customers into behavioral clusters with k-means
// over standardized RFM features.
package segment

import (
	"math"

	apperrors "insightlens/internal/errors"
	"insightlens/internal/mlearn"
	"insightlens/internal/rfm"
)

// Config controls the clustering run. Clusters must be at least 1.
type Config struct {
	Clusters int
	Seed     int64
}

// DefaultConfig matches the pipeline defaults.
func DefaultConfig(seed int64) Config {
	return Config{Clusters: 5, Seed: seed}
}

// ClusterProfile describes one cluster by its size and the mean of every
// feature in the original, unscaled units.
type ClusterProfile struct {
	Cluster int                `json:"cluster"`
	Size    int                `json:"size"`
	Means   map[string]float64 `json:"means"`
}

// Result is the full segmentation output. Assignments aligns index-for-index
// with the input feature rows.
type Result struct {
	Features    []string         `json:"features"`
	Assignments []int            `json:"assignments"`
	Profiles    []ClusterProfile `json:"profiles"`
	Inertia     float64          `json:"inertia"`
}

// Segment clusters the customer feature rows. Features are imputed (missing
// age becomes 0), standardized, then clustered; the reported profiles use
// the raw feature values so they stay interpretable.
//
// The age and category diversity features participate only when at least
// one row carries an observed value, so datasets without an age or category
// column do not feed a constant column into the scaler.
func Segment(rows []rfm.CustomerFeatureRow, cfg Config) (*Result, error) {
	if len(rows) < cfg.Clusters {
		return nil, &apperrors.InsufficientDataError{
			Operation: "customer segmentation",
			Need:      cfg.Clusters,
			Got:       len(rows),
			Detail:    "fewer customers than requested clusters",
		}
	}

	features, X := featureMatrix(rows)

	scaled := make([][]float64, len(X))
	for i, row := range X {
		scaled[i] = append([]float64(nil), row...)
	}
	mlearn.ImputeZero(scaled)

	var scaler mlearn.StandardScaler
	if err := scaler.Fit(scaled, features, "customer_segments"); err != nil {
		return nil, err
	}
	scaled = scaler.Transform(scaled)

	km, err := mlearn.KMeans(scaled, cfg.Clusters, cfg.Seed)
	if err != nil {
		return nil, err
	}

	return &Result{
		Features:    features,
		Assignments: km.Assignments,
		Profiles:    profiles(features, X, km.Assignments, cfg.Clusters),
		Inertia:     km.Inertia,
	}, nil
}

func featureMatrix(rows []rfm.CustomerFeatureRow) ([]string, [][]float64) {
	hasAge, hasDiversity := false, false
	for _, row := range rows {
		hasAge = hasAge || !math.IsNaN(row.Age)
		hasDiversity = hasDiversity || !math.IsNaN(row.CategoryDiversity)
	}

	features := []string{"recency", "frequency", "monetary_total", "monetary_avg"}
	if hasDiversity {
		features = append(features, "category_diversity")
	}
	if hasAge {
		features = append(features, "age")
	}
	features = append(features, "avg_days_between_purchases")

	X := make([][]float64, len(rows))
	for i, row := range rows {
		vec := []float64{
			row.Recency,
			float64(row.Frequency),
			row.MonetaryTotal,
			row.MonetaryAvg,
		}
		if hasDiversity {
			vec = append(vec, row.CategoryDiversity)
		}
		if hasAge {
			vec = append(vec, row.Age)
		}
		vec = append(vec, row.AvgDaysBetweenPurchases)
		X[i] = vec
	}
	return features, X
}

// profiles computes per-cluster sizes and raw-unit feature means. Missing
// ages are skipped from the mean rather than imputed.
func profiles(features []string, X [][]float64, assignments []int, k int) []ClusterProfile {
	out := make([]ClusterProfile, k)
	sums := make([][]float64, k)
	counts := make([][]int, k)
	for c := 0; c < k; c++ {
		out[c] = ClusterProfile{Cluster: c, Means: make(map[string]float64, len(features))}
		sums[c] = make([]float64, len(features))
		counts[c] = make([]int, len(features))
	}

	for i, row := range X {
		c := assignments[i]
		out[c].Size++
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			sums[c][j] += v
			counts[c][j]++
		}
	}

	for c := 0; c < k; c++ {
		for j, name := range features {
			if counts[c][j] > 0 {
				out[c].Means[name] = sums[c][j] / float64(counts[c][j])
			}
		}
	}
	return out
}

// TopClusterByMonetary returns the cluster id with the highest mean
// monetary_total, or -1 when there are no non-empty clusters.
func TopClusterByMonetary(result *Result) int {
	best, bestValue := -1, math.Inf(-1)
	for _, p := range result.Profiles {
		if p.Size == 0 {
			continue
		}
		if v := p.Means["monetary_total"]; v > bestValue {
			best, bestValue = p.Cluster, v
		}
	}
	return best
}
