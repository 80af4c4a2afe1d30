package rfm

import (
	"fmt"
	"sort"

	apperrors "insightlens/internal/errors"
	"insightlens/internal/mlearn"
)

// minScoredCustomers is the smallest customer count for which quintile
// boundaries are still meaningful.
const minScoredCustomers = 5

// Score carries the 1-5 quintile scores for one customer. Higher is better
// on every axis: R is inverted so that the most recent buyers score 5.
// Composite is the concatenated "RFM" string, e.g. "543".
type Score struct {
	CustomerID string `json:"customer_id"`
	R          int    `json:"r_score"`
	F          int    `json:"f_score"`
	M          int    `json:"m_score"`
	Composite  string `json:"rfm_score"`
}

// ScoreCustomers assigns quintile RFM scores to every feature row, keeping
// the input order. Recency is bucketed on its raw values and inverted.
// Frequency values are heavily tied in retail data, so they are replaced by
// their stable ranks (ties broken by input position) before bucketing, which
// spreads equal counts across buckets instead of collapsing them into one.
// Monetary is bucketed on raw totals.
func ScoreCustomers(rows []CustomerFeatureRow) ([]Score, error) {
	if len(rows) < minScoredCustomers {
		return nil, &apperrors.InsufficientDataError{
			Operation: "rfm scoring",
			Need:      minScoredCustomers,
			Got:       len(rows),
			Detail:    "too few distinct customers for quintile boundaries",
		}
	}

	recency := make([]float64, len(rows))
	frequency := make([]float64, len(rows))
	monetary := make([]float64, len(rows))
	for i, row := range rows {
		recency[i] = row.Recency
		frequency[i] = float64(row.Frequency)
		monetary[i] = row.MonetaryTotal
	}

	rBuckets := quintileBuckets(recency)
	fBuckets := quintileBuckets(stableRanks(frequency))
	mBuckets := quintileBuckets(monetary)

	scores := make([]Score, len(rows))
	for i, row := range rows {
		s := Score{
			CustomerID: row.CustomerID,
			R:          5 - rBuckets[i], // low recency is the best score
			F:          fBuckets[i] + 1,
			M:          mBuckets[i] + 1,
		}
		s.Composite = fmt.Sprintf("%d%d%d", s.R, s.F, s.M)
		scores[i] = s
	}
	return scores, nil
}

// quintileBuckets maps each value to its quintile index 0..4 using
// interpolated 20/40/60/80th percentile boundaries.
func quintileBuckets(values []float64) []int {
	bounds := [4]float64{
		mlearn.Quantile(values, 0.2),
		mlearn.Quantile(values, 0.4),
		mlearn.Quantile(values, 0.6),
		mlearn.Quantile(values, 0.8),
	}

	buckets := make([]int, len(values))
	for i, v := range values {
		bucket := 4
		for b, bound := range bounds {
			if v <= bound {
				bucket = b
				break
			}
		}
		buckets[i] = bucket
	}
	return buckets
}

// stableRanks replaces each value with its 1-based rank, breaking ties by
// input position so equal values receive distinct consecutive ranks.
func stableRanks(values []float64) []float64 {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, len(values))
	for rank, idx := range order {
		ranks[idx] = float64(rank + 1)
	}
	return ranks
}
