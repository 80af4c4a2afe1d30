// Package rfm derives per-customer recency/frequency/monetary features from
// transaction data and scores customers on the classic 1-5 quantile scale.
// The feature rows feed the segmentation and classification stages; the
// quantile scores are an independent, clustering-free view of the same
// customers.
package rfm

import (
	"encoding/json"
	"math"
	"time"

	"insightlens/internal/dataset"
)

// CustomerFeatureRow is the per-customer feature vector. Recency is measured
// in whole days against the reference date, which is the maximum transaction
// timestamp across the whole dataset, not per customer.
//
// Frequency is at least 1 by construction (every customer has at least one
// transaction), which guards the derived ratios against division by zero.
// CategoryDiversity is at least 1 when a category column is bound and NaN
// otherwise, like Age; TotalPerCategory follows it.
type CustomerFeatureRow struct {
	CustomerID        string  `json:"customer_id"`
	Recency           float64 `json:"recency"`
	Frequency         int     `json:"frequency"`
	MonetaryTotal     float64 `json:"monetary_total"`
	MonetaryAvg       float64 `json:"monetary_avg"`
	CategoryDiversity float64 `json:"category_diversity"`
	Age               float64 `json:"age"`
	Region            string  `json:"region"`

	AvgDaysBetweenPurchases float64 `json:"avg_days_between_purchases"`
	TotalPerCategory        float64 `json:"total_per_category"`
}

// MarshalJSON renders unobserved optional features as null; encoding/json
// rejects raw NaN floats.
func (r CustomerFeatureRow) MarshalJSON() ([]byte, error) {
	opt := func(v float64) *float64 {
		if math.IsNaN(v) {
			return nil
		}
		return &v
	}
	return json.Marshal(struct {
		CustomerID              string   `json:"customer_id"`
		Recency                 float64  `json:"recency"`
		Frequency               int      `json:"frequency"`
		MonetaryTotal           float64  `json:"monetary_total"`
		MonetaryAvg             float64  `json:"monetary_avg"`
		CategoryDiversity       *float64 `json:"category_diversity"`
		Age                     *float64 `json:"age"`
		Region                  string   `json:"region"`
		AvgDaysBetweenPurchases float64  `json:"avg_days_between_purchases"`
		TotalPerCategory        *float64 `json:"total_per_category"`
	}{
		CustomerID:              r.CustomerID,
		Recency:                 r.Recency,
		Frequency:               r.Frequency,
		MonetaryTotal:           r.MonetaryTotal,
		MonetaryAvg:             r.MonetaryAvg,
		CategoryDiversity:       opt(r.CategoryDiversity),
		Age:                     opt(r.Age),
		Region:                  r.Region,
		AvgDaysBetweenPurchases: r.AvgDaysBetweenPurchases,
		TotalPerCategory:        opt(r.TotalPerCategory),
	})
}

// BuildFeatures derives one feature row per distinct customer, in
// first-appearance order of the customer key. The result is identical for
// identical input; there is no randomness anywhere in the derivation.
func BuildFeatures(txns *dataset.Transactions) []CustomerFeatureRow {
	reference := txns.MaxTime()

	index := make(map[string]int)
	var rows []CustomerFeatureRow
	lastSeen := make(map[string]time.Time)
	categories := make(map[string]map[string]struct{})

	for i, customer := range txns.Customers {
		pos, ok := index[customer]
		if !ok {
			pos = len(rows)
			index[customer] = pos
			row := CustomerFeatureRow{CustomerID: customer, Age: math.NaN()}
			if txns.HasAges() {
				row.Age = txns.Ages[i]
			}
			if txns.HasRegions() {
				row.Region = txns.Regions[i]
			}
			rows = append(rows, row)
			categories[customer] = make(map[string]struct{})
		}

		rows[pos].Frequency++
		rows[pos].MonetaryTotal += txns.Amounts[i]
		if ts := txns.Times[i]; ts.After(lastSeen[customer]) {
			lastSeen[customer] = ts
		}
		if txns.HasCategories() {
			categories[customer][txns.Categories[i]] = struct{}{}
		}
	}

	for i := range rows {
		row := &rows[i]
		row.MonetaryAvg = row.MonetaryTotal / float64(row.Frequency)

		row.Recency = math.Floor(reference.Sub(lastSeen[row.CustomerID]).Hours() / 24)

		if txns.HasCategories() {
			row.CategoryDiversity = float64(len(categories[row.CustomerID]))
			row.TotalPerCategory = row.MonetaryTotal / row.CategoryDiversity
		} else {
			row.CategoryDiversity = math.NaN()
			row.TotalPerCategory = math.NaN()
		}

		row.AvgDaysBetweenPurchases = row.Recency / float64(row.Frequency)
	}
	return rows
}

// ChurnRate is the share of customers with no transaction inside the
// trailing window (in days) relative to the latest observed transaction.
func ChurnRate(rows []CustomerFeatureRow, windowDays float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	churned := 0
	for _, row := range rows {
		if row.Recency > windowDays {
			churned++
		}
	}
	return float64(churned) / float64(len(rows))
}
