package rfm

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightlens/internal/dataset"
	apperrors "insightlens/internal/errors"
)

func day(offset int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestBuildFeatures(t *testing.T) {
	txns := &dataset.Transactions{
		Customers:  []string{"C2", "C1", "C2", "C3", "C2"},
		Times:      []time.Time{day(0), day(5), day(10), day(20), day(2)},
		Amounts:    []float64{10, 40, 30, 25, 20},
		Categories: []string{"Books", "Books", "Toys", "Books", "Toys"},
		Regions:    []string{"North", "South", "North", "East", "North"},
		Ages:       []float64{30, 45, 30, 52, 30},
	}

	rows := BuildFeatures(txns)
	require.Len(t, rows, 3)

	// First-appearance order of the customer key.
	assert.Equal(t, "C2", rows[0].CustomerID)
	assert.Equal(t, "C1", rows[1].CustomerID)
	assert.Equal(t, "C3", rows[2].CustomerID)

	c2 := rows[0]
	assert.Equal(t, 3, c2.Frequency)
	assert.Equal(t, 60.0, c2.MonetaryTotal)
	assert.InDelta(t, 20.0, c2.MonetaryAvg, 1e-9)
	assert.Equal(t, 2.0, c2.CategoryDiversity)
	assert.Equal(t, 30.0, c2.Age)
	assert.Equal(t, "North", c2.Region)
	// Reference date is the global maximum (day 20); C2 last bought on day 10.
	assert.Equal(t, 10.0, c2.Recency)
	assert.InDelta(t, 10.0/3.0, c2.AvgDaysBetweenPurchases, 1e-9)
	assert.InDelta(t, 30.0, c2.TotalPerCategory, 1e-9)

	c3 := rows[2]
	assert.Equal(t, 0.0, c3.Recency, "the most recent buyer has zero recency")
	assert.Equal(t, 1, c3.Frequency)
	assert.Equal(t, 25.0, c3.TotalPerCategory)
}

func TestBuildFeaturesWithoutOptionalColumns(t *testing.T) {
	txns := &dataset.Transactions{
		Customers: []string{"C1", "C1"},
		Times:     []time.Time{day(0), day(3)},
		Amounts:   []float64{10, 20},
	}

	rows := BuildFeatures(txns)
	require.Len(t, rows, 1)

	assert.True(t, math.IsNaN(rows[0].CategoryDiversity), "diversity must be NaN without a category column")
	assert.True(t, math.IsNaN(rows[0].TotalPerCategory))
	assert.Equal(t, "", rows[0].Region)
	assert.True(t, math.IsNaN(rows[0].Age), "age must be NaN when absent")
}

func TestCustomerFeatureRowJSON(t *testing.T) {
	row := CustomerFeatureRow{
		CustomerID:        "C1",
		Recency:           4,
		Frequency:         2,
		MonetaryTotal:     30,
		CategoryDiversity: math.NaN(),
		Age:               math.NaN(),
		TotalPerCategory:  math.NaN(),
	}

	data, err := json.Marshal(row)
	require.NoError(t, err, "NaN optional features must not break encoding")
	assert.Contains(t, string(data), `"category_diversity":null`)
	assert.Contains(t, string(data), `"age":null`)
	assert.Contains(t, string(data), `"recency":4`)
}

func TestChurnRate(t *testing.T) {
	rows := []CustomerFeatureRow{
		{Recency: 10}, {Recency: 95}, {Recency: 200}, {Recency: 90},
	}
	assert.InDelta(t, 0.5, ChurnRate(rows, 90), 1e-9)
	assert.Equal(t, 0.0, ChurnRate(nil, 90))
}

func TestScoreCustomersQuintiles(t *testing.T) {
	// Ten distinct recency values 10..100: exactly two customers per bucket.
	rows := make([]CustomerFeatureRow, 10)
	for i := range rows {
		rows[i] = CustomerFeatureRow{
			CustomerID:    fmt.Sprintf("C%d", i),
			Recency:       float64((i + 1) * 10),
			Frequency:     i + 1,
			MonetaryTotal: float64((i + 1) * 100),
		}
	}

	scores, err := ScoreCustomers(rows)
	require.NoError(t, err)
	require.Len(t, scores, 10)

	counts := map[int]int{}
	for _, s := range scores {
		counts[s.R]++
	}
	for r := 1; r <= 5; r++ {
		assert.Equal(t, 2, counts[r], "R score %d", r)
	}

	// Recency is inverted: the freshest customers score 5.
	assert.Equal(t, 5, scores[0].R)
	assert.Equal(t, 1, scores[9].R)

	// Frequency and monetary rise together with the index here.
	assert.Equal(t, 1, scores[0].F)
	assert.Equal(t, 5, scores[9].F)
	assert.Equal(t, 1, scores[0].M)
	assert.Equal(t, 5, scores[9].M)

	assert.Equal(t, "511", scores[0].Composite)
	assert.Equal(t, "155", scores[9].Composite)
}

func TestScoreCustomersTiedFrequencies(t *testing.T) {
	// Every customer bought exactly once; rank-based binning still spreads
	// them across all five buckets instead of collapsing into one.
	rows := make([]CustomerFeatureRow, 10)
	for i := range rows {
		rows[i] = CustomerFeatureRow{
			CustomerID:    fmt.Sprintf("C%d", i),
			Recency:       float64(i),
			Frequency:     1,
			MonetaryTotal: float64(i),
		}
	}

	scores, err := ScoreCustomers(rows)
	require.NoError(t, err)

	counts := map[int]int{}
	for _, s := range scores {
		counts[s.F]++
	}
	for f := 1; f <= 5; f++ {
		assert.Equal(t, 2, counts[f], "F score %d", f)
	}

	// Ties resolve in input order, so earlier customers rank lower.
	assert.Equal(t, 1, scores[0].F)
	assert.Equal(t, 5, scores[9].F)
}

func TestScoreCustomersInsufficientData(t *testing.T) {
	rows := []CustomerFeatureRow{{CustomerID: "C1"}, {CustomerID: "C2"}}

	_, err := ScoreCustomers(rows)
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientData(err))
}
