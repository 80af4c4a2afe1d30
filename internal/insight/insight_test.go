package insight

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightlens/internal/aggregate"
	"insightlens/internal/rfm"
	"insightlens/internal/segment"
)

func TestFindingsFullInputs(t *testing.T) {
	in := Inputs{
		Stats: &aggregate.BasicStats{
			RowCount: 100, ColumnCount: 6,
			NumericCount: 3, CategoricalCount: 3,
			NullCount: 4, DuplicateRows: 2,
		},
		Tables: &aggregate.Result{
			CategoryPerformance: []aggregate.CategoryPerformance{
				{Category: "Books", Revenue: 500},
				{Category: "Electronics", Revenue: 900},
			},
			MonthlySales: []aggregate.MonthlySales{
				{Year: 2024, Month: 1, Revenue: 600},
				{Year: 2024, Month: 2, Revenue: 800},
			},
		},
		Customers: []rfm.CustomerFeatureRow{
			{CustomerID: "C1", Recency: 10, MonetaryTotal: 300},
			{CustomerID: "C2", Recency: 120, MonetaryTotal: 800},
		},
		Segments: &segment.Result{
			Profiles: []segment.ClusterProfile{
				{Cluster: 0, Size: 1, Means: map[string]float64{"monetary_total": 300}},
				{Cluster: 1, Size: 1, Means: map[string]float64{"monetary_total": 800}},
			},
		},
		HasRevenue:     true,
		TotalRevenue:   1400,
		AvgTransaction: 14,
		HasDates:       true,
		FirstDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastDate:       time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC),
	}

	findings := Findings(in)
	require.Len(t, findings, 10)

	assert.Equal(t, "Dataset contains 100 rows and 6 columns (3 numeric, 3 categorical)", findings[0])
	assert.Equal(t, "Found 4 missing values", findings[1])
	assert.Equal(t, "Found 2 duplicate rows", findings[2])
	assert.Equal(t, "Total revenue: $1400.00 across all transactions", findings[3])
	assert.Equal(t, "Average transaction value: $14.00", findings[4])
	assert.Contains(t, findings[5], "Electronics")
	assert.Equal(t, "Peak sales month: 2024-02 ($800.00)", findings[6])
	assert.Equal(t, "Data spans 30 days, from 2024-01-01 to 2024-01-30", findings[7])
	assert.Equal(t, "Churn rate: 50.0% of customers inactive for over 90 days", findings[8])
	assert.Contains(t, findings[9], "Most valuable segment: cluster 1")
}

func TestFindingsSkipsAbsentInputs(t *testing.T) {
	in := Inputs{
		Stats: &aggregate.BasicStats{RowCount: 10, ColumnCount: 2, NumericCount: 1, CategoricalCount: 1},
	}

	findings := Findings(in)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "10 rows")
}

func TestFindingsTopCustomerFallback(t *testing.T) {
	in := Inputs{
		Customers: []rfm.CustomerFeatureRow{
			{CustomerID: "C1", MonetaryTotal: 50},
			{CustomerID: "C9", MonetaryTotal: 700},
		},
	}

	findings := Findings(in)
	joined := strings.Join(findings, "\n")
	assert.Contains(t, joined, "Top customer by revenue: C9")
	assert.NotContains(t, joined, "Top category")
}

func TestFindingsSegmentOrdering(t *testing.T) {
	in := Inputs{
		Customers: []rfm.CustomerFeatureRow{{CustomerID: "C1", Recency: 5}},
		Segments: &segment.Result{
			Profiles: []segment.ClusterProfile{
				{Cluster: 0, Size: 1, Means: map[string]float64{"monetary_total": 10}},
			},
		},
	}

	findings := Findings(in)
	require.Len(t, findings, 3)
	assert.Contains(t, findings[2], "Most valuable segment: cluster 0")
}
