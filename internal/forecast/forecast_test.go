package forecast

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightlens/internal/dataset"
	apperrors "insightlens/internal/errors"
	"insightlens/internal/mlearn"
)

// dailySeries builds a deterministic daily transaction series spanning two
// calendar years so no calendar feature is constant.
func dailySeries(days int) *dataset.Transactions {
	start := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	categories := []string{"Electronics", "Clothing", "Books"}
	regions := []string{"North", "South"}

	txns := &dataset.Transactions{}
	for i := 0; i < days; i++ {
		ts := start.AddDate(0, 0, i)
		amount := 50 + float64(i%30)*3
		if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
			amount += 25
		}
		txns.Customers = append(txns.Customers, fmt.Sprintf("C%d", i%10))
		txns.Times = append(txns.Times, ts)
		txns.Amounts = append(txns.Amounts, amount)
		txns.Categories = append(txns.Categories, categories[i%3])
		txns.Regions = append(txns.Regions, regions[i%2])
		txns.Ages = append(txns.Ages, float64(20+i%40))
	}
	return txns
}

func TestDeriveFeatures(t *testing.T) {
	txns := dailySeries(400)

	fs := deriveFeatures(txns)
	assert.Equal(t, []string{
		"year", "month", "day", "day_of_week", "quarter", "is_weekend",
		"category_encoded", "region_encoded", "customer_age",
		"sales_lag_7", "sales_lag_30", "sales_ma_7", "sales_ma_30",
	}, fs.Names)

	// The first 30 sorted rows lack a 30-row lag and are dropped.
	require.Len(t, fs.X, 370)
	require.Len(t, fs.Y, 370)

	first := fs.X[0]
	assert.Equal(t, 2023.0, first[0])
	// Row 30 lags back to row 23 (7 rows) and row 0 (30 rows).
	assert.Equal(t, txns.Amounts[23], first[9])
	assert.Equal(t, txns.Amounts[0], first[10])

	// Encoders assign codes in first-seen order.
	assert.Equal(t, []string{"Electronics", "Clothing", "Books"}, fs.Encoders["category"].Classes)
	assert.Equal(t, []string{"North", "South"}, fs.Encoders["region"].Classes)
}

func TestDayOfWeekMondayFirst(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i, dayOfWeek(monday.AddDate(0, 0, i)))
	}
}

func TestTrainForecast(t *testing.T) {
	txns := dailySeries(400)

	result, err := Train(txns, DefaultConfig(42))
	require.NoError(t, err)

	assert.Equal(t, 296, result.TrainRows)
	assert.Equal(t, 74, result.TestRows)
	assert.Greater(t, result.RMSE, 0.0)
	assert.Less(t, result.RMSE, 30.0, "model must beat a wild guess on a periodic series")

	total := 0.0
	for _, imp := range result.Importances {
		assert.GreaterOrEqual(t, imp, 0.0)
		total += imp
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	require.NotNil(t, result.Bundle)
	assert.Equal(t, ModelKind, result.Bundle.Kind)
	assert.Contains(t, result.Bundle.Encoders, "category")
	assert.Contains(t, result.Bundle.Encoders, "region")
}

func TestTrainForecastDeterministic(t *testing.T) {
	txns := dailySeries(400)

	a, err := Train(txns, DefaultConfig(42))
	require.NoError(t, err)
	b, err := Train(txns, DefaultConfig(42))
	require.NoError(t, err)

	assert.Equal(t, a.RMSE, b.RMSE)
	assert.Equal(t, a.Importances, b.Importances)
}

func TestTrainForecastChronologicalSplit(t *testing.T) {
	txns := dailySeries(400)

	cfg := DefaultConfig(42)
	cfg.Chronological = true

	result, err := Train(txns, cfg)
	require.NoError(t, err)
	assert.Equal(t, 296, result.TrainRows)
	assert.Equal(t, 74, result.TestRows)
}

func TestTrainForecastInsufficientData(t *testing.T) {
	// 60 rows leave only 30 after lag derivation, below the floor.
	txns := dailySeries(60)

	_, err := Train(txns, DefaultConfig(42))
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientData(err))
}

func TestForecastBundleRoundTrip(t *testing.T) {
	txns := dailySeries(400)

	result, err := Train(txns, DefaultConfig(42))
	require.NoError(t, err)

	data, err := result.Bundle.Marshal()
	require.NoError(t, err)
	restored, err := mlearn.UnmarshalBundle(data)
	require.NoError(t, err)

	fs := deriveFeatures(txns)
	scaled := result.Bundle.Scaler.Transform(fs.X)

	assert.Equal(t, result.Bundle.Forest.Predict(scaled), restored.Forest.Predict(restored.Scaler.Transform(fs.X)))
}
