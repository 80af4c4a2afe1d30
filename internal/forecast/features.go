// Package forecast fits a tree-ensemble regressor on calendar, lag, and
// rolling-window features derived from a time-ordered transaction series.
package forecast

import (
	"math"
	"sort"
	"time"

	"insightlens/internal/dataset"
	"insightlens/internal/mlearn"
)

// featureSet is the derived design matrix plus everything needed to rebuild
// it at prediction time.
type featureSet struct {
	Names    []string
	X        [][]float64
	Y        []float64
	Encoders map[string]*mlearn.LabelEncoder
}

// dayOfWeek maps Go's Sunday-first weekday to a Monday-first index 0..6.
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// deriveFeatures sorts transactions by timestamp and derives, per row:
// calendar features, encoded categorical covariates, lag features taken a
// fixed number of rows back in sorted order, and trailing moving averages
// of the target. Lags are row-index based, not calendar based: on duplicate
// timestamps the lag is "N transactions ago" rather than "N days ago".
//
// Rows whose lag or rolling window reaches before the start of the series
// are dropped, which removes at most the first 30 sorted rows.
func deriveFeatures(txns *dataset.Transactions) *featureSet {
	n := txns.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return txns.Times[order[a]].Before(txns.Times[order[b]])
	})

	target := make([]float64, n)
	for i, src := range order {
		target[i] = txns.Amounts[src]
	}

	encoders := make(map[string]*mlearn.LabelEncoder)
	var categoryCodes, regionCodes []float64
	if txns.HasCategories() {
		enc := &mlearn.LabelEncoder{}
		categoryCodes = enc.FitTransform(reorder(txns.Categories, order))
		encoders["category"] = enc
	}
	if txns.HasRegions() {
		enc := &mlearn.LabelEncoder{}
		regionCodes = enc.FitTransform(reorder(txns.Regions, order))
		encoders["region"] = enc
	}

	names := []string{"year", "month", "day", "day_of_week", "quarter", "is_weekend"}
	if categoryCodes != nil {
		names = append(names, "category_encoded")
	}
	if regionCodes != nil {
		names = append(names, "region_encoded")
	}
	if txns.HasAges() {
		names = append(names, "customer_age")
	}
	names = append(names, "sales_lag_7", "sales_lag_30", "sales_ma_7", "sales_ma_30")

	var X [][]float64
	var y []float64
	for i := 0; i < n; i++ {
		lag7, lag30 := lagAt(target, i, 7), lagAt(target, i, 30)
		ma7, ma30 := trailingMean(target, i, 7), trailingMean(target, i, 30)
		if math.IsNaN(lag7) || math.IsNaN(lag30) || math.IsNaN(ma7) || math.IsNaN(ma30) {
			continue
		}

		ts := txns.Times[order[i]]
		row := []float64{
			float64(ts.Year()),
			float64(int(ts.Month())),
			float64(ts.Day()),
			float64(dayOfWeek(ts)),
			float64((int(ts.Month())-1)/3 + 1),
			boolToFloat(dayOfWeek(ts) >= 5),
		}
		if categoryCodes != nil {
			row = append(row, categoryCodes[i])
		}
		if regionCodes != nil {
			row = append(row, regionCodes[i])
		}
		if txns.HasAges() {
			age := txns.Ages[order[i]]
			if math.IsNaN(age) {
				continue
			}
			row = append(row, age)
		}
		row = append(row, lag7, lag30, ma7, ma30)

		X = append(X, row)
		y = append(y, target[i])
	}

	return &featureSet{Names: names, X: X, Y: y, Encoders: encoders}
}

// lagAt returns the target value lag rows earlier, NaN when out of range.
func lagAt(target []float64, i, lag int) float64 {
	if i < lag {
		return math.NaN()
	}
	return target[i-lag]
}

// trailingMean averages the window ending at row i inclusive, NaN until the
// window is fully populated.
func trailingMean(target []float64, i, window int) float64 {
	if i < window-1 {
		return math.NaN()
	}
	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		sum += target[j]
	}
	return sum / float64(window)
}

func reorder(values []string, order []int) []string {
	out := make([]string, len(order))
	for i, src := range order {
		out[i] = values[src]
	}
	return out
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
