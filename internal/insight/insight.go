// Package insight renders analytics and model outputs into short, ordered
// textual findings. It is a pure formatting layer: no file I/O, no state.
package insight

import (
	"fmt"
	"time"

	"insightlens/internal/aggregate"
	"insightlens/internal/classify"
	"insightlens/internal/forecast"
	"insightlens/internal/rfm"
	"insightlens/internal/segment"
)

// churnWindowDays is the trailing window that defines a churned customer.
const churnWindowDays = 90

// Inputs collects the upstream outputs the synthesizer may draw on. Every
// field except Stats is optional; absent inputs simply skip their findings.
type Inputs struct {
	Stats     *aggregate.BasicStats
	Tables    *aggregate.Result
	Customers []rfm.CustomerFeatureRow
	Segments  *segment.Result

	// TotalRevenue and AvgTransaction are reported only when HasRevenue is
	// set, since a dataset without a designated monetary column has neither.
	HasRevenue     bool
	TotalRevenue   float64
	AvgTransaction float64

	// Date range of the underlying data; reported only when HasDates is set.
	HasDates            bool
	FirstDate, LastDate time.Time

	Forecast       *forecast.Result
	Classification *classify.Result
}

// Findings produces the ordered findings list. The order is fixed: dataset
// shape, data quality, revenue, top performers, date span, churn, segments,
// model quality.
func Findings(in Inputs) []string {
	var out []string
	add := func(format string, args ...interface{}) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	if in.Stats != nil {
		add("Dataset contains %d rows and %d columns (%d numeric, %d categorical)",
			in.Stats.RowCount, in.Stats.ColumnCount, in.Stats.NumericCount, in.Stats.CategoricalCount)
		if in.Stats.NullCount > 0 {
			add("Found %d missing values", in.Stats.NullCount)
		}
		if in.Stats.DuplicateRows > 0 {
			add("Found %d duplicate rows", in.Stats.DuplicateRows)
		}
	}

	if in.HasRevenue {
		add("Total revenue: $%.2f across all transactions", in.TotalRevenue)
		add("Average transaction value: $%.2f", in.AvgTransaction)
	}

	if top, ok := topCategory(in.Tables); ok {
		add("Top category by revenue: %s ($%.2f)", top.Category, top.Revenue)
	} else if top, ok := topCustomer(in.Customers); ok {
		add("Top customer by revenue: %s ($%.2f)", top.CustomerID, top.MonetaryTotal)
	}

	if peak, ok := peakMonth(in.Tables); ok {
		add("Peak sales month: %04d-%02d ($%.2f)", peak.Year, peak.Month, peak.Revenue)
	}

	if in.HasDates {
		days := int(in.LastDate.Sub(in.FirstDate).Hours()/24) + 1
		add("Data spans %d days, from %s to %s",
			days, in.FirstDate.Format("2006-01-02"), in.LastDate.Format("2006-01-02"))
	}

	if len(in.Customers) > 0 {
		rate := rfm.ChurnRate(in.Customers, churnWindowDays)
		add("Churn rate: %.1f%% of customers inactive for over %d days", rate*100, churnWindowDays)
	}

	if in.Segments != nil {
		if top := segment.TopClusterByMonetary(in.Segments); top >= 0 {
			profile := in.Segments.Profiles[top]
			add("Most valuable segment: cluster %d (%d customers, $%.2f average spend)",
				top, profile.Size, profile.Means["monetary_total"])
		}
	}

	if in.Forecast != nil {
		add("Sales forecast model achieves RMSE of %.2f on held-out data", in.Forecast.RMSE)
	}
	if in.Classification != nil {
		add("High-value customer model achieves %.1f%% accuracy (threshold $%.2f)",
			in.Classification.Accuracy*100, in.Classification.Threshold)
	}

	return out
}

func topCategory(tables *aggregate.Result) (aggregate.CategoryPerformance, bool) {
	if tables == nil || len(tables.CategoryPerformance) == 0 {
		return aggregate.CategoryPerformance{}, false
	}
	best := tables.CategoryPerformance[0]
	for _, row := range tables.CategoryPerformance[1:] {
		if row.Revenue > best.Revenue {
			best = row
		}
	}
	return best, true
}

func peakMonth(tables *aggregate.Result) (aggregate.MonthlySales, bool) {
	if tables == nil || len(tables.MonthlySales) == 0 {
		return aggregate.MonthlySales{}, false
	}
	best := tables.MonthlySales[0]
	for _, row := range tables.MonthlySales[1:] {
		if row.Revenue > best.Revenue {
			best = row
		}
	}
	return best, true
}

func topCustomer(customers []rfm.CustomerFeatureRow) (rfm.CustomerFeatureRow, bool) {
	if len(customers) == 0 {
		return rfm.CustomerFeatureRow{}, false
	}
	best := customers[0]
	for _, row := range customers[1:] {
		if row.MonetaryTotal > best.MonetaryTotal {
			best = row
		}
	}
	return best, true
}
