package aggregate

import (
	"sort"

	"insightlens/internal/dataset"
)

// MonthlySales is one row of the monthly_sales table.
type MonthlySales struct {
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	Revenue          float64 `json:"revenue"`
	TransactionCount int     `json:"transaction_count"`
}

// CategoryPerformance is one row of the category_performance table.
type CategoryPerformance struct {
	Category        string  `json:"category"`
	Revenue         float64 `json:"revenue"`
	Transactions    int     `json:"transactions"`
	UniqueCustomers int     `json:"unique_customers"`
}

// RegionalAnalysis is one row of the regional_analysis table.
type RegionalAnalysis struct {
	Region          string  `json:"region"`
	Revenue         float64 `json:"revenue"`
	UniqueCustomers int     `json:"unique_customers"`
}

// Result bundles the named analysis tables. Tables backed by an unbound
// optional column (category, region) are nil. Recomputed per run.
type Result struct {
	MonthlySales        []MonthlySales        `json:"monthly_sales"`
	CategoryPerformance []CategoryPerformance `json:"category_performance,omitempty"`
	RegionalAnalysis    []RegionalAnalysis    `json:"regional_analysis,omitempty"`
}

// Analyze computes all rollup tables from the transaction view. Group order
// is first-seen order within the input, except monthly sales which is
// chronological.
func Analyze(txns *dataset.Transactions) *Result {
	result := &Result{
		MonthlySales: monthlySales(txns),
	}
	if txns.HasCategories() {
		result.CategoryPerformance = categoryPerformance(txns)
	}
	if txns.HasRegions() {
		result.RegionalAnalysis = regionalAnalysis(txns)
	}
	return result
}

func monthlySales(txns *dataset.Transactions) []MonthlySales {
	type ym struct{ year, month int }
	index := make(map[ym]int)
	var rows []MonthlySales

	for i, ts := range txns.Times {
		key := ym{ts.Year(), int(ts.Month())}
		pos, ok := index[key]
		if !ok {
			pos = len(rows)
			index[key] = pos
			rows = append(rows, MonthlySales{Year: key.year, Month: key.month})
		}
		rows[pos].Revenue += txns.Amounts[i]
		rows[pos].TransactionCount++
	}

	// Chronological order for time buckets
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})
	return rows
}

func categoryPerformance(txns *dataset.Transactions) []CategoryPerformance {
	index := make(map[string]int)
	customers := make(map[string]map[string]struct{})
	var rows []CategoryPerformance

	for i, cat := range txns.Categories {
		pos, ok := index[cat]
		if !ok {
			pos = len(rows)
			index[cat] = pos
			rows = append(rows, CategoryPerformance{Category: cat})
			customers[cat] = make(map[string]struct{})
		}
		rows[pos].Revenue += txns.Amounts[i]
		rows[pos].Transactions++
		customers[cat][txns.Customers[i]] = struct{}{}
	}
	for i := range rows {
		rows[i].UniqueCustomers = len(customers[rows[i].Category])
	}
	return rows
}

func regionalAnalysis(txns *dataset.Transactions) []RegionalAnalysis {
	index := make(map[string]int)
	customers := make(map[string]map[string]struct{})
	var rows []RegionalAnalysis

	for i, region := range txns.Regions {
		pos, ok := index[region]
		if !ok {
			pos = len(rows)
			index[region] = pos
			rows = append(rows, RegionalAnalysis{Region: region})
			customers[region] = make(map[string]struct{})
		}
		rows[pos].Revenue += txns.Amounts[i]
		customers[region][txns.Customers[i]] = struct{}{}
	}
	for i := range rows {
		rows[i].UniqueCustomers = len(customers[rows[i].Region])
	}
	return rows
}
