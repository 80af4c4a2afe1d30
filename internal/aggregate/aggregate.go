// Package aggregate computes dataset-level statistics and group-by rollups:
// the quick stats shown before any modelling, generic group sums with
// first-seen ordering, and the named analysis tables (monthly sales,
// category performance, regional analysis) the renderers consume.
package aggregate

import (
	"math"
	"sort"

	"insightlens/internal/dataset"
	"insightlens/internal/schema"
)

// BasicStats summarizes a dataset before any analysis runs.
type BasicStats struct {
	RowCount         int `json:"row_count"`
	ColumnCount      int `json:"column_count"`
	NumericCount     int `json:"numeric_count"`
	CategoricalCount int `json:"categorical_count"`
	NullCount        int `json:"null_count"`
	DuplicateRows    int `json:"duplicate_rows"`
}

// ComputeBasicStats computes row/column counts, null cells and duplicate
// rows. A duplicate is a row equal by value to an earlier row across all
// columns.
func ComputeBasicStats(d *dataset.Dataset, profile *schema.Profile) BasicStats {
	stats := BasicStats{
		RowCount:    d.Len(),
		ColumnCount: len(d.Columns()),
		NullCount:   d.NullCount(),
	}
	for _, c := range profile.Columns {
		if c.Numeric {
			stats.NumericCount++
		} else if c.Categorical {
			stats.CategoricalCount++
		}
	}

	seen := make(map[string]struct{}, d.Len())
	for i := 0; i < d.Len(); i++ {
		fp := d.RowFingerprint(i)
		if _, ok := seen[fp]; ok {
			stats.DuplicateRows++
			continue
		}
		seen[fp] = struct{}{}
	}
	return stats
}

// GroupEntry is one group in an ordered rollup.
type GroupEntry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// GroupSum sums metricCol per distinct value of groupCol. Entry order is the
// first-seen order of each group value; null metric cells contribute nothing.
func GroupSum(d *dataset.Dataset, groupCol, metricCol string) ([]GroupEntry, error) {
	keys, err := d.Strings(groupCol)
	if err != nil {
		return nil, err
	}
	metrics, err := d.Floats(metricCol)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var entries []GroupEntry
	for i, key := range keys {
		pos, ok := index[key]
		if !ok {
			pos = len(entries)
			index[key] = pos
			entries = append(entries, GroupEntry{Key: key})
		}
		if !math.IsNaN(metrics[i]) {
			entries[pos].Value += metrics[i]
		}
	}
	return entries, nil
}

// TopN returns the top n entries by value descending. Ties keep the
// first-seen order of the input.
func TopN(entries []GroupEntry, n int) []GroupEntry {
	out := make([]GroupEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// SortedByValue returns the entries sorted by value descending, stable on
// first-seen order for ties. The input is not modified.
func SortedByValue(entries []GroupEntry) []GroupEntry {
	return TopN(entries, len(entries))
}
