// Package exporter persists pipeline results to CSV files and Excel
// workbooks. The analytics core never writes files itself; everything here
// consumes its plain data structures.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"insightlens/internal/dataset"
	"insightlens/internal/rfm"
)

// CSVWriter writes report CSV files under a base directory.
type CSVWriter struct {
	reportsDir string
	logger     *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at reportsDir.
func NewCSVWriter(reportsDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{reportsDir: reportsDir, logger: logger}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM so Excel detects the encoding
}

// WriteCSV writes a CSV file relative to the reports directory.
func (w *CSVWriter) WriteCSV(name string, options WriteOptions) error {
	fullPath := filepath.Join(w.reportsDir, name)
	w.logger.Info("writing CSV file",
		slog.String("path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	return writer.Error()
}

// WriteCustomerFeatures writes the per-customer feature table, with RFM
// scores joined in when present.
func (w *CSVWriter) WriteCustomerFeatures(name string, rows []rfm.CustomerFeatureRow, scores []rfm.Score) error {
	byCustomer := make(map[string]rfm.Score, len(scores))
	for _, s := range scores {
		byCustomer[s.CustomerID] = s
	}

	headers := []string{
		"customer_id", "recency", "frequency", "monetary_total", "monetary_avg",
		"category_diversity", "avg_days_between_purchases", "total_per_category",
		"rfm_score",
	}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.CustomerID,
			formatFloat(row.Recency),
			strconv.Itoa(row.Frequency),
			formatFloat(row.MonetaryTotal),
			formatFloat(row.MonetaryAvg),
			formatCount(row.CategoryDiversity),
			formatFloat(row.AvgDaysBetweenPurchases),
			formatOptional(row.TotalPerCategory),
			byCustomer[row.CustomerID].Composite,
		})
	}
	return w.WriteCSV(name, WriteOptions{Headers: headers, Records: records, BOMPrefix: true})
}

// WriteDataset dumps a whole dataset in its column order, rendering each
// cell in canonical form.
func (w *CSVWriter) WriteDataset(name string, d *dataset.Dataset) error {
	columns := d.Columns()
	records := make([][]string, 0, d.Len())
	for row := 0; row < d.Len(); row++ {
		record := make([]string, len(columns))
		for i, c := range columns {
			v, err := d.Cell(row, c)
			if err != nil {
				return err
			}
			record[i] = v.Format()
		}
		records = append(records, record)
	}
	return w.WriteCSV(name, WriteOptions{Headers: columns, Records: records, BOMPrefix: true})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatOptional renders unobserved values as empty cells.
func formatOptional(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return formatFloat(v)
}

func formatCount(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
