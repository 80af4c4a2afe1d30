package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"insightlens/internal/dataset"
	"insightlens/internal/pipeline"
)

// sampleRowLimit caps the Sample Data sheet so huge datasets stay openable.
const sampleRowLimit = 100

// WriteWorkbook renders a pipeline run into a multi-sheet Excel workbook.
func WriteWorkbook(path string, d *dataset.Dataset, result *pipeline.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSampleSheet(f, d); err != nil {
		return err
	}
	if err := writeCategorySheet(f, result); err != nil {
		return err
	}
	if err := writeRegionalSheet(f, result); err != nil {
		return err
	}
	if err := writeMonthlySheet(f, result); err != nil {
		return err
	}
	if err := writeSegmentsSheet(f, result); err != nil {
		return err
	}

	// The default sheet is replaced by Sample Data.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create workbook directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSampleSheet(f *excelize.File, d *dataset.Dataset) error {
	const sheet = "Sample Data"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	columns := d.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	limit := d.Len()
	if limit > sampleRowLimit {
		limit = sampleRowLimit
	}
	for row := 0; row < limit; row++ {
		cells := make([]interface{}, len(columns))
		for i, c := range columns {
			v, err := d.Cell(row, c)
			if err != nil {
				return err
			}
			cells[i] = v.Format()
		}
		if err := setRow(f, sheet, row+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeCategorySheet(f *excelize.File, result *pipeline.Result) error {
	const sheet = "Category Analysis"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, []interface{}{"category", "revenue", "transactions", "unique_customers"}); err != nil {
		return err
	}
	if result.Tables == nil {
		return nil
	}
	for i, row := range result.Tables.CategoryPerformance {
		if err := setRow(f, sheet, i+2, []interface{}{
			row.Category, row.Revenue, row.Transactions, row.UniqueCustomers,
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeRegionalSheet(f *excelize.File, result *pipeline.Result) error {
	const sheet = "Regional Analysis"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, []interface{}{"region", "revenue", "unique_customers"}); err != nil {
		return err
	}
	if result.Tables == nil {
		return nil
	}
	for i, row := range result.Tables.RegionalAnalysis {
		if err := setRow(f, sheet, i+2, []interface{}{
			row.Region, row.Revenue, row.UniqueCustomers,
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeMonthlySheet(f *excelize.File, result *pipeline.Result) error {
	const sheet = "Monthly Sales"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, []interface{}{"year", "month", "revenue", "transaction_count"}); err != nil {
		return err
	}
	if result.Tables == nil {
		return nil
	}
	for i, row := range result.Tables.MonthlySales {
		if err := setRow(f, sheet, i+2, []interface{}{
			row.Year, row.Month, row.Revenue, row.TransactionCount,
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeSegmentsSheet(f *excelize.File, result *pipeline.Result) error {
	const sheet = "Customer Segments"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, []interface{}{"customer_id", "cluster", "rfm_score"}); err != nil {
		return err
	}
	if result.Segments == nil {
		return nil
	}

	scores := make(map[string]string, len(result.Scores))
	for _, s := range result.Scores {
		scores[s.CustomerID] = s.Composite
	}
	for i, row := range result.Customers {
		if err := setRow(f, sheet, i+2, []interface{}{
			row.CustomerID, result.Segments.Assignments[i], scores[row.CustomerID],
		}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
