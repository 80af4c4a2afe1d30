package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the layouts the loader probes, most common first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02/01/2006",
}

// LoadCSV reads a CSV file into a typed dataset. The first record is the
// header. Cell types are probed per cell: int, float, bool, then date
// layouts, falling back to string. Empty cells load as null.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	d, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	slog.Info("Loaded CSV dataset",
		slog.String("path", path),
		slog.Int("rows", d.Len()),
		slog.Int("columns", len(d.Columns())))
	return d, nil
}

// ReadCSV reads CSV content from r into a typed dataset, tolerating a UTF-8
// BOM in front of the header.
func ReadCSV(r io.Reader) (*Dataset, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	// Strip UTF-8 BOM if present
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV has no header row")
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
	}

	d := New(header)
	for _, record := range records[1:] {
		if len(record) != len(header) {
			continue
		}
		row := make([]Value, len(record))
		for i, cell := range record {
			row[i] = ParseCell(cell)
		}
		if err := d.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ParseCell probes a raw CSV cell into its typed value.
func ParseCell(cell string) Value {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return Null
	}
	if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return Float(f)
	}
	switch strings.ToLower(cell) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if t, ok := ParseDate(cell); ok {
		return Time(t)
	}
	return String(cell)
}

// ParseDate is the best-effort calendar date parser shared with the column
// classifier. It returns false when no known layout matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
