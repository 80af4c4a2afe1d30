package exporter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"insightlens/internal/config"
	"insightlens/internal/pipeline"
	"insightlens/internal/rfm"
)

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	err := w.WriteCSV("reports/out.csv", WriteOptions{
		Headers:   []string{"name", "value"},
		Records:   [][]string{{"alpha", "1"}, {"beta", "2"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "reports", "out.csv"))
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "\xEF\xBB\xBF"), "BOM prefix expected")
	assert.Contains(t, text, "name,value")
	assert.Contains(t, text, "beta,2")
}

func TestWriteCustomerFeatures(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	rows := []rfm.CustomerFeatureRow{
		{CustomerID: "C1", Recency: 3, Frequency: 2, MonetaryTotal: 40, MonetaryAvg: 20, CategoryDiversity: 1},
	}
	scores := []rfm.Score{{CustomerID: "C1", R: 5, F: 4, M: 3, Composite: "543"}}

	require.NoError(t, w.WriteCustomerFeatures("customers.csv", rows, scores))

	data, err := os.ReadFile(filepath.Join(dir, "customers.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "C1,3.00,2,40.00,20.00,1")
	assert.Contains(t, string(data), "543")
}

func TestWriteWorkbook(t *testing.T) {
	gen := pipeline.DefaultGeneratorConfig(42)
	gen.Transactions = 300
	gen.Customers = 30
	d := pipeline.GenerateDataset(gen)

	cfg := config.Default().Pipeline
	cfg.ClusterCount = 3
	cfg.TreeCount = 5

	result, err := pipeline.New(cfg, nil).Run(context.Background(), d, pipeline.GeneratorRoles())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	require.NoError(t, WriteWorkbook(path, d, result))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{
		"Sample Data", "Category Analysis", "Regional Analysis",
		"Monthly Sales", "Customer Segments",
	}, f.GetSheetList())

	rows, err := f.GetRows("Category Analysis")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"category", "revenue", "transactions", "unique_customers"}, rows[0])
	assert.Greater(t, len(rows), 1, "category rows expected")

	sample, err := f.GetRows("Sample Data")
	require.NoError(t, err)
	assert.Len(t, sample, sampleRowLimit+1)
}
