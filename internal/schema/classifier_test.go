package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightlens/internal/dataset"
)

func buildDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	d := dataset.New([]string{"customer_id", "total_amount", "product_category", "transaction_date", "notes"})
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := [][]dataset.Value{
		{dataset.String("C1"), dataset.Float(19.99), dataset.String("Books"), dataset.Time(ts), dataset.String("2024-05-01")},
		{dataset.String("C2"), dataset.Int(25), dataset.String("Toys"), dataset.Time(ts.AddDate(0, 0, 1)), dataset.String("hello")},
		{dataset.String("C3"), dataset.Null, dataset.String("Books"), dataset.Time(ts.AddDate(0, 0, 2)), dataset.Null},
	}
	for _, row := range rows {
		require.NoError(t, d.AppendRow(row))
	}
	return d
}

func TestClassify(t *testing.T) {
	profile := NewClassifier().Classify(buildDataset(t))

	amount, ok := profile.ByName("total_amount")
	require.True(t, ok)
	assert.True(t, amount.Numeric, "all non-null values numeric")
	assert.False(t, amount.Categorical)
	assert.True(t, amount.RevenueLike, "name contains both total and amount")
	assert.Equal(t, 1, amount.NullCount)

	customer, ok := profile.ByName("customer_id")
	require.True(t, ok)
	assert.True(t, customer.Categorical)
	assert.True(t, customer.CustomerLike)

	date, ok := profile.ByName("transaction_date")
	require.True(t, ok)
	assert.True(t, date.DateCandidate)

	// One non-date value excludes the column: no partial credit.
	notes, ok := profile.ByName("notes")
	require.True(t, ok)
	assert.False(t, notes.DateCandidate)

	category, ok := profile.ByName("product_category")
	require.True(t, ok)
	assert.True(t, category.Categorical)
	assert.False(t, category.RevenueLike)
	assert.False(t, category.CustomerLike)
	assert.True(t, category.CategoryLike)
}

func TestClassifyDistinctCounts(t *testing.T) {
	profile := NewClassifier().Classify(buildDataset(t))

	customer, _ := profile.ByName("customer_id")
	assert.Equal(t, 3, customer.Distinct, "unique per row")

	category, _ := profile.ByName("product_category")
	assert.Equal(t, 2, category.Distinct, "Books repeats")

	amount, _ := profile.ByName("total_amount")
	assert.Equal(t, 2, amount.Distinct, "nulls are not counted")
}

func TestClassifyRegionAndAgeHints(t *testing.T) {
	d := dataset.New([]string{"region", "customer_age", "percentage"})
	require.NoError(t, d.AppendRow([]dataset.Value{
		dataset.String("North"), dataset.Int(34), dataset.String("high"),
	}))

	profile := NewClassifier().Classify(d)

	region, _ := profile.ByName("region")
	assert.True(t, region.RegionLike)
	assert.False(t, region.AgeLike, "age hints require a numeric column")

	age, _ := profile.ByName("customer_age")
	assert.True(t, age.AgeLike)

	// A non-numeric column never reads as an age, keyword match or not.
	pct, _ := profile.ByName("percentage")
	assert.False(t, pct.AgeLike)
}

func TestPrimaryTypePartition(t *testing.T) {
	d := buildDataset(t)
	profile := NewClassifier().Classify(d)

	numeric := len(profile.NumericColumns())
	categorical := len(profile.CategoricalColumns())
	assert.LessOrEqual(t, numeric+categorical, len(d.Columns()))
	assert.Equal(t, len(d.Columns()), numeric+categorical,
		"numeric and categorical partition every column exactly once")
}

func TestCandidateAccessors(t *testing.T) {
	profile := NewClassifier().Classify(buildDataset(t))

	assert.Equal(t, []string{"total_amount"}, profile.RevenueCandidates())
	assert.Equal(t, []string{"customer_id"}, profile.CustomerCandidates())
	assert.Equal(t, []string{"transaction_date"}, profile.DateCandidates())
	assert.Equal(t, []string{"product_category"}, profile.CategoryCandidates())
	assert.Empty(t, profile.RegionCandidates())
	assert.Empty(t, profile.AgeCandidates())
}

func TestInjectedKeywords(t *testing.T) {
	d := dataset.New([]string{"umsatz", "kunde"})
	require.NoError(t, d.AppendRow([]dataset.Value{dataset.Float(1), dataset.String("A")}))

	profile := NewClassifierWithKeywords([]string{"umsatz"}, []string{"kunde"}).Classify(d)

	umsatz, _ := profile.ByName("umsatz")
	assert.True(t, umsatz.RevenueLike)
	kunde, _ := profile.ByName("kunde")
	assert.True(t, kunde.CustomerLike)

	// Default keywords would not have matched either column.
	defaultProfile := NewClassifier().Classify(d)
	umsatz, _ = defaultProfile.ByName("umsatz")
	assert.False(t, umsatz.RevenueLike)
}

func TestAllNullColumnIsCategoricalNotDate(t *testing.T) {
	d := dataset.New([]string{"empty"})
	require.NoError(t, d.AppendRow([]dataset.Value{dataset.Null}))

	profile := NewClassifier().Classify(d)
	col, _ := profile.ByName("empty")
	assert.False(t, col.Numeric)
	assert.True(t, col.Categorical)
	assert.False(t, col.DateCandidate)
}
