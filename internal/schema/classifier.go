// Package schema infers column types and business-meaning hints from a raw
// dataset: numeric vs categorical as the primary partition, plus hint sets
// for revenue-like, customer-like, category, region, age and date-candidate
// columns. The keyword sets driving the hints are injected at construction
// so tests can substitute alternates; the classifier itself is deterministic
// and has no side effects.
package schema

import (
	"strings"

	"insightlens/internal/dataset"
)

// Default keyword sets for business-meaning hints. Matching is substring,
// case-insensitive, against the column name.
var (
	DefaultRevenueKeywords  = []string{"price", "cost", "revenue", "amount", "value", "total", "sales"}
	DefaultCustomerKeywords = []string{"customer", "client", "user", "id"}
	DefaultCategoryKeywords = []string{"category"}
	DefaultRegionKeywords   = []string{"region", "country", "state", "city"}
	DefaultAgeKeywords      = []string{"age"}
)

// ColumnProfile describes one column after classification. Distinct counts
// the distinct non-null values; role resolution uses it to tell apart
// columns that repeat (a customer key) from columns unique to every row (a
// transaction id).
type ColumnProfile struct {
	Name          string `json:"name"`
	Numeric       bool   `json:"numeric"`
	Categorical   bool   `json:"categorical"`
	DateCandidate bool   `json:"date_candidate"`
	RevenueLike   bool   `json:"revenue_like"`
	CustomerLike  bool   `json:"customer_like"`
	CategoryLike  bool   `json:"category_like"`
	RegionLike    bool   `json:"region_like"`
	AgeLike       bool   `json:"age_like"`
	NullCount     int    `json:"null_count"`
	Distinct      int    `json:"distinct"`
}

// Profile is the classification result for a whole dataset, preserving
// column order.
type Profile struct {
	Columns []ColumnProfile `json:"columns"`
}

// ByName returns the profile for the named column.
func (p *Profile) ByName(name string) (ColumnProfile, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// NumericColumns returns the names of all numeric columns in order.
func (p *Profile) NumericColumns() []string {
	var out []string
	for _, c := range p.Columns {
		if c.Numeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// CategoricalColumns returns the names of all categorical columns in order.
func (p *Profile) CategoricalColumns() []string {
	var out []string
	for _, c := range p.Columns {
		if c.Categorical {
			out = append(out, c.Name)
		}
	}
	return out
}

// RevenueCandidates returns numeric columns tagged revenue-like.
func (p *Profile) RevenueCandidates() []string {
	var out []string
	for _, c := range p.Columns {
		if c.RevenueLike {
			out = append(out, c.Name)
		}
	}
	return out
}

// CustomerCandidates returns columns tagged customer-like.
func (p *Profile) CustomerCandidates() []string {
	var out []string
	for _, c := range p.Columns {
		if c.CustomerLike {
			out = append(out, c.Name)
		}
	}
	return out
}

// DateCandidates returns columns whose every non-null value parses as a date.
func (p *Profile) DateCandidates() []string {
	var out []string
	for _, c := range p.Columns {
		if c.DateCandidate {
			out = append(out, c.Name)
		}
	}
	return out
}

// CategoryCandidates returns categorical columns tagged category-like.
func (p *Profile) CategoryCandidates() []string {
	var out []string
	for _, c := range p.Columns {
		if c.CategoryLike {
			out = append(out, c.Name)
		}
	}
	return out
}

// RegionCandidates returns categorical columns tagged region-like.
func (p *Profile) RegionCandidates() []string {
	var out []string
	for _, c := range p.Columns {
		if c.RegionLike {
			out = append(out, c.Name)
		}
	}
	return out
}

// AgeCandidates returns numeric columns tagged age-like.
func (p *Profile) AgeCandidates() []string {
	var out []string
	for _, c := range p.Columns {
		if c.AgeLike {
			out = append(out, c.Name)
		}
	}
	return out
}

// Classifier infers column profiles. Zero-value keyword lists fall back to
// the defaults.
type Classifier struct {
	revenueKeywords  []string
	customerKeywords []string
	categoryKeywords []string
	regionKeywords   []string
	ageKeywords      []string
}

// NewClassifier creates a classifier with the default keyword sets.
func NewClassifier() *Classifier {
	return NewClassifierWithKeywords(DefaultRevenueKeywords, DefaultCustomerKeywords)
}

// NewClassifierWithKeywords creates a classifier with injected revenue and
// customer keyword sets; the category, region and age sets stay at their
// defaults.
func NewClassifierWithKeywords(revenue, customer []string) *Classifier {
	return &Classifier{
		revenueKeywords:  revenue,
		customerKeywords: customer,
		categoryKeywords: DefaultCategoryKeywords,
		regionKeywords:   DefaultRegionKeywords,
		ageKeywords:      DefaultAgeKeywords,
	}
}

// Classify builds the profile for every column of the dataset.
//
// A column is numeric when all non-null values are numbers, otherwise
// categorical. Revenue-like applies to numeric columns whose name contains a
// revenue keyword; customer-like to any column whose name contains a
// customer keyword. Date-candidate requires every non-null value to parse as
// a calendar date; a single failure excludes the column.
func (c *Classifier) Classify(d *dataset.Dataset) *Profile {
	profile := &Profile{}
	for _, name := range d.Columns() {
		values, _ := d.Column(name)
		profile.Columns = append(profile.Columns, c.classifyColumn(name, values))
	}
	return profile
}

func (c *Classifier) classifyColumn(name string, values []dataset.Value) ColumnProfile {
	cp := ColumnProfile{Name: name}
	lower := strings.ToLower(name)

	allNumeric := true
	allDates := true
	nonNull := 0
	distinct := make(map[string]struct{})
	for _, v := range values {
		if v.IsNull() {
			cp.NullCount++
			continue
		}
		nonNull++
		distinct[v.Format()] = struct{}{}
		if !v.IsNumeric() {
			allNumeric = false
		}
		if !parsesAsDate(v) {
			allDates = false
		}
	}

	cp.Numeric = allNumeric && nonNull > 0
	cp.Categorical = !cp.Numeric
	cp.DateCandidate = allDates && nonNull > 0
	cp.Distinct = len(distinct)

	if cp.Numeric && containsAny(lower, c.revenueKeywords) {
		cp.RevenueLike = true
	}
	if containsAny(lower, c.customerKeywords) {
		cp.CustomerLike = true
	}
	if cp.Categorical && !cp.DateCandidate && containsAny(lower, c.categoryKeywords) {
		cp.CategoryLike = true
	}
	if cp.Categorical && containsAny(lower, c.regionKeywords) {
		cp.RegionLike = true
	}
	if cp.Numeric && containsAny(lower, c.ageKeywords) {
		cp.AgeLike = true
	}
	return cp
}

func parsesAsDate(v dataset.Value) bool {
	switch v.Kind {
	case dataset.KindTime:
		return true
	case dataset.KindString:
		_, ok := dataset.ParseDate(v.Str)
		return ok
	default:
		return false
	}
}

func containsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
