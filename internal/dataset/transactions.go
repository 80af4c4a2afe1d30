package dataset

import (
	"math"
	"time"

	apperrors "insightlens/internal/errors"
)

// ColumnRoles names the semantic columns of a transaction dataset. Customer,
// Timestamp and Amount are required by every model stage; the rest are
// optional and enable extra detail when present.
type ColumnRoles struct {
	Customer  string
	Timestamp string
	Amount    string
	Category  string
	Region    string
	Age       string
}

// Transactions is the strongly-typed transaction view every downstream
// component consumes, so raw column lookup and re-inspection happen exactly
// once. Optional slices are nil when the role is unbound.
type Transactions struct {
	Customers  []string
	Times      []time.Time
	Amounts    []float64
	Categories []string
	Regions    []string
	Ages       []float64
}

// Len returns the number of transactions.
func (t *Transactions) Len() int { return len(t.Customers) }

// HasCategories reports whether a category column was bound.
func (t *Transactions) HasCategories() bool { return t.Categories != nil }

// HasRegions reports whether a region column was bound.
func (t *Transactions) HasRegions() bool { return t.Regions != nil }

// HasAges reports whether an age column was bound.
func (t *Transactions) HasAges() bool { return t.Ages != nil }

// NewTransactions extracts the typed transaction view from a dataset.
// Rows with a null customer, timestamp or amount are dropped, matching the
// cleaning step of the source pipeline. Missing required columns or wrong
// column types are schema errors.
func NewTransactions(d *Dataset, roles ColumnRoles) (*Transactions, error) {
	for _, required := range []string{roles.Customer, roles.Timestamp, roles.Amount} {
		if required == "" {
			return nil, apperrors.NewSchemaError("", "customer, timestamp and amount roles must all be bound")
		}
		if !d.HasColumn(required) {
			return nil, apperrors.NewSchemaError(required, "")
		}
	}

	customers, err := d.Strings(roles.Customer)
	if err != nil {
		return nil, err
	}
	times, err := d.Times(roles.Timestamp)
	if err != nil {
		return nil, err
	}
	amounts, err := d.Floats(roles.Amount)
	if err != nil {
		return nil, err
	}

	var categories, regions []string
	var ages []float64
	if roles.Category != "" {
		if categories, err = d.Strings(roles.Category); err != nil {
			return nil, err
		}
	}
	if roles.Region != "" {
		if regions, err = d.Strings(roles.Region); err != nil {
			return nil, err
		}
	}
	if roles.Age != "" {
		if ages, err = d.Floats(roles.Age); err != nil {
			return nil, err
		}
	}

	out := &Transactions{}
	if categories != nil {
		out.Categories = []string{}
	}
	if regions != nil {
		out.Regions = []string{}
	}
	if ages != nil {
		out.Ages = []float64{}
	}

	for i := 0; i < d.Len(); i++ {
		if customers[i] == "" || times[i].IsZero() || math.IsNaN(amounts[i]) {
			continue
		}
		out.Customers = append(out.Customers, customers[i])
		out.Times = append(out.Times, times[i])
		out.Amounts = append(out.Amounts, amounts[i])
		if categories != nil {
			out.Categories = append(out.Categories, categories[i])
		}
		if regions != nil {
			out.Regions = append(out.Regions, regions[i])
		}
		if ages != nil {
			out.Ages = append(out.Ages, ages[i])
		}
	}

	if out.Len() == 0 {
		return nil, apperrors.NewInsufficientData("transaction view", 1, 0)
	}
	return out, nil
}

// MaxTime returns the latest timestamp across all transactions. This is the
// reference "current" date for recency calculations.
func (t *Transactions) MaxTime() time.Time {
	var max time.Time
	for _, ts := range t.Times {
		if ts.After(max) {
			max = ts
		}
	}
	return max
}
