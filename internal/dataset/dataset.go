package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "insightlens/internal/errors"
)

// Kind identifies the primitive type of a cell value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindTime
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Value is a single typed cell. Exactly one of the payload fields is
// meaningful, selected by Kind; numeric values (int and float) share Num.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Time time.Time
	Bool bool
}

// Null is the null cell value.
var Null = Value{Kind: KindNull}

// Int creates an integer value.
func Int(v int64) Value { return Value{Kind: KindInt, Num: float64(v)} }

// Float creates a float value.
func Float(v float64) Value { return Value{Kind: KindFloat, Num: v} }

// String creates a string value.
func String(v string) Value { return Value{Kind: KindString, Str: v} }

// Bool creates a boolean value.
func Bool(v bool) Value { return Value{Kind: KindBool, Bool: v} }

// Time creates a timestamp value.
func Time(v time.Time) Value { return Value{Kind: KindTime, Time: v} }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsNumeric reports whether the value carries a number.
func (v Value) IsNumeric() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// AsFloat returns the numeric payload, or NaN for non-numeric values.
func (v Value) AsFloat() float64 {
	if v.IsNumeric() {
		return v.Num
	}
	return math.NaN()
}

// Format renders the value canonically. Two values are equal for duplicate
// detection iff their Kind and Format output match.
func (v Value) Format() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindInt:
		return strconv.FormatInt(int64(v.Num), 10)
	case KindFloat:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindString:
		return v.Str
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindTime:
		return v.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// Dataset is an ordered sequence of rows sharing one column set. It is
// treated as read-only by every analysis stage; derived columns are only
// ever added through WithColumn, which leaves the receiver untouched.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New creates an empty dataset with the given column set.
func New(columns []string) *Dataset {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &Dataset{
		columns: append([]string(nil), columns...),
		index:   index,
	}
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Columns returns the column names in order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// AppendRow adds a row. The row must match the column arity.
func (d *Dataset) AppendRow(row []Value) error {
	if len(row) != len(d.columns) {
		return fmt.Errorf("row has %d values, dataset has %d columns", len(row), len(d.columns))
	}
	d.rows = append(d.rows, row)
	return nil
}

// Cell returns the value at (row, column name).
func (d *Dataset) Cell(row int, column string) (Value, error) {
	idx, ok := d.index[column]
	if !ok {
		return Null, apperrors.NewSchemaError(column, "")
	}
	return d.rows[row][idx], nil
}

// Column returns all values of the named column in row order.
func (d *Dataset) Column(name string) ([]Value, error) {
	idx, ok := d.index[name]
	if !ok {
		return nil, apperrors.NewSchemaError(name, "")
	}
	out := make([]Value, len(d.rows))
	for i, row := range d.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Floats returns the named column as float64 values. Integer cells are
// widened, null cells become NaN, anything else is a schema error.
func (d *Dataset) Floats(name string) ([]float64, error) {
	values, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case v.IsNumeric():
			out[i] = v.Num
		case v.IsNull():
			out[i] = math.NaN()
		default:
			return nil, apperrors.NewSchemaError(name, fmt.Sprintf("row %d is %s, expected numeric", i, v.Kind))
		}
	}
	return out, nil
}

// Strings returns the named column rendered as strings. Null cells become "".
func (d *Dataset) Strings(name string) ([]string, error) {
	values, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.Format()
	}
	return out, nil
}

// Times returns the named column as timestamps. Null cells are zero times,
// non-time cells are a schema error.
func (d *Dataset) Times(name string) ([]time.Time, error) {
	values, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(values))
	for i, v := range values {
		switch v.Kind {
		case KindTime:
			out[i] = v.Time
		case KindNull:
		default:
			return nil, apperrors.NewSchemaError(name, fmt.Sprintf("row %d is %s, expected time", i, v.Kind))
		}
	}
	return out, nil
}

// WithColumn returns a new dataset with an extra column appended. The
// receiver and its rows are not modified, so stages can derive columns
// without order-dependent effects on shared data.
func (d *Dataset) WithColumn(name string, values []Value) (*Dataset, error) {
	if d.HasColumn(name) {
		return nil, fmt.Errorf("column %q already exists", name)
	}
	if len(values) != len(d.rows) {
		return nil, fmt.Errorf("column %q has %d values, dataset has %d rows", name, len(values), len(d.rows))
	}
	out := New(append(d.Columns(), name))
	out.rows = make([][]Value, len(d.rows))
	for i, row := range d.rows {
		newRow := make([]Value, 0, len(row)+1)
		newRow = append(newRow, row...)
		newRow = append(newRow, values[i])
		out.rows[i] = newRow
	}
	return out, nil
}

// RowFingerprint renders a row canonically for value-based duplicate
// detection. Unit separator keeps adjacent cells from colliding.
func (d *Dataset) RowFingerprint(row int) string {
	parts := make([]string, len(d.columns))
	for i, v := range d.rows[row] {
		parts[i] = v.Kind.String() + ":" + v.Format()
	}
	return strings.Join(parts, "\x1f")
}

// NullCount returns the total number of null cells across all rows.
func (d *Dataset) NullCount() int {
	count := 0
	for _, row := range d.rows {
		for _, v := range row {
			if v.IsNull() {
				count++
			}
		}
	}
	return count
}
