// Package dataset holds tabular data loaded from disk and turns it into
// design matrices.
package dataset

import (
	"math"

	"github.com/tpalab/regeval/pkg/errors"
)

// Kind is the value kind of a column.
type Kind int

const (
	Numeric Kind = iota
	String
)

func (k Kind) String() string {
	if k == String {
		return "string"
	}
	return "numeric"
}

// Column is one named column of a Table.
type Column struct {
	Name    string
	Kind    Kind
	floats  []float64
	strs    []string
	missing []bool
}

// NumericColumn builds a numeric column. A nil missing mask marks NaN values
// as missing.
func NumericColumn(name string, values []float64, missing []bool) *Column {
	if missing == nil {
		missing = make([]bool, len(values))
		for i, v := range values {
			missing[i] = math.IsNaN(v)
		}
	}
	return &Column{Name: name, Kind: Numeric, floats: values, missing: missing}
}

// StringColumn builds a string column. Strings are never missing.
func StringColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: String, strs: values}
}

// Len returns the number of rows.
func (c *Column) Len() int {
	if c.Kind == String {
		return len(c.strs)
	}
	return len(c.floats)
}

// Float returns the numeric value at row i (NaN for missing).
func (c *Column) Float(i int) float64 {
	return c.floats[i]
}

// Text returns the string value at row i.
func (c *Column) Text(i int) string {
	return c.strs[i]
}

// Missing reports whether row i holds a missing value.
func (c *Column) Missing(i int) bool {
	return c.Kind == Numeric && c.missing[i]
}

// HasMissing reports whether any row is missing.
func (c *Column) HasMissing() bool {
	for _, m := range c.missing {
		if m {
			return true
		}
	}
	return false
}

// Floats returns a copy of the numeric values.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.floats))
	copy(out, c.floats)
	return out
}

// IsConstant reports whether every row of a numeric column holds the same
// non-missing value.
func (c *Column) IsConstant() bool {
	if c.Kind != Numeric || len(c.floats) == 0 {
		return false
	}
	first := c.floats[0]
	for i, v := range c.floats {
		if c.missing[i] || v != first {
			return false
		}
	}
	return true
}

func (c *Column) subset(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == String {
		out.strs = make([]string, len(rows))
		for i, r := range rows {
			out.strs[i] = c.strs[r]
		}
		return out
	}
	out.floats = make([]float64, len(rows))
	out.missing = make([]bool, len(rows))
	for i, r := range rows {
		out.floats[i] = c.floats[r]
		out.missing[i] = c.missing[r]
	}
	return out
}

// Table is an ordered set of equal-length columns.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// NewTable builds a table. Columns must have equal lengths and unique names.
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, errors.NewDimensionError("NewTable", t.rows, c.Len(), 0)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, errors.NewValidationError("column", "duplicate column name", c.Name)
		}
		t.index[c.Name] = i
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Col returns the column with the given name or nil.
func (t *Table) Col(name string) *Column {
	if i, ok := t.index[name]; ok {
		return t.cols[i]
	}
	return nil
}

// At returns the i-th column.
func (t *Table) At(i int) *Column { return t.cols[i] }

// DropNA returns a new table without the rows that have a missing value in
// any column. t is not modified.
func (t *Table) DropNA() *Table {
	keep := make([]int, 0, t.rows)
	for r := 0; r < t.rows; r++ {
		complete := true
		for _, c := range t.cols {
			if c.Missing(r) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, r)
		}
	}

	out := &Table{cols: make([]*Column, len(t.cols)), index: t.index, rows: len(keep)}
	for i, c := range t.cols {
		out.cols[i] = c.subset(keep)
	}
	return out
}
