package dataset

import (
	"github.com/tpalab/regeval/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ConstName is the name of the injected intercept column.
const ConstName = "const"

// Design selects the label and feature columns of a table.
//
// Features are the columns after the first LeadingColumns ones, in table
// order, without the label and the identifier column.
type Design struct {
	LeadingColumns int    // descriptor columns skipped at the start
	Label          string // label column, empty for the last column
	Identifier     string // excluded from features when present
	AddConstant    bool   // prepend a column of ones unless a constant column exists
}

// DefaultDesign returns the design used by the evaluator.
func DefaultDesign() Design {
	return Design{LeadingColumns: 2, Identifier: "code", AddConstant: true}
}

// Features returns the feature column names for t, without the constant.
func (d Design) Features(t *Table) ([]string, string, error) {
	if t.Width() == 0 {
		return nil, "", errors.NewValueError("Design.Features", "table has no columns")
	}
	if d.LeadingColumns < 0 {
		return nil, "", errors.NewValidationError("leading_columns", "must be non-negative", d.LeadingColumns)
	}

	label := d.Label
	if label == "" {
		label = t.At(t.Width() - 1).Name
	} else if t.Col(label) == nil {
		return nil, "", errors.NewValidationError("label", "column not found", label)
	}

	var features []string
	for i := d.LeadingColumns; i < t.Width(); i++ {
		name := t.At(i).Name
		if name == label || (d.Identifier != "" && name == d.Identifier) {
			continue
		}
		features = append(features, name)
	}
	if len(features) == 0 {
		return nil, "", errors.NewValueError("Design.Features", "no feature columns left")
	}
	return features, label, nil
}

// Build returns the feature matrix, the label vector and the feature names
// (matching the columns of X, "const" first when it was added).
func (d Design) Build(t *Table) (*mat.Dense, *mat.VecDense, []string, error) {
	features, label, err := d.Features(t)
	if err != nil {
		return nil, nil, nil, err
	}
	if t.Len() == 0 {
		return nil, nil, nil, errors.NewModelError("Design.Build", "no rows", errors.ErrEmptyData)
	}

	labelCol := t.Col(label)
	if labelCol.Kind != Numeric {
		return nil, nil, nil, errors.NewValidationError("label", "column is not numeric", label)
	}
	if labelCol.HasMissing() {
		return nil, nil, nil, errors.NewValueError("Design.Build", "label "+label+" has missing values")
	}

	addConst := d.AddConstant
	for _, name := range features {
		c := t.Col(name)
		if c.Kind != Numeric {
			return nil, nil, nil, errors.NewValidationError("feature", "column is not numeric", name)
		}
		if c.HasMissing() {
			return nil, nil, nil, errors.NewValueError("Design.Build", "column "+name+" has missing values")
		}
		// an all-zero column does not count as an existing constant
		if c.IsConstant() && c.Float(0) != 0 {
			addConst = false
		}
	}

	names := features
	offset := 0
	if addConst {
		names = append([]string{ConstName}, features...)
		offset = 1
	}

	n := t.Len()
	X := mat.NewDense(n, len(names), nil)
	for i := 0; i < n; i++ {
		if addConst {
			X.Set(i, 0, 1)
		}
		for j, name := range features {
			X.Set(i, j+offset, t.Col(name).Float(i))
		}
	}

	y := mat.NewVecDense(n, labelCol.Floats())
	return X, y, names, nil
}
