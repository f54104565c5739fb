package stata_test

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/tpalab/regeval/dataset/stata"
	"github.com/tpalab/regeval/dataset/stata/statatest"
	"github.com/tpalab/regeval/pkg/errors"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func sampleVars() []statatest.Var {
	return []statatest.Var{
		{Name: "region", Type: stata.Str, Width: 8, Values: []any{"north", "south", "", "west"}},
		{Name: "year", Type: stata.Int, Values: []any{2019, 2020, nil, -5}},
		{Name: "code", Type: stata.Long, Values: []any{100001, 100002, 100003, statatest.Missing(1)}},
		{Name: "flag", Type: stata.Byte, Values: []any{1, -1, statatest.Missing(26), 100}},
		{Name: "share", Type: stata.Float, Values: []any{0.5, 0.25, -2.0, nil}},
		{Name: "tpa", Type: stata.Double, Values: []any{1.125, nil, 3.5, 1e-5}, Label: "tax per adult"},
	}
}

func open(t *testing.T, f statatest.File) *stata.Reader {
	t.Helper()
	raw := f.Bytes()
	r, err := stata.NewReader(bytes.NewReader(raw), int64(len(raw)))
	assert.NilError(t, err)
	return r
}

func TestReadColumnsAllReleases(t *testing.T) {
	for _, release := range []int{114, 115, 117, 118, 119} {
		for _, bigEndian := range []bool{false, true} {
			t.Run(fmt.Sprintf("release %d big-endian %v", release, bigEndian), func(t *testing.T) {
				r := open(t, statatest.File{Release: release, BigEndian: bigEndian, Label: "fixture", Vars: sampleVars()})

				h := r.Header()
				assert.Equal(t, h.Release, release)
				assert.Equal(t, h.BigEndian, bigEndian)
				assert.Equal(t, h.NVars, 6)
				assert.Equal(t, h.NObs, 4)
				assert.Equal(t, h.Label, "fixture")

				vars := r.Variables()
				names := make([]string, len(vars))
				for i, v := range vars {
					names[i] = v.Name
				}
				assert.DeepEqual(t, names, []string{"region", "year", "code", "flag", "share", "tpa"})
				assert.Equal(t, vars[0].Type, stata.Str)
				assert.Equal(t, vars[0].Width, 8)
				assert.Equal(t, vars[5].Type, stata.Double)
				assert.Equal(t, vars[5].Label, "tax per adult")

				cols, err := r.ReadColumns()
				assert.NilError(t, err)
				assert.Assert(t, is.Len(cols, 6))

				assert.DeepEqual(t, cols[0].Str, []string{"north", "south", "", "west"})
				assert.Assert(t, cols[0].Missing == nil)

				assertNumeric(t, cols[1], []float64{2019, 2020, 0, -5}, []bool{false, false, true, false})
				assertNumeric(t, cols[2], []float64{100001, 100002, 100003, 0}, []bool{false, false, false, true})
				assertNumeric(t, cols[3], []float64{1, -1, 0, 100}, []bool{false, false, true, false})
				assertNumeric(t, cols[4], []float64{0.5, 0.25, -2, 0}, []bool{false, false, false, true})
				assertNumeric(t, cols[5], []float64{1.125, 0, 3.5, 1e-5}, []bool{false, true, false, false})
			})
		}
	}
}

func assertNumeric(t *testing.T, col stata.Column, want []float64, missing []bool) {
	t.Helper()
	assert.DeepEqual(t, col.Missing, missing)
	for i := range want {
		if missing[i] {
			assert.Assert(t, math.IsNaN(col.Float[i]), "%s[%d] should be NaN", col.Name, i)
			continue
		}
		assert.Equal(t, col.Float[i], want[i], "%s[%d]", col.Name, i)
	}
}

func TestReadStrL(t *testing.T) {
	for _, release := range []int{117, 118, 119} {
		t.Run(fmt.Sprintf("release %d", release), func(t *testing.T) {
			r := open(t, statatest.File{Release: release, Vars: []statatest.Var{
				{Name: "note", Type: stata.StrL, Values: []any{"a long note", "", "second"}},
				{Name: "x", Type: stata.Double, Values: []any{1.0, 2.0, 3.0}},
			}})

			cols, err := r.ReadColumns()
			assert.NilError(t, err)
			assert.DeepEqual(t, cols[0].Str, []string{"a long note", "", "second"})
			assert.DeepEqual(t, cols[1].Float, []float64{1, 2, 3})
		})
	}
}

func TestLatin1Strings(t *testing.T) {
	r := open(t, statatest.File{Release: 115, Vars: []statatest.Var{
		{Name: "town", Type: stata.Str, Width: 6, Values: []any{"Malm\xf6"}},
	}})
	cols, err := r.ReadColumns()
	assert.NilError(t, err)
	assert.Equal(t, cols[0].Str[0], "Malmö")
}

func TestUnsupportedFiles(t *testing.T) {
	valid := statatest.File{Release: 118, Vars: sampleVars()}.Bytes()

	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"old release", []byte{110, 2, 1, 0, 0, 0}},
		{"not a dta file", []byte("<html><body></body></html>")},
		{"unknown tagged release", bytes.Replace(valid, []byte("<release>118"), []byte("<release>120"), 1)},
		{"truncated", valid[:len(valid)/2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := stata.NewReader(bytes.NewReader(tt.raw), int64(len(tt.raw)))
			if err == nil {
				_, err = r.ReadColumns()
			}
			assert.Assert(t, err != nil)
		})
	}

	t.Run("release error is typed", func(t *testing.T) {
		raw := []byte{110, 2, 1, 0, 0, 0}
		_, err := stata.NewReader(bytes.NewReader(raw), int64(len(raw)))
		assert.Assert(t, errors.Is(err, errors.ErrUnsupportedFormat))
	})
}
