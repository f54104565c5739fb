package main

import (
	"bytes"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/tpalab/regeval/dataset/stata"
	"github.com/tpalab/regeval/dataset/stata/statatest"
	"github.com/tpalab/regeval/pkg/errors"
)

// writeFixture writes a 31 row table, one row of which has a missing value.
func writeFixture(t *testing.T) string {
	t.Helper()
	const n = 31
	names := make([]any, n)
	years := make([]any, n)
	codes := make([]any, n)
	x1 := make([]any, n)
	x2 := make([]any, n)
	tpa := make([]any, n)
	for i := 0; i < n; i++ {
		names[i] = "m" + string(rune('a'+i%26))
		years[i] = 2012
		codes[i] = 1000 + i
		a := float64(i % 5)
		b := float64((i * 7) % 9)
		x1[i] = a
		x2[i] = b
		tpa[i] = 5 + a + 0.3*b + 0.05*math.Sin(float64(i))
	}
	x2[3] = nil

	f := statatest.File{
		Release: 118,
		Vars: []statatest.Var{
			{Name: "municipality", Type: stata.Str, Width: 4, Values: names},
			{Name: "year", Type: stata.Int, Values: years},
			{Name: "code", Type: stata.Long, Values: codes},
			{Name: "x1", Type: stata.Double, Values: x1},
			{Name: "x2", Type: stata.Double, Values: x2},
			{Name: "tpa", Type: stata.Double, Values: tpa},
		},
	}
	path := filepath.Join(t.TempDir(), "TPA_12_full.dta")
	assert.NilError(t, os.WriteFile(path, f.Bytes(), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(io.Discard)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRegevalPrintsReport(t *testing.T) {
	path := writeFixture(t)

	out, err := execute(t, "--data", path, "--seed", "12345")
	assert.NilError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Assert(t, is.Len(lines, 17), out)
	assert.Assert(t, strings.HasPrefix(lines[0], "explained_variance:  "))
	assert.Assert(t, strings.HasPrefix(lines[6], "RMSE:  "))
	assert.Assert(t, strings.HasPrefix(lines[7], "["))
	assert.Assert(t, strings.HasPrefix(lines[8], "explained_variance:  "))
	// const, x1, x2
	assert.Equal(t, strings.Count(lines[15], ","), 2)
	assert.Equal(t, strings.Count(lines[16], ","), 4)
}

func TestRegevalWritesPlots(t *testing.T) {
	path := writeFixture(t)
	dir := t.TempDir()

	_, err := execute(t, "--data", path, "--plot-dir", dir)
	assert.NilError(t, err)

	entries, err := os.ReadDir(dir)
	assert.NilError(t, err)
	assert.Assert(t, is.Len(entries, 4))
}

func TestRegevalMissingFile(t *testing.T) {
	out, err := execute(t, "--data", filepath.Join(t.TempDir(), "missing.dta"))
	assert.Assert(t, err != nil)
	assert.Assert(t, errors.Is(err, os.ErrNotExist), err.Error())
	assert.Equal(t, out, "")
}

func TestRegevalRejectsArgs(t *testing.T) {
	_, err := execute(t, "extra")
	assert.Assert(t, err != nil)
}

func TestRegevalInvalidLogLevel(t *testing.T) {
	path := writeFixture(t)
	_, err := execute(t, "--data", path, "--log-level", "loud")
	assert.ErrorContains(t, err, "log.level")
}
