package dataset

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tpalab/regeval/dataset/stata"
	"github.com/tpalab/regeval/pkg/errors"
	"github.com/tpalab/regeval/pkg/log"
	"github.com/ulikunitz/xz"
)

// Load reads a Stata .dta file. Files ending in ".xz" are decompressed first.
func Load(path string) (*Table, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	var (
		ra   io.ReaderAt
		size int64
	)
	if strings.HasSuffix(path, ".xz") {
		zr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "open xz stream %s", path)
		}
		raw, err := io.ReadAll(zr)
		if err != nil {
			return nil, errors.Wrapf(err, "decompress %s", path)
		}
		ra, size = bytes.NewReader(raw), int64(len(raw))
	} else {
		st, err := f.Stat()
		if err != nil {
			return nil, errors.Wrapf(err, "stat dataset %s", path)
		}
		ra, size = f, st.Size()
	}

	r, err := stata.NewReader(ra, size)
	if err != nil {
		return nil, errors.Wrapf(err, "read dataset %s", path)
	}
	t, err := FromStata(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read dataset %s", path)
	}

	log.GetLogger().Debug("dataset loaded",
		log.ComponentKey, "dataset",
		log.OperationKey, log.OperationLoad,
		log.SourceKey, path,
		log.FormatKey, r.Header().Release,
		log.SamplesKey, t.Len(),
		log.FeaturesKey, t.Width(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return t, nil
}

// FromStata decodes all columns of r into a Table.
func FromStata(r *stata.Reader) (*Table, error) {
	cols, err := r.ReadColumns()
	if err != nil {
		return nil, err
	}

	out := make([]*Column, len(cols))
	for i, c := range cols {
		if c.Type.IsNumeric() {
			out[i] = NumericColumn(c.Name, c.Float, c.Missing)
		} else {
			out[i] = StringColumn(c.Name, c.Str)
		}
	}
	return NewTable(out...)
}
