package stata

import (
	"math"

	"github.com/tpalab/regeval/pkg/errors"
)

// Column holds the decoded values of one variable.
// Numeric variables fill Float and Missing; string variables fill Str.
type Column struct {
	Variable
	Float   []float64
	Missing []bool
	Str     []string
}

// ReadColumns decodes every observation. Numeric values at or above the
// type's missing threshold are flagged in Missing and stored as NaN.
// Strings are never missing.
func (r *Reader) ReadColumns() ([]Column, error) {
	nobs := r.header.NObs
	cols := make([]Column, len(r.vars))
	hasStrL := false
	for i, v := range r.vars {
		cols[i].Variable = v
		if v.Type.IsNumeric() {
			cols[i].Float = make([]float64, nobs)
			cols[i].Missing = make([]bool, nobs)
		} else {
			cols[i].Str = make([]string, nobs)
		}
		if v.Type == StrL {
			hasStrL = true
		}
	}

	var strls map[strlKey]string
	if hasStrL {
		var err error
		if strls, err = r.readStrls(); err != nil {
			return nil, err
		}
	}

	c := newCursor(r.ra, r.dataStart, r.size, r.order)
	record := make([]byte, r.recordWidth())
	for row := 0; row < nobs; row++ {
		c.full(record)
		if c.err != nil {
			return nil, errors.Wrapf(c.err, "read observation %d", row+1)
		}

		off := 0
		for i := range cols {
			col := &cols[i]
			cell := record[off : off+col.Width]
			off += col.Width

			switch col.Type {
			case Str:
				col.Str[row] = r.decode(trimNUL(cell))
			case StrL:
				key := r.strlKey(cell)
				if key == (strlKey{}) {
					continue
				}
				s, ok := strls[key]
				if !ok {
					return nil, errors.Wrapf(errors.ErrUnsupportedFormat,
						"observation %d, variable %s: strL (%d,%d) not found", row+1, col.Name, key.v, key.o)
				}
				col.Str[row] = s
			default:
				v, missing := r.numeric(col.Type, cell)
				if missing {
					col.Missing[row] = true
					v = math.NaN()
				}
				col.Float[row] = v
			}
		}
	}

	return cols, nil
}

// numeric decodes a numeric cell and reports whether it holds a missing code.
func (r *Reader) numeric(t Type, cell []byte) (float64, bool) {
	switch t {
	case Byte:
		v := int8(cell[0])
		return float64(v), v > maxByte
	case Int:
		v := int16(r.order.Uint16(cell))
		return float64(v), v > maxInt
	case Long:
		v := int32(r.order.Uint32(cell))
		return float64(v), v > maxLong
	case Float:
		v := math.Float32frombits(r.order.Uint32(cell))
		return float64(v), v > maxFloatValue || math.IsNaN(float64(v))
	default:
		v := math.Float64frombits(r.order.Uint64(cell))
		return v, v > maxDoubleValue || math.IsNaN(v)
	}
}

type strlKey struct {
	v uint64
	o uint64
}

// strlKey decodes the (variable, observation) pointer of a strL cell.
func (r *Reader) strlKey(cell []byte) strlKey {
	vw := r.layout.strlV
	big := r.header.BigEndian
	return strlKey{v: uintN(cell[:vw], big), o: uintN(cell[vw:8], big)}
}

// readStrls loads every GSO entry of the strls section.
func (r *Reader) readStrls() (map[strlKey]string, error) {
	c := r.section(r.strlStart, "<strls>")
	out := make(map[strlKey]string)
	for c.err == nil {
		tag := c.bytes(3)
		if c.err != nil {
			break
		}
		if string(tag) != "GSO" {
			if string(tag) == "</s" {
				c.expect("trls>")
				break
			}
			return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "strls: unexpected tag %q", tag)
		}

		v := uint64(c.u32())
		o := c.uint(r.layout.gsoOWidth)
		typ := c.u8()
		n := c.u32()
		if int64(n) > r.size {
			return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "strls: entry length %d exceeds file size", n)
		}
		payload := c.bytes(int(n))
		if typ == 130 { // ASCII, NUL terminated
			payload = trimNUL(payload)
			out[strlKey{v: v, o: o}] = r.decode(payload)
		} else {
			out[strlKey{v: v, o: o}] = string(payload)
		}
	}
	if c.err != nil {
		return nil, errors.Wrap(c.err, "read strls")
	}
	return out, nil
}
