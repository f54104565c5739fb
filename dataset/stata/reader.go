package stata

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/tpalab/regeval/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// layout holds the release-dependent field widths.
type layout struct {
	nameLen     int
	fmtLen      int
	lblNameLen  int
	varLabelLen int
	kWidth      int // tagged only
	nWidth      int // tagged only
	labelPrefix int // tagged only
	strlV       int // bytes of v in a strL data cell
	gsoOWidth   int
	utf8        bool
}

func layoutFor(release int) (layout, bool) {
	switch release {
	case 113:
		return layout{nameLen: 33, fmtLen: 12, lblNameLen: 33, varLabelLen: 81}, true
	case 114, 115:
		return layout{nameLen: 33, fmtLen: 49, lblNameLen: 33, varLabelLen: 81}, true
	case 117:
		return layout{nameLen: 33, fmtLen: 49, lblNameLen: 33, varLabelLen: 81,
			kWidth: 2, nWidth: 4, labelPrefix: 1, strlV: 4, gsoOWidth: 4}, true
	case 118:
		return layout{nameLen: 129, fmtLen: 57, lblNameLen: 129, varLabelLen: 321,
			kWidth: 2, nWidth: 8, labelPrefix: 2, strlV: 2, gsoOWidth: 8, utf8: true}, true
	case 119:
		return layout{nameLen: 129, fmtLen: 57, lblNameLen: 129, varLabelLen: 321,
			kWidth: 4, nWidth: 8, labelPrefix: 2, strlV: 3, gsoOWidth: 8, utf8: true}, true
	}
	return layout{}, false
}

// map entries of a tagged file
const (
	mapVariableTypes   = 2
	mapVarnames        = 3
	mapFormats         = 5
	mapValueLabelNames = 6
	mapVariableLabels  = 7
	mapData            = 9
	mapStrls           = 10
	mapEntries         = 14
)

// Reader decodes a .dta file held in an io.ReaderAt.
type Reader struct {
	ra     io.ReaderAt
	size   int64
	order  binary.ByteOrder
	layout layout

	header    Header
	vars      []Variable
	dataStart int64
	strlStart int64
}

// NewReader parses the header and variable descriptors. Data is decoded
// later by ReadColumns.
func NewReader(ra io.ReaderAt, size int64) (*Reader, error) {
	if size < 1 {
		return nil, errors.Wrap(errors.ErrUnsupportedFormat, "empty file")
	}
	var first [1]byte
	if _, err := ra.ReadAt(first[:], 0); err != nil {
		return nil, errors.Wrap(err, "read release byte")
	}

	r := &Reader{ra: ra, size: size}
	var err error
	if first[0] == '<' {
		err = r.readTaggedHeader()
	} else {
		err = r.readLegacyHeader(int(first[0]))
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Header returns the file metadata.
func (r *Reader) Header() Header {
	return r.header
}

// Variables returns the variable descriptors in file order.
func (r *Reader) Variables() []Variable {
	out := make([]Variable, len(r.vars))
	copy(out, r.vars)
	return out
}

func (r *Reader) readLegacyHeader(release int) error {
	lay, ok := layoutFor(release)
	if !ok || release > 115 {
		return errors.Wrapf(errors.ErrUnsupportedFormat, "stata release %d", release)
	}
	r.layout = lay
	r.header.Release = release

	var head [4]byte
	if _, err := r.ra.ReadAt(head[:], 0); err != nil {
		return errors.Wrap(err, "read header")
	}
	switch head[1] {
	case 1:
		r.order, r.header.BigEndian = binary.BigEndian, true
	case 2:
		r.order = binary.LittleEndian
	default:
		return errors.Wrapf(errors.ErrUnsupportedFormat, "byte order flag %d", head[1])
	}

	c := newCursor(r.ra, 4, r.size, r.order)
	nvar := int(c.u16())
	nobs := int(c.u32())
	r.header.Label = r.decode(c.cstring(81))
	r.header.Timestamp = r.decode(c.cstring(18))
	if c.err != nil {
		return errors.Wrap(c.err, "read header")
	}
	r.header.NVars, r.header.NObs = nvar, nobs

	r.vars = make([]Variable, nvar)
	for i := range r.vars {
		code := c.u8()
		if c.err != nil {
			return errors.Wrap(c.err, "read variable types")
		}
		t, w, err := typeFromLegacy(code)
		if err != nil {
			return errors.Wrapf(errors.ErrUnsupportedFormat, "variable %d: %v", i, err)
		}
		r.vars[i].Type, r.vars[i].Width = t, w
	}
	for i := range r.vars {
		r.vars[i].Name = r.decode(c.cstring(lay.nameLen))
	}
	c.skip(int64(2 * (nvar + 1))) // sort list
	for i := range r.vars {
		r.vars[i].Format = r.decode(c.cstring(lay.fmtLen))
	}
	for i := range r.vars {
		r.vars[i].ValueLabel = r.decode(c.cstring(lay.lblNameLen))
	}
	for i := range r.vars {
		r.vars[i].Label = r.decode(c.cstring(lay.varLabelLen))
	}

	// expansion fields end with a zero type and zero length
	for c.err == nil {
		typ := c.u8()
		n := c.u32()
		if typ == 0 && n == 0 {
			break
		}
		c.skip(int64(n))
	}
	if c.err != nil {
		return errors.Wrap(c.err, "read descriptors")
	}

	r.dataStart = c.off
	return r.checkDataSize()
}

func (r *Reader) readTaggedHeader() error {
	// release and byte order come before any multi-byte field
	c := newCursor(r.ra, 0, r.size, binary.LittleEndian)
	c.expect("<stata_dta><header><release>")
	rel := c.bytes(3)
	c.expect("</release><byteorder>")
	bo := string(c.bytes(3))
	c.expect("</byteorder>")
	if c.err != nil {
		return errors.Wrap(errors.ErrUnsupportedFormat, c.err.Error())
	}

	release, err := strconv.Atoi(string(rel))
	if err != nil {
		return errors.Wrapf(errors.ErrUnsupportedFormat, "release %q", rel)
	}
	lay, ok := layoutFor(release)
	if !ok || release < 117 {
		return errors.Wrapf(errors.ErrUnsupportedFormat, "stata release %d", release)
	}
	r.layout = lay
	r.header.Release = release

	switch bo {
	case "MSF":
		r.order, r.header.BigEndian = binary.BigEndian, true
	case "LSF":
		r.order = binary.LittleEndian
	default:
		return errors.Wrapf(errors.ErrUnsupportedFormat, "byte order %q", bo)
	}
	c.order = r.order

	c.expect("<K>")
	nvar := int(c.uint(lay.kWidth))
	c.expect("</K><N>")
	nobs := c.uint(lay.nWidth)
	c.expect("</N><label>")
	labelLen := int(c.uint(lay.labelPrefix))
	r.header.Label = r.decode(c.bytes(labelLen))
	c.expect("</label><timestamp>")
	tsLen := int(c.u8())
	r.header.Timestamp = r.decode(c.bytes(tsLen))
	c.expect("</timestamp></header><map>")
	var offsets [mapEntries]int64
	for i := range offsets {
		offsets[i] = int64(c.u64())
	}
	c.expect("</map>")
	if c.err != nil {
		return errors.Wrap(c.err, "read header")
	}
	if nobs > uint64(r.size) {
		return errors.Wrapf(errors.ErrUnsupportedFormat, "observation count %d exceeds file size", nobs)
	}
	r.header.NVars, r.header.NObs = nvar, int(nobs)

	for i, off := range offsets {
		if off < 0 || off > r.size {
			return errors.Wrapf(errors.ErrUnsupportedFormat, "map entry %d out of range: %d", i, off)
		}
	}

	r.vars = make([]Variable, nvar)

	c = r.section(offsets[mapVariableTypes], "<variable_types>")
	for i := range r.vars {
		code := c.u16()
		if c.err != nil {
			return errors.Wrap(c.err, "read variable types")
		}
		t, w, err := typeFromTagged(code)
		if err != nil {
			return errors.Wrapf(errors.ErrUnsupportedFormat, "variable %d: %v", i, err)
		}
		r.vars[i].Type, r.vars[i].Width = t, w
	}
	if c.err != nil {
		return errors.Wrap(c.err, "read variable types")
	}

	fields := []struct {
		entry int
		tag   string
		width int
		set   func(v *Variable, s string)
	}{
		{mapVarnames, "<varnames>", lay.nameLen, func(v *Variable, s string) { v.Name = s }},
		{mapFormats, "<formats>", lay.fmtLen, func(v *Variable, s string) { v.Format = s }},
		{mapValueLabelNames, "<value_label_names>", lay.lblNameLen, func(v *Variable, s string) { v.ValueLabel = s }},
		{mapVariableLabels, "<variable_labels>", lay.varLabelLen, func(v *Variable, s string) { v.Label = s }},
	}
	for _, f := range fields {
		c = r.section(offsets[f.entry], f.tag)
		for i := range r.vars {
			f.set(&r.vars[i], r.decode(c.cstring(f.width)))
		}
		if c.err != nil {
			return errors.Wrapf(c.err, "read %s", f.tag)
		}
	}

	r.dataStart = offsets[mapData] + int64(len("<data>"))
	r.strlStart = offsets[mapStrls]
	c = r.section(offsets[mapData], "<data>")
	if c.err != nil {
		return errors.Wrap(c.err, "read data")
	}
	return r.checkDataSize()
}

func (r *Reader) section(off int64, tag string) *cursor {
	c := newCursor(r.ra, off, r.size, r.order)
	c.expect(tag)
	return c
}

func (r *Reader) recordWidth() int {
	w := 0
	for _, v := range r.vars {
		w += v.Width
	}
	return w
}

func (r *Reader) checkDataSize() error {
	need := int64(r.recordWidth()) * int64(r.header.NObs)
	if r.dataStart+need > r.size {
		return errors.Wrapf(errors.ErrUnsupportedFormat,
			"data section needs %d bytes at offset %d, file has %d", need, r.dataStart, r.size)
	}
	return nil
}

// decode converts file text to UTF-8. Releases before 118 store Latin-1.
func (r *Reader) decode(p []byte) string {
	if r.layout.utf8 || isASCII(p) {
		if utf8.Valid(p) {
			return string(p)
		}
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(p)
	if err != nil {
		return string(p)
	}
	return string(s)
}

func isASCII(p []byte) bool {
	for _, b := range p {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

func (r *Reader) String() string {
	return fmt.Sprintf("stata release %d: %d variables, %d observations", r.header.Release, r.header.NVars, r.header.NObs)
}
