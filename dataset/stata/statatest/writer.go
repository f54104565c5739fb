// Package statatest builds in-memory .dta files for tests.
package statatest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tpalab/regeval/dataset/stata"
)

// Missing is an extended missing value: 0 is ".", 1 is ".a", ..., 26 is ".z".
// A nil value is written as ".".
type Missing int

// Var is one column of a file to build.
type Var struct {
	Name   string
	Type   stata.Type
	Width  int   // string width for Str
	Values []any // float64, int, Missing, nil or string
	Label  string
}

// File describes a .dta file to build.
type File struct {
	Release   int // 114, 115, 117, 118 or 119
	BigEndian bool
	Label     string
	Vars      []Var
}

// Bytes encodes f. It panics on an invalid description.
func (f File) Bytes() []byte {
	switch f.Release {
	case 113, 114, 115:
		return f.legacy()
	case 117, 118, 119:
		return f.tagged()
	}
	panic(fmt.Sprintf("statatest: unsupported release %d", f.Release))
}

func (f File) order() binary.ByteOrder {
	if f.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (f File) nobs() int {
	if len(f.Vars) == 0 {
		return 0
	}
	return len(f.Vars[0].Values)
}

type buffer struct {
	bytes.Buffer
	order binary.ByteOrder
}

func (b *buffer) u8(v uint8) { b.WriteByte(v) }

func (b *buffer) u16(v uint16) {
	var p [2]byte
	b.order.PutUint16(p[:], v)
	b.Write(p[:])
}

func (b *buffer) u32(v uint32) {
	var p [4]byte
	b.order.PutUint32(p[:], v)
	b.Write(p[:])
}

func (b *buffer) u64(v uint64) {
	var p [8]byte
	b.order.PutUint64(p[:], v)
	b.Write(p[:])
}

func (b *buffer) fixed(s string, width int) {
	p := make([]byte, width)
	copy(p, s)
	if len(s) >= width {
		p[width-1] = 0
	}
	b.Write(p)
}

func (b *buffer) uintN(v uint64, width int) {
	p := make([]byte, width)
	for i := 0; i < width; i++ {
		shift := uint(8 * i)
		if b.order == binary.BigEndian {
			shift = uint(8 * (width - 1 - i))
		}
		p[i] = byte(v >> shift)
	}
	b.Write(p)
}

func (f File) legacy() []byte {
	b := &buffer{order: f.order()}
	bo := uint8(2)
	if f.BigEndian {
		bo = 1
	}
	b.Write([]byte{uint8(f.Release), bo, 1, 0})
	b.u16(uint16(len(f.Vars)))
	b.u32(uint32(f.nobs()))
	b.fixed(f.Label, 81)
	b.fixed("01 Jan 2021 10:00", 18)

	for _, v := range f.Vars {
		b.u8(legacyCode(v))
	}
	for _, v := range f.Vars {
		b.fixed(v.Name, 33)
	}
	b.Write(make([]byte, 2*(len(f.Vars)+1)))
	fmtLen := 49
	if f.Release == 113 {
		fmtLen = 12
	}
	for _, v := range f.Vars {
		b.fixed(format(v), fmtLen)
	}
	for range f.Vars {
		b.fixed("", 33)
	}
	for _, v := range f.Vars {
		b.fixed(v.Label, 81)
	}
	// one expansion field, then the terminator
	b.u8(1)
	b.u32(4)
	b.WriteString("note")
	b.u8(0)
	b.u32(0)

	f.writeData(b, 0)
	return b.Bytes()
}

func (f File) tagged() []byte {
	b := &buffer{order: f.order()}
	nameLen, fmtLen, lblLen, varLblLen := 129, 57, 129, 321
	if f.Release == 117 {
		nameLen, fmtLen, lblLen, varLblLen = 33, 49, 33, 81
	}

	var offsets [14]uint64
	mark := func(i int) { offsets[i] = uint64(b.Len()) }

	bo := "LSF"
	if f.BigEndian {
		bo = "MSF"
	}
	mark(0)
	fmt.Fprintf(b, "<stata_dta><header><release>%d</release><byteorder>%s</byteorder><K>", f.Release, bo)
	if f.Release == 119 {
		b.u32(uint32(len(f.Vars)))
	} else {
		b.u16(uint16(len(f.Vars)))
	}
	b.WriteString("</K><N>")
	if f.Release == 117 {
		b.u32(uint32(f.nobs()))
	} else {
		b.u64(uint64(f.nobs()))
	}
	b.WriteString("</N><label>")
	if f.Release == 117 {
		b.u8(uint8(len(f.Label)))
	} else {
		b.u16(uint16(len(f.Label)))
	}
	b.WriteString(f.Label)
	b.WriteString("</label><timestamp>")
	b.u8(17)
	b.WriteString("01 Jan 2021 10:00")
	b.WriteString("</timestamp></header>")

	mark(1)
	b.WriteString("<map>")
	mapAt := b.Len()
	b.Write(make([]byte, 14*8))
	b.WriteString("</map>")

	mark(2)
	b.WriteString("<variable_types>")
	for _, v := range f.Vars {
		b.u16(taggedCode(v))
	}
	b.WriteString("</variable_types>")

	mark(3)
	b.WriteString("<varnames>")
	for _, v := range f.Vars {
		b.fixed(v.Name, nameLen)
	}
	b.WriteString("</varnames>")

	mark(4)
	b.WriteString("<sortlist>")
	sortWidth := 2
	if f.Release == 119 {
		sortWidth = 4
	}
	b.Write(make([]byte, sortWidth*(len(f.Vars)+1)))
	b.WriteString("</sortlist>")

	mark(5)
	b.WriteString("<formats>")
	for _, v := range f.Vars {
		b.fixed(format(v), fmtLen)
	}
	b.WriteString("</formats>")

	mark(6)
	b.WriteString("<value_label_names>")
	for range f.Vars {
		b.fixed("", lblLen)
	}
	b.WriteString("</value_label_names>")

	mark(7)
	b.WriteString("<variable_labels>")
	for _, v := range f.Vars {
		b.fixed(v.Label, varLblLen)
	}
	b.WriteString("</variable_labels>")

	mark(8)
	b.WriteString("<characteristics></characteristics>")

	mark(9)
	b.WriteString("<data>")
	f.writeData(b, f.strlVWidth())
	b.WriteString("</data>")

	mark(10)
	b.WriteString("<strls>")
	f.writeStrls(b)
	b.WriteString("</strls>")

	mark(11)
	b.WriteString("<value_labels></value_labels>")
	mark(12)
	b.WriteString("</stata_dta>")
	mark(13)

	out := b.Bytes()
	for i, off := range offsets {
		b.order.PutUint64(out[mapAt+8*i:], off)
	}
	return out
}

func (f File) strlVWidth() int {
	switch f.Release {
	case 117:
		return 4
	case 118:
		return 2
	default:
		return 3
	}
}

func (f File) writeData(b *buffer, strlV int) {
	for row := 0; row < f.nobs(); row++ {
		for vi, v := range f.Vars {
			val := v.Values[row]
			switch v.Type {
			case stata.Str:
				s, _ := val.(string)
				b.fixed(s, v.Width)
			case stata.StrL:
				s, _ := val.(string)
				if s == "" {
					b.Write(make([]byte, 8))
					continue
				}
				b.uintN(uint64(vi+1), strlV)
				b.uintN(uint64(row+1), 8-strlV)
			default:
				writeNumeric(b, v.Type, val)
			}
		}
	}
}

func (f File) writeStrls(b *buffer) {
	for row := 0; row < f.nobs(); row++ {
		for vi, v := range f.Vars {
			if v.Type != stata.StrL {
				continue
			}
			s, _ := v.Values[row].(string)
			if s == "" {
				continue
			}
			b.WriteString("GSO")
			b.u32(uint32(vi + 1))
			if f.Release == 117 {
				b.u32(uint32(row + 1))
			} else {
				b.u64(uint64(row + 1))
			}
			b.u8(130)
			b.u32(uint32(len(s) + 1))
			b.WriteString(s)
			b.u8(0)
		}
	}
}

func writeNumeric(b *buffer, t stata.Type, val any) {
	missing, isMissing := -1, false
	var x float64
	switch v := val.(type) {
	case nil:
		missing, isMissing = 0, true
	case Missing:
		missing, isMissing = int(v), true
	case float64:
		x = v
	case int:
		x = float64(v)
	default:
		panic(fmt.Sprintf("statatest: unsupported numeric value %T", val))
	}

	switch t {
	case stata.Byte:
		if isMissing {
			b.u8(uint8(101 + missing))
			return
		}
		b.u8(uint8(int8(x)))
	case stata.Int:
		if isMissing {
			b.u16(uint16(32741 + missing))
			return
		}
		b.u16(uint16(int16(x)))
	case stata.Long:
		if isMissing {
			b.u32(uint32(2147483621 + missing))
			return
		}
		b.u32(uint32(int32(x)))
	case stata.Float:
		if isMissing {
			b.u32(0x7f000000 + uint32(missing)*0x800)
			return
		}
		b.u32(math.Float32bits(float32(x)))
	case stata.Double:
		if isMissing {
			b.u64(0x7fe0000000000000 + uint64(missing)*0x1000000000)
			return
		}
		b.u64(math.Float64bits(x))
	}
}

func legacyCode(v Var) uint8 {
	switch v.Type {
	case stata.Byte:
		return 251
	case stata.Int:
		return 252
	case stata.Long:
		return 253
	case stata.Float:
		return 254
	case stata.Double:
		return 255
	case stata.Str:
		return uint8(v.Width)
	}
	panic(fmt.Sprintf("statatest: type %s not available before release 117", v.Type))
}

func taggedCode(v Var) uint16 {
	switch v.Type {
	case stata.Byte:
		return 65530
	case stata.Int:
		return 65529
	case stata.Long:
		return 65528
	case stata.Float:
		return 65527
	case stata.Double:
		return 65526
	case stata.StrL:
		return 32768
	case stata.Str:
		return uint16(v.Width)
	}
	panic(fmt.Sprintf("statatest: unknown type %s", v.Type))
}

func format(v Var) string {
	switch v.Type {
	case stata.Str:
		return fmt.Sprintf("%%%ds", v.Width)
	case stata.StrL:
		return "%9s"
	case stata.Float, stata.Double:
		return "%9.0g"
	default:
		return "%8.0g"
	}
}
