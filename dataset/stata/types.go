// Package stata reads Stata .dta files.
//
// Supported releases are 113, 114 and 115 (binary header, Stata 8 to 12) and
// 117, 118 and 119 (tagged header, Stata 13 and later). Value labels and
// characteristics are skipped.
package stata

import (
	"fmt"
	"math"
)

// Type is the storage type of a variable.
type Type uint8

const (
	Byte Type = iota + 1
	Int
	Long
	Float
	Double
	Str
	StrL
)

func (t Type) String() string {
	switch t {
	case Byte:
		return "byte"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case Str:
		return "str"
	case StrL:
		return "strL"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// IsNumeric reports whether values of t decode to float64.
func (t Type) IsNumeric() bool {
	return t >= Byte && t <= Double
}

// Variable describes one column of a .dta file.
type Variable struct {
	Name       string
	Type       Type
	Width      int // bytes occupied in a data record
	Format     string
	ValueLabel string
	Label      string
}

// Header holds the file-level metadata.
type Header struct {
	Release   int
	BigEndian bool
	NVars     int
	NObs      int
	Label     string
	Timestamp string
}

// Largest non-missing values per storage type. Anything above is one of the
// 27 missing codes (., .a, ..., .z).
const (
	maxByte  = 100
	maxInt   = 32740
	maxLong  = 2147483620
	maxFloat = 0x7effffff         // bits of 1.701e+38
	maxDbl   = 0x7fdfffffffffffff // bits of 8.988e+307
)

var (
	maxFloatValue  = math.Float32frombits(maxFloat)
	maxDoubleValue = math.Float64frombits(maxDbl)
)

// tagged-format type codes
const (
	codeStrL   = 32768
	codeDouble = 65526
	codeFloat  = 65527
	codeLong   = 65528
	codeInt    = 65529
	codeByte   = 65530
)

// typeFromTagged decodes a 117+ variable type code.
func typeFromTagged(code uint16) (Type, int, error) {
	switch {
	case code >= 1 && code <= 2045:
		return Str, int(code), nil
	case code == codeStrL:
		return StrL, 8, nil
	case code == codeDouble:
		return Double, 8, nil
	case code == codeFloat:
		return Float, 4, nil
	case code == codeLong:
		return Long, 4, nil
	case code == codeInt:
		return Int, 2, nil
	case code == codeByte:
		return Byte, 1, nil
	}
	return 0, 0, fmt.Errorf("unknown variable type code %d", code)
}

// typeFromLegacy decodes a 113-115 variable type byte.
func typeFromLegacy(code uint8) (Type, int, error) {
	switch {
	case code >= 1 && code <= 244:
		return Str, int(code), nil
	case code == 251:
		return Byte, 1, nil
	case code == 252:
		return Int, 2, nil
	case code == 253:
		return Long, 4, nil
	case code == 254:
		return Float, 4, nil
	case code == 255:
		return Double, 8, nil
	}
	return 0, 0, fmt.Errorf("unknown variable type byte %d", code)
}
