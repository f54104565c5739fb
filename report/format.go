package report

import (
	"math"
	"strconv"
	"strings"
)

// Round rounds x to the given number of decimal places, resolving ties on
// the exact binary value the way Python's round does.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	s := strconv.FormatFloat(x, 'f', places, 64)
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return x
	}
	return r
}

// FormatFloat renders x as the shortest string that round-trips, using
// fixed notation for decimal exponents in [-4, 16) and scientific notation
// otherwise. Integral values keep a trailing ".0".
func FormatFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return "nan"
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	}
	if x == 0 {
		if math.Signbit(x) {
			return "-0.0"
		}
		return "0.0"
	}

	exp := decimalExponent(x)
	if exp < -4 || exp >= 16 {
		return strconv.FormatFloat(x, 'e', -1, 64)
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// FormatList renders values as "[a, b, c]".
func FormatList(values []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(FormatFloat(v))
	}
	b.WriteByte(']')
	return b.String()
}

// decimalExponent returns the exponent of x in shortest scientific notation.
func decimalExponent(x float64) int {
	s := strconv.FormatFloat(x, 'e', -1, 64)
	i := strings.IndexByte(s, 'e')
	exp, _ := strconv.Atoi(s[i+1:])
	return exp
}
