// Package unit converts raw byte and bit counts into human units.
package unit

import (
	"fmt"
	"math"
	"strings"
)

// Format selects the target unit of a conversion.
type Format int

// Format constants. Values match the numeric flags of the CHAOS client API.
const (
	Raw Format = iota
	MBytes
	GBytes
	MBits
	GBits
)

// DefaultPrecision is the number of decimal places used when none is given.
const DefaultPrecision = 1

var names = map[Format]string{
	Raw:    "raw",
	MBytes: "mb",
	GBytes: "gb",
	MBits:  "mbit",
	GBits:  "gbit",
}

var suffixes = map[Format]string{
	Raw:    "",
	MBytes: "MB",
	GBytes: "GB",
	MBits:  "Mbit/s",
	GBits:  "Gbit/s",
}

// Divisor returns the number of raw units in one target unit.
// Unknown formats divide by 1.
func (f Format) Divisor() float64 {
	switch f {
	case MBytes, MBits:
		return 1e6
	case GBytes, GBits:
		return 1e9
	default:
		return 1
	}
}

// String returns the flag name of the format ("raw", "mb", ...).
func (f Format) String() string {
	if n, ok := names[f]; ok {
		return n
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Suffix returns the display suffix ("GB", "Mbit/s", ...). Raw has none.
func (f Format) Suffix() string { return suffixes[f] }

// ParseFormat parses a flag name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, n := range names {
		if n == s {
			return f, nil
		}
	}
	return Raw, fmt.Errorf("unknown unit format %q (want raw, mb, gb, mbit or gbit)", s)
}

// Convert divides n by the unit divisor and rounds to at most precision
// decimal places, half to even. Negative precision rounds left of the point.
func Convert(n int64, f Format, precision int) float64 {
	return Round(float64(n)/f.Divisor(), precision)
}

// Round rounds v to precision decimal places, half to even.
func Round(v float64, precision int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if precision < 0 {
		scale := math.Pow10(-precision)
		return math.RoundToEven(v/scale) * scale
	}
	scale := math.Pow10(precision)
	scaled := v * scale
	if math.IsInf(scaled, 0) {
		return v
	}
	return math.RoundToEven(scaled) / scale
}
