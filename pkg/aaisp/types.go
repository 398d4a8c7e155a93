package aaisp

import (
	domline "github.com/kailas-cloud/aaisp/internal/domain/line"
	"github.com/kailas-cloud/aaisp/internal/domain/unit"
)

// Format selects the unit of a converted value.
type Format = unit.Format

// Format constants.
const (
	FormatRaw    = unit.Raw
	FormatMBytes = unit.MBytes
	FormatGBytes = unit.GBytes
	FormatMBits  = unit.MBits
	FormatGBits  = unit.GBits
)

// DefaultPrecision is the number of decimal places accessors usually round to.
const DefaultPrecision = unit.DefaultPrecision

// ParseFormat parses a unit name: raw, mb, gb, mbit or gbit.
func ParseFormat(s string) (Format, error) { return unit.ParseFormat(s) }

// Convert converts a raw count to f, rounded to precision decimal places.
func Convert(n int64, f Format, precision int) float64 { return unit.Convert(n, f, precision) }

// Line is a snapshot of one broadband service.
// Numeric fields are zero when CHAOS does not report them; check Attributes to
// tell a missing value from a real zero.
type Line struct {
	ServiceID      int
	Login          string
	TxRate         int64 // download, bits per second
	RxRate         int64 // upload, bits per second
	QuotaMonthly   int64 // bytes
	QuotaRemaining int64 // bytes
	Attributes     map[string]string
}

// QuotaUsed returns QuotaMonthly minus QuotaRemaining.
func (l Line) QuotaUsed() int64 { return l.QuotaMonthly - l.QuotaRemaining }

func fromInternalLine(l domline.Line) Line {
	login, _ := l.Attr(domline.KeyLogin)
	tx, _ := l.TxRate()
	rx, _ := l.RxRate()
	monthly, _ := l.QuotaMonthly()
	remaining, _ := l.QuotaRemaining()
	return Line{
		ServiceID:      l.ID(),
		Login:          login,
		TxRate:         tx,
		RxRate:         rx,
		QuotaMonthly:   monthly,
		QuotaRemaining: remaining,
		Attributes:     l.Attrs(),
	}
}

func fromInternalLines(ls []domline.Line) []Line {
	out := make([]Line, len(ls))
	for i, l := range ls {
		out[i] = fromInternalLine(l)
	}
	return out
}
