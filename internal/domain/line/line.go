package line

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/aaisp/internal/domain"
)

// Well-known CHAOS info attribute keys.
const (
	KeyID             = "ID"
	KeyLogin          = "login"
	KeyTxRate         = "tx_rate"
	KeyRxRate         = "rx_rate"
	KeyQuotaMonthly   = "quota_monthly"
	KeyQuotaRemaining = "quota_remaining"
)

// Line is one broadband service as reported by the CHAOS info command.
// Attribute values are kept as text: JSON strings unquoted, numbers verbatim.
type Line struct {
	id    int
	attrs map[string]string
}

// New creates a Line from an ID and a set of attributes.
func New(id int, attrs map[string]string) Line {
	cp := make(map[string]string, len(attrs)+1)
	for k, v := range attrs {
		cp[k] = v
	}
	cp[KeyID] = strconv.Itoa(id)
	return Line{id: id, attrs: cp}
}

// Decode builds a Line from one raw JSON object of the info array.
func Decode(raw json.RawMessage) (Line, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Line{}, fmt.Errorf("decode service: %w", domain.ErrMalformedResponse)
	}

	attrs := make(map[string]string, len(fields))
	for k, v := range fields {
		s, ok := scalarText(v)
		if !ok {
			continue
		}
		attrs[k] = s
	}

	idText, ok := attrs[KeyID]
	if !ok || idText == "" {
		return Line{}, fmt.Errorf("service without %s: %w", KeyID, domain.ErrMalformedResponse)
	}
	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil {
		return Line{}, fmt.Errorf("service %s %q is not an integer: %w", KeyID, idText, domain.ErrMalformedResponse)
	}

	return Line{id: id, attrs: attrs}, nil
}

// scalarText renders a JSON scalar as text. Null, objects and arrays are skipped.
func scalarText(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "", false
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[', 'n':
		return "", false
	default:
		return string(v), true
	}
}

// ID returns the numeric service ID.
func (l Line) ID() int { return l.id }

// Attr returns an attribute value. Empty values are reported as missing.
func (l Line) Attr(key string) (string, bool) {
	v, ok := l.attrs[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Attrs returns a copy of all attributes.
func (l Line) Attrs() map[string]string {
	cp := make(map[string]string, len(l.attrs))
	for k, v := range l.attrs {
		cp[k] = v
	}
	return cp
}

// Int parses an attribute as an integer. Integral floats ("12.0", "1e9") are accepted.
func (l Line) Int(key string) (int64, error) {
	v, ok := l.Attr(key)
	if !ok {
		return 0, fmt.Errorf("service %d: %s: %w", l.id, key, domain.ErrAttributeMissing)
	}
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || f >= 0x1p63 || f < -0x1p63 {
		return 0, fmt.Errorf("service %d: %s=%q: %w", l.id, key, v, domain.ErrInvalidAttribute)
	}
	return int64(f), nil
}

// Login returns the line's login identifier.
func (l Line) Login() (string, error) {
	v, ok := l.Attr(KeyLogin)
	if !ok {
		return "", fmt.Errorf("service %d: %s: %w", l.id, KeyLogin, domain.ErrAttributeMissing)
	}
	return v, nil
}

// TxRate returns the download rate in bits per second.
func (l Line) TxRate() (int64, error) { return l.Int(KeyTxRate) }

// RxRate returns the upload rate in bits per second.
func (l Line) RxRate() (int64, error) { return l.Int(KeyRxRate) }

// QuotaMonthly returns the monthly quota in bytes.
func (l Line) QuotaMonthly() (int64, error) { return l.Int(KeyQuotaMonthly) }

// QuotaRemaining returns the quota left this month in bytes.
func (l Line) QuotaRemaining() (int64, error) { return l.Int(KeyQuotaRemaining) }

// QuotaUsed returns monthly quota minus remaining quota, in bytes.
func (l Line) QuotaUsed() (int64, error) {
	remaining, err := l.QuotaRemaining()
	if err != nil {
		return 0, err
	}
	total, err := l.QuotaMonthly()
	if err != nil {
		return 0, err
	}
	return total - remaining, nil
}
