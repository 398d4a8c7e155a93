package line

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/aaisp/internal/domain"
)

func TestDecode(t *testing.T) {
	raw := json.RawMessage(`{
		"ID": "12345",
		"login": "user@a.1",
		"tx_rate": "80000000",
		"rx_rate": 20000000,
		"quota_monthly": "1000000000000",
		"quota_remaining": 250000000000,
		"postcode": null,
		"extra": {"nested": true}
	}`)

	l, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.ID() != 12345 {
		t.Errorf("ID = %d, want 12345", l.ID())
	}

	want := map[string]string{
		"ID":              "12345",
		"login":           "user@a.1",
		"tx_rate":         "80000000",
		"rx_rate":         "20000000",
		"quota_monthly":   "1000000000000",
		"quota_remaining": "250000000000",
	}
	if diff := cmp.Diff(want, l.Attrs()); diff != "" {
		t.Errorf("attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not an object", `["x"]`},
		{"missing id", `{"login": "a"}`},
		{"empty id", `{"ID": ""}`},
		{"non numeric id", `{"ID": "abc"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(json.RawMessage(tc.raw))
			if !errors.Is(err, domain.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestLine_Int(t *testing.T) {
	l := New(1, map[string]string{
		"a": "42",
		"b": "1e9",
		"c": "12.5",
		"d": "lots",
		"e": "",
		"f": "9223372036854775808",
		"g": "-9223372036854775808",
		"h": "1e19",
	})

	if n, err := l.Int("a"); err != nil || n != 42 {
		t.Errorf("Int(a) = %d, %v; want 42", n, err)
	}
	if n, err := l.Int("b"); err != nil || n != 1_000_000_000 {
		t.Errorf("Int(b) = %d, %v; want 1e9", n, err)
	}
	if _, err := l.Int("c"); !errors.Is(err, domain.ErrInvalidAttribute) {
		t.Errorf("Int(c): expected ErrInvalidAttribute, got %v", err)
	}
	if _, err := l.Int("d"); !errors.Is(err, domain.ErrInvalidAttribute) {
		t.Errorf("Int(d): expected ErrInvalidAttribute, got %v", err)
	}
	if _, err := l.Int("e"); !errors.Is(err, domain.ErrAttributeMissing) {
		t.Errorf("Int(e): expected ErrAttributeMissing, got %v", err)
	}
	// 2^63 переполняет int64, -2^63 ещё помещается
	if n, err := l.Int("f"); !errors.Is(err, domain.ErrInvalidAttribute) {
		t.Errorf("Int(f) = %d, %v; expected ErrInvalidAttribute", n, err)
	}
	if n, err := l.Int("g"); err != nil || n != math.MinInt64 {
		t.Errorf("Int(g) = %d, %v; want MinInt64", n, err)
	}
	if n, err := l.Int("h"); !errors.Is(err, domain.ErrInvalidAttribute) {
		t.Errorf("Int(h) = %d, %v; expected ErrInvalidAttribute", n, err)
	}
	if _, err := l.Int("missing"); !errors.Is(err, domain.ErrAttributeMissing) {
		t.Errorf("Int(missing): expected ErrAttributeMissing, got %v", err)
	}
}

func TestLine_Accessors(t *testing.T) {
	l := New(7, map[string]string{
		KeyLogin:          "me@a.1",
		KeyTxRate:         "80000000",
		KeyRxRate:         "20000000",
		KeyQuotaMonthly:   "100000000000",
		KeyQuotaRemaining: "40000000000",
	})

	login, err := l.Login()
	if err != nil || login != "me@a.1" {
		t.Errorf("Login = %q, %v", login, err)
	}
	tx, _ := l.TxRate()
	if tx != 80_000_000 {
		t.Errorf("TxRate = %d", tx)
	}
	rx, _ := l.RxRate()
	if rx != 20_000_000 {
		t.Errorf("RxRate = %d", rx)
	}
	used, err := l.QuotaUsed()
	if err != nil {
		t.Fatalf("QuotaUsed: %v", err)
	}
	if used != 60_000_000_000 {
		t.Errorf("QuotaUsed = %d, want 60000000000", used)
	}
	if v, _ := l.Attr(KeyID); v != "7" {
		t.Errorf("ID attr = %q, want 7", v)
	}
}

func TestLine_QuotaUsed_MissingMonthly(t *testing.T) {
	l := New(7, map[string]string{KeyQuotaRemaining: "1"})
	if _, err := l.QuotaUsed(); !errors.Is(err, domain.ErrAttributeMissing) {
		t.Errorf("expected ErrAttributeMissing, got %v", err)
	}
}

func TestLine_Login_Missing(t *testing.T) {
	l := New(7, nil)
	if _, err := l.Login(); !errors.Is(err, domain.ErrAttributeMissing) {
		t.Errorf("expected ErrAttributeMissing, got %v", err)
	}
}

func TestNew_CopiesAttrs(t *testing.T) {
	attrs := map[string]string{KeyLogin: "a"}
	l := New(1, attrs)
	attrs[KeyLogin] = "b"
	if v, _ := l.Attr(KeyLogin); v != "a" {
		t.Errorf("Line shares attribute map with caller")
	}
}
