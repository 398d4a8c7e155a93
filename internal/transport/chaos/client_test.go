package chaos

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/aaisp/internal/domain"
	"github.com/kailas-cloud/aaisp/internal/metrics"
)

func TestMain(m *testing.M) {
	if err := metrics.RegisterChaosMetrics(prometheus.DefaultRegisterer); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const infoBody = `{"info":[
	{"ID":"12345","login":"home@a.1","tx_rate":"80000000","rx_rate":"20000000",
	 "quota_monthly":"1000000000000","quota_remaining":"250000000000"},
	{"ID":"67890","login":"office@a.1","tx_rate":1000000000,"rx_rate":1000000000}
]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(Config{
		BaseURL:  server.URL + "/broadband/",
		Username: "user",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_MissingCredentials(t *testing.T) {
	tests := []Config{
		{Username: "", Password: "p"},
		{Username: "u", Password: ""},
		{},
	}
	for _, cfg := range tests {
		_, err := NewClient(cfg)
		if !errors.Is(err, domain.ErrCredentialsMissing) {
			t.Errorf("NewClient(%+v): expected ErrCredentialsMissing, got %v", cfg, err)
		}
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "chaos/broadband", Username: "u", Password: "p"})
	if err == nil {
		t.Fatal("expected error for relative base url")
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c, err := NewClient(Config{Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := c.commandURL(CommandInfo, nil)
	if !strings.HasPrefix(got, "https://chaos2.aa.net.uk/broadband/info?") {
		t.Errorf("commandURL = %q", got)
	}
	if c.Username() != "u" {
		t.Errorf("Username = %q, want u", c.Username())
	}
}

func TestClient_Info(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/broadband/info" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("control_login"); got != "user" {
			t.Errorf("control_login = %q, want user", got)
		}
		if got := r.URL.Query().Get("control_password"); got != "secret" {
			t.Errorf("control_password = %q, want secret", got)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "aaisp/") {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(infoBody))
	})

	lines, err := c.Info(context.Background())
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].ID() != 12345 || lines[1].ID() != 67890 {
		t.Errorf("ids = %d, %d", lines[0].ID(), lines[1].ID())
	}
	tx, err := lines[1].TxRate()
	if err != nil || tx != 1_000_000_000 {
		t.Errorf("numeric tx_rate = %d, %v", tx, err)
	}
}

func TestClient_Get_CredentialsOverrideParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q["control_login"]; len(got) != 1 || got[0] != "user" {
			t.Errorf("control_login = %v, want [user]", got)
		}
		if got := q.Get("service"); got != "12345" {
			t.Errorf("service = %q, want 12345", got)
		}
		_, _ = w.Write([]byte(`{"usage":{"ok":1}}`))
	})

	params := url.Values{"control_login": {"someone-else"}, "service": {"12345"}}
	data, err := c.Get(context.Background(), "usage", params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"ok":1}` {
		t.Errorf("data = %s", data)
	}
	if params.Get("control_login") != "someone-else" {
		t.Error("caller params were mutated")
	}
}

func TestClient_Get_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"http status", http.StatusInternalServerError, "boom", domain.ErrUpstream},
		{"not json", http.StatusOK, "<html>", domain.ErrMalformedResponse},
		{"json array", http.StatusOK, `[1,2]`, domain.ErrMalformedResponse},
		{"api error", http.StatusOK, `{"error":"Bad login"}`, domain.ErrUpstream},
		{"missing key", http.StatusOK, `{"other":[]}`, domain.ErrNoData},
		{"null key", http.StatusOK, `{"info":null}`, domain.ErrNoData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.Get(context.Background(), CommandInfo, nil)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClient_Get_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("  denied \n"))
	})

	_, err := c.Get(context.Background(), CommandInfo, nil)
	var se *domain.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if se.StatusCode != http.StatusForbidden || se.Body != "denied" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestClient_Get_ConnectionErrorHidesPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := server.URL + "/broadband/"
	server.Close()

	c, err := NewClient(Config{BaseURL: base, Username: "user", Password: "hunter2"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.Get(context.Background(), CommandInfo, nil)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Errorf("error leaks password: %v", err)
	}
}

func TestClient_Get_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, CommandInfo, nil)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded in chain, got %v", err)
	}
}

func TestClient_Get_ErrorTypeMetrics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	tests := []struct {
		name    string
		ctx     func() (context.Context, context.CancelFunc)
		errType string
	}{
		{"deadline", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}, "timeout"},
		{"canceled", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			time.AfterFunc(20*time.Millisecond, cancel)
			return ctx, cancel
		}, "canceled"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			counter := metrics.ChaosErrorsTotal.WithLabelValues("wait", tc.errType)
			before := testutil.ToFloat64(counter)

			ctx, cancel := tc.ctx()
			defer cancel()
			if _, err := c.Get(ctx, "wait", nil); !errors.Is(err, domain.ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("chaos_errors_total{wait,%s} = %f, want %f", tc.errType, got, before+1)
			}
		})
	}
}

func TestTransportErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.Canceled, "canceled"},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "timeout"},
		{&url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")}, "connection"},
	}
	for _, tc := range tests {
		if got := transportErrorType(tc.err); got != tc.want {
			t.Errorf("transportErrorType(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestClient_Info_BadService(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"info":[{"login":"no-id"}]}`))
	})
	_, err := c.Info(context.Background())
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestClient_Info_NotArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"info":{"ID":"1"}}`))
	})
	_, err := c.Info(context.Background())
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestClient_Get_RecordsMetrics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ping":"pong"}`))
	})

	before := testutil.ToFloat64(metrics.ChaosRequestsTotal.WithLabelValues("ping", "success"))
	if _, err := c.Get(context.Background(), "ping", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := testutil.ToFloat64(metrics.ChaosRequestsTotal.WithLabelValues("ping", "success"))
	if after != before+1 {
		t.Errorf("chaos_requests_total{ping,success} = %f, want %f", after, before+1)
	}
}
