// Package chaos implements the HTTP client for the CHAOS broadband API.
package chaos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/aaisp/internal/domain"
	"github.com/kailas-cloud/aaisp/internal/domain/line"
	logpkg "github.com/kailas-cloud/aaisp/internal/logger"
	"github.com/kailas-cloud/aaisp/internal/metrics"
	"github.com/kailas-cloud/aaisp/internal/version"
)

// DefaultBaseURL is the CHAOS v1 broadband endpoint.
const DefaultBaseURL = "https://chaos2.aa.net.uk/broadband/"

// CommandInfo lists every service on the account with its telemetry.
const CommandInfo = "info"

const (
	paramLogin    = "control_login"
	paramPassword = "control_password"

	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20
	maxErrorBody   = 512
)

// Config holds the CHAOS client settings.
type Config struct {
	BaseURL    string
	Username   string
	Password   string
	Timeout    time.Duration // ignored when HTTPClient is set
	HTTPClient *http.Client
}

// Client issues CHAOS commands over HTTP GET.
type Client struct {
	http     *http.Client
	baseURL  *url.URL
	username string
	password string
}

// NewClient creates a CHAOS client. Username and password are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("chaos: username and password: %w", domain.ErrCredentialsMissing)
	}

	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("chaos: parse base url %q: %w", raw, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("chaos: base url %q must be absolute", raw)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		http:     hc,
		baseURL:  base,
		username: cfg.Username,
		password: cfg.Password,
	}, nil
}

// Username returns the control login the client authenticates with.
func (c *Client) Username() string { return c.username }

// Get executes command and returns the JSON value stored under the command's key.
// Credentials take precedence over same-named entries in params.
func (c *Client) Get(ctx context.Context, command string, params url.Values) (json.RawMessage, error) {
	log := logpkg.FromContext(ctx).With(zap.String("command", command))
	start := time.Now()

	data, errType, err := c.get(ctx, command, params)

	metrics.ChaosRequestDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChaosRequestsTotal.WithLabelValues(command, "error").Inc()
		metrics.ChaosErrorsTotal.WithLabelValues(command, errType).Inc()
		log.Warn("CHAOS request failed",
			zap.String("error_type", errType),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.ChaosRequestsTotal.WithLabelValues(command, "success").Inc()
	log.Debug("CHAOS request completed",
		zap.Duration("latency", time.Since(start)),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}

func (c *Client) get(ctx context.Context, command string, params url.Values) (json.RawMessage, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.commandURL(command, params), http.NoBody)
	if err != nil {
		return nil, "request", fmt.Errorf("chaos: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportErrorType(err), fmt.Errorf("chaos %s: %w: %w", command, domain.ErrUpstream, redact(err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "read", fmt.Errorf("chaos %s: read body: %w: %w", command, domain.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "http_status", fmt.Errorf("chaos %s: %w", command, &domain.StatusError{
			StatusCode: resp.StatusCode,
			Body:       excerpt(body),
		})
	}

	data, err := extract(command, body)
	if err != nil {
		return nil, errorType(err), err
	}
	return data, "", nil
}

// commandURL joins the command onto the base URL and attaches the query string.
func (c *Client) commandURL(command string, params url.Values) string {
	u := c.baseURL.ResolveReference(&url.URL{Path: command})

	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	q.Set(paramLogin, c.username)
	q.Set(paramPassword, c.password)
	u.RawQuery = q.Encode()

	return u.String()
}

// extract pulls the command's value out of the response body.
func extract(command string, body []byte) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("chaos %s: response is not a JSON object: %w", command, domain.ErrMalformedResponse)
	}

	if raw, ok := envelope["error"]; ok {
		var msg string
		if json.Unmarshal(raw, &msg) == nil && msg != "" {
			return nil, fmt.Errorf("chaos %s: %s: %w", command, msg, domain.ErrUpstream)
		}
	}

	data, ok := envelope[command]
	if !ok || len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("chaos %s: %w", command, domain.ErrNoData)
	}
	return data, nil
}

// Info runs the info command and decodes every service.
func (c *Client) Info(ctx context.Context) ([]line.Line, error) {
	data, err := c.Get(ctx, CommandInfo, nil)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("chaos info: expected array: %w", domain.ErrMalformedResponse)
	}

	lines := make([]line.Line, 0, len(items))
	for _, raw := range items {
		l, err := line.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("chaos info: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, domain.ErrNoData):
		return "no_data"
	default:
		return "api_error"
	}
}

// transportErrorType labels a failed round trip: canceled, timeout or connection.
func transportErrorType(err error) string {
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return "timeout"
	}
	return "connection"
}

// redact strips the query string (which carries the password) from url errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}

func excerpt(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
