// Package chi serves line telemetry, health and Prometheus metrics over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/aaisp/internal/domain"
	domline "github.com/kailas-cloud/aaisp/internal/domain/line"
	"github.com/kailas-cloud/aaisp/internal/domain/unit"
	logpkg "github.com/kailas-cloud/aaisp/internal/logger"
	"github.com/kailas-cloud/aaisp/internal/metrics"
	healthuc "github.com/kailas-cloud/aaisp/internal/usecase/health"
)

const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
	codeNotFound     = "not_found"
	codeMethod       = "method_not_allowed"
	codeBadGateway   = "bad_gateway"
	codeUpstream     = "upstream_error"
	codeInternal     = "internal_error"
)

// LineService is the line use case consumed by the HTTP handlers.
type LineService interface {
	Info(ctx context.Context) ([]domline.Line, error)
	Lines(ctx context.Context) ([]domline.Line, error)
	Line(ctx context.Context, id int) (domline.Line, error)
}

// HealthService reports dependency health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Display holds the units applied when a request does not name its own.
type Display struct {
	RateUnit  unit.Format
	QuotaUnit unit.Format
	Precision int
}

// Server implements the exporter HTTP API.
type Server struct {
	lineSvc   LineService
	healthSvc HealthService
	gatherer  prometheus.Gatherer
	display   Display
	logger    *zap.Logger
}

// NewServer creates the HTTP server. A nil gatherer serves the default registry.
func NewServer(lineSvc LineService, healthSvc HealthService, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		lineSvc:   lineSvc,
		healthSvc: healthSvc,
		gatherer:  gatherer,
		display: Display{
			RateUnit:  unit.MBits,
			QuotaUnit: unit.GBytes,
			Precision: unit.DefaultPrecision,
		},
		logger: logger,
	}
}

// WithDisplay sets the default units for line responses.
func (s *Server) WithDisplay(d Display) *Server {
	s.display = d
	return s
}

// Handler builds the router with the full middleware chain.
func (s *Server) Handler(apiKeys []string) http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethod, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/lines", func(r gochi.Router) {
		r.Get("/", s.ListLines)
		r.Get("/{id}", s.GetLine)
	})
	return r
}

// --- Health & Metrics ---

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.healthSvc.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// --- Lines ---

type lineResponse struct {
	ServiceID      int               `json:"service_id"`
	Login          string            `json:"login,omitempty"`
	TxRate         *float64          `json:"tx_rate,omitempty"`
	RxRate         *float64          `json:"rx_rate,omitempty"`
	QuotaMonthly   *float64          `json:"quota_monthly,omitempty"`
	QuotaRemaining *float64          `json:"quota_remaining,omitempty"`
	QuotaUsed      *float64          `json:"quota_used,omitempty"`
	RateUnit       string            `json:"rate_unit"`
	QuotaUnit      string            `json:"quota_unit"`
	Attributes     map[string]string `json:"attributes"`
}

type lineListResponse struct {
	Items []lineResponse `json:"items"`
	Count int            `json:"count"`
}

// ListLines handles GET /lines. refresh=true bypasses the cache.
func (s *Server) ListLines(w http.ResponseWriter, r *http.Request) {
	params, err := bindLineParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	d, err := params.display(s.display)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	var lines []domline.Line
	if params.Refresh != nil && *params.Refresh {
		lines, err = s.lineSvc.Info(r.Context())
	} else {
		lines, err = s.lineSvc.Lines(r.Context())
	}
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	items := make([]lineResponse, 0, len(lines))
	for _, l := range lines {
		items = append(items, toLineResponse(l, d))
	}
	writeJSON(w, http.StatusOK, lineListResponse{Items: items, Count: len(items)})
}

// GetLine handles GET /lines/{id}.
func (s *Server) GetLine(w http.ResponseWriter, r *http.Request) {
	id, err := bindServiceID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	params, err := bindLineParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	d, err := params.display(s.display)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	ctx := logpkg.With(r.Context(), zap.Int("service_id", id))
	l, err := s.lineSvc.Line(ctx, id)
	if err != nil {
		s.handleDomainError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLineResponse(l, d))
}

func toLineResponse(l domline.Line, d Display) lineResponse {
	resp := lineResponse{
		ServiceID:  l.ID(),
		RateUnit:   d.RateUnit.Suffix(),
		QuotaUnit:  d.QuotaUnit.Suffix(),
		Attributes: l.Attrs(),
	}
	if d.RateUnit == unit.Raw {
		resp.RateUnit = "bit/s"
	}
	if d.QuotaUnit == unit.Raw {
		resp.QuotaUnit = "B"
	}
	if login, err := l.Login(); err == nil {
		resp.Login = login
	}
	resp.TxRate = converted(l.TxRate, d.RateUnit, d.Precision)
	resp.RxRate = converted(l.RxRate, d.RateUnit, d.Precision)
	resp.QuotaMonthly = converted(l.QuotaMonthly, d.QuotaUnit, d.Precision)
	resp.QuotaRemaining = converted(l.QuotaRemaining, d.QuotaUnit, d.Precision)
	resp.QuotaUsed = converted(l.QuotaUsed, d.QuotaUnit, d.Precision)
	return resp
}

// converted returns nil when the attribute is missing or not numeric.
func converted(get func() (int64, error), f unit.Format, precision int) *float64 {
	n, err := get()
	if err != nil {
		return nil
	}
	v := unit.Convert(n, f, precision)
	return &v
}

// --- Helpers ---

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// sentinelHandler creates a handler for a sentinel error with fixed status/code.
func sentinelHandler(sentinel error, status int, code string, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := message
		if msg == "" {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

// Order matters: malformed responses and missing data also count as upstream failures.
var domainErrorHandlers = []errorHandler{
	sentinelHandler(domain.ErrServiceNotFound, http.StatusNotFound, codeNotFound, ""),
	sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway, codeBadGateway, "malformed response from CHAOS"),
	sentinelHandler(domain.ErrNoData, http.StatusBadGateway, codeBadGateway, "CHAOS returned no data"),
	sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, codeUpstream, "CHAOS request failed"),
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	logpkg.FromContext(ctx).Warn("Request failed", zap.Error(err))

	for _, h := range domainErrorHandlers {
		if h(w, err) {
			return
		}
	}

	s.logger.Error("Unexpected error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
