package health

import (
	"context"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/aaisp/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	checkers map[string]Checker
}

// New creates a Service over named checkers. Nil checkers are ignored.
func New(checkers map[string]Checker) *Service {
	cs := make(map[string]Checker, len(checkers))
	for name, c := range checkers {
		if c != nil {
			cs[name] = c
		}
	}
	return &Service{checkers: cs}
}

// Check runs every checker. All failing is Unhealthy, some failing is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checkers))
	failed := 0
	for name, c := range s.checkers {
		if err := c.HealthCheck(ctx); err != nil {
			logpkg.FromContext(ctx).Warn("Health check failed", zap.String("check", name), zap.Error(err))
			checks[name] = CheckError
			failed++
			continue
		}
		checks[name] = CheckOK
	}

	status := Healthy
	switch {
	case failed == 0:
	case failed == len(checks):
		status = Unhealthy
	default:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
