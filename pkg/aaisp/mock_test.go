package aaisp

import (
	"context"

	domline "github.com/kailas-cloud/aaisp/internal/domain/line"
	healthuc "github.com/kailas-cloud/aaisp/internal/usecase/health"
)

// --- lineUseCase mock ---

type mockLineUC struct {
	infoFn     func(ctx context.Context) ([]domline.Line, error)
	servicesFn func(ctx context.Context) ([]int, error)
	linesFn    func(ctx context.Context) ([]domline.Line, error)
	lineFn     func(ctx context.Context, id int) (domline.Line, error)
	attrFn     func(ctx context.Context, id int, key string) (string, error)
}

func (m *mockLineUC) Info(ctx context.Context) ([]domline.Line, error) { return m.infoFn(ctx) }

func (m *mockLineUC) Services(ctx context.Context) ([]int, error) { return m.servicesFn(ctx) }

func (m *mockLineUC) Lines(ctx context.Context) ([]domline.Line, error) { return m.linesFn(ctx) }

func (m *mockLineUC) Line(ctx context.Context, id int) (domline.Line, error) {
	return m.lineFn(ctx, id)
}

func (m *mockLineUC) Attr(ctx context.Context, id int, key string) (string, error) {
	return m.attrFn(ctx, id, key)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(lineSvc lineUseCase) *Client {
	return &Client{lineSvc: lineSvc}
}

func homeLine() domline.Line {
	return domline.New(12345, map[string]string{
		domline.KeyLogin:          "home@a.1",
		domline.KeyTxRate:         "79999000",
		domline.KeyRxRate:         "19950000",
		domline.KeyQuotaMonthly:   "1000000000000",
		domline.KeyQuotaRemaining: "262144000000",
	})
}
