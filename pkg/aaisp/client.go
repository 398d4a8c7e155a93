package aaisp

import (
	"context"
	"fmt"
	"time"

	domline "github.com/kailas-cloud/aaisp/internal/domain/line"
	"github.com/kailas-cloud/aaisp/internal/repository/linecache"
	"github.com/kailas-cloud/aaisp/internal/transport/chaos"
	healthuc "github.com/kailas-cloud/aaisp/internal/usecase/health"
	lineuc "github.com/kailas-cloud/aaisp/internal/usecase/line"
)

// Внутренние интерфейсы для подмены в тестах.
type lineUseCase interface {
	Info(ctx context.Context) ([]domline.Line, error)
	Services(ctx context.Context) ([]int, error)
	Lines(ctx context.Context) ([]domline.Line, error)
	Line(ctx context.Context, id int) (domline.Line, error)
	Attr(ctx context.Context, id int, key string) (string, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the CHAOS SDK entry point. Safe for concurrent use.
type Client struct {
	username  string
	lineSvc   lineUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client for the account identified by username and password.
// No request is made until the first accessor is called.
func New(username, password string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	transport, err := chaos.NewClient(chaos.Config{
		BaseURL:    cfg.baseURL,
		Username:   username,
		Password:   password,
		Timeout:    cfg.timeout,
		HTTPClient: cfg.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("aaisp: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return wireClient(transport, obs), nil
}

func wireClient(transport *chaos.Client, obs *observer) *Client {
	lineSvc := lineuc.New(transport, linecache.New())
	healthSvc := healthuc.New(map[string]healthuc.Checker{
		"chaos": healthuc.CheckerFunc(func(ctx context.Context) error {
			_, err := transport.Info(ctx)
			return err
		}),
	})

	return &Client{
		username:  transport.Username(),
		lineSvc:   lineSvc,
		healthSvc: healthSvc,
		obs:       obs,
	}
}

// Username returns the control login the client authenticates with.
func (c *Client) Username() string { return c.username }

// Info fetches every line on the account, refreshing the cache.
func (c *Client) Info(ctx context.Context) (_ []Line, err error) {
	start := time.Now()
	defer func() { c.obs.observe("info", start, err) }()

	lines, err := c.lineSvc.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("info: %w", err)
	}
	return fromInternalLines(lines), nil
}

// Lines returns every line, fetching only when nothing is cached yet.
func (c *Client) Lines(ctx context.Context) (_ []Line, err error) {
	start := time.Now()
	defer func() { c.obs.observe("lines", start, err) }()

	lines, err := c.lineSvc.Lines(ctx)
	if err != nil {
		return nil, fmt.Errorf("lines: %w", err)
	}
	return fromInternalLines(lines), nil
}

// Services returns the IDs of every line on the account.
func (c *Client) Services(ctx context.Context) (_ []int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("services", start, err) }()

	ids, err := c.lineSvc.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("services: %w", err)
	}
	return ids, nil
}

// Line returns one line by service ID.
func (c *Client) Line(ctx context.Context, serviceID int) (_ Line, err error) {
	start := time.Now()
	defer func() { c.obs.observe("line", start, err, "service_id", serviceID) }()

	l, err := c.lineSvc.Line(ctx, serviceID)
	if err != nil {
		return Line{}, fmt.Errorf("line: %w", err)
	}
	return fromInternalLine(l), nil
}

// Attr returns a raw attribute of a line (for keys without a dedicated accessor).
func (c *Client) Attr(ctx context.Context, serviceID int, key string) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("attr", start, err, "service_id", serviceID, "key", key) }()

	v, err := c.lineSvc.Attr(ctx, serviceID, key)
	if err != nil {
		return "", fmt.Errorf("attr: %w", err)
	}
	return v, nil
}
