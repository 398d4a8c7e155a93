package aaisp

import (
	"context"
	"fmt"
	"time"

	domline "github.com/kailas-cloud/aaisp/internal/domain/line"
	"github.com/kailas-cloud/aaisp/internal/domain/unit"
)

// TxRate returns the download rate of a line, converted to f.
func (c *Client) TxRate(ctx context.Context, serviceID int, f Format, precision int) (_ float64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("tx_rate", start, err, "service_id", serviceID) }()

	return c.converted(ctx, serviceID, domline.Line.TxRate, f, precision)
}

// RxRate returns the upload rate of a line, converted to f.
func (c *Client) RxRate(ctx context.Context, serviceID int, f Format, precision int) (_ float64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("rx_rate", start, err, "service_id", serviceID) }()

	return c.converted(ctx, serviceID, domline.Line.RxRate, f, precision)
}

// UsageRemaining returns the quota left this month, converted to f.
func (c *Client) UsageRemaining(ctx context.Context, serviceID int, f Format, precision int) (_ float64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage_remaining", start, err, "service_id", serviceID) }()

	return c.converted(ctx, serviceID, domline.Line.QuotaRemaining, f, precision)
}

// UsageUsed returns the quota consumed this month (monthly minus remaining), converted to f.
func (c *Client) UsageUsed(ctx context.Context, serviceID int, f Format, precision int) (_ float64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage_used", start, err, "service_id", serviceID) }()

	return c.converted(ctx, serviceID, domline.Line.QuotaUsed, f, precision)
}

// Login returns the login identifier of a line.
func (c *Client) Login(ctx context.Context, serviceID int) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("login", start, err, "service_id", serviceID) }()

	l, err := c.lineSvc.Line(ctx, serviceID)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	login, err := l.Login()
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return login, nil
}

func (c *Client) converted(
	ctx context.Context, serviceID int, value func(domline.Line) (int64, error), f Format, precision int,
) (float64, error) {
	l, err := c.lineSvc.Line(ctx, serviceID)
	if err != nil {
		return 0, err
	}
	n, err := value(l)
	if err != nil {
		return 0, err
	}
	return unit.Convert(n, f, precision), nil
}
