package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/aaisp/internal/domain/line"
)

// LineSource fetches the current state of every line on the account.
type LineSource interface {
	Info(ctx context.Context) ([]line.Line, error)
}

// LineCollector exports per-line telemetry, fetching fresh data on every scrape.
type LineCollector struct {
	source  LineSource
	timeout time.Duration
	logger  *zap.Logger

	txRate         *prometheus.Desc
	rxRate         *prometheus.Desc
	quotaMonthly   *prometheus.Desc
	quotaRemaining *prometheus.Desc
	quotaUsed      *prometheus.Desc
	scrapeSuccess  *prometheus.Desc
	scrapeDuration *prometheus.Desc
}

var _ prometheus.Collector = (*LineCollector)(nil)

// NewLineCollector creates a collector. timeout bounds each scrape's CHAOS request.
func NewLineCollector(source LineSource, timeout time.Duration, logger *zap.Logger) *LineCollector {
	labels := []string{"service_id", "login"}
	desc := func(name, help string, l []string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(Namespace, "", name), help, l, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineCollector{
		source:         source,
		timeout:        timeout,
		logger:         logger,
		txRate:         desc("line_tx_rate_bits_per_second", "Line download (TX) rate", labels),
		rxRate:         desc("line_rx_rate_bits_per_second", "Line upload (RX) rate", labels),
		quotaMonthly:   desc("line_quota_monthly_bytes", "Monthly usage quota", labels),
		quotaRemaining: desc("line_quota_remaining_bytes", "Usage quota remaining this month", labels),
		quotaUsed:      desc("line_quota_used_bytes", "Usage quota consumed this month", labels),
		scrapeSuccess:  desc("scrape_success", "Whether the last CHAOS fetch succeeded", nil),
		scrapeDuration: desc("scrape_duration_seconds", "Duration of the last CHAOS fetch", nil),
	}
}

// Describe implements prometheus.Collector.
func (c *LineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.txRate
	ch <- c.rxRate
	ch <- c.quotaMonthly
	ch <- c.quotaRemaining
	ch <- c.quotaUsed
	ch <- c.scrapeSuccess
	ch <- c.scrapeDuration
}

// Collect implements prometheus.Collector.
func (c *LineCollector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	lines, err := c.source.Info(ctx)
	ch <- prometheus.MustNewConstMetric(c.scrapeDuration, prometheus.GaugeValue, time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("CHAOS scrape failed", zap.Error(err))
		ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 1)

	for _, l := range dedupe(lines) {
		login, _ := l.Attr(line.KeyLogin)
		labels := []string{strconv.Itoa(l.ID()), login}

		c.emit(ch, c.txRate, l.TxRate, labels)
		c.emit(ch, c.rxRate, l.RxRate, labels)
		c.emit(ch, c.quotaMonthly, l.QuotaMonthly, labels)
		c.emit(ch, c.quotaRemaining, l.QuotaRemaining, labels)
		c.emit(ch, c.quotaUsed, l.QuotaUsed, labels)
	}
}

// emit sends one gauge; attributes the line does not report are skipped.
func (c *LineCollector) emit(
	ch chan<- prometheus.Metric, d *prometheus.Desc, value func() (int64, error), labels []string,
) {
	v, err := value()
	if err != nil {
		c.logger.Debug("skip line metric", zap.String("service_id", labels[0]), zap.Error(err))
		return
	}
	ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), labels...)
}

// dedupe drops repeated service IDs. The last value wins at the position of the
// first occurrence, matching the line cache.
func dedupe(lines []line.Line) []line.Line {
	pos := make(map[int]int, len(lines))
	out := make([]line.Line, 0, len(lines))
	for _, l := range lines {
		if i, seen := pos[l.ID()]; seen {
			out[i] = l
			continue
		}
		pos[l.ID()] = len(out)
		out = append(out, l)
	}
	return out
}
