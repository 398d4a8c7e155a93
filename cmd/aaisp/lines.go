package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	domline "github.com/kailas-cloud/aaisp/internal/domain/line"
	"github.com/kailas-cloud/aaisp/internal/domain/unit"
)

type linesOptions struct {
	rateUnit  string
	quotaUnit string
	precision int
}

func newLinesCmd(root *rootOptions) *cobra.Command {
	opts := &linesOptions{}
	cmd := &cobra.Command{
		Use:   "lines",
		Short: "Print rates and quota usage for every line on the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.setup()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			d, err := opts.display(cmd, a)
			if err != nil {
				return err
			}

			ctx := a.context(cmd.Context())
			lines, err := a.lineSvc.Info(ctx)
			if err != nil {
				return fmt.Errorf("fetch lines: %w", err)
			}
			return renderLines(cmd.OutOrStdout(), lines, d)
		},
	}
	cmd.Flags().StringVar(&opts.rateUnit, "rate-unit", "", "rate unit: raw, mb, gb, mbit, gbit (default from config)")
	cmd.Flags().StringVar(&opts.quotaUnit, "quota-unit", "", "quota unit: raw, mb, gb, mbit, gbit (default from config)")
	cmd.Flags().IntVar(&opts.precision, "precision", unit.DefaultPrecision, "decimal places")
	return cmd
}

// display merges flags over the configured defaults.
func (o *linesOptions) display(cmd *cobra.Command, a *app) (lineDisplay, error) {
	rate, quota := a.cfg.Display.RateUnit, a.cfg.Display.QuotaUnit
	if o.rateUnit != "" {
		rate = o.rateUnit
	}
	if o.quotaUnit != "" {
		quota = o.quotaUnit
	}

	var (
		d   lineDisplay
		err error
	)
	if d.rate, err = unit.ParseFormat(rate); err != nil {
		return lineDisplay{}, fmt.Errorf("--rate-unit: %w", err)
	}
	if d.quota, err = unit.ParseFormat(quota); err != nil {
		return lineDisplay{}, fmt.Errorf("--quota-unit: %w", err)
	}

	d.precision = *a.cfg.Display.Precision
	if cmd.Flags().Changed("precision") {
		d.precision = o.precision
	}
	return d, nil
}

type lineDisplay struct {
	rate      unit.Format
	quota     unit.Format
	precision int
}

func renderLines(w io.Writer, lines []domline.Line, d lineDisplay) error {
	p := &printer{w: w}
	p.println("-------------------------")
	p.println("AAISP Lines")
	p.println("-------------------------")
	p.println()

	for _, l := range lines {
		login, err := l.Login()
		if err != nil {
			login = "n/a"
		}
		p.printf("Login: %s\n", login)
		p.printf("  Download:  %s\n", d.value(l.TxRate, d.rate))
		p.printf("  Upload:    %s\n", d.value(l.RxRate, d.rate))
		p.printf("  Remaining: %s\n", d.value(l.QuotaRemaining, d.quota))
		p.printf("  Used:      %s\n\n", d.value(l.QuotaUsed, d.quota))
	}
	return p.err
}

func (d lineDisplay) value(get func() (int64, error), f unit.Format) string {
	n, err := get()
	if err != nil {
		return "n/a"
	}
	digits := d.precision
	if digits < 0 {
		digits = 0
	}
	s := strconv.FormatFloat(unit.Convert(n, f, d.precision), 'f', digits, 64)
	if suffix := f.Suffix(); suffix != "" {
		s += " " + suffix
	}
	return s
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *printer) println(args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintln(p.w, args...)
	}
}
