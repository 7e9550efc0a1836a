package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"expo-admin/internal/app"
	"expo-admin/internal/charts"
	"expo-admin/internal/logger"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const barWidth = 40

var (
	chartTitleStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	barStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

func newDashboardCmd(opts *globalOptions) *cobra.Command {
	var live bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show result counts per hour and per day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, e *env) error {
				dash := app.NewDashboard(e.backend, app.DashboardOptions{Log: logger.For("dashboard")})
				if !live {
					c, err := dash.Charts(ctx)
					if err != nil {
						return err
					}
					renderCharts(e.out, e.tr, c)
					return nil
				}
				return runLive(ctx, e, dash)
			})
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "keep updating from the result stream")
	return cmd
}

func runLive(ctx context.Context, e *env, dash *app.Dashboard) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	updates, unsubscribe := dash.Subscribe()
	fmt.Fprintln(e.errOut, e.tr.T("dashboard.live"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer unsubscribe()
		err := dash.Live(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		for c := range updates {
			renderCharts(e.out, e.tr, c)
		}
		return nil
	})
	return g.Wait()
}

func renderCharts(w io.Writer, tr app.Translator, c app.Charts) {
	fmt.Fprintln(w, chartTitleStyle.Render(tr.T("dashboard.hourly")))
	renderSeries(w, c.Hourly, charts.Hour)
	fmt.Fprintln(w, chartTitleStyle.Render(tr.T("dashboard.daily")))
	renderSeries(w, c.Daily, charts.Day)

	total, score := charts.Total(c.Daily), 0
	for _, b := range c.Daily {
		score += b.TotalScore
	}
	avg := 0.0
	if total > 0 {
		avg = float64(score) / float64(total)
	}
	fmt.Fprintf(w, "\n%s: %d  %s: %.1f\n", tr.T("dashboard.total"), total, tr.T("dashboard.average"), avg)
}

func renderSeries(w io.Writer, buckets []charts.Bucket, g charts.Granularity) {
	peak := 0
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}
	layout := "15:04"
	if g == charts.Day {
		layout = "Mon 01-02"
	}
	for _, b := range buckets {
		n := 0
		if peak > 0 {
			n = b.Count * barWidth / peak
		}
		if n == 0 && b.Count > 0 {
			n = 1
		}
		fmt.Fprintf(w, "%-9s %s %d\n", b.Start.Format(layout), barStyle.Render(strings.Repeat("█", n)), b.Count)
	}
}
