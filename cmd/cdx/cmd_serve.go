package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/daviddao/critterdex/pkg/metrics"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep a session open: midnight resets and /metrics",
		Long: `Keep one engine session open. Daily missions are regenerated at every
midnight in the reference timezone and Prometheus metrics are served on
/metrics. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				if addr == "" {
					addr = a.cfg.MetricsAddr
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return a.serve(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "metrics listen address (default CRITTERDEX_METRICS_ADDR)")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string) error {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(a.log)))
	if _, err := a.engine.ScheduleDaily(c); err != nil {
		return err
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	a.log.WithField("addr", addr).Info("serving metrics")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
