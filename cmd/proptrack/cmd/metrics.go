package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Serve Prometheus metrics for every account",
	Long: `Load every account, recompute its status and serve the gauges on
/metrics. Statuses are recomputed on --refresh so the daily figures roll
over at midnight in the configured timezone.`,
	RunE: runMetrics,
}

var (
	metricsAddr    string
	metricsRefresh time.Duration
)

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().StringVar(&metricsAddr, "addr", "", "listen address (default from config)")
	metricsCmd.Flags().DurationVar(&metricsRefresh, "refresh", time.Minute, "status recompute interval")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := metricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		ticker := time.NewTicker(metricsRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				if err := server.Shutdown(context.Background()); err != nil {
					log.Error().Err(err).Msg("failed to shutdown metrics server")
				}
				return
			case <-ticker.C:
				for _, acct := range a.tracker.Accounts() {
					if _, err := a.tracker.Refresh(ctx, acct.ID); err != nil {
						log.Warn().Err(err).Str("account", acct.ID).Msg("refresh failed")
					}
				}
			}
		}
	}()

	log.Info().Str("addr", addr).Int("accounts", len(a.tracker.Accounts())).Msg("serving metrics")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
