package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tair/voltmarket/internal/app"
	"github.com/tair/voltmarket/internal/config"
	"github.com/tair/voltmarket/pkg/logger"
	"github.com/tair/voltmarket/pkg/tracing"
)

const version = "1.0.0"

var (
	// Global flags
	apiURL      string
	logLevel    string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "voltmarket",
	Short: "VoltMarket - marketplace client for the terminal",
	Long: `VoltMarket is a terminal client for the VoltMarket marketplace backend.

Features:
  - Login and registration with a session kept across runs
  - Product listing, search and category filtering
  - Product publishing with image upload
  - Favorites, likes and comments
  - Profile statistics and seller ratings
  - Interactive product browser`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides VOLTMARKET_API_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve client metrics on this address while the command runs")
}

// withApp loads configuration, starts logging and tracing, builds the App and
// runs fn with a context cancelled on interrupt
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger.Init(cfg.Tracing.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Endpoint:       cfg.Tracing.Endpoint,
	})
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	a, cleanup, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:    metricsAddr,
			Handler: promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Logger.Error().Err(err).Str("addr", metricsAddr).Msg("Metrics server failed")
			}
		}()
		defer srv.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctx, a)
}

// failure prefers the message the controller put on screen over the raw error
func failure(message string, err error) error {
	if message != "" {
		return errors.New(message)
	}
	return err
}
