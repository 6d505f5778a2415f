package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/cli/browser"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/okian/tcxview/internal/adapters/chart"
	"github.com/okian/tcxview/internal/adapters/dataservice"
	"github.com/okian/tcxview/internal/adapters/http/api"
	"github.com/okian/tcxview/internal/adapters/http/swagger"
	"github.com/okian/tcxview/internal/app"
	"github.com/okian/tcxview/internal/config"
	"github.com/okian/tcxview/internal/domain/units"
	"github.com/okian/tcxview/internal/domain/view"
	"github.com/okian/tcxview/pkg/logger"
	"github.com/okian/tcxview/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Use our own system gauges instead of the default Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// A missing .env is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logOpts []logger.Option
	if cfg.LogFile != "" {
		logOpts = append(logOpts, logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB))
	}
	if err := logger.Init(logOpts...); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync log file: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	a, err := newApplication(cfg)
	if err != nil {
		log.Error(ctx, "failed to build application", logger.Error(err))
		return
	}
	if err := a.controller.Start(ctx); err != nil {
		log.Error(ctx, "failed to start controller", logger.Error(err))
		return
	}

	go startSystemMetricsUpdater(ctx, metrics.Default().RefreshInterval())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("data_service_url", cfg.DataServiceURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	if cfg.OpenBrowser {
		target := uiURL(cfg.Addr)
		if err := browser.OpenURL(target); err != nil {
			log.Warn(ctx, "could not open browser", logger.String("url", target), logger.Error(err))
		}
	}

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := multierr.Combine(srv.Shutdown(shutdownCtx), a.controller.Shutdown(shutdownCtx)); err != nil {
		log.Error(shutdownCtx, "shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
}

// application is the wired object graph behind the HTTP server.
type application struct {
	controller *app.Controller
	charts     *chart.Registry
	mux        *http.ServeMux
}

func newApplication(cfg *config.Config) (*application, error) {
	log := logger.Get()

	sys, err := units.ParseSystem(cfg.Units)
	if err != nil {
		return nil, fmt.Errorf("units: %w", err)
	}

	client, err := dataservice.New(cfg.DataServiceURL,
		dataservice.WithTimeout(time.Duration(cfg.FetchTimeoutMS)*time.Millisecond),
		dataservice.WithLogger(log.Named("dataservice")),
	)
	if err != nil {
		return nil, fmt.Errorf("data service client: %w", err)
	}

	charts := chart.NewRegistry(
		chart.WithTheme(cfg.ChartTheme),
		chart.WithLogger(log.Named("charts")),
	)

	controller := app.New(client, charts,
		app.WithSettings(view.Settings{
			CompactPoints: cfg.CompactPoints,
			WarmupSamples: cfg.WarmupSamples,
			Units:         sys,
			Smoothing:     cfg.Smoothing,
		}),
		app.WithQueueSize(cfg.QueueSize),
		app.WithLogger(log.Named("controller")),
	)

	mux := http.NewServeMux()
	swagger.Register(context.Background(), mux)
	api.NewServer(controller, controller, charts).Register(context.Background(), mux)

	return &application{controller: controller, charts: charts, mux: mux}, nil
}

// uiURL turns a listen address into a browsable URL.
func uiURL(addr string) string {
	host := addr
	switch {
	case strings.HasPrefix(host, ":"):
		host = "localhost" + host
	case strings.HasPrefix(host, "0.0.0.0:"):
		host = "localhost" + strings.TrimPrefix(host, "0.0.0.0")
	}
	return "http://" + host + "/"
}

// startSystemMetricsUpdater refreshes system gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
