// Command fakeservice serves a generated exercise history on the data
// service endpoints, for local development against tcxview.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/tcxview/internal/config"
	"github.com/okian/tcxview/internal/fakeservice"
	"github.com/okian/tcxview/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var (
		addr     = flag.String("addr", ":5000", "listen address")
		seed     = flag.Int64("seed", cfg.FakeSeed, "generator seed")
		sessions = flag.Int("sessions", cfg.FakeSessions, "number of sessions")
		days     = flag.Int("days", fakeservice.DefaultDays, "history length in days")
		delay    = flag.Duration("delay", 0, "artificial latency per response")
	)
	flag.Parse()

	log := logger.Get().Named("fakeservice")
	data := fakeservice.Generate(fakeservice.Config{Seed: *seed, Sessions: *sessions, Days: *days})
	srv := &http.Server{
		Addr:              *addr,
		Handler:           fakeservice.NewServer(data, fakeservice.WithLogger(log), fakeservice.WithDelay(*delay)).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "serving generated history",
			logger.String("addr", *addr),
			logger.Any("seed", *seed),
			logger.Int("sessions", len(data.Sessions())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "shutdown failed", logger.Error(err))
	}
}
