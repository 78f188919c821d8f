package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Daneel-Li/feedback-board/internal/config"
	"github.com/Daneel-Li/feedback-board/internal/dao"
	"github.com/Daneel-Li/feedback-board/internal/handlers"
	"github.com/Daneel-Li/feedback-board/internal/services"
	"github.com/Daneel-Li/feedback-board/pkg/db"
	"golang.org/x/sync/errgroup"
)

func setupLogging(logLevel string) {
	switch strings.ToLower(logLevel) {
	case "debug":
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "info":
		slog.SetLogLoggerLevel(slog.LevelInfo)
	case "warn":
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		slog.SetLogLoggerLevel(slog.LevelError)
	}
}

// initRepository provisions storage. Any error here is fatal.
func initRepository(ctx context.Context, cfg *config.Config) (dao.Repository, error) {
	if cfg.Storage == config.StorageMemory {
		slog.Warn("using in-memory storage, data is lost on exit")
		return dao.NewMemoryRepository(), nil
	}

	provisionCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	gdb, err := db.Provision(provisionCtx, db.MysqlConfig(cfg.Mysql))
	if err != nil {
		return nil, err
	}
	go db.WatchHealth(ctx, gdb, time.Minute)

	return dao.NewMysqlRepository(gdb), nil
}

// startServer serves until ctx is cancelled, then drains in-flight requests.
func startServer(ctx context.Context, handler http.Handler, cfg *config.Config) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if cfg.Tls.Enabled() {
			slog.Info("Starting HTTPS server", "addr", server.Addr)
			err = server.ListenAndServeTLS(cfg.Tls.CertPath, cfg.Tls.KeyPath)
		} else {
			slog.Info("Feedback backend listening", "addr", server.Addr)
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// run provisions storage and serves until ctx is cancelled. Storage errors are
// returned before the listener starts.
func run(ctx context.Context, cfg *config.Config) error {
	svc := services.NewSimpleServiceContainer(nil)

	repo, err := initRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	svc.Attach(repo)

	router := handlers.NewRouter(svc, handlers.RouterOptions{
		CORSOrigin:    cfg.CORSOrigin,
		Dashboard:     cfg.Dashboard,
		EnableMetrics: cfg.Metrics,
	})

	if err := startServer(ctx, router, cfg); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func main() {
	configPath := flag.String("config", "./config.json", "path to the JSON config file (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.Loglevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}
