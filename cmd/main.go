package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/freshpoint/internal/adapters/http/api"
	"github.com/okian/freshpoint/internal/adapters/http/site"
	"github.com/okian/freshpoint/internal/adapters/http/swagger"
	"github.com/okian/freshpoint/internal/adapters/opendata"
	app "github.com/okian/freshpoint/internal/app"
	"github.com/okian/freshpoint/internal/config"
	"github.com/okian/freshpoint/pkg/logger"
	"github.com/okian/freshpoint/pkg/metrics"
)

// HTTP server timeout constants. WriteTimeout stays zero: with
// upstream_timeout disabled a fetch has no upper bound.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return errors.Join(errors.New("failed to load config"), err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return errors.Join(errors.New("failed to initialize logging"), err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval),
	)

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithStrictIndex(cfg.StrictIndex),
		app.WithRecordSource(opendata.New(cfg.UpstreamURL,
			opendata.WithLimit(cfg.UpstreamLimit),
			opendata.WithTimeout(cfg.UpstreamTimeout),
		)),
	)
	if err := svc.Start(ctx); err != nil {
		return errors.Join(errors.New("failed to start service"), err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx, metrics.RefreshInterval())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "server started", logger.String("url", "http://"+cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newRouter assembles the documentation routes and the site/API routes.
func newRouter(ctx context.Context, cfg *config.Config, deps api.Dependencies, log logger.Logger) http.Handler {
	var public fs.FS
	if cfg.PublicDir != "" {
		public = os.DirFS(cfg.PublicDir)
	}

	r := chi.NewRouter()
	apiServer := api.NewServer(deps,
		api.WithLogger(log.Named("http")),
		api.WithSite(site.New(public)),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithAllowedOrigins(cfg.CORSAllowedOrigins),
	)
	// Middleware must be registered before any route.
	apiServer.Register(ctx, r)
	swagger.Register(ctx, r)
	return r
}

// startSystemMetricsUpdater refreshes process gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

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
