package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lin871229/lottery-app-v4/internal/district"
	drawhandler "github.com/lin871229/lottery-app-v4/internal/draw/handler"
	drawmetrics "github.com/lin871229/lottery-app-v4/internal/draw/metrics"
	"github.com/lin871229/lottery-app-v4/internal/draw/service"
	drawstore "github.com/lin871229/lottery-app-v4/internal/draw/store"
	"github.com/lin871229/lottery-app-v4/internal/platform/config"
	"github.com/lin871229/lottery-app-v4/internal/platform/httpserver"
	"github.com/lin871229/lottery-app-v4/internal/platform/logger"
	"github.com/lin871229/lottery-app-v4/internal/platform/metrics"
	"github.com/lin871229/lottery-app-v4/internal/roster"
	"github.com/lin871229/lottery-app-v4/internal/roster/layouts"
	rosterstore "github.com/lin871229/lottery-app-v4/internal/roster/store"
	httptransport "github.com/lin871229/lottery-app-v4/internal/transport/http"
	"github.com/lin871229/lottery-app-v4/internal/worker"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, warnings := config.FromEnv()

	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	for _, w := range warnings {
		log.Warn("config fallback", zap.String("detail", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *zap.Logger) error {
	layout, err := loadLayout(cfg)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	svc := service.New(drawstore.New(), rosterstore.New(), district.Kaohsiung(),
		service.WithLogger(log),
		service.WithMetrics(drawmetrics.New(reg)),
		service.WithLocation(cfg.Location),
		service.WithDefaultLayout(layout),
		service.WithMaxDrawCount(cfg.MaxDrawCount),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  metrics.New(reg),
		Registry: reg,
		Handlers: []httptransport.Registrar{drawhandler.New(svc, log, cfg.MaxUploadBytes)},
	})
	srv := httpserver.New(cfg.Addr, router)
	cleanup := worker.NewSessionCleanup(svc, log, cfg.SweepInterval, cfg.SessionIdleTTL)

	log.Info("starting lottery server",
		zap.String("addr", cfg.Addr),
		zap.String("layout", layout.Name),
		zap.String("timezone", cfg.Timezone))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpserver.Run(gctx, srv) })
	g.Go(func() error { return cleanup.Run(gctx) })
	return g.Wait()
}

func loadLayout(cfg config.Server) (roster.Layout, error) {
	if cfg.LayoutFile != "" {
		return layouts.LoadFile(cfg.LayoutFile)
	}
	return layouts.Load(cfg.Layout)
}
