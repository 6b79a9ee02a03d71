package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"cryptorewards-backend/internal/api"
	"cryptorewards-backend/internal/app"
	"cryptorewards-backend/internal/components/serviceutil"
	"cryptorewards-backend/internal/components/telemetry"
	"cryptorewards-backend/internal/config"

	"github.com/gin-gonic/gin"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging.")
	configPath := flag.String("config", "config.json5", "Path to the config file, it may be missing.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("load config", err)
	}

	logCloser, err := telemetry.InitSlog(cfg.LogsDir, "rewardsd", *verbose)
	if err != nil {
		serviceutil.Fatal("init logging", err)
	}
	defer logCloser.Close()
	if *verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	otlp, err := telemetry.SetupOtlp(ctx, "rewardsd", cfg.Otlp)
	if err != nil {
		serviceutil.Fatal("setup otlp", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		otlp.Shutdown(shutdownCtx)
	}()

	tel := telemetry.SlogAPI{}
	telemetry.InstrumentPerfStats(ctx, telemetry.NewScopedAPI("perf", tel), time.Minute)

	application, err := app.Build(cfg, tel, *verbose)
	if err != nil {
		serviceutil.Fatal("build app", err)
	}
	defer application.Close()

	results := application.Scheduler.Start(ctx)
	slog.InfoContext(ctx, "initial cycle finished", "results", results)

	if cfg.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	deps := api.Deps{
		Snapshots: application.Store,
		Runner:    application.Scheduler,
		APIKey:    cfg.APIKey,
		Tel:       tel,
	}
	if application.History != nil {
		deps.History = application.History
	}
	router := api.NewRouter(deps)
	if cfg.APIKey == "" {
		slog.WarnContext(ctx, "no api key configured, manual updates are disabled")
	}

	err = serviceutil.StartHttpServer(ctx, cfg.Addr(), router)
	if err != nil {
		slog.ErrorContext(ctx, "http server", "err", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err = application.Scheduler.Stop(stopCtx)
	if err != nil {
		slog.Error("stop scheduler", "err", err)
	}
}
