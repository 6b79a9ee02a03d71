// Package app assembles the collection pipeline out of a Config, it is shared
// by the daemon and the cli.
package app

import (
	"errors"
	"fmt"
	"io"

	"cryptorewards-backend/internal/collector"
	"cryptorewards-backend/internal/components/chrono"
	"cryptorewards-backend/internal/components/telemetry"
	"cryptorewards-backend/internal/config"
	"cryptorewards-backend/internal/enrich"
	"cryptorewards-backend/internal/history"
	"cryptorewards-backend/internal/sources"
	"cryptorewards-backend/internal/store"
	"cryptorewards-backend/internal/transport"
)

type App struct {
	Config config.Config
	Store  *store.Store
	// History is nil when disabled.
	History   *history.Store
	Fetcher   *transport.Fetcher
	Sources   []sources.Source
	Collector *collector.Collector
	Scheduler *collector.Scheduler

	closers []io.Closer
}

// Build creates every component described by cfg. Each source logs to its own
// file under cfg.LogsDir. Close must be called to release the log files.
func Build(cfg config.Config, tel telemetry.API, verbose bool) (*App, error) {
	app := &App{Config: cfg}
	clock := chrono.NewStandardTime()

	st, err := store.New(cfg.DataDir, tel)
	if err != nil {
		return nil, err
	}
	app.Store = st

	fetchOpts := transport.DefaultOptions()
	fetchOpts.VerifyTLS = cfg.VerifyTLS()
	fetchOpts.Timeout = cfg.FetchTimeout()
	fetchOpts.MaxAttempts = cfg.FetchMaxAttempts
	fetchOpts.RequestsPerSecond = cfg.RequestsPerSecond
	fetchOpts.DumpDir = cfg.DumpDir
	app.Fetcher = transport.New(fetchOpts, tel)

	loggers := map[string]telemetry.API{}
	for _, id := range sources.IDs() {
		logger, closer, err := telemetry.NewFileLogger(cfg.LogsDir, id, verbose)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("logger for %s: %w", id, err)
		}
		app.closers = append(app.closers, closer)
		loggers[id] = telemetry.NewSlogAPI(logger)
	}

	enricher := enrich.New(nil)
	app.Sources = sources.All(func(id string) sources.Deps {
		return sources.Deps{
			Fetcher:  app.Fetcher,
			Time:     clock,
			Enricher: enricher,
			Tel:      loggers[id],
		}
	})

	collectOpts := collector.Options{Concurrency: cfg.CollectConcurrency}
	app.History, err = OpenHistory(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if app.History != nil {
		app.closers = append(app.closers, app.History)
		collectOpts.History = app.History
	}

	app.Collector = collector.New(
		app.Sources,
		app.Store,
		clock,
		tel,
		collectOpts,
	)

	app.Scheduler, err = collector.NewScheduler(
		app.Collector,
		clock,
		tel,
		collector.SchedulerOptions{
			Interval:     cfg.UpdateInterval(),
			DailyAt:      cfg.DailyRefresh(),
			Location:     chrono.Istanbul(),
			PollInterval: cfg.PollInterval(),
		},
	)
	if err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// OpenHistory returns nil when the run history is disabled.
func OpenHistory(cfg config.Config) (*history.Store, error) {
	if cfg.HistoryURL != "" {
		return history.OpenRemote(cfg.HistoryURL, cfg.HistoryAuthToken)
	}
	path := cfg.HistoryPath()
	if path == "" {
		return nil, nil
	}
	return history.Open(path)
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
