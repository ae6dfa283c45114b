package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/proptrack/engine"
	"github.com/rustyeddy/proptrack/journal"
	"github.com/rustyeddy/proptrack/metrics"
	"github.com/rustyeddy/proptrack/store"
	"github.com/rustyeddy/proptrack/tracker"
)

// app is one command's view of the configured storage.
type app struct {
	tracker  *tracker.Tracker
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	close    func() error
}

type repository interface {
	tracker.Repository
	Close() error
}

func openRepository() (repository, error) {
	switch cfg.Storage.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Storage.Path, nil, journal.WithLogger(log.Logger))
	case "bolt":
		return store.Open(cfg.Storage.Path, nil, store.WithLogger(log.Logger))
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
}

// openApp opens storage, wires the engine to a fresh metrics registry and
// loads every account.
func openApp(ctx context.Context) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	repo, err := openRepository()
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Type, err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	eng := engine.New(
		engine.WithLogger(log.Logger),
		engine.WithLocation(loc),
		engine.WithObserver(m),
	)
	tr := tracker.New(
		tracker.WithRepository(repo),
		tracker.WithEngine(eng),
		tracker.WithPersonalSize(cfg.Defaults.PersonalAccountSize),
		tracker.WithMutationObserver(m),
		tracker.WithLogger(log.Logger),
		tracker.WithClock(time.Now),
	)
	if err := tr.Load(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return &app{tracker: tr, metrics: m, registry: reg, close: repo.Close}, nil
}

func (a *app) Close() {
	if err := a.close(); err != nil {
		log.Error().Err(err).Msg("close storage")
	}
}
