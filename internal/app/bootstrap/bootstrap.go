package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	daoengine "daogov/contexts/governance/dao-engine"
	"daogov/contexts/governance/dao-engine/adapters/memory"
	postgresadapter "daogov/contexts/governance/dao-engine/adapters/postgres"
	"daogov/contexts/governance/dao-engine/application/workers"
	"daogov/contexts/governance/dao-engine/domain/entities"
	"daogov/internal/platform/config"
	"daogov/internal/platform/db"
	"daogov/internal/platform/httpserver"
	"daogov/internal/platform/messaging"
	"daogov/internal/platform/metrics"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	nats     *messaging.NATS
	loop     *workerLoop
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres
	nats     *messaging.NATS
	loop     *workerLoop
	logger   *slog.Logger
}

// BuildAPI wires the HTTP process, which owns the engine. The expiry loop
// always runs here; the relay runs here only when the outbox is in memory.
func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	module, pg, err := buildModule(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	m := metrics.New()
	if err := m.WatchEngineSequence(func() uint64 {
		return module.Queries.EngineInfo(context.Background()).Sequence
	}); err != nil {
		_ = pg.Close()
		return nil, err
	}

	app := &APIApp{
		server:   httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort), m),
		postgres: pg,
		logger:   logger,
	}
	loop := &workerLoop{pollInterval: cfg.Workers.PollInterval, metrics: m, logger: logger}
	if cfg.Workers.EnableExpiryFinalizer {
		expiry := module.Expiry
		loop.expiry = &expiry
	}
	if pg == nil && cfg.Workers.EnableOutboxRelay {
		bus, natsConn, err := buildPublisher(cfg, logger)
		if err != nil {
			return nil, err
		}
		relay := module.Relay
		relay.Publisher = bus
		loop.relay = &relay
		loop.bus = bus
		app.nats = natsConn
	}
	if loop.expiry != nil || loop.relay != nil {
		app.loop = loop
	}
	return app, nil
}

// BuildWorker wires the relay process. The API process stays the only writer
// of engine state; this process only drains the shared postgres outbox.
func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	repo := postgresadapter.NewRepository(pg.DB, cfg.DAO.EngineID, logger)
	if cfg.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
	}
	bus, natsConn, err := buildPublisher(cfg, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}
	return &WorkerApp{
		postgres: pg,
		nats:     natsConn,
		loop: &workerLoop{
			relay: &workers.OutboxRelay{
				Outbox:    repo,
				Publisher: bus,
				Clock:     postgresadapter.SystemClock{},
				BatchSize: cfg.Workers.OutboxBatchSize,
				Logger:    logger,
			},
			bus:          bus,
			pollInterval: cfg.Workers.PollInterval,
			logger:       logger,
		},
		logger: logger,
	}, nil
}

func buildModule(ctx context.Context, cfg config.Config, logger *slog.Logger) (daoengine.Module, *db.Postgres, error) {
	genesis := make(map[string]entities.Amount, len(cfg.Token.Genesis))
	for principal, amount := range cfg.Token.Genesis {
		genesis[principal] = entities.Amount(amount)
	}
	engineCfg := daoengine.InMemoryConfig{
		Owner:           cfg.DAO.Owner,
		CustodyAccount:  cfg.DAO.CustodyAccount,
		TreasuryAccount: cfg.DAO.TreasuryAccount,
		MinQuorum:       entities.Amount(cfg.DAO.MinQuorum),
		VotingPeriod:    cfg.DAO.VotingPeriod,
		Token: memory.TokenMetadata{
			Name:     cfg.Token.Name,
			Symbol:   cfg.Token.Symbol,
			Decimals: cfg.Token.Decimals,
		},
		TokenAddress: cfg.Token.Address,
		Genesis:      genesis,
	}

	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		module, err := daoengine.NewInMemoryModule(engineCfg, logger)
		return module, nil, err
	}

	pg, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return daoengine.Module{}, nil, err
	}
	repo := postgresadapter.NewRepository(pg.DB, cfg.DAO.EngineID, logger)
	if cfg.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			_ = pg.Close()
			return daoengine.Module{}, nil, err
		}
	}
	module, err := daoengine.NewDevelopmentModule(ctx, engineCfg, daoengine.Dependencies{
		Idempotency:    repo,
		Outbox:         repo,
		OutboxReader:   repo,
		Snapshots:      repo,
		Clock:          postgresadapter.SystemClock{},
		IDGen:          postgresadapter.UUIDGenerator{},
		IdempotencyTTL: cfg.DAO.IdempotencyTTL,
		SourceService:  cfg.ServiceName,
		BatchSize:      cfg.Workers.OutboxBatchSize,
		Logger:         logger,
	})
	if err != nil {
		_ = pg.Close()
		return daoengine.Module{}, nil, err
	}
	return module, pg, nil
}

// buildPublisher returns the in-process bus, fanned out to NATS when a URL is
// configured.
func buildPublisher(cfg config.Config, logger *slog.Logger) (*eventBus, *messaging.NATS, error) {
	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, nil, err
	}
	bus := &eventBus{kafka: kafka, publisher: messaging.Fanout{kafka}}
	if strings.TrimSpace(cfg.NATSURL) == "" {
		return bus, nil, nil
	}
	natsConn, err := messaging.ConnectNATS(cfg.NATSURL, cfg.ServiceName, logger)
	if err != nil {
		return nil, nil, err
	}
	bus.publisher = messaging.Fanout{kafka, natsConn}
	return bus, natsConn, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"embedded_workers", a.loop != nil,
		)
	}
	if a.loop != nil {
		loopCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := a.loop.run(loopCtx); err != nil {
				a.logger.Error("embedded worker loop stopped",
					"event", "bootstrap_embedded_worker_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

func (a *APIApp) Close() error {
	var errs []error
	if a.nats != nil {
		errs = append(errs, a.nats.Close())
	}
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	return errors.Join(errs...)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.loop.pollInterval.String(),
	)
	return w.loop.run(ctx)
}

func (w *WorkerApp) Close() error {
	var errs []error
	if w.nats != nil {
		errs = append(errs, w.nats.Close())
	}
	if w.postgres != nil {
		errs = append(errs, w.postgres.Close())
	}
	return errors.Join(errs...)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
