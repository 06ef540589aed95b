package daoengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	httpadapter "daogov/contexts/governance/dao-engine/adapters/http"
	"daogov/contexts/governance/dao-engine/adapters/memory"
	application "daogov/contexts/governance/dao-engine/application"
	"daogov/contexts/governance/dao-engine/application/commands"
	"daogov/contexts/governance/dao-engine/application/queries"
	"daogov/contexts/governance/dao-engine/application/workers"
	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
	"daogov/contexts/governance/dao-engine/domain/services"
	"daogov/contexts/governance/dao-engine/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Commands commands.GovernanceUseCase
	Queries  queries.GovernanceQueries
	Relay    workers.OutboxRelay
	Expiry   workers.ExpiryFinalizer
	Guard    *application.EngineGuard

	Store      *memory.Store
	Token      *memory.AssetLedger
	Dispatcher *memory.Dispatcher
}

type Dependencies struct {
	Engine         *services.Engine
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	OutboxReader   ports.OutboxRepository
	Publisher      ports.EventPublisher
	Snapshots      ports.SnapshotStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	SourceService  string
	BatchSize      int
	Token          *memory.AssetLedger
	Logger         *slog.Logger
}

// NewModule wires the use cases around deps.Engine. When a snapshot store
// holds a previous state the engine is restored from it first.
func NewModule(ctx context.Context, deps Dependencies) (Module, error) {
	if deps.Engine == nil {
		return Module{}, errors.New("dao module requires an engine")
	}
	logger := application.ResolveLogger(deps.Logger)
	if deps.Snapshots != nil {
		snapshot, found, err := deps.Snapshots.LoadSnapshot(ctx)
		if err != nil {
			return Module{}, err
		}
		if found {
			if err := deps.Engine.Restore(snapshot); err != nil {
				return Module{}, err
			}
			logger.Info("dao engine restored from snapshot",
				"event", "dao_engine_restored",
				"module", application.ModuleName,
				"layer", "module",
				"sequence", snapshot.Sequence,
				"proposal_count", len(snapshot.Proposals),
			)
		}
	}

	guard := application.NewEngineGuard(deps.Engine)
	governance := commands.GovernanceUseCase{
		Guard:          guard,
		Idempotency:    deps.Idempotency,
		Outbox:         deps.Outbox,
		Snapshots:      deps.Snapshots,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		IdempotencyTTL: deps.IdempotencyTTL,
		SourceService:  deps.SourceService,
		Logger:         deps.Logger,
	}
	governanceQueries := queries.GovernanceQueries{
		Guard: guard,
		Clock: deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Commands: governance,
			Queries:  governanceQueries,
			Token:    deps.Token,
			Custody:  deps.Engine.CustodyAccount(),
			Logger:   deps.Logger,
		},
		Commands: governance,
		Queries:  governanceQueries,
		Relay: workers.OutboxRelay{
			Outbox:    deps.OutboxReader,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.BatchSize,
			Logger:    deps.Logger,
		},
		Expiry: workers.ExpiryFinalizer{
			Commands: governance,
			Queries:  governanceQueries,
			Logger:   deps.Logger,
		},
		Guard: guard,
		Token: deps.Token,
	}, nil
}

// InMemoryConfig describes a self-contained engine backed by the development
// token ledger.
type InMemoryConfig struct {
	Owner          string
	CustodyAccount string
	// TreasuryAccount sends and approves on behalf of executed token
	// instructions. Deposits held by CustodyAccount are never spent that way.
	TreasuryAccount string
	MinQuorum       entities.Amount
	VotingPeriod    time.Duration
	Token           memory.TokenMetadata
	// TokenAddress registers the token as a dispatch target when set.
	TokenAddress string
	Genesis      map[string]entities.Amount
}

const defaultTreasuryAccount = "dao-treasury"

// NewInMemoryModule runs the engine, its stores and the development token in
// process memory.
func NewInMemoryModule(cfg InMemoryConfig, logger *slog.Logger) (Module, error) {
	store := memory.NewStore()
	module, err := NewDevelopmentModule(context.Background(), cfg, Dependencies{
		Idempotency:    store,
		Outbox:         store,
		OutboxReader:   store,
		Snapshots:      store,
		Clock:          store,
		IDGen:          store,
		IdempotencyTTL: 24 * time.Hour,
		Logger:         logger,
	})
	if err != nil {
		return Module{}, err
	}
	module.Store = store
	return module, nil
}

// NewDevelopmentModule builds the engine on top of the development token
// ledger and dispatcher while persistence comes from deps. deps.Engine and
// deps.Token are replaced. The development ledger does not survive a restart,
// so after a snapshot restore the custody account is re-minted up to the
// restored deposit total.
func NewDevelopmentModule(ctx context.Context, cfg InMemoryConfig, deps Dependencies) (Module, error) {
	token := memory.NewAssetLedger(cfg.Token)
	for principal, amount := range cfg.Genesis {
		if err := token.Mint(principal, amount); err != nil {
			return Module{}, err
		}
	}
	treasury := strings.TrimSpace(cfg.TreasuryAccount)
	if treasury == "" {
		treasury = defaultTreasuryAccount
	}
	if treasury == strings.TrimSpace(cfg.CustodyAccount) {
		return Module{}, fmt.Errorf("%w: treasury account must differ from custody account", domainerrors.ErrInvalidConfig)
	}
	dispatcher := memory.NewDispatcher()
	if address := strings.TrimSpace(cfg.TokenAddress); address != "" {
		memory.RegisterToken(dispatcher, address, treasury, token)
	}
	engine, err := services.NewEngine(services.Config{
		Owner:          cfg.Owner,
		CustodyAccount: cfg.CustodyAccount,
		MinQuorum:      cfg.MinQuorum,
		VotingPeriod:   cfg.VotingPeriod,
		Ledger:         token.Account(cfg.CustodyAccount),
		Dispatcher:     dispatcher,
	})
	if err != nil {
		return Module{}, err
	}
	deps.Engine = engine
	deps.Token = token
	module, err := NewModule(ctx, deps)
	if err != nil {
		return Module{}, err
	}

	custody, err := token.BalanceOf(ctx, cfg.CustodyAccount)
	if err != nil {
		return Module{}, err
	}
	if deposited := engine.TotalDeposited(); deposited > custody {
		if err := token.Mint(cfg.CustodyAccount, deposited-custody); err != nil {
			return Module{}, err
		}
		application.ResolveLogger(deps.Logger).Warn("development ledger custody reseeded",
			"event", "dao_dev_custody_reseeded",
			"module", application.ModuleName,
			"layer", "module",
			"amount", uint64(deposited-custody),
		)
	}
	module.Dispatcher = dispatcher
	return module, nil
}
