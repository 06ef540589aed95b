package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "daogov/contexts/governance/dao-engine/application"
	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
	"daogov/contexts/governance/dao-engine/domain/services"
	"daogov/contexts/governance/dao-engine/ports"
)

type DepositCommand struct {
	Principal      string
	Amount         entities.Amount
	IdempotencyKey string
}

type WithdrawCommand struct {
	Principal      string
	Amount         entities.Amount
	IdempotencyKey string
}

type CreateProposalCommand struct {
	Principal      string
	Recipient      string
	Description    string
	Payload        []byte
	Deadline       time.Time
	IdempotencyKey string
}

type VoteCommand struct {
	Principal      string
	ProposalID     uint64
	IdempotencyKey string
}

type UnVoteCommand struct {
	Principal      string
	ProposalID     uint64
	IdempotencyKey string
}

type DelegateCommand struct {
	Principal      string
	ProposalID     uint64
	Delegate       string
	IdempotencyKey string
}

type ExecuteProposalCommand struct {
	Principal      string
	ProposalID     uint64
	IdempotencyKey string
}

type FinalizeExpiredCommand struct {
	Principal  string
	ProposalID uint64
}

type TransferOwnershipCommand struct {
	Principal string
	NewOwner  string
}

type SetMinQuorumCommand struct {
	Principal string
	MinQuorum entities.Amount
}

// GovernanceUseCase applies commands to the engine one at a time. After each
// committed transition it appends the drained events to the outbox, saves a
// snapshot and records the idempotency key. Idempotency keys are optional;
// a replay returns the current view of the originally affected record.
// A failed write keeps the transition and leaves it in the guard backlog;
// later commands are rejected with ErrPersistenceDegraded until it drains.
type GovernanceUseCase struct {
	Guard          *application.EngineGuard
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Snapshots      ports.SnapshotStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	SourceService  string
	Logger         *slog.Logger
}

type mutation struct {
	op        string
	principal string
	key       string
	hash      string
	attrs     []any
	apply     func(engine *services.Engine, call services.Call) (string, error)
}

func (uc GovernanceUseCase) Deposit(ctx context.Context, cmd DepositCommand) (entities.Voter, bool, error) {
	principal := strings.TrimSpace(cmd.Principal)
	_, replayed, err := uc.run(ctx, mutation{
		op:        "deposit",
		principal: principal,
		key:       cmd.IdempotencyKey,
		hash:      hashCommand("deposit", principal, formatAmount(cmd.Amount)),
		attrs:     []any{"amount", uint64(cmd.Amount)},
		apply: func(engine *services.Engine, call services.Call) (string, error) {
			return principal, engine.Deposit(ctx, call, cmd.Amount)
		},
	})
	if err != nil {
		return entities.Voter{}, false, err
	}
	return uc.voterView(principal), replayed, nil
}

func (uc GovernanceUseCase) Withdraw(ctx context.Context, cmd WithdrawCommand) (entities.Voter, bool, error) {
	principal := strings.TrimSpace(cmd.Principal)
	_, replayed, err := uc.run(ctx, mutation{
		op:        "withdraw",
		principal: principal,
		key:       cmd.IdempotencyKey,
		hash:      hashCommand("withdraw", principal, formatAmount(cmd.Amount)),
		attrs:     []any{"amount", uint64(cmd.Amount)},
		apply: func(engine *services.Engine, call services.Call) (string, error) {
			return principal, engine.Withdraw(ctx, call, cmd.Amount)
		},
	})
	if err != nil {
		return entities.Voter{}, false, err
	}
	return uc.voterView(principal), replayed, nil
}

func (uc GovernanceUseCase) CreateProposal(ctx context.Context, cmd CreateProposalCommand) (entities.Proposal, bool, error) {
	principal := strings.TrimSpace(cmd.Principal)
	ref, replayed, err := uc.run(ctx, mutation{
		op:        "proposal_create",
		principal: principal,
		key:       cmd.IdempotencyKey,
		hash: hashCommand("proposal_create", principal, strings.TrimSpace(cmd.Recipient), cmd.Description,
			hex.EncodeToString(cmd.Payload), cmd.Deadline.UTC().Format(time.RFC3339Nano)),
		attrs: []any{"recipient", strings.TrimSpace(cmd.Recipient)},
		apply: func(engine *services.Engine, call services.Call) (string, error) {
			proposal, err := engine.CreateProposal(call, services.ProposalInput{
				Recipient:   cmd.Recipient,
				Description: cmd.Description,
				Payload:     cmd.Payload,
				Deadline:    cmd.Deadline,
			})
			if err != nil {
				return "", err
			}
			return strconv.FormatUint(proposal.ID, 10), nil
		},
	})
	if err != nil {
		return entities.Proposal{}, false, err
	}
	proposal, err := uc.proposalByRef(ref)
	return proposal, replayed, err
}

func (uc GovernanceUseCase) Vote(ctx context.Context, cmd VoteCommand) (entities.Vote, bool, error) {
	principal := strings.TrimSpace(cmd.Principal)
	_, replayed, err := uc.run(ctx, mutation{
		op:        "vote",
		principal: principal,
		key:       cmd.IdempotencyKey,
		hash:      hashCommand("vote", principal, strconv.FormatUint(cmd.ProposalID, 10)),
		attrs:     []any{"proposal_id", cmd.ProposalID},
		apply: func(engine *services.Engine, call services.Call) (string, error) {
			_, err := engine.Vote(call, cmd.ProposalID)
			return strconv.FormatUint(cmd.ProposalID, 10), err
		},
	})
	if err != nil {
		return entities.Vote{}, false, err
	}
	var vote entities.Vote
	uc.Guard.View(func(engine *services.Engine) {
		vote, _ = engine.VoteOf(cmd.ProposalID, principal)
	})
	return vote, replayed, nil
}

// UnVote returns the revoked vote. A replayed call returns an empty vote
// because the record no longer exists.
func (uc GovernanceUseCase) UnVote(ctx context.Context, cmd UnVoteCommand) (entities.Vote, bool, error) {
	principal := strings.TrimSpace(cmd.Principal)
	var revoked entities.Vote
	_, replayed, err := uc.run(ctx, mutation{
		op:        "unvote",
		principal: principal,
		key:       cmd.IdempotencyKey,
		hash:      hashCommand("unvote", principal, strconv.FormatUint(cmd.ProposalID, 10)),
		attrs:     []any{"proposal_id", cmd.ProposalID},
		apply: func(engine *services.Engine, call services.Call) (string, error) {
			vote, err := engine.UnVote(call, cmd.ProposalID)
			revoked = vote
			return strconv.FormatUint(cmd.ProposalID, 10), err
		},
	})
	if err != nil {
		return entities.Vote{}, false, err
	}
	return revoked, replayed, nil
}

func (uc GovernanceUseCase) Delegate(ctx context.Context, cmd DelegateCommand) (entities.Delegation, bool, error) {
	principal := strings.TrimSpace(cmd.Principal)
	_, replayed, err := uc.run(ctx, mutation{
		op:        "delegate",
		principal: principal,
		key:       cmd.IdempotencyKey,
		hash:      hashCommand("delegate", principal, strconv.FormatUint(cmd.ProposalID, 10), strings.TrimSpace(cmd.Delegate)),
		attrs:     []any{"proposal_id", cmd.ProposalID, "delegate", strings.TrimSpace(cmd.Delegate)},
		apply: func(engine *services.Engine, call services.Call) (string, error) {
			_, err := engine.Delegate(call, cmd.ProposalID, cmd.Delegate)
			return strconv.FormatUint(cmd.ProposalID, 10), err
		},
	})
	if err != nil {
		return entities.Delegation{}, false, err
	}
	var delegation entities.Delegation
	uc.Guard.View(func(engine *services.Engine) {
		delegation, _ = engine.DelegationOf(cmd.ProposalID, principal)
	})
	return delegation, replayed, nil
}

func (uc GovernanceUseCase) ExecuteProposal(ctx context.Context, cmd ExecuteProposalCommand) (entities.Proposal, bool, error) {
	principal := strings.TrimSpace(cmd.Principal)
	ref, replayed, err := uc.run(ctx, mutation{
		op:        "proposal_execute",
		principal: principal,
		key:       cmd.IdempotencyKey,
		hash:      hashCommand("proposal_execute", principal, strconv.FormatUint(cmd.ProposalID, 10)),
		attrs:     []any{"proposal_id", cmd.ProposalID},
		apply: func(engine *services.Engine, call services.Call) (string, error) {
			_, err := engine.ExecuteProposal(ctx, call, cmd.ProposalID)
			return strconv.FormatUint(cmd.ProposalID, 10), err
		},
	})
	if err != nil {
		return entities.Proposal{}, false, err
	}
	proposal, err := uc.proposalByRef(ref)
	return proposal, replayed, err
}

func (uc GovernanceUseCase) FinalizeExpired(ctx context.Context, cmd FinalizeExpiredCommand) (entities.Proposal, error) {
	ref, _, err := uc.run(ctx, mutation{
		op:        "proposal_finalize",
		principal: strings.TrimSpace(cmd.Principal),
		attrs:     []any{"proposal_id", cmd.ProposalID},
		apply: func(engine *services.Engine, call services.Call) (string, error) {
			return strconv.FormatUint(cmd.ProposalID, 10), engine.FinalizeExpired(call, cmd.ProposalID)
		},
	})
	if err != nil {
		return entities.Proposal{}, err
	}
	return uc.proposalByRef(ref)
}

func (uc GovernanceUseCase) TransferOwnership(ctx context.Context, cmd TransferOwnershipCommand) error {
	_, _, err := uc.run(ctx, mutation{
		op:        "ownership_transfer",
		principal: strings.TrimSpace(cmd.Principal),
		attrs:     []any{"new_owner", strings.TrimSpace(cmd.NewOwner)},
		apply: func(engine *services.Engine, call services.Call) (string, error) {
			return "", engine.TransferOwnership(call, cmd.NewOwner)
		},
	})
	return err
}

func (uc GovernanceUseCase) SetMinQuorum(ctx context.Context, cmd SetMinQuorumCommand) error {
	_, _, err := uc.run(ctx, mutation{
		op:        "quorum_set",
		principal: strings.TrimSpace(cmd.Principal),
		attrs:     []any{"min_quorum", uint64(cmd.MinQuorum)},
		apply: func(engine *services.Engine, call services.Call) (string, error) {
			return "", engine.SetMinQuorum(call, cmd.MinQuorum)
		},
	})
	return err
}

func (uc GovernanceUseCase) run(ctx context.Context, m mutation) (string, bool, error) {
	logger := application.ResolveLogger(uc.Logger)
	base := []any{
		"module", application.ModuleName,
		"layer", "application",
		"principal", m.principal,
	}
	base = append(base, m.attrs...)
	logger.Info("dao command processing started", append([]any{"event", "dao_" + m.op + "_started"}, base...)...)

	now := uc.now()
	key := strings.TrimSpace(m.key)
	if key != "" && uc.Idempotency != nil {
		record, found, err := uc.Idempotency.Get(ctx, key, now)
		if err != nil {
			logger.Error("dao command idempotency lookup failed",
				append([]any{"event", "dao_" + m.op + "_idempotency_lookup_failed", "error", err.Error()}, base...)...)
			return "", false, err
		}
		if found {
			if record.RequestHash != m.hash {
				logger.Warn("dao command idempotency conflict",
					append([]any{"event", "dao_" + m.op + "_idempotency_conflict"}, base...)...)
				return "", false, domainerrors.ErrIdempotencyConflict
			}
			logger.Info("dao command replayed",
				append([]any{"event", "dao_" + m.op + "_replayed"}, base...)...)
			return record.ResultRef, true, nil
		}
	}

	var ref string
	var persistErr error
	err := uc.Guard.Apply(func(engine *services.Engine, backlog *application.Backlog) error {
		// Nothing new touches the ledger while earlier commits are not durable.
		if !backlog.Empty() {
			if err := uc.flush(ctx, engine, backlog, now); err != nil {
				return errors.Join(domainerrors.ErrPersistenceDegraded, err)
			}
			logger.Info("dao persistence backlog flushed",
				append([]any{"event", "dao_backlog_flushed"}, base...)...)
		}
		var applyErr error
		ref, applyErr = m.apply(engine, services.Call{Caller: m.principal, Now: now})
		events := engine.DrainEvents()
		if applyErr != nil {
			return applyErr
		}
		// Ledger and dispatch effects are already external, so a committed
		// transition is never rolled back. Failed writes stay in the backlog.
		backlog.Events = append(backlog.Events, events...)
		backlog.Snapshot = true
		persistErr = uc.flush(ctx, engine, backlog, now)
		return nil
	})
	if err != nil {
		class := domainerrors.ClassOf(err)
		fields := append([]any{"event", "dao_" + m.op + "_rejected", "error_class", string(class), "error", err.Error()}, base...)
		if class == domainerrors.ClassUnknown || class == domainerrors.ClassInfrastructure {
			logger.Error("dao command failed", fields...)
		} else {
			logger.Warn("dao command rejected", fields...)
		}
		return "", false, err
	}
	if persistErr != nil {
		logger.Error("dao command persistence deferred",
			append([]any{"event", "dao_" + m.op + "_persist_deferred", "error", persistErr.Error()}, base...)...)
	}

	if key != "" && uc.Idempotency != nil {
		if err := uc.Idempotency.Put(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: m.hash,
			ResultRef:   ref,
			ExpiresAt:   now.Add(uc.resolveIdempotencyTTL()),
		}); err != nil {
			logger.Error("dao command idempotency record failed",
				append([]any{"event", "dao_" + m.op + "_idempotency_record_failed", "error", err.Error()}, base...)...)
		}
	}
	logger.Info("dao command applied", append([]any{"event", "dao_" + m.op + "_applied"}, base...)...)
	return ref, false, nil
}

// flush drains the backlog in order: envelopes get their event ids, rows are
// appended to the outbox, then the current engine state is saved. Outbox
// appends are idempotent per event id, so a partial flush can be retried.
func (uc GovernanceUseCase) flush(ctx context.Context, engine *services.Engine, backlog *application.Backlog, now time.Time) error {
	if uc.Outbox == nil {
		backlog.Events = nil
		backlog.Envelopes = nil
	}
	for len(backlog.Events) > 0 {
		eventID, err := uc.newID(ctx)
		if err != nil {
			return err
		}
		envelope, err := newGovernanceEnvelope(eventID, uc.sourceService(), backlog.Events[0])
		if err != nil {
			return err
		}
		backlog.Envelopes = append(backlog.Envelopes, envelope)
		backlog.Events = backlog.Events[1:]
	}
	for len(backlog.Envelopes) > 0 {
		if err := uc.Outbox.AppendOutbox(ctx, backlog.Envelopes[0]); err != nil {
			return err
		}
		backlog.Envelopes = backlog.Envelopes[1:]
	}
	if backlog.Snapshot && uc.Snapshots != nil {
		if err := uc.Snapshots.SaveSnapshot(ctx, engine.Snapshot(), now); err != nil {
			return err
		}
	}
	backlog.Snapshot = false
	return nil
}

func (uc GovernanceUseCase) voterView(principal string) entities.Voter {
	var voter entities.Voter
	now := uc.now()
	uc.Guard.View(func(engine *services.Engine) {
		voter = engine.Voter(principal, now)
	})
	return voter
}

func (uc GovernanceUseCase) proposalByRef(ref string) (entities.Proposal, error) {
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	var proposal entities.Proposal
	uc.Guard.View(func(engine *services.Engine) {
		proposal, err = engine.Proposal(id)
	})
	return proposal, err
}

func (uc GovernanceUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc GovernanceUseCase) newID(ctx context.Context) (string, error) {
	if uc.IDGen == nil {
		return "", domainerrors.ErrInvalidConfig
	}
	return uc.IDGen.NewID(ctx)
}

func (uc GovernanceUseCase) sourceService() string {
	if strings.TrimSpace(uc.SourceService) == "" {
		return "dao-engine"
	}
	return strings.TrimSpace(uc.SourceService)
}

func (uc GovernanceUseCase) resolveIdempotencyTTL() time.Duration {
	if uc.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return uc.IdempotencyTTL
}

func formatAmount(amount entities.Amount) string {
	return strconv.FormatUint(uint64(amount), 10)
}

func hashCommand(op string, fields ...string) string {
	raw, _ := json.Marshal(append([]string{op}, fields...))
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
