package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	daoengine "daogov/contexts/governance/dao-engine"
	httpadapter "daogov/contexts/governance/dao-engine/adapters/http"
	"daogov/contexts/governance/dao-engine/adapters/memory"
	"daogov/contexts/governance/dao-engine/application/commands"
	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
	httptransport "daogov/contexts/governance/dao-engine/transport/http"
	"daogov/internal/platform/abi"
)

var daoGenesis = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func newDAOModule(t *testing.T) daoengine.Module {
	t.Helper()
	module, err := daoengine.NewInMemoryModule(daoengine.InMemoryConfig{
		Owner:          "owner",
		CustodyAccount: "dao-custody",
		MinQuorum:      32,
		VotingPeriod:   72 * time.Hour,
		Token:          memory.TokenMetadata{Name: "Corgy", Symbol: "CRG", Decimals: 18},
		TokenAddress:   "token",
		Genesis: map[string]entities.Amount{
			"voter-a": 1000,
			"voter-b": 1000,
			"voter-c": 1000,
		},
	}, nil)
	if err != nil {
		t.Fatalf("build dao module: %v", err)
	}
	module.Store.SetNow(daoGenesis)
	return module
}

func daoDeposit(t *testing.T, module daoengine.Module, principal string, amount entities.Amount) {
	t.Helper()
	if err := module.Token.Approve(principal, "dao-custody", amount); err != nil {
		t.Fatalf("approve %s: %v", principal, err)
	}
	if _, _, err := module.Commands.Deposit(context.Background(), commands.DepositCommand{
		Principal: principal,
		Amount:    amount,
	}); err != nil {
		t.Fatalf("deposit %s: %v", principal, err)
	}
}

func daoPropose(t *testing.T, module daoengine.Module, payload []byte) entities.Proposal {
	t.Helper()
	proposal, _, err := module.Commands.CreateProposal(context.Background(), commands.CreateProposalCommand{
		Principal:   "owner",
		Recipient:   "token",
		Description: "token instruction",
		Payload:     payload,
		Deadline:    daoGenesis.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	return proposal
}

func TestDAOExecutesProposalAfterQuorum(t *testing.T) {
	module := newDAOModule(t)
	ctx := context.Background()
	proposal := daoPropose(t, module, abi.EncodeCall("name()"))
	daoDeposit(t, module, "voter-a", 500)

	vote, _, err := module.Commands.Vote(ctx, commands.VoteCommand{Principal: "voter-a", ProposalID: proposal.ID})
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if vote.Weight != 500 {
		t.Fatalf("expected weight 500, got %d", vote.Weight)
	}
	balance, err := module.Queries.ProposalBalance(ctx, proposal.ID)
	if err != nil || balance != 500 {
		t.Fatalf("expected tally 500, got %d err=%v", balance, err)
	}

	executed, _, err := module.Commands.ExecuteProposal(ctx, commands.ExecuteProposalCommand{Principal: "voter-b", ProposalID: proposal.ID})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !executed.Executed || executed.VotingOpen {
		t.Fatalf("expected executed closed proposal, got %+v", executed)
	}

	pending, err := module.Store.ListPendingOutbox(ctx, 100)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	last := pending[len(pending)-1]
	if last.EventType != string(entities.EventProposalExecutionSucceeded) {
		t.Fatalf("expected execution event last, got %s", last.EventType)
	}
}

func TestDAODispatchFailureKeepsProposalOpenForRetry(t *testing.T) {
	module := newDAOModule(t)
	ctx := context.Background()
	payload := abi.EncodeCall("burn(uint256)", abi.Uint64Word(5))
	proposal := daoPropose(t, module, payload)
	daoDeposit(t, module, "voter-a", 40)
	if _, _, err := module.Commands.Vote(ctx, commands.VoteCommand{Principal: "voter-a", ProposalID: proposal.ID}); err != nil {
		t.Fatalf("vote: %v", err)
	}
	before := module.Queries.EngineInfo(ctx).Sequence

	_, _, err := module.Commands.ExecuteProposal(ctx, commands.ExecuteProposalCommand{Principal: "voter-a", ProposalID: proposal.ID})
	if !errors.Is(err, domainerrors.ErrInstructionDispatchFailed) {
		t.Fatalf("expected dispatch failure, got %v", err)
	}
	view, err := module.Queries.GetProposal(ctx, proposal.ID)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if view.Status != entities.ProposalStatusOpen || view.Proposal.Executed {
		t.Fatalf("expected open proposal after failed dispatch, got %+v", view)
	}
	if after := module.Queries.EngineInfo(ctx).Sequence; after != before {
		t.Fatalf("failed execution advanced sequence from %d to %d", before, after)
	}

	burned := false
	module.Dispatcher.Register("token", "burn(uint256)", func(context.Context, []byte) error {
		burned = true
		return nil
	})
	if _, _, err := module.Commands.ExecuteProposal(ctx, commands.ExecuteProposalCommand{Principal: "voter-a", ProposalID: proposal.ID}); err != nil {
		t.Fatalf("retry execute: %v", err)
	}
	if !burned {
		t.Fatalf("expected retried instruction to reach the target")
	}
}

func TestDAOZeroBalanceAndNotAVoter(t *testing.T) {
	module := newDAOModule(t)
	ctx := context.Background()
	proposal := daoPropose(t, module, nil)

	if _, _, err := module.Commands.Vote(ctx, commands.VoteCommand{Principal: "voter-c", ProposalID: proposal.ID}); !errors.Is(err, domainerrors.ErrZeroBalance) {
		t.Fatalf("expected zero balance, got %v", err)
	}
	if _, _, err := module.Commands.UnVote(ctx, commands.UnVoteCommand{Principal: "voter-c", ProposalID: proposal.ID}); !errors.Is(err, domainerrors.ErrNotAVoter) {
		t.Fatalf("expected not a voter, got %v", err)
	}
}

func TestDAODelegatedDepositStaysLockedUntilExecution(t *testing.T) {
	module := newDAOModule(t)
	ctx := context.Background()
	proposal := daoPropose(t, module, abi.EncodeCall("symbol()"))
	daoDeposit(t, module, "voter-a", 10)
	daoDeposit(t, module, "voter-b", 30)

	if _, _, err := module.Commands.Delegate(ctx, commands.DelegateCommand{
		Principal:  "voter-a",
		ProposalID: proposal.ID,
		Delegate:   "voter-b",
	}); err != nil {
		t.Fatalf("delegate: %v", err)
	}
	vote, _, err := module.Commands.Vote(ctx, commands.VoteCommand{Principal: "voter-b", ProposalID: proposal.ID})
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if vote.Weight != 40 || vote.Delegated["voter-a"] != 10 {
		t.Fatalf("expected delegated weight included, got %+v", vote)
	}

	if _, _, err := module.Commands.Withdraw(ctx, commands.WithdrawCommand{Principal: "voter-a", Amount: 10}); !errors.Is(err, domainerrors.ErrFundsLocked) {
		t.Fatalf("expected funds locked, got %v", err)
	}
	if _, _, err := module.Commands.ExecuteProposal(ctx, commands.ExecuteProposalCommand{Principal: "voter-b", ProposalID: proposal.ID}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	voter, _, err := module.Commands.Withdraw(ctx, commands.WithdrawCommand{Principal: "voter-a", Amount: 10})
	if err != nil {
		t.Fatalf("withdraw after execution: %v", err)
	}
	if voter.DepositedBalance != 0 {
		t.Fatalf("expected empty deposit, got %d", voter.DepositedBalance)
	}
	if held, _ := module.Token.BalanceOf(ctx, "voter-a"); held != 1000 {
		t.Fatalf("expected tokens returned to voter-a, got %d", held)
	}
}

func TestDAOTokenInstructionSpendsTreasuryNotCustody(t *testing.T) {
	module := newDAOModule(t)
	ctx := context.Background()
	if err := module.Token.Mint("dao-treasury", 25); err != nil {
		t.Fatalf("fund treasury: %v", err)
	}
	daoDeposit(t, module, "voter-a", 100)
	daoDeposit(t, module, "voter-b", 100)

	grantee, err := abi.StringWord("grantee")
	if err != nil {
		t.Fatalf("encode recipient: %v", err)
	}
	grant := daoPropose(t, module, abi.EncodeCall("transfer(address,uint256)", grantee, abi.Uint64Word(25)))
	owner, err := abi.StringWord("owner")
	if err != nil {
		t.Fatalf("encode recipient: %v", err)
	}
	drain := daoPropose(t, module, abi.EncodeCall("transfer(address,uint256)", owner, abi.Uint64Word(200)))
	for _, id := range []uint64{grant.ID, drain.ID} {
		if _, _, err := module.Commands.Vote(ctx, commands.VoteCommand{Principal: "voter-a", ProposalID: id}); err != nil {
			t.Fatalf("vote on %d: %v", id, err)
		}
	}

	if _, _, err := module.Commands.ExecuteProposal(ctx, commands.ExecuteProposalCommand{Principal: "owner", ProposalID: grant.ID}); err != nil {
		t.Fatalf("execute grant: %v", err)
	}
	if held, _ := module.Token.BalanceOf(ctx, "grantee"); held != 25 {
		t.Fatalf("expected grantee to receive 25, got %d", held)
	}
	if _, _, err := module.Commands.ExecuteProposal(ctx, commands.ExecuteProposalCommand{Principal: "owner", ProposalID: drain.ID}); !errors.Is(err, domainerrors.ErrInstructionDispatchFailed) {
		t.Fatalf("expected transfer beyond treasury to fail, got %v", err)
	}
	if held, _ := module.Token.BalanceOf(ctx, "dao-custody"); held != 200 {
		t.Fatalf("expected custody to keep 200, got %d", held)
	}
	if err := module.Queries.Audit(ctx); err != nil {
		t.Fatalf("expected custody to stay solvent, got %v", err)
	}
	if _, _, err := module.Commands.Withdraw(ctx, commands.WithdrawCommand{Principal: "voter-b", Amount: 100}); err != nil {
		t.Fatalf("expected non-voter withdraw to succeed, got %v", err)
	}
}

func TestDAOTokenRoutesRejectCustodyAccount(t *testing.T) {
	module := newDAOModule(t)
	ctx := context.Background()
	daoDeposit(t, module, "voter-a", 100)

	if _, err := module.Handler.TokenTransferHandler(ctx, "dao-custody", httptransport.TokenTransferRequest{To: "owner", Amount: 100}); !errors.Is(err, httpadapter.ErrCustodyAccountReserved) {
		t.Fatalf("expected custody transfer to be rejected, got %v", err)
	}
	if _, err := module.Handler.TokenApproveHandler(ctx, " dao-custody ", httptransport.TokenApproveRequest{Spender: "owner", Amount: 100}); !errors.Is(err, httpadapter.ErrCustodyAccountReserved) {
		t.Fatalf("expected custody approval to be rejected, got %v", err)
	}
	if held, _ := module.Token.BalanceOf(ctx, "dao-custody"); held != 100 {
		t.Fatalf("expected custody to keep 100, got %d", held)
	}
	if _, err := module.Handler.TokenTransferHandler(ctx, "voter-b", httptransport.TokenTransferRequest{To: "owner", Amount: 10}); err != nil {
		t.Fatalf("expected regular transfer to succeed, got %v", err)
	}
}

type flakySnapshots struct {
	*memory.Store
	failing bool
}

var errSnapshotsDown = errors.New("snapshot store unavailable")

func (s *flakySnapshots) SaveSnapshot(ctx context.Context, snapshot entities.Snapshot, savedAt time.Time) error {
	if s.failing {
		return errSnapshotsDown
	}
	return s.Store.SaveSnapshot(ctx, snapshot, savedAt)
}

func TestDAOFailedSnapshotKeepsCommittedWithdrawal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.SetNow(daoGenesis)
	snapshots := &flakySnapshots{Store: store}
	module, err := daoengine.NewDevelopmentModule(ctx, daoengine.InMemoryConfig{
		Owner:          "owner",
		CustodyAccount: "dao-custody",
		MinQuorum:      32,
		VotingPeriod:   72 * time.Hour,
		Genesis:        map[string]entities.Amount{"voter-a": 1000},
	}, daoengine.Dependencies{
		Idempotency:  store,
		Outbox:       store,
		OutboxReader: store,
		Snapshots:    snapshots,
		Clock:        store,
		IDGen:        store,
	})
	if err != nil {
		t.Fatalf("build dao module: %v", err)
	}
	daoDeposit(t, module, "voter-a", 100)

	snapshots.failing = true
	voter, _, err := module.Commands.Withdraw(ctx, commands.WithdrawCommand{Principal: "voter-a", Amount: 100})
	if err != nil {
		t.Fatalf("expected committed withdraw to be acknowledged, got %v", err)
	}
	if voter.DepositedBalance != 0 {
		t.Fatalf("expected withdrawn balance to stay withdrawn, got %d", voter.DepositedBalance)
	}
	if held, _ := module.Token.BalanceOf(ctx, "voter-a"); held != 1000 {
		t.Fatalf("expected tokens back with voter-a, got %d", held)
	}
	if err := module.Queries.Audit(ctx); err != nil {
		t.Fatalf("expected custody to match deposits, got %v", err)
	}
	if !module.Guard.Degraded() {
		t.Fatalf("expected unsaved snapshot to leave the guard degraded")
	}

	if err := module.Token.Approve("voter-a", "dao-custody", 10); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, _, err := module.Commands.Deposit(ctx, commands.DepositCommand{Principal: "voter-a", Amount: 10}); !errors.Is(err, domainerrors.ErrPersistenceDegraded) {
		t.Fatalf("expected degraded rejection, got %v", err)
	}
	if held, _ := module.Token.BalanceOf(ctx, "voter-a"); held != 1000 {
		t.Fatalf("expected rejected deposit to leave the ledger alone, got %d", held)
	}

	snapshots.failing = false
	if _, _, err := module.Commands.Deposit(ctx, commands.DepositCommand{Principal: "voter-a", Amount: 10}); err != nil {
		t.Fatalf("deposit after recovery: %v", err)
	}
	if module.Guard.Degraded() {
		t.Fatalf("expected backlog to drain after recovery")
	}
	saved, found, err := store.LoadSnapshot(ctx)
	if err != nil || !found {
		t.Fatalf("load snapshot found=%v err=%v", found, err)
	}
	if saved.TotalDeposited != 10 || saved.Sequence != module.Queries.EngineInfo(ctx).Sequence {
		t.Fatalf("unexpected saved snapshot %+v", saved)
	}

	pending, err := store.ListPendingOutbox(ctx, 100)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	withdrawn := 0
	for _, message := range pending {
		if message.EventType == string(entities.EventWithdraw) {
			withdrawn++
		}
	}
	if withdrawn != 1 {
		t.Fatalf("expected one withdrawn event, got %d", withdrawn)
	}
}

func TestDAOIdempotentVoteReplays(t *testing.T) {
	module := newDAOModule(t)
	ctx := context.Background()
	proposal := daoPropose(t, module, nil)
	daoDeposit(t, module, "voter-a", 20)

	cmd := commands.VoteCommand{Principal: "voter-a", ProposalID: proposal.ID, IdempotencyKey: "vote-1"}
	if _, replayed, err := module.Commands.Vote(ctx, cmd); err != nil || replayed {
		t.Fatalf("first vote replayed=%v err=%v", replayed, err)
	}
	vote, replayed, err := module.Commands.Vote(ctx, cmd)
	if err != nil || !replayed || vote.Weight != 20 {
		t.Fatalf("expected replayed vote of 20, got %+v replayed=%v err=%v", vote, replayed, err)
	}
	if _, _, err := module.Commands.Vote(ctx, commands.VoteCommand{Principal: "voter-a", ProposalID: proposal.ID}); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already voted without key, got %v", err)
	}
	if _, _, err := module.Commands.Vote(ctx, commands.VoteCommand{Principal: "voter-b", ProposalID: proposal.ID, IdempotencyKey: "vote-1"}); !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict for another principal, got %v", err)
	}
}

func TestDAOExpiryFinalizerClosesProposals(t *testing.T) {
	module := newDAOModule(t)
	ctx := context.Background()
	proposal := daoPropose(t, module, nil)
	daoDeposit(t, module, "voter-a", 5)
	if _, _, err := module.Commands.Vote(ctx, commands.VoteCommand{Principal: "voter-a", ProposalID: proposal.ID}); err != nil {
		t.Fatalf("vote: %v", err)
	}

	if count, err := module.Expiry.RunOnce(ctx); err != nil || count != 0 {
		t.Fatalf("expected nothing to finalize before deadline, got %d err=%v", count, err)
	}
	module.Store.Advance(72 * time.Hour)
	if count, err := module.Expiry.RunOnce(ctx); err != nil || count != 1 {
		t.Fatalf("expected one finalized proposal, got %d err=%v", count, err)
	}
	view, err := module.Queries.GetProposal(ctx, proposal.ID)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if view.Status != entities.ProposalStatusExpired || view.Proposal.VotingOpen {
		t.Fatalf("expected expired closed proposal, got %+v", view)
	}
	if _, _, err := module.Commands.Withdraw(ctx, commands.WithdrawCommand{Principal: "voter-a", Amount: 5}); err != nil {
		t.Fatalf("expected withdraw after expiry, got %v", err)
	}
	if _, _, err := module.Commands.ExecuteProposal(ctx, commands.ExecuteProposalCommand{Principal: "voter-a", ProposalID: proposal.ID}); !errors.Is(err, domainerrors.ErrProposalExpired) {
		t.Fatalf("expected expired proposal, got %v", err)
	}
}

func TestDAOModuleRestoresFromSnapshot(t *testing.T) {
	module := newDAOModule(t)
	ctx := context.Background()
	proposal := daoPropose(t, module, nil)
	daoDeposit(t, module, "voter-a", 50)
	if _, _, err := module.Commands.Vote(ctx, commands.VoteCommand{Principal: "voter-a", ProposalID: proposal.ID}); err != nil {
		t.Fatalf("vote: %v", err)
	}

	restored, err := daoengine.NewDevelopmentModule(ctx, daoengine.InMemoryConfig{
		Owner:          "owner",
		CustodyAccount: "dao-custody",
		MinQuorum:      32,
		VotingPeriod:   72 * time.Hour,
	}, daoengine.Dependencies{
		Idempotency:  module.Store,
		Outbox:       module.Store,
		OutboxReader: module.Store,
		Snapshots:    module.Store,
		Clock:        module.Store,
		IDGen:        module.Store,
	})
	if err != nil {
		t.Fatalf("restore module: %v", err)
	}
	info := restored.Queries.EngineInfo(ctx)
	if info.Sequence != module.Queries.EngineInfo(ctx).Sequence || info.TotalDeposited != 50 || info.NextProposalID != 1 {
		t.Fatalf("unexpected restored engine %+v", info)
	}
	if err := restored.Queries.Audit(ctx); err != nil {
		t.Fatalf("expected restored development ledger to cover custody, got %v", err)
	}
	if _, err := restored.Queries.GetVote(ctx, proposal.ID, "voter-a"); err != nil {
		t.Fatalf("expected restored vote, got %v", err)
	}
}
