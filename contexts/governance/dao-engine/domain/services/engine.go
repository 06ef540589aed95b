package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
)

// DefaultVotingPeriod applies when a proposal is created without a deadline.
const DefaultVotingPeriod = 72 * time.Hour

// AssetLedger is the external fungible-asset ledger. Implementations act on
// behalf of the custody account: TransferFrom pulls using the custody
// account's allowance and Transfer pushes from the custody account.
type AssetLedger interface {
	TransferFrom(ctx context.Context, owner string, to string, amount entities.Amount) error
	Transfer(ctx context.Context, to string, amount entities.Amount) error
	BalanceOf(ctx context.Context, principal string) (entities.Amount, error)
	Allowance(ctx context.Context, owner string, spender string) (entities.Amount, error)
}

// Dispatcher invokes an opaque instruction against a target. The engine only
// observes success or failure.
type Dispatcher interface {
	Call(ctx context.Context, target string, payload []byte) error
}

// Call carries the authenticated caller and the externally ordered time at
// which the call is applied.
type Call struct {
	Caller string
	Now    time.Time
}

type Config struct {
	Owner          string
	CustodyAccount string
	MinQuorum      entities.Amount
	VotingPeriod   time.Duration
	Ledger         AssetLedger
	Dispatcher     Dispatcher
}

type voteKey struct {
	proposalID uint64
	principal  string
}

type state struct {
	sequence       uint64
	owner          string
	minQuorum      entities.Amount
	proposals      []entities.Proposal
	balances       map[string]entities.Amount
	totalDeposited entities.Amount
	votes          map[voteKey]entities.Vote
	delegations    map[voteKey]entities.Delegation
	pending        []entities.Event
}

func (s *state) clone() *state {
	out := &state{
		sequence:       s.sequence,
		owner:          s.owner,
		minQuorum:      s.minQuorum,
		proposals:      make([]entities.Proposal, len(s.proposals)),
		balances:       make(map[string]entities.Amount, len(s.balances)),
		totalDeposited: s.totalDeposited,
		votes:          make(map[voteKey]entities.Vote, len(s.votes)),
		delegations:    make(map[voteKey]entities.Delegation, len(s.delegations)),
		pending:        append([]entities.Event(nil), s.pending...),
	}
	for i, proposal := range s.proposals {
		out.proposals[i] = proposal.Clone()
	}
	for principal, balance := range s.balances {
		out.balances[principal] = balance
	}
	for key, vote := range s.votes {
		out.votes[key] = vote.Clone()
	}
	for key, delegation := range s.delegations {
		out.delegations[key] = delegation
	}
	return out
}

// Engine is the deterministic governance state machine. It is not safe for
// concurrent use; callers apply operations one at a time in a total order.
// Reentrant calls made by the ledger or dispatcher during an operation are
// allowed and observe the operation's effects so far.
type Engine struct {
	custody      string
	votingPeriod time.Duration
	ledger       AssetLedger
	dispatcher   Dispatcher
	st           *state
}

func NewEngine(cfg Config) (*Engine, error) {
	owner := strings.TrimSpace(cfg.Owner)
	custody := strings.TrimSpace(cfg.CustodyAccount)
	switch {
	case owner == "":
		return nil, fmt.Errorf("%w: owner is required", domainerrors.ErrInvalidConfig)
	case custody == "":
		return nil, fmt.Errorf("%w: custody account is required", domainerrors.ErrInvalidConfig)
	case cfg.Ledger == nil:
		return nil, fmt.Errorf("%w: asset ledger is required", domainerrors.ErrInvalidConfig)
	case cfg.Dispatcher == nil:
		return nil, fmt.Errorf("%w: dispatcher is required", domainerrors.ErrInvalidConfig)
	case cfg.VotingPeriod < 0:
		return nil, fmt.Errorf("%w: voting period must not be negative", domainerrors.ErrInvalidConfig)
	}
	period := cfg.VotingPeriod
	if period == 0 {
		period = DefaultVotingPeriod
	}
	return &Engine{
		custody:      custody,
		votingPeriod: period,
		ledger:       cfg.Ledger,
		dispatcher:   cfg.Dispatcher,
		st: &state{
			owner:       owner,
			minQuorum:   cfg.MinQuorum,
			balances:    make(map[string]entities.Amount),
			votes:       make(map[voteKey]entities.Vote),
			delegations: make(map[voteKey]entities.Delegation),
		},
	}, nil
}

func (e *Engine) CustodyAccount() string {
	return e.custody
}

func (e *Engine) VotingPeriod() time.Duration {
	return e.votingPeriod
}

// Sequence is the number of committed state transitions.
func (e *Engine) Sequence() uint64 {
	return e.st.sequence
}

// atomic runs fn against the live state and restores the state captured
// before fn if it fails. Nested atomic calls roll back independently, and a
// failing outer call also discards the effects of nested calls.
func (e *Engine) atomic(call Call, fn func() error) error {
	saved := e.st.clone()
	if err := fn(); err != nil {
		e.st = saved
		return err
	}
	e.st.sequence++
	for i := len(saved.pending); i < len(e.st.pending); i++ {
		if e.st.pending[i].OccurredAt.IsZero() {
			e.st.pending[i].OccurredAt = call.Now.UTC()
		}
		e.st.pending[i].Sequence = e.st.sequence
	}
	return nil
}

func (e *Engine) emit(event entities.Event) {
	e.st.pending = append(e.st.pending, event)
}

// DrainEvents returns the events of all committed operations since the last
// drain, in commit order.
func (e *Engine) DrainEvents() []entities.Event {
	events := e.st.pending
	e.st.pending = nil
	return events
}

// Snapshot captures the state for persistence. Undrained events are not part
// of the snapshot.
func (e *Engine) Snapshot() entities.Snapshot {
	st := e.st.clone()
	snapshot := entities.Snapshot{
		Sequence:       st.sequence,
		Owner:          st.owner,
		MinQuorum:      st.minQuorum,
		NextProposalID: uint64(len(st.proposals)),
		TotalDeposited: st.totalDeposited,
		Balances:       st.balances,
		Proposals:      st.proposals,
		Votes:          make([]entities.Vote, 0, len(st.votes)),
		Delegations:    make([]entities.Delegation, 0, len(st.delegations)),
	}
	for _, vote := range st.votes {
		snapshot.Votes = append(snapshot.Votes, vote)
	}
	sort.Slice(snapshot.Votes, func(i, j int) bool {
		if snapshot.Votes[i].ProposalID == snapshot.Votes[j].ProposalID {
			return snapshot.Votes[i].Voter < snapshot.Votes[j].Voter
		}
		return snapshot.Votes[i].ProposalID < snapshot.Votes[j].ProposalID
	})
	for _, delegation := range st.delegations {
		snapshot.Delegations = append(snapshot.Delegations, delegation)
	}
	sort.Slice(snapshot.Delegations, func(i, j int) bool {
		if snapshot.Delegations[i].ProposalID == snapshot.Delegations[j].ProposalID {
			return snapshot.Delegations[i].Delegator < snapshot.Delegations[j].Delegator
		}
		return snapshot.Delegations[i].ProposalID < snapshot.Delegations[j].ProposalID
	})
	return snapshot
}

// Restore replaces the engine state with snapshot after validating that its
// ids are dense and its tallies and totals are consistent.
func (e *Engine) Restore(snapshot entities.Snapshot) error {
	if strings.TrimSpace(snapshot.Owner) == "" {
		return fmt.Errorf("%w: snapshot owner is empty", domainerrors.ErrInvariantViolation)
	}
	if snapshot.NextProposalID != uint64(len(snapshot.Proposals)) {
		return fmt.Errorf("%w: next proposal id %d does not match %d proposals",
			domainerrors.ErrInvariantViolation, snapshot.NextProposalID, len(snapshot.Proposals))
	}
	st := &state{
		sequence:       snapshot.Sequence,
		owner:          strings.TrimSpace(snapshot.Owner),
		minQuorum:      snapshot.MinQuorum,
		proposals:      make([]entities.Proposal, len(snapshot.Proposals)),
		balances:       make(map[string]entities.Amount, len(snapshot.Balances)),
		totalDeposited: snapshot.TotalDeposited,
		votes:          make(map[voteKey]entities.Vote, len(snapshot.Votes)),
		delegations:    make(map[voteKey]entities.Delegation, len(snapshot.Delegations)),
	}
	for i, proposal := range snapshot.Proposals {
		if proposal.ID != uint64(i) {
			return fmt.Errorf("%w: proposal at index %d has id %d", domainerrors.ErrInvariantViolation, i, proposal.ID)
		}
		st.proposals[i] = proposal.Clone()
	}
	for principal, balance := range snapshot.Balances {
		st.balances[principal] = balance
	}
	for _, vote := range snapshot.Votes {
		if vote.ProposalID >= uint64(len(st.proposals)) {
			return fmt.Errorf("%w: vote references unknown proposal %d", domainerrors.ErrInvariantViolation, vote.ProposalID)
		}
		st.votes[voteKey{vote.ProposalID, vote.Voter}] = vote.Clone()
	}
	for _, delegation := range snapshot.Delegations {
		if delegation.ProposalID >= uint64(len(st.proposals)) {
			return fmt.Errorf("%w: delegation references unknown proposal %d", domainerrors.ErrInvariantViolation, delegation.ProposalID)
		}
		st.delegations[voteKey{delegation.ProposalID, delegation.Delegator}] = delegation
	}
	if err := checkBookkeeping(st); err != nil {
		return err
	}
	e.st = st
	return nil
}

// Audit verifies the custody and tally invariants, including solvency of the
// custody account on the external ledger.
func (e *Engine) Audit(ctx context.Context) error {
	if err := checkBookkeeping(e.st); err != nil {
		return err
	}
	held, err := e.ledger.BalanceOf(ctx, e.custody)
	if err != nil {
		return err
	}
	if held < e.st.totalDeposited {
		return fmt.Errorf("%w: custody holds %d but %d is deposited",
			domainerrors.ErrInvariantViolation, held, e.st.totalDeposited)
	}
	return nil
}

func checkBookkeeping(st *state) error {
	var sum entities.Amount
	for _, balance := range st.balances {
		next, ok := entities.AddAmount(sum, balance)
		if !ok {
			return fmt.Errorf("%w: deposited balances overflow", domainerrors.ErrInvariantViolation)
		}
		sum = next
	}
	if sum != st.totalDeposited {
		return fmt.Errorf("%w: balances sum to %d but total deposited is %d",
			domainerrors.ErrInvariantViolation, sum, st.totalDeposited)
	}
	tallies := make([]entities.Amount, len(st.proposals))
	for key, vote := range st.votes {
		tallies[key.proposalID] += vote.Weight
	}
	for i, proposal := range st.proposals {
		if proposal.TotalVotes != tallies[i] {
			return fmt.Errorf("%w: proposal %d tally %d does not match votes %d",
				domainerrors.ErrInvariantViolation, i, proposal.TotalVotes, tallies[i])
		}
	}
	return nil
}

func normalizePrincipal(principal string) (string, error) {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return "", domainerrors.ErrInvalidPrincipal
	}
	return principal, nil
}
