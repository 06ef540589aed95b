package queries

import (
	"context"
	"strings"
	"time"

	application "daogov/contexts/governance/dao-engine/application"
	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
	"daogov/contexts/governance/dao-engine/domain/services"
	"daogov/contexts/governance/dao-engine/ports"
)

type ProposalView struct {
	Proposal      entities.Proposal
	Status        entities.ProposalStatus
	MinQuorum     entities.Amount
	QuorumReached bool
	Voters        []string
}

type EngineInfo struct {
	Owner          string
	CustodyAccount string
	MinQuorum      entities.Amount
	VotingPeriod   time.Duration
	TotalDeposited entities.Amount
	NextProposalID uint64
	Sequence       uint64
}

// GovernanceQueries reads the engine under the shared read lock. Statuses are
// evaluated against the clock at query time.
type GovernanceQueries struct {
	Guard *application.EngineGuard
	Clock ports.Clock
}

func (q GovernanceQueries) GetProposal(_ context.Context, id uint64) (ProposalView, error) {
	now := q.now()
	var (
		view ProposalView
		err  error
	)
	q.Guard.View(func(engine *services.Engine) {
		var proposal entities.Proposal
		proposal, err = engine.Proposal(id)
		if err != nil {
			return
		}
		view = newProposalView(engine, proposal, now)
	})
	return view, err
}

// ListProposals returns proposals in id order. An empty status matches all.
func (q GovernanceQueries) ListProposals(_ context.Context, status entities.ProposalStatus) []ProposalView {
	now := q.now()
	items := make([]ProposalView, 0)
	q.Guard.View(func(engine *services.Engine) {
		for _, proposal := range engine.Proposals() {
			if status != "" && proposal.Status(now) != status {
				continue
			}
			items = append(items, newProposalView(engine, proposal, now))
		}
	})
	return items
}

// ProposalBalance is the current tally of a proposal.
func (q GovernanceQueries) ProposalBalance(_ context.Context, id uint64) (entities.Amount, error) {
	var (
		total entities.Amount
		err   error
	)
	q.Guard.View(func(engine *services.Engine) {
		var proposal entities.Proposal
		proposal, err = engine.Proposal(id)
		total = proposal.TotalVotes
	})
	return total, err
}

func (q GovernanceQueries) VoterBalance(_ context.Context, principal string) (entities.Voter, error) {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return entities.Voter{}, domainerrors.ErrInvalidPrincipal
	}
	now := q.now()
	var voter entities.Voter
	q.Guard.View(func(engine *services.Engine) {
		voter = engine.Voter(principal, now)
	})
	return voter, nil
}

func (q GovernanceQueries) GetVote(_ context.Context, proposalID uint64, voter string) (entities.Vote, error) {
	var (
		vote entities.Vote
		err  error
	)
	q.Guard.View(func(engine *services.Engine) {
		if _, err = engine.Proposal(proposalID); err != nil {
			return
		}
		var ok bool
		vote, ok = engine.VoteOf(proposalID, voter)
		if !ok {
			err = domainerrors.ErrNotAVoter
		}
	})
	return vote, err
}

func (q GovernanceQueries) Votes(_ context.Context, proposalID uint64) ([]entities.Vote, error) {
	var (
		votes []entities.Vote
		err   error
	)
	q.Guard.View(func(engine *services.Engine) {
		if _, err = engine.Proposal(proposalID); err != nil {
			return
		}
		votes = engine.VotesOn(proposalID)
	})
	return votes, err
}

// GetDelegation reports the delegation recorded by delegator, if any.
func (q GovernanceQueries) GetDelegation(_ context.Context, proposalID uint64, delegator string) (entities.Delegation, bool, error) {
	var (
		delegation entities.Delegation
		found      bool
		err        error
	)
	q.Guard.View(func(engine *services.Engine) {
		if _, err = engine.Proposal(proposalID); err != nil {
			return
		}
		delegation, found = engine.DelegationOf(proposalID, delegator)
	})
	return delegation, found, err
}

func (q GovernanceQueries) EngineInfo(_ context.Context) EngineInfo {
	var info EngineInfo
	q.Guard.View(func(engine *services.Engine) {
		info = EngineInfo{
			Owner:          engine.Owner(),
			CustodyAccount: engine.CustodyAccount(),
			MinQuorum:      engine.MinQuorum(),
			VotingPeriod:   engine.VotingPeriod(),
			TotalDeposited: engine.TotalDeposited(),
			NextProposalID: engine.NextProposalID(),
			Sequence:       engine.Sequence(),
		}
	})
	return info
}

func (q GovernanceQueries) ExpiredOpenProposals(_ context.Context) []uint64 {
	now := q.now()
	var ids []uint64
	q.Guard.View(func(engine *services.Engine) {
		ids = engine.ExpiredOpenProposals(now)
	})
	return ids
}

// Audit verifies bookkeeping and custody solvency. The ledger is read while
// the engine is locked for reading.
func (q GovernanceQueries) Audit(ctx context.Context) error {
	var err error
	q.Guard.View(func(engine *services.Engine) {
		err = engine.Audit(ctx)
	})
	return err
}

func (q GovernanceQueries) now() time.Time {
	if q.Clock != nil {
		return q.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func newProposalView(engine *services.Engine, proposal entities.Proposal, now time.Time) ProposalView {
	voters := make([]string, 0)
	for _, vote := range engine.VotesOn(proposal.ID) {
		voters = append(voters, vote.Voter)
	}
	return ProposalView{
		Proposal:      proposal,
		Status:        proposal.Status(now),
		MinQuorum:     engine.MinQuorum(),
		QuorumReached: proposal.TotalVotes >= engine.MinQuorum(),
		Voters:        voters,
	}
}
