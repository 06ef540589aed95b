package services

import (
	"strings"

	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
)

// Vote casts the caller's full deposit plus every deposit delegated to the
// caller on the proposal. The weight is a snapshot; later deposits do not
// change it and withdrawals are blocked by the lock it creates.
func (e *Engine) Vote(call Call, proposalID uint64) (entities.Vote, error) {
	var cast entities.Vote
	err := e.atomic(call, func() error {
		voter, err := normalizePrincipal(call.Caller)
		if err != nil {
			return err
		}
		proposal, err := e.requireOpen(proposalID, call.Now)
		if err != nil {
			return err
		}
		key := voteKey{proposalID, voter}
		if _, voted := e.st.votes[key]; voted {
			return domainerrors.ErrAlreadyVoted
		}
		if _, delegated := e.st.delegations[key]; delegated {
			return domainerrors.ErrAlreadyDelegated
		}
		own := e.st.balances[voter]
		weight := own
		delegated := make(map[string]entities.Amount)
		for _, delegator := range e.DelegatorsOf(proposalID, voter) {
			stake := e.st.balances[delegator]
			if stake == 0 {
				continue
			}
			next, ok := entities.AddAmount(weight, stake)
			if !ok {
				return domainerrors.ErrAmountOverflow
			}
			weight = next
			delegated[delegator] = stake
		}
		if weight == 0 {
			return domainerrors.ErrZeroBalance
		}
		total, ok := entities.AddAmount(proposal.TotalVotes, weight)
		if !ok {
			return domainerrors.ErrAmountOverflow
		}
		cast = entities.Vote{
			ProposalID: proposalID,
			Voter:      voter,
			Weight:     weight,
			OwnStake:   own,
			Delegated:  delegated,
			CastAt:     call.Now.UTC(),
		}
		proposal.TotalVotes = total
		e.st.votes[key] = cast
		e.emit(entities.NewVotedEvent(proposalID, voter, weight))
		return nil
	})
	if err != nil {
		return entities.Vote{}, err
	}
	return cast.Clone(), nil
}

// UnVote revokes the caller's vote and removes its weight from the tally.
// Delegations counted by the vote stay recorded and keep their lock.
func (e *Engine) UnVote(call Call, proposalID uint64) (entities.Vote, error) {
	var revoked entities.Vote
	err := e.atomic(call, func() error {
		voter, err := normalizePrincipal(call.Caller)
		if err != nil {
			return err
		}
		proposal, err := e.lookup(proposalID)
		if err != nil {
			return err
		}
		key := voteKey{proposalID, voter}
		vote, voted := e.st.votes[key]
		if !voted {
			return domainerrors.ErrNotAVoter
		}
		switch proposal.Status(call.Now) {
		case entities.ProposalStatusExecuted:
			return domainerrors.ErrAlreadyExecuted
		case entities.ProposalStatusExpired:
			return domainerrors.ErrProposalExpired
		}
		if proposal.TotalVotes < vote.Weight {
			return domainerrors.ErrInvariantViolation
		}
		proposal.TotalVotes -= vote.Weight
		delete(e.st.votes, key)
		revoked = vote
		e.emit(entities.NewUnvotedEvent(proposalID, voter, vote.Weight))
		return nil
	})
	if err != nil {
		return entities.Vote{}, err
	}
	return revoked.Clone(), nil
}

func (e *Engine) VoteOf(proposalID uint64, voter string) (entities.Vote, bool) {
	vote, ok := e.st.votes[voteKey{proposalID, strings.TrimSpace(voter)}]
	if !ok {
		return entities.Vote{}, false
	}
	return vote.Clone(), true
}

// VotesOn lists the active votes on a proposal ordered by voter.
func (e *Engine) VotesOn(proposalID uint64) []entities.Vote {
	items := make([]entities.Vote, 0)
	for _, voter := range e.votersOn(proposalID) {
		items = append(items, e.st.votes[voteKey{proposalID, voter}].Clone())
	}
	return items
}
