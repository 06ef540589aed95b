package services

import (
	"context"
	"fmt"
	"sort"

	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
)

// ExecuteProposal dispatches the payload of a proposal that reached quorum
// before its deadline. The proposal is marked executed before dispatch so a
// reentrant call sees the final state; a failed dispatch rolls everything
// back and leaves the proposal open for another attempt.
func (e *Engine) ExecuteProposal(ctx context.Context, call Call, id uint64) (entities.Proposal, error) {
	var executed entities.Proposal
	err := e.atomic(call, func() error {
		proposal, err := e.lookup(id)
		if err != nil {
			return err
		}
		switch proposal.Status(call.Now) {
		case entities.ProposalStatusExecuted:
			return domainerrors.ErrAlreadyExecuted
		case entities.ProposalStatusExpired:
			return domainerrors.ErrProposalExpired
		}
		if proposal.TotalVotes < e.st.minQuorum {
			return domainerrors.ErrQuorumNotMet
		}

		executedAt := call.Now.UTC()
		proposal.Executed = true
		proposal.VotingOpen = false
		proposal.ExecutedAt = &executedAt
		executed = proposal.Clone()
		e.emit(entities.NewProposalExecutionSucceededEvent(executed.ID, executed.Description, executed.Recipient))

		if err := e.dispatcher.Call(ctx, executed.Recipient, executed.Payload); err != nil {
			return fmt.Errorf("%w: %v", domainerrors.ErrInstructionDispatchFailed, err)
		}
		return nil
	})
	if err != nil {
		return entities.Proposal{}, err
	}
	return e.st.proposals[id].Clone(), nil
}

func (e *Engine) votersOn(proposalID uint64) []string {
	voters := make([]string, 0)
	for key := range e.st.votes {
		if key.proposalID == proposalID {
			voters = append(voters, key.principal)
		}
	}
	sort.Strings(voters)
	return voters
}
