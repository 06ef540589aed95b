package services

import (
	"strings"
	"time"

	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
)

type ProposalInput struct {
	Recipient   string
	Description string
	Payload     []byte
	// Deadline is absolute; the zero value means now plus the voting period.
	Deadline time.Time
}

// CreateProposal registers a new open proposal under the next sequential id.
func (e *Engine) CreateProposal(call Call, input ProposalInput) (entities.Proposal, error) {
	var created entities.Proposal
	err := e.atomic(call, func() error {
		if err := e.requireOwner(call); err != nil {
			return err
		}
		recipient, err := normalizePrincipal(input.Recipient)
		if err != nil {
			return err
		}
		deadline := input.Deadline.UTC()
		if input.Deadline.IsZero() {
			deadline = call.Now.UTC().Add(e.votingPeriod)
		}
		if !deadline.After(call.Now) {
			return domainerrors.ErrInvalidDeadline
		}
		created = entities.Proposal{
			ID:          uint64(len(e.st.proposals)),
			Creator:     strings.TrimSpace(call.Caller),
			Recipient:   recipient,
			Description: input.Description,
			Payload:     append([]byte(nil), input.Payload...),
			Deadline:    deadline,
			VotingOpen:  true,
			CreatedAt:   call.Now.UTC(),
		}
		e.st.proposals = append(e.st.proposals, created)
		e.emit(entities.NewProposalCreatedEvent(created.Recipient, created.Creator, created.Payload, created.ID))
		return nil
	})
	if err != nil {
		return entities.Proposal{}, err
	}
	return created.Clone(), nil
}

// NextProposalID is the id the next proposal will receive; every id below it
// exists.
func (e *Engine) NextProposalID() uint64 {
	return uint64(len(e.st.proposals))
}

func (e *Engine) Proposal(id uint64) (entities.Proposal, error) {
	if id >= uint64(len(e.st.proposals)) {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return e.st.proposals[id].Clone(), nil
}

func (e *Engine) Proposals() []entities.Proposal {
	items := make([]entities.Proposal, 0, len(e.st.proposals))
	for _, proposal := range e.st.proposals {
		items = append(items, proposal.Clone())
	}
	return items
}

// ExpiredOpenProposals lists ids whose deadline passed at now but which were
// never finalized.
func (e *Engine) ExpiredOpenProposals(now time.Time) []uint64 {
	ids := make([]uint64, 0)
	for _, proposal := range e.st.proposals {
		if proposal.VotingOpen && !proposal.Executed && !now.Before(proposal.Deadline) {
			ids = append(ids, proposal.ID)
		}
	}
	return ids
}

// FinalizeExpired records the terminal Expired state of a proposal whose
// deadline has passed. Finalizing an already closed proposal is a no-op.
func (e *Engine) FinalizeExpired(call Call, id uint64) error {
	return e.atomic(call, func() error {
		proposal, err := e.lookup(id)
		if err != nil {
			return err
		}
		if proposal.Executed {
			return domainerrors.ErrAlreadyExecuted
		}
		if !proposal.VotingOpen {
			return nil
		}
		if call.Now.Before(proposal.Deadline) {
			return domainerrors.ErrProposalActive
		}
		closedAt := call.Now.UTC()
		proposal.VotingOpen = false
		proposal.ClosedAt = &closedAt
		e.emit(entities.NewProposalExpiredEvent(proposal.ID, proposal.TotalVotes))
		return nil
	})
}

// lookup returns the live proposal for mutation.
func (e *Engine) lookup(id uint64) (*entities.Proposal, error) {
	if id >= uint64(len(e.st.proposals)) {
		return nil, domainerrors.ErrProposalNotFound
	}
	return &e.st.proposals[id], nil
}

// requireOpen applies the shared guards of vote, unvote and delegate.
func (e *Engine) requireOpen(id uint64, now time.Time) (*entities.Proposal, error) {
	proposal, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	switch proposal.Status(now) {
	case entities.ProposalStatusExecuted:
		return nil, domainerrors.ErrAlreadyExecuted
	case entities.ProposalStatusExpired:
		return nil, domainerrors.ErrProposalExpired
	}
	return proposal, nil
}
