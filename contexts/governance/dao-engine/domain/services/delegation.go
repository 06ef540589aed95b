package services

import (
	"sort"
	"strings"

	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
)

// Delegate lets delegate vote with the caller's deposit on one proposal. A
// later call before the previous delegate used the weight replaces it.
func (e *Engine) Delegate(call Call, proposalID uint64, delegate string) (entities.Delegation, error) {
	var recorded entities.Delegation
	err := e.atomic(call, func() error {
		delegator, err := normalizePrincipal(call.Caller)
		if err != nil {
			return err
		}
		to, err := normalizePrincipal(delegate)
		if err != nil {
			return err
		}
		if _, err := e.requireOpen(proposalID, call.Now); err != nil {
			return err
		}
		if delegator == to {
			return domainerrors.ErrSelfDelegation
		}
		key := voteKey{proposalID, delegator}
		if _, voted := e.st.votes[key]; voted {
			return domainerrors.ErrAlreadyVoted
		}
		if e.st.balances[delegator] == 0 {
			return domainerrors.ErrZeroBalance
		}
		if previous, ok := e.st.delegations[key]; ok {
			if vote, voted := e.st.votes[voteKey{proposalID, previous.Delegate}]; voted && vote.Includes(delegator) {
				return domainerrors.ErrDelegationConsumed
			}
		}
		recorded = entities.Delegation{
			ProposalID:  proposalID,
			Delegator:   delegator,
			Delegate:    to,
			DelegatedAt: call.Now.UTC(),
		}
		e.st.delegations[key] = recorded
		e.emit(entities.NewDelegatedEvent(proposalID, delegator, to))
		return nil
	})
	if err != nil {
		return entities.Delegation{}, err
	}
	return recorded, nil
}

// DelegationOf returns the delegation delegator recorded on a proposal.
func (e *Engine) DelegationOf(proposalID uint64, delegator string) (entities.Delegation, bool) {
	delegation, ok := e.st.delegations[voteKey{proposalID, strings.TrimSpace(delegator)}]
	return delegation, ok
}

// DelegatorsOf lists the principals that delegated to delegate on a proposal,
// sorted for deterministic iteration.
func (e *Engine) DelegatorsOf(proposalID uint64, delegate string) []string {
	delegate = strings.TrimSpace(delegate)
	items := make([]string, 0)
	for key, delegation := range e.st.delegations {
		if key.proposalID == proposalID && delegation.Delegate == delegate {
			items = append(items, key.principal)
		}
	}
	sort.Strings(items)
	return items
}

// DelegatedWeight is the sum of current deposits delegated to delegate on a
// proposal.
func (e *Engine) DelegatedWeight(proposalID uint64, delegate string) (entities.Amount, error) {
	var total entities.Amount
	for _, delegator := range e.DelegatorsOf(proposalID, delegate) {
		next, ok := entities.AddAmount(total, e.st.balances[delegator])
		if !ok {
			return 0, domainerrors.ErrAmountOverflow
		}
		total = next
	}
	return total, nil
}
