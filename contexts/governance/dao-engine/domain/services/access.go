package services

import (
	"strings"

	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
)

func (e *Engine) Owner() string {
	return e.st.owner
}

func (e *Engine) MinQuorum() entities.Amount {
	return e.st.minQuorum
}

// IsOwner reports whether principal may create proposals and run admin
// operations.
func (e *Engine) IsOwner(principal string) bool {
	return strings.TrimSpace(principal) != "" && strings.TrimSpace(principal) == e.st.owner
}

func (e *Engine) requireOwner(call Call) error {
	if !e.IsOwner(call.Caller) {
		return domainerrors.ErrNotOwner
	}
	return nil
}

func (e *Engine) TransferOwnership(call Call, newOwner string) error {
	return e.atomic(call, func() error {
		if err := e.requireOwner(call); err != nil {
			return err
		}
		next, err := normalizePrincipal(newOwner)
		if err != nil {
			return err
		}
		previous := e.st.owner
		e.st.owner = next
		e.emit(entities.NewOwnershipTransferredEvent(previous, next))
		return nil
	})
}

// SetMinQuorum changes the execution threshold. Proposals that already met
// the old threshold are re-evaluated against the new one at execution time.
func (e *Engine) SetMinQuorum(call Call, quorum entities.Amount) error {
	return e.atomic(call, func() error {
		if err := e.requireOwner(call); err != nil {
			return err
		}
		previous := e.st.minQuorum
		e.st.minQuorum = quorum
		e.emit(entities.NewQuorumChangedEvent(strings.TrimSpace(call.Caller), previous, quorum))
		return nil
	})
}
