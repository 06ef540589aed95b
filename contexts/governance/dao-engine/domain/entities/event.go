package entities

import (
	"encoding/hex"
	"strconv"
	"time"
)

type EventType string

const (
	EventProposalCreated            EventType = "dao.proposal.created"
	EventVoted                      EventType = "dao.vote.cast"
	EventUnvoted                    EventType = "dao.vote.revoked"
	EventDelegated                  EventType = "dao.delegation.recorded"
	EventDeposit                    EventType = "dao.custody.deposited"
	EventWithdraw                   EventType = "dao.custody.withdrawn"
	EventProposalExecutionSucceeded EventType = "dao.proposal.executed"
	EventProposalExpired            EventType = "dao.proposal.expired"
	EventOwnershipTransferred       EventType = "dao.access.ownership_transferred"
	EventQuorumChanged              EventType = "dao.access.quorum_changed"
)

// Event is an observable record of a committed state transition. Attribute
// values are JSON friendly so adapters can serialize them without knowing the
// event type.
type Event struct {
	Type         EventType
	Sequence     uint64
	OccurredAt   time.Time
	PartitionKey string
	Attributes   map[string]any
}

func proposalKey(id uint64) string {
	return "proposal-" + strconv.FormatUint(id, 10)
}

func NewProposalCreatedEvent(recipient string, creator string, payload []byte, id uint64) Event {
	return Event{
		Type:         EventProposalCreated,
		PartitionKey: proposalKey(id),
		Attributes: map[string]any{
			"recipient":   recipient,
			"creator":     creator,
			"payload":     "0x" + hex.EncodeToString(payload),
			"proposal_id": id,
		},
	}
}

func NewVotedEvent(id uint64, voter string, weight Amount) Event {
	return Event{
		Type:         EventVoted,
		PartitionKey: proposalKey(id),
		Attributes: map[string]any{
			"proposal_id": id,
			"voter":       voter,
			"weight":      uint64(weight),
		},
	}
}

func NewUnvotedEvent(id uint64, voter string, weight Amount) Event {
	return Event{
		Type:         EventUnvoted,
		PartitionKey: proposalKey(id),
		Attributes: map[string]any{
			"proposal_id": id,
			"voter":       voter,
			"weight":      uint64(weight),
		},
	}
}

func NewDelegatedEvent(id uint64, delegator string, delegate string) Event {
	return Event{
		Type:         EventDelegated,
		PartitionKey: proposalKey(id),
		Attributes: map[string]any{
			"proposal_id": id,
			"delegator":   delegator,
			"delegate":    delegate,
		},
	}
}

func NewDepositEvent(voter string, amount Amount) Event {
	return Event{
		Type:         EventDeposit,
		PartitionKey: voter,
		Attributes: map[string]any{
			"voter":  voter,
			"amount": uint64(amount),
		},
	}
}

func NewWithdrawEvent(voter string, amount Amount) Event {
	return Event{
		Type:         EventWithdraw,
		PartitionKey: voter,
		Attributes: map[string]any{
			"voter":  voter,
			"amount": uint64(amount),
		},
	}
}

func NewProposalExecutionSucceededEvent(id uint64, description string, recipient string) Event {
	return Event{
		Type:         EventProposalExecutionSucceeded,
		PartitionKey: proposalKey(id),
		Attributes: map[string]any{
			"proposal_id": id,
			"description": description,
			"recipient":   recipient,
		},
	}
}

func NewProposalExpiredEvent(id uint64, totalVotes Amount) Event {
	return Event{
		Type:         EventProposalExpired,
		PartitionKey: proposalKey(id),
		Attributes: map[string]any{
			"proposal_id": id,
			"total_votes": uint64(totalVotes),
		},
	}
}

func NewOwnershipTransferredEvent(previousOwner string, newOwner string) Event {
	return Event{
		Type:         EventOwnershipTransferred,
		PartitionKey: "access",
		Attributes: map[string]any{
			"previous_owner": previousOwner,
			"new_owner":      newOwner,
		},
	}
}

func NewQuorumChangedEvent(changedBy string, previous Amount, next Amount) Event {
	return Event{
		Type:         EventQuorumChanged,
		PartitionKey: "access",
		Attributes: map[string]any{
			"changed_by":      changedBy,
			"previous_quorum": uint64(previous),
			"min_quorum":      uint64(next),
		},
	}
}
