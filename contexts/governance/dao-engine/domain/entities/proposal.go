package entities

import "time"

// Amount is a quantity of the custody asset in minor units.
type Amount uint64

// AddAmount returns a+b and false when the sum overflows.
func AddAmount(a Amount, b Amount) (Amount, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

type ProposalStatus string

const (
	ProposalStatusOpen     ProposalStatus = "open"
	ProposalStatusExecuted ProposalStatus = "executed"
	ProposalStatusExpired  ProposalStatus = "expired"
)

type Proposal struct {
	ID          uint64
	Creator     string
	Recipient   string
	Description string
	Payload     []byte
	Deadline    time.Time
	VotingOpen  bool
	TotalVotes  Amount
	Executed    bool
	CreatedAt   time.Time
	ExecutedAt  *time.Time
	ClosedAt    *time.Time
}

// Status derives the lifecycle state at now. The deadline is exclusive: a
// proposal whose deadline equals now is already expired.
func (p Proposal) Status(now time.Time) ProposalStatus {
	if p.Executed {
		return ProposalStatusExecuted
	}
	if !p.VotingOpen || !now.Before(p.Deadline) {
		return ProposalStatusExpired
	}
	return ProposalStatusOpen
}

// IsOpen reports whether the proposal still accepts votes and holds locks.
func (p Proposal) IsOpen(now time.Time) bool {
	return p.Status(now) == ProposalStatusOpen
}

// Clone returns a copy that does not share the payload buffer.
func (p Proposal) Clone() Proposal {
	out := p
	out.Payload = append([]byte(nil), p.Payload...)
	if p.ExecutedAt != nil {
		executedAt := *p.ExecutedAt
		out.ExecutedAt = &executedAt
	}
	if p.ClosedAt != nil {
		closedAt := *p.ClosedAt
		out.ClosedAt = &closedAt
	}
	return out
}
