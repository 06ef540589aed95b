package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Class   string `json:"class,omitempty"`
	Message string `json:"message"`
}

type AmountRequest struct {
	Amount uint64 `json:"amount"`
}

type VoterResponse struct {
	Principal        string `json:"principal"`
	DepositedBalance uint64 `json:"deposited_balance"`
	LockedBalance    uint64 `json:"locked_balance"`
	AvailableBalance uint64 `json:"available_balance"`
	Replayed         bool   `json:"replayed"`
}

// CreateProposalRequest carries the instruction payload as 0x-prefixed hex.
// A missing deadline means now plus the configured voting period.
type CreateProposalRequest struct {
	Recipient   string     `json:"recipient"`
	Description string     `json:"description"`
	Payload     string     `json:"payload"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

type ProposalResponse struct {
	ProposalID    uint64     `json:"proposal_id"`
	Creator       string     `json:"creator"`
	Recipient     string     `json:"recipient"`
	Description   string     `json:"description"`
	Payload       string     `json:"payload"`
	Deadline      time.Time  `json:"deadline"`
	Status        string     `json:"status"`
	VotingOpen    bool       `json:"voting_open"`
	Executed      bool       `json:"executed"`
	TotalVotes    uint64     `json:"total_votes"`
	MinQuorum     uint64     `json:"min_quorum"`
	QuorumReached bool       `json:"quorum_reached"`
	Voters        []string   `json:"voters"`
	CreatedAt     time.Time  `json:"created_at"`
	ExecutedAt    *time.Time `json:"executed_at,omitempty"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	Replayed      bool       `json:"replayed"`
}

type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
}

type ProposalBalanceResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	TotalVotes uint64 `json:"total_votes"`
}

type VoteResponse struct {
	ProposalID uint64            `json:"proposal_id"`
	Voter      string            `json:"voter"`
	Weight     uint64            `json:"weight"`
	OwnStake   uint64            `json:"own_stake"`
	Delegated  map[string]uint64 `json:"delegated"`
	CastAt     time.Time         `json:"cast_at"`
	Replayed   bool              `json:"replayed"`
}

type VoteListResponse struct {
	ProposalID uint64         `json:"proposal_id"`
	Items      []VoteResponse `json:"items"`
}

type DelegateRequest struct {
	Delegate string `json:"delegate"`
}

type DelegationResponse struct {
	ProposalID  uint64    `json:"proposal_id"`
	Delegator   string    `json:"delegator"`
	Delegate    string    `json:"delegate"`
	DelegatedAt time.Time `json:"delegated_at"`
	Replayed    bool      `json:"replayed"`
}

type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

type SetMinQuorumRequest struct {
	MinQuorum uint64 `json:"min_quorum"`
}

type EngineInfoResponse struct {
	Owner          string `json:"owner"`
	CustodyAccount string `json:"custody_account"`
	MinQuorum      uint64 `json:"min_quorum"`
	VotingPeriod   string `json:"voting_period"`
	TotalDeposited uint64 `json:"total_deposited"`
	NextProposalID uint64 `json:"next_proposal_id"`
	Sequence       uint64 `json:"sequence"`
}

type AuditResponse struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type TokenInfoResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply uint64 `json:"total_supply"`
}

type TokenBalanceResponse struct {
	Principal string `json:"principal"`
	Balance   uint64 `json:"balance"`
}

type TokenTransferRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type TokenApproveRequest struct {
	Spender string `json:"spender"`
	Amount  uint64 `json:"amount"`
}

type TokenAllowanceResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance uint64 `json:"allowance"`
}
