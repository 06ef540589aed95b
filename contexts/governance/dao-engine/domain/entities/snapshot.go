package entities

// Snapshot is the complete serializable state of one engine instance.
type Snapshot struct {
	Sequence       uint64            `json:"sequence"`
	Owner          string            `json:"owner"`
	MinQuorum      Amount            `json:"min_quorum"`
	NextProposalID uint64            `json:"next_proposal_id"`
	TotalDeposited Amount            `json:"total_deposited"`
	Balances       map[string]Amount `json:"balances"`
	Proposals      []Proposal        `json:"proposals"`
	Votes          []Vote            `json:"votes"`
	Delegations    []Delegation      `json:"delegations"`
}
