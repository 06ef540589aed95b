package entities

import "time"

// Voter is the custody view of a principal.
type Voter struct {
	Principal        string
	DepositedBalance Amount
	LockedBalance    Amount
}

// Available is the part of the deposit that may be withdrawn right now.
func (v Voter) Available() Amount {
	if v.LockedBalance >= v.DepositedBalance {
		return 0
	}
	return v.DepositedBalance - v.LockedBalance
}

// Vote is a weight snapshot taken when the ballot was cast.
type Vote struct {
	ProposalID uint64
	Voter      string
	Weight     Amount
	OwnStake   Amount
	Delegated  map[string]Amount
	CastAt     time.Time
}

// Includes reports whether the vote counted the stake of delegator.
func (v Vote) Includes(delegator string) bool {
	_, ok := v.Delegated[delegator]
	return ok
}

func (v Vote) Clone() Vote {
	out := v
	if v.Delegated != nil {
		out.Delegated = make(map[string]Amount, len(v.Delegated))
		for delegator, stake := range v.Delegated {
			out.Delegated[delegator] = stake
		}
	}
	return out
}

type Delegation struct {
	ProposalID  uint64
	Delegator   string
	Delegate    string
	DelegatedAt time.Time
}
