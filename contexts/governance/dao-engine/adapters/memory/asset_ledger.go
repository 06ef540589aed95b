package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
	"daogov/contexts/governance/dao-engine/ports"
)

var ErrTokenSupplyOverflow = errors.New("token supply overflow")

type TokenMetadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// AssetLedger is an in-process fungible token used as the custody asset in
// development and tests. Accounts are plain principal strings.
type AssetLedger struct {
	mu sync.RWMutex

	meta        TokenMetadata
	totalSupply entities.Amount
	balances    map[string]entities.Amount
	allowances  map[string]map[string]entities.Amount
}

func NewAssetLedger(meta TokenMetadata) *AssetLedger {
	return &AssetLedger{
		meta:       meta,
		balances:   make(map[string]entities.Amount),
		allowances: make(map[string]map[string]entities.Amount),
	}
}

func (l *AssetLedger) Metadata() TokenMetadata {
	return l.meta
}

func (l *AssetLedger) TotalSupply() entities.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply
}

// Mint credits amount to principal out of thin air.
func (l *AssetLedger) Mint(principal string, amount entities.Amount) error {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return domainerrors.ErrInvalidPrincipal
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	supply, ok := entities.AddAmount(l.totalSupply, amount)
	if !ok {
		return ErrTokenSupplyOverflow
	}
	l.totalSupply = supply
	l.balances[principal] += amount
	return nil
}

// Approve sets the amount spender may pull from owner.
func (l *AssetLedger) Approve(owner string, spender string, amount entities.Amount) error {
	owner = strings.TrimSpace(owner)
	spender = strings.TrimSpace(spender)
	if owner == "" || spender == "" {
		return domainerrors.ErrInvalidPrincipal
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[string]entities.Amount)
	}
	l.allowances[owner][spender] = amount
	return nil
}

func (l *AssetLedger) BalanceOf(_ context.Context, principal string) (entities.Amount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[strings.TrimSpace(principal)], nil
}

func (l *AssetLedger) Allowance(_ context.Context, owner string, spender string) (entities.Amount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowances[strings.TrimSpace(owner)][strings.TrimSpace(spender)], nil
}

// TransferAs moves amount from one account to another.
func (l *AssetLedger) TransferAs(from string, to string, amount entities.Amount) error {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return domainerrors.ErrInvalidPrincipal
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// TransferFromAs moves amount from owner to to using the allowance owner
// granted spender.
func (l *AssetLedger) TransferFromAs(spender string, owner string, to string, amount entities.Amount) error {
	spender = strings.TrimSpace(spender)
	owner = strings.TrimSpace(owner)
	to = strings.TrimSpace(to)
	if spender == "" || owner == "" || to == "" {
		return domainerrors.ErrInvalidPrincipal
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	allowed := l.allowances[owner][spender]
	if allowed < amount {
		return domainerrors.ErrInsufficientAllowance
	}
	if err := l.move(owner, to, amount); err != nil {
		return err
	}
	l.allowances[owner][spender] = allowed - amount
	return nil
}

func (l *AssetLedger) move(from string, to string, amount entities.Amount) error {
	if l.balances[from] < amount {
		return domainerrors.ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	// Credits cannot overflow while every balance is bounded by total supply.
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Account binds the ledger to the account that acts as spender and sender, so
// the engine can use it as its custody asset.
func (l *AssetLedger) Account(principal string) CustodyAccount {
	return CustodyAccount{ledger: l, account: strings.TrimSpace(principal)}
}

type CustodyAccount struct {
	ledger  *AssetLedger
	account string
}

var _ ports.AssetLedger = CustodyAccount{}

func (a CustodyAccount) TransferFrom(_ context.Context, owner string, to string, amount entities.Amount) error {
	return a.ledger.TransferFromAs(a.account, owner, to, amount)
}

func (a CustodyAccount) Transfer(_ context.Context, to string, amount entities.Amount) error {
	return a.ledger.TransferAs(a.account, to, amount)
}

func (a CustodyAccount) BalanceOf(ctx context.Context, principal string) (entities.Amount, error) {
	return a.ledger.BalanceOf(ctx, principal)
}

func (a CustodyAccount) Allowance(ctx context.Context, owner string, spender string) (entities.Amount, error) {
	return a.ledger.Allowance(ctx, owner, spender)
}
