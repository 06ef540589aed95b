package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"daogov/contexts/governance/dao-engine/domain/entities"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
)

func (e *Engine) BalanceOf(principal string) entities.Amount {
	return e.st.balances[strings.TrimSpace(principal)]
}

func (e *Engine) TotalDeposited() entities.Amount {
	return e.st.totalDeposited
}

// Voter returns the custody view of principal evaluated at now.
func (e *Engine) Voter(principal string, now time.Time) entities.Voter {
	principal = strings.TrimSpace(principal)
	return entities.Voter{
		Principal:        principal,
		DepositedBalance: e.st.balances[principal],
		LockedBalance:    e.LockedBalance(principal, now),
	}
}

// LockedBalance is the part of the deposit that backs votes or delegations on
// proposals that are still open at now. A delegation locks the whole deposit;
// a vote locks the stake it counted.
func (e *Engine) LockedBalance(principal string, now time.Time) entities.Amount {
	principal = strings.TrimSpace(principal)
	balance := e.st.balances[principal]
	var locked entities.Amount
	for key := range e.st.delegations {
		if key.principal == principal && e.st.proposals[key.proposalID].IsOpen(now) {
			return balance
		}
	}
	for key, vote := range e.st.votes {
		if key.principal != principal || !e.st.proposals[key.proposalID].IsOpen(now) {
			continue
		}
		next, ok := entities.AddAmount(locked, vote.OwnStake)
		if !ok || next >= balance {
			return balance
		}
		locked = next
	}
	return locked
}

// Deposit pulls amount from the caller's ledger account into custody and
// credits it as voting collateral.
func (e *Engine) Deposit(ctx context.Context, call Call, amount entities.Amount) error {
	return e.atomic(call, func() error {
		voter, err := normalizePrincipal(call.Caller)
		if err != nil {
			return err
		}
		if amount == 0 {
			return domainerrors.ErrInvalidAmount
		}
		if _, ok := entities.AddAmount(e.st.balances[voter], amount); !ok {
			return domainerrors.ErrAmountOverflow
		}
		if _, ok := entities.AddAmount(e.st.totalDeposited, amount); !ok {
			return domainerrors.ErrAmountOverflow
		}
		allowance, err := e.ledger.Allowance(ctx, voter, e.custody)
		if err != nil {
			return fmt.Errorf("%w: %v", domainerrors.ErrTransferFailed, err)
		}
		if allowance < amount {
			return domainerrors.ErrInsufficientAllowance
		}
		if err := e.ledger.TransferFrom(ctx, voter, e.custody, amount); err != nil {
			if errors.Is(err, domainerrors.ErrInsufficientAllowance) {
				return err
			}
			return fmt.Errorf("%w: %v", domainerrors.ErrTransferFailed, err)
		}
		// The ledger may have re-entered and deposited as well.
		balance, ok := entities.AddAmount(e.st.balances[voter], amount)
		if !ok {
			return domainerrors.ErrAmountOverflow
		}
		total, ok := entities.AddAmount(e.st.totalDeposited, amount)
		if !ok {
			return domainerrors.ErrAmountOverflow
		}
		e.st.balances[voter] = balance
		e.st.totalDeposited = total
		e.emit(entities.NewDepositEvent(voter, amount))
		return nil
	})
}

// Withdraw debits the caller's unlocked deposit and pushes it back to the
// caller's ledger account. The debit is applied before the transfer.
func (e *Engine) Withdraw(ctx context.Context, call Call, amount entities.Amount) error {
	return e.atomic(call, func() error {
		voter, err := normalizePrincipal(call.Caller)
		if err != nil {
			return err
		}
		if amount == 0 {
			return domainerrors.ErrInvalidAmount
		}
		balance := e.st.balances[voter]
		if amount > balance {
			return domainerrors.ErrInsufficientBalance
		}
		if amount > balance-e.LockedBalance(voter, call.Now) {
			return domainerrors.ErrFundsLocked
		}
		e.st.balances[voter] = balance - amount
		e.st.totalDeposited -= amount
		e.emit(entities.NewWithdrawEvent(voter, amount))
		if err := e.ledger.Transfer(ctx, voter, amount); err != nil {
			return fmt.Errorf("%w: %v", domainerrors.ErrTransferFailed, err)
		}
		return nil
	})
}
