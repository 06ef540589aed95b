package errors

import "errors"

var (
	ErrNotOwner = errors.New("caller is not the owner")

	ErrProposalNotFound = errors.New("proposal not found")

	ErrAlreadyVoted       = errors.New("principal already voted on proposal")
	ErrAlreadyExecuted    = errors.New("proposal already executed")
	ErrProposalExpired    = errors.New("proposal voting period is over")
	ErrProposalActive     = errors.New("proposal voting period is still running")
	ErrNotAVoter          = errors.New("principal has no active vote on proposal")
	ErrFundsLocked        = errors.New("deposited funds are locked by an open proposal")
	ErrAlreadyDelegated   = errors.New("principal delegated its weight on proposal")
	ErrDelegationConsumed = errors.New("delegated weight was already used in a vote")

	ErrInsufficientBalance   = errors.New("insufficient deposited balance")
	ErrZeroBalance           = errors.New("no deposited balance to vote with")
	ErrInsufficientAllowance = errors.New("insufficient asset allowance")
	ErrAmountOverflow        = errors.New("amount overflows balance")

	ErrQuorumNotMet = errors.New("proposal quorum not met")

	ErrInstructionDispatchFailed = errors.New("proposal instruction dispatch failed")
	ErrTransferFailed            = errors.New("asset transfer failed")

	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidDeadline  = errors.New("deadline must be in the future")
	ErrInvalidPrincipal = errors.New("principal is required")
	ErrSelfDelegation   = errors.New("principal cannot delegate to itself")
	ErrInvalidConfig    = errors.New("invalid engine configuration")

	ErrIdempotencyConflict = errors.New("idempotency key conflict")
	ErrConflict            = errors.New("governance state conflict")
	ErrInvariantViolation  = errors.New("governance invariant violated")
	ErrSnapshotNotFound    = errors.New("engine snapshot not found")
	ErrPersistenceDegraded = errors.New("committed engine state is not persisted yet")
)

type Class string

const (
	ClassAuthorization  Class = "authorization"
	ClassLookup         Class = "lookup"
	ClassState          Class = "state"
	ClassBalance        Class = "balance"
	ClassQuorum         Class = "quorum"
	ClassDispatch       Class = "dispatch"
	ClassValidation     Class = "validation"
	ClassInfrastructure Class = "infrastructure"
	ClassUnknown        Class = "unknown"
)

var classes = []struct {
	class Class
	errs  []error
}{
	{ClassAuthorization, []error{ErrNotOwner}},
	{ClassLookup, []error{ErrProposalNotFound, ErrSnapshotNotFound}},
	{ClassState, []error{
		ErrAlreadyVoted, ErrAlreadyExecuted, ErrProposalExpired, ErrProposalActive,
		ErrNotAVoter, ErrFundsLocked, ErrAlreadyDelegated, ErrDelegationConsumed,
	}},
	{ClassBalance, []error{ErrInsufficientBalance, ErrZeroBalance, ErrInsufficientAllowance, ErrAmountOverflow}},
	{ClassQuorum, []error{ErrQuorumNotMet}},
	{ClassDispatch, []error{ErrInstructionDispatchFailed, ErrTransferFailed}},
	{ClassValidation, []error{ErrInvalidAmount, ErrInvalidDeadline, ErrInvalidPrincipal, ErrSelfDelegation, ErrInvalidConfig}},
	{ClassInfrastructure, []error{ErrIdempotencyConflict, ErrConflict, ErrInvariantViolation, ErrPersistenceDegraded}},
}

// ClassOf maps err to its taxonomy class. Wrapped errors are matched with
// errors.Is; the first matching class wins.
func ClassOf(err error) Class {
	if err == nil {
		return ""
	}
	for _, entry := range classes {
		for _, target := range entry.errs {
			if errors.Is(err, target) {
				return entry.class
			}
		}
	}
	return ClassUnknown
}
