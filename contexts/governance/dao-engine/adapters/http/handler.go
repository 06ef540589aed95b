package httpadapter

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"daogov/contexts/governance/dao-engine/adapters/memory"
	"daogov/contexts/governance/dao-engine/application/commands"
	"daogov/contexts/governance/dao-engine/application/queries"
	"daogov/contexts/governance/dao-engine/domain/entities"
	httptransport "daogov/contexts/governance/dao-engine/transport/http"
	"daogov/internal/platform/abi"
)

var (
	// ErrTokenUnavailable is returned by token routes when the engine runs
	// against an external asset ledger.
	ErrTokenUnavailable    = errors.New("development token ledger is not configured")
	ErrInvalidPayload      = errors.New("instruction payload must be 0x-prefixed hex")
	ErrInvalidStatusFilter = errors.New("status filter must be open, executed or expired")
	ErrDelegationNotFound  = errors.New("delegation not found")
	// ErrCustodyAccountReserved rejects token writes made as the custody
	// account. Its balance only moves through deposits and withdrawals.
	ErrCustodyAccountReserved = errors.New("custody account cannot use token routes")
)

type Handler struct {
	Commands commands.GovernanceUseCase
	Queries  queries.GovernanceQueries
	Token    *memory.AssetLedger
	Custody  string
	Logger   *slog.Logger
}

// DepositHandler godoc
// @Summary Deposit tokens into custody
// @Description Pulls the amount from the caller's allowance into the custody account.
// @Tags dao-engine
// @Accept json
// @Produce json
// @Param X-Principal-Id header string true "Calling principal"
// @Param Idempotency-Key header string false "Replay key"
// @Param request body httptransport.AmountRequest true "Deposit amount"
// @Success 200 {object} httptransport.VoterResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /api/dao/v1/deposits [post]
func (h Handler) DepositHandler(
	ctx context.Context,
	principal string,
	idempotencyKey string,
	req httptransport.AmountRequest,
) (httptransport.VoterResponse, error) {
	voter, replayed, err := h.Commands.Deposit(ctx, commands.DepositCommand{
		Principal:      principal,
		Amount:         entities.Amount(req.Amount),
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	resp := mapVoter(voter)
	resp.Replayed = replayed
	return resp, nil
}

func (h Handler) WithdrawHandler(
	ctx context.Context,
	principal string,
	idempotencyKey string,
	req httptransport.AmountRequest,
) (httptransport.VoterResponse, error) {
	voter, replayed, err := h.Commands.Withdraw(ctx, commands.WithdrawCommand{
		Principal:      principal,
		Amount:         entities.Amount(req.Amount),
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	resp := mapVoter(voter)
	resp.Replayed = replayed
	return resp, nil
}

func (h Handler) VoterBalanceHandler(ctx context.Context, principal string) (httptransport.VoterResponse, error) {
	voter, err := h.Queries.VoterBalance(ctx, principal)
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return mapVoter(voter), nil
}

// CreateProposalHandler godoc
// @Summary Create a proposal
// @Tags dao-engine
// @Accept json
// @Produce json
// @Param X-Principal-Id header string true "Calling principal"
// @Param Idempotency-Key header string false "Replay key"
// @Param request body httptransport.CreateProposalRequest true "Proposal"
// @Success 201 {object} httptransport.ProposalResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/dao/v1/proposals [post]
func (h Handler) CreateProposalHandler(
	ctx context.Context,
	principal string,
	idempotencyKey string,
	req httptransport.CreateProposalRequest,
) (httptransport.ProposalResponse, error) {
	payload, err := abi.ParseHex(req.Payload)
	if err != nil {
		return httptransport.ProposalResponse{}, errors.Join(ErrInvalidPayload, err)
	}
	var deadline time.Time
	if req.Deadline != nil {
		deadline = req.Deadline.UTC()
	}
	proposal, replayed, err := h.Commands.CreateProposal(ctx, commands.CreateProposalCommand{
		Principal:      principal,
		Recipient:      req.Recipient,
		Description:    req.Description,
		Payload:        payload,
		Deadline:       deadline,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	view, err := h.Queries.GetProposal(ctx, proposal.ID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	resp := mapProposal(view)
	resp.Replayed = replayed
	return resp, nil
}

func (h Handler) GetProposalHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalResponse, error) {
	view, err := h.Queries.GetProposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(view), nil
}

func (h Handler) ListProposalsHandler(ctx context.Context, status string) (httptransport.ProposalListResponse, error) {
	status = strings.TrimSpace(status)
	switch entities.ProposalStatus(status) {
	case "", entities.ProposalStatusOpen, entities.ProposalStatusExecuted, entities.ProposalStatusExpired:
	default:
		return httptransport.ProposalListResponse{}, ErrInvalidStatusFilter
	}
	views := h.Queries.ListProposals(ctx, entities.ProposalStatus(status))
	items := make([]httptransport.ProposalResponse, 0, len(views))
	for _, view := range views {
		items = append(items, mapProposal(view))
	}
	return httptransport.ProposalListResponse{Items: items}, nil
}

func (h Handler) ProposalBalanceHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalBalanceResponse, error) {
	total, err := h.Queries.ProposalBalance(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalBalanceResponse{}, err
	}
	return httptransport.ProposalBalanceResponse{
		ProposalID: proposalID,
		TotalVotes: uint64(total),
	}, nil
}

// VoteHandler godoc
// @Summary Vote on a proposal
// @Description Casts the caller's deposit plus weight delegated to the caller.
// @Tags dao-engine
// @Produce json
// @Param X-Principal-Id header string true "Calling principal"
// @Param proposal_id path int true "Proposal id"
// @Success 200 {object} httptransport.VoteResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /api/dao/v1/proposals/{proposal_id}/votes [post]
func (h Handler) VoteHandler(
	ctx context.Context,
	principal string,
	idempotencyKey string,
	proposalID uint64,
) (httptransport.VoteResponse, error) {
	vote, replayed, err := h.Commands.Vote(ctx, commands.VoteCommand{
		Principal:      principal,
		ProposalID:     proposalID,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	resp := mapVote(vote)
	resp.Replayed = replayed
	return resp, nil
}

func (h Handler) UnVoteHandler(
	ctx context.Context,
	principal string,
	idempotencyKey string,
	proposalID uint64,
) (httptransport.VoteResponse, error) {
	vote, replayed, err := h.Commands.UnVote(ctx, commands.UnVoteCommand{
		Principal:      principal,
		ProposalID:     proposalID,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	resp := mapVote(vote)
	resp.ProposalID = proposalID
	resp.Voter = strings.TrimSpace(principal)
	resp.Replayed = replayed
	return resp, nil
}

func (h Handler) GetVoteHandler(ctx context.Context, proposalID uint64, voter string) (httptransport.VoteResponse, error) {
	vote, err := h.Queries.GetVote(ctx, proposalID, voter)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVote(vote), nil
}

func (h Handler) ListVotesHandler(ctx context.Context, proposalID uint64) (httptransport.VoteListResponse, error) {
	votes, err := h.Queries.Votes(ctx, proposalID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	items := make([]httptransport.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		items = append(items, mapVote(vote))
	}
	return httptransport.VoteListResponse{ProposalID: proposalID, Items: items}, nil
}

func (h Handler) DelegateHandler(
	ctx context.Context,
	principal string,
	idempotencyKey string,
	proposalID uint64,
	req httptransport.DelegateRequest,
) (httptransport.DelegationResponse, error) {
	delegation, replayed, err := h.Commands.Delegate(ctx, commands.DelegateCommand{
		Principal:      principal,
		ProposalID:     proposalID,
		Delegate:       req.Delegate,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.DelegationResponse{}, err
	}
	resp := mapDelegation(delegation)
	resp.Replayed = replayed
	return resp, nil
}

func (h Handler) GetDelegationHandler(ctx context.Context, proposalID uint64, delegator string) (httptransport.DelegationResponse, error) {
	delegation, found, err := h.Queries.GetDelegation(ctx, proposalID, delegator)
	if err != nil {
		return httptransport.DelegationResponse{}, err
	}
	if !found {
		return httptransport.DelegationResponse{}, ErrDelegationNotFound
	}
	return mapDelegation(delegation), nil
}

// ExecuteProposalHandler godoc
// @Summary Execute a proposal that reached quorum
// @Tags dao-engine
// @Produce json
// @Param X-Principal-Id header string true "Calling principal"
// @Param proposal_id path int true "Proposal id"
// @Success 200 {object} httptransport.ProposalResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Failure 502 {object} httptransport.ErrorResponse
// @Router /api/dao/v1/proposals/{proposal_id}/execute [post]
func (h Handler) ExecuteProposalHandler(
	ctx context.Context,
	principal string,
	idempotencyKey string,
	proposalID uint64,
) (httptransport.ProposalResponse, error) {
	_, replayed, err := h.Commands.ExecuteProposal(ctx, commands.ExecuteProposalCommand{
		Principal:      principal,
		ProposalID:     proposalID,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	view, err := h.Queries.GetProposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	resp := mapProposal(view)
	resp.Replayed = replayed
	return resp, nil
}

func (h Handler) FinalizeProposalHandler(ctx context.Context, principal string, proposalID uint64) (httptransport.ProposalResponse, error) {
	if _, err := h.Commands.FinalizeExpired(ctx, commands.FinalizeExpiredCommand{
		Principal:  principal,
		ProposalID: proposalID,
	}); err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return h.GetProposalHandler(ctx, proposalID)
}

func (h Handler) TransferOwnershipHandler(
	ctx context.Context,
	principal string,
	req httptransport.TransferOwnershipRequest,
) (httptransport.EngineInfoResponse, error) {
	if err := h.Commands.TransferOwnership(ctx, commands.TransferOwnershipCommand{
		Principal: principal,
		NewOwner:  req.NewOwner,
	}); err != nil {
		return httptransport.EngineInfoResponse{}, err
	}
	return h.EngineInfoHandler(ctx), nil
}

func (h Handler) SetMinQuorumHandler(
	ctx context.Context,
	principal string,
	req httptransport.SetMinQuorumRequest,
) (httptransport.EngineInfoResponse, error) {
	if err := h.Commands.SetMinQuorum(ctx, commands.SetMinQuorumCommand{
		Principal: principal,
		MinQuorum: entities.Amount(req.MinQuorum),
	}); err != nil {
		return httptransport.EngineInfoResponse{}, err
	}
	return h.EngineInfoHandler(ctx), nil
}

func (h Handler) EngineInfoHandler(ctx context.Context) httptransport.EngineInfoResponse {
	info := h.Queries.EngineInfo(ctx)
	return httptransport.EngineInfoResponse{
		Owner:          info.Owner,
		CustodyAccount: info.CustodyAccount,
		MinQuorum:      uint64(info.MinQuorum),
		VotingPeriod:   info.VotingPeriod.String(),
		TotalDeposited: uint64(info.TotalDeposited),
		NextProposalID: info.NextProposalID,
		Sequence:       info.Sequence,
	}
}

func (h Handler) AuditHandler(ctx context.Context) httptransport.AuditResponse {
	if err := h.Queries.Audit(ctx); err != nil {
		return httptransport.AuditResponse{Healthy: false, Error: err.Error()}
	}
	return httptransport.AuditResponse{Healthy: true}
}

func mapVoter(voter entities.Voter) httptransport.VoterResponse {
	return httptransport.VoterResponse{
		Principal:        voter.Principal,
		DepositedBalance: uint64(voter.DepositedBalance),
		LockedBalance:    uint64(voter.LockedBalance),
		AvailableBalance: uint64(voter.Available()),
	}
}

func mapProposal(view queries.ProposalView) httptransport.ProposalResponse {
	proposal := view.Proposal
	return httptransport.ProposalResponse{
		ProposalID:    proposal.ID,
		Creator:       proposal.Creator,
		Recipient:     proposal.Recipient,
		Description:   proposal.Description,
		Payload:       "0x" + hex.EncodeToString(proposal.Payload),
		Deadline:      proposal.Deadline.UTC(),
		Status:        string(view.Status),
		VotingOpen:    proposal.VotingOpen,
		Executed:      proposal.Executed,
		TotalVotes:    uint64(proposal.TotalVotes),
		MinQuorum:     uint64(view.MinQuorum),
		QuorumReached: view.QuorumReached,
		Voters:        view.Voters,
		CreatedAt:     proposal.CreatedAt.UTC(),
		ExecutedAt:    proposal.ExecutedAt,
		ClosedAt:      proposal.ClosedAt,
	}
}

func mapVote(vote entities.Vote) httptransport.VoteResponse {
	delegated := make(map[string]uint64, len(vote.Delegated))
	for delegator, stake := range vote.Delegated {
		delegated[delegator] = uint64(stake)
	}
	return httptransport.VoteResponse{
		ProposalID: vote.ProposalID,
		Voter:      vote.Voter,
		Weight:     uint64(vote.Weight),
		OwnStake:   uint64(vote.OwnStake),
		Delegated:  delegated,
		CastAt:     vote.CastAt.UTC(),
	}
}

func mapDelegation(delegation entities.Delegation) httptransport.DelegationResponse {
	return httptransport.DelegationResponse{
		ProposalID:  delegation.ProposalID,
		Delegator:   delegation.Delegator,
		Delegate:    delegation.Delegate,
		DelegatedAt: delegation.DelegatedAt.UTC(),
	}
}
