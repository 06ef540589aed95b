package httpadapter

import (
	"context"
	"strings"

	"daogov/contexts/governance/dao-engine/domain/entities"
	httptransport "daogov/contexts/governance/dao-engine/transport/http"
)

func (h Handler) TokenInfoHandler(_ context.Context) (httptransport.TokenInfoResponse, error) {
	if h.Token == nil {
		return httptransport.TokenInfoResponse{}, ErrTokenUnavailable
	}
	meta := h.Token.Metadata()
	return httptransport.TokenInfoResponse{
		Name:        meta.Name,
		Symbol:      meta.Symbol,
		Decimals:    meta.Decimals,
		TotalSupply: uint64(h.Token.TotalSupply()),
	}, nil
}

func (h Handler) TokenBalanceHandler(ctx context.Context, principal string) (httptransport.TokenBalanceResponse, error) {
	if h.Token == nil {
		return httptransport.TokenBalanceResponse{}, ErrTokenUnavailable
	}
	balance, err := h.Token.BalanceOf(ctx, principal)
	if err != nil {
		return httptransport.TokenBalanceResponse{}, err
	}
	return httptransport.TokenBalanceResponse{Principal: principal, Balance: uint64(balance)}, nil
}

func (h Handler) TokenTransferHandler(ctx context.Context, principal string, req httptransport.TokenTransferRequest) (httptransport.TokenBalanceResponse, error) {
	if h.Token == nil {
		return httptransport.TokenBalanceResponse{}, ErrTokenUnavailable
	}
	if h.isCustody(principal) {
		return httptransport.TokenBalanceResponse{}, ErrCustodyAccountReserved
	}
	if err := h.Token.TransferAs(principal, req.To, entities.Amount(req.Amount)); err != nil {
		return httptransport.TokenBalanceResponse{}, err
	}
	return h.TokenBalanceHandler(ctx, principal)
}

func (h Handler) TokenApproveHandler(ctx context.Context, principal string, req httptransport.TokenApproveRequest) (httptransport.TokenAllowanceResponse, error) {
	if h.Token == nil {
		return httptransport.TokenAllowanceResponse{}, ErrTokenUnavailable
	}
	if h.isCustody(principal) {
		return httptransport.TokenAllowanceResponse{}, ErrCustodyAccountReserved
	}
	if err := h.Token.Approve(principal, req.Spender, entities.Amount(req.Amount)); err != nil {
		return httptransport.TokenAllowanceResponse{}, err
	}
	return h.TokenAllowanceHandler(ctx, principal, req.Spender)
}

func (h Handler) TokenAllowanceHandler(ctx context.Context, owner string, spender string) (httptransport.TokenAllowanceResponse, error) {
	if h.Token == nil {
		return httptransport.TokenAllowanceResponse{}, ErrTokenUnavailable
	}
	allowance, err := h.Token.Allowance(ctx, owner, spender)
	if err != nil {
		return httptransport.TokenAllowanceResponse{}, err
	}
	return httptransport.TokenAllowanceResponse{
		Owner:     owner,
		Spender:   spender,
		Allowance: uint64(allowance),
	}, nil
}

func (h Handler) isCustody(principal string) bool {
	custody := strings.TrimSpace(h.Custody)
	return custody != "" && strings.TrimSpace(principal) == custody
}
