package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	daoengine "daogov/contexts/governance/dao-engine"
	httpadapter "daogov/contexts/governance/dao-engine/adapters/http"
	"daogov/contexts/governance/dao-engine/adapters/memory"
	domainerrors "daogov/contexts/governance/dao-engine/domain/errors"
	daohttp "daogov/contexts/governance/dao-engine/transport/http"
	_ "daogov/internal/platform/httpserver/docs"
	"daogov/internal/platform/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	principalHeader   = "X-Principal-Id"
	idempotencyHeader = "Idempotency-Key"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	dao     daoengine.Module
	metrics *metrics.Metrics
	srv     *http.Server
}

func New(
	dao daoengine.Module,
	logger *slog.Logger,
	addr string,
	m *metrics.Metrics,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		dao:     dao,
		metrics: m,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handle(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, s.metrics.Instrument(pattern, handler))
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", s.metrics.Handler())
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.handle("GET /api/dao/v1/engine", s.handleEngineInfo)
	s.handle("GET /api/dao/v1/engine/audit", s.handleAudit)
	s.handle("POST /api/dao/v1/admin/ownership", s.handleTransferOwnership)
	s.handle("POST /api/dao/v1/admin/quorum", s.handleSetMinQuorum)

	s.handle("POST /api/dao/v1/deposits", s.handleDeposit)
	s.handle("POST /api/dao/v1/withdrawals", s.handleWithdraw)
	s.handle("GET /api/dao/v1/voters/{principal}", s.handleVoterBalance)

	s.handle("GET /api/dao/v1/proposals", s.handleListProposals)
	s.handle("POST /api/dao/v1/proposals", s.handleCreateProposal)
	s.handle("GET /api/dao/v1/proposals/{proposal_id}", s.handleGetProposal)
	s.handle("GET /api/dao/v1/proposals/{proposal_id}/balance", s.handleProposalBalance)
	s.handle("GET /api/dao/v1/proposals/{proposal_id}/votes", s.handleListVotes)
	s.handle("POST /api/dao/v1/proposals/{proposal_id}/votes", s.handleVote)
	s.handle("DELETE /api/dao/v1/proposals/{proposal_id}/votes", s.handleUnVote)
	s.handle("GET /api/dao/v1/proposals/{proposal_id}/votes/{voter}", s.handleGetVote)
	s.handle("POST /api/dao/v1/proposals/{proposal_id}/delegations", s.handleDelegate)
	s.handle("GET /api/dao/v1/proposals/{proposal_id}/delegations/{delegator}", s.handleGetDelegation)
	s.handle("POST /api/dao/v1/proposals/{proposal_id}/execute", s.handleExecute)
	s.handle("POST /api/dao/v1/proposals/{proposal_id}/finalize", s.handleFinalize)

	s.handle("GET /api/token/v1/info", s.handleTokenInfo)
	s.handle("GET /api/token/v1/balances/{principal}", s.handleTokenBalance)
	s.handle("GET /api/token/v1/allowances/{owner}/{spender}", s.handleTokenAllowance)
	s.handle("POST /api/token/v1/transfers", s.handleTokenTransfer)
	s.handle("POST /api/token/v1/approvals", s.handleTokenApprove)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEngineInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dao.Handler.EngineInfoHandler(r.Context()))
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	resp := s.dao.Handler.AuditHandler(r.Context())
	if !resp.Healthy {
		s.logger.Error("governance audit failed",
			"event", "http_dao_audit_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", resp.Error,
		)
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req daohttp.TransferOwnershipRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.dao.Handler.TransferOwnershipHandler(r.Context(), principal, req)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetMinQuorum(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req daohttp.SetMinQuorumRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.dao.Handler.SetMinQuorumHandler(r.Context(), principal, req)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req daohttp.AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.dao.Handler.DepositHandler(r.Context(), principal, r.Header.Get(idempotencyHeader), req)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req daohttp.AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.dao.Handler.WithdrawHandler(r.Context(), principal, r.Header.Get(idempotencyHeader), req)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoterBalance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.dao.Handler.VoterBalanceHandler(r.Context(), r.PathValue("principal"))
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	resp, err := s.dao.Handler.ListProposalsHandler(r.Context(), status)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req daohttp.CreateProposalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.dao.Handler.CreateProposalHandler(r.Context(), principal, r.Header.Get(idempotencyHeader), req)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.dao.Handler.GetProposalHandler(r.Context(), id)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProposalBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.dao.Handler.ProposalBalanceHandler(r.Context(), id)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.dao.Handler.ListVotesHandler(r.Context(), id)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.dao.Handler.VoteHandler(r.Context(), principal, r.Header.Get(idempotencyHeader), id)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnVote(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.dao.Handler.UnVoteHandler(r.Context(), principal, r.Header.Get(idempotencyHeader), id)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVote(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.dao.Handler.GetVoteHandler(r.Context(), id, r.PathValue("voter"))
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	var req daohttp.DelegateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.dao.Handler.DelegateHandler(r.Context(), principal, r.Header.Get(idempotencyHeader), id, req)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDelegation(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.dao.Handler.GetDelegationHandler(r.Context(), id, r.PathValue("delegator"))
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.dao.Handler.ExecuteProposalHandler(r.Context(), principal, r.Header.Get(idempotencyHeader), id)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.dao.Handler.FinalizeProposalHandler(r.Context(), principal, id)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := s.dao.Handler.TokenInfoHandler(r.Context())
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.dao.Handler.TokenBalanceHandler(r.Context(), r.PathValue("principal"))
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTokenAllowance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.dao.Handler.TokenAllowanceHandler(r.Context(), r.PathValue("owner"), r.PathValue("spender"))
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTokenTransfer(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req daohttp.TokenTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.dao.Handler.TokenTransferHandler(r.Context(), principal, req)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTokenApprove(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req daohttp.TokenApproveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.dao.Handler.TokenApproveHandler(r.Context(), principal, req)
	if err != nil {
		s.writeDAODomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requirePrincipal(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal := strings.TrimSpace(r.Header.Get(principalHeader))
	if principal == "" {
		writeDAOError(w, http.StatusUnauthorized, "missing_principal", "", principalHeader+" header is required")
		return "", false
	}
	return principal, true
}

func proposalID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("proposal_id"), 10, 64)
	if err != nil {
		writeDAOError(w, http.StatusBadRequest, "invalid_proposal_id", "", "proposal_id must be an unsigned integer")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeDAOError(w, http.StatusBadRequest, "invalid_json", "", "request body must be valid JSON")
		return false
	}
	return true
}

var daoErrorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{domainerrors.ErrPersistenceDegraded, http.StatusServiceUnavailable, "persistence_degraded"},
	{domainerrors.ErrInstructionDispatchFailed, http.StatusBadGateway, "instruction_dispatch_failed"},
	{domainerrors.ErrTransferFailed, http.StatusBadGateway, "transfer_failed"},
	{domainerrors.ErrNotOwner, http.StatusForbidden, "not_owner"},
	{httpadapter.ErrCustodyAccountReserved, http.StatusForbidden, "custody_account_reserved"},
	{domainerrors.ErrProposalNotFound, http.StatusNotFound, "proposal_not_found"},
	{domainerrors.ErrNotAVoter, http.StatusNotFound, "not_a_voter"},
	{httpadapter.ErrDelegationNotFound, http.StatusNotFound, "delegation_not_found"},
	{httpadapter.ErrTokenUnavailable, http.StatusNotFound, "token_unavailable"},
	{domainerrors.ErrAlreadyVoted, http.StatusConflict, "already_voted"},
	{domainerrors.ErrAlreadyExecuted, http.StatusConflict, "already_executed"},
	{domainerrors.ErrProposalExpired, http.StatusConflict, "proposal_expired"},
	{domainerrors.ErrProposalActive, http.StatusConflict, "proposal_active"},
	{domainerrors.ErrFundsLocked, http.StatusConflict, "funds_locked"},
	{domainerrors.ErrAlreadyDelegated, http.StatusConflict, "already_delegated"},
	{domainerrors.ErrDelegationConsumed, http.StatusConflict, "delegation_consumed"},
	{domainerrors.ErrIdempotencyConflict, http.StatusConflict, "idempotency_conflict"},
	{domainerrors.ErrConflict, http.StatusConflict, "conflict"},
	{domainerrors.ErrInsufficientBalance, http.StatusUnprocessableEntity, "insufficient_balance"},
	{domainerrors.ErrZeroBalance, http.StatusUnprocessableEntity, "zero_balance"},
	{domainerrors.ErrInsufficientAllowance, http.StatusUnprocessableEntity, "insufficient_allowance"},
	{domainerrors.ErrAmountOverflow, http.StatusUnprocessableEntity, "amount_overflow"},
	{memory.ErrTokenSupplyOverflow, http.StatusUnprocessableEntity, "amount_overflow"},
	{domainerrors.ErrQuorumNotMet, http.StatusUnprocessableEntity, "quorum_not_met"},
	{domainerrors.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{domainerrors.ErrInvalidDeadline, http.StatusBadRequest, "invalid_deadline"},
	{domainerrors.ErrInvalidPrincipal, http.StatusBadRequest, "invalid_principal"},
	{domainerrors.ErrSelfDelegation, http.StatusBadRequest, "self_delegation"},
	{domainerrors.ErrInvalidConfig, http.StatusBadRequest, "invalid_config"},
	{httpadapter.ErrInvalidPayload, http.StatusBadRequest, "invalid_payload"},
	{httpadapter.ErrInvalidStatusFilter, http.StatusBadRequest, "invalid_status_filter"},
}

func (s *Server) writeDAODomainError(w http.ResponseWriter, err error) {
	for _, entry := range daoErrorStatuses {
		if errors.Is(err, entry.err) {
			writeDAOError(w, entry.status, entry.code, errorClass(err), err.Error())
			return
		}
	}
	s.logger.Error("unmapped governance error",
		"event", "http_dao_internal_error",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"class", string(domainerrors.ClassOf(err)),
		"error", err.Error(),
	)
	writeDAOError(w, http.StatusInternalServerError, "internal_error", "", "internal server error")
}

func errorClass(err error) string {
	class := domainerrors.ClassOf(err)
	if class == domainerrors.ClassUnknown {
		return ""
	}
	return string(class)
}

func writeDAOError(w http.ResponseWriter, status int, code string, class string, message string) {
	writeJSON(w, status, daohttp.ErrorResponse{
		Code:    code,
		Class:   class,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
