package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	daoengine "daogov/contexts/governance/dao-engine"
	"daogov/contexts/governance/dao-engine/adapters/memory"
	"daogov/contexts/governance/dao-engine/domain/entities"
	daohttp "daogov/contexts/governance/dao-engine/transport/http"
	"daogov/internal/platform/metrics"
)

func newTestServer(t *testing.T) (*Server, daoengine.Module) {
	t.Helper()
	module, err := daoengine.NewInMemoryModule(daoengine.InMemoryConfig{
		Owner:          "owner",
		CustodyAccount: "dao-custody",
		MinQuorum:      32,
		VotingPeriod:   72 * time.Hour,
		Token:          memory.TokenMetadata{Name: "Corgy", Symbol: "CRG", Decimals: 18},
		TokenAddress:   "token",
		Genesis: map[string]entities.Amount{
			"alice": 100,
			"bob":   100,
		},
	}, nil)
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	module.Store.SetNow(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	m := metrics.New()
	if err := m.WatchEngineSequence(func() uint64 {
		return module.Handler.EngineInfoHandler(t.Context()).Sequence
	}); err != nil {
		t.Fatalf("watch sequence: %v", err)
	}
	return New(module, nil, ":0", m), module
}

func do(t *testing.T, server *Server, method string, target string, principal string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set("X-Principal-Id", principal)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
	return out
}

func fund(t *testing.T, server *Server, principal string, amount string) {
	t.Helper()
	approve := do(t, server, http.MethodPost, "/api/token/v1/approvals", principal, `{"spender":"dao-custody","amount":`+amount+`}`)
	if approve.Code != http.StatusOK {
		t.Fatalf("expected 200 approve, got %d body=%s", approve.Code, approve.Body.String())
	}
	deposit := do(t, server, http.MethodPost, "/api/dao/v1/deposits", principal, `{"amount":`+amount+`}`)
	if deposit.Code != http.StatusOK {
		t.Fatalf("expected 200 deposit, got %d body=%s", deposit.Code, deposit.Body.String())
	}
}

func TestMutationsRequirePrincipal(t *testing.T) {
	server, _ := newTestServer(t)
	for _, target := range []string{
		"/api/dao/v1/deposits",
		"/api/dao/v1/proposals",
		"/api/dao/v1/proposals/0/votes",
		"/api/dao/v1/proposals/0/execute",
		"/api/token/v1/transfers",
	} {
		rr := do(t, server, http.MethodPost, target, "", `{}`)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d body=%s", target, rr.Code, rr.Body.String())
		}
		resp := decodeBody[daohttp.ErrorResponse](t, rr)
		if resp.Code != "missing_principal" {
			t.Fatalf("%s: unexpected code %s", target, resp.Code)
		}
	}
}

func TestProposalLifecycleOverHTTP(t *testing.T) {
	server, module := newTestServer(t)
	fund(t, server, "alice", "40")

	create := do(t, server, http.MethodPost, "/api/dao/v1/proposals", "owner",
		`{"recipient":"token","description":"read token name","payload":"0x06fdde03"}`)
	if create.Code != http.StatusCreated {
		t.Fatalf("expected 201 create, got %d body=%s", create.Code, create.Body.String())
	}
	proposal := decodeBody[daohttp.ProposalResponse](t, create)
	if proposal.ProposalID != 0 || proposal.Status != "open" {
		t.Fatalf("unexpected proposal %+v", proposal)
	}

	vote := do(t, server, http.MethodPost, "/api/dao/v1/proposals/0/votes", "alice", "")
	if vote.Code != http.StatusOK {
		t.Fatalf("expected 200 vote, got %d body=%s", vote.Code, vote.Body.String())
	}
	if got := decodeBody[daohttp.VoteResponse](t, vote); got.Weight != 40 {
		t.Fatalf("expected weight 40, got %d", got.Weight)
	}

	withdraw := do(t, server, http.MethodPost, "/api/dao/v1/withdrawals", "alice", `{"amount":1}`)
	if withdraw.Code != http.StatusConflict {
		t.Fatalf("expected 409 locked withdraw, got %d body=%s", withdraw.Code, withdraw.Body.String())
	}
	if got := decodeBody[daohttp.ErrorResponse](t, withdraw); got.Code != "funds_locked" || got.Class != "state" {
		t.Fatalf("unexpected error %+v", got)
	}

	execute := do(t, server, http.MethodPost, "/api/dao/v1/proposals/0/execute", "bob", "")
	if execute.Code != http.StatusOK {
		t.Fatalf("expected 200 execute, got %d body=%s", execute.Code, execute.Body.String())
	}
	if got := decodeBody[daohttp.ProposalResponse](t, execute); got.Status != "executed" || !got.Executed {
		t.Fatalf("unexpected executed proposal %+v", got)
	}
	if calls := module.Dispatcher.Calls(); len(calls) != 1 || calls[0].Target != "token" {
		t.Fatalf("expected one dispatched call to token, got %+v", calls)
	}

	again := do(t, server, http.MethodPost, "/api/dao/v1/proposals/0/execute", "bob", "")
	if again.Code != http.StatusConflict {
		t.Fatalf("expected 409 second execute, got %d body=%s", again.Code, again.Body.String())
	}

	balance := do(t, server, http.MethodGet, "/api/dao/v1/voters/alice", "", "")
	if got := decodeBody[daohttp.VoterResponse](t, balance); got.LockedBalance != 0 || got.AvailableBalance != 40 {
		t.Fatalf("expected unlocked balance after execution, got %+v", got)
	}
}

func TestExecuteBelowQuorumIsUnprocessable(t *testing.T) {
	server, _ := newTestServer(t)
	fund(t, server, "alice", "10")
	do(t, server, http.MethodPost, "/api/dao/v1/proposals", "owner", `{"recipient":"token","description":"d","payload":"0x06fdde03"}`)
	do(t, server, http.MethodPost, "/api/dao/v1/proposals/0/votes", "alice", "")

	rr := do(t, server, http.MethodPost, "/api/dao/v1/proposals/0/execute", "alice", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := decodeBody[daohttp.ErrorResponse](t, rr); got.Code != "quorum_not_met" {
		t.Fatalf("unexpected code %s", got.Code)
	}
}

func TestCreateProposalRequiresOwner(t *testing.T) {
	server, _ := newTestServer(t)
	rr := do(t, server, http.MethodPost, "/api/dao/v1/proposals", "mallory", `{"recipient":"token","description":"d","payload":"0x"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestInvalidInputsAreBadRequests(t *testing.T) {
	server, _ := newTestServer(t)
	cases := []struct {
		method, target, principal, body, code string
	}{
		{http.MethodGet, "/api/dao/v1/proposals/abc", "", "", "invalid_proposal_id"},
		{http.MethodPost, "/api/dao/v1/deposits", "alice", `{"amount":`, "invalid_json"},
		{http.MethodPost, "/api/dao/v1/deposits", "alice", `{"amount":0}`, "invalid_amount"},
		{http.MethodPost, "/api/dao/v1/proposals", "owner", `{"recipient":"token","description":"d","payload":"zz"}`, "invalid_payload"},
		{http.MethodGet, "/api/dao/v1/proposals?status=pending", "", "", "invalid_status_filter"},
	}
	for _, tc := range cases {
		rr := do(t, server, tc.method, tc.target, tc.principal, tc.body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s %s: expected 400, got %d body=%s", tc.method, tc.target, rr.Code, rr.Body.String())
		}
		if got := decodeBody[daohttp.ErrorResponse](t, rr); got.Code != tc.code {
			t.Fatalf("%s %s: expected code %s, got %s", tc.method, tc.target, tc.code, got.Code)
		}
	}
}

func TestUnknownProposalIsNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	for _, target := range []string{
		"/api/dao/v1/proposals/7",
		"/api/dao/v1/proposals/7/balance",
		"/api/dao/v1/proposals/7/votes/alice",
	} {
		rr := do(t, server, http.MethodGet, target, "", "")
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d body=%s", target, rr.Code, rr.Body.String())
		}
	}
}

func TestCustodyAccountCannotUseTokenRoutes(t *testing.T) {
	server, _ := newTestServer(t)
	fund(t, server, "alice", "40")

	rr := do(t, server, http.MethodPost, "/api/token/v1/transfers", "dao-custody", `{"to":"bob","amount":40}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
	if resp := decodeBody[daohttp.ErrorResponse](t, rr); resp.Code != "custody_account_reserved" {
		t.Fatalf("unexpected code %s", resp.Code)
	}
	balance := do(t, server, http.MethodGet, "/api/token/v1/balances/dao-custody", "", "")
	if got := decodeBody[daohttp.TokenBalanceResponse](t, balance); got.Balance != 40 {
		t.Fatalf("expected custody to keep 40, got %d", got.Balance)
	}
}

func TestIdempotentDepositReplays(t *testing.T) {
	server, _ := newTestServer(t)
	do(t, server, http.MethodPost, "/api/token/v1/approvals", "alice", `{"spender":"dao-custody","amount":50}`)

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/dao/v1/deposits", strings.NewReader(body))
		req.Header.Set("X-Principal-Id", "alice")
		req.Header.Set("Idempotency-Key", "dep-1")
		rr := httptest.NewRecorder()
		server.mux.ServeHTTP(rr, req)
		return rr
	}
	first := send(`{"amount":20}`)
	second := send(`{"amount":20}`)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200 twice, got %d and %d", first.Code, second.Code)
	}
	if got := decodeBody[daohttp.VoterResponse](t, second); !got.Replayed || got.DepositedBalance != 20 {
		t.Fatalf("expected replayed deposit of 20, got %+v", got)
	}
	conflict := send(`{"amount":21}`)
	if conflict.Code != http.StatusConflict {
		t.Fatalf("expected 409 on reused key, got %d body=%s", conflict.Code, conflict.Body.String())
	}
}

func TestAdminRoutesAndMetrics(t *testing.T) {
	server, _ := newTestServer(t)
	rr := do(t, server, http.MethodPost, "/api/dao/v1/admin/quorum", "owner", `{"min_quorum":5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := decodeBody[daohttp.EngineInfoResponse](t, rr); got.MinQuorum != 5 || got.VotingPeriod != "72h0m0s" {
		t.Fatalf("unexpected engine info %+v", got)
	}
	denied := do(t, server, http.MethodPost, "/api/dao/v1/admin/ownership", "alice", `{"new_owner":"alice"}`)
	if denied.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", denied.Code)
	}

	audit := do(t, server, http.MethodGet, "/api/dao/v1/engine/audit", "", "")
	if got := decodeBody[daohttp.AuditResponse](t, audit); audit.Code != http.StatusOK || !got.Healthy {
		t.Fatalf("expected healthy audit, got %d %+v", audit.Code, got)
	}

	scrape := do(t, server, http.MethodGet, "/metrics", "", "")
	body := scrape.Body.String()
	if !strings.Contains(body, `dao_http_requests_total{method="POST",route="POST /api/dao/v1/admin/quorum",status="200"} 1`) {
		t.Fatalf("request counter missing from scrape:\n%s", body)
	}
	if !strings.Contains(body, "dao_engine_sequence 1") {
		t.Fatalf("sequence gauge missing from scrape:\n%s", body)
	}
}

func TestSwaggerDocIsServed(t *testing.T) {
	server, _ := newTestServer(t)
	rr := do(t, server, http.MethodGet, "/swagger/doc.json", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "/api/dao/v1/proposals/{proposal_id}/execute") {
		t.Fatalf("swagger doc missing execute route")
	}
}
