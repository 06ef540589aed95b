package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	daohttp "daogov/contexts/governance/dao-engine/transport/http"
	"daogov/internal/platform/abi"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method      string
	path        string
	principal   string
	idempotency string
	body        string
}

func newRecordingServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			method:      r.Method,
			path:        r.URL.RequestURI(),
			principal:   r.Header.Get("X-Principal-Id"),
			idempotency: r.Header.Get("Idempotency-Key"),
			body:        string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDepositSendsPrincipalAndIdempotencyKey(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusOK, `{"principal":"alice","deposited_balance":25}`)

	out, err := run(t, "--server", server.URL, "--as", "alice", "--idempotency-key", "dep-1", "deposit", "25")
	require.NoError(t, err)
	require.Len(t, *requests, 1)

	got := (*requests)[0]
	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "/api/dao/v1/deposits", got.path)
	require.Equal(t, "alice", got.principal)
	require.Equal(t, "dep-1", got.idempotency)
	require.JSONEq(t, `{"amount":25}`, got.body)
	require.Contains(t, out, `"deposited_balance": 25`)
}

func TestProposeEncodesCall(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusCreated, `{"proposal_id":0}`)

	_, err := run(t, "--server", server.URL, "--as", "owner", "propose",
		"--recipient", "token",
		"--description", "pay bob",
		"--call", "transfer(address,uint256)",
		"--arg-string", "bob",
		"--arg-uint", "10",
	)
	require.NoError(t, err)
	require.Len(t, *requests, 1)

	var req daohttp.CreateProposalRequest
	require.NoError(t, json.Unmarshal([]byte((*requests)[0].body), &req))
	payload, err := abi.ParseHex(req.Payload)
	require.NoError(t, err)
	selector, args, err := abi.SplitCall(payload)
	require.NoError(t, err)
	require.Equal(t, abi.SelectorOf("transfer(address,uint256)"), selector)
	to, err := abi.StringAt(args, 0)
	require.NoError(t, err)
	require.Equal(t, "bob", to)
	amount, err := abi.Uint64At(args, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(10), amount)
	require.Nil(t, req.Deadline)
}

func TestProposalActionsUseExpectedRoutes(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusOK, `{}`)
	for _, args := range [][]string{
		{"vote", "3"},
		{"unvote", "3"},
		{"execute", "3"},
		{"finalize", "3"},
		{"delegate", "3", "bob"},
		{"proposals", "--status", "open"},
	} {
		_, err := run(t, append([]string{"--server", server.URL, "--as", "alice"}, args...)...)
		require.NoError(t, err, args)
	}

	want := []struct{ method, path string }{
		{http.MethodPost, "/api/dao/v1/proposals/3/votes"},
		{http.MethodDelete, "/api/dao/v1/proposals/3/votes"},
		{http.MethodPost, "/api/dao/v1/proposals/3/execute"},
		{http.MethodPost, "/api/dao/v1/proposals/3/finalize"},
		{http.MethodPost, "/api/dao/v1/proposals/3/delegations"},
		{http.MethodGet, "/api/dao/v1/proposals?status=open"},
	}
	require.Len(t, *requests, len(want))
	for i, w := range want {
		require.Equal(t, w.method, (*requests)[i].method)
		require.Equal(t, w.path, (*requests)[i].path)
	}
}

func TestAPIErrorsAreSurfaced(t *testing.T) {
	server, _ := newRecordingServer(t, http.StatusUnprocessableEntity, `{"code":"quorum_not_met","class":"quorum","message":"proposal quorum not met"}`)

	_, err := run(t, "--server", server.URL, "--as", "alice", "execute", "0")
	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Equal(t, "quorum_not_met", apiErr.Body.Code)
}

func TestEncodePrintsHex(t *testing.T) {
	out, err := run(t, "encode", "--call", "name()")
	require.NoError(t, err)
	selector := abi.SelectorOf("name()")
	require.Equal(t, "0x"+hex.EncodeToString(selector[:]), strings.TrimSpace(out))
}

func TestRejectsNonNumericAmount(t *testing.T) {
	_, err := run(t, "deposit", "ten")
	require.Error(t, err)
}
