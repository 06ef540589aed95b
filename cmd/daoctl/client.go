package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	daohttp "daogov/contexts/governance/dao-engine/transport/http"
)

// apiClient talks to the dao-engine HTTP API on behalf of one principal.
type apiClient struct {
	baseURL        string
	principal      string
	idempotencyKey string
	http           *http.Client
}

// apiError is a non-2xx response decoded from the error body.
type apiError struct {
	Status int
	Body   daohttp.ErrorResponse
}

func (e *apiError) Error() string {
	if e.Body.Code == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d %s: %s", e.Status, e.Body.Code, e.Body.Message)
}

func newAPIClient(baseURL string, principal string, idempotencyKey string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		principal:      principal,
		idempotencyKey: idempotencyKey,
		http:           &http.Client{Timeout: timeout},
	}
}

func (c *apiClient) do(ctx context.Context, method string, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.principal != "" {
		req.Header.Set("X-Principal-Id", c.principal)
	}
	if c.idempotencyKey != "" && method != http.MethodGet {
		req.Header.Set("Idempotency-Key", c.idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Body)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
