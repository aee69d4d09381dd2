// Package supastore is the hosted-database Store backend. It talks to a
// PostgREST-style HTTP API and acts as the anti-corruption layer between
// the service's snake_case columns (item_name, box_or_package_qty, ...)
// and the domain structs: one explicit mapping function per direction,
// no field-presence guessing in callers.
//
// Zero rows on a single-object request is a normal ErrorRecordNotFound
// (service error code PGRST116); everything else - transport failures,
// permission errors, timeouts - surfaces as a StorageError.
package supastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opsdine/resto_backend/utils"
)

const (
	restPath = "/rest/v1"

	// PostgREST: JSON object requested but zero rows matched.
	codeZeroRows = "PGRST116"
)

type Store struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Store {
	return &Store{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.do(ctx, http.MethodGet, "/inventory_items", url.Values{"limit": {"1"}}, nil, "")
	return err
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// do executes one API call and returns the response body. Non-2xx
// responses are translated into the shared error taxonomy here so no
// service-specific error ever escapes the adapter.
func (s *Store) do(ctx context.Context, method, path string, query url.Values, body any, prefer string) ([]byte, error) {
	endpoint := s.baseURL + restPath + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, utils.NewStorageError("encode request", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, utils.NewStorageError("build request", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, utils.NewStorageError(method+" "+path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.NewStorageError("read response", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	var apiErr apiError
	_ = json.Unmarshal(raw, &apiErr)
	if apiErr.Code == codeZeroRows {
		return nil, utils.ErrorRecordNotFound
	}
	if strings.Contains(strings.ToLower(apiErr.Message), "insufficient stock") {
		return nil, utils.ErrorInsufficientStock
	}
	return nil, utils.NewStorageError(
		fmt.Sprintf("%s %s (status %d)", method, path, resp.StatusCode),
		fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message),
	)
}

// single requests exactly one row (PGRST116 on zero rows).
func (s *Store) single(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := s.baseURL + restPath + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, utils.NewStorageError("build request", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/vnd.pgrst.object+json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, utils.NewStorageError("GET "+path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.NewStorageError("read response", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	var apiErr apiError
	_ = json.Unmarshal(raw, &apiErr)
	if apiErr.Code == codeZeroRows || resp.StatusCode == http.StatusNotAcceptable {
		return nil, utils.ErrorRecordNotFound
	}
	return nil, utils.NewStorageError(
		fmt.Sprintf("GET %s (status %d)", path, resp.StatusCode),
		fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message),
	)
}

func eq(v any) string { return fmt.Sprintf("eq.%v", v) }
