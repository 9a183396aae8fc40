// Package upstream is the HTTP client for the external matching service.
// It performs no retries — each call either succeeds or surfaces an *Error
// to the caller, which decides whether the failure aborts the operation
// (exact path) or is isolated to one combination (speculative path).
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// strictFlags are the soft-matching query parameters. This layer always
// widens, never narrows — callers that need strict matching filter on their
// side.
var strictFlags = []string{"strict_location", "strict_major", "strict_rank", "strict_budget"}

// Error is a transport or non-2xx failure from the matching service.
type Error struct {
	Status int    // HTTP status, 0 for transport errors
	Detail string // response body excerpt or transport error text
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("matching service unreachable: %s", e.Detail)
	}
	return fmt.Sprintf("matching service returned status %d: %s", e.Status, e.Detail)
}

// Client talks to the matching service. Per-call deadlines come from the
// caller's context; the underlying http.Client carries no timeout of its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// SupplementMatch runs one program-matching query with all strictness flags
// off.
func (c *Client) SupplementMatch(ctx context.Context, query Query) (*SupplementResult, error) {
	params := url.Values{}
	for _, flag := range strictFlags {
		params.Set(flag, "false")
	}

	raw, err := c.post(ctx, "/api/supplement_match?"+params.Encode(), query)
	if err != nil {
		return nil, err
	}

	var result SupplementResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding supplement match response: %w", err)
	}
	result.Raw = raw

	if result.InitialResults != nil {
		stats := result.InitialResults.Stats
		slog.Debug("supplement match succeeded",
			"initial_count", stats.InitialCount,
			"final_count", stats.FinalCount,
			"with_cases", stats.WithCasesCount,
			"total_time", stats.TotalTime,
		)
	}
	return &result, nil
}

// caseMatchRequest is the JSON body for POST /api/case_match. The prior
// supplement response is forwarded verbatim.
type caseMatchRequest struct {
	MatchResults json.RawMessage `json:"match_results"`
	UserInfo     UserInfo        `json:"user_info"`
}

// CaseMatch enriches a supplement-match result with matched prior cases.
func (c *Client) CaseMatch(ctx context.Context, matches *SupplementResult, user UserInfo) (*CaseResult, error) {
	body := caseMatchRequest{
		MatchResults: matches.Raw,
		UserInfo:     user,
	}
	if body.MatchResults == nil {
		b, err := json.Marshal(matches)
		if err != nil {
			return nil, fmt.Errorf("marshalling match results: %w", err)
		}
		body.MatchResults = b
	}

	raw, err := c.post(ctx, "/api/case_match", body)
	if err != nil {
		return nil, err
	}

	var result CaseResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding case match response: %w", err)
	}

	if result.Summary != nil {
		slog.Debug("case match succeeded",
			"total_programs", result.Summary.TotalPrograms,
			"total_cases", result.Summary.TotalCases,
		)
	}
	return &result, nil
}

// post issues one JSON POST and returns the response body. Failures are
// reported as *Error so callers can distinguish upstream trouble from local
// serialization bugs.
func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Detail: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(respBody))
		if len(detail) > 300 {
			detail = detail[:300]
		}
		return nil, &Error{Status: resp.StatusCode, Detail: detail}
	}

	return respBody, nil
}
