package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Configuration failures are immediate and never retried; they are the only
// Query outcomes reported as Go errors rather than Response kinds.
var (
	ErrNotConfigured = errors.New("backend URL not configured")
	ErrEmptyToken    = errors.New("identity token is empty")
)

// ResponseKind classifies a remote query outcome.
type ResponseKind int

const (
	KindAnswer ResponseKind = iota
	KindAuthRejected
	KindServiceError
	KindUnreachable
)

// Source is a document reference attached to an answer, ordered by
// backend-assigned relevance.
type Source struct {
	DocumentTitle string `json:"document_title"`
	DocumentID    string `json:"document_id,omitempty"`
}

// Response is the typed result of a backend query. Exactly one kind applies;
// Status/Detail are operator-facing and must never reach the end user raw.
type Response struct {
	Kind           ResponseKind
	Answer         string
	ConversationID string
	Sources        []Source
	Metadata       map[string]interface{}

	Status  int    // HTTP status for KindServiceError
	Detail  string // body prefix or transport detail (operator log only)
	Timeout bool   // set when KindUnreachable was a timeout, not a transport error
}

// RegistrationResult folds every token-registration outcome into a value.
// The auth flow must keep going (greet the user, at least) even when
// registration fails, so this call never signals exceptionally.
type RegistrationResult struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	User    map[string]interface{} `json:"user"`
	Err     string                 `json:"error,omitempty"`
}

func (r RegistrationResult) Failed() bool {
	return r.Err != ""
}

const (
	queryPath    = "/api/v1/hr/query"
	queryTimeout = 60 * time.Second // generous: the backend runs a RAG pipeline
	regTimeout   = 30 * time.Second

	// Token travels in its own header so it cannot collide with the front
	// end's Authorization bearer semantics.
	tokenHeader = "X-Teams-Token"

	detailLimit = 200
)

// Client performs authenticated HTTP calls against the HR knowledge backend.
type Client struct {
	baseURL  string
	authPath string

	// Exported so tests can swap in short-timeout clients.
	QueryClient    *http.Client
	RegisterClient *http.Client
}

func NewClient(baseURL, authPath string) *Client {
	if authPath == "" {
		authPath = "/api/auth/teams-token"
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		authPath:       authPath,
		QueryClient:    &http.Client{Timeout: queryTimeout},
		RegisterClient: &http.Client{Timeout: regTimeout},
	}
}

// Configured reports whether a backend base URL is set. An unconfigured
// client can still serve RegisterToken (as a no-op) but never Query.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

type queryRequest struct {
	Query           string `json:"query"`
	UserID          string `json:"user_id"`
	ConversationID  string `json:"conversation_id"`
	IncludeSources  bool   `json:"include_sources"`
	IncludeMetadata bool   `json:"include_metadata"`
}

type queryResponse struct {
	Answer         string                 `json:"answer"`
	ConversationID string                 `json:"conversation_id"`
	Sources        []Source               `json:"sources"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// Query issues a single POST to the backend query endpoint. One attempt, no
// retry: the caller owns the user-facing fallback, and silently retrying a
// rejected token would spam the identity provider.
func (c *Client) Query(ctx context.Context, text, token, userID, conversationID string) (Response, error) {
	if !c.Configured() {
		return Response{}, ErrNotConfigured
	}
	if token == "" {
		return Response{}, ErrEmptyToken
	}

	payload := queryRequest{
		Query:           text,
		UserID:          userID,
		ConversationID:  conversationID,
		IncludeSources:  true,
		IncludeMetadata: true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshal query payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+queryPath, bytes.NewBuffer(body))
	if err != nil {
		return Response{}, fmt.Errorf("create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, token)

	resp, err := c.QueryClient.Do(req)
	if err != nil {
		return Response{
			Kind:    KindUnreachable,
			Detail:  err.Error(),
			Timeout: isTimeout(err),
		}, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{Kind: KindUnreachable, Detail: err.Error()}, nil
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Response{Kind: KindAuthRejected, Status: resp.StatusCode}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Response{
			Kind:   KindServiceError,
			Status: resp.StatusCode,
			Detail: prefix(respBody, detailLimit),
		}, nil
	}

	var parsed queryResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{
			Kind:   KindServiceError,
			Status: resp.StatusCode,
			Detail: "unparseable response body: " + prefix(respBody, detailLimit),
		}, nil
	}

	sources := parsed.Sources
	if sources == nil {
		sources = []Source{}
	}

	return Response{
		Kind:           KindAnswer,
		Answer:         parsed.Answer,
		ConversationID: parsed.ConversationID,
		Sources:        sources,
		Metadata:       parsed.Metadata,
	}, nil
}

// RegisterToken lets the backend associate a freshly obtained identity token
// with a user record. Registration is optional infrastructure: with no
// backend configured this is a no-op result, and every failure mode folds
// into the returned value.
func (c *Client) RegisterToken(ctx context.Context, userID, token, tenantID string, extra map[string]interface{}) RegistrationResult {
	if !c.Configured() {
		return RegistrationResult{Err: "Backend URL not configured"}
	}

	payload := map[string]interface{}{
		"teams_token": token,
		"user_id":     userID,
		"tenant_id":   tenantID,
	}
	for k, v := range extra {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return RegistrationResult{Err: fmt.Sprintf("marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+c.authPath, bytes.NewBuffer(body))
	if err != nil {
		return RegistrationResult{Err: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.RegisterClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return RegistrationResult{Err: "backend not responding"}
		}
		return RegistrationResult{Err: fmt.Sprintf("cannot reach backend: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return RegistrationResult{Err: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return RegistrationResult{Err: "token rejected by backend"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return RegistrationResult{Err: fmt.Sprintf("backend error: %d", resp.StatusCode)}
	}

	var result RegistrationResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return RegistrationResult{Err: fmt.Sprintf("unparseable response: %v", err)}
	}
	return result
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func prefix(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
