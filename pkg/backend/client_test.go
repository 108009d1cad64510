package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryNotConfigured(t *testing.T) {
	c := NewClient("", "")

	_, err := c.Query(context.Background(), "question", "token", "user-1", "conv-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestQueryEmptyToken(t *testing.T) {
	c := NewClient("http://localhost:9999", "")

	_, err := c.Query(context.Background(), "question", "", "user-1", "conv-1")
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestQueryAuthRejected(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.Query(context.Background(), "question", "bad-token", "user-1", "conv-1")

	require.NoError(t, err)
	assert.Equal(t, KindAuthRejected, resp.Kind)
	// Single attempt, never retried
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueryServiceError(t *testing.T) {
	longBody := strings.Repeat("x", 500)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(longBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.Query(context.Background(), "question", "token", "user-1", "conv-1")

	require.NoError(t, err)
	assert.Equal(t, KindServiceError, resp.Kind)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Len(t, resp.Detail, 200) // body prefix only
}

func TestQueryTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	c.QueryClient = &http.Client{Timeout: 20 * time.Millisecond}

	resp, err := c.Query(context.Background(), "question", "token", "user-1", "conv-1")

	require.NoError(t, err)
	assert.Equal(t, KindUnreachable, resp.Kind)
	assert.True(t, resp.Timeout, "timeout must be classified distinctly from transport errors")
}

func TestQueryTransportError(t *testing.T) {
	// Nothing listens here.
	c := NewClient("http://127.0.0.1:1", "")

	resp, err := c.Query(context.Background(), "question", "token", "user-1", "conv-1")

	require.NoError(t, err)
	assert.Equal(t, KindUnreachable, resp.Kind)
	assert.False(t, resp.Timeout)
}

func TestQueryAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/hr/query", r.URL.Path)
		assert.Equal(t, "tok-123", r.Header.Get("X-Teams-Token"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "how many leave days?", payload["query"])
		assert.Equal(t, "user-1", payload["user_id"])
		assert.Equal(t, "conv-1", payload["conversation_id"])
		assert.Equal(t, true, payload["include_sources"])
		assert.Equal(t, true, payload["include_metadata"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"answer":          "You have 20 days.",
			"conversation_id": "conv-1",
			"sources": []map[string]string{
				{"document_title": "Leave Policy"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.Query(context.Background(), "how many leave days?", "tok-123", "user-1", "conv-1")

	require.NoError(t, err)
	assert.Equal(t, KindAnswer, resp.Kind)
	assert.Equal(t, "You have 20 days.", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "Leave Policy", resp.Sources[0].DocumentTitle)
}

func TestQueryAnswerWithoutSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"Yes.","conversation_id":"conv-1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.Query(context.Background(), "q", "tok", "user-1", "conv-1")

	require.NoError(t, err)
	assert.Equal(t, KindAnswer, resp.Kind)
	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)
}

func TestRegisterTokenNotConfigured(t *testing.T) {
	c := NewClient("", "")

	result := c.RegisterToken(context.Background(), "user-1", "tok", "tenant-1", nil)

	assert.True(t, result.Failed())
	assert.Equal(t, "Backend URL not configured", result.Err)
}

func TestRegisterTokenSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/teams-token", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "tok", payload["teams_token"])
		assert.Equal(t, "user-1", payload["user_id"])
		assert.Equal(t, "tenant-1", payload["tenant_id"])
		assert.Equal(t, "conv-1", payload["conversation_id"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "registered",
			"user":    map[string]string{"full_name": "Jane Doe"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	result := c.RegisterToken(context.Background(), "user-1", "tok", "tenant-1", map[string]interface{}{
		"conversation_id": "conv-1",
	})

	assert.False(t, result.Failed())
	assert.Equal(t, "Jane Doe", result.User["full_name"])
}

func TestRegisterTokenFoldsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: "backend error: 502",
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantErr: "token rejected by backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, "")
			result := c.RegisterToken(context.Background(), "user-1", "tok", "", nil)

			assert.True(t, result.Failed())
			assert.Equal(t, tt.wantErr, result.Err)
		})
	}
}

func TestRegisterTokenTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	c.RegisterClient = &http.Client{Timeout: 20 * time.Millisecond}

	result := c.RegisterToken(context.Background(), "user-1", "tok", "", nil)

	assert.True(t, result.Failed())
	assert.Equal(t, "backend not responding", result.Err)
}
