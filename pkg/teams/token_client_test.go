package teams

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/usertoken/GetToken", r.URL.Path)
		assert.Equal(t, "user-1", r.URL.Query().Get("userId"))
		assert.Equal(t, "msteams", r.URL.Query().Get("channelId"))
		assert.Equal(t, "User.Read", r.URL.Query().Get("scope"))
		w.Write([]byte(`{"token":"user-tok","connectionName":"conn"}`))
	}))
	defer srv.Close()

	client := NewTokenClient(srv.URL, NewAppCredentials("", "", ""))
	token, err := client.GetUserToken(context.Background(), "user-1", "msteams", "User.Read")

	require.NoError(t, err)
	assert.Equal(t, "user-tok", token)
}

func TestGetUserTokenNotConsented(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewTokenClient(srv.URL, NewAppCredentials("", "", ""))
	token, err := client.GetUserToken(context.Background(), "user-1", "msteams", "User.Read")

	// 404 means no sign-in yet, which is an empty token, not a failure.
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestGetUserTokenServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewTokenClient(srv.URL, NewAppCredentials("", "", ""))
	_, err := client.GetUserToken(context.Background(), "user-1", "msteams", "User.Read")

	assert.Error(t, err)
}
