package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/revdup-client/internal/config"
	"github.com/spec-kit/revdup-client/pkg/util"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(config.BackendConfig{
		BaseURL:             srv.URL,
		LoginPath:           "/auth/google/login",
		SignupPath:          "/api/signup",
		FederatedVerifyPath: "/auth/google/verify",
		TimeoutSeconds:      5,
	}, zap.NewNop())
	return client, srv
}

func TestLoginSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/google/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "secret", body["password"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"token":   "tok1",
			"user":    map[string]string{"id": "u1", "role": "CUSTOMER"},
			"extra":   "ignored",
		})
	}))

	result, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "tok1", result.Token)
	require.NotNil(t, result.User)
	assert.Equal(t, "CUSTOMER", result.User.Role)
}

func TestLoginBackendFailureMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "bad credentials"})
	}))

	result, err := client.Login(context.Background(), "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "bad credentials", result.Message)
}

func TestLoginValidation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for blank credentials")
	}))

	_, err := client.Login(context.Background(), " ", "secret")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
}

func TestUnexpectedStatusNormalized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	result, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "unexpected status 500")
}

func TestMalformedBodyNormalized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))

	result, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "malformed response")
}

func TestConnectionFailureNormalized(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	result, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "network error")
}

func TestSignUpHitsConfiguredPath(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/signup", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))

	result, err := client.SignUp(context.Background(), "bob", "hunter2")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestVerifyFederatedIdentity(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/google/verify", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "assertion-1", body["idToken"])

		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "tok2"})
	}))

	result, err := client.VerifyFederatedIdentity(context.Background(), "assertion-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "tok2", result.Token)
	assert.Nil(t, result.User)
}
