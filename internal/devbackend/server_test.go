package devbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/revdup-client/internal/config"
	"github.com/spec-kit/revdup-client/internal/domain"
)

func newTestApp(t *testing.T, omitFederatedRole bool) (*fiber.App, AccountRepository) {
	t.Helper()

	repo := NewMemoryRepository()
	handler := NewHandler(config.DevBackendConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            4,
		OmitFederatedRole:     omitFederatedRole,
	}, repo, zap.NewNop())

	app := NewApp(config.BackendConfig{
		LoginPath:           "/auth/google/login",
		SignupPath:          "/api/signup",
		FederatedVerifyPath: "/auth/google/verify",
	}, handler, zap.NewNop())
	return app, repo
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) authResponse {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func seedAccount(t *testing.T, repo AccountRepository, identifier, password string, role domain.Role) {
	t.Helper()

	hash, err := HashPassword(password, 4)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &Account{
		Identifier:   identifier,
		PasswordHash: hash,
		Role:         role,
	}))
}

func TestLoginIssuesTokenWithRole(t *testing.T) {
	app, repo := newTestApp(t, false)
	seedAccount(t, repo, "alice", "secret", domain.RoleAdmin)

	resp := postJSON(t, app, "/auth/google/login", authRequest{Username: "alice", Password: "secret"})
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "ADMIN", resp.User.Role)

	claims, err := NewTokenManager("test-secret", 5).ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestLoginBadCredentials(t *testing.T) {
	app, repo := newTestApp(t, false)
	seedAccount(t, repo, "alice", "secret", domain.RoleCustomer)

	resp := postJSON(t, app, "/auth/google/login", authRequest{Username: "alice", Password: "wrong"})
	assert.False(t, resp.Success)
	assert.Equal(t, "bad credentials", resp.Message)
	assert.Empty(t, resp.Token)

	resp = postJSON(t, app, "/auth/google/login", authRequest{Username: "nobody", Password: "x"})
	assert.False(t, resp.Success)
	assert.Equal(t, "bad credentials", resp.Message)
}

func TestSignUpThenLogin(t *testing.T) {
	app, _ := newTestApp(t, false)

	resp := postJSON(t, app, "/api/signup", authRequest{Username: "bob", Password: "hunter2"})
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Token, "signup must not authenticate")

	resp = postJSON(t, app, "/auth/google/login", authRequest{Username: "bob", Password: "hunter2"})
	assert.True(t, resp.Success)
	require.NotNil(t, resp.User)
	assert.Equal(t, "CUSTOMER", resp.User.Role)
}

func TestSignUpDuplicate(t *testing.T) {
	app, _ := newTestApp(t, false)

	resp := postJSON(t, app, "/api/signup", authRequest{Username: "bob", Password: "hunter2"})
	assert.True(t, resp.Success)

	resp = postJSON(t, app, "/api/signup", authRequest{Username: "bob", Password: "other"})
	assert.False(t, resp.Success)
	assert.Equal(t, "identifier already registered", resp.Message)
}

func TestFederatedVerifyProvisionsAccount(t *testing.T) {
	app, _ := newTestApp(t, false)

	resp := postJSON(t, app, "/auth/google/verify", federatedVerifyRequest{IDToken: "assertion-1"})
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "CUSTOMER", resp.User.Role)

	// Same assertion resolves to the same account.
	again := postJSON(t, app, "/auth/google/verify", federatedVerifyRequest{IDToken: "assertion-1"})
	assert.Equal(t, resp.User.ID, again.User.ID)
}

func TestFederatedVerifyOmittedRole(t *testing.T) {
	app, _ := newTestApp(t, true)

	resp := postJSON(t, app, "/auth/google/verify", federatedVerifyRequest{IDToken: "assertion-1"})
	assert.True(t, resp.Success)
	require.NotNil(t, resp.User)
	assert.Empty(t, resp.User.Role)
}

func TestFederatedVerifyBlankAssertion(t *testing.T) {
	app, _ := newTestApp(t, false)

	resp := postJSON(t, app, "/auth/google/verify", federatedVerifyRequest{IDToken: "  "})
	assert.False(t, resp.Success)
	assert.Equal(t, "assertion required", resp.Message)
}
