package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/revdup-client/internal/config"
	"github.com/spec-kit/revdup-client/internal/domain"
	"github.com/spec-kit/revdup-client/pkg/util"
)

// Client issues the three authentication calls against the backend. It is
// stateless: no token is attached and nothing is persisted here. Every
// transport-level failure is folded into the returned AuthResult, so callers
// never wrap these calls in error handling beyond local input validation.
type Client struct {
	http   *http.Client
	cfg    config.BackendConfig
	logger *zap.Logger
}

// NewClient builds the transport client from backend configuration.
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout()},
		cfg:    cfg,
		logger: logger,
	}
}

type credentialRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type federatedRequest struct {
	IDToken string `json:"idToken"`
}

// authResponse mirrors the backend contract. Unknown fields are ignored.
type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	Message string       `json:"message"`
	User    *userPayload `json:"user"`
}

type userPayload struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// Login exchanges a username/password pair for a session token.
func (c *Client) Login(ctx context.Context, identifier, secret string) (domain.AuthResult, error) {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(secret) == "" {
		return domain.AuthResult{}, util.NewValidationError("identifier and secret are required", nil)
	}
	return c.post(ctx, c.cfg.LoginPath, credentialRequest{Username: identifier, Password: secret}), nil
}

// SignUp registers a new account. A successful signup does not authenticate.
func (c *Client) SignUp(ctx context.Context, identifier, secret string) (domain.AuthResult, error) {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(secret) == "" {
		return domain.AuthResult{}, util.NewValidationError("identifier and secret are required", nil)
	}
	return c.post(ctx, c.cfg.SignupPath, credentialRequest{Username: identifier, Password: secret}), nil
}

// VerifyFederatedIdentity exchanges an identity-provider assertion for a
// session token.
func (c *Client) VerifyFederatedIdentity(ctx context.Context, assertion string) (domain.AuthResult, error) {
	if strings.TrimSpace(assertion) == "" {
		return domain.AuthResult{}, util.NewValidationError("assertion is required", nil)
	}
	return c.post(ctx, c.cfg.FederatedVerifyPath, federatedRequest{IDToken: assertion}), nil
}

// post performs one round trip and normalizes every failure mode into a
// failed AuthResult.
func (c *Client) post(ctx context.Context, path string, body any) domain.AuthResult {
	payload, err := json.Marshal(body)
	if err != nil {
		return domain.Failure(fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return domain.Failure(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend unreachable", zap.String("path", path), zap.Error(err))
		return domain.Failure(fmt.Sprintf("network error: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("backend returned unexpected status",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		return domain.Failure(fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	var decoded authResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Failure(fmt.Sprintf("malformed response: %v", err))
	}

	result := domain.AuthResult{
		Success: decoded.Success,
		Token:   decoded.Token,
		Message: decoded.Message,
	}
	if decoded.User != nil {
		result.User = &domain.AccountInfo{ID: decoded.User.ID, Role: decoded.User.Role}
	}
	return result
}
