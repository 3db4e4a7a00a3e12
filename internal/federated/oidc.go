package federated

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/spec-kit/revdup-client/internal/config"
)

// OIDCProvider obtains an identity assertion through a standard OIDC
// authorization-code flow. The raw ID token is the assertion; the backend
// performs its own verification, but the token is also checked locally
// against the issuer's keys before being handed on.
type OIDCProvider struct {
	oauth    *oauth2.Config
	verifier *gooidc.IDTokenVerifier
}

// NewOIDCProvider runs discovery against the configured issuer.
func NewOIDCProvider(ctx context.Context, cfg config.OIDCConfig) (*OIDCProvider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("oidc: client ID is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("oidc: redirect URL is required")
	}

	provider, err := gooidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	return &OIDCProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       append([]string{gooidc.ScopeOpenID}, strings.Fields(cfg.Scopes)...),
			Endpoint:     provider.Endpoint(),
		},
		verifier: provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// AuthURL returns the provider's consent URL for the given state.
func (p *OIDCProvider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for the ID-token assertion.
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("oidc exchange: %w", err)
	}

	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", errors.New("token response missing id_token")
	}
	if _, err := p.verifier.Verify(ctx, raw); err != nil {
		return "", fmt.Errorf("verify id token: %w", err)
	}
	return raw, nil
}

// NewState generates a cryptographically random state parameter.
func NewState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
