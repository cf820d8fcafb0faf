package mocksso

// Package mocksso implements a mock SSO provider for local development.
// It never talks to a real identity provider; Exchange returns a fixed
// identity configured through the environment.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/url"
	"time"

	"github.com/carhub/carhub-web/internal/ports"
)

// Provider implements ports.AuthProvider for local development.
type Provider struct {
	userID string
	name   string
	email  string
	groups []string
	ttl    time.Duration
}

var _ ports.AuthProvider = (*Provider)(nil)

// ProviderConfig holds the fixed identity the mock provider hands out.
type ProviderConfig struct {
	UserID     string
	Name       string
	Email      string
	Groups     []string
	SessionTTL time.Duration
}

// NewProvider creates a new mock SSO provider.
func NewProvider(cfg ProviderConfig) *Provider {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Provider{
		userID: cfg.UserID,
		name:   cfg.Name,
		email:  cfg.Email,
		groups: cfg.Groups,
		ttl:    ttl,
	}
}

// Begin returns an auth URL pointing straight back at the callback,
// simulating an instant provider round trip.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := randomString(32)
	if err != nil {
		return "", "", "", err
	}
	nonce, err := randomString(32)
	if err != nil {
		return "", "", "", err
	}

	u, err := url.Parse(in.RedirectURL)
	if err != nil {
		return "", "", "", err
	}
	q := u.Query()
	q.Set("code", "mock-code")
	q.Set("state", state)
	u.RawQuery = q.Encode()

	return u.String(), state, nonce, nil
}

// Exchange ignores the code and returns the configured identity.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (ports.ProviderIdentity, error) {
	if in.Code == "" {
		return ports.ProviderIdentity{}, errors.New("authorization code is required")
	}
	return ports.ProviderIdentity{
		UserID:    p.userID,
		Name:      p.name,
		Email:     p.email,
		Groups:    p.groups,
		ExpiresAt: time.Now().Add(p.ttl),
	}, nil
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
