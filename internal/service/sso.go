package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	"github.com/carhub/carhub-web/internal/ports"
)

// SSOServiceOptions groups dependencies for SSOService.
type SSOServiceOptions struct {
	Provider   ports.AuthProvider
	Sessions   ports.SessionStore
	Roles      ports.RoleMapper
	SessionTTL time.Duration
}

// SSOService orchestrates staff single sign-on: it runs the provider flow,
// maps IdP groups to a role, and persists the resulting session. Staff
// sessions live in the same store as marketplace sessions and are subject to
// the same guards.
type SSOService struct {
	provider   ports.AuthProvider
	sessions   ports.SessionStore
	roles      ports.RoleMapper
	sessionTTL time.Duration
}

// NewSSOService constructs a new SSOService.
func NewSSOService(opts SSOServiceOptions) *SSOService {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SSOService{
		provider:   opts.Provider,
		sessions:   opts.Sessions,
		roles:      opts.Roles,
		sessionTTL: ttl,
	}
}

// BeginLoginResult contains the result of beginning an SSO flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an SSO flow and returns the provider auth URL with
// state and nonce. The caller stashes state and nonce in short-lived cookies
// for the callback to verify.
func (s *SSOService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin sso flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing an SSO flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the authorization code for an identity, maps the
// provider groups onto a role, and persists an authenticated session. The
// session expiry is the earlier of the provider expiry and the local TTL.
func (s *SSOService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (domainauth.Session, error) {
	if input.Code == "" {
		return domainauth.Session{}, errors.New("authorization code is required")
	}
	if input.State == "" {
		return domainauth.Session{}, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return domainauth.Session{}, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.sessionTTL)
	if !identity.ExpiresAt.IsZero() && identity.ExpiresAt.Before(expiresAt) {
		expiresAt = identity.ExpiresAt
	}

	sess := domainauth.Session{
		ID: uuid.NewString(),
		Identity: &domainauth.Identity{
			UserID: identity.UserID,
			Name:   identity.Name,
			Email:  identity.Email,
			Role:   s.roles.Map(identity.Groups),
		},
		Checked:   true,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", saveErr)
	}
	return sess, nil
}
