package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
)

// Credentials carries a login form submission.
type Credentials struct {
	Email    string
	Password string
}

// SignupRequest carries the registration form fields forwarded verbatim to
// the marketplace API.
type SignupRequest struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     domainauth.Role
}

// StatusResult is the normalized outcome of the upstream status check.
type StatusResult struct {
	LoggedIn bool
	Identity *domainauth.Identity
	Upstream []domainauth.UpstreamCookie
}

// LoginResult is the normalized outcome of a successful upstream login.
type LoginResult struct {
	Identity domainauth.Identity
	Upstream []domainauth.UpstreamCookie
}

// CallResult is the normalized outcome of upstream calls that return no user
// record (signup, logout).
type CallResult struct {
	Message  string
	Upstream []domainauth.UpstreamCookie
}

// Gateway is the boundary adapter to the marketplace identity API. Each method
// issues exactly one HTTP call, replaying the given upstream cookies and
// returning the updated cookie set. A call succeeds only when the transport
// call succeeded AND the payload carries the success sentinel; every other
// combination is an error. No caching, no retries.
type Gateway interface {
	CheckStatus(ctx context.Context, upstream []domainauth.UpstreamCookie) (StatusResult, error)
	Login(ctx context.Context, creds Credentials, upstream []domainauth.UpstreamCookie) (LoginResult, error)
	Signup(ctx context.Context, req SignupRequest, upstream []domainauth.UpstreamCookie) (CallResult, error)
	Logout(ctx context.Context, upstream []domainauth.UpstreamCookie) (CallResult, error)
}

// ErrSessionNotFound is returned by SessionStore.Get when no session exists
// for the given ID. Stores return it verbatim so callers can branch on it
// without knowing the backing implementation.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists and retrieves per-browser sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ErrGrantNotFound is returned by AdminGateStore.GetGrant for unknown tokens.
var ErrGrantNotFound = errors.New("grant not found")

// AdminGateStore persists admin gate grants. Grants never expire.
type AdminGateStore interface {
	CreateGrant(ctx context.Context, grant domainauth.AdminGrant) error
	GetGrant(ctx context.Context, token string) (domainauth.AdminGrant, error)
	DeleteGrant(ctx context.Context, token string) error
}

// ProviderIdentity is the principal returned by an SSO identity provider.
// The role mapper turns Groups into an application role.
type ProviderIdentity struct {
	UserID    string
	Name      string
	Email     string
	Groups    []string
	ExpiresAt time.Time
}

// BeginInput carries inputs for initiating an SSO flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an SSO flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated principal.
	Exchange(ctx context.Context, in ExchangeInput) (ProviderIdentity, error)
}

// RoleMapper maps provider groups to marketplace roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
