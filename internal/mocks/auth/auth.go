package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	"github.com/carhub/carhub-web/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Gateway        = (*FuncGateway)(nil)
	_ ports.SessionStore   = (*MemorySessionStore)(nil)
	_ ports.AdminGateStore = (*MemoryAdminGateStore)(nil)
	_ ports.AuthProvider   = (*MockAuthProvider)(nil)
)

// FuncGateway is a function-field gateway double. Any nil field behaves as a
// logged-out upstream that accepts every call.
type FuncGateway struct {
	CheckStatusFunc func(ctx context.Context, upstream []domainauth.UpstreamCookie) (ports.StatusResult, error)
	LoginFunc       func(ctx context.Context, creds ports.Credentials, upstream []domainauth.UpstreamCookie) (ports.LoginResult, error)
	SignupFunc      func(ctx context.Context, req ports.SignupRequest, upstream []domainauth.UpstreamCookie) (ports.CallResult, error)
	LogoutFunc      func(ctx context.Context, upstream []domainauth.UpstreamCookie) (ports.CallResult, error)
}

func (g *FuncGateway) CheckStatus(ctx context.Context, upstream []domainauth.UpstreamCookie) (ports.StatusResult, error) {
	if g.CheckStatusFunc != nil {
		return g.CheckStatusFunc(ctx, upstream)
	}
	return ports.StatusResult{LoggedIn: false, Upstream: upstream}, nil
}

func (g *FuncGateway) Login(ctx context.Context, creds ports.Credentials, upstream []domainauth.UpstreamCookie) (ports.LoginResult, error) {
	if g.LoginFunc != nil {
		return g.LoginFunc(ctx, creds, upstream)
	}
	return ports.LoginResult{
		Identity: domainauth.Identity{UserID: "test-user-1", Name: "Test User", Email: creds.Email, Role: domainauth.RoleUser},
		Upstream: upstream,
	}, nil
}

func (g *FuncGateway) Signup(ctx context.Context, req ports.SignupRequest, upstream []domainauth.UpstreamCookie) (ports.CallResult, error) {
	if g.SignupFunc != nil {
		return g.SignupFunc(ctx, req, upstream)
	}
	return ports.CallResult{Message: "Account created.", Upstream: upstream}, nil
}

func (g *FuncGateway) Logout(ctx context.Context, upstream []domainauth.UpstreamCookie) (ports.CallResult, error) {
	if g.LogoutFunc != nil {
		return g.LogoutFunc(ctx, upstream)
	}
	return ports.CallResult{Upstream: nil}, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// ErrSessionNotFound is returned by Get for unknown session IDs.
var ErrSessionNotFound = ports.ErrSessionNotFound

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryAdminGateStore is an in-memory admin grant store for unit tests.
type MemoryAdminGateStore struct {
	mu     sync.Mutex
	grants map[string]domainauth.AdminGrant
}

// ErrGrantNotFound is returned by GetGrant for unknown tokens.
var ErrGrantNotFound = ports.ErrGrantNotFound

// NewMemoryAdminGateStore creates a new in-memory grant store.
func NewMemoryAdminGateStore() *MemoryAdminGateStore {
	return &MemoryAdminGateStore{grants: make(map[string]domainauth.AdminGrant)}
}

func (m *MemoryAdminGateStore) CreateGrant(_ context.Context, grant domainauth.AdminGrant) error {
	if grant.Token == "" {
		return errors.New("grant token cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.grants[grant.Token]; ok {
		return errors.New("grant already exists")
	}
	m.grants[grant.Token] = grant
	return nil
}

func (m *MemoryAdminGateStore) GetGrant(_ context.Context, token string) (domainauth.AdminGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	grant, ok := m.grants[token]
	if !ok {
		return domainauth.AdminGrant{}, ErrGrantNotFound
	}
	return grant, nil
}

func (m *MemoryAdminGateStore) DeleteGrant(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.grants, token)
	return nil
}

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (ports.ProviderIdentity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser ports.ProviderIdentity

	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: ports.ProviderIdentity{
			UserID: "mock-staff-1",
			Name:   "Mock Staff",
			Email:  "mock.staff@example.com",
			Groups: []string{"mechanics"},
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}

	state := fmt.Sprintf("%s-%d", m.StatePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", m.NoncePrefix, m.callCount)

	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.ProviderIdentity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	user := m.DefaultUser
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}
