package httpx

import (
	"context"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// adminGateKey marks a request that passed the admin gate check.
type adminGateKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session from context and a boolean indicating presence.
func GetSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// IdentityFromContext returns the authenticated identity, or nil for an
// anonymous or unknown session.
func IdentityFromContext(ctx context.Context) *domainauth.Identity {
	if session, ok := GetSessionFromContext(ctx); ok {
		return session.Identity
	}
	return nil
}

// SetAdminGateInContext marks the context as having passed the admin gate.
func SetAdminGateInContext(ctx context.Context, unlocked bool) context.Context {
	return context.WithValue(ctx, adminGateKey{}, unlocked)
}

// AdminGateUnlocked reports whether the request passed the admin gate check.
func AdminGateUnlocked(ctx context.Context) bool {
	unlocked, ok := ctx.Value(adminGateKey{}).(bool)
	return ok && unlocked
}
