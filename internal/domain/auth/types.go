package auth

// Package auth contains domain-level types for visitor sessions and identity.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents the marketplace role carried by a user record.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleUser     Role = "user"
	RoleMechanic Role = "mechanic"
	RoleAdmin    Role = "admin"
)

// Identity is the user record the marketplace API returns for an
// authenticated visitor. Adapters map the API payload into this shape.
type Identity struct {
	UserID    string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// UpstreamCookie is one cookie the marketplace API set for this browser
// session. The gateway replays these on every upstream call so the API can
// maintain its server-side session state.
type UpstreamCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Session is the per-browser record we persist. ID is an opaque session
// identifier carried in the local session cookie.
//
// Identity == nil means the visitor is anonymous; Checked reports whether the
// initial status check against the marketplace API has completed. A session
// with Checked == false is in the Unknown state and guards must not treat it
// as authenticated.
type Session struct {
	ID        string           `json:"id"`
	Identity  *Identity        `json:"identity,omitempty"`
	Checked   bool             `json:"checked"`
	Upstream  []UpstreamCookie `json:"upstream,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// IsAuthenticated reports whether the session carries a user record.
func (s Session) IsAuthenticated() bool { return s.Identity != nil }

// HasRole reports whether the session is authenticated with the given role.
// Role checks drive what the UI offers, never what is permitted; guards only
// ever check authentication presence or the separate admin gate.
func (s Session) HasRole(r Role) bool {
	return s.Identity != nil && s.Identity.Role == r
}

// AdminGrant is a persisted admin gate credential grant. It is unrelated to
// Session: the admin gate is a parallel credential path with no user record,
// no expiry, and no role hierarchy.
type AdminGrant struct {
	Token     string
	CreatedAt time.Time
}
