package config

import (
	"fmt"
	"strings"
	"time"
)

// SSOMode represents the staff SSO sign-in mode for the application.
type SSOMode string

const (
	// SSOModeOIDC uses OIDC/OAuth for staff sign-in.
	SSOModeOIDC SSOMode = "oidc"
	// SSOModeMock uses a config-driven identity (for development only).
	SSOModeMock SSOMode = "mock"
	// SSOModeDisabled turns the SSO sign-in path off entirely.
	SSOModeDisabled SSOMode = "disabled"
)

// UnmarshalText implements encoding.TextUnmarshaler for SSOMode.
func (m *SSOMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "mock", "disabled":
		*m = SSOMode(v)
		return nil
	default:
		return fmt.Errorf("invalid SSOMode: %q (valid options: oidc, mock, disabled)", v)
	}
}

// OIDCConfig contains OIDC/OAuth configuration for staff SSO.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"carhub-web"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/sso/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// MockSSOConfig controls the config-driven SSO identity.
// Used when AUTH_SSO_MODE=mock for development and testing.
type MockSSOConfig struct {
	UserID string   `env:"USER_ID" envDefault:"dev-mechanic"`
	Name   string   `env:"NAME"    envDefault:"Dev Mechanic"`
	Email  string   `env:"EMAIL"   envDefault:"dev@carhub.local"`
	Groups []string `env:"GROUPS"  envDefault:"mechanics"      envSeparator:";"`
}

// AdminGateConfig holds the fixed admin gate credential pair and cookie knobs.
// The pair is compared exactly and case-sensitively; there is no server-side
// identity behind it. This mirrors the behavior the product shipped with and
// is documented as unsuitable for real access control.
type AdminGateConfig struct {
	Email    string `env:"EMAIL"    envDefault:"admin@carhub.local"`
	Password string `env:"PASSWORD" envDefault:"admin123"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// SessionTTL is the lifetime of the local browser session record.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// SSOMode determines which staff SSO provider to use, if any.
	SSOMode SSOMode `env:"AUTH_SSO_MODE" envDefault:"disabled"`

	// OIDC configuration (used when SSOMode=oidc).
	OIDC OIDCConfig `envPrefix:"SSO_"`

	// MockSSO configuration (used when SSOMode=mock).
	MockSSO MockSSOConfig `envPrefix:"MOCK_SSO_"`

	// MechanicGroup is the IdP group mapped to the mechanic role.
	MechanicGroup string `env:"MECHANIC_GROUP" envDefault:"mechanics"`

	// AdminGroup is the IdP group mapped to the admin role.
	AdminGroup string `env:"ADMIN_GROUP" envDefault:"admins"`

	// AdminGate holds the fixed admin gate credential pair.
	AdminGate AdminGateConfig `envPrefix:"ADMIN_GATE_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = 24 * time.Hour
	}
	if a.SSOMode == "" {
		a.SSOMode = SSOModeDisabled
	}
}
