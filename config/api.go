package config

import (
	"strings"
	"time"
)

// APIConfig contains configuration for the marketplace identity API the web
// client calls for authentication. Endpoint paths are fixed by the API
// contract; only the base URL and transport knobs are configurable.
type APIConfig struct {
	// BaseURL is the base URL of the marketplace API, e.g.
	// "https://api.carhub.example.com/api".
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3001/api"`

	// Timeout is the transport-level timeout for a single upstream call.
	// There is no retry; a timed-out call is a plain failure.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// UserExpr is the JMESPath expression that locates the user record inside
	// a success payload. Payload reshaping upstream becomes a config change
	// instead of a code change.
	UserExpr string `env:"USER_EXPR" envDefault:"user"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if a.Timeout <= 0 {
		a.Timeout = 15 * time.Second
	}
	if strings.TrimSpace(a.UserExpr) == "" {
		a.UserExpr = "user"
	}
}
