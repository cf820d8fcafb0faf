package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIConfig_Sanitize(t *testing.T) {
	cfg := APIConfig{
		BaseURL:  "  https://api.carhub.example.com/api/  ",
		Timeout:  0,
		UserExpr: "  ",
	}

	cfg.Sanitize()

	assert.Equal(t, "https://api.carhub.example.com/api", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "user", cfg.UserExpr)
}

func TestAuthConfig_Sanitize_Defaults(t *testing.T) {
	cfg := AuthConfig{}

	cfg.Sanitize()

	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, SSOModeDisabled, cfg.SSOMode)
}

func TestHTTPConfig_Sanitize_ClampsCompressionLevel(t *testing.T) {
	tests := []struct {
		name  string
		level int
		want  int
	}{
		{name: "below range", level: 0, want: 1},
		{name: "above range", level: 42, want: 9},
		{name: "in range", level: 6, want: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := HTTPConfig{CompressionLevel: tt.level}
			cfg.Sanitize()
			assert.Equal(t, tt.want, cfg.CompressionLevel)
		})
	}
}

func TestSSOMode_UnmarshalText(t *testing.T) {
	var m SSOMode
	require.NoError(t, m.UnmarshalText([]byte("OIDC")))
	assert.Equal(t, SSOModeOIDC, m)

	require.NoError(t, m.UnmarshalText([]byte("mock")))
	assert.Equal(t, SSOModeMock, m)

	err := m.UnmarshalText([]byte("saml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SSOMode")
}
