package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/carhub/carhub-web/config"
	"github.com/carhub/carhub-web/internal/adapters/authroles"
	"github.com/carhub/carhub-web/internal/adapters/mocksso"
	"github.com/carhub/carhub-web/internal/adapters/oidc"
	redisadapter "github.com/carhub/carhub-web/internal/adapters/redis"
	"github.com/carhub/carhub-web/internal/ports"
	"github.com/carhub/carhub-web/internal/service"
)

// buildSSOService creates the staff SSO service for the configured mode.
// Returns nil when SSO is disabled; the router drops the SSO routes in that
// case.
func buildSSOService(
	cfg config.AuthConfig,
	sessions *redisadapter.SessionStore,
	logger *slog.Logger,
) (*service.SSOService, error) {
	roles := authroles.NewStaticRoleMapper(cfg.MechanicGroup, cfg.AdminGroup)

	var provider ports.AuthProvider
	switch cfg.SSOMode {
	case config.SSOModeOIDC:
		p, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Scope:        cfg.OIDC.Scope,
			DiscoveryURL: cfg.OIDC.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create OIDC provider: %w", err)
		}
		provider = p

	case config.SSOModeMock:
		if logger != nil {
			logger.Warn("staff SSO is in mock mode; do not use in production",
				"user_id", cfg.MockSSO.UserID,
			)
		}
		provider = mocksso.NewProvider(mocksso.ProviderConfig{
			UserID:     cfg.MockSSO.UserID,
			Name:       cfg.MockSSO.Name,
			Email:      cfg.MockSSO.Email,
			Groups:     cfg.MockSSO.Groups,
			SessionTTL: cfg.SessionTTL,
		})

	default:
		return nil, nil
	}

	return service.NewSSOService(service.SSOServiceOptions{
		Provider:   provider,
		Sessions:   sessions,
		Roles:      roles,
		SessionTTL: cfg.SessionTTL,
	}), nil
}
