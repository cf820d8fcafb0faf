package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/carhub/carhub-web/config"
	"github.com/carhub/carhub-web/internal/adapters/marketplace"
	redisadapter "github.com/carhub/carhub-web/internal/adapters/redis"
	"github.com/carhub/carhub-web/internal/data"
	"github.com/carhub/carhub-web/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions *service.SessionService
	Gate     *service.AdminGateService
	SSO      *service.SSOService // nil when staff SSO is disabled
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildServices wires the marketplace gateway, the Redis session store, and
// the Postgres grant store into the application services.
func BuildServices(deps ServiceDeps) (ServiceContainer, error) {
	cfg := deps.Config

	gateway, err := marketplace.NewClient(marketplace.Config{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
		UserExpr: cfg.API.UserExpr,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create marketplace client: %w", err)
	}

	sessionStore := redisadapter.NewSessionStoreWithPrefix(deps.RedisClient, "session:")

	sessions := service.NewSessionService(service.SessionServiceOptions{
		Gateway:    gateway,
		Sessions:   sessionStore,
		SessionTTL: cfg.Auth.SessionTTL,
	})

	gate := service.NewAdminGateService(service.AdminGateServiceOptions{
		Grants:   data.NewAdminGateRepo(deps.DB),
		Email:    cfg.Auth.AdminGate.Email,
		Password: cfg.Auth.AdminGate.Password,
	})

	sso, err := buildSSOService(cfg.Auth, sessionStore, deps.Logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Sessions: sessions,
		Gate:     gate,
		SSO:      sso,
	}, nil
}
