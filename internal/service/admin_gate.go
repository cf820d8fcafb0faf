package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	apperrors "github.com/carhub/carhub-web/internal/errors"
	"github.com/carhub/carhub-web/internal/ports"
)

// AdminGateServiceOptions groups dependencies for AdminGateService.
type AdminGateServiceOptions struct {
	Grants   ports.AdminGateStore
	Email    string
	Password string
}

// AdminGateService verifies the fixed admin gate credential pair and manages
// the persistent grants behind the admin area. The gate is a parallel
// credential path: it never touches the visitor's marketplace session, and a
// grant persists until it is explicitly revoked.
type AdminGateService struct {
	grants   ports.AdminGateStore
	email    string
	password string
}

// NewAdminGateService constructs a new AdminGateService.
func NewAdminGateService(opts AdminGateServiceOptions) *AdminGateService {
	return &AdminGateService{
		grants:   opts.Grants,
		email:    opts.Email,
		password: opts.Password,
	}
}

// Unlock checks the submitted pair against the configured credentials and,
// on a match, persists and returns a new grant. Comparison is exact and
// case-sensitive; no trimming, no normalization.
func (s *AdminGateService) Unlock(ctx context.Context, email, password string) (domainauth.AdminGrant, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !emailOK || !passOK {
		return domainauth.AdminGrant{}, apperrors.Unauthorized("Invalid admin credentials.")
	}

	grant := domainauth.AdminGrant{
		Token:     uuid.NewString(),
		CreatedAt: time.Now(),
	}
	if err := s.grants.CreateGrant(ctx, grant); err != nil {
		return domainauth.AdminGrant{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "admin gate store unavailable")
	}
	return grant, nil
}

// Verify reports whether the given token corresponds to a persisted grant.
// An unknown token is not an error, just a closed gate.
func (s *AdminGateService) Verify(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, err := s.grants.GetGrant(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrGrantNotFound) {
			return false, nil
		}
		return false, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "admin gate store unavailable")
	}
	return true, nil
}

// Revoke removes a grant. Revoking an unknown token is a no-op.
func (s *AdminGateService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.grants.DeleteGrant(ctx, token); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "admin gate store unavailable")
	}
	return nil
}
