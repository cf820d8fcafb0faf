package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/carhub/carhub-web/internal/errors"
	mockauth "github.com/carhub/carhub-web/internal/mocks/auth"
)

func newAdminGateService() (*AdminGateService, *mockauth.MemoryAdminGateStore) {
	grants := mockauth.NewMemoryAdminGateStore()
	svc := NewAdminGateService(AdminGateServiceOptions{
		Grants:   grants,
		Email:    "admin@carhub.local",
		Password: "admin123",
	})
	return svc, grants
}

func TestUnlock_CorrectPair(t *testing.T) {
	svc, _ := newAdminGateService()
	ctx := context.Background()

	grant, err := svc.Unlock(ctx, "admin@carhub.local", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, grant.Token)

	ok, err := svc.Verify(ctx, grant.Token)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlock_RejectsWrongPair(t *testing.T) {
	svc, _ := newAdminGateService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@carhub.local", "admin124"},
		{"wrong email", "admin@carhub.com", "admin123"},
		{"case differs in email", "Admin@carhub.local", "admin123"},
		{"case differs in password", "admin@carhub.local", "Admin123"},
		{"leading whitespace", " admin@carhub.local", "admin123"},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Unlock(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, apperrors.IsUnauthorized(err))
		})
	}
}

func TestVerify_UnknownTokenIsClosedGate(t *testing.T) {
	svc, _ := newAdminGateService()

	ok, err := svc.Verify(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Verify(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevoke_RemovesGrant(t *testing.T) {
	svc, _ := newAdminGateService()
	ctx := context.Background()

	grant, err := svc.Unlock(ctx, "admin@carhub.local", "admin123")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, grant.Token))

	ok, err := svc.Verify(ctx, grant.Token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevoke_UnknownTokenIsNoop(t *testing.T) {
	svc, _ := newAdminGateService()

	assert.NoError(t, svc.Revoke(context.Background(), "nope"))
	assert.NoError(t, svc.Revoke(context.Background(), ""))
}

func TestUnlock_GrantPersistsAcrossServiceInstances(t *testing.T) {
	grants := mockauth.NewMemoryAdminGateStore()
	ctx := context.Background()

	first := NewAdminGateService(AdminGateServiceOptions{Grants: grants, Email: "a@b", Password: "p"})
	grant, err := first.Unlock(ctx, "a@b", "p")
	require.NoError(t, err)

	second := NewAdminGateService(AdminGateServiceOptions{Grants: grants, Email: "a@b", Password: "p"})
	ok, err := second.Verify(ctx, grant.Token)
	require.NoError(t, err)
	assert.True(t, ok)
}
