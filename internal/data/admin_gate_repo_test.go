package data

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	"github.com/carhub/carhub-web/internal/testutil"
)

func TestAdminGateRepo_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := NewAdminGateRepo(db)
	ctx := context.Background()

	grant := domainauth.AdminGrant{
		Token:     uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.CreateGrant(ctx, grant))

	got, err := repo.GetGrant(ctx, grant.Token)
	require.NoError(t, err)
	assert.Equal(t, grant.Token, got.Token)
	assert.WithinDuration(t, grant.CreatedAt, got.CreatedAt, time.Second)
}

func TestAdminGateRepo_GetMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := NewAdminGateRepo(db)

	_, err := repo.GetGrant(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrGrantNotFound)
}

func TestAdminGateRepo_DuplicateToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := NewAdminGateRepo(db)
	ctx := context.Background()

	grant := domainauth.AdminGrant{Token: uuid.New().String(), CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.CreateGrant(ctx, grant))

	err := repo.CreateGrant(ctx, grant)
	assert.ErrorIs(t, err, ErrGrantExists)
}

func TestAdminGateRepo_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := NewAdminGateRepo(db)
	ctx := context.Background()

	grant := domainauth.AdminGrant{Token: uuid.New().String(), CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.CreateGrant(ctx, grant))

	require.NoError(t, repo.DeleteGrant(ctx, grant.Token))

	_, err := repo.GetGrant(ctx, grant.Token)
	assert.ErrorIs(t, err, ErrGrantNotFound)
}

// Grants survive reconnects; persistence is the point of backing the gate
// with Postgres instead of process memory.
func TestAdminGateRepo_GrantSurvivesNewConnection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	grant := domainauth.AdminGrant{Token: uuid.New().String(), CreatedAt: time.Now().UTC()}
	require.NoError(t, NewAdminGateRepo(db).CreateGrant(ctx, grant))
	require.NoError(t, db.Close())

	db2 := testutil.SetupTestDBNoCleanup(t)
	defer func() {
		testutil.CleanupTestDB(t, db2)
		_ = db2.Close()
	}()

	got, err := NewAdminGateRepo(db2).GetGrant(ctx, grant.Token)
	require.NoError(t, err)
	assert.Equal(t, grant.Token, got.Token)
}
