package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	"github.com/carhub/carhub-web/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	session := domainauth.Session{
		ID:      "test-session-1",
		Checked: true,
		Identity: &domainauth.Identity{
			UserID: "u-123",
			Name:   "Jo Driver",
			Email:  "jo@example.com",
			Role:   domainauth.RoleUser,
		},
		Upstream:  []domainauth.UpstreamCookie{{Name: "connect.sid", Value: "abc"}},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}

	// Save session
	err := store.Save(ctx, session)
	require.NoError(t, err)

	// Get session
	retrieved, err := store.Get(ctx, "test-session-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.True(t, retrieved.Checked)
	require.NotNil(t, retrieved.Identity)
	assert.Equal(t, "u-123", retrieved.Identity.UserID)
	assert.Equal(t, domainauth.RoleUser, retrieved.Identity.Role)
	require.Len(t, retrieved.Upstream, 1)
	assert.Equal(t, "connect.sid", retrieved.Upstream[0].Name)
	assert.WithinDuration(t, session.ExpiresAt, retrieved.ExpiresAt, time.Second)
}

func TestSessionStore_AnonymousSessionRoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	session := domainauth.Session{
		ID:        "test-session-anon",
		Checked:   true,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}

	require.NoError(t, store.Save(ctx, session))

	retrieved, err := store.Get(ctx, "test-session-anon")
	require.NoError(t, err)
	assert.Nil(t, retrieved.Identity)
	assert.False(t, retrieved.IsAuthenticated())
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	_, err := store.Get(ctx, "non-existent")
	assert.Equal(t, ErrNotFound, err)
}

func TestSessionStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	session := domainauth.Session{
		ID:        "test-session-delete",
		Checked:   true,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}

	require.NoError(t, store.Save(ctx, session))

	// Verify it exists
	_, err := store.Get(ctx, "test-session-delete")
	require.NoError(t, err)

	// Delete session
	err = store.Delete(ctx, "test-session-delete")
	require.NoError(t, err)

	// Verify it's gone
	_, err = store.Get(ctx, "test-session-delete")
	assert.Equal(t, ErrNotFound, err)
}

func TestSessionStore_TTLExpiration(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	session := domainauth.Session{
		ID:        "test-session-ttl",
		Checked:   true,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(100 * time.Millisecond),
	}

	require.NoError(t, store.Save(ctx, session))

	// Wait for expiration
	time.Sleep(200 * time.Millisecond)

	// Should be expired
	_, err := store.Get(ctx, "test-session-ttl")
	assert.Equal(t, ErrNotFound, err)
}

func TestSessionStore_SaveExpiredRejected(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	session := domainauth.Session{
		ID:        "test-session-expired",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	err := store.Save(context.Background(), session)
	require.Error(t, err)
}
