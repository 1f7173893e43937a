package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/domain"
)

func TestMemoryUserRepositoryDuplicateIdentity(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Username: "alice", Email: "a@example.com"}))

	err := repo.Create(ctx, &domain.User{Username: "alice", Email: "b@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = repo.Create(ctx, &domain.User{Username: "bob", Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryUserRepositoryEnableFlipsOnce(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user := &domain.User{Username: "alice", Email: "a@example.com"}
	require.NoError(t, repo.Create(ctx, user))

	var flips int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			flipped, err := repo.Enable(ctx, user.ID)
			mu.Lock()
			defer mu.Unlock()
			assert.NoError(t, err)
			if flipped {
				flips++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), flips)
	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.Enabled)
}

func TestMemoryConfirmationTokenGuardedFlips(t *testing.T) {
	repo := NewMemoryConfirmationTokenRepository()
	ctx := context.Background()
	now := time.Now()

	token := &domain.ConfirmationToken{
		Token:     "tok",
		UserID:    "u1",
		CreatedAt: now,
		ExpiresAt: now.Add(72 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, token))

	_, flipped, err := repo.MarkUserConfirmed(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, flipped)

	_, flipped, err = repo.MarkUserConfirmed(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, flipped)

	stamped, flipped, err := repo.MarkAdminConfirmed(ctx, "tok", now)
	require.NoError(t, err)
	assert.True(t, flipped)
	require.NotNil(t, stamped.AdminConfirmedAt)

	// A repeat must not re-stamp the confirmation time.
	later := now.Add(time.Hour)
	stamped, flipped, err = repo.MarkAdminConfirmed(ctx, "tok", later)
	require.NoError(t, err)
	assert.False(t, flipped)
	assert.Equal(t, now, *stamped.AdminConfirmedAt)
}

func TestMemoryPasswordResetGuardedConsume(t *testing.T) {
	repo := NewMemoryPasswordResetRepository()
	ctx := context.Background()

	token := &domain.PasswordResetToken{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, token))

	flipped, err := repo.MarkConfirmed(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = repo.MarkConfirmed(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, flipped)
}

func TestMemoryPasswordResetDeleteExpiredBefore(t *testing.T) {
	repo := NewMemoryPasswordResetRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.PasswordResetToken{Token: "old", UserID: "u1", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &domain.PasswordResetToken{Token: "live", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))

	deleted, err := repo.DeleteExpiredBefore(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByToken(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	latest, err := repo.GetLatestByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "live", latest.Token)
}
