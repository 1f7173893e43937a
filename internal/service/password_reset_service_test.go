package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/notify"
)

func TestRequestResetUnknownIdentity(t *testing.T) {
	env := newTestEnv()

	token, err := env.resets.RequestReset(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, token)
	assert.Equal(t, 0, env.sink.countByTemplate(notify.TemplatePasswordReset))
}

func TestRequestResetMintsTokenAndMails(t *testing.T) {
	env := newTestEnv()
	user, _ := registerOperator(t, env, "alice", "p1")

	token, err := env.resets.RequestReset(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, token.UserID)
	assert.Equal(t, env.clock.Now().Add(30*time.Minute), token.ExpiresAt)
	assert.False(t, token.Confirmed)
	assert.Equal(t, []string{"alice@example.com"}, env.sink.recipientsOf(notify.TemplatePasswordReset))
}

func TestRequestResetSupersedesWithoutDeleting(t *testing.T) {
	env := newTestEnv()
	registerOperator(t, env, "alice", "p1")

	first, err := env.resets.RequestReset(context.Background(), "alice")
	require.NoError(t, err)
	second, err := env.resets.RequestReset(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// The earlier token stays live; only the presented string is checked.
	require.NoError(t, env.resets.CompleteReset(context.Background(), first.Token, "new1", "new1"))
}

func TestCompleteResetUnknownToken(t *testing.T) {
	env := newTestEnv()
	assert.ErrorIs(t, env.resets.CompleteReset(context.Background(), "no-such", "a", "a"), ErrTokenNotFound)
}

func TestCompleteResetPasswordMismatchNeverMutates(t *testing.T) {
	env := newTestEnv()
	user, _ := registerOperator(t, env, "alice", "p1")
	token, err := env.resets.RequestReset(context.Background(), "alice")
	require.NoError(t, err)

	err = env.resets.CompleteReset(context.Background(), token.Token, "new1", "new2")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	stored, err := env.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "p1"))

	// The token is untouched and still usable.
	require.NoError(t, env.resets.CompleteReset(context.Background(), token.Token, "new1", "new1"))
}

// Mismatch is checked before expiry: an expired token with mismatched
// passwords reports the mismatch.
func TestCompleteResetMismatchCheckedBeforeExpiry(t *testing.T) {
	env := newTestEnv()
	registerOperator(t, env, "alice", "p1")
	token, err := env.resets.RequestReset(context.Background(), "alice")
	require.NoError(t, err)

	env.clock.Advance(31 * time.Minute)

	err = env.resets.CompleteReset(context.Background(), token.Token, "new1", "new2")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestCompleteResetExpired(t *testing.T) {
	env := newTestEnv()
	user, _ := registerOperator(t, env, "alice", "p1")
	token, err := env.resets.RequestReset(context.Background(), "alice")
	require.NoError(t, err)

	env.clock.Advance(31 * time.Minute)

	err = env.resets.CompleteReset(context.Background(), token.Token, "new1", "new1")
	assert.ErrorIs(t, err, ErrTokenExpired)

	stored, err := env.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "p1"))
}

func TestCompleteResetConsumedTokenIsTerminal(t *testing.T) {
	env := newTestEnv()
	user, _ := registerOperator(t, env, "alice", "p1")
	token, err := env.resets.RequestReset(context.Background(), "alice")
	require.NoError(t, err)

	require.NoError(t, env.resets.CompleteReset(context.Background(), token.Token, "new1", "new1"))

	err = env.resets.CompleteReset(context.Background(), token.Token, "other", "other")
	assert.ErrorIs(t, err, ErrTokenConsumed)

	stored, err := env.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "new1"))
}

func TestCompleteResetSuccess(t *testing.T) {
	env := newTestEnv()
	user, _ := registerOperator(t, env, "alice", "p1")
	token, err := env.resets.RequestReset(context.Background(), "alice")
	require.NoError(t, err)

	require.NoError(t, env.resets.CompleteReset(context.Background(), token.Token, "new1", "new1"))

	stored, err := env.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "new1"))

	storedToken, err := env.resetTok.GetByToken(context.Background(), token.Token)
	require.NoError(t, err)
	assert.True(t, storedToken.Confirmed)
}

func TestSweepExpiredDeletesOnlyExpired(t *testing.T) {
	env := newTestEnv()
	registerOperator(t, env, "alice", "p1")
	registerOperator(t, env, "bob", "p2")

	expired, err := env.resets.RequestReset(context.Background(), "alice")
	require.NoError(t, err)
	env.clock.Advance(31 * time.Minute)
	live, err := env.resets.RequestReset(context.Background(), "bob")
	require.NoError(t, err)

	deleted, err := env.resets.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = env.resetTok.GetByToken(context.Background(), expired.Token)
	assert.Error(t, err)
	_, err = env.resetTok.GetByToken(context.Background(), live.Token)
	assert.NoError(t, err)
}
