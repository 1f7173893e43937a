package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/account-service/internal/domain"
)

// PasswordResetRepository manages password reset token persistence.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	GetLatestByUser(ctx context.Context, userID string) (*domain.PasswordResetToken, error)
	// MarkConfirmed flips the confirmed flag and reports whether this call
	// performed the flip. A consumed token stays in storage as an audit
	// record; deletion happens only through DeleteExpiredBefore.
	MarkConfirmed(ctx context.Context, token string) (bool, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository constructs the repository.
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

const resetColumns = `id, token, user_id, expires_at, confirmed, created_at`

func (r *passwordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	const query = `
        INSERT INTO password_reset_tokens (token, user_id, expires_at)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		token.Token,
		token.UserID,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, tokenStr string) (*domain.PasswordResetToken, error) {
	const query = `SELECT ` + resetColumns + ` FROM password_reset_tokens WHERE token=$1`
	return r.getOne(ctx, query, tokenStr)
}

func (r *passwordResetRepository) GetLatestByUser(ctx context.Context, userID string) (*domain.PasswordResetToken, error) {
	const query = `
        SELECT ` + resetColumns + ` FROM password_reset_tokens
        WHERE user_id=$1 ORDER BY created_at DESC LIMIT 1`
	return r.getOne(ctx, query, userID)
}

func (r *passwordResetRepository) MarkConfirmed(ctx context.Context, tokenStr string) (bool, error) {
	const query = `
        UPDATE password_reset_tokens SET confirmed=true
        WHERE token=$1 AND confirmed=false`

	cmd, err := r.pool.Exec(ctx, query, tokenStr)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *passwordResetRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM password_reset_tokens WHERE expires_at < $1`

	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *passwordResetRepository) getOne(ctx context.Context, query string, arg any) (*domain.PasswordResetToken, error) {
	var token domain.PasswordResetToken
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&token.ID,
		&token.Token,
		&token.UserID,
		&token.ExpiresAt,
		&token.Confirmed,
		&token.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}
