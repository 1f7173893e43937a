package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/account-service/internal/domain"
)

// ConfirmationTokenRepository manages dual-confirmation token persistence.
type ConfirmationTokenRepository interface {
	Create(ctx context.Context, token *domain.ConfirmationToken) error
	GetByToken(ctx context.Context, token string) (*domain.ConfirmationToken, error)
	// MarkUserConfirmed sets the user flag if it was still unset. It returns
	// the row as stored after the call and whether this call flipped the
	// flag. A false flip on an existing row means the call was an idempotent
	// repeat.
	MarkUserConfirmed(ctx context.Context, token string) (*domain.ConfirmationToken, bool, error)
	// MarkAdminConfirmed mirrors MarkUserConfirmed for the admin flag and
	// stamps the confirmation time on the first flip.
	MarkAdminConfirmed(ctx context.Context, token string, at time.Time) (*domain.ConfirmationToken, bool, error)
}

type confirmationTokenRepository struct {
	pool *pgxpool.Pool
}

// NewConfirmationTokenRepository constructs the repository.
func NewConfirmationTokenRepository(pool *pgxpool.Pool) ConfirmationTokenRepository {
	return &confirmationTokenRepository{pool: pool}
}

const confirmationColumns = `id, token, user_id, created_at, expires_at, user_confirmed, admin_confirmed, admin_confirmed_at`

func (r *confirmationTokenRepository) Create(ctx context.Context, token *domain.ConfirmationToken) error {
	const query = `
        INSERT INTO confirmation_tokens (token, user_id, created_at, expires_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		token.Token,
		token.UserID,
		token.CreatedAt,
		token.ExpiresAt,
	).Scan(&token.ID)
}

func (r *confirmationTokenRepository) GetByToken(ctx context.Context, tokenStr string) (*domain.ConfirmationToken, error) {
	const query = `SELECT ` + confirmationColumns + ` FROM confirmation_tokens WHERE token=$1`
	token, err := scanConfirmationToken(r.pool.QueryRow(ctx, query, tokenStr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return token, nil
}

func (r *confirmationTokenRepository) MarkUserConfirmed(ctx context.Context, tokenStr string) (*domain.ConfirmationToken, bool, error) {
	const query = `
        UPDATE confirmation_tokens SET user_confirmed=true
        WHERE token=$1 AND user_confirmed=false
        RETURNING ` + confirmationColumns

	token, err := scanConfirmationToken(r.pool.QueryRow(ctx, query, tokenStr))
	if err == nil {
		return token, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	// Zero rows: either the flag was already set or the token is unknown.
	token, err = r.GetByToken(ctx, tokenStr)
	if err != nil {
		return nil, false, err
	}
	return token, false, nil
}

func (r *confirmationTokenRepository) MarkAdminConfirmed(ctx context.Context, tokenStr string, at time.Time) (*domain.ConfirmationToken, bool, error) {
	const query = `
        UPDATE confirmation_tokens SET admin_confirmed=true, admin_confirmed_at=$2
        WHERE token=$1 AND admin_confirmed=false
        RETURNING ` + confirmationColumns

	token, err := scanConfirmationToken(r.pool.QueryRow(ctx, query, tokenStr, at))
	if err == nil {
		return token, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	token, err = r.GetByToken(ctx, tokenStr)
	if err != nil {
		return nil, false, err
	}
	return token, false, nil
}

func scanConfirmationToken(row pgx.Row) (*domain.ConfirmationToken, error) {
	var token domain.ConfirmationToken
	if err := row.Scan(
		&token.ID,
		&token.Token,
		&token.UserID,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.UserConfirmed,
		&token.AdminConfirmed,
		&token.AdminConfirmedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}
