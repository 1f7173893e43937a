package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/account-service/internal/domain"
)

// In-memory implementations backing the DSN-less development mode and the
// service tests. Guarded-update semantics match the Postgres versions: the
// mutex makes each flip atomic, so concurrent confirmations observe exactly
// one flip.

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

// NewMemoryUserRepository returns an in-memory UserRepository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrDuplicate
		}
	}

	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) FindByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var users []*domain.User
	for _, user := range r.users {
		if user.HasRole(role) {
			users = append(users, cloneUser(user))
		}
	}
	return users, nil
}

func (r *memoryUserRepository) Enable(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return false, ErrNotFound
	}
	if user.Enabled {
		return false, nil
	}
	user.Enabled = true
	user.UpdatedAt = time.Now()
	return true, nil
}

func cloneUser(user *domain.User) *domain.User {
	clone := *user
	clone.Roles = append([]domain.Role(nil), user.Roles...)
	return &clone
}

type memoryConfirmationTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*domain.ConfirmationToken
}

// NewMemoryConfirmationTokenRepository returns an in-memory
// ConfirmationTokenRepository.
func NewMemoryConfirmationTokenRepository() ConfirmationTokenRepository {
	return &memoryConfirmationTokenRepository{tokens: make(map[string]*domain.ConfirmationToken)}
}

func (r *memoryConfirmationTokenRepository) Create(_ context.Context, token *domain.ConfirmationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token.Token]; ok {
		return ErrDuplicate
	}
	token.ID = uuid.NewString()
	r.tokens[token.Token] = cloneConfirmationToken(token)
	return nil
}

func (r *memoryConfirmationTokenRepository) GetByToken(_ context.Context, tokenStr string) (*domain.ConfirmationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneConfirmationToken(token), nil
}

func (r *memoryConfirmationTokenRepository) MarkUserConfirmed(_ context.Context, tokenStr string) (*domain.ConfirmationToken, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, false, ErrNotFound
	}
	flipped := !token.UserConfirmed
	token.UserConfirmed = true
	return cloneConfirmationToken(token), flipped, nil
}

func (r *memoryConfirmationTokenRepository) MarkAdminConfirmed(_ context.Context, tokenStr string, at time.Time) (*domain.ConfirmationToken, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, false, ErrNotFound
	}
	flipped := !token.AdminConfirmed
	if flipped {
		token.AdminConfirmed = true
		confirmedAt := at
		token.AdminConfirmedAt = &confirmedAt
	}
	return cloneConfirmationToken(token), flipped, nil
}

func cloneConfirmationToken(token *domain.ConfirmationToken) *domain.ConfirmationToken {
	clone := *token
	if token.AdminConfirmedAt != nil {
		at := *token.AdminConfirmedAt
		clone.AdminConfirmedAt = &at
	}
	return &clone
}

type memoryPasswordResetRepository struct {
	mu     sync.Mutex
	tokens map[string]*domain.PasswordResetToken
}

// NewMemoryPasswordResetRepository returns an in-memory
// PasswordResetRepository.
func NewMemoryPasswordResetRepository() PasswordResetRepository {
	return &memoryPasswordResetRepository{tokens: make(map[string]*domain.PasswordResetToken)}
}

func (r *memoryPasswordResetRepository) Create(_ context.Context, token *domain.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token.Token]; ok {
		return ErrDuplicate
	}
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.Token] = &clone
	return nil
}

func (r *memoryPasswordResetRepository) GetByToken(_ context.Context, tokenStr string) (*domain.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *token
	return &clone, nil
}

func (r *memoryPasswordResetRepository) GetLatestByUser(_ context.Context, userID string) (*domain.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *domain.PasswordResetToken
	for _, token := range r.tokens {
		if token.UserID != userID {
			continue
		}
		if latest == nil || token.CreatedAt.After(latest.CreatedAt) {
			latest = token
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

func (r *memoryPasswordResetRepository) MarkConfirmed(_ context.Context, tokenStr string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenStr]
	if !ok {
		return false, ErrNotFound
	}
	if token.Confirmed {
		return false, nil
	}
	token.Confirmed = true
	return true, nil
}

func (r *memoryPasswordResetRepository) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for key, token := range r.tokens {
		if token.ExpiresAt.Before(cutoff) {
			delete(r.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}
