package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/notify"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/repository"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingSink captures enqueued notifications synchronously.
type recordingSink struct {
	mu            sync.Mutex
	notifications []notify.Notification
}

func (s *recordingSink) Enqueue(n notify.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

func (s *recordingSink) countByTemplate(templateID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.TemplateID == templateID {
			count++
		}
	}
	return count
}

func (s *recordingSink) recipientsOf(templateID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var recipients []string
	for _, n := range s.notifications {
		if n.TemplateID == templateID {
			recipients = append(recipients, n.Recipient)
		}
	}
	return recipients
}

type testEnv struct {
	accounts *AccountService
	resets   *PasswordResetService
	users    repository.UserRepository
	tokens   repository.ConfirmationTokenRepository
	resetTok repository.PasswordResetRepository
	sink     *recordingSink
	clock    *fakeClock
}

func newTestEnv() *testEnv {
	cfg := config.LifecycleConfig{
		BaseURL:              "http://localhost:8080",
		ConfirmationTTLHours: 72,
		ResetTTLMinutes:      30,
		BcryptCost:           4,
		DefaultFederalState:  "Brandenburg",
		SweepIntervalMinutes: 60,
	}

	users := repository.NewMemoryUserRepository()
	tokens := repository.NewMemoryConfirmationTokenRepository()
	resetTokens := repository.NewMemoryPasswordResetRepository()
	sink := &recordingSink{}
	clock := newFakeClock()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	accounts := NewAccountService(cfg, AccountDependencies{
		UserRepo:  users,
		TokenRepo: tokens,
		Sink:      sink,
		Metrics:   metrics,
		Logger:    logger,
		Now:       clock.Now,
	})
	resets := NewPasswordResetService(cfg, ResetDependencies{
		UserRepo:  users,
		ResetRepo: resetTokens,
		Sink:      sink,
		Metrics:   metrics,
		Logger:    logger,
		Now:       clock.Now,
	})

	return &testEnv{
		accounts: accounts,
		resets:   resets,
		users:    users,
		tokens:   tokens,
		resetTok: resetTokens,
		sink:     sink,
		clock:    clock,
	}
}
