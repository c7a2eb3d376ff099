// Package service holds the business logic between handlers and
// repositories.
package service

import (
	"fmt"

	"github.com/deppfellow/guestbook/internal/config"
	"github.com/deppfellow/guestbook/internal/lib/hashid"
	"github.com/deppfellow/guestbook/internal/lib/job"
	"github.com/deppfellow/guestbook/internal/lib/ratelimit"
	"github.com/deppfellow/guestbook/internal/repository"
	"github.com/deppfellow/guestbook/internal/server"
)

type Services struct {
	Auth      *AuthService
	Guestbook *GuestbookService
	Job       *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)

	gb := s.Config.Guestbook
	codec, err := hashid.New(gb.HashidSalt, gb.HashidMinLength)
	if err != nil {
		return nil, err
	}

	limiter, err := newLimiter(s)
	if err != nil {
		return nil, err
	}

	var notifier ModerationNotifier
	if gb.NotifyOnModeration {
		notifier = s.Job
	}

	return &Services{
		Auth:      authService,
		Guestbook: NewGuestbookService(authService, limiter, codec, repos.Guestbook, notifier, s.Logger),
		Job:       s.Job,
	}, nil
}

func newLimiter(s *server.Server) (ratelimit.Limiter, error) {
	cfg := s.Config.Guestbook.RateLimit
	quota := ratelimit.Quota{Requests: cfg.Requests, Window: cfg.Window}

	switch cfg.Backend {
	case config.RateLimitBackendRedis:
		return ratelimit.NewRedisLimiter(s.Redis, quota, s.Logger), nil
	case config.RateLimitBackendMemory:
		return ratelimit.NewMemoryLimiter(quota), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}
}
