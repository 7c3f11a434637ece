package session

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"github.com/jobber-dev/jobber/internal/config"
	"github.com/jobber-dev/jobber/pkg/apperror"
)

const sweepInterval = time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginLimiter throttles login attempts per client IP. Entries idle for
// longer than a full bucket refill are evicted by Sweep.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

// NewLoginLimiter creates a limiter from AUTH_LOGIN_RATE_PER_MIN and
// AUTH_LOGIN_BURST. A non-positive rate disables throttling.
func NewLoginLimiter(cfg *config.Config) *LoginLimiter {
	l := &LoginLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Inf,
		burst:    cfg.Auth.LoginBurst,
		idle:     sweepInterval,
		now:      time.Now,
	}
	if l.burst <= 0 {
		l.burst = 1
	}
	if perMin := cfg.Auth.LoginRatePerMinute; perMin > 0 {
		every := time.Minute / time.Duration(perMin)
		l.limit = rate.Every(every)
		if refill := every * time.Duration(l.burst); refill > l.idle {
			l.idle = refill
		}
	}
	return l
}

// Allow reports whether ip may attempt a login now.
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Sweep drops limiters that have been idle long enough to be full again and
// returns how many were removed.
func (l *LoginLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idle)
	removed := 0
	for ip, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *LoginLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Middleware rejects throttled clients with 429.
func (l *LoginLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return apperror.ErrTooManyRequests.WithMessage("Too many login attempts")
			}
			return next(c)
		}
	}
}

// RegisterLimiterLifecycle runs Sweep periodically while the app is up.
func RegisterLimiterLifecycle(lc fx.Lifecycle, l *LoginLimiter) {
	done := make(chan struct{})
	stopped := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(stopped)
				ticker := time.NewTicker(sweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						l.Sweep()
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(done)
			select {
			case <-stopped:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
