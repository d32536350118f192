package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/metrics"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"golang.org/x/time/rate"
)

// DefaultCleanupInterval is how often idle limiters are swept.
const DefaultCleanupInterval = 5 * time.Minute

// RateLimiterConfig configures per-user request limits.
type RateLimiterConfig struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

// userLimiter pairs a user's limiter with the time it was last used.
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter applies a token bucket per authenticated user.
type RateLimiter struct {
	config   RateLimiterConfig
	recorder metrics.Recorder

	mu       sync.RWMutex
	limiters map[string]*userLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a RateLimiter and starts its cleanup goroutine.
// Call Stop to release it.
func NewRateLimiter(config RateLimiterConfig, recorder metrics.Recorder) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	rl := &RateLimiter{
		config:   config,
		recorder: recorder,
		limiters: make(map[string]*userLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware limits requests per user. It must run after authentication.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := shared.UserIDFromContext(r.Context())
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authorized")
			return
		}

		if !rl.limiterFor(userID.String()).Allow() {
			rl.recorder.RecordRateLimited()
			logger.FromContextOrDefault(r.Context(), nil).Warn("rate limit exceeded",
				"user_id", userID.String())

			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rl.config.Rate)))
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
				"Too many requests. Please try again later.", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LimiterCount returns the number of tracked users.
func (rl *RateLimiter) LimiterCount() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.RLock()
	ul, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		rl.mu.Lock()
		ul.lastAccess = time.Now()
		rl.mu.Unlock()
		return ul.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if ul, exists := rl.limiters[key]; exists {
		ul.lastAccess = time.Now()
		return ul.limiter
	}

	limiter := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	rl.limiters[key] = &userLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops limiters idle for more than twice the cleanup interval.
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.config.CleanupInterval * 2

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, ul := range rl.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
}

// retryAfterSeconds estimates how long until one token is refilled.
func retryAfterSeconds(r rate.Limit) int {
	if r <= 0 || r == rate.Inf {
		return 1
	}
	secs := int(math.Ceil(1.0 / float64(r)))
	if secs < 1 {
		secs = 1
	}
	return secs
}
