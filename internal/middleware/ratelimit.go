package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix
}

// clientKey identifies the caller: the authenticated user when known, otherwise the remote IP
func clientKey(r *http.Request) string {
	if userID, ok := GetUserID(r.Context()); ok {
		return "user:" + userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfterSeconds rounds up so a client never sees Retry-After: 0
func retryAfterSeconds(d time.Duration) int {
	return max(int(math.Ceil(d.Seconds())), 1)
}

func rejectRateLimited(w http.ResponseWriter, limit int, retryAfter time.Duration) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(retryAfter).Unix(), 10))
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
	RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

// RateLimitMiddleware implements fixed window rate limiting using Redis.
// Redis errors let the request through.
func RateLimitMiddleware(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientKey(r)
			key := fmt.Sprintf("%s:%s", config.KeyPrefix, clientID)
			ctx := r.Context()

			count, err := redisClient.Incr(ctx, key).Result()
			if err != nil {
				logger.Error("Failed to increment rate limit counter",
					zap.Error(err),
					zap.String("key", key),
				)
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				redisClient.Expire(ctx, key, config.Window)
			}

			if count > int64(config.RequestsPerWindow) {
				ttl, err := redisClient.TTL(ctx, key).Result()
				if err != nil || ttl < 0 {
					ttl = config.Window
				}

				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)
				rejectRateLimited(w, config.RequestsPerWindow, ttl)
				return
			}

			remaining := config.RequestsPerWindow - int(count)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}

// MaxLocalClients bounds the number of buckets LocalRateLimiter keeps
const MaxLocalClients = 10000

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimiter keeps one token bucket per client in process memory.
// It is used when no Redis is configured. A bucket idle for a whole window
// is full again, so it is dropped on the next sweep.
type LocalRateLimiter struct {
	config     RateLimitConfig
	maxClients int
	mu         sync.Mutex
	visitors   map[string]*visitor
	lastSweep  time.Time
	now        func() time.Time
}

// NewLocalRateLimiter allows RequestsPerWindow requests per Window per client, as a burst
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	return &LocalRateLimiter{
		config:     config,
		maxClients: MaxLocalClients,
		visitors:   make(map[string]*visitor),
		now:        time.Now,
	}
}

// sweep must be called with mu held
func (l *LocalRateLimiter) sweep(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.config.Window {
			delete(l.visitors, key)
		}
	}
	l.lastSweep = now
}

// evictOldest must be called with mu held
func (l *LocalRateLimiter) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, v := range l.visitors {
		if oldestKey == "" || v.lastSeen.Before(oldest) {
			oldestKey, oldest = key, v.lastSeen
		}
	}
	delete(l.visitors, oldestKey)
}

func (l *LocalRateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.config.Window {
		l.sweep(now)
	}

	v, ok := l.visitors[key]
	if !ok {
		if len(l.visitors) >= l.maxClients {
			l.sweep(now)
			if len(l.visitors) >= l.maxClients {
				l.evictOldest()
			}
		}
		every := l.config.Window / time.Duration(max(l.config.RequestsPerWindow, 1))
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), l.config.RequestsPerWindow)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Clients reports how many client buckets are held
func (l *LocalRateLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Middleware returns the http middleware enforcing the limit
func (l *LocalRateLimiter) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientKey(r)
			now := l.now()
			limiter := l.limiter(clientID, now)

			reservation := limiter.ReserveN(now, 1)
			if delay := reservation.DelayFrom(now); delay > 0 {
				reservation.CancelAt(now)
				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int("limit", l.config.RequestsPerWindow),
				)
				rejectRateLimited(w, l.config.RequestsPerWindow, delay)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.TokensAt(now))))

			next.ServeHTTP(w, r)
		})
	}
}
