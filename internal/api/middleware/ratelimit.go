package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"loan-origination/internal/config"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const rateLimitKeyPrefix = "loan-origination:ratelimit:"

// RateLimiterMiddleware limits requests per client IP. With a Redis client it
// counts requests in a shared fixed window so every replica sees the same
// budget; without one, or when Redis fails, it uses an in-process token bucket.
type RateLimiterMiddleware struct {
	redisClient *redis.Client
	limiters    sync.Map
	cfg         config.RateLimitConfig
	logger      *slog.Logger
	window      time.Duration
}

func NewRateLimiterMiddleware(cfg config.RateLimitConfig, redisClient *redis.Client, logger *slog.Logger) *RateLimiterMiddleware {
	logger = logger.With("component", "RateLimiter")

	switch {
	case !cfg.Enabled:
		logger.Info("Rate limiting is disabled via configuration.")
	case redisClient == nil:
		logger.Info("Rate limiter using in-process limiter", "rps", cfg.RPS, "burst", cfg.Burst)
	default:
		logger.Info("Rate limiter using Redis fixed window", "rps", cfg.RPS, "window", time.Second)
	}

	rl := &RateLimiterMiddleware{
		redisClient: redisClient,
		cfg:         cfg,
		logger:      logger,
		window:      time.Second,
	}
	if cfg.Enabled {
		go rl.cleanupLimiters()
	}
	return rl
}

func (rl *RateLimiterMiddleware) IsEnabled() bool {
	return rl.cfg.Enabled
}

func (rl *RateLimiterMiddleware) UsesRedis() bool {
	return rl.redisClient != nil
}

func (rl *RateLimiterMiddleware) limit() int64 {
	if l := int64(rl.cfg.RPS); l > 0 {
		return l
	}
	return 1
}

func (rl *RateLimiterMiddleware) getLimiter(ip string) *rate.Limiter {
	limiter, _ := rl.limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst))
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiterMiddleware) cleanupLimiters() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.limiters.Range(func(key, value interface{}) bool {
			limiter := value.(*rate.Limiter)
			if limiter.Tokens() >= float64(limiter.Burst()) {
				rl.limiters.Delete(key)
			}
			return true
		})
	}
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); xRealIP != "" && net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
		return parsed.String()
	}
	return r.RemoteAddr
}

// allowRedis increments the caller's counter for the current window. The key
// expiry is set only when the key has none so the window does not slide.
func (rl *RateLimiterMiddleware) allowRedis(ctx context.Context, ip string) (bool, int64, error) {
	key := rateLimitKeyPrefix + ip

	pipe := rl.redisClient.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	if ttl := ttlCmd.Val(); ttl == -1 || ttl == -2 {
		if err := rl.redisClient.Expire(ctx, key, rl.window).Err(); err != nil {
			rl.logger.ErrorContext(ctx, "Failed to set rate limit key expiry", "error", err, "key", key)
		}
	}

	count := incrCmd.Val()
	return count <= rl.limit(), count, nil
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.IsEnabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)

		allowed := false
		if rl.UsesRedis() {
			ok, count, err := rl.allowRedis(r.Context(), ip)
			if err != nil {
				rl.logger.ErrorContext(r.Context(), "Redis rate limit check failed, using in-process limiter", "error", err, "ip", ip)
				allowed = rl.getLimiter(ip).Allow()
			} else {
				allowed = ok
				if !ok {
					rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip, "count", count, "limit", rl.limit())
				}
			}
		} else {
			allowed = rl.getLimiter(ip).Allow()
			if !allowed {
				rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip)
			}
		}

		if !allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
