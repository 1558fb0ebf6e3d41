package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/heka-app/heka-server-go/internal/audit"
	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/httputil"
	"github.com/heka-app/heka-server-go/internal/redis"
)

var rateLimitScript = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, 0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

local remaining = limit - count - 1
local resetAt = now + window

return {1, remaining, resetAt}
`)

// RateLimiter is a sliding-window counter over Redis. Redis outages fail
// open: a throttle must never take the API down with it.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (rl *RateLimiter) Check(ctx context.Context, scope, subject string, limit int, window time.Duration) (allowed bool, remaining int, resetAt int64) {
	now := time.Now().Unix()
	key := redis.RateLimitKey(scope, subject)

	result, err := rateLimitScript.Run(ctx, rl.client, []string{key}, now, int64(window.Seconds()), limit).Int64Slice()
	if err != nil {
		log.Warn().Err(err).Str("scope", scope).Msg("rate limit check failed, allowing request")
		return true, limit - 1, now + int64(window.Seconds())
	}

	if len(result) != 3 {
		log.Warn().Str("scope", scope).Msg("unexpected rate limit script result")
		return true, limit - 1, now + int64(window.Seconds())
	}

	return result[0] == 1, int(result[1]), result[2]
}

// SubjectFunc derives the throttling subject from the request: client IP for
// anonymous endpoints, user ID for authenticated ones.
type SubjectFunc func(r *http.Request) string

func SubjectIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

func SubjectUser(r *http.Request) string {
	if user := GetUser(r.Context()); user != nil {
		return user.ID
	}
	return SubjectIP(r)
}

// Limit builds a chi-compatible middleware enforcing limit requests per
// window for the given scope.
func (rl *RateLimiter) Limit(scope string, limit int, window time.Duration, subject SubjectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subj := subject(r)
			allowed, remaining, resetAt := rl.Check(r.Context(), scope, subj, limit, window)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

			if !allowed {
				audit.LogFromRequest(r, audit.Event{
					Type:    audit.EventRateLimitExceed,
					Details: map[string]interface{}{"scope": scope},
				})
				w.Header().Set("Retry-After", strconv.FormatInt(max(resetAt-time.Now().Unix(), 1), 10))
				httputil.WriteError(w, apperrors.RateLimitExceeded())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
