package middleware

import (
	"context"
	"log"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Drivakos/survey-feedback-api/internal/interfaces/http/common"
)

// CounterStore is the atomic fixed-window counter behind the limiter. Incr
// must bump the counter for the current window in one step and return the new
// count plus the remaining window duration; separate read-then-write
// implementations are not acceptable here.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
}

// KeyFunc derives the rate-limit identity from a request.
type KeyFunc func(r *http.Request) string

// RateLimitOptions configures the admission middleware.
type RateLimitOptions struct {
	Store  CounterStore
	Limit  int64
	Window time.Duration
	KeyFn  KeyFunc
	Logger *log.Logger
}

// ClientIP strips the port from RemoteAddr. chi's RealIP middleware runs
// earlier in the chain and has already resolved X-Forwarded-For / X-Real-IP
// into RemoteAddr.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	if addr != "" {
		return addr
	}
	return "unknown"
}

// RateLimit gates every request by client address with a fixed 60s-style
// window. Each response carries the X-RateLimit header triple; a rejection is
// a 429 with Retry-After and a retry_after body field. A failing counter
// store admits the request: the limiter must not become an outage vector.
func RateLimit(opts RateLimitOptions) func(next http.Handler) http.Handler {
	if opts.Limit <= 0 {
		opts.Limit = 60
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.KeyFn == nil {
		opts.KeyFn = ClientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			count, remaining, err := opts.Store.Incr(r.Context(), key, opts.Window)
			if err != nil {
				if opts.Logger != nil {
					opts.Logger.Printf("レート制限カウンタの更新に失敗、リクエストを許可します key=%q: %v", key, err)
				}
				setRateHeaders(w, opts.Limit, opts.Limit-1, time.Now().Add(opts.Window))
				next.ServeHTTP(w, r)
				return
			}

			resetAt := time.Now().Add(remaining)
			left := opts.Limit - count
			if left < 0 {
				left = 0
			}
			setRateHeaders(w, opts.Limit, left, resetAt)

			if count > opts.Limit {
				retryAfter := int64(math.Ceil(remaining.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				common.WriteJSON(opts.Logger, w, http.StatusTooManyRequests, common.Envelope{
					Status:     common.StatusError,
					Message:    "Too many requests. Please try again later.",
					RetryAfter: &retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setRateHeaders(w http.ResponseWriter, limit, remaining int64, resetAt time.Time) {
	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}
