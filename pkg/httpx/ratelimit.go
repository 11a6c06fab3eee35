package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dougsimpsoncodes/myailandlord/pkg/ratelimit"
	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"
)

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes (e.g., IP address, user ID, client ID, etc.)
type KeyExtractor func(*http.Request) string

// ClientIPExtractor returns the client IP. X-Forwarded-For and X-Real-IP are
// only honoured when trustProxy is set; otherwise any caller could pick its
// own bucket by sending a header.
func ClientIPExtractor(trustProxy bool) KeyExtractor {
	return func(r *http.Request) string {
		if trustProxy {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
			if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
				return xri
			}
		}

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return ip
	}
}

// UserIDKeyExtractor extracts the user ID from the request context.
// Returns empty string if no user ID is found.
func UserIDKeyExtractor(r *http.Request) string {
	return UserIDFromContext(r.Context())
}

// RateLimitMiddleware gates the wrapped handler with limiter under
// operation. Denied calls get 429 with Retry-After; a limiter failure fails
// closed with 503.
func RateLimitMiddleware(limiter ratelimit.Limiter, operation string, keyExtractor KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			key := keyExtractor(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key", "operation", operation)
				WriteError(w, http.StatusBadRequest, "invalid_request", "caller identity unavailable")
				return
			}

			d, err := limiter.Allow(ctx, operation, key)
			if err != nil {
				log.Error("rate limit check failed", "operation", operation, "err", err)
				WriteUnavailable(w)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if err := d.Err(); err != nil {
				retryAfter := int(d.RetryAfter.Seconds())
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				log.Warn("rate limit exceeded",
					"operation", operation,
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
					"err", err,
				)

				WriteJSON(w, http.StatusTooManyRequests, RateLimitedResponse{
					Error:      "rate_limited",
					RetryAfter: retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitedResponse is the 429 body.
type RateLimitedResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after"`
}
