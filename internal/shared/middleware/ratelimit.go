package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"minhasfinancas/internal/shared/logging"
	"minhasfinancas/internal/shared/ratelimit"
)

// KeyFunc picks the rate limit key for a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests on the remote address. With trustProxy set the
// first X-Forwarded-For hop wins; clients control that header, so only
// enable it behind a proxy that overwrites it.
func ClientIP(trustProxy bool) KeyFunc {
	return func(r *http.Request) string {
		if trustProxy {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// RateLimit rejects requests with 429 once the key is over the limit.
// Limiter failures let the request through.
func RateLimit(l ratelimit.Limiter, key KeyFunc, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), key(r))
			if err != nil {
				log.Warn(r.Context(), "rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				w.Header().Set("Retry-After", retryAfterSeconds(l))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(l ratelimit.Limiter) string {
	secs := int(math.Ceil(l.RetryAfter().Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
