package gate

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gesturequiz/gesturequiz/internal/httperr"
	"github.com/gesturequiz/gesturequiz/internal/ratelimit"
)

// RateLimit rejects clients that exceed the store's per-window budget with
// 429 and a retryAfter hint. A store failure fails open: throttling is a
// protection, not a correctness requirement.
func RateLimit(store ratelimit.Store, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := store.Take(r.Context(), ClientID(r))
			if err != nil {
				logger.Warn("rate limit store unavailable, allowing request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !decision.Allowed {
				httperr.Respond(w, r, logger, httperr.RateLimited(decision.RetryAfter))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientID identifies the caller for rate limiting: the first address in
// X-Forwarded-For, then the connection address, then "unknown".
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}
