package gate

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gesturequiz/gesturequiz/internal/httperr"
)

// APIKeyHeader is the pre-shared key header checked for requests that do
// not originate from an allow-listed frontend.
const APIKeyHeader = "X-API-Key"

// Authenticate passes requests whose Origin or Referer matches the
// allow-list and requires a valid API key from everyone else.
func Authenticate(allowedOrigins []string, apiSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fromAllowedOrigin(allowedOrigins, r) {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				httperr.Respond(w, r, logger, httperr.Unauthorized("Authentication required"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiSecret)) != 1 {
				httperr.Respond(w, r, logger, httperr.Forbidden("Invalid API key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// fromAllowedOrigin reports whether the request carries an allow-listed
// Origin (exact match) or Referer (prefix match).
func fromAllowedOrigin(allowed []string, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	referer := r.Header.Get("Referer")
	for _, o := range allowed {
		if origin != "" && origin == o {
			return true
		}
		if referer != "" && strings.HasPrefix(referer, o) {
			return true
		}
	}
	return false
}
