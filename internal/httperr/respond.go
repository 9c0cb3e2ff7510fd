package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// errorResponse is the client-facing error body. It intentionally carries no
// stack traces or collaborator detail.
type errorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// Respond writes the client-safe response for err and logs server faults.
//
// Unknown error values are treated as internal faults: logged with full
// detail, surfaced as a generic 500. Rate-limit and auth rejections are
// expected per-request outcomes and are not logged as errors.
func Respond(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := &Error{}
	if !errors.As(err, &appErr) {
		appErr = Wrap(KindInternal, err, "Internal server error")
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError || appErr.Kind == KindTimeout {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	if appErr.Kind == KindRateLimited && appErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(appErr.RetryAfter))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:      appErr.Msg,
		RetryAfter: appErr.RetryAfter,
	})
}
