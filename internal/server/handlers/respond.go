// Package handlers implements the API endpoints behind the security gate.
// Handlers return errors; the server's adapter converts them to client-safe
// responses, so nothing here writes error bodies directly.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gesturequiz/gesturequiz/internal/httperr"
)

const maxBodyBytes = 1 << 20

// HandlerFunc is an endpoint that reports failures as errors instead of
// writing them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a bounded JSON body into dst. Any decode failure is a
// client input error.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return httperr.Wrap(httperr.KindInvalidInput, err, "Invalid request body")
	}
	if len(body) == 0 {
		return httperr.InvalidInput("Request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return httperr.Wrap(httperr.KindInvalidInput, err, "Invalid JSON body")
	}
	return nil
}

// mapUpstreamErr classifies transport failures talking to the generation
// API. Timeouts and connection errors are a temporary upstream condition,
// never a client fault.
func mapUpstreamErr(err error, msg string) error {
	appErr := &httperr.Error{}
	if errors.As(err, &appErr) {
		return err
	}
	return httperr.Wrap(httperr.KindUnavailable, err, msg)
}
