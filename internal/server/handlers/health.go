package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is implemented by collaborators that can report liveness.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// Health aggregates collaborator health checks.
type Health struct {
	version  string
	checkers map[string]HealthChecker
}

// NewHealth returns a health handler reporting the given version.
func NewHealth(version string) *Health {
	return &Health{version: version, checkers: make(map[string]HealthChecker)}
}

// Register adds a named collaborator check.
func (h *Health) Register(name string, checker HealthChecker) {
	h.checkers[name] = checker
}

type healthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Handle reports aggregate health: 200 when every check passes, 503
// otherwise. Individual check results are included by name.
func (h *Health) Handle(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	overall := "healthy"
	checks := make(map[string]string, len(h.checkers))
	for name, checker := range h.checkers {
		if err := checker.CheckHealth(ctx); err != nil {
			checks[name] = "unhealthy"
			overall = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "healthy"
		}
	}

	return writeJSON(w, status, healthResponse{
		Status:    overall,
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
