package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gesturequiz/gesturequiz/internal/gate"
	"github.com/gesturequiz/gesturequiz/internal/httperr"
	"github.com/gesturequiz/gesturequiz/internal/server/handlers"
)

func (s *Server) registerRoutes(deps Deps) {
	// Health sits outside the gate: probes carry no origin or key and
	// must not consume the caller's rate budget.
	s.router.Get("/health", s.handle(deps.Health.Handle))

	s.router.Route("/api", func(api chi.Router) {
		api.Use(gate.SecurityHeaders(deps.Security.AllowedOrigins))
		api.Use(gate.RateLimit(deps.Limiter, deps.Logger))
		api.Use(gate.Authenticate(deps.Security.AllowedOrigins, deps.Security.APISecret, deps.Logger))

		api.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusMethodNotAllowed)
			_, _ = w.Write([]byte(`{"error":"Method not allowed"}`))
		})

		api.Post("/database/get-questions", s.handle(deps.Questions.GetQuestions))
		api.Post("/database/save-quiz", s.handle(deps.Questions.SaveQuiz))

		api.Post("/openai/chat", s.handle(deps.GenAI.Chat))
		api.Post("/images", s.handle(deps.GenAI.GenerateImage))

		api.Post("/storage/upload", s.handle(deps.Storage.Upload))
		api.Post("/storage/get-signed-url", s.handle(deps.Storage.GetSignedURL))
		api.Get("/storage/proxy-image", s.handle(deps.Storage.ProxyImage))
	})
}

// handle adapts an error-returning handler: any error is normalized to a
// client-safe response at this boundary, so nothing escapes unformatted.
func (s *Server) handle(fn handlers.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			httperr.Respond(w, r, s.logger, err)
		}
	}
}
