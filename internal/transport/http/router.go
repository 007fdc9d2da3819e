package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"grid-quiz-service/internal/app"
)

// NewRouter wires the JSON API and the play websocket behind the
// shared middleware stack.
func NewRouter(quizzes *app.QuizService, play *app.PlayService) http.Handler {
	api := NewAPIHandler(quizzes)
	ws := NewPlayHandler(play)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(securityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api/quizzes", func(r chi.Router) {
		// Interactive authoring traffic; the websocket below stays
		// outside the timeout so long-lived play sessions survive.
		r.Use(middleware.Timeout(15 * time.Second))
		r.Post("/", api.Create)
		r.Get("/{quizID}", api.Get)
		r.Put("/{quizID}", api.Replace)
		r.Post("/{quizID}/clone", api.Clone)
		r.Delete("/{quizID}", api.Delete)
	})

	r.Get("/ws/play", ws.ServeWS)

	return r
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'self'")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
