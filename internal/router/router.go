package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"quizforge-backend/internal/handlers"
	"quizforge-backend/internal/middleware"
)

type Deps struct {
	JWTAuth        *middleware.JWTAuth
	Guard          *middleware.Guard
	AuthLimiter    *middleware.RateLimiter
	AuthHandler    *handlers.AuthHandler
	QuizHandler    *handlers.QuizHandler
	StudentHandler *handlers.StudentHandler
	// AdminEvents serves the admin websocket; nil disables the route.
	AdminEvents http.HandlerFunc
	FrontendURL string
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(d.FrontendURL))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(d.AuthLimiter.Middleware)
			r.Get("/google/login", d.AuthHandler.GoogleLoginRedirect)
			r.Get("/google/callback", d.AuthHandler.GoogleCallback)
			r.Post("/google", d.AuthHandler.GoogleTokenLogin)
			r.Post("/refresh", d.AuthHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(d.JWTAuth.Middleware)
				r.Post("/logout", d.AuthHandler.Logout)
				r.Get("/session", d.AuthHandler.Session)
			})
		})

		// ──── Student Profile Routes ────
		r.Route("/student", func(r chi.Router) {
			r.Use(d.JWTAuth.Middleware)
			r.Get("/", d.StudentHandler.Get)
			r.Post("/", d.StudentHandler.Save)
		})

		// ──── Admin Routes ────
		r.Route("/admin", func(r chi.Router) {
			r.Use(d.Guard.RequireAdmin)
			r.Get("/quizzes", d.QuizHandler.List)
			r.Post("/quizzes", d.QuizHandler.Create)
			r.Post("/quizzes/publish", d.QuizHandler.Publish)
			r.Get("/quizzes/{id}", d.QuizHandler.Get)
			r.Put("/quizzes/{id}", d.QuizHandler.Update)
			if d.AdminEvents != nil {
				r.Get("/ws", d.AdminEvents)
			}
		})
	})

	return r
}
