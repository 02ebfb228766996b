package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/m3dev4/essenz/internal/http/handler"
	"github.com/m3dev4/essenz/internal/http/middleware"
)

const maxBodyBytes = 10 << 20

type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Admin      *handler.AdminHandler
	Onboarding *handler.OnboardingHandler
	Category   *handler.CategoryHandler
	Health     *handler.HealthHandler
}

type Middleware struct {
	Auth        *middleware.Authenticator
	AuthLimiter func(http.Handler) http.Handler
	APILimiter  func(http.Handler) http.Handler
	CORSOrigins []string
	Log         *slog.Logger
}

// New assembles the full route tree. Auth endpoints sit behind the
// tighter limiter; everything under /api/v1 shares the general one.
func New(h Handlers, mw Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(mw.CORSOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))
	r.Use(middleware.RequestLogging(mw.Log))

	r.Get("/healthz", h.Health.Live)
	r.Get("/readyz", h.Health.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APILimiter)

		r.Route("/auth", func(r chi.Router) {
			r.Use(mw.AuthLimiter)
			r.Post("/register", h.Auth.Register)
			r.Post("/verify-email", h.Auth.VerifyEmail)
			r.Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
		})

		r.Get("/profile/username/{username}", h.User.PublicProfile)

		r.Group(func(r chi.Router) {
			r.Use(mw.Auth.Require)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/me", h.User.Me)
				r.Patch("/", h.User.UpdateProfile)
				r.Post("/password", h.User.ChangePassword)
				r.Delete("/", h.User.DeleteAccount)

				r.Get("/sessions", h.User.ListSessions)
				r.Delete("/sessions", h.User.CloseAllSessions)
				r.Delete("/sessions/{sessionID}", h.User.CloseSession)
			})

			r.Route("/onboarding", func(r chi.Router) {
				r.Post("/step-one", h.Onboarding.StepOne)
				r.Post("/step-two", h.Onboarding.StepTwo)
				r.Post("/step-three", h.Onboarding.StepThree)
				r.Post("/step-four", h.Onboarding.StepFour)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.Category.List)
				r.Get("/{categoryID}", h.Category.Get)

				// Mutations are reserved for admins; the catalog is
				// readable by any signed-in user.
				r.Group(func(r chi.Router) {
					r.Use(mw.Auth.RequireAdmin)
					r.Post("/", h.Category.Create)
					r.Put("/{categoryID}", h.Category.Update)
					r.Delete("/{categoryID}", h.Category.Delete)
				})
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.Auth.RequireAdmin)
			r.Get("/users", h.Admin.ListUsers)
			r.Get("/users/{userID}", h.Admin.GetUser)
			r.Patch("/users/{userID}/role", h.Admin.SetRole)
			r.Delete("/users/{userID}", h.Admin.DeleteUser)
		})
	})

	return otelhttp.NewHandler(r, "http.server")
}
