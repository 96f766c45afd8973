package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the authentication routes.
// Only /auth/me requires a verified access token.
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware func(next http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		// POST /api/v1/auth/register - Create a new account
		r.Post("/register", handler.Register)

		// POST /api/v1/auth/login - Authenticate and issue a token pair
		r.Post("/login", handler.Login)

		// POST /api/v1/auth/refresh - Rotate a refresh token
		r.Post("/refresh", handler.Refresh)

		// POST /api/v1/auth/forgot-password - Start a password reset
		r.Post("/forgot-password", handler.ForgotPassword)

		// POST /api/v1/auth/reset-password - Apply a password reset
		r.Post("/reset-password", handler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			// GET /api/v1/auth/me - Current account profile
			r.Get("/me", handler.Me)
		})
	})
}
