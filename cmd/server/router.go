package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/AllexanderGM/feeling-sub000/internal/api"
	apimiddleware "github.com/AllexanderGM/feeling-sub000/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. The authorization pipeline wraps every route in a fixed
// order: rate limit, authenticate, ownership. Route classification inside
// the pipeline decides which stages apply to which paths.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Standard middleware ahead of the pipeline.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	// The full authorization pipeline. Public and exempt routes pass through
	// it untouched; keeping it global means no route can be mounted outside
	// the security chain by accident.
	r.Use(app.pipeline.Middlewares()...)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.tokenStore,
		app.jwtService,
		app.passwords,
		app.passwords,
		app.userCache,
	)
	userHandler := api.NewUserHandler(
		app.userStore,
		app.tokenStore,
		app.passwords,
		app.userCache,
	)
	bookingHandler := api.NewBookingHandler(app.bookingStore)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public, AUTH-bucket rate limited)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)
		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/google", authHandler.OAuthEntry)
		r.Post("/auth/facebook", authHandler.OAuthEntry)

		// User endpoints
		r.Get("/users/me", userHandler.GetProfile)
		r.Post("/users/complete-profile", userHandler.CompleteProfile)
		r.Put("/users/{email}", userHandler.UpdateUser)
		r.Patch("/users/{email}", userHandler.UpdateUser)
		r.Delete("/users/{email}", userHandler.DeleteUser)

		// Booking endpoints
		r.Post("/bookings", bookingHandler.CreateBooking)
		r.Get("/bookings/{id}", bookingHandler.GetBooking)
		r.Put("/bookings/{id}", bookingHandler.UpdateBooking)
		r.Delete("/bookings/{id}", bookingHandler.DeleteBooking)

		// Admin endpoints (admin authority enforced by route classification)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/users/{email}/lock", userHandler.SetLocked(true))
			r.Post("/users/{email}/unlock", userHandler.SetLocked(false))
		})
	})

	// Health check and metrics bypass the rate limiter entirely.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
