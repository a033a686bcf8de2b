// Package http provides HTTP routing and middleware configuration for
// the account authenticator service.
package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/k9mail/accountauth/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// account API. It applies JSON content-type enforcement and request
// logging and mounts the account endpoints under /api.
//
// Routes:
//
//	POST   /api/accounts                      → accountHandler.Create
//	GET    /api/accounts/uuid/{uuid}          → accountHandler.GetByUUID
//	GET    /api/accounts/name/{name}          → accountHandler.GetByName
//	DELETE /api/accounts/name/{name}          → accountHandler.Delete
//	PUT    /api/accounts/name/{name}/password → accountHandler.SetPassword
//	GET    /api/accounts/name/{name}/password → accountHandler.GetPassword
func NewRouter(accountHandler *AccountHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", accountHandler.Create)
			r.Get("/uuid/{uuid}", accountHandler.GetByUUID)
			r.Route("/name/{name}", func(r chi.Router) {
				r.Get("/", accountHandler.GetByName)
				r.Delete("/", accountHandler.Delete)
				r.Put("/password", accountHandler.SetPassword)
				r.Get("/password", accountHandler.GetPassword)
			})
		})
	})

	return r
}
