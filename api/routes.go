package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers every endpoint. Reads are public, project mutations
// go through authMiddleware.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/", handlers.statusHandler.root())
	r.Get("/health", handlers.statusHandler.health())

	r.Post("/auth/login", handlers.authHandler.login())

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", handlers.projectHandler.getAllProjects())
		r.Get("/{projectID}", handlers.projectHandler.getProject())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Post("/", handlers.projectHandler.createProject())
			r.Patch("/{projectID}", handlers.projectHandler.updateProject())
			r.Put("/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/{projectID}", handlers.projectHandler.deleteProject())
		})
	})
}
