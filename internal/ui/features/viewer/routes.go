// Package viewer provides the telemetry table feature of the web UI.
package viewer

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/horizon/internal/session"
	"github.com/leapstack-labs/horizon/internal/theme"
)

// SetupRoutes registers the viewer routes.
func SetupRoutes(
	router chi.Router,
	manager *session.Manager,
	sessionStore sessions.Store,
	vars []theme.Var,
	isDev bool,
) error {
	handlers := NewHandlers(manager, sessionStore, vars, isDev)

	// Page routes
	router.Get("/", handlers.ViewerPage)
	router.Get("/updates", handlers.ViewerUpdates)

	// Data routes
	router.Get("/export.csv", handlers.ExportCSV)
	router.Post("/upload", handlers.Upload)

	// Interaction routes
	router.Get("/palette", handlers.PaletteSSE)
	router.Post("/actions/{action}", handlers.ActionSSE)

	return nil
}
