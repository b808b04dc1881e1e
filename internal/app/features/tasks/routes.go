// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the task API. All endpoints require a
// signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Patch("/{taskID}/status", h.ServeUpdateStatus)
	r.Delete("/{taskID}", h.ServeDelete)

	return r
}
