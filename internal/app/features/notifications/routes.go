// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the notification API. All endpoints require
// a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/stream", h.ServeStream)
	r.Post("/read-all", h.ServeMarkAllRead)
	r.Post("/{notificationID}/read", h.ServeMarkRead)

	return r
}
