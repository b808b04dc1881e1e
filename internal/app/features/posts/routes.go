// internal/app/features/posts/routes.go
package posts

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the post endpoints. It is mounted under
// /api/groups/{groupID}/posts so the group ID arrives as a URL parameter.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.ServeAnnounce)

	return r
}
