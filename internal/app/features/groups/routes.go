// internal/app/features/groups/routes.go
package groups

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the group API. Everything requires a
// signed-in user; group creation additionally requires the instructor role
// (the service re-checks against the stored profile).
//
// The posts router is mounted under /{groupID}/posts so the whole group
// surface hangs off one mount point. Pass nil to skip it.
func Routes(h *Handler, sm *auth.SessionManager, posts http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeListMine)
	r.Post("/join", h.ServeJoin)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleInstructor))
		pr.Post("/", h.ServeCreate)
	})

	r.Route("/{groupID}", func(gr chi.Router) {
		gr.Get("/", h.ServeGet)
		gr.Post("/leave", h.ServeLeave)
		gr.Get("/units", h.ServeListUnits)
		gr.Post("/units", h.ServeCreateUnit)
		gr.Patch("/units/{unitID}", h.ServeUpdateUnit)
		if posts != nil {
			gr.Mount("/posts", posts)
		}
	})

	return r
}
