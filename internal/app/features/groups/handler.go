// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"net/http"

	groupssvc "github.com/dalemusser/studyhub/internal/app/groups"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/app/system/webjson"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the group and unit API.
type Handler struct {
	Groups *groupssvc.Service
	Log    *zap.Logger
}

// NewHandler constructs a groups Handler.
func NewHandler(svc *groupssvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Groups: svc, Log: logger}
}

// ServeListMine handles GET /api/groups.
func (h *Handler) ServeListMine(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Groups.ListMine(ctx, user.ID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, list)
}

// ServeCreate handles POST /api/groups.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	var req struct {
		Name string `json:"name"`
	}
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, err := h.Groups.Create(ctx, user.ID, req.Name)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusCreated, group)
}

// ServeJoin handles POST /api/groups/join.
func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	var req struct {
		Code string `json:"code"`
	}
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, err := h.Groups.JoinByCode(ctx, user.ID, req.Code)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, group)
}

// ServeGet handles GET /api/groups/{groupID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	group, err := h.Groups.Get(ctx, groupID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, group)
}

// ServeLeave handles POST /api/groups/{groupID}/leave.
func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	groupID := chi.URLParam(r, "groupID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Groups.Leave(ctx, user.ID, groupID); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeListUnits handles GET /api/groups/{groupID}/units.
func (h *Handler) ServeListUnits(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Groups.ListUnits(ctx, groupID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, list)
}

// ServeCreateUnit handles POST /api/groups/{groupID}/units.
func (h *Handler) ServeCreateUnit(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	groupID := chi.URLParam(r, "groupID")

	var req struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	unit, err := h.Groups.CreateUnit(ctx, user.ID, groupID, req.Code, req.Name)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusCreated, unit)
}

// ServeUpdateUnit handles PATCH /api/groups/{groupID}/units/{unitID}.
func (h *Handler) ServeUpdateUnit(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	unitID := chi.URLParam(r, "unitID")

	var req struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Groups.UpdateUnit(ctx, user.ID, unitID, req.Code, req.Name); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
