// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/live"
	"github.com/dalemusser/studyhub/internal/app/notify"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/app/system/webjson"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the notification API: the capped list, the read-flag
// writes, and the SSE stream of live snapshots.
type Handler struct {
	Notify *notify.Service
	Live   *live.Manager
	Log    *zap.Logger
}

// NewHandler constructs a notifications Handler.
func NewHandler(svc *notify.Service, liveMgr *live.Manager, logger *zap.Logger) *Handler {
	return &Handler{Notify: svc, Live: liveMgr, Log: logger}
}

// listResponse is the JSON shape shared by the list endpoint and the stream.
type listResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

func toResponse(ns []models.Notification) listResponse {
	return listResponse{
		Notifications: notify.Recent(ns, 0),
		Unread:        notify.UnreadCount(ns),
	}
}

// ServeList handles GET /api/notifications.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ns, err := h.Notify.List(ctx, user.ID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, toResponse(ns))
}

// ServeMarkRead handles POST /api/notifications/{notificationID}/read.
func (h *Handler) ServeMarkRead(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	id := chi.URLParam(r, "notificationID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Notify.MarkRead(ctx, user.ID, id); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeMarkAllRead handles POST /api/notifications/read-all. The unread
// subset is computed server-side from the caller's current snapshot.
func (h *Handler) ServeMarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	ns, err := h.Notify.List(ctx, user.ID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	ids := notify.UnreadIDs(ns)
	if err := h.Notify.MarkAllRead(ctx, user.ID, ids); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, map[string]int{"marked": len(ids)})
}

// ServeStream handles GET /api/notifications/stream as Server-Sent Events.
// Each live snapshot becomes one `data:` event carrying the same JSON shape
// as the list endpoint. The subscription dies with the request context.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()

	// Snapshots arrive on the subscription's goroutine; the channel moves
	// them onto this one so only the handler writes the response.
	snapshots := make(chan []models.Notification, 8)
	cancel := h.Live.Notifications(ctx, user.ID, func(ns []models.Notification) {
		select {
		case snapshots <- ns:
		case <-ctx.Done():
		}
	})
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ns := <-snapshots:
			payload, err := json.Marshal(toResponse(ns))
			if err != nil {
				h.Log.Error("marshal notification snapshot", zap.Error(err))
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
