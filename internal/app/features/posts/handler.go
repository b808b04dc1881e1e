// internal/app/features/posts/handler.go
package posts

import (
	"context"
	"net/http"
	"time"

	postssvc "github.com/dalemusser/studyhub/internal/app/posts"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/app/system/webjson"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves group posts: the feed and the announce operation.
type Handler struct {
	Posts *postssvc.Service
	Log   *zap.Logger
}

// NewHandler constructs a posts Handler.
func NewHandler(svc *postssvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Posts: svc, Log: logger}
}

// announceRequest is the JSON body for POST /api/groups/{groupID}/posts.
type announceRequest struct {
	Content  string `json:"content"`
	Category string `json:"category"`
	UnitID   string `json:"unit_id"`

	EventDate    *time.Time `json:"event_date,omitempty"`
	OriginalDate *time.Time `json:"original_date,omitempty"`
	NewDate      *time.Time `json:"new_date,omitempty"`
}

// announceResponse reports the persisted post plus the fan-out outcome, so
// the client can tell a clean announcement from a partially-delivered one.
type announceResponse struct {
	Post     models.Post `json:"post"`
	Notified []string    `json:"notified"`
	Failed   []string    `json:"failed,omitempty"`
}

// ServeAnnounce handles POST /api/groups/{groupID}/posts.
func (h *Handler) ServeAnnounce(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	groupID := chi.URLParam(r, "groupID")

	var req announceRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	post, report, err := h.Posts.Announce(ctx, postssvc.CreateInput{
		GroupID:      groupID,
		AuthorID:     user.ID,
		AuthorName:   user.Name,
		Content:      req.Content,
		Category:     req.Category,
		UnitID:       req.UnitID,
		EventDate:    req.EventDate,
		OriginalDate: req.OriginalDate,
		NewDate:      req.NewDate,
	})
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	resp := announceResponse{Post: post, Notified: report.Notified}
	for _, f := range report.Failed {
		resp.Failed = append(resp.Failed, f.RecipientID)
	}
	webjson.Write(w, http.StatusCreated, resp)
}

// ServeList handles GET /api/groups/{groupID}/posts.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Posts.ListGroup(ctx, groupID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, list)
}
