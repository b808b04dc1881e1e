// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"net/http"
	"time"

	taskssvc "github.com/dalemusser/studyhub/internal/app/tasks"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/errs"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/app/system/webjson"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the personal task API.
type Handler struct {
	Tasks *taskssvc.Service
	Log   *zap.Logger
}

// NewHandler constructs a tasks Handler.
func NewHandler(svc *taskssvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Tasks: svc, Log: logger}
}

// createRequest is the JSON body for POST /api/tasks.
type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CourseCode  string `json:"course_code"`
	DueDate     string `json:"due_date"` // RFC 3339 or YYYY-MM-DD
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// ServeList handles GET /api/tasks.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Tasks.List(ctx, user.ID)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, list)
}

// ServeCreate handles POST /api/tasks.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	var req createRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	due, err := parseDate(req.DueDate)
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, err := h.Tasks.Create(ctx, user.ID, taskssvc.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		CourseCode:  req.CourseCode,
		DueDate:     due,
		Priority:    req.Priority,
		Status:      req.Status,
	})
	if err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusCreated, task)
}

// ServeUpdateStatus handles PATCH /api/tasks/{taskID}/status.
func (h *Handler) ServeUpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	taskID := chi.URLParam(r, "taskID")

	var req struct {
		Status string `json:"status"`
	}
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Tasks.UpdateStatus(ctx, user.ID, taskID, req.Status); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": req.Status})
}

// ServeDelete handles DELETE /api/tasks/{taskID}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	taskID := chi.URLParam(r, "taskID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Tasks.Delete(ctx, user.ID, taskID); err != nil {
		webjson.Error(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseDate accepts RFC 3339 timestamps or bare dates; the latter come from
// date pickers that carry no time component.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errs.NewValidation("due date is required", errs.FieldError{Field: "due_date", Msg: "must not be empty"})
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, errs.NewValidation("unparseable due date", errs.FieldError{Field: "due_date", Msg: s})
}
