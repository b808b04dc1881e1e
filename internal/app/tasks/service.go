// internal/app/tasks/service.go

// Package tasks is the write coordinator for personal tasks. Tasks are
// owned by exactly one user; every mutation verifies ownership before
// touching the store.
package tasks

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/studyhub/internal/app/live"
	"github.com/dalemusser/studyhub/internal/app/store/docstore"
	"github.com/dalemusser/studyhub/internal/app/system/errs"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

// Service coordinates task writes against the document store.
type Service struct {
	store docstore.Store
	log   *zap.Logger
}

// NewService constructs a Service.
func NewService(store docstore.Store, logger *zap.Logger) *Service {
	return &Service{store: store, log: logger}
}

// CreateInput carries the caller-supplied task fields.
type CreateInput struct {
	Title       string
	Description string
	CourseCode  string
	DueDate     time.Time
	Priority    string // defaults to medium
	Status      string // defaults to todo
}

// Create validates and writes a new task. Completed is derived from Status
// here, at write time. That is the invariant the whole system trusts.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (models.Task, error) {
	if userID == "" {
		return models.Task{}, errs.NewValidation("user id is required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, errs.NewValidation("title is required", errs.FieldError{Field: "title", Msg: "must not be empty"})
	}
	if in.DueDate.IsZero() {
		return models.Task{}, errs.NewValidation("due date is required", errs.FieldError{Field: "due_date", Msg: "must be a valid date"})
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return models.Task{}, errs.NewValidation("unknown priority", errs.FieldError{Field: "priority", Msg: priority})
	}
	status := in.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !models.ValidStatus(status) {
		return models.Task{}, errs.NewValidation("unknown status", errs.FieldError{Field: "status", Msg: status})
	}

	task := models.Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		CourseCode:  strings.TrimSpace(in.CourseCode),
		DueDate:     in.DueDate.UTC(),
		Priority:    priority,
		Status:      status,
		Completed:   status == models.StatusDone,
	}

	id, err := s.store.Insert(ctx, live.ColTasks, map[string]any{
		"user_id":     task.UserID,
		"title":       task.Title,
		"description": task.Description,
		"course_code": task.CourseCode,
		"due_date":    task.DueDate,
		"priority":    task.Priority,
		"status":      task.Status,
		"completed":   task.Completed,
		"created_at":  docstore.ServerTimestamp,
	})
	if err != nil {
		return models.Task{}, errs.WrapStore("create task", err)
	}
	task.ID = id

	s.log.Info("task created",
		zap.String("task_id", id),
		zap.String("user_id", userID))
	return task, nil
}

// UpdateStatus moves a task to a new status. Status and completed are
// recomputed together in the same write; one is never updated without the
// other. Concurrent updates to the same task are last-writer-wins.
func (s *Service) UpdateStatus(ctx context.Context, userID, taskID, status string) error {
	if !models.ValidStatus(status) {
		return errs.NewValidation("unknown status", errs.FieldError{Field: "status", Msg: status})
	}
	if err := s.requireOwner(ctx, userID, taskID); err != nil {
		return err
	}

	err := s.store.Update(ctx, live.ColTasks, taskID, map[string]any{
		"status":    status,
		"completed": status == models.StatusDone,
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return errs.NewNotFound("task", taskID)
	}
	return errs.WrapStore("update task status", err)
}

// Delete hard-deletes a task. No tombstone is kept.
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	if err := s.requireOwner(ctx, userID, taskID); err != nil {
		return err
	}

	err := s.store.Delete(ctx, live.ColTasks, taskID)
	if errors.Is(err, docstore.ErrNotFound) {
		return errs.NewNotFound("task", taskID)
	}
	if err != nil {
		return errs.WrapStore("delete task", err)
	}

	s.log.Info("task deleted",
		zap.String("task_id", taskID),
		zap.String("user_id", userID))
	return nil
}

// List returns the user's tasks ordered by due date ascending, matching the
// order live subscriptions deliver.
func (s *Service) List(ctx context.Context, userID string) ([]models.Task, error) {
	if userID == "" {
		return nil, errs.NewValidation("user id is required")
	}
	docs, err := s.store.Find(ctx, live.ColTasks, docstore.Filter{"user_id": userID})
	if err != nil {
		return nil, errs.WrapStore("list tasks", err)
	}

	out := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.DecodeTask(d.ID, d.Data))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (s *Service) requireOwner(ctx context.Context, userID, taskID string) error {
	doc, err := s.store.Get(ctx, live.ColTasks, taskID)
	if errors.Is(err, docstore.ErrNotFound) {
		return errs.NewNotFound("task", taskID)
	}
	if err != nil {
		return errs.WrapStore("fetch task", err)
	}
	if task := models.DecodeTask(doc.ID, doc.Data); task.UserID != userID {
		return errs.NewPermission("task %s does not belong to user %s", taskID, userID)
	}
	return nil
}
