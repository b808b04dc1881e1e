// internal/app/posts/service.go

// Package posts owns group posts (announcements, assessments,
// postponements) and the notification fan-out that follows a post.
package posts

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dalemusser/studyhub/internal/app/live"
	"github.com/dalemusser/studyhub/internal/app/store/docstore"
	"github.com/dalemusser/studyhub/internal/app/system/errs"
	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

// fanoutWorkers bounds how many per-recipient notification writes run at
// once for a single announcement.
const fanoutWorkers = 8

// Service coordinates post writes and fan-out.
type Service struct {
	store docstore.Store
	log   *zap.Logger
}

// NewService constructs a Service.
func NewService(store docstore.Store, logger *zap.Logger) *Service {
	return &Service{store: store, log: logger}
}

// CreateInput carries caller-supplied post fields. The date fields mean
// different things per category: EventDate for assessments,
// OriginalDate/NewDate for postponements.
type CreateInput struct {
	GroupID    string
	AuthorID   string
	AuthorName string
	Content    string
	Category   string // defaults to announcement
	UnitID     string

	EventDate    *time.Time
	OriginalDate *time.Time
	NewDate      *time.Time
}

// create validates the input and persists the post document. Content is
// sanitized to plain text and must be non-empty afterwards. Date fields are
// best-effort enrichment: a zero date is dropped rather than failing the
// write; the core content always persists.
func (s *Service) create(ctx context.Context, in CreateInput) (models.Post, error) {
	content := htmlsanitize.Text(in.Content)
	if content == "" {
		return models.Post{}, errs.NewValidation("content is required", errs.FieldError{Field: "content", Msg: "must not be empty"})
	}
	category := in.Category
	if category == "" {
		category = models.PostAnnouncement
	}
	if !models.ValidCategory(category) {
		return models.Post{}, errs.NewValidation("unknown post category", errs.FieldError{Field: "category", Msg: category})
	}

	post := models.Post{
		GroupID:      in.GroupID,
		AuthorID:     in.AuthorID,
		AuthorName:   in.AuthorName,
		Content:      content,
		Category:     category,
		UnitID:       in.UnitID,
		EventDate:    dropZero(in.EventDate),
		OriginalDate: dropZero(in.OriginalDate),
		NewDate:      dropZero(in.NewDate),
	}

	// Cache the unit name on the post so readers never need a second
	// lookup. A missing unit drops the enrichment, nothing more.
	if in.UnitID != "" {
		if doc, err := s.store.Get(ctx, live.ColUnits, in.UnitID); err == nil {
			post.UnitName = models.DecodeUnit(doc.ID, doc.Data).Name
		}
	}

	data := map[string]any{
		"group_id":    post.GroupID,
		"author_id":   post.AuthorID,
		"author_name": post.AuthorName,
		"content":     post.Content,
		"category":    post.Category,
		"created_at":  docstore.ServerTimestamp,
	}
	if post.UnitID != "" {
		data["unit_id"] = post.UnitID
		data["unit_name"] = post.UnitName
	}
	if post.EventDate != nil {
		data["event_date"] = post.EventDate.UTC()
	}
	if post.OriginalDate != nil {
		data["original_date"] = post.OriginalDate.UTC()
	}
	if post.NewDate != nil {
		data["new_date"] = post.NewDate.UTC()
	}

	id, err := s.store.Insert(ctx, live.ColPosts, data)
	if err != nil {
		return models.Post{}, errs.WrapStore("create post", err)
	}
	post.ID = id
	return post, nil
}

// Announce posts to a group and fans the post out to every member except
// the author. See fanout.go for the delivery semantics. The returned Report
// is valid whenever the error is nil: the announcement counts as posted
// once the post document is persisted, even if some notification writes
// failed.
func (s *Service) Announce(ctx context.Context, in CreateInput) (models.Post, Report, error) {
	// 1. Validate: group exists and the author may post to it. Any failure
	// here means no write of any kind has happened.
	doc, err := s.store.Get(ctx, live.ColGroups, in.GroupID)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.Post{}, Report{}, errs.NewNotFound("group", in.GroupID)
	}
	if err != nil {
		return models.Post{}, Report{}, errs.WrapStore("fetch group", err)
	}
	group := models.DecodeGroup(doc.ID, doc.Data)
	if in.AuthorID != group.InstructorID && !group.HasMember(in.AuthorID) {
		return models.Post{}, Report{}, errs.NewPermission("user %s may not post to group %s", in.AuthorID, in.GroupID)
	}

	// 2. Persist the post. Failure aborts the whole operation: no fan-out
	// without a source post.
	post, err := s.create(ctx, in)
	if err != nil {
		return models.Post{}, Report{}, err
	}

	// 3. Resolve recipients from the membership snapshot read above.
	// Authors do not notify themselves.
	recipients := make([]string, 0, len(group.Members))
	for _, m := range group.Members {
		if m != in.AuthorID {
			recipients = append(recipients, m)
		}
	}

	// 4-5. Fan out. Per-recipient failures are collected, never propagated.
	report := s.fanOut(ctx, post, recipients)

	s.log.Info("announcement posted",
		zap.String("post_id", post.ID),
		zap.String("group_id", post.GroupID),
		zap.String("category", post.Category),
		zap.Int("notified", len(report.Notified)),
		zap.Int("failed", len(report.Failed)))
	return post, report, nil
}

// ListGroup returns a group's posts newest first, matching the order live
// subscriptions deliver.
func (s *Service) ListGroup(ctx context.Context, groupID string) ([]models.Post, error) {
	if groupID == "" {
		return nil, errs.NewValidation("group id is required")
	}
	docs, err := s.store.Find(ctx, live.ColPosts, docstore.Filter{"group_id": groupID})
	if err != nil {
		return nil, errs.WrapStore("list posts", err)
	}

	out := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.DecodePost(d.ID, d.Data))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func dropZero(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}
