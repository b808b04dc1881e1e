// internal/app/notify/service.go

// Package notify owns notification reads and read-flag writes. Notifications
// are created only by the fan-out engine (see the posts package); a
// recipient can do exactly one thing to them: mark them read.
package notify

import (
	"context"
	"errors"
	"sort"

	"github.com/dalemusser/studyhub/internal/app/live"
	"github.com/dalemusser/studyhub/internal/app/store/docstore"
	"github.com/dalemusser/studyhub/internal/app/system/errs"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultRecentLimit is the presentation cap for notification lists.
const DefaultRecentLimit = 20

// Service coordinates notification writes.
type Service struct {
	store docstore.Store
	log   *zap.Logger
}

// NewService constructs a Service.
func NewService(store docstore.Store, logger *zap.Logger) *Service {
	return &Service{store: store, log: logger}
}

// MarkRead flips one notification's read flag. Idempotent: marking an
// already-read notification is a no-op, not an error, and performs no write.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	doc, err := s.store.Get(ctx, live.ColNotifications, notificationID)
	if errors.Is(err, docstore.ErrNotFound) {
		return errs.NewNotFound("notification", notificationID)
	}
	if err != nil {
		return errs.WrapStore("fetch notification", err)
	}

	n := models.DecodeNotification(doc.ID, doc.Data)
	if n.RecipientID != userID {
		return errs.NewPermission("notification %s does not belong to user %s", notificationID, userID)
	}
	if n.Read {
		return nil
	}

	err = s.store.Update(ctx, live.ColNotifications, notificationID, map[string]any{"read": true})
	if errors.Is(err, docstore.ErrNotFound) {
		return errs.NewNotFound("notification", notificationID)
	}
	return errs.WrapStore("mark notification read", err)
}

// MarkAllRead marks exactly the given notifications read. Notifications not
// in ids keep their prior read value even when they belong to the same user;
// the caller computes the unread subset. Per-id failures do not stop the
// batch; the first store error is returned after the loop finishes.
func (s *Service) MarkAllRead(ctx context.Context, userID string, ids []string) error {
	var firstErr error
	for _, id := range ids {
		err := s.MarkRead(ctx, userID, id)
		if err == nil || errs.IsNotFound(err) || errs.IsPermission(err) {
			// Vanished or foreign ids are skipped; the batch is best-effort
			// over the caller's (possibly stale) unread snapshot.
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// List returns the user's notifications newest first, matching the order
// live subscriptions deliver.
func (s *Service) List(ctx context.Context, userID string) ([]models.Notification, error) {
	if userID == "" {
		return nil, errs.NewValidation("user id is required")
	}
	docs, err := s.store.Find(ctx, live.ColNotifications, docstore.Filter{"recipient_id": userID})
	if err != nil {
		return nil, errs.WrapStore("list notifications", err)
	}

	out := make([]models.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.DecodeNotification(d.ID, d.Data))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UnreadCount reports how many notifications in the snapshot are unread.
// Pure function over a materialized snapshot.
func UnreadCount(ns []models.Notification) int {
	count := 0
	for _, n := range ns {
		if !n.Read {
			count++
		}
	}
	return count
}

// Recent caps a snapshot at limit entries for presentation. A limit <= 0
// means DefaultRecentLimit. The input order (newest first, per the
// subscription manager) is preserved.
func Recent(ns []models.Notification, limit int) []models.Notification {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if len(ns) <= limit {
		return ns
	}
	return ns[:limit]
}

// UnreadIDs returns the ids of unread notifications in the snapshot,
// the subset a mark-all-read call should target.
func UnreadIDs(ns []models.Notification) []string {
	var ids []string
	for _, n := range ns {
		if !n.Read {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
