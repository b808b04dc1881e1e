// internal/app/live/manager.go

// Package live is the subscription manager: it turns docstore watches into
// typed, sorted, deduplicated domain snapshots delivered to callbacks, and
// guarantees that a canceled subscription never fires again, even for a
// snapshot already in flight when cancel was called.
package live

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/dalemusser/studyhub/internal/app/store/docstore"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

// CancelFunc tears down a subscription. Idempotent; after the first call no
// further callbacks are invoked.
type CancelFunc = docstore.CancelFunc

// Collection names shared with the write coordinator.
const (
	ColUsers         = "users"
	ColTasks         = "tasks"
	ColGroups        = "groups"
	ColUnits         = "units"
	ColPosts         = "posts"
	ColNotifications = "notifications"
)

// Manager owns live subscriptions over one docstore. Subscriptions are
// independent: a screen typically holds several at once and nothing is
// shared between them except the store connection.
type Manager struct {
	store docstore.Store
	log   *zap.Logger
}

// NewManager constructs a Manager.
func NewManager(store docstore.Store, logger *zap.Logger) *Manager {
	return &Manager{store: store, log: logger}
}

// subscribe is the generic core. It decodes each raw snapshot, dedupes by
// document ID, sorts with less (nil keeps store order), and dispatches to fn
// under a cancellation guard.
//
// The guard is the flag checked right before fn runs: cancel flips it, so a
// snapshot that was already being prepared when cancel was called is dropped
// instead of reaching a caller that has moved on. This is a message-passing
// guard, not a lock.
func subscribe[T any](
	m *Manager,
	ctx context.Context,
	collection string,
	filter docstore.Filter,
	decode func(id string, data map[string]any) T,
	less func(a, b T) bool,
	fn func([]T),
) CancelFunc {
	var canceled atomic.Bool

	deliver := func(docs []docstore.Document) {
		if canceled.Load() {
			return
		}
		out := make([]T, 0, len(docs))
		seen := make(map[string]struct{}, len(docs))
		for _, d := range docs {
			if _, dup := seen[d.ID]; dup {
				continue
			}
			seen[d.ID] = struct{}{}
			out = append(out, decode(d.ID, d.Data))
		}
		if less != nil {
			sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
		}
		if canceled.Load() {
			return
		}
		fn(out)
	}

	cancelWatch, err := m.store.Watch(ctx, collection, filter, deliver)
	if err != nil {
		// Subscription-level failure surfaces once as an empty snapshot so
		// the caller's view settles instead of an error escaping into
		// unrelated code paths.
		m.log.Warn("subscription failed to open",
			zap.String("collection", collection),
			zap.Error(err))
		fn([]T{})
		return func() {}
	}

	return func() {
		canceled.Store(true)
		cancelWatch()
	}
}

// noopSubscribe handles an absent filter key: one empty callback, a no-op
// cancel, and zero store calls. Opening a live query with an unbounded
// filter is never allowed.
func noopSubscribe[T any](fn func([]T)) CancelFunc {
	fn([]T{})
	return func() {}
}

// Tasks subscribes to one user's tasks, sorted by due date ascending
// (nearest first). The store does not guarantee this order; the snapshot
// is re-sorted on every delivery.
func (m *Manager) Tasks(ctx context.Context, userID string, fn func([]models.Task)) CancelFunc {
	if userID == "" {
		return noopSubscribe(fn)
	}
	return subscribe(m, ctx, ColTasks,
		docstore.Filter{"user_id": userID},
		models.DecodeTask,
		func(a, b models.Task) bool { return a.DueDate.Before(b.DueDate) },
		fn)
}

// Notifications subscribes to one recipient's notifications, newest first.
// Presentation limits (top 20 etc.) are layered above, not applied here.
func (m *Manager) Notifications(ctx context.Context, recipientID string, fn func([]models.Notification)) CancelFunc {
	if recipientID == "" {
		return noopSubscribe(fn)
	}
	return subscribe(m, ctx, ColNotifications,
		docstore.Filter{"recipient_id": recipientID},
		models.DecodeNotification,
		func(a, b models.Notification) bool { return a.CreatedAt.After(b.CreatedAt) },
		fn)
}

// UserGroups subscribes to the groups a user belongs to (membership-set
// containment), sorted by folded name.
func (m *Manager) UserGroups(ctx context.Context, userID string, fn func([]models.Group)) CancelFunc {
	if userID == "" {
		return noopSubscribe(fn)
	}
	return subscribe(m, ctx, ColGroups,
		docstore.Filter{"members": userID},
		models.DecodeGroup,
		func(a, b models.Group) bool { return a.NameCI < b.NameCI },
		fn)
}

// Units subscribes to a group's units, sorted by unit code.
func (m *Manager) Units(ctx context.Context, groupID string, fn func([]models.Unit)) CancelFunc {
	if groupID == "" {
		return noopSubscribe(fn)
	}
	return subscribe(m, ctx, ColUnits,
		docstore.Filter{"group_id": groupID},
		models.DecodeUnit,
		func(a, b models.Unit) bool { return a.Code < b.Code },
		fn)
}

// GroupPosts subscribes to a group's posts, newest first.
func (m *Manager) GroupPosts(ctx context.Context, groupID string, fn func([]models.Post)) CancelFunc {
	if groupID == "" {
		return noopSubscribe(fn)
	}
	return subscribe(m, ctx, ColPosts,
		docstore.Filter{"group_id": groupID},
		models.DecodePost,
		func(a, b models.Post) bool { return a.CreatedAt.After(b.CreatedAt) },
		fn)
}
