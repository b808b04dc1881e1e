// internal/app/posts/fanout.go
package posts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dalemusser/studyhub/internal/app/live"
	"github.com/dalemusser/studyhub/internal/app/store/docstore"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fanoutNamespace keys deterministic notification IDs. Never change this
// value: it is what makes a fan-out retry land on the same document IDs.
var fanoutNamespace = uuid.MustParse("9f2c1c1e-6b4a-4f3e-9d35-8a24f1d0b7c6")

// maxMessageRunes caps how much post content is copied into a
// notification message.
const maxMessageRunes = 180

// Failure records one recipient the fan-out could not reach.
type Failure struct {
	RecipientID string
	Err         error
}

// Report summarizes a fan-out: who got a notification and who did not.
// A non-empty Failed list does not mean the announcement failed: the post
// is persisted and the caller decides whether to retry delivery.
type Report struct {
	Notified []string
	Failed   []Failure
}

// NotificationID returns the deterministic document ID for the
// (post, recipient) pair. Keying notifications this way makes fan-out
// retries idempotent: a recipient who already has the notification gets
// ErrExists instead of a duplicate.
func NotificationID(postID, recipientID string) string {
	return uuid.NewSHA1(fanoutNamespace, []byte(postID+"/"+recipientID)).String()
}

// fanOut writes one notification per recipient with bounded concurrency and
// joins at the end. Each write is an independent single-document operation:
// one unreachable recipient cannot roll back the post or any other
// recipient's notification. A partially-delivered announcement is preferred
// over a silently-dropped one.
func (s *Service) fanOut(ctx context.Context, post models.Post, recipients []string) Report {
	if len(recipients) == 0 {
		return Report{}
	}

	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
		sem    = make(chan struct{}, fanoutWorkers)
	)

	for _, rid := range recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func(rid string) {
			defer wg.Done()
			defer func() { <-sem }()

			err := s.store.Create(ctx, live.ColNotifications, NotificationID(post.ID, rid), notificationData(post, rid))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil, errors.Is(err, docstore.ErrExists):
				// ErrExists means a previous (partial) fan-out already
				// delivered to this recipient.
				report.Notified = append(report.Notified, rid)
			default:
				s.log.Warn("fan-out write failed",
					zap.String("post_id", post.ID),
					zap.String("recipient_id", rid),
					zap.Error(err))
				report.Failed = append(report.Failed, Failure{RecipientID: rid, Err: err})
			}
		}(rid)
	}
	wg.Wait()

	return report
}

// notificationData maps a post onto one recipient's notification document.
func notificationData(post models.Post, recipientID string) map[string]any {
	typ := models.NotifyAnnouncement
	title := "New announcement"
	switch post.Category {
	case models.PostAssessment:
		typ = models.NotifyAssessment
		title = "New assessment"
	case models.PostPostponement:
		typ = models.NotifyClassUpdate
		title = "Class postponed"
	}
	if post.UnitName != "" {
		title = fmt.Sprintf("%s: %s", title, post.UnitName)
	}

	link := "/groups/" + post.GroupID
	if post.UnitID != "" {
		link += "/units/" + post.UnitID
	}

	return map[string]any{
		"recipient_id": recipientID,
		"type":         typ,
		"title":        title,
		"message":      post.AuthorName + ": " + truncate(post.Content, maxMessageRunes),
		"link":         link,
		"read":         false,
		"post_id":      post.ID,
		"created_at":   docstore.ServerTimestamp,
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
