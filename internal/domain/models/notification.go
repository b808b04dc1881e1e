// internal/domain/models/notification.go
package models

import "time"

// Notification types.
const (
	NotifyAnnouncement = "announcement"
	NotifyDeadline     = "deadline"
	NotifyClassUpdate  = "class_update"
	NotifyAssessment   = "assessment"
	NotifySystem       = "system"
)

// Notification is a per-recipient record created by the fan-out engine
// (one per Post × recipient). Only the recipient ever mutates it, and only
// to flip the read flag.
type Notification struct {
	ID          string    `bson:"_id" json:"id"`
	RecipientID string    `bson:"recipient_id" json:"recipient_id"`
	Type        string    `bson:"type" json:"type"`
	Title       string    `bson:"title" json:"title"`
	Message     string    `bson:"message" json:"message"`
	Link        string    `bson:"link,omitempty" json:"link,omitempty"`
	Read        bool      `bson:"read" json:"read"`
	PostID      string    `bson:"post_id,omitempty" json:"post_id,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// DecodeNotification maps a raw store document onto a Notification.
func DecodeNotification(id string, data map[string]any) Notification {
	return Notification{
		ID:          id,
		RecipientID: str(data["recipient_id"]),
		Type:        str(data["type"]),
		Title:       str(data["title"]),
		Message:     str(data["message"]),
		Link:        str(data["link"]),
		Read:        boolean(data["read"]),
		PostID:      str(data["post_id"]),
		CreatedAt:   DecodeTime(data["created_at"]),
	}
}
