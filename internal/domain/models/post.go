// internal/domain/models/post.go
package models

import "time"

// Post categories (discriminator). The category decides which optional
// date fields are meaningful:
//   - assessment: EventDate is the exam/quiz date
//   - postponement: OriginalDate and NewDate describe the move
//   - announcement: no dates
const (
	PostAnnouncement = "announcement"
	PostAssessment   = "assessment"
	PostPostponement = "postponement"
)

// Post is a group-level announcement, assessment notice, or postponement.
// Posts are immutable after creation; there is no edit or delete path.
type Post struct {
	ID         string `bson:"_id" json:"id"`
	GroupID    string `bson:"group_id" json:"group_id"`
	AuthorID   string `bson:"author_id" json:"author_id"`
	AuthorName string `bson:"author_name" json:"author_name"`
	Content    string `bson:"content" json:"content"`
	Category   string `bson:"category" json:"category"`

	// Optional unit context; UnitName is cached at post time so readers
	// never need a second lookup.
	UnitID   string `bson:"unit_id,omitempty" json:"unit_id,omitempty"`
	UnitName string `bson:"unit_name,omitempty" json:"unit_name,omitempty"`

	EventDate    *time.Time `bson:"event_date,omitempty" json:"event_date,omitempty"`
	OriginalDate *time.Time `bson:"original_date,omitempty" json:"original_date,omitempty"`
	NewDate      *time.Time `bson:"new_date,omitempty" json:"new_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ValidCategory reports whether c is one of the known post categories.
func ValidCategory(c string) bool {
	return c == PostAnnouncement || c == PostAssessment || c == PostPostponement
}

// DecodePost maps a raw store document onto a Post.
func DecodePost(id string, data map[string]any) Post {
	return Post{
		ID:           id,
		GroupID:      str(data["group_id"]),
		AuthorID:     str(data["author_id"]),
		AuthorName:   str(data["author_name"]),
		Content:      str(data["content"]),
		Category:     str(data["category"]),
		UnitID:       str(data["unit_id"]),
		UnitName:     str(data["unit_name"]),
		EventDate:    decodeTimePtr(data["event_date"]),
		OriginalDate: decodeTimePtr(data["original_date"]),
		NewDate:      decodeTimePtr(data["new_date"]),
		CreatedAt:    DecodeTime(data["created_at"]),
	}
}
