// internal/domain/models/task.go
package models

import "time"

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task statuses.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// Task is a personal to-do item owned by exactly one user.
//
// Completed is derived from Status at write time (completed == status done);
// readers trust the stored value, the write path enforces the invariant.
type Task struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	CourseCode  string    `bson:"course_code,omitempty" json:"course_code,omitempty"`
	DueDate     time.Time `bson:"due_date" json:"due_date"`
	Priority    string    `bson:"priority" json:"priority"` // low | medium | high
	Status      string    `bson:"status" json:"status"`     // todo | in-progress | done
	Completed   bool      `bson:"completed" json:"completed"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// ValidPriority reports whether p is one of the known task priorities.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// DecodeTask maps a raw store document onto a Task.
func DecodeTask(id string, data map[string]any) Task {
	return Task{
		ID:          id,
		UserID:      str(data["user_id"]),
		Title:       str(data["title"]),
		Description: str(data["description"]),
		CourseCode:  str(data["course_code"]),
		DueDate:     DecodeTime(data["due_date"]),
		Priority:    str(data["priority"]),
		Status:      str(data["status"]),
		Completed:   boolean(data["completed"]),
		CreatedAt:   DecodeTime(data["created_at"]),
	}
}
