// internal/domain/models/user.go
package models

import "time"

// User roles.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

// UserProfile represents a signed-in user's stored profile.
//
// NOTE:
//   - The document ID is the identity provider's stable user ID (UID),
//     not a generated ObjectID, so ensure-on-first-login is an upsert.
//   - Role changes only via explicit admin action; the normal write path
//     never touches it after creation.
type UserProfile struct {
	UID         string    `bson:"_id" json:"uid"`
	Email       string    `bson:"email" json:"email"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	Role        string    `bson:"role" json:"role"` // student | instructor
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// DecodeUserProfile maps a raw store document onto a UserProfile.
func DecodeUserProfile(id string, data map[string]any) UserProfile {
	return UserProfile{
		UID:         id,
		Email:       str(data["email"]),
		DisplayName: str(data["display_name"]),
		Role:        str(data["role"]),
		CreatedAt:   DecodeTime(data["created_at"]),
	}
}
