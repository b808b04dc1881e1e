// internal/domain/models/group.go
package models

import "time"

// Group represents an academic group (a class cohort).
//
// NOTE:
//   - Members is the authoritative membership set, embedded on the group
//     document so recipient resolution for fan-out is a single read.
//   - MemberCount is maintained in the same update that mutates Members;
//     it exists for cheap display reads and can only drift if a writer
//     bypasses the group service.
type Group struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	NameCI       string    `bson:"name_ci" json:"name_ci"`
	JoinCode     string    `bson:"join_code" json:"join_code"`
	InstructorID string    `bson:"instructor_id" json:"instructor_id"`
	Members      []string  `bson:"members" json:"members"`
	MemberCount  int       `bson:"member_count" json:"member_count"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// HasMember reports whether uid is in the membership set.
func (g Group) HasMember(uid string) bool {
	for _, m := range g.Members {
		if m == uid {
			return true
		}
	}
	return false
}

// DecodeGroup maps a raw store document onto a Group.
func DecodeGroup(id string, data map[string]any) Group {
	return Group{
		ID:           id,
		Name:         str(data["name"]),
		NameCI:       str(data["name_ci"]),
		JoinCode:     str(data["join_code"]),
		InstructorID: str(data["instructor_id"]),
		Members:      strSlice(data["members"]),
		MemberCount:  integer(data["member_count"]),
		CreatedAt:    DecodeTime(data["created_at"]),
	}
}
