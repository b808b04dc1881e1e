// internal/domain/models/unit.go
package models

import "time"

// Unit is a course unit inside a group (e.g. "CS101 Intro to CS").
// A unit belongs to exactly one group.
type Unit struct {
	ID        string    `bson:"_id" json:"id"`
	GroupID   string    `bson:"group_id" json:"group_id"`
	Code      string    `bson:"code" json:"code"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// DecodeUnit maps a raw store document onto a Unit.
func DecodeUnit(id string, data map[string]any) Unit {
	return Unit{
		ID:        id,
		GroupID:   str(data["group_id"]),
		Code:      str(data["code"]),
		Name:      str(data["name"]),
		CreatedAt: DecodeTime(data["created_at"]),
	}
}
