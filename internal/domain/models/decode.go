// internal/domain/models/decode.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DecodeTime normalizes the store-native timestamp shapes into a single
// canonical time.Time (UTC). A field may arrive as a driver timestamp type,
// a numeric epoch value, or an ISO string depending on who wrote it and how
// it traveled; all of that stops here, and variant shapes never leak past the
// model layer.
//
// Missing or unrecognized values decode to time.Now().UTC(): timestamps on
// these documents are display data and should degrade gracefully, not error.
func DecodeTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC()
	case int64:
		return epochToTime(t)
	case int32:
		return epochToTime(int64(t))
	case int:
		return epochToTime(int64(t))
	case float64:
		return epochToTime(int64(t))
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts.UTC()
		}
		if ts, err := time.Parse("2006-01-02", t); err == nil {
			return ts.UTC()
		}
	}
	return time.Now().UTC()
}

// epochToTime interprets a numeric epoch value. Values too large to be
// plausible second counts are treated as milliseconds (JS Date.now()).
func epochToTime(v int64) time.Time {
	const msThreshold = int64(1) << 40 // ~2004 in ms, ~36000 AD in s
	if v >= msThreshold {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

// decodeTimePtr is DecodeTime for optional fields: absent stays nil instead
// of defaulting to now.
func decodeTimePtr(v any) *time.Time {
	if v == nil {
		return nil
	}
	t := DecodeTime(v)
	return &t
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func boolean(v any) bool {
	b, _ := v.(bool)
	return b
}

func integer(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func strSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case primitive.A:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}
