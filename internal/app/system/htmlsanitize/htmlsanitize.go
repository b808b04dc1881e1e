// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize cleans user-supplied content before it is persisted.
// Post content is stored as plain text: markup is stripped, not escaped,
// so what fan-out copies into notification messages is always safe to
// render anywhere.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps common safe markup (bold, lists, links) and strips
// scripts, event handlers, and javascript: URLs.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// Text strips all markup and returns trimmed plain text. Entities the
// policy escaped are unescaped again so the stored text reads naturally.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
