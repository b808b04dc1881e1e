package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if result := htmlsanitize.Sanitize(""); result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	input := "<p>Hello</p><script>alert('xss')</script>"
	result := htmlsanitize.Sanitize(input)
	if result != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", result)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if result := htmlsanitize.Sanitize(input); result == input {
		t.Error("expected javascript: href to be removed")
	}
}

func TestText_StripsAllMarkupKeepsText(t *testing.T) {
	input := `<b>Exam</b> moved to <i>Friday</i><script>x()</script>`
	result := htmlsanitize.Text(input)
	if strings.ContainsAny(result, "<>") {
		t.Errorf("markup survived: %q", result)
	}
	if !strings.Contains(result, "Exam moved to") {
		t.Errorf("text content lost: %q", result)
	}
	if strings.Contains(result, "x()") {
		t.Errorf("script body survived: %q", result)
	}
}

func TestText_TrimsAndUnescapes(t *testing.T) {
	if result := htmlsanitize.Text("  it&#39;s due  "); result != "it's due" {
		t.Errorf("got %q", result)
	}
}

func TestText_PlainTextUnchanged(t *testing.T) {
	if result := htmlsanitize.Text("Quiz on Monday"); result != "Quiz on Monday" {
		t.Errorf("got %q", result)
	}
}
