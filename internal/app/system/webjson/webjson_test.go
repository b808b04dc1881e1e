package webjson

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/studyhub/internal/app/system/errs"
	"go.uber.org/zap"
)

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", errs.NewValidation("bad input"), http.StatusBadRequest},
		{"permission", errs.NewPermission("not yours"), http.StatusForbidden},
		{"not found", errs.NewNotFound("task", "t1"), http.StatusNotFound},
		{"store down", errs.WrapStore("insert", errors.New("boom")), http.StatusServiceUnavailable},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Error(rec, zap.NewNop(), tc.err)
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: content type = %q", tc.name, ct)
		}
	}
}

func TestError_InternalDetailNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, zap.NewNop(), errors.New("password=hunter2"))
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Error("internal error detail leaked to client")
	}
}

func TestDecode(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"read ch. 4"}`))
	if err := Decode(r, &dst); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if dst.Title != "read ch. 4" {
		t.Errorf("title = %q", dst.Title)
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))
	if err := Decode(r, &dst); !errs.IsValidation(err) {
		t.Errorf("invalid JSON: expected ValidationError, got %v", err)
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(""))
	if err := Decode(r, &dst); !errs.IsValidation(err) {
		t.Errorf("empty body: expected ValidationError, got %v", err)
	}
}
