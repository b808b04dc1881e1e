package posts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	postsfeature "github.com/dalemusser/studyhub/internal/app/features/posts"
	"github.com/dalemusser/studyhub/internal/app/live"
	postssvc "github.com/dalemusser/studyhub/internal/app/posts"
	"github.com/dalemusser/studyhub/internal/app/store/docstore/memstore"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (chi.Router, *auth.SessionManager, *memstore.Store) {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	store := memstore.New()
	h := postsfeature.NewHandler(postssvc.NewService(store, zap.NewNop()), zap.NewNop())

	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Mount("/api/groups/{groupID}/posts", postsfeature.Routes(h, sm))
	return r, sm, store
}

func signedIn(t *testing.T, sm *auth.SessionManager, uid, name string) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	err := sm.SignIn(rec, httptest.NewRequest("GET", "/", nil), auth.SessionUser{
		ID: uid, Name: name, Role: models.RoleInstructor,
	})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	return rec.Result().Cookies()
}

func seedGroup(t *testing.T, store *memstore.Store, id, instructor string, members []string) {
	t.Helper()
	err := store.Create(context.Background(), live.ColGroups, id, map[string]any{
		"name":          "Algorithms",
		"instructor_id": instructor,
		"members":       members,
		"member_count":  len(members),
	})
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}
}

func TestAnnounce_EndToEnd(t *testing.T) {
	r, sm, store := newRouter(t)
	cookies := signedIn(t, sm, "prof", "Prof. Ada")
	seedGroup(t, store, "g1", "prof", []string{"prof", "a", "b"})

	req := httptest.NewRequest("POST", "/api/groups/g1/posts",
		strings.NewReader(`{"content":"Lecture moved to room 304"}`))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Post     models.Post `json:"post"`
		Notified []string    `json:"notified"`
		Failed   []string    `json:"failed"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Post.ID == "" || resp.Post.AuthorName != "Prof. Ada" {
		t.Errorf("post = %+v", resp.Post)
	}
	if len(resp.Notified) != 2 || len(resp.Failed) != 0 {
		t.Errorf("report = %v / %v", resp.Notified, resp.Failed)
	}

	// The feed shows the post.
	req = httptest.NewRequest("GET", "/api/groups/g1/posts", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var feed []models.Post
	if err := json.NewDecoder(rec.Body).Decode(&feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != resp.Post.ID {
		t.Errorf("feed = %+v", feed)
	}
}

func TestAnnounce_OutsiderForbidden(t *testing.T) {
	r, sm, store := newRouter(t)
	cookies := signedIn(t, sm, "outsider", "Out Sider")
	seedGroup(t, store, "g1", "prof", []string{"prof", "a"})

	req := httptest.NewRequest("POST", "/api/groups/g1/posts",
		strings.NewReader(`{"content":"spam"}`))
	req.Header.Set("Accept", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestAnnounce_UnknownGroup(t *testing.T) {
	r, sm, _ := newRouter(t)
	cookies := signedIn(t, sm, "prof", "Prof")

	req := httptest.NewRequest("POST", "/api/groups/nope/posts",
		strings.NewReader(`{"content":"x"}`))
	req.Header.Set("Accept", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
