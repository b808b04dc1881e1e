package groups_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	groupsfeature "github.com/dalemusser/studyhub/internal/app/features/groups"
	groupssvc "github.com/dalemusser/studyhub/internal/app/groups"
	"github.com/dalemusser/studyhub/internal/app/live"
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
	h := groupsfeature.NewHandler(groupssvc.NewService(store, zap.NewNop()), zap.NewNop())

	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Mount("/api/groups", groupsfeature.Routes(h, sm, nil))
	return r, sm, store
}

func signedIn(t *testing.T, sm *auth.SessionManager, uid, role string) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	err := sm.SignIn(rec, httptest.NewRequest("GET", "/", nil), auth.SessionUser{
		ID: uid, Name: uid, Role: role,
	})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	return rec.Result().Cookies()
}

func seedProfile(t *testing.T, store *memstore.Store, uid, role string) {
	t.Helper()
	err := store.Create(context.Background(), live.ColUsers, uid, map[string]any{
		"email":        uid + "@example.edu",
		"display_name": uid,
		"role":         role,
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func do(t *testing.T, r chi.Router, cookies []*http.Cookie, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Accept", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateJoinLeave(t *testing.T) {
	r, sm, store := newRouter(t)
	seedProfile(t, store, "prof", models.RoleInstructor)
	seedProfile(t, store, "stu", models.RoleStudent)
	profCookies := signedIn(t, sm, "prof", models.RoleInstructor)
	stuCookies := signedIn(t, sm, "stu", models.RoleStudent)

	rec := do(t, r, profCookies, "POST", "/api/groups", `{"name":"Operating Systems"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var group models.Group
	if err := json.NewDecoder(rec.Body).Decode(&group); err != nil {
		t.Fatalf("decode group: %v", err)
	}
	if group.JoinCode == "" || group.InstructorID != "prof" || group.MemberCount != 1 {
		t.Fatalf("group = %+v", group)
	}

	// Student redeems the join code.
	rec = do(t, r, stuCookies, "POST", "/api/groups/join", `{"code":"`+group.JoinCode+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("join status = %d, body %s", rec.Code, rec.Body.String())
	}
	var joined models.Group
	if err := json.NewDecoder(rec.Body).Decode(&joined); err != nil {
		t.Fatalf("decode joined: %v", err)
	}
	if joined.MemberCount != 2 || !joined.HasMember("stu") {
		t.Errorf("joined = %+v", joined)
	}

	// The group now appears in the student's list.
	rec = do(t, r, stuCookies, "GET", "/api/groups", "")
	var mine []models.Group
	if err := json.NewDecoder(rec.Body).Decode(&mine); err != nil {
		t.Fatalf("decode mine: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != group.ID {
		t.Errorf("mine = %+v", mine)
	}

	// Leaving removes the membership.
	rec = do(t, r, stuCookies, "POST", "/api/groups/"+group.ID+"/leave", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("leave status = %d", rec.Code)
	}
	rec = do(t, r, stuCookies, "GET", "/api/groups", "")
	mine = nil
	if err := json.NewDecoder(rec.Body).Decode(&mine); err != nil {
		t.Fatalf("decode mine after leave: %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("mine after leave = %+v", mine)
	}
}

func TestCreate_StudentForbidden(t *testing.T) {
	r, sm, store := newRouter(t)
	seedProfile(t, store, "stu", models.RoleStudent)
	cookies := signedIn(t, sm, "stu", models.RoleStudent)

	rec := do(t, r, cookies, "POST", "/api/groups", `{"name":"Sneaky"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestJoin_UnknownCode(t *testing.T) {
	r, sm, store := newRouter(t)
	seedProfile(t, store, "stu", models.RoleStudent)
	cookies := signedIn(t, sm, "stu", models.RoleStudent)

	rec := do(t, r, cookies, "POST", "/api/groups/join", `{"code":"NOPE1234"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUnits_InstructorOnly(t *testing.T) {
	r, sm, store := newRouter(t)
	seedProfile(t, store, "prof", models.RoleInstructor)
	seedProfile(t, store, "stu", models.RoleStudent)
	profCookies := signedIn(t, sm, "prof", models.RoleInstructor)
	stuCookies := signedIn(t, sm, "stu", models.RoleStudent)

	rec := do(t, r, profCookies, "POST", "/api/groups", `{"name":"Databases"}`)
	var group models.Group
	if err := json.NewDecoder(rec.Body).Decode(&group); err != nil {
		t.Fatalf("decode group: %v", err)
	}

	rec = do(t, r, profCookies, "POST", "/api/groups/"+group.ID+"/units",
		`{"code":"wk1","name":"Relational Model"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create unit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var unit models.Unit
	if err := json.NewDecoder(rec.Body).Decode(&unit); err != nil {
		t.Fatalf("decode unit: %v", err)
	}
	if unit.Code != "WK1" {
		t.Errorf("unit code = %q, want upper-cased WK1", unit.Code)
	}

	// A student in the group cannot manage units.
	rec = do(t, r, stuCookies, "POST", "/api/groups/join", `{"code":"`+group.JoinCode+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("join status = %d", rec.Code)
	}
	rec = do(t, r, stuCookies, "POST", "/api/groups/"+group.ID+"/units",
		`{"code":"wk2","name":"Indexing"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student create unit status = %d, want 403", rec.Code)
	}

	// Rename, then list reflects the change in code order.
	rec = do(t, r, profCookies, "PATCH", "/api/groups/"+group.ID+"/units/"+unit.ID,
		`{"name":"Relational Algebra"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update unit status = %d", rec.Code)
	}
	rec = do(t, r, stuCookies, "GET", "/api/groups/"+group.ID+"/units", "")
	var units []models.Unit
	if err := json.NewDecoder(rec.Body).Decode(&units); err != nil {
		t.Fatalf("decode units: %v", err)
	}
	if len(units) != 1 || units[0].Name != "Relational Algebra" {
		t.Errorf("units = %+v", units)
	}
}

func TestGroups_RequireSignIn(t *testing.T) {
	r, _, _ := newRouter(t)

	rec := do(t, r, nil, "GET", "/api/groups", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
