package groups

import (
	"context"
	"testing"

	"github.com/dalemusser/studyhub/internal/app/live"
	"github.com/dalemusser/studyhub/internal/app/store/docstore/memstore"
	"github.com/dalemusser/studyhub/internal/app/system/errs"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return NewService(store, zap.NewNop()), store
}

func seedUser(t *testing.T, store *memstore.Store, uid, role string) {
	t.Helper()
	err := store.Create(context.Background(), live.ColUsers, uid, map[string]any{
		"email":        uid + "@test.edu",
		"display_name": uid,
		"role":         role,
	})
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
}

func TestCreate_InstructorOnly(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seedUser(t, store, "prof", models.RoleInstructor)
	seedUser(t, store, "stu", models.RoleStudent)

	group, err := svc.Create(ctx, "prof", "Algorithms")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if group.JoinCode == "" {
		t.Error("expected a join code")
	}
	if group.MemberCount != 1 || !group.HasMember("prof") {
		t.Errorf("instructor not the sole initial member: %+v", group)
	}

	if _, err := svc.Create(ctx, "stu", "Rogue Group"); !errs.IsPermission(err) {
		t.Errorf("student create: expected PermissionError, got %v", err)
	}
	if _, err := svc.Create(ctx, "prof", "  "); !errs.IsValidation(err) {
		t.Errorf("blank name: expected ValidationError, got %v", err)
	}
}

func TestJoinByCode_MaintainsMembersAndCountTogether(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seedUser(t, store, "prof", models.RoleInstructor)

	group, _ := svc.Create(ctx, "prof", "Algorithms")

	joined, err := svc.JoinByCode(ctx, "stu1", group.JoinCode)
	if err != nil {
		t.Fatalf("JoinByCode failed: %v", err)
	}
	if joined.MemberCount != 2 || !joined.HasMember("stu1") {
		t.Errorf("membership after join: %+v", joined)
	}

	doc, _ := store.Get(ctx, live.ColGroups, group.ID)
	stored := models.DecodeGroup(doc.ID, doc.Data)
	if stored.MemberCount != len(stored.Members) {
		t.Errorf("member_count %d drifted from members %v", stored.MemberCount, stored.Members)
	}

	// Joining twice is a no-op.
	again, err := svc.JoinByCode(ctx, "stu1", group.JoinCode)
	if err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	if again.MemberCount != 2 {
		t.Errorf("double join inflated count: %d", again.MemberCount)
	}

	// Codes are matched case-insensitively (they're entered by hand).
	if _, err := svc.JoinByCode(ctx, "stu2", "  "+group.JoinCode+" "); err != nil {
		t.Errorf("padded code rejected: %v", err)
	}
}

func TestJoinByCode_UnknownCode(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.JoinByCode(context.Background(), "stu", "NOPE1234"); !errs.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestLeave(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seedUser(t, store, "prof", models.RoleInstructor)

	group, _ := svc.Create(ctx, "prof", "Algorithms")
	svc.JoinByCode(ctx, "stu1", group.JoinCode)

	if err := svc.Leave(ctx, "stu1", group.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	doc, _ := store.Get(ctx, live.ColGroups, group.ID)
	after := models.DecodeGroup(doc.ID, doc.Data)
	if after.HasMember("stu1") || after.MemberCount != 1 {
		t.Errorf("membership after leave: %+v", after)
	}

	if err := svc.Leave(ctx, "prof", group.ID); !errs.IsPermission(err) {
		t.Errorf("instructor leave: expected PermissionError, got %v", err)
	}
	// Leaving a group you're not in is a no-op.
	if err := svc.Leave(ctx, "stranger", group.ID); err != nil {
		t.Errorf("stranger leave: %v", err)
	}
}

func TestCreateUnit_InstructorOfGroupOnly(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seedUser(t, store, "prof", models.RoleInstructor)

	group, _ := svc.Create(ctx, "prof", "Algorithms")
	svc.JoinByCode(ctx, "stu1", group.JoinCode)

	unit, err := svc.CreateUnit(ctx, "prof", group.ID, "cs101", "Intro to CS")
	if err != nil {
		t.Fatalf("CreateUnit failed: %v", err)
	}
	if unit.Code != "CS101" {
		t.Errorf("code not normalized: %q", unit.Code)
	}

	if _, err := svc.CreateUnit(ctx, "stu1", group.ID, "CS102", "More CS"); !errs.IsPermission(err) {
		t.Errorf("member create unit: expected PermissionError, got %v", err)
	}
	if _, err := svc.CreateUnit(ctx, "prof", group.ID, "", "x"); !errs.IsValidation(err) {
		t.Errorf("blank code: expected ValidationError, got %v", err)
	}
}

func TestUpdateUnit(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seedUser(t, store, "prof", models.RoleInstructor)

	group, _ := svc.Create(ctx, "prof", "Algorithms")
	unit, _ := svc.CreateUnit(ctx, "prof", group.ID, "CS101", "Intro")

	if err := svc.UpdateUnit(ctx, "prof", unit.ID, "", "Intro to Computer Science"); err != nil {
		t.Fatalf("UpdateUnit failed: %v", err)
	}
	doc, _ := store.Get(ctx, live.ColUnits, unit.ID)
	after := models.DecodeUnit(doc.ID, doc.Data)
	if after.Name != "Intro to Computer Science" || after.Code != "CS101" {
		t.Errorf("after update: %+v", after)
	}

	if err := svc.UpdateUnit(ctx, "intruder", unit.ID, "", "Hacked"); !errs.IsPermission(err) {
		t.Errorf("expected PermissionError, got %v", err)
	}
	if err := svc.UpdateUnit(ctx, "prof", "missing", "", "x"); !errs.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}
