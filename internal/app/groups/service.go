// internal/app/groups/service.go

// Package groups owns academic groups and their course units: creation,
// join-code enrollment, and membership maintenance.
//
// Membership lives as a set on the group document. MemberCount is written
// in the same update that mutates Members, so the two move together; the
// count is a read-side convenience, the set is the source of truth.
package groups

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/dalemusser/studyhub/internal/app/live"
	"github.com/dalemusser/studyhub/internal/app/store/docstore"
	"github.com/dalemusser/studyhub/internal/app/system/errs"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service coordinates group and unit writes.
type Service struct {
	store docstore.Store
	log   *zap.Logger
}

// NewService constructs a Service.
func NewService(store docstore.Store, logger *zap.Logger) *Service {
	return &Service{store: store, log: logger}
}

// Create makes a new group owned by the instructor, who starts as its only
// member. Only instructors may create groups.
func (s *Service) Create(ctx context.Context, instructorID, name string) (models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Group{}, errs.NewValidation("group name is required", errs.FieldError{Field: "name", Msg: "must not be empty"})
	}
	if err := s.requireRole(ctx, instructorID, models.RoleInstructor); err != nil {
		return models.Group{}, err
	}

	group := models.Group{
		Name:         name,
		NameCI:       text.Fold(name),
		JoinCode:     newJoinCode(),
		InstructorID: instructorID,
		Members:      []string{instructorID},
		MemberCount:  1,
	}
	id, err := s.store.Insert(ctx, live.ColGroups, map[string]any{
		"name":          group.Name,
		"name_ci":       group.NameCI,
		"join_code":     group.JoinCode,
		"instructor_id": group.InstructorID,
		"members":       group.Members,
		"member_count":  group.MemberCount,
		"created_at":    docstore.ServerTimestamp,
	})
	if err != nil {
		return models.Group{}, errs.WrapStore("create group", err)
	}
	group.ID = id

	s.log.Info("group created",
		zap.String("group_id", id),
		zap.String("instructor_id", instructorID))
	return group, nil
}

// JoinByCode redeems a join code for the given user. Joining a group the
// user is already in is a no-op that returns the group.
func (s *Service) JoinByCode(ctx context.Context, userID, code string) (models.Group, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return models.Group{}, errs.NewValidation("join code is required")
	}

	docs, err := s.store.Find(ctx, live.ColGroups, docstore.Filter{"join_code": code})
	if err != nil {
		return models.Group{}, errs.WrapStore("look up join code", err)
	}
	if len(docs) == 0 {
		return models.Group{}, errs.NewNotFound("group with join code", code)
	}

	group := models.DecodeGroup(docs[0].ID, docs[0].Data)
	if group.HasMember(userID) {
		return group, nil
	}

	group.Members = append(group.Members, userID)
	group.MemberCount = len(group.Members)
	if err := s.writeMembers(ctx, group); err != nil {
		return models.Group{}, err
	}

	s.log.Info("user joined group",
		zap.String("group_id", group.ID),
		zap.String("user_id", userID))
	return group, nil
}

// Leave removes the user from the group's membership set. The instructor
// cannot leave their own group.
func (s *Service) Leave(ctx context.Context, userID, groupID string) error {
	group, err := s.get(ctx, groupID)
	if err != nil {
		return err
	}
	if group.InstructorID == userID {
		return errs.NewPermission("instructor %s cannot leave group %s", userID, groupID)
	}
	if !group.HasMember(userID) {
		return nil
	}

	members := group.Members[:0]
	for _, m := range group.Members {
		if m != userID {
			members = append(members, m)
		}
	}
	group.Members = members
	group.MemberCount = len(members)
	return s.writeMembers(ctx, group)
}

// writeMembers persists the membership set and its count in one update so
// they cannot diverge within a single write. Two racing joins are
// last-writer-wins on the whole set; the store serializes per-document
// writes and this scale accepts that.
func (s *Service) writeMembers(ctx context.Context, group models.Group) error {
	err := s.store.Update(ctx, live.ColGroups, group.ID, map[string]any{
		"members":      group.Members,
		"member_count": group.MemberCount,
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return errs.NewNotFound("group", group.ID)
	}
	return errs.WrapStore("update group members", err)
}

// CreateUnit adds a course unit to a group. Only the group's instructor
// may manage units.
func (s *Service) CreateUnit(ctx context.Context, actorID, groupID, code, name string) (models.Unit, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return models.Unit{}, errs.NewValidation("unit code and name are required")
	}

	group, err := s.get(ctx, groupID)
	if err != nil {
		return models.Unit{}, err
	}
	if group.InstructorID != actorID {
		return models.Unit{}, errs.NewPermission("user %s is not the instructor of group %s", actorID, groupID)
	}

	unit := models.Unit{GroupID: groupID, Code: code, Name: name}
	id, err := s.store.Insert(ctx, live.ColUnits, map[string]any{
		"group_id":   unit.GroupID,
		"code":       unit.Code,
		"name":       unit.Name,
		"created_at": docstore.ServerTimestamp,
	})
	if err != nil {
		return models.Unit{}, errs.WrapStore("create unit", err)
	}
	unit.ID = id
	return unit, nil
}

// UpdateUnit renames a unit. Instructor only.
func (s *Service) UpdateUnit(ctx context.Context, actorID, unitID, code, name string) error {
	doc, err := s.store.Get(ctx, live.ColUnits, unitID)
	if errors.Is(err, docstore.ErrNotFound) {
		return errs.NewNotFound("unit", unitID)
	}
	if err != nil {
		return errs.WrapStore("fetch unit", err)
	}
	unit := models.DecodeUnit(doc.ID, doc.Data)

	group, err := s.get(ctx, unit.GroupID)
	if err != nil {
		return err
	}
	if group.InstructorID != actorID {
		return errs.NewPermission("user %s is not the instructor of group %s", actorID, unit.GroupID)
	}

	fields := map[string]any{}
	if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
		fields["code"] = code
	}
	if name = strings.TrimSpace(name); name != "" {
		fields["name"] = name
	}
	if len(fields) == 0 {
		return nil
	}
	return errs.WrapStore("update unit", s.store.Update(ctx, live.ColUnits, unitID, fields))
}

// ListMine returns the groups the user belongs to, sorted by folded name,
// matching the order live subscriptions deliver.
func (s *Service) ListMine(ctx context.Context, userID string) ([]models.Group, error) {
	if userID == "" {
		return nil, errs.NewValidation("user id is required")
	}
	docs, err := s.store.Find(ctx, live.ColGroups, docstore.Filter{"members": userID})
	if err != nil {
		return nil, errs.WrapStore("list groups", err)
	}

	out := make([]models.Group, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.DecodeGroup(d.ID, d.Data))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NameCI < out[j].NameCI })
	return out, nil
}

// ListUnits returns a group's units sorted by code.
func (s *Service) ListUnits(ctx context.Context, groupID string) ([]models.Unit, error) {
	docs, err := s.store.Find(ctx, live.ColUnits, docstore.Filter{"group_id": groupID})
	if err != nil {
		return nil, errs.WrapStore("list units", err)
	}

	out := make([]models.Unit, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.DecodeUnit(d.ID, d.Data))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Get fetches one group.
func (s *Service) Get(ctx context.Context, groupID string) (models.Group, error) {
	return s.get(ctx, groupID)
}

func (s *Service) get(ctx context.Context, groupID string) (models.Group, error) {
	doc, err := s.store.Get(ctx, live.ColGroups, groupID)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.Group{}, errs.NewNotFound("group", groupID)
	}
	if err != nil {
		return models.Group{}, errs.WrapStore("fetch group", err)
	}
	return models.DecodeGroup(doc.ID, doc.Data), nil
}

func (s *Service) requireRole(ctx context.Context, userID, role string) error {
	doc, err := s.store.Get(ctx, live.ColUsers, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return errs.NewNotFound("user", userID)
	}
	if err != nil {
		return errs.WrapStore("fetch user", err)
	}
	if profile := models.DecodeUserProfile(doc.ID, doc.Data); profile.Role != role {
		return errs.NewPermission("user %s does not have role %s", userID, role)
	}
	return nil
}

// newJoinCode derives a short, human-enterable code. Uniqueness is backed
// by the join_code index; collisions at this length are vanishingly rare
// for the group counts this system sees.
func newJoinCode() string {
	id := uuid.New()
	return strings.ToUpper(id.String()[:8])
}
