// internal/app/profiles/service.go

// Package profiles manages stored user profiles. A profile is created once,
// at first sign-in, from the identity provider's claims; after that the
// stable UID is all the rest of the system consumes.
package profiles

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/studyhub/internal/app/live"
	"github.com/dalemusser/studyhub/internal/app/store/docstore"
	"github.com/dalemusser/studyhub/internal/app/system/errs"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

// Service coordinates profile reads and the ensure-on-first-login write.
type Service struct {
	store docstore.Store
	log   *zap.Logger
}

// NewService constructs a Service.
func NewService(store docstore.Store, logger *zap.Logger) *Service {
	return &Service{store: store, log: logger}
}

// Ensure returns the profile for uid, creating it with the default student
// role if this is the first sign-in. Safe under concurrent first sign-ins:
// the loser of the create race reads the winner's document.
func (s *Service) Ensure(ctx context.Context, uid, email, displayName string) (models.UserProfile, error) {
	if uid == "" {
		return models.UserProfile{}, errs.NewValidation("uid is required")
	}

	profile, err := s.Get(ctx, uid)
	if err == nil {
		return profile, nil
	}
	if !errs.IsNotFound(err) {
		return models.UserProfile{}, err
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "User"
	}

	createErr := s.store.Create(ctx, live.ColUsers, uid, map[string]any{
		"email":        email,
		"display_name": displayName,
		"role":         models.RoleStudent,
		"created_at":   docstore.ServerTimestamp,
	})
	if createErr != nil && !errors.Is(createErr, docstore.ErrExists) {
		return models.UserProfile{}, errs.WrapStore("create profile", createErr)
	}
	if createErr == nil {
		s.log.Info("profile created", zap.String("uid", uid))
	}

	return s.Get(ctx, uid)
}

// Get fetches one profile by UID.
func (s *Service) Get(ctx context.Context, uid string) (models.UserProfile, error) {
	doc, err := s.store.Get(ctx, live.ColUsers, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.UserProfile{}, errs.NewNotFound("user", uid)
	}
	if err != nil {
		return models.UserProfile{}, errs.WrapStore("fetch profile", err)
	}
	return models.DecodeUserProfile(doc.ID, doc.Data), nil
}

// SetRole changes a user's role. This is the explicit admin action; the
// normal request path never calls it.
func (s *Service) SetRole(ctx context.Context, uid, role string) error {
	if role != models.RoleStudent && role != models.RoleInstructor {
		return errs.NewValidation("unknown role", errs.FieldError{Field: "role", Msg: role})
	}
	err := s.store.Update(ctx, live.ColUsers, uid, map[string]any{"role": role})
	if errors.Is(err, docstore.ErrNotFound) {
		return errs.NewNotFound("user", uid)
	}
	return errs.WrapStore("set role", err)
}
