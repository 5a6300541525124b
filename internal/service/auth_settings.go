package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/graceflow/graceflow-api/internal/domain"

	"go.uber.org/zap"
)

// minPasswordLength matches the Supabase auth default.
const minPasswordLength = 6

// ============================================================
// UpdateProfile: PUT /v1/auth/profile
// ============================================================

// UpdateProfile renames the caller's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, session domain.Session, req *domain.ProfileUpdate) (*domain.Profile, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.UpdateProfile")
	defer span.End()

	if err := requireStaff(session, "update profile"); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, &domain.ErrValidation{Field: "full_name", Message: "is required"}
	}

	if err := s.store.UpdateUser(ctx, session.UserID, &domain.UserUpdate{FullName: &name}); err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.profiles.Delete("profile:" + session.UserID)

	s.logger.Info("profile updated", zap.String("user_id", session.UserID))

	profile, err := s.store.GetProfile(ctx, session.UserID)
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		profile = &domain.Profile{ID: session.UserID, Username: session.Username, Role: session.Role}
	}
	profile.FullName = name
	return profile, nil
}

// ============================================================
// ChangePassword: PUT /v1/auth/password
// ============================================================

// ChangePassword sets a new password after re-checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, session domain.Session, req *domain.PasswordChange) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	if err := requireStaff(session, "change password"); err != nil {
		return err
	}
	switch {
	case req.Current == "":
		return &domain.ErrValidation{Field: "current_password", Message: "is required"}
	case len(req.New) < minPasswordLength:
		return &domain.ErrValidation{Field: "new_password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	case req.New != req.Confirm:
		return &domain.ErrValidation{Field: "confirm_password", Message: "does not match the new password"}
	}

	userID, err := s.store.VerifyCredentials(ctx, session.Username, req.Current)
	if err != nil {
		var unauthorized *domain.ErrUnauthorized
		if errors.As(err, &unauthorized) {
			return &domain.ErrValidation{Field: "current_password", Message: "is incorrect"}
		}
		return fmt.Errorf("verify credentials: %w", err)
	}
	if userID != session.UserID {
		return &domain.ErrForbidden{Action: "change another user's password", Role: session.Role}
	}

	if err := s.store.UpdateUser(ctx, session.UserID, &domain.UserUpdate{Password: &req.New}); err != nil {
		s.metrics.IncrExternalError("store")
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("password changed", zap.String("user_id", session.UserID))
	return nil
}
