package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/domain/roles"
	"github.com/ognjenpetar/bio-rider-co-creation-map/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, actor roles.Actor, userID string, update models.ProfileUpdate) (*models.UserProfile, error)
	// RoleOf resolves the stored role for a user, defaulting to viewer when
	// no profile exists.
	RoleOf(ctx context.Context, userID string) (roles.Role, error)
	// ListUsers returns all profiles; moderators only.
	ListUsers(ctx context.Context, actor roles.Actor) ([]models.UserProfile, error)
	// UpdateRole changes another user's role; superadmins only, never their
	// own.
	UpdateRole(ctx context.Context, actor roles.Actor, targetID string, role roles.Role) (*models.UserProfile, error)
	// RoleStats returns the number of users per role; moderators only.
	RoleStats(ctx context.Context, actor roles.Actor) (map[string]int, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger.With(zap.String("service", "UserService")),
		repo:   repo,
	}
}

func (s *ServiceImpl) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// UpdateProfile lets users edit their own profile; moderators may edit
// anyone's.
func (s *ServiceImpl) UpdateProfile(ctx context.Context, actor roles.Actor, userID string, update models.ProfileUpdate) (*models.UserProfile, error) {
	if update.IsEmpty() {
		return nil, fmt.Errorf("no fields to update: %w", models.ErrValidation)
	}
	if update.Username != nil && strings.TrimSpace(*update.Username) == "" {
		return nil, fmt.Errorf("username cannot be empty: %w", models.ErrValidation)
	}
	if actor.ID != userID && !roles.CanModerate(actor.Role) {
		return nil, fmt.Errorf("cannot edit another user's profile: %w", models.ErrForbidden)
	}
	return s.repo.UpdateProfile(ctx, userID, update)
}

// RoleOf treats a missing profile as viewer rather than an error: accounts
// always resolve to the lowest privilege until a profile says otherwise.
func (s *ServiceImpl) RoleOf(ctx context.Context, userID string) (roles.Role, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return roles.RoleViewer, nil
		}
		return roles.RoleViewer, err
	}
	return roles.ParseRole(profile.Role), nil
}

func (s *ServiceImpl) ListUsers(ctx context.Context, actor roles.Actor) ([]models.UserProfile, error) {
	if !roles.CanModerate(actor.Role) {
		return nil, fmt.Errorf("listing users requires a moderator role: %w", models.ErrForbidden)
	}
	return s.repo.ListProfiles(ctx)
}

func (s *ServiceImpl) UpdateRole(ctx context.Context, actor roles.Actor, targetID string, role roles.Role) (*models.UserProfile, error) {
	l := s.logger.With(zap.String("method", "UpdateRole"),
		zap.String("actorID", actor.ID), zap.String("targetID", targetID))

	if roles.ParseRole(string(role)) != role {
		return nil, fmt.Errorf("unknown role %q: %w", role, models.ErrValidation)
	}
	if !roles.CanChangeRole(actor.Role, actor.ID, targetID) {
		if actor.ID == targetID {
			return nil, fmt.Errorf("cannot change your own role: %w", models.ErrForbidden)
		}
		return nil, fmt.Errorf("changing roles requires superadmin: %w", models.ErrForbidden)
	}

	if err := s.repo.UpdateRole(ctx, targetID, string(role)); err != nil {
		l.Error("Role update failed", zap.Error(err))
		return nil, err
	}

	l.Info("Role updated", zap.String("role", string(role)))
	return s.repo.GetProfile(ctx, targetID)
}

func (s *ServiceImpl) RoleStats(ctx context.Context, actor roles.Actor) (map[string]int, error) {
	if !roles.CanModerate(actor.Role) {
		return nil, fmt.Errorf("role stats require a moderator role: %w", models.ErrForbidden)
	}
	return s.repo.CountByRole(ctx)
}
