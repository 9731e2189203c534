package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// EnsureUser mirrors the identity provider's view of a user into the local
// store on sign-in and stamps the login time.
func (s *userService) EnsureUser(ctx context.Context, id, fullName, email string, avatarURL *string) (*models.User, error) {
	user := &models.User{
		ID:        id,
		FullName:  fullName,
		Email:     email,
		AvatarURL: avatarURL,
		Role:      models.RoleLearner,
		IsActive:  true,
	}

	if err := s.repo.User().Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	if err := s.repo.User().TouchLastLogin(ctx, id, time.Now()); err != nil {
		s.logger.Warn("failed to record login time", "user_id", id, "error", err)
	}

	return s.repo.User().GetByID(ctx, id)
}

func (s *userService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TargetLevel != nil {
		user.TargetLevel = *req.TargetLevel
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ListUsers returns the user directory for admin screens.
func (s *userService) ListUsers(ctx context.Context, page, pageSize int) (*UserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	users, total, err := s.repo.User().List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{
		Users:    users,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateStatus changes a user's role or active flag. Admin only; the
// handler enforces the gate.
func (s *userService) UpdateStatus(ctx context.Context, id string, req *UpdateUserStatusRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User status updated",
		"user_id", id,
		"role", user.Role,
		"is_active", user.IsActive)
	return user, nil
}
