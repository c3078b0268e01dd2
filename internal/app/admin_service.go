package app

import (
	"context"
	"fmt"

	"nutrition_goal_bot/internal/domain/user"
	idb "nutrition_goal_bot/internal/infra/database"

	"github.com/google/uuid"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrUserAlreadyExists = fmt.Errorf("user with this Telegram ID already exists")
var ErrUserAlreadyInactive = fmt.Errorf("user is already inactive")

// DefaultGoals carries the daily goals assigned to new users.
type DefaultGoals struct {
	CalorieKcal int
	WaterML     int
	Missions    int
}

// AdminService lets the configured caregiver admin manage registered users.
type AdminService struct {
	userRepo        user.Repository
	adminTelegramID int64
	defaultGoals    DefaultGoals
}

func NewAdminService(userRepo user.Repository, adminID int64, defaults DefaultGoals) *AdminService {
	return &AdminService{
		userRepo:        userRepo,
		adminTelegramID: adminID,
		defaultGoals:    defaults,
	}
}

// AddUser registers a new senior with default goals.
func (s *AdminService) AddUser(ctx context.Context, performingAdminID int64, telegramID int64, nickname string) (*user.User, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	_, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if err != idb.ErrUserNotFound {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	newUser := &user.User{
		ID:              uuid.New().String(),
		TelegramID:      telegramID,
		Nickname:        nickname,
		CalorieGoalKcal: s.defaultGoals.CalorieKcal,
		WaterGoalML:     s.defaultGoals.WaterML,
		MissionGoal:     s.defaultGoals.Missions,
		IsActive:        true,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if err == idb.ErrDuplicateTelegramID {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	return newUser, nil
}

// RemoveUser deactivates a user; their history is kept.
func (s *AdminService) RemoveUser(ctx context.Context, performingAdminID int64, telegramID int64) (*user.User, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	target, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if err == idb.ErrUserNotFound {
			return nil, idb.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by Telegram ID for removal: %w", err)
	}

	if !target.IsActive {
		return target, ErrUserAlreadyInactive
	}

	target.IsActive = false
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to deactivate user in repository: %w", err)
	}

	return target, nil
}

// SetGoals updates a user's personal daily goals.
func (s *AdminService) SetGoals(ctx context.Context, performingAdminID int64, telegramID int64, calorieKcal, waterML, missions int) (*user.User, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	if calorieKcal <= 0 || waterML <= 0 || missions <= 0 {
		return nil, ErrInvalidAmount
	}

	target, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if err == idb.ErrUserNotFound {
			return nil, idb.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by Telegram ID for goal update: %w", err)
	}

	target.CalorieGoalKcal = calorieKcal
	target.WaterGoalML = waterML
	target.MissionGoal = missions
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update user goals in repository: %w", err)
	}

	return target, nil
}

// ListActiveUsers returns all active users for the admin overview.
func (s *AdminService) ListActiveUsers(ctx context.Context, performingAdminID int64) ([]*user.User, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return s.userRepo.ListActive(ctx)
}

// ListAllUsers returns every user, active or not.
func (s *AdminService) ListAllUsers(ctx context.Context, performingAdminID int64) ([]*user.User, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return s.userRepo.ListAll(ctx)
}
