package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"go.uber.org/zap"
)

type userRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	SetDispatcher(ctx context.Context, telegramID int64, isDispatcher bool) error
}

type driverLookup interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Driver, error)
}

type UserService struct {
	userRepo userRepository
	drivers  driverLookup
	admins   map[int64]struct{}
	logger   *zap.Logger
}

func NewUserService(userRepo userRepository, drivers driverLookup, adminIDs []int64, logger *zap.Logger) *UserService {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &UserService{
		userRepo: userRepo,
		drivers:  drivers,
		admins:   admins,
		logger:   logger,
	}
}

// RegisterUser регистрирует или обновляет пользователя
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error) {
	existingUser, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	if existingUser != nil {
		existingUser.Username = username
		existingUser.FirstName = firstName
		existingUser.LastName = lastName
		existingUser.LanguageCode = languageCode

		if err := s.userRepo.UpdateProfile(ctx, existingUser); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}

		return existingUser, nil
	}

	user := &model.User{
		TelegramID:   telegramID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		LanguageCode: languageCode,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
	)

	return user, nil
}

// Actor определяет роль пользователя.
// Порядок: администратор из конфига, диспетчер, привязанный водитель, гость.
func (s *UserService) Actor(ctx context.Context, telegramID int64) (planning.Actor, error) {
	actor := planning.Actor{ID: telegramID, Capabilities: planning.Capabilities{Role: planning.RoleGuest}}

	if _, ok := s.admins[telegramID]; ok {
		actor.Role = planning.RoleAdmin
		return actor, nil
	}

	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return actor, fmt.Errorf("get user: %w", err)
	}
	if user != nil && user.IsDispatcher {
		actor.Role = planning.RoleDispatcher
		return actor, nil
	}

	driver, err := s.drivers.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return actor, fmt.Errorf("get driver: %w", err)
	}
	if driver != nil {
		actor.Role = planning.RoleDriver
		actor.DriverID = driver.ID
	}

	return actor, nil
}

// SetDispatcher выдаёт или отзывает роль диспетчера; только администратор
func (s *UserService) SetDispatcher(ctx context.Context, actor planning.Actor, telegramID int64, isDispatcher bool) error {
	if !actor.CanForce() {
		return ErrForbidden
	}

	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.SetDispatcher(ctx, telegramID, isDispatcher); err != nil {
		return fmt.Errorf("set dispatcher: %w", err)
	}

	s.logger.Info("Dispatcher role changed",
		zap.Int64("telegram_id", telegramID),
		zap.Bool("is_dispatcher", isDispatcher),
		zap.Int64("actor_id", actor.ID),
	)

	return nil
}
