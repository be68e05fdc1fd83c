package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reloader обновляет реестр после изменения водителей
type reloader interface {
	Reload(ctx context.Context) error
}

type DriverService struct {
	repo     driverRepository
	registry reloader
	logger   *zap.Logger
}

func NewDriverService(repo driverRepository, registry reloader, logger *zap.Logger) *DriverService {
	return &DriverService{
		repo:     repo,
		registry: registry,
		logger:   logger,
	}
}

// Create добавляет водителя
func (s *DriverService) Create(ctx context.Context, actor planning.Actor, name, vehicle string) (*model.Driver, error) {
	if !actor.CanEditCourses() {
		return nil, ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: driver name is required", ErrInvalidInput)
	}

	driver := &model.Driver{
		ID:      uuid.NewString(),
		Name:    name,
		Vehicle: strings.TrimSpace(vehicle),
		Status:  model.DriverStatusAvailable,
	}
	if err := s.repo.Create(ctx, driver); err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}

	s.logger.Info("Driver created",
		zap.String("driver_id", driver.ID),
		zap.String("name", driver.Name),
	)

	s.refresh(ctx)
	return driver, nil
}

// SetStatus меняет статус водителя. Водитель может менять только свой.
func (s *DriverService) SetStatus(ctx context.Context, actor planning.Actor, driverID string, status model.DriverStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: driver status %q", ErrInvalidInput, status)
	}
	if !actor.FullGrid() && !(actor.Role == planning.RoleDriver && actor.DriverID == driverID) {
		return ErrForbidden
	}

	driver, err := s.repo.GetByID(ctx, driverID)
	if err != nil {
		return fmt.Errorf("get driver: %w", err)
	}
	if driver == nil {
		return planning.ErrDriverNotFound
	}

	if err := s.repo.UpdateStatus(ctx, driverID, status); err != nil {
		return fmt.Errorf("set driver status: %w", err)
	}

	s.logger.Info("Driver status changed",
		zap.String("driver_id", driverID),
		zap.String("from", string(driver.Status)),
		zap.String("to", string(status)),
		zap.Int64("actor_id", actor.ID),
	)

	s.refresh(ctx)
	return nil
}

// BindTelegram привязывает аккаунт Telegram к водителю для вида "мои курсы"
func (s *DriverService) BindTelegram(ctx context.Context, actor planning.Actor, driverID string, telegramID int64) error {
	if !actor.FullGrid() {
		return ErrForbidden
	}

	driver, err := s.repo.GetByID(ctx, driverID)
	if err != nil {
		return fmt.Errorf("get driver: %w", err)
	}
	if driver == nil {
		return planning.ErrDriverNotFound
	}

	if err := s.repo.BindTelegram(ctx, driverID, &telegramID); err != nil {
		return fmt.Errorf("bind telegram: %w", err)
	}

	s.logger.Info("Driver bound to telegram",
		zap.String("driver_id", driverID),
		zap.Int64("telegram_id", telegramID),
	)

	s.refresh(ctx)
	return nil
}

func (s *DriverService) refresh(ctx context.Context) {
	if s.registry == nil {
		return
	}
	if err := s.registry.Reload(ctx); err != nil {
		s.logger.Warn("Failed to reload planning after driver change", zap.Error(err))
	}
}
