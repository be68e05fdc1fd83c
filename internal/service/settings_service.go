package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"go.uber.org/zap"
)

type settingsRepository interface {
	Get(ctx context.Context) (*model.Settings, error)
	Save(ctx context.Context, s model.Settings) error
}

// SettingsService кэширует настройки планирования из таблицы settings.
// Пока строки нет или БД недоступна, действуют значения из конфига.
type SettingsService struct {
	repo     settingsRepository
	fallback model.Settings
	logger   *zap.Logger

	mu      sync.RWMutex
	current model.Settings
}

func NewSettingsService(repo settingsRepository, fallback model.Settings, logger *zap.Logger) *SettingsService {
	fallback = fallback.Normalize()
	return &SettingsService{
		repo:     repo,
		fallback: fallback,
		logger:   logger,
		current:  fallback,
	}
}

// Settings текущие настройки, реализует planning.SettingsProvider
func (s *SettingsService) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh перечитывает настройки. При ошибке остаются прежние.
func (s *SettingsService) Refresh(ctx context.Context) error {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("refresh settings: %w", err)
	}

	next := s.fallback
	if stored != nil {
		next = stored.Normalize()
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return nil
}

// Update сохраняет новые настройки
func (s *SettingsService) Update(ctx context.Context, next model.Settings) (model.Settings, error) {
	if next.OpeningHour < 0 || next.ClosingHour > 23 || next.OpeningHour > next.ClosingHour {
		return model.Settings{}, fmt.Errorf("%w: opening hours %d-%d", ErrInvalidInput, next.OpeningHour, next.ClosingHour)
	}
	if next.SlotCapacity <= 0 {
		return model.Settings{}, fmt.Errorf("%w: slot capacity %d", ErrInvalidInput, next.SlotCapacity)
	}
	next = next.Normalize()

	if err := s.repo.Save(ctx, next); err != nil {
		return model.Settings{}, fmt.Errorf("update settings: %w", err)
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	s.logger.Info("Planning settings updated",
		zap.Int("opening_hour", next.OpeningHour),
		zap.Int("closing_hour", next.ClosingHour),
		zap.Int("slot_capacity", next.SlotCapacity),
		zap.Int("tolerance_minutes", next.ToleranceMinutes),
		zap.String("pick_policy", string(next.PickPolicy)),
	)

	return next, nil
}
