package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get читает настройки планирования. Возвращает nil, nil если строки ещё нет.
func (r *SettingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	query := `
		SELECT opening_hour, closing_hour, slot_capacity, tolerance_minutes, pick_policy
		FROM settings
		WHERE id = 1
	`

	var s model.Settings
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.OpeningHour,
		&s.ClosingHour,
		&s.SlotCapacity,
		&s.ToleranceMinutes,
		&s.PickPolicy,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return &s, nil
}

// Save сохраняет настройки (upsert единственной строки)
func (r *SettingsRepository) Save(ctx context.Context, s model.Settings) error {
	query := `
		INSERT INTO settings (id, opening_hour, closing_hour, slot_capacity, tolerance_minutes, pick_policy)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			opening_hour = EXCLUDED.opening_hour,
			closing_hour = EXCLUDED.closing_hour,
			slot_capacity = EXCLUDED.slot_capacity,
			tolerance_minutes = EXCLUDED.tolerance_minutes,
			pick_policy = EXCLUDED.pick_policy,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		s.OpeningHour,
		s.ClosingHour,
		s.SlotCapacity,
		s.ToleranceMinutes,
		s.PickPolicy,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}
