package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const driverColumns = `id, name, vehicle, status, telegram_id, created_at`

type DriverRepository struct {
	*base.Repository
}

func NewDriverRepository(pool *pgxpool.Pool) *DriverRepository {
	return &DriverRepository{Repository: base.NewRepository(pool)}
}

func scanDriver(row pgx.Row) (*model.Driver, error) {
	var d model.Driver
	if err := row.Scan(&d.ID, &d.Name, &d.Vehicle, &d.Status, &d.TelegramID, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create создаёт водителя
func (r *DriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	query := `
		INSERT INTO drivers (id, name, vehicle, status, telegram_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query,
		driver.ID,
		driver.Name,
		driver.Vehicle,
		driver.Status,
		driver.TelegramID,
	).Scan(&driver.CreatedAt)
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}

	return nil
}

// List возвращает всех водителей
func (r *DriverRepository) List(ctx context.Context) ([]*model.Driver, error) {
	rows, err := r.Query(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	drivers := make([]*model.Driver, 0)
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, driver)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drivers: %w", err)
	}

	return drivers, nil
}

// GetByID получает водителя по ID
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	driver, err := scanDriver(r.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver by id: %w", err)
	}
	return driver, nil
}

// GetByTelegramID находит водителя, привязанного к Telegram аккаунту
func (r *DriverRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Driver, error) {
	driver, err := scanDriver(r.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE telegram_id = $1`, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver by telegram id: %w", err)
	}
	return driver, nil
}

// UpdateStatus меняет статус водителя
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status model.DriverStatus) error {
	query, args := base.NewUpdate("drivers").Set("status", status).Build("id", id, "")

	affected, err := r.ExecAffected(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update driver status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("driver not found")
	}
	return nil
}

// BindTelegram привязывает Telegram аккаунт к водителю; nil отвязывает
func (r *DriverRepository) BindTelegram(ctx context.Context, id string, telegramID *int64) error {
	query, args := base.NewUpdate("drivers").Set("telegram_id", telegramID).Build("id", id, "")

	affected, err := r.ExecAffected(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("bind driver telegram: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("driver not found")
	}
	return nil
}
