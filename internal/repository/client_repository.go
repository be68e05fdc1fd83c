package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// Create создаёт клиента
func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	query := `
		INSERT INTO clients (id, name, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		client.ID,
		client.Name,
		client.Phone,
		client.Email,
	).Scan(&client.CreatedAt)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	return nil
}

// GetByID получает клиента по ID
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*model.Client, error) {
	query := `
		SELECT id, name, phone, email, created_at
		FROM clients
		WHERE id = $1
	`

	var client model.Client
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.Phone,
		&client.Email,
		&client.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by id: %w", err)
	}

	return &client, nil
}

// List возвращает всех клиентов
func (r *ClientRepository) List(ctx context.Context) ([]*model.Client, error) {
	query := `
		SELECT id, name, phone, email, created_at
		FROM clients
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []*model.Client
	for rows.Next() {
		var client model.Client
		err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.Phone,
			&client.Email,
			&client.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, &client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	return clients, nil
}
