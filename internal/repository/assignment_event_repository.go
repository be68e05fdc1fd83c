package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentEventRepository журнал назначений: только вставка и чтение
type AssignmentEventRepository struct {
	pool *pgxpool.Pool
}

func NewAssignmentEventRepository(pool *pgxpool.Pool) *AssignmentEventRepository {
	return &AssignmentEventRepository{pool: pool}
}

// Append добавляет событие в журнал
func (r *AssignmentEventRepository) Append(ctx context.Context, event *model.AssignmentEvent) error {
	query := `
		INSERT INTO assignment_events (course_id, from_driver_id, to_driver_id, status, actor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		event.CourseID,
		event.FromDriverID,
		event.ToDriverID,
		event.Status,
		event.ActorID,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("append assignment event: %w", err)
	}

	return nil
}

// ListByCourse возвращает историю назначений курса, старые события первыми
func (r *AssignmentEventRepository) ListByCourse(ctx context.Context, courseID string) ([]*model.AssignmentEvent, error) {
	query := `
		SELECT id, course_id, from_driver_id, to_driver_id, status, actor_id, created_at
		FROM assignment_events
		WHERE course_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list assignment events: %w", err)
	}
	defer rows.Close()

	var events []*model.AssignmentEvent
	for rows.Next() {
		var e model.AssignmentEvent
		err := rows.Scan(
			&e.ID,
			&e.CourseID,
			&e.FromDriverID,
			&e.ToDriverID,
			&e.Status,
			&e.ActorID,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan assignment event: %w", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignment events: %w", err)
	}

	return events, nil
}
