package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `id, client_id, driver_id, origin, destination, scheduled_at, status, notes, price_cents, ever_assigned, created_at, updated_at`

type CourseRepository struct {
	*base.Repository
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{Repository: base.NewRepository(pool)}
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	var c model.Course
	err := row.Scan(
		&c.ID,
		&c.ClientID,
		&c.DriverID,
		&c.Origin,
		&c.Destination,
		&c.ScheduledAt,
		&c.Status,
		&c.Notes,
		&c.PriceCents,
		&c.EverAssigned,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create создаёт курс с заранее выбранным ID
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (id, client_id, driver_id, origin, destination, scheduled_at, status, notes, price_cents, ever_assigned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		course.ID,
		course.ClientID,
		course.DriverID,
		course.Origin,
		course.Destination,
		course.ScheduledAt,
		course.Status,
		course.Notes,
		course.PriceCents,
		course.EverAssigned,
	).Scan(&course.CreatedAt, &course.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByID получает курс по ID
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	return course, nil
}

// List возвращает курсы по фильтру, отсортированные по времени
func (r *CourseRepository) List(ctx context.Context, filter model.CourseFilter) ([]*model.Course, error) {
	var (
		where []string
		args  []interface{}
	)
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where = append(where, fmt.Sprintf("scheduled_at >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where = append(where, fmt.Sprintf("scheduled_at <= $%d", len(args)))
	}
	if filter.DriverID != nil {
		args = append(args, *filter.DriverID)
		where = append(where, fmt.Sprintf("driver_id = $%d", len(args)))
	}

	query := `SELECT ` + courseColumns + ` FROM courses`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY scheduled_at, id`

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*model.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	return courses, nil
}

// Update частично обновляет курс и возвращает строку после изменения.
// Возвращает nil, nil если курса нет.
func (r *CourseRepository) Update(ctx context.Context, id string, patch model.CoursePatch) (*model.Course, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	b := base.NewUpdate("courses")
	if patch.SetDriver {
		b.Set("driver_id", patch.DriverID)
	}
	if patch.Status != nil {
		b.Set("status", *patch.Status)
	}
	if patch.Origin != nil {
		b.Set("origin", *patch.Origin)
	}
	if patch.Destination != nil {
		b.Set("destination", *patch.Destination)
	}
	if patch.ScheduledAt != nil {
		b.Set("scheduled_at", *patch.ScheduledAt)
	}
	if patch.Notes != nil {
		b.Set("notes", *patch.Notes)
	}
	if patch.PriceCents != nil {
		b.Set("price_cents", *patch.PriceCents)
	}
	if patch.EverAssigned != nil {
		b.Set("ever_assigned", *patch.EverAssigned)
	}
	b.SetRaw("updated_at", "NOW()")

	query, args := b.Build("id", id, courseColumns)

	course, err := scanCourse(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update course: %w", err)
	}

	return course, nil
}

// Delete удаляет курс
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("course not found")
	}

	return nil
}
