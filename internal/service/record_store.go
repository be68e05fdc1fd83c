package service

import (
	"context"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
)

type courseRepository interface {
	List(ctx context.Context, filter model.CourseFilter) ([]*model.Course, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, id string, patch model.CoursePatch) (*model.Course, error)
	Delete(ctx context.Context, id string) error
}

type driverRepository interface {
	List(ctx context.Context) ([]*model.Driver, error)
	GetByID(ctx context.Context, id string) (*model.Driver, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Driver, error)
	Create(ctx context.Context, driver *model.Driver) error
	UpdateStatus(ctx context.Context, id string, status model.DriverStatus) error
	BindTelegram(ctx context.Context, id string, telegramID *int64) error
}

type eventRepository interface {
	Append(ctx context.Context, event *model.AssignmentEvent) error
	ListByCourse(ctx context.Context, courseID string) ([]*model.AssignmentEvent, error)
}

// recordStore отдаёт репозитории движку планирования как planning.Store
type recordStore struct {
	courses courseRepository
	drivers driverRepository
}

func (s *recordStore) ListCourses(ctx context.Context, filter model.CourseFilter) ([]*model.Course, error) {
	return s.courses.List(ctx, filter)
}

func (s *recordStore) ListDrivers(ctx context.Context) ([]*model.Driver, error) {
	return s.drivers.List(ctx)
}

func (s *recordStore) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	return s.courses.GetByID(ctx, id)
}

func (s *recordStore) CreateCourse(ctx context.Context, course *model.Course) error {
	return s.courses.Create(ctx, course)
}

func (s *recordStore) UpdateCourse(ctx context.Context, id string, patch model.CoursePatch) (*model.Course, error) {
	return s.courses.Update(ctx, id, patch)
}

func (s *recordStore) DeleteCourse(ctx context.Context, id string) error {
	return s.courses.Delete(ctx, id)
}
