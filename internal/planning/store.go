package planning

import (
	"context"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
)

// Store внешнее хранилище записей, которым пользуется ядро.
// GetCourse возвращает (nil, nil) если курс не найден.
type Store interface {
	ListCourses(ctx context.Context, filter model.CourseFilter) ([]*model.Course, error)
	ListDrivers(ctx context.Context) ([]*model.Driver, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	CreateCourse(ctx context.Context, course *model.Course) error
	UpdateCourse(ctx context.Context, id string, patch model.CoursePatch) (*model.Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

// Journal журнал назначений, только добавление
type Journal interface {
	Append(ctx context.Context, event *model.AssignmentEvent) error
}
