package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PlanningService связывает движок планирования с базой
type PlanningService struct {
	registry   *planning.Registry
	executor   *planning.Executor
	controller *planning.Controller
	settings   *SettingsService
	events     eventRepository
	logger     *zap.Logger
}

func NewPlanningService(
	courses courseRepository,
	drivers driverRepository,
	events eventRepository,
	settings *SettingsService,
	loc *time.Location,
	logger *zap.Logger,
) *PlanningService {
	store := &recordStore{courses: courses, drivers: drivers}
	registry := planning.NewRegistry(store, loc, logger)
	executor := planning.NewExecutor(registry, store, events, logger)

	return &PlanningService{
		registry:   registry,
		executor:   executor,
		controller: planning.NewController(registry, executor, settings, logger),
		settings:   settings,
		events:     events,
		logger:     logger,
	}
}

// WithClock подменяет часы контроллера
func (s *PlanningService) WithClock(now func() time.Time) *PlanningService {
	s.controller.WithClock(now)
	return s
}

// Reload перечитывает курсы, водителей и настройки.
// Ошибка настроек не мешает обновлению реестра.
func (s *PlanningService) Reload(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		if err := s.settings.Refresh(ctx); err != nil {
			s.logger.Warn("Failed to refresh settings, keeping current", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		return s.registry.Reload(ctx)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reload planning: %w", err)
	}
	return nil
}

// Location часовой пояс планирования
func (s *PlanningService) Location() *time.Location {
	return s.registry.Location()
}

// Settings текущие настройки
func (s *PlanningService) Settings() model.Settings {
	return s.settings.Settings()
}

// UpdateSettings меняет настройки; только администратор
func (s *PlanningService) UpdateSettings(ctx context.Context, actor planning.Actor, next model.Settings) (model.Settings, error) {
	if !actor.CanForce() {
		return model.Settings{}, ErrForbidden
	}
	return s.settings.Update(ctx, next)
}

// Now текущее время в поясе планирования
func (s *PlanningService) Now() time.Time {
	return s.controller.Now()
}

// Today полночь сегодняшнего дня
func (s *PlanningService) Today() time.Time {
	return s.controller.Today()
}

// Board вид на день для пользователя
func (s *PlanningService) Board(day time.Time, actor planning.Actor) *planning.Board {
	return s.controller.Board(day, actor.Capabilities)
}

// Drivers все водители
func (s *PlanningService) Drivers() []*model.Driver {
	return s.registry.Drivers()
}

// Course курс из реестра с учётом видимости
func (s *PlanningService) Course(actor planning.Actor, id string) (*model.Course, error) {
	c, _, ok := s.registry.Get(id)
	if !ok || !actor.Sees(c) {
		return nil, planning.ErrCourseNotFound
	}
	return c, nil
}

// Upcoming курсы пользователя начиная с from, не больше limit
func (s *PlanningService) Upcoming(actor planning.Actor, from time.Time, limit int) []*model.Course {
	var out []*model.Course
	for _, c := range s.registry.Courses() {
		if c.ScheduledAt.Before(from) || c.Status.IsTerminal() || !actor.Sees(c) {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (s *PlanningService) Drop(ctx context.Context, actor planning.Actor, g *planning.Gesture, target *planning.DropTarget) (planning.Outcome, error) {
	return s.controller.Drop(ctx, actor, g, target)
}

func (s *PlanningService) Confirm(ctx context.Context, actor planning.Actor, r planning.Reassignment) (planning.Outcome, error) {
	return s.controller.Confirm(ctx, actor, r)
}

func (s *PlanningService) ClickSlot(ctx context.Context, actor planning.Actor, day time.Time, driverID string, hour int) (planning.Outcome, error) {
	return s.controller.ClickSlot(ctx, actor, day, driverID, hour)
}

func (s *PlanningService) Pick(ctx context.Context, actor planning.Actor, day time.Time, driverID string, hour int, courseID string) (planning.Outcome, error) {
	return s.controller.Pick(ctx, actor, day, driverID, hour, courseID)
}

func (s *PlanningService) SetStatus(ctx context.Context, actor planning.Actor, courseID string, to model.CourseStatus, force bool) (*model.Course, error) {
	return s.controller.SetStatus(ctx, actor, courseID, to, force)
}

// Assign прямое назначение без проверки слота (CLI, карточка курса).
// driverID == nil снимает водителя.
func (s *PlanningService) Assign(ctx context.Context, actor planning.Actor, courseID string, driverID *string) (*model.Course, error) {
	if !actor.CanAssign() {
		return nil, ErrForbidden
	}
	return s.executor.Assign(ctx, courseID, driverID, planning.CommandOptions{ActorID: actor.ID, Force: actor.CanForce()})
}

// CreateCourse создаёт курс
func (s *PlanningService) CreateCourse(ctx context.Context, actor planning.Actor, course *model.Course) (*model.Course, error) {
	if !actor.CanEditCourses() {
		return nil, ErrForbidden
	}
	return s.executor.Create(ctx, course, planning.CommandOptions{ActorID: actor.ID})
}

// UpdateCourse редактирует поля курса
func (s *PlanningService) UpdateCourse(ctx context.Context, actor planning.Actor, courseID string, patch model.CoursePatch) (*model.Course, error) {
	if !actor.CanEditCourses() {
		return nil, ErrForbidden
	}
	return s.executor.Update(ctx, courseID, patch, planning.CommandOptions{ActorID: actor.ID, Force: actor.CanForce()})
}

// DeleteCourse удаляет курс
func (s *PlanningService) DeleteCourse(ctx context.Context, actor planning.Actor, courseID string) error {
	if !actor.CanEditCourses() {
		return ErrForbidden
	}
	return s.executor.Delete(ctx, courseID, planning.CommandOptions{ActorID: actor.ID})
}

// History журнал назначений курса
func (s *PlanningService) History(ctx context.Context, actor planning.Actor, courseID string) ([]*model.AssignmentEvent, error) {
	if _, err := s.Course(actor, courseID); err != nil {
		return nil, err
	}
	events, err := s.events.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course history: %w", err)
	}
	return events, nil
}
