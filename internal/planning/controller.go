package planning

import (
	"context"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"go.uber.org/zap"
)

// OutcomeKind результат жеста
type OutcomeKind int

const (
	OutcomeNoop OutcomeKind = iota
	OutcomeAssigned
	OutcomeUnassigned
	OutcomeNeedsConfirmation // переназначение ждёт подтверждения
	OutcomeChoose            // несколько совместимых курсов, нужен выбор
)

// Outcome что произошло после жеста
type Outcome struct {
	Kind         OutcomeKind
	Course       *model.Course
	Reassignment *Reassignment
	Candidates   []*model.Course
}

// Reassignment отложенное переназначение курса другому водителю
type Reassignment struct {
	Day          time.Time
	CourseID     string
	FromDriverID string
	ToDriverID   string
	Hour         int
}

// SettingsProvider источник актуальных настроек планирования
type SettingsProvider interface {
	Settings() model.Settings
}

// Controller превращает жесты пользователя в проверенные команды
type Controller struct {
	registry *Registry
	executor *Executor
	settings SettingsProvider
	now      func() time.Time
	logger   *zap.Logger
}

// NewController создаёт контроллер жестов
func NewController(registry *Registry, executor *Executor, settings SettingsProvider, logger *zap.Logger) *Controller {
	return &Controller{
		registry: registry,
		executor: executor,
		settings: settings,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock подменяет часы (для тестов и CLI)
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Board вид на день с учётом прав пользователя
func (c *Controller) Board(day time.Time, caps Capabilities) *Board {
	return c.registry.Board(day, c.settings.Settings(), c.now()).Restrict(caps)
}

// Now текущее время в поясе планирования
func (c *Controller) Now() time.Time {
	return c.now().In(c.registry.Location())
}

// Today полночь текущего дня в поясе планирования
func (c *Controller) Today() time.Time {
	return StartOfDay(c.now().In(c.registry.Location()))
}

// Drop завершает перетаскивание. Жест сбрасывается в любом случае.
func (c *Controller) Drop(ctx context.Context, actor Actor, g *Gesture, target *DropTarget) (Outcome, error) {
	defer g.Reset()

	if target == nil || !g.Active() {
		return Outcome{Kind: OutcomeNoop}, nil
	}
	if !actor.CanAssign() {
		return Outcome{}, invalid(CodeForbidden, "role %s cannot assign courses", actor.Role)
	}

	course, _, ok := c.registry.Get(g.Source.CourseID)
	if !ok {
		return Outcome{}, ErrCourseNotFound
	}

	c.logger.Debug("Drop",
		zap.String("course_id", course.ID),
		zap.String("source", string(g.Source.Kind)),
		zap.Stringer("target", *target),
		zap.Int64("actor_id", actor.ID),
	)

	if target.Kind == TargetUnassigned {
		if !course.HasDriver() {
			return Outcome{Kind: OutcomeNoop, Course: course}, nil
		}
		updated, err := c.executor.Assign(ctx, course.ID, nil, actor.options(false))
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeUnassigned, Course: updated}, nil
	}

	// сдвиг по времени внутри строки того же водителя не поддерживается
	if course.IsAssignedTo(target.DriverID) {
		return Outcome{Kind: OutcomeNoop, Course: course}, nil
	}

	board := c.registry.Board(g.Day, c.settings.Settings(), c.now())
	if err := c.checkSlot(board, course, target.DriverID, target.Hour); err != nil {
		return Outcome{}, err
	}

	if course.HasDriver() {
		return Outcome{
			Kind:   OutcomeNeedsConfirmation,
			Course: course,
			Reassignment: &Reassignment{
				Day:          board.Day,
				CourseID:     course.ID,
				FromDriverID: *course.DriverID,
				ToDriverID:   target.DriverID,
				Hour:         target.Hour,
			},
		}, nil
	}

	return c.assign(ctx, actor, course.ID, target.DriverID)
}

// Confirm выполняет переназначение после явного подтверждения.
// Если курс успели переназначить кому-то ещё, возвращает ConflictError.
func (c *Controller) Confirm(ctx context.Context, actor Actor, r Reassignment) (Outcome, error) {
	if !actor.CanAssign() {
		return Outcome{}, invalid(CodeForbidden, "role %s cannot assign courses", actor.Role)
	}

	course, _, ok := c.registry.Get(r.CourseID)
	if !ok {
		return Outcome{}, ErrCourseNotFound
	}
	if course.IsAssignedTo(r.ToDriverID) {
		return Outcome{Kind: OutcomeNoop, Course: course}, nil
	}
	if course.HasDriver() && *course.DriverID != r.FromDriverID {
		return Outcome{}, &ConflictError{CourseID: course.ID}
	}

	board := c.registry.Board(r.Day, c.settings.Settings(), c.now())
	if err := c.checkSlot(board, course, r.ToDriverID, r.Hour); err != nil {
		return Outcome{}, err
	}

	return c.assign(ctx, actor, course.ID, r.ToDriverID)
}

// ClickSlot клик по подсказке "+N" на слоте водителя.
// Один совместимый курс назначается сразу; при нескольких решает PickPolicy.
func (c *Controller) ClickSlot(ctx context.Context, actor Actor, day time.Time, driverID string, hour int) (Outcome, error) {
	if !actor.CanAssign() {
		return Outcome{}, invalid(CodeForbidden, "role %s cannot assign courses", actor.Role)
	}

	settings := c.settings.Settings()
	board := c.registry.Board(day, settings, c.now())

	candidates := board.CompatibleUnassigned(hour)
	if len(candidates) == 0 {
		return Outcome{}, invalid(CodeNoCompatible, "no unassigned course fits %02d:00", hour)
	}
	if placeable := board.Placeable(driverID, hour); len(placeable) > 0 {
		candidates = placeable
	}
	if err := c.checkSlot(board, candidates[0], driverID, hour); err != nil {
		return Outcome{}, err
	}

	if len(candidates) > 1 && board.Settings.PickPolicy == model.PickPicker {
		return Outcome{Kind: OutcomeChoose, Candidates: candidates}, nil
	}

	return c.assign(ctx, actor, candidates[0].ID, driverID)
}

// Pick назначает курс, выбранный из списка кандидатов
func (c *Controller) Pick(ctx context.Context, actor Actor, day time.Time, driverID string, hour int, courseID string) (Outcome, error) {
	if !actor.CanAssign() {
		return Outcome{}, invalid(CodeForbidden, "role %s cannot assign courses", actor.Role)
	}

	board := c.registry.Board(day, c.settings.Settings(), c.now())
	var course *model.Course
	for _, candidate := range board.CompatibleUnassigned(hour) {
		if candidate.ID == courseID {
			course = candidate
			break
		}
	}
	if course == nil {
		return Outcome{}, invalid(CodeIncompatibleSlot, "course is no longer available for %02d:00", hour)
	}
	if err := c.checkSlot(board, course, driverID, hour); err != nil {
		return Outcome{}, err
	}

	return c.assign(ctx, actor, course.ID, driverID)
}

// SetStatus ручная смена статуса с учётом прав. force доступен только администратору.
func (c *Controller) SetStatus(ctx context.Context, actor Actor, courseID string, to model.CourseStatus, force bool) (*model.Course, error) {
	course, _, ok := c.registry.Get(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}
	if !actor.CanSetStatus(course, to) {
		return nil, invalid(CodeForbidden, "role %s cannot set %s", actor.Role, to)
	}
	if force && !actor.CanForce() {
		return nil, invalid(CodeForbidden, "role %s cannot override status rules", actor.Role)
	}
	return c.executor.SetStatus(ctx, courseID, to, actor.options(force))
}

func (c *Controller) assign(ctx context.Context, actor Actor, courseID, driverID string) (Outcome, error) {
	updated, err := c.executor.Assign(ctx, courseID, &driverID, actor.options(false))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: OutcomeAssigned, Course: updated}, nil
}

// checkSlot водитель существует и работает, курс подходит к слоту и слот не переполнен
func (c *Controller) checkSlot(board *Board, course *model.Course, driverID string, hour int) error {
	driver := board.Driver(driverID)
	if driver == nil {
		return ErrDriverNotFound
	}
	if !driver.CanTakeCourses() {
		return invalid(CodeDriverOutOfOrder, "driver %s is out of service", driver.Name)
	}
	if course.Status.IsTerminal() {
		return invalid(CodeTerminalCourse, "course is %s", course.Status)
	}
	if !board.IsCompatible(course, hour) {
		return invalid(CodeIncompatibleSlot, "course at %s does not fit %02d:00",
			course.ScheduledAt.In(board.Day.Location()).Format("15:04"), hour)
	}
	if !board.Fits(course, driverID, hour) {
		return invalid(CodeSlotFull, "driver %s has no room for a course at %s (capacity %d per hour)",
			driver.Name, course.ScheduledAt.In(board.Day.Location()).Format("15:04"), board.Settings.SlotCapacity)
	}
	return nil
}
