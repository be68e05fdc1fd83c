package planning

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommandOptions параметры команды
type CommandOptions struct {
	ActorID int64 // telegram id инициатора, 0 - система
	Force   bool  // административное редактирование завершённых курсов
}

// Executor применяет команды к хранилищу и реестру.
// Команды одного курса выполняются строго по очереди, разных курсов - параллельно.
type Executor struct {
	registry *Registry
	store    Store
	journal  Journal
	logger   *zap.Logger
	locks    *keyedMutex
}

// NewExecutor создаёт исполнитель команд. journal может быть nil.
func NewExecutor(registry *Registry, store Store, journal Journal, logger *zap.Logger) *Executor {
	return &Executor{
		registry: registry,
		store:    store,
		journal:  journal,
		logger:   logger,
		locks:    newKeyedMutex(),
	}
}

// Assign назначает водителя курсу; driverID == nil снимает водителя.
// Статус выводится автоматически.
func (e *Executor) Assign(ctx context.Context, courseID string, driverID *string, opts CommandOptions) (*model.Course, error) {
	unlock, err := e.locks.Lock(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("wait for course %s: %w", courseID, err)
	}
	defer unlock()

	cur, _, ok := e.registry.Get(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}

	if driverID != nil {
		driver := e.registry.Driver(*driverID)
		if driver == nil {
			return nil, ErrDriverNotFound
		}
		if !driver.CanTakeCourses() {
			return nil, invalid(CodeDriverOutOfOrder, "driver %s is out of service", driver.Name)
		}
	}

	if cur.Status.IsTerminal() && !opts.Force {
		return nil, invalid(CodeTerminalCourse, "course is %s", cur.Status)
	}

	if sameDriver(cur.DriverID, driverID) {
		return cur, nil
	}

	patch := model.CoursePatch{SetDriver: true, DriverID: driverID}
	var next model.CourseStatus
	if driverID != nil {
		next = StatusAfterAssign(cur.Status)
		ever := true
		patch.EverAssigned = &ever
	} else {
		next = StatusAfterUnassign(cur.Status)
	}
	if next != cur.Status {
		patch.Status = &next
	}

	op := "assign"
	if driverID == nil {
		op = "unassign"
	}

	updated, err := e.apply(ctx, op, cur, patch)
	if err != nil {
		return nil, err
	}

	e.record(ctx, cur, updated, opts.ActorID)

	e.logger.Info("Course assignment changed",
		zap.String("course_id", courseID),
		zap.String("from_driver", driverLabel(cur.DriverID)),
		zap.String("to_driver", driverLabel(updated.DriverID)),
		zap.String("status", string(updated.Status)),
		zap.Int64("actor_id", opts.ActorID),
	)

	return updated, nil
}

// SetStatus ручная смена статуса
func (e *Executor) SetStatus(ctx context.Context, courseID string, to model.CourseStatus, opts CommandOptions) (*model.Course, error) {
	unlock, err := e.locks.Lock(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("wait for course %s: %w", courseID, err)
	}
	defer unlock()

	cur, _, ok := e.registry.Get(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}

	if err := CheckManualTransition(cur, to, opts.Force); err != nil {
		return nil, err
	}
	if cur.Status == to {
		return cur, nil
	}

	updated, err := e.apply(ctx, "set status", cur, model.CoursePatch{Status: &to})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Course status changed",
		zap.String("course_id", courseID),
		zap.String("from", string(cur.Status)),
		zap.String("to", string(updated.Status)),
		zap.Bool("forced", opts.Force),
	)

	return updated, nil
}

// Update редактирует поля курса. Водитель и статус меняются только через Assign и SetStatus.
func (e *Executor) Update(ctx context.Context, courseID string, patch model.CoursePatch, opts CommandOptions) (*model.Course, error) {
	if patch.SetDriver || patch.Status != nil || patch.EverAssigned != nil {
		return nil, invalid(CodeInvalidStatus, "driver and status are changed by dedicated commands")
	}
	if patch.Origin != nil && strings.TrimSpace(*patch.Origin) == "" {
		return nil, invalid(CodeMissingField, "origin is required")
	}
	if patch.Destination != nil && strings.TrimSpace(*patch.Destination) == "" {
		return nil, invalid(CodeMissingField, "destination is required")
	}

	unlock, err := e.locks.Lock(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("wait for course %s: %w", courseID, err)
	}
	defer unlock()

	cur, _, ok := e.registry.Get(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}
	if cur.Status.IsTerminal() && !opts.Force {
		return nil, invalid(CodeTerminalCourse, "course is %s", cur.Status)
	}
	if patch.IsEmpty() {
		return cur, nil
	}

	return e.apply(ctx, "update", cur, patch)
}

// Create создаёт курс. Если водитель указан, курс сразу ASSIGNEE.
func (e *Executor) Create(ctx context.Context, course *model.Course, opts CommandOptions) (*model.Course, error) {
	if err := validateNewCourse(course); err != nil {
		return nil, err
	}

	c := course.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.DriverID != nil && *c.DriverID == "" {
		c.DriverID = nil
	}
	if c.HasDriver() {
		driver := e.registry.Driver(*c.DriverID)
		if driver == nil {
			return nil, ErrDriverNotFound
		}
		if !driver.CanTakeCourses() {
			return nil, invalid(CodeDriverOutOfOrder, "driver %s is out of service", driver.Name)
		}
	}
	c.Status = InitialStatus(c.DriverID)
	c.EverAssigned = c.HasDriver()

	unlock, err := e.locks.Lock(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("wait for course %s: %w", c.ID, err)
	}
	defer unlock()

	ver := e.registry.Put(c)

	if err := e.store.CreateCourse(ctx, c); err != nil {
		e.rollback(ctx, c.ID, ver, nil)
		return nil, &PersistenceError{Op: "create", Err: err}
	}
	e.registry.Put(c)

	if c.HasDriver() {
		e.record(ctx, &model.Course{ID: c.ID}, c, opts.ActorID)
	}

	e.logger.Info("Course created",
		zap.String("course_id", c.ID),
		zap.Time("scheduled_at", c.ScheduledAt),
		zap.String("status", string(c.Status)),
	)

	return c.Clone(), nil
}

// Delete удаляет курс. Удаление разрешено всегда; права проверяет вызывающий.
func (e *Executor) Delete(ctx context.Context, courseID string, opts CommandOptions) error {
	unlock, err := e.locks.Lock(ctx, courseID)
	if err != nil {
		return fmt.Errorf("wait for course %s: %w", courseID, err)
	}
	defer unlock()

	prev, ver := e.registry.Remove(courseID)
	if prev == nil {
		return ErrCourseNotFound
	}

	if err := e.store.DeleteCourse(ctx, courseID); err != nil {
		e.rollback(ctx, courseID, ver, prev)
		return &PersistenceError{Op: "delete", CourseID: courseID, Err: err}
	}

	e.logger.Info("Course deleted",
		zap.String("course_id", courseID),
		zap.Int64("actor_id", opts.ActorID),
	)
	return nil
}

// apply оптимистично обновляет реестр, затем хранилище.
// При отказе хранилища реестр откатывается или сверяется с сервером.
func (e *Executor) apply(ctx context.Context, op string, cur *model.Course, patch model.CoursePatch) (*model.Course, error) {
	optimistic := patch.Apply(cur)
	optVer := e.registry.Put(optimistic)

	updated, err := e.store.UpdateCourse(ctx, cur.ID, patch)
	if err != nil {
		e.rollback(ctx, cur.ID, optVer, cur)
		return nil, &PersistenceError{Op: op, CourseID: cur.ID, Err: err}
	}
	if updated == nil {
		e.registry.Restore(cur.ID, optVer, nil)
		return nil, &PersistenceError{Op: op, CourseID: cur.ID, Err: ErrCourseNotFound}
	}

	// последний успешный ответ сервера авторитетен
	if _, now, ok := e.registry.Get(cur.ID); ok && now != optVer {
		e.logger.Warn("Course changed while update was in flight, server response wins",
			zap.String("course_id", cur.ID),
			zap.String("op", op),
		)
	}
	e.registry.Put(updated)

	return updated.Clone(), nil
}

// rollback возвращает prev, если реестр не менялся после оптимистичной записи.
// Иначе перечитывает курс из хранилища.
func (e *Executor) rollback(ctx context.Context, courseID string, optVer uint64, prev *model.Course) {
	if e.registry.Restore(courseID, optVer, prev) {
		return
	}

	fresh, err := e.store.GetCourse(ctx, courseID)
	if err != nil {
		e.logger.Error("Failed to reconcile course after rejected update",
			zap.String("course_id", courseID),
			zap.Error(err),
		)
		return
	}
	if fresh == nil {
		e.registry.Remove(courseID)
		return
	}
	e.registry.Put(fresh)
}

// record пишет событие в журнал назначений; ошибки журнала не прерывают команду
func (e *Executor) record(ctx context.Context, before, after *model.Course, actorID int64) {
	if e.journal == nil {
		return
	}
	event := &model.AssignmentEvent{
		CourseID:     after.ID,
		FromDriverID: before.DriverID,
		ToDriverID:   after.DriverID,
		Status:       after.Status,
		ActorID:      actorID,
		CreatedAt:    time.Now(),
	}
	if err := e.journal.Append(ctx, event); err != nil {
		e.logger.Warn("Failed to append assignment event",
			zap.String("course_id", after.ID),
			zap.Error(err),
		)
	}
}

func validateNewCourse(c *model.Course) error {
	if c == nil {
		return invalid(CodeMissingField, "course is required")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return invalid(CodeMissingField, "client is required")
	}
	if strings.TrimSpace(c.Origin) == "" {
		return invalid(CodeMissingField, "origin is required")
	}
	if strings.TrimSpace(c.Destination) == "" {
		return invalid(CodeMissingField, "destination is required")
	}
	if c.ScheduledAt.IsZero() {
		return invalid(CodeMissingField, "scheduled time is required")
	}
	if c.PriceCents != nil && *c.PriceCents < 0 {
		return invalid(CodeMissingField, "price must not be negative")
	}
	return nil
}

func sameDriver(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func driverLabel(id *string) string {
	if id == nil {
		return "-"
	}
	return *id
}

// keyedMutex очередь на ключ: команды одного курса выполняются в порядке поступления
type keyedMutex struct {
	mu     sync.Mutex
	queues map[string][]chan struct{}
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{queues: make(map[string][]chan struct{})}
}

// Lock ждёт своей очереди и возвращает функцию освобождения.
// При отмене ctx ожидающий покидает очередь, не задерживая следующих.
func (k *keyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	q, held := k.queues[key]
	turn := make(chan struct{})
	k.queues[key] = append(q, turn)
	k.mu.Unlock()

	release := func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		k.handOff(key)
	}

	if !held {
		return release, nil
	}

	select {
	case <-turn:
		return release, nil
	case <-ctx.Done():
		k.mu.Lock()
		defer k.mu.Unlock()

		select {
		case <-turn:
			// очередь дошла до нас одновременно с отменой
			k.handOff(key)
		default:
			k.dequeue(key, turn)
		}
		return nil, ctx.Err()
	}
}

// handOff снимает голову очереди и будит следующего. Вызывается под k.mu.
func (k *keyedMutex) handOff(key string) {
	q := k.queues[key][1:]
	if len(q) == 0 {
		delete(k.queues, key)
		return
	}
	k.queues[key] = q
	close(q[0])
}

// dequeue убирает ожидающего из очереди. Вызывается под k.mu.
func (k *keyedMutex) dequeue(key string, turn chan struct{}) {
	q := k.queues[key]
	for i, ch := range q {
		if ch == turn {
			k.queues[key] = append(q[:i:i], q[i+1:]...)
			return
		}
	}
}
