package planning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testLoc = time.FixedZone("CET", 3600)

// testDay 19.10.2026 00:00
var testDay = time.Date(2026, 10, 19, 0, 0, 0, 0, testLoc)

func at(hour, minute int) time.Time {
	return testDay.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func strPtr(s string) *string { return &s }

type fakeStore struct {
	mu      sync.Mutex
	courses map[string]*model.Course
	drivers []*model.Driver

	listErr    error
	driversErr error
	updateErr  error
	createErr  error
	deleteErr  error

	// beforeUpdate вызывается до применения патча (для гонок)
	beforeUpdate func(id string)
	// afterList вызывается после чтения курсов, снимок уже собран
	afterList func()
	updates      []string
	journal      []*model.AssignmentEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{courses: make(map[string]*model.Course)}
}

func (f *fakeStore) addDriver(id, name string, status model.DriverStatus) *model.Driver {
	d := &model.Driver{ID: id, Name: name, Vehicle: "Peugeot 508", Status: status}
	f.drivers = append(f.drivers, d)
	return d
}

func (f *fakeStore) addCourse(id string, scheduled time.Time, driverID *string) *model.Course {
	c := &model.Course{
		ID:          id,
		ClientID:    "client-1",
		Origin:      "Gare de Lyon",
		Destination: "Orly",
		ScheduledAt: scheduled,
		DriverID:    driverID,
		Status:      InitialStatus(driverID),
	}
	c.EverAssigned = c.HasDriver()
	f.courses[id] = c
	return c
}

func (f *fakeStore) ListCourses(_ context.Context, filter model.CourseFilter) ([]*model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*model.Course, 0, len(f.courses))
	for _, c := range f.courses {
		if !filter.From.IsZero() && c.ScheduledAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && c.ScheduledAt.After(filter.To) {
			continue
		}
		out = append(out, c.Clone())
	}
	if f.afterList != nil {
		hook := f.afterList
		f.mu.Unlock()
		hook()
		f.mu.Lock()
	}
	return out, nil
}

func (f *fakeStore) ListDrivers(_ context.Context) ([]*model.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.driversErr != nil {
		return nil, f.driversErr
	}
	out := make([]*model.Driver, 0, len(f.drivers))
	for _, d := range f.drivers {
		driver := *d
		out = append(out, &driver)
	}
	return out, nil
}

func (f *fakeStore) GetCourse(_ context.Context, id string) (*model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

func (f *fakeStore) CreateCourse(_ context.Context, course *model.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.courses[course.ID] = course.Clone()
	return nil
}

func (f *fakeStore) UpdateCourse(_ context.Context, id string, patch model.CoursePatch) (*model.Course, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	c, ok := f.courses[id]
	if !ok {
		return nil, nil
	}
	updated := patch.Apply(c)
	updated.UpdatedAt = time.Now()
	f.courses[id] = updated
	return updated.Clone(), nil
}

func (f *fakeStore) DeleteCourse(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.courses[id]; !ok {
		return errors.New("course not found")
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeStore) Append(_ context.Context, event *model.AssignmentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.journal = append(f.journal, event)
	return nil
}

func (f *fakeStore) stored(id string) *model.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.courses[id].Clone()
}

type staticSettings model.Settings

func (s staticSettings) Settings() model.Settings { return model.Settings(s) }

type engine struct {
	store      *fakeStore
	registry   *Registry
	executor   *Executor
	controller *Controller
	admin      Actor
}

func newEngine(t *testing.T, store *fakeStore, settings model.Settings) *engine {
	t.Helper()
	logger := zap.NewNop()
	registry := NewRegistry(store, testLoc, logger)
	require.NoError(t, registry.Reload(context.Background()))
	executor := NewExecutor(registry, store, store, logger)
	controller := NewController(registry, executor, staticSettings(settings), logger).
		WithClock(func() time.Time { return at(8, 0) })
	return &engine{
		store:      store,
		registry:   registry,
		executor:   executor,
		controller: controller,
		admin:      Actor{Capabilities: Capabilities{Role: RoleAdmin}, ID: 1},
	}
}

func (e *engine) course(t *testing.T, id string) *model.Course {
	t.Helper()
	c, _, ok := e.registry.Get(id)
	require.True(t, ok, fmt.Sprintf("course %s must be in registry", id))
	return c
}
