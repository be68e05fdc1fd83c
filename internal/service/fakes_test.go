package service

import (
	"context"
	"sort"
	"sync"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
)

type memUsers struct {
	mu    sync.Mutex
	users map[int64]*model.User
	seq   int64
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[int64]*model.User)}
}

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	user.ID = m.seq
	cp := *user
	m.users[user.TelegramID] = &cp
	return nil
}

func (m *memUsers) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[telegramID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.TelegramID] = &cp
	return nil
}

func (m *memUsers) SetDispatcher(_ context.Context, telegramID int64, isDispatcher bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[telegramID].IsDispatcher = isDispatcher
	return nil
}

type memDrivers struct {
	mu      sync.Mutex
	drivers map[string]*model.Driver
}

func newMemDrivers(drivers ...*model.Driver) *memDrivers {
	m := &memDrivers{drivers: make(map[string]*model.Driver)}
	for _, d := range drivers {
		m.drivers[d.ID] = d
	}
	return m
}

func (m *memDrivers) List(_ context.Context) ([]*model.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memDrivers) GetByID(_ context.Context, id string) (*model.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memDrivers) GetByTelegramID(_ context.Context, telegramID int64) (*model.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drivers {
		if d.TelegramID != nil && *d.TelegramID == telegramID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDrivers) Create(_ context.Context, driver *model.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *driver
	m.drivers[driver.ID] = &cp
	return nil
}

func (m *memDrivers) UpdateStatus(_ context.Context, id string, status model.DriverStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[id].Status = status
	return nil
}

func (m *memDrivers) BindTelegram(_ context.Context, id string, telegramID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[id].TelegramID = telegramID
	return nil
}

type memCourses struct {
	mu      sync.Mutex
	courses map[string]*model.Course
}

func newMemCourses(courses ...*model.Course) *memCourses {
	m := &memCourses{courses: make(map[string]*model.Course)}
	for _, c := range courses {
		m.courses[c.ID] = c
	}
	return m
}

func (m *memCourses) List(_ context.Context, _ model.CourseFilter) ([]*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (m *memCourses) GetByID(_ context.Context, id string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.courses[id].Clone(), nil
}

func (m *memCourses) Create(_ context.Context, course *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[course.ID] = course.Clone()
	return nil
}

func (m *memCourses) Update(_ context.Context, id string, patch model.CoursePatch) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, nil
	}
	m.courses[id] = patch.Apply(c)
	return m.courses[id].Clone(), nil
}

func (m *memCourses) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.courses, id)
	return nil
}

type memEvents struct {
	mu     sync.Mutex
	events []*model.AssignmentEvent
}

func (m *memEvents) Append(_ context.Context, event *model.AssignmentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = int64(len(m.events) + 1)
	m.events = append(m.events, event)
	return nil
}

func (m *memEvents) ListByCourse(_ context.Context, courseID string) ([]*model.AssignmentEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AssignmentEvent
	for _, e := range m.events {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memSettings struct {
	stored *model.Settings
	err    error
}

func (m *memSettings) Get(_ context.Context) (*model.Settings, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stored, nil
}

func (m *memSettings) Save(_ context.Context, s model.Settings) error {
	if m.err != nil {
		return m.err
	}
	m.stored = &s
	return nil
}

type memClients struct {
	clients []*model.Client
}

func (m *memClients) Create(_ context.Context, client *model.Client) error {
	m.clients = append(m.clients, client)
	return nil
}

func (m *memClients) GetByID(_ context.Context, id string) (*model.Client, error) {
	for _, c := range m.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memClients) List(_ context.Context) ([]*model.Client, error) {
	return append([]*model.Client(nil), m.clients...), nil
}
