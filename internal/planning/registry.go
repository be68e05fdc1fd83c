package planning

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var errMalformed = errors.New("malformed payload")

// Snapshot полный набор курсов и водителей
type Snapshot struct {
	Courses []*model.Course
	Drivers []*model.Driver
}

type courseEntry struct {
	course  *model.Course
	version uint64
}

// Registry хранит все курсы и водителей сессии.
// Вид на день не кэшируется: Board пересчитывает его при каждом вызове.
type Registry struct {
	store  Store
	loc    *time.Location
	logger *zap.Logger

	mu         sync.RWMutex
	courses    map[string]courseEntry
	tombstones map[string]uint64 // версия удаления для отката
	drivers    map[string]*model.Driver
	seq        uint64

	reloads singleflight.Group
}

// NewRegistry создаёт пустой реестр
func NewRegistry(store Store, loc *time.Location, logger *zap.Logger) *Registry {
	if loc == nil {
		loc = time.Local
	}
	return &Registry{
		store:      store,
		loc:        loc,
		logger:     logger,
		courses:    make(map[string]courseEntry),
		tombstones: make(map[string]uint64),
		drivers:    make(map[string]*model.Driver),
	}
}

// Location часовой пояс планирования
func (r *Registry) Location() *time.Location {
	return r.loc
}

// Load загружает курсы и водителей параллельно.
// При ошибке возвращает пустые коллекции и *LoadError.
func (r *Registry) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		courses, err := r.store.ListCourses(gctx, model.CourseFilter{})
		if err != nil {
			return &LoadError{What: "courses", Err: err}
		}
		if courses == nil {
			return &LoadError{What: "courses", Err: errMalformed}
		}
		for _, c := range courses {
			if c == nil || c.ID == "" {
				return &LoadError{What: "courses", Err: errMalformed}
			}
		}
		snap.Courses = courses
		return nil
	})
	g.Go(func() error {
		drivers, err := r.store.ListDrivers(gctx)
		if err != nil {
			return &LoadError{What: "drivers", Err: err}
		}
		if drivers == nil {
			return &LoadError{What: "drivers", Err: errMalformed}
		}
		for _, d := range drivers {
			if d == nil || d.ID == "" {
				return &LoadError{What: "drivers", Err: errMalformed}
			}
		}
		snap.Drivers = drivers
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{Courses: []*model.Course{}, Drivers: []*model.Driver{}}, err
	}
	return snap, nil
}

// Reload заменяет содержимое реестра свежими данными.
// При ошибке прежнее содержимое остаётся на месте.
func (r *Registry) Reload(ctx context.Context) error {
	_, err, _ := r.reloads.Do("reload", func() (interface{}, error) {
		r.mu.RLock()
		since := r.seq
		r.mu.RUnlock()

		snap, err := r.Load(ctx)
		if err != nil {
			r.logger.Warn("Registry reload failed, keeping previous state", zap.Error(err))
			return nil, err
		}
		r.replace(snap, since)
		r.logger.Debug("Registry reloaded",
			zap.Int("courses", len(snap.Courses)),
			zap.Int("drivers", len(snap.Drivers)),
		)
		return nil, nil
	})
	return err
}

// replace подставляет снимок. Записи, изменённые командами после версии since,
// новее снимка и остаются как есть.
func (r *Registry) replace(snap Snapshot, since uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	courses := make(map[string]courseEntry, len(snap.Courses))
	tombstones := make(map[string]uint64)
	for _, c := range snap.Courses {
		r.seq++
		courses[c.ID] = courseEntry{course: c.Clone(), version: r.seq}
	}
	for id, e := range r.courses {
		if e.version > since {
			courses[id] = e
		}
	}
	for id, ver := range r.tombstones {
		if ver > since {
			delete(courses, id)
			tombstones[id] = ver
		}
	}
	r.courses = courses
	r.tombstones = tombstones

	r.drivers = make(map[string]*model.Driver, len(snap.Drivers))
	for _, d := range snap.Drivers {
		driver := *d
		r.drivers[d.ID] = &driver
	}
}

// Get возвращает копию курса и его версию
func (r *Registry) Get(id string) (*model.Course, uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.courses[id]
	if !ok {
		return nil, 0, false
	}
	return e.course.Clone(), e.version, true
}

// Put записывает курс и возвращает новую версию
func (r *Registry) Put(c *model.Course) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.courses[c.ID] = courseEntry{course: c.Clone(), version: r.seq}
	delete(r.tombstones, c.ID)
	return r.seq
}

// Remove удаляет курс; возвращает прежнее значение и версию удаления.
// Неизвестный id реестр не меняет: prev == nil.
func (r *Registry) Remove(id string) (*model.Course, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.courses[id]
	if !ok {
		return nil, r.tombstones[id]
	}

	r.seq++
	delete(r.courses, id)
	r.tombstones[id] = r.seq
	return prev.course, r.seq
}

// Restore откатывает курс к prev, только если с версии expect его никто не трогал.
// prev == nil означает что курса быть не должно.
func (r *Registry) Restore(id string, expect uint64, prev *model.Course) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.versionOf(id) != expect {
		return false
	}

	r.seq++
	if prev == nil {
		delete(r.courses, id)
		r.tombstones[id] = r.seq
		return true
	}
	r.courses[id] = courseEntry{course: prev.Clone(), version: r.seq}
	delete(r.tombstones, id)
	return true
}

func (r *Registry) versionOf(id string) uint64 {
	if e, ok := r.courses[id]; ok {
		return e.version
	}
	return r.tombstones[id]
}

// Courses возвращает копии всех курсов
func (r *Registry) Courses() []*model.Course {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Course, 0, len(r.courses))
	for _, e := range r.courses {
		out = append(out, e.course.Clone())
	}
	sortCourses(out)
	return out
}

// Driver возвращает копию водителя или nil
func (r *Registry) Driver(id string) *model.Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drivers[id]
	if !ok {
		return nil
	}
	driver := *d
	return &driver
}

// Drivers возвращает водителей, отсортированных по имени (французская сортировка)
func (r *Registry) Drivers() []*model.Driver {
	r.mu.RLock()
	out := make([]*model.Driver, 0, len(r.drivers))
	for _, d := range r.drivers {
		driver := *d
		out = append(out, &driver)
	}
	r.mu.RUnlock()

	SortDrivers(out)
	return out
}

// Board строит вид на день из полного набора курсов
func (r *Registry) Board(day time.Time, settings model.Settings, now time.Time) *Board {
	day = StartOfDay(day.In(r.loc))
	return &Board{
		Day:      day,
		Settings: settings.Normalize(),
		Courses:  FilterByDay(r.Courses(), day),
		Drivers:  r.Drivers(),
		Now:      now.In(r.loc),
	}
}

// FilterByDay оставляет курсы, запланированные в пределах дня day (границы включительно).
// Чистая функция: входной срез не меняется.
func FilterByDay(courses []*model.Course, day time.Time) []*model.Course {
	from, to := StartOfDay(day), EndOfDay(day)

	out := make([]*model.Course, 0)
	for _, c := range courses {
		if c == nil {
			continue
		}
		if c.ScheduledAt.Before(from) || c.ScheduledAt.After(to) {
			continue
		}
		out = append(out, c)
	}
	sortCourses(out)
	return out
}

func sortCourses(courses []*model.Course) {
	sort.SliceStable(courses, func(i, j int) bool {
		if !courses[i].ScheduledAt.Equal(courses[j].ScheduledAt) {
			return courses[i].ScheduledAt.Before(courses[j].ScheduledAt)
		}
		return courses[i].ID < courses[j].ID
	})
}

// SortDrivers сортирует водителей по имени с учётом французских диакритик
func SortDrivers(drivers []*model.Driver) {
	col := collate.New(language.French, collate.IgnoreCase)
	sort.SliceStable(drivers, func(i, j int) bool {
		if c := col.CompareString(drivers[i].Name, drivers[j].Name); c != 0 {
			return c < 0
		}
		return drivers[i].ID < drivers[j].ID
	})
}
