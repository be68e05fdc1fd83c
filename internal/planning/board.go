package planning

import (
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
)

// Board вид планирования на один день.
// Строится заново из реестра, поэтому не может рассинхронизироваться с ним.
type Board struct {
	Day      time.Time // полночь просматриваемого дня
	Settings model.Settings
	Courses  []*model.Course // курсы дня в хронологическом порядке
	Drivers  []*model.Driver
	Now      time.Time
}

// Slots часы сетки согласно настройкам
func (b *Board) Slots() []int {
	return GenerateSlots(b.Settings.OpeningHour, b.Settings.ClosingHour)
}

// IsCurrentSlot подсветка текущего часа
func (b *Board) IsCurrentSlot(hour int) bool {
	return IsCurrentSlot(b.Day, hour, b.Now)
}

// IsCompatible курс можно положить в слот hour просматриваемого дня
func (b *Board) IsCompatible(c *model.Course, hour int) bool {
	return IsCompatible(c, hour, b.Day, b.Settings.ToleranceMinutes)
}

// IsCompatible true если время курса отстоит от hour:00 не более чем на tolerance минут
// и курс приходится на день day.
func IsCompatible(c *model.Course, hour int, day time.Time, toleranceMinutes int) bool {
	if c == nil {
		return false
	}
	at := c.ScheduledAt.In(day.Location())
	if !SameDay(day, at) {
		return false
	}
	diff := MinutesSinceMidnight(at) - hour*60
	if diff < 0 {
		diff = -diff
	}
	return diff <= toleranceMinutes
}

// CoursesAt курсы водителя, запланированные ровно на час hour (отменённые не считаются)
func (b *Board) CoursesAt(driverID string, hour int) []*model.Course {
	var out []*model.Course
	for _, c := range b.Courses {
		if !c.IsAssignedTo(driverID) || c.Status == model.CourseStatusCanceled {
			continue
		}
		if c.ScheduledAt.In(b.Day.Location()).Hour() == hour {
			out = append(out, c)
		}
	}
	return out
}

// IsAvailable у водителя в слоте меньше курсов чем потолок вместимости
func (b *Board) IsAvailable(driverID string, hour int) bool {
	return len(b.CoursesAt(driverID, hour)) < b.Settings.SlotCapacity
}

// Fits курс можно поставить водителю в слот hour.
// Курс учитывается в часе своего времени, поэтому проверяется и этот час.
func (b *Board) Fits(c *model.Course, driverID string, hour int) bool {
	if c.IsAssignedTo(driverID) {
		return true
	}
	if !b.IsAvailable(driverID, hour) {
		return false
	}
	own := c.ScheduledAt.In(b.Day.Location()).Hour()
	return own == hour || b.IsAvailable(driverID, own)
}

// Unassigned курсы дня без водителя, которые ещё можно назначить
func (b *Board) Unassigned() []*model.Course {
	var out []*model.Course
	for _, c := range b.Courses {
		if !c.HasDriver() && !c.Status.IsTerminal() {
			out = append(out, c)
		}
	}
	return out
}

// CompatibleUnassigned неназначенные курсы, совместимые со слотом hour, по времени
func (b *Board) CompatibleUnassigned(hour int) []*model.Course {
	var out []*model.Course
	for _, c := range b.Unassigned() {
		if b.IsCompatible(c, hour) {
			out = append(out, c)
		}
	}
	return out
}

// Placeable совместимые неназначенные курсы, которые поместятся к водителю в слот hour
func (b *Board) Placeable(driverID string, hour int) []*model.Course {
	var out []*model.Course
	for _, c := range b.CompatibleUnassigned(hour) {
		if b.Fits(c, driverID, hour) {
			out = append(out, c)
		}
	}
	return out
}

// DriverCourses все курсы водителя за день
func (b *Board) DriverCourses(driverID string) []*model.Course {
	var out []*model.Course
	for _, c := range b.Courses {
		if c.IsAssignedTo(driverID) {
			out = append(out, c)
		}
	}
	return out
}

// Course ищет курс дня по id
func (b *Board) Course(id string) *model.Course {
	for _, c := range b.Courses {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Driver ищет водителя по id
func (b *Board) Driver(id string) *model.Driver {
	for _, d := range b.Drivers {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Restrict оставляет только то, что видно с данными правами
func (b *Board) Restrict(caps Capabilities) *Board {
	if caps.FullGrid() {
		return b
	}
	out := *b
	out.Courses = nil
	for _, c := range b.Courses {
		if caps.Sees(c) {
			out.Courses = append(out.Courses, c)
		}
	}
	out.Drivers = nil
	if d := b.Driver(caps.DriverID); d != nil {
		out.Drivers = []*model.Driver{d}
	}
	return &out
}
