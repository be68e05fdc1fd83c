package planning

import "github.com/Freeeeeet/dispatch_bot/internal/model"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDispatcher Role = "dispatcher"
	RoleDriver     Role = "driver"
	RoleGuest      Role = "guest"
)

// Capabilities права пользователя в планировании.
// Один движок обслуживает и полную сетку диспетчера, и упрощённый вид водителя.
type Capabilities struct {
	Role     Role
	DriverID string // для RoleDriver
}

// FullGrid видит все курсы и всех водителей
func (c Capabilities) FullGrid() bool {
	return c.Role == RoleAdmin || c.Role == RoleDispatcher
}

// CanAssign может назначать и снимать водителей
func (c Capabilities) CanAssign() bool {
	return c.FullGrid()
}

// CanEditCourses может создавать, редактировать и удалять курсы
func (c Capabilities) CanEditCourses() bool {
	return c.FullGrid()
}

// CanForce административное редактирование в обход ограничений статусов
func (c Capabilities) CanForce() bool {
	return c.Role == RoleAdmin
}

// Sees курс виден пользователю
func (c Capabilities) Sees(course *model.Course) bool {
	if c.FullGrid() {
		return true
	}
	return c.Role == RoleDriver && c.DriverID != "" && course.IsAssignedTo(c.DriverID)
}

// CanSetStatus водитель может только начать или завершить свой курс
func (c Capabilities) CanSetStatus(course *model.Course, to model.CourseStatus) bool {
	if c.FullGrid() {
		return true
	}
	if !c.Sees(course) {
		return false
	}
	return to == model.CourseStatusInProgress || to == model.CourseStatusCompleted
}

// Actor пользователь, от имени которого выполняется действие
type Actor struct {
	Capabilities
	ID int64 // telegram id
}

func (a Actor) options(force bool) CommandOptions {
	return CommandOptions{ActorID: a.ID, Force: force}
}
