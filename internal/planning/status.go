package planning

import (
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
)

// InitialStatus статус нового курса: ASSIGNEE если водитель указан сразу
func InitialStatus(driverID *string) model.CourseStatus {
	if driverID != nil && *driverID != "" {
		return model.CourseStatusAssigned
	}
	return model.CourseStatusPending
}

// StatusAfterAssign EN_ATTENTE -> ASSIGNEE, остальные статусы не меняются
func StatusAfterAssign(s model.CourseStatus) model.CourseStatus {
	if s == model.CourseStatusPending {
		return model.CourseStatusAssigned
	}
	return s
}

// StatusAfterUnassign ASSIGNEE -> EN_ATTENTE, остальные статусы не меняются
func StatusAfterUnassign(s model.CourseStatus) model.CourseStatus {
	if s == model.CourseStatusAssigned {
		return model.CourseStatusPending
	}
	return s
}

// CheckManualTransition проверяет ручную смену статуса.
// force - административное редактирование, снимает все ограничения кроме неизвестного статуса.
func CheckManualTransition(c *model.Course, to model.CourseStatus, force bool) error {
	if !to.IsValid() {
		return invalid(CodeInvalidStatus, "unknown status %q", to)
	}
	if force || c.Status == to {
		return nil
	}
	if c.Status.IsTerminal() {
		return invalid(CodeTerminalCourse, "course is %s", c.Status)
	}

	switch to {
	case model.CourseStatusCompleted, model.CourseStatusCanceled:
		if !c.HasDriver() && !c.EverAssigned {
			return invalid(CodeNeverAssigned, "course never had a driver")
		}
	case model.CourseStatusAssigned, model.CourseStatusInProgress:
		if !c.HasDriver() {
			return invalid(CodeInvalidStatus, "%s requires a driver", to)
		}
	case model.CourseStatusPending:
		if c.HasDriver() {
			return invalid(CodeInvalidStatus, "%s requires no driver", to)
		}
	}
	return nil
}

// DisplayStatus статус для живых экранов. Хранимый статус не меняется.
func DisplayStatus(c *model.Course, now time.Time) model.CourseStatus {
	at := c.ScheduledAt.In(now.Location())

	if c.Status == model.CourseStatusCompleted && at.After(now) {
		if c.HasDriver() {
			return model.CourseStatusAssigned
		}
		return model.CourseStatusPending
	}

	if c.Status == model.CourseStatusAssigned {
		hourStart := time.Date(at.Year(), at.Month(), at.Day(), at.Hour(), 0, 0, 0, at.Location())
		if !now.Before(hourStart) && now.Before(hourStart.Add(time.Hour)) {
			return model.CourseStatusInProgress
		}
	}
	return c.Status
}
