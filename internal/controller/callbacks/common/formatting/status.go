package formatting

import "github.com/Freeeeeet/dispatch_bot/internal/model"

// StatusDisplay emoji и подпись статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetCourseStatusDisplay возвращает emoji и текст для статуса курса
func GetCourseStatusDisplay(status model.CourseStatus) StatusDisplay {
	displays := map[model.CourseStatus]StatusDisplay{
		model.CourseStatusPending:    {"🟡", "En attente"},
		model.CourseStatusAssigned:   {"🔵", "Assignée"},
		model.CourseStatusInProgress: {"🟢", "En cours"},
		model.CourseStatusCompleted:  {"⚪️", "Terminée"},
		model.CourseStatusCanceled:   {"⚫️", "Annulée"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Inconnu"}
}

// GetDriverStatusDisplay возвращает emoji и текст для статуса водителя
func GetDriverStatusDisplay(status model.DriverStatus) StatusDisplay {
	switch status {
	case model.DriverStatusAvailable:
		return StatusDisplay{"🟢", "Disponible"}
	case model.DriverStatusBusy:
		return StatusDisplay{"🟠", "Occupé"}
	case model.DriverStatusOutOfOrder:
		return StatusDisplay{"🔴", "Hors service"}
	default:
		return StatusDisplay{"❓", "Inconnu"}
	}
}
