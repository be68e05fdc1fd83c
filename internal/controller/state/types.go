package state

import "github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/callbacktypes"

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Создание курса
	StateNewCourseClient      UserState = "new_course_client"
	StateNewCourseClientPhone UserState = "new_course_client_phone"
	StateNewCourseOrigin      UserState = "new_course_origin"
	StateNewCourseDestination UserState = "new_course_destination"
	StateNewCourseTime        UserState = "new_course_time"
	StateNewCoursePrice       UserState = "new_course_price"

	// Редактирование курса
	StateEditCourseNotes UserState = "edit_course_notes"

	// Водители
	StateNewDriverName    UserState = "new_driver_name"
	StateNewDriverVehicle UserState = "new_driver_vehicle"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]interface{} // Временные данные для текущего диалога
}

// Session состояние доски планирования
type Session = callbacktypes.Session
