package planning

import (
	"errors"
	"fmt"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrDriverNotFound = errors.New("driver not found")
)

// LoadError загрузка курсов/водителей не удалась или вернула некорректные данные
type LoadError struct {
	What string // "courses" | "drivers"
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.What, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ValidationCode машинно-читаемая причина отказа
type ValidationCode string

const (
	CodeSlotFull         ValidationCode = "slot_full"
	CodeIncompatibleSlot ValidationCode = "incompatible_slot"
	CodeDriverOutOfOrder ValidationCode = "driver_out_of_order"
	CodeTerminalCourse   ValidationCode = "terminal_course"
	CodeNeverAssigned    ValidationCode = "never_assigned"
	CodeInvalidStatus    ValidationCode = "invalid_status"
	CodeMissingField     ValidationCode = "missing_field"
	CodeForbidden        ValidationCode = "forbidden"
	CodeNoCompatible     ValidationCode = "no_compatible_course"
	CodeBadPayload       ValidationCode = "bad_payload"
)

// ValidationError действие нарушает предусловие; состояние не менялось
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation (%s): %s", e.Code, e.Message)
}

func invalid(code ValidationCode, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError хранилище отклонило запрос; локальное состояние откатано
type PersistenceError struct {
	Op       string
	CourseID string
	Err      error
}

func (e *PersistenceError) Error() string {
	if e.CourseID == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s course %s failed: %v", e.Op, e.CourseID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConflictError курс изменился параллельно; реестр сверен с сервером
type ConflictError struct {
	CourseID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("course %s was modified concurrently", e.CourseID)
}

// IsValidation проверяет является ли ошибка ValidationError с указанным кодом (пустой - любой)
func IsValidation(err error, code ValidationCode) bool {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	return code == "" || ve.Code == code
}
