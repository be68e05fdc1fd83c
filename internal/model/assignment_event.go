package model

import "time"

// AssignmentEvent запись журнала назначений (только добавление)
type AssignmentEvent struct {
	ID           int64        `json:"id"`
	CourseID     string       `json:"course_id"`
	FromDriverID *string      `json:"from_driver_id"`
	ToDriverID   *string      `json:"to_driver_id"`
	Status       CourseStatus `json:"status"`
	ActorID      int64        `json:"actor_id"` // telegram id инициатора, 0 - система
	CreatedAt    time.Time    `json:"created_at"`
}
