package model

import "time"

type CourseStatus string

const (
	CourseStatusPending    CourseStatus = "EN_ATTENTE" // Ожидает водителя
	CourseStatusAssigned   CourseStatus = "ASSIGNEE"   // Назначена водителю
	CourseStatusInProgress CourseStatus = "EN_COURS"   // В пути
	CourseStatusCompleted  CourseStatus = "TERMINEE"   // Завершена
	CourseStatusCanceled   CourseStatus = "ANNULEE"    // Отменена
)

// IsValid проверяет что статус входит в известный набор
func (s CourseStatus) IsValid() bool {
	switch s {
	case CourseStatusPending, CourseStatusAssigned, CourseStatusInProgress,
		CourseStatusCompleted, CourseStatusCanceled:
		return true
	}
	return false
}

// IsTerminal возвращает true для TERMINEE и ANNULEE
func (s CourseStatus) IsTerminal() bool {
	return s == CourseStatusCompleted || s == CourseStatusCanceled
}

// Course поездка клиента
type Course struct {
	ID           string       `json:"id"`
	ClientID     string       `json:"client_id"`
	DriverID     *string      `json:"driver_id"` // nil - не назначена
	Origin       string       `json:"origin"`
	Destination  string       `json:"destination"`
	ScheduledAt  time.Time    `json:"scheduled_at"`
	Status       CourseStatus `json:"status"`
	Notes        string       `json:"notes"`
	PriceCents   *int64       `json:"price_cents"`
	EverAssigned bool         `json:"ever_assigned"` // водитель был назначен хотя бы раз
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	Client *Client `json:"client,omitempty"`
}

// HasDriver проверяет назначен ли водитель
func (c *Course) HasDriver() bool {
	return c.DriverID != nil && *c.DriverID != ""
}

// IsAssignedTo проверяет что курс назначен указанному водителю
func (c *Course) IsAssignedTo(driverID string) bool {
	return c.HasDriver() && *c.DriverID == driverID
}

// Clone возвращает независимую копию курса
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	cp := *c
	if c.DriverID != nil {
		id := *c.DriverID
		cp.DriverID = &id
	}
	if c.PriceCents != nil {
		p := *c.PriceCents
		cp.PriceCents = &p
	}
	if c.Client != nil {
		client := *c.Client
		cp.Client = &client
	}
	return &cp
}

// CoursePatch частичное обновление курса.
// Поле DriverID применяется только при SetDriver, поэтому nil означает снятие водителя.
type CoursePatch struct {
	SetDriver    bool
	DriverID     *string
	Status       *CourseStatus
	Origin       *string
	Destination  *string
	ScheduledAt  *time.Time
	Notes        *string
	PriceCents   *int64
	EverAssigned *bool
}

// IsEmpty проверяет что патч ничего не меняет
func (p CoursePatch) IsEmpty() bool {
	return !p.SetDriver && p.Status == nil && p.Origin == nil && p.Destination == nil &&
		p.ScheduledAt == nil && p.Notes == nil && p.PriceCents == nil && p.EverAssigned == nil
}

// Apply применяет патч к копии курса
func (p CoursePatch) Apply(c *Course) *Course {
	out := c.Clone()
	if p.SetDriver {
		if p.DriverID != nil {
			id := *p.DriverID
			out.DriverID = &id
		} else {
			out.DriverID = nil
		}
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Origin != nil {
		out.Origin = *p.Origin
	}
	if p.Destination != nil {
		out.Destination = *p.Destination
	}
	if p.ScheduledAt != nil {
		out.ScheduledAt = *p.ScheduledAt
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.PriceCents != nil {
		price := *p.PriceCents
		out.PriceCents = &price
	}
	if p.EverAssigned != nil {
		out.EverAssigned = *p.EverAssigned
	}
	return out
}

// CourseFilter фильтр выборки курсов.
// Нулевые From/To означают отсутствие ограничения.
type CourseFilter struct {
	From     time.Time
	To       time.Time
	DriverID *string
}
