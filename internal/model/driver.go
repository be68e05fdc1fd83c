package model

import "time"

type DriverStatus string

const (
	DriverStatusAvailable  DriverStatus = "DISPONIBLE"
	DriverStatusBusy       DriverStatus = "OCCUPE"
	DriverStatusOutOfOrder DriverStatus = "HORS_SERVICE"
)

// IsValid проверяет статус водителя
func (s DriverStatus) IsValid() bool {
	return s == DriverStatusAvailable || s == DriverStatusBusy || s == DriverStatusOutOfOrder
}

type Driver struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Vehicle    string       `json:"vehicle"` // свободное описание машины
	Status     DriverStatus `json:"status"`
	TelegramID *int64       `json:"telegram_id"` // привязка для упрощённого вида водителя
	CreatedAt  time.Time    `json:"created_at"`
}

// CanTakeCourses возвращает false для водителей HORS_SERVICE
func (d *Driver) CanTakeCourses() bool {
	return d.Status != DriverStatusOutOfOrder
}
