package model

import "time"

// User пользователь бота (диспетчер или водитель)
type User struct {
	ID           int64     `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	LanguageCode string    `json:"language_code"`
	IsDispatcher bool      `json:"is_dispatcher"` // выдаётся администратором
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName имя для сообщений
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		if u.LastName != "" {
			return u.FirstName + " " + u.LastName
		}
		return u.FirstName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "?"
}
