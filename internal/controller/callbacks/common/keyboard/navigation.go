package keyboard

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// BackButton создаёт кнопку "Retour"
func BackButton(callbackData string) models.InlineKeyboardButton {
	return Button("⬅️ Retour", callbackData)
}

// BackToBoardButton возвращает на доску планирования
func BackToBoardButton() models.InlineKeyboardButton {
	return Button("📋 Planning", "board")
}

// CancelButton создаёт кнопку "Annuler"
func CancelButton(callbackData string) models.InlineKeyboardButton {
	return Button("❌ Annuler", callbackData)
}

// ConfirmButton создаёт кнопку "Confirmer"
func ConfirmButton(callbackData string) models.InlineKeyboardButton {
	return Button("✅ Confirmer", callbackData)
}

// ConfirmCancelButtons создаёт ряд с кнопками Confirmer/Annuler
func ConfirmCancelButtons(confirmCallback, cancelCallback string) [][]models.InlineKeyboardButton {
	return [][]models.InlineKeyboardButton{
		{
			ConfirmButton(confirmCallback),
			CancelButton(cancelCallback),
		},
	}
}

// DeleteButton создаёт кнопку "Supprimer"
func DeleteButton(callbackData string) models.InlineKeyboardButton {
	return Button("🗑 Supprimer", callbackData)
}

// DayButtons ряд навигации по дням: вчера, сегодня, завтра
func DayButtons(day, today time.Time) []models.InlineKeyboardButton {
	const layout = "2006-01-02"
	return []models.InlineKeyboardButton{
		Button("◀️", "day:"+day.AddDate(0, 0, -1).Format(layout)),
		Button("📅 Aujourd'hui", "day:"+today.Format(layout)),
		Button("▶️", "day:"+day.AddDate(0, 0, 1).Format(layout)),
	}
}

// AddBackToBoardButton добавляет кнопку возврата к доске
func (b *Builder) AddBackToBoardButton() *Builder {
	return b.Row(BackToBoardButton())
}
