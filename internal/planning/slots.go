package planning

import "time"

// GenerateSlots возвращает часы сетки от opening до closing включительно.
// Некорректный диапазон заменяется на весь день 0..23.
func GenerateSlots(opening, closing int) []int {
	if opening < 0 || closing > 23 || opening > closing {
		opening, closing = 0, 23
	}

	slots := make([]int, 0, closing-opening+1)
	for h := opening; h <= closing; h++ {
		slots = append(slots, h)
	}
	return slots
}

// IsCurrentSlot true когда day - сегодня и hour - текущий час.
// Используется только для подсветки.
func IsCurrentSlot(day time.Time, hour int, now time.Time) bool {
	return SameDay(day, now) && now.Hour() == hour
}

// StartOfDay полночь дня t в его часовом поясе
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay последняя наносекунда дня t
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay сравнивает календарные дни; b приводится к поясу a
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// MinutesSinceMidnight минуты от начала дня в поясе t
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
