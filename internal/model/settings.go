package model

// PickPolicy определяет что делать при клике на слот с несколькими совместимыми курсами
type PickPolicy string

const (
	PickEarliest PickPolicy = "earliest" // берём самый ранний курс
	PickPicker   PickPolicy = "picker"   // показываем выбор
)

// Значения по умолчанию
const (
	DefaultOpeningHour      = 0
	DefaultClosingHour      = 23
	DefaultSlotCapacity     = 3
	DefaultToleranceMinutes = 30
)

// Settings настройки планирования
type Settings struct {
	OpeningHour      int        `json:"opening_hour"`
	ClosingHour      int        `json:"closing_hour"`
	SlotCapacity     int        `json:"slot_capacity"`
	ToleranceMinutes int        `json:"tolerance_minutes"`
	PickPolicy       PickPolicy `json:"pick_policy"`
}

// DefaultSettings возвращает настройки по умолчанию
func DefaultSettings() Settings {
	return Settings{
		OpeningHour:      DefaultOpeningHour,
		ClosingHour:      DefaultClosingHour,
		SlotCapacity:     DefaultSlotCapacity,
		ToleranceMinutes: DefaultToleranceMinutes,
		PickPolicy:       PickEarliest,
	}
}

// Normalize заменяет некорректные значения дефолтными
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if s.OpeningHour < 0 || s.OpeningHour > 23 || s.ClosingHour < 0 || s.ClosingHour > 23 || s.OpeningHour > s.ClosingHour {
		s.OpeningHour, s.ClosingHour = d.OpeningHour, d.ClosingHour
	}
	if s.SlotCapacity <= 0 {
		s.SlotCapacity = d.SlotCapacity
	}
	if s.ToleranceMinutes < 0 {
		s.ToleranceMinutes = d.ToleranceMinutes
	}
	if s.PickPolicy != PickEarliest && s.PickPolicy != PickPicker {
		s.PickPolicy = d.PickPolicy
	}
	return s
}
