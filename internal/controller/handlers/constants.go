package handlers

// Ограничения ввода в диалогах
const (
	// Адреса курса
	AddressMinLength = 3
	AddressMaxLength = 200

	// Клиент
	ClientNameMinLength = 2
	ClientNameMaxLength = 100
	PhoneMaxLength      = 30

	// Водитель
	DriverNameMinLength = 2
	DriverNameMaxLength = 100
	VehicleMaxLength    = 100

	// Заметки курса
	NotesMaxLength = 500

	// Сколько курсов показывать в /courses
	UpcomingLimit = 80

	// Пропуск необязательного шага
	SkipToken = "-"
)
