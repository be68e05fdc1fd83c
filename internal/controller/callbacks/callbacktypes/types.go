package callbacktypes

import (
	"context"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/Freeeeeet/dispatch_bot/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

// Session состояние доски планирования пользователя.
// Живёт отдельно от диалогов: /cancel не сбрасывает выбранный день.
type Session struct {
	Day     time.Time // просматриваемый день, нулевой - сегодня
	Focus   string    // водитель, чья строка часов раскрыта
	Gesture planning.Gesture

	Pending    *planning.Reassignment // переназначение ждёт подтверждения
	Candidates []string               // курсы для выбора после клика по слоту
	PickSlot   planning.DropTarget
}

// StateManager интерфейс для управления состоянием пользователей
type StateManager interface {
	ClearState(telegramID int64)
	GetState(telegramID int64) UserState
	SetState(telegramID int64, state UserState)
	SetData(telegramID int64, key string, value interface{})
	GetData(telegramID int64, key string) (interface{}, bool)
	GetAllData(telegramID int64) map[string]interface{}

	// WithSession выполняет fn под блокировкой сессии пользователя
	WithSession(telegramID int64, fn func(s *Session))
}

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService     *service.UserService
	PlanningService *service.PlanningService
	ClientService   *service.ClientService
	DriverService   *service.DriverService
	StateManager    StateManager
	Logger          *zap.Logger

	// Функции-хэндлеры из основного контроллера
	SendImage      func(ctx context.Context, b *bot.Bot, chatID int64, actor planning.Actor)
	StartNewCourse func(ctx context.Context, b *bot.Bot, chatID, telegramID int64)
}
