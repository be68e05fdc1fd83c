package callbacks

import (
	"context"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/Freeeeeet/dispatch_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Handler with Dependencies
// ========================

// Handler обертка для callbacktypes.Handler с методами
type Handler struct {
	*callbacktypes.Handler
}

// StateManager интерфейс для управления состоянием пользователей
type StateManager = callbacktypes.StateManager

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	userService *service.UserService,
	planningService *service.PlanningService,
	clientService *service.ClientService,
	driverService *service.DriverService,
	stateManager callbacktypes.StateManager,
	logger *zap.Logger,
	sendImage func(ctx context.Context, b *bot.Bot, chatID int64, actor planning.Actor),
	startNewCourse func(ctx context.Context, b *bot.Bot, chatID, telegramID int64),
) *Handler {
	inner := &callbacktypes.Handler{
		UserService:     userService,
		PlanningService: planningService,
		ClientService:   clientService,
		DriverService:   driverService,
		StateManager:    stateManager,
		Logger:          logger,
		SendImage:       sendImage,
		StartNewCourse:  startNewCourse,
	}
	return &Handler{Handler: inner}
}

// HandleCallbackQuery - главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery

	h.Logger.Info("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	Route(ctx, b, callback, h.Handler)
}
