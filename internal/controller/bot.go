package controller

import (
	"context"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/handlers"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/state"
	"github.com/Freeeeeet/dispatch_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	planningService *service.PlanningService,
	clientService *service.ClientService,
	driverService *service.DriverService,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		userService,
		planningService,
		clientService,
		driverService,
		stateManager,
		logger,
	)

	// Создаём адаптер для callback handlers
	stateAdapter := state.NewAdapter(stateManager)

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		userService,
		planningService,
		clientService,
		driverService,
		stateAdapter,
		logger,
		cmdHandlers.SendImage,
		cmdHandlers.StartNewCourse,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Общие команды
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/planning", bot.MatchTypeExact, c.handlers.HandlePlanning)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/today", bot.MatchTypeExact, c.handlers.HandleToday)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/courses", bot.MatchTypeExact, c.handlers.HandleCourses)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/driverstatus", bot.MatchTypeExact, c.handlers.HandleDrivers)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// Команды диспетчера
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/newcourse", bot.MatchTypeExact, c.handlers.HandleNewCourse)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/drivers", bot.MatchTypeExact, c.handlers.HandleDrivers)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Démarrer"},
		{Command: "help", Description: "❓ Aide"},
		{Command: "planning", Description: "🗓 Planning du jour (image + grille)"},
		{Command: "today", Description: "📋 Grille du jour"},
		{Command: "courses", Description: "🚖 Courses à venir"},
		{Command: "newcourse", Description: "➕ Nouvelle course (dispatch)"},
		{Command: "drivers", Description: "🚘 Chauffeurs et disponibilités"},
		{Command: "driverstatus", Description: "🟢 Ma disponibilité (chauffeur)"},
		{Command: "cancel", Description: "✖️ Annuler l'action en cours"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
