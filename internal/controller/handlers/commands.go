package handlers

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/state"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := update.Message.From

	registeredUser, err := h.userService.RegisterUser(
		ctx,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
	)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Erreur lors de l'inscription. Réessayez plus tard.")
		return
	}

	actor, ok := h.requireActor(ctx, b, update)
	if !ok {
		return
	}

	var roleText string
	switch actor.Role {
	case planning.RoleAdmin:
		roleText = "Vous êtes <b>administrateur</b>."
	case planning.RoleDispatcher:
		roleText = "Vous êtes <b>dispatcheur</b>."
	case planning.RoleDriver:
		roleText = "Vous êtes <b>chauffeur</b>. /today affiche vos courses du jour."
	default:
		roleText = "Votre compte n'a pas encore de rôle. Communiquez votre identifiant " +
			fmt.Sprintf("<code>%d</code> à l'administrateur.", user.ID)
	}

	welcomeText := fmt.Sprintf(
		"👋 Bonjour, %s !\n\n"+
			"Bienvenue sur le bot de dispatch VTC.\n%s\n\n"+
			"/help - liste des commandes",
		html.EscapeString(registeredUser.DisplayName()),
		roleText,
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText, nil)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 <b>Commandes</b>\n\n" +
		"/start - démarrer\n" +
		"/today - courses du jour\n" +
		"/courses - courses à venir\n" +
		"/driverstatus - changer mon statut\n" +
		"/cancel - annuler la saisie en cours\n\n" +
		"<b>Dispatch</b>\n" +
		"/planning - grille du jour (image + affectation)\n" +
		"/newcourse - nouvelle course\n" +
		"/drivers - chauffeurs\n\n" +
		"Pour affecter : ✋ prenez une course, ouvrez la ligne d'un chauffeur puis choisissez l'heure."

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID

	// Перетаскивание тоже отменяется, выбранный день остаётся
	h.stateManager.WithSession(telegramID, func(s *callbacktypes.Session) {
		s.Gesture.Reset()
		s.Pending = nil
		s.Candidates = nil
	})

	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "Aucune opération en cours.", nil)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Opération annulée.\n\n/help - liste des commandes", nil)
}

// HandlePlanning обрабатывает команду /planning: картинка дня и доска с кнопками
func (h *Handlers) HandlePlanning(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := h.requireKnown(ctx, b, update)
	if !ok {
		return
	}

	today := h.planningService.Today()
	h.stateManager.WithSession(actor.ID, func(s *callbacktypes.Session) {
		s.Day = today
		s.Gesture.Reset()
		s.Pending = nil
		s.Candidates = nil
	})

	h.SendImage(ctx, b, update.Message.Chat.ID, actor)
	h.sendBoard(ctx, b, update.Message.Chat.ID, actor)
}

// HandleToday обрабатывает команду /today: доска сегодняшнего дня без картинки
func (h *Handlers) HandleToday(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := h.requireKnown(ctx, b, update)
	if !ok {
		return
	}

	today := h.planningService.Today()
	h.stateManager.WithSession(actor.ID, func(s *callbacktypes.Session) {
		s.Day = today
	})

	h.sendBoard(ctx, b, update.Message.Chat.ID, actor)
}

// HandleCourses обрабатывает команду /courses
func (h *Handlers) HandleCourses(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := h.requireKnown(ctx, b, update)
	if !ok {
		return
	}

	courses := h.planningService.Upcoming(actor, h.planningService.Today(), UpcomingLimit)
	text, kb := common.CoursesListScreen(courses, 0, h.planningService.Now())
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleDrivers обрабатывает команды /drivers и /driverstatus
func (h *Handlers) HandleDrivers(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := h.requireKnown(ctx, b, update)
	if !ok {
		return
	}

	text, kb := common.DriversScreen(h.planningService.Drivers(), actor.Capabilities)
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleNewCourse обрабатывает команду /newcourse
func (h *Handlers) HandleNewCourse(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireDispatcher(ctx, b, update); !ok {
		return
	}
	h.StartNewCourse(ctx, b, update.Message.Chat.ID, update.Message.From.ID)
}

// sendBoard отправляет доску дня сессии
func (h *Handlers) sendBoard(ctx context.Context, b *bot.Bot, chatID int64, actor planning.Actor) {
	var s callbacktypes.Session
	h.stateManager.WithSession(actor.ID, func(cur *callbacktypes.Session) {
		s = *cur
	})
	day := s.Day
	if day.IsZero() {
		day = h.planningService.Today()
	}

	board := h.planningService.Board(day, actor)
	text, kb := common.BoardScreen(board, s, actor.Capabilities, h.planningService.Today())
	h.sendMessage(ctx, b, chatID, text, kb)
}

// SendImage отправляет PNG сетки дня сессии пользователя
func (h *Handlers) SendImage(ctx context.Context, b *bot.Bot, chatID int64, actor planning.Actor) {
	var day = h.planningService.Today()
	h.stateManager.WithSession(actor.ID, func(s *callbacktypes.Session) {
		if !s.Day.IsZero() {
			day = s.Day
		}
	})

	board := h.planningService.Board(day, actor)
	imageData, err := common.GeneratePlanningImage(board)
	if err != nil {
		h.logger.Error("Failed to generate planning image",
			zap.Time("day", day),
			zap.Error(err))
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:    chatID,
		Photo:     &models.InputFileUpload{Filename: "planning-" + day.Format("2006-01-02") + ".png", Data: bytes.NewReader(imageData)},
		Caption:   "🗓 " + formatting.FormatDayTitle(day),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		h.logger.Error("Failed to send planning image",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" || update.Message.From == nil {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	if currentState == state.StateNone {
		h.logger.Debug("No active state, ignoring message",
			zap.Int64("telegram_id", telegramID))
		return
	}

	h.logger.Debug("Dialog step",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(currentState)))

	switch currentState {
	case state.StateNewCourseClient:
		h.handleNewCourseClientStep(ctx, b, update)
	case state.StateNewCourseClientPhone:
		h.handleNewCourseClientPhoneStep(ctx, b, update)
	case state.StateNewCourseOrigin:
		h.handleNewCourseOriginStep(ctx, b, update)
	case state.StateNewCourseDestination:
		h.handleNewCourseDestinationStep(ctx, b, update)
	case state.StateNewCourseTime:
		h.handleNewCourseTimeStep(ctx, b, update)
	case state.StateNewCoursePrice:
		h.handleNewCoursePriceStep(ctx, b, update)
	case state.StateEditCourseNotes:
		h.handleEditCourseNotes(ctx, b, update)
	case state.StateNewDriverName:
		h.handleNewDriverNameStep(ctx, b, update)
	case state.StateNewDriverVehicle:
		h.handleNewDriverVehicleStep(ctx, b, update)
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(currentState)))
	}
}
