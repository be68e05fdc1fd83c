package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/state"
	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const cancelHint = "\n\nPour annuler : /cancel"

// ========================
// New Course Dialog
// ========================

// StartNewCourse начинает диалог создания курса
func (h *Handlers) StartNewCourse(ctx context.Context, b *bot.Bot, chatID, telegramID int64) {
	h.stateManager.ClearState(telegramID)
	h.stateManager.SetState(telegramID, state.StateNewCourseClient)

	h.logger.Info("Starting course creation", zap.Int64("telegram_id", telegramID))

	text := "🚖 <b>Nouvelle course</b>\n\n" +
		"Étape 1 sur 5 : nom du client ?\n" +
		"Un client existant est reconnu par son nom, sinon il sera créé."

	clients, err := h.clientService.List(ctx)
	if err == nil && len(clients) > 0 {
		var names []string
		for i, c := range clients {
			if i == 10 {
				break
			}
			names = append(names, html.EscapeString(c.Name))
		}
		text += "\n\nClients : " + strings.Join(names, ", ")
	}

	h.sendMessage(ctx, b, chatID, text+cancelHint, nil)
}

// handleNewCourseClientStep ищет клиента по имени или начинает создание нового
func (h *Handlers) handleNewCourseClientStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	name := strings.TrimSpace(update.Message.Text)

	if n := utf8.RuneCountInString(name); n < ClientNameMinLength || n > ClientNameMaxLength {
		h.sendError(ctx, b, chatID, fmt.Sprintf("❌ Le nom doit faire entre %d et %d caractères. Réessayez :",
			ClientNameMinLength, ClientNameMaxLength))
		return
	}

	clients, err := h.clientService.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list clients", zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	for _, c := range clients {
		if strings.EqualFold(c.Name, name) {
			h.stateManager.SetData(telegramID, "client_id", c.ID)
			h.stateManager.SetState(telegramID, state.StateNewCourseOrigin)
			h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Client : %s\n\nÉtape 2 sur 5 : adresse de départ ?%s",
				html.EscapeString(c.Name), cancelHint), nil)
			return
		}
	}

	h.stateManager.SetData(telegramID, "client_name", name)
	h.stateManager.SetState(telegramID, state.StateNewCourseClientPhone)
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("🆕 Nouveau client : %s\n\nTéléphone du client ? (« - » pour passer)%s",
		html.EscapeString(name), cancelHint), nil)
}

// handleNewCourseClientPhoneStep создаёт нового клиента
func (h *Handlers) handleNewCourseClientPhoneStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	phone := strings.TrimSpace(update.Message.Text)
	if phone == SkipToken {
		phone = ""
	}
	if utf8.RuneCountInString(phone) > PhoneMaxLength {
		h.sendError(ctx, b, chatID, "❌ Numéro trop long. Réessayez :")
		return
	}

	name, ok := h.dataString(telegramID, "client_name")
	if !ok {
		h.abortDialog(ctx, b, update, "client_name")
		return
	}

	actor, ok := h.requireDispatcher(ctx, b, update)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}

	client, err := h.clientService.Create(ctx, actor, name, phone, nil)
	if err != nil {
		h.logger.Error("Failed to create client", zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.stateManager.SetData(telegramID, "client_id", client.ID)
	h.stateManager.SetState(telegramID, state.StateNewCourseOrigin)
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Client créé : %s\n\nÉtape 2 sur 5 : adresse de départ ?%s",
		html.EscapeString(client.Name), cancelHint), nil)
}

// handleNewCourseOriginStep адрес отправления
func (h *Handlers) handleNewCourseOriginStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	origin, ok := h.readAddress(ctx, b, update)
	if !ok {
		return
	}

	telegramID := update.Message.From.ID
	h.stateManager.SetData(telegramID, "origin", origin)
	h.stateManager.SetState(telegramID, state.StateNewCourseDestination)
	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf("✅ Départ : %s\n\nÉtape 3 sur 5 : destination ?%s",
		html.EscapeString(origin), cancelHint), nil)
}

// handleNewCourseDestinationStep адрес назначения
func (h *Handlers) handleNewCourseDestinationStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	destination, ok := h.readAddress(ctx, b, update)
	if !ok {
		return
	}

	telegramID := update.Message.From.ID
	h.stateManager.SetData(telegramID, "destination", destination)
	h.stateManager.SetState(telegramID, state.StateNewCourseTime)
	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf("✅ Destination : %s\n\n"+
		"Étape 4 sur 5 : date et heure ?\nFormats : <code>14h30</code>, <code>19/10 14h30</code>, <code>19/10/2026 14:30</code>%s",
		html.EscapeString(destination), cancelHint), nil)
}

// handleNewCourseTimeStep дата и время подачи
func (h *Handlers) handleNewCourseTimeStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	at, err := formatting.ParseDateTime(update.Message.Text, h.planningService.Now(), h.planningService.Location())
	if err != nil {
		h.logger.Debug("Invalid course time", zap.String("input", update.Message.Text), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Date invalide. Exemples : 14h30, 19/10 14h30, 19/10/2026 14:30. Réessayez :")
		return
	}

	h.stateManager.SetData(telegramID, "scheduled_at", at)
	h.stateManager.SetState(telegramID, state.StateNewCoursePrice)
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Prise en charge : %s\n\nÉtape 5 sur 5 : prix en euros ? (« - » pour passer)%s",
		formatting.FormatDateTime(at), cancelHint), nil)
}

// handleNewCoursePriceStep цена и создание курса
func (h *Handlers) handleNewCoursePriceStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	input := strings.TrimSpace(update.Message.Text)

	var price *int64
	if input != SkipToken {
		cents, err := formatting.ParsePrice(input)
		if err != nil {
			h.sendError(ctx, b, chatID, "❌ Prix invalide. Exemple : 45,50. Réessayez :")
			return
		}
		price = &cents
	}

	data := h.stateManager.GetAllData(telegramID)
	clientID, _ := data["client_id"].(string)
	origin, _ := data["origin"].(string)
	destination, _ := data["destination"].(string)
	scheduledAt, ok := data["scheduled_at"].(time.Time)
	if clientID == "" || origin == "" || destination == "" || !ok || scheduledAt.IsZero() {
		h.abortDialog(ctx, b, update, "course")
		return
	}

	actor, ok := h.requireDispatcher(ctx, b, update)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}

	course := &model.Course{
		ClientID:    clientID,
		Origin:      origin,
		Destination: destination,
		ScheduledAt: scheduledAt,
		PriceCents:  price,
	}

	created, err := h.planningService.CreateCourse(ctx, actor, course)
	if err != nil {
		h.logger.Error("Failed to create course", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.stateManager.ClearState(telegramID)

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("📄 Voir la course", "course:"+created.ID)).
		Row(keyboard.Button("📋 Planning du jour", "day:"+created.ScheduledAt.In(h.planningService.Location()).Format("2006-01-02"))).
		Build()
	h.sendMessage(ctx, b, chatID, "✅ <b>Course créée</b>\n\n"+
		html.EscapeString(formatting.FormatCourseButton(created, h.planningService.Now())), kb)
}

// ========================
// Course Notes
// ========================

// handleEditCourseNotes сохраняет заметки курса
func (h *Handlers) handleEditCourseNotes(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	notes := strings.TrimSpace(update.Message.Text)
	if notes == SkipToken {
		notes = ""
	}
	if utf8.RuneCountInString(notes) > NotesMaxLength {
		h.sendError(ctx, b, chatID, fmt.Sprintf("❌ Notes trop longues (max %d caractères). Réessayez :", NotesMaxLength))
		return
	}

	courseID, ok := h.dataString(telegramID, "course_id")
	if !ok {
		h.abortDialog(ctx, b, update, "course_id")
		return
	}

	actor, ok := h.requireDispatcher(ctx, b, update)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}

	if _, err := h.planningService.UpdateCourse(ctx, actor, courseID, model.CoursePatch{Notes: &notes}); err != nil {
		h.logger.Error("Failed to update course notes", zap.String("course_id", courseID), zap.Error(err))
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.stateManager.ClearState(telegramID)
	kb := keyboard.NewBuilder().Row(keyboard.Button("📄 Voir la course", "course:"+courseID)).Build()
	h.sendMessage(ctx, b, chatID, "✅ Notes enregistrées", kb)
}

// ========================
// New Driver Dialog
// ========================

// handleNewDriverNameStep имя водителя
func (h *Handlers) handleNewDriverNameStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	name := strings.TrimSpace(update.Message.Text)

	if n := utf8.RuneCountInString(name); n < DriverNameMinLength || n > DriverNameMaxLength {
		h.sendError(ctx, b, chatID, fmt.Sprintf("❌ Le nom doit faire entre %d et %d caractères. Réessayez :",
			DriverNameMinLength, DriverNameMaxLength))
		return
	}

	h.stateManager.SetData(telegramID, "driver_name", name)
	h.stateManager.SetState(telegramID, state.StateNewDriverVehicle)
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Nom : %s\n\nÉtape 2 sur 2 : véhicule ? (« - » pour passer)%s",
		html.EscapeString(name), cancelHint), nil)
}

// handleNewDriverVehicleStep машина и создание водителя
func (h *Handlers) handleNewDriverVehicleStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	vehicle := strings.TrimSpace(update.Message.Text)
	if vehicle == SkipToken {
		vehicle = ""
	}
	if utf8.RuneCountInString(vehicle) > VehicleMaxLength {
		h.sendError(ctx, b, chatID, "❌ Description trop longue. Réessayez :")
		return
	}

	name, ok := h.dataString(telegramID, "driver_name")
	if !ok {
		h.abortDialog(ctx, b, update, "driver_name")
		return
	}

	actor, ok := h.requireDispatcher(ctx, b, update)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}

	driver, err := h.driverService.Create(ctx, actor, name, vehicle)
	if err != nil {
		h.logger.Error("Failed to create driver", zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.stateManager.ClearState(telegramID)
	text, kb := common.DriversScreen(h.planningService.Drivers(), actor.Capabilities)
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Chauffeur ajouté : %s\n\n", html.EscapeString(driver.Name))+text, kb)
}

// readAddress проверяет адрес из сообщения
func (h *Handlers) readAddress(ctx context.Context, b *bot.Bot, update *models.Update) (string, bool) {
	address := strings.TrimSpace(update.Message.Text)
	if n := utf8.RuneCountInString(address); n < AddressMinLength || n > AddressMaxLength {
		h.sendError(ctx, b, update.Message.Chat.ID, fmt.Sprintf("❌ L'adresse doit faire entre %d et %d caractères. Réessayez :",
			AddressMinLength, AddressMaxLength))
		return "", false
	}
	return address, true
}

// abortDialog сбрасывает диалог, если данные потерялись
func (h *Handlers) abortDialog(ctx context.Context, b *bot.Bot, update *models.Update, missing string) {
	telegramID := update.Message.From.ID
	h.logger.Error("Missing dialog data",
		zap.Int64("telegram_id", telegramID),
		zap.String("missing", missing))
	h.stateManager.ClearState(telegramID)
	h.sendError(ctx, b, update.Message.Chat.ID, "❌ Données de saisie perdues. Recommencez.")
}
