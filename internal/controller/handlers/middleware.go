package handlers

import (
	"context"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireActor определяет роль отправителя сообщения
// Возвращает actor и true если OK
func (h *Handlers) requireActor(ctx context.Context, b *bot.Bot, update *models.Update) (planning.Actor, bool) {
	if update.Message == nil || update.Message.From == nil {
		return planning.Actor{}, false
	}

	telegramID := update.Message.From.ID
	actor, err := h.userService.Actor(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to resolve actor", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return planning.Actor{}, false
	}

	return actor, true
}

// requireDispatcher пускает только администраторов и диспетчеров
func (h *Handlers) requireDispatcher(ctx context.Context, b *bot.Bot, update *models.Update) (planning.Actor, bool) {
	actor, ok := h.requireActor(ctx, b, update)
	if !ok {
		return actor, false
	}

	if !actor.FullGrid() {
		h.sendError(ctx, b, update.Message.Chat.ID, "⛔ Cette commande est réservée aux dispatcheurs.")
		return actor, false
	}

	return actor, true
}

// requireKnown пускает всех, кроме гостей
func (h *Handlers) requireKnown(ctx context.Context, b *bot.Bot, update *models.Update) (planning.Actor, bool) {
	actor, ok := h.requireActor(ctx, b, update)
	if !ok {
		return actor, false
	}

	if actor.Role == planning.RoleGuest {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"⛔ Votre compte n'est rattaché à aucun rôle.\nDemandez à un administrateur de vous ajouter.")
		return actor, false
	}

	return actor, true
}
