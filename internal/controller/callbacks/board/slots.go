package board

import (
	"context"
	"strconv"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Slot Click Handlers
// ========================

// HandlePick клик по подсказке "+N" слота (pick:<driverID>:<hour>)
func HandlePick(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		payload, err := common.Payload(callback.Data, "pick:")
		if err != nil {
			common.HandleError(hc, err, "parse pick")
			return
		}
		slot, err := planning.ParseDropTarget(payload)
		if err != nil || slot.Kind != planning.TargetSlot {
			common.HandleError(hc, common.ErrInvalidFormat, "parse pick")
			return
		}

		day := viewedDay(hc, snapshot(hc))
		outcome, err := h.PlanningService.ClickSlot(ctx, hc.Actor, day, slot.DriverID, slot.Hour)
		if err != nil {
			ShowBoard(hc)
			common.HandleError(hc, err, "click slot")
			return
		}

		if outcome.Kind == planning.OutcomeChoose {
			ids := make([]string, 0, len(outcome.Candidates))
			for _, c := range outcome.Candidates {
				ids = append(ids, c.ID)
			}
			hc.Session(func(s *callbacktypes.Session) {
				s.Candidates = ids
				s.PickSlot = slot
			})

			board := h.PlanningService.Board(day, hc.Actor)
			text, kb := common.PickerScreen(outcome.Candidates, board.Driver(slot.DriverID), slot.Hour, board.Now)
			if err := hc.EditMessage(text, kb); err != nil {
				h.Logger.Warn("Failed to show picker", zap.Error(err))
			}
			hc.Answer("")
			return
		}

		ShowBoard(hc)
		hc.Answer(outcomeText(hc, outcome))
	})
}

// HandleChoose выбор курса из списка кандидатов (choose:<index>)
func HandleChoose(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		payload, err := common.Payload(callback.Data, "choose:")
		if err != nil {
			common.HandleError(hc, err, "parse choose")
			return
		}
		index, err := strconv.Atoi(payload)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse choose")
			return
		}

		var (
			courseID string
			slot     planning.DropTarget
			day      = viewedDay(hc, snapshot(hc))
		)
		hc.Session(func(s *callbacktypes.Session) {
			if index >= 0 && index < len(s.Candidates) {
				courseID = s.Candidates[index]
				slot = s.PickSlot
			}
			s.Candidates = nil
		})
		if courseID == "" {
			ShowBoard(hc)
			hc.AnswerAlert(common.ErrorMessage(common.ErrExpired))
			return
		}

		outcome, err := h.PlanningService.Pick(ctx, hc.Actor, day, slot.DriverID, slot.Hour, courseID)
		ShowBoard(hc)
		if err != nil {
			common.HandleError(hc, err, "pick course")
			return
		}
		hc.Answer(outcomeText(hc, outcome))
	})
}

// HandleDriverStatus смена статуса водителя (dstatus:<driverID>:<STATUS>)
func HandleDriverStatus(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithActor(ctx, b, callback, h, func(hc *common.HandlerContext) {
		payload, err := common.Payload(callback.Data, "dstatus:")
		if err != nil {
			common.HandleError(hc, err, "parse driver status")
			return
		}
		driverID, raw, ok := cutLast(payload)
		if !ok {
			common.HandleError(hc, common.ErrInvalidFormat, "parse driver status")
			return
		}

		if err := h.DriverService.SetStatus(ctx, hc.Actor, driverID, model.DriverStatus(raw)); err != nil {
			common.HandleError(hc, err, "set driver status")
			return
		}

		text, kb := common.DriversScreen(h.PlanningService.Drivers(), hc.Actor.Capabilities)
		if err := hc.EditMessage(text, kb); err != nil {
			h.Logger.Warn("Failed to refresh drivers", zap.Error(err))
		}
		hc.Answer("✅ Statut mis à jour")
	})
}

// HandleNewDriver запускает диалог добавления водителя
func HandleNewDriver(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.ClearState()
		hc.SetState(stateNewDriverName)
		hc.Answer("")
		if err := hc.SendMessage("🚘 <b>Nouveau chauffeur</b>\n\nÉtape 1 sur 2 : nom du chauffeur ?\n\nPour annuler : /cancel", nil); err != nil {
			h.Logger.Error("Failed to send message", zap.Error(err))
		}
	})
}
