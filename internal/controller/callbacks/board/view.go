package board

import (
	"context"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const dayLayout = "2006-01-02"

// ========================
// Board View Handlers
// ========================

// snapshot копия сессии пользователя
func snapshot(hc *common.HandlerContext) callbacktypes.Session {
	var out callbacktypes.Session
	hc.Session(func(s *callbacktypes.Session) {
		out = *s
	})
	return out
}

// viewedDay день сессии или сегодня
func viewedDay(hc *common.HandlerContext, s callbacktypes.Session) time.Time {
	if s.Day.IsZero() {
		return hc.Handler.PlanningService.Today()
	}
	return s.Day
}

// ShowBoard перерисовывает доску в текущем сообщении
func ShowBoard(hc *common.HandlerContext) {
	s := snapshot(hc)
	ps := hc.Handler.PlanningService

	board := ps.Board(viewedDay(hc, s), hc.Actor)
	text, kb := common.BoardScreen(board, s, hc.Actor.Capabilities, ps.Today())

	if err := hc.EditMessage(text, kb); err != nil {
		hc.Handler.Logger.Warn("Failed to render board",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
	}
}

// HandleBoard возврат к доске
func HandleBoard(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithActor(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.Session(func(s *callbacktypes.Session) {
			s.Pending = nil
			s.Candidates = nil
		})
		ShowBoard(hc)
		hc.Answer("")
	})
}

// HandleDay переключает просматриваемый день (day:2026-10-19)
func HandleDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithActor(ctx, b, callback, h, func(hc *common.HandlerContext) {
		payload, err := common.Payload(callback.Data, "day:")
		if err != nil {
			common.HandleError(hc, err, "parse day")
			return
		}

		day, err := time.ParseInLocation(dayLayout, payload, h.PlanningService.Location())
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse day")
			return
		}

		hc.Session(func(s *callbacktypes.Session) {
			s.Day = day
			s.Gesture.Reset()
			s.Pending = nil
			s.Candidates = nil
		})

		ShowBoard(hc)
		hc.Answer("")
	})
}

// HandleOver раскрывает строку водителя (over:<driverID>).
// Во время перетаскивания подсвечивает слот водителя на часу курса.
func HandleOver(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		driverID, err := common.Payload(callback.Data, "over:")
		if err != nil {
			common.HandleError(hc, err, "parse over")
			return
		}

		s := snapshot(hc)
		var hover *planning.DropTarget
		if s.Gesture.Active() {
			if c, err := h.PlanningService.Course(hc.Actor, s.Gesture.Source.CourseID); err == nil {
				t := planning.SlotTarget(driverID, c.ScheduledAt.In(h.PlanningService.Location()).Hour())
				hover = &t
			}
		}

		hc.Session(func(s *callbacktypes.Session) {
			if s.Focus == driverID && hover == nil {
				s.Focus = ""
				return
			}
			s.Focus = driverID
			if hover != nil {
				s.Gesture.Hover(*hover)
			}
		})

		ShowBoard(hc)
		hc.Answer("")
	})
}

// HandleImage отправляет картинку сетки дня
func HandleImage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithActor(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if hc.Message == nil {
			common.HandleError(hc, common.ErrNoMessage, "send image")
			return
		}
		hc.Answer("🖼")
		if h.SendImage != nil {
			h.SendImage(ctx, b, hc.ChatID, hc.Actor)
		}
	})
}

// HandleNewCourse запускает диалог создания курса
func HandleNewCourse(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.Answer("")
		if h.StartNewCourse != nil {
			h.StartNewCourse(ctx, b, hc.ChatID, hc.TelegramID)
		}
	})
}
