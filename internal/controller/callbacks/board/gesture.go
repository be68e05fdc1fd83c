package board

import (
	"context"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Drag & Drop Handlers
// ========================

// HandleDrag берёт курс "в руку" (drag:u:<id>, drag:p:<id>) или отпускает его (drag:cancel)
func HandleDrag(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		payload, err := common.Payload(callback.Data, "drag:")
		if err != nil {
			common.HandleError(hc, err, "parse drag")
			return
		}

		if payload == "cancel" {
			hc.Session(func(s *callbacktypes.Session) {
				s.Gesture.Reset()
			})
			ShowBoard(hc)
			hc.Answer("✖️ Course relâchée")
			return
		}

		src, err := planning.ParseDragSource(payload)
		if err != nil {
			common.HandleError(hc, err, "parse drag")
			return
		}

		course, err := h.PlanningService.Course(hc.Actor, src.CourseID)
		if err != nil {
			common.HandleError(hc, err, "drag")
			return
		}

		day := planning.StartOfDay(course.ScheduledAt.In(h.PlanningService.Location()))
		hc.Session(func(s *callbacktypes.Session) {
			s.Day = day
			s.Gesture.Start(day, src)
			s.Pending = nil
			if course.HasDriver() {
				s.Focus = *course.DriverID
			}
		})

		h.Logger.Debug("Drag started",
			zap.String("course_id", course.ID),
			zap.String("source", string(src.Kind)),
			zap.Int64("telegram_id", hc.TelegramID))

		ShowBoard(hc)
		hc.Answer("✋ Course en main : choisissez un créneau")
	})
}

// HandleDrop бросает курс в слот (drop:<driverID>:<hour>) или в неназначенные (drop:unassigned)
func HandleDrop(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		payload, err := common.Payload(callback.Data, "drop:")
		if err != nil {
			common.HandleError(hc, err, "parse drop")
			return
		}

		target, err := planning.ParseDropTarget(payload)
		if err != nil {
			common.HandleError(hc, err, "parse drop")
			return
		}

		// Жест копируется, чтобы не держать блокировку сессии во время записи
		var g planning.Gesture
		hc.Session(func(s *callbacktypes.Session) {
			g = s.Gesture
			s.Gesture.Reset()
		})
		if !g.Active() {
			hc.AnswerAlert(common.ErrorMessage(common.ErrNoGesture))
			return
		}

		outcome, err := h.PlanningService.Drop(ctx, hc.Actor, &g, &target)
		if err != nil {
			ShowBoard(hc)
			common.HandleError(hc, err, "drop")
			return
		}

		if outcome.Kind == planning.OutcomeNeedsConfirmation {
			hc.Session(func(s *callbacktypes.Session) {
				s.Pending = outcome.Reassignment
			})
			showConfirm(hc, outcome)
			hc.Answer("")
			return
		}

		ShowBoard(hc)
		hc.Answer(outcomeText(hc, outcome))
	})
}

// HandleConfirm подтверждает или отменяет переназначение (confirm:yes / confirm:no)
func HandleConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		var pending *planning.Reassignment
		hc.Session(func(s *callbacktypes.Session) {
			pending = s.Pending
			s.Pending = nil
		})

		if callback.Data != "confirm:yes" {
			ShowBoard(hc)
			hc.Answer("Réassignation annulée")
			return
		}
		if pending == nil {
			ShowBoard(hc)
			hc.AnswerAlert(common.ErrorMessage(common.ErrExpired))
			return
		}

		outcome, err := h.PlanningService.Confirm(ctx, hc.Actor, *pending)
		ShowBoard(hc)
		if err != nil {
			common.HandleError(hc, err, "confirm reassignment")
			return
		}
		hc.Answer(outcomeText(hc, outcome))
	})
}

func showConfirm(hc *common.HandlerContext, outcome planning.Outcome) {
	r := outcome.Reassignment
	board := hc.Handler.PlanningService.Board(r.Day, hc.Actor)
	text, kb := common.ConfirmScreen(outcome.Course, board.Driver(r.FromDriverID), board.Driver(r.ToDriverID), *r, board.Now)

	if err := hc.EditMessage(text, kb); err != nil {
		hc.Handler.Logger.Warn("Failed to show confirmation", zap.Error(err))
	}
}

// outcomeText короткий ответ на callback после жеста
func outcomeText(hc *common.HandlerContext, outcome planning.Outcome) string {
	switch outcome.Kind {
	case planning.OutcomeAssigned:
		name := "?"
		if outcome.Course != nil && outcome.Course.DriverID != nil {
			for _, d := range hc.Handler.PlanningService.Drivers() {
				if d.ID == *outcome.Course.DriverID {
					name = d.Name
					break
				}
			}
		}
		return "✅ Course assignée à " + name
	case planning.OutcomeUnassigned:
		return "📥 Course désassignée"
	default:
		return "Aucun changement"
	}
}
