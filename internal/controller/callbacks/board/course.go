package board

import (
	"context"
	"strconv"
	"strings"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/state"
	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Состояния диалогов, которые запускаются из кнопок
const (
	stateEditCourseNotes = callbacktypes.UserState(state.StateEditCourseNotes)
	stateNewDriverName   = callbacktypes.UserState(state.StateNewDriverName)
)

// ========================
// Course Card Handlers
// ========================

// HandleCourse карточка курса (course:<id>)
func HandleCourse(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithActor(ctx, b, callback, h, func(hc *common.HandlerContext) {
		courseID, err := common.Payload(callback.Data, "course:")
		if err != nil {
			common.HandleError(hc, err, "parse course")
			return
		}
		if err := showCourse(hc, courseID); err != nil {
			common.HandleError(hc, err, "show course")
			return
		}
		hc.Answer("")
	})
}

// showCourse рисует карточку курса в текущем сообщении
func showCourse(hc *common.HandlerContext, courseID string) error {
	h := hc.Handler
	c, err := h.PlanningService.Course(hc.Actor, courseID)
	if err != nil {
		return err
	}

	client, err := h.ClientService.Get(hc.Ctx, c.ClientID)
	if err != nil {
		// карточка показывается и без клиента
		h.Logger.Warn("Failed to load client for course card",
			zap.String("course_id", c.ID),
			zap.Error(err))
		client = nil
	}

	var driver *model.Driver
	if c.DriverID != nil {
		driver = findDriver(h.PlanningService.Drivers(), *c.DriverID)
	}

	now := h.PlanningService.Now()
	text, kb := common.CourseScreen(c, client, driver, hc.Actor.Capabilities, now)
	return hc.EditMessage(text, kb)
}

// HandleStatus ручная смена статуса курса (status:<id>:<STATUS>)
func HandleStatus(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithActor(ctx, b, callback, h, func(hc *common.HandlerContext) {
		payload, err := common.Payload(callback.Data, "status:")
		if err != nil {
			common.HandleError(hc, err, "parse status")
			return
		}
		courseID, raw, ok := cutLast(payload)
		to := model.CourseStatus(raw)
		if !ok || !to.IsValid() {
			common.HandleError(hc, common.ErrInvalidFormat, "parse status")
			return
		}

		// администратор меняет статус в обход ограничений
		force := hc.Actor.CanForce()
		updated, err := h.PlanningService.SetStatus(ctx, hc.Actor, courseID, to, force)
		if err != nil {
			common.HandleError(hc, err, "set course status")
			return
		}

		h.Logger.Info("Course status set from card",
			zap.String("course_id", updated.ID),
			zap.String("status", string(updated.Status)),
			zap.Int64("telegram_id", hc.TelegramID))

		if err := showCourse(hc, courseID); err != nil {
			h.Logger.Warn("Failed to refresh course card", zap.Error(err))
		}
		hc.Answer("✅ Statut mis à jour")
	})
}

// HandleDelete запрос подтверждения удаления (del:<id>)
func HandleDelete(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		courseID, err := common.Payload(callback.Data, "del:")
		if err != nil {
			common.HandleError(hc, err, "parse delete")
			return
		}
		c, err := h.PlanningService.Course(hc.Actor, courseID)
		if err != nil {
			common.HandleError(hc, err, "delete course")
			return
		}

		now := h.PlanningService.Now()
		text, kb := common.DeleteConfirmScreen(c, now)
		if err := hc.EditMessage(text, kb); err != nil {
			h.Logger.Warn("Failed to show delete confirmation", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleDeleteConfirm удаление курса (delok:<id>)
func HandleDeleteConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		courseID, err := common.Payload(callback.Data, "delok:")
		if err != nil {
			common.HandleError(hc, err, "parse delete")
			return
		}

		if err := h.PlanningService.DeleteCourse(ctx, hc.Actor, courseID); err != nil {
			common.HandleError(hc, err, "delete course")
			return
		}

		hc.Session(func(s *callbacktypes.Session) {
			if s.Gesture.Active() && s.Gesture.Source.CourseID == courseID {
				s.Gesture.Reset()
			}
		})
		ShowBoard(hc)
		hc.Answer("🗑 Course supprimée")
	})
}

// HandleHistory журнал назначений курса (hist:<id>)
func HandleHistory(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		courseID, err := common.Payload(callback.Data, "hist:")
		if err != nil {
			common.HandleError(hc, err, "parse history")
			return
		}
		c, err := h.PlanningService.Course(hc.Actor, courseID)
		if err != nil {
			common.HandleError(hc, err, "course history")
			return
		}
		events, err := h.PlanningService.History(ctx, hc.Actor, courseID)
		if err != nil {
			common.HandleError(hc, err, "course history")
			return
		}

		drivers := make(map[string]*model.Driver)
		for _, d := range h.PlanningService.Drivers() {
			drivers[d.ID] = d
		}

		text, kb := common.HistoryScreen(c, events, drivers, h.PlanningService.Location())
		if err := hc.EditMessage(text, kb); err != nil {
			h.Logger.Warn("Failed to show history", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleNotes запускает ввод заметок курса (notes:<id>)
func HandleNotes(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithDispatcher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		courseID, err := common.Payload(callback.Data, "notes:")
		if err != nil {
			common.HandleError(hc, err, "parse notes")
			return
		}
		if _, err := h.PlanningService.Course(hc.Actor, courseID); err != nil {
			common.HandleError(hc, err, "edit notes")
			return
		}

		hc.ClearState()
		hc.SetState(stateEditCourseNotes)
		hc.SetData("course_id", courseID)
		hc.Answer("")

		if err := hc.SendMessage("📝 Envoyez les nouvelles notes de la course.\nEnvoyez « - » pour les effacer.\n\nPour annuler : /cancel", nil); err != nil {
			h.Logger.Error("Failed to send message", zap.Error(err))
		}
	})
}

// HandleCoursesPage страница списка курсов (courses_page:<n>)
func HandleCoursesPage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithActor(ctx, b, callback, h, func(hc *common.HandlerContext) {
		payload, err := common.Payload(callback.Data, "courses_page:")
		if err != nil {
			common.HandleError(hc, err, "parse page")
			return
		}
		page, err := strconv.Atoi(payload)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse page")
			return
		}

		ps := h.PlanningService
		now := ps.Now()
		text, kb := common.CoursesListScreen(ps.Upcoming(hc.Actor, ps.Today(), 0), page, now)
		if err := hc.EditMessage(text, kb); err != nil {
			h.Logger.Warn("Failed to show courses page", zap.Error(err))
		}
		hc.Answer("")
	})
}

func findDriver(drivers []*model.Driver, id string) *model.Driver {
	for _, d := range drivers {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// cutLast делит "<id>:<value>" по последнему ':'; id может содержать ':'
func cutLast(s string) (string, string, bool) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

