package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/board"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Callback Data Patterns
// ========================
// Все payload укладываются в 64 байта Telegram при uuid идентификаторах

// Навигация по доске
const (
	Board     = "board"
	Noop      = "noop"
	Image     = "image"
	NewCourse = "newcourse"
	NewDriver = "newdriver"
	Day       = "day:"          // day:2026-10-19
	Over      = "over:"         // over:<driverID>
	Page      = "courses_page:" // courses_page:1
)

// Перетаскивание
const (
	Drag    = "drag:"    // drag:u:<courseID> | drag:p:<courseID> | drag:cancel
	Drop    = "drop:"    // drop:<driverID>:<hour> | drop:unassigned
	Confirm = "confirm:" // confirm:yes | confirm:no
	Pick    = "pick:"    // pick:<driverID>:<hour>
	Choose  = "choose:"  // choose:<index>
)

// Карточка курса и водители
const (
	Course        = "course:"  // course:<id>
	Status        = "status:"  // status:<id>:<STATUS>
	Delete        = "del:"     // del:<id>
	DeleteConfirm = "delok:"   // delok:<id>
	History       = "hist:"    // hist:<id>
	Notes         = "notes:"   // notes:<id>
	DriverStatus  = "dstatus:" // dstatus:<driverID>:<STATUS>
)

// ========================
// Main Callback Router
// ========================

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	h.Logger.Debug("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
		zap.String("user_name", callback.From.FirstName))

	switch {
	// ===== Navigation =====
	case data == Noop:
		common.AnswerCallback(ctx, b, callback.ID, "")
	case data == Board:
		board.HandleBoard(ctx, b, callback, h)
	case data == Image:
		board.HandleImage(ctx, b, callback, h)
	case data == NewCourse:
		board.HandleNewCourse(ctx, b, callback, h)
	case data == NewDriver:
		board.HandleNewDriver(ctx, b, callback, h)
	case strings.HasPrefix(data, Day):
		board.HandleDay(ctx, b, callback, h)
	case strings.HasPrefix(data, Over):
		board.HandleOver(ctx, b, callback, h)
	case strings.HasPrefix(data, Page):
		board.HandleCoursesPage(ctx, b, callback, h)

	// ===== Drag & Drop =====
	case strings.HasPrefix(data, Drag):
		board.HandleDrag(ctx, b, callback, h)
	case strings.HasPrefix(data, Drop):
		board.HandleDrop(ctx, b, callback, h)
	case strings.HasPrefix(data, Confirm):
		board.HandleConfirm(ctx, b, callback, h)
	case strings.HasPrefix(data, Pick):
		board.HandlePick(ctx, b, callback, h)
	case strings.HasPrefix(data, Choose):
		board.HandleChoose(ctx, b, callback, h)

	// ===== Courses =====
	case strings.HasPrefix(data, Course):
		board.HandleCourse(ctx, b, callback, h)
	case strings.HasPrefix(data, Status):
		board.HandleStatus(ctx, b, callback, h)
	case strings.HasPrefix(data, DeleteConfirm):
		board.HandleDeleteConfirm(ctx, b, callback, h)
	case strings.HasPrefix(data, Delete):
		board.HandleDelete(ctx, b, callback, h)
	case strings.HasPrefix(data, History):
		board.HandleHistory(ctx, b, callback, h)
	case strings.HasPrefix(data, Notes):
		board.HandleNotes(ctx, b, callback, h)

	// ===== Drivers =====
	case strings.HasPrefix(data, DriverStatus):
		board.HandleDriverStatus(ctx, b, callback, h)

	// ===== Unknown Callback =====
	default:
		h.Logger.Warn("Unknown callback",
			zap.String("data", data),
			zap.Int64("user_id", callback.From.ID))
		common.AnswerCallback(ctx, b, callback.ID, "❌ Commande inconnue")
	}
}
