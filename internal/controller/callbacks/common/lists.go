package common

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/go-telegram/bot/models"
)

// CoursesPerPage размер страницы списка курсов
const CoursesPerPage = 8

// CoursesListScreen страница списка предстоящих курсов
func CoursesListScreen(courses []*model.Course, page int, now time.Time) (string, *models.InlineKeyboardMarkup) {
	totalPages := (len(courses) + CoursesPerPage - 1) / CoursesPerPage
	if page < 0 || page >= totalPages {
		page = 0
	}

	kb := keyboard.NewBuilder()
	if len(courses) == 0 {
		kb.AddBackToBoardButton()
		return "📭 Aucune course à venir.", kb.Build()
	}

	text := fmt.Sprintf("🗂 <b>Courses à venir</b> (%s)", formatting.PluralizeCourses(len(courses)))

	start := page * CoursesPerPage
	end := start + CoursesPerPage
	if end > len(courses) {
		end = len(courses)
	}
	for _, c := range courses[start:end] {
		label := formatting.FormatDayShort(c.ScheduledAt.In(now.Location())) + " " + formatting.FormatCourseButton(c, now)
		kb.Row(keyboard.Button(label, "course:"+c.ID))
	}

	kb.AddPagination("courses_page:", page, totalPages)
	kb.AddBackToBoardButton()
	return text, kb.Build()
}

// DriversScreen список водителей с кнопками смены статуса.
// Водитель видит и меняет только свой статус.
func DriversScreen(drivers []*model.Driver, caps planning.Capabilities) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("🚘 <b>Chauffeurs</b>\n\n")

	statuses := []model.DriverStatus{model.DriverStatusAvailable, model.DriverStatusBusy, model.DriverStatusOutOfOrder}
	kb := keyboard.NewBuilder()

	shown := 0
	for _, d := range drivers {
		if !caps.FullGrid() && d.ID != caps.DriverID {
			continue
		}
		shown++

		display := formatting.GetDriverStatusDisplay(d.Status)
		fmt.Fprintf(&sb, "%s <b>%s</b>", display.Emoji, html.EscapeString(d.Name))
		if d.Vehicle != "" {
			fmt.Fprintf(&sb, " · %s", html.EscapeString(d.Vehicle))
		}
		fmt.Fprintf(&sb, " · %s\n", display.Text)

		row := []models.InlineKeyboardButton{keyboard.Button(formatting.Truncate(d.Name, 16), "noop")}
		for _, s := range statuses {
			label := formatting.GetDriverStatusDisplay(s).Emoji
			if s == d.Status {
				label = "·" + label + "·"
			}
			row = append(row, keyboard.Button(label, "dstatus:"+d.ID+":"+string(s)))
		}
		kb.AddRow(row)
	}

	if shown == 0 {
		sb.WriteString("Aucun chauffeur.\n")
	}
	if caps.FullGrid() {
		kb.Row(keyboard.Button("➕ Chauffeur", "newdriver"))
	}
	return sb.String(), kb.Build()
}
