package common

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/go-telegram/bot/models"
)

const (
	maxListedCourses = 8
	hoursPerRow      = 4
)

// BoardScreen текст и клавиатура доски на день.
// Диспетчер видит полную сетку, водитель - только свои курсы.
func BoardScreen(board *planning.Board, s callbacktypes.Session, caps planning.Capabilities, today time.Time) (string, *models.InlineKeyboardMarkup) {
	if !caps.FullGrid() {
		return driverBoardScreen(board, today)
	}

	var sb strings.Builder
	unassigned := board.Unassigned()

	fmt.Fprintf(&sb, "📋 <b>Planning du %s</b>\n", formatting.FormatDayTitle(board.Day))
	fmt.Fprintf(&sb, "%s · %d non assignée(s) · %s-%s\n",
		formatting.PluralizeCourses(len(board.Courses)),
		len(unassigned),
		formatting.FormatHour(board.Settings.OpeningHour),
		formatting.FormatHour(board.Settings.ClosingHour))

	if len(unassigned) > 0 {
		sb.WriteString("\n<b>Non assignées</b>\n")
		for _, c := range unassigned {
			sb.WriteString(html.EscapeString(formatting.FormatCourseButton(c, board.Now)) + "\n")
		}
	}

	if len(board.Drivers) > 0 {
		sb.WriteString("\n<b>Chauffeurs</b>\n")
		for _, d := range board.Drivers {
			display := formatting.GetDriverStatusDisplay(d.Status)
			fmt.Fprintf(&sb, "%s %s : %s\n", display.Emoji, html.EscapeString(d.Name),
				formatting.PluralizeCourses(len(board.DriverCourses(d.ID))))
		}
	} else {
		sb.WriteString("\nAucun chauffeur. Ajoutez-en avec /drivers\n")
	}

	if g := s.Gesture; g.Active() {
		sb.WriteString("\n" + gestureLine(board, g))
	}

	kb := keyboard.NewBuilder()

	if s.Gesture.Active() {
		kb.Row(
			keyboard.Button("📥 Désassigner", "drop:unassigned"),
			keyboard.Button("✖️ Lâcher", "drag:cancel"),
		)
	}

	for i, c := range unassigned {
		if i == maxListedCourses {
			break
		}
		label := formatting.FormatCourseButton(c, board.Now)
		if isDragged(s.Gesture, c.ID) {
			label = "✋ " + label
		}
		src := planning.DragSource{Kind: planning.KindUnassignedItem, CourseID: c.ID}
		kb.Row(
			keyboard.Button(label, "drag:"+src.Encode()),
			keyboard.Button("ℹ️", "course:"+c.ID),
		)
	}

	for _, d := range board.Drivers {
		label := fmt.Sprintf("%s %s (%d)", formatting.GetDriverStatusDisplay(d.Status).Emoji,
			formatting.Truncate(d.Name, 20), len(board.DriverCourses(d.ID)))
		if d.ID == s.Focus {
			label = "▾ " + label
		}
		kb.Row(keyboard.Button(label, "over:"+d.ID))

		if d.ID == s.Focus {
			addDriverRows(kb, board, s.Gesture, d)
		}
	}

	kb.Row(keyboard.DayButtons(board.Day, today)...)
	kb.Row(
		keyboard.Button("🖼 Image", "image"),
		keyboard.Button("➕ Course", "newcourse"),
	)

	return sb.String(), kb.Build()
}

// addDriverRows курсы раскрытого водителя и кнопки его часов
func addDriverRows(kb *keyboard.Builder, board *planning.Board, g planning.Gesture, d *model.Driver) {
	for _, c := range board.DriverCourses(d.ID) {
		label := "   " + formatting.FormatCourseButton(c, board.Now)
		if isDragged(g, c.ID) {
			label = "✋" + label
		}
		src := planning.DragSource{Kind: planning.KindPlacedItem, CourseID: c.ID}
		kb.Row(
			keyboard.Button(label, "drag:"+src.Encode()),
			keyboard.Button("ℹ️", "course:"+c.ID),
		)
	}

	kb.SlotRow(board.Slots(), hoursPerRow, func(h int) models.InlineKeyboardButton {
		return slotButton(board, g, d, h)
	})
}

// slotButton кнопка часа водителя.
// Во время перетаскивания - зона сброса, иначе подсказка "+N" для назначения кликом.
func slotButton(board *planning.Board, g planning.Gesture, d *model.Driver, hour int) models.InlineKeyboardButton {
	label := formatting.FormatHour(hour)
	if board.IsCurrentSlot(hour) {
		label = "• " + label
	}
	target := planning.SlotTarget(d.ID, hour)
	open := d.CanTakeCourses() && board.IsAvailable(d.ID, hour)

	if g.Active() {
		course := board.Course(g.Source.CourseID)
		if open && course != nil && board.IsCompatible(course, hour) && board.Fits(course, d.ID, hour) {
			return keyboard.Button(label+" ✅", "drop:"+target.Encode())
		}
		return keyboard.Button(label+" ⛔", "drop:"+target.Encode())
	}

	if n := len(board.Placeable(d.ID, hour)); n > 0 && d.CanTakeCourses() {
		return keyboard.Button(label+" +"+strconv.Itoa(n), "pick:"+target.Encode())
	}
	if n := len(board.CoursesAt(d.ID, hour)); n > 0 {
		return keyboard.Button(label+" ·"+strconv.Itoa(n), "noop")
	}
	return keyboard.Button(label, "noop")
}

// gestureLine описание текущего перетаскивания и цели под курсором
func gestureLine(board *planning.Board, g planning.Gesture) string {
	course := board.Course(g.Source.CourseID)
	if course == nil {
		return "✋ Course sélectionnée introuvable sur ce jour\n"
	}

	line := "✋ <b>En main :</b> " + html.EscapeString(formatting.FormatCourseButton(course, board.Now)) + "\n"
	if g.Over == nil {
		return line + "Choisissez un chauffeur puis un créneau, ou 📥 pour désassigner.\n"
	}
	if g.Over.Kind == planning.TargetUnassigned {
		return line + "🎯 Cible : non assignées\n"
	}

	d := board.Driver(g.Over.DriverID)
	if d == nil {
		return line
	}
	verdict := "✅ possible"
	switch {
	case !d.CanTakeCourses():
		verdict = "⛔ hors service"
	case !board.IsCompatible(course, g.Over.Hour):
		verdict = "⛔ horaire incompatible"
	case !board.Fits(course, d.ID, g.Over.Hour):
		verdict = "⛔ complet"
	}
	return line + fmt.Sprintf("🎯 Cible : %s %s, %s\n", html.EscapeString(d.Name), formatting.FormatHour(g.Over.Hour), verdict)
}

func isDragged(g planning.Gesture, courseID string) bool {
	return g.Active() && g.Source.CourseID == courseID
}

// driverBoardScreen упрощённый вид водителя: свои курсы дня
func driverBoardScreen(board *planning.Board, today time.Time) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🚘 <b>Mes courses du %s</b>\n\n", formatting.FormatDayTitle(board.Day))

	kb := keyboard.NewBuilder()
	if len(board.Courses) == 0 {
		sb.WriteString("Aucune course prévue.\n")
	}
	for _, c := range board.Courses {
		sb.WriteString(html.EscapeString(formatting.FormatCourseButton(c, board.Now)) + "\n")
		kb.Row(keyboard.Button(formatting.FormatCourseButton(c, board.Now), "course:"+c.ID))
	}

	kb.Row(keyboard.DayButtons(board.Day, today)...)
	return sb.String(), kb.Build()
}

// ConfirmScreen запрос подтверждения переназначения
func ConfirmScreen(course *model.Course, from, to *model.Driver, r planning.Reassignment, now time.Time) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("🔁 <b>Réassigner la course ?</b>\n\n%s\n\nDe : %s\nÀ : %s (%s)",
		html.EscapeString(formatting.FormatCourseButton(course, now)),
		html.EscapeString(driverName(from)),
		html.EscapeString(driverName(to)),
		formatting.FormatHour(r.Hour))

	kb := keyboard.NewBuilder().
		AddRows(keyboard.ConfirmCancelButtons("confirm:yes", "confirm:no")).
		Build()
	return text, kb
}

// PickerScreen выбор курса, когда в слот подходят несколько
func PickerScreen(candidates []*model.Course, driver *model.Driver, hour int, now time.Time) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("🧩 <b>%d courses possibles</b> pour %s à %s.\nLaquelle assigner ?",
		len(candidates), html.EscapeString(driverName(driver)), formatting.FormatHour(hour))

	kb := keyboard.NewBuilder()
	for i, c := range candidates {
		kb.Row(keyboard.Button(formatting.FormatCourseButton(c, now), "choose:"+strconv.Itoa(i)))
	}
	kb.Row(keyboard.CancelButton("board"))
	return text, kb.Build()
}

// CourseScreen карточка курса с доступными действиями
func CourseScreen(c *model.Course, client *model.Client, driver *model.Driver, caps planning.Capabilities, now time.Time) (string, *models.InlineKeyboardMarkup) {
	text := formatting.FormatCourseCard(c, client, driver, now)

	kb := keyboard.NewBuilder()

	var statusRow []models.InlineKeyboardButton
	for _, to := range []model.CourseStatus{model.CourseStatusInProgress, model.CourseStatusCompleted, model.CourseStatusCanceled} {
		if to == c.Status || !caps.CanSetStatus(c, to) {
			continue
		}
		if c.Status.IsTerminal() && !caps.CanForce() {
			continue
		}
		display := formatting.GetCourseStatusDisplay(to)
		statusRow = append(statusRow, keyboard.Button(display.Emoji+" "+display.Text, "status:"+c.ID+":"+string(to)))
	}
	kb.Row(statusRow...)

	if caps.CanAssign() && !c.Status.IsTerminal() {
		kind := planning.KindUnassignedItem
		label := "✋ Placer"
		if c.HasDriver() {
			kind = planning.KindPlacedItem
			label = "✋ Déplacer"
		}
		src := planning.DragSource{Kind: kind, CourseID: c.ID}
		kb.Row(keyboard.Button(label, "drag:"+src.Encode()))
	}

	if caps.CanEditCourses() {
		kb.Row(
			keyboard.Button("📝 Notes", "notes:"+c.ID),
			keyboard.Button("📜 Historique", "hist:"+c.ID),
			keyboard.DeleteButton("del:"+c.ID),
		)
	}

	kb.AddBackToBoardButton()
	return text, kb.Build()
}

// DeleteConfirmScreen подтверждение удаления курса
func DeleteConfirmScreen(c *model.Course, now time.Time) (string, *models.InlineKeyboardMarkup) {
	text := "🗑 <b>Supprimer cette course ?</b>\n\n" + html.EscapeString(formatting.FormatCourseButton(c, now))
	kb := keyboard.NewBuilder().
		AddRows(keyboard.ConfirmCancelButtons("delok:"+c.ID, "course:"+c.ID)).
		Build()
	return text, kb
}

// HistoryScreen журнал назначений курса
func HistoryScreen(c *model.Course, events []*model.AssignmentEvent, drivers map[string]*model.Driver, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("📜 <b>Historique des affectations</b>\n\n")
	if len(events) == 0 {
		sb.WriteString("Aucun changement enregistré.\n")
	}
	for _, e := range events {
		fmt.Fprintf(&sb, "%s : %s → %s (%s)\n",
			formatting.FormatDateTime(e.CreatedAt.In(loc)),
			html.EscapeString(eventDriver(e.FromDriverID, drivers)),
			html.EscapeString(eventDriver(e.ToDriverID, drivers)),
			formatting.GetCourseStatusDisplay(e.Status).Text)
	}

	kb := keyboard.NewBuilder().
		Row(keyboard.BackButton("course:" + c.ID)).
		Build()
	return sb.String(), kb
}

func eventDriver(id *string, drivers map[string]*model.Driver) string {
	if id == nil {
		return "non assignée"
	}
	if d, ok := drivers[*id]; ok {
		return d.Name
	}
	return "?"
}

func driverName(d *model.Driver) string {
	if d == nil {
		return "non assignée"
	}
	return d.Name
}
