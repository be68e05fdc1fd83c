package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleNow    = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true).Underline(true)
)

const (
	unassignedLabel = "Non assignées"
	emptyCell       = "·"
	blockedCell     = "✕"
	colGap          = 2
)

// statusStyle цвет ячейки по отображаемому статусу курса
func statusStyle(s model.CourseStatus) lipgloss.Style {
	switch s {
	case model.CourseStatusPending:
		return StyleYellow
	case model.CourseStatusAssigned:
		return StyleBlue
	case model.CourseStatusInProgress:
		return StyleGreen
	default:
		return StyleDim
	}
}

// RenderBoard рисует дневную сетку: строка неназначенных курсов и по строке на водителя.
// В ячейке число курсов в слоте, цвет по статусу первого из них.
func RenderBoard(b *planning.Board) string {
	slots := b.Slots()

	headers := make([]string, 0, len(slots)+1)
	headers = append(headers, "Chauffeur")
	for _, h := range slots {
		label := fmt.Sprintf("%02dh", h)
		if b.IsCurrentSlot(h) {
			label = StyleNow.Render(label)
		}
		headers = append(headers, label)
	}

	rows := make([][]string, 0, len(b.Drivers)+1)

	unassigned := make([]string, 0, len(slots)+1)
	unassigned = append(unassigned, StyleYellow.Render(unassignedLabel))
	for _, h := range slots {
		var at []*model.Course
		for _, c := range b.Unassigned() {
			if c.ScheduledAt.In(b.Day.Location()).Hour() == h {
				at = append(at, c)
			}
		}
		unassigned = append(unassigned, cell(at, b.Now))
	}
	rows = append(rows, unassigned)

	for _, d := range b.Drivers {
		row := make([]string, 0, len(slots)+1)
		if d.CanTakeCourses() {
			row = append(row, d.Name)
		} else {
			row = append(row, StyleDim.Render(d.Name+" (hors service)"))
		}
		for _, h := range slots {
			at := b.CoursesAt(d.ID, h)
			if len(at) == 0 && !d.CanTakeCourses() {
				row = append(row, StyleRed.Render(blockedCell))
				continue
			}
			row = append(row, cell(at, b.Now))
		}
		rows = append(rows, row)
	}

	var sb strings.Builder
	title := fmt.Sprintf("Planning du %s", b.Day.Format("02/01/2006"))
	sb.WriteString(StyleHeader.Render(strings.ToUpper(title)) + "\n")
	sb.WriteString(StyleDim.Render(strings.Repeat("─", lipgloss.Width(title))) + "\n\n")
	sb.WriteString(renderTable(headers, rows))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%d course(s), %d non assignée(s), capacité %d par créneau\n",
		len(b.Courses), len(b.Unassigned()), b.Settings.SlotCapacity))

	return sb.String()
}

func cell(courses []*model.Course, now time.Time) string {
	if len(courses) == 0 {
		return StyleDim.Render(emptyCell)
	}
	return statusStyle(planning.DisplayStatus(courses[0], now)).Render(strconv.Itoa(len(courses)))
}

// RenderCourse карточка курса для вывода после команды
func RenderCourse(c *model.Course, loc *time.Location) string {
	driver := "—"
	if c.HasDriver() {
		driver = *c.DriverID
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("ID     "), c.ID))
	sb.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("HEURE  "), c.ScheduledAt.In(loc).Format("02/01/2006 15:04")))
	sb.WriteString(fmt.Sprintf("  %s  %s → %s\n", StyleDim.Render("TRAJET "), c.Origin, c.Destination))
	sb.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("STATUT "), statusStyle(c.Status).Render(string(c.Status))))
	sb.WriteString(fmt.Sprintf("  %s  %s\n", StyleDim.Render("CHAUFF."), driver))
	return sb.String()
}

// renderTable выравнивает колонки по видимой ширине
func renderTable(headers []string, rows [][]string) string {
	cols := len(headers)
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := 0; i < cols; i++ {
			var v string
			if i < len(cells) {
				v = cells[i]
			}
			pad := widths[i] - lipgloss.Width(v)
			if style != nil {
				v = style.Render(v)
			}
			b.WriteString(v)
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &StyleHeader)
	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row, nil)
	}

	return b.String()
}
