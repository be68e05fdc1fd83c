package formatting

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
)

// Truncate обрезает строку по рунам
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

// FormatCourseButton короткая подпись курса для кнопки: 🔵 14h20 Opéra → CDG
func FormatCourseButton(c *model.Course, now time.Time) string {
	display := GetCourseStatusDisplay(planning.DisplayStatus(c, now))
	route := Truncate(c.Origin, 14) + " → " + Truncate(c.Destination, 14)
	return fmt.Sprintf("%s %s %s", display.Emoji, FormatTime(c.ScheduledAt.In(now.Location())), route)
}

// FormatCourseCard карточка курса (HTML)
func FormatCourseCard(c *model.Course, client *model.Client, driver *model.Driver, now time.Time) string {
	display := GetCourseStatusDisplay(planning.DisplayStatus(c, now))

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>Course %s</b>\n\n", display.Emoji, html.EscapeString(FormatDateTime(c.ScheduledAt.In(now.Location()))))
	fmt.Fprintf(&sb, "📍 %s\n🏁 %s\n", html.EscapeString(c.Origin), html.EscapeString(c.Destination))

	if client != nil {
		fmt.Fprintf(&sb, "👤 %s", html.EscapeString(client.Name))
		if client.Phone != "" {
			fmt.Fprintf(&sb, " · %s", html.EscapeString(client.Phone))
		}
		sb.WriteString("\n")
	}

	if driver != nil {
		fmt.Fprintf(&sb, "🚘 %s", html.EscapeString(driver.Name))
		if driver.Vehicle != "" {
			fmt.Fprintf(&sb, " (%s)", html.EscapeString(driver.Vehicle))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("🚘 Non assignée\n")
	}

	fmt.Fprintf(&sb, "💶 %s\n", FormatOptionalPrice(c.PriceCents))
	fmt.Fprintf(&sb, "📊 %s", display.Text)
	if display.Text != GetCourseStatusDisplay(c.Status).Text {
		fmt.Fprintf(&sb, " (enregistré : %s)", GetCourseStatusDisplay(c.Status).Text)
	}
	sb.WriteString("\n")

	if c.Notes != "" {
		fmt.Fprintf(&sb, "\n📝 %s\n", html.EscapeString(c.Notes))
	}

	return sb.String()
}
