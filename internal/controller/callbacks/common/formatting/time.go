package formatting

import (
	"fmt"
	"time"
)

var weekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

var months = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatDateTime форматирует дату и время: 19/10/2026 14h20
func FormatDateTime(t time.Time) string {
	return t.Format("02/01/2006") + " " + FormatTime(t)
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatTime форматирует время во французской записи: 14h20
func FormatTime(t time.Time) string {
	return fmt.Sprintf("%02dh%02d", t.Hour(), t.Minute())
}

// FormatHour подпись колонки часа: 09h
func FormatHour(h int) string {
	return fmt.Sprintf("%02dh", h)
}

// FormatDayTitle заголовок дня: lundi 19 octobre 2026
func FormatDayTitle(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", WeekdayName(t.Weekday()), t.Day(), MonthName(t.Month()), t.Year())
}

// FormatDayShort короткая подпись дня для кнопок: lun. 19/10
func FormatDayShort(t time.Time) string {
	return WeekdayName(t.Weekday())[:3] + ". " + t.Format("02/01")
}

// WeekdayName название дня недели по-французски
func WeekdayName(d time.Weekday) string {
	if d < time.Sunday || d > time.Saturday {
		return "?"
	}
	return weekdays[d]
}

// MonthName название месяца по-французски
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return "?"
	}
	return months[m-1]
}

// ParseDateTime разбирает ввод диспетчера в поясе loc.
// Принимает "19/10/2026 14h20", "19/10/2026 14:20", "19/10 14h20" (текущий год) и "14h20" (сегодня).
func ParseDateTime(input string, now time.Time, loc *time.Location) (time.Time, error) {
	now = now.In(loc)

	var day, month, year, hour, minute int
	switch {
	case scan(input, "%d/%d/%d %dh%d", &day, &month, &year, &hour, &minute),
		scan(input, "%d/%d/%d %d:%d", &day, &month, &year, &hour, &minute):
	case scan(input, "%d/%d %dh%d", &day, &month, &hour, &minute),
		scan(input, "%d/%d %d:%d", &day, &month, &hour, &minute):
		year = now.Year()
	case scan(input, "%dh%d", &hour, &minute), scan(input, "%d:%d", &hour, &minute):
		year, month, day = now.Year(), int(now.Month()), now.Day()
	default:
		return time.Time{}, fmt.Errorf("unrecognized date %q", input)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("date out of range %q", input)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("no such day %q", input)
	}
	return t, nil
}

func scan(input, format string, args ...interface{}) bool {
	var rest string
	n, _ := fmt.Sscanf(input+" \x00", format+" %s", append(args, &rest)...)
	return n == len(args)+1 && rest == "\x00"
}
