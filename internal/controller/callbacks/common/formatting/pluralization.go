package formatting

import "fmt"

// PluralizeCourses "0 course", "1 course", "3 courses"
func PluralizeCourses(count int) string {
	return plural(count, "course", "courses")
}

// PluralizeDrivers "1 chauffeur", "2 chauffeurs"
func PluralizeDrivers(count int) string {
	return plural(count, "chauffeur", "chauffeurs")
}

// во французском 0 и 1 - единственное число
func plural(count int, one, many string) string {
	if count <= 1 {
		return fmt.Sprintf("%d %s", count, one)
	}
	return fmt.Sprintf("%d %s", count, many)
}
