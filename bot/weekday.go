package bot

import "time"

// parseWeekday understands the short and long weekday spellings users
// type after /pdf, in French and English.
func parseWeekday(arg string) (time.Weekday, bool) {
	switch arg {
	case "lu", "lundi", "mo", "monday":
		return time.Monday, true
	case "ma", "mardi", "tu", "tuesday":
		return time.Tuesday, true
	case "me", "mercredi", "we", "wednesday":
		return time.Wednesday, true
	case "je", "jeudi", "th", "thursday":
		return time.Thursday, true
	case "ve", "vendredi", "fr", "friday":
		return time.Friday, true
	case "sa", "samedi", "saturday":
		return time.Saturday, true
	case "di", "dimanche", "su", "sunday":
		return time.Sunday, true
	}
	return time.Sunday, false
}
