package skill

import (
	"fmt"
	"strings"
	"time"
)

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// spokenDate renders "5 мая", adding the year when it is not the current one.
func spokenDate(date, today time.Time) string {
	s := fmt.Sprintf("%d %s", date.Day(), monthsGenitive[date.Month()-1])
	if date.Year() != today.Year() {
		s += fmt.Sprintf(" %d года", date.Year())
	}
	return s
}

// joinSpoken joins items as "a, b и c".
func joinSpoken(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " и " + items[len(items)-1]
}

func noteLine(title string, date, today time.Time) string {
	return fmt.Sprintf("«%s» от %s", title, spokenDate(date, today))
}
