package alerts

import (
	"strconv"
	"time"
)

// Indexed by time.Weekday, Sunday first.
var spanishWeekdays = [7]string{"domingo", "lunes", "martes", "miercoles", "jueves", "viernes", "sabado"}

var spanishMonthAbbrev = [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

// DateLabel labels the day before now, the day whose completed activity the
// alerts inspect, as "<weekday> <day> <month>" in Spanish.
func DateLabel(now time.Time) string {
	y := now.AddDate(0, 0, -1)

	return spanishWeekdays[y.Weekday()] + " " + strconv.Itoa(y.Day()) + " " + spanishMonthAbbrev[y.Month()-1]
}
