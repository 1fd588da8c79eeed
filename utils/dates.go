// utils/dates.go
package utils

import (
	"fmt"
	"math"
	"time"
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(math.Round(end.Sub(start).Hours() / 24))
}

// RelativeDay labels t relative to now: "Today", "Tomorrow", "In 3 days",
// "Yesterday" or "5 days ago". Both are compared in t's location.
func RelativeDay(now, t time.Time) string {
	days := DaysBetween(now.In(t.Location()), t)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 1:
		return fmt.Sprintf("In %d days", days)
	default:
		return fmt.Sprintf("%d days ago", -days)
	}
}
