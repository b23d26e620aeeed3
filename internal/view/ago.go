package view

import (
	"fmt"
	"math"
	"time"
)

const (
	day   = 24 * time.Hour
	month = 30 * day
	year  = 365 * day
)

// Ago describes an elapsed duration the way the todo list shows it, e.g.
// "2 minutes ago" or "approximately 3 months ago". Months and years have a
// fixed length of 30 and 365 days.
func Ago(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}

	switch {
	case elapsed < time.Minute:
		return fmt.Sprintf("%d seconds ago", round(elapsed, time.Second))
	case elapsed < time.Hour:
		return fmt.Sprintf("%d minutes ago", round(elapsed, time.Minute))
	case elapsed < day:
		return fmt.Sprintf("%d hours ago", round(elapsed, time.Hour))
	case elapsed < month:
		return fmt.Sprintf("approximately %d days ago", round(elapsed, day))
	case elapsed < year:
		return fmt.Sprintf("approximately %d months ago", round(elapsed, month))
	default:
		return fmt.Sprintf("approximately %d years ago", round(elapsed, year))
	}
}

func round(d, unit time.Duration) int64 {
	return int64(math.Round(float64(d) / float64(unit)))
}
