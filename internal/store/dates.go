package store

import (
	"time"

	"github.com/classdesk/diary-api/internal/models"
)

// YearDates returns every calendar date of the given year as store row keys,
// in order: 365 entries, 366 in a leap year.
func YearDates(year int) []string {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	dates := make([]string, 0, 366)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(models.DateLayout))
	}
	return dates
}
