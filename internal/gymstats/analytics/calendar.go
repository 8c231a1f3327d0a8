package analytics

import (
	"fmt"
	"time"
)

type Calendar struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Days  map[string]bool `json:"days"`
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func monthPrefix(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d-", year, int(month))
}

// newCalendar marks every day of the month as inactive, except the given active dates.
func newCalendar(year int, month time.Month, activeDates []string) *Calendar {
	prefix := monthPrefix(year, month)
	days := DaysInMonth(year, month)

	calendar := &Calendar{
		Year:  year,
		Month: int(month),
		Days:  make(map[string]bool, days),
	}
	for day := 1; day <= days; day++ {
		calendar.Days[fmt.Sprintf("%s%02d", prefix, day)] = false
	}
	for _, date := range activeDates {
		if _, ok := calendar.Days[date]; ok {
			calendar.Days[date] = true
		}
	}
	return calendar
}
