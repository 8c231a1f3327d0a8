package gymstats

import (
	"strconv"
	"time"

	"github.com/2beens/gymtracker/internal/apperr"
)

const DateLayout = "2006-01-02"

// ParseDate checks that s is a valid ISO calendar date (YYYY-MM-DD) and returns it unchanged.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return "", apperr.New(apperr.InvalidInput, "invalid date [%s], expected YYYY-MM-DD", s)
	}
	return s, nil
}

// ParseYearMonth parses calendar path values; month must be within 1..12.
func ParseYearMonth(yearStr, monthStr string) (int, time.Month, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, apperr.New(apperr.InvalidInput, "invalid year [%s]", yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, apperr.New(apperr.InvalidInput, "invalid month [%s]", monthStr)
	}
	return year, time.Month(month), nil
}
