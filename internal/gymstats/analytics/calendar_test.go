package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 28, DaysInMonth(2025, time.February))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(1900, time.February))
	assert.Equal(t, 29, DaysInMonth(2000, time.February))
	assert.Equal(t, 31, DaysInMonth(2025, time.December))
	assert.Equal(t, 30, DaysInMonth(2025, time.September))
}

func TestNewCalendar(t *testing.T) {
	calendar := newCalendar(2024, time.February, []string{"2024-02-01", "2024-02-29", "2024-03-01"})

	assert.Equal(t, 2024, calendar.Year)
	assert.Equal(t, 2, calendar.Month)
	assert.Len(t, calendar.Days, 29)
	assert.True(t, calendar.Days["2024-02-01"])
	assert.True(t, calendar.Days["2024-02-29"])
	assert.False(t, calendar.Days["2024-02-15"])
	_, hasMarch := calendar.Days["2024-03-01"]
	assert.False(t, hasMarch)
}
