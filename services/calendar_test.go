package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthKeyOrdersChronologically(t *testing.T) {
	assert.Less(t, monthKey(2025, 12), monthKey(2026, 1))
	assert.Less(t, monthKey(2026, 1), monthKey(2026, 2))
	assert.Equal(t, monthKey(2026, 1), monthKey(2025, 13))
}

func TestValidYearMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		want  bool
	}{
		{"valid", 2026, 9, true},
		{"january", 2026, 1, true},
		{"december", 2026, 12, true},
		{"month zero", 2026, 0, false},
		{"month thirteen", 2026, 13, false},
		{"negative month", 2026, -1, false},
		{"three digit year", 999, 6, false},
		{"five digit year", 10000, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidYearMonth(tt.year, tt.month))
		})
	}
}

func TestCurrentMonthMatchesClock(t *testing.T) {
	year, month := CurrentMonth()
	now := time.Now()
	assert.Equal(t, now.Year(), year)
	assert.Equal(t, int(now.Month()), month)
}

func addMonths(year, month, delta int) (int, int) {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), int(t.Month())
}

func TestIsEditableMonthWindow(t *testing.T) {
	curYear, curMonth := CurrentMonth()

	assert.True(t, IsEditableMonth(curYear, curMonth), "current month is editable")

	y, m := addMonths(curYear, curMonth, -1)
	assert.False(t, IsEditableMonth(y, m), "past months are read-only")

	y, m = addMonths(curYear, curMonth, MaxFutureMonths)
	assert.True(t, IsEditableMonth(y, m), "window edge is editable")

	y, m = addMonths(curYear, curMonth, MaxFutureMonths+1)
	assert.False(t, IsEditableMonth(y, m), "beyond the window is not editable")
}

func TestIsPastMonth(t *testing.T) {
	curYear, curMonth := CurrentMonth()

	assert.False(t, IsPastMonth(curYear, curMonth))

	y, m := addMonths(curYear, curMonth, -1)
	assert.True(t, IsPastMonth(y, m))

	y, m = addMonths(curYear, curMonth, 1)
	assert.False(t, IsPastMonth(y, m))
}
