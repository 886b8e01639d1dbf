package services

import "time"

// MaxFutureMonths bounds how far ahead a budget month may be created
// or modified.
const MaxFutureMonths = 12

// monthKey collapses (year, month) into a single comparable integer.
func monthKey(year, month int) int {
	return year*12 + month
}

// CurrentMonth returns the current calendar (year, month), 1-indexed.
func CurrentMonth() (int, int) {
	now := time.Now()
	return now.Year(), int(now.Month())
}

// IsPastMonth reports whether (year, month) is strictly before the
// current calendar month.
func IsPastMonth(year, month int) bool {
	curYear, curMonth := CurrentMonth()
	return monthKey(year, month) < monthKey(curYear, curMonth)
}

// IsEditableMonth implements the rolling editable window: the current
// month and up to MaxFutureMonths months ahead of it.
func IsEditableMonth(year, month int) bool {
	curYear, curMonth := CurrentMonth()
	key := monthKey(year, month)
	curKey := monthKey(curYear, curMonth)
	return key >= curKey && key <= curKey+MaxFutureMonths
}

// ValidYearMonth checks the raw (year, month) input range.
func ValidYearMonth(year, month int) bool {
	return year >= 1000 && year <= 9999 && month >= 1 && month <= 12
}
