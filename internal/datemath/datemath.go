// Package datemath provides proleptic Gregorian day arithmetic for resolving
// recurring transition rules to concrete calendar days. It deliberately avoids
// time.Location: the callers compute the data that time.Location style APIs
// are later built from.
package datemath

import "time"

// IsLeapYear determines if the year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in a given month for a specific year.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// DayOfWeek calculates the day of the week for a given date using Zeller's
// congruence, adjusted so that the result matches time.Weekday numbering
// (Sunday=0 .. Saturday=6).
func DayOfWeek(year int, month time.Month, day int) time.Weekday {
	m := int(month)
	if m < 3 {
		m += 12
		year--
	}
	k := year % 100
	j := year / 100
	h := (day + ((13 * (m + 1)) / 5) + k + (k / 4) + (j / 4) + (5 * j)) % 7
	return time.Weekday((h + 6) % 7)
}

// NthWeekday returns the day of the month of the nth occurrence (n in 1..5)
// of the given weekday. If the month has no nth occurrence, the last
// occurrence is returned instead, so n=5 always means "the last one".
func NthWeekday(year int, month time.Month, weekday time.Weekday, n int) int {
	first := DayOfWeek(year, month, 1)
	offset := (int(weekday) - int(first) + 7) % 7
	day := 1 + offset + (n-1)*7
	if day > DaysInMonth(year, month) {
		day -= 7
	}
	return day
}

// LastWeekday returns the day of the month of the last occurrence of the
// given weekday.
func LastWeekday(year int, month time.Month, weekday time.Weekday) int {
	last := DaysInMonth(year, month)
	offset := (int(DayOfWeek(year, month, last)) - int(weekday) + 7) % 7
	return last - offset
}
