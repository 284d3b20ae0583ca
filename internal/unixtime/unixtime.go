// Package unixtime converts proleptic Gregorian dates to Unix timestamps
// without going through time.Location. Transition instants computed from a
// zone definition feed the very machinery time.Location implements, so
// depending on it here would be circular.
package unixtime

import "time"

// FromDate converts a date plus a time-of-day offset from midnight to a Unix
// timestamp, i.e. the number of seconds since 1970-01-01 00:00:00 UTC.
// It ignores leap seconds but respects leap years.
func FromDate(year int, month time.Month, day int, timeOfDay time.Duration) int64 {
	daysBeforeMonth := []uint64{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

	d := daysSinceEpoch(year) + daysBeforeMonth[int(month)-1] + (uint64(day) - 1)
	if month > time.February && (year%4 == 0 && (year%100 != 0 || year%400 == 0)) {
		d++ // +leap day
	}
	abs := int64(d*secondsPerDay) + int64(timeOfDay/time.Second)
	return abs + (absoluteToInternal + internalToUnix)
}

// The epoch constants mirror the ones in the standard library's time package.
const (
	secondsPerDay   = 24 * 60 * 60
	daysPer400Years = 365*400 + 97
	daysPer100Years = 365*100 + 24
	daysPer4Years   = 365*4 + 1

	absoluteZeroYear         = -292277022399
	internalYear             = 1
	absoluteToInternal int64 = (absoluteZeroYear - internalYear) * 365.2425 * secondsPerDay
	unixToInternal     int64 = (1969*365 + 1969/4 - 1969/100 + 1969/400) * secondsPerDay
	internalToUnix     int64 = -unixToInternal
)

// daysSinceEpoch takes a year and returns the number of days from the
// absolute epoch to the start of that year, accounting for leap days.
func daysSinceEpoch(year int) uint64 {
	y := uint64(int64(year) - absoluteZeroYear)

	// 400-year cycles.
	n := y / 400
	y -= 400 * n
	d := daysPer400Years * n

	// 100-year cycles.
	n = y / 100
	y -= 100 * n
	d += daysPer100Years * n

	// 4-year cycles.
	n = y / 4
	y -= 4 * n
	d += daysPer4Years * n

	// Non-leap years.
	d += 365 * y

	return d
}
