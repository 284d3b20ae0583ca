package tzdef

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseOffset parses a signed duration in [-]H[:MM[:SS[.fff]]] form, the
// textual form used by the Bias and TimeOffset attributes.
//
// Recognized forms include:
//
//	2            time in hours
//	2:00         time in hours and minutes
//	01:28:14     time in hours, minutes, and seconds
//	00:19:32.13  time with fractional seconds
//	-2:30        2.5 hours before 00:00
func parseOffset(s string) (time.Duration, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("empty offset")
	}

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = strings.TrimPrefix(s, "-")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("expected at most 3 parts, got %d", len(parts))
	}

	var hours, minutes, seconds, millis int
	var err error

	hours, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("hours: %v", err)
	}

	if len(parts) > 1 {
		minutes, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, fmt.Errorf("minutes: %v", err)
		}
	}

	if len(parts) > 2 {
		secondParts := strings.Split(parts[2], ".")
		seconds, err = strconv.Atoi(secondParts[0])
		if err != nil {
			return 0, fmt.Errorf("seconds: %v", err)
		}
		if len(secondParts) > 1 {
			// Pad or truncate the fraction to millisecond precision.
			frac := secondParts[1]
			if len(frac) > 3 {
				frac = frac[:3]
			}
			for len(frac) < 3 {
				frac += "0"
			}
			millis, err = strconv.Atoi(frac)
			if err != nil {
				return 0, fmt.Errorf("fractional seconds: %v", err)
			}
		}
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond

	if negative {
		d = -d
	}
	return d, nil
}

// formatOffset renders a duration in the shortest [-]H:MM[:SS[.fff]] form
// that parseOffset reads back without loss.
func formatOffset(d time.Duration) string {
	var sign string
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond

	out := fmt.Sprintf("%s%d:%02d", sign, h, m)
	if s != 0 || ms != 0 {
		out += fmt.Sprintf(":%02d", s)
	}
	if ms != 0 {
		out += fmt.Sprintf(".%03d", ms)
	}
	return out
}

// parseMonth parses a month name. Names may be abbreviated to no fewer than
// three characters and are matched case-insensitively.
func parseMonth(s string) (time.Month, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("month %q: too short", s)
	}
	l := strings.ToLower(s)
	for m := time.January; m <= time.December; m++ {
		long := strings.ToLower(m.String())
		if isAbbrev(l, long, long[:3]) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("month %q: invalid", s)
}

// formatMonth renders a month as its three-letter abbreviation.
func formatMonth(m time.Month) string {
	return m.String()[:3]
}

// parseWeekday parses a weekday name. Names may be abbreviated to no fewer
// than three characters and are matched case-insensitively.
func parseWeekday(s string) (time.Weekday, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("weekday %q: too short", s)
	}
	l := strings.ToLower(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		long := strings.ToLower(d.String())
		if isAbbrev(l, long, long[:3]) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("weekday %q: invalid", s)
}

// formatWeekday renders a weekday as its three-letter abbreviation.
func formatWeekday(d time.Weekday) string {
	return d.String()[:3]
}

// parseOccurrence parses the Occurrence attribute of a floating recurrence:
// 1 through 4 for the nth weekday of the month, or -1 (also accepted as the
// word "last") for the last one.
func parseOccurrence(s string) (int, error) {
	if strings.EqualFold(s, "last") {
		return LastOccurrence, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n != LastOccurrence && (n < 1 || n > 4) {
		return 0, fmt.Errorf("occurrence %d: out of range", n)
	}
	return n, nil
}

func isAbbrev(s string, long string, min string) bool {
	return strings.HasPrefix(s, min) && strings.HasPrefix(long, s)
}
