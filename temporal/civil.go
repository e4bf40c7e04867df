package temporal

import "time"

const (
	minYear = -9999
	maxYear = 9999

	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour

	nanosPerMicro  = 1_000
	nanosPerMilli  = 1_000_000
	nanosPerSecond = 1_000_000_000
	nanosPerMinute = secondsPerMinute * nanosPerSecond
	nanosPerHour   = secondsPerHour * nanosPerSecond
	nanosPerDay    = secondsPerDay * nanosPerSecond
)

//nolint:gochecknoglobals
var (
	// minDays and maxDays bound the supported dates in days since
	// 1970-01-01.
	minDays = daysFromCivil(minYear, time.January, 1)
	maxDays = daysFromCivil(maxYear, time.December, 31)
)

// daysBefore[m] counts the number of days in a non-leap year before month m
// begins. There is an entry for m=13, counting the number of days before
// January of next year (365).
//
//nolint:gochecknoglobals
var daysBefore = [...]int{
	0,
	31,
	31 + 28,
	31 + 28 + 31,
	31 + 28 + 31 + 30,
	31 + 28 + 31 + 30 + 31,
	31 + 28 + 31 + 30 + 31 + 30,
	31 + 28 + 31 + 30 + 31 + 30 + 31,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30 + 31,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30 + 31 + 30,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30 + 31 + 30 + 31,
}

// isLeap reports whether year is a leap year in the proleptic Gregorian
// calendar.
func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// daysIn returns the number of days in month m of year.
func daysIn(year int, m time.Month) int {
	if m == time.February && isLeap(year) {
		return 29
	}
	return daysBefore[m] - daysBefore[m-1]
}

// dayOfYear returns the 1-based ordinal of the day in its year.
func dayOfYear(year int, m time.Month, day int) int {
	n := daysBefore[m-1] + day
	if m > time.February && isLeap(year) {
		n++
	}
	return n
}

// daysFromCivil returns the number of days since 1970-01-01 of the given
// proleptic Gregorian date. Eras are 400-year cycles starting on March 1 so
// that the leap day falls at the end of each year.
func daysFromCivil(year int, month time.Month, day int) int64 {
	y := int64(year)
	m := int64(month)
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// civilFromDays is the inverse of daysFromCivil.
func civilFromDays(days int64) (int, time.Month, int) {
	z := days + 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := (mp+2)%12 + 1
	y := yoe + era*400
	if m <= 2 {
		y++
	}
	return int(y), time.Month(m), int(d)
}

// weekdayFromDays returns the day of the week; 1970-01-01 was a Thursday.
func weekdayFromDays(days int64) time.Weekday {
	return time.Weekday(floorMod(days+4, 7))
}
