package temporal

import (
	"fmt"
	"strconv"
	"time"

	"github.com/theory/tempo/temporal/parser"
	"github.com/theory/tempo/temporal/round"
)

// Date is a date in the proleptic Gregorian calendar between -9999-01-01
// and 9999-12-31. The zero value is 1970-01-01.
type Date struct {
	days int32 // since 1970-01-01
}

//nolint:gochecknoglobals
var (
	// MinDate is the earliest supported date, -9999-01-01.
	MinDate = Date{int32(minDays)}

	// MaxDate is the latest supported date, 9999-12-31.
	MaxDate = Date{int32(maxDays)}
)

// NewDate returns the date year-month-day. Returns ErrRange if any field is
// out of range or day does not exist in the month.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if year < minYear || year > maxYear {
		return Date{}, fmt.Errorf("%w: year %d not in [%d, %d]", ErrRange, year, minYear, maxYear)
	}
	if month < time.January || month > time.December {
		return Date{}, fmt.Errorf("%w: month %d not in [1, 12]", ErrRange, month)
	}
	if n := daysIn(year, month); day < 1 || day > n {
		return Date{}, fmt.Errorf(
			"%w: day %d not in [1, %d] for %04d-%02d", ErrRange, day, n, year, month,
		)
	}
	return Date{int32(daysFromCivil(year, month, day))}, nil
}

// MustDate is like NewDate but panics on error.
func MustDate(year int, month time.Month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// dateFromDays returns the date days after 1970-01-01 or ErrOverflow.
func dateFromDays(days int64) (Date, error) {
	if days < minDays || days > maxDays {
		return Date{}, fmt.Errorf("%w: date out of range [%v, %v]", ErrOverflow, MinDate, MaxDate)
	}
	return Date{int32(days)}, nil
}

// DateFromGoTime returns the date of t in its location.
func DateFromGoTime(t time.Time) (Date, error) {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// GoTime returns the time.Time of midnight on d in loc.
func (d Date) GoTime(loc *time.Location) time.Time {
	y, m, day := d.AsTuple()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// Kind returns KindDate.
func (Date) Kind() Kind { return KindDate }

// AsTuple returns the year, month, and day of d.
func (d Date) AsTuple() (int, time.Month, int) {
	return civilFromDays(int64(d.days))
}

// AsMap returns the fields of d keyed by "year", "month", and "day".
func (d Date) AsMap() map[string]int64 {
	y, m, day := d.AsTuple()
	return map[string]int64{"year": int64(y), "month": int64(m), "day": int64(day)}
}

// Year returns the year of d.
func (d Date) Year() int {
	y, _, _ := d.AsTuple()
	return y
}

// Month returns the month of d.
func (d Date) Month() time.Month {
	_, m, _ := d.AsTuple()
	return m
}

// Day returns the day of the month of d.
func (d Date) Day() int {
	_, _, day := d.AsTuple()
	return day
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday { return weekdayFromDays(int64(d.days)) }

// DayOfYear returns the day of the year of d, from 1 to 366.
func (d Date) DayOfYear() int { return dayOfYear(d.AsTuple()) }

// DaysInMonth returns the number of days in the month of d.
func (d Date) DaysInMonth() int {
	y, m, _ := d.AsTuple()
	return daysIn(y, m)
}

// DaysInYear returns 365 or 366.
func (d Date) DaysInYear() int {
	if d.InLeapYear() {
		return 366
	}
	return 365
}

// InLeapYear returns true if d falls in a leap year.
func (d Date) InLeapYear() bool { return isLeap(d.Year()) }

// UnixDays returns the number of days between 1970-01-01 and d.
func (d Date) UnixDays() int64 { return int64(d.days) }

// Compare returns -1 if d is before o, +1 if after, and 0 if equal.
func (d Date) Compare(o Date) int { return sign(d.days - o.days) }

// Before returns true if d is before o.
func (d Date) Before(o Date) bool { return d.days < o.days }

// After returns true if d is after o.
func (d Date) After(o Date) bool { return d.days > o.days }

// At returns the DateTime of t on d.
func (d Date) At(t Time) DateTime { return DateTime{d, t} }

// StartOfDay returns midnight on d.
func (d Date) StartOfDay() DateTime { return DateTime{date: d} }

// ToZoned returns the start of d in zone. A midnight that falls in a gap
// resolves to the first instant after the gap.
func (d Date) ToZoned(zone TimeZone) (ZonedDateTime, error) {
	return d.StartOfDay().ToZoned(zone)
}

// FirstOfMonth returns the first day of the month of d.
func (d Date) FirstOfMonth() Date {
	return Date{d.days - int32(d.Day()) + 1}
}

// LastOfMonth returns the last day of the month of d.
func (d Date) LastOfMonth() Date {
	y, m, day := d.AsTuple()
	return Date{d.days + int32(daysIn(y, m)-day)}
}

// FirstOfYear returns January 1 of the year of d.
func (d Date) FirstOfYear() Date {
	return Date{int32(daysFromCivil(d.Year(), time.January, 1))}
}

// LastOfYear returns December 31 of the year of d.
func (d Date) LastOfYear() Date {
	return Date{int32(daysFromCivil(d.Year(), time.December, 31))}
}

// Tomorrow returns the day after d or ErrOverflow.
func (d Date) Tomorrow() (Date, error) { return dateFromDays(int64(d.days) + 1) }

// Yesterday returns the day before d or ErrOverflow.
func (d Date) Yesterday() (Date, error) { return dateFromDays(int64(d.days) - 1) }

// WithYear returns d in year. Returns ErrRange if the day does not exist in
// that year (February 29).
func (d Date) WithYear(year int) (Date, error) {
	_, m, day := d.AsTuple()
	return NewDate(year, m, day)
}

// WithMonth returns d in month. Returns ErrRange if the day does not exist
// in that month.
func (d Date) WithMonth(month time.Month) (Date, error) {
	y, _, day := d.AsTuple()
	return NewDate(y, month, day)
}

// WithDay returns d with the day of the month set to day.
func (d Date) WithDay(day int) (Date, error) {
	y, m, _ := d.AsTuple()
	return NewDate(y, m, day)
}

// AddSpan returns d plus s. Years and months are applied first, clamping the
// day to the last day of the resulting month, so that 2021-01-31 plus one
// month is 2021-02-28. Weeks and days follow. Time units are balanced into
// whole days, truncating any remainder. Returns ErrOverflow if the result is
// out of range.
func (d Date) AddSpan(s Span) (Date, error) {
	d, err := d.addMonths(s.v[round.Year]*12 + s.v[round.Month])
	if err != nil {
		return d, err
	}
	days := s.v[round.Week]*7 + s.v[round.Day] + s.timeDuration().secs/secondsPerDay
	return dateFromDays(int64(d.days) + days)
}

// SubSpan returns d minus s.
func (d Date) SubSpan(s Span) (Date, error) { return d.AddSpan(s.Negate()) }

// addMonths adds n months, clamping the day to the resulting month.
func (d Date) addMonths(n int64) (Date, error) {
	if n == 0 {
		return d, nil
	}
	y, m, day := d.AsTuple()
	total := int64(y)*12 + int64(m-1) + n
	ny, nm := floorDiv(total, 12), time.Month(floorMod(total, 12)+1)
	if ny < minYear || ny > maxYear {
		return Date{}, fmt.Errorf("%w: year %d out of range", ErrOverflow, ny)
	}
	return Date{int32(daysFromCivil(int(ny), nm, min(day, daysIn(int(ny), nm))))}, nil
}

// AddDuration returns d plus the whole days in dur.
func (d Date) AddDuration(dur SignedDuration) (Date, error) {
	return dateFromDays(int64(d.days) + dur.secs/secondsPerDay)
}

// SubDuration returns d minus the whole days in dur.
func (d Date) SubDuration(dur SignedDuration) (Date, error) {
	return dateFromDays(int64(d.days) - dur.secs/secondsPerDay)
}

// Since returns the span from o to d. The largest unit defaults to days and
// the smallest unit to days; neither may be smaller than a day. The default
// rounding mode is round.Trunc.
func (d Date) Since(o Date, opt ...round.Option) (Span, error) {
	cfg, err := diffConfig(round.Day, round.Day, round.Day, round.Year, opt)
	if err != nil {
		return Span{}, err
	}
	return spanBetween(o.StartOfDay(), d.StartOfDay(), cfg)
}

// Until returns the span from d to o.
func (d Date) Until(o Date, opt ...round.Option) (Span, error) {
	return o.Since(d, opt...)
}

// DurationSince returns the exact duration from o to d.
func (d Date) DurationSince(o Date) SignedDuration {
	return DurationFromSecs(int64(d.days-o.days) * secondsPerDay)
}

// DurationUntil returns the exact duration from d to o.
func (d Date) DurationUntil(o Date) SignedDuration { return o.DurationSince(d) }

// Series returns a sequence starting at d and advancing by step.
func (d Date) Series(step Span) (*Series[Date], error) { return NewSeries(d, step) }

// String returns d as YYYY-MM-DD, with years outside 0-9999 written as a
// signed six-digit year.
func (d Date) String() string {
	return string(d.AppendText(make([]byte, 0, len("+000000-00-00"))))
}

// AppendText appends the string form of d to b.
func (d Date) AppendText(b []byte) []byte {
	y, m, day := d.AsTuple()
	b = appendYear(b, y)
	b = append(b, '-')
	b = appendInt(b, int(m), 2)
	b = append(b, '-')
	return appendInt(b, day, 2)
}

// Hash returns a hash of d.
func (d Date) Hash() uint64 { return hash64(KindDate, d.AppendText(nil)) }

// ParseDate parses a date in the form YYYY-MM-DD or ±YYYYYY-MM-DD.
func ParseDate(src string) (Date, error) {
	p, err := parser.ParseDate(src)
	if err != nil {
		return Date{}, parseError(err)
	}
	d, err := dateFromParsed(p)
	if err != nil {
		return Date{}, rangeParseError(src, err)
	}
	return d, nil
}

func dateFromParsed(p parser.Date) (Date, error) {
	return NewDate(p.Year, time.Month(p.Month), p.Day)
}

// appendYear appends a four-digit year, or a signed six-digit year outside
// 0-9999.
func appendYear(b []byte, y int) []byte {
	switch {
	case y < 0:
		return appendInt(append(b, '-'), -y, 6)
	case y > 9999:
		return appendInt(append(b, '+'), y, 6)
	default:
		return appendInt(b, y, 4)
	}
}

// appendInt appends n zero-padded to width digits.
func appendInt(b []byte, n, width int) []byte {
	var buf [20]byte
	s := strconv.AppendInt(buf[:0], int64(n), 10)
	for i := len(s); i < width; i++ {
		b = append(b, '0')
	}
	return append(b, s...)
}
