package temporal

import (
	"cmp"
	"fmt"
	"time"

	"github.com/theory/tempo/temporal/parser"
	"github.com/theory/tempo/temporal/round"
	"github.com/theory/tempo/temporal/tz"
)

// DateTime is a civil date and time of day with no time zone. DateTimes are
// ordered by date and then by time. The zero value is 1970-01-01T00:00:00.
type DateTime struct {
	date Date
	time Time
}

//nolint:gochecknoglobals
var (
	// MinDateTime is -9999-01-01T00:00:00.
	MinDateTime = DateTime{MinDate, Midnight}

	// MaxDateTime is 9999-12-31T23:59:59.999999999.
	MaxDateTime = DateTime{MaxDate, MaxTime}
)

// NewDateTime returns the DateTime for the given fields. Returns ErrRange if
// any field is out of range.
func NewDateTime(year int, month time.Month, day, hour, minute, second, nanosecond int) (DateTime, error) {
	d, err := NewDate(year, month, day)
	if err != nil {
		return DateTime{}, err
	}
	t, err := NewTime(hour, minute, second, nanosecond)
	if err != nil {
		return DateTime{}, err
	}
	return DateTime{d, t}, nil
}

// MustDateTime is like NewDateTime but panics on error.
func MustDateTime(year int, month time.Month, day, hour, minute, second, nanosecond int) DateTime {
	dt, err := NewDateTime(year, month, day, hour, minute, second, nanosecond)
	if err != nil {
		panic(err)
	}
	return dt
}

// dateTimeFromLocal returns the DateTime secs seconds and nanos nanoseconds
// after 1970-01-01T00:00:00. nanos must be in [0, 1e9).
func dateTimeFromLocal(secs int64, nanos int32) (DateTime, error) {
	d, err := dateFromDays(floorDiv(secs, secondsPerDay))
	if err != nil {
		return DateTime{}, err
	}
	return DateTime{d, Time{floorMod(secs, secondsPerDay)*nanosPerSecond + int64(nanos)}}, nil
}

// DateTimeFromGoTime returns the civil date and time of t in its location.
func DateTimeFromGoTime(t time.Time) (DateTime, error) {
	d, err := DateFromGoTime(t)
	if err != nil {
		return DateTime{}, err
	}
	return DateTime{d, TimeFromGoTime(t)}, nil
}

// GoTime returns the time.Time of dt in loc, normalized by the time package
// if dt falls in a gap or fold.
func (dt DateTime) GoTime(loc *time.Location) time.Time {
	y, mo, d, h, mi, s, ns := dt.AsTuple()
	return time.Date(y, mo, d, h, mi, s, ns, loc)
}

// Kind returns KindDateTime.
func (DateTime) Kind() Kind { return KindDateTime }

// Date returns the date of dt.
func (dt DateTime) Date() Date { return dt.date }

// Time returns the time of day of dt.
func (dt DateTime) Time() Time { return dt.time }

// AsTuple returns the year, month, day, hour, minute, second, and nanosecond
// of dt.
func (dt DateTime) AsTuple() (int, time.Month, int, int, int, int, int) {
	y, mo, d := dt.date.AsTuple()
	h, mi, s, ns := dt.time.AsTuple()
	return y, mo, d, h, mi, s, ns
}

// AsMap returns the fields of dt keyed by name.
func (dt DateTime) AsMap() map[string]int64 {
	m := dt.date.AsMap()
	for k, v := range dt.time.AsMap() {
		m[k] = v
	}
	return m
}

// Year returns the year of dt.
func (dt DateTime) Year() int { return dt.date.Year() }

// Month returns the month of dt.
func (dt DateTime) Month() time.Month { return dt.date.Month() }

// Day returns the day of the month of dt.
func (dt DateTime) Day() int { return dt.date.Day() }

// Weekday returns the day of the week of dt.
func (dt DateTime) Weekday() time.Weekday { return dt.date.Weekday() }

// DayOfYear returns the day of the year of dt.
func (dt DateTime) DayOfYear() int { return dt.date.DayOfYear() }

// Hour returns the hour of dt.
func (dt DateTime) Hour() int { return dt.time.Hour() }

// Minute returns the minute of dt.
func (dt DateTime) Minute() int { return dt.time.Minute() }

// Second returns the second of dt.
func (dt DateTime) Second() int { return dt.time.Second() }

// Nanosecond returns the nanosecond within the second of dt.
func (dt DateTime) Nanosecond() int { return dt.time.Nanosecond() }

// StartOfDay returns midnight on the date of dt.
func (dt DateTime) StartOfDay() DateTime { return DateTime{date: dt.date} }

// localSeconds returns the seconds since 1970-01-01T00:00:00 and the
// nanoseconds within the second.
func (dt DateTime) localSeconds() (int64, int32) {
	return int64(dt.date.days)*secondsPerDay + dt.time.nanos/nanosPerSecond,
		int32(dt.time.nanos % nanosPerSecond)
}

// sinceEpoch returns the duration since 1970-01-01T00:00:00.
func (dt DateTime) sinceEpoch() SignedDuration {
	secs, nanos := dt.localSeconds()
	d, _ := NewSignedDuration(secs, int64(nanos))
	return d
}

// Compare returns -1 if dt is before o, +1 if after, and 0 if equal.
func (dt DateTime) Compare(o DateTime) int {
	if c := dt.date.Compare(o.date); c != 0 {
		return c
	}
	return dt.time.Compare(o.time)
}

// Before returns true if dt is before o.
func (dt DateTime) Before(o DateTime) bool { return dt.Compare(o) < 0 }

// After returns true if dt is after o.
func (dt DateTime) After(o DateTime) bool { return dt.Compare(o) > 0 }

// AddSpan returns dt plus s. Years and months are applied first, clamping
// the day to the resulting month, then weeks and days, and finally the time
// units, carrying into days. Returns ErrOverflow if the result is out of
// range.
func (dt DateTime) AddSpan(s Span) (DateTime, error) {
	d, err := dt.date.addMonths(s.v[round.Year]*12 + s.v[round.Month])
	if err != nil {
		return DateTime{}, err
	}
	if days := s.v[round.Week]*7 + s.v[round.Day]; days != 0 {
		if d, err = dateFromDays(int64(d.days) + days); err != nil {
			return DateTime{}, err
		}
	}
	return DateTime{d, dt.time}.AddDuration(s.timeDuration())
}

// SubSpan returns dt minus s.
func (dt DateTime) SubSpan(s Span) (DateTime, error) { return dt.AddSpan(s.Negate()) }

// AddDuration returns dt plus d or ErrOverflow.
func (dt DateTime) AddDuration(d SignedDuration) (DateTime, error) {
	if d.IsZero() {
		return dt, nil
	}
	sum, err := dt.sinceEpoch().Add(d)
	if err != nil {
		return DateTime{}, err
	}
	return dateTimeFromEpoch(sum)
}

// SubDuration returns dt minus d or ErrOverflow.
func (dt DateTime) SubDuration(d SignedDuration) (DateTime, error) {
	diff, err := dt.sinceEpoch().Sub(d)
	if err != nil {
		return DateTime{}, err
	}
	return dateTimeFromEpoch(diff)
}

// dateTimeFromEpoch returns the DateTime d after 1970-01-01T00:00:00.
func dateTimeFromEpoch(d SignedDuration) (DateTime, error) {
	secs, nanos := d.secs, d.nanos
	if nanos < 0 {
		secs--
		nanos += nanosPerSecond
	}
	return dateTimeFromLocal(secs, nanos)
}

// Since returns the span from o to dt. The largest unit defaults to days and
// the smallest to nanoseconds; the default mode is round.Trunc.
func (dt DateTime) Since(o DateTime, opt ...round.Option) (Span, error) {
	cfg, err := diffConfig(round.Nanosecond, round.Day, round.Nanosecond, round.Year, opt)
	if err != nil {
		return Span{}, err
	}
	return spanBetween(o, dt, cfg)
}

// Until returns the span from dt to o.
func (dt DateTime) Until(o DateTime, opt ...round.Option) (Span, error) {
	return o.Since(dt, opt...)
}

// DurationSince returns the exact duration from o to dt.
func (dt DateTime) DurationSince(o DateTime) SignedDuration {
	days := int64(dt.date.days) - int64(o.date.days)
	d, _ := NewSignedDuration(days*secondsPerDay, dt.time.nanos-o.time.nanos)
	return d
}

// DurationUntil returns the exact duration from dt to o.
func (dt DateTime) DurationUntil(o DateTime) SignedDuration { return o.DurationSince(dt) }

// Round rounds dt to an increment of unit, which may be at most a day. Days
// may only be rounded with an increment of 1; other units require an
// increment that evenly divides the next larger unit. The default mode is
// round.HalfExpand.
func (dt DateTime) Round(unit round.Unit, opt ...round.Option) (DateTime, error) {
	cfg := round.New(unit, round.HalfExpand, opt...)
	if err := validateDayRounding(cfg); err != nil {
		return DateTime{}, err
	}
	if cfg.Smallest == round.Day {
		// The quotient is the day itself, so half-even ties go to even days.
		nanos := dt.time.nanos
		step := round.Step(cmp.Compare(nanos, 0), cmp.Compare(2*nanos, nanosPerDay), dt.date.days%2 != 0, cfg.Mode)
		return DateTime{dt.date, Midnight}.AddDuration(DurationFromNanos(step * nanosPerDay))
	}
	n, err := round.Int(dt.time.nanos, cfg.Nanos(), cfg.Mode)
	if err != nil {
		return DateTime{}, fmt.Errorf("%w: %w", ErrValue, err)
	}
	return DateTime{dt.date, Midnight}.AddDuration(DurationFromNanos(n))
}

// validateDayRounding checks a rounding configuration for values with a
// date and a time.
func validateDayRounding(cfg round.Config) error {
	switch {
	case cfg.Smallest > round.Day:
		return fmt.Errorf("%w: cannot round to %vs", ErrValue, cfg.Smallest)
	case cfg.Smallest == round.Day && cfg.Increment != 1:
		return fmt.Errorf("%w: day rounding increment must be 1, got %d", ErrValue, cfg.Increment)
	}
	if err := cfg.ValidateIncrement(true); err != nil {
		return fmt.Errorf("%w: %w", ErrValue, err)
	}
	return nil
}

// ToZoned returns dt in zone, resolving gaps and folds with tz.Compatible.
func (dt DateTime) ToZoned(zone TimeZone) (ZonedDateTime, error) {
	return dt.ToZonedWith(zone, tz.Compatible)
}

// ToZonedWith returns dt in zone, resolving gaps and folds with policy d.
func (dt DateTime) ToZonedWith(zone TimeZone, d tz.Disambiguation) (ZonedDateTime, error) {
	amb, err := dt.Resolve(zone)
	if err != nil {
		return ZonedDateTime{}, err
	}
	return amb.Disambiguate(d)
}

// Resolve looks up the candidate offsets of dt in zone.
func (dt DateTime) Resolve(zone TimeZone) (AmbiguousZoned, error) {
	secs, _ := dt.localSeconds()
	c, err := zone.Resolve(secs)
	if err != nil {
		return AmbiguousZoned{}, fmt.Errorf("%w: %w", ErrValue, err)
	}
	return AmbiguousZoned{dt: dt, zone: zone, cand: c}, nil
}

// Series returns a sequence starting at dt and advancing by step.
func (dt DateTime) Series(step Span) (*Series[DateTime], error) { return NewSeries(dt, step) }

// String returns dt as YYYY-MM-DDTHH:MM:SS with a fractional second when
// nonzero.
func (dt DateTime) String() string {
	return string(dt.AppendText(make([]byte, 0, len("+000000-00-00T00:00:00.000000000"))))
}

// AppendText appends the string form of dt to b.
func (dt DateTime) AppendText(b []byte) []byte {
	b = dt.date.AppendText(b)
	b = append(b, 'T')
	return dt.time.AppendText(b)
}

// Hash returns a hash of dt.
func (dt DateTime) Hash() uint64 { return hash64(KindDateTime, dt.AppendText(nil)) }

// ParseDateTime parses a datetime in the form YYYY-MM-DDTHH:MM:SS[.f]. A
// space or lowercase "t" may separate the date and time, and the time may be
// omitted for midnight. Offsets and annotations are not allowed.
func ParseDateTime(src string) (DateTime, error) {
	p, err := parser.ParseDateTime(src)
	if err != nil {
		return DateTime{}, parseError(err)
	}
	if p.HasOffset || p.HasZone() {
		return DateTime{}, fmt.Errorf("%w: %q: civil datetime cannot have an offset or time zone", ErrParse, src)
	}
	dt, err := dateTimeFromParsed(p)
	if err != nil {
		return DateTime{}, rangeParseError(src, err)
	}
	return dt, nil
}

func dateTimeFromParsed(p parser.DateTime) (DateTime, error) {
	d, err := dateFromParsed(p.Date)
	if err != nil {
		return DateTime{}, err
	}
	t, err := timeFromParsed(p.Time)
	if err != nil {
		return DateTime{}, err
	}
	return DateTime{d, t}, nil
}
