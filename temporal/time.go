package temporal

import (
	"fmt"
	"time"

	"github.com/theory/tempo/temporal/parser"
	"github.com/theory/tempo/temporal/round"
)

// Time is a wall-clock time of day with nanosecond precision, from 00:00:00
// to 23:59:59.999999999. Leap seconds are not represented. The zero value is
// midnight.
type Time struct {
	nanos int64 // since midnight
}

//nolint:gochecknoglobals
var (
	// Midnight is 00:00:00.
	Midnight = Time{}

	// MaxTime is 23:59:59.999999999.
	MaxTime = Time{nanosPerDay - 1}
)

// NewTime returns the time hour:minute:second.nanosecond. Returns ErrRange if
// any field is out of range.
func NewTime(hour, minute, second, nanosecond int) (Time, error) {
	for _, f := range []struct {
		name string
		val  int
		max  int
	}{
		{"hour", hour, 23},
		{"minute", minute, 59},
		{"second", second, 59},
		{"nanosecond", nanosecond, nanosPerSecond - 1},
	} {
		if f.val < 0 || f.val > f.max {
			return Time{}, fmt.Errorf("%w: %v %d not in [0, %d]", ErrRange, f.name, f.val, f.max)
		}
	}
	return Time{
		int64(hour)*nanosPerHour + int64(minute)*nanosPerMinute +
			int64(second)*nanosPerSecond + int64(nanosecond),
	}, nil
}

// MustTime is like NewTime but panics on error.
func MustTime(hour, minute, second, nanosecond int) Time {
	t, err := NewTime(hour, minute, second, nanosecond)
	if err != nil {
		panic(err)
	}
	return t
}

// timeFromNanos returns the time nanos after midnight or ErrOverflow if nanos
// falls outside one day.
func timeFromNanos(nanos int64) (Time, error) {
	if nanos < 0 || nanos >= nanosPerDay {
		return Time{}, fmt.Errorf("%w: time outside a single day", ErrOverflow)
	}
	return Time{nanos}, nil
}

// TimeFromGoTime returns the wall-clock time of t in its location.
func TimeFromGoTime(t time.Time) Time {
	h, m, s := t.Clock()
	return MustTime(h, m, s, t.Nanosecond())
}

// Kind returns KindTime.
func (Time) Kind() Kind { return KindTime }

// AsTuple returns the hour, minute, second, and nanosecond of t.
func (t Time) AsTuple() (int, int, int, int) {
	return t.Hour(), t.Minute(), t.Second(), t.Nanosecond()
}

// AsMap returns the fields of t keyed by "hour", "minute", "second", and
// "nanosecond".
func (t Time) AsMap() map[string]int64 {
	return map[string]int64{
		"hour":       int64(t.Hour()),
		"minute":     int64(t.Minute()),
		"second":     int64(t.Second()),
		"nanosecond": int64(t.Nanosecond()),
	}
}

// Hour returns the hour of t, 0-23.
func (t Time) Hour() int { return int(t.nanos / nanosPerHour) }

// Minute returns the minute of t, 0-59.
func (t Time) Minute() int { return int(t.nanos / nanosPerMinute % 60) }

// Second returns the second of t, 0-59.
func (t Time) Second() int { return int(t.nanos / nanosPerSecond % 60) }

// Millisecond returns the millisecond within the second of t.
func (t Time) Millisecond() int { return t.Nanosecond() / nanosPerMilli }

// Microsecond returns the microsecond within the millisecond of t.
func (t Time) Microsecond() int { return t.Nanosecond() / nanosPerMicro % 1_000 }

// Nanosecond returns the nanosecond within the second of t.
func (t Time) Nanosecond() int { return int(t.nanos % nanosPerSecond) }

// Subsec returns the nanosecond within the second of t.
func (t Time) Subsec() int { return t.Nanosecond() }

// sinceMidnight returns the duration since midnight.
func (t Time) sinceMidnight() SignedDuration { return DurationFromNanos(t.nanos) }

// Compare returns -1 if t is before o, +1 if after, and 0 if equal.
func (t Time) Compare(o Time) int { return sign(t.nanos - o.nanos) }

// Before returns true if t is before o.
func (t Time) Before(o Time) bool { return t.nanos < o.nanos }

// After returns true if t is after o.
func (t Time) After(o Time) bool { return t.nanos > o.nanos }

// On returns the DateTime of t on d.
func (t Time) On(d Date) DateTime { return DateTime{d, t} }

// AddSpan returns t plus s. Days count as 24 hours. Returns ErrValue if s
// has years, months, or weeks, and ErrOverflow if the result falls outside
// the day.
func (t Time) AddSpan(s Span) (Time, error) {
	if s.v[round.Year] != 0 || s.v[round.Month] != 0 || s.v[round.Week] != 0 {
		return Time{}, fmt.Errorf("%w: cannot add %v to a time of day", ErrValue, s)
	}
	dur := s.timeDuration()
	if days := s.v[round.Day]; days != 0 {
		dur = SignedDuration{dur.secs + days*secondsPerDay, dur.nanos}
	}
	return t.AddDuration(dur)
}

// SubSpan returns t minus s.
func (t Time) SubSpan(s Span) (Time, error) { return t.AddSpan(s.Negate()) }

// AddDuration returns t plus d or ErrOverflow if the result falls outside
// the day.
func (t Time) AddDuration(d SignedDuration) (Time, error) {
	if abs(d.secs) >= secondsPerDay {
		return Time{}, fmt.Errorf("%w: %v added to %v leaves the day", ErrOverflow, d, t)
	}
	n := t.nanos + d.secs*nanosPerSecond + int64(d.nanos)
	if n < 0 || n >= nanosPerDay {
		return Time{}, fmt.Errorf("%w: %v added to %v leaves the day", ErrOverflow, d, t)
	}
	return Time{n}, nil
}

// SubDuration returns t minus d.
func (t Time) SubDuration(d SignedDuration) (Time, error) {
	if d.secs == MinSignedDuration.secs {
		return Time{}, fmt.Errorf("%w: %v subtracted from %v leaves the day", ErrOverflow, d, t)
	}
	return t.AddDuration(d.neg())
}

// WrappingAdd returns t plus d modulo 24 hours.
func (t Time) WrappingAdd(d SignedDuration) Time {
	secs := floorMod(d.secs, secondsPerDay)
	return Time{floorMod(t.nanos+secs*nanosPerSecond+int64(d.nanos), nanosPerDay)}
}

// Since returns the span from o to t. The largest unit defaults to hours
// and the smallest to nanoseconds; the default mode is round.Trunc.
func (t Time) Since(o Time, opt ...round.Option) (Span, error) {
	cfg, err := diffConfig(round.Nanosecond, round.Hour, round.Nanosecond, round.Hour, opt)
	if err != nil {
		return Span{}, err
	}
	return roundedSpan(t.DurationSince(o), cfg)
}

// Until returns the span from t to o.
func (t Time) Until(o Time, opt ...round.Option) (Span, error) {
	return o.Since(t, opt...)
}

// DurationSince returns the exact duration from o to t.
func (t Time) DurationSince(o Time) SignedDuration { return DurationFromNanos(t.nanos - o.nanos) }

// DurationUntil returns the exact duration from t to o.
func (t Time) DurationUntil(o Time) SignedDuration { return o.DurationSince(t) }

// Round rounds t to an increment of unit, which may be at most an hour. The
// increment must evenly divide the next larger unit. Rounding up past the
// end of the day wraps to midnight. The default mode is round.HalfExpand.
func (t Time) Round(unit round.Unit, opt ...round.Option) (Time, error) {
	cfg := round.New(unit, round.HalfExpand, opt...)
	if cfg.Smallest > round.Hour {
		return Time{}, fmt.Errorf("%w: cannot round a time to %vs", ErrValue, cfg.Smallest)
	}
	if err := cfg.ValidateIncrement(true); err != nil {
		return Time{}, fmt.Errorf("%w: %w", ErrValue, err)
	}
	n, err := round.Int(t.nanos, cfg.Nanos(), cfg.Mode)
	if err != nil {
		return Time{}, fmt.Errorf("%w: %w", ErrValue, err)
	}
	return Time{n % nanosPerDay}, nil
}

// Series returns a sequence starting at t and advancing by step. It ends at
// the end of the day.
func (t Time) Series(step Span) (*Series[Time], error) { return NewSeries(t, step) }

// String returns t as HH:MM:SS with a fractional second when nonzero.
func (t Time) String() string {
	return string(t.AppendText(make([]byte, 0, len("00:00:00.000000000"))))
}

// AppendText appends the string form of t to b.
func (t Time) AppendText(b []byte) []byte {
	b = appendInt(b, t.Hour(), 2)
	b = append(b, ':')
	b = appendInt(b, t.Minute(), 2)
	b = append(b, ':')
	b = appendInt(b, t.Second(), 2)
	return appendFraction(b, int64(t.Nanosecond()))
}

// Hash returns a hash of t.
func (t Time) Hash() uint64 { return hash64(KindTime, t.AppendText(nil)) }

// ParseTime parses a time in the form HH:MM[:SS[.fffffffff]].
func ParseTime(src string) (Time, error) {
	p, err := parser.ParseTime(src)
	if err != nil {
		return Time{}, parseError(err)
	}
	t, err := timeFromParsed(p)
	if err != nil {
		return Time{}, rangeParseError(src, err)
	}
	return t, nil
}

func timeFromParsed(p parser.Time) (Time, error) {
	return NewTime(p.Hour, p.Minute, p.Second, p.Nanosecond)
}
