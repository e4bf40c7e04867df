package temporal

import (
	"fmt"
	"time"

	"github.com/theory/tempo/temporal/parser"
	"github.com/theory/tempo/temporal/round"
	"github.com/theory/tempo/temporal/tz"
)

// Timestamp is an instant on the UTC time line with nanosecond precision.
// Its range is the civil range narrowed by the largest offset, so that every
// Timestamp has a valid civil DateTime in every time zone. The zero value is
// the Unix epoch.
type Timestamp struct {
	secs  int64
	nanos int32 // [0, 1e9)
}

//nolint:gochecknoglobals
var (
	// MinTimestamp is -009999-01-02T01:59:59Z.
	MinTimestamp = Timestamp{(minDays+1)*secondsPerDay + 2*secondsPerHour - 1, 0}

	// MaxTimestamp is 9999-12-30T22:00:00.999999999Z.
	MaxTimestamp = Timestamp{(maxDays-1)*secondsPerDay + 22*secondsPerHour, nanosPerSecond - 1}
)

// NewTimestamp returns the instant secs seconds and nanos nanoseconds after
// the Unix epoch. Returns ErrRange if it falls outside the supported range.
func NewTimestamp(secs, nanos int64) (Timestamp, error) {
	secs, ok := checkedAdd(secs, floorDiv(nanos, nanosPerSecond))
	if !ok {
		return Timestamp{}, fmt.Errorf("%w: timestamp out of range", ErrRange)
	}
	ts := Timestamp{secs, int32(floorMod(nanos, nanosPerSecond))}
	if ts.Compare(MinTimestamp) < 0 || ts.Compare(MaxTimestamp) > 0 {
		return Timestamp{}, fmt.Errorf(
			"%w: timestamp not in [%v, %v]", ErrRange, MinTimestamp, MaxTimestamp,
		)
	}
	return ts, nil
}

// TimestampFromSecond returns the instant n seconds after the Unix epoch.
func TimestampFromSecond(n int64) (Timestamp, error) { return NewTimestamp(n, 0) }

// TimestampFromMillis returns the instant n milliseconds after the Unix
// epoch.
func TimestampFromMillis(n int64) (Timestamp, error) {
	return NewTimestamp(floorDiv(n, 1_000), floorMod(n, 1_000)*nanosPerMilli)
}

// TimestampFromGoTime returns the instant of t.
func TimestampFromGoTime(t time.Time) (Timestamp, error) {
	return NewTimestamp(t.Unix(), int64(t.Nanosecond()))
}

// Now returns the current instant.
func Now() Timestamp {
	ts, _ := TimestampFromGoTime(time.Now())
	return ts
}

// timestampFromDuration returns the instant d after the Unix epoch.
func timestampFromDuration(d SignedDuration) (Timestamp, error) {
	ts, err := NewTimestamp(d.secs, int64(d.nanos))
	if err != nil {
		return Timestamp{}, fmt.Errorf("%w: %w", ErrOverflow, err)
	}
	return ts, nil
}

// Kind returns KindTimestamp.
func (Timestamp) Kind() Kind { return KindTimestamp }

// Unix returns the seconds since the Unix epoch.
func (ts Timestamp) Unix() int64 { return ts.secs }

// UnixMilli returns the milliseconds since the Unix epoch.
func (ts Timestamp) UnixMilli() int64 {
	return ts.secs*1_000 + int64(ts.nanos)/nanosPerMilli
}

// Subsec returns the nanoseconds within the second, in [0, 1e9).
func (ts Timestamp) Subsec() int { return int(ts.nanos) }

// GoTime returns ts as a time.Time in UTC.
func (ts Timestamp) GoTime() time.Time { return time.Unix(ts.secs, int64(ts.nanos)).UTC() }

// sinceEpoch returns the duration since the Unix epoch.
func (ts Timestamp) sinceEpoch() SignedDuration {
	d, _ := NewSignedDuration(ts.secs, int64(ts.nanos))
	return d
}

// Compare returns -1 if ts is before o, +1 if after, and 0 if equal.
func (ts Timestamp) Compare(o Timestamp) int {
	if c := sign(ts.secs - o.secs); c != 0 {
		return c
	}
	return sign(ts.nanos - o.nanos)
}

// Before returns true if ts is before o.
func (ts Timestamp) Before(o Timestamp) bool { return ts.Compare(o) < 0 }

// After returns true if ts is after o.
func (ts Timestamp) After(o Timestamp) bool { return ts.Compare(o) > 0 }

// AddDuration returns ts plus d or ErrOverflow.
func (ts Timestamp) AddDuration(d SignedDuration) (Timestamp, error) {
	sum, err := ts.sinceEpoch().Add(d)
	if err != nil {
		return Timestamp{}, err
	}
	return timestampFromDuration(sum)
}

// SubDuration returns ts minus d or ErrOverflow.
func (ts Timestamp) SubDuration(d SignedDuration) (Timestamp, error) {
	diff, err := ts.sinceEpoch().Sub(d)
	if err != nil {
		return Timestamp{}, err
	}
	return timestampFromDuration(diff)
}

// AddSpan returns ts plus s, which may only have hours and smaller units.
// Days have no fixed length without a time zone, so a span with days or
// larger units returns ErrValue.
func (ts Timestamp) AddSpan(s Span) (Timestamp, error) {
	if s.HasCalendar() {
		return Timestamp{}, fmt.Errorf(
			"%w: cannot add %v to a timestamp; convert it to a zoned datetime first",
			ErrValue, s,
		)
	}
	return ts.AddDuration(s.timeDuration())
}

// SubSpan returns ts minus s.
func (ts Timestamp) SubSpan(s Span) (Timestamp, error) { return ts.AddSpan(s.Negate()) }

// DurationSince returns the exact duration from o to ts.
func (ts Timestamp) DurationSince(o Timestamp) SignedDuration {
	d, _ := NewSignedDuration(ts.secs-o.secs, int64(ts.nanos)-int64(o.nanos))
	return d
}

// DurationUntil returns the exact duration from ts to o.
func (ts Timestamp) DurationUntil(o Timestamp) SignedDuration { return o.DurationSince(ts) }

// Since returns the span from o to ts. The largest unit defaults to seconds
// and may be at most an hour; the default mode is round.Trunc.
func (ts Timestamp) Since(o Timestamp, opt ...round.Option) (Span, error) {
	cfg, err := diffConfig(round.Nanosecond, round.Second, round.Nanosecond, round.Hour, opt)
	if err != nil {
		return Span{}, err
	}
	return roundedSpan(ts.DurationSince(o), cfg)
}

// Until returns the span from ts to o.
func (ts Timestamp) Until(o Timestamp, opt ...round.Option) (Span, error) {
	return o.Since(ts, opt...)
}

// Round rounds ts to an increment of unit, which may be at most an hour, and
// whose increment must divide a day evenly. The default mode is
// round.HalfExpand.
func (ts Timestamp) Round(unit round.Unit, opt ...round.Option) (Timestamp, error) {
	cfg := round.New(unit, round.HalfExpand, opt...)
	if err := cfg.ValidateDayDivisor(); err != nil {
		return Timestamp{}, fmt.Errorf("%w: %w", ErrValue, err)
	}
	d, err := ts.sinceEpoch().roundTo(cfg.Nanos(), cfg.Mode)
	if err != nil {
		return Timestamp{}, err
	}
	return timestampFromDuration(d)
}

// InZone returns ts in zone.
func (ts Timestamp) InZone(zone TimeZone) (ZonedDateTime, error) {
	off, err := zone.OffsetAt(ts.secs)
	if err != nil {
		return ZonedDateTime{}, fmt.Errorf("%w: %w", ErrValue, err)
	}
	return zonedAt(ts, zone, off), nil
}

// InOffset returns ts in the fixed zone of off.
func (ts Timestamp) InOffset(off tz.Offset) (ZonedDateTime, error) {
	return zonedAt(ts, tz.Fixed(off), off), nil
}

// civilAt returns the civil DateTime of ts at offset off. The range of
// Timestamp guarantees it is valid.
func (ts Timestamp) civilAt(off tz.Offset) DateTime {
	dt, _ := dateTimeFromLocal(ts.secs+off.Seconds(), ts.nanos)
	return dt
}

// Series returns a sequence starting at ts and advancing by step, which may
// only have hours and smaller units.
func (ts Timestamp) Series(step Span) (*Series[Timestamp], error) { return NewSeries(ts, step) }

// String returns ts in RFC 3339 format in UTC, with the fractional second
// trimmed of trailing zeros: 2024-03-10T07:00:00Z.
func (ts Timestamp) String() string {
	return string(ts.AppendText(make([]byte, 0, len("+000000-00-00T00:00:00.000000000Z"))))
}

// AppendText appends the string form of ts to b.
func (ts Timestamp) AppendText(b []byte) []byte {
	return append(ts.civilAt(0).AppendText(b), 'Z')
}

// Hash returns a hash of ts.
func (ts Timestamp) Hash() uint64 { return hash64(KindTimestamp, ts.AppendText(nil)) }

// ParseTimestamp parses an RFC 3339 timestamp with a UTC offset, such as
// "2024-03-10T02:30:00-05:00" or "2024-03-10T07:30:00Z". Bracketed
// annotations are accepted and ignored.
func ParseTimestamp(src string) (Timestamp, error) {
	p, err := parser.ParseDateTime(src)
	if err != nil {
		return Timestamp{}, parseError(err)
	}
	if !p.HasTime || !p.HasOffset {
		return Timestamp{}, fmt.Errorf("%w: %q: timestamp requires a time and an offset", ErrParse, src)
	}
	ts, err := timestampFromParsed(p)
	if err != nil {
		return Timestamp{}, rangeParseError(src, err)
	}
	return ts, nil
}

func timestampFromParsed(p parser.DateTime) (Timestamp, error) {
	dt, err := dateTimeFromParsed(p)
	if err != nil {
		return Timestamp{}, err
	}
	off, err := tz.NewOffset(int64(p.Offset.Seconds))
	if err != nil {
		return Timestamp{}, fmt.Errorf("%w: %w", ErrRange, err)
	}
	secs, nanos := dt.localSeconds()
	return NewTimestamp(secs-off.Seconds(), int64(nanos))
}
