package temporal

import (
	"context"
	"fmt"
	"time"

	"github.com/theory/tempo/temporal/parser"
	"github.com/theory/tempo/temporal/round"
	"github.com/theory/tempo/temporal/tz"
)

// TimeZone is a time zone, either a fixed offset or a named zone backed by
// a tz.Provider.
type TimeZone = tz.TimeZone

// ZonedDateTime is an instant in a time zone, together with the offset in
// effect at that instant and the resulting civil DateTime. Two
// ZonedDateTimes may represent the same instant in different zones, so use
// Equal rather than == to compare them.
type ZonedDateTime struct {
	ts     Timestamp
	zone   TimeZone
	offset tz.Offset
	dt     DateTime
}

// zonedAt returns ts in zone with offset off, which must be the offset of
// zone at ts.
func zonedAt(ts Timestamp, zone TimeZone, off tz.Offset) ZonedDateTime {
	return ZonedDateTime{ts: ts, zone: zone, offset: off, dt: ts.civilAt(off)}
}

// Kind returns KindZoned.
func (ZonedDateTime) Kind() Kind { return KindZoned }

// Timestamp returns the instant of z.
func (z ZonedDateTime) Timestamp() Timestamp { return z.ts }

// TimeZone returns the time zone of z.
func (z ZonedDateTime) TimeZone() TimeZone { return z.zone }

// Offset returns the UTC offset in effect at z.
func (z ZonedDateTime) Offset() tz.Offset { return z.offset }

// DateTime returns the civil date and time of z.
func (z ZonedDateTime) DateTime() DateTime { return z.dt }

// Date returns the civil date of z.
func (z ZonedDateTime) Date() Date { return z.dt.date }

// Time returns the civil time of day of z.
func (z ZonedDateTime) Time() Time { return z.dt.time }

// Year returns the year of z.
func (z ZonedDateTime) Year() int { return z.dt.Year() }

// Month returns the month of z.
func (z ZonedDateTime) Month() time.Month { return z.dt.Month() }

// Day returns the day of the month of z.
func (z ZonedDateTime) Day() int { return z.dt.Day() }

// Weekday returns the day of the week of z.
func (z ZonedDateTime) Weekday() time.Weekday { return z.dt.Weekday() }

// Hour returns the hour of z.
func (z ZonedDateTime) Hour() int { return z.dt.Hour() }

// Minute returns the minute of z.
func (z ZonedDateTime) Minute() int { return z.dt.Minute() }

// Second returns the second of z.
func (z ZonedDateTime) Second() int { return z.dt.Second() }

// Nanosecond returns the nanosecond within the second of z.
func (z ZonedDateTime) Nanosecond() int { return z.dt.Nanosecond() }

// AsMap returns the civil fields of z plus "offset" in seconds.
func (z ZonedDateTime) AsMap() map[string]int64 {
	m := z.dt.AsMap()
	m["offset"] = z.offset.Seconds()
	return m
}

// GoTime returns z as a time.Time in the corresponding *time.Location.
func (z ZonedDateTime) GoTime() time.Time {
	return z.ts.GoTime().In(z.zone.Location(z.ts.secs))
}

// Compare orders z and o by instant.
func (z ZonedDateTime) Compare(o ZonedDateTime) int { return z.ts.Compare(o.ts) }

// Equal returns true if z and o are the same instant, whatever their zones.
func (z ZonedDateTime) Equal(o ZonedDateTime) bool { return z.ts == o.ts }

// Before returns true if z is before o.
func (z ZonedDateTime) Before(o ZonedDateTime) bool { return z.Compare(o) < 0 }

// After returns true if z is after o.
func (z ZonedDateTime) After(o ZonedDateTime) bool { return z.Compare(o) > 0 }

// InZone returns the same instant in zone.
func (z ZonedDateTime) InZone(zone TimeZone) (ZonedDateTime, error) { return z.ts.InZone(zone) }

// WithTimeZone is an alias for InZone.
func (z ZonedDateTime) WithTimeZone(zone TimeZone) (ZonedDateTime, error) { return z.InZone(zone) }

// StartOfDay returns the first instant of the civil date of z. A midnight
// that falls in a gap resolves to the end of the gap.
func (z ZonedDateTime) StartOfDay() (ZonedDateTime, error) {
	return z.dt.date.StartOfDay().ToZoned(z.zone)
}

// AddDuration returns z plus the exact duration d. The result may have a
// different offset if d crosses a transition.
func (z ZonedDateTime) AddDuration(d SignedDuration) (ZonedDateTime, error) {
	if d.IsZero() {
		return z, nil
	}
	ts, err := z.ts.AddDuration(d)
	if err != nil {
		return ZonedDateTime{}, err
	}
	return ts.InZone(z.zone)
}

// SubDuration returns z minus d.
func (z ZonedDateTime) SubDuration(d SignedDuration) (ZonedDateTime, error) {
	ts, err := z.ts.SubDuration(d)
	if err != nil {
		return ZonedDateTime{}, err
	}
	return ts.InZone(z.zone)
}

// AddSpan returns z plus s. The years, months, weeks, and days of s are
// added to the civil DateTime of z, which is then resolved in the zone with
// tz.Compatible; the hours and smaller units are then added as an exact
// duration. So P1D keeps the wall-clock time across a transition while PT24H
// keeps the elapsed time.
func (z ZonedDateTime) AddSpan(s Span) (ZonedDateTime, error) {
	res := z
	if dp := s.datePart(); !dp.IsZero() {
		dt, err := z.dt.AddSpan(dp)
		if err != nil {
			return ZonedDateTime{}, err
		}
		if res, err = dt.ToZoned(z.zone); err != nil {
			return ZonedDateTime{}, err
		}
	}
	return res.AddDuration(s.timeDuration())
}

// SubSpan returns z minus s.
func (z ZonedDateTime) SubSpan(s Span) (ZonedDateTime, error) { return z.AddSpan(s.Negate()) }

// DurationSince returns the exact duration from o to z.
func (z ZonedDateTime) DurationSince(o ZonedDateTime) SignedDuration {
	return z.ts.DurationSince(o.ts)
}

// DurationUntil returns the exact duration from z to o.
func (z ZonedDateTime) DurationUntil(o ZonedDateTime) SignedDuration {
	return o.DurationSince(z)
}

// Since returns the span from o to z. The largest unit defaults to hours.
// Largest units of days or more measure the civil difference in the zone
// and require z and o to share a zone. The default mode is round.Trunc.
func (z ZonedDateTime) Since(o ZonedDateTime, opt ...round.Option) (Span, error) {
	cfg, err := diffConfig(round.Nanosecond, round.Hour, round.Nanosecond, round.Year, opt)
	if err != nil {
		return Span{}, err
	}
	return spanBetween(o, z, cfg)
}

// Until returns the span from z to o.
func (z ZonedDateTime) Until(o ZonedDateTime, opt ...round.Option) (Span, error) {
	return o.Since(z, opt...)
}

// calendarDiff implements relative for ZonedDateTime. It steps the civil
// end date back a day at a time until the start time on that date, resolved
// in the zone, is not after end.
func (z ZonedDateTime) calendarDiff(end ZonedDateTime, largest, smallest round.Unit) (Span, ZonedDateTime, error) {
	if !z.zone.Equal(end.zone) {
		return Span{}, ZonedDateTime{}, fmt.Errorf(
			"%w: cannot measure %vs between time zones %v and %v",
			ErrValue, largest, z.zone, end.zone,
		)
	}

	var back int32
	if end.dt.time.Before(z.dt.time) {
		back = 1
	}
	for ; back <= 2; back++ {
		midDate := Date{end.dt.date.days - back}
		if !midDate.After(z.dt.date) {
			return Span{}, z, nil
		}
		mid, err := midDate.At(z.dt.time).ToZoned(z.zone)
		if err != nil {
			return Span{}, ZonedDateTime{}, err
		}
		if !mid.After(end) {
			return dateDiff(z.dt.date, midDate, largest, smallest), mid, nil
		}
	}
	return Span{}, ZonedDateTime{}, fmt.Errorf(
		"%w: no civil date between %v and %v", ErrValue, z, end,
	)
}

// Round rounds z to an increment of unit, which may be at most a day. Units
// up to an hour round the civil time and resolve the result in the zone,
// keeping the current offset when it is still valid. Days round to the
// nearer start of day, using the actual length of the day in the zone. The
// default mode is round.HalfExpand.
func (z ZonedDateTime) Round(unit round.Unit, opt ...round.Option) (ZonedDateTime, error) {
	cfg := round.New(unit, round.HalfExpand, opt...)
	if err := validateDayRounding(cfg); err != nil {
		return ZonedDateTime{}, err
	}
	if cfg.Smallest < round.Day {
		dt, err := z.dt.Round(unit, opt...)
		if err != nil {
			return ZonedDateTime{}, err
		}
		amb, err := dt.Resolve(z.zone)
		if err != nil {
			return ZonedDateTime{}, err
		}
		return amb.prefer(z.offset)
	}

	start, err := z.StartOfDay()
	if err != nil {
		return ZonedDateTime{}, err
	}
	tomorrow, err := z.dt.date.Tomorrow()
	if err != nil {
		return ZonedDateTime{}, err
	}
	next, err := tomorrow.ToZoned(z.zone)
	if err != nil {
		return ZonedDateTime{}, err
	}
	num := start.DurationUntil(z)
	twice, err := num.Mul(2)
	if err != nil {
		return ZonedDateTime{}, err
	}
	odd := z.dt.date.days%2 != 0
	if round.Step(num.Signum(), twice.Compare(start.DurationUntil(next)), odd, cfg.Mode) == 0 {
		return start, nil
	}
	return next, nil
}

// Series returns a sequence starting at z and advancing by step. Calendar
// units keep the wall-clock time across transitions.
func (z ZonedDateTime) Series(step Span) (*Series[ZonedDateTime], error) {
	return NewSeries(z, step)
}

// NextTransition returns the next offset transition of the zone after z.
// Returns false if there is none.
func (z ZonedDateTime) NextTransition() (ZonedDateTime, bool, error) {
	return z.transition(z.zone.NextTransition)
}

// PrevTransition returns the last offset transition of the zone before z.
// Returns false if there is none.
func (z ZonedDateTime) PrevTransition() (ZonedDateTime, bool, error) {
	return z.transition(z.zone.PrevTransition)
}

func (z ZonedDateTime) transition(find func(int64) (tz.Transition, bool, error)) (ZonedDateTime, bool, error) {
	t, ok, err := find(z.ts.secs)
	if err != nil || !ok {
		return ZonedDateTime{}, false, err
	}
	ts, err := TimestampFromSecond(t.At)
	if err != nil {
		return ZonedDateTime{}, false, err
	}
	return zonedAt(ts, z.zone, t.After), true, nil
}

// String returns z as an RFC 3339 datetime with its offset followed by the
// zone name in brackets: 2024-03-10T03:30:00-04:00[America/New_York].
func (z ZonedDateTime) String() string {
	return string(z.AppendText(make([]byte, 0, 64)))
}

// AppendText appends the string form of z to b.
func (z ZonedDateTime) AppendText(b []byte) []byte {
	b = z.dt.AppendText(b)
	b = z.offset.AppendText(b)
	b = append(b, '[')
	b = append(b, z.zone.Name()...)
	return append(b, ']')
}

// Hash returns a hash of the instant of z, so that values that are Equal
// hash equal.
func (z ZonedDateTime) Hash() uint64 { return hash64(KindZoned, z.ts.AppendText(nil)) }

// ParseZoned parses a datetime with a bracketed time zone annotation, such
// as "2024-03-10T03:30:00-04:00[America/New_York]", loading the zone from db,
// or from tz.System if db is nil. Without an offset the civil time is
// resolved with tz.Compatible. An offset of Z takes the instant as written;
// any other offset must be valid for the civil time in the zone.
func ParseZoned(src string, db tz.Provider) (ZonedDateTime, error) {
	p, err := parser.ParseDateTime(src)
	if err != nil {
		return ZonedDateTime{}, parseError(err)
	}
	if !p.HasZone() {
		return ZonedDateTime{}, fmt.Errorf("%w: %q: missing time zone annotation", ErrParse, src)
	}
	if db == nil {
		db = tz.System()
	}
	zone, err := tz.Load(db, p.Zone)
	if err != nil {
		return ZonedDateTime{}, fmt.Errorf("%w: %q: %w", ErrParse, src, err)
	}

	if p.HasOffset && p.Offset.Zulu {
		ts, err := timestampFromParsed(p)
		if err != nil {
			return ZonedDateTime{}, rangeParseError(src, err)
		}
		return ts.InZone(zone)
	}

	dt, err := dateTimeFromParsed(p)
	if err != nil {
		return ZonedDateTime{}, rangeParseError(src, err)
	}
	amb, err := dt.Resolve(zone)
	if err != nil {
		return ZonedDateTime{}, err
	}
	if !p.HasOffset {
		return amb.Compatible()
	}

	off, err := tz.NewOffset(int64(p.Offset.Seconds))
	if err != nil {
		return ZonedDateTime{}, rangeParseError(src, err)
	}
	if !amb.valid(off) {
		return ZonedDateTime{}, fmt.Errorf(
			"%w: %q: offset %v is not valid for %v in %v", ErrValue, src, off, dt, zone,
		)
	}
	return amb.at(off)
}

// ParseZonedContext is like ParseZoned but loads the zone from the database
// in ctx.
func ParseZonedContext(ctx context.Context, src string) (ZonedDateTime, error) {
	return ParseZoned(src, tz.DatabaseFromContext(ctx))
}

// AmbiguousZoned is a civil DateTime in a time zone before a choice of
// offset. It is returned by DateTime.Resolve.
type AmbiguousZoned struct {
	dt   DateTime
	zone TimeZone
	cand tz.Candidates
}

// DateTime returns the civil DateTime.
func (a AmbiguousZoned) DateTime() DateTime { return a.dt }

// TimeZone returns the zone.
func (a AmbiguousZoned) TimeZone() TimeZone { return a.zone }

// Candidates returns the offsets that may apply to the civil DateTime.
func (a AmbiguousZoned) Candidates() tz.Candidates { return a.cand }

// Kind reports whether the DateTime is unambiguous, in a gap, or in a fold.
func (a AmbiguousZoned) Kind() tz.Kind { return a.cand.Kind }

// IsAmbiguous returns true for a gap or fold.
func (a AmbiguousZoned) IsAmbiguous() bool { return a.cand.Kind != tz.Unambiguous }

// IsGap returns true if the DateTime was skipped by a transition.
func (a AmbiguousZoned) IsGap() bool { return a.cand.Kind == tz.Gap }

// IsFold returns true if the DateTime occurs twice.
func (a AmbiguousZoned) IsFold() bool { return a.cand.Kind == tz.Fold }

// Disambiguate resolves the DateTime with policy d.
func (a AmbiguousZoned) Disambiguate(d tz.Disambiguation) (ZonedDateTime, error) {
	off, err := a.cand.Pick(d)
	if err != nil {
		return ZonedDateTime{}, fmt.Errorf("%w: %v in %v: %w", ErrValue, a.dt, a.zone, err)
	}
	return a.at(off)
}

// Compatible resolves gaps forward and folds to the earlier instant.
func (a AmbiguousZoned) Compatible() (ZonedDateTime, error) { return a.Disambiguate(tz.Compatible) }

// Earlier resolves gaps and folds to the earlier instant.
func (a AmbiguousZoned) Earlier() (ZonedDateTime, error) { return a.Disambiguate(tz.Earlier) }

// Later resolves gaps and folds to the later instant.
func (a AmbiguousZoned) Later() (ZonedDateTime, error) { return a.Disambiguate(tz.Later) }

// Unambiguous returns an error wrapping tz.ErrAmbiguous for a gap or fold.
func (a AmbiguousZoned) Unambiguous() (ZonedDateTime, error) { return a.Disambiguate(tz.Reject) }

// valid returns true if off yields the civil DateTime exactly.
func (a AmbiguousZoned) valid(off tz.Offset) bool {
	switch a.cand.Kind {
	case tz.Gap:
		return false
	case tz.Fold:
		return off == a.cand.Before || off == a.cand.After
	default:
		return off == a.cand.Before
	}
}

// prefer resolves with off if it is valid and with tz.Compatible otherwise.
func (a AmbiguousZoned) prefer(off tz.Offset) (ZonedDateTime, error) {
	if a.valid(off) {
		return a.at(off)
	}
	return a.Compatible()
}

// at returns the instant of the civil DateTime at off, in the zone. In a gap
// the offset of the result is the one in effect at that instant.
func (a AmbiguousZoned) at(off tz.Offset) (ZonedDateTime, error) {
	secs, nanos := a.dt.localSeconds()
	ts, err := NewTimestamp(secs-off.Seconds(), int64(nanos))
	if err != nil {
		return ZonedDateTime{}, err
	}
	if a.cand.Kind == tz.Gap {
		return ts.InZone(a.zone)
	}
	return zonedAt(ts, a.zone, off), nil
}
