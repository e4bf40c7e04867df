package temporal

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/theory/tempo/temporal/parser"
	"github.com/theory/tempo/temporal/round"
)

// numUnits is the number of components in a Span.
const numUnits = int(round.Year) + 1

// spanBounds holds the largest absolute value of each Span component,
// indexed by unit. Each bound is the length of the supported date range in
// that unit.
//
//nolint:gochecknoglobals
var spanBounds = [numUnits]int64{
	round.Nanosecond:  math.MaxInt64,
	round.Microsecond: 631_107_417_600_000_000,
	round.Millisecond: 631_107_417_600_000,
	round.Second:      631_107_417_600,
	round.Minute:      10_518_456_960,
	round.Hour:        175_307_616,
	round.Day:         7_304_484,
	round.Week:        1_043_497,
	round.Month:       239_976,
	round.Year:        19_998,
}

// Span is a signed, calendar-relative amount of time made up of years,
// months, weeks, days, hours, minutes, seconds, milliseconds, microseconds,
// and nanoseconds. All nonzero components share one sign. Unlike a
// SignedDuration, the length of a Span with calendar units depends on where
// it is applied, so conversions and comparisons of such spans need an
// Anchor. The zero value is a zero span.
type Span struct {
	v    [numUnits]int64 // indexed by round.Unit
	sign int8
}

// SpanFields holds the components of a Span for NewSpan.
type SpanFields struct {
	Years        int64
	Months       int64
	Weeks        int64
	Days         int64
	Hours        int64
	Minutes      int64
	Seconds      int64
	Milliseconds int64
	Microseconds int64
	Nanoseconds  int64
}

func (f SpanFields) units() [numUnits]int64 {
	return [numUnits]int64{
		round.Nanosecond:  f.Nanoseconds,
		round.Microsecond: f.Microseconds,
		round.Millisecond: f.Milliseconds,
		round.Second:      f.Seconds,
		round.Minute:      f.Minutes,
		round.Hour:        f.Hours,
		round.Day:         f.Days,
		round.Week:        f.Weeks,
		round.Month:       f.Months,
		round.Year:        f.Years,
	}
}

// NewSpan returns the Span of f. Returns ErrValue if the components do not
// all share a sign and ErrRange if any component exceeds its bound.
func NewSpan(f SpanFields) (Span, error) { return spanFromUnits(f.units()) }

// MustSpan is like NewSpan but panics on error.
func MustSpan(f SpanFields) Span {
	s, err := NewSpan(f)
	if err != nil {
		panic(err)
	}
	return s
}

func spanFromUnits(v [numUnits]int64) (Span, error) {
	s := Span{v: v}
	for u, n := range v {
		if n < -spanBounds[u] || n > spanBounds[u] {
			return Span{}, fmt.Errorf(
				"%w: %vs %d not in [-%d, %d]",
				ErrRange, round.Unit(u), n, spanBounds[u], spanBounds[u],
			)
		}
		if n == 0 {
			continue
		}
		sg := int8(sign(n))
		if s.sign != 0 && s.sign != sg {
			return Span{}, fmt.Errorf("%w: span components have mixed signs", ErrValue)
		}
		s.sign = sg
	}
	return s, nil
}

// with returns s with unit u set to n.
func (s Span) with(u round.Unit, n int64) (Span, error) {
	s.v[u] = n
	return spanFromUnits(s.v)
}

// WithYears returns s with the years set to n.
func (s Span) WithYears(n int64) (Span, error) { return s.with(round.Year, n) }

// WithMonths returns s with the months set to n.
func (s Span) WithMonths(n int64) (Span, error) { return s.with(round.Month, n) }

// WithWeeks returns s with the weeks set to n.
func (s Span) WithWeeks(n int64) (Span, error) { return s.with(round.Week, n) }

// WithDays returns s with the days set to n.
func (s Span) WithDays(n int64) (Span, error) { return s.with(round.Day, n) }

// WithHours returns s with the hours set to n.
func (s Span) WithHours(n int64) (Span, error) { return s.with(round.Hour, n) }

// WithMinutes returns s with the minutes set to n.
func (s Span) WithMinutes(n int64) (Span, error) { return s.with(round.Minute, n) }

// WithSeconds returns s with the seconds set to n.
func (s Span) WithSeconds(n int64) (Span, error) { return s.with(round.Second, n) }

// WithMilliseconds returns s with the milliseconds set to n.
func (s Span) WithMilliseconds(n int64) (Span, error) { return s.with(round.Millisecond, n) }

// WithMicroseconds returns s with the microseconds set to n.
func (s Span) WithMicroseconds(n int64) (Span, error) { return s.with(round.Microsecond, n) }

// WithNanoseconds returns s with the nanoseconds set to n.
func (s Span) WithNanoseconds(n int64) (Span, error) { return s.with(round.Nanosecond, n) }

// Kind returns KindSpan.
func (Span) Kind() Kind { return KindSpan }

// Years returns the years component of s.
func (s Span) Years() int64 { return s.v[round.Year] }

// Months returns the months component of s.
func (s Span) Months() int64 { return s.v[round.Month] }

// Weeks returns the weeks component of s.
func (s Span) Weeks() int64 { return s.v[round.Week] }

// Days returns the days component of s.
func (s Span) Days() int64 { return s.v[round.Day] }

// Hours returns the hours component of s.
func (s Span) Hours() int64 { return s.v[round.Hour] }

// Minutes returns the minutes component of s.
func (s Span) Minutes() int64 { return s.v[round.Minute] }

// Seconds returns the seconds component of s.
func (s Span) Seconds() int64 { return s.v[round.Second] }

// Milliseconds returns the milliseconds component of s.
func (s Span) Milliseconds() int64 { return s.v[round.Millisecond] }

// Microseconds returns the microseconds component of s.
func (s Span) Microseconds() int64 { return s.v[round.Microsecond] }

// Nanoseconds returns the nanoseconds component of s.
func (s Span) Nanoseconds() int64 { return s.v[round.Nanosecond] }

// Get returns the component of s for unit u.
func (s Span) Get(u round.Unit) int64 {
	if int(u) >= numUnits {
		return 0
	}
	return s.v[u]
}

// Fields returns the components of s.
func (s Span) Fields() SpanFields {
	return SpanFields{
		Years:        s.v[round.Year],
		Months:       s.v[round.Month],
		Weeks:        s.v[round.Week],
		Days:         s.v[round.Day],
		Hours:        s.v[round.Hour],
		Minutes:      s.v[round.Minute],
		Seconds:      s.v[round.Second],
		Milliseconds: s.v[round.Millisecond],
		Microseconds: s.v[round.Microsecond],
		Nanoseconds:  s.v[round.Nanosecond],
	}
}

// Signum returns -1, 0, or +1 for a negative, zero, or positive span.
func (s Span) Signum() int { return int(s.sign) }

// IsZero returns true if every component of s is zero.
func (s Span) IsZero() bool { return s.sign == 0 }

// IsNegative returns true if s is negative.
func (s Span) IsNegative() bool { return s.sign < 0 }

// HasCalendar returns true if s has nonzero years, months, weeks, or days.
func (s Span) HasCalendar() bool {
	return s.v[round.Year] != 0 || s.v[round.Month] != 0 || s.v[round.Week] != 0 || s.v[round.Day] != 0
}

// Negate returns s with every component negated. The component bounds are
// symmetric, so it cannot fail.
func (s Span) Negate() Span {
	for u := range s.v {
		s.v[u] = -s.v[u]
	}
	s.sign = -s.sign
	return s
}

// Abs returns s with every component non-negative.
func (s Span) Abs() Span {
	if s.sign < 0 {
		return s.Negate()
	}
	return s
}

// LargestUnit returns the largest unit with a nonzero component, or
// round.Nanosecond for a zero span.
func (s Span) LargestUnit() round.Unit {
	for u := round.Year; u > round.Nanosecond; u-- {
		if s.v[u] != 0 {
			return u
		}
	}
	return round.Nanosecond
}

// timeDuration returns the exact duration of the hours and smaller units of
// s. The component bounds keep it well inside the range of SignedDuration.
func (s Span) timeDuration() SignedDuration {
	secs := s.v[round.Hour]*secondsPerHour + s.v[round.Minute]*secondsPerMinute + s.v[round.Second] +
		s.v[round.Millisecond]/1_000 + s.v[round.Microsecond]/1_000_000 +
		s.v[round.Nanosecond]/nanosPerSecond
	nanos := s.v[round.Millisecond]%1_000*nanosPerMilli + s.v[round.Microsecond]%1_000_000*nanosPerMicro +
		s.v[round.Nanosecond]%nanosPerSecond
	d, _ := NewSignedDuration(secs, nanos)
	return d
}

// datePart returns s with only its years, months, weeks, and days.
func (s Span) datePart() Span {
	for u := round.Nanosecond; u < round.Day; u++ {
		s.v[u] = 0
	}
	s, _ = spanFromUnits(s.v)
	return s
}

// Add returns s plus o. When both spans share a sign, or either is zero, the
// components are added pairwise. Otherwise both spans must be free of
// calendar units, and the sum is balanced into the larger of their largest
// units. Use AddRelative to add spans with calendar units and different
// signs.
func (s Span) Add(o Span) (Span, error) {
	if s.sign*o.sign >= 0 {
		var v [numUnits]int64
		for u := range v {
			n, ok := checkedAdd(s.v[u], o.v[u])
			if !ok {
				return Span{}, fmt.Errorf("%w: %v + %v", ErrRange, s, o)
			}
			v[u] = n
		}
		return spanFromUnits(v)
	}
	if s.HasCalendar() || o.HasCalendar() {
		return Span{}, fmt.Errorf(
			"%w: adding %v and %v requires an anchor", ErrValue, s, o,
		)
	}
	sum, err := s.timeDuration().Add(o.timeDuration())
	if err != nil {
		return Span{}, err
	}
	return balanceDuration(sum, max(s.LargestUnit(), o.LargestUnit()))
}

// Sub returns s minus o with the same rules as Add.
func (s Span) Sub(o Span) (Span, error) { return s.Add(o.Negate()) }

// AddRelative returns the span from anchor to anchor plus s plus o, balanced
// into the larger of the largest units of s and o.
func (s Span) AddRelative(o Span, anchor Anchor) (Span, error) {
	cfg, _ := round.New(round.Nanosecond, round.Trunc).
		Resolve(max(s.LargestUnit(), o.LargestUnit()))
	if z, ok := anchor.(ZonedDateTime); ok {
		return addRelative(s, o, z, cfg)
	}
	return addRelative(s, o, anchor.civil(), cfg)
}

// SubRelative returns s minus o measured from anchor.
func (s Span) SubRelative(o Span, anchor Anchor) (Span, error) {
	return s.AddRelative(o.Negate(), anchor)
}

func addRelative[T relative[T]](s, o Span, start T, cfg round.Config) (Span, error) {
	mid, err := start.AddSpan(s)
	if err != nil {
		return Span{}, err
	}
	end, err := mid.AddSpan(o)
	if err != nil {
		return Span{}, err
	}
	return spanBetween(start, end, cfg)
}

// ToDuration returns the exact duration of s. Returns ErrValue if s has
// calendar units, whose length depends on an anchor.
func (s Span) ToDuration() (SignedDuration, error) {
	if s.HasCalendar() {
		return SignedDuration{}, fmt.Errorf(
			"%w: converting %v to a duration requires an anchor", ErrValue, s,
		)
	}
	return s.timeDuration(), nil
}

// ToDurationRelative returns the exact duration from anchor to anchor plus
// s.
func (s Span) ToDurationRelative(anchor Anchor) (SignedDuration, error) {
	if z, ok := anchor.(ZonedDateTime); ok {
		return durationRelative(s, z)
	}
	return durationRelative(s, anchor.civil())
}

func durationRelative[T relative[T]](s Span, start T) (SignedDuration, error) {
	end, err := start.AddSpan(s)
	if err != nil {
		return SignedDuration{}, err
	}
	return start.DurationUntil(end), nil
}

// Total returns the length of s as a fractional count of unit, which may be
// at most an hour. Returns ErrValue if s has calendar units.
func (s Span) Total(unit round.Unit) (float64, error) {
	if unit > round.Hour {
		return 0, fmt.Errorf("%w: totaling %vs requires an anchor", ErrValue, unit)
	}
	d, err := s.ToDuration()
	if err != nil {
		return 0, err
	}
	return totalNanos(d, unit), nil
}

// TotalRelative returns the length of s from anchor as a fractional count of
// unit. Calendar units are counted whole from the anchor, with the remainder
// as a fraction of the next unit's actual length.
func (s Span) TotalRelative(anchor Anchor, unit round.Unit) (float64, error) {
	if z, ok := anchor.(ZonedDateTime); ok {
		return totalRelative(s, z, unit)
	}
	return totalRelative(s, anchor.civil(), unit)
}

func totalRelative[T relative[T]](s Span, start T, unit round.Unit) (float64, error) {
	end, err := start.AddSpan(s)
	if err != nil {
		return 0, err
	}
	if unit < round.Day {
		return totalNanos(start.DurationUntil(end), unit), nil
	}

	cfg, err := round.New(unit, round.Trunc).Resolve(unit)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrValue, err)
	}
	whole, err := spanBetween(start, end, cfg)
	if err != nil {
		return 0, err
	}
	n := whole.v[unit]
	lo, err := start.AddSpan(whole)
	if err != nil {
		return 0, err
	}
	step := Span{sign: int8(s.sign)}
	step.v[unit] = int64(s.sign)
	if step.sign == 0 {
		return 0, nil
	}
	hi, err := lo.AddSpan(step)
	if err != nil {
		return 0, err
	}
	num := new(big.Rat).SetFrac(lo.DurationUntil(end).bigNanos(), lo.DurationUntil(hi).bigNanos())
	num.Abs(num)
	if s.sign < 0 {
		num.Neg(num)
	}
	f, _ := num.Add(num, new(big.Rat).SetInt64(n)).Float64()
	return f, nil
}

// totalNanos returns d as a fractional count of unit.
func totalNanos(d SignedDuration, unit round.Unit) float64 {
	f, _ := new(big.Rat).SetFrac(d.bigNanos(), big.NewInt(unit.Nanos())).Float64()
	return f
}

// Compare compares the lengths of s and o. Returns ErrValue if either has
// calendar units.
func (s Span) Compare(o Span) (int, error) {
	a, err := s.ToDuration()
	if err != nil {
		return 0, err
	}
	b, err := o.ToDuration()
	if err != nil {
		return 0, err
	}
	return a.Compare(b), nil
}

// CompareRelative compares the lengths of s and o from anchor.
func (s Span) CompareRelative(o Span, anchor Anchor) (int, error) {
	if z, ok := anchor.(ZonedDateTime); ok {
		return compareRelative(s, o, z)
	}
	return compareRelative(s, o, anchor.civil())
}

func compareRelative[T relative[T]](s, o Span, start T) (int, error) {
	a, err := start.AddSpan(s)
	if err != nil {
		return 0, err
	}
	b, err := start.AddSpan(o)
	if err != nil {
		return 0, err
	}
	return a.Compare(b), nil
}

// Round rounds s to an increment of unit and balances it into the largest
// unit, which defaults to the larger of unit and the largest unit of s.
// Without an anchor neither s nor the units may include days or larger. The
// default mode is round.HalfExpand.
func (s Span) Round(unit round.Unit, opt ...round.Option) (Span, error) {
	if s.HasCalendar() {
		return Span{}, fmt.Errorf("%w: rounding %v requires an anchor", ErrValue, s)
	}
	cfg, err := spanRoundConfig(s, unit, opt)
	if err != nil {
		return Span{}, err
	}
	if cfg.Largest > round.Hour {
		return Span{}, fmt.Errorf("%w: rounding to %vs requires an anchor", ErrValue, cfg.Largest)
	}
	return roundedSpan(s.timeDuration(), cfg)
}

// RoundRelative rounds s to an increment of unit measured from anchor, so
// that calendar units take the lengths they have at anchor.
func (s Span) RoundRelative(anchor Anchor, unit round.Unit, opt ...round.Option) (Span, error) {
	cfg, err := spanRoundConfig(s, unit, opt)
	if err != nil {
		return Span{}, err
	}
	if z, ok := anchor.(ZonedDateTime); ok {
		return roundRelative(s, z, cfg)
	}
	return roundRelative(s, anchor.civil(), cfg)
}

func roundRelative[T relative[T]](s Span, start T, cfg round.Config) (Span, error) {
	end, err := start.AddSpan(s)
	if err != nil {
		return Span{}, err
	}
	return spanBetween(start, end, cfg)
}

func spanRoundConfig(s Span, unit round.Unit, opt []round.Option) (round.Config, error) {
	cfg, err := round.New(unit, round.HalfExpand, opt...).Resolve(s.LargestUnit())
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrValue, err)
	}
	if err := cfg.ValidateIncrement(cfg.Smallest < cfg.Largest); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrValue, err)
	}
	return cfg, nil
}

// isDesignated returns true if s can be written in designated notation,
// which folds the sub-second components into a decimal fraction of seconds.
func (s Span) isDesignated() bool {
	return abs(s.v[round.Millisecond]) < 1_000 &&
		abs(s.v[round.Microsecond]) < 1_000 &&
		abs(s.v[round.Nanosecond]) < 1_000
}

// String returns s in ISO 8601 designated duration notation, such as
// "P1Y2M3DT4H5M6.5S" or "-P1W", and "PT0S" for a zero span. A span with a
// sub-second component too large to fold into a seconds fraction is written
// in the expanded form returned by GoString.
func (s Span) String() string {
	return string(s.AppendText(make([]byte, 0, 32)))
}

//nolint:gochecknoglobals
var designators = []struct {
	unit round.Unit
	char byte
}{
	{round.Year, 'Y'}, {round.Month, 'M'}, {round.Week, 'W'}, {round.Day, 'D'},
	{round.Hour, 'H'}, {round.Minute, 'M'},
}

// AppendText appends the string form of s to b.
func (s Span) AppendText(b []byte) []byte {
	if !s.isDesignated() {
		return s.appendDebug(b)
	}
	if s.sign < 0 {
		b = append(b, '-')
	}
	b = append(b, 'P')
	if s.sign == 0 {
		return append(b, "T0S"...)
	}

	frac := abs(s.v[round.Millisecond])*nanosPerMilli +
		abs(s.v[round.Microsecond])*nanosPerMicro +
		abs(s.v[round.Nanosecond])
	secs := abs(s.v[round.Second])
	hasTime := s.v[round.Hour] != 0 || s.v[round.Minute] != 0 || secs != 0 || frac != 0

	for _, d := range designators {
		if d.unit == round.Hour && hasTime {
			b = append(b, 'T')
		}
		if n := abs(s.v[d.unit]); n != 0 {
			b = strconv.AppendInt(b, n, 10)
			b = append(b, d.char)
		}
	}
	if secs != 0 || frac != 0 {
		b = strconv.AppendInt(b, secs, 10)
		b = appendFraction(b, frac)
		b = append(b, 'S')
	}
	return b
}

// GoString returns the expanded form of s listing every component with its
// sign, such as "Span{years: 1, months: 0, ...}".
func (s Span) GoString() string { return string(s.appendDebug(nil)) }

func (s Span) appendDebug(b []byte) []byte {
	b = append(b, "Span{"...)
	for i, u := 0, round.Year; i < numUnits; i, u = i+1, u-1 {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, u.String()...)
		b = append(b, "s: "...)
		b = strconv.AppendInt(b, s.v[u], 10)
	}
	return append(b, '}')
}

// Hash returns a hash of s. Spans with equal components hash equal.
func (s Span) Hash() uint64 { return hash64(KindSpan, s.appendDebug(nil)) }

// ParseSpan parses ISO 8601 designated duration notation, such as
// "P1Y2M3DT4H5M6.5S", "-P1W", or "PT1.5H", or the expanded form returned by
// GoString.
func ParseSpan(src string) (Span, error) {
	var (
		p   parser.Duration
		err error
	)
	if strings.HasPrefix(src, "Span{") {
		p, err = parser.ParseDebug(src)
	} else {
		p, err = parser.ParseDuration(src)
	}
	if err != nil {
		return Span{}, parseError(err)
	}

	s, err := NewSpan(SpanFields{
		Years:        p.Years,
		Months:       p.Months,
		Weeks:        p.Weeks,
		Days:         p.Days,
		Hours:        p.Hours,
		Minutes:      p.Minutes,
		Seconds:      p.Seconds,
		Milliseconds: p.Milliseconds,
		Microseconds: p.Microseconds,
		Nanoseconds:  p.Nanoseconds,
	})
	if err != nil {
		return Span{}, rangeParseError(src, err)
	}
	if p.Negative {
		return s.Negate(), nil
	}
	return s, nil
}
