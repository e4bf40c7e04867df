package temporal

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/theory/tempo/temporal/parser"
	"github.com/theory/tempo/temporal/round"
)

// SignedDuration is an exact, signed amount of elapsed time with nanosecond
// precision and the range of an int64 count of seconds. Unlike
// time.Duration it can represent the distance between any two Timestamps.
// The zero value is a zero duration.
type SignedDuration struct {
	secs int64
	// nanos has the same sign as secs and magnitude below one second.
	nanos int32
}

//nolint:gochecknoglobals
var (
	// MinSignedDuration is the most negative SignedDuration.
	MinSignedDuration = SignedDuration{math.MinInt64, -(nanosPerSecond - 1)}

	// MaxSignedDuration is the most positive SignedDuration.
	MaxSignedDuration = SignedDuration{math.MaxInt64, nanosPerSecond - 1}
)

// NewSignedDuration returns the duration of secs seconds plus nanos
// nanoseconds. Nanoseconds beyond one second carry into secs, and the result
// is normalized so that both parts share a sign. Returns ErrOverflow if the
// seconds overflow.
func NewSignedDuration(secs, nanos int64) (SignedDuration, error) {
	secs, ok := checkedAdd(secs, nanos/nanosPerSecond)
	if !ok {
		return SignedDuration{}, fmt.Errorf("%w: duration seconds exceed int64", ErrOverflow)
	}
	nanos %= nanosPerSecond
	switch {
	case secs > 0 && nanos < 0:
		secs--
		nanos += nanosPerSecond
	case secs < 0 && nanos > 0:
		secs++
		nanos -= nanosPerSecond
	}
	return SignedDuration{secs, int32(nanos)}, nil
}

// DurationFromSecs returns a duration of n seconds.
func DurationFromSecs(n int64) SignedDuration { return SignedDuration{secs: n} }

// DurationFromMillis returns a duration of n milliseconds.
func DurationFromMillis(n int64) SignedDuration {
	return SignedDuration{n / 1_000, int32(n % 1_000 * nanosPerMilli)}
}

// DurationFromMicros returns a duration of n microseconds.
func DurationFromMicros(n int64) SignedDuration {
	return SignedDuration{n / 1_000_000, int32(n % 1_000_000 * nanosPerMicro)}
}

// DurationFromNanos returns a duration of n nanoseconds.
func DurationFromNanos(n int64) SignedDuration {
	return SignedDuration{n / nanosPerSecond, int32(n % nanosPerSecond)}
}

// DurationFromMinutes returns a duration of n minutes.
func DurationFromMinutes(n int64) (SignedDuration, error) {
	secs, ok := checkedMul(n, secondsPerMinute)
	if !ok {
		return SignedDuration{}, fmt.Errorf("%w: %d minutes", ErrOverflow, n)
	}
	return SignedDuration{secs: secs}, nil
}

// DurationFromHours returns a duration of n hours.
func DurationFromHours(n int64) (SignedDuration, error) {
	secs, ok := checkedMul(n, secondsPerHour)
	if !ok {
		return SignedDuration{}, fmt.Errorf("%w: %d hours", ErrOverflow, n)
	}
	return SignedDuration{secs: secs}, nil
}

// DurationFromStd converts a time.Duration.
func DurationFromStd(d time.Duration) SignedDuration { return DurationFromNanos(int64(d)) }

// Std converts d to a time.Duration. Returns ErrOverflow if d is outside the
// roughly 292 years a time.Duration can hold.
func (d SignedDuration) Std() (time.Duration, error) {
	n, ok := checkedMul(d.secs, nanosPerSecond)
	if ok {
		n, ok = checkedAdd(n, int64(d.nanos))
	}
	if !ok {
		return 0, fmt.Errorf("%w: %v exceeds time.Duration", ErrOverflow, d)
	}
	return time.Duration(n), nil
}

// Kind returns KindDuration.
func (SignedDuration) Kind() Kind { return KindDuration }

// Seconds returns the whole seconds of d.
func (d SignedDuration) Seconds() int64 { return d.secs }

// Subsec returns the fractional second of d in nanoseconds. It has the same
// sign as d.
func (d SignedDuration) Subsec() int32 { return d.nanos }

// AsSecs returns d as a floating point number of seconds.
func (d SignedDuration) AsSecs() float64 {
	return float64(d.secs) + float64(d.nanos)/nanosPerSecond
}

// AsHours returns d as a floating point number of hours.
func (d SignedDuration) AsHours() float64 { return d.AsSecs() / secondsPerHour }

// IsZero returns true for a zero duration.
func (d SignedDuration) IsZero() bool { return d.secs == 0 && d.nanos == 0 }

// IsNegative returns true if d is less than zero.
func (d SignedDuration) IsNegative() bool { return d.secs < 0 || d.nanos < 0 }

// Signum returns -1, 0, or +1 according to the sign of d.
func (d SignedDuration) Signum() int {
	if d.secs != 0 {
		return sign(d.secs)
	}
	return sign(d.nanos)
}

// Compare returns -1 if d is shorter than o, +1 if longer, and 0 if equal.
func (d SignedDuration) Compare(o SignedDuration) int {
	switch {
	case d.secs < o.secs:
		return -1
	case d.secs > o.secs:
		return 1
	case d.nanos < o.nanos:
		return -1
	case d.nanos > o.nanos:
		return 1
	default:
		return 0
	}
}

// Add returns d+o or ErrOverflow.
func (d SignedDuration) Add(o SignedDuration) (SignedDuration, error) {
	secs, ok := checkedAdd(d.secs, o.secs)
	if !ok {
		return SignedDuration{}, fmt.Errorf("%w: %v + %v", ErrOverflow, d, o)
	}
	return NewSignedDuration(secs, int64(d.nanos)+int64(o.nanos))
}

// Sub returns d-o or ErrOverflow.
func (d SignedDuration) Sub(o SignedDuration) (SignedDuration, error) {
	secs, ok := checkedSub(d.secs, o.secs)
	if !ok {
		return SignedDuration{}, fmt.Errorf("%w: %v - %v", ErrOverflow, d, o)
	}
	return NewSignedDuration(secs, int64(d.nanos)-int64(o.nanos))
}

// Negate returns -d. Only MinSignedDuration overflows.
func (d SignedDuration) Negate() (SignedDuration, error) {
	if d.secs == math.MinInt64 {
		return SignedDuration{}, fmt.Errorf("%w: cannot negate %v", ErrOverflow, d)
	}
	return SignedDuration{-d.secs, -d.nanos}, nil
}

// neg negates d, which the caller knows is not MinSignedDuration.
func (d SignedDuration) neg() SignedDuration { return SignedDuration{-d.secs, -d.nanos} }

// Abs returns the absolute value of d. Only MinSignedDuration overflows.
func (d SignedDuration) Abs() (SignedDuration, error) {
	if d.IsNegative() {
		return d.Negate()
	}
	return d, nil
}

// Mul returns d*n or ErrOverflow.
func (d SignedDuration) Mul(n int64) (SignedDuration, error) {
	secs, ok := checkedMul(d.secs, n)
	if ok {
		// d.nanos*n split into whole seconds and a remainder, neither of
		// which overflows.
		whole := int64(d.nanos) * (n / nanosPerSecond)
		part := int64(d.nanos) * (n % nanosPerSecond)
		if secs, ok = checkedAdd(secs, whole); ok {
			secs, ok = checkedAdd(secs, part/nanosPerSecond)
		}
		if ok {
			return NewSignedDuration(secs, part%nanosPerSecond)
		}
	}
	return SignedDuration{}, fmt.Errorf("%w: %v * %d", ErrOverflow, d, n)
}

// Round rounds d to an increment of unit, which may be at most an hour.
// Increments of units below an hour must evenly divide the next larger unit.
// The default increment is 1 and the default mode is round.HalfExpand.
func (d SignedDuration) Round(unit round.Unit, opt ...round.Option) (SignedDuration, error) {
	cfg := round.New(unit, round.HalfExpand, opt...)
	if cfg.Smallest > round.Hour {
		return SignedDuration{}, fmt.Errorf(
			"%w: cannot round a duration to %vs without an anchor",
			ErrValue, cfg.Smallest,
		)
	}
	// Hours are the largest unit of a duration and take any increment.
	if err := cfg.ValidateIncrement(cfg.Smallest < round.Hour); err != nil {
		return SignedDuration{}, fmt.Errorf("%w: %w", ErrValue, err)
	}
	n, ok := checkedMul(cfg.Smallest.Nanos(), cfg.Increment)
	if !ok {
		return SignedDuration{}, fmt.Errorf(
			"%w: increment %d %vs too large", ErrValue, cfg.Increment, cfg.Smallest,
		)
	}
	return d.roundTo(n, cfg.Mode)
}

// roundTo rounds d to a multiple of n nanoseconds.
func (d SignedDuration) roundTo(n int64, mode round.Mode) (SignedDuration, error) {
	if n == 1 {
		return d, nil
	}
	if nanosPerSecond%n == 0 {
		q, r := int64(d.nanos)/n, int64(d.nanos)%n
		// Parity of the whole quotient, for round.HalfEven.
		p := q % 2
		if (nanosPerSecond/n)%2 != 0 {
			p += d.secs % 2
		}
		p %= 2
		return NewSignedDuration(d.secs, (q+round.Quotient(p, r, n, mode)-p)*n)
	}

	// The general case needs more than 64 bits.
	inc := big.NewInt(n)
	q, r := new(big.Int).QuoRem(d.bigNanos(), inc, new(big.Int))
	odd := int64(q.Bit(0))
	q.Add(q, big.NewInt(round.Quotient(odd, r.Int64(), n, mode)-odd))
	return durationFromBig(q.Mul(q, inc))
}

// bigNanos returns d in nanoseconds.
func (d SignedDuration) bigNanos() *big.Int {
	n := big.NewInt(d.secs)
	n.Mul(n, big.NewInt(nanosPerSecond))
	return n.Add(n, big.NewInt(int64(d.nanos)))
}

// durationFromBig converts a count of nanoseconds.
func durationFromBig(n *big.Int) (SignedDuration, error) {
	secs, nanos := new(big.Int).QuoRem(n, big.NewInt(nanosPerSecond), new(big.Int))
	if !secs.IsInt64() {
		return SignedDuration{}, fmt.Errorf("%w: %v nanoseconds", ErrOverflow, n)
	}
	return SignedDuration{secs.Int64(), int32(nanos.Int64())}, nil
}

// String returns d in ISO 8601 duration notation with hours as the largest
// unit, such as "PT1H2M3.5S" or "-PT0.000001S". A zero duration is "PT0S".
func (d SignedDuration) String() string {
	return string(d.AppendText(make([]byte, 0, 24)))
}

// AppendText appends the string form of d to b.
func (d SignedDuration) AppendText(b []byte) []byte {
	if d.IsNegative() {
		b = append(b, '-')
	}
	b = append(b, 'P', 'T')

	secs := uint64(d.secs)
	if d.secs < 0 {
		secs = -secs
	}
	nanos := abs(d.nanos)

	h, m, s := secs/secondsPerHour, secs/secondsPerMinute%60, secs%60
	if h > 0 {
		b = strconv.AppendUint(b, h, 10)
		b = append(b, 'H')
	}
	if m > 0 {
		b = strconv.AppendUint(b, m, 10)
		b = append(b, 'M')
	}
	if s > 0 || nanos > 0 || (h == 0 && m == 0) {
		b = strconv.AppendUint(b, s, 10)
		b = appendFraction(b, int64(nanos))
		b = append(b, 'S')
	}
	return b
}

// Hash returns a hash of d.
func (d SignedDuration) Hash() uint64 { return hash64(KindDuration, d.AppendText(nil)) }

// ParseSignedDuration parses ISO 8601 duration notation limited to hours,
// minutes, and seconds, such as "PT1H30M" or "-PT0.5S".
func ParseSignedDuration(src string) (SignedDuration, error) {
	p, err := parser.ParseDuration(src)
	if err != nil {
		return SignedDuration{}, parseError(err)
	}
	if p.HasCalendar() {
		return SignedDuration{}, fmt.Errorf(
			"%w: %q: signed durations cannot contain years, months, weeks, or days",
			ErrParse, src,
		)
	}

	// Sum negative parts as negatives so that MinSignedDuration parses.
	parts := [...]int64{p.Hours, p.Minutes, p.Seconds, p.Milliseconds, p.Microseconds, p.Nanoseconds}
	if p.Negative {
		for i := range parts {
			parts[i] = -parts[i]
		}
	}
	d, err := durationFromParts(parts[0], parts[1], parts[2], parts[3], parts[4], parts[5])
	if err != nil {
		return SignedDuration{}, rangeParseError(src, err)
	}
	return d, nil
}

// durationFromParts sums time components that share a sign.
func durationFromParts(hours, minutes, seconds, millis, micros, nanos int64) (SignedDuration, error) {
	d := DurationFromNanos(nanos)
	for _, part := range []struct {
		n   int64
		per int64
	}{
		{hours, secondsPerHour},
		{minutes, secondsPerMinute},
		{seconds, 1},
	} {
		secs, ok := checkedMul(part.n, part.per)
		if !ok {
			return SignedDuration{}, fmt.Errorf("%w: duration seconds exceed int64", ErrOverflow)
		}
		var err error
		if d, err = d.Add(DurationFromSecs(secs)); err != nil {
			return SignedDuration{}, err
		}
	}
	d, err := d.Add(DurationFromMillis(millis))
	if err != nil {
		return SignedDuration{}, err
	}
	return d.Add(DurationFromMicros(micros))
}

// appendFraction appends nanos as a decimal fraction with trailing zeros
// trimmed, or nothing when nanos is zero.
func appendFraction(b []byte, nanos int64) []byte {
	if nanos == 0 {
		return b
	}
	var buf [10]byte
	buf[0] = '.'
	for i := 9; i > 0; i-- {
		buf[i] = byte('0' + nanos%10)
		nanos /= 10
	}
	end := 10
	for buf[end-1] == '0' {
		end--
	}
	return append(b, buf[:end]...)
}
