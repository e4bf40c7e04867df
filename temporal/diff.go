package temporal

import (
	"fmt"

	"github.com/theory/tempo/temporal/round"
)

// Anchor is a value that a Span can be measured from: a Date (at midnight),
// a DateTime, or a ZonedDateTime. Calendar units take the lengths they have
// at the anchor, and for a ZonedDateTime days take the lengths they have in
// its time zone.
type Anchor interface {
	Temporal
	civil() DateTime
}

func (d Date) civil() DateTime          { return d.StartOfDay() }
func (dt DateTime) civil() DateTime     { return dt }
func (z ZonedDateTime) civil() DateTime { return z.dt }

// relative is implemented by the types that spans are measured between.
type relative[T any] interface {
	AddSpan(s Span) (T, error)
	AddDuration(d SignedDuration) (T, error)
	DurationUntil(o T) SignedDuration
	Compare(o T) int

	// calendarDiff returns the span of whole days and larger units from the
	// receiver to end, which must not be earlier, and the receiver plus that
	// span. The remainder from that point to end is less than a day.
	calendarDiff(end T, largest, smallest round.Unit) (Span, T, error)
}

// diffConfig builds the configuration for a difference from the options,
// with default units smallest and largest and the bounds lo and hi on both.
// The default mode is round.Trunc.
func diffConfig(smallest, largest, lo, hi round.Unit, opt []round.Option) (round.Config, error) {
	cfg, err := round.New(smallest, round.Trunc, opt...).Resolve(largest)
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrValue, err)
	}
	for _, u := range []round.Unit{cfg.Smallest, cfg.Largest} {
		if u < lo || u > hi {
			return cfg, fmt.Errorf("%w: unit %v not in [%v, %v]", ErrValue, u, lo, hi)
		}
	}
	if err := cfg.ValidateIncrement(cfg.Smallest < cfg.Largest); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrValue, err)
	}
	return cfg, nil
}

// spanBetween returns the span from start to end rounded and balanced as
// configured by cfg, which must be resolved.
func spanBetween[T relative[T]](start, end T, cfg round.Config) (Span, error) {
	if start.Compare(end) > 0 {
		cfg.Mode = cfg.Mode.Negate()
		s, err := spanBetween(end, start, cfg)
		return s.Negate(), err
	}
	if cfg.Largest < round.Day {
		return roundedSpan(start.DurationUntil(end), cfg)
	}

	datePart, mid, err := start.calendarDiff(end, cfg.Largest, cfg.Smallest)
	if err != nil {
		return Span{}, err
	}
	if cfg.Smallest >= round.Day {
		return nudgeCalendar(start, end, datePart, cfg)
	}

	rest := mid.DurationUntil(end)
	if cfg.Smallest == round.Nanosecond && cfg.Increment == 1 {
		return joinSpans(datePart, rest)
	}
	return nudgeTime(start, mid, rest, datePart, cfg)
}

// nudgeTime rounds the time remainder rest between mid and the end of a
// difference. If it rounds up to a full day, the difference is measured
// again to the rounded end, so that carries reach the calendar units.
func nudgeTime[T relative[T]](start, mid T, rest SignedDuration, datePart Span, cfg round.Config) (Span, error) {
	n, ok := checkedMul(cfg.Smallest.Nanos(), cfg.Increment)
	if !ok {
		return Span{}, fmt.Errorf("%w: increment %d too large", ErrValue, cfg.Increment)
	}
	rounded, err := rest.roundTo(n, cfg.Mode)
	if err != nil {
		return Span{}, err
	}

	next, err := mid.AddSpan(Span{v: [numUnits]int64{round.Day: 1}, sign: 1})
	if err != nil {
		return Span{}, err
	}
	dayLen := mid.DurationUntil(next)
	if rounded.Compare(dayLen) < 0 {
		return joinSpans(datePart, rounded)
	}

	over, err := rounded.Sub(dayLen)
	if err != nil {
		return Span{}, err
	}
	if over, err = over.roundTo(n, cfg.Mode); err != nil {
		return Span{}, err
	}
	end, err := next.AddDuration(over)
	if err != nil {
		return Span{}, err
	}
	datePart, mid, err = start.calendarDiff(end, cfg.Largest, cfg.Smallest)
	if err != nil {
		return Span{}, err
	}
	return joinSpans(datePart, mid.DurationUntil(end))
}

// nudgeCalendar rounds a difference to an increment of a calendar unit. It
// truncates the count of the smallest unit to the increment, finds where
// that count and the next increment land from start, and rounds by where end
// falls between them. Rounding up may complete a larger unit, so carries
// then bubble up to the largest unit.
func nudgeCalendar[T relative[T]](start, end T, datePart Span, cfg round.Config) (Span, error) {
	unit := cfg.Smallest
	trunc := Span{}
	for u := unit + 1; int(u) < numUnits; u++ {
		trunc.v[u] = datePart.v[u]
	}
	count := datePart.v[unit] / cfg.Increment * cfg.Increment
	trunc.v[unit] = count
	trunc, err := spanFromUnits(trunc.v)
	if err != nil {
		return Span{}, err
	}

	lo, err := start.AddSpan(trunc)
	if err != nil {
		return Span{}, err
	}
	up := trunc
	up.v[unit] = count + cfg.Increment
	if up, err = spanFromUnits(up.v); err != nil {
		return Span{}, err
	}
	hi, err := start.AddSpan(up)
	if err != nil {
		return Span{}, err
	}

	num := lo.DurationUntil(end)
	den := lo.DurationUntil(hi)
	twice, err := num.Mul(2)
	if err != nil {
		return Span{}, err
	}
	odd := (count/cfg.Increment)%2 != 0
	if round.Step(num.Signum(), twice.Compare(den), odd, cfg.Mode) == 0 {
		return trunc, nil
	}
	return bubble(start, up, hi, cfg)
}

// bubble carries s, which lands on end from start, into larger units up to
// the largest unit wherever a whole larger unit fits. Weeks take part only
// when they are the largest unit.
func bubble[T relative[T]](start T, s Span, end T, cfg round.Config) (Span, error) {
	for u := cfg.Smallest + 1; u <= cfg.Largest; u++ {
		if u == round.Week && cfg.Largest != round.Week {
			continue
		}
		var cand Span
		for v := u; v <= round.Year; v++ {
			cand.v[v] = s.v[v]
		}
		cand.v[u]++
		cand, err := spanFromUnits(cand.v)
		if err != nil {
			break
		}
		at, err := start.AddSpan(cand)
		if err != nil || at.Compare(end) > 0 {
			break
		}
		s = cand
	}
	return s, nil
}

// joinSpans returns datePart plus the time remainder rest balanced into
// hours.
func joinSpans(datePart Span, rest SignedDuration) (Span, error) {
	t, err := balanceDuration(rest, round.Hour)
	if err != nil {
		return Span{}, err
	}
	v := datePart.v
	for u := round.Nanosecond; u < round.Day; u++ {
		v[u] = t.v[u]
	}
	return spanFromUnits(v)
}

// dateDiff returns the span from start to end, which must not be earlier,
// in whole days and larger units up to largest. Weeks are used when they are
// the largest or the smallest unit. Months are counted by comparing the day
// of the month without clamping, so 2021-01-31 to 2021-02-28 is 28 days
// rather than one month.
func dateDiff(start, end Date, largest, smallest round.Unit) Span {
	var v [numUnits]int64
	mid := start
	if largest >= round.Month {
		sy, sm, sd := start.AsTuple()
		ey, em, ed := end.AsTuple()
		months := int64(ey-sy)*12 + int64(em-sm)
		if ed < sd {
			months--
		}
		if largest == round.Year {
			v[round.Year], v[round.Month] = months/12, months%12
		} else {
			v[round.Month] = months
		}
		mid, _ = start.addMonths(months)
	}
	days := int64(end.days - mid.days)
	if largest >= round.Week && (largest == round.Week || smallest == round.Week) {
		v[round.Week], days = days/7, days%7
	}
	v[round.Day] = days
	s, _ := spanFromUnits(v)
	return s
}

// calendarDiff implements relative for DateTime.
func (dt DateTime) calendarDiff(end DateTime, largest, smallest round.Unit) (Span, DateTime, error) {
	endDate := end.date
	if end.time.Before(dt.time) {
		endDate = Date{endDate.days - 1}
	}
	s := dateDiff(dt.date, endDate, largest, smallest)
	return s, DateTime{endDate, dt.time}, nil
}

// roundedSpan rounds d to an increment of the smallest unit of cfg and
// balances it into the largest unit, which must be at most an hour.
func roundedSpan(d SignedDuration, cfg round.Config) (Span, error) {
	n, ok := checkedMul(cfg.Smallest.Nanos(), cfg.Increment)
	if !ok {
		return Span{}, fmt.Errorf("%w: increment %d too large", ErrValue, cfg.Increment)
	}
	d, err := d.roundTo(n, cfg.Mode)
	if err != nil {
		return Span{}, err
	}
	return balanceDuration(d, cfg.Largest)
}

// balanceDuration converts d into a span with largest as its largest unit.
// Units above an hour are treated as hours. Returns ErrRange if a component
// exceeds its bound.
func balanceDuration(d SignedDuration, largest round.Unit) (Span, error) {
	var v [numUnits]int64
	secs, nanos := d.secs, int64(d.nanos)
	v[round.Millisecond] = nanos / nanosPerMilli
	v[round.Microsecond] = nanos / nanosPerMicro % 1_000
	v[round.Nanosecond] = nanos % nanosPerMicro

	var ok bool
	switch min(largest, round.Hour) {
	case round.Hour:
		v[round.Hour] = secs / secondsPerHour
		v[round.Minute] = secs / secondsPerMinute % 60
		v[round.Second] = secs % secondsPerMinute
		ok = true
	case round.Minute:
		v[round.Minute] = secs / secondsPerMinute
		v[round.Second] = secs % secondsPerMinute
		ok = true
	case round.Second:
		v[round.Second] = secs
		ok = true
	case round.Millisecond:
		v[round.Millisecond], ok = scaleAdd(secs, 1_000, v[round.Millisecond])
	case round.Microsecond:
		v[round.Microsecond], ok = scaleAdd(secs, 1_000_000, nanos/nanosPerMicro)
		v[round.Millisecond] = 0
	default:
		v[round.Nanosecond], ok = scaleAdd(secs, nanosPerSecond, nanos)
		v[round.Millisecond], v[round.Microsecond] = 0, 0
	}
	if !ok {
		return Span{}, fmt.Errorf("%w: %v does not fit in %vs", ErrRange, d, largest)
	}
	return spanFromUnits(v)
}

// scaleAdd returns n*scale+add with overflow checking.
func scaleAdd(n, scale, add int64) (int64, bool) {
	m, ok := checkedMul(n, scale)
	if !ok {
		return 0, false
	}
	return checkedAdd(m, add)
}
