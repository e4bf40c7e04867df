package parser

import (
	"math"
	"strings"
)

// Duration holds the components of a parsed duration. Components parsed from
// designated notation are non-negative with the sign in Negative; components
// parsed from the expanded debug form carry their own signs.
type Duration struct {
	Negative     bool
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

// HasCalendar returns true if years, months, weeks, or days were written.
func (d Duration) HasCalendar() bool {
	return d.Years != 0 || d.Months != 0 || d.Weeks != 0 || d.Days != 0
}

// designator order within the date and time parts.
const (
	dateDesignators = "YMWD"
	timeDesignators = "HMS"
)

// ParseDuration parses ISO 8601 designated duration notation with an
// optional leading sign, such as "P1Y2M3W4DT5H6M7.5S" or "-PT90M". The last
// time component written may carry a fraction of up to nine digits, which is
// balanced into smaller units.
func ParseDuration(src string) (Duration, error) {
	c := newCursor(src)
	var d Duration

	if sign, ok := c.accept("+-"); ok {
		d.Negative = sign == '-'
	}
	if _, ok := c.accept("Pp"); !ok {
		return d, c.errorf("expected 'P'")
	}

	count := 0
	next := 0
	for !c.eof() && c.peek() != 'T' && c.peek() != 't' {
		n, err := c.integer("duration component")
		if err != nil {
			return d, err
		}
		ch := upper(c.peek())
		idx := strings.IndexByte(dateDesignators, ch)
		if idx < 0 {
			return d, c.errorf("expected date designator Y, M, W, or D")
		}
		if idx < next {
			return d, c.errorf("designator %q out of order", ch)
		}
		c.pos++
		next = idx + 1
		count++

		switch ch {
		case 'Y':
			d.Years = n
		case 'M':
			d.Months = n
		case 'W':
			d.Weeks = n
		case 'D':
			d.Days = n
		}
	}

	if _, ok := c.accept("Tt"); ok {
		n, err := c.timeComponents(&d)
		if err != nil {
			return d, err
		}
		if n == 0 {
			return d, c.errorf("expected time component after 'T'")
		}
		count += n
	}

	if count == 0 {
		return d, c.errorf("duration has no components")
	}
	return d, c.done()
}

// timeComponents parses the hours, minutes, and seconds after "T".
func (c *cursor) timeComponents(d *Duration) (int, error) {
	count := 0
	next := 0
	for !c.eof() {
		n, err := c.integer("duration component")
		if err != nil {
			return count, err
		}

		var frac int64
		hasFrac := false
		if _, ok := c.accept(".,"); ok {
			if frac, err = c.fraction(); err != nil {
				return count, err
			}
			hasFrac = true
		}

		ch := upper(c.peek())
		idx := strings.IndexByte(timeDesignators, ch)
		if idx < 0 {
			return count, c.errorf("expected time designator H, M, or S")
		}
		if idx < next {
			return count, c.errorf("designator %q out of order", ch)
		}
		c.pos++
		next = idx + 1
		count++

		switch ch {
		case 'H':
			d.Hours = n
			if err := c.spill(d, frac*3600, 'H'); err != nil {
				return count, err
			}
		case 'M':
			d.Minutes = n
			if err := c.spill(d, frac*60, 'M'); err != nil {
				return count, err
			}
		case 'S':
			d.Seconds = n
			d.Milliseconds = frac / 1_000_000
			d.Microseconds = frac / 1_000 % 1_000
			d.Nanoseconds = frac % 1_000
		}

		if hasFrac && !c.eof() {
			return count, c.errorf("only the smallest unit may have a fraction")
		}
	}
	return count, nil
}

// spill balances nanos, the fractional part of an hour or minute component,
// into the smaller components of d.
func (c *cursor) spill(d *Duration, nanos int64, unit byte) error {
	if nanos == 0 {
		return nil
	}
	const (
		nanosPerSecond = 1_000_000_000
		nanosPerMinute = 60 * nanosPerSecond
	)
	if unit == 'H' {
		d.Minutes = nanos / nanosPerMinute
		nanos %= nanosPerMinute
	}
	secs := nanos / nanosPerSecond
	if unit == 'M' && d.Seconds > math.MaxInt64-secs {
		return c.rangeErrorf("seconds too large")
	}
	d.Seconds += secs
	nanos %= nanosPerSecond
	d.Milliseconds = nanos / 1_000_000
	d.Microseconds = nanos / 1_000 % 1_000
	d.Nanoseconds = nanos % 1_000
	return nil
}

func upper(ch byte) byte {
	if 'a' <= ch && ch <= 'z' {
		return ch - 'a' + 'A'
	}
	return ch
}

// debugFields lists the keys of the expanded debug form in order.
//
//nolint:gochecknoglobals
var debugFields = []string{
	"years", "months", "weeks", "days", "hours", "minutes", "seconds",
	"milliseconds", "microseconds", "nanoseconds",
}

// ParseDebug parses the expanded debug form of a span, in which every
// component is listed with its own sign:
//
//	Span{years: 1, months: 0, weeks: 0, days: 0, hours: 0, minutes: 0, seconds: 0, milliseconds: 1500, microseconds: 0, nanoseconds: 0}
//
// Components may be omitted but must appear in the order above.
func ParseDebug(src string) (Duration, error) {
	c := newCursor(src)
	var d Duration
	if !strings.HasPrefix(src, "Span{") {
		return d, c.errorf("expected \"Span{\"")
	}
	c.pos = len("Span{")

	fields := []*int64{
		&d.Years, &d.Months, &d.Weeks, &d.Days, &d.Hours, &d.Minutes,
		&d.Seconds, &d.Milliseconds, &d.Microseconds, &d.Nanoseconds,
	}

	next := 0
	for c.peek() != '}' {
		if next > 0 {
			if err := c.expect(',', "','"); err != nil {
				return d, err
			}
			c.accept(" ")
		}

		end := strings.IndexByte(c.src[c.pos:], ':')
		if end < 0 {
			return d, c.errorf("expected component name")
		}
		name := c.src[c.pos : c.pos+end]
		idx := -1
		for i := next; i < len(debugFields); i++ {
			if debugFields[i] == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return d, c.errorf("unknown or out of order component %q", name)
		}
		c.pos += end + 1
		c.accept(" ")

		neg := false
		if sign, ok := c.accept("+-"); ok {
			neg = sign == '-'
		}
		n, err := c.integer(name)
		if err != nil {
			return d, err
		}
		if neg {
			n = -n
		}
		*fields[idx] = n
		next = idx + 1
	}
	c.pos++
	return d, c.done()
}
