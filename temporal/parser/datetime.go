package parser

import (
	"strings"
)

// Date holds the fields of a parsed calendar date.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Time holds the fields of a parsed wall-clock time.
type Time struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// Offset holds a parsed UTC offset. Zulu is true for "Z", which states the
// instant in UTC without claiming a local offset.
type Offset struct {
	Seconds int
	Zulu    bool
}

// Annotation is an RFC 9557 key/value suffix such as "[u-ca=iso8601]".
type Annotation struct {
	Key      string
	Value    string
	Critical bool
}

// DateTime holds the parts of a date, datetime, or zoned datetime string.
type DateTime struct {
	Date         Date
	HasTime      bool
	Time         Time
	HasOffset    bool
	Offset       Offset
	Zone         string
	ZoneCritical bool
	Annotations  []Annotation
}

// HasZone returns true if a time zone annotation was written.
func (dt DateTime) HasZone() bool { return dt.Zone != "" }

// ParseDate parses a date in the form YYYY-MM-DD or ±YYYYYY-MM-DD.
func ParseDate(src string) (Date, error) {
	c := newCursor(src)
	d, err := c.date()
	if err != nil {
		return Date{}, err
	}
	return d, c.done()
}

// ParseTime parses a time in the form HH:MM[:SS[.fffffffff]]. A leading "T"
// is permitted.
func ParseTime(src string) (Time, error) {
	c := newCursor(src)
	c.accept("Tt")
	t, err := c.time()
	if err != nil {
		return Time{}, err
	}
	return t, c.done()
}

// ParseOffset parses a UTC offset: "Z", or a sign followed by HH, HHMM,
// HH:MM, HHMMSS, or HH:MM:SS.
func ParseOffset(src string) (Offset, error) {
	c := newCursor(src)
	off, err := c.offset()
	if err != nil {
		return Offset{}, err
	}
	return off, c.done()
}

// ParseDateTime parses a date optionally followed by a time (separated by
// "T", "t", or a space), a UTC offset, a bracketed time zone annotation, and
// further bracketed key/value annotations, as in
// "2020-08-26T06:27:00-04:00[America/New_York][u-ca=iso8601]".
func ParseDateTime(src string) (DateTime, error) {
	c := newCursor(src)
	var dt DateTime
	var err error

	if dt.Date, err = c.date(); err != nil {
		return dt, err
	}

	if _, ok := c.accept("Tt "); ok {
		if dt.Time, err = c.time(); err != nil {
			return dt, err
		}
		dt.HasTime = true

		if ch := c.peek(); ch == 'Z' || ch == 'z' || ch == '+' || ch == '-' {
			if dt.Offset, err = c.offset(); err != nil {
				return dt, err
			}
			dt.HasOffset = true
		}
	}

	if err := c.annotations(&dt); err != nil {
		return dt, err
	}
	return dt, c.done()
}

// date parses the date portion.
func (c *cursor) date() (Date, error) {
	var d Date
	var err error

	switch sign, _ := c.accept("+-"); sign {
	case 0:
		if d.Year, err = c.fixed(4, "year"); err != nil {
			return d, err
		}
	default:
		if d.Year, err = c.fixed(6, "extended year"); err != nil {
			return d, err
		}
		if sign == '-' {
			if d.Year == 0 {
				return d, c.errorf("negative zero year")
			}
			d.Year = -d.Year
		}
	}

	if err = c.expect('-', "'-' after year"); err != nil {
		return d, err
	}
	if d.Month, err = c.fixed(2, "month"); err != nil {
		return d, err
	}
	if err = c.expect('-', "'-' after month"); err != nil {
		return d, err
	}
	if d.Day, err = c.fixed(2, "day"); err != nil {
		return d, err
	}
	return d, nil
}

// time parses the time portion. Seconds and fractions are optional.
func (c *cursor) time() (Time, error) {
	var t Time
	var err error

	if t.Hour, err = c.fixed(2, "hour"); err != nil {
		return t, err
	}
	if err = c.expect(':', "':' after hour"); err != nil {
		return t, err
	}
	if t.Minute, err = c.fixed(2, "minute"); err != nil {
		return t, err
	}
	if _, ok := c.accept(":"); !ok {
		return t, nil
	}
	if t.Second, err = c.fixed(2, "second"); err != nil {
		return t, err
	}
	if _, ok := c.accept(".,"); ok {
		frac, err := c.fraction()
		if err != nil {
			return t, err
		}
		t.Nanosecond = int(frac)
	}
	return t, nil
}

// offset parses a UTC offset.
func (c *cursor) offset() (Offset, error) {
	var off Offset
	sign, ok := c.accept("Zz+-")
	switch {
	case !ok:
		return off, c.errorf("expected UTC offset")
	case sign == 'Z' || sign == 'z':
		off.Zulu = true
		return off, nil
	}

	hours, err := c.fixed(2, "offset hour")
	if err != nil {
		return off, err
	}
	secs := hours * 3600

	// Minutes and seconds, with or without colons.
	colon := false
	if _, ok := c.accept(":"); ok {
		colon = true
	}
	if colon || isDigit(c.peek()) {
		mins, err := c.fixed(2, "offset minute")
		if err != nil {
			return off, err
		}
		if mins > 59 {
			return off, c.rangeErrorf("offset minute %d not in [0, 59]", mins)
		}
		secs += mins * 60

		hasSec := false
		if colon {
			_, hasSec = c.accept(":")
		} else {
			hasSec = isDigit(c.peek())
		}
		if hasSec {
			s, err := c.fixed(2, "offset second")
			if err != nil {
				return off, err
			}
			if s > 59 {
				return off, c.rangeErrorf("offset second %d not in [0, 59]", s)
			}
			secs += s
		}
	}

	if sign == '-' {
		secs = -secs
	}
	off.Seconds = secs
	return off, nil
}

// annotations parses zero or more bracketed suffixes into dt.
func (c *cursor) annotations(dt *DateTime) error {
	first := true
	for c.peek() == '[' {
		c.pos++
		critical := false
		if _, ok := c.accept("!"); ok {
			critical = true
		}

		end := strings.IndexByte(c.src[c.pos:], ']')
		if end < 0 {
			return c.errorf("unterminated annotation")
		}
		body := c.src[c.pos : c.pos+end]
		if body == "" {
			return c.errorf("empty annotation")
		}

		key, val, isKV := strings.Cut(body, "=")
		switch {
		case !isKV && first:
			dt.Zone = body
			dt.ZoneCritical = critical
		case !isKV:
			return c.errorf("time zone annotation %q must come first", body)
		default:
			if !validKey(key) {
				return c.errorf("invalid annotation key %q", key)
			}
			if val == "" {
				return c.errorf("empty value for annotation key %q", key)
			}
			if err := c.checkAnnotation(key, val, critical); err != nil {
				return err
			}
			dt.Annotations = append(dt.Annotations, Annotation{key, val, critical})
		}

		c.pos += end + 1
		first = false
	}
	return nil
}

// checkAnnotation rejects calendars other than ISO 8601 and unknown critical
// annotations.
func (c *cursor) checkAnnotation(key, val string, critical bool) error {
	switch key {
	case "u-ca":
		if !strings.EqualFold(val, "iso8601") {
			return c.errorf("unsupported calendar %q", val)
		}
	default:
		if critical {
			return c.errorf("unknown critical annotation %q", key)
		}
	}
	return nil
}

// validKey reports whether key matches [a-z_][a-z0-9_-]*.
func validKey(key string) bool {
	for i := range len(key) {
		ch := key[i]
		switch {
		case 'a' <= ch && ch <= 'z', ch == '_':
		case i > 0 && (isDigit(ch) || ch == '-'):
		default:
			return false
		}
	}
	return key != ""
}
