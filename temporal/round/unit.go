package round

import (
	"fmt"
	"strings"
)

// Unit is a unit of time, ordered from smallest to largest.
type Unit uint8

const (
	Nanosecond Unit = iota
	Microsecond
	Millisecond
	Second
	Minute
	Hour
	Day
	Week
	Month
	Year
)

//nolint:gochecknoglobals
var unitNames = [...]string{
	Nanosecond:  "nanosecond",
	Microsecond: "microsecond",
	Millisecond: "millisecond",
	Second:      "second",
	Minute:      "minute",
	Hour:        "hour",
	Day:         "day",
	Week:        "week",
	Month:       "month",
	Year:        "year",
}

//nolint:gochecknoglobals
var unitAbbrevs = map[string]Unit{
	"ns": Nanosecond, "nsec": Nanosecond,
	"us": Microsecond, "µs": Microsecond, "usec": Microsecond,
	"ms": Millisecond, "msec": Millisecond,
	"s": Second, "sec": Second, "secs": Second,
	"m": Minute, "min": Minute, "mins": Minute,
	"h": Hour, "hr": Hour, "hrs": Hour,
	"d": Day,
	"w": Week, "wk": Week, "wks": Week,
	"mo": Month, "mos": Month,
	"y": Year, "yr": Year, "yrs": Year,
}

// String returns the singular name of u.
func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return fmt.Sprintf("Unit(%d)", uint8(u))
}

// ParseUnit parses a unit name. It accepts singular and plural names
// ("minute", "minutes") and common abbreviations ("min", "ms", "h").
func ParseUnit(name string) (Unit, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	if u, ok := unitAbbrevs[norm]; ok {
		return u, nil
	}
	norm = strings.TrimSuffix(norm, "s")
	for u, n := range unitNames {
		if n == norm {
			return Unit(u), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalid, name)
}

// IsCalendar returns true for units whose length depends on where they are
// applied: days, weeks, months, and years.
func (u Unit) IsCalendar() bool { return u >= Day }

// Nanos returns the length of u in nanoseconds, treating a day as 24 hours
// and a week as seven such days. Returns 0 for months and years, which have
// no fixed length.
func (u Unit) Nanos() int64 {
	switch u {
	case Nanosecond:
		return 1
	case Microsecond:
		return 1_000
	case Millisecond:
		return 1_000_000
	case Second:
		return 1_000_000_000
	case Minute:
		return 60 * 1_000_000_000
	case Hour:
		return 60 * 60 * 1_000_000_000
	case Day:
		return 24 * 60 * 60 * 1_000_000_000
	case Week:
		return 7 * 24 * 60 * 60 * 1_000_000_000
	default:
		return 0
	}
}

// Modulus returns the number of u in the next larger unit for units with a
// natural modulus: 1000 for sub-second units, 60 for seconds and minutes, and
// 24 for hours. Returns 0 for days and larger.
func (u Unit) Modulus() int64 {
	switch u {
	case Nanosecond, Microsecond, Millisecond:
		return 1000
	case Second, Minute:
		return 60
	case Hour:
		return 24
	default:
		return 0
	}
}
