// Package round provides the rounding engine shared by every temporal value:
// units, rounding modes, increments, and the integer rounding primitive that
// decides which way a truncated quotient should move.
//
// Temporal types build a [Config] with [New] and any number of [Option]s,
// validate it against their own limits, and then hand the truncated quotient
// and discarded remainder of a division to [Step] or [Quotient].
package round

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid wraps errors returned for invalid units, modes, and increments.
var ErrInvalid = errors.New("round")

// Mode determines how a value that falls between two multiples of an
// increment is rounded.
type Mode uint8

const (
	// Ceil rounds toward positive infinity.
	Ceil Mode = iota
	// Floor rounds toward negative infinity.
	Floor
	// Expand rounds away from zero.
	Expand
	// Trunc rounds toward zero.
	Trunc
	// HalfCeil rounds to the nearest multiple, ties toward positive infinity.
	HalfCeil
	// HalfFloor rounds to the nearest multiple, ties toward negative infinity.
	HalfFloor
	// HalfExpand rounds to the nearest multiple, ties away from zero.
	HalfExpand
	// HalfTrunc rounds to the nearest multiple, ties toward zero.
	HalfTrunc
	// HalfEven rounds to the nearest multiple, ties to the even multiple.
	HalfEven
)

//nolint:gochecknoglobals
var modeNames = [...]string{
	Ceil:       "ceil",
	Floor:      "floor",
	Expand:     "expand",
	Trunc:      "trunc",
	HalfCeil:   "half-ceil",
	HalfFloor:  "half-floor",
	HalfExpand: "half-expand",
	HalfTrunc:  "half-trunc",
	HalfEven:   "half-even",
}

// String returns the kebab-case name of m.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode parses a mode name such as "half-even". Underscores and case are
// ignored, so "HALF_EVEN" and "halfEven" are also accepted.
func ParseMode(name string) (Mode, error) {
	norm := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(name))
	for m, n := range modeNames {
		if strings.ReplaceAll(n, "-", "") == norm {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown rounding mode %q", ErrInvalid, name)
}

// Negate returns the mode that rounds -x the way m rounds x, so that
// round(-x, m.Negate()) == -round(x, m).
func (m Mode) Negate() Mode {
	switch m {
	case Ceil:
		return Floor
	case Floor:
		return Ceil
	case HalfCeil:
		return HalfFloor
	case HalfFloor:
		return HalfCeil
	default:
		return m
	}
}

// Step returns the adjustment, -1, 0, or +1, to apply to a quotient that was
// truncated toward zero. sign is the sign of the discarded remainder (zero
// when the division was exact), half compares twice the remainder's magnitude
// with the increment (-1 below half, 0 exactly half, +1 above), and odd reports
// whether the truncated quotient is odd.
func Step(sign, half int, odd bool, mode Mode) int64 {
	if sign == 0 {
		return 0
	}
	dir := int64(1)
	if sign < 0 {
		dir = -1
	}

	switch mode {
	case Trunc:
		return 0
	case Expand:
		return dir
	case Ceil:
		if dir > 0 {
			return 1
		}
		return 0
	case Floor:
		if dir < 0 {
			return -1
		}
		return 0
	}

	// Half modes.
	switch {
	case half > 0:
		return dir
	case half < 0:
		return 0
	}

	switch mode {
	case HalfCeil:
		if dir > 0 {
			return 1
		}
		return 0
	case HalfFloor:
		if dir < 0 {
			return -1
		}
		return 0
	case HalfExpand:
		return dir
	case HalfEven:
		if odd {
			return dir
		}
		return 0
	default: // HalfTrunc
		return 0
	}
}

// Quotient rounds the truncated quotient q of a division by increment, given
// the remainder r of that division. r carries the sign of the dividend and its
// magnitude is less than increment.
func Quotient(q, r, increment int64, mode Mode) int64 {
	if r == 0 {
		return q
	}
	sign, mag := 1, r
	if r < 0 {
		sign, mag = -1, -r
	}

	// Compare 2*mag with increment without overflowing.
	half := 0
	switch rest := increment - mag; {
	case mag > rest:
		half = 1
	case mag < rest:
		half = -1
	}
	return q + Step(sign, half, q%2 != 0, mode)
}

// Int rounds value to a multiple of increment according to mode. Returns an
// error if increment is not positive or the result overflows int64.
func Int(value, increment int64, mode Mode) (int64, error) {
	if increment <= 0 {
		return 0, fmt.Errorf("%w: increment must be positive, got %d", ErrInvalid, increment)
	}
	q := Quotient(value/increment, value%increment, increment, mode)
	res := q * increment
	if q != 0 && (res/increment != q || (res < 0) != (q < 0)) {
		return 0, fmt.Errorf("%w: %d rounded to %d overflows", ErrInvalid, value, increment)
	}
	return res, nil
}
