package tz

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/theory/tempo/temporal/parser"
)

var (
	// ErrZone wraps errors for unknown or malformed time zones.
	ErrZone = errors.New("time zone")

	// ErrAmbiguous is returned when a civil datetime falls in a gap or fold
	// and the Reject policy is in effect.
	ErrAmbiguous = errors.New("ambiguous civil datetime")

	// ErrOffset wraps errors for offsets beyond ±25:59:59.
	ErrOffset = errors.New("offset out of range")
)

// Offset is a UTC offset in seconds east of UTC.
type Offset int32

const (
	// MaxOffset is the largest supported offset, +25:59:59.
	MaxOffset Offset = 25*3600 + 59*60 + 59

	// MinOffset is the smallest supported offset, -25:59:59.
	MinOffset = -MaxOffset
)

// NewOffset returns the offset of secs seconds east of UTC.
func NewOffset(secs int64) (Offset, error) {
	if secs < int64(MinOffset) || secs > int64(MaxOffset) {
		return 0, fmt.Errorf("%w: %d seconds", ErrOffset, secs)
	}
	return Offset(secs), nil
}

// OffsetHMS returns the offset of h hours, m minutes, and s seconds. The sign
// of the first nonzero argument determines the sign of the offset. Minutes
// and seconds must be in [-59, 59].
func OffsetHMS(h, m, s int) (Offset, error) {
	if abs(m) > 59 || abs(s) > 59 {
		return 0, fmt.Errorf("%w: %d minutes %d seconds", ErrOffset, m, s)
	}
	if h < 0 || (h == 0 && m < 0) || (h == 0 && m == 0 && s < 0) {
		return NewOffset(-int64(abs(h)*3600 + abs(m)*60 + abs(s)))
	}
	return NewOffset(int64(h*3600 + m*60 + s))
}

// ParseOffset parses an offset of the form "Z", "±HH", "±HH:MM", or
// "±HH:MM:SS" (colons optional).
func ParseOffset(src string) (Offset, error) {
	p, err := parser.ParseOffset(src)
	if err != nil {
		if errors.Is(err, parser.ErrRange) {
			return 0, fmt.Errorf("%w: %w", ErrOffset, err)
		}
		return 0, err
	}
	return NewOffset(int64(p.Seconds))
}

// Seconds returns the offset in seconds.
func (o Offset) Seconds() int64 { return int64(o) }

// Duration returns the offset as a time.Duration.
func (o Offset) Duration() time.Duration { return time.Duration(o) * time.Second }

// Negate returns -o.
func (o Offset) Negate() Offset { return -o }

// String formats o as "±HH:MM", appending ":SS" only when the offset has
// seconds.
func (o Offset) String() string {
	return string(o.AppendText(make([]byte, 0, len("+00:00:00"))))
}

// AppendText appends the string form of o to b.
func (o Offset) AppendText(b []byte) []byte {
	secs := int(o)
	if secs < 0 {
		b = append(b, '-')
		secs = -secs
	} else {
		b = append(b, '+')
	}
	b = appendTwo(b, secs/3600)
	b = append(b, ':')
	b = appendTwo(b, secs/60%60)
	if s := secs % 60; s != 0 {
		b = append(b, ':')
		b = appendTwo(b, s)
	}
	return b
}

// location returns a fixed time.Location for o.
func (o Offset) location() *time.Location {
	if o == 0 {
		return time.UTC
	}
	return time.FixedZone(o.String(), int(o))
}

func appendTwo(b []byte, n int) []byte {
	if n < 10 {
		b = append(b, '0')
	}
	return strconv.AppendInt(b, int64(n), 10)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
