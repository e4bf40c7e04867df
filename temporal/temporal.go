// Package temporal provides civil and zoned date and time values with
// calendar-aware arithmetic, rounding, and periodic series.
//
// Civil values ([Date], [Time], and [DateTime]) carry no time zone. A
// [Timestamp] is an absolute instant, and a [ZonedDateTime] binds an instant
// to a [tz.TimeZone] so that its civil fields can be derived. A
// [SignedDuration] is an exact amount of elapsed time, while a [Span] is a
// calendar-relative amount whose years, months, weeks, and days vary in length
// depending on where they are applied.
//
// The difference between the two kinds of amount is central: adding P1D to a
// ZonedDateTime keeps the wall-clock time across a daylight saving transition,
// while adding PT24H adds exactly 24 hours of elapsed time.
//
// All values are immutable and safe for concurrent use.
package temporal

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/theory/tempo/temporal/parser"
	"github.com/theory/tempo/temporal/tz"
)

var (
	// ErrRange wraps errors for fields or results outside their domain.
	ErrRange = errors.New("range")

	// ErrValue wraps errors for invalid arguments: mixed-sign spans, invalid
	// rounding configurations, zero series steps, and missing anchors.
	ErrValue = errors.New("value")

	// ErrOverflow wraps errors for arithmetic beyond the representable range.
	ErrOverflow = errors.New("overflow")

	// ErrParse wraps errors for malformed strings.
	ErrParse = errors.New("parse")

	// ErrScan wraps scanning errors.
	ErrScan = errors.New("scan")
)

// Kind identifies the concrete type of a Temporal value.
type Kind uint8

const (
	// KindDate identifies Date values.
	KindDate Kind = iota + 1
	// KindTime identifies Time values.
	KindTime
	// KindDateTime identifies DateTime values.
	KindDateTime
	// KindTimestamp identifies Timestamp values.
	KindTimestamp
	// KindZoned identifies ZonedDateTime values.
	KindZoned
	// KindSpan identifies Span values.
	KindSpan
	// KindDuration identifies SignedDuration values.
	KindDuration
)

//nolint:gochecknoglobals
var kindNames = [...]string{
	KindDate:      "date",
	KindTime:      "time",
	KindDateTime:  "datetime",
	KindTimestamp: "timestamp",
	KindZoned:     "zoned",
	KindSpan:      "span",
	KindDuration:  "duration",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Temporal is implemented by every value type in the package.
type Temporal interface {
	fmt.Stringer
	encoding.TextMarshaler

	// Kind identifies the concrete type.
	Kind() Kind

	// Hash returns a hash of the value. Equal values have equal hashes.
	Hash() uint64
}

// Parse detects the kind of src and parses it into a Date, Time, DateTime,
// ZonedDateTime (resolved through [tz.System]), Timestamp, or Span. Duration
// notation always parses as a Span; use [ParseSignedDuration] for exact
// durations.
func Parse(src string) (Temporal, error) { return parse(src, nil) }

// ParseContext is like Parse but resolves zones through the database in ctx.
func ParseContext(ctx context.Context, src string) (Temporal, error) {
	return parse(src, tz.DatabaseFromContext(ctx))
}

func parse(src string, db tz.Provider) (Temporal, error) {
	switch {
	case src == "":
		return nil, fmt.Errorf("%w: empty string", ErrParse)
	case isSpanText(src):
		return asTemporal[Span](ParseSpan(src))
	case isTimeText(src):
		return asTemporal[Time](ParseTime(src))
	}

	p, err := parser.ParseDateTime(src)
	if err != nil {
		return nil, parseError(err)
	}
	switch {
	case p.HasZone():
		return asTemporal[ZonedDateTime](ParseZoned(src, db))
	case p.HasOffset:
		return asTemporal[Timestamp](ParseTimestamp(src))
	case p.HasTime:
		return asTemporal[DateTime](ParseDateTime(src))
	default:
		return asTemporal[Date](ParseDate(src))
	}
}

// asTemporal converts the result of a typed parse function.
func asTemporal[T Temporal](v T, err error) (Temporal, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// isTimeText returns true if src looks like a bare time of day.
func isTimeText(src string) bool {
	return src[0] == 'T' || src[0] == 't' || (len(src) > 2 && src[2] == ':')
}

// isSpanText returns true if src looks like duration notation or the
// expanded span form.
func isSpanText(src string) bool {
	if strings.HasPrefix(src, "Span{") {
		return true
	}
	if src[0] == '+' || src[0] == '-' {
		src = src[1:]
	}
	return src != "" && (src[0] == 'P' || src[0] == 'p')
}

// hash64 returns the FNV-1a hash of the canonical text of a value.
func hash64(kind Kind, b []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{byte(kind)})
	_, _ = h.Write(b)
	return h.Sum64()
}

// parseError wraps a parser error in ErrParse, preserving parser.ErrRange as
// ErrRange.
func parseError(err error) error {
	if errors.Is(err, parser.ErrRange) {
		return fmt.Errorf("%w: %w: %w", ErrParse, ErrRange, err)
	}
	return fmt.Errorf("%w: %w", ErrParse, err)
}

// rangeParseError wraps a validation error raised while building a value from
// parsed fields.
func rangeParseError(src string, err error) error {
	return fmt.Errorf("%w: %q: %w", ErrParse, src, err)
}
