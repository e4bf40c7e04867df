package tz

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/smasher164/xid"
)

// Provider is a time zone database. Instants and civil datetimes are
// expressed in seconds since the Unix epoch; civil datetimes count local
// seconds since 1970-01-01T00:00:00.
type Provider interface {
	// OffsetAt returns the offset in effect in zone at instant.
	OffsetAt(instant int64, zone string) (Offset, error)

	// ResolveCivil returns the candidate offsets for the civil datetime
	// local in zone.
	ResolveCivil(local int64, zone string) (Candidates, error)
}

// Transitioner is implemented by providers that can enumerate transitions.
type Transitioner interface {
	// NextTransition returns the first transition in zone strictly after
	// instant. It returns false if there is none.
	NextTransition(instant int64, zone string) (Transition, bool, error)

	// PrevTransition returns the last transition in zone strictly before
	// instant. It returns false if there is none.
	PrevTransition(instant int64, zone string) (Transition, bool, error)
}

// Transition is a change of offset at an instant.
type Transition struct {
	At     int64
	Before Offset
	After  Offset
}

// Time returns the instant of the transition as a time.Time in UTC.
func (t Transition) Time() time.Time { return time.Unix(t.At, 0).UTC() }

// TimeZone is a named zone backed by a Provider or a fixed offset. The zero
// value is UTC.
type TimeZone struct {
	name  string
	fixed Offset
	db    Provider
}

// UTC is the UTC time zone.
//
//nolint:gochecknoglobals
var UTC = TimeZone{}

// Fixed returns a zone with the constant offset off.
func Fixed(off Offset) TimeZone { return TimeZone{fixed: off} }

// Load returns the zone named name from db. "UTC" and "Z" return UTC and
// offset strings such as "+05:30" return fixed zones; other names must be
// known to db.
func Load(db Provider, name string) (TimeZone, error) {
	switch {
	case name == "UTC" || name == "Z" || name == "z":
		return UTC, nil
	case name != "" && (name[0] == '+' || name[0] == '-'):
		off, err := ParseOffset(name)
		if err != nil {
			return UTC, fmt.Errorf("%w: %w", ErrZone, err)
		}
		return Fixed(off), nil
	}

	if err := ValidateName(name); err != nil {
		return UTC, err
	}
	if db == nil {
		return UTC, fmt.Errorf("%w: no database to load %q", ErrZone, name)
	}
	if _, err := db.OffsetAt(0, name); err != nil {
		return UTC, err
	}
	return TimeZone{name: name, db: db}, nil
}

// ValidateName checks that name looks like an IANA zone identifier: one or
// more slash-separated segments, each starting with an identifier character
// and containing only identifier characters, '-', and '+'.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrZone)
	}
	for _, seg := range strings.Split(name, "/") {
		r, size := utf8.DecodeRuneInString(seg)
		if seg == "" || !(xid.Start(r) || r == '_') {
			return fmt.Errorf("%w: invalid name %q", ErrZone, name)
		}
		for _, r := range seg[size:] {
			if !xid.Continue(r) && r != '-' && r != '+' {
				return fmt.Errorf("%w: invalid name %q", ErrZone, name)
			}
		}
	}
	return nil
}

// Name returns the IANA name of a named zone, "UTC", or the fixed offset in
// "±HH:MM" form.
func (z TimeZone) Name() string {
	switch {
	case z.name != "":
		return z.name
	case z.fixed == 0:
		return "UTC"
	default:
		return z.fixed.String()
	}
}

// String returns z.Name().
func (z TimeZone) String() string { return z.Name() }

// IsFixed returns true for UTC and fixed-offset zones.
func (z TimeZone) IsFixed() bool { return z.name == "" }

// Provider returns the database backing a named zone, or nil.
func (z TimeZone) Provider() Provider { return z.db }

// Equal returns true if z and o have the same name or, for fixed zones, the
// same offset.
func (z TimeZone) Equal(o TimeZone) bool {
	return z.name == o.name && (z.name != "" || z.fixed == o.fixed)
}

// OffsetAt returns the offset in effect at instant, in seconds since the
// Unix epoch.
func (z TimeZone) OffsetAt(instant int64) (Offset, error) {
	if z.IsFixed() {
		return z.fixed, nil
	}
	return z.db.OffsetAt(instant, z.name)
}

// Resolve returns the candidate offsets for local, a civil datetime in local
// seconds since 1970-01-01T00:00:00. Fixed zones are always unambiguous.
func (z TimeZone) Resolve(local int64) (Candidates, error) {
	if z.IsFixed() {
		return Only(z.fixed), nil
	}
	return z.db.ResolveCivil(local, z.name)
}

// NextTransition returns the first transition strictly after instant. It
// returns false for fixed zones and zones whose provider does not implement
// Transitioner.
func (z TimeZone) NextTransition(instant int64) (Transition, bool, error) {
	if t, ok := z.db.(Transitioner); ok && !z.IsFixed() {
		return t.NextTransition(instant, z.name)
	}
	return Transition{}, false, nil
}

// PrevTransition returns the last transition strictly before instant. It
// returns false for fixed zones and zones whose provider does not implement
// Transitioner.
func (z TimeZone) PrevTransition(instant int64) (Transition, bool, error) {
	if t, ok := z.db.(Transitioner); ok && !z.IsFixed() {
		return t.PrevTransition(instant, z.name)
	}
	return Transition{}, false, nil
}

// Location returns a time.Location for z. Named zones backed by a
// LocationDB return the database's location; other named zones and fixed
// zones return a fixed location with the offset in effect at instant.
func (z TimeZone) Location(instant int64) *time.Location {
	if db, ok := z.db.(*LocationDB); ok {
		if loc, err := db.location(z.name); err == nil {
			return loc
		}
	}
	off, err := z.OffsetAt(instant)
	if err != nil {
		return time.UTC
	}
	if z.name != "" {
		return time.FixedZone(z.name, int(off))
	}
	return off.location()
}
