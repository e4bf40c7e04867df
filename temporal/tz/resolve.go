package tz

import (
	"fmt"
	"strings"
)

// Kind describes how a civil datetime maps onto instants in a zone.
type Kind uint8

const (
	// Unambiguous civil datetimes map to exactly one instant.
	Unambiguous Kind = iota

	// Gap civil datetimes do not exist locally because the clocks skipped
	// over them.
	Gap

	// Fold civil datetimes occur twice locally because the clocks were
	// turned back.
	Fold
)

func (k Kind) String() string {
	switch k {
	case Unambiguous:
		return "unambiguous"
	case Gap:
		return "gap"
	case Fold:
		return "fold"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Candidates holds the offsets that may apply to a civil datetime. Before is
// the offset in effect before the nearest transition and After the offset in
// effect after it. For unambiguous datetimes they are equal.
//
// In a fold, Before yields the earlier of the two instants. In a gap, neither
// offset yields the written civil time: Before yields an instant after the gap
// (the civil time shifted forward by the gap size) and After yields an
// instant before it.
type Candidates struct {
	Kind   Kind
	Before Offset
	After  Offset
}

// Only returns unambiguous Candidates for off.
func Only(off Offset) Candidates {
	return Candidates{Kind: Unambiguous, Before: off, After: off}
}

// Offset returns the offset selected by the Compatible policy.
func (c Candidates) Offset() Offset { return c.Before }

// Gap returns the size of the gap or fold in seconds, or zero for unambiguous
// candidates. It is positive for gaps and negative for folds.
func (c Candidates) Gap() int64 { return int64(c.After) - int64(c.Before) }

// Pick selects an offset according to policy d. It returns ErrAmbiguous for
// gaps and folds when d is Reject.
func (c Candidates) Pick(d Disambiguation) (Offset, error) {
	if c.Kind == Unambiguous {
		return c.Before, nil
	}
	switch d {
	case Compatible:
		return c.Before, nil
	case Earlier:
		if c.Kind == Gap {
			return c.After, nil
		}
		return c.Before, nil
	case Later:
		if c.Kind == Gap {
			return c.Before, nil
		}
		return c.After, nil
	case Reject:
		return 0, fmt.Errorf("%w: %v between %v and %v", ErrAmbiguous, c.Kind, c.Before, c.After)
	default:
		return 0, fmt.Errorf("%w: unknown disambiguation %v", ErrAmbiguous, d)
	}
}

// Disambiguation is a policy for mapping gap and fold civil datetimes to
// instants.
type Disambiguation uint8

const (
	// Compatible shifts gap datetimes forward by the size of the gap and
	// picks the earlier instant of a fold. It is the default.
	Compatible Disambiguation = iota

	// Earlier picks the instant before a gap or the earlier fold instant.
	Earlier

	// Later picks the instant after a gap or the later fold instant.
	Later

	// Reject fails for gap and fold datetimes.
	Reject
)

//nolint:gochecknoglobals
var disambiguationNames = [...]string{"compatible", "earlier", "later", "reject"}

func (d Disambiguation) String() string {
	if int(d) < len(disambiguationNames) {
		return disambiguationNames[d]
	}
	return fmt.Sprintf("Disambiguation(%d)", d)
}

// ParseDisambiguation parses the name of a policy, ignoring case.
func ParseDisambiguation(name string) (Disambiguation, error) {
	for i, n := range disambiguationNames {
		if strings.EqualFold(n, name) {
			return Disambiguation(i), nil
		}
	}
	return Compatible, fmt.Errorf("%w: unknown disambiguation %q", ErrAmbiguous, name)
}

// secondsPerDay bounds the search for transitions around a civil datetime.
const secondsPerDay = 86400

// ResolveWith resolves local, a civil datetime expressed as seconds since
// 1970-01-01T00:00:00 local time, using offsetAt to look up the offset at an
// instant. It assumes at most one transition within a day of local, which
// holds for every real zone.
func ResolveWith(local int64, offsetAt func(instant int64) (Offset, error)) (Candidates, error) {
	before, err := offsetAt(local - secondsPerDay)
	if err != nil {
		return Candidates{}, err
	}
	after, err := offsetAt(local + secondsPerDay)
	if err != nil {
		return Candidates{}, err
	}

	fits := func(off Offset) (bool, error) {
		got, err := offsetAt(local - int64(off))
		return got == off, err
	}

	okBefore, err := fits(before)
	if err != nil {
		return Candidates{}, err
	}
	if before == after {
		if okBefore {
			return Only(before), nil
		}
		// Two transitions within the window; trust the offset at the
		// naive instant.
		off, err := offsetAt(local - int64(before))
		return Only(off), err
	}

	okAfter, err := fits(after)
	if err != nil {
		return Candidates{}, err
	}

	switch {
	case okBefore && okAfter:
		return Candidates{Kind: Fold, Before: before, After: after}, nil
	case okBefore:
		return Only(before), nil
	case okAfter:
		return Only(after), nil
	default:
		return Candidates{Kind: Gap, Before: before, After: after}, nil
	}
}
