package tz

import (
	"fmt"
	"slices"
	"sort"

	"golang.org/x/exp/maps"
)

// Change is an entry in a Table: from instant At onward, Offset applies.
type Change struct {
	At     int64
	Offset Offset
}

// Table describes a synthetic zone: Initial applies before the first change.
type Table struct {
	Initial Offset
	Changes []Change
}

// offsetAt returns the offset in effect at instant.
func (t Table) offsetAt(instant int64) Offset {
	i := sort.Search(len(t.Changes), func(i int) bool { return t.Changes[i].At > instant })
	if i == 0 {
		return t.Initial
	}
	return t.Changes[i-1].Offset
}

// TableDB is an immutable Provider over synthetic transition tables, useful
// for tests and for embedding zones that need no IANA data.
type TableDB struct {
	zones map[string]Table
}

// NewTableDB creates a TableDB from zones. Changes must be sorted by instant
// with no duplicates, and every offset must be in range.
func NewTableDB(zones map[string]Table) (*TableDB, error) {
	db := &TableDB{zones: make(map[string]Table, len(zones))}
	for name, t := range zones {
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		if t.Initial < MinOffset || t.Initial > MaxOffset {
			return nil, fmt.Errorf("%w: zone %v initial offset %d", ErrOffset, name, t.Initial)
		}
		for i, c := range t.Changes {
			if c.Offset < MinOffset || c.Offset > MaxOffset {
				return nil, fmt.Errorf("%w: zone %v offset %d", ErrOffset, name, c.Offset)
			}
			if i > 0 && c.At <= t.Changes[i-1].At {
				return nil, fmt.Errorf("%w: zone %v changes out of order at %d", ErrZone, name, c.At)
			}
		}
		db.zones[name] = Table{Initial: t.Initial, Changes: slices.Clone(t.Changes)}
	}
	return db, nil
}

// Zone loads the zone named name.
func (db *TableDB) Zone(name string) (TimeZone, error) {
	return Load(db, name)
}

// Names returns the sorted names of the zones in db.
func (db *TableDB) Names() []string {
	keys := maps.Keys(db.zones)
	slices.Sort(keys)
	return keys
}

func (db *TableDB) table(zone string) (Table, error) {
	t, ok := db.zones[zone]
	if !ok {
		return t, fmt.Errorf("%w: unknown zone %q", ErrZone, zone)
	}
	return t, nil
}

// OffsetAt returns the offset in effect in zone at instant.
func (db *TableDB) OffsetAt(instant int64, zone string) (Offset, error) {
	t, err := db.table(zone)
	if err != nil {
		return 0, err
	}
	return t.offsetAt(instant), nil
}

// ResolveCivil returns the candidate offsets for local in zone.
func (db *TableDB) ResolveCivil(local int64, zone string) (Candidates, error) {
	t, err := db.table(zone)
	if err != nil {
		return Candidates{}, err
	}
	return ResolveWith(local, func(instant int64) (Offset, error) {
		return t.offsetAt(instant), nil
	})
}

// NextTransition returns the first change in zone after instant.
func (db *TableDB) NextTransition(instant int64, zone string) (Transition, bool, error) {
	t, err := db.table(zone)
	if err != nil {
		return Transition{}, false, err
	}
	i := sort.Search(len(t.Changes), func(i int) bool { return t.Changes[i].At > instant })
	if i == len(t.Changes) {
		return Transition{}, false, nil
	}
	return t.transition(i), true, nil
}

// PrevTransition returns the last change in zone before instant.
func (db *TableDB) PrevTransition(instant int64, zone string) (Transition, bool, error) {
	t, err := db.table(zone)
	if err != nil {
		return Transition{}, false, err
	}
	i := sort.Search(len(t.Changes), func(i int) bool { return t.Changes[i].At >= instant })
	if i == 0 {
		return Transition{}, false, nil
	}
	return t.transition(i - 1), true, nil
}

func (t Table) transition(i int) Transition {
	before := t.Initial
	if i > 0 {
		before = t.Changes[i-1].Offset
	}
	return Transition{At: t.Changes[i].At, Before: before, After: t.Changes[i].Offset}
}
