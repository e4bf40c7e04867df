package tz

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LocationDB is a Provider backed by the IANA time zone data known to the Go
// runtime, or read from a zoneinfo directory. Loaded locations are cached and
// never evicted. A LocationDB is safe for concurrent use.
type LocationDB struct {
	mu   sync.RWMutex
	locs map[string]*time.Location
	dir  string
}

// LocationOption configures a LocationDB.
type LocationOption func(*LocationDB)

// WithZoneInfoDir loads zones from the zoneinfo files in dir rather than from
// the system or embedded database.
func WithZoneInfoDir(dir string) LocationOption {
	return func(db *LocationDB) { db.dir = dir }
}

// NewLocationDB creates a new LocationDB.
func NewLocationDB(opt ...LocationOption) *LocationDB {
	db := &LocationDB{locs: map[string]*time.Location{}}
	for _, o := range opt {
		o(db)
	}
	return db
}

//nolint:gochecknoglobals
var system = sync.OnceValue(func() *LocationDB { return NewLocationDB() })

// System returns the process-wide LocationDB backed by the Go runtime's time
// zone data.
func System() *LocationDB { return system() }

// Zone loads the zone named name.
func (db *LocationDB) Zone(name string) (TimeZone, error) {
	return Load(db, name)
}

// location returns the cached location for name, loading it on first use.
func (db *LocationDB) location(name string) (*time.Location, error) {
	db.mu.RLock()
	loc, ok := db.locs[name]
	db.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := db.load(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrZone, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if cached, ok := db.locs[name]; ok {
		return cached, nil
	}
	db.locs[name] = loc
	return loc, nil
}

func (db *LocationDB) load(name string) (*time.Location, error) {
	if db.dir == "" {
		return time.LoadLocation(name)
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(db.dir, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	return time.LoadLocationFromTZData(name, data)
}

// OffsetAt returns the offset in effect in zone at instant.
func (db *LocationDB) OffsetAt(instant int64, zone string) (Offset, error) {
	loc, err := db.location(zone)
	if err != nil {
		return 0, err
	}
	return offsetIn(instant, loc), nil
}

// ResolveCivil returns the candidate offsets for local in zone.
func (db *LocationDB) ResolveCivil(local int64, zone string) (Candidates, error) {
	loc, err := db.location(zone)
	if err != nil {
		return Candidates{}, err
	}
	return ResolveWith(local, func(instant int64) (Offset, error) {
		return offsetIn(instant, loc), nil
	})
}

// NextTransition returns the first offset change in zone after instant.
// Changes of abbreviation alone are skipped.
func (db *LocationDB) NextTransition(instant int64, zone string) (Transition, bool, error) {
	loc, err := db.location(zone)
	if err != nil {
		return Transition{}, false, err
	}
	before := offsetIn(instant, loc)
	for {
		_, end := time.Unix(instant, 0).In(loc).ZoneBounds()
		if end.IsZero() {
			return Transition{}, false, nil
		}
		instant = end.Unix()
		if after := offsetIn(instant, loc); after != before {
			return Transition{At: instant, Before: before, After: after}, true, nil
		}
	}
}

// PrevTransition returns the last offset change in zone before instant.
// Changes of abbreviation alone are skipped.
func (db *LocationDB) PrevTransition(instant int64, zone string) (Transition, bool, error) {
	loc, err := db.location(zone)
	if err != nil {
		return Transition{}, false, err
	}
	for {
		start, _ := time.Unix(instant-1, 0).In(loc).ZoneBounds()
		if start.IsZero() {
			return Transition{}, false, nil
		}
		instant = start.Unix()
		before, after := offsetIn(instant-1, loc), offsetIn(instant, loc)
		if before != after {
			return Transition{At: instant, Before: before, After: after}, true, nil
		}
	}
}

func offsetIn(instant int64, loc *time.Location) Offset {
	_, off := time.Unix(instant, 0).In(loc).Zone()
	return Offset(off)
}
