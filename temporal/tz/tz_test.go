package tz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	est = Offset(-5 * 3600)
	edt = Offset(-4 * 3600)

	// 2024 US transitions, as instants.
	springForward = int64(1710054000) // 2024-03-10T07:00:00Z
	fallBack      = int64(1730613600) // 2024-11-03T06:00:00Z

	// Civil datetimes in local seconds.
	inGap     = int64(1710037800) // 2024-03-10T02:30:00
	inFold    = int64(1730597400) // 2024-11-03T01:30:00
	inSummer  = int64(1717243200) // 2024-06-01T12:00:00
	inWinter  = int64(1704067200) // 2024-01-01T00:00:00
	gapStart  = int64(1710036000) // 2024-03-10T02:00:00
	foldStart = int64(1730595600) // 2024-11-03T01:00:00
)

func testTable(t *testing.T) *TableDB {
	t.Helper()
	db, err := NewTableDB(map[string]Table{
		"Test/Eastern": {
			Initial: est,
			Changes: []Change{{springForward, edt}, {fallBack, est}},
		},
		"Test/Fixed": {Initial: 3600},
	})
	require.NoError(t, err)
	return db
}

func TestOffset(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		secs int64
		str  string
	}{
		{0, "+00:00"},
		{3600, "+01:00"},
		{5*3600 + 30*60, "+05:30"},
		{-(9*3600 + 30*60 + 15), "-09:30:15"},
		{-15, "-00:00:15"},
		{int64(MaxOffset), "+25:59:59"},
		{int64(MinOffset), "-25:59:59"},
	} {
		t.Run(tc.str, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)
			off, err := NewOffset(tc.secs)
			require.NoError(t, err)
			a.Equal(tc.secs, off.Seconds())
			a.Equal(tc.str, off.String())
			a.Equal(-tc.secs, off.Negate().Seconds())

			parsed, err := ParseOffset(tc.str)
			require.NoError(t, err)
			a.Equal(off, parsed)
		})
	}
}

func TestOffsetErrors(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	_, err := NewOffset(int64(MaxOffset) + 1)
	a.EqualError(err, "offset out of range: 93600 seconds")
	a.ErrorIs(err, ErrOffset)

	_, err = ParseOffset("+26:00")
	a.ErrorIs(err, ErrOffset)

	_, err = ParseOffset("05:00")
	a.Error(err)

	for _, src := range []string{"+05:99", "-0560", "+05:30:60"} {
		_, err = ParseOffset(src)
		a.ErrorIs(err, ErrOffset, src)
	}

	off, err := ParseOffset("Z")
	a.NoError(err)
	a.Equal(Offset(0), off)
}

func TestOffsetHMS(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	off, err := OffsetHMS(5, 30, 0)
	a.NoError(err)
	a.Equal(Offset(19800), off)

	off, err = OffsetHMS(-5, 30, 0)
	a.NoError(err)
	a.Equal(Offset(-19800), off)

	off, err = OffsetHMS(0, -30, 0)
	a.NoError(err)
	a.Equal(Offset(-1800), off)

	_, err = OffsetHMS(5, 99, 0)
	a.ErrorIs(err, ErrOffset)
	_, err = OffsetHMS(5, 0, -60)
	a.ErrorIs(err, ErrOffset)

	a.Equal("1h0m0s", Offset(3600).Duration().String())
}

func TestCandidatesPick(t *testing.T) {
	t.Parallel()

	gap := Candidates{Kind: Gap, Before: est, After: edt}
	fold := Candidates{Kind: Fold, Before: edt, After: est}

	for _, tc := range []struct {
		name string
		c    Candidates
		d    Disambiguation
		exp  Offset
		err  string
	}{
		{"unambiguous_compatible", Only(edt), Compatible, edt, ""},
		{"unambiguous_reject", Only(edt), Reject, edt, ""},
		{"gap_compatible", gap, Compatible, est, ""},
		{"gap_earlier", gap, Earlier, edt, ""},
		{"gap_later", gap, Later, est, ""},
		{"gap_reject", gap, Reject, 0, "ambiguous civil datetime: gap between -05:00 and -04:00"},
		{"fold_compatible", fold, Compatible, edt, ""},
		{"fold_earlier", fold, Earlier, edt, ""},
		{"fold_later", fold, Later, est, ""},
		{"fold_reject", fold, Reject, 0, "ambiguous civil datetime: fold between -04:00 and -05:00"},
		{"unknown", fold, Disambiguation(9), 0, "ambiguous civil datetime: unknown disambiguation Disambiguation(9)"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			off, err := tc.c.Pick(tc.d)
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
				require.ErrorIs(t, err, ErrAmbiguous)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, off)
		})
	}

	a := assert.New(t)
	a.Equal(int64(3600), gap.Gap())
	a.Equal(int64(-3600), fold.Gap())
	a.Equal(int64(0), Only(est).Gap())
	a.Equal(est, gap.Offset())
}

func TestKindString(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	a.Equal("unambiguous", Unambiguous.String())
	a.Equal("gap", Gap.String())
	a.Equal("fold", Fold.String())
	a.Equal("Kind(7)", Kind(7).String())
}

func TestDisambiguation(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	for _, d := range []Disambiguation{Compatible, Earlier, Later, Reject} {
		got, err := ParseDisambiguation(d.String())
		a.NoError(err)
		a.Equal(d, got)
	}
	got, err := ParseDisambiguation("LATER")
	a.NoError(err)
	a.Equal(Later, got)

	_, err = ParseDisambiguation("nope")
	a.EqualError(err, `ambiguous civil datetime: unknown disambiguation "nope"`)
	a.Equal("Disambiguation(4)", Disambiguation(4).String())
}

// resolveCases apply to any provider with 2024 US Eastern rules.
func resolveCases() []struct {
	name  string
	local int64
	exp   Candidates
} {
	return []struct {
		name  string
		local int64
		exp   Candidates
	}{
		{"winter", inWinter, Only(est)},
		{"summer", inSummer, Only(edt)},
		{"gap", inGap, Candidates{Kind: Gap, Before: est, After: edt}},
		{"gap_start", gapStart, Candidates{Kind: Gap, Before: est, After: edt}},
		{"gap_end", gapStart + 3600, Only(edt)},
		{"before_gap", gapStart - 1, Only(est)},
		{"fold", inFold, Candidates{Kind: Fold, Before: edt, After: est}},
		{"fold_start", foldStart, Candidates{Kind: Fold, Before: edt, After: est}},
		{"fold_end", foldStart + 3600, Only(est)},
		{"before_fold", foldStart - 1, Only(edt)},
	}
}

func TestTableDB(t *testing.T) {
	t.Parallel()
	db := testTable(t)

	t.Run("resolve", func(t *testing.T) {
		t.Parallel()
		for _, tc := range resolveCases() {
			c, err := db.ResolveCivil(tc.local, "Test/Eastern")
			require.NoError(t, err, tc.name)
			assert.Equal(t, tc.exp, c, tc.name)
		}
	})

	t.Run("offset_at", func(t *testing.T) {
		t.Parallel()
		a := assert.New(t)
		for instant, exp := range map[int64]Offset{
			0:                 est,
			springForward - 1: est,
			springForward:     edt,
			fallBack - 1:      edt,
			fallBack:          est,
		} {
			off, err := db.OffsetAt(instant, "Test/Eastern")
			a.NoError(err)
			a.Equal(exp, off, instant)
		}
		off, err := db.OffsetAt(0, "Test/Fixed")
		a.NoError(err)
		a.Equal(Offset(3600), off)
	})

	t.Run("transitions", func(t *testing.T) {
		t.Parallel()
		a := assert.New(t)
		spring := Transition{At: springForward, Before: est, After: edt}
		fall := Transition{At: fallBack, Before: edt, After: est}

		tr, ok, err := db.NextTransition(0, "Test/Eastern")
		a.NoError(err)
		a.True(ok)
		a.Equal(spring, tr)

		tr, ok, err = db.NextTransition(springForward, "Test/Eastern")
		a.NoError(err)
		a.True(ok)
		a.Equal(fall, tr)

		_, ok, err = db.NextTransition(fallBack, "Test/Eastern")
		a.NoError(err)
		a.False(ok)

		tr, ok, err = db.PrevTransition(fallBack, "Test/Eastern")
		a.NoError(err)
		a.True(ok)
		a.Equal(spring, tr)

		tr, ok, err = db.PrevTransition(fallBack+1, "Test/Eastern")
		a.NoError(err)
		a.True(ok)
		a.Equal(fall, tr)

		_, ok, err = db.PrevTransition(springForward, "Test/Eastern")
		a.NoError(err)
		a.False(ok)

		a.Equal("2024-03-10 07:00:00 +0000 UTC", spring.Time().String())
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		_, err := db.OffsetAt(0, "Test/Nowhere")
		require.EqualError(t, err, `time zone: unknown zone "Test/Nowhere"`)
		require.ErrorIs(t, err, ErrZone)
		_, err = db.ResolveCivil(0, "Test/Nowhere")
		require.ErrorIs(t, err, ErrZone)
		_, _, err = db.NextTransition(0, "Test/Nowhere")
		require.ErrorIs(t, err, ErrZone)
		_, _, err = db.PrevTransition(0, "Test/Nowhere")
		require.ErrorIs(t, err, ErrZone)
	})

	t.Run("names", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"Test/Eastern", "Test/Fixed"}, db.Names())
	})
}

func TestNewTableDBErrors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name  string
		zones map[string]Table
		err   string
	}{
		{
			name:  "bad_name",
			zones: map[string]Table{"Test//X": {}},
			err:   `time zone: invalid name "Test//X"`,
		},
		{
			name:  "bad_initial",
			zones: map[string]Table{"X": {Initial: MaxOffset + 1}},
			err:   "offset out of range: zone X initial offset 93600",
		},
		{
			name:  "bad_offset",
			zones: map[string]Table{"X": {Changes: []Change{{0, MinOffset - 1}}}},
			err:   "offset out of range: zone X offset -93600",
		},
		{
			name:  "unsorted",
			zones: map[string]Table{"X": {Changes: []Change{{10, 0}, {10, 60}}}},
			err:   "time zone: zone X changes out of order at 10",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewTableDB(tc.zones)
			require.EqualError(t, err, tc.err)
		})
	}
}

func TestLocationDB(t *testing.T) {
	t.Parallel()
	db := NewLocationDB()
	const zone = "America/New_York"

	t.Run("resolve", func(t *testing.T) {
		t.Parallel()
		for _, tc := range resolveCases() {
			c, err := db.ResolveCivil(tc.local, zone)
			require.NoError(t, err, tc.name)
			assert.Equal(t, tc.exp, c, tc.name)
		}
	})

	t.Run("transitions", func(t *testing.T) {
		t.Parallel()
		a := assert.New(t)

		tr, ok, err := db.NextTransition(springForward-86400*30, zone)
		a.NoError(err)
		a.True(ok)
		a.Equal(Transition{At: springForward, Before: est, After: edt}, tr)

		tr, ok, err = db.PrevTransition(fallBack+86400, zone)
		a.NoError(err)
		a.True(ok)
		a.Equal(Transition{At: fallBack, Before: edt, After: est}, tr)

		tr, ok, err = db.PrevTransition(fallBack, zone)
		a.NoError(err)
		a.True(ok)
		a.Equal(springForward, tr.At)
	})

	t.Run("no_transitions", func(t *testing.T) {
		t.Parallel()
		_, ok, err := db.NextTransition(0, "Etc/GMT+5")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		_, err := db.OffsetAt(0, "Nowhere/Special")
		require.ErrorIs(t, err, ErrZone)
	})

	t.Run("cached", func(t *testing.T) {
		t.Parallel()
		l1, err := db.location("Asia/Tokyo")
		require.NoError(t, err)
		l2, err := db.location("Asia/Tokyo")
		require.NoError(t, err)
		assert.Same(t, l1, l2)
	})

	t.Run("zoneinfo_dir", func(t *testing.T) {
		t.Parallel()
		db := NewLocationDB(WithZoneInfoDir(t.TempDir()))
		_, err := db.OffsetAt(0, zone)
		require.ErrorIs(t, err, ErrZone)
		_, err = db.OffsetAt(0, "../../etc/passwd")
		require.ErrorIs(t, err, ErrZone)
	})

	t.Run("system", func(t *testing.T) {
		t.Parallel()
		assert.Same(t, System(), System())
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()
	db := testTable(t)

	for _, tc := range []struct {
		name  string
		zone  string
		exp   string
		fixed bool
		err   string
	}{
		{"utc", "UTC", "UTC", true, ""},
		{"z", "Z", "UTC", true, ""},
		{"offset", "+05:30", "+05:30", true, ""},
		{"negative_offset", "-08", "-08:00", true, ""},
		{"zero_offset", "+00:00", "UTC", true, ""},
		{"named", "Test/Eastern", "Test/Eastern", false, ""},
		{"unknown", "Test/Nowhere", "", false, `time zone: unknown zone "Test/Nowhere"`},
		{"bad_offset", "+99:00", "", false, "time zone: offset out of range: 356400 seconds"},
		{"empty", "", "", false, "time zone: empty name"},
		{"space", "Test/East ern", "", false, `time zone: invalid name "Test/East ern"`},
		{"leading_digit", "Etc/1GMT", "", false, `time zone: invalid name "Etc/1GMT"`},
		{"trailing_slash", "Test/", "", false, `time zone: invalid name "Test/"`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			z, err := db.Zone(tc.zone)
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
				require.ErrorIs(t, err, ErrZone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, z.Name())
			assert.Equal(t, tc.exp, z.String())
			assert.Equal(t, tc.fixed, z.IsFixed())
		})
	}

	_, err := Load(nil, "America/New_York")
	require.EqualError(t, err, `time zone: no database to load "America/New_York"`)
}

func TestValidateName(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	for _, name := range []string{
		"America/New_York", "America/Port-au-Prince", "Etc/GMT+5", "EST5EDT",
		"America/Argentina/Buenos_Aires", "_private",
	} {
		a.NoError(ValidateName(name), name)
	}
	for _, name := range []string{"", "/UTC", "America//X", "-x", "A.B", "a b"} {
		a.ErrorIs(ValidateName(name), ErrZone, name)
	}
}

func TestTimeZone(t *testing.T) {
	t.Parallel()
	db := testTable(t)
	eastern, err := db.Zone("Test/Eastern")
	require.NoError(t, err)

	t.Run("utc", func(t *testing.T) {
		t.Parallel()
		a := assert.New(t)
		a.True(UTC.IsFixed())
		a.Equal("UTC", UTC.Name())
		a.Nil(UTC.Provider())
		off, err := UTC.OffsetAt(springForward)
		a.NoError(err)
		a.Equal(Offset(0), off)
		a.True(UTC.Equal(Fixed(0)))
		a.False(UTC.Equal(Fixed(60)))
		a.Equal("UTC", UTC.Location(0).String())
	})

	t.Run("fixed_never_ambiguous", func(t *testing.T) {
		t.Parallel()
		a := assert.New(t)
		z := Fixed(edt)
		for _, local := range []int64{inGap, inFold} {
			c, err := z.Resolve(local)
			a.NoError(err)
			a.Equal(Only(edt), c)
		}
		_, ok, err := z.NextTransition(0)
		a.NoError(err)
		a.False(ok)
		_, ok, err = z.PrevTransition(fallBack + 1)
		a.NoError(err)
		a.False(ok)
		_, off := time.Unix(0, 0).In(z.Location(0)).Zone()
		a.Equal(off, -4*3600)
		a.Equal("-04:00", z.Location(0).String())
	})

	t.Run("named", func(t *testing.T) {
		t.Parallel()
		a := assert.New(t)
		a.False(eastern.IsFixed())
		a.Same(db, eastern.Provider())

		off, err := eastern.OffsetAt(springForward)
		a.NoError(err)
		a.Equal(edt, off)

		c, err := eastern.Resolve(inFold)
		a.NoError(err)
		a.Equal(Fold, c.Kind)

		tr, ok, err := eastern.NextTransition(0)
		a.NoError(err)
		a.True(ok)
		a.Equal(springForward, tr.At)

		tr, ok, err = eastern.PrevTransition(fallBack + 1)
		a.NoError(err)
		a.True(ok)
		a.Equal(fallBack, tr.At)

		other, err := db.Zone("Test/Eastern")
		a.NoError(err)
		a.True(eastern.Equal(other))
		a.False(eastern.Equal(Fixed(est)))

		loc := eastern.Location(springForward)
		a.Equal("Test/Eastern", loc.String())
	})

	t.Run("location_db", func(t *testing.T) {
		t.Parallel()
		z, err := System().Zone("America/New_York")
		require.NoError(t, err)
		assert.Equal(t, "America/New_York", z.Location(0).String())
	})
}

func TestContextWithDatabase(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	db := testTable(t)

	ctx := ContextWithDatabase(context.Background(), db)
	a.Same(db, DatabaseFromContext(ctx))

	a.Same(System(), DatabaseFromContext(context.Background()))
	a.Same(System(), DatabaseFromContext(ContextWithDatabase(context.Background(), nil)))
}
