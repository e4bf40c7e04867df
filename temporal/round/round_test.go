package round

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeString(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	for _, tc := range []struct {
		mode Mode
		name string
	}{
		{Ceil, "ceil"},
		{Floor, "floor"},
		{Expand, "expand"},
		{Trunc, "trunc"},
		{HalfCeil, "half-ceil"},
		{HalfFloor, "half-floor"},
		{HalfExpand, "half-expand"},
		{HalfTrunc, "half-trunc"},
		{HalfEven, "half-even"},
	} {
		a.Equal(tc.name, tc.mode.String())
		m, err := ParseMode(tc.name)
		a.NoError(err)
		a.Equal(tc.mode, m)
	}
	a.Equal("Mode(42)", Mode(42).String())
}

func TestParseMode(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	for in, exp := range map[string]Mode{
		"HALF_EVEN": HalfEven,
		"halfEven":  HalfEven,
		"Trunc":     Trunc,
		"half ceil": HalfCeil,
	} {
		m, err := ParseMode(in)
		a.NoError(err, in)
		a.Equal(exp, m, in)
	}

	_, err := ParseMode("sideways")
	a.EqualError(err, `round: unknown rounding mode "sideways"`)
	a.ErrorIs(err, ErrInvalid)
}

func TestModeNegate(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	a.Equal(Floor, Ceil.Negate())
	a.Equal(Ceil, Floor.Negate())
	a.Equal(HalfFloor, HalfCeil.Negate())
	a.Equal(HalfCeil, HalfFloor.Negate())
	for _, m := range []Mode{Expand, Trunc, HalfExpand, HalfTrunc, HalfEven} {
		a.Equal(m, m.Negate())
	}
}

func TestInt(t *testing.T) {
	t.Parallel()

	type expect map[Mode]int64

	for _, tc := range []struct {
		name  string
		value int64
		inc   int64
		exp   expect
	}{
		{
			name:  "exact",
			value: 30,
			inc:   10,
			exp: expect{
				Ceil: 30, Floor: 30, Expand: 30, Trunc: 30, HalfCeil: 30,
				HalfFloor: 30, HalfExpand: 30, HalfTrunc: 30, HalfEven: 30,
			},
		},
		{
			name:  "below_half",
			value: 34,
			inc:   10,
			exp: expect{
				Ceil: 40, Floor: 30, Expand: 40, Trunc: 30, HalfCeil: 30,
				HalfFloor: 30, HalfExpand: 30, HalfTrunc: 30, HalfEven: 30,
			},
		},
		{
			name:  "half_odd_quotient",
			value: 15,
			inc:   10,
			exp: expect{
				Ceil: 20, Floor: 10, Expand: 20, Trunc: 10, HalfCeil: 20,
				HalfFloor: 10, HalfExpand: 20, HalfTrunc: 10, HalfEven: 20,
			},
		},
		{
			name:  "half_even_quotient",
			value: 25,
			inc:   10,
			exp: expect{
				Ceil: 30, Floor: 20, Expand: 30, Trunc: 20, HalfCeil: 30,
				HalfFloor: 20, HalfExpand: 30, HalfTrunc: 20, HalfEven: 20,
			},
		},
		{
			name:  "negative_half",
			value: -25,
			inc:   10,
			exp: expect{
				Ceil: -20, Floor: -30, Expand: -30, Trunc: -20, HalfCeil: -20,
				HalfFloor: -30, HalfExpand: -30, HalfTrunc: -20, HalfEven: -20,
			},
		},
		{
			name:  "negative_above_half",
			value: -27,
			inc:   10,
			exp: expect{
				Ceil: -20, Floor: -30, Expand: -30, Trunc: -20, HalfCeil: -30,
				HalfFloor: -30, HalfExpand: -30, HalfTrunc: -30, HalfEven: -30,
			},
		},
		{
			name:  "small_negative",
			value: -3,
			inc:   10,
			exp: expect{
				Ceil: 0, Floor: -10, Expand: -10, Trunc: 0, HalfCeil: 0,
				HalfFloor: 0, HalfExpand: 0, HalfTrunc: 0, HalfEven: 0,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)
			for mode, exp := range tc.exp {
				got, err := Int(tc.value, tc.inc, mode)
				a.NoError(err)
				a.Equal(exp, got, mode.String())
			}
		})
	}
}

func TestIntErrors(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	_, err := Int(10, 0, Trunc)
	r.EqualError(err, "round: increment must be positive, got 0")
	r.ErrorIs(err, ErrInvalid)

	_, err = Int(math.MaxInt64, 10, Ceil)
	r.ErrorIs(err, ErrInvalid)
	r.ErrorContains(err, "overflows")
}

func TestQuotientHugeRemainder(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	// 2*r would overflow int64.
	inc := int64(math.MaxInt64)
	a.Equal(int64(1), Quotient(0, inc/2+1, inc, HalfExpand))
	a.Equal(int64(0), Quotient(0, inc/2, inc, HalfExpand))
}

func TestUnit(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	for _, tc := range []struct {
		unit     Unit
		name     string
		nanos    int64
		modulus  int64
		calendar bool
	}{
		{Nanosecond, "nanosecond", 1, 1000, false},
		{Microsecond, "microsecond", 1000, 1000, false},
		{Millisecond, "millisecond", 1e6, 1000, false},
		{Second, "second", 1e9, 60, false},
		{Minute, "minute", 60e9, 60, false},
		{Hour, "hour", 3600e9, 24, false},
		{Day, "day", 86400e9, 0, true},
		{Week, "week", 7 * 86400e9, 0, true},
		{Month, "month", 0, 0, true},
		{Year, "year", 0, 0, true},
	} {
		a.Equal(tc.name, tc.unit.String())
		a.Equal(tc.nanos, tc.unit.Nanos(), tc.name)
		a.Equal(tc.modulus, tc.unit.Modulus(), tc.name)
		a.Equal(tc.calendar, tc.unit.IsCalendar(), tc.name)

		for _, in := range []string{tc.name, tc.name + "s"} {
			u, err := ParseUnit(in)
			a.NoError(err)
			a.Equal(tc.unit, u)
		}
	}
	a.Equal("Unit(99)", Unit(99).String())
}

func TestParseUnitAbbrev(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	for in, exp := range map[string]Unit{
		"ns": Nanosecond, "µs": Microsecond, "ms": Millisecond, "s": Second,
		"min": Minute, "H": Hour, "d": Day, "w": Week, "mo": Month, "yr": Year,
	} {
		u, err := ParseUnit(in)
		a.NoError(err, in)
		a.Equal(exp, u, in)
	}

	_, err := ParseUnit("fortnight")
	a.EqualError(err, `round: unknown unit "fortnight"`)
}

func TestConfig(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	r := require.New(t)

	c := New(Minute, HalfExpand)
	a.Equal(Config{Smallest: Minute, Increment: 1, Mode: HalfExpand}, c)
	a.False(c.HasLargest())
	a.Equal(Hour, c.LargestOr(Hour))
	a.Equal(Minute, c.LargestOr(Second))

	c = New(Minute, Trunc, WithIncrement(15), WithMode(HalfEven), WithLargest(Day))
	a.True(c.HasLargest())
	a.Equal(int64(15), c.Increment)
	a.Equal(HalfEven, c.Mode)
	a.Equal(Day, c.LargestOr(Hour))
	a.Equal(int64(15*60e9), c.Nanos())

	c = New(Nanosecond, Trunc, WithSmallest(Second))
	a.Equal(Second, c.Smallest)

	res, err := New(Hour, Trunc).Resolve(Minute)
	r.NoError(err)
	a.Equal(Hour, res.Largest)

	_, err = New(Day, Trunc, WithLargest(Hour)).Resolve(Hour)
	r.EqualError(err, "round: smallest unit day is larger than largest unit hour")

	_, err = New(Day, Mode(77)).Resolve(Hour)
	r.ErrorIs(err, ErrInvalid)
}

func TestValidateIncrement(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		unit    Unit
		inc     int64
		bounded bool
		err     string
	}{
		{"minute_15", Minute, 15, true, ""},
		{"minute_7", Minute, 7, true, "round: increment 7 does not evenly divide 60 minutes"},
		{"minute_60", Minute, 60, true, "round: increment 60 does not evenly divide 60 minutes"},
		{"minute_7_unbounded", Minute, 7, false, ""},
		{"hour_12", Hour, 12, true, ""},
		{"hour_5", Hour, 5, true, "round: increment 5 does not evenly divide 24 hours"},
		{"ms_250", Millisecond, 250, true, ""},
		{"day_3", Day, 3, true, ""},
		{"zero", Second, 0, false, "round: increment must be positive, got 0"},
		{"negative", Second, -5, true, "round: increment must be positive, got -5"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := New(tc.unit, Trunc, WithIncrement(tc.inc)).ValidateIncrement(tc.bounded)
			if tc.err == "" {
				require.NoError(t, err)
			} else {
				require.EqualError(t, err, tc.err)
				require.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestValidateDayDivisor(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	a.NoError(New(Hour, Trunc, WithIncrement(24)).ValidateDayDivisor())
	a.NoError(New(Minute, Trunc, WithIncrement(90)).ValidateDayDivisor())
	a.EqualError(
		New(Minute, Trunc, WithIncrement(7)).ValidateDayDivisor(),
		"round: increment 7 minutes does not evenly divide one day",
	)
	a.EqualError(
		New(Hour, Trunc, WithIncrement(48)).ValidateDayDivisor(),
		"round: increment 48 hours does not evenly divide one day",
	)
	a.EqualError(New(Day, Trunc).ValidateDayDivisor(), "round: unit day exceeds hour")
	a.Error(New(Second, Trunc, WithIncrement(0)).ValidateDayDivisor())
	a.EqualError(
		New(Second, Trunc, WithMode(Mode(42))).ValidateDayDivisor(),
		"round: unknown rounding mode Mode(42)",
	)
}

func TestValidateMode(t *testing.T) {
	t.Parallel()

	for _, bounded := range []bool{true, false} {
		err := New(Minute, Trunc, WithMode(Mode(42))).ValidateIncrement(bounded)
		require.EqualError(t, err, "round: unknown rounding mode Mode(42)")
		require.ErrorIs(t, err, ErrInvalid)
	}
	require.NoError(t, New(Minute, Trunc, WithMode(HalfEven)).ValidateIncrement(true))
}
