package temporal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/tempo/temporal/round"
)

func TestNewSignedDuration(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		test  string
		secs  int64
		nanos int64
		exp   SignedDuration
	}{
		{"zero", 0, 0, SignedDuration{}},
		{"carry", 1, 1_500_000_000, SignedDuration{2, 500_000_000}},
		{"borrow", 2, -500_000_000, SignedDuration{1, 500_000_000}},
		{"negative_borrow", -2, 500_000_000, SignedDuration{-1, -500_000_000}},
		{"nanos_only", 0, -1, SignedDuration{0, -1}},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			d, err := NewSignedDuration(tc.secs, tc.nanos)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, d)
		})
	}

	_, err := NewSignedDuration(MaxSignedDuration.secs, nanosPerSecond)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestSignedDurationString(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		dur SignedDuration
		str string
	}{
		{SignedDuration{}, "PT0S"},
		{DurationFromSecs(3723), "PT1H2M3S"},
		{DurationFromSecs(7200), "PT2H"},
		{DurationFromSecs(60), "PT1M"},
		{DurationFromMillis(-1500), "-PT1.5S"},
		{DurationFromNanos(1), "PT0.000000001S"},
		{DurationFromMicros(90_000_000_250), "PT25H0.00025S"},
		{MaxSignedDuration, "PT2562047788015215H30M7.999999999S"},
		{MinSignedDuration, "-PT2562047788015215H30M8.999999999S"},
	} {
		t.Run(tc.str, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)
			a.Equal(tc.str, tc.dur.String())

			d, err := ParseSignedDuration(tc.str)
			require.NoError(t, err)
			a.Equal(tc.dur, d)
			a.Equal(tc.dur.Hash(), d.Hash())
		})
	}

	d, err := ParseSignedDuration("PT1.5H")
	require.NoError(t, err)
	assert.Equal(t, DurationFromSecs(5400), d)

	_, err = ParseSignedDuration("P1D")
	require.ErrorIs(t, err, ErrParse)
	_, err = ParseSignedDuration("1H")
	require.ErrorIs(t, err, ErrParse)
	_, err = ParseSignedDuration("PT2562047788015215H30M8S")
	require.ErrorIs(t, err, ErrOverflow)
	_, err = ParseSignedDuration("-PT2562047788015215H30M9S")
	require.ErrorIs(t, err, ErrOverflow)
}

func TestSignedDurationArithmetic(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	sum, err := DurationFromMillis(1500).Add(DurationFromMillis(-2250))
	require.NoError(t, err)
	a.Equal(DurationFromMillis(-750), sum)

	diff, err := DurationFromSecs(1).Sub(DurationFromNanos(1))
	require.NoError(t, err)
	a.Equal(DurationFromNanos(999_999_999), diff)

	prod, err := DurationFromMillis(1500).Mul(-3)
	require.NoError(t, err)
	a.Equal(DurationFromMillis(-4500), prod)

	abs, err := DurationFromMillis(-4500).Abs()
	require.NoError(t, err)
	a.Equal(DurationFromMillis(4500), abs)

	a.Equal(-1, DurationFromSecs(-1).Signum())
	a.Equal(0, SignedDuration{}.Signum())
	a.True(DurationFromNanos(-1).IsNegative())
	a.Equal(-1, DurationFromSecs(1).Compare(DurationFromMillis(1001)))
	a.InDelta(1.5, DurationFromSecs(5400).AsHours(), 1e-12)

	_, err = MaxSignedDuration.Add(DurationFromNanos(1))
	require.ErrorIs(t, err, ErrOverflow)
	_, err = MinSignedDuration.Negate()
	require.ErrorIs(t, err, ErrOverflow)
	_, err = MaxSignedDuration.Mul(2)
	require.ErrorIs(t, err, ErrOverflow)
	_, err = DurationFromHours(math.MaxInt64/3600 + 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestSignedDurationStd(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	d := DurationFromStd(90 * time.Minute)
	a.Equal(DurationFromSecs(5400), d)
	std, err := d.Std()
	require.NoError(t, err)
	a.Equal(90*time.Minute, std)

	_, err = DurationFromSecs(math.MaxInt64).Std()
	require.ErrorIs(t, err, ErrOverflow)
}

func TestSignedDurationRound(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		test string
		dur  SignedDuration
		unit round.Unit
		opts []round.Option
		exp  SignedDuration
	}{
		{"half_expand_up", DurationFromMillis(1500), round.Second, nil, DurationFromSecs(2)},
		{"half_even_odd", DurationFromMillis(1500), round.Second, opts(round.HalfEven), DurationFromSecs(2)},
		{"half_even_even", DurationFromMillis(2500), round.Second, opts(round.HalfEven), DurationFromSecs(2)},
		{"negative_half_expand", DurationFromMillis(-1500), round.Second, nil, DurationFromSecs(-2)},
		{"negative_trunc", DurationFromMillis(-1500), round.Second, opts(round.Trunc), DurationFromSecs(-1)},
		{"negative_floor", DurationFromMillis(-1200), round.Second, opts(round.Floor), DurationFromSecs(-2)},
		{"negative_ceil", DurationFromMillis(-1800), round.Second, opts(round.Ceil), DurationFromSecs(-1)},
		{"millis", DurationFromMicros(1_234_567), round.Millisecond, nil, DurationFromMillis(1_235)},
		{"minutes_by_15", DurationFromSecs(500), round.Minute, []round.Option{round.WithIncrement(15)}, DurationFromSecs(900)},
		{"hours_by_5", DurationFromSecs(9 * 3600), round.Hour, []round.Option{round.WithIncrement(5)}, DurationFromSecs(10 * 3600)},
		{"hours", DurationFromSecs(5400), round.Hour, nil, DurationFromSecs(7200)},
		{"hours_half_trunc", DurationFromSecs(5400), round.Hour, opts(round.HalfTrunc), DurationFromSecs(3600)},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			d, err := tc.dur.Round(tc.unit, tc.opts...)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, d)
		})
	}

	_, err := DurationFromSecs(1).Round(round.Day)
	require.ErrorIs(t, err, ErrValue)
	_, err = DurationFromSecs(1).Round(round.Second, round.WithIncrement(0))
	require.ErrorIs(t, err, ErrValue)
	_, err = DurationFromSecs(1).Round(round.Second, round.WithIncrement(7))
	require.ErrorIs(t, err, ErrValue)
	_, err = DurationFromSecs(1).Round(round.Minute, round.WithIncrement(60))
	require.ErrorIs(t, err, ErrValue)
	_, err = DurationFromSecs(1).Round(round.Second, round.WithMode(round.Mode(42)))
	require.ErrorIs(t, err, ErrValue)
}

func opts(mode round.Mode) []round.Option { return []round.Option{round.WithMode(mode)} }
