package temporal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/tempo/temporal/tz"
)

func TestKind(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	a.Equal("date", KindDate.String())
	a.Equal("time", KindTime.String())
	a.Equal("datetime", KindDateTime.String())
	a.Equal("timestamp", KindTimestamp.String())
	a.Equal("zoned", KindZoned.String())
	a.Equal("span", KindSpan.String())
	a.Equal("duration", KindDuration.String())
	a.Equal("Kind(0)", Kind(0).String())
	a.Equal("Kind(42)", Kind(42).String())
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		src  string
		kind Kind
		exp  string
	}{
		{"2024-03-10", KindDate, "2024-03-10"},
		{"02:30:00", KindTime, "02:30:00"},
		{"T02:30:00", KindTime, "02:30:00"},
		{"2024-03-10T02:30:00", KindDateTime, "2024-03-10T02:30:00"},
		{"2024-03-10T07:30:00Z", KindTimestamp, "2024-03-10T07:30:00Z"},
		{"2024-03-10T02:30:00-05:00", KindTimestamp, "2024-03-10T07:30:00Z"},
		{"2024-06-01T12:00:00[UTC]", KindZoned, "2024-06-01T12:00:00+00:00[UTC]"},
		{"P1Y2M3DT4H", KindSpan, "P1Y2M3DT4H"},
		{"-PT90M", KindSpan, "-PT90M"},
	} {
		t.Run(tc.src, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			v, err := Parse(tc.src)
			require.NoError(t, err)
			a.Equal(tc.kind, v.Kind())
			a.Equal(tc.exp, v.String())

			text, err := v.MarshalText()
			require.NoError(t, err)
			a.Equal(tc.exp, string(text))

			again, err := Parse(v.String())
			require.NoError(t, err)
			a.Equal(v.Hash(), again.Hash())
		})
	}

	for _, tc := range []struct {
		test string
		src  string
		err  error
	}{
		{"empty", "", ErrParse},
		{"garbage", "tomorrow", ErrParse},
		{"bad_span", "P1X", ErrParse},
		{"bad_time", "25:00:00", ErrParse},
		{"bad_date", "2024-02-30", ErrRange},
		{"unknown_zone", "2024-06-01T12:00:00[Nowhere/Special]", tz.ErrZone},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			v, err := Parse(tc.src)
			require.ErrorIs(t, err, tc.err)
			assert.Nil(t, v)
		})
	}
}

func TestParseContext(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	db := eastern(t).Provider()

	// The test zone is unknown to the system database.
	_, err := Parse("2024-03-10T02:30:00[Test/Eastern]")
	require.ErrorIs(t, err, tz.ErrZone)

	ctx := tz.ContextWithDatabase(context.Background(), db)
	v, err := ParseContext(ctx, "2024-03-10T02:30:00[Test/Eastern]")
	require.NoError(t, err)
	a.Equal(KindZoned, v.Kind())
	a.Equal("2024-03-10T03:30:00-04:00[Test/Eastern]", v.String())

	// Values without a zone ignore the database.
	v, err = ParseContext(ctx, "2024-03-10")
	require.NoError(t, err)
	a.Equal(KindDate, v.Kind())
}
