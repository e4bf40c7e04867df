package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jan(day int) Date { return MustDate(2024, time.January, day) }

func TestNewSeries(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	week := MustSpan(SpanFields{Weeks: 1})
	s, err := NewSeries(jan(1), week)
	require.NoError(t, err)
	a.Equal(week, s.Step())
	require.NoError(t, s.Err())

	_, err = NewSeries(jan(1), Span{})
	require.ErrorIs(t, err, ErrValue)
	require.EqualError(t, err, "value: series step must be nonzero")

	_, err = NewSeries(jan(1), MustSpan(SpanFields{Minutes: 1}))
	require.ErrorIs(t, err, ErrValue)

	// A first step that overflows is not an error; the series has one value.
	s, err = NewSeries(MaxDate, MustSpan(SpanFields{Days: 1}))
	require.NoError(t, err)
	a.Equal([]Date{MaxDate}, s.Take(3))
	require.ErrorIs(t, s.Err(), ErrOverflow)
}

func TestSeriesNext(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	s, err := NewSeries(jan(1), MustSpan(SpanFields{Days: 1}))
	require.NoError(t, err)

	for _, exp := range []Date{jan(1), jan(2), jan(3)} {
		v, ok := s.Next()
		a.True(ok)
		a.Equal(exp, v)
	}
	a.Equal([]Date{jan(4), jan(5)}, s.Take(2))
	a.Empty(s.Take(0))
	a.Empty(s.Take(-1))

	s.Reset()
	a.Equal([]Date{jan(1), jan(2)}, s.Take(2))
}

func TestSeriesTakeWhile(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	s, err := NewSeries(jan(1), MustSpan(SpanFields{Days: 2}))
	require.NoError(t, err)
	a.Equal([]Date{jan(1), jan(3), jan(5)}, s.TakeWhile(func(d Date) bool { return d.Day() < 6 }))

	// The value that ended TakeWhile is consumed.
	v, ok := s.Next()
	a.True(ok)
	a.Equal(jan(9), v)

	s.Reset()
	a.Nil(s.TakeWhile(func(Date) bool { return false }))
}

func TestSeriesUntil(t *testing.T) {
	t.Parallel()
	week := MustSpan(SpanFields{Weeks: 1})

	for _, tc := range []struct {
		test  string
		start Date
		step  Span
		end   Date
		exp   []Date
	}{
		{"inclusive", jan(1), week, jan(29), []Date{jan(1), jan(8), jan(15), jan(22), jan(29)}},
		{"between", jan(1), week, jan(30), []Date{jan(1), jan(8), jan(15), jan(22), jan(29)}},
		{"backward", jan(29), week.Negate(), jan(1), []Date{jan(29), jan(22), jan(15), jan(8), jan(1)}},
		{"start_past_end", jan(29), week, jan(1), nil},
		{"same", jan(1), week, jan(1), []Date{jan(1)}},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			s, err := NewSeries(tc.start, tc.step)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, s.Until(tc.end))
		})
	}
}

func TestSeriesAll(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	s, err := MustTime(23, 0, 0, 0).Series(MustSpan(SpanFields{Minutes: 20}))
	require.NoError(t, err)

	got := []Time{}
	for v := range s.All() {
		got = append(got, v)
	}
	a.Equal([]Time{MustTime(23, 0, 0, 0), MustTime(23, 20, 0, 0), MustTime(23, 40, 0, 0)}, got)
	require.ErrorIs(t, s.Err(), ErrOverflow)
	require.ErrorContains(t, s.Err(), "series ended after 3 values")

	// Exhausted series yield nothing until Reset.
	v, ok := s.Next()
	a.False(ok)
	a.Equal(Time{}, v)

	s.Reset()
	require.NoError(t, s.Err())
	for v := range s.All() {
		if v.Minute() == 20 {
			break
		}
	}
	v, ok = s.Next()
	a.True(ok)
	a.Equal(MustTime(23, 40, 0, 0), v)
}
