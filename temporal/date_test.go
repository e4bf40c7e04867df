package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/tempo/temporal/round"
)

func TestCivilDays(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	for _, tc := range []struct {
		year  int
		month time.Month
		day   int
		days  int64
	}{
		{1970, time.January, 1, 0},
		{1969, time.December, 31, -1},
		{2000, time.March, 1, 11017},
		{2024, time.March, 10, 19792},
		{0, time.January, 1, -719528},
	} {
		a.Equal(tc.days, daysFromCivil(tc.year, tc.month, tc.day))
		y, m, d := civilFromDays(tc.days)
		a.Equal([]any{tc.year, tc.month, tc.day}, []any{y, m, d})
	}

	// Every day in the range survives the round trip and agrees with the
	// time package.
	for days := minDays; days <= maxDays; days += 97 {
		y, m, d := civilFromDays(days)
		a.Equal(days, daysFromCivil(y, m, d))
		if y > 0 {
			exp := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			a.Equal(exp.Unix()/secondsPerDay, days)
			a.Equal(exp.Weekday(), weekdayFromDays(days))
		}
	}
}

func TestNewDate(t *testing.T) {
	t.Parallel()

	// A date constructs exactly when the day exists in the month.
	for _, year := range []int{-9999, -1, 0, 1900, 2000, 2021, 2024, 9999} {
		for month := time.January; month <= time.December; month++ {
			for day := 1; day <= 31; day++ {
				d, err := NewDate(year, month, day)
				exp := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
				if exp.Day() == day {
					require.NoError(t, err)
					y, m, dd := d.AsTuple()
					assert.Equal(t, []any{year, month, day}, []any{y, m, dd})
				} else {
					require.ErrorIs(t, err, ErrRange)
				}
			}
		}
	}

	for _, tc := range []struct {
		test  string
		year  int
		month time.Month
		day   int
		err   string
	}{
		{"feb_29_non_leap", 2021, time.February, 29, "range: day 29 not in [1, 28] for 2021-02"},
		{"month_13", 2021, 13, 1, "range: month 13 not in [1, 12]"},
		{"month_0", 2021, 0, 1, "range: month 0 not in [1, 12]"},
		{"day_0", 2021, time.March, 0, "range: day 0 not in [1, 31] for 2021-03"},
		{"year_10000", 10000, time.January, 1, "range: year 10000 not in [-9999, 9999]"},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			_, err := NewDate(tc.year, tc.month, tc.day)
			require.EqualError(t, err, tc.err)
			require.ErrorIs(t, err, ErrRange)
		})
	}

	assert.PanicsWithError(t, "range: day 30 not in [1, 29] for 2024-02", func() {
		MustDate(2024, time.February, 30)
	})
}

func TestDateFields(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	d := MustDate(2024, time.December, 31)
	a.Equal(2024, d.Year())
	a.Equal(time.December, d.Month())
	a.Equal(31, d.Day())
	a.Equal(time.Tuesday, d.Weekday())
	a.Equal(366, d.DayOfYear())
	a.Equal(31, d.DaysInMonth())
	a.Equal(366, d.DaysInYear())
	a.True(d.InLeapYear())
	a.Equal(map[string]int64{"year": 2024, "month": 12, "day": 31}, d.AsMap())
	a.Equal(KindDate, d.Kind())

	a.Equal(MustDate(2024, time.December, 1), d.FirstOfMonth())
	a.Equal(d, MustDate(2024, time.December, 5).LastOfMonth())
	a.Equal(MustDate(2024, time.January, 1), d.FirstOfYear())
	a.Equal(d, MustDate(2024, time.March, 5).LastOfYear())
	a.Equal(MustDate(2024, time.February, 29), MustDate(2024, time.February, 3).LastOfMonth())

	next, err := d.Tomorrow()
	require.NoError(t, err)
	a.Equal(MustDate(2025, time.January, 1), next)
	prev, err := next.Yesterday()
	require.NoError(t, err)
	a.Equal(d, prev)

	_, err = MaxDate.Tomorrow()
	require.ErrorIs(t, err, ErrOverflow)
	_, err = MinDate.Yesterday()
	require.ErrorIs(t, err, ErrOverflow)

	leap := MustDate(2024, time.February, 29)
	_, err = leap.WithYear(2023)
	require.ErrorIs(t, err, ErrRange)
	w, err := leap.WithYear(2028)
	require.NoError(t, err)
	a.Equal(MustDate(2028, time.February, 29), w)
	w, err = leap.WithMonth(time.March)
	require.NoError(t, err)
	a.Equal(MustDate(2024, time.March, 29), w)
	w, err = leap.WithDay(1)
	require.NoError(t, err)
	a.Equal(MustDate(2024, time.February, 1), w)

	a.Equal(-1, leap.Compare(d))
	a.True(leap.Before(d))
	a.True(d.After(leap))
	a.Equal(0, d.Compare(d))
}

func TestDateString(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		date Date
		str  string
	}{
		{Date{}, "1970-01-01"},
		{MustDate(2024, time.March, 10), "2024-03-10"},
		{MustDate(0, time.January, 1), "0000-01-01"},
		{MustDate(-1, time.December, 31), "-000001-12-31"},
		{MinDate, "-009999-01-01"},
		{MaxDate, "9999-12-31"},
	} {
		t.Run(tc.str, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)
			a.Equal(tc.str, tc.date.String())

			d, err := ParseDate(tc.str)
			require.NoError(t, err)
			a.Equal(tc.date, d)
			a.Equal(tc.date.Hash(), d.Hash())
		})
	}

	_, err := ParseDate("2021-02-29")
	require.ErrorIs(t, err, ErrParse)
	require.ErrorIs(t, err, ErrRange)
	_, err = ParseDate("2021-2-1")
	require.ErrorIs(t, err, ErrParse)
}

func TestDateAddSpan(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		test string
		date Date
		span SpanFields
		exp  Date
	}{
		{"jan_31_plus_month", MustDate(2021, time.January, 31), SpanFields{Months: 1}, MustDate(2021, time.February, 28)},
		{"leap_jan_31_plus_month", MustDate(2020, time.January, 31), SpanFields{Months: 1}, MustDate(2020, time.February, 29)},
		{"leap_day_plus_year", MustDate(2020, time.February, 29), SpanFields{Years: 1}, MustDate(2021, time.February, 28)},
		{"months_then_days", MustDate(2021, time.January, 31), SpanFields{Months: 1, Days: 1}, MustDate(2021, time.March, 1)},
		{"weeks", MustDate(2024, time.February, 26), SpanFields{Weeks: 1}, MustDate(2024, time.March, 4)},
		{"minus_month", MustDate(2021, time.March, 31), SpanFields{Months: -1}, MustDate(2021, time.February, 28)},
		{"hours_truncate", MustDate(2024, time.March, 10), SpanFields{Hours: 47}, MustDate(2024, time.March, 11)},
		{"negative_hours", MustDate(2024, time.March, 10), SpanFields{Hours: -48}, MustDate(2024, time.March, 8)},
		{"into_year_zero", MustDate(1, time.January, 1), SpanFields{Days: -1}, MustDate(0, time.December, 31)},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			s := MustSpan(tc.span)
			d, err := tc.date.AddSpan(s)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, d)
		})
	}

	_, err := MaxDate.AddSpan(MustSpan(SpanFields{Days: 1}))
	require.ErrorIs(t, err, ErrOverflow)
	_, err = MinDate.AddSpan(MustSpan(SpanFields{Months: -1}))
	require.ErrorIs(t, err, ErrOverflow)

	d, err := MustDate(2021, time.March, 31).SubSpan(MustSpan(SpanFields{Months: 1}))
	require.NoError(t, err)
	assert.Equal(t, MustDate(2021, time.February, 28), d)

	d, err = MustDate(2021, time.March, 1).AddDuration(DurationFromSecs(-secondsPerDay))
	require.NoError(t, err)
	assert.Equal(t, MustDate(2021, time.February, 28), d)
}

func TestDateSince(t *testing.T) {
	t.Parallel()

	jan31 := MustDate(2024, time.January, 31)
	for _, tc := range []struct {
		test  string
		from  Date
		to    Date
		opts  []round.Option
		exp   string
	}{
		{"days", jan31, MustDate(2024, time.March, 15), nil, "P44D"},
		{"months", jan31, MustDate(2024, time.March, 15), []round.Option{round.WithLargest(round.Month)}, "P1M15D"},
		{"years", jan31, MustDate(2024, time.March, 15), []round.Option{round.WithLargest(round.Year)}, "P1M15D"},
		{"unclamped_month", MustDate(2021, time.January, 31), MustDate(2021, time.February, 28), []round.Option{round.WithLargest(round.Month)}, "P28D"},
		{"weeks", jan31, MustDate(2024, time.March, 15), []round.Option{round.WithLargest(round.Week)}, "P6W2D"},
		{"years_months", MustDate(2019, time.June, 15), MustDate(2024, time.March, 15), []round.Option{round.WithLargest(round.Year)}, "P4Y9M"},
		{
			"round_months_half_expand",
			MustDate(2024, time.January, 1), MustDate(2024, time.March, 17),
			[]round.Option{round.WithSmallest(round.Month), round.WithMode(round.HalfExpand)},
			"P3M",
		},
		{
			"round_months_trunc",
			MustDate(2024, time.January, 1), MustDate(2024, time.March, 17),
			[]round.Option{round.WithSmallest(round.Month)},
			"P2M",
		},
		{
			"round_bubbles_into_years",
			MustDate(2024, time.January, 1), MustDate(2024, time.December, 20),
			[]round.Option{round.WithLargest(round.Year), round.WithSmallest(round.Month), round.WithMode(round.HalfExpand)},
			"P1Y",
		},
		{
			"round_weeks",
			MustDate(2024, time.January, 1), MustDate(2024, time.January, 12),
			[]round.Option{round.WithSmallest(round.Week), round.WithMode(round.HalfExpand)},
			"P2W",
		},
		{"same", jan31, jan31, nil, "PT0S"},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			s, err := tc.to.Since(tc.from, tc.opts...)
			require.NoError(t, err)
			a.Equal(tc.exp, s.String())

			// The reverse difference is the exact negation.
			r, err := tc.from.Since(tc.to, tc.opts...)
			require.NoError(t, err)
			a.Equal(s.Negate(), r)

			u, err := tc.from.Until(tc.to, tc.opts...)
			require.NoError(t, err)
			a.Equal(s, u)
		})
	}

	_, err := jan31.Since(jan31, round.WithLargest(round.Hour))
	require.ErrorIs(t, err, ErrValue)
	_, err = jan31.Since(jan31, round.WithSmallest(round.Year), round.WithLargest(round.Month))
	require.ErrorIs(t, err, ErrValue)

	assert.Equal(t, DurationFromSecs(44*secondsPerDay), MustDate(2024, time.March, 15).DurationSince(jan31))
}

func TestDateSinceMatchesDateTime(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		test string
		from Date
		to   Date
	}{
		{"clamped_month_end", MustDate(2021, time.January, 31), MustDate(2021, time.February, 28)},
		{"leap_month_end", MustDate(2024, time.January, 31), MustDate(2024, time.February, 29)},
		{"short_month", MustDate(2024, time.March, 31), MustDate(2024, time.April, 30)},
		{"year_end", MustDate(2023, time.February, 28), MustDate(2024, time.February, 29)},
		{"whole_month", MustDate(2024, time.January, 15), MustDate(2024, time.February, 15)},
	} {
		t.Run(tc.test, func(t *testing.T) {
			t.Parallel()
			opts := []round.Option{round.WithLargest(round.Year)}

			ds, err := tc.to.Since(tc.from, opts...)
			require.NoError(t, err)
			dts, err := tc.to.StartOfDay().Since(tc.from.StartOfDay(), opts...)
			require.NoError(t, err)
			assert.Equal(t, dts.String(), ds.String())
		})
	}
}

func TestDateSeries(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	s, err := MustDate(2024, time.January, 31).Series(MustSpan(SpanFields{Months: 1}))
	require.NoError(t, err)
	a.Equal([]Date{
		MustDate(2024, time.January, 31),
		MustDate(2024, time.February, 29),
		MustDate(2024, time.March, 29),
	}, s.Take(3))

	_, err = MustDate(2024, time.January, 31).Series(Span{})
	require.ErrorIs(t, err, ErrValue)
	_, err = MustDate(2024, time.January, 31).Series(MustSpan(SpanFields{Hours: 1}))
	require.ErrorIs(t, err, ErrValue)
}

func TestDateGoTime(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	d := MustDate(2024, time.March, 10)
	a.Equal(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), d.GoTime(time.UTC))
	got, err := DateFromGoTime(time.Date(2024, time.March, 10, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	a.Equal(d, got)
	a.Equal(MustDateTime(2024, time.March, 10, 0, 0, 0, 0), d.StartOfDay())
	a.Equal(MustDateTime(2024, time.March, 10, 12, 0, 0, 0), d.At(MustTime(12, 0, 0, 0)))
}
