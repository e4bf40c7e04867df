package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/theory/tempo/temporal"
	"github.com/theory/tempo/temporal/round"
	"github.com/theory/tempo/temporal/tz"
)

var errUsage = errors.New("usage")

// maxValues caps the length of series and transition listings.
const maxValues = 100_000

// valueOut is the result of commands that produce a single value.
type valueOut struct {
	Kind   string           `json:"kind"             yaml:"kind"`
	Value  string           `json:"value"            yaml:"value"`
	Fields map[string]int64 `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func newValueOut(v temporal.Temporal) valueOut {
	return valueOut{Kind: v.Kind().String(), Value: v.String()}
}

func (o valueOut) text() []string {
	if len(o.Fields) == 0 {
		return []string{o.Value}
	}
	lines := []string{"kind: " + o.Kind, "value: " + o.Value}
	keys := make([]string, 0, len(o.Fields))
	for k := range o.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %d", k, o.Fields[k]))
	}
	return lines
}

// fields returns the components of v.
func fields(v temporal.Temporal) map[string]int64 {
	switch v := v.(type) {
	case interface{ AsMap() map[string]int64 }:
		return v.AsMap()
	case temporal.Timestamp:
		return map[string]int64{"seconds": v.Unix(), "nanoseconds": int64(v.Subsec())}
	case temporal.Span:
		m := map[string]int64{}
		for u := round.Nanosecond; u <= round.Year; u++ {
			if n := v.Get(u); n != 0 {
				m[u.String()+"s"] = n
			}
		}
		return m
	}
	return nil
}

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse VALUE",
		Short: "Detect the kind of a value and show its fields",
		Example: `  tempo parse 2024-03-10T02:30:00[America/New_York]
  tempo parse P1Y2M --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.value(cmd, args[0])
			if err != nil {
				return err
			}
			out := newValueOut(v)
			out.Fields = fields(v)
			return a.emit(cmd, out)
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add VALUE SPAN",
		Short: "Add a span to a value",
		Long: `Add an ISO 8601 span to a value. Calendar units keep the wall-clock time
of zoned values; hours and smaller units add elapsed time. Adding to a span
adds the two spans, which may not mix calendar and time units.`,
		Example: `  tempo add 2024-01-31 P1M
  tempo add 2024-03-09T12:00[America/New_York] P1D`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAdd(cmd, args, false)
		},
	}
}

func newSubCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "sub VALUE SPAN",
		Short:   "Subtract a span from a value",
		Example: `  tempo sub 2024-03-31 P1M`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAdd(cmd, args, true)
		},
	}
}

func (a *app) runAdd(cmd *cobra.Command, args []string, negate bool) error {
	v, err := a.value(cmd, args[0])
	if err != nil {
		return err
	}
	s, err := temporal.ParseSpan(args[1])
	if err != nil {
		return err
	}
	if negate {
		s = s.Negate()
	}

	var res temporal.Temporal
	switch v := v.(type) {
	case temporal.Date:
		res, err = wrap(v.AddSpan(s))
	case temporal.Time:
		res, err = wrap(v.AddSpan(s))
	case temporal.DateTime:
		res, err = wrap(v.AddSpan(s))
	case temporal.Timestamp:
		res, err = wrap(v.AddSpan(s))
	case temporal.ZonedDateTime:
		res, err = wrap(v.AddSpan(s))
	case temporal.Span:
		res, err = wrap(v.Add(s))
	default:
		err = fmt.Errorf("%w: cannot add to %v", errUsage, v.Kind())
	}
	if err != nil {
		return err
	}
	return a.emit(cmd, newValueOut(res))
}

// wrap converts the result of a typed operation.
func wrap[T temporal.Temporal](v T, err error) (temporal.Temporal, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// roundFlags are the rounding options shared by since and round.
type roundFlags struct {
	largest   string
	smallest  string
	increment int64
	mode      string
}

func (f *roundFlags) bind(cmd *cobra.Command, withUnits bool) {
	flags := cmd.Flags()
	if withUnits {
		flags.StringVar(&f.largest, "largest", "", "largest unit of the result")
		flags.StringVar(&f.smallest, "smallest", "", "smallest unit of the result")
	}
	flags.Int64Var(&f.increment, "increment", 1, "rounding increment in the smallest unit")
	flags.StringVar(&f.mode, "mode", "", "rounding mode, such as trunc or half-even")
}

// options converts the flags to rounding options. The mode falls back to the
// configured rounding mode.
func (f *roundFlags) options(a *app) ([]round.Option, error) {
	var opts []round.Option
	if f.largest != "" {
		u, err := round.ParseUnit(f.largest)
		if err != nil {
			return nil, err
		}
		opts = append(opts, round.WithLargest(u))
	}
	if f.smallest != "" {
		u, err := round.ParseUnit(f.smallest)
		if err != nil {
			return nil, err
		}
		opts = append(opts, round.WithSmallest(u))
	}
	if f.increment != 1 {
		opts = append(opts, round.WithIncrement(f.increment))
	}

	switch {
	case f.mode != "":
		m, err := round.ParseMode(f.mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, round.WithMode(m))
	default:
		if m, ok, _ := a.cfg.Mode(); ok {
			opts = append(opts, round.WithMode(m))
		}
	}
	return opts, nil
}

func newSinceCmd(a *app) *cobra.Command {
	var rf roundFlags
	cmd := &cobra.Command{
		Use:   "since LATER EARLIER",
		Short: "Show the span from EARLIER to LATER",
		Long: `Show the span from EARLIER to LATER, which must be the same kind of value.
The result is negative if LATER precedes EARLIER.`,
		Example: `  tempo since 2024-03-15 2024-01-31 --largest month
  tempo since 2024-03-10T12:00[America/New_York] 2024-03-09T12:00[America/New_York] --largest day`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			later, err := a.value(cmd, args[0])
			if err != nil {
				return err
			}
			earlier, err := a.value(cmd, args[1])
			if err != nil {
				return err
			}
			opts, err := rf.options(a)
			if err != nil {
				return err
			}

			var s temporal.Span
			switch l := later.(type) {
			case temporal.Date:
				s, err = since(l, earlier, opts)
			case temporal.Time:
				s, err = since(l, earlier, opts)
			case temporal.DateTime:
				s, err = since(l, earlier, opts)
			case temporal.Timestamp:
				s, err = since(l, earlier, opts)
			case temporal.ZonedDateTime:
				s, err = since(l, earlier, opts)
			default:
				err = fmt.Errorf("%w: cannot measure from a %v", errUsage, later.Kind())
			}
			if err != nil {
				return err
			}
			return a.emit(cmd, newValueOut(s))
		},
	}
	rf.bind(cmd, true)
	return cmd
}

// since measures from earlier to later, which must have the same type.
func since[T interface {
	temporal.Temporal
	Since(o T, opt ...round.Option) (temporal.Span, error)
}](later T, earlier temporal.Temporal, opts []round.Option) (temporal.Span, error) {
	e, ok := earlier.(T)
	if !ok {
		return temporal.Span{}, fmt.Errorf(
			"%w: cannot measure between a %v and a %v", errUsage, later.Kind(), earlier.Kind(),
		)
	}
	return later.Since(e, opts...)
}

func newRoundCmd(a *app) *cobra.Command {
	var (
		rf       roundFlags
		unit     string
		relative string
	)
	cmd := &cobra.Command{
		Use:   "round VALUE",
		Short: "Round a value to an increment of a unit",
		Long: `Round a time, datetime, timestamp, zoned datetime, or span. Spans with
calendar units, or rounded to days or larger, need a --relative anchor: a
date, datetime, or zoned datetime.`,
		Example: `  tempo round 12:34:56 --unit minute --increment 15
  tempo round P1M20D --unit month --relative 2024-02-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.value(cmd, args[0])
			if err != nil {
				return err
			}
			u, err := round.ParseUnit(unit)
			if err != nil {
				return err
			}
			opts, err := rf.options(a)
			if err != nil {
				return err
			}

			var res temporal.Temporal
			switch v := v.(type) {
			case temporal.Time:
				res, err = wrap(v.Round(u, opts...))
			case temporal.DateTime:
				res, err = wrap(v.Round(u, opts...))
			case temporal.Timestamp:
				res, err = wrap(v.Round(u, opts...))
			case temporal.ZonedDateTime:
				res, err = wrap(v.Round(u, opts...))
			case temporal.Span:
				res, err = a.roundSpan(cmd, v, relative, u, opts)
			default:
				err = fmt.Errorf("%w: cannot round a %v", errUsage, v.Kind())
			}
			if err != nil {
				return err
			}
			return a.emit(cmd, newValueOut(res))
		},
	}
	rf.bind(cmd, false)
	cmd.Flags().StringVar(&unit, "unit", "", "unit to round to (required)")
	cmd.Flags().StringVar(&relative, "relative", "", "anchor for rounding calendar units")
	_ = cmd.MarkFlagRequired("unit")
	return cmd
}

func (a *app) roundSpan(cmd *cobra.Command, s temporal.Span, relative string, u round.Unit, opts []round.Option) (temporal.Temporal, error) {
	if relative == "" {
		return wrap(s.Round(u, opts...))
	}
	v, err := a.value(cmd, relative)
	if err != nil {
		return nil, err
	}
	anchor, ok := v.(temporal.Anchor)
	if !ok {
		return nil, fmt.Errorf("%w: a %v cannot anchor a span", errUsage, v.Kind())
	}
	return wrap(s.RoundRelative(anchor, u, opts...))
}

// seriesOut is the result of the series command.
type seriesOut struct {
	Kind   string   `json:"kind"   yaml:"kind"`
	Step   string   `json:"step"   yaml:"step"`
	Values []string `json:"values" yaml:"values"`
}

func (o seriesOut) text() []string { return o.Values }

func newSeriesCmd(a *app) *cobra.Command {
	var (
		count int
		until string
	)
	cmd := &cobra.Command{
		Use:   "series START STEP",
		Short: "List values from START advancing by STEP",
		Long: `List values from START, each the previous one plus STEP. The listing
stops after --count values or, with --until, at the last value not past END.`,
		Example: `  tempo series 2024-01-31 P1M -n 4
  tempo series 09:00 PT45M --until 12:00`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := a.value(cmd, args[0])
			if err != nil {
				return err
			}
			step, err := temporal.ParseSpan(args[1])
			if err != nil {
				return err
			}
			var end temporal.Temporal
			if until != "" {
				if end, err = a.value(cmd, until); err != nil {
					return err
				}
				if !cmd.Flags().Changed("count") {
					count = maxValues
				}
			}
			if count < 0 || count > maxValues {
				return fmt.Errorf("%w: count must be between 0 and %d", errUsage, maxValues)
			}

			var values []string
			switch s := start.(type) {
			case temporal.Date:
				values, err = listSeries(a, s, step, count, end)
			case temporal.Time:
				values, err = listSeries(a, s, step, count, end)
			case temporal.DateTime:
				values, err = listSeries(a, s, step, count, end)
			case temporal.Timestamp:
				values, err = listSeries(a, s, step, count, end)
			case temporal.ZonedDateTime:
				values, err = listSeries(a, s, step, count, end)
			default:
				err = fmt.Errorf("%w: cannot step a %v", errUsage, start.Kind())
			}
			if err != nil {
				return err
			}
			return a.emit(cmd, seriesOut{Kind: start.Kind().String(), Step: step.String(), Values: values})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of values")
	cmd.Flags().StringVar(&until, "until", "", "last value, inclusive")
	return cmd
}

// listSeries lists up to n values of the series from start by step,
// stopping after end if it is not nil.
func listSeries[T temporal.Stepper[T]](a *app, start T, step temporal.Span, n int, end temporal.Temporal) ([]string, error) {
	s, err := temporal.NewSeries(start, step)
	if err != nil {
		return nil, err
	}

	var last T
	hasEnd := end != nil
	if hasEnd {
		var ok bool
		if last, ok = end.(T); !ok {
			return nil, fmt.Errorf(
				"%w: cannot step a %v until a %v", errUsage, start.Kind(), end.Kind(),
			)
		}
	}

	values := make([]string, 0, min(n, 64))
	dir := step.Signum()
	for v := range s.All() {
		if len(values) >= n || (hasEnd && v.Compare(last) == dir) {
			break
		}
		values = append(values, v.String())
	}
	if err := s.Err(); err != nil {
		a.log.Info("series ended early", "count", len(values), "error", err)
	}
	return values, nil
}

// resolveOut is the result of the resolve command.
type resolveOut struct {
	DateTime string `json:"datetime" yaml:"datetime"`
	Zone     string `json:"zone"     yaml:"zone"`
	Kind     string `json:"kind"     yaml:"kind"`
	Before   string `json:"before"   yaml:"before"`
	After    string `json:"after"    yaml:"after"`
	Policy   string `json:"policy"   yaml:"policy"`
	Result   string `json:"result"   yaml:"result"`
}

func (o resolveOut) text() []string {
	lines := []string{o.Kind}
	if o.Kind != tz.Unambiguous.String() {
		lines = append(lines, fmt.Sprintf("offsets: %s %s", o.Before, o.After))
	}
	return append(lines, fmt.Sprintf("%s: %s", o.Policy, o.Result))
}

func newResolveCmd(a *app) *cobra.Command {
	var policy string
	cmd := &cobra.Command{
		Use:   "resolve DATETIME [ZONE]",
		Short: "Resolve a civil datetime in a time zone",
		Long: `Resolve a civil datetime in a time zone, reporting whether it falls in a
gap or fold and the instant chosen by the disambiguation policy:
compatible, earlier, later, or reject.`,
		Example: `  tempo resolve 2024-03-10T02:30 America/New_York
  tempo resolve 2024-11-03T01:30 America/New_York --disambiguation later`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := temporal.ParseDateTime(args[0])
			if err != nil {
				return err
			}
			zone, err := a.zoneArg(args, 1)
			if err != nil {
				return err
			}
			d := a.policy
			if policy != "" {
				if d, err = tz.ParseDisambiguation(policy); err != nil {
					return err
				}
			}

			amb, err := dt.Resolve(zone)
			if err != nil {
				return err
			}
			z, err := amb.Disambiguate(d)
			if err != nil {
				return err
			}
			cand := amb.Candidates()
			a.log.Debug("resolved", "datetime", dt, "zone", zone, "kind", cand.Kind, "policy", d)
			return a.emit(cmd, resolveOut{
				DateTime: dt.String(),
				Zone:     zone.Name(),
				Kind:     cand.Kind.String(),
				Before:   cand.Before.String(),
				After:    cand.After.String(),
				Policy:   d.String(),
				Result:   z.String(),
			})
		},
	}
	cmd.Flags().StringVarP(&policy, "disambiguation", "d", "", "gap and fold policy (default from config)")
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert VALUE [ZONE]",
		Short: "Show an instant in another time zone",
		Long: `Show a timestamp or zoned datetime in ZONE, or in the default zone. A
datetime without an offset is first resolved in the default zone.`,
		Example: `  tempo convert 2024-03-10T07:30:00Z America/New_York
  tempo convert now Asia/Tokyo`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.value(cmd, args[0])
			if err != nil {
				return err
			}
			zone, err := a.zoneArg(args, 1)
			if err != nil {
				return err
			}

			var z temporal.ZonedDateTime
			switch v := v.(type) {
			case temporal.Timestamp:
				z, err = v.InZone(zone)
			case temporal.ZonedDateTime:
				z, err = v.InZone(zone)
			case temporal.DateTime:
				z, err = v.ToZonedWith(a.defTZ, a.policy)
				if err == nil {
					z, err = z.InZone(zone)
				}
			default:
				err = fmt.Errorf("%w: cannot convert a %v", errUsage, v.Kind())
			}
			if err != nil {
				return err
			}
			return a.emit(cmd, newValueOut(z))
		},
	}
}

// transitionOut is one entry of the transitions command.
type transitionOut struct {
	At     string `json:"at"     yaml:"at"`
	Before string `json:"before" yaml:"before"`
	After  string `json:"after"  yaml:"after"`
}

type transitionsOut []transitionOut

func (o transitionsOut) text() []string {
	lines := make([]string, len(o))
	for i, t := range o {
		lines[i] = fmt.Sprintf("%s %s -> %s", t.At, t.Before, t.After)
	}
	return lines
}

func newTransitionsCmd(a *app) *cobra.Command {
	var (
		from    string
		count   int
		reverse bool
	)
	cmd := &cobra.Command{
		Use:   "transitions [ZONE]",
		Short: "List the offset transitions of a time zone",
		Example: `  tempo transitions America/New_York --from 2024-01-01T00:00Z -n 2
  tempo transitions Europe/London --reverse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			zone, err := a.zoneArg(args, 0)
			if err != nil {
				return err
			}
			if count < 0 || count > maxValues {
				return fmt.Errorf("%w: count must be between 0 and %d", errUsage, maxValues)
			}

			ts := a.now()
			if from != "" {
				v, err := a.value(cmd, from)
				if err != nil {
					return err
				}
				switch v := v.(type) {
				case temporal.Timestamp:
					ts = v
				case temporal.ZonedDateTime:
					ts = v.Timestamp()
				default:
					return fmt.Errorf("%w: --from must be an instant, not a %v", errUsage, v.Kind())
				}
			}

			find := zone.NextTransition
			if reverse {
				find = zone.PrevTransition
			}
			out := transitionsOut{}
			instant := ts.Unix()
			for len(out) < count {
				t, ok, err := find(instant)
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				at, err := temporal.TimestampFromSecond(t.At)
				if err != nil {
					return err
				}
				z, err := at.InZone(zone)
				if err != nil {
					return err
				}
				out = append(out, transitionOut{At: z.String(), Before: t.Before.String(), After: t.After.String()})
				instant = t.At
			}
			a.log.Debug("transitions", "zone", zone, "from", ts, "count", len(out))
			return a.emit(cmd, out)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "starting instant (default now)")
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of transitions")
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "list earlier transitions instead")
	return cmd
}
