// Command tempo parses, compares, rounds, and steps through dates, times,
// and zoned datetimes from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"github.com/theory/tempo/internal/config"
	"github.com/theory/tempo/temporal"
	"github.com/theory/tempo/temporal/tz"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the flags and settings shared by every subcommand.
type app struct {
	cfgFile string
	dotenv  string
	zone    string
	output  string
	verbose bool

	lookup func(string) (string, bool)
	now    func() temporal.Timestamp

	cfg    config.Config
	db     tz.Provider
	defTZ  tz.TimeZone
	policy tz.Disambiguation
	log    *slog.Logger
}

func newApp() *app {
	return &app{
		dotenv: ".env",
		lookup: os.LookupEnv,
		now:    temporal.Now,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tempo",
		Short: "Calendar arithmetic for civil and zoned datetimes",
		Long: `tempo parses and manipulates dates, times, datetimes, instants, zoned
datetimes, and ISO 8601 spans.

Values are written in RFC 3339 / RFC 9557 notation:

  2024-03-10                                   date
  02:30:00                                     time
  2024-03-10T02:30:00                          datetime
  2024-03-10T07:30:00Z                         timestamp
  2024-03-10T02:30:00[America/New_York]        zoned datetime
  P1Y2M3DT4H                                   span

The word "now" stands for the current instant in the default zone.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "configuration file (.toml, .yaml, or .yml)")
	flags.StringVarP(&a.zone, "zone", "z", "", "default time zone (default UTC)")
	flags.StringVarP(&a.output, "output", "o", "", "output format: text, json, or yaml")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debugging information to stderr")

	root.AddCommand(
		newParseCmd(a),
		newAddCmd(a),
		newSubCmd(a),
		newSinceCmd(a),
		newRoundCmd(a),
		newSeriesCmd(a),
		newResolveCmd(a),
		newConvertCmd(a),
		newTransitionsCmd(a),
	)
	return root
}

// setup loads the configuration, applies flag overrides, and prepares the
// logger and time zone database.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, config.WithDotEnv(a.dotenv), config.WithLookup(a.lookup))
	if err != nil {
		return err
	}
	if a.zone != "" {
		cfg.Zone = a.zone
	}
	if a.output != "" {
		cfg.Output = a.output
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	a.cfg = cfg
	a.db = cfg.Database()
	if a.defTZ, err = cfg.TimeZone(a.db); err != nil {
		return err
	}
	a.policy, _ = cfg.Policy()

	a.log.Debug("configured",
		"file", a.cfgFile,
		"zone", a.defTZ.Name(),
		"disambiguation", a.policy,
		"output", cfg.Output,
		"zoneinfo_dir", cfg.ZoneInfoDir,
	)
	return nil
}

// context returns ctx carrying the configured time zone database.
func (a *app) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return tz.ContextWithDatabase(ctx, a.db)
}

// value parses src, resolving zones through the configured database. "now"
// is the current instant in the default zone.
func (a *app) value(cmd *cobra.Command, src string) (temporal.Temporal, error) {
	if strings.EqualFold(src, "now") {
		z, err := a.now().InZone(a.defTZ)
		if err != nil {
			return nil, err
		}
		return z, nil
	}
	v, err := temporal.ParseContext(a.context(cmd.Context()), src)
	if err != nil {
		return nil, err
	}
	a.log.Debug("parsed", "src", src, "kind", v.Kind(), "value", v)
	return v, nil
}

// zoneArg loads the zone named by the i'th argument, or the default zone if
// there are not enough arguments.
func (a *app) zoneArg(args []string, i int) (tz.TimeZone, error) {
	if len(args) <= i {
		return a.defTZ, nil
	}
	return tz.Load(a.db, args[i])
}

// texter is implemented by command results.
type texter interface {
	text() []string
}

// emit writes out to the command's output in the configured format.
func (a *app) emit(cmd *cobra.Command, out texter) error {
	w := cmd.OutOrStdout()
	switch a.cfg.Output {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, line := range out.text() {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}
}
