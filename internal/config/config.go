// Package config loads settings for the tempo command from a TOML or YAML
// file, a .env file, and TEMPO_* environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/theory/tempo/temporal/round"
	"github.com/theory/tempo/temporal/tz"
	"gopkg.in/yaml.v3"
)

// ErrConfig wraps configuration errors.
var ErrConfig = errors.New("config")

// EnvPrefix prefixes the environment variables that override file settings.
const EnvPrefix = "TEMPO_"

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds the tempo settings. Empty strings select defaults.
type Config struct {
	// Zone is the default time zone for values without one.
	Zone string `toml:"zone" yaml:"zone"`

	// Disambiguation is the default gap and fold policy.
	Disambiguation string `toml:"disambiguation" yaml:"disambiguation"`

	// RoundingMode overrides the default mode of each rounding operation.
	RoundingMode string `toml:"rounding_mode" yaml:"rounding_mode"`

	// Output is text, json, or yaml.
	Output string `toml:"output" yaml:"output"`

	// ZoneInfoDir loads zones from a zoneinfo directory instead of the
	// system database.
	ZoneInfoDir string `toml:"zoneinfo_dir" yaml:"zoneinfo_dir"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Zone:           "UTC",
		Disambiguation: tz.Compatible.String(),
		Output:         OutputText,
		LogLevel:       "warn",
	}
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	dotenv string
	lookup func(string) (string, bool)
}

// WithDotEnv reads variables from the .env file at path. Missing files are
// ignored. Variables set in the environment take precedence.
func WithDotEnv(path string) Option {
	return func(l *loader) { l.dotenv = path }
}

// WithLookup replaces os.LookupEnv as the source of environment variables.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(l *loader) { l.lookup = lookup }
}

// Load returns the default configuration overlaid with the file at path, if
// path is not empty, and then with TEMPO_* variables. The file format is
// chosen by extension: .toml, .yaml, or .yml. The result is validated.
func Load(path string, opt ...Option) (Config, error) {
	l := loader{lookup: os.LookupEnv}
	for _, o := range opt {
		o(&l)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return cfg, err
		}
	}

	lookup := l.lookup
	if l.dotenv != "" {
		env, err := godotenv.Read(l.dotenv)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		lookup = func(key string) (string, bool) {
			if v, ok := l.lookup(key); ok {
				return v, true
			}
			v, ok := env[key]
			return v, ok
		}
	}
	cfg.applyEnv(lookup)

	return cfg, cfg.Validate()
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), c)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return fmt.Errorf("%w: %s: unknown key %q", ErrConfig, path, undec[0].String())
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
		}
	default:
		return fmt.Errorf("%w: %s: unsupported file extension %q", ErrConfig, path, ext)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	for key, field := range map[string]*string{
		"ZONE":           &c.Zone,
		"DISAMBIGUATION": &c.Disambiguation,
		"ROUNDING_MODE":  &c.RoundingMode,
		"OUTPUT":         &c.Output,
		"ZONEINFO_DIR":   &c.ZoneInfoDir,
		"LOG_LEVEL":      &c.LogLevel,
	} {
		if v, ok := lookup(EnvPrefix + key); ok {
			*field = strings.TrimSpace(v)
		}
	}
}

// Validate checks every setting except the zone, which is only loaded when
// needed.
func (c Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("%w: disambiguation: %w", ErrConfig, err)
	}
	if _, _, err := c.Mode(); err != nil {
		return fmt.Errorf("%w: rounding_mode: %w", ErrConfig, err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrConfig, err)
	}
	switch c.Output {
	case "", OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("%w: output: unknown format %q", ErrConfig, c.Output)
	}
	return nil
}

// Policy returns the disambiguation policy, tz.Compatible by default.
func (c Config) Policy() (tz.Disambiguation, error) {
	if c.Disambiguation == "" {
		return tz.Compatible, nil
	}
	return tz.ParseDisambiguation(c.Disambiguation)
}

// Mode returns the configured rounding mode and true, or false if none is
// set.
func (c Config) Mode() (round.Mode, bool, error) {
	if c.RoundingMode == "" {
		return 0, false, nil
	}
	m, err := round.ParseMode(c.RoundingMode)
	return m, err == nil, err
}

// Level returns the log level, slog.LevelWarn by default.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	err := lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl, err
}

// Database returns the time zone database: the zoneinfo directory if one is
// configured, and tz.System otherwise.
func (c Config) Database() *tz.LocationDB {
	if c.ZoneInfoDir != "" {
		return tz.NewLocationDB(tz.WithZoneInfoDir(c.ZoneInfoDir))
	}
	return tz.System()
}

// TimeZone loads the default zone from db.
func (c Config) TimeZone(db tz.Provider) (tz.TimeZone, error) {
	name := c.Zone
	if name == "" {
		name = "UTC"
	}
	return tz.Load(db, name)
}
