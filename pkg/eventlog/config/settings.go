package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/randalmurphal/eventlog/pkg/eventlog/eventtype"
	"github.com/randalmurphal/eventlog/pkg/eventlog/store"
	"github.com/randalmurphal/eventlog/pkg/eventlog/systemtypes"
)

// Settings configures an event logger process.
type Settings struct {
	Log     LogSettings   `yaml:"log" json:"log" envPrefix:"LOG_"`
	Metrics bool          `yaml:"metrics" json:"metrics" env:"METRICS"`
	Tracing bool          `yaml:"tracing" json:"tracing" env:"TRACING"`
	Store   StoreSettings `yaml:"store" json:"store" envPrefix:"STORE_"`
	Seed    SeedSettings  `yaml:"seed" json:"seed" envPrefix:"SEED_"`
}

// LogSettings configures the slog handler.
type LogSettings struct {
	Level  string `yaml:"level" json:"level" env:"LEVEL"`
	Format string `yaml:"format" json:"format" env:"FORMAT"`
}

// StoreSettings selects the persistence sink.
type StoreSettings struct {
	Driver string `yaml:"driver" json:"driver" env:"DRIVER"`
	DSN    string `yaml:"dsn" json:"dsn" env:"DSN"`
	Stream string `yaml:"stream" json:"stream" env:"STREAM"`
}

// SeedSettings selects the event type catalog.
type SeedSettings struct {
	// Path is a YAML catalog file. Empty uses the built-in system types.
	Path string `yaml:"path" json:"path" env:"PATH"`
	// Version is a semver constraint, e.g. "^1.2".
	Version string `yaml:"version" json:"version" env:"VERSION"`
}

// Default returns settings for an in-memory store with info-level text logs.
func Default() Settings {
	return Settings{
		Log:   LogSettings{Level: "info", Format: "text"},
		Store: StoreSettings{Driver: store.DriverMemory},
	}
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate reports every invalid setting.
func (s Settings) Validate() error {
	var errs []error

	if !slices.Contains(logLevels, strings.ToLower(s.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q: want one of %v", s.Log.Level, logLevels))
	}
	if !slices.Contains(logFormats, strings.ToLower(s.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format %q: want one of %v", s.Log.Format, logFormats))
	}

	switch s.Store.Driver {
	case store.DriverMemory, store.DriverSQLite:
	case store.DriverPostgres, store.DriverPgx, store.DriverRedis:
		if s.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for driver %q", s.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q: want one of %v", s.Store.Driver, store.Drivers()))
	}

	if s.Seed.Version != "" {
		if _, err := semver.NewConstraint(s.Seed.Version); err != nil {
			errs = append(errs, fmt.Errorf("seed.version %q: %w", s.Seed.Version, err))
		}
	}

	return errors.Join(errs...)
}

// StoreOptions converts the store settings for store.Open.
func (s Settings) StoreOptions() store.Options {
	return store.Options{
		Driver: s.Store.Driver,
		DSN:    s.Store.DSN,
		Stream: s.Store.Stream,
	}
}

// Registry loads the configured catalog and checks its version.
func (s Settings) Registry() (*eventtype.Registry, error) {
	reg := systemtypes.Registry()
	if s.Seed.Path != "" {
		var err error
		if reg, err = eventtype.LoadSeedFile(s.Seed.Path); err != nil {
			return nil, err
		}
	}
	if s.Seed.Version != "" {
		if err := reg.CheckVersion(s.Seed.Version); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// SlogLevel parses the configured level. Unknown values are info.
func (l LogSettings) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewSlogLogger builds a logger writing to w in the configured format.
func NewSlogLogger(l LogSettings, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
