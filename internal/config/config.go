// Package config loads bestia settings from an HCL file, the environment
// and an optional .env file, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/lox/bestia/internal/money"
	"github.com/lox/bestia/internal/store"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "bestia.hcl"

// Config is the complete bestia configuration.
type Config struct {
	Game    GameSettings
	Storage StorageSettings
	Log     LogSettings
}

// GameSettings seeds new sessions and controls money display.
type GameSettings struct {
	DefaultStake string `hcl:"default_stake,optional" env:"BESTIA_DEFAULT_STAKE"`
	Currency     string `hcl:"currency,optional" env:"BESTIA_CURRENCY"`
	Locale       string `hcl:"locale,optional" env:"BESTIA_LOCALE"`
	Seed         int64  `hcl:"seed,optional" env:"BESTIA_SEED"`
}

// StorageSettings selects where sessions are persisted.
type StorageSettings struct {
	Driver  string `hcl:"driver,optional" env:"BESTIA_STORAGE_DRIVER"`
	Path    string `hcl:"path,optional" env:"BESTIA_STORAGE_PATH"`
	DSN     string `hcl:"dsn,optional" env:"BESTIA_STORAGE_DSN"`
	Session string `hcl:"session,optional" env:"BESTIA_SESSION"`
}

// LogSettings controls the logger.
type LogSettings struct {
	Level string `hcl:"level,optional" env:"BESTIA_LOG_LEVEL"`
	File  string `hcl:"file,optional" env:"BESTIA_LOG_FILE"`
}

// fileConfig mirrors the HCL layout; every block is optional.
type fileConfig struct {
	Game    *GameSettings    `hcl:"game,block"`
	Storage *StorageSettings `hcl:"storage,block"`
	Log     *LogSettings     `hcl:"log,block"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Game: GameSettings{
			Currency: "€",
			Locale:   "it",
		},
		Storage: StorageSettings{
			Driver:  store.DriverFile,
			Session: store.DefaultSession,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// LoadFile reads filename over the defaults. A missing file yields the
// defaults.
func LoadFile(filename string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if g := fc.Game; g != nil {
		setString(&cfg.Game.DefaultStake, g.DefaultStake)
		setString(&cfg.Game.Currency, g.Currency)
		setString(&cfg.Game.Locale, g.Locale)
		if g.Seed != 0 {
			cfg.Game.Seed = g.Seed
		}
	}
	if s := fc.Storage; s != nil {
		setString(&cfg.Storage.Driver, s.Driver)
		setString(&cfg.Storage.Path, s.Path)
		setString(&cfg.Storage.DSN, s.DSN)
		setString(&cfg.Storage.Session, s.Session)
	}
	if l := fc.Log; l != nil {
		setString(&cfg.Log.Level, l.Level)
		setString(&cfg.Log.File, l.File)
	}
	return cfg, nil
}

// Load reads filename and then applies BESTIA_* environment overrides.
func Load(filename string) (*Config, error) {
	cfg, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	var present []string
	for _, name := range filenames {
		if _, err := os.Stat(name); err == nil {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load %s: %w", strings.Join(present, ", "), err)
	}
	return nil
}

// Validate checks the configuration for values the program cannot use.
func (c *Config) Validate() error {
	if !slices.Contains(store.Drivers(), strings.ToLower(c.Storage.Driver)) {
		return fmt.Errorf("invalid storage driver %q (want one of %s)",
			c.Storage.Driver, strings.Join(store.Drivers(), ", "))
	}
	if strings.EqualFold(c.Storage.Driver, store.DriverPostgres) && strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("storage driver postgres requires a dsn")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	if _, err := c.DefaultStake(); err != nil {
		return err
	}
	return nil
}

// DefaultStake parses the configured stake. A blank setting yields zero.
func (c *Config) DefaultStake() (money.Amount, error) {
	raw := strings.TrimSpace(c.Game.DefaultStake)
	if raw == "" {
		return 0, nil
	}
	stake, err := money.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid default stake %q: %w", raw, err)
	}
	if stake < 0 {
		return 0, fmt.Errorf("invalid default stake %q: negative", raw)
	}
	return stake, nil
}

// HasDefaultStake reports whether a default stake is configured.
func (c *Config) HasDefaultStake() bool {
	return strings.TrimSpace(c.Game.DefaultStake) != ""
}

// LogLevel returns the parsed log level, falling back to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// StoreOptions returns the store options described by the storage block.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Driver:  c.Storage.Driver,
		Path:    c.Storage.Path,
		DSN:     c.Storage.DSN,
		Session: c.Storage.Session,
	}
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}
