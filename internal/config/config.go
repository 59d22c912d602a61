// Package config provides Viper-based configuration loading for the picker daemon.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/randpick/internal/picker/engine"
)

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxSessions caps concurrent sessions; 0 means unlimited.
	MaxSessions int `mapstructure:"max_sessions"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// HealthConfig holds the gRPC health service settings.
type HealthConfig struct {
	// Enabled turns the health listener on.
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HealthConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// PickerConfig tunes the selection tools handed to every session.
type PickerConfig struct {
	// SpinDuration is how long wheel and team spins animate.
	SpinDuration time.Duration `mapstructure:"spin_duration"`
	// ExtraRevolutions is the number of full turns added to every spin.
	ExtraRevolutions int `mapstructure:"extra_revolutions"`
	// TickCount is the number of shuffle steps in a number or letter roll.
	TickCount int `mapstructure:"tick_count"`
	// TickInterval is the initial delay between shuffle steps.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// NumberHistoryCap bounds the number and letter histories. 0 means unbounded.
	NumberHistoryCap int `mapstructure:"number_history_cap"`
	WheelMinItems    int `mapstructure:"wheel_min_items"`
	WheelMaxItems    int `mapstructure:"wheel_max_items"`
	// DefaultItems seeds every new wheel.
	DefaultItems []string `mapstructure:"default_items"`
	// RosterFile overrides the built-in team roster when set.
	RosterFile string `mapstructure:"roster_file"`
	// ExportDir receives downloaded results and rendered wheels.
	ExportDir string `mapstructure:"export_dir"`
	// Seed makes draws reproducible when non-zero; zero selects crypto/rand.
	Seed uint64 `mapstructure:"seed"`
	// ShareEnabled reports the share capability as available to sessions.
	ShareEnabled bool `mapstructure:"share_enabled"`
}

// Config is the top-level application configuration.
type Config struct {
	Telnet  TelnetConfig  `mapstructure:"telnet"`
	Logging LoggingConfig `mapstructure:"logging"`
	Health  HealthConfig  `mapstructure:"health"`
	Picker  PickerConfig  `mapstructure:"picker"`
}

// problems collects validation failures so every violation is reported at once.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed: %s", strings.Join(p, "; "))
}

func validPort(port int) bool { return port >= 0 && port <= 65535 }

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var p problems
	c.Telnet.validate(&p)
	c.Logging.validate(&p)
	c.Health.validate(&p)
	c.Picker.validate(&p)
	return p.err()
}

func (t TelnetConfig) validate(p *problems) {
	p.check(validPort(t.Port), "telnet.port must be 0-65535, got %d", t.Port)
	p.check(t.ReadTimeout >= 0, "telnet.read_timeout must not be negative")
	p.check(t.WriteTimeout >= 0, "telnet.write_timeout must not be negative")
	p.check(t.MaxSessions >= 0, "telnet.max_sessions must not be negative")
}

func (l LoggingConfig) validate(p *problems) {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		p.check(false, "logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	p.check(l.Format == "json" || l.Format == "console",
		"logging.format must be one of [json, console], got %q", l.Format)
}

// validate skips a disabled health section entirely.
func (h HealthConfig) validate(p *problems) {
	if !h.Enabled {
		return
	}
	p.check(h.Host != "", "health.host must not be empty")
	p.check(validPort(h.Port), "health.port must be 0-65535, got %d", h.Port)
}

func (c PickerConfig) validate(p *problems) {
	p.check(c.SpinDuration > 0, "picker.spin_duration must be positive")
	p.check(c.ExtraRevolutions >= 0, "picker.extra_revolutions must be >= 0, got %d", c.ExtraRevolutions)
	p.check(c.TickCount >= 1, "picker.tick_count must be >= 1, got %d", c.TickCount)
	p.check(c.TickInterval >= engine.MinTickInterval && c.TickInterval <= engine.MaxTickInterval,
		"picker.tick_interval must be %s-%s, got %s", engine.MinTickInterval, engine.MaxTickInterval, c.TickInterval)
	p.check(c.NumberHistoryCap >= 0, "picker.number_history_cap must be >= 0, got %d", c.NumberHistoryCap)
	p.check(c.WheelMinItems >= 1, "picker.wheel_min_items must be >= 1, got %d", c.WheelMinItems)
	p.check(c.WheelMaxItems >= c.WheelMinItems, "picker.wheel_max_items must not be below picker.wheel_min_items")
	n := len(c.DefaultItems)
	p.check(n >= c.WheelMinItems && n <= c.WheelMaxItems,
		"picker.default_items must hold %d-%d labels, got %d", c.WheelMinItems, c.WheelMaxItems, n)
	p.check(c.ExportDir != "", "picker.export_dir must not be empty")
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance carrying the defaults and the RANDPICK_
// environment overrides, with no file attached.
func NewViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with RANDPICK_ prefix
	v.SetEnvPrefix("RANDPICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by defaults alone.
//
// Postcondition: The returned Config passes Validate.
func Default() Config {
	cfg, err := LoadFromViper(NewViper())
	if err != nil {
		panic(fmt.Sprintf("default configuration invalid: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "5m")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.max_sessions", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.host", "127.0.0.1")
	v.SetDefault("health.port", 50051)

	v.SetDefault("picker.spin_duration", engine.DefaultSpinDuration.String())
	v.SetDefault("picker.extra_revolutions", engine.DefaultExtraRevolutions)
	v.SetDefault("picker.tick_count", engine.DefaultTicks)
	v.SetDefault("picker.tick_interval", engine.DefaultTickInterval.String())
	v.SetDefault("picker.number_history_cap", 10)
	v.SetDefault("picker.wheel_min_items", 2)
	v.SetDefault("picker.wheel_max_items", 12)
	v.SetDefault("picker.default_items", []string{"Yes", "No", "Yes", "No"})
	v.SetDefault("picker.roster_file", "")
	v.SetDefault("picker.export_dir", "exports")
	v.SetDefault("picker.seed", 0)
	v.SetDefault("picker.share_enabled", true)
}
