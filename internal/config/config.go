// Package config loads ringlock settings from defaults, an optional YAML
// file, RINGLOCK_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/phinze/ringlock/internal/paint"
	"github.com/phinze/ringlock/internal/state"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "RINGLOCK"

// Config holds the lock screen settings.
type Config struct {
	Color       string `mapstructure:"color" yaml:"color"`
	VerifyColor string `mapstructure:"verify_color" yaml:"verify_color"`
	WrongColor  string `mapstructure:"wrong_color" yaml:"wrong_color"`
	IdleColor   string `mapstructure:"idle_color" yaml:"idle_color"`

	Use24Hour          bool `mapstructure:"use_24_hour" yaml:"use_24_hour"`
	UnlockIndicator    bool `mapstructure:"unlock_indicator" yaml:"unlock_indicator"`
	ShowFailedAttempts bool `mapstructure:"show_failed_attempts" yaml:"show_failed_attempts"`

	Image string `mapstructure:"image" yaml:"image"`

	// Tile has no effect without Image.
	Tile bool `mapstructure:"tile" yaml:"tile"`

	// DPI overrides the density reported by the display when positive.
	DPI float64 `mapstructure:"dpi" yaml:"dpi"`

	Debug bool `mapstructure:"debug" yaml:"debug"`
}

var defaults = map[string]any{
	"color":                "ffffff",
	"verify_color":         "0072ff",
	"wrong_color":          "fa0000",
	"idle_color":           "000000",
	"use_24_hour":          false,
	"unlock_indicator":     true,
	"show_failed_attempts": false,
	"image":                "",
	"tile":                 false,
	"dpi":                  0.0,
	"debug":                false,
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags registers the settings as flags on fs and binds them to v, so
// a flag set on the command line wins over file and environment values.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String("color", defaults["color"].(string), "background color (rrggbb)")
	fs.String("verify-color", defaults["verify_color"].(string), "indicator color while verifying (rrggbb)")
	fs.String("wrong-color", defaults["wrong_color"].(string), "indicator color after a wrong password (rrggbb)")
	fs.String("idle-color", defaults["idle_color"].(string), "indicator color while idle (rrggbb)")
	fs.Bool("use-24-hour", false, "show the clock in 24-hour format")
	fs.Bool("unlock-indicator", true, "draw the unlock indicator")
	fs.Bool("show-failed-attempts", false, "show the number of failed attempts")
	fs.String("image", "", "background image (PNG, JPEG or SVG)")
	fs.Bool("tile", false, "tile the background image")
	fs.Float64("dpi", 0, "override the display density")
	fs.Bool("debug", false, "enable debug logging")

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if _, ok := defaults[key]; !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("failed to bind flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Load reads the config file (path, or the default location when empty),
// decodes all sources and validates the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultDir is where the config file is looked up when no path is given.
func DefaultDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "ringlock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "ringlock")
}

// Validate checks color formats and numeric ranges.
func (c Config) Validate() error {
	var errs []error
	for name, spec := range map[string]string{
		"color":        c.Color,
		"verify_color": c.VerifyColor,
		"wrong_color":  c.WrongColor,
		"idle_color":   c.IdleColor,
	} {
		if !paint.Valid(spec) {
			errs = append(errs, fmt.Errorf("%s %q is not in rrggbb format", name, spec))
		}
	}
	if c.DPI < 0 {
		errs = append(errs, fmt.Errorf("dpi must not be negative, got %g", c.DPI))
	}
	return errors.Join(errs...)
}

// Palette returns the parsed colors.
func (c Config) Palette() state.Palette {
	return state.Palette{
		Background: paint.Parse(c.Color),
		Verify:     paint.Parse(c.VerifyColor),
		Wrong:      paint.Parse(c.WrongColor),
		Idle:       paint.Parse(c.IdleColor),
	}
}

// Dump renders the effective configuration as YAML.
func Dump(c Config) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return out, nil
}
