// Package config loads MALDIView settings from maldiview.toml, .env and
// MALDIVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ChrisMcGann/MALDIView/pkg/params"
	"github.com/ChrisMcGann/MALDIView/pkg/writer/figure"
)

const (
	envPrefix         = "MALDIVIEW"
	defaultConfigName = "maldiview"
)

type Config struct {
	LowerLimit  float64 `mapstructure:"lower_limit"`
	UpperLimit  float64 `mapstructure:"upper_limit"`
	UseFilter   bool    `mapstructure:"use_filter"`
	FilterSigma int     `mapstructure:"filter_sigma"`

	PlotWidth  int    `mapstructure:"plot_width"`
	PlotHeight int    `mapstructure:"plot_height"`
	LogLevel   string `mapstructure:"log_level"`
}

// Loader wraps a viper instance so the watch command can re-read the same
// configuration file.
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader. An explicit path wins; otherwise the
// configuration name comes from MALDIVIEW_CONFIG_NAME (default "maldiview")
// and is searched for in "config" and ".".
func NewLoader(path string) *Loader {
	// Load .env if present
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("lower_limit", params.DefaultLowerLimit)
	v.SetDefault("upper_limit", params.DefaultUpperLimit)
	v.SetDefault("use_filter", params.DefaultUseFilter)
	v.SetDefault("filter_sigma", params.DefaultFilterSigma)
	v.SetDefault("plot_width", figure.DefaultWidth)
	v.SetDefault("plot_height", figure.DefaultHeight)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		configName := defaultConfigName
		if name := os.Getenv(envPrefix + "_CONFIG_NAME"); name != "" {
			configName = name
		}
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath("config")
		v.AddConfigPath(".")
	}

	return &Loader{v: v}
}

// Load reads the configuration. A missing configuration file is not an
// error when no explicit path was given; defaults and environment apply.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Debug("No config file found, using defaults")
	} else {
		log.WithField("file", l.v.ConfigFileUsed()).Debug("Config file loaded")
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// File returns the configuration file in use, or "" if none was found.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the re-read configuration every time the
// configuration file changes. Read errors are logged and skipped. The
// callback runs on viper's watcher goroutine.
func (l *Loader) Watch(onChange func(*Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg := &Config{}
		if err := l.v.Unmarshal(cfg); err != nil {
			log.WithError(err).WithField("file", e.Name).Warn("Ignoring invalid config change")
			return
		}
		log.WithField("file", e.Name).Info("Config changed")
		onChange(cfg)
	})
	l.v.WatchConfig()
}

// Params converts the parameter fields into a snapshot.
func (c *Config) Params() params.Snapshot {
	return params.Snapshot{
		LowerLimit:  c.LowerLimit,
		UpperLimit:  c.UpperLimit,
		UseFilter:   c.UseFilter,
		FilterSigma: c.FilterSigma,
	}
}

// FigureOptions returns the panel size for the figure writer.
func (c *Config) FigureOptions() figure.Options {
	return figure.Options{Width: c.PlotWidth, Height: c.PlotHeight}
}

// ApplyLogging sets the logrus level from the config. An unknown level
// keeps the current one and logs a warning.
func (c *Config) ApplyLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("Unknown log level, keeping current")
		return
	}
	log.SetLevel(level)
}
