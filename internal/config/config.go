// Package config loads the CLI driver's run-time knobs (time budget,
// strictness, seed, logging) from a config file, environment variables, and
// flags, the way the rest of this retrieval pack's API services do it.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config mirrors generate_schedule's parameters plus driver-level settings
// that never belong in the core engine's public surface.
type Config struct {
	TimeLimitSeconds float64 `mapstructure:"time_limit_seconds"`
	Strictness       int     `mapstructure:"strictness"`
	Seed             uint64  `mapstructure:"seed"`
	LogLevel         string  `mapstructure:"log_level"`
	OutputFormat     string  `mapstructure:"output_format"`
}

// Default returns the engine's documented defaults: unbounded time, STRICT
// strictness, seed 0.
func Default() Config {
	return Config{
		TimeLimitSeconds: 0,
		Strictness:       1,
		Seed:             0,
		LogLevel:         "info",
		OutputFormat:     "json",
	}
}

// Load reads configFile (if non-empty), TIMETABLE_-prefixed environment
// variables, and any flags bound on the global viper instance, falling back
// to Default() for anything unset.
func Load(configFile string) (Config, error) {
	cfg := Default()

	v := viper.GetViper()
	v.SetEnvPrefix("TIMETABLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("time_limit_seconds", cfg.TimeLimitSeconds)
	v.SetDefault("strictness", cfg.Strictness)
	v.SetDefault("seed", cfg.Seed)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("output_format", cfg.OutputFormat)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
