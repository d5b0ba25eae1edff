package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pacerlabs/pacer/errors"
)

// Config is the application configuration.
type Config struct {
	// Backend selects the engine implementation: "mock" or "replay".
	Backend string
	// Session is the YAML session fixture for the replay backend.
	Session string
	// PollInterval is the memory watch polling interval.
	PollInterval time.Duration
	// Workers is the dispatcher pool size. 1 serializes every engine
	// call; required for engines that forbid concurrent access.
	Workers int
	// CallTimeout bounds each engine call. Zero disables the bound.
	CallTimeout time.Duration
	// LogLevel is the zap level for operator logging: debug, info, warn,
	// error.
	LogLevel string
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Backend:      "mock",
		PollInterval: 500 * time.Millisecond,
		Workers:      4,
		LogLevel:     "info",
	}
}

// fileConfig is the YAML shape of a config file. Durations are strings in
// time.ParseDuration syntax; pointer fields distinguish absent keys from
// explicit zero values.
type fileConfig struct {
	Backend      *string `yaml:"backend"`
	Session      *string `yaml:"session"`
	PollInterval *string `yaml:"poll_interval"`
	Workers      *int    `yaml:"workers"`
	CallTimeout  *string `yaml:"call_timeout"`
	LogLevel     *string `yaml:"log_level"`
}

// Load builds the effective configuration: defaults, overlaid by the YAML
// file at path (if path is non-empty), overlaid by PACER_* environment
// variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(errors.PhaseValidate, errors.KindInvalidInput, err, "read config file")
		}
		if err := cfg.applyFile(data); err != nil {
			return cfg, err
		}
	}

	cfg.Backend = GetEnv("PACER_BACKEND", cfg.Backend)
	cfg.Session = GetEnv("PACER_SESSION", cfg.Session)
	cfg.PollInterval = GetEnvDuration("PACER_POLL_INTERVAL", cfg.PollInterval)
	cfg.Workers = GetEnvInt("PACER_WORKERS", cfg.Workers)
	cfg.CallTimeout = GetEnvDuration("PACER_CALL_TIMEOUT", cfg.CallTimeout)
	cfg.LogLevel = GetEnv("PACER_LOG_LEVEL", cfg.LogLevel)

	return cfg, cfg.validate()
}

func (c *Config) applyFile(data []byte) error {
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return errors.Wrap(errors.PhaseValidate, errors.KindInvalidInput, err, "parse config file")
	}
	if f.Backend != nil {
		c.Backend = *f.Backend
	}
	if f.Session != nil {
		c.Session = *f.Session
	}
	if f.PollInterval != nil {
		d, err := time.ParseDuration(*f.PollInterval)
		if err != nil {
			return errors.Wrap(errors.PhaseValidate, errors.KindInvalidInput, err, "parse poll_interval")
		}
		c.PollInterval = d
	}
	if f.Workers != nil {
		c.Workers = *f.Workers
	}
	if f.CallTimeout != nil {
		d, err := time.ParseDuration(*f.CallTimeout)
		if err != nil {
			return errors.Wrap(errors.PhaseValidate, errors.KindInvalidInput, err, "parse call_timeout")
		}
		c.CallTimeout = d
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	return nil
}

func (c Config) validate() error {
	switch c.Backend {
	case "mock", "replay":
	default:
		return errors.InvalidInput("backend must be \"mock\" or \"replay\", got " + strconv.Quote(c.Backend))
	}
	if c.Backend == "replay" && c.Session == "" {
		return errors.InvalidInput("replay backend requires a session fixture")
	}
	if c.PollInterval <= 0 {
		return errors.InvalidInput("poll_interval must be positive")
	}
	if c.Workers < 1 {
		return errors.InvalidInput("workers must be at least 1")
	}
	return nil
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvInt returns an environment variable as int or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvDuration returns an environment variable as duration or a default value.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
