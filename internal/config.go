package internal

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/phuslu/log"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a store and the tools that open one.
type Config struct {
	Dir                 string  `yaml:"dir"`
	CompactionThreshold float64 `yaml:"compaction_threshold"`
	SyncWrites          bool    `yaml:"sync_writes"`
	LogLevel            string  `yaml:"log_level"`

	// Logger overrides the logger built from LogLevel.
	Logger *log.Logger `yaml:"-"`
}

const DEFAULT_DIR = "./"
const DEFAULT_LOG_LEVEL = "warn"

// Compaction runs once dead entries exceed this fraction of live keys.
const (
	DEFAULT_GARBAGE_RATIO = 0.4
	MIN_GARBAGE_RATIO     = 0.1
	MAX_GARBAGE_RATIO     = 4.0
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Dir:                 DEFAULT_DIR,
		CompactionThreshold: DEFAULT_GARBAGE_RATIO,
		SyncWrites:          false,
		LogLevel:            DEFAULT_LOG_LEVEL,
	}
}

// LoadConfig starts from DefaultConfig, overlays the YAML file at path when
// one is given and finally applies KVS_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides allows environment variables to override file values
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("KVS_DIR"); v != "" {
		cfg.Dir = v
	}
	if v := os.Getenv("KVS_COMPACTION_THRESHOLD"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid KVS_COMPACTION_THRESHOLD value: %w", err)
		}
		cfg.CompactionThreshold = ratio
	}
	if v := os.Getenv("KVS_SYNC_WRITES"); v != "" {
		sync, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid KVS_SYNC_WRITES value: %w", err)
		}
		cfg.SyncWrites = sync
	}
	if v := os.Getenv("KVS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Validate reports the first setting that is missing or out of range.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("data directory must not be empty")
	}
	if c.CompactionThreshold < MIN_GARBAGE_RATIO || c.CompactionThreshold > MAX_GARBAGE_RATIO {
		return fmt.Errorf("compaction threshold %v outside [%v, %v]", c.CompactionThreshold, MIN_GARBAGE_RATIO, MAX_GARBAGE_RATIO)
	}
	if !validLogLevel(c.LogLevel) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

func validLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
		return true
	}
	return false
}

// NewLogger builds a console logger writing to w at the given level.
func NewLogger(level string, w io.Writer) *log.Logger {
	return &log.Logger{
		Level:  log.ParseLevel(strings.ToLower(level)),
		Writer: &log.ConsoleWriter{Writer: w},
	}
}

// ResolveLogger returns the configured logger, or a stderr console logger
// at LogLevel when none was provided.
func (c *Config) ResolveLogger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return NewLogger(c.LogLevel, os.Stderr)
}
