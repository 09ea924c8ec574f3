package core

import (
	"github.com/phuslu/log"

	"github.com/0xRadioAc7iv/go-kvs/internal"
)

// Option configures a Store opened with Open.
type Option func(*internal.Config)

// WithCompactionThreshold sets the dead/live ratio above which the log is
// compacted.
func WithCompactionThreshold(ratio float64) Option {
	return func(c *internal.Config) {
		c.CompactionThreshold = ratio
	}
}

// WithSyncWrites makes every Set and Remove fsync the datafile.
func WithSyncWrites(sync bool) Option {
	return func(c *internal.Config) {
		c.SyncWrites = sync
	}
}

// WithLogger replaces the logger built from the configured log level.
func WithLogger(logger *log.Logger) Option {
	return func(c *internal.Config) {
		c.Logger = logger
	}
}

// WithConfig copies tuning from a loaded config. The directory passed to
// Open always wins over cfg.Dir.
func WithConfig(cfg *internal.Config) Option {
	return func(c *internal.Config) {
		c.CompactionThreshold = cfg.CompactionThreshold
		c.SyncWrites = cfg.SyncWrites
		c.LogLevel = cfg.LogLevel
		if cfg.Logger != nil {
			c.Logger = cfg.Logger
		}
	}
}
