package readinglist

// SyncConfig holds configuration for the sync engine.
type SyncConfig struct {
	// IntervalSeconds is the periodic sync trigger interval while started.
	IntervalSeconds int `mapstructure:"interval_seconds" default:"15"`
	// DebounceMillis is the delay between a triggering call and the cycle
	// it schedules; bursts of edits within the window coalesce into one pass.
	DebounceMillis int `mapstructure:"debounce_millis" default:"500"`
	// BatchLimit caps the number of in-flight requests per network batch.
	BatchLimit int `mapstructure:"batch_limit" default:"8"`
	// DebugSeed enables the random-data seeding flags.
	DebugSeed bool `mapstructure:"debug_seed" default:"false"`
}

func (c SyncConfig) withDefaults() SyncConfig {
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = 15
	}
	if c.DebounceMillis <= 0 {
		c.DebounceMillis = 500
	}
	if c.BatchLimit <= 0 {
		c.BatchLimit = 8
	}
	return c
}
