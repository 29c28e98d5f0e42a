package database

// Config holds configuration for the local database.
type Config struct {
	// Path is the path to the sqlite database file.
	// The special value ":memory:" opens an in-memory database.
	Path string `mapstructure:"path" default:"reader-sync.db"`
	// BusyTimeoutMillis is the sqlite busy timeout in milliseconds.
	BusyTimeoutMillis int `mapstructure:"busy_timeout_millis" default:"5000"`
}
