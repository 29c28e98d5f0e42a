// Package config loads the application configuration from environment
// variables and an optional .env file.
//
// Each subsystem owns its partial configuration struct (server, database,
// logger, remote, storage, sync); this package composes them and fills
// defaults from `default` struct tags via reflection. Environment variables
// map onto nested keys with underscores, e.g. SYNC_BATCH_LIMIT -> sync.batch_limit.
package config
