package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("In Memory", func(t *testing.T) {
		db, err := Connect(Config{Path: ":memory:"})
		require.NoError(t, err)
		require.NotNil(t, db)

		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.NoError(t, sqlDB.Ping())
	})

	t.Run("Defaults Applied", func(t *testing.T) {
		db, err := Connect(Config{Path: ":memory:", BusyTimeoutMillis: -1})
		require.NoError(t, err)
		assert.NotNil(t, db)
	})
}
