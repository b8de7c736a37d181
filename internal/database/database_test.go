package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	for _, table := range []string{"players", "player_stats", "trainings", "training_players", "court_sessions", "game_results"} {
		t.Run(table, func(t *testing.T) {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			require.NoError(t, err, "Querying for %s table should not produce an error", table)
			assert.Equal(t, table, name)
		})
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	require.NoError(t, Migrate(db), "running migrations twice should be a no-op")

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM court_sessions").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
