package sql

import (
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	db := initDB(t)

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		// Verify pgvector extension is created
		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgvector extension should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		// Running Init multiple times should not error
		err := Init(db.Instance)
		assert.NoError(t, err)

		err = Init(db.Instance)
		assert.NoError(t, err)
	})
}

func TestLoadZonesSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load zones SQL functions", func(t *testing.T) {
		err := LoadZonesSql(db.Instance, false)
		assert.NoError(t, err)

		// Verify all functions exist
		for _, funcName := range ZonesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load zones SQL is idempotent without force", func(t *testing.T) {
		// Loading again without force should be a no-op
		err := LoadZonesSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load zones SQL with force reloads", func(t *testing.T) {
		err := LoadZonesSql(db.Instance, true)
		assert.NoError(t, err)

		for _, funcName := range ZonesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist after force reload", funcName)
		}
	})
}

func TestLoadPlacesSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load places SQL functions", func(t *testing.T) {
		err := LoadPlacesSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range PlacesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load places SQL is idempotent without force", func(t *testing.T) {
		err := LoadPlacesSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load places SQL with force reloads", func(t *testing.T) {
		err := LoadPlacesSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestLoadChunksSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load chunks SQL functions", func(t *testing.T) {
		err := LoadChunksSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range ChunksFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load chunks SQL is idempotent without force", func(t *testing.T) {
		err := LoadChunksSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load chunks SQL with force reloads", func(t *testing.T) {
		err := LoadChunksSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestLoadReferencesSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load references SQL functions", func(t *testing.T) {
		err := LoadReferencesSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range ReferencesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load references SQL is idempotent without force", func(t *testing.T) {
		err := LoadReferencesSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load references SQL with force reloads", func(t *testing.T) {
		err := LoadReferencesSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestLoadAllSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load all SQL functions", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)

		allFunctions := [][]string{ZonesFunctions, PlacesFunctions, ChunksFunctions, ReferencesFunctions}
		for _, functions := range allFunctions {
			for _, funcName := range functions {
				var exists bool
				err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
				require.NoError(t, err)
				assert.True(t, exists, "Function %s should exist", funcName)
			}
		}
	})

	t.Run("Load all SQL is idempotent without force", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load all SQL with force reloads", func(t *testing.T) {
		err := LoadAllSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestCheckFunctions(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Check functions returns false when functions don't exist", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{"nonexistent_function"})
		assert.NoError(t, err)
		assert.False(t, exists, "Should return false for nonexistent function")
	})

	t.Run("Check functions returns true when all functions exist", func(t *testing.T) {
		// Load zones SQL first
		err := LoadZonesSql(db.Instance, false)
		require.NoError(t, err)

		exists, err := checkFunctions(db.Instance, ZonesFunctions)
		assert.NoError(t, err)
		assert.True(t, exists, "Should return true when all functions exist")
	})

	t.Run("Check functions returns false when some functions don't exist", func(t *testing.T) {
		// Mix of existing and non-existing functions
		mixedFunctions := append([]string{"init_zones"}, "nonexistent_function")
		exists, err := checkFunctions(db.Instance, mixedFunctions)
		assert.NoError(t, err)
		assert.False(t, exists, "Should return false when some functions don't exist")
	})

	t.Run("Check functions with empty list", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{})
		assert.NoError(t, err)
		// With an empty list, the loop doesn't execute and allExist remains false
		assert.False(t, exists, "Should return false for empty function list")
	})
}

func TestFunctionLists(t *testing.T) {
	t.Run("ZonesFunctions list is not empty", func(t *testing.T) {
		assert.NotEmpty(t, ZonesFunctions, "ZonesFunctions should not be empty")
		assert.Greater(t, len(ZonesFunctions), 3, "Should have multiple zone functions")
	})

	t.Run("PlacesFunctions list is not empty", func(t *testing.T) {
		assert.NotEmpty(t, PlacesFunctions, "PlacesFunctions should not be empty")
		assert.Greater(t, len(PlacesFunctions), 5, "Should have multiple place functions")
	})

	t.Run("ChunksFunctions list is not empty", func(t *testing.T) {
		assert.NotEmpty(t, ChunksFunctions, "ChunksFunctions should not be empty")
		assert.Greater(t, len(ChunksFunctions), 5, "Should have multiple chunk functions")
	})

	t.Run("ReferencesFunctions list is not empty", func(t *testing.T) {
		assert.NotEmpty(t, ReferencesFunctions, "ReferencesFunctions should not be empty")
		assert.Greater(t, len(ReferencesFunctions), 3, "Should have multiple reference functions")
	})
}

func TestEmbeddedSQL(t *testing.T) {
	t.Run("Init SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, initSQL, "initSQL should be embedded")
		assert.Contains(t, initSQL, "CREATE EXTENSION", "Should contain CREATE EXTENSION")
	})

	t.Run("Zones SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, zonesSQL, "zonesSQL should be embedded")
		assert.Contains(t, zonesSQL, "CREATE", "Should contain CREATE statements")
	})

	t.Run("Places SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, placesSQL, "placesSQL should be embedded")
		assert.Contains(t, placesSQL, "CREATE", "Should contain CREATE statements")
	})

	t.Run("Chunks SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, chunksSQL, "chunksSQL should be embedded")
		assert.Contains(t, chunksSQL, "CREATE", "Should contain CREATE statements")
	})

	t.Run("References SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, referencesSQL, "referencesSQL should be embedded")
		assert.Contains(t, referencesSQL, "CREATE", "Should contain CREATE statements")
	})
}
