package database

import (
	"testing"

	"github.com/pythagorakase/nexus-sub001/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initChunkHandler(t *testing.T) *ChunksDBHandler {
	database := initDB(t)

	chunksDbHandler, err := NewChunksDBHandler(database, true)
	require.NoError(t, err, "Expected NewChunksDBHandler to not return an error")

	err = chunksDbHandler.InitNarrative()
	require.NoError(t, err, "Expected InitNarrative to not return an error")

	return chunksDbHandler
}

func seedChunk(t *testing.T, handler *ChunksDBHandler, id int64, text string, metadata model.Metadata) {
	chunk := &model.Chunk{ID: id, RawText: text, Metadata: metadata}
	err := handler.InsertChunk(chunk)
	require.NoError(t, err, "Expected InsertChunk to not return an error")
}

func TestChunksNewChunksDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewChunksDBHandler", func(t *testing.T) {
		chunksDbHandler, err := NewChunksDBHandler(database, true)
		assert.NoError(t, err, "Expected NewChunksDBHandler to not return an error")
		require.NotNil(t, chunksDbHandler, "Expected NewChunksDBHandler to return a non-nil instance")
	})

	t.Run("Invalid call NewChunksDBHandler with nil database", func(t *testing.T) {
		_, err := NewChunksDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating ChunksDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestChunksNarrativeExists(t *testing.T) {
	database := initDB(t)

	chunksDbHandler, err := NewChunksDBHandler(database, true)
	require.NoError(t, err)

	t.Run("Narrative exists after seeding init", func(t *testing.T) {
		err := chunksDbHandler.InitNarrative()
		require.NoError(t, err)

		exists, err := chunksDbHandler.NarrativeExists()
		assert.NoError(t, err, "Expected NarrativeExists to not return an error")
		assert.True(t, exists, "Expected the narrative store to exist after InitNarrative")
	})
}

func TestChunksSelect(t *testing.T) {
	chunksDbHandler := initChunkHandler(t)

	seedChunk(t, chunksDbHandler, 10, "Rain on chrome.", model.Metadata{"season": 1, "episode": 1, "scene": 1})
	seedChunk(t, chunksDbHandler, 11, "Neon over the market.", model.Metadata{"season": 1, "episode": 1, "scene": 2})

	t.Run("Select chunk by id", func(t *testing.T) {
		chunk, err := chunksDbHandler.SelectChunk(10)
		assert.NoError(t, err, "Expected SelectChunk to not return an error")
		require.NotNil(t, chunk)
		assert.Equal(t, int64(10), chunk.ID, "Expected chunk IDs to match")
		assert.Equal(t, "Rain on chrome.", chunk.RawText, "Expected raw text to match")

		season, ok := chunk.Season()
		require.True(t, ok, "Expected structural metadata to round-trip")
		assert.Equal(t, 1, season)
	})

	t.Run("Select unknown chunk returns error", func(t *testing.T) {
		_, err := chunksDbHandler.SelectChunk(999999)
		require.Error(t, err, "Expected SelectChunk to return an error for unknown chunk")
		assert.Contains(t, err.Error(), "does not exist")
	})
}

func TestChunksSelectPrevious(t *testing.T) {
	chunksDbHandler := initChunkHandler(t)

	// Non-contiguous ids, previous means highest id strictly below.
	// Chunk 1 is the lowest id seeded anywhere in this package.
	seedChunk(t, chunksDbHandler, 1, "First scene.", nil)
	seedChunk(t, chunksDbHandler, 5, "Second scene.", nil)
	seedChunk(t, chunksDbHandler, 9, "Third scene.", nil)

	t.Run("Previous chunk skips id gaps", func(t *testing.T) {
		previous, err := chunksDbHandler.SelectPreviousChunk(9)
		assert.NoError(t, err, "Expected SelectPreviousChunk to not return an error")
		require.NotNil(t, previous)
		assert.Equal(t, int64(5), previous.ID, "Expected the highest id below 9")
	})

	t.Run("First chunk has no previous", func(t *testing.T) {
		previous, err := chunksDbHandler.SelectPreviousChunk(1)
		assert.NoError(t, err, "Expected no error when no chunk precedes")
		assert.Nil(t, previous, "Expected nil for the first chunk")
	})
}

func TestChunksSelectByEpisode(t *testing.T) {
	chunksDbHandler := initChunkHandler(t)

	seedChunk(t, chunksDbHandler, 40, "Episode one opener.", model.Metadata{"season": 2, "episode": 1})
	seedChunk(t, chunksDbHandler, 42, "Episode one closer.", model.Metadata{"season": 2, "episode": 1})
	seedChunk(t, chunksDbHandler, 41, "Episode two scene.", model.Metadata{"season": 2, "episode": 2})
	seedChunk(t, chunksDbHandler, 43, "Unlabelled scene.", nil)

	t.Run("Select chunks of one episode in ascending order", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksByEpisode(model.EpisodeRef{Season: 2, Episode: 1})
		assert.NoError(t, err, "Expected SelectChunksByEpisode to not return an error")
		require.Len(t, chunks, 2, "Expected exactly the chunks of the episode")
		assert.Equal(t, int64(40), chunks[0].ID)
		assert.Equal(t, int64(42), chunks[1].ID)
	})

	t.Run("Episode without chunks returns empty", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksByEpisode(model.EpisodeRef{Season: 9, Episode: 9})
		assert.NoError(t, err)
		assert.Empty(t, chunks, "Expected no chunks for an unknown episode")
	})

	t.Run("Chunks without metadata never match an episode", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksByEpisode(model.EpisodeRef{Season: 2, Episode: 1})
		assert.NoError(t, err)
		for _, chunk := range chunks {
			assert.NotEqual(t, int64(43), chunk.ID, "Expected the unlabelled chunk to be absent")
		}
	})
}

func TestChunksSelectAllIDs(t *testing.T) {
	chunksDbHandler := initChunkHandler(t)

	seedChunk(t, chunksDbHandler, 52, "Scene b.", nil)
	seedChunk(t, chunksDbHandler, 50, "Scene a.", nil)
	seedChunk(t, chunksDbHandler, 51, "Scene between.", nil)

	t.Run("All chunk ids are ascending", func(t *testing.T) {
		ids, err := chunksDbHandler.SelectAllChunkIDs()
		assert.NoError(t, err, "Expected SelectAllChunkIDs to not return an error")
		require.GreaterOrEqual(t, len(ids), 3, "Expected at least the seeded chunks")

		for i := 1; i < len(ids); i++ {
			assert.Less(t, ids[i-1], ids[i], "Expected strictly ascending chunk ids")
		}
	})
}
