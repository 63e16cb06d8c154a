package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRunConfig(t *testing.T) {
	t.Run("Returns correct default values", func(t *testing.T) {
		config := DefaultRunConfig()

		assert.False(t, config.TestMode, "Default TestMode should be false")
		assert.False(t, config.Overwrite, "Default Overwrite should be false")
		assert.Equal(t, "gpt-4o", config.Model, "Default Model should be gpt-4o")
		assert.Equal(t, "prompts/place_extraction.md", config.InstructionsPath, "Default InstructionsPath should point to the shipped template")
		assert.False(t, config.EmbeddingAssist, "Default EmbeddingAssist should be false")
		assert.Nil(t, config.ChunkIDs, "Default ChunkIDs should be nil")
		assert.Nil(t, config.Episode, "Default Episode should be nil")
		assert.False(t, config.All, "Default All should be false")
	})

	t.Run("Can be modified after creation", func(t *testing.T) {
		config := DefaultRunConfig()

		config.Model = "gpt-4o-mini"
		config.TestMode = true
		config.ChunkIDs = []int64{5, 7, 9}

		assert.Equal(t, "gpt-4o-mini", config.Model)
		assert.True(t, config.TestMode)
		assert.Equal(t, []int64{5, 7, 9}, config.ChunkIDs)
	})
}

func TestRunConfigValidate(t *testing.T) {
	t.Run("Valid with chunk ids only", func(t *testing.T) {
		config := DefaultRunConfig()
		config.ChunkIDs = []int64{5}

		err := config.Validate()
		assert.NoError(t, err, "Expected a single chunk id selection to be valid")
	})

	t.Run("Valid with episode only", func(t *testing.T) {
		config := DefaultRunConfig()
		config.Episode = &EpisodeRef{Season: 3, Episode: 5}

		err := config.Validate()
		assert.NoError(t, err, "Expected an episode selection to be valid")
	})

	t.Run("Valid with all only", func(t *testing.T) {
		config := DefaultRunConfig()
		config.All = true

		err := config.Validate()
		assert.NoError(t, err, "Expected the all selection to be valid")
	})

	t.Run("Invalid without any selection", func(t *testing.T) {
		config := DefaultRunConfig()

		err := config.Validate()
		require.Error(t, err, "Expected a config without a selection to be invalid")
		assert.Contains(t, err.Error(), "exactly one chunk selection")
	})

	t.Run("Invalid with two selections", func(t *testing.T) {
		config := DefaultRunConfig()
		config.ChunkIDs = []int64{5}
		config.All = true

		err := config.Validate()
		require.Error(t, err, "Expected a config with two selections to be invalid")
	})

	t.Run("Invalid with all three selections", func(t *testing.T) {
		config := DefaultRunConfig()
		config.ChunkIDs = []int64{5}
		config.Episode = &EpisodeRef{Season: 1, Episode: 1}
		config.All = true

		err := config.Validate()
		require.Error(t, err, "Expected a config with three selections to be invalid")
	})
}
