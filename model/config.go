package model

import "fmt"

// RunConfig represents configuration for a curation run.
type RunConfig struct {
	// Chunk selection, exactly one of ChunkIDs, Episode or All is set
	ChunkIDs []int64     `json:"chunk_ids,omitempty"`
	Episode  *EpisodeRef `json:"episode,omitempty"`
	All      bool        `json:"all"`

	// Run behaviour
	TestMode  bool `json:"test_mode"` // print assembled payloads instead of calling the service
	Overwrite bool `json:"overwrite"` // reprocess chunks that already have references

	// Reasoning service parameters
	Model            string `json:"model"`
	InstructionsPath string `json:"instructions_path"`

	// Optional near-duplicate warning for new place names
	EmbeddingAssist bool `json:"embedding_assist"`
}

// DefaultRunConfig returns a sensible default configuration
func DefaultRunConfig() RunConfig {
	return RunConfig{
		TestMode:         false,
		Overwrite:        false,
		Model:            "gpt-4o",
		InstructionsPath: "prompts/place_extraction.md",
		EmbeddingAssist:  false,
	}
}

// Validate checks that exactly one chunk selection mode is set.
func (c *RunConfig) Validate() error {
	modes := 0
	if len(c.ChunkIDs) > 0 {
		modes++
	}
	if c.Episode != nil {
		modes++
	}
	if c.All {
		modes++
	}
	if modes != 1 {
		return fmt.Errorf("exactly one chunk selection is required, got %d", modes)
	}
	return nil
}
