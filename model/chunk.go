package model

import "fmt"

// Chunk represents a unit of narrative text.
// Chunks live in the narrative store and are read-only input for curation.
type Chunk struct {
	ID       int64    `json:"id"`
	RawText  string   `json:"raw_text"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Season returns the season number from the chunk metadata if present.
func (c *Chunk) Season() (int, bool) {
	return c.Metadata.Int("season")
}

// Episode returns the episode number from the chunk metadata if present.
func (c *Chunk) Episode() (int, bool) {
	return c.Metadata.Int("episode")
}

// Scene returns the scene number from the chunk metadata if present.
func (c *Chunk) Scene() (int, bool) {
	return c.Metadata.Int("scene")
}

// Label returns a display label like "chunk 42 (s03e05 scene 2)".
// Structural metadata is optional and omitted when missing.
func (c *Chunk) Label() string {
	season, hasSeason := c.Season()
	episode, hasEpisode := c.Episode()
	if !hasSeason || !hasEpisode {
		return fmt.Sprintf("chunk %d", c.ID)
	}
	if scene, ok := c.Scene(); ok {
		return fmt.Sprintf("chunk %d (s%02de%02d scene %d)", c.ID, season, episode, scene)
	}
	return fmt.Sprintf("chunk %d (s%02de%02d)", c.ID, season, episode)
}
