package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pythagorakase/nexus-sub001/helper"
	"github.com/pythagorakase/nexus-sub001/model"
	loadSql "github.com/pythagorakase/nexus-sub001/sql"
)

// ChunksDBHandlerFunctions defines the interface for narrative chunk database operations.
type ChunksDBHandlerFunctions interface {
	NarrativeExists() (bool, error)
	InitNarrative() error
	InsertChunk(chunk *model.Chunk) error
	SelectChunk(id int64) (*model.Chunk, error)
	SelectPreviousChunk(id int64) (*model.Chunk, error)
	SelectChunksByEpisode(episode model.EpisodeRef) ([]*model.Chunk, error)
	SelectAllChunkIDs() ([]int64, error)
}

// ChunksDBHandler handles narrative chunk database operations.
// The narrative store is consumed external state, the curation path only
// reads it. InitNarrative and InsertChunk exist for test and demo seeding
// and are never called by the handler constructor.
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
// Unlike the other handlers it does not create its table, the narrative
// store belongs to another system.
func NewChunksDBHandler(db *helper.Database, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// NarrativeExists reports whether the narrative chunk table is present.
// Used as a pre-flight check before a curation run.
func (h *ChunksDBHandler) NarrativeExists() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var exists bool
	err := h.db.Instance.QueryRowContext(ctx, `SELECT narrative_exists();`).Scan(&exists)
	if err != nil {
		return false, helper.NewError("scan", err)
	}

	return exists, nil
}

// InitNarrative creates the 'narrative_chunks' table for seeding.
// Only tests and the demo call this, production narrative data arrives
// through another system.
func (h *ChunksDBHandler) InitNarrative() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_narrative();`)
	if err != nil {
		return helper.NewError("exec", err)
	}

	h.db.Logger.Info("Checked/created table narrative_chunks")

	return nil
}

// InsertChunk inserts a narrative chunk, seeding only
func (h *ChunksDBHandler) InsertChunk(chunk *model.Chunk) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_chunk($1, $2, $3)`,
		chunk.ID,
		chunk.RawText,
		chunk.Metadata,
	)

	err := row.Scan(
		&chunk.ID,
		&chunk.RawText,
		&chunk.Metadata,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectChunk retrieves a chunk by ID
func (h *ChunksDBHandler) SelectChunk(id int64) (*model.Chunk, error) {
	chunk := &model.Chunk{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk($1)`,
		id,
	)

	err := row.Scan(
		&chunk.ID,
		&chunk.RawText,
		&chunk.Metadata,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewError("select chunk", fmt.Errorf("chunk %d does not exist", id))
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectPreviousChunk retrieves the chunk with the highest ID strictly
// below the given ID. Returns nil without an error when no chunk precedes it.
func (h *ChunksDBHandler) SelectPreviousChunk(id int64) (*model.Chunk, error) {
	chunk := &model.Chunk{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_previous_chunk($1)`,
		id,
	)

	err := row.Scan(
		&chunk.ID,
		&chunk.RawText,
		&chunk.Metadata,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksByEpisode retrieves all chunks of one episode in ascending ID order
func (h *ChunksDBHandler) SelectChunksByEpisode(episode model.EpisodeRef) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_episode($1, $2)`,
		episode.Season,
		episode.Episode,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.RawText,
			&chunk.Metadata,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectAllChunkIDs retrieves every chunk ID in ascending order
func (h *ChunksDBHandler) SelectAllChunkIDs() ([]int64, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_chunk_ids()`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		err := rows.Scan(&id)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		ids = append(ids, id)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return ids, nil
}
