package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pythagorakase/nexus-sub001/helper"
	"github.com/pythagorakase/nexus-sub001/model"
	loadSql "github.com/pythagorakase/nexus-sub001/sql"
)

// ReferencesDBHandlerFunctions defines the interface for place-chunk reference operations.
type ReferencesDBHandlerFunctions interface {
	ReplaceChunkReferences(chunkID int64, refs []model.PlaceChunkReference) ([]*model.PlaceChunkReference, error)
	SelectReferencesByChunk(chunkID int64) ([]*model.PlaceChunkReference, error)
	SelectSettingReference(chunkID int64) (*model.PlaceChunkReference, error)
	ChunkHasReferences(chunkID int64) (bool, error)
	SelectChunkIDsWithoutReferences() ([]int64, error)
}

// ReferencesDBHandler handles place-chunk reference database operations
type ReferencesDBHandler struct {
	db *helper.Database
}

// referenceInput is the wire form replace_chunk_references expects.
type referenceInput struct {
	PlaceID int64  `json:"place_id"`
	Type    string `json:"reference_type"`
}

// NewReferencesDBHandler creates a new references database handler.
// It initializes the database connection and loads reference-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
// The places table must exist first, references point at it.
func NewReferencesDBHandler(db *helper.Database, force bool) (*ReferencesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	referencesDbHandler := &ReferencesDBHandler{
		db: db,
	}

	err := loadSql.LoadReferencesSql(referencesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load references sql", err)
	}

	err = referencesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ReferencesDBHandler")

	return referencesDbHandler, nil
}

// CreateTable creates the 'place_chunk_references' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *ReferencesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_references();`)
	if err != nil {
		log.Panicf("error initializing place_chunk_references table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table place_chunk_references")

	return nil
}

// ReplaceChunkReferences replaces the full reference set of a chunk in one
// atomic statement. Either every reference lands or the previous set
// survives untouched.
func (h *ReferencesDBHandler) ReplaceChunkReferences(chunkID int64, refs []model.PlaceChunkReference) ([]*model.PlaceChunkReference, error) {
	if err := model.OneSetting(refs); err != nil {
		return nil, helper.NewError("validate references", err)
	}

	inputs := make([]referenceInput, 0, len(refs))
	for _, ref := range refs {
		inputs = append(inputs, referenceInput{
			PlaceID: ref.PlaceID,
			Type:    string(ref.Type),
		})
	}

	refsJSON, err := json.Marshal(inputs)
	if err != nil {
		return nil, helper.NewError("marshaling references", err)
	}

	rows, err := h.db.Instance.Query(
		`SELECT * FROM replace_chunk_references($1, $2)`,
		chunkID,
		refsJSON,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var written []*model.PlaceChunkReference
	for rows.Next() {
		ref := &model.PlaceChunkReference{}
		err := rows.Scan(
			&ref.ChunkID,
			&ref.PlaceID,
			&ref.Type,
			&ref.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		written = append(written, ref)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return written, nil
}

// SelectReferencesByChunk retrieves all references of a chunk with place names
func (h *ReferencesDBHandler) SelectReferencesByChunk(chunkID int64) ([]*model.PlaceChunkReference, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_references_by_chunk($1)`,
		chunkID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var refs []*model.PlaceChunkReference
	for rows.Next() {
		ref := &model.PlaceChunkReference{}
		err := rows.Scan(
			&ref.ChunkID,
			&ref.PlaceID,
			&ref.Type,
			&ref.PlaceName,
			&ref.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		refs = append(refs, ref)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return refs, nil
}

// SelectSettingReference retrieves the setting reference of a chunk.
// Returns nil without an error when the chunk has no confirmed setting.
func (h *ReferencesDBHandler) SelectSettingReference(chunkID int64) (*model.PlaceChunkReference, error) {
	ref := &model.PlaceChunkReference{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_setting_reference($1)`,
		chunkID,
	)

	err := row.Scan(
		&ref.ChunkID,
		&ref.PlaceID,
		&ref.Type,
		&ref.PlaceName,
		&ref.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return ref, nil
}

// ChunkHasReferences reports whether the chunk already carries any reference
func (h *ReferencesDBHandler) ChunkHasReferences(chunkID int64) (bool, error) {
	var exists bool
	err := h.db.Instance.QueryRow(
		`SELECT chunk_has_references($1)`,
		chunkID,
	).Scan(&exists)
	if err != nil {
		return false, helper.NewError("scan", err)
	}

	return exists, nil
}

// SelectChunkIDsWithoutReferences retrieves the IDs of all chunks that
// still lack references, in ascending order
func (h *ReferencesDBHandler) SelectChunkIDsWithoutReferences() ([]int64, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunk_ids_without_references()`,
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
