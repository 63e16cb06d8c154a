package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/pythagorakase/nexus-sub001/helper"
	"github.com/pythagorakase/nexus-sub001/model"
	loadSql "github.com/pythagorakase/nexus-sub001/sql"
)

// PlacesDBHandlerFunctions defines the interface for Places database operations.
type PlacesDBHandlerFunctions interface {
	InsertPlace(place *model.Place) error
	SelectPlace(id int64) (*model.Place, error)
	SelectAllPlaces() ([]*model.Place, error)
	SearchPlaces(searchTerm string, limit int) ([]*model.Place, error)
	SelectPlacesBySimilarity(embedding []float32, limit int) ([]*model.Place, error)
	UpdatePlaceEmbedding(id int64, embedding []float32) error
	DeletePlace(id int64) error
}

// PlacesDBHandler handles place-related database operations
type PlacesDBHandler struct {
	db *helper.Database
}

// NewPlacesDBHandler creates a new places database handler.
// It initializes the database connection and loads place-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
// The zones table must exist first, places reference it.
func NewPlacesDBHandler(db *helper.Database, force bool) (*PlacesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	placesDbHandler := &PlacesDBHandler{
		db: db,
	}

	err := loadSql.LoadPlacesSql(placesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load places sql", err)
	}

	err = placesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized PlacesDBHandler")

	return placesDbHandler, nil
}

// CreateTable creates the 'places' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *PlacesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_places();`)
	if err != nil {
		log.Panicf("error initializing places table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table places")

	return nil
}

// InsertPlace inserts a new place with its operator-assigned ID.
// A duplicate ID is an error, never an update.
func (h *PlacesDBHandler) InsertPlace(place *model.Place) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_place($1, $2, $3, $4)`,
		place.ID,
		place.ZoneID,
		place.Name,
		place.Summary,
	)

	err := row.Scan(
		&place.ID,
		&place.ZoneID,
		&place.ZoneName,
		&place.Name,
		&place.Summary,
		&place.CreatedAt,
		&place.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectPlace retrieves a place by ID
func (h *PlacesDBHandler) SelectPlace(id int64) (*model.Place, error) {
	place := &model.Place{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_place($1)`,
		id,
	)

	err := row.Scan(
		&place.ID,
		&place.ZoneID,
		&place.ZoneName,
		&place.Name,
		&place.Summary,
		&place.CreatedAt,
		&place.UpdatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return place, nil
}

// SelectAllPlaces retrieves all places in catalog order
// (zones alphabetically, places by ID inside each zone)
func (h *PlacesDBHandler) SelectAllPlaces() ([]*model.Place, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_places()`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var places []*model.Place
	for rows.Next() {
		place := &model.Place{}
		err := rows.Scan(
			&place.ID,
			&place.ZoneID,
			&place.ZoneName,
			&place.Name,
			&place.Summary,
			&place.CreatedAt,
			&place.UpdatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		places = append(places, place)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return places, nil
}

// SearchPlaces searches places by name pattern
func (h *PlacesDBHandler) SearchPlaces(searchTerm string, limit int) ([]*model.Place, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM search_places($1, $2)`,
		searchTerm,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var places []*model.Place
	for rows.Next() {
		place := &model.Place{}
		err := rows.Scan(
			&place.ID,
			&place.ZoneID,
			&place.ZoneName,
			&place.Name,
			&place.Summary,
			&place.CreatedAt,
			&place.UpdatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		places = append(places, place)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return places, nil
}

// SelectPlacesBySimilarity performs vector similarity search over place embeddings.
// Places without an embedding are skipped.
func (h *PlacesDBHandler) SelectPlacesBySimilarity(embedding []float32, limit int) ([]*model.Place, error) {
	embeddingVector := pgvector.NewVector(embedding)

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_places_by_similarity($1, $2)`,
		embeddingVector,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var places []*model.Place
	for rows.Next() {
		place := &model.Place{}
		err := rows.Scan(
			&place.ID,
			&place.ZoneID,
			&place.ZoneName,
			&place.Name,
			&place.Summary,
			&place.CreatedAt,
			&place.UpdatedAt,
			&place.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		places = append(places, place)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return places, nil
}

// UpdatePlaceEmbedding updates the embedding of a place
func (h *PlacesDBHandler) UpdatePlaceEmbedding(id int64, embedding []float32) error {
	embeddingVector := pgvector.NewVector(embedding)
	_, err := h.db.Instance.Exec(
		`SELECT * FROM update_place_embedding($1, $2)`,
		id,
		embeddingVector,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeletePlace deletes a place by ID.
// Fails while chunk references still point at the place.
func (h *PlacesDBHandler) DeletePlace(id int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_place($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
