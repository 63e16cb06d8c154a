package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pythagorakase/nexus-sub001/helper"
	"github.com/pythagorakase/nexus-sub001/model"
	loadSql "github.com/pythagorakase/nexus-sub001/sql"
)

// ZonesDBHandlerFunctions defines the interface for Zones database operations.
type ZonesDBHandlerFunctions interface {
	InsertZone(name string) (*model.Zone, error)
	SelectZone(id int) (*model.Zone, error)
	SelectZoneByName(name string) (*model.Zone, error)
	SelectAllZones() ([]*model.Zone, error)
	DeleteZone(id int) error
}

// ZonesDBHandler handles zone-related database operations
type ZonesDBHandler struct {
	db *helper.Database
}

// NewZonesDBHandler creates a new zones database handler.
// It initializes the database connection and loads zone-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewZonesDBHandler(db *helper.Database, force bool) (*ZonesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	zonesDbHandler := &ZonesDBHandler{
		db: db,
	}

	err := loadSql.LoadZonesSql(zonesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load zones sql", err)
	}

	err = zonesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ZonesDBHandler")

	return zonesDbHandler, nil
}

// CreateTable creates the 'zones' table in the database.
// If the table already exists, it does not create it again.
func (h *ZonesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_zones();`)
	if err != nil {
		log.Panicf("error initializing zones table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table zones")

	return nil
}

// InsertZone inserts a new zone or returns the existing zone with the same name
func (h *ZonesDBHandler) InsertZone(name string) (*model.Zone, error) {
	zone := &model.Zone{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_zone($1)`,
		name,
	)

	err := row.Scan(
		&zone.ID,
		&zone.Name,
		&zone.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return zone, nil
}

// SelectZone retrieves a zone by ID
func (h *ZonesDBHandler) SelectZone(id int) (*model.Zone, error) {
	zone := &model.Zone{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_zone($1)`,
		id,
	)

	err := row.Scan(
		&zone.ID,
		&zone.Name,
		&zone.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return zone, nil
}

// SelectZoneByName retrieves a zone by its unique name
func (h *ZonesDBHandler) SelectZoneByName(name string) (*model.Zone, error) {
	zone := &model.Zone{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_zone_by_name($1)`,
		name,
	)

	err := row.Scan(
		&zone.ID,
		&zone.Name,
		&zone.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return zone, nil
}

// SelectAllZones retrieves all zones ordered by name
func (h *ZonesDBHandler) SelectAllZones() ([]*model.Zone, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_zones()`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var zones []*model.Zone
	for rows.Next() {
		zone := &model.Zone{}
		err := rows.Scan(
			&zone.ID,
			&zone.Name,
			&zone.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		zones = append(zones, zone)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return zones, nil
}

// DeleteZone deletes a zone by ID.
// Fails while places are still assigned to the zone.
func (h *ZonesDBHandler) DeleteZone(id int) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_zone($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
