package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed zones.sql
var zonesSQL string

//go:embed places.sql
var placesSQL string

//go:embed chunks.sql
var chunksSQL string

//go:embed references.sql
var referencesSQL string

// Function lists for verification
var ZonesFunctions = []string{
	"init_zones",
	"insert_zone",
	"select_zone",
	"select_zone_by_name",
	"select_all_zones",
	"delete_zone",
}

var PlacesFunctions = []string{
	"init_places",
	"insert_place",
	"select_place",
	"select_all_places",
	"search_places",
	"select_places_by_similarity",
	"update_place_embedding",
	"delete_place",
}

var ChunksFunctions = []string{
	"init_narrative",
	"narrative_exists",
	"insert_chunk",
	"select_chunk",
	"select_previous_chunk",
	"select_chunks_by_episode",
	"select_all_chunk_ids",
}

var ReferencesFunctions = []string{
	"init_references",
	"replace_chunk_references",
	"select_references_by_chunk",
	"select_setting_reference",
	"chunk_has_references",
	"select_chunk_ids_without_references",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadZonesSql loads zone-related SQL functions
func LoadZonesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, ZonesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing zones functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(zonesSQL)
	if err != nil {
		return fmt.Errorf("error executing zones SQL: %w", err)
	}

	exist, err := checkFunctions(db, ZonesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL zones functions loaded successfully")
	return nil
}

// LoadPlacesSql loads place-related SQL functions
func LoadPlacesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, PlacesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing places functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(placesSQL)
	if err != nil {
		return fmt.Errorf("error executing places SQL: %w", err)
	}

	exist, err := checkFunctions(db, PlacesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL places functions loaded successfully")
	return nil
}

// LoadChunksSql loads narrative-chunk-related SQL functions
func LoadChunksSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, ChunksFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing chunks functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(chunksSQL)
	if err != nil {
		return fmt.Errorf("error executing chunks SQL: %w", err)
	}

	exist, err := checkFunctions(db, ChunksFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL chunks functions loaded successfully")
	return nil
}

// LoadReferencesSql loads reference-related SQL functions
func LoadReferencesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, ReferencesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing references functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(referencesSQL)
	if err != nil {
		return fmt.Errorf("error executing references SQL: %w", err)
	}

	exist, err := checkFunctions(db, ReferencesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL references functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadZonesSql(db, force); err != nil {
		return err
	}

	if err := LoadPlacesSql(db, force); err != nil {
		return err
	}

	if err := LoadChunksSql(db, force); err != nil {
		return err
	}

	if err := LoadReferencesSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
