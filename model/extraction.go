package model

import (
	"fmt"
	"strings"
)

// KnownReference cites an existing place from the catalog by id.
type KnownReference struct {
	PlaceID int64         `json:"place_id"`
	Type    ReferenceType `json:"reference_type"`
}

// NewPlaceSuggestion proposes a location that is absent from the catalog.
// Zone may name an existing zone or a new one, the operator decides.
type NewPlaceSuggestion struct {
	Name    string        `json:"name"`
	Zone    string        `json:"zone"`
	Summary string        `json:"summary"`
	Type    ReferenceType `json:"reference_type"`
}

// ExtractionResult is the structured answer of the reasoning service
// for a single chunk.
type ExtractionResult struct {
	Known []KnownReference     `json:"known_references"`
	New   []NewPlaceSuggestion `json:"new_places"`
}

// Validate checks the extraction result against the catalog snapshot it
// was produced from. Any violation fails the whole chunk, nothing from a
// partially valid result is used.
func (r *ExtractionResult) Validate(catalog *Catalog) error {
	settings := 0
	seen := map[int64]bool{}

	for _, known := range r.Known {
		if !known.Type.Valid() {
			return fmt.Errorf("known reference %d: invalid reference type %q", known.PlaceID, known.Type)
		}
		if _, ok := catalog.PlaceByID(known.PlaceID); !ok {
			return fmt.Errorf("known reference cites place %d which is not in the catalog", known.PlaceID)
		}
		if seen[known.PlaceID] {
			return fmt.Errorf("known reference cites place %d more than once", known.PlaceID)
		}
		seen[known.PlaceID] = true
		if known.Type == ReferenceSetting {
			settings++
		}
	}

	for _, suggestion := range r.New {
		if strings.TrimSpace(suggestion.Name) == "" {
			return fmt.Errorf("new place suggestion has an empty name")
		}
		if !suggestion.Type.Valid() {
			return fmt.Errorf("new place %q: invalid reference type %q", suggestion.Name, suggestion.Type)
		}
		if suggestion.Type == ReferenceSetting {
			settings++
		}
	}

	if settings > 1 {
		return fmt.Errorf("extraction marks %d places as setting, a chunk has at most one", settings)
	}
	return nil
}

// Empty reports whether the extraction found no references at all.
func (r *ExtractionResult) Empty() bool {
	return len(r.Known) == 0 && len(r.New) == 0
}
