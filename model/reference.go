package model

import (
	"errors"
	"fmt"
	"time"
)

// ReferenceType classifies how a chunk references a place.
type ReferenceType string

const (
	// ReferenceSetting marks the place where the chunk takes place.
	// A chunk has at most one setting.
	ReferenceSetting ReferenceType = "setting"
	// ReferenceMention marks a place talked about but not visited.
	ReferenceMention ReferenceType = "mention"
	// ReferenceTransit marks a place passed through during the chunk.
	ReferenceTransit ReferenceType = "transit"
)

// Valid reports whether the reference type is one of the known values.
func (r ReferenceType) Valid() bool {
	switch r {
	case ReferenceSetting, ReferenceMention, ReferenceTransit:
		return true
	}
	return false
}

// ParseReferenceType converts a string into a ReferenceType.
func ParseReferenceType(s string) (ReferenceType, error) {
	r := ReferenceType(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid reference type %q", s)
	}
	return r, nil
}

// PlaceChunkReference links a chunk to a place it references.
type PlaceChunkReference struct {
	ChunkID   int64         `json:"chunk_id"`
	PlaceID   int64         `json:"place_id"`
	Type      ReferenceType `json:"reference_type"`
	PlaceName string        `json:"place_name,omitempty"` // joined on read
	CreatedAt time.Time     `json:"created_at"`
}

// OneSetting checks that at most one reference in refs carries the
// setting type.
func OneSetting(refs []PlaceChunkReference) error {
	settings := 0
	for _, ref := range refs {
		if ref.Type == ReferenceSetting {
			settings++
		}
	}
	if settings > 1 {
		return errors.New("chunk has more than one setting reference")
	}
	return nil
}
