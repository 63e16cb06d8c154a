package resolve

import (
	"github.com/google/uuid"
)

// Session tracks the mutable state of one curation run. It travels through
// the per-chunk loop as an argument so runs stay composable, nothing in
// this package keeps global state.
type Session struct {
	RunID uuid.UUID

	// LastZone is the zone most recently confirmed by the operator and the
	// default zone for new place prompts.
	LastZone string

	Processed []int64
	Skipped   []int64
	Failed    map[int64]error
}

// NewSession creates a session with a fresh run id.
func NewSession() *Session {
	return &Session{
		RunID:  uuid.New(),
		Failed: make(map[int64]error),
	}
}

// RecordProcessed marks a chunk as fully processed and persisted.
func (s *Session) RecordProcessed(chunkID int64) {
	s.Processed = append(s.Processed, chunkID)
}

// RecordSkipped marks a chunk that was skipped because it already holds
// references.
func (s *Session) RecordSkipped(chunkID int64) {
	s.Skipped = append(s.Skipped, chunkID)
}

// RecordFailure marks a chunk that failed with the error that stopped it.
func (s *Session) RecordFailure(chunkID int64, err error) {
	s.Failed[chunkID] = err
}
