package model

import "fmt"

// CurationStage names the phase of the per-chunk loop an error happened in.
type CurationStage string

const (
	StageSelection   CurationStage = "selection"
	StageAssembly    CurationStage = "assembly"
	StageExtraction  CurationStage = "extraction"
	StageResolution  CurationStage = "resolution"
	StagePersistence CurationStage = "persistence"
)

// ChunkError records the failure of a single chunk. A failed chunk is
// reported and skipped, the run continues with the next chunk.
type ChunkError struct {
	ChunkID int64
	Stage   CurationStage
	Err     error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d failed during %s: %v", e.ChunkID, e.Stage, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// NewChunkError wraps an error with the chunk and stage it belongs to.
func NewChunkError(chunkID int64, stage CurationStage, err error) *ChunkError {
	return &ChunkError{ChunkID: chunkID, Stage: stage, Err: err}
}
