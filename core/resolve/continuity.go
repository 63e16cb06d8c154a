package resolve

import "github.com/pythagorakase/nexus-sub001/model"

// ContinuityOutcome describes what the continuity rule did to the
// references of a chunk.
type ContinuityOutcome string

const (
	// ContinuityKept means the chunk already carried its own setting.
	ContinuityKept ContinuityOutcome = "kept"
	// ContinuityInherited means the previous chunk's setting was copied in.
	ContinuityInherited ContinuityOutcome = "inherited"
	// ContinuityPromoted means the inherited place was already staged with
	// another type and that reference was promoted to setting.
	ContinuityPromoted ContinuityOutcome = "promoted"
	// ContinuityNone means no setting exists and none could be inherited.
	ContinuityNone ContinuityOutcome = "none"
)

// ApplyContinuity fills the setting of a chunk from its predecessor.
// A chunk without a confirmed setting inherits the setting of the previous
// chunk. If the inherited place is already staged under another type, that
// reference is promoted to setting instead of adding a duplicate row.
// With no previous setting the chunk stays without one.
func ApplyContinuity(chunkID int64, refs []model.PlaceChunkReference, previousSetting *model.PlaceChunkReference) ([]model.PlaceChunkReference, ContinuityOutcome) {
	for _, ref := range refs {
		if ref.Type == model.ReferenceSetting {
			return refs, ContinuityKept
		}
	}

	if previousSetting == nil {
		return refs, ContinuityNone
	}

	for i, ref := range refs {
		if ref.PlaceID == previousSetting.PlaceID {
			refs[i].Type = model.ReferenceSetting
			return refs, ContinuityPromoted
		}
	}

	refs = append(refs, model.PlaceChunkReference{
		ChunkID:   chunkID,
		PlaceID:   previousSetting.PlaceID,
		Type:      model.ReferenceSetting,
		PlaceName: previousSetting.PlaceName,
	})
	return refs, ContinuityInherited
}
