package resolve

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pythagorakase/nexus-sub001/database"
	"github.com/pythagorakase/nexus-sub001/helper"
	"github.com/pythagorakase/nexus-sub001/model"
)

// State names the stations a presented reference moves through during
// confirmation. Every suggestion starts presented and ends in exactly one
// of the terminal states.
type State string

const (
	StatePresented State = "presented"
	StateAccepted  State = "accepted"
	StateEdited    State = "edited"
	StateLinked    State = "linked"
	StateRejected  State = "rejected"
	StateAborted   State = "aborted"
)

// ErrAborted is returned when the operator quits the run. References
// staged before the quit stay staged, committed work stays committed.
var ErrAborted = errors.New("curation run aborted by operator")

// linkSearchLimit caps the places shown for a link search term.
const linkSearchLimit = 10

// EmbedPlaceFunc generates the embedding for a place, used by the optional
// near-duplicate assist.
type EmbedPlaceFunc func(name string, summary string) ([]float32, error)

// Engine executes the confirmation state machine for one extraction result
// at a time. Known references are staged without a prompt, new-place
// suggestions go through the operator menu. All catalog writes of the
// pipeline happen here and nowhere else.
type Engine struct {
	zones  database.ZonesDBHandlerFunctions
	places database.PlacesDBHandlerFunctions
	prompt *Prompter
	embed  EmbedPlaceFunc
	topK   int
	log    *slog.Logger
}

// NewEngine creates a resolution engine on the given catalog handlers.
func NewEngine(zones database.ZonesDBHandlerFunctions, places database.PlacesDBHandlerFunctions, prompt *Prompter, logger *slog.Logger) *Engine {
	return &Engine{
		zones:  zones,
		places: places,
		prompt: prompt,
		log:    logger,
	}
}

// SetEmbeddingAssist enables the near-duplicate assist. New places get an
// embedding on accept and suggestions display their topK nearest existing
// places. Assist failures degrade to a warning, never to a chunk error.
func (e *Engine) SetEmbeddingAssist(embed EmbedPlaceFunc, topK int) {
	e.embed = embed
	e.topK = topK
}

// stage collects the references confirmed for one chunk before they are
// persisted in a single atomic write.
type stage struct {
	chunkID int64
	refs    []model.PlaceChunkReference
}

func newStage(chunkID int64) *stage {
	return &stage{chunkID: chunkID}
}

func (s *stage) has(placeID int64) bool {
	for _, ref := range s.refs {
		if ref.PlaceID == placeID {
			return true
		}
	}
	return false
}

func (s *stage) hasSetting() bool {
	for _, ref := range s.refs {
		if ref.Type == model.ReferenceSetting {
			return true
		}
	}
	return false
}

// add stages a reference, guarding the one-setting-per-chunk and
// one-row-per-place invariants before the database ever sees the set.
func (s *stage) add(placeID int64, refType model.ReferenceType, placeName string) error {
	if s.has(placeID) {
		return fmt.Errorf("place %d is already staged for chunk %d", placeID, s.chunkID)
	}
	if refType == model.ReferenceSetting && s.hasSetting() {
		return fmt.Errorf("chunk %d already has a setting staged", s.chunkID)
	}
	s.refs = append(s.refs, model.PlaceChunkReference{
		ChunkID:   s.chunkID,
		PlaceID:   placeID,
		Type:      refType,
		PlaceName: placeName,
	})
	return nil
}

// ResolveChunk runs the confirmation flow for one extraction result and
// returns the references to persist for the chunk. Known references are
// staged immediately, each new-place suggestion is presented to the
// operator. On ErrAborted the references staged so far are still returned
// so the caller can commit them before stopping the run.
func (e *Engine) ResolveChunk(chunk *model.Chunk, result *model.ExtractionResult, catalog *model.Catalog, session *Session) ([]model.PlaceChunkReference, error) {
	st := newStage(chunk.ID)

	for _, known := range result.Known {
		place, ok := catalog.PlaceByID(known.PlaceID)
		if !ok {
			// Validation runs before resolution, a miss here is a bug.
			return nil, helper.NewError("stage known reference", fmt.Errorf("place %d is not in the catalog", known.PlaceID))
		}
		if err := st.add(known.PlaceID, known.Type, place.Name); err != nil {
			return nil, helper.NewError("stage known reference", err)
		}
		e.prompt.ShowAutoAccepted(place, known.Type)
	}

	for _, suggestion := range result.New {
		state, err := e.resolveSuggestion(chunk, suggestion, catalog, st, session)
		if errors.Is(err, ErrAborted) {
			return st.refs, ErrAborted
		}
		if err != nil {
			return nil, err
		}
		e.log.Debug("Resolved suggestion",
			slog.String("run_id", session.RunID.String()),
			slog.Int64("chunk_id", chunk.ID),
			slog.String("name", suggestion.Name),
			slog.String("state", string(state)),
		)
	}

	return st.refs, nil
}

// resolveSuggestion drives the menu for one suggestion until it reaches a
// terminal state. Unknown input re-prompts, a backed-out link returns to
// the menu.
func (e *Engine) resolveSuggestion(chunk *model.Chunk, suggestion model.NewPlaceSuggestion, catalog *model.Catalog, st *stage, session *Session) (State, error) {
	e.prompt.ShowSuggestion(chunk, suggestion, e.neighbors(suggestion))

	for {
		choice, err := e.prompt.ReadChoice()
		if err != nil {
			return StateAborted, helper.NewError("read menu choice", err)
		}

		switch choice {
		case "", "1":
			return e.acceptSuggestion(suggestion, catalog, st, session)
		case "0":
			return StateRejected, nil
		case "2":
			state, err := e.linkSuggestion(suggestion, catalog, st)
			if err != nil {
				return state, err
			}
			if state == StateLinked {
				return state, nil
			}
			// Backed out, present the menu again.
			e.prompt.ShowSuggestion(chunk, suggestion, nil)
		case "9":
			return StateAborted, ErrAborted
		default:
			e.prompt.Warnf("unknown choice %q, enter 0, 1, 2 or 9", choice)
		}
	}
}

// acceptSuggestion walks the operator through the edit fields and writes
// the confirmed zone and place. Every field keeps the suggested value on
// empty input, only the place id must be typed. Invalid input re-prompts
// the field without losing edits already made.
func (e *Engine) acceptSuggestion(suggestion model.NewPlaceSuggestion, catalog *model.Catalog, st *stage, session *Session) (State, error) {
	refType, err := e.readReferenceType(suggestion, st)
	if err != nil {
		return "", err
	}

	zoneName, err := e.readZone(suggestion, session)
	if err != nil {
		return "", err
	}

	placeID, err := e.readNewPlaceID(catalog)
	if err != nil {
		return "", err
	}

	name, err := e.prompt.ReadField("name", suggestion.Name)
	if err != nil {
		return "", helper.NewError("read name", err)
	}

	summary, err := e.prompt.ReadField("summary", suggestion.Summary)
	if err != nil {
		return "", helper.NewError("read summary", err)
	}

	// A zone row is created only when the name is new, inserting an
	// existing name returns the existing row.
	zone, err := e.zones.InsertZone(zoneName)
	if err != nil {
		return "", helper.NewError("insert zone", err)
	}

	place := &model.Place{ID: placeID, ZoneID: zone.ID, Name: name, Summary: summary}
	if err := e.places.InsertPlace(place); err != nil {
		return "", helper.NewError("insert place", err)
	}

	e.writeEmbedding(place)

	if err := st.add(place.ID, refType, place.Name); err != nil {
		return "", helper.NewError("stage confirmed place", err)
	}

	session.LastZone = zone.Name
	e.prompt.Stagedf("staged [%d] %s (%s) in zone %s", place.ID, place.Name, refType, zone.Name)

	if refType == suggestion.Type && zoneName == suggestion.Zone && name == suggestion.Name && summary == suggestion.Summary {
		return StateAccepted, nil
	}
	return StateEdited, nil
}

// readReferenceType prompts until the input is a valid type that does not
// stage a second setting.
func (e *Engine) readReferenceType(suggestion model.NewPlaceSuggestion, st *stage) (model.ReferenceType, error) {
	for {
		input, err := e.prompt.ReadField("reference type", string(suggestion.Type))
		if err != nil {
			return "", helper.NewError("read reference type", err)
		}

		refType, err := model.ParseReferenceType(input)
		if err != nil {
			e.prompt.Warnf("invalid reference type %q, use setting, mention or transit", input)
			continue
		}
		if refType == model.ReferenceSetting && st.hasSetting() {
			e.prompt.Warnf("chunk %d already has a setting staged, pick another type", st.chunkID)
			continue
		}
		return refType, nil
	}
}

// readZone prompts for the zone. The default is the zone most recently
// confirmed in this session, falling back to the suggested zone.
func (e *Engine) readZone(suggestion model.NewPlaceSuggestion, session *Session) (string, error) {
	defaultZone := session.LastZone
	if defaultZone == "" {
		defaultZone = suggestion.Zone
	}

	for {
		zoneName, err := e.prompt.ReadField("zone", defaultZone)
		if err != nil {
			return "", helper.NewError("read zone", err)
		}
		if strings.TrimSpace(zoneName) != "" {
			return zoneName, nil
		}
		e.prompt.Warnf("zone must not be empty")
	}
}

// readNewPlaceID prompts for the id of the new place. Ids are assigned by
// the operator and never generated, an id already in the catalog
// re-prompts.
func (e *Engine) readNewPlaceID(catalog *model.Catalog) (int64, error) {
	for {
		input, err := e.prompt.ReadRequired("place id")
		if err != nil {
			return 0, helper.NewError("read place id", err)
		}

		id, parseErr := strconv.ParseInt(input, 10, 64)
		if parseErr != nil || id < 0 {
			e.prompt.Warnf("invalid place id %q, enter a non-negative number", input)
			continue
		}
		if _, exists := catalog.PlaceByID(id); exists {
			e.prompt.Warnf("place id %d already exists in the catalog, use link instead", id)
			continue
		}
		if _, err := e.places.SelectPlace(id); err == nil {
			e.prompt.Warnf("place id %d was already confirmed earlier in this run", id)
			continue
		}
		return id, nil
	}
}

// linkSuggestion re-displays the catalog and stages a reference to an
// existing place. Numeric input is treated as a place id, anything else
// filters the catalog as a search term. "b" backs out to the menu.
func (e *Engine) linkSuggestion(suggestion model.NewPlaceSuggestion, catalog *model.Catalog, st *stage) (State, error) {
	e.prompt.ShowCatalog(catalog)

	for {
		input, err := e.prompt.ReadLink()
		if err != nil {
			return StateAborted, helper.NewError("read link target", err)
		}

		switch {
		case input == "b":
			return StatePresented, nil
		case input == "":
			e.prompt.ShowCatalog(catalog)
		default:
			id, parseErr := strconv.ParseInt(input, 10, 64)
			if parseErr != nil {
				matches, err := e.places.SearchPlaces(input, linkSearchLimit)
				if err != nil {
					e.prompt.Warnf("search failed: %v", err)
					continue
				}
				e.prompt.ShowPlaces(matches)
				continue
			}

			place, ok := catalog.PlaceByID(id)
			if !ok {
				e.prompt.Warnf("no place with id %d in the catalog", id)
				continue
			}
			if st.has(id) {
				e.prompt.Warnf("place %d is already staged for this chunk", id)
				continue
			}
			if suggestion.Type == model.ReferenceSetting && st.hasSetting() {
				e.prompt.Warnf("chunk %d already has a setting staged", st.chunkID)
				continue
			}

			if err := st.add(id, suggestion.Type, place.Name); err != nil {
				return "", helper.NewError("stage linked place", err)
			}
			e.prompt.Stagedf("linked [%d] %s (%s)", place.ID, place.Name, suggestion.Type)
			return StateLinked, nil
		}
	}
}

// neighbors returns the nearest existing places for a suggestion when the
// embedding assist is enabled.
func (e *Engine) neighbors(suggestion model.NewPlaceSuggestion) []*model.Place {
	if e.embed == nil {
		return nil
	}

	embedding, err := e.embed(suggestion.Name, suggestion.Summary)
	if err != nil {
		e.log.Warn("Embedding assist failed", slog.String("name", suggestion.Name), slog.Any("error", err))
		return nil
	}

	places, err := e.places.SelectPlacesBySimilarity(embedding, e.topK)
	if err != nil {
		e.log.Warn("Similarity lookup failed", slog.String("name", suggestion.Name), slog.Any("error", err))
		return nil
	}
	return places
}

// writeEmbedding stores the embedding of a freshly confirmed place so the
// assist sees it from the next suggestion on. Failure is a warning only.
func (e *Engine) writeEmbedding(place *model.Place) {
	if e.embed == nil {
		return
	}

	embedding, err := e.embed(place.Name, place.Summary)
	if err != nil {
		e.log.Warn("Embedding new place failed", slog.Int64("place_id", place.ID), slog.Any("error", err))
		return
	}
	if err := e.places.UpdatePlaceEmbedding(place.ID, embedding); err != nil {
		e.log.Warn("Storing place embedding failed", slog.Int64("place_id", place.ID), slog.Any("error", err))
	}
}
