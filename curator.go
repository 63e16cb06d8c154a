package curator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/pythagorakase/nexus-sub001/core/pipeline"
	"github.com/pythagorakase/nexus-sub001/core/resolve"
	"github.com/pythagorakase/nexus-sub001/database"
	"github.com/pythagorakase/nexus-sub001/helper"
	"github.com/pythagorakase/nexus-sub001/model"
	loadSql "github.com/pythagorakase/nexus-sub001/sql"
)

// Curator provides a unified interface to the curation pipeline and all
// database handlers
type Curator struct {
	DB         *helper.Database
	Zones      *database.ZonesDBHandler
	Places     *database.PlacesDBHandler
	Chunks     *database.ChunksDBHandler
	References *database.ReferencesDBHandler
	Pipeline   *pipeline.Pipeline // Optional, test mode runs without one
	Resolver   *resolve.Engine    // Confirmation engine for new places
	// Out receives assembled payloads in test mode, stdout by default
	Out io.Writer
	// Logging
	log *slog.Logger
}

// NewCurator creates a new Curator instance with all handlers initialized
func NewCurator(config *helper.DatabaseConfiguration) (*Curator, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("curator", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (zones first, places
	// reference them, references point at places)
	// force=false to not reload if functions already exist
	zones, err := database.NewZonesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create zones handler", err)
	}

	places, err := database.NewPlacesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create places handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	references, err := database.NewReferencesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create references handler", err)
	}

	resolver := resolve.NewEngine(zones, places, resolve.NewPrompter(), logger)

	return &Curator{
		DB:         db,
		Zones:      zones,
		Places:     places,
		Chunks:     chunks,
		References: references,
		Resolver:   resolver,
		Out:        os.Stdout,
		log:        logger,
	}, nil
}

// Close closes the database connection
func (c *Curator) Close() error {
	if c.DB != nil && c.DB.Instance != nil {
		return c.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the extraction pipeline used for live runs
func (c *Curator) SetPipeline(pipeline *pipeline.Pipeline) {
	c.Pipeline = pipeline
}

// UseOpenAIPipeline sets up the extraction pipeline against an
// OpenAI-compatible chat completions endpoint. The API key and base URL
// come from the environment, the model name from the run configuration.
func (c *Curator) UseOpenAIPipeline(modelName string) error {
	invoker, err := pipeline.NewInvoker(modelName)
	if err != nil {
		return helper.NewError("create invoker", err)
	}

	c.Pipeline = pipeline.NewPipeline(invoker.Extract)
	return nil
}

// UseEmbeddingAssist enables the near-duplicate warning for new places.
// This uses DefaultEmbedder with the all-MiniLM-L6-v2 model (384 dimensions),
// topK existing places are shown next to each new-place suggestion.
func (c *Curator) UseEmbeddingAssist(topK int) error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	if c.Pipeline == nil {
		c.Pipeline = pipeline.NewPipeline(nil)
	}
	c.Pipeline.SetEmbedder(embedder)
	c.Resolver.SetEmbeddingAssist(c.Pipeline.EmbedPlace, topK)
	return nil
}

// LoadCatalog reads the current catalog snapshot, zones alphabetically
// with their places in id order.
func (c *Curator) LoadCatalog() (*model.Catalog, error) {
	zones, err := c.Zones.SelectAllZones()
	if err != nil {
		return nil, helper.NewError("load zones", err)
	}

	places, err := c.Places.SelectAllPlaces()
	if err != nil {
		return nil, helper.NewError("load places", err)
	}

	catalog := &model.Catalog{}
	for _, zone := range zones {
		catalog.Zones = append(catalog.Zones, *zone)
	}
	for _, place := range places {
		catalog.Places = append(catalog.Places, *place)
	}
	return catalog, nil
}

// ResolveSelection expands the run configuration into the ascending list
// of chunk ids the run will visit. With All set and Overwrite off, chunks
// that already carry references are excluded up front.
func (c *Curator) ResolveSelection(config *model.RunConfig) ([]int64, error) {
	err := config.Validate()
	if err != nil {
		return nil, helper.NewError("validate run configuration", err)
	}

	switch {
	case len(config.ChunkIDs) > 0:
		ids := append([]int64(nil), config.ChunkIDs...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		deduped := ids[:0]
		for i, id := range ids {
			if i == 0 || id != ids[i-1] {
				deduped = append(deduped, id)
			}
		}
		return deduped, nil

	case config.Episode != nil:
		chunks, err := c.Chunks.SelectChunksByEpisode(*config.Episode)
		if err != nil {
			return nil, helper.NewError("select episode chunks", err)
		}
		ids := make([]int64, 0, len(chunks))
		for _, chunk := range chunks {
			ids = append(ids, chunk.ID)
		}
		return ids, nil

	case config.All && config.Overwrite:
		ids, err := c.Chunks.SelectAllChunkIDs()
		if err != nil {
			return nil, helper.NewError("select all chunk ids", err)
		}
		return ids, nil

	default:
		ids, err := c.References.SelectChunkIDsWithoutReferences()
		if err != nil {
			return nil, helper.NewError("select unreferenced chunk ids", err)
		}
		return ids, nil
	}
}

// Run executes one curation run over the configured chunk selection.
// Chunks are visited in ascending id order, each chunk either persists its
// full confirmed reference set or fails alone, the run continues. Only an
// unreachable datastore or an operator quit stops the run early.
func (c *Curator) Run(ctx context.Context, config *model.RunConfig) error {
	exists, err := c.Chunks.NarrativeExists()
	if err != nil {
		return helper.NewError("narrative preflight", err)
	}
	if !exists {
		return helper.NewError("narrative preflight", fmt.Errorf("narrative chunk table not found, nothing to curate"))
	}

	instructions, err := pipeline.LoadInstructions(config.InstructionsPath)
	if err != nil {
		return helper.NewError("load instructions", err)
	}

	if !config.TestMode && c.Pipeline == nil {
		return helper.NewError("run preflight", fmt.Errorf("no extraction pipeline configured, use UseOpenAIPipeline() or SetPipeline() first"))
	}

	ids, err := c.ResolveSelection(config)
	if err != nil {
		return err
	}

	session := resolve.NewSession()
	c.log.Info("Starting curation run",
		slog.String("run_id", session.RunID.String()),
		slog.Int("chunks", len(ids)),
		slog.String("model", config.Model),
		slog.Bool("test_mode", config.TestMode),
		slog.Bool("overwrite", config.Overwrite),
	)

	if len(ids) == 0 {
		c.log.Info("No chunks selected, nothing to curate")
		return nil
	}

	for _, id := range ids {
		err := c.curateChunk(ctx, id, instructions, config, session)
		if err == nil {
			continue
		}

		if errors.Is(err, resolve.ErrAborted) {
			c.log.Warn("Run stopped by operator", slog.Int64("chunk_id", id))
			break
		}

		session.RecordFailure(id, err)
		c.log.Error("Chunk failed, continuing with next", slog.Int64("chunk_id", id), slog.Any("error", err))

		if pingErr := c.DB.Instance.PingContext(ctx); pingErr != nil {
			c.logSummary(session)
			return helper.NewError("curation run", fmt.Errorf("datastore unreachable: %w", pingErr))
		}
	}

	c.logSummary(session)
	return nil
}

// curateChunk runs the full pipeline for one chunk: skip gate, catalog
// snapshot, payload assembly, extraction, confirmation, continuity and the
// atomic reference write.
func (c *Curator) curateChunk(ctx context.Context, id int64, instructions string, config *model.RunConfig, session *resolve.Session) error {
	if !config.Overwrite {
		has, err := c.References.ChunkHasReferences(id)
		if err != nil {
			return model.NewChunkError(id, model.StageSelection, err)
		}
		if has {
			session.RecordSkipped(id)
			c.log.Info("Skipping chunk, references already present", slog.Int64("chunk_id", id))
			return nil
		}
	}

	chunk, err := c.Chunks.SelectChunk(id)
	if err != nil {
		return model.NewChunkError(id, model.StageSelection, err)
	}

	catalog, err := c.LoadCatalog()
	if err != nil {
		return model.NewChunkError(id, model.StageAssembly, err)
	}

	previous, err := c.Chunks.SelectPreviousChunk(id)
	if err != nil {
		return model.NewChunkError(id, model.StageAssembly, err)
	}

	var previousSetting *model.PlaceChunkReference
	if previous != nil {
		previousSetting, err = c.References.SelectSettingReference(previous.ID)
		if err != nil {
			return model.NewChunkError(id, model.StageAssembly, err)
		}
	}

	payload := pipeline.Assemble(instructions, catalog, previous, previousSetting, chunk)

	if config.TestMode {
		// Exactly the bytes the invoker would send, nothing is contacted.
		fmt.Fprint(c.Out, payload.Render())
		session.RecordProcessed(id)
		return nil
	}

	result, err := c.Pipeline.Extract(ctx, payload)
	if err != nil {
		return model.NewChunkError(id, model.StageExtraction, err)
	}

	refs, err := c.Resolver.ResolveChunk(chunk, result, catalog, session)
	if errors.Is(err, resolve.ErrAborted) {
		// An operator quit keeps what was staged before the quit, the
		// continuity rule is not applied to a half-resolved chunk.
		if len(refs) > 0 {
			if _, commitErr := c.References.ReplaceChunkReferences(id, refs); commitErr != nil {
				session.RecordFailure(id, model.NewChunkError(id, model.StagePersistence, commitErr))
				return resolve.ErrAborted
			}
			session.RecordProcessed(id)
			c.log.Info("Persisted references staged before quit", slog.Int64("chunk_id", id), slog.Int("references", len(refs)))
		}
		return resolve.ErrAborted
	}
	if err != nil {
		return model.NewChunkError(id, model.StageResolution, err)
	}

	refs, outcome := resolve.ApplyContinuity(id, refs, previousSetting)
	switch outcome {
	case resolve.ContinuityInherited:
		c.log.Info("Inherited setting from previous chunk",
			slog.Int64("chunk_id", id),
			slog.Int64("place_id", previousSetting.PlaceID),
			slog.String("place", previousSetting.PlaceName),
		)
	case resolve.ContinuityPromoted:
		c.log.Warn("Promoted staged reference to setting",
			slog.Int64("chunk_id", id),
			slog.Int64("place_id", previousSetting.PlaceID),
			slog.String("place", previousSetting.PlaceName),
		)
	case resolve.ContinuityNone:
		c.log.Warn("Chunk has no setting and none could be inherited", slog.Int64("chunk_id", id))
	}

	written, err := c.References.ReplaceChunkReferences(id, refs)
	if err != nil {
		return model.NewChunkError(id, model.StagePersistence, err)
	}

	session.RecordProcessed(id)
	c.log.Info("Persisted references", slog.Int64("chunk_id", id), slog.Int("references", len(written)))
	return nil
}

// logSummary reports the outcome of a run, failed chunks with the error
// that stopped them.
func (c *Curator) logSummary(session *resolve.Session) {
	c.log.Info("Curation run finished",
		slog.String("run_id", session.RunID.String()),
		slog.Int("processed", len(session.Processed)),
		slog.Int("skipped", len(session.Skipped)),
		slog.Int("failed", len(session.Failed)),
	)

	for chunkID, err := range session.Failed {
		c.log.Warn("Chunk not curated", slog.Int64("chunk_id", chunkID), slog.Any("error", err))
	}
}

// ChangePlaceIndexType changes the place embedding index between HNSW and IVFFlat
func (c *Curator) ChangePlaceIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return c.Places.ChangeIndexType(ctx, indexType, params)
}
