package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	curator "github.com/pythagorakase/nexus-sub001"
	"github.com/pythagorakase/nexus-sub001/helper"
	"github.com/pythagorakase/nexus-sub001/model"
)

// defaultAssistTopK is how many similar existing places are shown next to
// a new-place suggestion when the embedding assist is enabled.
const defaultAssistTopK = 5

var (
	chunkSelection string
	episodeRef     string
	allChunks      bool
	testMode       bool
	overwrite      bool
	modelName      string
)

var rootCmd = &cobra.Command{
	Use:   "curate-places",
	Short: "Curate place references for narrative chunks",
	Long: `curate-places walks narrative chunks in order, asks a reasoning service
which known and new locations each chunk references, and lets you confirm,
edit, link or reject every new place before anything is written.

Confirmed references are stored per chunk in one atomic write. A chunk
without its own setting inherits the setting of the previous chunk.

Database connection parameters come from DB_* environment variables (a
.env file is honored), the reasoning service key from OPENAI_API_KEY.
PLACE_INSTRUCTIONS_PATH overrides the instruction template location,
PLACE_EMBEDDING_ASSIST=true enables the near-duplicate warning.`,
	Example: `  curate-places --chunk 5
  curate-places --chunk 5,7,9 --overwrite
  curate-places --episode s03e05
  curate-places --all
  curate-places --chunk 5-9 --test`,
	SilenceUsage: true,
	RunE:         runCuration,
}

func init() {
	rootCmd.Flags().StringVar(&chunkSelection, "chunk", "", `chunk selection: a single id ("5"), a list ("5,7,9") or a range ("5-9")`)
	rootCmd.Flags().StringVar(&episodeRef, "episode", "", `episode selection like "s03e05"`)
	rootCmd.Flags().BoolVar(&allChunks, "all", false, "curate every chunk still lacking references")
	rootCmd.Flags().BoolVar(&testMode, "test", false, "print the assembled payloads instead of calling the reasoning service")
	rootCmd.Flags().BoolVar(&overwrite, "overwrite", false, "reprocess chunks that already carry references")
	rootCmd.Flags().StringVar(&modelName, "model", "gpt-4o", "reasoning service model name")
}

// buildRunConfig turns flags and environment into a validated run
// configuration. Exactly one of --chunk, --episode and --all must be set.
func buildRunConfig() (*model.RunConfig, error) {
	config := model.DefaultRunConfig()
	config.TestMode = testMode
	config.Overwrite = overwrite
	config.Model = modelName
	config.All = allChunks

	if chunkSelection != "" {
		ids, err := model.ParseChunkSelection(chunkSelection)
		if err != nil {
			return nil, err
		}
		config.ChunkIDs = ids
	}

	if episodeRef != "" {
		episode, err := model.ParseEpisodeRef(episodeRef)
		if err != nil {
			return nil, err
		}
		config.Episode = &episode
	}

	if path := os.Getenv("PLACE_INSTRUCTIONS_PATH"); path != "" {
		config.InstructionsPath = path
	}

	if assist := os.Getenv("PLACE_EMBEDDING_ASSIST"); assist != "" {
		enabled, err := strconv.ParseBool(assist)
		if err != nil {
			return nil, fmt.Errorf("invalid PLACE_EMBEDDING_ASSIST %q: %w", assist, err)
		}
		config.EmbeddingAssist = enabled
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w (use exactly one of --chunk, --episode, --all)", err)
	}

	return &config, nil
}

func runCuration(cmd *cobra.Command, args []string) error {
	config, err := buildRunConfig()
	if err != nil {
		return err
	}

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return err
	}

	c, err := curator.NewCurator(dbConfig)
	if err != nil {
		return err
	}
	defer c.Close()

	// Test mode never contacts the service, so no pipeline is wired.
	if !config.TestMode {
		if err := c.UseOpenAIPipeline(config.Model); err != nil {
			return err
		}
		if config.EmbeddingAssist {
			if err := c.UseEmbeddingAssist(defaultAssistTopK); err != nil {
				return err
			}
		}
	}

	return c.Run(cmd.Context(), config)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
