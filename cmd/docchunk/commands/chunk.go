package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/pipeline"
)

var (
	chunkCmdFlags  chunkFlags
	chunkNoContent bool
)

// NewChunkCmd creates the chunk command.
func NewChunkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunk <file>",
		Short: "Print a document's chunks as JSON",
		Long: `Chunk a single document and print the chunk records as JSON.
Nothing is written to disk.

Examples:
  docchunk chunk guide.md
  docchunk chunk guide.md --max-tokens 400 --no-content`,
		Args: cobra.ExactArgs(1),
		RunE: runChunk,
	}

	chunkCmdFlags.register(cmd)
	cmd.Flags().BoolVar(&chunkNoContent, "no-content", false, "Omit chunk content from the output")

	return cmd
}

func runChunk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &chunkCmdFlags)
	if err != nil {
		return err
	}
	log := newLogger(cmd)

	text, err := readMarkdown(args[0], cfg)
	if err != nil {
		return err
	}

	est := chunker.NewEstimator(cfg.TokenizerModel, log)
	adv, err := pipeline.NewAdvisor(cfg, nil, log)
	if err != nil {
		return fmt.Errorf("initializing llm advisor: %w", err)
	}
	res, err := pipeline.NewChunker(adv, log).ChunkDocument(cmd.Context(), text, pipeline.OptionsFromConfig(cfg, est))
	if err != nil {
		return err
	}

	records := res.Records(est)
	if chunkNoContent {
		for i := range records {
			records[i].Content = ""
		}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
