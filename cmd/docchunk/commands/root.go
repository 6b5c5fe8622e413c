package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

// NewRootCmd creates the docchunk command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docchunk",
		Short: "Convert documents to Markdown and split them into retrieval chunks",
		Long: `docchunk converts PDF, DOCX, HTML, CSV and text files to Markdown and
splits the result into chunks sized for embedding and retrieval.

Chunk boundaries follow the document's headings. Oversized sections are
split on subheadings, list markers and paragraphs; undersized ones are
merged into their neighbours. An LLM can optionally choose the strategy
or review the boundaries.

Settings come from the environment (and .env), then --config, then flags.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewChunkCmd())
	cmd.AddCommand(NewStructureCmd())
	cmd.AddCommand(NewMCPCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
