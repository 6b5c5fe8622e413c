package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/config"
)

// NewStructureCmd creates the structure command.
func NewStructureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "structure <file>",
		Short: "Print a document's heading outline",
		Long: `Print the heading hierarchy of a document with the token size of each
section. Non-Markdown files are converted first.`,
		Args: cobra.ExactArgs(1),
		RunE: runStructure,
	}
}

func runStructure(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if configPath != "" {
		if err := config.LoadFile(configPath, &cfg); err != nil {
			return err
		}
	}

	text, err := readMarkdown(args[0], cfg)
	if err != nil {
		return err
	}
	s := chunker.ExtractStructure(text, chunker.NewEstimator(cfg.TokenizerModel, newLogger(cmd)))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, chunker.Hierarchy(s))
	fmt.Fprintf(out, "\nTotal: %d tokens, %d lines", s.TotalTokens, s.TotalLines)
	if s.HasStructure {
		fmt.Fprintf(out, ", heading levels %d-%d", s.MinLevel, s.MaxLevel)
	}
	fmt.Fprintln(out)
	return nil
}
