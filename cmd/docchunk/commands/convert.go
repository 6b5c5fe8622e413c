package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/doctree"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/dgallion1/docchunk/internal/store"
)

var (
	convertFlags  chunkFlags
	convertForce  bool
	convertDryRun bool
	convertOutput string
)

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <path>",
		Short: "Convert documents and write their chunks to the output directory",
		Long: `Convert a document, or every supported document in a directory, to
Markdown and write its chunks as <output>/<name>/chunks/NNN_<slug>.md.

Documents whose output already exists are skipped unless --force is given.
With --dry-run the Markdown is written and the chunk plan printed, but no
chunk files are created.

Examples:
  docchunk convert handbook.pdf
  docchunk convert ./docs --max-tokens 800
  docchunk convert notes.md --llm-strategy --llm-provider openai`,
		Args: cobra.ExactArgs(1),
		RunE: runConvert,
	}

	convertFlags.register(cmd)
	cmd.Flags().BoolVar(&convertForce, "force", false, "Overwrite existing output")
	cmd.Flags().BoolVar(&convertDryRun, "dry-run", false, "Print the chunk plan without writing chunks")
	cmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output directory (default OUTPUT_DIR or ./output)")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	// Bounds are checked before any input is read.
	cfg, err := loadConfig(cmd, &convertFlags)
	if err != nil {
		return err
	}
	if convertOutput != "" {
		cfg.OutputDir = convertOutput
	}
	log := newLogger(cmd)
	out := cmd.OutOrStdout()

	paths, err := collectInputs(args[0])
	if err != nil {
		return err
	}

	est := chunker.NewEstimator(cfg.TokenizerModel, log)
	fs := store.NewFileStore(cfg.OutputDir, est)

	var inputs []pipeline.Input
	seen := make(map[string]string)
	for _, p := range paths {
		name := pipeline.DocName(filepath.Base(p))
		if prev, ok := seen[name]; ok {
			fmt.Fprintf(out, "skip %s: same output name as %s\n", p, prev)
			continue
		}
		seen[name] = p
		if !convertForce && fs.HasOutput(name) {
			fmt.Fprintf(out, "skip %s: %s exists (use --force to overwrite)\n", p, fs.MarkdownPath(name))
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		inputs = append(inputs, pipeline.Input{Filename: filepath.Base(p), Data: data})
	}
	if len(inputs) == 0 {
		return nil
	}

	adv, err := pipeline.NewAdvisor(cfg, nil, log)
	if err != nil {
		return fmt.Errorf("initializing llm advisor: %w", err)
	}
	ch := pipeline.NewChunker(adv, log)
	opts := pipeline.OptionsFromConfig(cfg, est)
	conv := pipeline.Converter{PDFFallback: cfg.PDFFallbackPdftotext}

	outputs, err := ch.ProcessBatch(cmd.Context(), conv, inputs, opts, cfg.WorkerCount)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outputs {
		if o.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "failed %s: %v\n", o.Filename, o.Err)
			continue
		}
		records := o.Result.Records(est)

		if convertDryRun {
			if err := fs.WriteMarkdown(o.DocName, o.Markdown); err != nil {
				return err
			}
			printPlan(out, o, records)
			continue
		}

		doc := doctree.Document{
			Name:        o.DocName,
			Filename:    o.Filename,
			ContentHash: doctree.ContentHash(o.Markdown),
			Markdown:    o.Markdown,
			Strategy:    o.Result.Strategy,
			Records:     records,
			CreatedAt:   time.Now(),
		}
		if err := fs.Save(cmd.Context(), doc); err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "failed %s: %v\n", o.Filename, err)
			continue
		}
		fmt.Fprintf(out, "%s: %d chunks (%s) -> %s\n", o.Filename, len(records), o.Result.Strategy, filepath.Join(fs.Root(), o.DocName))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(outputs))
	}
	return nil
}

func printPlan(out io.Writer, o pipeline.Output, records []doctree.Record) {
	fmt.Fprintf(out, "%s: %d chunks (%s)\n", o.Filename, len(records), o.Result.Strategy)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLEVEL\tTOKENS\tTITLE")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", r.ID, r.Level, r.TokenCount, r.Title)
	}
	w.Flush()
}
