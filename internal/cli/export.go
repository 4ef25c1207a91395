package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/normalia/internal/model"
	"github.com/ppiankov/normalia/internal/worker"
)

var (
	exportTags        bool
	exportOutputDir   string
	exportConcurrency int
	exportFile        string
	exportAll         bool
	exportStdout      bool
	exportTimeout     time.Duration
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [doc...]",
	Short: "Export corrected text of one or more documents",
	Long: `Export fetches documents in parallel, resolves their corrections and
writes the corrected text, one file per document, grouped by grade.

With --tags every corrected stretch is written as
<norm orig='ORIGINAL'>REPLACEMENT</norm>.

Example:
  normalia export 12 13 14
  normalia export --all --tags --output-dir ./out
  normalia export --file ids.txt --concurrency 8
  normalia export 12 --stdout`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(&exportTags, "tags", false, "wrap corrections in <norm> tags (default: export.use_tags)")
	exportCmd.Flags().StringVar(&exportOutputDir, "output-dir", "", "output directory (default: export.output_dir)")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", 0, "number of concurrent workers (default: export.concurrency)")
	exportCmd.Flags().StringVar(&exportFile, "file", "", "read document ids from file (one per line)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "export every listed document")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "print texts instead of writing files")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 10*time.Minute, "total timeout for the export")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("tags") {
		cfg.Export.UseTags = exportTags
	}
	if exportOutputDir != "" {
		cfg.Export.OutputDir = exportOutputDir
	}
	if exportConcurrency > 0 {
		cfg.Export.Concurrency = exportConcurrency
	}

	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if exportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, exportTimeout)
		defer cancel()
	}

	var ids []model.DocumentID
	for _, a := range args {
		id, err := parseDocID(a)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if exportFile != "" {
		fromFile, err := worker.ReadIDsFromFile(exportFile)
		if err != nil {
			return err
		}
		ids = append(ids, fromFile...)
	}
	if exportAll {
		docs, err := gw.ListDocuments(ctx)
		if err != nil {
			return err
		}
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
	}
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return fmt.Errorf("no documents to export: pass ids, --file or --all")
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "  Documents:    %d\n", len(ids))
		fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Export.Concurrency)
		fmt.Fprintf(os.Stderr, "  Tags:         %v\n", cfg.Export.UseTags)
		fmt.Fprintf(os.Stderr, "  Output dir:   %s\n\n", cfg.Export.OutputDir)
	}

	start := time.Now()
	processor := worker.NewBatchProcessor(gw, cfg.Export.Concurrency, cfg.Export.UseTags)
	results := processor.ProcessIDs(ctx, ids)

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %d: %v\n", r.ID, r.Error)
		}
	}

	out := cmd.OutOrStdout()
	if exportStdout {
		for _, r := range results {
			if r.Error == nil {
				fmt.Fprintf(out, "=== %d %s ===\n%s\n", r.ID, r.FileName(), r.Text)
			}
		}
	} else {
		paths, err := worker.WriteResults(cfg.Export.OutputDir, results)
		for _, p := range paths {
			fmt.Fprintf(out, "✓ %s\n", p)
		}
		if err != nil {
			return err
		}
	}

	exported := len(results) - failed
	fmt.Fprintf(os.Stderr, "\nExported %d/%d documents in %v\n", exported, len(ids), time.Since(start).Round(time.Millisecond))
	if exported < len(ids) {
		return fmt.Errorf("%d of %d exports failed", len(ids)-exported, len(ids))
	}
	return nil
}

func dedupeIDs(ids []model.DocumentID) []model.DocumentID {
	seen := make(map[model.DocumentID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
