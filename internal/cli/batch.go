package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/n4lint/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// sources, noCache, noFooter and strict are shared with check
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <listfile>",
	Short: "Check many N4L documents listed in a file",
	Long: `Batch checks documents concurrently against one vocabulary snapshot:
- Read document paths from the list file (one per line, # comments allowed)
- Check documents in parallel with a configurable worker count
- Write a JSON and a Markdown report per document

Example:
  n4lint batch notes.txt
  n4lint batch notes.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./n4lint-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().StringArrayVar(&sources, "source", nil, "vocabulary source (repeatable)")
	batchCmd.Flags().IntVar(&limit, "limit", 0, "max suggestions per arrow (default from config)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch of remote sources)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any document has invalid arrows")
}

func runBatch(cmd *cobra.Command, args []string) error {
	listFile := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  n4lint Batch Check\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", listFile)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	a, err := newApp(ctx, appOptions{Sources: sources, Limit: limit, NoCache: noCache, NoFooter: noFooter})
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(a.pipeline, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Reading paths from file...\n")
	results, err := processor.ProcessList(ctx, listFile)
	if err != nil {
		return fmt.Errorf("process list: %w", err)
	}

	renderer := a.pipeline.Renderer()
	successCount, failureCount, invalidDocs := 0, 0, 0
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}
		successCount++

		slug := uniqueSlug(sanitizeFilename(result.Path), used)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Path, err)
			continue
		}

		_, invalid := result.Report.Counts()
		if invalid > 0 {
			invalidDocs++
		}
		fmt.Fprintf(os.Stderr, "✓ %s (index: %d/100, invalid: %d)\n", result.Path, result.Report.Score.Index, invalid)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Invalid:   %d document(s) with invalid arrows\n", invalidDocs)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if strict && invalidDocs > 0 {
		return fmt.Errorf("%d document(s): %w", invalidDocs, ErrInvalidArrows)
	}
	return nil
}

// sanitizeFilename turns a document path into a report file stem
func sanitizeFilename(s string) string {
	s = strings.TrimSuffix(filepath.Base(filepath.Clean(s)), filepath.Ext(s))

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." {
		s = "document"
	}
	return s
}

// uniqueSlug suffixes repeated stems so reports from same-named files do not collide
func uniqueSlug(slug string, used map[string]int) string {
	n := used[slug]
	used[slug] = n + 1
	if n == 0 {
		return slug
	}
	return fmt.Sprintf("%s-%d", slug, n+1)
}
