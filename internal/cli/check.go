package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/n4lint/internal/fix"
	"github.com/ppiankov/n4lint/internal/model"
)

// ErrInvalidArrows is returned by check --strict when a document has invalid arrows
var ErrInvalidArrows = errors.New("invalid arrows found")

var (
	outJSON      string
	outMD        string
	htmlInput    bool
	limit        int
	alternatives bool
	sources      []string
	noCache      bool
	noFooter     bool
	applyFix     bool
	delUnfixable bool
	fixOut       string
	strict       bool
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file|->",
	Short: "Check the arrows in an N4L document",
	Long: `Check scans an N4L document for arrow phrases and validates each one
against the loaded vocabulary:
- Valid arrows are classified into their semantic category
- Invalid arrows get ranked replacement suggestions
- Lines inside @tag content blocks are skipped

Use "-" to read from stdin.

Example:
  n4lint check notes.n4l
  n4lint check notes.n4l --json report.json --md report.md
  n4lint check converted.html --html
  n4lint check notes.n4l --source ./SSTconfig --source builtin
  n4lint check notes.n4l --fix --out fixed.n4l
  n4lint check notes.n4l --fix --delete-unfixable`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	checkCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Input flags
	checkCmd.Flags().BoolVar(&htmlInput, "html", false, "treat input as HTML-wrapped converter output")

	// Vocabulary and suggestion flags
	checkCmd.Flags().StringArrayVar(&sources, "source", nil, "vocabulary source: file, directory, glob, URL or \"builtin\" (repeatable)")
	checkCmd.Flags().IntVar(&limit, "limit", 0, "max suggestions per arrow (default from config)")
	checkCmd.Flags().BoolVar(&alternatives, "alternatives", false, "also suggest alternatives for valid arrows")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch of remote sources)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall timeout including vocabulary loading")

	// Fix flags
	checkCmd.Flags().BoolVar(&applyFix, "fix", false, "replace invalid arrows with their top suggestion")
	checkCmd.Flags().BoolVar(&delUnfixable, "delete-unfixable", false, "with --fix, delete lines holding invalid arrows that have no suggestion")
	checkCmd.Flags().StringVar(&fixOut, "out", "", "write fixed text to this path instead of stdout")
	checkCmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when invalid arrows are found")
}

func runCheck(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	if delUnfixable && !applyFix {
		return fmt.Errorf("--delete-unfixable requires --fix")
	}

	content, err := readDocument(name)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, checkOptions())
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", name)
	}

	report, err := a.pipeline.Check(ctx, name, content)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	// Fixed text goes to stdout, so the summary moves to stderr
	summary := io.Writer(os.Stdout)
	if applyFix {
		summary = os.Stderr
		if err := writeFixed(a, name, content, report.Annotations); err != nil {
			return err
		}
	}

	if err := a.pipeline.RenderReport(summary, report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if _, invalid := report.Counts(); strict && invalid > 0 {
		return fmt.Errorf("%s: %d %w", name, invalid, ErrInvalidArrows)
	}
	return nil
}

func checkOptions() appOptions {
	opts := appOptions{
		Sources:      sources,
		Limit:        limit,
		Alternatives: alternatives,
		NoCache:      noCache,
		NoFooter:     noFooter,
	}
	if htmlInput {
		opts.Format = "html"
	}
	return opts
}

func writeFixed(a *app, name, content string, annotations []model.Annotation) error {
	text, err := a.pipeline.Extract(name, content)
	if err != nil {
		return err
	}

	edits := fix.Plan(text, annotations, delUnfixable)
	fixed, err := fix.Apply(text, edits)
	if err != nil {
		return fmt.Errorf("apply fixes: %w", err)
	}

	if fixOut == "" {
		_, err = io.WriteString(os.Stdout, fixed)
		return err
	}
	if err := os.WriteFile(fixOut, []byte(fixed), 0644); err != nil {
		return fmt.Errorf("write fixed text: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Applied %d fix(es): %s\n", len(edits), fixOut)
	}
	return nil
}

// readDocument reads a file, or stdin for "-"
func readDocument(name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}
