package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ppiankov/n4lint/internal/vocab"
)

var debounce time.Duration

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-check a document whenever it changes",
	Long: `Watch checks a document, then checks it again after every save.

Local vocabulary files are watched too: editing an SSTconfig file reloads
the vocabulary and re-checks the document. Send SIGHUP to reload remote
sources on demand.

Example:
  n4lint watch notes.n4l
  n4lint watch notes.n4l --source ./SSTconfig --debounce 500ms`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "wait this long after the last change before re-checking")
	watchCmd.Flags().StringVar(&outJSON, "json", "", "rewrite this JSON report on every check")
	watchCmd.Flags().StringVar(&outMD, "md", "", "rewrite this Markdown report on every check")
	watchCmd.Flags().BoolVar(&htmlInput, "html", false, "treat input as HTML-wrapped converter output")
	watchCmd.Flags().StringArrayVar(&sources, "source", nil, "vocabulary source (repeatable)")
	watchCmd.Flags().IntVar(&limit, "limit", 0, "max suggestions per arrow (default from config)")
	watchCmd.Flags().BoolVar(&alternatives, "alternatives", false, "also suggest alternatives for valid arrows")
	watchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch of remote sources)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	a, err := newApp(ctx, checkOptions())
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace files on save, so directories are watched
	dirs := map[string]bool{filepath.Dir(docPath): true}
	vocabFiles := make(map[string]bool)
	for _, src := range a.sources {
		fs, ok := src.(*vocab.FileSource)
		if !ok {
			continue
		}
		if abs, err := filepath.Abs(fs.Path); err == nil {
			vocabFiles[abs] = true
			dirs[filepath.Dir(abs)] = true
		}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	check := func() {
		content, err := readDocument(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
			return
		}
		report, err := a.pipeline.Check(ctx, path, content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ check failed: %v\n", err)
			return
		}
		if err := a.pipeline.RenderReport(os.Stdout, report, outJSON, outMD, verbose); err != nil {
			fmt.Fprintf(os.Stderr, "✗ render failed: %v\n", err)
		}
	}
	reload := func() {
		if _, err := a.reload(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "✗ reload failed: %v\n", err)
			return
		}
		check()
	}

	check()
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", path)

	var docTimer, vocabTimer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-hup:
			slog.Debug("SIGHUP received, reloading vocabulary")
			reload()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if name == docPath {
				docTimer = time.After(debounce)
			}
			if vocabFiles[name] {
				vocabTimer = time.After(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "error", err)

		case <-docTimer:
			docTimer = nil
			check()

		case <-vocabTimer:
			vocabTimer = nil
			if verbose {
				fmt.Fprintf(os.Stderr, "Vocabulary file changed, reloading\n")
			}
			reload()
		}
	}
}
