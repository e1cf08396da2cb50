package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/n4lint/internal/model"
)

// Checker checks one N4L document
type Checker interface {
	Check(ctx context.Context, name string, text string) (*model.Report, error)
}

// CheckJob checks a document read from Path
type CheckJob struct {
	Path    string
	Checker Checker
}

// Execute reads the file and runs the check
func (j *CheckJob) Execute(ctx context.Context) Result {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return &CheckResult{Path: j.Path, Error: fmt.Errorf("read document: %w", err)}
	}

	report, err := j.Checker.Check(ctx, j.Path, string(data))
	if err != nil {
		return &CheckResult{Path: j.Path, Error: err}
	}

	return &CheckResult{Path: j.Path, Report: report}
}

// CheckResult is the outcome of a CheckJob
type CheckResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the check
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many documents concurrently against one checker
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessFiles checks the given paths; results follow input order
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*CheckResult {
	if len(paths) == 0 {
		return []*CheckResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&CheckJob{
			Path:    path,
			Checker: b.checker,
		})
	}

	results := pool.Wait()

	checkResults := make([]*CheckResult, len(paths))
	for i, path := range paths {
		if i >= len(results) || results[i] == nil {
			checkResults[i] = &CheckResult{Path: path, Error: context.Canceled}
			continue
		}
		checkResults[i] = results[i].(*CheckResult)
	}

	return checkResults
}

// ProcessList reads document paths from listPath and checks them
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*CheckResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessFiles(ctx, paths), nil
}

// ReadPathsFromFile reads one path per line, skipping blanks and # comments, de-duplicated
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
