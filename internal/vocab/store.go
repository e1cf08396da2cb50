package vocab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/n4lint/internal/model"
)

const defaultWorkers = 4

// LoadReport describes the outcome of one load
type LoadReport struct {
	Sequence       uint64
	Sources        []string
	Warnings       []*SourceError // Unavailable sources and stale copies
	Phrases        int
	Duplicates     int
	MalformedLines int
	Superseded     bool // A newer load won; the returned snapshot is the newer one
	Duration       time.Duration
}

// WarningStrings flattens warnings about sources that did not contribute
func (r LoadReport) WarningStrings() []string {
	return r.noteStrings(func(w *SourceError) bool { return errors.Is(w, ErrSourceUnavailable) })
}

// StaleStrings lists sources that loaded from an expired cached copy
func (r LoadReport) StaleStrings() []string {
	return r.noteStrings(func(w *SourceError) bool { return errors.Is(w, ErrStaleSource) })
}

func (r LoadReport) noteStrings(match func(*SourceError) bool) []string {
	var out []string
	for _, w := range r.Warnings {
		if match(w) {
			out = append(out, w.Error())
		}
	}
	return out
}

// StoreOptions configures a Store
type StoreOptions struct {
	Workers  int      // Concurrent source reads per load
	Keywords Keywords // Curated keywords merged into every load
	Logger   *slog.Logger
}

// Store owns the current vocabulary snapshot and replaces it atomically on reload
type Store struct {
	current atomic.Pointer[Vocabulary]
	report  atomic.Pointer[LoadReport]
	seq     atomic.Uint64

	mu        sync.Mutex
	published uint64
	inflight  uint64
	cancel    context.CancelFunc

	workers  int
	keywords Keywords
	logger   *slog.Logger
}

// NewStore creates a store holding an empty vocabulary
func NewStore(opts StoreOptions) *Store {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		workers:  workers,
		keywords: opts.Keywords,
		logger:   logger,
	}
	s.current.Store(Empty())
	return s
}

// Current returns the published snapshot
func (s *Store) Current() *Vocabulary {
	return s.current.Load()
}

// LastReport returns the report of the load that produced the current snapshot
func (s *Store) LastReport() LoadReport {
	if r := s.report.Load(); r != nil {
		return *r
	}
	return LoadReport{}
}

// Lookup consults the published snapshot
func (s *Store) Lookup(phrase string) (model.Category, bool) {
	return s.Current().Lookup(phrase)
}

// Load reads sources and publishes the result
func (s *Store) Load(ctx context.Context, sources []Source) (*Vocabulary, LoadReport, error) {
	return s.load(ctx, sources)
}

// Reload replaces the snapshot. An in-flight older load is cancelled,
// and readers keep the previous snapshot until this one is published.
func (s *Store) Reload(ctx context.Context, sources []Source) (*Vocabulary, LoadReport, error) {
	return s.load(ctx, sources)
}

func (s *Store) load(parent context.Context, sources []Source) (*Vocabulary, LoadReport, error) {
	start := time.Now()
	seq := s.seq.Add(1)
	report := LoadReport{Sequence: seq}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	s.begin(seq, cancel)
	defer s.end(seq)

	v, loaded, warnings := collect(ctx, sources, s.workers, seq, s.keywords)

	if err := ctx.Err(); err != nil {
		if parent.Err() != nil {
			return nil, report, fmt.Errorf("load vocabulary: %w", parent.Err())
		}
		return s.superseded(report, start)
	}
	report.Sources = loaded
	report.Warnings = warnings

	for _, w := range report.Warnings {
		if errors.Is(w, ErrStaleSource) {
			s.logger.Info("vocabulary source loaded from stale cache", "source", w.Source)
			continue
		}
		s.logger.Warn("vocabulary source unavailable", "source", w.Source, "error", w.Err)
	}

	stats := v.Stats()
	report.Phrases = stats.Phrases
	report.Duplicates = stats.Duplicates
	report.MalformedLines = stats.MalformedLines
	report.Duration = time.Since(start)

	if err := s.publish(v, report); err != nil {
		return s.superseded(report, start)
	}

	s.logger.Debug("vocabulary published", "version", seq, "phrases", report.Phrases, "warnings", len(report.Warnings))
	return v, report, nil
}

// collect reads sources concurrently and builds a snapshot stamped with version.
// Bodies are added in source order whatever order the reads finish in.
func collect(ctx context.Context, sources []Source, workers int, version uint64, keywords Keywords) (*Vocabulary, []string, []*SourceError) {
	bodies := make([][]byte, len(sources))
	notes := make([]*SourceError, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			data, note := readSource(gctx, src)
			bodies[i] = data
			if note != nil {
				notes[i] = &SourceError{Source: src.Name(), Err: note}
			}
			return nil
		})
	}
	_ = g.Wait()

	b := newBuilder()
	var loaded []string
	var warnings []*SourceError
	for i, src := range sources {
		if notes[i] != nil {
			warnings = append(warnings, notes[i])
		}
		if bodies[i] == nil {
			continue
		}
		if err := b.add(src.Name(), categoryOf(src), bodies[i]); err != nil {
			warnings = append(warnings, &SourceError{Source: src.Name(), Err: err})
			continue
		}
		loaded = append(loaded, src.Name())
	}
	return b.build(version, keywords), loaded, warnings
}

// readSource returns the body and, when the body is missing or degraded, the reason
func readSource(ctx context.Context, src Source) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if st, ok := rc.(interface{ Stale() bool }); ok && st.Stale() {
		return data, ErrStaleSource
	}
	return data, nil
}

func (s *Store) begin(seq uint64, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.logger.Debug("cancelling older vocabulary load", "version", s.inflight, "by", seq)
		s.cancel()
	}
	s.inflight = seq
	s.cancel = cancel
}

func (s *Store) end(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight == seq {
		s.cancel = nil
	}
}

func (s *Store) publish(v *Vocabulary, report LoadReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.Sequence < s.published {
		return ErrReloadSuperseded
	}
	s.published = report.Sequence
	s.current.Store(v)
	s.report.Store(&report)
	return nil
}

func (s *Store) superseded(report LoadReport, start time.Time) (*Vocabulary, LoadReport, error) {
	s.logger.Debug("vocabulary load superseded", "version", report.Sequence)
	current := s.Current()
	report.Superseded = true
	report.Phrases = current.Len()
	report.Duration = time.Since(start)
	return current, report, nil
}
