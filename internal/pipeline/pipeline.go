package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ppiankov/n4lint/internal/cache"
	"github.com/ppiankov/n4lint/internal/extract"
	"github.com/ppiankov/n4lint/internal/model"
	"github.com/ppiankov/n4lint/internal/scan"
	"github.com/ppiankov/n4lint/internal/score"
	"github.com/ppiankov/n4lint/internal/suggest"
	"github.com/ppiankov/n4lint/internal/validate"
	"github.com/ppiankov/n4lint/internal/vocab"
)

// Options configures a Pipeline
type Options struct {
	Limit        int                // Suggestions per annotation (<= 0 uses suggest.DefaultLimit)
	Alternatives bool               // Also suggest for valid arrows
	Memo         *cache.MemoryCache // Optional annotation memo; nil disables memoization
	NoFooter     bool               // Omit the Markdown report footer
	Format       string             // Force an extractor ("html", "plain"); empty detects per document
	Logger       *slog.Logger
}

// Pipeline orchestrates scan, validation and suggestion over a vocabulary snapshot
type Pipeline struct {
	store        *vocab.Store
	engine       *suggest.Engine
	scorer       *score.Scorer
	extractors   *extract.Registry
	renderer     *Renderer
	format       string
	alternatives bool
	memo         *cache.MemoryCache
	logger       *slog.Logger
}

// New creates a pipeline reading snapshots from store
func New(store *vocab.Store, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		store:        store,
		engine:       suggest.NewEngine(opts.Limit),
		scorer:       score.NewScorer(),
		extractors:   extract.NewRegistry(),
		renderer:     NewRenderer(!opts.NoFooter),
		format:       opts.Format,
		alternatives: opts.Alternatives,
		memo:         opts.Memo,
		logger:       logger,
	}
}

// Engine returns the suggestion engine used for annotations
func (p *Pipeline) Engine() *suggest.Engine {
	return p.engine
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Store returns the vocabulary store the pipeline reads from
func (p *Pipeline) Store() *vocab.Store {
	return p.store
}

// Annotate scans text and classifies every candidate against v.
// The result depends only on text, v and the pipeline options.
func (p *Pipeline) Annotate(text string, v *vocab.Vocabulary) []model.Annotation {
	if v == nil {
		v = vocab.Empty()
	}

	key := ""
	if p.memo != nil {
		key = cache.CacheKey(v.Fingerprint(), strconv.Itoa(p.engine.Limit()), strconv.FormatBool(p.alternatives), text)
		var cached []model.Annotation
		if p.memo.GetJSON(key, &cached) {
			return cached
		}
	}

	annotations := p.annotate(text, v)

	if p.memo != nil {
		if err := p.memo.SetJSON(key, annotations); err != nil {
			p.logger.Debug("memoize annotations", "error", err)
		}
	}
	return annotations
}

func (p *Pipeline) annotate(text string, v *vocab.Vocabulary) []model.Annotation {
	results := validate.ValidateAll(scan.Scan(text), v)
	annotations := make([]model.Annotation, 0, len(results))

	for _, r := range results {
		a := model.Annotation{Candidate: r.Candidate, Valid: r.Valid, Category: r.Category}

		switch {
		case !r.Valid:
			a.SuggestionKind = model.KindCorrections
			if s := p.engine.Suggest(r.Candidate, v, 0); len(s) > 0 {
				a.Suggestions = s
				a.Category, _ = suggest.BestCategory(s)
			}
		case p.alternatives:
			if s := p.engine.Suggest(r.Candidate, v, 0); len(s) > 0 {
				a.Suggestions = s
				a.SuggestionKind = model.KindAlternatives
			}
		}

		annotations = append(annotations, a)
	}
	return annotations
}

// Extract returns the N4L text of a document, unwrapping HTML when detected
// or when the pipeline format forces it.
func (p *Pipeline) Extract(name, content string) (string, error) {
	extractor := p.extractors.Find(name, content)
	if p.format != "" {
		forced, ok := p.extractors.Lookup(p.format)
		if !ok {
			return "", fmt.Errorf("unknown input format %q", p.format)
		}
		extractor = forced
	}
	text, err := extractor.Extract(content)
	if err != nil {
		return "", fmt.Errorf("extract %s text: %w", extractor.Name(), err)
	}
	return text, nil
}

// Check annotates a document against the store's current snapshot and scores it.
// HTML-wrapped converter output is reduced to its text first.
func (p *Pipeline) Check(ctx context.Context, name, content string) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("check %s: %w", name, err)
	}

	text, err := p.Extract(name, content)
	if err != nil {
		return nil, err
	}

	v := p.store.Current()
	info := v.Info()
	if last := p.store.LastReport(); last.Sequence == v.Version() {
		info.Warnings = last.WarningStrings()
		info.Stale = last.StaleStrings()
	}

	annotations := p.Annotate(text, v)

	return &model.Report{
		Document:    name,
		CheckedAt:   time.Now().UTC(),
		Vocabulary:  info,
		Annotations: annotations,
		Score:       p.scorer.Calculate(annotations, info),
	}, nil
}
