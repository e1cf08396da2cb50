package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ppiankov/n4lint/internal/cache"
	"github.com/ppiankov/n4lint/internal/model"
	"github.com/ppiankov/n4lint/internal/pipeline"
	"github.com/ppiankov/n4lint/internal/util"
	"github.com/ppiankov/n4lint/internal/vocab"
	"github.com/ppiankov/n4lint/internal/worker"
)

// appOptions are per-command overrides applied on top of the loaded config
type appOptions struct {
	Sources      []string // Replaces vocabulary.sources when set
	Limit        int      // Overrides suggest.limit when > 0
	Alternatives bool
	NoCache      bool
	NoFooter     bool
	Format       string
}

// app wires one vocabulary store and one pipeline for a command run
type app struct {
	cfg      *model.Config
	sources  []vocab.Source
	store    *vocab.Store
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// newApp loads configuration, resolves vocabulary sources and performs the first load
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if len(opts.Sources) > 0 {
		cfg.Vocabulary.Sources = opts.Sources
	}
	if opts.Limit > 0 {
		cfg.Suggest.Limit = opts.Limit
	}
	if opts.Alternatives {
		cfg.Suggest.Alternatives = true
	}
	if opts.NoCache {
		cfg.Cache.Enabled = false
	}
	if opts.NoFooter {
		cfg.Output.IncludeFooter = false
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := slog.Default()

	keywords := vocab.BuiltinKeywords()
	if cfg.Vocabulary.KeywordsFile != "" {
		extra, err := vocab.LoadKeywordsFile(cfg.Vocabulary.KeywordsFile)
		if err != nil {
			return nil, err
		}
		keywords = keywords.Merge(extra)
	}

	store := vocab.NewStore(vocab.StoreOptions{
		Workers:  cfg.Vocabulary.LoadWorkers,
		Keywords: keywords,
		Logger:   logger,
	})

	a := &app{
		cfg:     cfg,
		sources: vocab.ResolveSources(cfg.Vocabulary.Sources, newFetcher(cfg, logger)),
		store:   store,
		logger:  logger,
	}

	var memo *cache.MemoryCache
	if cfg.Cache.Enabled {
		memo = cache.NewMemoryCache(cfg.Cache.MemoryTTL, 10*time.Minute)
	}
	a.pipeline = pipeline.New(a.store, pipeline.Options{
		Limit:        cfg.Suggest.Limit,
		Alternatives: cfg.Suggest.Alternatives,
		Memo:         memo,
		NoFooter:     !cfg.Output.IncludeFooter,
		Format:       opts.Format,
		Logger:       logger,
	})

	if _, err := a.reload(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// newFetcher builds the HTTP fetcher for remote vocabulary sources
func newFetcher(cfg *model.Config, logger *slog.Logger) *vocab.HTTPFetcher {
	opts := vocab.HTTPOptions{
		Timeout:      cfg.HTTP.Timeout,
		UserAgent:    cfg.HTTP.UserAgent,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		HTTPProxy:    cfg.HTTP.HTTPProxy,
		HTTPSProxy:   cfg.HTTP.HTTPSProxy,
		NoProxy:      cfg.HTTP.NoProxy,
		Limiter:      worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		CacheTTL:     cfg.Cache.TTL,
		Logger:       logger,
	}
	if cfg.HTTP.RespectRobots {
		opts.Robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}
	if cfg.Cache.Enabled {
		opts.Cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}
	return vocab.NewHTTPFetcher(opts)
}

// reload loads the configured sources into the store and reports progress on stderr
func (a *app) reload(ctx context.Context) (vocab.LoadReport, error) {
	if a.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Loading vocabulary from %d source(s)...\n", len(a.sources))
	}

	v, report, err := a.store.Reload(ctx, a.sources)
	if err != nil {
		return report, err
	}

	if a.cfg.Output.Verbose {
		if report.Superseded {
			fmt.Fprintf(os.Stderr, "✓ Load superseded, using vocabulary v%d\n", v.Version())
		} else {
			fmt.Fprintf(os.Stderr, "✓ Loaded %d phrases (v%d, %s)\n", report.Phrases, v.Version(), report.Duration.Round(time.Millisecond))
		}
		if report.MalformedLines > 0 {
			fmt.Fprintf(os.Stderr, "  skipped %d malformed line(s)\n", report.MalformedLines)
		}
	}
	if v.Len() == 0 {
		fmt.Fprintf(os.Stderr, "⚠ Vocabulary is empty: every arrow will be reported invalid\n")
	}
	return report, nil
}
