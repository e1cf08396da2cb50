package vocab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ppiankov/n4lint/internal/cache"
	"github.com/ppiankov/n4lint/internal/util"
	"github.com/ppiankov/n4lint/internal/worker"
)

const maxFetchAttempts = 3

// fetchSleepFunc waits out a retry backoff; tests replace it to skip delays
var fetchSleepFunc = sleepContext

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BodyCache stores fetched source bodies. GetStale may return expired entries.
type BodyCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	GetStale(key string) ([]byte, time.Time, bool)
}

// HTTPOptions configures remote source fetching
type HTTPOptions struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	HTTPProxy    string
	HTTPSProxy   string
	NoProxy      string

	Limiter  *worker.Limiter     // optional per-host rate limit
	Robots   *util.RobotsChecker // optional robots.txt compliance
	Cache    BodyCache           // optional body cache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// HTTPFetcher downloads SSTconfig files over http(s)
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	cache      BodyCache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// NewHTTPFetcher creates a fetcher from opts
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBytes := opts.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBytes:  maxBytes,
		limiter:   opts.Limiter,
		robots:    opts.Robots,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		logger:    logger,
	}
}

// Fetch returns the body at rawURL, serving from cache when fresh.
// When the network fails, a stale cached body is returned with a nil error
// and stale set to true.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (body []byte, stale bool, err error) {
	key := CacheKeyForURL(rawURL)

	if f.cache != nil {
		if data, ok := f.cache.Get(key); ok {
			return data, false, nil
		}
	}

	body, err = f.FetchWithRetry(ctx, rawURL)
	if err == nil {
		if f.cache != nil {
			if cerr := f.cache.Set(key, body, f.cacheTTL); cerr != nil {
				f.logger.Warn("cache source body", "url", rawURL, "error", cerr)
			}
		}
		return body, false, nil
	}

	if ctx.Err() != nil || f.cache == nil {
		return nil, false, err
	}
	if data, storedAt, ok := f.cache.GetStale(key); ok {
		f.logger.Warn("using cached copy of source", "url", rawURL, "stored_at", storedAt, "error", err)
		return data, true, nil
	}
	return nil, false, err
}

// CacheKeyForURL is the body cache key of a remote source
func CacheKeyForURL(rawURL string) string {
	return cache.CacheKey("source", rawURL)
}

// FetchWithRetry fetches with exponential backoff on transient failures
func (f *HTTPFetcher) FetchWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("check robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("disallowed by robots.txt")
		}
		if f.limiter != nil {
			f.limiter.ApplyCrawlDelay(rawURL, delay)
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			if err := fetchSleepFunc(ctx, time.Duration(1<<(attempt-1))*time.Second); err != nil {
				return nil, fmt.Errorf("retry backoff: %w", err)
			}
			f.logger.Debug("retrying source fetch", "url", rawURL, "attempt", attempt+1, "error", lastErr)
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, rawURL); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}

		body, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", maxFetchAttempts, lastErr)
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.code, e.status)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	var ne net.Error
	return errors.As(err, &ne)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/plain,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// HTTPSource is an SSTconfig file served over http(s)
type HTTPSource struct {
	URL     string
	Fetcher *HTTPFetcher
}

func (s *HTTPSource) Name() string { return s.URL }

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	body, stale, err := s.Fetcher.Fetch(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	return &fetchedBody{Reader: bytes.NewReader(body), stale: stale}, nil
}

// fetchedBody marks bodies served from an expired cache entry
type fetchedBody struct {
	*bytes.Reader
	stale bool
}

func (b *fetchedBody) Close() error { return nil }

func (b *fetchedBody) Stale() bool { return b.stale }
