package vocab

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/n4lint/internal/model"
)

// blockingSource holds Open until released or cancelled
type blockingSource struct {
	name    string
	text    string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingSource(name, text string) *blockingSource {
	return &blockingSource{
		name:    name,
		text:    text,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *blockingSource) Name() string { return s.name }

func (s *blockingSource) Open(ctx context.Context) (io.ReadCloser, error) {
	s.once.Do(func() { close(s.started) })
	select {
	case <-s.release:
		return io.NopCloser(strings.NewReader(s.text)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// staleSource serves text the way an HTTP source serves an expired cache entry
type staleSource struct {
	TextSource
}

type staleReader struct {
	io.Reader
}

func (staleReader) Close() error { return nil }
func (staleReader) Stale() bool  { return true }

func (s *staleSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return staleReader{strings.NewReader(s.Text)}, nil
}

type loadResult struct {
	vocab  *Vocabulary
	report LoadReport
	err    error
}

func TestStore_LoadBuiltin(t *testing.T) {
	s := NewStore(StoreOptions{Keywords: BuiltinKeywords()})

	v, report, err := s.Load(context.Background(), ResolveSources([]string{BuiltinLocation}, nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", report.WarningStrings())
	}
	if report.Sequence != 1 || v.Version() != 1 {
		t.Errorf("expected version 1, got report %d vocab %d", report.Sequence, v.Version())
	}
	if v.Len() < 300 {
		t.Errorf("expected the full builtin vocabulary, got %d phrases", v.Len())
	}
	if s.Current() != v {
		t.Error("Current should return the published snapshot")
	}

	tests := []struct {
		phrase string
		want   model.Category
	}{
		{"similar to", model.CategorySimilarity},
		{"is not", model.CategorySimilarity},
		{"leads to", model.CategoryCausality},
		{"(contains)", model.CategoryContainment},
		{"e.g.", model.CategoryExpression},
		{"nb", model.CategoryExpression},
		{"offers", model.CategorySpecial},
	}
	for _, tt := range tests {
		if got, ok := s.Lookup(tt.phrase); !ok || got != tt.want {
			t.Errorf("Lookup(%q) = %s, %v; want %s", tt.phrase, got, ok, tt.want)
		}
	}

	p, _ := v.Phrase("leads to")
	if !containsString(p.Keywords, "causes") {
		t.Errorf("expected curated keyword causes, got %v", p.Keywords)
	}
	if got := phraseTexts(v.Synonyms("leads to")); len(got) != 1 || got[0] != "fwd" {
		t.Errorf("Synonyms(leads to) = %v, want [fwd]", got)
	}
}

func TestStore_ReportsUnavailableSources(t *testing.T) {
	s := NewStore(StoreOptions{})

	sources := []Source{
		&TextSource{SourceName: "arrows-NR-0.sst", Text: "(similar to) (sim)\n(bad\n"},
		&FileSource{Path: "/nonexistent/arrows-LT-1.sst"},
	}
	v, report, err := s.Load(context.Background(), sources)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if v.Len() != 2 || report.Phrases != 2 {
		t.Errorf("expected 2 phrases, got vocab %d report %d", v.Len(), report.Phrases)
	}
	if report.MalformedLines != 1 {
		t.Errorf("expected 1 malformed line, got %d", report.MalformedLines)
	}
	if len(report.Sources) != 1 || report.Sources[0] != "arrows-NR-0.sst" {
		t.Errorf("sources = %v", report.Sources)
	}
	if len(report.Warnings) != 1 || !errors.Is(report.Warnings[0], ErrSourceUnavailable) {
		t.Fatalf("expected one unavailable warning, got %v", report.WarningStrings())
	}
}

func TestStore_StaleCopyIsNotUnavailable(t *testing.T) {
	s := NewStore(StoreOptions{})

	sources := []Source{
		&staleSource{TextSource{SourceName: "arrows-LT-1.sst", Text: "(leads to) (fwd)\n"}},
		&FileSource{Path: "/nonexistent/arrows-CN-2.sst"},
	}
	v, report, err := s.Load(context.Background(), sources)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if v.Len() != 2 {
		t.Errorf("expected the stale copy to contribute 2 phrases, got %d", v.Len())
	}
	if len(report.Sources) != 1 || report.Sources[0] != "arrows-LT-1.sst" {
		t.Errorf("sources = %v", report.Sources)
	}

	unavailable := report.WarningStrings()
	if len(unavailable) != 1 || !strings.Contains(unavailable[0], "arrows-CN-2.sst") {
		t.Errorf("unavailable = %v, want only the missing file", unavailable)
	}
	stale := report.StaleStrings()
	if len(stale) != 1 || !strings.Contains(stale[0], "arrows-LT-1.sst") {
		t.Errorf("stale = %v, want the cached source", stale)
	}
}

func TestStore_NoReadableSourcesIsEmpty(t *testing.T) {
	s := NewStore(StoreOptions{})

	v, report, err := s.Load(context.Background(), []Source{&FileSource{Path: "/nonexistent/a.sst"}})
	if err != nil {
		t.Fatalf("empty vocabulary is not an error: %v", err)
	}
	if v.Len() != 0 {
		t.Errorf("expected empty vocabulary, got %d", v.Len())
	}
	if v.Version() != 1 {
		t.Errorf("empty result should still publish, got version %d", v.Version())
	}
	if len(report.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(report.Warnings))
	}
}

func TestStore_SourceOrderIsDeterministic(t *testing.T) {
	s := NewStore(StoreOptions{Workers: 4})

	// The first source finishes last; parse order must still follow source order.
	slow := newBlockingSource("arrows-NR-0.sst", "(shared) (sim)\n")
	fast := &TextSource{SourceName: "arrows-LT-1.sst", Text: "(shared) (fwd)\n"}

	done := make(chan loadResult, 1)
	go func() {
		v, r, err := s.Load(context.Background(), []Source{slow, fast})
		done <- loadResult{v, r, err}
	}()
	<-slow.started
	close(slow.release)

	res := <-done
	if res.err != nil {
		t.Fatalf("Load failed: %v", res.err)
	}
	want := []string{"shared", "sim", "fwd"}
	got := phraseTexts(res.vocab.AllPhrases())
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("phrases = %v, want %v", got, want)
	}
	if cat, _ := res.vocab.Lookup("shared"); cat != model.CategorySimilarity {
		t.Errorf("first source should own shared, got %s", cat)
	}
}

func TestStore_NewerReloadSupersedesOlder(t *testing.T) {
	s := NewStore(StoreOptions{})

	old := newBlockingSource("arrows-NR-0.sst", "(old phrase)\n")
	done := make(chan loadResult, 1)
	go func() {
		v, r, err := s.Reload(context.Background(), []Source{old})
		done <- loadResult{v, r, err}
	}()
	<-old.started

	newer, report, err := s.Reload(context.Background(), []Source{
		&TextSource{SourceName: "arrows-LT-1.sst", Text: "(leads to)\n"},
	})
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if report.Superseded {
		t.Error("newest load must not be superseded")
	}
	if newer.Version() != 2 {
		t.Errorf("expected version 2, got %d", newer.Version())
	}

	res := <-done
	if res.err != nil {
		t.Fatalf("superseded load should not fail: %v", res.err)
	}
	if !res.report.Superseded {
		t.Error("older load should report Superseded")
	}
	if res.vocab == nil {
		t.Fatal("superseded load should return the current snapshot")
	}
	if _, ok := res.vocab.Lookup("old phrase"); ok {
		t.Error("superseded load returned its own unpublished result")
	}
	if s.Current() != newer {
		t.Error("older load must not overwrite the newer snapshot")
	}
	if _, ok := s.Lookup("old phrase"); ok {
		t.Error("phrase from superseded load leaked into the store")
	}
}

func TestStore_CancelledLoadDoesNotPublish(t *testing.T) {
	s := NewStore(StoreOptions{})
	first, _, err := s.Load(context.Background(), []Source{
		&TextSource{SourceName: "arrows-LT-1.sst", Text: "(leads to)\n"},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	blocked := newBlockingSource("arrows-NR-0.sst", "(similar to)\n")

	done := make(chan loadResult, 1)
	go func() {
		v, r, err := s.Reload(ctx, []Source{blocked})
		done <- loadResult{v, r, err}
	}()
	<-blocked.started
	cancel()

	res := <-done
	if !errors.Is(res.err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.err)
	}
	if res.vocab != nil {
		t.Error("cancelled load should not return a vocabulary")
	}
	if s.Current() != first {
		t.Error("cancelled load must keep the previous snapshot")
	}
}

func TestStore_ReadersSeeWholeSnapshots(t *testing.T) {
	s := NewStore(StoreOptions{})
	small := []Source{&TextSource{SourceName: "arrows-LT-1.sst", Text: "(a b) (c d)\n"}}
	large := []Source{&TextSource{SourceName: "arrows-LT-1.sst", Text: "(a b) (c d)\n(e f) (g h) (i j)\n"}}

	if _, _, err := s.Load(context.Background(), small); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan string, 8)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				v := s.Current()
				if n := len(v.AllPhrases()); n != 2 && n != 5 {
					errs <- "partial snapshot observed"
					return
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		src := small
		if i%2 == 0 {
			src = large
		}
		if _, _, err := s.Reload(context.Background(), src); err != nil {
			t.Fatalf("Reload failed: %v", err)
		}
	}
	close(stop)
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
