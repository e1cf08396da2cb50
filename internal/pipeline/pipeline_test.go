package pipeline

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/ppiankov/n4lint/internal/cache"
	"github.com/ppiankov/n4lint/internal/model"
	"github.com/ppiankov/n4lint/internal/vocab"
)

func testSources() []vocab.Source {
	return []vocab.Source{
		&vocab.TextSource{SourceName: "arrows-NR-0.sst", Text: "(same as) (eq)\n"},
		&vocab.TextSource{SourceName: "arrows-LT-1.sst", Text: "(leads to) (fwd)\n(results in) (res)\n"},
	}
}

func newTestPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	store := vocab.NewStore(vocab.StoreOptions{Workers: 2})
	if _, _, err := store.Load(context.Background(), testSources()); err != nil {
		t.Fatalf("load vocabulary: %v", err)
	}
	return New(store, opts)
}

func TestAnnotate_ValidArrow(t *testing.T) {
	p := newTestPipeline(t, Options{})

	got := p.Annotate("Rain (leads to) wet ground.", p.Store().Current())
	if len(got) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(got))
	}

	a := got[0]
	if a.Start != 5 || a.End != 15 {
		t.Errorf("span = [%d,%d), want [5,15)", a.Start, a.End)
	}
	if !a.Valid {
		t.Error("expected (leads to) to be valid")
	}
	if a.Category != model.CategoryCausality {
		t.Errorf("category = %s, want %s", a.Category, model.CategoryCausality)
	}
	if len(a.Suggestions) != 0 || a.SuggestionKind != "" {
		t.Errorf("valid arrow should carry no suggestions by default, got %+v", a.Suggestions)
	}
}

func TestAnnotate_InvalidArrowGetsCorrections(t *testing.T) {
	p := newTestPipeline(t, Options{})

	got := p.Annotate("Rain (leads into) wet ground.", p.Store().Current())
	if len(got) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(got))
	}

	a := got[0]
	if a.Valid {
		t.Fatal("expected (leads into) to be invalid")
	}
	if a.SuggestionKind != model.KindCorrections {
		t.Errorf("kind = %q, want %q", a.SuggestionKind, model.KindCorrections)
	}
	if len(a.Suggestions) == 0 || a.Suggestions[0].Text != "leads to" {
		t.Fatalf("expected (leads to) first, got %+v", a.Suggestions)
	}
	if a.Category != model.CategoryCausality {
		t.Errorf("best-guess category = %s, want %s", a.Category, model.CategoryCausality)
	}
}

func TestAnnotate_Alternatives(t *testing.T) {
	p := newTestPipeline(t, Options{Alternatives: true})

	got := p.Annotate("Rain (leads to) wet ground.", p.Store().Current())
	if len(got) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(got))
	}
	a := got[0]
	if !a.Valid || a.SuggestionKind != model.KindAlternatives {
		t.Fatalf("expected valid arrow with alternatives, got %+v", a)
	}
	if a.Suggestions[0].Text != "fwd" || a.Suggestions[0].Tier != model.TierSynonym {
		t.Errorf("expected synonym (fwd) first, got %+v", a.Suggestions[0])
	}
}

func TestAnnotate_SpansOrdered(t *testing.T) {
	p := newTestPipeline(t, Options{})
	text := "A (same as) B (leads to) C\n\nD (results in) E (goes with) F\n"

	got := p.Annotate(text, p.Store().Current())
	if len(got) != 4 {
		t.Fatalf("expected 4 annotations, got %d", len(got))
	}
	for i, a := range got {
		if text[a.Start:a.End] != a.Raw {
			t.Errorf("annotation %d: text[%d:%d] = %q, want %q", i, a.Start, a.End, text[a.Start:a.End], a.Raw)
		}
		if i > 0 && a.Start < got[i-1].End {
			t.Errorf("annotation %d overlaps or precedes annotation %d", i, i-1)
		}
	}
}

func TestAnnotate_Idempotent(t *testing.T) {
	text := "Rain (leads into) wet ground (same as) puddles.\n@note\n  (leads to) ignored\n"

	plain := newTestPipeline(t, Options{})
	memo := newTestPipeline(t, Options{Memo: cache.NewMemoryCache(time.Minute, time.Minute)})

	want := plain.Annotate(text, plain.Store().Current())
	if again := plain.Annotate(text, plain.Store().Current()); !reflect.DeepEqual(want, again) {
		t.Errorf("repeated Annotate differs:\n%+v\n%+v", want, again)
	}

	first := memo.Annotate(text, memo.Store().Current())
	second := memo.Annotate(text, memo.Store().Current())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("memoized Annotate differs:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(want, second) {
		t.Errorf("memoized result differs from direct result:\n%+v\n%+v", want, second)
	}
}

func TestAnnotate_MemoKeepsProvenance(t *testing.T) {
	build := func(name, text string) *vocab.Vocabulary {
		v, warnings := vocab.FromSources(context.Background(), nil, &vocab.TextSource{SourceName: name, Text: text})
		if len(warnings) != 0 {
			t.Fatalf("build %s: %v", name, warnings)
		}
		return v
	}
	v1 := build("a.sst", "(leads to) (causes)\n")
	v2 := build("b.sst", "(leads to) (causes)   # moved\n")

	memo := New(vocab.NewStore(vocab.StoreOptions{}), Options{Memo: cache.NewMemoryCache(time.Minute, time.Minute)})
	direct := New(vocab.NewStore(vocab.StoreOptions{}), Options{})

	text := "Rain (leads into) wet ground."
	memo.Annotate(text, v1)
	got := memo.Annotate(text, v2)

	if want := direct.Annotate(text, v2); !reflect.DeepEqual(got, want) {
		t.Fatalf("memoized result differs from direct result:\n%+v\n%+v", got, want)
	}
	if len(got) != 1 || len(got[0].Suggestions) == 0 {
		t.Fatalf("expected suggestions, got %+v", got)
	}
	if s := got[0].Suggestions[0]; s.Source != "b.sst" || s.Line != "(leads to) (causes)   # moved" {
		t.Errorf("provenance = %q %q, want b.sst and its line", s.Source, s.Line)
	}
}

func TestAnnotate_NilVocabulary(t *testing.T) {
	p := New(vocab.NewStore(vocab.StoreOptions{}), Options{})

	got := p.Annotate("x (leads to) y", nil)
	if len(got) != 1 || got[0].Valid {
		t.Fatalf("expected one invalid annotation, got %+v", got)
	}
	if len(got[0].Suggestions) != 0 {
		t.Errorf("empty vocabulary should yield no suggestions, got %+v", got[0].Suggestions)
	}
}

func TestCheck_Report(t *testing.T) {
	store := vocab.NewStore(vocab.StoreOptions{})
	sources := append(testSources(), &vocab.FileSource{Path: "/nonexistent/arrows-CN-2.sst"})
	if _, _, err := store.Load(context.Background(), sources); err != nil {
		t.Fatalf("load vocabulary: %v", err)
	}
	p := New(store, Options{})

	report, err := p.Check(context.Background(), "doc.n4l", "Rain (leads to) wet ground (leads into) floods.")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if report.Document != "doc.n4l" {
		t.Errorf("document = %q", report.Document)
	}
	valid, invalid := report.Counts()
	if valid != 1 || invalid != 1 {
		t.Errorf("counts = %d valid, %d invalid; want 1, 1", valid, invalid)
	}
	if report.Score.Index != 50 {
		t.Errorf("index = %d, want 50", report.Score.Index)
	}
	if report.Vocabulary.Version != 1 || report.Vocabulary.Phrases != 6 {
		t.Errorf("vocabulary info = %+v", report.Vocabulary)
	}
	if len(report.Vocabulary.Warnings) != 1 {
		t.Errorf("expected 1 source warning, got %v", report.Vocabulary.Warnings)
	}
}

func TestCheck_HTMLInput(t *testing.T) {
	p := newTestPipeline(t, Options{})
	html := "<!DOCTYPE html><html><head><title>(leads into)</title></head>" +
		"<body><p>Rain (leads to) wet ground.</p><script>var x = '(same as)';</script></body></html>"

	report, err := p.Check(context.Background(), "notes.html", html)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(report.Annotations) != 1 {
		t.Fatalf("expected 1 annotation from visible text, got %+v", report.Annotations)
	}
	if report.Annotations[0].Phrase != "leads to" || !report.Annotations[0].Valid {
		t.Errorf("unexpected annotation %+v", report.Annotations[0])
	}
}

func TestCheck_CancelledContext(t *testing.T) {
	p := newTestPipeline(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Check(ctx, "doc.n4l", "a (leads to) b"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestExtract_ForcedFormat(t *testing.T) {
	store := vocab.NewStore(vocab.StoreOptions{})

	html := New(store, Options{Format: "html"})
	text, err := html.Extract("-", "<p>a (leads to) b</p>")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "a (leads to) b" {
		t.Errorf("forced html text = %q", text)
	}

	plain := New(store, Options{Format: "plain"})
	raw := "<!DOCTYPE html><p>x</p>"
	if text, _ := plain.Extract("doc.html", raw); text != raw {
		t.Errorf("forced plain should pass text through, got %q", text)
	}

	if _, err := New(store, Options{Format: "pdf"}).Extract("-", "x"); err == nil {
		t.Error("expected error for unknown format")
	}
}
