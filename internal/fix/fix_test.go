package fix

import (
	"errors"
	"testing"

	"github.com/ppiankov/n4lint/internal/model"
)

func annotate(text, raw string, valid bool, suggestions ...string) model.Annotation {
	start := -1
	for i := 0; i+len(raw) <= len(text); i++ {
		if text[i:i+len(raw)] == raw {
			start = i
			break
		}
	}
	a := model.Annotation{
		Candidate: model.Candidate{Start: start, End: start + len(raw), Raw: raw, Phrase: model.NormalizePhrase(raw)},
		Valid:     valid,
	}
	for _, s := range suggestions {
		a.Suggestions = append(a.Suggestions, model.Suggestion{ArrowPhrase: model.ArrowPhrase{Text: s}})
	}
	return a
}

func TestReplace(t *testing.T) {
	text := "Rain (goes into) wet ground"
	a := annotate(text, "(goes into)", false, "leads to")

	got, err := Apply(text, []Edit{Replace(a, "Leads To")})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got != "Rain (leads to) wet ground" {
		t.Errorf("got %q", got)
	}
}

func TestDeleteLine(t *testing.T) {
	tests := []struct {
		name string
		text string
		raw  string
		want string
	}{
		{"middle", "one\nA (bad arrow) B\nthree\n", "(bad arrow)", "one\nthree\n"},
		{"first", "A (bad arrow) B\ntwo", "(bad arrow)", "two"},
		{"last without newline", "one\nA (bad arrow) B", "(bad arrow)", "one\n"},
		{"only line", "A (bad arrow) B", "(bad arrow)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := annotate(tt.text, tt.raw, false)
			got, err := Apply(tt.text, []Edit{DeleteLine(tt.text, a)})
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCorrections(t *testing.T) {
	text := "A (goes into) B\nC (leads to) D\nE (zzz qq) F\nG (comes out of) H"
	annotations := []model.Annotation{
		annotate(text, "(goes into)", false, "leads to", "causes"),
		annotate(text, "(leads to)", true, "fwd"),
		annotate(text, "(zzz qq)", false),
		annotate(text, "(comes out of)", false, "comes from"),
	}

	edits := Corrections(annotations)
	if len(edits) != 2 {
		t.Fatalf("expected 2 edits, got %d", len(edits))
	}

	// Edits in reverse order still apply against original offsets.
	got, err := Apply(text, []Edit{edits[1], edits[0]})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	want := "A (leads to) B\nC (leads to) D\nE (zzz qq) F\nG (comes from) H"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApply_Conflicts(t *testing.T) {
	text := "A (x to y) B"

	tests := []struct {
		name  string
		edits []Edit
	}{
		{"overlap", []Edit{{Start: 2, End: 8, Text: "a"}, {Start: 5, End: 10, Text: "b"}}},
		{"out of range", []Edit{{Start: 2, End: 100}}},
		{"inverted", []Edit{{Start: 5, End: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Apply(text, tt.edits); !errors.Is(err, ErrConflict) {
				t.Errorf("expected ErrConflict, got %v", err)
			}
		})
	}
}

func TestApply_DuplicateEditsCollapse(t *testing.T) {
	text := "A (bad one) B (bad two) C\nnext"
	first := annotate(text, "(bad one)", false)
	second := annotate(text, "(bad two)", false)

	got, err := Apply(text, []Edit{DeleteLine(text, first), DeleteLine(text, second)})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got != "next" {
		t.Errorf("got %q", got)
	}
}

func TestApply_NoEdits(t *testing.T) {
	got, err := Apply("unchanged", nil)
	if err != nil || got != "unchanged" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestPlan(t *testing.T) {
	text := "a (goes into) b\nc (zzz) d (goes into) e\nf (qqq) g (qqq) h\nlast (leads to) line\n"
	goesInto := annotate(text, "(goes into)", false, "leads to")
	zzz := annotate(text, "(zzz)", false)

	// Second "(goes into)" sits on the same line as "(zzz)".
	second := goesInto
	second.Start = len("a (goes into) b\nc (zzz) d ")
	second.End = second.Start + len("(goes into)")

	qqq1 := annotate(text, "(qqq)", false)
	qqq2 := qqq1
	qqq2.Start = len("a (goes into) b\nc (zzz) d (goes into) e\nf (qqq) g ")
	qqq2.End = qqq2.Start + len("(qqq)")

	valid := annotate(text, "(leads to)", true)
	annotations := []model.Annotation{goesInto, zzz, second, qqq1, qqq2, valid}

	tests := []struct {
		name            string
		deleteUnfixable bool
		want            string
	}{
		{"corrections only", false, "a (leads to) b\nc (zzz) d (leads to) e\nf (qqq) g (qqq) h\nlast (leads to) line\n"},
		{"delete unfixable lines", true, "a (leads to) b\nlast (leads to) line\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(text, Plan(text, annotations, tt.deleteUnfixable))
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
