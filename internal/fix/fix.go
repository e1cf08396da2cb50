// Package fix applies quick fixes for annotated arrows to document text.
package fix

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/n4lint/internal/model"
)

// ErrConflict is returned when edits overlap or fall outside the text
var ErrConflict = errors.New("conflicting edit")

// Edit replaces text[Start:End] with Text
type Edit struct {
	Start int
	End   int
	Text  string
}

// Replace swaps an annotated arrow for another phrase
func Replace(a model.Annotation, phrase string) Edit {
	return Edit{Start: a.Start, End: a.End, Text: "(" + model.NormalizePhrase(phrase) + ")"}
}

// DeleteLine removes the whole line holding the annotated arrow, including its line break
func DeleteLine(text string, a model.Annotation) Edit {
	start := strings.LastIndexByte(text[:a.Start], '\n') + 1

	end := len(text)
	if i := strings.IndexByte(text[a.End:], '\n'); i >= 0 {
		end = a.End + i + 1
	}
	return Edit{Start: start, End: end}
}

// Corrections replaces every invalid arrow that has a suggestion with its top suggestion
func Corrections(annotations []model.Annotation) []Edit {
	var edits []Edit
	for _, a := range annotations {
		if a.Valid || len(a.Suggestions) == 0 {
			continue
		}
		edits = append(edits, Replace(a, a.Suggestions[0].Text))
	}
	return edits
}

// Plan returns Corrections and, when deleteUnfixable is set, a DeleteLine for
// every invalid arrow without suggestions. Replacements on deleted lines are dropped.
func Plan(text string, annotations []model.Annotation, deleteUnfixable bool) []Edit {
	var deletions []Edit
	if deleteUnfixable {
		for _, a := range annotations {
			if a.Valid || len(a.Suggestions) > 0 {
				continue
			}
			d := DeleteLine(text, a)
			if n := len(deletions); n > 0 && deletions[n-1] == d {
				continue
			}
			deletions = append(deletions, d)
		}
	}

	edits := deletions
	for _, e := range Corrections(annotations) {
		if !within(e, deletions) {
			edits = append(edits, e)
		}
	}
	return edits
}

func within(e Edit, deletions []Edit) bool {
	for _, d := range deletions {
		if e.Start >= d.Start && e.End <= d.End {
			return true
		}
	}
	return false
}

// Apply performs edits against the original offsets of text.
// Identical edits collapse; overlapping ones are rejected.
func Apply(text string, edits []Edit) (string, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var b strings.Builder
	pos := 0
	for i, e := range sorted {
		if i > 0 && e == sorted[i-1] {
			continue
		}
		if e.Start < pos || e.End < e.Start || e.End > len(text) {
			return "", fmt.Errorf("apply edit [%d,%d): %w", e.Start, e.End, ErrConflict)
		}
		b.WriteString(text[pos:e.Start])
		b.WriteString(e.Text)
		pos = e.End
	}
	b.WriteString(text[pos:])

	return b.String(), nil
}
