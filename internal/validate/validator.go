// Package validate decides whether candidate arrows belong to a vocabulary.
package validate

import (
	"github.com/ppiankov/n4lint/internal/model"
	"github.com/ppiankov/n4lint/internal/vocab"
)

// Validate reports whether the candidate's phrase is a known arrow.
// A nil vocabulary validates nothing.
func Validate(c model.Candidate, v *vocab.Vocabulary) bool {
	return ValidPhrase(c.Raw, v)
}

// ValidPhrase checks raw text such as "(Leads To)" against the vocabulary
func ValidPhrase(raw string, v *vocab.Vocabulary) bool {
	if v == nil {
		return false
	}
	return v.Contains(model.NormalizePhrase(raw))
}

// Classify returns the category of a valid candidate
func Classify(c model.Candidate, v *vocab.Vocabulary) (model.Category, bool) {
	if v == nil {
		return "", false
	}
	return v.Lookup(c.Raw)
}

// Result is the validation outcome of one candidate
type Result struct {
	Candidate model.Candidate
	Valid     bool
	Category  model.Category
}

// ValidateAll validates candidates against one snapshot, preserving order
func ValidateAll(candidates []model.Candidate, v *vocab.Vocabulary) []Result {
	results := make([]Result, len(candidates))
	for i, c := range candidates {
		cat, ok := Classify(c, v)
		results[i] = Result{Candidate: c, Valid: ok, Category: cat}
	}
	return results
}
