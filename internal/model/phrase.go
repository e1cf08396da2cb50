package model

import "strings"

// Category is the semantic partition an arrow phrase belongs to.
// Values are the partition codes used in SSTconfig file names (e.g. "LT-1").
type Category string

const (
	CategorySimilarity  Category = "NR-0"    // Similarity/Equivalence (symmetric)
	CategoryCausality   Category = "LT-1"    // Causality/Temporal (leads to)
	CategoryContainment Category = "CN-2"    // Containment/Structure (contains)
	CategoryExpression  Category = "EP-3"    // Expression/Properties (expresses)
	CategorySpecial     Category = "special" // Anything not assigned to a numbered partition
)

var categoryOrder = []Category{
	CategorySimilarity,
	CategoryCausality,
	CategoryContainment,
	CategoryExpression,
	CategorySpecial,
}

var categoryLabels = map[Category]string{
	CategorySimilarity:  "Similarity/Equivalence",
	CategoryCausality:   "Causality/Temporal",
	CategoryContainment: "Containment/Structure",
	CategoryExpression:  "Expression/Properties",
	CategorySpecial:     "Special",
}

// Categories returns the declared categories in tie-break order
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Rank returns the declaration index of the category.
// Codes outside the declared set rank after CategorySpecial.
func (c Category) Rank() int {
	for i, known := range categoryOrder {
		if c == known {
			return i
		}
	}
	return len(categoryOrder)
}

// Label returns a human-readable name for the category
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c Category) String() string {
	return string(c)
}

// ArrowPhrase is a normalized relationship phrase from the vocabulary
type ArrowPhrase struct {
	Text     string   `json:"text"`               // Normalized phrase (identity)
	Category Category `json:"category"`           // Partition assigned by the source
	Keywords []string `json:"keywords,omitempty"` // Words used for suggestion matching
	Source   string   `json:"source,omitempty"`   // Name of the source the phrase came from
	Line     string   `json:"line,omitempty"`     // Original line text (first occurrence)
	Order    int      `json:"order"`              // Position in vocabulary load order
}

// NormalizePhrase strips one pair of enclosing parentheses, trims and lower-cases
func NormalizePhrase(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	return strings.ToLower(strings.TrimSpace(s))
}
