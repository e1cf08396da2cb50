package model

// Candidate is a parenthesized span found in input text that may be an arrow
type Candidate struct {
	Start  int    `json:"start"`  // Byte offset of "(" in the input
	End    int    `json:"end"`    // Byte offset just past ")"
	Line   int    `json:"line"`   // 1-based line number
	Column int    `json:"column"` // 1-based byte column of "("
	Raw    string `json:"raw"`    // Text including parentheses
	Phrase string `json:"phrase"` // Normalized phrase
}

// Tier identifies which suggestion stage produced a suggestion
type Tier string

const (
	TierSynonym   Tier = "synonym"   // Co-occurred with the phrase on a source line
	TierKeyword   Tier = "keyword"   // Keyword overlap
	TierSubstring Tier = "substring" // Plain substring fallback
)

// Suggestion is a replacement phrase offered for a candidate
type Suggestion struct {
	ArrowPhrase
	Tier    Tier `json:"tier"`
	Overlap int  `json:"overlap,omitempty"` // Overlapping words (keyword tier only)
}

// SuggestionKind tells a consumer how to present the attached suggestions
type SuggestionKind string

const (
	KindCorrections  SuggestionKind = "corrections"  // Candidate is invalid
	KindAlternatives SuggestionKind = "alternatives" // Candidate is valid, alternate phrasings
)

// Annotation is a candidate together with its validation outcome
type Annotation struct {
	Candidate
	Valid          bool           `json:"valid"`
	Category       Category       `json:"category,omitempty"` // Matched, or best guess when invalid
	Suggestions    []Suggestion   `json:"suggestions,omitempty"`
	SuggestionKind SuggestionKind `json:"suggestion_kind,omitempty"`
}
