package model

import "time"

// Report is the result of checking one N4L document
type Report struct {
	Document  string    `json:"document"`   // File name or "-" for stdin
	CheckedAt time.Time `json:"checked_at"` // When the check ran

	Vocabulary  VocabularyInfo `json:"vocabulary"`  // Snapshot the document was checked against
	Annotations []Annotation   `json:"annotations"` // One per candidate, ascending offset

	Score Score `json:"score"` // Arrow health index and signals
}

// VocabularyInfo summarizes the vocabulary snapshot used for a check
type VocabularyInfo struct {
	Version        uint64           `json:"version"`
	Fingerprint    string           `json:"fingerprint"`
	Phrases        int              `json:"phrases"`
	PerCategory    map[Category]int `json:"per_category,omitempty"`
	Sources        []string         `json:"sources,omitempty"`
	Warnings       []string         `json:"warnings,omitempty"` // Unavailable sources
	Stale          []string         `json:"stale,omitempty"`    // Sources loaded from an expired cached copy
	MalformedLines int              `json:"malformed_lines,omitempty"`
}

// Counts returns the number of valid and invalid annotations
func (r *Report) Counts() (valid, invalid int) {
	for _, a := range r.Annotations {
		if a.Valid {
			valid++
		} else {
			invalid++
		}
	}
	return valid, invalid
}

// Score is the transparent arrow health breakdown
type Score struct {
	Index      int      `json:"index"`      // Share of valid arrows (0-100)
	Confidence string   `json:"confidence"` // "low", "medium", "high"
	Signals    []Signal `json:"signals"`
}

// Signal is a diagnostic observation about the document or vocabulary
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalArrowValidity     SignalType = "arrow_validity"     // Valid-to-candidate ratio
	SignalInvalidArrows     SignalType = "invalid_arrows"     // Unknown phrases present
	SignalNoSuggestions     SignalType = "no_suggestions"     // Invalid arrows without any fix
	SignalNoCandidates      SignalType = "no_candidates"      // Document has no arrows
	SignalEmptyVocabulary   SignalType = "empty_vocabulary"   // Degenerate vocabulary
	SignalSourceUnavailable SignalType = "source_unavailable" // Some sources failed to load
	SignalStaleSource       SignalType = "stale_source"       // Some sources came from an expired cache entry
	SignalMalformedSource   SignalType = "malformed_source"   // Source lines were skipped
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
