package score

import (
	"fmt"
	"sort"

	"github.com/ppiankov/n4lint/internal/model"
)

// Scorer calculates the arrow health index and generates signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate scores a checked document. The index is the share of valid
// arrows; signals explain every deduction and vocabulary problem.
func (s *Scorer) Calculate(annotations []model.Annotation, vocab model.VocabularyInfo) model.Score {
	var signals []model.Signal

	// 1. Validity (0-100 points)
	index, validitySignal := s.calculateValidity(annotations)
	signals = append(signals, validitySignal)

	// 2. Unknown phrases
	if sig, ok := s.detectInvalid(annotations); ok {
		signals = append(signals, sig)
	}

	// 3. Invalid arrows nobody can fix
	if sig, ok := s.detectUnfixable(annotations); ok {
		signals = append(signals, sig)
	}

	// 4. Vocabulary health
	signals = append(signals, s.vocabularySignals(vocab)...)

	return model.Score{
		Index:      index,
		Confidence: s.determineConfidence(len(annotations), vocab),
		Signals:    signals,
	}
}

// calculateValidity scores the valid-to-candidate ratio (0-100 points)
func (s *Scorer) calculateValidity(annotations []model.Annotation) (int, model.Signal) {
	total := len(annotations)
	if total == 0 {
		return 100, model.Signal{
			Type:        model.SignalNoCandidates,
			Severity:    model.SeverityInfo,
			Description: "No arrow phrases found",
			Data:        map[string]interface{}{"candidates": 0},
		}
	}

	valid := 0
	for _, a := range annotations {
		if a.Valid {
			valid++
		}
	}

	ratio := float64(valid) / float64(total)
	score := int(ratio * 100)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 1.0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalArrowValidity,
		Severity:    severity,
		Description: fmt.Sprintf("Valid arrows: %d/%d (%.0f%%)", valid, total, ratio*100),
		Data: map[string]interface{}{
			"valid":      valid,
			"candidates": total,
			"ratio":      ratio,
			"score":      score,
			"formula":    "valid_count / candidate_count * 100",
		},
	}
}

// detectInvalid lists distinct unknown phrases with their occurrence counts
func (s *Scorer) detectInvalid(annotations []model.Annotation) (model.Signal, bool) {
	counts := make(map[string]int)
	for _, a := range annotations {
		if !a.Valid {
			counts[a.Phrase]++
		}
	}
	if len(counts) == 0 {
		return model.Signal{}, false
	}

	phrases := make([]string, 0, len(counts))
	for p := range counts {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)

	return model.Signal{
		Type:        model.SignalInvalidArrows,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d unknown arrow phrase(s)", len(phrases)),
		Data: map[string]interface{}{
			"phrases":     phrases,
			"occurrences": counts,
		},
	}, true
}

// detectUnfixable flags invalid arrows with no suggestion at all
func (s *Scorer) detectUnfixable(annotations []model.Annotation) (model.Signal, bool) {
	var lines []int
	for _, a := range annotations {
		if !a.Valid && len(a.Suggestions) == 0 {
			lines = append(lines, a.Line)
		}
	}
	if len(lines) == 0 {
		return model.Signal{}, false
	}

	return model.Signal{
		Type:        model.SignalNoSuggestions,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d invalid arrow(s) without any suggestion", len(lines)),
		Data:        map[string]interface{}{"lines": lines},
	}, true
}

func (s *Scorer) vocabularySignals(vocab model.VocabularyInfo) []model.Signal {
	var signals []model.Signal

	if vocab.Phrases == 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalEmptyVocabulary,
			Severity:    model.SeverityCritical,
			Description: "Vocabulary is empty; every arrow is reported invalid",
			Data:        map[string]interface{}{"sources": len(vocab.Sources)},
		})
	}

	if len(vocab.Warnings) > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalSourceUnavailable,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d vocabulary source(s) unavailable", len(vocab.Warnings)),
			Data:        map[string]interface{}{"warnings": vocab.Warnings},
		})
	}

	if len(vocab.Stale) > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalStaleSource,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("%d vocabulary source(s) loaded from an expired cached copy", len(vocab.Stale)),
			Data:        map[string]interface{}{"stale": vocab.Stale},
		})
	}

	if vocab.MalformedLines > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalMalformedSource,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("%d malformed vocabulary line(s) skipped", vocab.MalformedLines),
			Data:        map[string]interface{}{"lines": vocab.MalformedLines},
		})
	}

	return signals
}

// determineConfidence rates how much the index can be trusted
func (s *Scorer) determineConfidence(candidates int, vocab model.VocabularyInfo) string {
	if vocab.Phrases == 0 || candidates == 0 {
		return "low"
	}
	if candidates >= 5 && len(vocab.Warnings) == 0 {
		return "high"
	}
	return "medium"
}
