package vocab

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/ppiankov/n4lint/internal/model"
)

// Vocabulary is an immutable snapshot of known arrow phrases.
// It is safe for concurrent use.
type Vocabulary struct {
	version     uint64
	fingerprint string

	phrases    []model.ArrowPhrase
	index      map[string]int
	synonyms   map[string][]int
	byCategory map[model.Category][]int
	categories []model.Category

	sources    []string
	duplicates int
	malformed  int
}

// Stats summarizes a snapshot
type Stats struct {
	Phrases        int
	PerCategory    map[model.Category]int
	Sources        []string
	Duplicates     int
	MalformedLines int
}

// Empty returns a vocabulary with no phrases
func Empty() *Vocabulary {
	return newBuilder().build(0, nil)
}

// FromSources reads sources and builds an unversioned vocabulary outside any Store.
// Unreadable sources are skipped and returned as warnings.
func FromSources(ctx context.Context, keywords Keywords, sources ...Source) (*Vocabulary, []*SourceError) {
	v, _, warnings := collect(ctx, sources, defaultWorkers, 0, keywords)
	return v, warnings
}

// Version is the load sequence number that produced the snapshot (0 if built directly)
func (v *Vocabulary) Version() uint64 { return v.version }

// Fingerprint hashes every phrase field a suggestion exposes, provenance included.
// Equal vocabularies share a fingerprint.
func (v *Vocabulary) Fingerprint() string { return v.fingerprint }

// Len returns the number of distinct phrases
func (v *Vocabulary) Len() int { return len(v.phrases) }

// Lookup returns the category of a phrase, accepting raw "(phrase)" text
func (v *Vocabulary) Lookup(phrase string) (model.Category, bool) {
	p, ok := v.Phrase(phrase)
	if !ok {
		return "", false
	}
	return p.Category, true
}

// Contains reports exact membership of an already normalized phrase
func (v *Vocabulary) Contains(normalized string) bool {
	_, ok := v.index[normalized]
	return ok
}

// Phrase returns the full entry for a phrase
func (v *Vocabulary) Phrase(phrase string) (model.ArrowPhrase, bool) {
	i, ok := v.index[model.NormalizePhrase(phrase)]
	if !ok {
		return model.ArrowPhrase{}, false
	}
	return v.phrases[i], true
}

// AllPhrases returns phrases in load order, limited to the given categories if any
func (v *Vocabulary) AllPhrases(categories ...model.Category) []model.ArrowPhrase {
	if len(categories) == 0 {
		out := make([]model.ArrowPhrase, len(v.phrases))
		copy(out, v.phrases)
		return out
	}

	var idx []int
	for _, c := range categories {
		idx = append(idx, v.byCategory[c]...)
	}
	sort.Ints(idx)

	out := make([]model.ArrowPhrase, 0, len(idx))
	for i, n := range idx {
		if i > 0 && idx[i-1] == n {
			continue
		}
		out = append(out, v.phrases[n])
	}
	return out
}

// Synonyms returns the phrases that shared a source line with phrase
func (v *Vocabulary) Synonyms(phrase string) []model.ArrowPhrase {
	idx := v.synonyms[model.NormalizePhrase(phrase)]
	out := make([]model.ArrowPhrase, 0, len(idx))
	for _, i := range idx {
		out = append(out, v.phrases[i])
	}
	return out
}

// Categories lists the categories present, in rank order
func (v *Vocabulary) Categories() []model.Category {
	out := make([]model.Category, len(v.categories))
	copy(out, v.categories)
	return out
}

// Stats returns counts for reports
func (v *Vocabulary) Stats() Stats {
	per := make(map[model.Category]int, len(v.byCategory))
	for c, idx := range v.byCategory {
		per[c] = len(idx)
	}
	return Stats{
		Phrases:        len(v.phrases),
		PerCategory:    per,
		Sources:        append([]string(nil), v.sources...),
		Duplicates:     v.duplicates,
		MalformedLines: v.malformed,
	}
}

// Info converts the snapshot into report metadata
func (v *Vocabulary) Info() model.VocabularyInfo {
	s := v.Stats()
	return model.VocabularyInfo{
		Version:        v.version,
		Fingerprint:    v.fingerprint,
		Phrases:        s.Phrases,
		PerCategory:    s.PerCategory,
		Sources:        s.Sources,
		MalformedLines: s.MalformedLines,
	}
}

func sortCategories(cats []model.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].Rank() < cats[j].Rank()
	})
}

func fingerprint(v *Vocabulary) string {
	h := sha256.New()
	for _, p := range v.phrases {
		h.Write([]byte(p.Text))
		h.Write([]byte{0})
		h.Write([]byte(p.Category))
		h.Write([]byte{0})
		h.Write([]byte(strings.Join(p.Keywords, "\x01")))
		h.Write([]byte{0})
		h.Write([]byte(p.Source))
		h.Write([]byte{0})
		h.Write([]byte(p.Line))
		h.Write([]byte{0})
		for _, s := range v.synonyms[p.Text] {
			h.Write([]byte(v.phrases[s].Text))
			h.Write([]byte{1})
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
