// Package suggest ranks replacement arrows for a candidate phrase.
package suggest

import (
	"sort"
	"strings"

	"github.com/ppiankov/n4lint/internal/model"
	"github.com/ppiankov/n4lint/internal/vocab"
)

// DefaultLimit applies when neither the caller nor the engine sets a limit
const DefaultLimit = 5

// Engine produces tiered suggestions. It holds no vocabulary state and
// is safe for concurrent use.
type Engine struct {
	limit int
}

// NewEngine creates an engine whose default limit is limit (DefaultLimit if <= 0)
func NewEngine(limit int) *Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Engine{limit: limit}
}

// Limit returns the engine's default limit
func (e *Engine) Limit() int {
	return e.limit
}

// Suggest returns at most limit suggestions for the candidate.
// Synonyms of a known phrase come first, then keyword matches; substring
// matches are used only when both are empty. A limit <= 0 uses the engine default.
func (e *Engine) Suggest(c model.Candidate, v *vocab.Vocabulary, limit int) []model.Suggestion {
	phrase := c.Phrase
	if phrase == "" {
		phrase = model.NormalizePhrase(c.Raw)
	}
	return e.SuggestPhrase(phrase, v, limit)
}

// SuggestPhrase is Suggest for raw or normalized phrase text
func (e *Engine) SuggestPhrase(raw string, v *vocab.Vocabulary, limit int) []model.Suggestion {
	if limit <= 0 {
		limit = e.limit
	}
	phrase := model.NormalizePhrase(raw)
	if v == nil || phrase == "" {
		return []model.Suggestion{}
	}

	out := newCollector(phrase, limit)

	if v.Contains(phrase) {
		for _, p := range v.Synonyms(phrase) {
			out.add(model.Suggestion{ArrowPhrase: p, Tier: model.TierSynonym})
		}
	}

	for _, s := range keywordMatches(phrase, v) {
		out.add(s)
	}

	if out.empty() {
		for _, s := range substringMatches(phrase, v) {
			out.add(s)
		}
	}

	return out.list
}

// substringMatches compares whole phrase texts in either direction, in vocabulary order
func substringMatches(phrase string, v *vocab.Vocabulary) []model.Suggestion {
	var matches []model.Suggestion
	for _, p := range v.AllPhrases() {
		if p.Text != phrase && (strings.Contains(p.Text, phrase) || strings.Contains(phrase, p.Text)) {
			matches = append(matches, model.Suggestion{ArrowPhrase: p, Tier: model.TierSubstring})
		}
	}
	return matches
}

// keywordMatches ranks phrases by how many candidate words overlap their keywords
func keywordMatches(phrase string, v *vocab.Vocabulary) []model.Suggestion {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return nil
	}

	var matches []model.Suggestion
	for _, p := range v.AllPhrases() {
		if p.Text == phrase {
			continue
		}
		if n := overlap(words, p.Keywords); n > 0 {
			matches = append(matches, model.Suggestion{ArrowPhrase: p, Tier: model.TierKeyword, Overlap: n})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Overlap != b.Overlap {
			return a.Overlap > b.Overlap
		}
		if ra, rb := a.Category.Rank(), b.Category.Rank(); ra != rb {
			return ra < rb
		}
		return a.Order < b.Order
	})
	return matches
}

// overlap counts words that are a substring of some keyword, or contain one
func overlap(words, keywords []string) int {
	n := 0
	for _, w := range words {
		w = strings.ToLower(w)
		for _, k := range keywords {
			k = strings.ToLower(k)
			if strings.Contains(k, w) || strings.Contains(w, k) {
				n++
				break
			}
		}
	}
	return n
}

// collector de-duplicates suggestions, drops the candidate itself and stops at limit
type collector struct {
	self  string
	limit int
	seen  map[string]bool
	list  []model.Suggestion
}

func newCollector(self string, limit int) *collector {
	return &collector{
		self:  self,
		limit: limit,
		seen:  map[string]bool{self: true},
		list:  make([]model.Suggestion, 0, limit),
	}
}

func (c *collector) add(s model.Suggestion) {
	if len(c.list) >= c.limit || c.seen[s.Text] {
		return
	}
	c.seen[s.Text] = true
	c.list = append(c.list, s)
}

func (c *collector) empty() bool {
	return len(c.list) == 0
}
