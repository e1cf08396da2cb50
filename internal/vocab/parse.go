package vocab

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/n4lint/internal/model"
)

// arrowToken matches one parenthesized phrase in an SSTconfig line
var arrowToken = regexp.MustCompile(`\(([a-zA-Z0-9_!<>\-=/\s.']{1,40})\)`)

// builder accumulates phrases from sources in load order
type builder struct {
	phrases    []model.ArrowPhrase
	index      map[string]int
	synonyms   map[string][]string
	sources    []string
	duplicates int
	malformed  int
}

func newBuilder() *builder {
	return &builder{
		index:    make(map[string]int),
		synonyms: make(map[string][]string),
	}
}

// add parses one source body under the given category
func (b *builder) add(name string, category model.Category, data []byte) error {
	b.sources = append(b.sources, name)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		b.addLine(name, category, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", name, err)
	}
	return nil
}

func (b *builder) addLine(source string, category model.Category, raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
		return
	}
	if !balanced(line) {
		b.malformed++
		return
	}

	var onLine []string
	for _, m := range arrowToken.FindAllStringSubmatch(line, -1) {
		text := model.NormalizePhrase(m[1])
		if text == "" || containsString(onLine, text) {
			continue
		}
		onLine = append(onLine, text)

		if _, exists := b.index[text]; exists {
			b.duplicates++
			continue
		}
		b.index[text] = len(b.phrases)
		b.phrases = append(b.phrases, model.ArrowPhrase{
			Text:     text,
			Category: category,
			Source:   source,
			Line:     line,
			Order:    len(b.phrases),
		})
	}

	for _, a := range onLine {
		for _, s := range onLine {
			if a != s && !containsString(b.synonyms[a], s) {
				b.synonyms[a] = append(b.synonyms[a], s)
			}
		}
	}
}

// balanced reports whether every ")" closes an earlier "(" and none stay open
func balanced(line string) bool {
	depth := 0
	for _, r := range line {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// build freezes the accumulated phrases into a snapshot
func (b *builder) build(version uint64, keywords Keywords) *Vocabulary {
	v := &Vocabulary{
		version:    version,
		phrases:    b.phrases,
		index:      b.index,
		synonyms:   make(map[string][]int, len(b.synonyms)),
		byCategory: make(map[model.Category][]int),
		sources:    b.sources,
		duplicates: b.duplicates,
		malformed:  b.malformed,
	}

	for i := range v.phrases {
		p := &v.phrases[i]
		p.Keywords = keywords.keywordsFor(p.Text)
		if _, seen := v.byCategory[p.Category]; !seen {
			v.categories = append(v.categories, p.Category)
		}
		v.byCategory[p.Category] = append(v.byCategory[p.Category], i)
	}
	sortCategories(v.categories)

	for text, syns := range b.synonyms {
		idx := make([]int, 0, len(syns))
		for _, s := range syns {
			idx = append(idx, b.index[s])
		}
		v.synonyms[text] = idx
	}

	v.fingerprint = fingerprint(v)
	return v
}
