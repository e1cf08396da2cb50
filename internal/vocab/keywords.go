package vocab

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/n4lint/internal/model"
)

//go:embed defaults/keywords.yaml
var builtinKeywords []byte

// Keywords maps a normalized phrase to curated keywords
type Keywords map[string][]string

// ParseKeywords reads a YAML mapping of phrase -> keyword list
func ParseKeywords(data []byte) (Keywords, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse keywords: %w", err)
	}

	kw := make(Keywords, len(raw))
	for phrase, words := range raw {
		key := model.NormalizePhrase(phrase)
		if key == "" {
			continue
		}
		kw[key] = appendWords(kw[key], words...)
	}
	return kw, nil
}

// LoadKeywordsFile reads a keywords YAML file from disk
func LoadKeywordsFile(path string) (Keywords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}
	return ParseKeywords(data)
}

// BuiltinKeywords returns the curated table shipped with the binary
func BuiltinKeywords() Keywords {
	kw, err := ParseKeywords(builtinKeywords)
	if err != nil {
		panic(fmt.Sprintf("builtin keywords: %v", err))
	}
	return kw
}

// Merge returns a new table holding k's entries followed by other's
func (k Keywords) Merge(other Keywords) Keywords {
	merged := make(Keywords, len(k)+len(other))
	for phrase, words := range k {
		merged[phrase] = appendWords(nil, words...)
	}
	for phrase, words := range other {
		merged[phrase] = appendWords(merged[phrase], words...)
	}
	return merged
}

// keywordsFor combines a phrase's own words with its curated keywords
func (k Keywords) keywordsFor(text string) []string {
	words := appendWords(nil, strings.Fields(text)...)
	return appendWords(words, k[text]...)
}

// appendWords appends lower-cased, trimmed words not already present
func appendWords(dst []string, words ...string) []string {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || containsString(dst, w) {
			continue
		}
		dst = append(dst, w)
	}
	return dst
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
