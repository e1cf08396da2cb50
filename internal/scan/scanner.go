// Package scan finds candidate arrow phrases in N4L text.
package scan

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/n4lint/internal/model"
)

var candidatePattern = regexp.MustCompile(`\([a-z][a-z0-9\s,;:.\-'/]*\)`)

// minInnerLen is the shortest parenthesized text considered an arrow
const minInnerLen = 4

// Short relational words; a candidate without whitespace must contain one
var relationalWords = []string{"to", "by", "from", "in", "on", "at", "as", "with", "of"}

// Scan returns arrow candidates in text ordered by offset.
// Lines inside content blocks are skipped.
func Scan(text string) []model.Candidate {
	var (
		candidates []model.Candidate
		tracker    BlockTracker
		offset     int
		lineNo     int
	)

	for offset <= len(text) {
		lineNo++

		end := strings.IndexByte(text[offset:], '\n')
		next := len(text) + 1
		if end >= 0 {
			end += offset
			next = end + 1
		} else {
			end = len(text)
		}
		line := strings.TrimSuffix(text[offset:end], "\r")

		if tracker.Next(line) {
			candidates = appendLine(candidates, line, offset, lineNo)
		}
		offset = next
	}

	return candidates
}

func appendLine(dst []model.Candidate, line string, lineStart, lineNo int) []model.Candidate {
	for _, loc := range candidatePattern.FindAllStringIndex(line, -1) {
		raw := line[loc[0]:loc[1]]
		inner := raw[1 : len(raw)-1]
		if len(inner) < minInnerLen || !Plausible(inner) {
			continue
		}
		dst = append(dst, model.Candidate{
			Start:  lineStart + loc[0],
			End:    lineStart + loc[1],
			Line:   lineNo,
			Column: loc[0] + 1,
			Raw:    raw,
			Phrase: model.NormalizePhrase(raw),
		})
	}
	return dst
}

// Plausible reports whether parenthesized text reads like a relation
// rather than an aside such as "(sic)".
func Plausible(inner string) bool {
	if strings.IndexFunc(inner, unicode.IsSpace) >= 0 {
		return true
	}
	for _, w := range relationalWords {
		if strings.Contains(inner, w) {
			return true
		}
	}
	return false
}
