package scan

import (
	"regexp"
	"strings"
)

// State is the position of a BlockTracker
type State int

const (
	// Normal lines are scanned for arrows
	Normal State = iota
	// InContentBlock lines belong to an @tag block and are not scanned
	InContentBlock
)

func (s State) String() string {
	if s == InContentBlock {
		return "content-block"
	}
	return "normal"
}

var (
	blockOpener     = regexp.MustCompile(`^\s*@[a-zA-Z_][a-zA-Z0-9_.]*`)
	dittoTerminator = regexp.MustCompile(`^\s*"\s+\([a-z]`)
)

// BlockTracker follows content blocks line by line.
// A block opens on an @tag line and closes on a ditto arrow line
// or on the first non-blank line indented no deeper than the opener.
type BlockTracker struct {
	state  State
	indent int
}

// State returns the state after the last line
func (b *BlockTracker) State() State {
	return b.state
}

// Reset returns the tracker to Normal
func (b *BlockTracker) Reset() {
	b.state = Normal
	b.indent = 0
}

// Next consumes one line (without its terminator) and reports whether
// the line should be scanned for arrows.
func (b *BlockTracker) Next(line string) bool {
	if b.state == InContentBlock {
		switch {
		case dittoTerminator.MatchString(line):
			b.state = Normal
		case strings.TrimSpace(line) == "":
			return false
		case indentOf(line) <= b.indent:
			b.state = Normal
		default:
			return false
		}
	}

	if blockOpener.MatchString(line) {
		b.state = InContentBlock
		b.indent = indentOf(line)
	}
	return true
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
