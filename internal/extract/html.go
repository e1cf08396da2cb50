package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor recovers the line structure of converter output wrapped in HTML
type HTMLExtractor struct{}

// NewHTMLExtractor creates an HTML extractor
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Name returns the extractor name
func (e *HTMLExtractor) Name() string {
	return "html"
}

// CanHandle accepts .html/.htm names and content that starts with markup
func (e *HTMLExtractor) CanHandle(name string, content string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// Extract returns the visible text with one N4L line per output line
func (e *HTMLExtractor) Extract(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return tidyLines(extractVisibleText(doc)), nil
}

// Elements that start on a new line
var blockElements = map[string]bool{
	"p": true, "div": true, "pre": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "section": true, "article": true,
}

// extractVisibleText walks the tree, skipping scripts and styles,
// and turns <br> and block boundaries into line breaks
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	newline := func() {
		s := buf.String()
		if s != "" && !strings.HasSuffix(s, "\n") {
			buf.WriteString("\n")
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head", "template":
				return
			case "br":
				buf.WriteString("\n")
				return
			}
			if blockElements[n.Data] {
				newline()
				defer newline()
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// tidyLines drops trailing spaces and whitespace-only runs left by markup
// indentation, keeping leading indentation intact
func tidyLines(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if len(out) > 0 && !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
