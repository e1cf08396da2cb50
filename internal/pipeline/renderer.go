package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/n4lint/internal/model"
	"github.com/ppiankov/n4lint/internal/suggest"
)

// Renderer writes reports as JSON, Markdown or a terminal summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer; includeFooter controls the Markdown footer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown formats the report as Markdown
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder
	valid, invalid := report.Counts()

	fmt.Fprintf(&b, "# Arrow Report: %s\n\n", report.Document)
	fmt.Fprintf(&b, "**Checked:** %s  \n", report.CheckedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "**Arrow health index:** %d/100 (confidence: %s)  \n", report.Score.Index, report.Score.Confidence)
	fmt.Fprintf(&b, "**Arrows:** %d valid, %d invalid\n\n", valid, invalid)

	b.WriteString("## Vocabulary\n\n")
	info := report.Vocabulary
	fmt.Fprintf(&b, "- Version: %d\n", info.Version)
	fmt.Fprintf(&b, "- Fingerprint: `%s`\n", info.Fingerprint)
	fmt.Fprintf(&b, "- Phrases: %d\n", info.Phrases)
	for _, cat := range sortedCategories(info.PerCategory) {
		fmt.Fprintf(&b, "  - %s (%s): %d\n", cat.Label(), cat, info.PerCategory[cat])
	}
	if len(info.Sources) > 0 {
		fmt.Fprintf(&b, "- Sources: %s\n", strings.Join(info.Sources, ", "))
	}
	for _, w := range info.Warnings {
		fmt.Fprintf(&b, "- ⚠ %s\n", w)
	}
	for _, w := range info.Stale {
		fmt.Fprintf(&b, "- ↺ %s\n", w)
	}
	b.WriteString("\n")

	if invalid > 0 {
		b.WriteString("## Invalid Arrows\n\n")
		for _, a := range report.Annotations {
			if a.Valid {
				continue
			}
			fmt.Fprintf(&b, "### Line %d, column %d: `%s`\n\n", a.Line, a.Column, a.Raw)
			if len(a.Suggestions) == 0 {
				b.WriteString("No suggestions.\n\n")
				continue
			}
			if a.Category != "" {
				fmt.Fprintf(&b, "Likely category: %s\n\n", a.Category.Label())
			}
			writeGroups(&b, a.Suggestions)
		}
	}

	alternatives := false
	for _, a := range report.Annotations {
		if a.Valid && a.SuggestionKind == model.KindAlternatives {
			if !alternatives {
				b.WriteString("## Alternatives\n\n")
				alternatives = true
			}
			fmt.Fprintf(&b, "### Line %d: `%s` (%s)\n\n", a.Line, a.Raw, a.Category.Label())
			writeGroups(&b, a.Suggestions)
		}
	}

	if len(report.Score.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		b.WriteString("| Severity | Type | Description |\n")
		b.WriteString("|---|---|---|\n")
		for _, s := range report.Score.Signals {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Severity, s.Type, s.Description)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("*Generated by n4lint. Suggestions are drawn from the loaded arrow vocabulary only.*\n")
	}
	return b.String()
}

func writeGroups(b *strings.Builder, suggestions []model.Suggestion) {
	for _, g := range suggest.Group(suggestions) {
		fmt.Fprintf(b, "**%s**\n\n", g.Label)
		for _, s := range g.Suggestions {
			fmt.Fprintf(b, "- `(%s)` _%s_\n", s.Text, s.Tier)
		}
		b.WriteString("\n")
	}
}

// RenderSummary prints a short human-readable summary to w
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	valid, invalid := report.Counts()

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  %s\n", report.Document)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Arrow health:  %d/100 (%s confidence)\n", report.Score.Index, report.Score.Confidence)
	fmt.Fprintf(w, "  Arrows:        %d valid, %d invalid\n", valid, invalid)
	fmt.Fprintf(w, "  Vocabulary:    v%d, %d phrases\n", report.Vocabulary.Version, report.Vocabulary.Phrases)
	fmt.Fprintf(w, "\n")

	for _, a := range report.Annotations {
		if a.Valid {
			continue
		}
		fmt.Fprintf(w, "  ✗ %d:%d %s", a.Line, a.Column, a.Raw)
		if len(a.Suggestions) > 0 {
			names := make([]string, 0, len(a.Suggestions))
			for _, s := range a.Suggestions {
				names = append(names, "("+s.Text+")")
			}
			fmt.Fprintf(w, "  → %s", strings.Join(names, ", "))
		}
		fmt.Fprintf(w, "\n")
	}

	for _, s := range report.Score.Signals {
		if s.Severity == model.SeverityInfo {
			continue
		}
		fmt.Fprintf(w, "  ⚠ %s\n", s.Description)
	}
	fmt.Fprintf(w, "\n")
}

// RenderReport writes the requested outputs and prints the summary to w
func (p *Pipeline) RenderReport(w io.Writer, report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(w, report)
	return nil
}

func sortedCategories(counts map[model.Category]int) []model.Category {
	cats := make([]model.Category, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Rank() != cats[j].Rank() {
			return cats[i].Rank() < cats[j].Rank()
		}
		return cats[i] < cats[j]
	})
	return cats
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
