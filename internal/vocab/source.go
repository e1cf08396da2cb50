package vocab

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ppiankov/n4lint/internal/model"
)

//go:embed defaults/arrows-*.sst
var builtinFS embed.FS

// BuiltinLocation selects the SSTconfig files shipped with the binary
const BuiltinLocation = "builtin"

const arrowFilePattern = "arrows-*.sst"

// Source is one readable vocabulary location
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Categorized is implemented by sources with an explicit category
type Categorized interface {
	Category() model.Category
}

var (
	arrowFileCategory = regexp.MustCompile(`arrows-([A-Z]+-[0-9]+)`)
	anyCategoryCode   = regexp.MustCompile(`[A-Z]+-[0-9]+`)
)

// CategoryFromName derives a category from a source name such as "arrows-LT-1.sst".
// Names without a category code map to the special category.
func CategoryFromName(name string) model.Category {
	if m := arrowFileCategory.FindStringSubmatch(name); m != nil {
		return model.Category(m[1])
	}
	if m := anyCategoryCode.FindString(name); m != "" {
		return model.Category(m)
	}
	return model.CategorySpecial
}

func categoryOf(src Source) model.Category {
	if c, ok := src.(Categorized); ok {
		return c.Category()
	}
	return CategoryFromName(src.Name())
}

// FileSource reads a local SSTconfig file
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return s.Path }

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	return f, nil
}

// TextSource serves in-memory SSTconfig text
type TextSource struct {
	SourceName string
	Text       string
}

func (s *TextSource) Name() string { return s.SourceName }

func (s *TextSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.Text)), nil
}

type embeddedSource struct {
	file string
}

func (s *embeddedSource) Name() string { return BuiltinLocation + ":" + path.Base(s.file) }

func (s *embeddedSource) Open(ctx context.Context) (io.ReadCloser, error) {
	data, err := builtinFS.ReadFile(s.file)
	if err != nil {
		return nil, fmt.Errorf("read builtin: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type categorizedSource struct {
	Source
	category model.Category
}

func (s *categorizedSource) Category() model.Category { return s.category }

// WithCategory pins src to an explicit category regardless of its name
func WithCategory(src Source, category model.Category) Source {
	return &categorizedSource{Source: src, category: category}
}

// unresolvedSource stands in for a location that matched nothing,
// so the problem surfaces as a load warning.
type unresolvedSource struct {
	location string
	err      error
}

func (s *unresolvedSource) Name() string { return s.location }

func (s *unresolvedSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return nil, s.err
}

// BuiltinSources returns the embedded SSTconfig files in category order
func BuiltinSources() []Source {
	names, err := fs.Glob(builtinFS, "defaults/"+arrowFilePattern)
	if err != nil {
		return nil
	}
	sortByCategory(names)

	sources := make([]Source, 0, len(names))
	for _, name := range names {
		sources = append(sources, &embeddedSource{file: name})
	}
	return sources
}

// ResolveSources expands configured locations into sources.
// http(s) locations need fetcher; without one they resolve to a warning.
func ResolveSources(locations []string, fetcher *HTTPFetcher) []Source {
	var sources []Source

	for _, loc := range locations {
		loc = strings.TrimSpace(loc)
		switch {
		case loc == "":
			continue
		case loc == BuiltinLocation:
			sources = append(sources, BuiltinSources()...)
		case strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://"):
			if fetcher == nil {
				sources = append(sources, &unresolvedSource{location: loc, err: fmt.Errorf("remote sources are disabled")})
				continue
			}
			sources = append(sources, &HTTPSource{URL: loc, Fetcher: fetcher})
		case strings.ContainsAny(loc, "*?[{"):
			sources = append(sources, globSources(loc)...)
		default:
			if info, err := os.Stat(loc); err == nil && info.IsDir() {
				sources = append(sources, globSources(filepath.Join(loc, arrowFilePattern))...)
				continue
			}
			sources = append(sources, &FileSource{Path: loc})
		}
	}

	return sources
}

func globSources(pattern string) []Source {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return []Source{&unresolvedSource{location: pattern, err: fmt.Errorf("bad pattern: %w", err)}}
	}
	if len(matches) == 0 {
		return []Source{&unresolvedSource{location: pattern, err: fmt.Errorf("no files match")}}
	}
	sortByCategory(matches)

	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, &FileSource{Path: m})
	}
	return sources
}

// sortByCategory orders file names by category rank, then name
func sortByCategory(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		ri := CategoryFromName(path.Base(filepath.ToSlash(names[i]))).Rank()
		rj := CategoryFromName(path.Base(filepath.ToSlash(names[j]))).Rank()
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}
