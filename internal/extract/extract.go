// Package extract turns converter output into plain N4L text.
package extract

// Extractor recovers N4L text from one input format
type Extractor interface {
	Name() string
	CanHandle(name string, content string) bool
	Extract(content string) (string, error)
}

// PlainExtractor passes text through unchanged
type PlainExtractor struct{}

func (PlainExtractor) Name() string { return "plain" }

func (PlainExtractor) CanHandle(string, string) bool { return true }

func (PlainExtractor) Extract(content string) (string, error) { return content, nil }

// Registry picks an extractor per input
type Registry struct {
	extractors []Extractor
	fallback   Extractor
}

// NewRegistry creates a registry with the HTML extractor and a plain-text fallback
func NewRegistry() *Registry {
	r := &Registry{fallback: PlainExtractor{}}
	r.Register(NewHTMLExtractor())
	return r
}

// Register adds an extractor ahead of the fallback
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// Find returns the first extractor that handles the input
func (r *Registry) Find(name, content string) Extractor {
	for _, e := range r.extractors {
		if e.CanHandle(name, content) {
			return e
		}
	}
	return r.fallback
}

// Lookup returns the extractor registered under name
func (r *Registry) Lookup(name string) (Extractor, bool) {
	if name == r.fallback.Name() {
		return r.fallback, true
	}
	for _, e := range r.extractors {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

// Text extracts N4L text using the matching extractor
func (r *Registry) Text(name, content string) (string, error) {
	return r.Find(name, content).Extract(content)
}
