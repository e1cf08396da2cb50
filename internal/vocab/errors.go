package vocab

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks a vocabulary source that could not be read.
	// Loading continues without it.
	ErrSourceUnavailable = errors.New("vocabulary source unavailable")

	// ErrStaleSource marks a remote source served from an expired cached copy
	// after its fetch failed. The source still contributed phrases.
	ErrStaleSource = errors.New("fetch failed, using cached copy")

	// ErrReloadSuperseded is returned internally when a newer load published first.
	ErrReloadSuperseded = errors.New("vocabulary reload superseded")
)

// SourceError records why one source did not contribute to a load
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is matches ErrSourceUnavailable unless the source was served from a stale copy
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable && !errors.Is(e.Err, ErrStaleSource)
}
