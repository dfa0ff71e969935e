package placeholder

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable is matched by every failure to fetch, read or
	// decode a source image.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRenderSurfaceUnavailable is matched when no off-screen surface could
	// be provided or the surface failed to export.
	ErrRenderSurfaceUnavailable = errors.New("render surface unavailable")

	// ErrEmptyPlaceholder is returned by SessionCache when a generator reports
	// success without producing a value.
	ErrEmptyPlaceholder = errors.New("generator returned an empty placeholder")
)

// SourceError describes a failed attempt to resolve a source.
// It matches ErrSourceUnavailable and the underlying cause.
type SourceError struct {
	// Source identifies the source (location, name or blob description).
	Source string

	// Op is the failed step: "fetch", "read" or "decode".
	Op string

	// Err is the underlying cause.
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrSourceUnavailable, e.Op, e.Source, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

func sourceError(src Source, op string, err error) error {
	return &SourceError{Source: src.String(), Op: op, Err: err}
}

func surfaceError(err error) error {
	return fmt.Errorf("%w: %w", ErrRenderSurfaceUnavailable, err)
}
