package loader

import (
	"context"
	"errors"
	"fmt"
)

// ErrCanceled is returned by tasks that were cancelled before their object was appended.
var ErrCanceled = fmt.Errorf("load canceled: %w", context.Canceled)

// FetchError reports a file or URL that could not be read.
type FetchError struct {
	Path       string
	StatusCode int // HTTP status, 0 for filesystem fetches
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed OBJ, MTL or image payload. Line is 0 for image payloads.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// canceled maps a context error onto ErrCanceled and passes everything else through.
func canceled(err error) error {
	if errors.Is(err, context.Canceled) && !errors.Is(err, ErrCanceled) {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return err
}

// ErrClosed is returned by tasks submitted after Close.
var ErrClosed = errors.New("loader closed")
