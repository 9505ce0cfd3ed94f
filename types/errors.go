package types

import (
	"errors"
	"fmt"
)

// Fatal conditions. Any of these aborts the pipeline.
var (
	ErrEmptyScript = errors.New("script has no lines")
	ErrNoVisuals   = errors.New("no visuals available for composition")
	ErrNoNarration = errors.New("narration duration unknown")
)

// ContentFormatError means the language model answered in a shape we cannot use
type ContentFormatError struct {
	Raw string
	Err error
}

func (e *ContentFormatError) Error() string {
	raw := e.Raw
	if r := []rune(raw); len(r) > 300 {
		raw = string(r[:300]) + "..."
	}
	return fmt.Sprintf("model did not return valid JSON: %v\nraw content: %s", e.Err, raw)
}

func (e *ContentFormatError) Unwrap() error { return e.Err }

// IsFatal reports whether err is one of the pipeline-aborting conditions
func IsFatal(err error) bool {
	var cfe *ContentFormatError
	return errors.As(err, &cfe) ||
		errors.Is(err, ErrEmptyScript) ||
		errors.Is(err, ErrNoVisuals) ||
		errors.Is(err, ErrNoNarration)
}
