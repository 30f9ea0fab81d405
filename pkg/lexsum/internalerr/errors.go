package internalerr

import "errors"

// Sentinel errors for common cases
var (
	// ErrEmptyDocument means the source yielded no usable text. Terminal.
	ErrEmptyDocument = errors.New("empty document")
	// ErrSourceUnavailable means the text source could not be read. Terminal.
	ErrSourceUnavailable = errors.New("text source unavailable")
	ErrInvalidConfig     = errors.New("invalid configuration")

	// Recovered locally; only seen inside component boundaries and logs.
	ErrSummarizerFailed = errors.New("summarizer call failed")
	ErrAnnotatorFailed  = errors.New("annotator call failed")
)
