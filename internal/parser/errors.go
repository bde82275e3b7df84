package parser

import (
	"errors"
	"fmt"

	"github.com/learnloop/activity-service/internal/models"
)

var (
	// Document-level failures. These are fatal: the whole parse is rejected
	// and no partial content is returned.
	ErrMalformedDocument     = errors.New("malformed XML document")
	ErrUnknownVocabularyKind = errors.New("missing or unknown vocabulary type attribute")
	ErrNoWords               = errors.New("no valid words remain after filtering")
	ErrNoPages               = errors.New("no valid matching pages in document")
	ErrUnknownDialect        = errors.New("unknown content dialect")
)

// ParseError wraps a fatal parse failure with the dialect it occurred in.
type ParseError struct {
	Dialect models.Dialect
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed (%s dialect): %v", e.Dialect, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(dialect models.Dialect, err error) *ParseError {
	return &ParseError{Dialect: dialect, Err: err}
}

// IsFatal reports whether err is a document-level parse failure.
func IsFatal(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
