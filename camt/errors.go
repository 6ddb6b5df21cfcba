package camt

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDocument = errors.New("document content is empty")
	ErrNoRoot        = errors.New("document has no root element")
)

// DocumentError is returned when a statement cannot be loaded or parsed at all.
type DocumentError struct {
	Source string
	Err    error
}

func (e *DocumentError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("could not load CAMT document: %v", e.Err)
	}
	return fmt.Sprintf("could not load CAMT document %s: %v", e.Source, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// ExtractionError is returned when a required field of an entry cannot be interpreted.
// Entry is the 1-based position of the entry in the document.
type ExtractionError struct {
	Entry int
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("error occurred parsing CAMT entry %d (%s): %v", e.Entry, e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
