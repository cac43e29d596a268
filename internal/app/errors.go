package app

import (
	"errors"
	"fmt"

	"transcriptcleaner/internal/cleaner"
	"transcriptcleaner/internal/storage"
)

// ErrorKind classifies why a single transcript could not be cleaned
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindInputNotFound
	KindTokenizationFailure
	KindOutputWriteFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInputNotFound:
		return "input_not_found"
	case KindTokenizationFailure:
		return "tokenization_failure"
	case KindOutputWriteFailure:
		return "output_write_failure"
	default:
		return "unexpected"
	}
}

// ItemError is the failure of one transcript inside a run
type ItemError struct {
	Item string
	Kind ErrorKind
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Item, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// classify maps an underlying error onto an ErrorKind
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return KindInputNotFound
	case errors.Is(err, cleaner.ErrTokenization):
		return KindTokenizationFailure
	case errors.Is(err, storage.ErrWriteFailed):
		return KindOutputWriteFailure
	default:
		return KindUnexpected
	}
}

func newItemError(item string, err error) *ItemError {
	return &ItemError{Item: item, Kind: classify(err), Err: err}
}
