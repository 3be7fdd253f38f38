package history

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError through errors.Is.
var ErrValidation = errors.New("history: validation failed")

type Kind string

const (
	KindUnsupportedGranularity Kind = "unsupported_granularity"
	KindInvalidGranularity     Kind = "invalid_granularity"
	KindNonPositiveBucket      Kind = "non_positive_bucket"
)

// ValidationError is the only failure aggregation reports to its caller.
type ValidationError struct {
	Kind        Kind
	Granularity string
	Message     string
}

func (e *ValidationError) Error() string {
	if e.Granularity == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s %q: %s", e.Kind, e.Granularity, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(kind Kind, granularity, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Granularity: granularity, Message: fmt.Sprintf(format, args...)}
}
