package filter

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedExpression is recorded for NOT, EXISTS, unary comparisons and unknown tags.
	ErrUnsupportedExpression = errors.New("unsupported expression")

	// ErrDisjunction is recorded for every OR node.
	ErrDisjunction = errors.New("or expressions are not supported, children would be combined with and")

	// ErrUnsupportedOperator is recorded for comparison operators outside the supported set.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrOperatorMismatch is recorded when an operator is not allowed on the column kind.
	ErrOperatorMismatch = errors.New("operator not allowed for column kind")

	// ErrUnsupportedValue is recorded for non-literal comparison values.
	ErrUnsupportedValue = errors.New("unsupported comparison value")

	// ErrTypeMismatch is recorded when a literal does not fit the column kind.
	ErrTypeMismatch = errors.New("value type mismatch")
)

// TranslationError aggregates every problem found while translating a predicate.
type TranslationError struct {
	Errors []error
}

func (e *TranslationError) Error() string {
	var sb strings.Builder
	sb.WriteString("filter translation failed with ")
	sb.WriteString(strconv.Itoa(len(e.Errors)))
	if len(e.Errors) == 1 {
		sb.WriteString(" error: ")
	} else {
		sb.WriteString(" errors: ")
	}
	for i, err := range e.Errors {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TranslationError) Unwrap() []error {
	return e.Errors
}

// promote returns nil for an empty list, a *TranslationError otherwise.
func promote(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &TranslationError{Errors: append([]error(nil), errs...)}
}
