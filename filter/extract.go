package filter

import (
	"fmt"

	"github.com/hugr-lab/airport-ga4/column"
	"github.com/hugr-lab/airport-ga4/predicate"
)

// Parsed is a single comparison that can be turned into a filter leaf.
type Parsed struct {
	// Column is the connector column name, e.g. "metric_sessions".
	Column string
	// Name is the Data API field name, e.g. "sessions".
	Name     string
	Kind     column.Kind
	Operator Operator
	Value    any
}

// ParseResult holds the comparisons extracted from a predicate and every
// problem found on the way. A non-empty Errors list is fatal (see Err).
type ParseResult struct {
	Dimensions []Parsed
	Metrics    []Parsed
	Errors     []error
}

// Err returns a *TranslationError when any error was recorded.
func (r *ParseResult) Err() error {
	return promote(r.Errors)
}

// Extract walks a predicate and collects its comparisons by column kind.
// A nil expression yields an empty result with no errors.
func Extract(expr predicate.Expression) *ParseResult {
	res := &ParseResult{}
	if expr != nil {
		res.walk(expr)
	}
	return res
}

func (r *ParseResult) walk(expr predicate.Expression) {
	switch ex := expr.(type) {
	case *predicate.AndExpression:
		for _, child := range ex.Expressions {
			r.walk(child)
		}
	case *predicate.OrExpression:
		r.Errors = append(r.Errors, ErrDisjunction)
		for _, child := range ex.Expressions {
			r.walk(child)
		}
	case *predicate.BinaryComparisonExpression:
		r.comparison(ex)
	case *predicate.NotExpression,
		*predicate.UnaryComparisonExpression,
		*predicate.ExistsExpression:
		r.Errors = append(r.Errors, fmt.Errorf("%w: %s", ErrUnsupportedExpression, ex.Type()))
	case *predicate.UnknownExpression:
		r.Errors = append(r.Errors, fmt.Errorf("%w: unknown expression type %q", ErrUnsupportedExpression, ex.Tag))
	default:
		r.Errors = append(r.Errors, fmt.Errorf("%w: %T", ErrUnsupportedExpression, expr))
	}
}

func (r *ParseResult) comparison(c *predicate.BinaryComparisonExpression) {
	op := Operator(c.Operator)
	if !op.IsSupported() {
		r.Errors = append(r.Errors, fmt.Errorf("%w: %q on column %q", ErrUnsupportedOperator, c.Operator, c.Column.Name))
		return
	}

	class, err := column.Classify(c.Column.Name)
	if err != nil {
		r.Errors = append(r.Errors, err)
		return
	}

	scalar, ok := c.Value.(*predicate.ScalarValue)
	if !ok {
		r.Errors = append(r.Errors, fmt.Errorf("%w: %s value for column %q, only scalar literals are supported",
			ErrUnsupportedValue, c.Value.ValueType(), c.Column.Name))
		return
	}

	if !op.AllowedFor(class.Kind) {
		r.Errors = append(r.Errors, fmt.Errorf("%w: %s on %s column %q", ErrOperatorMismatch, op, class.Kind, c.Column.Name))
		return
	}

	parsed := Parsed{
		Column:   c.Column.Name,
		Name:     class.Base,
		Kind:     class.Kind,
		Operator: op,
		Value:    scalar.Value,
	}
	if class.Kind == column.Dimension {
		r.Dimensions = append(r.Dimensions, parsed)
	} else {
		r.Metrics = append(r.Metrics, parsed)
	}
}
