package filter

import "github.com/hugr-lab/airport-ga4/column"

// Operator is a binary comparison operator name as sent by the caller.
type Operator string

const (
	OperatorEqual       Operator = "_eq"
	OperatorGreaterThan Operator = "_gt"
	OperatorLessThan    Operator = "_lt"
	OperatorLike        Operator = "_like"
)

var supportedOperators = map[Operator]struct{}{
	OperatorEqual:       {},
	OperatorGreaterThan: {},
	OperatorLessThan:    {},
	OperatorLike:        {},
}

// IsSupported reports whether the operator can be translated at all.
func (o Operator) IsSupported() bool {
	_, ok := supportedOperators[o]
	return ok
}

// AllowedFor reports whether the operator may be applied to a column of the given kind.
func (o Operator) AllowedFor(kind column.Kind) bool {
	switch kind {
	case column.Dimension:
		return o == OperatorEqual || o == OperatorLike
	case column.Metric:
		return o == OperatorEqual || o == OperatorGreaterThan || o == OperatorLessThan
	default:
		return false
	}
}

// SupportedOperators returns the supported operators in a stable order.
func SupportedOperators() []Operator {
	return []Operator{OperatorEqual, OperatorGreaterThan, OperatorLessThan, OperatorLike}
}
