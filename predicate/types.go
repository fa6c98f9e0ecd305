package predicate

import "encoding/json"

// ExpressionType identifies the node kind of a predicate expression.
type ExpressionType string

const (
	TypeAnd              ExpressionType = "and"
	TypeOr               ExpressionType = "or"
	TypeNot              ExpressionType = "not"
	TypeBinaryComparison ExpressionType = "binary_comparison_operator"
	TypeUnaryComparison  ExpressionType = "unary_comparison_operator"
	TypeExists           ExpressionType = "exists"
)

// Expression is implemented by all predicate node types.
type Expression interface {
	// Type returns the node tag as it appeared on the wire.
	Type() ExpressionType

	// expressionMarker prevents implementations outside this package.
	expressionMarker()
}

// AndExpression is a conjunction of child expressions.
type AndExpression struct {
	Expressions []Expression
}

// OrExpression is a disjunction of child expressions.
type OrExpression struct {
	Expressions []Expression
}

// NotExpression negates a child expression.
type NotExpression struct {
	Expression Expression
}

// BinaryComparisonExpression compares a column with a value.
type BinaryComparisonExpression struct {
	Column   ComparisonTarget
	Operator string
	Value    ComparisonValue
}

// UnaryComparisonExpression applies a unary operator (e.g. is_null) to a column.
type UnaryComparisonExpression struct {
	Column   ComparisonTarget
	Operator string
}

// ExistsExpression tests for related rows in another collection.
// Both parts are kept raw; nothing in the connector evaluates them.
type ExistsExpression struct {
	InCollection json.RawMessage
	Predicate    json.RawMessage
}

// UnknownExpression is produced for any tag this package does not recognize.
type UnknownExpression struct {
	Tag string
}

func (*AndExpression) Type() ExpressionType              { return TypeAnd }
func (*OrExpression) Type() ExpressionType               { return TypeOr }
func (*NotExpression) Type() ExpressionType              { return TypeNot }
func (*BinaryComparisonExpression) Type() ExpressionType { return TypeBinaryComparison }
func (*UnaryComparisonExpression) Type() ExpressionType  { return TypeUnaryComparison }
func (*ExistsExpression) Type() ExpressionType           { return TypeExists }
func (e *UnknownExpression) Type() ExpressionType        { return ExpressionType(e.Tag) }

func (*AndExpression) expressionMarker()              {}
func (*OrExpression) expressionMarker()               {}
func (*NotExpression) expressionMarker()              {}
func (*BinaryComparisonExpression) expressionMarker() {}
func (*UnaryComparisonExpression) expressionMarker()  {}
func (*ExistsExpression) expressionMarker()           {}
func (*UnknownExpression) expressionMarker()          {}

// TargetType distinguishes the two ways a comparison can name a column.
type TargetType string

const (
	TargetColumn               TargetType = "column"
	TargetRootCollectionColumn TargetType = "root_collection_column"
)

// ComparisonTarget identifies the column on the left side of a comparison.
// Column and root-collection column targets are treated the same.
type ComparisonTarget struct {
	Type TargetType      `json:"type"`
	Name string          `json:"name"`
	Path json.RawMessage `json:"path,omitempty"`
}

// ValueType identifies the kind of a comparison value.
type ValueType string

const (
	ValueScalar   ValueType = "scalar"
	ValueVariable ValueType = "variable"
	ValueColumn   ValueType = "column"
)

// ComparisonValue is the right side of a binary comparison.
type ComparisonValue interface {
	ValueType() ValueType
	valueMarker()
}

// ScalarValue is a literal value. Numbers are kept as json.Number.
type ScalarValue struct {
	Value any
}

// VariableValue refers to a bound query variable.
type VariableValue struct {
	Name string
}

// ColumnValue compares against another column.
type ColumnValue struct {
	Column ComparisonTarget
}

// UnknownValue is produced for unrecognized value tags.
type UnknownValue struct {
	Tag string
}

func (*ScalarValue) ValueType() ValueType    { return ValueScalar }
func (*VariableValue) ValueType() ValueType  { return ValueVariable }
func (*ColumnValue) ValueType() ValueType    { return ValueColumn }
func (v *UnknownValue) ValueType() ValueType { return ValueType(v.Tag) }

func (*ScalarValue) valueMarker()   {}
func (*VariableValue) valueMarker() {}
func (*ColumnValue) valueMarker()   {}
func (*UnknownValue) valueMarker()  {}

// And builds a conjunction.
func And(exprs ...Expression) *AndExpression {
	return &AndExpression{Expressions: exprs}
}

// Or builds a disjunction.
func Or(exprs ...Expression) *OrExpression {
	return &OrExpression{Expressions: exprs}
}

// Not builds a negation.
func Not(expr Expression) *NotExpression {
	return &NotExpression{Expression: expr}
}

// Compare builds a binary comparison of a plain column against a literal.
func Compare(column, operator string, value any) *BinaryComparisonExpression {
	return &BinaryComparisonExpression{
		Column:   ComparisonTarget{Type: TargetColumn, Name: column},
		Operator: operator,
		Value:    &ScalarValue{Value: value},
	}
}
