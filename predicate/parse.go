package predicate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Parse decodes a predicate JSON tree.
// Returns (nil, nil) when data is empty or JSON null: no predicate means no filter.
//
// Error conditions:
//   - Invalid JSON syntax
//   - A node that is not a JSON object
//   - A known node whose fields have the wrong JSON shape
//
// Unknown node and value tags are not errors (see UnknownExpression).
func Parse(data []byte) (Expression, error) {
	if isAbsent(data) {
		return nil, nil
	}

	expr, err := parseExpression(data)
	if err != nil {
		return nil, fmt.Errorf("predicate: %w", err)
	}
	return expr, nil
}

func isAbsent(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// rawExpression is used for two-phase parsing to determine the node tag.
type rawExpression struct {
	Type string `json:"type"`
}

func parseExpression(data json.RawMessage) (Expression, error) {
	var raw rawExpression
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid expression: %w", err)
	}

	switch ExpressionType(raw.Type) {
	case TypeAnd:
		children, err := parseChildren(data)
		if err != nil {
			return nil, fmt.Errorf("invalid and expression: %w", err)
		}
		return &AndExpression{Expressions: children}, nil
	case TypeOr:
		children, err := parseChildren(data)
		if err != nil {
			return nil, fmt.Errorf("invalid or expression: %w", err)
		}
		return &OrExpression{Expressions: children}, nil
	case TypeNot:
		return parseNotExpression(data)
	case TypeBinaryComparison:
		return parseBinaryComparison(data)
	case TypeUnaryComparison:
		return parseUnaryComparison(data)
	case TypeExists:
		return parseExistsExpression(data)
	default:
		return &UnknownExpression{Tag: raw.Type}, nil
	}
}

// rawConjunction is the JSON structure shared by and/or nodes.
type rawConjunction struct {
	Expressions []json.RawMessage `json:"expressions"`
}

func parseChildren(data json.RawMessage) ([]Expression, error) {
	var raw rawConjunction
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	children := make([]Expression, 0, len(raw.Expressions))
	for i, child := range raw.Expressions {
		expr, err := parseExpression(child)
		if err != nil {
			return nil, fmt.Errorf("invalid child %d: %w", i, err)
		}
		children = append(children, expr)
	}
	return children, nil
}

type rawNot struct {
	Expression json.RawMessage `json:"expression"`
}

func parseNotExpression(data json.RawMessage) (*NotExpression, error) {
	var raw rawNot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid not expression: %w", err)
	}

	not := &NotExpression{}
	if isAbsent(raw.Expression) {
		return not, nil
	}
	child, err := parseExpression(raw.Expression)
	if err != nil {
		return nil, fmt.Errorf("invalid not operand: %w", err)
	}
	not.Expression = child
	return not, nil
}

type rawBinaryComparison struct {
	Column   ComparisonTarget `json:"column"`
	Operator string           `json:"operator"`
	Value    json.RawMessage  `json:"value"`
}

func parseBinaryComparison(data json.RawMessage) (*BinaryComparisonExpression, error) {
	var raw rawBinaryComparison
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid binary comparison: %w", err)
	}

	value, err := parseValue(raw.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid comparison value: %w", err)
	}

	return &BinaryComparisonExpression{
		Column:   raw.Column,
		Operator: raw.Operator,
		Value:    value,
	}, nil
}

type rawUnaryComparison struct {
	Column   ComparisonTarget `json:"column"`
	Operator string           `json:"operator"`
}

func parseUnaryComparison(data json.RawMessage) (*UnaryComparisonExpression, error) {
	var raw rawUnaryComparison
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid unary comparison: %w", err)
	}
	return &UnaryComparisonExpression{Column: raw.Column, Operator: raw.Operator}, nil
}

type rawExists struct {
	InCollection json.RawMessage `json:"in_collection"`
	Predicate    json.RawMessage `json:"predicate"`
}

func parseExistsExpression(data json.RawMessage) (*ExistsExpression, error) {
	var raw rawExists
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid exists expression: %w", err)
	}
	return &ExistsExpression{InCollection: raw.InCollection, Predicate: raw.Predicate}, nil
}

// rawValue covers every comparison value variant.
type rawValue struct {
	Type   string           `json:"type"`
	Value  json.RawMessage  `json:"value"`
	Name   string           `json:"name"`
	Column ComparisonTarget `json:"column"`
}

func parseValue(data json.RawMessage) (ComparisonValue, error) {
	if isAbsent(data) {
		return &UnknownValue{}, nil
	}

	var raw rawValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch ValueType(raw.Type) {
	case ValueScalar:
		v, err := decodeScalar(raw.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid scalar: %w", err)
		}
		return &ScalarValue{Value: v}, nil
	case ValueVariable:
		return &VariableValue{Name: raw.Name}, nil
	case ValueColumn:
		return &ColumnValue{Column: raw.Column}, nil
	default:
		return &UnknownValue{Tag: raw.Type}, nil
	}
}

// decodeScalar keeps numbers as json.Number so metric values are not rounded.
func decodeScalar(data json.RawMessage) (any, error) {
	if isAbsent(data) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
