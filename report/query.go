package report

import (
	"encoding/json"
	"fmt"
)

// FieldTypeColumn is the only supported field type.
const FieldTypeColumn = "column"

// ArgumentTypeLiteral is the only supported argument type.
const ArgumentTypeLiteral = "literal"

// DateRangeArgument is the argument name carrying the report date range.
const DateRangeArgument = "dateRange"

// Query is the inbound, provider-agnostic analytics query.
type Query struct {
	// Fields maps output field names to source columns.
	Fields map[string]Field `json:"fields"`

	// Predicate is the raw predicate tree; empty or null means no filter.
	Predicate json.RawMessage `json:"predicate,omitempty"`

	// Limit is the maximum number of rows; nil means DefaultLimit.
	Limit *int `json:"limit,omitempty"`

	Arguments map[string]Argument `json:"arguments,omitempty"`
}

// Field selects a source column for an output field.
type Field struct {
	Type   string `json:"type"`
	Column string `json:"column"`
}

// Argument is a typed query argument.
type Argument struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
	Name  string          `json:"name,omitempty"`
}

// ParseQuery decodes a JSON query document.
func ParseQuery(data []byte) (*Query, error) {
	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return &q, nil
}
