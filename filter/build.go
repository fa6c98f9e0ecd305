package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/hugr-lab/airport-ga4/column"
)

// BuildResult holds the filter trees for a report request.
// Errors includes the errors of the ParseResult it was built from.
type BuildResult struct {
	// DimensionFilter always contains the scope leaf.
	DimensionFilter *Tree
	// MetricFilter is nil when the predicate has no metric comparisons.
	MetricFilter *Tree
	Errors       []error
}

// Err returns a *TranslationError when any error was recorded.
// It must be checked before the trees are sent anywhere.
func (r *BuildResult) Err() error {
	return promote(r.Errors)
}

// Build converts parsed comparisons into filter trees.
//
// The scope leaf is always part of the dimension filter:
//   - no dimension comparisons: the scope leaf alone
//   - one or more: AND(scope, comparisons...), scope first
//
// Metric comparisons have no scope counterpart:
//   - none: no metric filter
//   - one: a single leaf
//   - two or more: AND(comparisons...)
//
// Comparisons that cannot be converted are dropped and recorded in Errors.
func Build(parsed *ParseResult, scope Leaf) *BuildResult {
	res := &BuildResult{}
	if parsed == nil {
		parsed = &ParseResult{}
	}
	res.Errors = append(res.Errors, parsed.Errors...)

	var dimensionLeaves []*Tree
	for _, p := range parsed.Dimensions {
		leaf, err := dimensionLeaf(p)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		dimensionLeaves = append(dimensionLeaves, LeafTree(leaf))
	}

	var metricLeaves []*Tree
	for _, p := range parsed.Metrics {
		leaf, err := metricLeaf(p)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		metricLeaves = append(metricLeaves, LeafTree(leaf))
	}

	if len(dimensionLeaves) == 0 {
		res.DimensionFilter = LeafTree(scope)
	} else {
		res.DimensionFilter = AndTree(append([]*Tree{LeafTree(scope)}, dimensionLeaves...)...)
	}

	switch len(metricLeaves) {
	case 0:
	case 1:
		res.MetricFilter = metricLeaves[0]
	default:
		res.MetricFilter = AndTree(metricLeaves...)
	}

	return res
}

func dimensionLeaf(p Parsed) (Leaf, error) {
	if p.Kind != column.Dimension {
		return Leaf{}, fmt.Errorf("%w: %s column %q used as dimension", ErrOperatorMismatch, p.Kind, p.Column)
	}

	value, ok := p.Value.(string)
	if !ok {
		return Leaf{}, fmt.Errorf("%w: dimension %q requires a string value, got %s", ErrTypeMismatch, p.Column, describe(p.Value))
	}

	var match MatchType
	switch p.Operator {
	case OperatorEqual:
		match = MatchExact
	case OperatorLike:
		match = MatchPartialRegexp
	default:
		return Leaf{}, fmt.Errorf("%w: %s on dimension column %q", ErrOperatorMismatch, p.Operator, p.Column)
	}

	return Leaf{
		FieldName:    p.Name,
		StringFilter: &StringFilter{MatchType: match, Value: value},
	}, nil
}

func metricLeaf(p Parsed) (Leaf, error) {
	if p.Kind != column.Metric {
		return Leaf{}, fmt.Errorf("%w: %s column %q used as metric", ErrOperatorMismatch, p.Kind, p.Column)
	}

	var op NumericOperation
	switch p.Operator {
	case OperatorEqual:
		op = NumericEqual
	case OperatorGreaterThan:
		op = NumericGreaterThan
	case OperatorLessThan:
		op = NumericLessThan
	default:
		return Leaf{}, fmt.Errorf("%w: %s on metric column %q", ErrOperatorMismatch, p.Operator, p.Column)
	}

	value, ok := toNumber(p.Value)
	if !ok {
		return Leaf{}, fmt.Errorf("%w: metric %q requires a numeric value, got %s", ErrTypeMismatch, p.Column, describe(p.Value))
	}

	return Leaf{
		FieldName:     p.Name,
		NumericFilter: &NumericFilter{Operation: op, Value: value},
	}, nil
}

// toNumber accepts JSON numbers, Go numeric types and numeric strings.
// Integer literals that fit int64 stay exact; everything else is a float.
// Non-finite values are rejected; the Data API cannot represent them.
func toNumber(v any) (Number, bool) {
	switch n := v.(type) {
	case json.Number:
		return parseNumber(n.String())
	case string:
		return parseNumber(n)
	case int:
		return Int(int64(n)), true
	case int8:
		return Int(int64(n)), true
	case int16:
		return Int(int64(n)), true
	case int32:
		return Int(int64(n)), true
	case int64:
		return Int(n), true
	case uint:
		return fromUint(uint64(n))
	case uint8:
		return Int(int64(n)), true
	case uint16:
		return Int(int64(n)), true
	case uint32:
		return Int(int64(n)), true
	case uint64:
		return fromUint(n)
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	default:
		return Number{}, false
	}
}

func parseNumber(s string) (Number, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, false
	}
	return fromFloat(f)
}

func fromUint(u uint64) (Number, bool) {
	if u > math.MaxInt64 {
		return fromFloat(float64(u))
	}
	return Int(int64(u)), true
}

func fromFloat(f float64) (Number, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}, false
	}
	return Float(f), true
}

func describe(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case json.Number:
		return "number " + n.String()
	case string:
		return "string " + strconv.Quote(n)
	default:
		return fmt.Sprintf("%T", v)
	}
}
