package filter

import (
	"strconv"
	"strings"
)

// MatchType is the Data API string match type.
type MatchType string

const (
	MatchExact         MatchType = "EXACT"
	MatchPartialRegexp MatchType = "PARTIAL_REGEXP"
)

// NumericOperation is the Data API numeric comparison.
type NumericOperation string

const (
	NumericEqual       NumericOperation = "EQUAL"
	NumericGreaterThan NumericOperation = "GREATER_THAN"
	NumericLessThan    NumericOperation = "LESS_THAN"
)

// StringFilter matches dimension values.
type StringFilter struct {
	MatchType     MatchType
	Value         string
	CaseSensitive bool
}

// NumericFilter compares metric values.
type NumericFilter struct {
	Operation NumericOperation
	Value     Number
}

// Number is a metric literal. Integers keep their full int64 value.
type Number struct {
	Int   int64
	Float float64
	IsInt bool
}

// Int returns an integer Number.
func Int(n int64) Number {
	return Number{Int: n, Float: float64(n), IsInt: true}
}

// Float returns a floating point Number.
func Float(f float64) Number {
	return Number{Float: f}
}

func (n Number) String() string {
	if n.IsInt {
		return strconv.FormatInt(n.Int, 10)
	}
	return strconv.FormatFloat(n.Float, 'g', -1, 64)
}

// Leaf filters a single field. Exactly one of StringFilter and NumericFilter is set.
type Leaf struct {
	FieldName     string
	StringFilter  *StringFilter
	NumericFilter *NumericFilter
}

// Tree is a Data API filter expression: a single leaf or an AND group.
type Tree struct {
	Leaf *Leaf
	And  []*Tree
}

// ExactMatch returns a leaf matching a dimension exactly.
func ExactMatch(field, value string) Leaf {
	return Leaf{FieldName: field, StringFilter: &StringFilter{MatchType: MatchExact, Value: value}}
}

// LeafTree wraps a leaf in a tree.
func LeafTree(l Leaf) *Tree {
	return &Tree{Leaf: &l}
}

// AndTree groups trees with AND.
func AndTree(children ...*Tree) *Tree {
	return &Tree{And: children}
}

// Leaves returns every leaf in the tree, depth first.
func (t *Tree) Leaves() []*Leaf {
	if t == nil {
		return nil
	}
	if t.Leaf != nil {
		return []*Leaf{t.Leaf}
	}
	var leaves []*Leaf
	for _, child := range t.And {
		leaves = append(leaves, child.Leaves()...)
	}
	return leaves
}

// String renders the tree for logs and diagnostics.
func (t *Tree) String() string {
	if t == nil {
		return ""
	}
	if t.Leaf != nil {
		return t.Leaf.String()
	}
	parts := make([]string, 0, len(t.And))
	for _, child := range t.And {
		parts = append(parts, child.String())
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

func (l *Leaf) String() string {
	switch {
	case l.StringFilter != nil && l.StringFilter.MatchType == MatchPartialRegexp:
		return l.FieldName + " =~ " + strconv.Quote(l.StringFilter.Value)
	case l.StringFilter != nil:
		return l.FieldName + " = " + strconv.Quote(l.StringFilter.Value)
	case l.NumericFilter != nil:
		v := l.NumericFilter.Value.String()
		switch l.NumericFilter.Operation {
		case NumericGreaterThan:
			return l.FieldName + " > " + v
		case NumericLessThan:
			return l.FieldName + " < " + v
		default:
			return l.FieldName + " = " + v
		}
	default:
		return l.FieldName
	}
}
