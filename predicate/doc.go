// Package predicate decodes the boolean predicate of an inbound query into
// strongly-typed Go expressions.
//
// The wire format is a tagged JSON tree. Each node carries a "type" field:
//
//	{"type": "and", "expressions": [...]}
//	{"type": "or", "expressions": [...]}
//	{"type": "not", "expression": {...}}
//	{"type": "binary_comparison_operator",
//	 "column": {"type": "column", "name": "metric_sessions"},
//	 "operator": "_gt",
//	 "value": {"type": "scalar", "value": 100}}
//	{"type": "unary_comparison_operator", "column": {...}, "operator": "is_null"}
//	{"type": "exists", "in_collection": {...}, "predicate": {...}}
//
// Parse never fails on a well-formed node it does not understand. Unrecognized
// tags decode to *UnknownExpression, and unrecognized comparison values decode
// to *UnknownValue, so translation can report them alongside other problems
// instead of stopping at the first one.
//
// # Expression Types
//
// Expression is a closed set:
//   - AndExpression, OrExpression: conjunction and disjunction of children
//   - NotExpression: negation of one child
//   - BinaryComparisonExpression: column operator value
//   - UnaryComparisonExpression: column operator (IS NULL style)
//   - ExistsExpression: related-collection predicate
//   - UnknownExpression: any other tag
//
// Use a type switch to walk a tree.
package predicate
