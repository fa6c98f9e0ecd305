// Package filter translates predicate expressions into GA4 Data API filter trees.
//
// Translation runs in two steps:
//
//	res := filter.Extract(expr)         // walk the predicate, classify comparisons
//	built := filter.Build(res, scope)   // convert to leaves, combine with the scope leaf
//	if err := built.Err(); err != nil {
//	    return err // nothing may be sent upstream
//	}
//
// Both steps collect problems instead of stopping at the first one, so a
// caller sees every unsupported clause at once. Any collected error makes the
// whole translation fail: dropping a clause would silently widen the result set.
//
// # Operator Support
//
//	operator  dimension             metric
//	_eq       EXACT string match    numeric EQUAL
//	_gt       rejected              numeric GREATER_THAN
//	_lt       rejected              numeric LESS_THAN
//	_like     PARTIAL_REGEXP match  rejected
//
// # Disjunction
//
// OR nodes are walked as if their children were conjoined and always record
// ErrDisjunction. Because recorded errors are fatal, an OR predicate never
// reaches the Data API with AND semantics.
package filter
