// Package column classifies connector column names into GA4 dimensions and metrics.
//
// Columns are exposed with a kind prefix:
//
//	dimension_country  -> dimension "country"
//	metric_sessions    -> metric "sessions"
//
// The prefix is the only signal used for classification. There is no schema
// lookup at translation time.
package column

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the GA4 field kind a column maps to.
type Kind int

const (
	// Dimension is a categorical attribute returned as a string.
	Dimension Kind = iota + 1
	// Metric is a numeric measurement returned as a numeric string.
	Metric
)

// Column name prefixes.
const (
	DimensionPrefix = "dimension_"
	MetricPrefix    = "metric_"
)

// ErrUnclassified is returned for names that are neither dimensions nor metrics.
var ErrUnclassified = errors.New("column is neither a dimension nor a metric")

func (k Kind) String() string {
	switch k {
	case Dimension:
		return "dimension"
	case Metric:
		return "metric"
	default:
		return "unknown"
	}
}

// Classification is the result of classifying a column name.
type Classification struct {
	Kind Kind
	// Base is the name without its kind prefix, as used by the Data API.
	Base string
}

// Classify maps a column name to its kind and base name.
func Classify(name string) (Classification, error) {
	if base, ok := strings.CutPrefix(name, DimensionPrefix); ok && base != "" {
		return Classification{Kind: Dimension, Base: base}, nil
	}
	if base, ok := strings.CutPrefix(name, MetricPrefix); ok && base != "" {
		return Classification{Kind: Metric, Base: base}, nil
	}
	return Classification{}, fmt.Errorf("%w: %q", ErrUnclassified, name)
}

// Name returns the prefixed column name for a base name of the given kind.
func Name(kind Kind, base string) string {
	switch kind {
	case Dimension:
		return DimensionPrefix + base
	case Metric:
		return MetricPrefix + base
	default:
		return base
	}
}
