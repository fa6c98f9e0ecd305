package report

import (
	"fmt"
	"slices"
	"sort"

	"github.com/hugr-lab/airport-ga4/column"
	"github.com/hugr-lab/airport-ga4/filter"
	"github.com/hugr-lab/airport-ga4/predicate"
)

// DefaultLimit is the row limit used when a query does not set one.
const DefaultLimit = 10000

// Scope restricts every report to one tenant, e.g. hostName = "example.com".
// The scope dimension is always requested and always filtered on.
type Scope struct {
	Dimension string
	Value     string
}

// Leaf returns the mandatory filter leaf for the scope.
func (s Scope) Leaf() filter.Leaf {
	return filter.ExactMatch(s.Dimension, s.Value)
}

// Column is a selected output field and the Data API name it reads.
type Column struct {
	// Field is the output field name in result rows.
	Field string
	// Source is the prefixed connector column, e.g. "dimension_country".
	Source string
	// Name is the Data API name, e.g. "country".
	Name string
	Kind column.Kind
	// Index is the position of Name in the request's dimension or metric list.
	// Fields selecting the same column share an index.
	Index int
}

// Request is the outbound report request.
type Request struct {
	Property        string
	DateRange       DateRange
	Dimensions      []string
	Metrics         []string
	Limit           int64
	DimensionFilter *filter.Tree
	MetricFilter    *filter.Tree
}

// Plan is an assembled query: the outbound request plus the column order used
// to map response values back to output fields.
type Plan struct {
	Request    *Request
	Dimensions []Column
	Metrics    []Column
}

// Columns returns every selected column sorted by output field name.
func (p *Plan) Columns() []Column {
	cols := make([]Column, 0, len(p.Dimensions)+len(p.Metrics))
	cols = append(cols, p.Dimensions...)
	cols = append(cols, p.Metrics...)
	sort.Slice(cols, func(i, j int) bool { return cols[i].Field < cols[j].Field })
	return cols
}

// Assemble translates a query into a Plan.
//
// Every translation problem is reported before a Plan exists: selected fields
// must be dimension or metric columns, the date range must parse, and the
// predicate must translate without errors. The scope dimension is appended to
// the requested dimensions and its leaf to the dimension filter.
func Assemble(q *Query, scope Scope, property string) (*Plan, error) {
	if q == nil {
		q = &Query{}
	}

	dims, metrics, err := selectColumns(q.Fields)
	if err != nil {
		return nil, err
	}

	dateRange, err := ResolveDateRange(q.Arguments)
	if err != nil {
		return nil, err
	}

	limit, err := resolveLimit(q.Limit)
	if err != nil {
		return nil, err
	}

	expr, err := predicate.Parse(q.Predicate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	built := filter.Build(filter.Extract(expr), scope.Leaf())
	if err := built.Err(); err != nil {
		return nil, err
	}

	req := &Request{
		Property:        property,
		DateRange:       dateRange,
		Dimensions:      requestNames(dims),
		Metrics:         requestNames(metrics),
		Limit:           limit,
		DimensionFilter: built.DimensionFilter,
		MetricFilter:    built.MetricFilter,
	}
	if !slices.Contains(req.Dimensions, scope.Dimension) {
		req.Dimensions = append(req.Dimensions, scope.Dimension)
	}

	return &Plan{Request: req, Dimensions: dims, Metrics: metrics}, nil
}

// selectColumns classifies selected fields in output field name order.
// A column selected by several fields is requested once.
func selectColumns(fields map[string]Field) (dims, metrics []Column, err error) {
	dimIndex := make(map[string]int)
	metricIndex := make(map[string]int)

	outputs := make([]string, 0, len(fields))
	for name := range fields {
		outputs = append(outputs, name)
	}
	sort.Strings(outputs)

	for _, out := range outputs {
		f := fields[out]
		if f.Type != FieldTypeColumn {
			return nil, nil, fmt.Errorf("%w: field %q has type %q, only %q is supported", ErrInvalidField, out, f.Type, FieldTypeColumn)
		}
		class, err := column.Classify(f.Column)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: field %q: %w", ErrInvalidField, out, err)
		}
		col := Column{Field: out, Source: f.Column, Name: class.Base, Kind: class.Kind}
		if class.Kind == column.Dimension {
			col.Index = indexOf(dimIndex, col.Name)
			dims = append(dims, col)
		} else {
			col.Index = indexOf(metricIndex, col.Name)
			metrics = append(metrics, col)
		}
	}
	return dims, metrics, nil
}

func resolveLimit(limit *int) (int64, error) {
	if limit == nil {
		return DefaultLimit, nil
	}
	if *limit <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidLimit, *limit)
	}
	return int64(*limit), nil
}

func indexOf(seen map[string]int, name string) int {
	if i, ok := seen[name]; ok {
		return i
	}
	seen[name] = len(seen)
	return seen[name]
}

// requestWidth is the number of values a response row carries for cols.
func requestWidth(cols []Column) int {
	width := 0
	for _, c := range cols {
		width = max(width, c.Index+1)
	}
	return width
}

// requestNames lists the distinct Data API names of cols in index order.
func requestNames(cols []Column) []string {
	out := make([]string, requestWidth(cols))
	for _, c := range cols {
		out[c.Index] = c.Name
	}
	return out
}
