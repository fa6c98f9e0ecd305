package analytics

import (
	"math"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"

	"github.com/hugr-lab/airport-ga4/filter"
	"github.com/hugr-lab/airport-ga4/report"
)

// RunReportRequest converts an assembled request to the Data API body.
// The property travels in the URL path and is left out of the body.
func RunReportRequest(req *report.Request) *analyticsdata.RunReportRequest {
	out := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{
			StartDate: req.DateRange.Start,
			EndDate:   req.DateRange.End,
		}},
		DimensionFilter: FilterExpression(req.DimensionFilter),
		MetricFilter:    FilterExpression(req.MetricFilter),
		Limit:           req.Limit,
	}
	for _, name := range req.Dimensions {
		out.Dimensions = append(out.Dimensions, &analyticsdata.Dimension{Name: name})
	}
	for _, name := range req.Metrics {
		out.Metrics = append(out.Metrics, &analyticsdata.Metric{Name: name})
	}
	return out
}

// FilterExpression converts a filter tree. A nil tree yields nil.
func FilterExpression(t *filter.Tree) *analyticsdata.FilterExpression {
	if t == nil {
		return nil
	}
	if t.Leaf != nil {
		return &analyticsdata.FilterExpression{Filter: leafFilter(t.Leaf)}
	}

	group := &analyticsdata.FilterExpressionList{
		Expressions: make([]*analyticsdata.FilterExpression, 0, len(t.And)),
	}
	for _, child := range t.And {
		if expr := FilterExpression(child); expr != nil {
			group.Expressions = append(group.Expressions, expr)
		}
	}
	return &analyticsdata.FilterExpression{AndGroup: group}
}

func leafFilter(l *filter.Leaf) *analyticsdata.Filter {
	f := &analyticsdata.Filter{FieldName: l.FieldName}
	switch {
	case l.StringFilter != nil:
		f.StringFilter = &analyticsdata.StringFilter{
			MatchType:     string(l.StringFilter.MatchType),
			Value:         l.StringFilter.Value,
			CaseSensitive: l.StringFilter.CaseSensitive,
		}
	case l.NumericFilter != nil:
		f.NumericFilter = &analyticsdata.NumericFilter{
			Operation: string(l.NumericFilter.Operation),
			Value:     numericValue(l.NumericFilter.Value),
		}
	}
	return f
}

// numericValue sends integers and whole floats below 2^53 as int64 values
// and everything else as doubles. Zero must be force-sent or the JSON encoder drops it.
func numericValue(n filter.Number) *analyticsdata.NumericValue {
	if n.IsInt {
		return intValue(n.Int)
	}
	if n.Float == math.Trunc(n.Float) && math.Abs(n.Float) < 1<<53 {
		return intValue(int64(n.Float))
	}
	return &analyticsdata.NumericValue{
		DoubleValue:     n.Float,
		ForceSendFields: []string{"DoubleValue"},
	}
}

func intValue(i int64) *analyticsdata.NumericValue {
	return &analyticsdata.NumericValue{
		Int64Value:      i,
		ForceSendFields: []string{"Int64Value"},
	}
}

// ResponseFrom reduces a Data API response to positional values.
// Nil value entries stay nil.
func ResponseFrom(resp *analyticsdata.RunReportResponse) *report.Response {
	if resp == nil {
		return &report.Response{}
	}

	out := &report.Response{
		Rows:     make([]report.ResponseRow, 0, len(resp.Rows)),
		RowCount: resp.RowCount,
	}
	for _, row := range resp.Rows {
		if row == nil {
			out.Rows = append(out.Rows, report.ResponseRow{})
			continue
		}
		r := report.ResponseRow{
			DimensionValues: make([]*string, len(row.DimensionValues)),
			MetricValues:    make([]*string, len(row.MetricValues)),
		}
		for i, v := range row.DimensionValues {
			if v != nil {
				value := v.Value
				r.DimensionValues[i] = &value
			}
		}
		for i, v := range row.MetricValues {
			if v != nil {
				value := v.Value
				r.MetricValues[i] = &value
			}
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}
