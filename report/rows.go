package report

import "github.com/hugr-lab/airport-ga4/filter"

const noDataSuggestion = "check that the property has data for the date range and that the filters are not too narrow"

// Response is a report response reduced to its positional values.
// A nil value pointer stands for an absent value.
type Response struct {
	Rows     []ResponseRow
	RowCount int64
}

// ResponseRow holds the values of one report row, in request order.
type ResponseRow struct {
	DimensionValues []*string
	MetricValues    []*string
}

// Row is a result row keyed by output field name. Values are strings or nil.
type Row map[string]any

// RowSet is an ordered list of result rows.
type RowSet []Row

// MapRows validates a response and maps it onto output field names.
//
// A response without rows is a *NoDataError. Every row must carry at least
// as many dimension and metric values as requested; all short rows are
// reported together in a *ShapeError. Each column reads the value at its
// Index, and a missing value becomes nil.
func MapRows(resp *Response, dims, metrics []Column) (RowSet, error) {
	if resp == nil || len(resp.Rows) == 0 {
		return nil, &NoDataError{
			Dimensions: requestNames(dims),
			Metrics:    requestNames(metrics),
			Suggestion: noDataSuggestion,
		}
	}

	wantDims, wantMetrics := requestWidth(dims), requestWidth(metrics)
	var issues []RowIssue
	for i, row := range resp.Rows {
		if len(row.DimensionValues) < wantDims || len(row.MetricValues) < wantMetrics {
			issues = append(issues, RowIssue{
				Row:            i,
				Dimensions:     len(row.DimensionValues),
				Metrics:        len(row.MetricValues),
				WantDimensions: wantDims,
				WantMetrics:    wantMetrics,
			})
		}
	}
	if len(issues) > 0 {
		return nil, &ShapeError{Issues: issues}
	}

	rows := make(RowSet, 0, len(resp.Rows))
	for _, raw := range resp.Rows {
		row := make(Row, len(dims)+len(metrics))
		for _, col := range dims {
			row[col.Field] = value(raw.DimensionValues[col.Index])
		}
		for _, col := range metrics {
			row[col.Field] = value(raw.MetricValues[col.Index])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MapRows maps a response for this plan. No-data errors also list the filters.
func (p *Plan) MapRows(resp *Response) (RowSet, error) {
	rows, err := MapRows(resp, p.Dimensions, p.Metrics)
	if noData, ok := err.(*NoDataError); ok {
		noData.Filters = filterStrings(p.Request.DimensionFilter, p.Request.MetricFilter)
	}
	return rows, err
}

func value(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func filterStrings(trees ...*filter.Tree) []string {
	var out []string
	for _, t := range trees {
		if t != nil {
			out = append(out, t.String())
		}
	}
	return out
}

// Result is an executed query: its plan and the mapped rows.
type Result struct {
	RequestID string
	Plan      *Plan
	Rows      RowSet
}
