package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidQuery is returned for query documents that cannot be decoded.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidField is returned for selected fields that are not dimension or metric columns.
	ErrInvalidField = errors.New("invalid field")

	// ErrInvalidLimit is returned for non-positive row limits.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrUnsupportedArgument is returned for arguments that are not literals.
	ErrUnsupportedArgument = errors.New("unsupported argument")

	// ErrUnsupportedDateFormat is returned for dates outside the three accepted formats.
	ErrUnsupportedDateFormat = errors.New("unsupported date format")

	// ErrInvalidDateRange is returned when the start date is after the end date.
	ErrInvalidDateRange = errors.New("invalid date range")
)

// NoDataError is returned when the Data API answers with zero rows.
type NoDataError struct {
	Dimensions []string
	Metrics    []string
	Filters    []string
	Suggestion string
}

func (e *NoDataError) Error() string {
	var sb strings.Builder
	sb.WriteString("no data returned for dimensions [")
	sb.WriteString(strings.Join(e.Dimensions, ", "))
	sb.WriteString("] and metrics [")
	sb.WriteString(strings.Join(e.Metrics, ", "))
	sb.WriteString("]")
	if len(e.Filters) > 0 {
		sb.WriteString(" with filters ")
		sb.WriteString(strings.Join(e.Filters, ", "))
	}
	if e.Suggestion != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Suggestion)
	}
	return sb.String()
}

// RowIssue describes one response row with fewer values than requested.
type RowIssue struct {
	Row            int
	Dimensions     int
	Metrics        int
	WantDimensions int
	WantMetrics    int
}

func (i RowIssue) String() string {
	var parts []string
	if i.Dimensions < i.WantDimensions {
		parts = append(parts, fmt.Sprintf("%d dimension values, want %d", i.Dimensions, i.WantDimensions))
	}
	if i.Metrics < i.WantMetrics {
		parts = append(parts, fmt.Sprintf("%d metric values, want %d", i.Metrics, i.WantMetrics))
	}
	return fmt.Sprintf("row %d: %s", i.Row, strings.Join(parts, ", "))
}

// ShapeError is returned when response rows are shorter than the request.
// It lists every offending row.
type ShapeError struct {
	Issues []RowIssue
}

func (e *ShapeError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "malformed report response: " + strings.Join(parts, "; ")
}
