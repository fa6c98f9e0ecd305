package filter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/airport-ga4/column"
	"github.com/hugr-lab/airport-ga4/predicate"
)

func TestExtractNil(t *testing.T) {
	res := Extract(nil)
	assert.Empty(t, res.Dimensions)
	assert.Empty(t, res.Metrics)
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())
}

func TestExtractSingleComparison(t *testing.T) {
	res := Extract(predicate.Compare("metric_sessions", "_gt", json.Number("100")))
	require.NoError(t, res.Err())
	require.Len(t, res.Metrics, 1)
	assert.Empty(t, res.Dimensions)

	got := res.Metrics[0]
	assert.Equal(t, "metric_sessions", got.Column)
	assert.Equal(t, "sessions", got.Name)
	assert.Equal(t, column.Metric, got.Kind)
	assert.Equal(t, OperatorGreaterThan, got.Operator)
	assert.Equal(t, json.Number("100"), got.Value)
}

func TestExtractAndFlattens(t *testing.T) {
	expr := predicate.And(
		predicate.Compare("dimension_country", "_eq", "US"),
		predicate.And(
			predicate.Compare("dimension_city", "_like", "^San"),
			predicate.Compare("metric_sessions", "_lt", 10),
		),
	)

	res := Extract(expr)
	require.NoError(t, res.Err())
	require.Len(t, res.Dimensions, 2)
	require.Len(t, res.Metrics, 1)
	assert.Equal(t, "country", res.Dimensions[0].Name)
	assert.Equal(t, "city", res.Dimensions[1].Name)
	assert.Equal(t, "sessions", res.Metrics[0].Name)
}

func TestExtractOrRecordsDisjunction(t *testing.T) {
	expr := predicate.Or(
		predicate.Compare("dimension_country", "_eq", "US"),
		predicate.Compare("dimension_country", "_eq", "CA"),
	)

	res := Extract(expr)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrDisjunction)
	// Children are still extracted as if conjoined.
	assert.Len(t, res.Dimensions, 2)

	err := res.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDisjunction)
}

func TestExtractUnsupportedShapes(t *testing.T) {
	tests := []struct {
		name string
		expr predicate.Expression
	}{
		{name: "not", expr: predicate.Not(predicate.Compare("dimension_country", "_eq", "US"))},
		{name: "unary", expr: &predicate.UnaryComparisonExpression{
			Column:   predicate.ComparisonTarget{Type: predicate.TargetColumn, Name: "dimension_country"},
			Operator: "is_null",
		}},
		{name: "exists", expr: &predicate.ExistsExpression{}},
		{name: "unknown", expr: &predicate.UnknownExpression{Tag: "xor"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.expr)
			require.Len(t, res.Errors, 1)
			assert.ErrorIs(t, res.Errors[0], ErrUnsupportedExpression)
			assert.Empty(t, res.Dimensions)
			assert.Empty(t, res.Metrics)
		})
	}
}

func TestExtractComparisonErrors(t *testing.T) {
	tests := []struct {
		name    string
		expr    *predicate.BinaryComparisonExpression
		wantErr error
	}{
		{
			name:    "unsupported operator",
			expr:    predicate.Compare("metric_sessions", "_gte", 1),
			wantErr: ErrUnsupportedOperator,
		},
		{
			name:    "unclassified column",
			expr:    predicate.Compare("country", "_eq", "US"),
			wantErr: column.ErrUnclassified,
		},
		{
			name: "variable value",
			expr: &predicate.BinaryComparisonExpression{
				Column:   predicate.ComparisonTarget{Type: predicate.TargetColumn, Name: "dimension_country"},
				Operator: "_eq",
				Value:    &predicate.VariableValue{Name: "c"},
			},
			wantErr: ErrUnsupportedValue,
		},
		{
			name: "column value",
			expr: &predicate.BinaryComparisonExpression{
				Column:   predicate.ComparisonTarget{Type: predicate.TargetColumn, Name: "dimension_country"},
				Operator: "_eq",
				Value:    &predicate.ColumnValue{Column: predicate.ComparisonTarget{Name: "dimension_city"}},
			},
			wantErr: ErrUnsupportedValue,
		},
		{
			name:    "gt on dimension",
			expr:    predicate.Compare("dimension_country", "_gt", "US"),
			wantErr: ErrOperatorMismatch,
		},
		{
			name:    "like on metric",
			expr:    predicate.Compare("metric_sessions", "_like", "1.*"),
			wantErr: ErrOperatorMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.expr)
			require.Len(t, res.Errors, 1)
			assert.ErrorIs(t, res.Errors[0], tt.wantErr)
			assert.Empty(t, res.Dimensions)
			assert.Empty(t, res.Metrics)
		})
	}
}

func TestExtractKeepsGoingAfterErrors(t *testing.T) {
	expr := predicate.And(
		predicate.Not(predicate.Compare("dimension_country", "_eq", "US")),
		predicate.Compare("dimension_city", "_eq", "Paris"),
		predicate.Compare("dimension_country", "_lt", "US"),
		predicate.Compare("metric_sessions", "_gt", 5),
	)

	res := Extract(expr)
	require.Len(t, res.Errors, 2)
	assert.ErrorIs(t, res.Errors[0], ErrUnsupportedExpression)
	assert.ErrorIs(t, res.Errors[1], ErrOperatorMismatch)
	assert.Len(t, res.Dimensions, 1)
	assert.Len(t, res.Metrics, 1)

	var terr *TranslationError
	require.True(t, errors.As(res.Err(), &terr))
	assert.Len(t, terr.Errors, 2)
	assert.Contains(t, terr.Error(), "2 errors")
}

func TestOperatorMatrix(t *testing.T) {
	tests := []struct {
		op        Operator
		dimension bool
		metric    bool
	}{
		{op: OperatorEqual, dimension: true, metric: true},
		{op: OperatorGreaterThan, dimension: false, metric: true},
		{op: OperatorLessThan, dimension: false, metric: true},
		{op: OperatorLike, dimension: true, metric: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.True(t, tt.op.IsSupported())
			assert.Equal(t, tt.dimension, tt.op.AllowedFor(column.Dimension))
			assert.Equal(t, tt.metric, tt.op.AllowedFor(column.Metric))
		})
	}

	assert.False(t, Operator("_in").IsSupported())
	assert.False(t, OperatorEqual.AllowedFor(column.Kind(0)))
	assert.Len(t, SupportedOperators(), 4)
}
