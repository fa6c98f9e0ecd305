package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		column   string
		wantKind Kind
		wantBase string
		wantErr  bool
	}{
		{name: "dimension", column: "dimension_country", wantKind: Dimension, wantBase: "country"},
		{name: "metric", column: "metric_sessions", wantKind: Metric, wantBase: "sessions"},
		{name: "dimension with underscores", column: "dimension_page_path", wantKind: Dimension, wantBase: "page_path"},
		{name: "metric camel case", column: "metric_activeUsers", wantKind: Metric, wantBase: "activeUsers"},
		{name: "no prefix", column: "country", wantErr: true},
		{name: "empty", column: "", wantErr: true},
		{name: "bare dimension prefix", column: "dimension_", wantErr: true},
		{name: "bare metric prefix", column: "metric_", wantErr: true},
		{name: "prefix not at start", column: "x_dimension_country", wantErr: true},
		{name: "case sensitive", column: "Dimension_country", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.column)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnclassified)
				assert.Contains(t, err.Error(), tt.column)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantBase, got.Base)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for _, name := range []string{"dimension_city", "metric_totalUsers"} {
		first, err := Classify(name)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := Classify(name)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
		assert.Equal(t, name, Name(first.Kind, first.Base))
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "dimension", Dimension.String())
	assert.Equal(t, "metric", Metric.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
