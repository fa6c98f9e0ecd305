package ga4

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/airport-ga4/analytics"
	"github.com/hugr-lab/airport-ga4/auth"
	"github.com/hugr-lab/airport-ga4/filter"
	"github.com/hugr-lab/airport-ga4/internal/recovery"
	"github.com/hugr-lab/airport-ga4/report"
)

type fakeReporter struct {
	mu       sync.Mutex
	requests []*report.Request
	deadline bool

	resp  *report.Response
	err   error
	panic any
}

func (f *fakeReporter) RunReport(ctx context.Context, req *report.Request) (*report.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	_, f.deadline = ctx.Deadline()
	f.mu.Unlock()

	if f.panic != nil {
		panic(f.panic)
	}
	return f.resp, f.err
}

func (f *fakeReporter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func str(s string) *string { return &s }

func twoRows() *report.Response {
	return &report.Response{RowCount: 2, Rows: []report.ResponseRow{
		{DimensionValues: []*string{str("US"), str("example.com")}, MetricValues: []*string{str("12")}},
		{DimensionValues: []*string{str("FR"), str("example.com")}, MetricValues: []*string{nil}},
	}}
}

func testConfig(reporter analytics.Reporter) Config {
	return Config{
		PropertyID: "1234",
		Scope:      report.Scope{Dimension: "hostName", Value: "example.com"},
		Scopes:     map[string]string{"tenant-b": "b.example.com"},
		Reporter:   reporter,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registerer: prometheus.NewRegistry(),
	}
}

func newTestConnector(t *testing.T, reporter analytics.Reporter) *Connector {
	t.Helper()
	c, err := NewConnector(context.Background(), testConfig(reporter))
	require.NoError(t, err)
	return c
}

func mustQuery(t *testing.T, doc string) *report.Query {
	t.Helper()
	q, err := report.ParseQuery([]byte(doc))
	require.NoError(t, err)
	return q
}

const countrySessions = `{
	"fields": {
		"country": {"type": "column", "column": "dimension_country"},
		"sessions": {"type": "column", "column": "metric_sessions"}
	}
}`

func TestNewConnectorValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "missing property", modify: func(c *Config) { c.PropertyID = "" }},
		{name: "missing scope dimension", modify: func(c *Config) { c.Scope.Dimension = "" }},
		{name: "missing scope value", modify: func(c *Config) { c.Scope.Value = "" }},
		{name: "empty identity scope", modify: func(c *Config) { c.Scopes = map[string]string{"x": ""} }},
		{name: "negative timeout", modify: func(c *Config) { c.UpstreamTimeout = -time.Second }},
		{name: "negative message size", modify: func(c *Config) { c.MaxMessageSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(&fakeReporter{})
			tt.modify(&cfg)
			_, err := NewConnector(context.Background(), cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConnectorQuery(t *testing.T) {
	reporter := &fakeReporter{resp: twoRows()}
	c := newTestConnector(t, reporter)

	res, err := c.Query(context.Background(), mustQuery(t, countrySessions))
	require.NoError(t, err)
	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, report.RowSet{
		{"country": "US", "sessions": "12"},
		{"country": "FR", "sessions": nil},
	}, res.Rows)

	require.Equal(t, 1, reporter.calls())
	req := reporter.requests[0]
	assert.Equal(t, "properties/1234", req.Property)
	assert.Equal(t, []string{"country", "hostName"}, req.Dimensions)
	assert.Equal(t, []string{"sessions"}, req.Metrics)
	assert.Equal(t, filter.LeafTree(filter.ExactMatch("hostName", "example.com")), req.DimensionFilter)
	assert.False(t, reporter.deadline)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.queries.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.metrics.rows))
}

func TestConnectorTranslationErrorSkipsUpstream(t *testing.T) {
	reporter := &fakeReporter{resp: twoRows()}
	c := newTestConnector(t, reporter)

	_, err := c.Query(context.Background(), mustQuery(t, `{
		"fields": {"country": {"type": "column", "column": "dimension_country"}},
		"predicate": {
			"type": "binary_comparison_operator",
			"column": {"type": "column", "name": "dimension_country"},
			"operator": "_gt",
			"value": {"type": "scalar", "value": "US"}
		}
	}`))

	var terr *filter.TranslationError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, reporter.calls())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.queries.WithLabelValues(OutcomeTranslationError)))
}

func TestConnectorScopeByIdentity(t *testing.T) {
	reporter := &fakeReporter{resp: twoRows()}
	c := newTestConnector(t, reporter)

	ctx := auth.WithIdentity(context.Background(), "tenant-b")
	scope, err := c.Scope(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Scope{Dimension: "hostName", Value: "b.example.com"}, scope)

	_, err = c.Query(ctx, mustQuery(t, countrySessions))
	require.NoError(t, err)
	assert.Equal(t,
		filter.LeafTree(filter.ExactMatch("hostName", "b.example.com")),
		reporter.requests[0].DimensionFilter,
	)

	scope, err = c.Scope(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "example.com", scope.Value)
}

func TestConnectorRejectsUnmappedIdentity(t *testing.T) {
	reporter := &fakeReporter{resp: twoRows()}
	c := newTestConnector(t, reporter)
	unknown := auth.WithIdentity(context.Background(), "tenant-z")

	_, err := c.Scope(unknown)
	assert.ErrorIs(t, err, auth.ErrNoScope)

	_, err = c.Query(unknown, mustQuery(t, countrySessions))
	require.ErrorIs(t, err, auth.ErrNoScope)
	assert.Contains(t, err.Error(), "tenant-z")
	assert.Zero(t, reporter.calls())
	assert.Equal(t, OutcomeDenied, Outcome(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.queries.WithLabelValues(OutcomeDenied)))
}

func TestConnectorScopeFallback(t *testing.T) {
	config := testConfig(&fakeReporter{resp: twoRows()})
	config.DefaultScopeFallback = true
	c, err := NewConnector(context.Background(), config)
	require.NoError(t, err)

	scope, err := c.Scope(auth.WithIdentity(context.Background(), "tenant-z"))
	require.NoError(t, err)
	assert.Equal(t, "example.com", scope.Value)

	config.Scopes = nil
	config.DefaultScopeFallback = false
	config.Registerer = prometheus.NewRegistry()
	c, err = NewConnector(context.Background(), config)
	require.NoError(t, err)

	scope, err = c.Scope(auth.WithIdentity(context.Background(), "tenant-z"))
	require.NoError(t, err)
	assert.Equal(t, "example.com", scope.Value)
}

func TestConnectorOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		reporter *fakeReporter
		outcome  string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "upstream failure",
			reporter: &fakeReporter{err: &analytics.UpstreamError{Property: "properties/1234", StatusCode: 503, Err: errors.New("unavailable")}},
			outcome:  OutcomeUpstreamError,
			check: func(t *testing.T, err error) {
				var upstream *analytics.UpstreamError
				assert.ErrorAs(t, err, &upstream)
			},
		},
		{
			name:     "empty report",
			reporter: &fakeReporter{resp: &report.Response{}},
			outcome:  OutcomeNoData,
			check: func(t *testing.T, err error) {
				var noData *report.NoDataError
				require.ErrorAs(t, err, &noData)
				assert.Equal(t, []string{`hostName = "example.com"`}, noData.Filters)
			},
		},
		{
			name:     "panicking reporter",
			reporter: &fakeReporter{panic: "boom"},
			outcome:  OutcomeInternalError,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, recovery.ErrPanic)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConnector(t, tt.reporter)
			_, err := c.Query(context.Background(), mustQuery(t, `{"fields": {
				"country": {"type": "column", "column": "dimension_country"},
				"sessions": {"type": "column", "column": "metric_sessions"}
			}}`))
			assert.Equal(t, tt.outcome, Outcome(err))
			if tt.check != nil {
				tt.check(t, err)
			}
			assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.queries.WithLabelValues(tt.outcome)))
		})
	}
}

func TestConnectorShapeError(t *testing.T) {
	reporter := &fakeReporter{resp: &report.Response{Rows: []report.ResponseRow{
		{DimensionValues: []*string{str("US"), str("Boston")}, MetricValues: []*string{str("1")}},
		{DimensionValues: []*string{str("US")}, MetricValues: []*string{str("1")}},
	}}}
	c := newTestConnector(t, reporter)

	_, err := c.Query(context.Background(), mustQuery(t, `{"fields": {
		"city": {"type": "column", "column": "dimension_city"},
		"country": {"type": "column", "column": "dimension_country"},
		"sessions": {"type": "column", "column": "metric_sessions"}
	}}`))

	var shape *report.ShapeError
	require.ErrorAs(t, err, &shape)
	require.Len(t, shape.Issues, 1)
	assert.Equal(t, 1, shape.Issues[0].Row)
	assert.Equal(t, OutcomeShapeError, Outcome(err))
}

func TestConnectorUpstreamTimeout(t *testing.T) {
	reporter := &fakeReporter{resp: twoRows()}
	cfg := testConfig(reporter)
	cfg.UpstreamTimeout = time.Minute
	c, err := NewConnector(context.Background(), cfg)
	require.NoError(t, err)

	_, err = c.Query(context.Background(), mustQuery(t, countrySessions))
	require.NoError(t, err)
	assert.True(t, reporter.deadline)
}
