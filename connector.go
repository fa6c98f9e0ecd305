package ga4

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hugr-lab/airport-ga4/analytics"
	"github.com/hugr-lab/airport-ga4/auth"
	"github.com/hugr-lab/airport-ga4/internal/recovery"
	"github.com/hugr-lab/airport-ga4/internal/reqid"
	"github.com/hugr-lab/airport-ga4/report"
)

// Connector runs analytics queries against one GA4 property.
//
// Each query is translated, validated and sent in a single synchronous call;
// the Connector keeps no per-query state and is safe for concurrent use.
type Connector struct {
	property string
	scope    report.Scope
	scopes   map[string]string
	fallback bool
	reporter analytics.Reporter
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics
}

// NewConnector validates config and creates a Connector.
// When config.Reporter is nil, a Data API client is created with config.ClientOptions.
func NewConnector(ctx context.Context, config Config) (*Connector, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := newLogger(config)

	reporter := config.Reporter
	if reporter == nil {
		client, err := analytics.NewClient(ctx, logger, config.ClientOptions...)
		if err != nil {
			return nil, err
		}
		reporter = client
	}

	scopes := make(map[string]string, len(config.Scopes))
	for identity, value := range config.Scopes {
		scopes[identity] = value
	}

	return &Connector{
		property: analytics.PropertyName(config.PropertyID),
		scope:    config.Scope,
		scopes:   scopes,
		fallback: config.DefaultScopeFallback,
		reporter: reporter,
		timeout:  config.UpstreamTimeout,
		logger:   logger,
		metrics:  newMetrics(config.Registerer),
	}, nil
}

// Scope returns the tenant scope for the caller in ctx.
//
// Unauthenticated callers and servers without per-identity scopes get the
// default scope. Otherwise the identity must have a scope value, unless the
// default fallback is enabled; an unmapped identity gets auth.ErrNoScope.
func (c *Connector) Scope(ctx context.Context) (report.Scope, error) {
	scope := c.scope
	identity := auth.IdentityFromContext(ctx)
	if identity == "" || len(c.scopes) == 0 {
		return scope, nil
	}
	value, ok := c.scopes[identity]
	switch {
	case ok:
		scope.Value = value
	case !c.fallback:
		return report.Scope{}, fmt.Errorf("%w: %q", auth.ErrNoScope, identity)
	}
	return scope, nil
}

// Plan translates q into a report request without calling the Data API.
func (c *Connector) Plan(ctx context.Context, q *report.Query) (*report.Plan, error) {
	scope, err := c.Scope(ctx)
	if err != nil {
		return nil, err
	}
	return report.Assemble(q, scope, c.property)
}

// Query translates q, runs the report and maps the response to rows.
//
// Every translation error is returned before the Data API is called, and the
// response is fully validated before any row is returned.
func (c *Connector) Query(ctx context.Context, q *report.Query) (*report.Result, error) {
	ctx, requestID := reqid.Ensure(ctx)
	logger := c.logger.With("request_id", requestID)

	plan, err := c.Plan(ctx, q)
	if err != nil {
		c.metrics.observe(err)
		logger.Debug("Query planning failed", "outcome", Outcome(err), "error", err)
		return nil, err
	}

	req := plan.Request
	logger.Debug("Query planned",
		"identity", auth.IdentityFromContext(ctx),
		"dimensions", req.Dimensions,
		"metrics", req.Metrics,
		"start_date", req.DateRange.Start,
		"end_date", req.DateRange.End,
		"limit", req.Limit,
		"dimension_filter", req.DimensionFilter.String(),
		"metric_filter", req.MetricFilter.String(),
	)

	resp, err := c.runReport(ctx, logger, req)
	if err != nil {
		c.metrics.observe(err)
		logger.Error("Report request failed", "error", err)
		return nil, err
	}

	rows, err := plan.MapRows(resp)
	if err != nil {
		c.metrics.observe(err)
		logger.Debug("Report response rejected", "outcome", Outcome(err), "error", err)
		return nil, err
	}

	c.metrics.observe(nil)
	c.metrics.rows.Add(float64(len(rows)))
	logger.Debug("Query completed", "rows", len(rows))

	return &report.Result{RequestID: requestID, Plan: plan, Rows: rows}, nil
}

func (c *Connector) runReport(ctx context.Context, logger *slog.Logger, req *report.Request) (*report.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		c.metrics.upstreamDuration.Observe(time.Since(start).Seconds())
	}()

	return recovery.RecoverToValue(logger, "RunReport", func() (*report.Response, error) {
		return c.reporter.RunReport(ctx, req)
	})
}
