package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hugr-lab/airport-ga4/report"
)

const propertyPrefix = "properties/"

// Reporter executes report requests.
// Implementations MUST be goroutine-safe.
type Reporter interface {
	RunReport(ctx context.Context, req *report.Request) (*report.Response, error)
}

// Client is a Reporter backed by the Data API.
type Client struct {
	service *analyticsdata.Service
	logger  *slog.Logger
}

// NewClient creates a Data API client.
// Credentials and endpoints come from opts; with no options the application
// default credentials are used.
func NewClient(ctx context.Context, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("analytics: create data API service: %w", err)
	}
	return &Client{service: svc, logger: logger}, nil
}

// PropertyName returns the resource name for a property ID.
// Both "1234" and "properties/1234" yield "properties/1234".
func PropertyName(id string) string {
	if strings.HasPrefix(id, propertyPrefix) {
		return id
	}
	return propertyPrefix + id
}

// RunReport sends req and returns the positional response values.
// Any failure of the call itself is an *UpstreamError.
func (c *Client) RunReport(ctx context.Context, req *report.Request) (*report.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	property := PropertyName(req.Property)
	c.logger.Debug("Sending runReport",
		"property", property,
		"dimensions", req.Dimensions,
		"metrics", req.Metrics,
		"limit", req.Limit,
		"dimension_filter", req.DimensionFilter.String(),
		"metric_filter", req.MetricFilter.String(),
	)

	resp, err := c.service.Properties.RunReport(property, RunReportRequest(req)).Context(ctx).Do()
	if err != nil {
		upstream := &UpstreamError{Property: property, Err: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			upstream.StatusCode = apiErr.Code
		}
		c.logger.Error("runReport failed",
			"property", property,
			"status", upstream.StatusCode,
			"error", err,
		)
		return nil, upstream
	}

	out := ResponseFrom(resp)
	c.logger.Debug("runReport completed",
		"property", property,
		"rows", len(out.Rows),
		"row_count", out.RowCount,
	)
	return out, nil
}
