package ga4

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hugr-lab/airport-ga4/analytics"
	"github.com/hugr-lab/airport-ga4/auth"
	"github.com/hugr-lab/airport-ga4/filter"
	"github.com/hugr-lab/airport-ga4/report"
)

// Query outcomes, the values of the outcome label.
const (
	OutcomeOK               = "ok"
	OutcomeDenied           = "denied"
	OutcomeTranslationError = "translation_error"
	OutcomeUpstreamError    = "upstream_error"
	OutcomeNoData           = "no_data"
	OutcomeShapeError       = "shape_error"
	OutcomeInternalError    = "internal_error"
)

type metrics struct {
	queries          *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
	rows             prometheus.Counter
}

func newMetrics(r prometheus.Registerer) *metrics {
	return &metrics{
		queries: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "ga4_queries_total",
			Help: "Total number of queries by outcome.",
		}, []string{"outcome"}),
		upstreamDuration: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
			Name:    "ga4_upstream_request_duration_seconds",
			Help:    "Time taken by Data API runReport calls.",
			Buckets: prometheus.DefBuckets,
		}),
		rows: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "ga4_rows_returned_total",
			Help: "Total number of rows returned to clients.",
		}),
	}
}

func (m *metrics) observe(err error) {
	m.queries.WithLabelValues(Outcome(err)).Inc()
}

// Outcome classifies a query error for metrics and logs.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}

	var (
		translation *filter.TranslationError
		upstream    *analytics.UpstreamError
		noData      *report.NoDataError
		shape       *report.ShapeError
	)
	switch {
	case errors.Is(err, auth.ErrNoScope):
		return OutcomeDenied
	case errors.As(err, &translation),
		errors.Is(err, report.ErrInvalidQuery),
		errors.Is(err, report.ErrInvalidField),
		errors.Is(err, report.ErrInvalidLimit),
		errors.Is(err, report.ErrUnsupportedArgument),
		errors.Is(err, report.ErrUnsupportedDateFormat),
		errors.Is(err, report.ErrInvalidDateRange):
		return OutcomeTranslationError
	case errors.As(err, &upstream):
		return OutcomeUpstreamError
	case errors.As(err, &noData):
		return OutcomeNoData
	case errors.As(err, &shape):
		return OutcomeShapeError
	default:
		return OutcomeInternalError
	}
}
