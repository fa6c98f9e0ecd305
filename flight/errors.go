package flight

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/airport-ga4/analytics"
	"github.com/hugr-lab/airport-ga4/auth"
	"github.com/hugr-lab/airport-ga4/filter"
	"github.com/hugr-lab/airport-ga4/report"
)

// invalidQueryErrors are the sentinels of queries that can never succeed.
var invalidQueryErrors = []error{
	ErrInvalidTicket,
	report.ErrInvalidQuery,
	report.ErrInvalidField,
	report.ErrInvalidLimit,
	report.ErrUnsupportedArgument,
	report.ErrUnsupportedDateFormat,
	report.ErrInvalidDateRange,
}

// StatusCode classifies an error from the query pipeline:
//   - identities without a tenant scope: PermissionDenied
//   - translation and query errors: InvalidArgument
//   - upstream API failures: Unavailable
//   - empty or malformed upstream responses: FailedPrecondition
//   - cancellation and deadlines: Canceled, DeadlineExceeded
//   - anything else, including recovered panics: Internal
//
// Errors that already carry a gRPC status keep their code.
func StatusCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}

	var (
		translation *filter.TranslationError
		upstream    *analytics.UpstreamError
		noData      *report.NoDataError
		shape       *report.ShapeError
	)
	switch {
	case errors.Is(err, auth.ErrNoScope):
		return codes.PermissionDenied
	case errors.As(err, &translation):
		return codes.InvalidArgument
	case errors.As(err, &upstream):
		return codes.Unavailable
	case errors.As(err, &noData), errors.As(err, &shape):
		return codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	for _, target := range invalidQueryErrors {
		if errors.Is(err, target) {
			return codes.InvalidArgument
		}
	}
	return codes.Internal
}

// StatusError converts a pipeline error to a gRPC status error.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	if s, ok := status.FromError(err); ok {
		return s.Err()
	}
	return status.Error(StatusCode(err), err.Error())
}
