// Package recovery converts panics in upstream and transport code into errors.
// A panicking Reporter or record writer must fail one query, not the server.
package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrPanic is wrapped by every error produced from a recovered panic.
var ErrPanic = errors.New("panic recovered")

// RecoverToError wraps a function call with panic recovery.
// A panic becomes a gRPC Internal status error, ready to return from a handler.
//
// Example:
//
//	err := recovery.RecoverToError(logger, "DoGet", func() error {
//	    return writer.Write(record)
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, operation, r)
			err = status.Errorf(codes.Internal, "%s panicked: %v", operation, r)
		}
	}()

	return fn()
}

// RecoverToValue wraps a function that returns a value and error.
// A panic yields the zero value and an error wrapping ErrPanic.
//
// Example:
//
//	resp, err := recovery.RecoverToValue(logger, "RunReport", func() (*report.Response, error) {
//	    return reporter.RunReport(ctx, req)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, operation, r)
			var zero T
			result = zero
			err = fmt.Errorf("%w: %s: %v", ErrPanic, operation, r)
		}
	}()

	return fn()
}

func logPanic(logger *slog.Logger, operation string, r any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("Panic recovered",
		"operation", operation,
		"panic", r,
		"stack", string(debug.Stack()),
	)
}
