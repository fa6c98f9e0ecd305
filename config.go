package ga4

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/option"

	"github.com/hugr-lab/airport-ga4/analytics"
	"github.com/hugr-lab/airport-ga4/auth"
	"github.com/hugr-lab/airport-ga4/report"
)

// Config contains configuration for the GA4 connector and its Flight server.
type Config struct {
	// PropertyID is the GA4 property queried, e.g. "1234" or "properties/1234".
	// REQUIRED.
	PropertyID string

	// Scope is the tenant restriction applied to every report,
	// e.g. {Dimension: "hostName", Value: "example.com"}.
	// REQUIRED: both fields MUST be set.
	Scope report.Scope

	// Scopes maps authenticated identities to scope values.
	// OPTIONAL: If empty, every caller uses Scope.Value. If set, an
	// authenticated identity without an entry is rejected with auth.ErrNoScope.
	Scopes map[string]string

	// DefaultScopeFallback lets identities missing from Scopes use Scope.Value
	// instead of being rejected.
	// OPTIONAL: Defaults to false.
	DefaultScopeFallback bool

	// Reporter executes report requests.
	// OPTIONAL: If nil, an analytics.Client is created from ClientOptions.
	Reporter analytics.Reporter

	// ClientOptions configure the Data API client (credentials, endpoint).
	// OPTIONAL: Ignored when Reporter is set.
	ClientOptions []option.ClientOption

	// UpstreamTimeout bounds each Data API call.
	// OPTIONAL: If 0, only the caller's context deadline applies.
	UpstreamTimeout time.Duration

	// Auth provides authentication logic.
	// OPTIONAL: If nil, no authentication (all requests allowed).
	Auth auth.Authenticator

	// Allocator for Arrow memory management.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level

	// Registerer receives the connector metrics.
	// OPTIONAL: If nil, metrics are collected but not registered.
	Registerer prometheus.Registerer

	// MaxMessageSize sets maximum gRPC message size in bytes.
	// OPTIONAL: If 0, uses gRPC default (4MB).
	MaxMessageSize int

	// Address is the server's public address (e.g., "localhost:50051").
	// OPTIONAL: If empty, FlightEndpoint locations will not include URI.
	Address string
}

// Standard errors returned by the ga4 package.
var (
	// ErrUnauthorized indicates authentication failed.
	// Return this from Authenticator.Authenticate() for invalid tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidConfig indicates Config validation failed.
	ErrInvalidConfig = errors.New("invalid config")
)

// validateConfig checks that required Config fields are valid.
func validateConfig(config Config) error {
	if config.PropertyID == "" {
		return fmt.Errorf("property ID is required")
	}
	if config.Scope.Dimension == "" {
		return fmt.Errorf("scope dimension is required")
	}
	if config.Scope.Value == "" {
		return fmt.Errorf("scope value is required")
	}
	for identity, value := range config.Scopes {
		if value == "" {
			return fmt.Errorf("scope value for identity %q is empty", identity)
		}
	}
	if config.UpstreamTimeout < 0 {
		return fmt.Errorf("upstream timeout must not be negative, got %s", config.UpstreamTimeout)
	}
	if config.MaxMessageSize < 0 {
		return fmt.Errorf("max message size must not be negative, got %d", config.MaxMessageSize)
	}
	return nil
}

func newLogger(config Config) *slog.Logger {
	if config.Logger != nil {
		return config.Logger
	}
	if config.LogLevel != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *config.LogLevel}))
	}
	return slog.Default()
}
