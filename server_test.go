package ga4_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	ga4 "github.com/hugr-lab/airport-ga4"
	"github.com/hugr-lab/airport-ga4/analytics"
	"github.com/hugr-lab/airport-ga4/report"
)

const bufSize = 1024 * 1024

type reporterFunc func(ctx context.Context, req *report.Request) (*report.Response, error)

func (f reporterFunc) RunReport(ctx context.Context, req *report.Request) (*report.Response, error) {
	return f(ctx, req)
}

func str(s string) *string { return &s }

// echoScope answers with one row: the scope value for the scope dimension,
// "US" for any other dimension and "42" for every metric.
func echoScope(ctx context.Context, req *report.Request) (*report.Response, error) {
	scope := req.DimensionFilter.Leaves()[0]
	var row report.ResponseRow
	for _, name := range req.Dimensions {
		if name == scope.FieldName {
			row.DimensionValues = append(row.DimensionValues, str(scope.StringFilter.Value))
		} else {
			row.DimensionValues = append(row.DimensionValues, str("US"))
		}
	}
	for range req.Metrics {
		row.MetricValues = append(row.MetricValues, str("42"))
	}
	return &report.Response{Rows: []report.ResponseRow{row}}, nil
}

func startServer(t *testing.T, config ga4.Config) flight.Client {
	t.Helper()

	if config.PropertyID == "" {
		config.PropertyID = "1234"
	}
	if config.Scope.Dimension == "" {
		config.Scope = report.Scope{Dimension: "hostName", Value: "example.com"}
	}
	config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	lis := bufconn.Listen(bufSize)
	grpcServer := grpc.NewServer(ga4.ServerOptions(config)...)
	_, err := ga4.NewServer(context.Background(), grpcServer, config)
	require.NoError(t, err)

	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return flight.NewClientFromConn(conn, nil)
}

func cmd(query string) *flight.FlightDescriptor {
	return &flight.FlightDescriptor{Type: flight.DescriptorCMD, Cmd: []byte(query)}
}

const countrySessions = `{
	"fields": {
		"sessions": {"type": "column", "column": "metric_sessions"},
		"country": {"type": "column", "column": "dimension_country"}
	},
	"predicate": {
		"type": "binary_comparison_operator",
		"column": {"type": "column", "name": "metric_sessions"},
		"operator": "_gt",
		"value": {"type": "scalar", "value": 10}
	}
}`

// fetch runs GetFlightInfo and DoGet and returns the rows as string pointers by field.
func fetch(ctx context.Context, t *testing.T, client flight.Client, query string) []map[string]*string {
	t.Helper()

	info, err := client.GetFlightInfo(ctx, cmd(query))
	require.NoError(t, err)
	require.Len(t, info.Endpoint, 1)

	stream, err := client.DoGet(ctx, info.Endpoint[0].Ticket)
	require.NoError(t, err)

	reader, err := flight.NewRecordReader(stream)
	require.NoError(t, err)
	defer reader.Release()

	var rows []map[string]*string
	for reader.Next() {
		rec := reader.RecordBatch()
		for i := 0; i < int(rec.NumRows()); i++ {
			row := make(map[string]*string)
			for j, field := range rec.Schema().Fields() {
				col := rec.Column(j).(*array.String)
				if col.IsNull(i) {
					row[field.Name] = nil
				} else {
					row[field.Name] = str(col.Value(i))
				}
			}
			rows = append(rows, row)
		}
	}
	require.NoError(t, reader.Err())
	return rows
}

func TestGetFlightInfoSchema(t *testing.T) {
	client := startServer(t, ga4.Config{Reporter: reporterFunc(echoScope)})

	info, err := client.GetFlightInfo(context.Background(), cmd(countrySessions))
	require.NoError(t, err)

	schema, err := flight.DeserializeSchema(info.Schema, memory.DefaultAllocator)
	require.NoError(t, err)
	require.Equal(t, 2, schema.NumFields())
	assert.Equal(t, "country", schema.Field(0).Name)
	assert.Equal(t, "sessions", schema.Field(1).Name)
	assert.True(t, schema.Field(1).Nullable)
	assert.Equal(t, int64(-1), info.TotalRecords)
}

func TestDoGetStreamsRows(t *testing.T) {
	var got *report.Request
	client := startServer(t, ga4.Config{
		Reporter: reporterFunc(func(ctx context.Context, req *report.Request) (*report.Response, error) {
			got = req
			return echoScope(ctx, req)
		}),
	})

	rows := fetch(context.Background(), t, client, countrySessions)
	require.Len(t, rows, 1)
	assert.Equal(t, "US", *rows[0]["country"])
	assert.Equal(t, "42", *rows[0]["sessions"])

	require.NotNil(t, got)
	require.NotNil(t, got.MetricFilter)
	assert.Equal(t, "sessions > 10", got.MetricFilter.String())
}

func TestScopeFollowsIdentity(t *testing.T) {
	client := startServer(t, ga4.Config{
		Reporter: reporterFunc(echoScope),
		Auth:     ga4.StaticTokens(map[string]string{"secret-a": "tenant-a", "secret-b": "tenant-b"}),
		Scopes:   map[string]string{"tenant-b": "b.example.com"},
	})

	query := `{"fields": {"host": {"type": "column", "column": "dimension_hostName"}}}`
	echo := func(t *testing.T, token string) string {
		ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
		rows := fetch(ctx, t, client, query)
		require.Len(t, rows, 1)
		return *rows[0]["host"]
	}

	assert.Equal(t, "b.example.com", echo(t, "secret-b"))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer secret-a")
	_, err := client.GetFlightInfo(ctx, cmd(query))
	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestScopeFallbackForUnmappedIdentity(t *testing.T) {
	client := startServer(t, ga4.Config{
		Reporter:             reporterFunc(echoScope),
		Auth:                 ga4.StaticTokens(map[string]string{"secret-a": "tenant-a"}),
		Scopes:               map[string]string{"tenant-b": "b.example.com"},
		DefaultScopeFallback: true,
	})

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer secret-a")
	rows := fetch(ctx, t, client, `{"fields": {"host": {"type": "column", "column": "dimension_hostName"}}}`)
	require.Len(t, rows, 1)
	assert.Equal(t, "example.com", *rows[0]["host"])
}

func TestErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		reporter reporterFunc
		want     codes.Code
		atPlan   bool
	}{
		{
			name:   "or predicate",
			query:  `{"fields": {}, "predicate": {"type": "or", "expressions": []}}`,
			want:   codes.InvalidArgument,
			atPlan: true,
		},
		{
			name:   "bad date",
			query:  `{"fields": {}, "arguments": {"dateRange": {"type": "literal", "value": {"start_date": "01-31-2024"}}}}`,
			want:   codes.InvalidArgument,
			atPlan: true,
		},
		{
			name:   "malformed json",
			query:  `{"fields":`,
			want:   codes.InvalidArgument,
			atPlan: true,
		},
		{
			name:  "upstream failure",
			query: countrySessions,
			reporter: func(ctx context.Context, req *report.Request) (*report.Response, error) {
				return nil, &analytics.UpstreamError{Property: req.Property, StatusCode: 500, Err: errors.New("backend error")}
			},
			want: codes.Unavailable,
		},
		{
			name:  "empty report",
			query: countrySessions,
			reporter: func(ctx context.Context, req *report.Request) (*report.Response, error) {
				return &report.Response{}, nil
			},
			want: codes.FailedPrecondition,
		},
		{
			name:  "panicking reporter",
			query: countrySessions,
			reporter: func(ctx context.Context, req *report.Request) (*report.Response, error) {
				panic("nil pointer")
			},
			want: codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := tt.reporter
			if reporter == nil {
				reporter = func(ctx context.Context, req *report.Request) (*report.Response, error) {
					t.Error("reporter must not be called")
					return nil, nil
				}
			}
			client := startServer(t, ga4.Config{Reporter: reporter})
			ctx := context.Background()

			info, err := client.GetFlightInfo(ctx, cmd(tt.query))
			if tt.atPlan {
				require.Error(t, err)
				assert.Equal(t, tt.want, status.Code(err))
				return
			}
			require.NoError(t, err)

			stream, err := client.DoGet(ctx, info.Endpoint[0].Ticket)
			require.NoError(t, err)
			_, err = flight.NewRecordReader(stream)
			require.Error(t, err)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestAuthenticationRequired(t *testing.T) {
	client := startServer(t, ga4.Config{
		Reporter: reporterFunc(echoScope),
		Auth:     ga4.StaticTokens(map[string]string{"secret": "tenant"}),
	})

	_, err := client.GetFlightInfo(context.Background(), cmd(countrySessions))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer wrong")
	_, err = client.GetFlightInfo(ctx, cmd(countrySessions))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestNewServerInvalidConfig(t *testing.T) {
	_, err := ga4.NewServer(context.Background(), grpc.NewServer(), ga4.Config{})
	assert.ErrorIs(t, err, ga4.ErrInvalidConfig)
}
