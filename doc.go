// Package ga4 serves Google Analytics 4 reports as Apache Arrow Flight streams.
//
// A client describes what it wants with a provider-agnostic query: output
// fields mapped to prefixed columns ("dimension_country", "metric_sessions"),
// an optional predicate tree, a row limit and a date range argument. The
// Connector translates the query into a Data API runReport request, adds the
// mandatory tenant scope, sends it once and maps the response rows back to
// the output field names.
//
// # Pipeline
//
// Translation is strictly staged; each stage lives in its own package:
//
//   - predicate: decodes the JSON predicate tree into a closed set of node types
//   - column: classifies "dimension_" and "metric_" columns
//   - filter: extracts comparisons and builds Data API filter trees
//   - report: assembles the request and maps response rows
//   - analytics: talks to the Data API
//
// All translation errors are collected and returned before the Data API is
// called. Only AND groups of comparisons translate: OR and NOT are rejected.
//
// # Quick Start
//
//	grpcServer := grpc.NewServer(ga4.ServerOptions(config)...)
//	_, err := ga4.NewServer(ctx, grpcServer, ga4.Config{
//	    PropertyID: "1234",
//	    Scope:      report.Scope{Dimension: "hostName", Value: "example.com"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
//
// # Flight Protocol
//
// GetFlightInfo takes a CMD descriptor whose command is the JSON query:
//
//	{"fields": {"country": {"type": "column", "column": "dimension_country"},
//	            "sessions": {"type": "column", "column": "metric_sessions"}},
//	 "predicate": {"type": "binary_comparison_operator",
//	               "column": {"type": "column", "name": "metric_sessions"},
//	               "operator": "_gt", "value": {"type": "scalar", "value": 100}},
//	 "limit": 100,
//	 "arguments": {"dateRange": {"type": "literal",
//	               "value": {"start_date": "2024-01-01", "end_date": "01/31/2024"}}}}
//
// The answer carries the result schema (nullable utf8 columns sorted by
// output field name) and a ticket. DoGet with that ticket runs the report.
//
// # Authentication
//
// With Config.Auth set, every call needs an "authorization: Bearer <token>"
// header. Config.Scopes maps the authenticated identity to its own scope
// value, so one server can serve several tenants of the same property.
// Identities missing from Config.Scopes are refused with PermissionDenied
// unless Config.DefaultScopeFallback is set.
//
// # Errors
//
// Errors reach clients as gRPC status codes:
//
//   - PermissionDenied: the caller has no tenant scope
//   - InvalidArgument: the query cannot be translated
//   - Unavailable: the Data API call failed
//   - FailedPrecondition: the report was empty or malformed
//   - Internal: anything else, including recovered panics
package ga4
