// Package analytics sends assembled report requests to the Google Analytics 4
// Data API and reduces the answers to report.Response values.
//
// The Reporter interface is the only thing the pipeline depends on; Client is
// the production implementation backed by google.golang.org/api/analyticsdata/v1beta.
// Requests are sent once. Retries and timeouts are the caller's concern.
package analytics
