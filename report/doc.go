// Package report assembles GA4 Data API report requests from inbound queries
// and maps report responses back into rows keyed by output field name.
//
// A query flows through Assemble, which classifies the selected columns,
// resolves the date range, translates the predicate and produces a Plan. The
// Plan carries the outbound Request and the ordered column lists needed to
// map the response:
//
//	plan, err := report.Assemble(q, scope, "properties/1234")
//	if err != nil {
//	    return err // nothing was sent
//	}
//	resp, err := client.RunReport(ctx, plan.Request)
//	...
//	rows, err := plan.MapRows(resp)
//
// Responses are validated as a whole before any row is returned.
package report
