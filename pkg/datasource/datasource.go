// Package datasource defines the data-source-provider contract used as
// an optional enrichment of task extraction: its output is assembled
// into the task-extraction prompt alongside the default examples, any
// application-supplied extra examples, and the chat history.
package datasource

import "context"

// Provider fetches supplementary context (a runbook, a doc page, a
// procedure) to enrich task extraction. A Registration of registry.Kind
// KindDataSource resolves to one of these via its Factory.
type Provider interface {
	// Fetch returns the content to fold into the task-extraction prompt.
	// query is the raw user query for the current turn, in case a
	// provider wants to narrow what it fetches (e.g. picking a specific
	// runbook page); implementations that always return static content
	// may ignore it.
	Fetch(ctx context.Context, query string) (string, error)
}
