// Package export appends finalized records to an external tabular
// store. The shipped implementation is an append-only CSV file; the
// Sink interface keeps the orchestrator independent of the concrete
// destination.
package export

import "context"

// Sink is an append-only row destination.
// Implementations must be safe for concurrent use.
type Sink interface {
	// AppendRow appends one fixed-order row of scalar values.
	AppendRow(ctx context.Context, row []string) error
}
