// Package exec executes compiled scopes against a transport collaborator
// and interprets the raw rows that come back. It owns the two expansions
// native CQL cannot express (subquery-valued constraints and
// IN-restrictions on indexed columns), plus batched wide-row column
// pagination and row-existence semantics.
package exec

import (
	"context"

	"github.com/cqlkit/cqlkit/pkg/scope"
	"github.com/cqlkit/cqlkit/pkg/types"
)

// Transport is the external request/response collaborator. It owns the
// connection pool, timeouts, and retry policy; cqlkit treats it as a
// stateless function it may call concurrently. Errors come back unchanged
// apart from a diagnostic wrapper naming the failed statement.
type Transport interface {
	Send(ctx context.Context, stmt scope.Statement) ([]types.RawRow, error)
}

// StatsRecorder receives query-shape observations from the executor.
// Implementations must be safe for concurrent use. A nil recorder is
// ignored.
type StatsRecorder interface {
	// RecordPredicate records one constraint in an executed scope
	RecordPredicate(column, operator string)

	// RecordFanout records an IN fan-out of n statements
	RecordFanout(n int)

	// RecordSubquery records a subquery expansion round trip
	RecordSubquery()
}
