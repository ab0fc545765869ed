package mutate

import (
	"context"

	"github.com/cqlkit/cqlkit/pkg/cqlerr"
	"github.com/cqlkit/cqlkit/pkg/exec"
)

// Apply sends the plan's statements through the transport, SET before
// CLEAR. An empty plan issues zero calls and returns nil. The first
// failure stops the plan; a split update can therefore land its SET leg
// without its CLEAR leg, which matches the storage model (each statement
// is independently durable, there are no transactions).
func Apply(ctx context.Context, transport exec.Transport, plan MutationPlan) error {
	if plan.IsEmpty() {
		return nil
	}
	if plan.Key == nil {
		return cqlerr.NewMutationError(cqlerr.CodeMissingKey, "mutation plan has no row key")
	}
	for _, stmt := range plan.Compile() {
		if _, err := transport.Send(ctx, stmt); err != nil {
			return cqlerr.NewTransportError("mutation failed", err).WithDetails(map[string]interface{}{
				"statement": stmt.Text,
			})
		}
	}
	return nil
}
