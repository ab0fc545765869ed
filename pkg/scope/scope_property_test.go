package scope

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_ChainingNeverMutatesReceiver validates that for any scope,
// chaining produces a distinct scope and leaves the receiver's compiled
// statement unchanged.
func TestProperty_ChainingNeverMutatesReceiver(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("adding a filter leaves the base statement unchanged", prop.ForAll(
		func(key, filterCol, filterVal string) bool {
			base := New("Posts", "KEY").Where(key)
			before, err := base.Compile()
			if err != nil {
				return false
			}

			derived := base.Filtered(filterCol, filterVal)
			if derived.Err() != nil {
				return false
			}

			after, err := base.Compile()
			if err != nil {
				return false
			}
			return before.Text == after.Text && len(base.Constraints()) == 1 && len(derived.Constraints()) == 2
		},
		gen.AlphaString(),
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.Property("limit and consistency chain without aliasing", prop.ForAll(
		func(key string, limit int) bool {
			if limit < 1 {
				limit = 1
			}
			base := New("Posts", "KEY").Where(key)
			limited := base.WithLimit(limit)
			return base.Limit() == 0 && limited.Limit() == limit
		},
		gen.AlphaString(),
		gen.IntRange(1, 10000),
	))

	properties.TestingRun(t)
}
