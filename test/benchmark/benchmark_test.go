// Package benchmark provides performance benchmarks for cqlkit's
// statement-building hot paths. Nothing here touches the network.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/cqlkit/cqlkit/pkg/exec"
	"github.com/cqlkit/cqlkit/pkg/mutate"
	"github.com/cqlkit/cqlkit/pkg/scope"
	"github.com/cqlkit/cqlkit/pkg/types"
	"github.com/cqlkit/cqlkit/pkg/widerow"
)

// BenchmarkScopeChainAndCompile measures the cost of building a scope
// through the fluent chain and compiling it to a statement.
func BenchmarkScopeChainAndCompile(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		s := scope.New("Posts", "KEY").
			WhereEquals("author", "alice").
			Filtered("status", "published").
			Select("title", "body", "created_at").
			WithLimit(100).
			WithConsistency(types.ConsistencyQuorum)
		if _, err := s.Compile(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkScopeChainOnly isolates the copy-on-chain overhead from
// compilation.
func BenchmarkScopeChainOnly(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = scope.New("Posts", "KEY").
			Where("a", "b", "c").
			SelectRange("a", "z").
			First(50)
	}
}

// BenchmarkMutationDiff measures diffing two 50-column states and
// compiling the resulting plan.
func BenchmarkMutationDiff(b *testing.B) {
	prior := make(map[string]types.Value, 50)
	desired := make(map[string]types.Value, 50)
	for i := 0; i < 50; i++ {
		col := fmt.Sprintf("col-%02d", i)
		prior[col] = i
		switch {
		case i%10 == 0:
			desired[col] = nil // transition to absent
		case i%3 == 0:
			desired[col] = i * 2
		default:
			desired[col] = i // unchanged
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		plan := mutate.Diff("Posts", "KEY", "row-1", desired, prior, types.WriteOptions{})
		_ = plan.Compile()
	}
}

// BenchmarkInterpretAll measures ghost filtering over a mixed result set.
func BenchmarkInterpretAll(b *testing.B) {
	raw := make([]types.RawRow, 1000)
	for i := range raw {
		raw[i] = types.RawRow{Key: fmt.Sprintf("key-%04d", i)}
		if i%4 != 0 {
			raw[i].Columns = map[string]types.Value{"title": "t"}
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = exec.InterpretAll(raw)
	}
}

// BenchmarkMsgpackCodecRoundTrip measures the default wide-row codec.
func BenchmarkMsgpackCodecRoundTrip(b *testing.B) {
	codec := widerow.MsgpackCodec{}
	value := map[string]interface{}{
		"title": "hello",
		"views": 42,
		"tags":  []string{"a", "b", "c"},
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		data, err := codec.Encode("col", value)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := codec.Decode("col", data); err != nil {
			b.Fatal(err)
		}
	}
}
