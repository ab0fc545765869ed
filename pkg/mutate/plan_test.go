package mutate

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cqlkit/cqlkit/pkg/cqlerr"
	"github.com/cqlkit/cqlkit/pkg/scope"
	"github.com/cqlkit/cqlkit/pkg/types"
)

type countingTransport struct {
	mu    sync.Mutex
	calls []scope.Statement
	fail  error
}

func (t *countingTransport) Send(ctx context.Context, stmt scope.Statement) ([]types.RawRow, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, stmt)
	return nil, t.fail
}

func TestDiffSplitsSetAndClear(t *testing.T) {
	desired := map[string]types.Value{"title": "x", "body": nil}
	prior := map[string]types.Value{"title": "y", "body": "z"}

	plan := Diff("Posts", "KEY", 1, desired, prior, types.WriteOptions{})

	require.NotNil(t, plan.Set)
	assert.Equal(t, map[string]types.Value{"title": "x"}, plan.Set.Columns)
	require.NotNil(t, plan.Clear)
	assert.Equal(t, []string{"body"}, plan.Clear.Columns)
}

func TestDiffEqualStatesIsNoOp(t *testing.T) {
	state := map[string]types.Value{"title": "x", "views": 3}

	plan := Diff("Posts", "KEY", 1, state, state, types.WriteOptions{})
	assert.True(t, plan.IsEmpty())
	assert.Empty(t, plan.Compile())

	// A no-op plan issues zero network calls.
	transport := &countingTransport{}
	require.NoError(t, Apply(context.Background(), transport, plan))
	assert.Empty(t, transport.calls)
}

func TestDiffIgnoresUnmentionedPriorColumns(t *testing.T) {
	desired := map[string]types.Value{"title": "x"}
	prior := map[string]types.Value{"title": "y", "body": "z"}

	plan := Diff("Posts", "KEY", 1, desired, prior, types.WriteOptions{})
	require.NotNil(t, plan.Set)
	assert.Nil(t, plan.Clear, "columns absent from desired are unchanged, not deleted")
}

func TestDiffClearingAnAbsentColumnIsNoOp(t *testing.T) {
	desired := map[string]types.Value{"body": nil}
	prior := map[string]types.Value{"title": "y"}

	plan := Diff("Posts", "KEY", 1, desired, prior, types.WriteOptions{})
	assert.True(t, plan.IsEmpty())
}

func TestInsertRoutesAllAttributesToSet(t *testing.T) {
	plan := Insert("Posts", "KEY", 1,
		map[string]types.Value{"title": "Post", "views": 0},
		types.WriteOptions{Consistency: types.ConsistencyQuorum, TTLSeconds: 60},
	)

	require.NotNil(t, plan.Set)
	assert.Nil(t, plan.Clear)

	stmts := plan.Compile()
	require.Len(t, stmts, 1)
	assert.Equal(t, "UPDATE Posts USING CONSISTENCY QUORUM AND TTL 60 SET 'title' = ?, 'views' = ? WHERE KEY = ?", stmts[0].Text)
	assert.Equal(t, []types.Value{"Post", 0, 1}, stmts[0].Params)
	assert.Equal(t, types.ConsistencyQuorum, stmts[0].Consistency)
}

func TestInsertAndUpdateCompileEquivalentWrites(t *testing.T) {
	insert := Insert("Posts", "KEY", 1, map[string]types.Value{"title": "Post"}, types.WriteOptions{})
	update := Diff("Posts", "KEY", 1,
		map[string]types.Value{"title": "Post"},
		map[string]types.Value{"title": "Old"},
		types.WriteOptions{})

	is := insert.Compile()
	us := update.Compile()
	require.Len(t, is, 1)
	require.Len(t, us, 1)

	// Both express "set title to Post at key 1".
	assert.Equal(t, is[0].Text, us[0].Text)
	assert.Equal(t, is[0].Params, us[0].Params)
}

func TestDeleteRowCompilesWithoutColumnList(t *testing.T) {
	plan := DeleteRow("Posts", "KEY", 1, types.WriteOptions{})
	stmts := plan.Compile()
	require.Len(t, stmts, 1)
	assert.Equal(t, "DELETE FROM Posts WHERE KEY = ?", stmts[0].Text)
	assert.Equal(t, []types.Value{1}, stmts[0].Params)
}

func TestDeleteColumnsCompilesColumnList(t *testing.T) {
	plan := DeleteColumns("Posts", "KEY", 1, []string{"body", "title"}, types.WriteOptions{Consistency: types.ConsistencyAll})
	stmts := plan.Compile()
	require.Len(t, stmts, 1)
	assert.Equal(t, "DELETE 'body', 'title' FROM Posts USING CONSISTENCY ALL WHERE KEY = ?", stmts[0].Text)
}

func TestDeleteColumnsWithEmptyListIsNoOp(t *testing.T) {
	plan := DeleteColumns("Posts", "KEY", 1, nil, types.WriteOptions{})
	assert.True(t, plan.IsEmpty())
}

func TestApplySendsSetBeforeClear(t *testing.T) {
	desired := map[string]types.Value{"title": "x", "body": nil}
	prior := map[string]types.Value{"title": "y", "body": "z"}
	plan := Diff("Posts", "KEY", 1, desired, prior, types.WriteOptions{})

	transport := &countingTransport{}
	require.NoError(t, Apply(context.Background(), transport, plan))

	require.Len(t, transport.calls, 2)
	assert.Contains(t, transport.calls[0].Text, "UPDATE Posts")
	assert.Contains(t, transport.calls[1].Text, "DELETE 'body' FROM Posts")
}

func TestApplyRejectsMissingKey(t *testing.T) {
	plan := Insert("Posts", "KEY", nil, map[string]types.Value{"title": "x"}, types.WriteOptions{})

	transport := &countingTransport{}
	err := Apply(context.Background(), transport, plan)
	require.Error(t, err)
	assert.Equal(t, cqlerr.CodeMissingKey, cqlerr.GetCode(err))
	assert.Empty(t, transport.calls)
}

func TestTimestampOption(t *testing.T) {
	plan := Insert("Posts", "KEY", 1, map[string]types.Value{"title": "Post"},
		types.WriteOptions{TimestampMicros: 1700000000000000})
	stmts := plan.Compile()
	require.Len(t, stmts, 1)
	assert.Equal(t, "UPDATE Posts USING TIMESTAMP 1700000000000000 SET 'title' = ? WHERE KEY = ?", stmts[0].Text)
}
