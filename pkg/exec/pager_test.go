package exec

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cqlkit/cqlkit/pkg/scope"
	"github.com/cqlkit/cqlkit/pkg/types"
)

// wideRowTransport simulates a wide row: it honors the FIRST bound and the
// column-range start of each batch statement against a sorted column set.
type wideRowTransport struct {
	fakeTransport
	names []string
}

func newWideRowTransport(n int) *wideRowTransport {
	t := &wideRowTransport{names: make([]string, n)}
	for i := 0; i < n; i++ {
		t.names[i] = fmt.Sprintf("col%05d", i)
	}
	sort.Strings(t.names)
	t.respond = func(stmt scope.Statement) ([]types.RawRow, error) {
		from := rangeStart(stmt.Text)
		limit := firstBound(stmt.Text)
		row := types.RawRow{Key: "wide", Columns: make(map[string]types.Value)}
		for _, name := range t.names {
			if name < from {
				continue
			}
			row.Columns[name] = "v-" + name
			if limit > 0 && len(row.Columns) == limit {
				break
			}
		}
		return []types.RawRow{row}, nil
	}
	return t
}

// rangeStart extracts the lower column bound from the projection literal.
func rangeStart(text string) string {
	open := strings.Index(text, "'")
	end := strings.Index(text, "'..'")
	if open < 0 || end < 0 {
		return ""
	}
	return text[open+1 : end]
}

// firstBound extracts the FIRST clause value.
func firstBound(text string) int {
	var n int
	fmt.Sscanf(text[strings.Index(text, "FIRST"):], "FIRST %d", &n)
	return n
}

func TestFullColumnLoadPagesInBatches(t *testing.T) {
	transport := newWideRowTransport(2500)
	e := New(transport, Config{BatchSize: 1000})

	cols, err := e.LoadColumns(context.Background(), "Events", "KEY", "wide")
	require.NoError(t, err)

	// 2500 columns at batch size 1000: exactly 3 fetches.
	assert.Equal(t, 3, transport.callCount())
	require.Len(t, cols, 2500)

	// All columns present, in stored order, spanning batch boundaries.
	for i, col := range cols {
		assert.Equal(t, fmt.Sprintf("col%05d", i), col.Name)
		assert.Equal(t, "v-"+col.Name, col.Value)
	}
}

func TestColumnScanFetchesLazily(t *testing.T) {
	transport := newWideRowTransport(2500)
	e := New(transport, Config{BatchSize: 1000})

	it := e.ColumnScan("Events", "KEY", "wide")
	assert.Equal(t, 0, transport.callCount())

	// Consuming the first column costs one batch.
	col, ok := it.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, "col00000", col.Name)
	assert.Equal(t, 1, transport.callCount())

	// Staying inside the batch costs nothing more.
	for i := 0; i < 999; i++ {
		_, ok := it.Next(context.Background())
		require.True(t, ok)
	}
	assert.Equal(t, 1, transport.callCount())

	// Advancing past the batch boundary fetches the next one.
	col, ok = it.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, "col01000", col.Name)
	assert.Equal(t, 2, transport.callCount())
}

func TestColumnScanShortRow(t *testing.T) {
	transport := newWideRowTransport(7)
	e := New(transport, Config{BatchSize: 1000})

	cols, err := e.LoadColumns(context.Background(), "Events", "KEY", "wide")
	require.NoError(t, err)
	assert.Len(t, cols, 7)
	assert.Equal(t, 1, transport.callCount())
}

func TestColumnScanEmptyRow(t *testing.T) {
	transport := &fakeTransport{}
	e := New(transport, Config{BatchSize: 1000})

	cols, err := e.LoadColumns(context.Background(), "Events", "KEY", "missing")
	require.NoError(t, err)
	assert.Empty(t, cols)
	assert.Equal(t, 1, transport.callCount())
}
