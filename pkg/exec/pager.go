package exec

import (
	"context"
	"sort"

	"github.com/cqlkit/cqlkit/pkg/scope"
	"github.com/cqlkit/cqlkit/pkg/types"
)

// ColumnScan walks every column of one wide row in comparator order,
// fetching in fixed-size batches so an arbitrarily wide row never loads in
// one request. The next batch is fetched only when the consumer advances
// past the current one.
func (e *Executor) ColumnScan(table, keyColumn string, key types.Value) *ColumnIter {
	return &ColumnIter{
		exec:      e,
		table:     table,
		keyColumn: keyColumn,
		key:       key,
	}
}

// LoadColumns materializes a full-column scan. The result spans batch
// boundaries seamlessly and holds all columns in stored order.
func (e *Executor) LoadColumns(ctx context.Context, table, keyColumn string, key types.Value) ([]types.Column, error) {
	it := e.ColumnScan(table, keyColumn, key)
	var out []types.Column
	for {
		col, ok := it.Next(ctx)
		if !ok {
			return out, it.Err()
		}
		out = append(out, col)
	}
}

// ColumnIter is a lazy column iterator over one wide row.
type ColumnIter struct {
	exec      *Executor
	table     string
	keyColumn string
	key       types.Value

	batch    []types.Column
	pos      int
	from     string
	finished bool
	err      error
}

// Next returns the next column in comparator order, fetching the next
// batch when the current one is exhausted.
func (it *ColumnIter) Next(ctx context.Context) (types.Column, bool) {
	for {
		if it.err != nil {
			return types.Column{}, false
		}
		if it.pos < len(it.batch) {
			col := it.batch[it.pos]
			it.pos++
			return col, true
		}
		if it.finished {
			return types.Column{}, false
		}
		it.fetchBatch(ctx)
	}
}

// Err returns the fetch error, if any.
func (it *ColumnIter) Err() error {
	return it.err
}

// fetchBatch issues one batch statement and sorts the returned columns
// into comparator order. A short batch ends the scan.
func (it *ColumnIter) fetchBatch(ctx context.Context) {
	s := scope.New(it.table, it.keyColumn).
		Where(it.key).
		SelectRange(it.from, "").
		First(it.exec.batchSize)

	raws, err := it.exec.fetch(ctx, s)
	if err != nil {
		it.err = err
		return
	}

	var cols []types.Column
	if len(raws) > 0 {
		names := make([]string, 0, len(raws[0].Columns))
		for name := range raws[0].Columns {
			names = append(names, name)
		}
		sort.Strings(names)
		cols = make([]types.Column, len(names))
		for i, name := range names {
			cols[i] = types.Column{Name: name, Value: raws[0].Columns[name]}
		}
	}

	it.batch = cols
	it.pos = 0
	if len(cols) < it.exec.batchSize {
		it.finished = true
		return
	}
	// Resume just past the last column seen. Appending a NUL yields the
	// least name greater than it under the UTF8 comparator.
	it.from = cols[len(cols)-1].Name + "\x00"
}
