package exec

import (
	"context"
	"sync"

	"github.com/cqlkit/cqlkit/pkg/scope"
	"github.com/cqlkit/cqlkit/pkg/types"
)

// Rows is a lazy, forward-only row sequence. Each call to Iter re-executes
// the scope against the transport; Load materializes the result once and
// every later Iter replays from memory.
type Rows struct {
	exec  *Executor
	scope scope.Scope

	mu     sync.Mutex
	loaded bool
	cached []types.InterpretedRow
}

// Iter starts one enumeration of the sequence. Ghost rows are dropped; a
// fetch failure is reported by the iterator's Err after Next returns
// false.
func (r *Rows) Iter(ctx context.Context) *Iter {
	r.mu.Lock()
	if r.loaded {
		rows := r.cached
		r.mu.Unlock()
		return &Iter{rows: rows}
	}
	r.mu.Unlock()

	raws, err := r.exec.fetch(ctx, r.scope)
	if err != nil {
		return &Iter{err: err}
	}
	return &Iter{rows: InterpretAll(raws)}
}

// Load materializes the sequence. The fetch happens at most once; later
// calls and iterations replay the cached rows.
func (r *Rows) Load(ctx context.Context) ([]types.InterpretedRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return r.cached, nil
	}

	raws, err := r.exec.fetch(ctx, r.scope)
	if err != nil {
		return nil, err
	}
	r.cached = InterpretAll(raws)
	r.loaded = true
	return r.cached, nil
}

// Iter walks one enumeration of a row sequence.
type Iter struct {
	rows []types.InterpretedRow
	pos  int
	err  error
}

// Next returns the next row. The second return is false when the sequence
// is exhausted or failed; check Err to tell which.
func (it *Iter) Next() (types.InterpretedRow, bool) {
	if it.err != nil || it.pos >= len(it.rows) {
		return types.InterpretedRow{}, false
	}
	row := it.rows[it.pos]
	it.pos++
	return row, true
}

// Err returns the fetch error, if any.
func (it *Iter) Err() error {
	return it.err
}
