package exec

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/semaphore"

	"github.com/cqlkit/cqlkit/pkg/cqlerr"
	"github.com/cqlkit/cqlkit/pkg/scope"
	"github.com/cqlkit/cqlkit/pkg/types"
)

// Executor runs scopes against a transport. It is stateless apart from
// configuration and safe for concurrent use.
type Executor struct {
	transport   Transport
	concurrency int64
	batchSize   int
	stats       StatsRecorder
}

// Config holds executor configuration.
type Config struct {
	// Concurrency bounds parallel fan-out legs (default: 4)
	Concurrency int

	// BatchSize is the wide-row column page size (default: 1000)
	BatchSize int

	// Stats receives query-shape observations; may be nil
	Stats StatsRecorder
}

// DefaultConfig returns the default executor configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency: 4,
		BatchSize:   1000,
	}
}

// New creates an executor over the given transport.
func New(transport Transport, cfg Config) *Executor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	return &Executor{
		transport:   transport,
		concurrency: int64(cfg.Concurrency),
		batchSize:   cfg.BatchSize,
		stats:       cfg.Stats,
	}
}

// Query returns a lazy row sequence for the scope. No statement is sent
// until the sequence is iterated, and each iteration re-executes unless
// the sequence was materialized with Load.
func (e *Executor) Query(s scope.Scope) *Rows {
	return &Rows{exec: e, scope: s}
}

// Find runs a single-row lookup. A selector projecting only the key
// column is rejected before any transport call: such a query can never
// tell a live row from a ghost. Zero rows, or a ghost, fail with
// RECORD_NOT_FOUND.
func (e *Executor) Find(ctx context.Context, s scope.Scope) (types.InterpretedRow, error) {
	if err := s.Err(); err != nil {
		return types.InterpretedRow{}, err
	}
	if s.SelectsOnlyKey() {
		return types.InterpretedRow{}, cqlerr.NewValidationError(cqlerr.CodeMeaninglessQuery,
			"selector projects only the key column; result cannot distinguish a row from a ghost")
	}

	raws, err := e.fetch(ctx, s.WithLimit(1))
	if err != nil {
		return types.InterpretedRow{}, err
	}
	if len(raws) == 0 {
		return types.InterpretedRow{}, cqlerr.NewQueryError(cqlerr.CodeRecordNotFound, "no row found")
	}
	row, ok := Interpret(raws[0])
	if !ok {
		return types.InterpretedRow{}, cqlerr.NewQueryError(cqlerr.CodeRecordNotFound,
			fmt.Sprintf("row %v has no data", raws[0].Key))
	}
	return row, nil
}

// fetch resolves a scope to raw rows: expand subqueries, then either fan
// out a multi-value indexed constraint or compile and send one statement.
func (e *Executor) fetch(ctx context.Context, s scope.Scope) ([]types.RawRow, error) {
	if err := s.Err(); err != nil {
		return nil, err
	}

	s, empty, err := e.expandSubqueries(ctx, s)
	if err != nil {
		return nil, err
	}
	if empty {
		// An inner scope produced zero keys; the outer result is empty by
		// construction, no statement needed.
		return nil, nil
	}

	e.recordConstraints(s)

	if idx, ie, ok := fanoutConstraint(s); ok {
		return e.fanout(ctx, s, idx, ie)
	}

	stmt, err := s.Compile()
	if err != nil {
		return nil, err
	}
	return e.send(ctx, stmt)
}

// expandSubqueries replaces every scope-valued constraint value with the
// concrete key set produced by executing the inner scope. Inner scopes
// always run before the outer statement. The bool result is true when an
// inner scope produced no keys, which empties the outer result.
func (e *Executor) expandSubqueries(ctx context.Context, s scope.Scope) (scope.Scope, bool, error) {
	for i, c := range s.Constraints() {
		if !scope.HasSubquery(c) {
			continue
		}

		var expanded scope.Constraint
		switch cc := c.(type) {
		case scope.KeyEquality:
			values, err := e.resolveValues(ctx, cc.Values)
			if err != nil {
				return s, false, err
			}
			if len(values) == 0 {
				return s, true, nil
			}
			expanded = scope.KeyEquality{Values: values}
		case scope.IndexEquality:
			values, err := e.resolveValues(ctx, cc.Values)
			if err != nil {
				return s, false, err
			}
			if len(values) == 0 {
				return s, true, nil
			}
			expanded = scope.IndexEquality{Column: cc.Column, Values: values}
		default:
			continue
		}

		var err error
		s, err = s.ReplaceConstraint(i, expanded)
		if err != nil {
			return s, false, err
		}
	}
	return s, false, nil
}

// resolveValues flattens a constraint value list, running scope-valued
// entries and substituting their result keys in place.
func (e *Executor) resolveValues(ctx context.Context, values []types.Value) ([]types.Value, error) {
	out := make([]types.Value, 0, len(values))
	for _, v := range values {
		inner, ok := scope.AsSubquery(v)
		if !ok {
			out = append(out, v)
			continue
		}
		if e.stats != nil {
			e.stats.RecordSubquery()
		}
		rows, err := e.Query(inner).Load(ctx)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			out = append(out, row.Key)
		}
	}
	return out, nil
}

// fanoutConstraint finds a multi-value indexed constraint, which cannot
// compile to a single statement.
func fanoutConstraint(s scope.Scope) (int, scope.IndexEquality, bool) {
	for i, c := range s.Constraints() {
		if ie, ok := c.(scope.IndexEquality); ok && len(ie.Values) > 1 {
			return i, ie, true
		}
	}
	return 0, scope.IndexEquality{}, false
}

// fanout issues one single-value statement per value of an indexed
// constraint. Legs run concurrently under the configured bound, but the
// concatenated result preserves input-value order, de-duplicated by key
// when the same row surfaces under multiple values.
func (e *Executor) fanout(ctx context.Context, s scope.Scope, idx int, ie scope.IndexEquality) ([]types.RawRow, error) {
	if e.stats != nil {
		e.stats.RecordFanout(len(ie.Values))
	}

	stmts := make([]scope.Statement, len(ie.Values))
	for vi, v := range ie.Values {
		leg, err := s.ReplaceConstraint(idx, scope.IndexEquality{Column: ie.Column, Values: []types.Value{v}})
		if err != nil {
			return nil, err
		}
		stmts[vi], err = leg.Compile()
		if err != nil {
			return nil, err
		}
	}

	legs := make([][]types.RawRow, len(stmts))
	if e.concurrency <= 1 {
		// Sequential legs go out in input-value order.
		for vi, stmt := range stmts {
			rows, err := e.send(ctx, stmt)
			if err != nil {
				return nil, err
			}
			legs[vi] = rows
		}
	} else {
		errs := make([]error, len(stmts))
		sem := semaphore.NewWeighted(e.concurrency)
		var wg sync.WaitGroup
		for vi, stmt := range stmts {
			wg.Add(1)
			go func(vi int, stmt scope.Statement) {
				defer wg.Done()
				if err := sem.Acquire(ctx, 1); err != nil {
					errs[vi] = err
					return
				}
				defer sem.Release(1)
				legs[vi], errs[vi] = e.send(ctx, stmt)
			}(vi, stmt)
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	var out []types.RawRow
	seen := make(map[uint64][]types.Value)
	for _, leg := range legs {
		for _, row := range leg {
			h := keyHash(row.Key)
			if containsKey(seen[h], row.Key) {
				continue
			}
			seen[h] = append(seen[h], row.Key)
			out = append(out, row)
		}
	}
	return out, nil
}

// keyHash hashes a row key's printed form with Cassandra's own partitioner
// hash. The hash only buckets candidates for de-duplication; identity is
// confirmed structurally before a row is dropped, since distinct keys can
// share a printed form or collide.
func keyHash(key types.Value) uint64 {
	return murmur3.Sum64([]byte(fmt.Sprint(key)))
}

// containsKey reports whether key is structurally equal to one of keys.
func containsKey(keys []types.Value, key types.Value) bool {
	for _, k := range keys {
		if reflect.DeepEqual(k, key) {
			return true
		}
	}
	return false
}

// send issues one compiled statement. Transport failures surface to the
// caller wrapped with the statement text and a query id for diagnostics;
// they are never retried or reinterpreted here.
func (e *Executor) send(ctx context.Context, stmt scope.Statement) ([]types.RawRow, error) {
	raws, err := e.transport.Send(ctx, stmt)
	if err != nil {
		return nil, cqlerr.NewTransportError("statement failed", err).WithDetails(map[string]interface{}{
			"statement": stmt.Text,
			"query_id":  uuid.NewString(),
		})
	}
	return raws, nil
}

// recordConstraints feeds the executed scope's shape to the stats recorder.
func (e *Executor) recordConstraints(s scope.Scope) {
	if e.stats == nil {
		return
	}
	for _, c := range s.Constraints() {
		switch cc := c.(type) {
		case scope.KeyEquality:
			if len(cc.Values) > 1 {
				e.stats.RecordPredicate(s.KeyColumn(), "IN")
			} else {
				e.stats.RecordPredicate(s.KeyColumn(), "=")
			}
		case scope.KeyRange:
			e.stats.RecordPredicate(s.KeyColumn(), "RANGE")
		case scope.IndexEquality:
			if len(cc.Values) > 1 {
				e.stats.RecordPredicate(cc.Column, "IN")
			} else {
				e.stats.RecordPredicate(cc.Column, "=")
			}
		case scope.Filter:
			e.stats.RecordPredicate(cc.Column, "FILTER")
		}
	}
}
