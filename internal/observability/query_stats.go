// Package observability provides query-shape statistics for performance
// monitoring: which columns are constrained and how often fan-out and
// subquery expansion multiply round trips.
package observability

import (
	"sort"
	"sync"
	"time"
)

// QueryStats tracks predicate frequency and expansion counters. It
// implements the executor's StatsRecorder contract and is safe for
// concurrent use.
type QueryStats struct {
	mu            sync.RWMutex
	predicateFreq map[string]*ColumnStats
	fanoutCount   int64
	fanoutLegs    int64
	subqueryCount int64
	window        time.Duration
}

// ColumnStats holds statistics for a constrained column.
type ColumnStats struct {
	Column    string
	Frequency int64
	LastSeen  time.Time
	Operators map[string]int // operator → count (e.g., "=" → 5, "IN" → 2)
}

// ExpansionStats is a snapshot of the expansion counters.
type ExpansionStats struct {
	// Fanouts is the number of multi-value index queries fanned out
	Fanouts int64

	// FanoutLegs is the total number of statements issued by fan-outs
	FanoutLegs int64

	// Subqueries is the number of inner-scope expansions executed
	Subqueries int64
}

// NewQueryStats creates a new query statistics tracker.
// window: time duration for pruning old predicate entries (e.g., 1 hour)
func NewQueryStats(window time.Duration) *QueryStats {
	return &QueryStats{
		predicateFreq: make(map[string]*ColumnStats),
		window:        window,
	}
}

// RecordPredicate records one constraint on a column.
// operator: "=", "IN", "RANGE", or "FILTER".
// This method is O(1) and thread-safe.
func (q *QueryStats) RecordPredicate(column, operator string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats, exists := q.predicateFreq[column]
	if !exists {
		stats = &ColumnStats{
			Column:    column,
			Operators: make(map[string]int),
		}
		q.predicateFreq[column] = stats
	}

	stats.Frequency++
	stats.LastSeen = time.Now()
	stats.Operators[operator]++
}

// RecordFanout records one IN fan-out of n statements.
func (q *QueryStats) RecordFanout(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fanoutCount++
	q.fanoutLegs += int64(n)
}

// RecordSubquery records one subquery expansion round trip.
func (q *QueryStats) RecordSubquery() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subqueryCount++
}

// Expansions returns a snapshot of the expansion counters.
func (q *QueryStats) Expansions() ExpansionStats {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return ExpansionStats{
		Fanouts:    q.fanoutCount,
		FanoutLegs: q.fanoutLegs,
		Subqueries: q.subqueryCount,
	}
}

// GetTopPredicates returns the top N predicates by frequency.
// Returns a copy of the stats sorted by frequency (descending).
func (q *QueryStats) GetTopPredicates(n int) []ColumnStats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if n <= 0 || len(q.predicateFreq) == 0 {
		return []ColumnStats{}
	}

	stats := make([]ColumnStats, 0, len(q.predicateFreq))
	for _, s := range q.predicateFreq {
		// Deep copy so callers cannot mutate the live counters
		statsCopy := ColumnStats{
			Column:    s.Column,
			Frequency: s.Frequency,
			LastSeen:  s.LastSeen,
			Operators: make(map[string]int),
		}
		for op, count := range s.Operators {
			statsCopy.Operators[op] = count
		}
		stats = append(stats, statsCopy)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Frequency > stats[j].Frequency
	})

	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

// Prune removes predicate entries where time.Since(LastSeen) > window.
// This should be called periodically (e.g., every 5 minutes).
func (q *QueryStats) Prune() {
	q.mu.Lock()
	defer q.mu.Unlock()

	threshold := time.Now().Add(-q.window)
	for col, stats := range q.predicateFreq {
		if stats.LastSeen.Before(threshold) {
			delete(q.predicateFreq, col)
		}
	}
}
