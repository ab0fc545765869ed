package exec

import (
	"github.com/cqlkit/cqlkit/pkg/types"
)

// Interpret applies row-existence semantics to a raw row. The second
// return is false for range ghosts: rows with a key but zero non-key
// columns, which only surface in unbounded scans after a full-row delete
// whose tombstones have not been collected.
func Interpret(raw types.RawRow) (types.InterpretedRow, bool) {
	if !raw.HasData() {
		return types.InterpretedRow{}, false
	}
	return types.InterpretedRow{Key: raw.Key, Columns: raw.Columns}, true
}

// InterpretAll drops ghosts from a raw result set. This is the one place
// an error-like condition is silently normalized rather than raised:
// collection scans simply do not contain ghosts.
func InterpretAll(raws []types.RawRow) []types.InterpretedRow {
	out := make([]types.InterpretedRow, 0, len(raws))
	for _, raw := range raws {
		if row, ok := Interpret(raw); ok {
			out = append(out, row)
		}
	}
	return out
}
