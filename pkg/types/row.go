// Package types provides core data types shared by all cqlkit packages.
package types

// Value is a stored column value. Cassandra has no null value: a column
// either holds data or is absent from the row entirely, so a Value never
// represents "no data"; absence from a column map does.
type Value = interface{}

// RawRow is a row as returned by the transport: the row key plus a sparse
// mapping from column name to stored value. A column missing from Columns
// has no data.
type RawRow struct {
	// Key is the row key value
	Key Value

	// Columns maps column name to stored value; an absent name means an absent column
	Columns map[string]Value
}

// HasData reports whether the row carries at least one non-key column.
// Rows without data are range ghosts: keys left behind by full-row deletes
// whose tombstones have not been collected yet.
func (r RawRow) HasData() bool {
	return len(r.Columns) > 0
}

// InterpretedRow is a RawRow that passed existence interpretation: it is
// guaranteed to carry at least one non-key column.
type InterpretedRow struct {
	// Key is the row key value
	Key Value

	// Columns maps column name to stored value
	Columns map[string]Value
}

// Column holds one column name and value, used where ordered column
// sequences matter (wide-row scans preserve comparator order).
type Column struct {
	// Name is the column name
	Name string

	// Value is the stored value
	Value Value
}
