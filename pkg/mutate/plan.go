// Package mutate compiles insert, update, and delete operations into
// mutation plans. A plan splits a desired-state diff into an optional SET
// sub-statement and an optional CLEAR sub-statement: Cassandra has no null
// value, so a column transitioning to absent is a delete, never a write.
package mutate

import (
	"reflect"

	"github.com/cqlkit/cqlkit/pkg/types"
)

// SetStatement carries the column assignments of a plan, with write
// options passed through to execution.
type SetStatement struct {
	Columns map[string]types.Value
	Options types.WriteOptions
}

// ClearStatement carries the columns a plan removes. An empty column list
// means the whole row, without enumerating its columns.
type ClearStatement struct {
	Columns []string
	Options types.WriteOptions
}

// MutationPlan is an ordered pair of optional sub-statements targeting one
// row. An empty plan is a no-op and issues zero transport calls.
type MutationPlan struct {
	Table     string
	KeyColumn string
	Key       types.Value

	Set   *SetStatement
	Clear *ClearStatement
}

// IsEmpty reports whether the plan does nothing.
func (p MutationPlan) IsEmpty() bool {
	return p.Set == nil && p.Clear == nil
}

// Insert builds the plan for a row with no known prior state: every given
// attribute routes to the SET sub-statement. Attributes with nil values
// are dropped, not written; storing a null is never expressible.
func Insert(table, keyColumn string, key types.Value, attrs map[string]types.Value, opts types.WriteOptions) MutationPlan {
	plan := MutationPlan{Table: table, KeyColumn: keyColumn, Key: key}

	set := make(map[string]types.Value, len(attrs))
	for col, v := range attrs {
		if v == nil {
			continue
		}
		set[col] = v
	}
	if len(set) > 0 {
		plan.Set = &SetStatement{Columns: set, Options: opts}
	}
	return plan
}

// Diff builds the plan for a row with known prior state. Only attributes
// that changed are included; an attribute transitioning to absent (nil in
// desired) routes to CLEAR instead of SET. Attributes of prior not named
// in desired are untouched. Equal states produce an empty plan.
func Diff(table, keyColumn string, key types.Value, desired, prior map[string]types.Value, opts types.WriteOptions) MutationPlan {
	plan := MutationPlan{Table: table, KeyColumn: keyColumn, Key: key}

	set := make(map[string]types.Value)
	var clear []string

	for col, want := range desired {
		if want == nil {
			if have, present := prior[col]; present && have != nil {
				clear = append(clear, col)
			}
			continue
		}
		if have, present := prior[col]; present && reflect.DeepEqual(have, want) {
			continue
		}
		set[col] = want
	}

	if len(set) > 0 {
		plan.Set = &SetStatement{Columns: set, Options: opts}
	}
	if len(clear) > 0 {
		plan.Clear = &ClearStatement{Columns: clear, Options: opts}
	}
	return plan
}

// DeleteRow builds the plan that removes a whole row. The row's columns
// are not enumerated.
func DeleteRow(table, keyColumn string, key types.Value, opts types.WriteOptions) MutationPlan {
	return MutationPlan{
		Table:     table,
		KeyColumn: keyColumn,
		Key:       key,
		Clear:     &ClearStatement{Options: opts},
	}
}

// DeleteColumns builds the plan that removes the named columns of a row.
func DeleteColumns(table, keyColumn string, key types.Value, columns []string, opts types.WriteOptions) MutationPlan {
	if len(columns) == 0 {
		return MutationPlan{Table: table, KeyColumn: keyColumn, Key: key}
	}
	return MutationPlan{
		Table:     table,
		KeyColumn: keyColumn,
		Key:       key,
		Clear:     &ClearStatement{Columns: append([]string(nil), columns...), Options: opts},
	}
}
