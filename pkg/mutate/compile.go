package mutate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cqlkit/cqlkit/pkg/scope"
	"github.com/cqlkit/cqlkit/pkg/types"
)

// Compile emits the plan's statements in execution order: SET before
// CLEAR. An empty plan compiles to no statements. Column order inside a
// statement is comparator order, so equal plans emit identical text.
func (p MutationPlan) Compile() []scope.Statement {
	var out []scope.Statement
	if p.Set != nil {
		out = append(out, p.compileSet())
	}
	if p.Clear != nil {
		out = append(out, p.compileClear())
	}
	return out
}

// compileSet emits UPDATE ... SET 'c' = ?, ... WHERE key = ?.
// UPDATE is an upsert: it creates or overwrites column values at the key
// without distinguishing insert from update.
func (p MutationPlan) compileSet() scope.Statement {
	var sb strings.Builder
	var params []types.Value

	sb.WriteString("UPDATE ")
	sb.WriteString(p.Table)
	writeUsing(&sb, p.Set.Options)

	names := make([]string, 0, len(p.Set.Columns))
	for name := range p.Set.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString(" SET ")
	assigns := make([]string, len(names))
	for i, name := range names {
		assigns[i] = scope.QuoteColumn(name) + " = ?"
		params = append(params, p.Set.Columns[name])
	}
	sb.WriteString(strings.Join(assigns, ", "))

	sb.WriteString(" WHERE ")
	sb.WriteString(p.KeyColumn)
	sb.WriteString(" = ?")
	params = append(params, p.Key)

	return scope.Statement{
		Text:        sb.String(),
		Params:      params,
		Consistency: p.Set.Options.Consistency,
	}
}

// compileClear emits DELETE ['c', ...] FROM ... WHERE key = ?. Without a
// column list the whole row is removed.
func (p MutationPlan) compileClear() scope.Statement {
	var sb strings.Builder

	sb.WriteString("DELETE ")
	if len(p.Clear.Columns) > 0 {
		names := append([]string(nil), p.Clear.Columns...)
		sort.Strings(names)
		quoted := make([]string, len(names))
		for i, name := range names {
			quoted[i] = scope.QuoteColumn(name)
		}
		sb.WriteString(strings.Join(quoted, ", "))
		sb.WriteString(" ")
	}
	sb.WriteString("FROM ")
	sb.WriteString(p.Table)
	writeUsing(&sb, p.Clear.Options)

	sb.WriteString(" WHERE ")
	sb.WriteString(p.KeyColumn)
	sb.WriteString(" = ?")

	return scope.Statement{
		Text:        sb.String(),
		Params:      []types.Value{p.Key},
		Consistency: p.Clear.Options.Consistency,
	}
}

// writeUsing emits the USING clause for the given write options, if any.
func writeUsing(sb *strings.Builder, opts types.WriteOptions) {
	var parts []string
	if opts.Consistency != types.ConsistencyDefault {
		parts = append(parts, "CONSISTENCY "+opts.Consistency.String())
	}
	if opts.TTLSeconds > 0 {
		parts = append(parts, fmt.Sprintf("TTL %d", opts.TTLSeconds))
	}
	if opts.TimestampMicros > 0 {
		parts = append(parts, fmt.Sprintf("TIMESTAMP %d", opts.TimestampMicros))
	}
	if len(parts) > 0 {
		sb.WriteString(" USING ")
		sb.WriteString(strings.Join(parts, " AND "))
	}
}
