package scope

import (
	"fmt"
	"strings"

	"github.com/cqlkit/cqlkit/pkg/cqlerr"
	"github.com/cqlkit/cqlkit/pkg/types"
)

// Statement is a compiled CQL statement: text with ? placeholders, bound
// parameters in clause order, and the consistency level to execute under.
type Statement struct {
	Text        string
	Params      []types.Value
	Consistency types.Consistency
}

// String returns the statement text for diagnostics.
func (st Statement) String() string {
	return st.Text
}

// Compile validates the scope and emits its CQL statement. Validation
// failures recorded while chaining surface here; no I/O is performed.
//
// A scope holding a subquery-valued or multi-value indexed constraint does
// not compile: CQL has no subqueries, and IN is not usable on indexed
// columns. The executor expands both before calling Compile.
func (s Scope) Compile() (Statement, error) {
	if s.err != nil {
		return Statement{}, s.err
	}
	if verr := s.selector.validate(); verr != nil {
		return Statement{}, verr
	}

	for _, c := range s.constraints {
		if HasSubquery(c) {
			return Statement{}, cqlerr.NewQueryError(cqlerr.CodeSubqueryNotExpanded,
				"constraint value is an unexecuted scope; expand the subquery before compiling")
		}
		if ie, ok := c.(IndexEquality); ok && len(ie.Values) > 1 {
			return Statement{}, cqlerr.NewQueryError(cqlerr.CodeFanoutNotExpanded,
				fmt.Sprintf("indexed column %q has %d values; IN is not usable with indexes, fan out first", ie.Column, len(ie.Values)))
		}
	}

	var sb strings.Builder
	var params []types.Value

	sb.WriteString("SELECT ")
	if n := s.selector.columnCount(); n > 0 {
		fmt.Fprintf(&sb, "FIRST %d ", n)
	}
	if s.selector.Reversed() {
		sb.WriteString("REVERSED ")
	}
	sb.WriteString(s.selector.projection())
	sb.WriteString(" FROM ")
	sb.WriteString(s.table)

	if s.consistency != types.ConsistencyDefault {
		sb.WriteString(" USING CONSISTENCY ")
		sb.WriteString(s.consistency.String())
	}

	clauses := make([]string, 0, len(s.constraints))
	for _, c := range s.constraints {
		clause, p := s.compileConstraint(c)
		if clause == "" {
			continue
		}
		clauses = append(clauses, clause)
		params = append(params, p...)
	}
	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}

	if s.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", s.limit)
	}

	return Statement{
		Text:        sb.String(),
		Params:      params,
		Consistency: s.consistency,
	}, nil
}

// compileConstraint emits one WHERE clause and its parameters.
func (s Scope) compileConstraint(c Constraint) (string, []types.Value) {
	switch cc := c.(type) {
	case KeyEquality:
		if len(cc.Values) == 1 {
			return s.keyColumn + " = ?", []types.Value{cc.Values[0]}
		}
		holes := make([]string, len(cc.Values))
		for i := range holes {
			holes[i] = "?"
		}
		return fmt.Sprintf("%s IN (%s)", s.keyColumn, strings.Join(holes, ", ")),
			append([]types.Value(nil), cc.Values...)
	case KeyRange:
		var clauses []string
		var params []types.Value
		if cc.Lower != nil {
			op := " > ?"
			if cc.Lower.Inclusive {
				op = " >= ?"
			}
			clauses = append(clauses, s.keyColumn+op)
			params = append(params, cc.Lower.Value)
		}
		if cc.Upper != nil {
			op := " < ?"
			if cc.Upper.Inclusive {
				op = " <= ?"
			}
			clauses = append(clauses, s.keyColumn+op)
			params = append(params, cc.Upper.Value)
		}
		if len(clauses) == 0 {
			// Unbounded on both sides: a full scan, no predicate.
			return "", nil
		}
		return strings.Join(clauses, " AND "), params
	case IndexEquality:
		return cc.Column + " = ?", []types.Value{cc.Values[0]}
	case Filter:
		return cc.Column + " = ?", []types.Value{cc.Value}
	default:
		return "", nil
	}
}
