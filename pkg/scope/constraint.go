package scope

import (
	"fmt"
	"strings"

	"github.com/cqlkit/cqlkit/pkg/types"
)

// Constraint represents one filter predicate attached to a Scope.
//
// Cassandra's filtering rules are restrictive: a scope may hold at most one
// key constraint (equality or range), at most one secondary-index equality,
// never both, and plain filters only on top of an existing key or index
// base. Those rules are enforced when constraints are added, not at
// execution time.
type Constraint interface {
	constraintNode()
	String() string
}

// KeyEquality restricts the scope to rows whose key matches one of Values.
// Values is a non-empty ordered set; a value may itself be a Scope, in
// which case the executor runs the inner scope first and substitutes its
// result keys before the outer statement is compiled.
type KeyEquality struct {
	Values []types.Value
}

func (k KeyEquality) constraintNode() {}

// String returns a diagnostic form of the constraint.
func (k KeyEquality) String() string {
	if len(k.Values) == 1 {
		return "key ="
	}
	return fmt.Sprintf("key IN[%d]", len(k.Values))
}

// RangeBound is one side of a key range, with its inclusivity.
type RangeBound struct {
	Value     types.Value
	Inclusive bool
}

// KeyRange restricts the scope to a contiguous key range. Either side may
// be nil, meaning unbounded on that side.
type KeyRange struct {
	Lower *RangeBound
	Upper *RangeBound
}

func (k KeyRange) constraintNode() {}

// String returns a diagnostic form of the constraint.
func (k KeyRange) String() string {
	var sb strings.Builder
	sb.WriteString("key")
	if k.Lower != nil {
		if k.Lower.Inclusive {
			sb.WriteString(" >=")
		} else {
			sb.WriteString(" >")
		}
	}
	if k.Upper != nil {
		if k.Upper.Inclusive {
			sb.WriteString(" <=")
		} else {
			sb.WriteString(" <")
		}
	}
	return sb.String()
}

// IndexEquality restricts the scope by equality on a secondary-indexed
// column. Value may be a single value, a Scope subquery, or a multi-value
// set; multi-value sets cannot compile to one statement (CQL refuses IN on
// indexed columns) and are fanned out by the executor instead.
type IndexEquality struct {
	Column string
	Values []types.Value
}

func (i IndexEquality) constraintNode() {}

// String returns a diagnostic form of the constraint.
func (i IndexEquality) String() string {
	if len(i.Values) == 1 {
		return i.Column + " ="
	}
	return fmt.Sprintf("%s IN[%d]", i.Column, len(i.Values))
}

// Filter is a non-indexed equality predicate. It has no standalone CQL
// translation; Cassandra only evaluates it alongside a key or index base,
// so a bare Filter is rejected at build time.
type Filter struct {
	Column string
	Value  types.Value
}

func (f Filter) constraintNode() {}

// String returns a diagnostic form of the constraint.
func (f Filter) String() string {
	return f.Column + " = (filter)"
}

// isKeyConstraint reports whether c addresses the row key.
func isKeyConstraint(c Constraint) bool {
	switch c.(type) {
	case KeyEquality, KeyRange:
		return true
	}
	return false
}

// AsSubquery returns the inner scope if v is a Scope or *Scope.
func AsSubquery(v types.Value) (Scope, bool) {
	switch s := v.(type) {
	case Scope:
		return s, true
	case *Scope:
		if s != nil {
			return *s, true
		}
	}
	return Scope{}, false
}

// HasSubquery reports whether any constraint value is itself a Scope.
// Such a scope is not directly executable; the executor expands it first.
func HasSubquery(c Constraint) bool {
	switch cc := c.(type) {
	case KeyEquality:
		for _, v := range cc.Values {
			if _, ok := AsSubquery(v); ok {
				return true
			}
		}
	case IndexEquality:
		for _, v := range cc.Values {
			if _, ok := AsSubquery(v); ok {
				return true
			}
		}
	}
	return false
}
