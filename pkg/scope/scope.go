// Package scope provides immutable, chainable query scopes that compile to
// CQL statements with bound parameters. A Scope accumulates constraints, a
// column selector, a consistency level, and a row limit; every chained call
// returns a new Scope and leaves the receiver usable, so a base scope can
// be branched safely across goroutines without locking.
package scope

import (
	"fmt"

	"github.com/cqlkit/cqlkit/pkg/cqlerr"
	"github.com/cqlkit/cqlkit/pkg/types"
)

// Scope is a pending query against one row container. The zero value is
// not usable; construct with New.
type Scope struct {
	table       string
	keyColumn   string
	constraints []Constraint
	selector    Selector
	consistency types.Consistency
	limit       int
	err         *cqlerr.Error
}

// New creates a scope over the named row container. keyColumn is the
// container's key column name as seen in result rows ("KEY" on classic
// wide-row schemas).
func New(table, keyColumn string) Scope {
	return Scope{table: table, keyColumn: keyColumn}
}

// Table returns the target row container name.
func (s Scope) Table() string { return s.table }

// KeyColumn returns the key column name.
func (s Scope) KeyColumn() string { return s.keyColumn }

// Limit returns the row limit, zero when unlimited.
func (s Scope) Limit() int { return s.limit }

// Consistency returns the consistency level attached to the scope.
func (s Scope) Consistency() types.Consistency { return s.consistency }

// Selector returns the column selector.
func (s Scope) Selector() Selector { return s.selector }

// Constraints returns a copy of the constraint list in chain order.
func (s Scope) Constraints() []Constraint {
	out := make([]Constraint, len(s.constraints))
	copy(out, s.constraints)
	return out
}

// Err returns the first validation error recorded while chaining, if any.
// A scope with a recorded error is inert: further chaining returns it
// unchanged and Compile fails with the recorded error.
func (s Scope) Err() error {
	if s.err != nil {
		return s.err
	}
	return nil
}

// WithConstraint validates c against the constraints already present and
// returns the extended scope, or the validation error that fired. It is
// the explicit form of the chaining methods and performs no I/O.
func (s Scope) WithConstraint(c Constraint) (Scope, error) {
	if s.err != nil {
		return s, s.err
	}
	if verr := s.checkConstraint(c); verr != nil {
		return s, verr
	}
	// Full slice expression: a branched base scope must not see appends
	// made through a sibling.
	out := s
	out.constraints = append(s.constraints[:len(s.constraints):len(s.constraints)], c)
	return out, nil
}

// checkConstraint enforces Cassandra's filter combinability rules.
func (s Scope) checkConstraint(c Constraint) *cqlerr.Error {
	var haveKey, haveIndex bool
	for _, existing := range s.constraints {
		if isKeyConstraint(existing) {
			haveKey = true
		} else if _, ok := existing.(IndexEquality); ok {
			haveIndex = true
		}
	}

	switch cc := c.(type) {
	case KeyEquality:
		if len(cc.Values) == 0 {
			return cqlerr.NewValidationError(cqlerr.CodeEmptyValues,
				"key equality requires at least one value")
		}
		if haveKey {
			return cqlerr.NewValidationError(cqlerr.CodeDuplicateKeyConstraint,
				"scope already has a key constraint")
		}
		if haveIndex {
			return cqlerr.NewValidationError(cqlerr.CodeKeyIndexConflict,
				"key constraints cannot combine with an indexed column constraint")
		}
	case KeyRange:
		if haveKey {
			return cqlerr.NewValidationError(cqlerr.CodeDuplicateKeyConstraint,
				"scope already has a key constraint")
		}
		if haveIndex {
			return cqlerr.NewValidationError(cqlerr.CodeKeyIndexConflict,
				"key constraints cannot combine with an indexed column constraint")
		}
	case IndexEquality:
		if len(cc.Values) == 0 {
			return cqlerr.NewValidationError(cqlerr.CodeEmptyValues,
				fmt.Sprintf("indexed equality on %q requires at least one value", cc.Column))
		}
		if haveKey {
			return cqlerr.NewValidationError(cqlerr.CodeKeyIndexConflict,
				"indexed column constraints cannot combine with a key constraint")
		}
		if haveIndex {
			return cqlerr.NewValidationError(cqlerr.CodeKeyIndexConflict,
				"scope already has an indexed column constraint")
		}
	case Filter:
		// A plain filter is only evaluated alongside a key or index base.
		if !haveKey && !haveIndex {
			return cqlerr.NewValidationError(cqlerr.CodeBareFilter,
				fmt.Sprintf("filter on %q requires a key or indexed constraint first", cc.Column))
		}
	}
	return nil
}

// fail records a validation error on the scope, unless one is already set.
func (s Scope) fail(err *cqlerr.Error) Scope {
	if s.err != nil {
		return s
	}
	out := s
	out.err = err
	return out
}

// chain is WithConstraint with the error folded into the scope, for
// fluent use.
func (s Scope) chain(c Constraint) Scope {
	out, err := s.WithConstraint(c)
	if err != nil {
		if verr, ok := err.(*cqlerr.Error); ok {
			return s.fail(verr)
		}
		return s.fail(cqlerr.NewInternalError("constraint rejected", err))
	}
	return out
}

// Where restricts the scope to rows whose key equals one of values. A
// value may itself be a Scope; the executor expands it before compiling.
func (s Scope) Where(values ...types.Value) Scope {
	return s.chain(KeyEquality{Values: values})
}

// WhereRange restricts the scope to a contiguous key range. Nil bounds
// mean unbounded on that side.
func (s Scope) WhereRange(lower, upper *RangeBound) Scope {
	return s.chain(KeyRange{Lower: lower, Upper: upper})
}

// WhereEquals restricts the scope by equality on a secondary-indexed
// column. Multiple values fan out to independent statements at execution.
func (s Scope) WhereEquals(column string, values ...types.Value) Scope {
	return s.chain(IndexEquality{Column: column, Values: values})
}

// Filtered adds a non-indexed equality predicate on top of an existing key
// or index base.
func (s Scope) Filtered(column string, value types.Value) Scope {
	return s.chain(Filter{Column: column, Value: value})
}

// Select projects exactly the named columns. Column data comes back in
// stored comparator order, not the order given here.
func (s Scope) Select(columns ...string) Scope {
	if s.err != nil {
		return s
	}
	out := s
	out.selector.Explicit = append([]string(nil), columns...)
	if verr := out.selector.validate(); verr != nil {
		return s.fail(verr)
	}
	return out
}

// SelectRange projects the contiguous column range [from, to]. Empty
// strings leave that side unbounded.
func (s Scope) SelectRange(from, to string) Scope {
	if s.err != nil {
		return s
	}
	out := s
	out.selector.From = from
	out.selector.To = to
	out.selector.HasRange = true
	if verr := out.selector.validate(); verr != nil {
		return s.fail(verr)
	}
	return out
}

// First takes the first n columns in comparator order, after any range
// restriction.
func (s Scope) First(n int) Scope {
	if s.err != nil {
		return s
	}
	out := s
	out.selector.First = n
	out.selector.Last = 0
	if verr := out.selector.validate(); verr != nil {
		return s.fail(verr)
	}
	return out
}

// Last takes the last n columns: iteration reverses and the emitted
// statement carries the REVERSED directive.
func (s Scope) Last(n int) Scope {
	if s.err != nil {
		return s
	}
	out := s
	out.selector.Last = n
	out.selector.First = 0
	if verr := out.selector.validate(); verr != nil {
		return s.fail(verr)
	}
	return out
}

// WithLimit caps the number of result rows.
func (s Scope) WithLimit(n int) Scope {
	if s.err != nil {
		return s
	}
	out := s
	out.limit = n
	return out
}

// WithConsistency attaches a consistency level to the scope.
func (s Scope) WithConsistency(c types.Consistency) Scope {
	if s.err != nil {
		return s
	}
	out := s
	out.consistency = c
	return out
}

// ReplaceConstraint returns a scope with the constraint at index i swapped
// for c, re-validated in place. The executor uses this to substitute
// expanded subquery values and fan-out legs.
func (s Scope) ReplaceConstraint(i int, c Constraint) (Scope, error) {
	if s.err != nil {
		return s, s.err
	}
	if i < 0 || i >= len(s.constraints) {
		return s, cqlerr.NewInternalError(fmt.Sprintf("constraint index %d out of range", i), nil)
	}

	rest := make([]Constraint, 0, len(s.constraints)-1)
	rest = append(rest, s.constraints[:i]...)
	rest = append(rest, s.constraints[i+1:]...)
	if verr := (Scope{constraints: rest}).checkConstraint(c); verr != nil {
		return s, verr
	}

	out := s
	out.constraints = make([]Constraint, len(s.constraints))
	copy(out.constraints, s.constraints)
	out.constraints[i] = c
	return out, nil
}

// SelectsOnlyKey reports whether the selector projects nothing but the key
// column. Such a projection can never distinguish a live row from a range
// ghost, so single-row lookups reject it before issuing any statement.
func (s Scope) SelectsOnlyKey() bool {
	if len(s.selector.Explicit) == 0 {
		return false
	}
	for _, col := range s.selector.Explicit {
		if col != s.keyColumn {
			return false
		}
	}
	return true
}
