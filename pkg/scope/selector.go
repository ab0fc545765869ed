package scope

import (
	"strings"

	"github.com/cqlkit/cqlkit/pkg/cqlerr"
)

// Selector describes which columns a scope projects. The zero value
// projects every column.
//
// Three kinds exist: an explicit column set, a contiguous comparator range,
// and relative bounds (first N / last N in comparator order). Range and
// bounds compose: the bound takes a prefix or suffix of the
// range-restricted universe. An explicit set composes with neither.
type Selector struct {
	// Explicit is the explicit column set; nil means not explicit
	Explicit []string

	// From and To bound a contiguous column range; empty means unbounded
	// on that side. HasRange distinguishes "no range" from an unbounded
	// range over everything.
	From     string
	To       string
	HasRange bool

	// First takes the first N columns in comparator order; Last takes the
	// last N in reversed comparator order. At most one is set.
	First int
	Last  int
}

// IsZero reports whether the selector projects every column.
func (s Selector) IsZero() bool {
	return s.Explicit == nil && !s.HasRange && s.First == 0 && s.Last == 0
}

// Reversed reports whether the selector iterates columns in reversed
// comparator order. Over a range, a Last bound operates on the
// range-restricted universe in reversed order.
func (s Selector) Reversed() bool {
	return s.Last > 0
}

// columnCount returns the FIRST clause value, zero when unlimited.
func (s Selector) columnCount() int {
	if s.Last > 0 {
		return s.Last
	}
	return s.First
}

// validate checks selector-kind composability.
func (s Selector) validate() *cqlerr.Error {
	if s.Explicit != nil && (s.HasRange || s.First > 0 || s.Last > 0) {
		return cqlerr.NewValidationError(cqlerr.CodeSelectorConflict,
			"explicit column selection cannot combine with range or first/last bounds")
	}
	if s.First > 0 && s.Last > 0 {
		return cqlerr.NewValidationError(cqlerr.CodeSelectorConflict,
			"first and last bounds are mutually exclusive")
	}
	return nil
}

// projection emits the CQL select expression for the selector.
func (s Selector) projection() string {
	switch {
	case s.Explicit != nil:
		quoted := make([]string, len(s.Explicit))
		for i, col := range s.Explicit {
			quoted[i] = QuoteColumn(col)
		}
		return strings.Join(quoted, ", ")
	case s.HasRange:
		return QuoteColumn(s.From) + ".." + QuoteColumn(s.To)
	case s.First > 0 || s.Last > 0:
		// A bound without a range walks the full comparator universe.
		return QuoteColumn("") + ".." + QuoteColumn("")
	default:
		return "*"
	}
}

// QuoteColumn renders a column name as a quoted CQL term. Column names are
// comparator values, not identifiers, so they appear as string literals.
func QuoteColumn(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
