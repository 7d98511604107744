// Expression filtering. The grammar (comparisons, equality with string
// literals, and/or combinators) is evaluated by expr-lang with each row's
// cells as the environment.
//
// This file reports failures as errors; the degrade-to-identity fallback for
// malformed expressions is the tool layer's contract, not the table's.
package table

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// Filter evaluates src as a boolean predicate over t's columns and returns a
// new Table with only the matching rows. The column set and order are always
// preserved, including for zero matches.
//
// Errors: a compile failure, a reference to an unknown column, or a row where
// the predicate does not produce a bool. Rows with nil cells that make the
// predicate fail are excluded from the result rather than erroring.
func Filter(t *Table, src string) (*Table, error) {
	program, err := expr.Compile(src, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}

	var matched []int
	for ri := 0; ri < t.NumRows(); ri++ {
		row := t.Row(ri)
		out, err := expr.Run(program, row)
		if err != nil {
			// A nil cell (empty CSV field) makes comparisons undefined for
			// that row only; it is excluded, not an error for the table.
			if rowHasNil(row) {
				continue
			}
			return nil, fmt.Errorf("evaluate filter %q on row %d: %w", src, ri, err)
		}
		keep, ok := out.(bool)
		if !ok {
			return nil, fmt.Errorf("filter %q is not a boolean predicate (row %d yielded %T)", src, ri, out)
		}
		if keep {
			matched = append(matched, ri)
		}
	}

	return t.Select(matched), nil
}

func rowHasNil(row map[string]any) bool {
	for _, v := range row {
		if v == nil {
			return true
		}
	}
	return false
}
