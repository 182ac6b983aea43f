// Package compare implements the closed set of threshold operators shared
// by scalar checks.
package compare

import (
	"cmp"
	"fmt"
)

// Op identifies one comparison operator.
type Op int

const (
	Gt Op = iota
	Ge
	Lt
	Le
	Eq
	Ne
)

var opNames = map[string]Op{
	"gt": Gt,
	"ge": Ge,
	"lt": Lt,
	"le": Le,
	"eq": Eq,
	"ne": Ne,
}

// Parse resolves an operator name. Unknown names are rejected here so a bad
// comparator fails a run before any API call is made.
func Parse(name string) (Op, error) {
	op, ok := opNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown comparator %q (want gt, ge, lt, le, eq or ne)", name)
	}
	return op, nil
}

// String returns the canonical operator name.
func (o Op) String() string {
	switch o {
	case Gt:
		return "gt"
	case Ge:
		return "ge"
	case Lt:
		return "lt"
	case Le:
		return "le"
	case Eq:
		return "eq"
	case Ne:
		return "ne"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Apply reports whether observed relates to threshold under the operator.
// Both operands must already share a type; there is no coercion.
func Apply[T cmp.Ordered](op Op, observed, threshold T) bool {
	switch op {
	case Gt:
		return observed > threshold
	case Ge:
		return observed >= threshold
	case Lt:
		return observed < threshold
	case Le:
		return observed <= threshold
	case Eq:
		return observed == threshold
	case Ne:
		return observed != threshold
	}
	return false
}
