package filter

import (
	"fmt"

	"github.com/hugr-lab/aggql/catalog"
)

// UnsupportedOperatorError indicates a filter operator that cannot be compiled:
// an unknown or empty FilterType on a leaf with values, a wrong operand count,
// or an unknown composite type.
type UnsupportedOperatorError struct {
	Column   string
	Operator string
	Reason   string
}

func (e *UnsupportedOperatorError) Error() string {
	msg := fmt.Sprintf("unsupported operator %q", e.Operator)
	if e.Column != "" {
		msg += fmt.Sprintf(" on column %q", e.Column)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// LiteralError indicates a value that cannot be rendered as a literal of its column type.
type LiteralError struct {
	Column string
	Value  string
	Type   catalog.TypeID
	Err    error
}

func (e *LiteralError) Error() string {
	msg := fmt.Sprintf("invalid literal %q for column %q", e.Value, e.Column)
	if e.Type != "" {
		msg += fmt.Sprintf(" of type %s", e.Type)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LiteralError) Unwrap() error { return e.Err }
