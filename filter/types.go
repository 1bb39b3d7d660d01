package filter

import (
	"fmt"
	"strings"
)

// NullSentinel is the literal that stands for SQL NULL in filter values.
const NullSentinel = "#NULL"

// Node is a filter tree node. It is implemented by *Dimension and *Composite only.
type Node interface {
	// Children returns nil for a leaf and the child list for a composite.
	Children() []Node

	node()
}

// Dimension is a column reference used as a group key or, when it has values, as a predicate.
type Dimension struct {
	ColumnName string
	// FilterType is the operator. Empty when the dimension is only a group key.
	FilterType string
	// Values holds operands: one for =, ≠ and single-bound ranges, two for range forms.
	// = and ≠ accept any number of values.
	Values []string
}

func (d *Dimension) Children() []Node { return nil }
func (d *Dimension) node()            {}

// IsFilter reports whether the dimension carries filter values.
func (d *Dimension) IsFilter() bool {
	return d != nil && len(d.Values) > 0
}

// IsNullOnly reports whether every value is the null sentinel.
func (d *Dimension) IsNullOnly() bool {
	if !d.IsFilter() {
		return false
	}
	for _, v := range d.Values {
		if v != NullSentinel {
			return false
		}
	}
	return true
}

// HasNull reports whether any value is the null sentinel.
func (d *Dimension) HasNull() bool {
	if d == nil {
		return false
	}
	for _, v := range d.Values {
		if v == NullSentinel {
			return true
		}
	}
	return false
}

// CompositeType is the boolean connective of a Composite.
type CompositeType string

const (
	And CompositeType = "AND"
	Or  CompositeType = "OR"
)

// ParseCompositeType parses "and"/"or" case-insensitively.
func ParseCompositeType(s string) (CompositeType, error) {
	switch CompositeType(strings.ToUpper(strings.TrimSpace(s))) {
	case And:
		return And, nil
	case Or:
		return Or, nil
	}
	return "", &UnsupportedOperatorError{Operator: s, Reason: "composite type must be AND or OR"}
}

// Composite groups child nodes under AND or OR.
type Composite struct {
	Type  CompositeType
	Nodes []Node
}

func (c *Composite) Children() []Node { return c.Nodes }
func (c *Composite) node()            {}

// Operator is a canonical filter operator.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "≠"
	OpGreater        Operator = ">"
	OpLess           Operator = "<"
	OpGreaterOrEqual Operator = "≥"
	OpLessOrEqual    Operator = "≤"
	OpOpenClosed     Operator = "(a,b]"
	OpClosedOpen     Operator = "[a,b)"
	OpOpen           Operator = "(a,b)"
	OpClosed         Operator = "[a,b]"
)

var operatorAliases = map[string]Operator{
	"=":     OpEqual,
	"==":    OpEqual,
	"eq":    OpEqual,
	"≠":     OpNotEqual,
	"!=":    OpNotEqual,
	"<>":    OpNotEqual,
	"ne":    OpNotEqual,
	">":     OpGreater,
	"gt":    OpGreater,
	"<":     OpLess,
	"lt":    OpLess,
	"≥":     OpGreaterOrEqual,
	">=":    OpGreaterOrEqual,
	"gte":   OpGreaterOrEqual,
	"≤":     OpLessOrEqual,
	"<=":    OpLessOrEqual,
	"lte":   OpLessOrEqual,
	"(a,b]": OpOpenClosed,
	"[a,b)": OpClosedOpen,
	"(a,b)": OpOpen,
	"[a,b]": OpClosed,
}

// ParseOperator resolves an operator or one of its aliases.
// Whitespace inside range forms is ignored, so "[a, b)" is accepted.
func ParseOperator(s string) (Operator, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if op, ok := operatorAliases[key]; ok {
		return op, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// IsMembership reports whether the operator is = or ≠.
func (op Operator) IsMembership() bool {
	return op == OpEqual || op == OpNotEqual
}

// IsRange reports whether the operator takes two bounds.
func (op Operator) IsRange() bool {
	switch op {
	case OpOpenClosed, OpClosedOpen, OpOpen, OpClosed:
		return true
	}
	return false
}

// Bounds returns the comparison for each side of the operator.
// Single-bound operators return an empty hi.
func (op Operator) Bounds() (lo, hi Comparison) {
	switch op {
	case OpGreater:
		return GreaterThan, ""
	case OpGreaterOrEqual:
		return GreaterOrEqual, ""
	case OpLess:
		return LessThan, ""
	case OpLessOrEqual:
		return LessOrEqual, ""
	case OpOpenClosed:
		return GreaterThan, LessOrEqual
	case OpClosedOpen:
		return GreaterOrEqual, LessThan
	case OpOpen:
		return GreaterThan, LessThan
	case OpClosed:
		return GreaterOrEqual, LessOrEqual
	}
	return "", ""
}

// Comparison is a single bound of a range predicate.
type Comparison string

const (
	GreaterThan    Comparison = ">"
	GreaterOrEqual Comparison = ">="
	LessThan       Comparison = "<"
	LessOrEqual    Comparison = "<="
)

// DSLKey returns the range query key for the comparison (gt, gte, lt, lte).
func (c Comparison) DSLKey() string {
	switch c {
	case GreaterThan:
		return "gt"
	case GreaterOrEqual:
		return "gte"
	case LessThan:
		return "lt"
	case LessOrEqual:
		return "lte"
	}
	return ""
}
