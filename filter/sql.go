package filter

import (
	"strings"

	"github.com/hugr-lab/aggql/catalog"
)

// SQLEncoder compiles filter trees to SQL predicates.
type SQLEncoder struct {
	r *Renderer
}

// NewSQLEncoder creates a SQL encoder. If opts is nil, default options are used.
func NewSQLEncoder(cat *catalog.ColumnTypes, opts *EncoderOptions) *SQLEncoder {
	return &SQLEncoder{r: NewRenderer(cat, opts)}
}

// Renderer returns the renderer used for column references and literals.
func (e *SQLEncoder) Renderer() *Renderer { return e.r }

// Encode normalizes a node and renders it as a SQL predicate.
// Returns "" for a node that is not a filter.
func (e *SQLEncoder) Encode(n Node) (string, error) {
	return e.encode(Normalize(n))
}

// EncodeAll renders every node and drops the empty fragments.
func (e *SQLEncoder) EncodeAll(nodes []Node) ([]string, error) {
	var parts []string
	for _, n := range nodes {
		s, err := e.Encode(n)
		if err != nil {
			return nil, err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts, nil
}

// EncodeWhere renders the nodes as a complete WHERE clause.
// Returns "" when no node is a filter.
func (e *SQLEncoder) EncodeWhere(nodes []Node) (string, error) {
	parts, err := e.EncodeAll(nodes)
	if err != nil {
		return "", err
	}
	return Where(parts), nil
}

// Where joins predicate fragments into a WHERE clause.
func Where(fragments []string) string {
	if len(fragments) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(fragments, "\nAND ")
}

func (e *SQLEncoder) encode(n Node) (string, error) {
	switch n := n.(type) {
	case *Dimension:
		if n == nil {
			return "", nil
		}
		return e.encodeDimension(n)
	case *Composite:
		if n == nil {
			return "", nil
		}
		return e.encodeComposite(n)
	}
	return "", nil
}

func (e *SQLEncoder) encodeComposite(c *Composite) (string, error) {
	typ, err := ParseCompositeType(string(c.Type))
	if err != nil {
		return "", err
	}

	var parts []string
	for _, child := range c.Nodes {
		s, err := e.encode(child)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " "+string(typ)+" ") + ")", nil
}

func (e *SQLEncoder) encodeDimension(d *Dimension) (string, error) {
	if !d.IsFilter() {
		return "", nil
	}
	op, err := leafOperator(d)
	if err != nil {
		return "", err
	}
	col := e.r.ColumnRef(d)

	if d.IsNullOnly() {
		switch op {
		case OpEqual:
			return col + " IS NULL", nil
		case OpNotEqual:
			return col + " IS NOT NULL", nil
		}
	}

	switch {
	case op.IsMembership():
		lits := make([]string, len(d.Values))
		for i := range d.Values {
			if lits[i], err = e.r.Literal(d, i); err != nil {
				return "", err
			}
		}
		kw := " IN ("
		if op == OpNotEqual {
			kw = " NOT IN ("
		}
		return col + kw + strings.Join(lits, ", ") + ")", nil

	case op.IsRange():
		lo, hi := op.Bounds()
		a, err := e.r.Literal(d, 0)
		if err != nil {
			return "", err
		}
		b, err := e.r.Literal(d, 1)
		if err != nil {
			return "", err
		}
		return "(" + col + string(lo) + a + " AND " + col + string(hi) + b + ")", nil

	default:
		lo, _ := op.Bounds()
		a, err := e.r.Literal(d, 0)
		if err != nil {
			return "", err
		}
		return "(" + col + string(lo) + a + ")", nil
	}
}

// leafOperator resolves the operator of a leaf with values and checks its operand count.
func leafOperator(d *Dimension) (Operator, error) {
	if strings.TrimSpace(d.FilterType) == "" {
		return "", &UnsupportedOperatorError{Column: d.ColumnName, Reason: "filter values without an operator"}
	}
	op, err := ParseOperator(d.FilterType)
	if err != nil {
		return "", &UnsupportedOperatorError{Column: d.ColumnName, Operator: d.FilterType, Reason: err.Error()}
	}
	if op.IsRange() && len(d.Values) < 2 {
		return "", &UnsupportedOperatorError{Column: d.ColumnName, Operator: d.FilterType, Reason: "range needs two values"}
	}
	return op, nil
}
