package filter

import (
	"github.com/goccy/go-json"

	"github.com/hugr-lab/aggql/catalog"
)

// Document is a JSON query document node.
type Document map[string]any

// JSON returns the document as JSON. Keys are sorted, so equal documents give equal bytes.
func (d Document) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// Put sets a nested value, creating intermediate objects as needed,
// and returns the document for chaining.
func (d Document) Put(value any, path ...string) Document {
	if len(path) == 0 {
		return d
	}
	cur := d
	for _, key := range path[:len(path)-1] {
		next, ok := cur[key].(Document)
		if !ok {
			next = Document{}
			cur[key] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = value
	return d
}

// DSLEncoder compiles filter trees to an Elasticsearch-style bool query.
//
// With a catalog, numeric literals become JSON numbers and boolean literals
// JSON booleans. Without one, every literal is a JSON string.
type DSLEncoder struct {
	r *Renderer
}

// NewDSLEncoder creates a DSL encoder. cat may be nil.
func NewDSLEncoder(cat *catalog.ColumnTypes, opts *EncoderOptions) *DSLEncoder {
	return &DSLEncoder{r: NewRenderer(cat, opts)}
}

// Encode normalizes a node and renders it as a query clause.
// Returns nil for a node that is not a filter.
func (e *DSLEncoder) Encode(n Node) (Document, error) {
	return e.encode(Normalize(n))
}

// EncodeAll renders every node and drops the empty clauses.
func (e *DSLEncoder) EncodeAll(nodes []Node) ([]Document, error) {
	var docs []Document
	for _, n := range nodes {
		doc, err := e.Encode(n)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// EncodeQuery renders the nodes as a top-level query.
func (e *DSLEncoder) EncodeQuery(nodes []Node) (Document, error) {
	docs, err := e.EncodeAll(nodes)
	if err != nil {
		return nil, err
	}
	return Query(docs), nil
}

// Query wraps clauses in bool.filter, or returns match_all when there are none.
func Query(clauses []Document) Document {
	if len(clauses) == 0 {
		return Document{"match_all": Document{}}
	}
	return Document{}.Put(clauses, "bool", "filter")
}

func (e *DSLEncoder) encode(n Node) (Document, error) {
	switch n := n.(type) {
	case *Dimension:
		if n == nil {
			return nil, nil
		}
		return e.encodeDimension(n)
	case *Composite:
		if n == nil {
			return nil, nil
		}
		return e.encodeComposite(n)
	}
	return nil, nil
}

func (e *DSLEncoder) encodeComposite(c *Composite) (Document, error) {
	typ, err := ParseCompositeType(string(c.Type))
	if err != nil {
		return nil, err
	}

	var clauses []Document
	for _, child := range c.Nodes {
		doc, err := e.encode(child)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			clauses = append(clauses, doc)
		}
	}
	if len(clauses) == 0 {
		return nil, nil
	}
	if typ == And {
		return Document{}.Put(clauses, "bool", "must"), nil
	}
	return Document{}.
		Put(clauses, "bool", "should").
		Put(1, "bool", "minimum_should_match"), nil
}

func (e *DSLEncoder) encodeDimension(d *Dimension) (Document, error) {
	if !d.IsFilter() {
		return nil, nil
	}
	op, err := leafOperator(d)
	if err != nil {
		return nil, err
	}
	field := e.r.FieldName(d.ColumnName)

	if d.IsNullOnly() {
		exists := Document{"exists": Document{"field": field}}
		switch op {
		case OpEqual:
			return mustNot(exists), nil
		case OpNotEqual:
			return exists, nil
		}
	}

	switch {
	case op.IsMembership():
		values := make([]any, len(d.Values))
		for i := range d.Values {
			if values[i], err = e.value(d, i); err != nil {
				return nil, err
			}
		}
		var match Document
		if len(values) == 1 {
			match = Document{"term": Document{field: values[0]}}
		} else {
			match = Document{"terms": Document{field: values}}
		}
		if op == OpNotEqual {
			return mustNot(match), nil
		}
		return match, nil

	default:
		lo, hi := op.Bounds()
		bounds := Document{}
		a, err := e.value(d, 0)
		if err != nil {
			return nil, err
		}
		bounds[lo.DSLKey()] = a
		if hi != "" {
			b, err := e.value(d, 1)
			if err != nil {
				return nil, err
			}
			bounds[hi.DSLKey()] = b
		}
		return Document{"range": Document{field: bounds}}, nil
	}
}

func mustNot(clause Document) Document {
	return Document{}.Put([]Document{clause}, "bool", "must_not")
}

// value returns the i-th literal typed for JSON.
func (e *DSLEncoder) value(d *Dimension, i int) (any, error) {
	v := d.Values[i]
	if v == NullSentinel {
		return nil, &LiteralError{Column: d.ColumnName, Value: v, Err: errNullLiteral}
	}
	cat := e.r.Catalog()
	if cat == nil {
		return v, nil
	}
	id, err := cat.Lookup(d.ColumnName)
	if err != nil {
		return nil, err
	}

	switch id.Family() {
	case catalog.FamilyNumeric:
		n, err := parseNumber(v)
		if err != nil {
			return nil, &LiteralError{Column: d.ColumnName, Value: v, Type: id, Err: err}
		}
		// decimal accepts ".5", "+1" and "1." which are not JSON numbers.
		return json.Number(n.String()), nil
	case catalog.FamilyBoolean:
		b, err := parseBool(v)
		if err != nil {
			return nil, &LiteralError{Column: d.ColumnName, Value: v, Type: id, Err: err}
		}
		return b, nil
	case catalog.FamilyGeometry:
		wkt, err := catalog.GeometryWKT(v)
		if err != nil {
			return nil, &LiteralError{Column: d.ColumnName, Value: v, Type: id, Err: err}
		}
		return wkt, nil
	}
	return v, nil
}
