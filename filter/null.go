package filter

// Normalize returns a copy of the tree with null separation applied.
//
// A leaf whose operator is = or ≠ and whose values mix NullSentinel with
// other values becomes a Composite of the leaf without the sentinel and a leaf
// carrying only the sentinel, joined by OR for = and AND for ≠. Other nodes are
// returned as copies. The input is never modified.
func Normalize(n Node) Node {
	switch n := n.(type) {
	case *Dimension:
		return separateNull(n)
	case *Composite:
		if n == nil {
			return n
		}
		return &Composite{Type: n.Type, Nodes: NormalizeAll(n.Nodes)}
	}
	return n
}

// NormalizeAll applies Normalize to every node.
func NormalizeAll(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Normalize(n)
	}
	return out
}

func separateNull(d *Dimension) Node {
	if d == nil {
		return d
	}
	leaf := &Dimension{
		ColumnName: d.ColumnName,
		FilterType: d.FilterType,
		Values:     append([]string(nil), d.Values...),
	}
	if !d.HasNull() || d.IsNullOnly() {
		return leaf
	}

	op, err := ParseOperator(d.FilterType)
	if err != nil || !op.IsMembership() {
		// Rendering reports the operator or sentinel misuse.
		return leaf
	}

	values := make([]string, 0, len(d.Values))
	for _, v := range d.Values {
		if v != NullSentinel {
			values = append(values, v)
		}
	}
	leaf.Values = values

	typ := Or
	if op == OpNotEqual {
		typ = And
	}
	return &Composite{
		Type: typ,
		Nodes: []Node{
			leaf,
			&Dimension{ColumnName: d.ColumnName, FilterType: d.FilterType, Values: []string{NullSentinel}},
		},
	}
}
