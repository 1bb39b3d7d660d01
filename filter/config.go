package filter

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Config is the serialisable form of a filter node.
// A config with Type set is a composite; otherwise it is a dimension.
type Config struct {
	Type       string   `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	ColumnName string   `json:"columnName,omitempty" yaml:"columnName,omitempty" msgpack:"columnName,omitempty"`
	FilterType string   `json:"filterType,omitempty" yaml:"filterType,omitempty" msgpack:"filterType,omitempty"`
	Values     []string `json:"values,omitempty" yaml:"values,omitempty" msgpack:"values,omitempty"`
	Children   []Config `json:"children,omitempty" yaml:"children,omitempty" msgpack:"children,omitempty"`
}

// Node converts the config to a filter node.
func (c Config) Node() (Node, error) {
	if c.Type == "" {
		if len(c.Children) > 0 {
			return nil, fmt.Errorf("filter: dimension %q has children but no composite type", c.ColumnName)
		}
		if c.ColumnName == "" {
			return nil, fmt.Errorf("filter: dimension without column name")
		}
		return &Dimension{
			ColumnName: c.ColumnName,
			FilterType: c.FilterType,
			Values:     append([]string(nil), c.Values...),
		}, nil
	}

	typ, err := ParseCompositeType(c.Type)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	nodes, err := Nodes(c.Children)
	if err != nil {
		return nil, err
	}
	return &Composite{Type: typ, Nodes: nodes}, nil
}

// Dimension converts the config to a dimension. Composite configs are rejected.
func (c Config) Dimension() (*Dimension, error) {
	n, err := c.Node()
	if err != nil {
		return nil, err
	}
	d, ok := n.(*Dimension)
	if !ok {
		return nil, fmt.Errorf("filter: expected a dimension, got %s composite", c.Type)
	}
	return d, nil
}

// Nodes converts a list of configs.
func Nodes(configs []Config) ([]Node, error) {
	if len(configs) == 0 {
		return nil, nil
	}
	nodes := make([]Node, len(configs))
	for i, c := range configs {
		n, err := c.Node()
		if err != nil {
			return nil, fmt.Errorf("filter: node %d: %w", i, err)
		}
		nodes[i] = n
	}
	return nodes, nil
}

// ConfigOf converts a node back to its serialisable form.
func ConfigOf(n Node) Config {
	switch n := n.(type) {
	case *Dimension:
		return Config{
			ColumnName: n.ColumnName,
			FilterType: n.FilterType,
			Values:     append([]string(nil), n.Values...),
		}
	case *Composite:
		return Config{Type: string(n.Type), Children: ConfigsOf(n.Nodes)}
	}
	return Config{}
}

// ConfigsOf converts a list of nodes.
func ConfigsOf(nodes []Node) []Config {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Config, len(nodes))
	for i, n := range nodes {
		out[i] = ConfigOf(n)
	}
	return out
}

// ParseJSON parses a JSON array of filter nodes.
func ParseJSON(data []byte) ([]Node, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var configs []Config
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("filter: failed to parse JSON: %w", err)
	}
	return Nodes(configs)
}
