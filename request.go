package aggql

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/hugr-lab/aggql/agg"
	"github.com/hugr-lab/aggql/catalog"
)

// Request is one aggregation query as received by the transports and the CLI.
type Request struct {
	// Table is a table name, or a SELECT statement when HasSubQuery is set.
	Table       string `json:"table" yaml:"table" msgpack:"table"`
	HasSubQuery bool   `json:"hasSubQuery,omitempty" yaml:"hasSubQuery,omitempty" msgpack:"hasSubQuery,omitempty"`

	Definition agg.Definition `json:"definition" yaml:"definition" msgpack:"definition"`

	// Catalog maps column names to type names. Required to compile SQL
	// unless the executor can describe the table.
	Catalog map[string]string `json:"catalog,omitempty" yaml:"catalog,omitempty" msgpack:"catalog,omitempty"`
}

// DecodeRequest parses a JSON or YAML request document.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return req, fmt.Errorf("%w: empty document", ErrInvalidRequest)
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &req); err != nil {
			return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return req, nil
	}
	if err := yaml.Unmarshal(trimmed, &req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return req, nil
}

// AggConfig converts the request definition.
func (r Request) AggConfig() (agg.AggConfig, error) {
	cfg, err := r.Definition.AggConfig()
	if err != nil {
		return agg.AggConfig{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return cfg, nil
}

// ColumnTypes builds the request catalog. Returns nil without error when the request has none.
func (r Request) ColumnTypes() (*catalog.ColumnTypes, error) {
	if len(r.Catalog) == 0 {
		return nil, nil
	}
	cat, err := catalog.FromNames(r.Catalog)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return cat, nil
}

// source returns the relation to describe: the table name or the parenthesised subquery.
func (r Request) source() string {
	if r.HasSubQuery {
		return "(" + r.Table + ")"
	}
	return r.Table
}
