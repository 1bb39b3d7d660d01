package agg

import (
	"fmt"

	"github.com/hugr-lab/aggql/filter"
)

// Definition is the serialisable form of an AggConfig.
type Definition struct {
	Rows    []filter.Config `json:"rows,omitempty" yaml:"rows,omitempty" msgpack:"rows,omitempty"`
	Columns []filter.Config `json:"columns,omitempty" yaml:"columns,omitempty" msgpack:"columns,omitempty"`
	Filters []filter.Config `json:"filters,omitempty" yaml:"filters,omitempty" msgpack:"filters,omitempty"`
	Values  []ValueConfig   `json:"values,omitempty" yaml:"values,omitempty" msgpack:"values,omitempty"`
}

// AggConfig converts the definition. Rows and columns must be dimensions.
func (d Definition) AggConfig() (AggConfig, error) {
	rows, err := dimensions("rows", d.Rows)
	if err != nil {
		return AggConfig{}, err
	}
	columns, err := dimensions("columns", d.Columns)
	if err != nil {
		return AggConfig{}, err
	}
	filters, err := filter.Nodes(d.Filters)
	if err != nil {
		return AggConfig{}, fmt.Errorf("filters: %w", err)
	}
	for i, v := range d.Values {
		if v.Column == "" {
			return AggConfig{}, fmt.Errorf("values[%d]: column is required", i)
		}
	}
	return AggConfig{
		Rows:    rows,
		Columns: columns,
		Filters: filters,
		Values:  append([]ValueConfig(nil), d.Values...),
	}, nil
}

func dimensions(field string, configs []filter.Config) ([]*filter.Dimension, error) {
	if len(configs) == 0 {
		return nil, nil
	}
	out := make([]*filter.Dimension, len(configs))
	for i, c := range configs {
		d, err := c.Dimension()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		out[i] = d
	}
	return out, nil
}

// DefinitionOf converts a config to its serialisable form.
func DefinitionOf(cfg AggConfig) Definition {
	def := Definition{
		Filters: filter.ConfigsOf(cfg.Filters),
		Values:  append([]ValueConfig(nil), cfg.Values...),
	}
	for _, d := range cfg.Rows {
		def.Rows = append(def.Rows, filter.ConfigOf(d))
	}
	for _, d := range cfg.Columns {
		def.Columns = append(def.Columns, filter.ConfigOf(d))
	}
	return def
}
