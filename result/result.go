// Package result decodes executed aggregation rows into an AggregateResult
// addressable by dimension and value.
//
// The index lists columns, then rows, then values, in the order of the
// compiled SELECT list. A missing dimension cell decodes to filter.NullSentinel;
// value cells are never substituted.
package result

import (
	"fmt"
	"strings"

	"github.com/hugr-lab/aggql/agg"
	"github.com/hugr-lab/aggql/filter"
)

// Rows is the raw tabular output of an executed query.
type Rows struct {
	// Columns are the result column names, when the executor reports them.
	Columns []string `json:"columns,omitempty" msgpack:"columns,omitempty"`
	// Types are driver type names parallel to Columns.
	Types []string `json:"types,omitempty" msgpack:"types,omitempty"`
	// Values are the cells; nil is SQL NULL.
	Values [][]*string `json:"values" msgpack:"values"`
}

// ColumnKind tells which part of the config an index entry comes from.
type ColumnKind int

const (
	KindColumn ColumnKind = iota
	KindRow
	KindValue
)

func (k ColumnKind) String() string {
	switch k {
	case KindColumn:
		return "column"
	case KindRow:
		return "row"
	case KindValue:
		return "value"
	}
	return fmt.Sprintf("ColumnKind(%d)", int(k))
}

// IsDimension reports whether the entry is a group key.
func (k ColumnKind) IsDimension() bool { return k == KindColumn || k == KindRow }

// ColumnIndex maps one config entry to its position in a decoded row.
type ColumnIndex struct {
	Kind ColumnKind
	// Name is the dimension column name, or agg.MetricName for a value.
	Name string
	// Index is the position of the entry's cell in each row.
	Index     int
	Dimension *filter.Dimension
	Value     *agg.ValueConfig
}

// ShapeError indicates a row whose width does not match the compiled SELECT list.
type ShapeError struct {
	Row  int
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("row %d has %d cells, expected %d", e.Row, e.Got, e.Want)
}

// BuildIndex lists columns, then rows, then values with their row positions.
// A dimension whose column repeats an earlier one shares its position, matching
// the de-duplicated SELECT list. Without repeats the positions are 0..N-1.
func BuildIndex(cfg agg.AggConfig) []ColumnIndex {
	return BuildIndexWith(cfg, func(d *filter.Dimension) string { return d.ColumnName })
}

// BuildIndexWith is like BuildIndex with a custom dimension key, for SELECT
// lists rendered with column mapping.
func BuildIndexWith(cfg agg.AggConfig, key func(*filter.Dimension) string) []ColumnIndex {
	idx := make([]ColumnIndex, 0, len(cfg.Columns)+len(cfg.Rows)+len(cfg.Values))
	positions := make(map[string]int)
	next := 0

	addDims := func(kind ColumnKind, dims []*filter.Dimension) {
		for _, d := range dims {
			if d == nil {
				continue
			}
			k := key(d)
			pos, ok := positions[k]
			if !ok {
				pos = next
				positions[k] = pos
				next++
			}
			idx = append(idx, ColumnIndex{Kind: kind, Name: d.ColumnName, Index: pos, Dimension: d})
		}
	}
	addDims(KindColumn, cfg.Columns)
	addDims(KindRow, cfg.Rows)

	for i := range cfg.Values {
		v := &cfg.Values[i]
		idx = append(idx, ColumnIndex{Kind: KindValue, Name: agg.MetricName(*v), Index: next, Value: v})
		next++
	}
	return idx
}

// Width returns the number of cells per row an index expects.
func Width(idx []ColumnIndex) int {
	w := 0
	for _, c := range idx {
		if c.Index+1 > w {
			w = c.Index + 1
		}
	}
	return w
}

// AggregateResult is a decoded aggregation result. It is not modified after Decode returns.
type AggregateResult struct {
	Index []ColumnIndex
	Data  [][]string
}

// Decode builds the index for cfg and decodes rows against it.
func Decode(cfg agg.AggConfig, rows *Rows) (*AggregateResult, error) {
	return DecodeIndex(BuildIndex(cfg), rows)
}

// DecodeIndex decodes rows against a prebuilt index.
// Returns *ShapeError for the first row whose width differs from the index width.
func DecodeIndex(idx []ColumnIndex, rows *Rows) (*AggregateResult, error) {
	width := Width(idx)
	dimPos := make([]bool, width)
	for _, c := range idx {
		if c.Kind.IsDimension() {
			dimPos[c.Index] = true
		}
	}

	res := &AggregateResult{Index: idx}
	if rows == nil {
		return res, nil
	}
	res.Data = make([][]string, len(rows.Values))
	for r, row := range rows.Values {
		if len(row) != width {
			return nil, &ShapeError{Row: r, Want: width, Got: len(row)}
		}
		out := make([]string, width)
		for i, cell := range row {
			switch {
			case cell != nil:
				out[i] = *cell
			case dimPos[i]:
				out[i] = filter.NullSentinel
			}
		}
		res.Data[r] = out
	}
	return res, nil
}

// Len returns the number of decoded rows.
func (r *AggregateResult) Len() int { return len(r.Data) }

// Dimensions returns the dimension entries of the index.
func (r *AggregateResult) Dimensions() []ColumnIndex {
	return r.filterIndex(func(c ColumnIndex) bool { return c.Kind.IsDimension() })
}

// Values returns the value entries of the index.
func (r *AggregateResult) Values() []ColumnIndex {
	return r.filterIndex(func(c ColumnIndex) bool { return c.Kind == KindValue })
}

func (r *AggregateResult) filterIndex(keep func(ColumnIndex) bool) []ColumnIndex {
	var out []ColumnIndex
	for _, c := range r.Index {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Column returns the cells of the first entry named name, ignoring case.
func (r *AggregateResult) Column(name string) ([]string, bool) {
	for _, c := range r.Index {
		if strings.EqualFold(c.Name, name) {
			out := make([]string, len(r.Data))
			for i, row := range r.Data {
				out[i] = row[c.Index]
			}
			return out, true
		}
	}
	return nil, false
}

// Key returns the dimension cells of a row in index order, joined by sep.
// Rows with equal keys belong to the same group.
func (r *AggregateResult) Key(row int, sep string) string {
	var parts []string
	for _, c := range r.Index {
		if c.Kind.IsDimension() {
			parts = append(parts, r.Data[row][c.Index])
		}
	}
	return strings.Join(parts, sep)
}
