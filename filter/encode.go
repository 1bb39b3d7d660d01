package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hugr-lab/aggql/catalog"
)

// EncoderOptions configures encoding behavior.
type EncoderOptions struct {
	// ColumnMapping maps original column names to target names.
	// Columns not in the map use their original names.
	ColumnMapping map[string]string

	// ColumnExpressions maps column names to SQL expressions.
	// Takes precedence over ColumnMapping. Ignored by the DSL encoder.
	ColumnExpressions map[string]string

	// QuoteIdentifiers double-quotes column names that are not plain identifiers.
	// Off by default: column names are emitted verbatim.
	QuoteIdentifiers bool
}

// Renderer renders column references and literals for one catalog.
// It holds no mutable state and is safe for concurrent use.
type Renderer struct {
	catalog *catalog.ColumnTypes
	opts    EncoderOptions
}

// NewRenderer creates a renderer. If opts is nil, default options are used.
func NewRenderer(cat *catalog.ColumnTypes, opts *EncoderOptions) *Renderer {
	r := &Renderer{catalog: cat}
	if opts != nil {
		r.opts = *opts
	}
	return r
}

// Catalog returns the column type catalog used for literals.
func (r *Renderer) Catalog() *catalog.ColumnTypes { return r.catalog }

// ColumnRef renders the column of a dimension as it appears in SQL.
func (r *Renderer) ColumnRef(d *Dimension) string {
	return r.Column(d.ColumnName)
}

// Column renders a column name as it appears in SQL.
func (r *Renderer) Column(name string) string {
	if expr, ok := r.opts.ColumnExpressions[name]; ok {
		return expr
	}
	name = r.FieldName(name)
	if r.opts.QuoteIdentifiers {
		return quoteIdentifier(name)
	}
	return name
}

// FieldName applies ColumnMapping only. The DSL encoder uses it for document field names.
func (r *Renderer) FieldName(name string) string {
	if mapped, ok := r.opts.ColumnMapping[name]; ok {
		return mapped
	}
	return name
}

// Literal renders the i-th value of a dimension as a SQL literal typed by the catalog.
//   - character, temporal and UUID columns: single-quoted, quotes doubled
//   - numeric columns: unquoted, must parse as a decimal number
//   - boolean columns: TRUE or FALSE
//   - geometry columns: ST_GeomFromText('<wkt>')
//   - anything else: single-quoted, cast by the engine
//
// Returns *catalog.LookupError if the column is not in the catalog and
// *LiteralError if the value does not fit the column type.
func (r *Renderer) Literal(d *Dimension, i int) (string, error) {
	if i < 0 || i >= len(d.Values) {
		return "", &UnsupportedOperatorError{
			Column:   d.ColumnName,
			Operator: d.FilterType,
			Reason:   fmt.Sprintf("missing operand %d", i+1),
		}
	}
	v := d.Values[i]
	if v == NullSentinel {
		return "", &LiteralError{Column: d.ColumnName, Value: v, Err: errNullLiteral}
	}

	id, err := r.catalog.Lookup(d.ColumnName)
	if err != nil {
		return "", err
	}

	switch id.Family() {
	case catalog.FamilyNumeric:
		if _, err := parseNumber(v); err != nil {
			return "", &LiteralError{Column: d.ColumnName, Value: v, Type: id, Err: err}
		}
		return strings.TrimSpace(v), nil
	case catalog.FamilyBoolean:
		b, err := parseBool(v)
		if err != nil {
			return "", &LiteralError{Column: d.ColumnName, Value: v, Type: id, Err: err}
		}
		if b {
			return "TRUE", nil
		}
		return "FALSE", nil
	case catalog.FamilyGeometry:
		wkt, err := catalog.GeometryWKT(v)
		if err != nil {
			return "", &LiteralError{Column: d.ColumnName, Value: v, Type: id, Err: err}
		}
		return "ST_GeomFromText(" + quoteLiteral(wkt) + ")", nil
	}
	// Character, temporal, UUID and unrecognised types.
	return quoteLiteral(v), nil
}

var errNullLiteral = errors.New("null is not a literal")

// parseNumber validates a numeric literal.
func parseNumber(v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a number")
	}
	return d, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("not a boolean")
	}
	return b, nil
}

// escapeString escapes single quotes in a string value for SQL.
func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quoteLiteral returns a SQL string literal with proper escaping.
func quoteLiteral(s string) string {
	return "'" + escapeString(s) + "'"
}

// quoteIdentifier returns a quoted identifier if needed.
func quoteIdentifier(name string) string {
	if needsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// needsQuoting returns true if the identifier needs quoting.
func needsQuoting(name string) bool {
	if len(name) == 0 {
		return true
	}

	c := name[0]
	if !isLetter(c) && c != '_' {
		return true
	}
	for i := 1; i < len(name); i++ {
		c = name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return true
		}
	}

	_, reserved := reservedWords[strings.ToUpper(name)]
	return reserved
}

var reservedWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`SELECT FROM WHERE AND OR NOT NULL TRUE FALSE
		INSERT UPDATE DELETE CREATE DROP ALTER TABLE INDEX JOIN LEFT RIGHT INNER OUTER
		ON AS IN IS LIKE BETWEEN EXISTS CASE WHEN THEN ELSE END ORDER BY GROUP HAVING
		LIMIT OFFSET UNION EXCEPT INTERSECT ALL DISTINCT VALUES SET INTO PRIMARY KEY
		FOREIGN REFERENCES CONSTRAINT DEFAULT CHECK UNIQUE ASC DESC NULLS FIRST LAST
		CAST INTERVAL DATE TIME TIMESTAMP`) {
		reservedWords[w] = struct{}{}
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
