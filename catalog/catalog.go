// Package catalog maps column names to SQL types for literal rendering.
//
// A ColumnTypes catalog is built once per data source and is read-only
// afterwards, so a single instance can be shared by concurrent compilations.
// Lookups ignore case: "Region", "REGION" and "region" name the same column.
//
// Catalogs can be built from:
//   - explicit type names: FromNames(map[string]string{"region": "VARCHAR"})
//   - JDBC type codes: FromJDBC(map[string]int{"region": 12})
//   - Arrow schemas: FromArrowSchema(schema)
//   - database/sql result metadata: FromSQLColumnTypes(rows.ColumnTypes())
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// ColumnTypes is an immutable, case-insensitive column name → TypeID mapping.
type ColumnTypes struct {
	types map[string]TypeID
	names map[string]string // folded key -> name as supplied
}

// LookupError indicates a column is missing from the catalog.
// The catalog must describe every column a query renders literals for.
type LookupError struct {
	Column string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("column %q not found in type catalog", e.Column)
}

// New creates a catalog from column types. Type IDs are normalized.
// Returns an error if two names differ only by case and map to different types.
func New(types map[string]TypeID) (*ColumnTypes, error) {
	c := &ColumnTypes{
		types: make(map[string]TypeID, len(types)),
		names: make(map[string]string, len(types)),
	}

	// Sorted insertion keeps conflict reporting deterministic.
	keys := make([]string, 0, len(types))
	for name := range types {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	for _, name := range keys {
		if err := c.add(name, types[name]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FromNames creates a catalog from type names as reported by a driver or written in a config file.
func FromNames(types map[string]string) (*ColumnTypes, error) {
	ids := make(map[string]TypeID, len(types))
	for name, typeName := range types {
		ids[name] = TypeID(typeName)
	}
	return New(ids)
}

// MustNew is like New but panics on error. Intended for tests and static tables.
func MustNew(types map[string]TypeID) *ColumnTypes {
	c, err := New(types)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *ColumnTypes) add(name string, id TypeID) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("catalog: empty column name")
	}
	key := foldName(name)
	id = id.Normalize()
	if existing, ok := c.types[key]; ok && existing != id {
		return fmt.Errorf("catalog: column %q declared as both %s and %s", name, existing, id)
	}
	c.types[key] = id
	c.names[key] = name
	return nil
}

// Lookup returns the type of a column.
// Returns *LookupError if the column is unknown or the catalog is nil.
func (c *ColumnTypes) Lookup(column string) (TypeID, error) {
	if c == nil {
		return "", &LookupError{Column: column}
	}
	id, ok := c.types[foldName(column)]
	if !ok {
		return "", &LookupError{Column: column}
	}
	return id, nil
}

// Has reports whether the catalog describes the column.
func (c *ColumnTypes) Has(column string) bool {
	_, err := c.Lookup(column)
	return err == nil
}

// Len returns the number of columns in the catalog.
func (c *ColumnTypes) Len() int {
	if c == nil {
		return 0
	}
	return len(c.types)
}

// Columns returns the column names in sorted order, spelled as supplied.
func (c *ColumnTypes) Columns() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Names returns the catalog as column name → type name, the form accepted by FromNames.
func (c *ColumnTypes) Names() map[string]string {
	if c == nil {
		return nil
	}
	out := make(map[string]string, len(c.types))
	for key, id := range c.types {
		out[c.names[key]] = string(id)
	}
	return out
}

func foldName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
