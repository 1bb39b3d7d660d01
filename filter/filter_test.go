package filter

import (
	"testing"

	"github.com/hugr-lab/aggql/catalog"
)

func testCatalog(t *testing.T) *catalog.ColumnTypes {
	t.Helper()
	return catalog.MustNew(map[string]catalog.TypeID{
		"region": catalog.TypeIDVarchar,
		"qty":    catalog.TypeIDInteger,
		"price":  catalog.TypeIDDecimal,
		"day":    catalog.TypeIDDate,
		"id":     catalog.TypeIDUUID,
		"active": catalog.TypeIDBoolean,
		"geom":   catalog.TypeIDGeometry,
		"data":   catalog.TypeIDBlob,
		"select": catalog.TypeIDVarchar,
	})
}

func leaf(col, op string, values ...string) *Dimension {
	return &Dimension{ColumnName: col, FilterType: op, Values: values}
}
