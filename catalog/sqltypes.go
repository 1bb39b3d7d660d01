package catalog

import (
	"database/sql"
	"fmt"
)

// FromSQLColumnTypes creates a catalog from database/sql result metadata.
// Each column's DatabaseTypeName is normalized, so "DECIMAL(18,3)" becomes DECIMAL.
func FromSQLColumnTypes(columns []*sql.ColumnType) (*ColumnTypes, error) {
	ids := make(map[string]TypeID, len(columns))
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("catalog: nil column type at position %d", i)
		}
		name := col.DatabaseTypeName()
		if name == "" {
			name = string(TypeIDUnknown)
		}
		ids[col.Name()] = TypeID(name)
	}
	return New(ids)
}
