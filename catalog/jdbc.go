package catalog

import "fmt"

// jdbcTypes maps java.sql.Types codes to TypeIDs.
var jdbcTypes = map[int]TypeID{
	-7:   TypeIDBoolean, // BIT
	-6:   TypeIDTinyInt,
	5:    TypeIDSmallInt,
	4:    TypeIDInteger,
	-5:   TypeIDBigInt,
	6:    TypeIDDouble, // FLOAT is double precision in JDBC
	7:    TypeIDFloat,  // REAL
	8:    TypeIDDouble,
	2:    TypeIDDecimal, // NUMERIC
	3:    TypeIDDecimal,
	1:    TypeIDChar,
	12:   TypeIDVarchar,
	-1:   TypeIDVarchar, // LONGVARCHAR
	-15:  TypeIDNChar,
	-9:   TypeIDNVarchar,
	-16:  TypeIDNVarchar, // LONGNVARCHAR
	2005: TypeIDClob,
	2011: TypeIDClob, // NCLOB
	91:   TypeIDDate,
	92:   TypeIDTime,
	93:   TypeIDTimestamp,
	2013: TypeIDTimeTZ,
	2014: TypeIDTimestampTZ,
	-2:   TypeIDBlob, // BINARY
	-3:   TypeIDBlob, // VARBINARY
	-4:   TypeIDBlob, // LONGVARBINARY
	2004: TypeIDBlob,
	16:   TypeIDBoolean,
	2003: TypeIDArray,
	2002: TypeIDStruct,
	0:    TypeIDSQLNull,
	1111: TypeIDUnknown, // OTHER
}

// JDBCType returns the TypeID for a java.sql.Types code.
func JDBCType(code int) (TypeID, bool) {
	id, ok := jdbcTypes[code]
	return id, ok
}

// FromJDBC creates a catalog from java.sql.Types codes, the form reported by
// JDBC ResultSetMetaData.getColumnType.
func FromJDBC(codes map[string]int) (*ColumnTypes, error) {
	ids := make(map[string]TypeID, len(codes))
	for name, code := range codes {
		id, ok := JDBCType(code)
		if !ok {
			return nil, fmt.Errorf("catalog: column %q has unknown JDBC type code %d", name, code)
		}
		ids[name] = id
	}
	return New(ids)
}
