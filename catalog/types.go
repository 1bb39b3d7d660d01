package catalog

import "strings"

// TypeID identifies the SQL type of a catalog column.
// Names follow DuckDB logical types; JDBC and common SQL spellings normalize onto them.
type TypeID string

const (
	TypeIDInvalid      TypeID = "INVALID"
	TypeIDSQLNull      TypeID = "SQLNULL"
	TypeIDUnknown      TypeID = "UNKNOWN"
	TypeIDBoolean      TypeID = "BOOLEAN"
	TypeIDTinyInt      TypeID = "TINYINT"
	TypeIDSmallInt     TypeID = "SMALLINT"
	TypeIDInteger      TypeID = "INTEGER"
	TypeIDBigInt       TypeID = "BIGINT"
	TypeIDDate         TypeID = "DATE"
	TypeIDTime         TypeID = "TIME"
	TypeIDTimestampSec TypeID = "TIMESTAMP_SEC"
	TypeIDTimestampMs  TypeID = "TIMESTAMP_MS"
	TypeIDTimestamp    TypeID = "TIMESTAMP"
	TypeIDTimestampNs  TypeID = "TIMESTAMP_NS"
	TypeIDDecimal      TypeID = "DECIMAL"
	TypeIDFloat        TypeID = "FLOAT"
	TypeIDDouble       TypeID = "DOUBLE"
	TypeIDChar         TypeID = "CHAR"
	TypeIDVarchar      TypeID = "VARCHAR"
	TypeIDNChar        TypeID = "NCHAR"
	TypeIDNVarchar     TypeID = "NVARCHAR"
	TypeIDClob         TypeID = "CLOB"
	TypeIDBlob         TypeID = "BLOB"
	TypeIDInterval     TypeID = "INTERVAL"
	TypeIDUTinyInt     TypeID = "UTINYINT"
	TypeIDUSmallInt    TypeID = "USMALLINT"
	TypeIDUInteger     TypeID = "UINTEGER"
	TypeIDUBigInt      TypeID = "UBIGINT"
	TypeIDTimestampTZ  TypeID = "TIMESTAMP_TZ"
	TypeIDTimeTZ       TypeID = "TIME_TZ"
	TypeIDHugeInt      TypeID = "HUGEINT"
	TypeIDUHugeInt     TypeID = "UHUGEINT"
	TypeIDUUID         TypeID = "UUID"
	TypeIDStruct       TypeID = "STRUCT"
	TypeIDList         TypeID = "LIST"
	TypeIDMap          TypeID = "MAP"
	TypeIDEnum         TypeID = "ENUM"
	TypeIDArray        TypeID = "ARRAY"
	TypeIDGeometry     TypeID = "GEOMETRY"
	TypeIDJSON         TypeID = "JSON"
)

// typeIDMapping maps alternative spellings to the canonical TypeID.
// Drivers report either the short form (e.g., "TIMESTAMP_TZ"), the full SQL
// form (e.g., "TIMESTAMP WITH TIME ZONE") or a JDBC name (e.g., "LONGVARCHAR").
var typeIDMapping = map[TypeID]TypeID{
	// Timestamp types
	"TIMESTAMP WITH TIME ZONE":    TypeIDTimestampTZ,
	"TIMESTAMP_WITH_TIMEZONE":     TypeIDTimestampTZ,
	"TIMESTAMPTZ":                 TypeIDTimestampTZ,
	"TIME WITH TIME ZONE":         TypeIDTimeTZ,
	"TIME_WITH_TIMEZONE":          TypeIDTimeTZ,
	"TIMETZ":                      TypeIDTimeTZ,
	"TIMESTAMP_S":                 TypeIDTimestampSec,
	"TIMESTAMP WITHOUT TIME ZONE": TypeIDTimestamp,
	"DATETIME":                    TypeIDTimestamp,
	// Integer types
	"INT":     TypeIDInteger,
	"INT4":    TypeIDInteger,
	"SIGNED":  TypeIDInteger,
	"INT8":    TypeIDBigInt,
	"LONG":    TypeIDBigInt,
	"INT2":    TypeIDSmallInt,
	"SHORT":   TypeIDSmallInt,
	"INT1":    TypeIDTinyInt,
	"UINT8":   TypeIDUBigInt,
	"UINT4":   TypeIDUInteger,
	"UINT2":   TypeIDUSmallInt,
	"UINT1":   TypeIDUTinyInt,
	"INT128":  TypeIDHugeInt,
	"UINT128": TypeIDUHugeInt,
	// Exact and approximate numerics
	"NUMERIC":          TypeIDDecimal,
	"FLOAT4":           TypeIDFloat,
	"FLOAT8":           TypeIDDouble,
	"REAL":             TypeIDFloat,
	"DOUBLE PRECISION": TypeIDDouble,
	// Character types
	"STRING":                     TypeIDVarchar,
	"TEXT":                       TypeIDVarchar,
	"TINYTEXT":                   TypeIDVarchar,
	"MEDIUMTEXT":                 TypeIDVarchar,
	"LONGTEXT":                   TypeIDVarchar,
	"CITEXT":                     TypeIDVarchar,
	"NTEXT":                      TypeIDNVarchar,
	"CHARACTER VARYING":          TypeIDVarchar,
	"CHAR VARYING":               TypeIDVarchar,
	"VARCHAR2":                   TypeIDVarchar,
	"NVARCHAR2":                  TypeIDNVarchar,
	"NATIONAL CHARACTER VARYING": TypeIDNVarchar,
	"NATIONAL CHARACTER":         TypeIDNChar,
	"CHARACTER":                  TypeIDChar,
	"BPCHAR":                     TypeIDChar,
	"LONGVARCHAR":                TypeIDVarchar,
	"LONGNVARCHAR":               TypeIDNVarchar,
	"NCLOB":                      TypeIDClob,
	"JSONB":                      TypeIDJSON,
	// Binary types
	"BYTEA":         TypeIDBlob,
	"BINARY":        TypeIDBlob,
	"VARBINARY":     TypeIDBlob,
	"LONGVARBINARY": TypeIDBlob,
	// Boolean
	"BOOL": TypeIDBoolean,
	"BIT":  TypeIDBoolean,
}

// Normalize returns the canonical TypeID for a driver-reported type name.
// Case and surrounding whitespace are ignored, type parameters such as
// "(18,3)" are dropped and a trailing "[]" denotes a LIST.
func (t TypeID) Normalize() TypeID {
	name := strings.ToUpper(strings.TrimSpace(string(t)))
	if strings.HasSuffix(name, "[]") {
		return TypeIDList
	}
	if i := strings.IndexByte(name, '('); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	if mapped, ok := typeIDMapping[TypeID(name)]; ok {
		return mapped
	}
	return TypeID(name)
}

// Family groups types that share a literal rendering rule.
type Family int

const (
	// FamilyOther literals are single-quoted and left to the engine to cast.
	FamilyOther Family = iota
	// FamilyCharacter literals are single-quoted.
	FamilyCharacter
	// FamilyTemporal literals are single-quoted.
	FamilyTemporal
	// FamilyUUID literals are single-quoted.
	FamilyUUID
	// FamilyNumeric literals are emitted unquoted after validation.
	FamilyNumeric
	// FamilyBoolean literals are emitted as TRUE or FALSE.
	FamilyBoolean
	// FamilyGeometry literals are WKT wrapped in ST_GeomFromText.
	FamilyGeometry
)

var familyNames = map[Family]string{
	FamilyOther:     "other",
	FamilyCharacter: "character",
	FamilyTemporal:  "temporal",
	FamilyUUID:      "uuid",
	FamilyNumeric:   "numeric",
	FamilyBoolean:   "boolean",
	FamilyGeometry:  "geometry",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "other"
}

// Family classifies the type for literal rendering.
func (t TypeID) Family() Family {
	t = t.Normalize()
	switch {
	case t.IsCharacter():
		return FamilyCharacter
	case t.IsTemporal():
		return FamilyTemporal
	case t == TypeIDUUID:
		return FamilyUUID
	case t.IsNumeric():
		return FamilyNumeric
	case t == TypeIDBoolean:
		return FamilyBoolean
	case t == TypeIDGeometry:
		return FamilyGeometry
	}
	return FamilyOther
}

// Quoted reports whether SQL literals of this type are wrapped in single quotes.
func (t TypeID) Quoted() bool {
	switch t.Family() {
	case FamilyCharacter, FamilyTemporal, FamilyUUID, FamilyOther:
		return true
	}
	return false
}

// IsNumeric returns true if the type is a numeric type.
func (t TypeID) IsNumeric() bool {
	switch t {
	case TypeIDTinyInt, TypeIDSmallInt, TypeIDInteger, TypeIDBigInt,
		TypeIDUTinyInt, TypeIDUSmallInt, TypeIDUInteger, TypeIDUBigInt,
		TypeIDHugeInt, TypeIDUHugeInt, TypeIDFloat, TypeIDDouble, TypeIDDecimal:
		return true
	}
	return false
}

// IsInteger returns true if the type is an integer type.
func (t TypeID) IsInteger() bool {
	switch t {
	case TypeIDTinyInt, TypeIDSmallInt, TypeIDInteger, TypeIDBigInt,
		TypeIDUTinyInt, TypeIDUSmallInt, TypeIDUInteger, TypeIDUBigInt,
		TypeIDHugeInt, TypeIDUHugeInt:
		return true
	}
	return false
}

// IsTemporal returns true if the type is a date/time type.
func (t TypeID) IsTemporal() bool {
	switch t {
	case TypeIDDate, TypeIDTime, TypeIDTimeTZ,
		TypeIDTimestamp, TypeIDTimestampTZ, TypeIDTimestampMs, TypeIDTimestampNs, TypeIDTimestampSec,
		TypeIDInterval:
		return true
	}
	return false
}

// IsCharacter returns true if the type is a character string type.
func (t TypeID) IsCharacter() bool {
	switch t {
	case TypeIDVarchar, TypeIDChar, TypeIDNChar, TypeIDNVarchar, TypeIDClob, TypeIDEnum, TypeIDJSON:
		return true
	}
	return false
}

// IsComplex returns true if the type is a complex/nested type.
func (t TypeID) IsComplex() bool {
	switch t {
	case TypeIDList, TypeIDStruct, TypeIDMap, TypeIDArray:
		return true
	}
	return false
}
