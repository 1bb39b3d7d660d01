package catalog

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// FromArrowSchema creates a catalog from the fields of an Arrow schema.
// Dictionary fields take their value type; extension fields map by name
// (geoarrow.wkb → GEOMETRY, arrow.uuid → UUID) or fall back to storage.
func FromArrowSchema(schema *arrow.Schema) (*ColumnTypes, error) {
	if schema == nil {
		return nil, fmt.Errorf("catalog: nil arrow schema")
	}
	ids := make(map[string]TypeID, schema.NumFields())
	for _, f := range schema.Fields() {
		ids[f.Name] = ArrowType(f.Type)
	}
	return New(ids)
}

// ArrowType returns the TypeID matching an Arrow data type.
func ArrowType(dt arrow.DataType) TypeID {
	if dt == nil {
		return TypeIDUnknown
	}
	switch dt.ID() {
	case arrow.NULL:
		return TypeIDSQLNull
	case arrow.BOOL:
		return TypeIDBoolean
	case arrow.INT8:
		return TypeIDTinyInt
	case arrow.INT16:
		return TypeIDSmallInt
	case arrow.INT32:
		return TypeIDInteger
	case arrow.INT64:
		return TypeIDBigInt
	case arrow.UINT8:
		return TypeIDUTinyInt
	case arrow.UINT16:
		return TypeIDUSmallInt
	case arrow.UINT32:
		return TypeIDUInteger
	case arrow.UINT64:
		return TypeIDUBigInt
	case arrow.FLOAT16, arrow.FLOAT32:
		return TypeIDFloat
	case arrow.FLOAT64:
		return TypeIDDouble
	case arrow.DECIMAL128, arrow.DECIMAL256:
		return TypeIDDecimal
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		return TypeIDVarchar
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.BINARY_VIEW, arrow.FIXED_SIZE_BINARY:
		return TypeIDBlob
	case arrow.DATE32, arrow.DATE64:
		return TypeIDDate
	case arrow.TIME32, arrow.TIME64:
		return TypeIDTime
	case arrow.TIMESTAMP:
		return timestampType(dt.(*arrow.TimestampType))
	case arrow.INTERVAL_MONTHS, arrow.INTERVAL_DAY_TIME, arrow.INTERVAL_MONTH_DAY_NANO, arrow.DURATION:
		return TypeIDInterval
	case arrow.LIST, arrow.LARGE_LIST, arrow.LIST_VIEW, arrow.LARGE_LIST_VIEW:
		return TypeIDList
	case arrow.FIXED_SIZE_LIST:
		return TypeIDArray
	case arrow.STRUCT:
		return TypeIDStruct
	case arrow.MAP:
		return TypeIDMap
	case arrow.DICTIONARY:
		return ArrowType(dt.(*arrow.DictionaryType).ValueType)
	case arrow.EXTENSION:
		ext := dt.(arrow.ExtensionType)
		switch ext.ExtensionName() {
		case GeometryExtensionName:
			return TypeIDGeometry
		case "arrow.uuid":
			return TypeIDUUID
		}
		return ArrowType(ext.StorageType())
	}
	return TypeIDUnknown
}

func timestampType(ts *arrow.TimestampType) TypeID {
	if ts.TimeZone != "" {
		return TypeIDTimestampTZ
	}
	switch ts.Unit {
	case arrow.Second:
		return TypeIDTimestampSec
	case arrow.Millisecond:
		return TypeIDTimestampMs
	case arrow.Nanosecond:
		return TypeIDTimestampNs
	}
	return TypeIDTimestamp
}
