package catalog

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/encoding/wkt"
)

// GeometryExtensionName is the Arrow extension name of WKB geometry columns.
const GeometryExtensionName = "geoarrow.wkb"

// GeometryExtensionType is the Arrow extension type for WKB geometry columns.
// FromArrowSchema maps fields of this type to TypeIDGeometry.
type GeometryExtensionType struct {
	arrow.ExtensionBase
}

// NewGeometryExtensionType creates a geometry extension type over Binary storage.
func NewGeometryExtensionType() *GeometryExtensionType {
	return &GeometryExtensionType{
		ExtensionBase: arrow.ExtensionBase{Storage: arrow.BinaryTypes.Binary},
	}
}

func (g *GeometryExtensionType) ArrayType() reflect.Type {
	return reflect.TypeOf((*array.Binary)(nil))
}

func (g *GeometryExtensionType) ExtensionName() string { return GeometryExtensionName }

func (g *GeometryExtensionType) String() string { return "extension<" + GeometryExtensionName + ">" }

func (g *GeometryExtensionType) Serialize() string { return "" }

func (g *GeometryExtensionType) Deserialize(storageType arrow.DataType, _ string) (arrow.ExtensionType, error) {
	if !arrow.TypeEqual(storageType, arrow.BinaryTypes.Binary) &&
		!arrow.TypeEqual(storageType, arrow.BinaryTypes.LargeBinary) {
		return nil, fmt.Errorf("invalid storage type for geometry: %s (expected Binary or LargeBinary)", storageType)
	}
	return &GeometryExtensionType{ExtensionBase: arrow.ExtensionBase{Storage: storageType}}, nil
}

func (g *GeometryExtensionType) ExtensionEquals(other arrow.ExtensionType) bool {
	o, ok := other.(*GeometryExtensionType)
	return ok && arrow.TypeEqual(g.StorageType(), o.StorageType())
}

type geometryMetadata struct {
	Encoding      string   `json:"encoding,omitempty"`
	SRID          int      `json:"srid,omitempty"`
	GeometryTypes []string `json:"geometry_types,omitempty"`
}

// NewGeometryField creates an Arrow field carrying the geometry extension type.
// geomType narrows the allowed geometry kind ("Point", "Polygon", ...); empty allows any.
func NewGeometryField(name string, nullable bool, srid int, geomType string) arrow.Field {
	ext := NewGeometryExtensionType()
	md := geometryMetadata{Encoding: "WKB", SRID: srid}
	if geomType != "" && !strings.EqualFold(geomType, string(TypeIDGeometry)) {
		md.GeometryTypes = []string{geomType}
	}
	mdJSON, _ := json.Marshal(md)

	return arrow.Field{
		Name:     name,
		Type:     ext,
		Nullable: nullable,
		Metadata: arrow.MetadataFrom(map[string]string{
			"ARROW:extension:name":     ext.ExtensionName(),
			"ARROW:extension:metadata": string(mdJSON),
		}),
	}
}

// ParseGeometry parses a geometry literal.
// Accepts WKT ("POINT (1 2)") or hex-encoded WKB as DuckDB prints it.
func ParseGeometry(s string) (orb.Geometry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty geometry literal")
	}
	if raw, err := hex.DecodeString(s); err == nil {
		g, err := wkb.Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid WKB: %w", err)
		}
		return g, ValidateGeometry(g)
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid WKT: %w", err)
	}
	return g, ValidateGeometry(g)
}

// GeometryWKT parses a geometry literal and returns its canonical WKT text.
func GeometryWKT(s string) (string, error) {
	g, err := ParseGeometry(s)
	if err != nil {
		return "", err
	}
	return wkt.MarshalString(g), nil
}

// ValidateGeometry checks that a geometry is structurally well formed.
func ValidateGeometry(geom orb.Geometry) error {
	if geom == nil {
		return fmt.Errorf("geometry is nil")
	}

	switch g := geom.(type) {
	case orb.Point:
		return nil
	case orb.MultiPoint:
		if len(g) == 0 {
			return fmt.Errorf("multipoint is empty")
		}
	case orb.LineString:
		if len(g) < 2 {
			return fmt.Errorf("linestring must have at least 2 points, has %d", len(g))
		}
	case orb.MultiLineString:
		if len(g) == 0 {
			return fmt.Errorf("multilinestring is empty")
		}
		for i, ls := range g {
			if len(ls) < 2 {
				return fmt.Errorf("multilinestring[%d] must have at least 2 points, has %d", i, len(ls))
			}
		}
	case orb.Polygon:
		if len(g) == 0 {
			return fmt.Errorf("polygon has no rings")
		}
		for i, ring := range g {
			if len(ring) < 4 {
				return fmt.Errorf("polygon ring[%d] must have at least 4 points, has %d", i, len(ring))
			}
			if !ring[0].Equal(ring[len(ring)-1]) {
				return fmt.Errorf("polygon ring[%d] is not closed", i)
			}
		}
	case orb.MultiPolygon:
		if len(g) == 0 {
			return fmt.Errorf("multipolygon is empty")
		}
		for i, poly := range g {
			if err := ValidateGeometry(poly); err != nil {
				return fmt.Errorf("multipolygon[%d]: %w", i, err)
			}
		}
	case orb.Collection:
		if len(g) == 0 {
			return fmt.Errorf("geometry collection is empty")
		}
		for i, geom := range g {
			if err := ValidateGeometry(geom); err != nil {
				return fmt.Errorf("collection[%d]: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("unsupported geometry type: %T", geom)
	}
	return nil
}

func init() {
	_ = arrow.RegisterExtensionType(NewGeometryExtensionType())
}
