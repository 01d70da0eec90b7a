package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/cridenour/go-postgis"
)

// GeometryPoint WGS84 点 以十六进制 EWKB 读写
type GeometryPoint struct {
	// 经度
	Lon float64
	// 纬度
	Lat float64
}

// SRID WGS84
const SRID = 4326

func (g GeometryPoint) point() postgis.PointS {
	return postgis.PointS{SRID: SRID, X: g.Lon, Y: g.Lat}
}

// Scan 接受十六进制 EWKB 的 string 或 []byte
func (g *GeometryPoint) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*g = GeometryPoint{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("types: cannot scan %T into GeometryPoint", src)
	}
	var p postgis.PointS
	if err := p.Scan(raw); err != nil {
		return err
	}
	g.Lon, g.Lat = p.X, p.Y
	return nil
}

// Value 十六进制 EWKB
func (g GeometryPoint) Value() (driver.Value, error) {
	p := g.point()
	v, err := p.Value()
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, errors.New("types: unexpected postgis value")
	}
	return hex.EncodeToString(b), nil
}

// GetType 实现 postgis.Geometry 同 postgis.PointS
func (g GeometryPoint) GetType() uint32 {
	return 0x20000001
}

// Write 实现 postgis.Geometry
func (g GeometryPoint) Write(buffer *bytes.Buffer) error {
	p := g.point()
	return p.Write(buffer)
}

func (g GeometryPoint) MarshalJSON() ([]byte, error) {
	return g.EncodeGeoJson(), nil
}

type GeometryPointJson struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func (g *GeometryPoint) UnmarshalJSON(b []byte) error {
	var data GeometryPointJson
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}
	if len(data.Coordinates) != 2 {
		return fmt.Errorf("types: point needs 2 coordinates, got %d", len(data.Coordinates))
	}
	g.Lon, g.Lat = data.Coordinates[0], data.Coordinates[1]
	return nil
}

// EncodeGeoJson GeoJSON Point
func (g GeometryPoint) EncodeGeoJson() []byte {
	return []byte(`{"type":"Point","coordinates":[` +
		strconv.FormatFloat(g.Lon, 'f', -1, 64) + `,` +
		strconv.FormatFloat(g.Lat, 'f', -1, 64) + `]}`)
}
