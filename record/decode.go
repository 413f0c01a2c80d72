package record

import (
	"fmt"
	"strconv"

	"golang.org/x/text/encoding/charmap"

	"schlib/coords"
)

// Int decodes a signed base-10 integer, defaulting to 0.
func (p Properties) Int(key string) int {
	return p.IntDefault(key, 0)
}

// IntDefault decodes a signed base-10 integer, defaulting to def when the
// key is absent or unparseable.
func (p Properties) IntDefault(key string, def int) int {
	raw, ok := p.Raw(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// Bool decodes "T" as true. Emitters favour omission over an explicit "F",
// so absence and "F" are equivalent.
func (p Properties) Bool(key string) bool {
	raw, _ := p.Raw(key)
	return raw == "T"
}

// Real decodes a fixed-point decimal. Zero values are omitted by the
// emitter, so absence defaults to 0.0 rather than signalling missing data.
func (p Properties) Real(key string) float64 {
	raw, ok := p.Raw(key)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// Color is a resolved RGB triple.
type Color struct {
	R, G, B uint8
}

func (c Color) Hex() string { return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B) }

// Color decodes an integer as little-endian packed RGB: bits 0-7 red,
// 8-15 green, 16-23 blue. 0x0000FF is pure red, the inverse of the
// big-endian web convention.
func (p Properties) Color(key string) Color {
	v := p.Int(key)
	return Color{R: uint8(v & 0xFF), G: uint8(v >> 8 & 0xFF), B: uint8(v >> 16 & 0xFF)}
}

// ColorDefault is Color with an explicit fallback for absent keys.
func (p Properties) ColorDefault(key string, def Color) Color {
	if !p.Has(key) {
		return def
	}
	return p.Color(key)
}

// Coord decodes a coordinate in 1/100-inch units. A same-named _FRAC
// sibling refines it by frac/100000 of a unit; the two always combine by
// addition, never independently rounded.
func (p Properties) Coord(key string) float64 {
	v := float64(p.Int(key))
	if frac, ok := p.Raw(key + "_FRAC"); ok {
		if f, err := strconv.ParseFloat(frac, 64); err == nil {
			v += f / 100000.0
		}
	}
	return v
}

// Point decodes the X/Y coordinate pair named by prefix, e.g. "LOCATION"
// for LOCATION.X and LOCATION.Y.
func (p Properties) Point(prefix string) coords.Point {
	return coords.Point{X: p.Coord(prefix + ".X"), Y: p.Coord(prefix + ".Y")}
}

// Text decodes a string value. Raw bytes are Windows-1252 by convention;
// a %UTF8%-prefixed sibling carries a UTF-8 override of the same logical
// field and takes precedence when present.
func (p Properties) Text(key string) string {
	if utf8, ok := p.Raw("%UTF8%" + key); ok && utf8 != "" {
		return utf8
	}
	raw, ok := p.Raw(key)
	if !ok {
		return ""
	}
	decoded, err := charmap.Windows1252.NewDecoder().String(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Points decodes the indexed vertex list driven by LOCATIONCOUNT, with
// 1-based Xn/Yn[_FRAC] keys. EXTRALOCATIONCOUNT extends the list, its
// points numbered continuing from LOCATIONCOUNT+1.
func (p Properties) Points() []coords.Point {
	count := p.Int("LOCATIONCOUNT")
	count += p.Int("EXTRALOCATIONCOUNT")
	if count <= 0 {
		return nil
	}
	pts := make([]coords.Point, 0, count)
	for i := 1; i <= count; i++ {
		n := strconv.Itoa(i)
		pts = append(pts, coords.Point{X: p.Coord("X" + n), Y: p.Coord("Y" + n)})
	}
	return pts
}

// PinConglomerate unpacks the PINCONGLOMERATE bitfield: a 2-bit rotation
// and the name/designator visibility flags.
type PinConglomerate struct {
	Rotation       coords.Orientation
	ShowName       bool
	ShowDesignator bool
}

func (p Properties) PinConglomerate(key string) PinConglomerate {
	v := p.Int(key)
	return PinConglomerate{
		Rotation:       coords.Orientation(v & 3),
		ShowName:       v&8 != 0,
		ShowDesignator: v&16 != 0,
	}
}
