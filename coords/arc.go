package coords

import "math"

// CircleAngle converts a physical angle on an ellipse with radii r (X axis)
// and r2 (Y axis) to the parameter angle of the underlying unit circle.
// Start and end angles stored in the file are physical angles on the final
// ellipse; sampling the arc with them directly draws visibly wrong arcs
// whenever r != r2. Angles are in degrees. Axis-aligned angles are fixed
// points of the conversion.
func CircleAngle(deg, r, r2 float64) float64 {
	if r == r2 || r == 0 || r2 == 0 {
		return deg
	}
	rad := deg * math.Pi / 180
	out := math.Atan2(r2*math.Sin(rad), r*math.Cos(rad)) * 180 / math.Pi
	// atan2 collapses to (-180, 180]; keep the turn count of the input.
	for out-deg > 180 {
		out -= 360
	}
	for deg-out > 180 {
		out += 360
	}
	return out
}

// CubicSegment is one cubic bezier piece of a sampled arc.
type CubicSegment struct {
	C1, C2, End Point
}

// EllipsePoint returns the point at parameter angle deg (degrees) on the
// ellipse centred at c with radii rx, ry.
func EllipsePoint(c Point, rx, ry, deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{X: c.X + rx*math.Cos(rad), Y: c.Y + ry*math.Sin(rad)}
}

// ArcToBeziers approximates the elliptical arc from startDeg to endDeg
// (parameter angles, counter-clockwise) with cubic segments of at most a
// quarter turn each. The caller must have already applied CircleAngle to
// both ends when the radii differ.
func ArcToBeziers(c Point, rx, ry, startDeg, endDeg float64) (start Point, segs []CubicSegment) {
	sweep := endDeg - startDeg
	if sweep <= 0 {
		sweep += 360
	}
	start = EllipsePoint(c, rx, ry, startDeg)
	n := int(math.Ceil(sweep / 90))
	if n < 1 {
		n = 1
	}
	step := sweep / float64(n)
	for i := 0; i < n; i++ {
		a0 := (startDeg + float64(i)*step) * math.Pi / 180
		a1 := (startDeg + float64(i+1)*step) * math.Pi / 180
		// Standard control-point distance for a circular arc segment.
		k := 4.0 / 3.0 * math.Tan((a1-a0)/4)
		p0x, p0y := math.Cos(a0), math.Sin(a0)
		p1x, p1y := math.Cos(a1), math.Sin(a1)
		segs = append(segs, CubicSegment{
			C1:  Point{X: c.X + rx*(p0x-k*p0y), Y: c.Y + ry*(p0y+k*p0x)},
			C2:  Point{X: c.X + rx*(p1x+k*p1y), Y: c.Y + ry*(p1y-k*p1x)},
			End: Point{X: c.X + rx*p1x, Y: c.Y + ry*p1y},
		})
	}
	return start, segs
}

// Orientation is a rotation in 90 degree increments:
// 0 = right, 1 = up, 2 = left, 3 = down.
type Orientation int

const (
	Right Orientation = iota
	Up
	Left
	Down
)

// Dir returns the unit direction vector in schematic coordinates
// (Y increasing upward).
func (o Orientation) Dir() Point {
	switch o & 3 {
	case Up:
		return Point{0, 1}
	case Left:
		return Point{-1, 0}
	case Down:
		return Point{0, -1}
	default:
		return Point{1, 0}
	}
}

// Degrees returns the counter-clockwise rotation angle.
func (o Orientation) Degrees() float64 { return float64(o&3) * 90 }
