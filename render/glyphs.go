package render

import (
	"math"
	"strings"

	"schlib/coords"
	"schlib/record"
	"schlib/sch"
)

// frame is a local drawing frame: translation plus quarter-turn rotation.
// Glyph geometry is authored with +X pointing away from the glyph's
// attachment and mapped into sheet coordinates per point.
type frame struct {
	m coords.Matrix
}

func newFrame(origin coords.Point, o coords.Orientation) frame {
	rad := o.Degrees() * math.Pi / 180
	return frame{m: coords.Rotate(rad).Multiply(coords.Translate(origin.X, origin.Y))}
}

func (f frame) at(x, y float64) coords.Point {
	return f.m.Transform(coords.Point{X: x, Y: y})
}

func (r *renderer) frameLine(f frame, x1, y1, x2, y2 float64, s StrokeStyle) {
	r.canvas.MoveTo(f.at(x1, y1))
	r.canvas.LineTo(f.at(x2, y2))
	r.canvas.Stroke(s)
}

func (r *renderer) framePolyline(f frame, pts [][2]float64, s StrokeStyle) {
	r.canvas.MoveTo(f.at(pts[0][0], pts[0][1]))
	for _, p := range pts[1:] {
		r.canvas.LineTo(f.at(p[0], p[1]))
	}
	r.canvas.Stroke(s)
}

func (r *renderer) framePolygon(f frame, pts [][2]float64, fill record.Color) {
	r.canvas.MoveTo(f.at(pts[0][0], pts[0][1]))
	for _, p := range pts[1:] {
		r.canvas.LineTo(f.at(p[0], p[1]))
	}
	r.canvas.ClosePath()
	r.canvas.Fill(fill)
}

// arrowhead is the filled arrow shared by pin markers and the power-port
// arrow style, pointing toward +X with its tip at local (5, 0).
var arrowhead = [][2]float64{{0, 0}, {-2, -3}, {5, 0}, {-2, 3}}

func translated(pts [][2]float64, dx, dy float64) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		out[i] = [2]float64{p[0] + dx, p[1] + dy}
	}
	return out
}

func mirroredX(pts [][2]float64) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		out[i] = [2]float64{-p[0], p[1]}
	}
	return out
}

// drawPin draws the pin line from its attachment point outward, the
// negative-logic bubble and clock arrow at the component edge, the
// electrical-type marker, and the name/designator text gated by the
// conglomerate visibility bits.
func (r *renderer) drawPin(o *sch.Pin) {
	f := newFrame(o.Location, o.Rotation)
	hair := StrokeStyle{Color: black, Width: Hairline}

	lineStart := 0.0
	if o.OuterEdge != 0 {
		r.pathEllipse(f.at(3.15, 0), 2.85, 2.85)
		r.canvas.Stroke(hair)
		lineStart = 6
	}
	if o.InnerEdge == 3 {
		r.framePolyline(f, [][2]float64{{0, 2.5}, {-5, 0}, {0, -2.5}}, hair)
	}

	// Input and io markers push the line start out by 5 and sit at the
	// new start, tip reaching back to the old one.
	switch o.Electrical {
	case record.PinInput:
		lineStart += 5
		r.framePolygon(f, translated(mirroredX(arrowhead), lineStart, 0), black)
	case record.PinOutput:
		r.framePolygon(f, translated([][2]float64{{0, 2.5}, {7, 0}, {0, -2.5}}, lineStart, 0), black)
	case record.PinIO:
		lineStart += 5
		r.framePolygon(f, translated([][2]float64{{-5, 0}, {0, 2.5}, {5, 0}, {0, -2.5}}, lineStart, 0), black)
	}
	if o.Length > lineStart {
		r.frameLine(f, lineStart, 0, o.Length, 0, StrokeStyle{Color: black, Width: 1})
	}

	dir := o.Rotation.Dir()
	vertical := o.Rotation&1 != 0
	angle := 0.0
	if vertical {
		angle = 90
	}
	// The orientation's second bit flips which side of the attachment
	// point reads as "inside the component".
	flipped := o.Rotation&2 != 0

	if o.ShowName && o.Name != "" {
		anchor := AnchorEnd
		if flipped {
			anchor = AnchorStart
		}
		r.canvas.Text(TextRun{
			Pos:      coords.Point{X: o.Location.X - 7*dir.X, Y: o.Location.Y - 7*dir.Y},
			Angle:    angle,
			Anchor:   anchor,
			Baseline: BaselineMiddle,
			Color:    black,
			Spans:    OverlineSpans(o.Name),
		})
	}
	if o.ShowDesig && o.Designator != "" {
		anchor := AnchorStart
		if flipped {
			anchor = AnchorEnd
		}
		r.canvas.Text(TextRun{
			Pos:      coords.Point{X: o.Location.X + 9*dir.X, Y: o.Location.Y + 9*dir.Y},
			Angle:    angle,
			Anchor:   anchor,
			Baseline: BaselineBottom,
			Color:    black,
			Spans:    Plain(o.Designator),
		})
	}
}

// drawPowerPort draws the rail/ground/arrow glyph for the port's style and
// places the net name past the glyph. Style 0 (circle) and the wave/earth
// styles have no settled glyph here and degrade to the bare connection
// point with the name adjacent.
func (r *renderer) drawPowerPort(o *sch.PowerPort) {
	f := newFrame(o.Location, o.Orientation)
	s := StrokeStyle{Color: o.Color, Width: Hairline}
	heavy := StrokeStyle{Color: o.Color, Width: 1.5}

	offset := 0.0
	switch {
	case o.CrossSheet:
		r.frameLine(f, 0, 0, 5, 0, s)
		r.framePolyline(f, [][2]float64{{8, 4}, {5, 0}, {8, -4}}, s)
		r.framePolyline(f, [][2]float64{{11, 4}, {8, 0}, {11, -4}}, s)
		offset = 14
	case o.Style == record.PowerStyleGround:
		r.frameLine(f, 0, 0, 10, 0, s)
		r.frameLine(f, 10, -7, 10, 7, heavy)
		r.frameLine(f, 13, -4, 13, 4, heavy)
		r.frameLine(f, 16, -1, 16, 1, heavy)
		offset = 20
	case o.Style == record.PowerStyleBar:
		r.frameLine(f, 0, 0, 10, 0, s)
		r.frameLine(f, 10, -7, 10, 7, heavy)
		offset = 12
	case o.Style == record.PowerStyleArrow:
		r.frameLine(f, 0, 0, 5, 0, s)
		r.framePolygon(f, translated(arrowhead, 5, 0), o.Color)
		offset = 12
	}

	if !o.ShowNetName || o.Text == "" {
		return
	}
	run := TextRun{FontID: o.FontID, Color: o.Color, Spans: Plain(o.Text)}
	switch o.Orientation & 3 {
	case coords.Left:
		run.Pos = coords.Point{X: o.Location.X - offset, Y: o.Location.Y}
		run.Anchor, run.Baseline = AnchorEnd, BaselineMiddle
	case coords.Down:
		run.Pos = coords.Point{X: o.Location.X, Y: o.Location.Y - offset}
		run.Anchor, run.Baseline = AnchorMiddle, BaselineTop
	case coords.Up:
		run.Pos = coords.Point{X: o.Location.X, Y: o.Location.Y + offset}
		run.Anchor, run.Baseline = AnchorMiddle, BaselineBottom
	default:
		run.Pos = coords.Point{X: o.Location.X + offset, Y: o.Location.Y}
		run.Anchor, run.Baseline = AnchorStart, BaselineMiddle
	}
	r.canvas.Text(run)
}

// drawPort draws the harness-shaped port outline and its name. Style 7 is
// the vertical variant, rotated to read bottom-to-top.
func (r *renderer) drawPort(o *sch.Port) {
	w := o.Width
	if w <= 0 {
		return
	}
	var pts [][2]float64
	if o.IOType != 0 {
		pts = [][2]float64{{0, 0}, {5, 5}, {w - 5, 5}, {w, 0}, {w - 5, -5}, {5, -5}}
	} else {
		pts = [][2]float64{{0, 5}, {w - 5, 5}, {w, 0}, {w - 5, -5}, {0, -5}}
	}

	vertical := o.Style == 7
	place := func(p [2]float64) coords.Point {
		if vertical {
			return coords.Point{X: o.Location.X - p[1], Y: o.Location.Y + w - p[0]}
		}
		return coords.Point{X: o.Location.X + p[0], Y: o.Location.Y + p[1]}
	}

	r.canvas.MoveTo(place(pts[0]))
	for _, p := range pts[1:] {
		r.canvas.LineTo(place(p))
	}
	r.canvas.ClosePath()
	r.canvas.FillStroke(o.AreaColor, StrokeStyle{Color: o.Color, Width: Hairline})

	tx := w - 10.0
	anchor := AnchorEnd
	if (o.Alignment == 2) == vertical {
		tx = 10
		anchor = AnchorStart
	}
	run := TextRun{
		Anchor:   anchor,
		Baseline: BaselineMiddle,
		FontID:   o.FontID,
		Color:    o.TextColor,
		Spans:    OverlineSpans(o.Name),
	}
	if vertical {
		run.Pos = coords.Point{X: o.Location.X, Y: o.Location.Y + tx}
		run.Angle = 90
	} else {
		run.Pos = coords.Point{X: o.Location.X + tx, Y: o.Location.Y}
	}
	r.canvas.Text(run)
}

func (r *renderer) drawNoERC(o *sch.NoERC) {
	s := StrokeStyle{Color: o.Color, Width: Hairline}
	x, y := o.Location.X, o.Location.Y
	r.canvas.MoveTo(coords.Point{X: x - 3, Y: y - 3})
	r.canvas.LineTo(coords.Point{X: x + 3, Y: y + 3})
	r.canvas.Stroke(s)
	r.canvas.MoveTo(coords.Point{X: x - 3, Y: y + 3})
	r.canvas.LineTo(coords.Point{X: x + 3, Y: y - 3})
	r.canvas.Stroke(s)
}

// drawTextFrame emits the frame's optional background and its text, one
// run per line. "~1" is a hard line break; soft wrapping approximates
// each character as one en wide.
func (r *renderer) drawTextFrame(o *sch.TextFrame) {
	rc := o.Rect.Canon()
	if o.Solid {
		r.pathRect(rc, 0, 0)
		r.canvas.Fill(o.AreaColor)
	}
	if o.Text == "" {
		return
	}
	limit := 0
	if o.WordWrap {
		limit = int(rc.Width() / 4.375)
	}
	line := 0
	for _, hard := range strings.Split(o.Text, "~1") {
		for _, soft := range wrapLine(hard, limit) {
			line++
			r.canvas.Text(TextRun{
				Pos:      coords.Point{X: rc.Min.X, Y: rc.Max.Y - 10*float64(line)},
				Anchor:   AnchorStart,
				Baseline: BaselineBottom,
				FontID:   o.FontID,
				Color:    o.TextStyle.Color,
				Spans:    Plain(soft),
			})
		}
	}
}

// wrapLine greedily wraps text at word boundaries to at most limit
// characters per line. A non-positive limit disables wrapping.
func wrapLine(s string, limit int) []string {
	if limit <= 0 {
		return []string{s}
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if len(cur)+1+len(w) <= limit {
			cur += " " + w
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	return append(lines, cur)
}

// OverlineSpans splits a pin/net/port name into plain and overlined
// fragments. Each overlined character is followed by a backslash in the
// stored text; a single leading backslash is decoration and dropped.
func OverlineSpans(name string) []Span {
	if !strings.Contains(name, "\\") {
		return Plain(name)
	}
	name = strings.TrimPrefix(name, "\\")
	var spans []Span
	var cur []rune
	curOver := false
	flush := func() {
		if len(cur) > 0 {
			spans = append(spans, Span{Text: string(cur), Overline: curOver})
			cur = cur[:0]
		}
	}
	runes := []rune(name)
	for i := 0; i < len(runes); {
		over := i+1 < len(runes) && runes[i+1] == '\\'
		if over != curOver {
			flush()
			curOver = over
		}
		cur = append(cur, runes[i])
		if over {
			i += 2
		} else {
			i++
		}
	}
	flush()
	return spans
}

// sheetFrame draws the page border, the lettered/numbered reference zones
// and the optional title block.
func (r *renderer) sheetFrame(s *sch.Sheet) {
	if !s.BorderOn {
		return
	}
	w, h := s.Width, s.Height
	hair := StrokeStyle{Color: black, Width: Hairline}

	outer := coords.Rect{Max: coords.Point{X: w, Y: h}}
	r.pathRect(outer, 0, 0)
	r.canvas.Stroke(hair)
	inner := coords.Rect{
		Min: coords.Point{X: 20, Y: 20},
		Max: coords.Point{X: w - 20, Y: h - 20},
	}
	r.pathRect(inner, 0, 0)
	r.canvas.Stroke(hair)

	r.referenceZones(w, h, hair)
	if s.TitleBlockOn {
		r.titleBlock(s, w, h, hair)
	}
}

// referenceZones labels four zones per edge: digits along the horizontal
// edges, letters along the vertical ones, with tick separators between
// zones.
func (r *renderer) referenceZones(w, h float64, hair StrokeStyle) {
	zone := func(p coords.Point, label string) {
		r.canvas.Text(TextRun{
			Pos:      p,
			Anchor:   AnchorMiddle,
			Baseline: BaselineMiddle,
			Color:    black,
			Spans:    Plain(label),
		})
	}
	for n := 0; n < 4; n++ {
		cx := w / 4 * (float64(n) + 0.5)
		cy := h / 4 * (float64(n) + 0.5)
		digit := string(rune('1' + n))
		letter := string(rune('A' + n))
		zone(coords.Point{X: cx, Y: 10}, digit)
		zone(coords.Point{X: cx, Y: h - 10}, digit)
		zone(coords.Point{X: 10, Y: cy}, letter)
		zone(coords.Point{X: w - 10, Y: cy}, letter)

		if n == 3 {
			continue
		}
		bx := w / 4 * float64(n+1)
		by := h / 4 * float64(n+1)
		r.canvas.MoveTo(coords.Point{X: bx, Y: 0})
		r.canvas.LineTo(coords.Point{X: bx, Y: 20})
		r.canvas.Stroke(hair)
		r.canvas.MoveTo(coords.Point{X: bx, Y: h - 20})
		r.canvas.LineTo(coords.Point{X: bx, Y: h})
		r.canvas.Stroke(hair)
		r.canvas.MoveTo(coords.Point{X: 0, Y: by})
		r.canvas.LineTo(coords.Point{X: 20, Y: by})
		r.canvas.Stroke(hair)
		r.canvas.MoveTo(coords.Point{X: w - 20, Y: by})
		r.canvas.LineTo(coords.Point{X: w, Y: by})
		r.canvas.Stroke(hair)
	}
}

// titleBlock draws the standard block in the bottom-right corner of the
// inner frame: 350 wide, 80 tall, with caption cells for title, size,
// number, revision, date and file.
func (r *renderer) titleBlock(s *sch.Sheet, w, h float64, hair StrokeStyle) {
	ox, oy := w-20, 20.0
	line := func(x1, y1, x2, y2 float64) {
		r.canvas.MoveTo(coords.Point{X: ox + x1, Y: oy + y1})
		r.canvas.LineTo(coords.Point{X: ox + x2, Y: oy + y2})
		r.canvas.Stroke(hair)
	}
	r.canvas.MoveTo(coords.Point{X: ox - 350, Y: oy})
	r.canvas.LineTo(coords.Point{X: ox - 350, Y: oy + 80})
	r.canvas.LineTo(coords.Point{X: ox, Y: oy + 80})
	r.canvas.Stroke(hair)
	line(-350, 50, 0, 50)
	line(-300, 50, -300, 20)
	line(-100, 50, -100, 20)
	line(-350, 20, 0, 20)
	line(-350, 10, 0, 10)
	line(-150, 20, -150, 0)

	cell := func(x, y float64, text string, baseline Baseline) {
		if text == "" {
			return
		}
		r.canvas.Text(TextRun{
			Pos:      coords.Point{X: ox + x, Y: oy + y},
			Anchor:   AnchorStart,
			Baseline: baseline,
			Color:    black,
			Spans:    Plain(text),
		})
	}
	cell(-345, 70, "Title", BaselineBottom)
	cell(-345, 55, r.opts.Title, BaselineBottom)
	cell(-345, 40, "Size", BaselineBottom)
	cell(-340, 30, s.StyleName(), BaselineMiddle)
	cell(-295, 40, "Number", BaselineBottom)
	cell(-95, 40, "Revision", BaselineBottom)
	cell(-345, 10, "Date", BaselineBottom)
	cell(-300, 10, r.opts.DateStamp, BaselineBottom)
	cell(-345, 0, "File", BaselineBottom)
	cell(-300, 0, r.opts.FileName, BaselineBottom)
	cell(-145, 10, "Sheet", BaselineBottom)
	cell(-117, 10, "of", BaselineBottom)
	cell(-145, 0, "Drawn By:", BaselineBottom)
}
