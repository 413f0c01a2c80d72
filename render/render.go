package render

import (
	"fmt"

	"schlib/coords"
	"schlib/filters"
	"schlib/observability"
	"schlib/record"
	"schlib/sch"
)

// Hairline is the stroke width used for outlines whose record carries no
// line width of its own.
const Hairline = 0.6

// kappa scales a corner radius to the bezier control distance for a
// quarter-circle.
const kappa = 0.5522847498307936

var black = record.Color{}

// Options tunes one render pass.
type Options struct {
	// Part overrides every component's selected part when positive.
	Part int

	// Title block fields. Zero values leave the corresponding cell empty.
	Title     string
	FileName  string
	DateStamp string

	Logger observability.Logger
}

// Render walks the tree and draws it onto the canvas. Drawing is
// best-effort: objects the renderer cannot place are skipped with a log
// line, never an error. The only errors are the canvas's own.
func Render(tree *sch.Tree, c Canvas, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger{}
	}
	sheet := tree.Sheet
	if sheet == nil {
		return fmt.Errorf("render: tree has no sheet")
	}
	doc := Document{
		Width:      sheet.Width,
		Height:     sheet.Height,
		Background: sheet.AreaColor,
		Fonts:      sheet.Fonts,
		SystemFont: sheet.SystemFontID,
	}
	if err := c.Start(doc); err != nil {
		return err
	}

	r := &renderer{canvas: c, tree: tree, doc: doc, opts: opts, log: opts.Logger}
	r.sheetFrame(sheet)
	for _, i := range tree.Roots {
		r.draw(tree.Objects[i], nil)
	}
	return c.Finish()
}

type renderer struct {
	canvas Canvas
	tree   *sch.Tree
	doc    Document
	opts   Options
	log    observability.Logger
}

// draw emits one object's geometry and recurses into its visible
// children. owner is the innermost enclosing component, nil at sheet
// level.
func (r *renderer) draw(obj sch.Object, owner *sch.Component) {
	switch o := obj.(type) {
	case *sch.Sheet:
		// Page-level state was consumed at Start.
	case *sch.Component:
		// Components contribute no geometry of their own.
	case *sch.Template:
		// Template references name an external sheet background.

	case *sch.Wire:
		r.strokePolyline(o.Points, o.LineStyle)
	case *sch.Bus:
		r.strokePolyline(o.Points, o.LineStyle)
	case *sch.Polyline:
		r.strokePolyline(o.Points, o.LineStyle)
	case *sch.Line:
		r.canvas.MoveTo(o.A)
		r.canvas.LineTo(o.B)
		r.canvas.Stroke(strokeOf(o.LineStyle))
	case *sch.BusEntry:
		r.canvas.MoveTo(o.Location)
		r.canvas.LineTo(o.Corner)
		r.canvas.Stroke(strokeOf(o.LineStyle))

	case *sch.Polygon:
		if len(o.Points) < 2 {
			break
		}
		r.pathPolyline(o.Points)
		r.canvas.ClosePath()
		r.paint(o.FillStyle, o.LineStyle)

	case *sch.Bezier:
		r.drawBezier(o)

	case *sch.Rectangle:
		rc := o.Rect.Canon()
		r.pathRect(rc, o.CornerXRadius, o.CornerYRadius)
		r.paint(o.FillStyle, o.LineStyle)

	case *sch.Ellipse:
		r.pathEllipse(o.Center, o.Radius, o.SecondaryRadius)
		r.paint(o.FillStyle, o.LineStyle)

	case *sch.Arc:
		r.drawArc(o)

	case *sch.Junction:
		r.pathEllipse(o.Location, 2, 2)
		r.canvas.Fill(o.Color)

	case *sch.NoERC:
		r.drawNoERC(o)

	case *sch.Pin:
		r.drawPin(o)

	case *sch.PowerPort:
		r.drawPowerPort(o)

	case *sch.Port:
		r.drawPort(o)

	case *sch.SheetSymbol:
		rc := coords.Rect{
			Min: coords.Point{X: o.Location.X, Y: o.Location.Y - o.YSize},
			Max: coords.Point{X: o.Location.X + o.XSize, Y: o.Location.Y},
		}
		r.pathRect(rc, 0, 0)
		r.paint(o.FillStyle, o.LineStyle)

	case *sch.Label:
		r.drawAnchoredText(o.Location, o.TextStyle, Plain(o.Text))
	case *sch.SheetName:
		r.drawAnchoredText(o.Location, o.TextStyle, Plain(o.Text))
	case *sch.SheetFileName:
		r.drawAnchoredText(o.Location, o.TextStyle, Plain(o.Text))
	case *sch.WarningSign:
		r.drawAnchoredText(o.Location, o.TextStyle, Plain(o.Text))
	case *sch.NetLabel:
		r.drawAnchoredText(o.Location, o.TextStyle, OverlineSpans(o.Text))

	case *sch.Parameter:
		if !o.Hidden {
			r.drawAnchoredText(o.Location, o.TextStyle, Plain(o.DisplayText()))
		}

	case *sch.Designator:
		r.drawDesignator(o, owner)

	case *sch.TextFrame:
		r.drawTextFrame(o)

	case *sch.Image:
		r.drawImage(o)

	case *sch.Unknown:
		// Undocumented kinds contribute no geometry.
	}

	next := owner
	if comp, ok := obj.(*sch.Component); ok {
		selected := *comp
		if r.opts.Part > 0 {
			selected.CurrentPartID = r.opts.Part
		}
		next = &selected
	}
	for _, ci := range obj.Base().Children {
		child := r.tree.Objects[ci]
		if sch.Visible(child, next) {
			r.draw(child, next)
		}
	}
}

func strokeOf(ls sch.LineStyle) StrokeStyle {
	w := ls.Width
	if w <= 0 {
		w = Hairline
	}
	return StrokeStyle{Color: ls.Color, Width: w}
}

// paint consumes the current path, filling only when the record is solid
// and not transparent.
func (r *renderer) paint(fs sch.FillStyle, ls sch.LineStyle) {
	if fs.Solid && !fs.Transparent {
		r.canvas.FillStroke(fs.Color, strokeOf(ls))
		return
	}
	r.canvas.Stroke(strokeOf(ls))
}

func (r *renderer) pathPolyline(pts []coords.Point) {
	r.canvas.MoveTo(pts[0])
	for _, p := range pts[1:] {
		r.canvas.LineTo(p)
	}
}

func (r *renderer) strokePolyline(pts []coords.Point, ls sch.LineStyle) {
	if len(pts) < 2 {
		return
	}
	r.pathPolyline(pts)
	r.canvas.Stroke(strokeOf(ls))
}

func (r *renderer) drawBezier(o *sch.Bezier) {
	if len(o.Points) < 4 {
		return
	}
	r.canvas.MoveTo(o.Points[0])
	for i := 1; i+2 < len(o.Points); i += 3 {
		r.canvas.CurveTo(o.Points[i], o.Points[i+1], o.Points[i+2])
	}
	r.canvas.Stroke(strokeOf(o.LineStyle))
}

// pathEllipse traces a full ellipse as four bezier quarters.
func (r *renderer) pathEllipse(c coords.Point, rx, ry float64) {
	start, segs := coords.ArcToBeziers(c, rx, ry, 0, 360)
	r.canvas.MoveTo(start)
	for _, s := range segs {
		r.canvas.CurveTo(s.C1, s.C2, s.End)
	}
	r.canvas.ClosePath()
}

func (r *renderer) drawArc(o *sch.Arc) {
	if o.Radius <= 0 {
		return
	}
	if o.FullEllipse() {
		r.pathEllipse(o.Center, o.Radius, o.SecondaryRadius)
		r.canvas.Stroke(strokeOf(o.LineStyle))
		return
	}
	// Stored angles are physical angles on the final ellipse; sampling
	// needs the parameter angle of the underlying circle.
	start := coords.CircleAngle(o.StartAngle, o.Radius, o.SecondaryRadius)
	end := coords.CircleAngle(o.EndAngle, o.Radius, o.SecondaryRadius)
	first, segs := coords.ArcToBeziers(o.Center, o.Radius, o.SecondaryRadius, start, end)
	r.canvas.MoveTo(first)
	for _, s := range segs {
		r.canvas.CurveTo(s.C1, s.C2, s.End)
	}
	r.canvas.Stroke(strokeOf(o.LineStyle))
}

// pathRect traces a rectangle, with quarter-ellipse corners when radii
// are set.
func (r *renderer) pathRect(rc coords.Rect, rx, ry float64) {
	if rx <= 0 && ry <= 0 {
		r.canvas.MoveTo(rc.Min)
		r.canvas.LineTo(coords.Point{X: rc.Max.X, Y: rc.Min.Y})
		r.canvas.LineTo(rc.Max)
		r.canvas.LineTo(coords.Point{X: rc.Min.X, Y: rc.Max.Y})
		r.canvas.ClosePath()
		return
	}
	if rx <= 0 {
		rx = ry
	}
	if ry <= 0 {
		ry = rx
	}
	if w := rc.Width() / 2; rx > w {
		rx = w
	}
	if h := rc.Height() / 2; ry > h {
		ry = h
	}
	cx, cy := rx*kappa, ry*kappa
	r.canvas.MoveTo(coords.Point{X: rc.Min.X + rx, Y: rc.Min.Y})
	r.canvas.LineTo(coords.Point{X: rc.Max.X - rx, Y: rc.Min.Y})
	r.canvas.CurveTo(
		coords.Point{X: rc.Max.X - rx + cx, Y: rc.Min.Y},
		coords.Point{X: rc.Max.X, Y: rc.Min.Y + ry - cy},
		coords.Point{X: rc.Max.X, Y: rc.Min.Y + ry})
	r.canvas.LineTo(coords.Point{X: rc.Max.X, Y: rc.Max.Y - ry})
	r.canvas.CurveTo(
		coords.Point{X: rc.Max.X, Y: rc.Max.Y - ry + cy},
		coords.Point{X: rc.Max.X - rx + cx, Y: rc.Max.Y},
		coords.Point{X: rc.Max.X - rx, Y: rc.Max.Y})
	r.canvas.LineTo(coords.Point{X: rc.Min.X + rx, Y: rc.Max.Y})
	r.canvas.CurveTo(
		coords.Point{X: rc.Min.X + rx - cx, Y: rc.Max.Y},
		coords.Point{X: rc.Min.X, Y: rc.Max.Y - ry + cy},
		coords.Point{X: rc.Min.X, Y: rc.Max.Y - ry})
	r.canvas.LineTo(coords.Point{X: rc.Min.X, Y: rc.Min.Y + ry})
	r.canvas.CurveTo(
		coords.Point{X: rc.Min.X, Y: rc.Min.Y + ry - cy},
		coords.Point{X: rc.Min.X + rx - cx, Y: rc.Min.Y},
		coords.Point{X: rc.Min.X + rx, Y: rc.Min.Y})
	r.canvas.ClosePath()
}

// textPlacement maps a text orientation code to its corner anchor and
// rotation. Codes 0 and 1 anchor at the bottom-left of the run, 2 and 3
// at the top-right; odd codes read bottom-to-top.
func textPlacement(o coords.Orientation) (Anchor, Baseline, float64) {
	switch o & 3 {
	case coords.Up:
		return AnchorStart, BaselineBottom, 90
	case coords.Left:
		return AnchorEnd, BaselineTop, 0
	case coords.Down:
		return AnchorEnd, BaselineTop, 90
	default:
		return AnchorStart, BaselineBottom, 0
	}
}

func (r *renderer) drawAnchoredText(pos coords.Point, ts sch.TextStyle, spans []Span) {
	if len(spans) == 0 {
		return
	}
	anchor, baseline, angle := textPlacement(ts.Orientation)
	r.canvas.Text(TextRun{
		Pos:      pos,
		Angle:    angle,
		Anchor:   anchor,
		Baseline: baseline,
		FontID:   ts.FontID,
		Color:    ts.Color,
		Spans:    spans,
	})
}

func (r *renderer) drawDesignator(o *sch.Designator, owner *sch.Component) {
	text := o.Text
	if owner != nil && owner.PartCount > 1 {
		part := owner.CurrentPartID
		if r.opts.Part > 0 {
			part = r.opts.Part
		}
		if part >= 1 && part <= 26 {
			text += string(rune('A' + part - 1))
		}
	}
	r.drawAnchoredText(o.Location, o.TextStyle, Plain(text))
}

func (r *renderer) drawImage(o *sch.Image) {
	rc := o.Rect.Canon()
	if o.Embedded {
		if data, ok := r.lookupEmbedded(o.Filename); ok {
			mime := "application/octet-stream"
			if info, err := filters.SniffImage(data); err == nil {
				mime = filters.MIMEType(info.Format)
			}
			r.canvas.Image(rc, ImageData{Data: data, MIME: mime, KeepAspect: o.KeepAspect})
			return
		}
		r.log.Warn("embedded image missing, rendering placeholder",
			observability.String("filename", o.Filename))
	}
	// Placeholder: the image's bounding box as a plain outline.
	r.pathRect(rc, 0, 0)
	r.canvas.Stroke(StrokeStyle{Color: black, Width: Hairline})
}

// lookupEmbedded resolves a FILENAME against the Storage chunks. Stored
// names are full Windows paths; fall back to a basename match.
func (r *renderer) lookupEmbedded(name string) ([]byte, bool) {
	if data, ok := r.tree.Embedded[name]; ok {
		return data, true
	}
	want := winBase(name)
	for stored, data := range r.tree.Embedded {
		if winBase(stored) == want {
			return data, true
		}
	}
	return nil, false
}

func winBase(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '\\' || path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
