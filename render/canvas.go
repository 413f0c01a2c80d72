// Package render walks the schematic object tree and issues neutral
// drawing commands. Concrete output formats implement Canvas; the walk
// itself knows nothing about markup.
package render

import (
	"schlib/coords"
	"schlib/record"
	"schlib/sch"
)

// Anchor selects the horizontal alignment of a text run relative to its
// position.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Baseline selects the vertical alignment of a text run relative to its
// position.
type Baseline int

const (
	BaselineBottom Baseline = iota
	BaselineMiddle
	BaselineTop
)

// Span is one fragment of a text run. Overlined fragments carry the
// negation bar used in pin, net and port names.
type Span struct {
	Text     string
	Overline bool
}

// TextRun is one positioned piece of text. Angle is a counter-clockwise
// rotation in degrees about Pos. FontID indexes the document font table;
// zero or out-of-range ids resolve to the system font.
type TextRun struct {
	Pos      coords.Point
	Angle    float64
	Anchor   Anchor
	Baseline Baseline
	FontID   int
	Color    record.Color
	Spans    []Span
}

// Plain wraps a literal string as a single unstyled span.
func Plain(s string) []Span { return []Span{{Text: s}} }

// StrokeStyle is a resolved pen: color plus width in 1/100-inch units.
type StrokeStyle struct {
	Color record.Color
	Width float64
}

// ImageData is a decoded embedded image ready for placement.
type ImageData struct {
	Data       []byte
	MIME       string
	KeepAspect bool
}

// Document carries the page-level state every canvas needs before any
// drawing command: drawing-area size, background color and the font table
// from the sheet record.
type Document struct {
	Width      float64
	Height     float64
	Background record.Color
	Fonts      []sch.Font
	SystemFont int
}

// Font resolves a font id against the document table, mirroring the sheet
// lookup rules.
func (d Document) Font(id int) sch.Font {
	if id >= 1 && id <= len(d.Fonts) {
		return d.Fonts[id-1]
	}
	if d.SystemFont >= 1 && d.SystemFont <= len(d.Fonts) {
		return d.Fonts[d.SystemFont-1]
	}
	if len(d.Fonts) > 0 {
		return d.Fonts[0]
	}
	return sch.DefaultFont
}

// Canvas is the neutral drawing surface. Coordinates are schematic
// coordinates: 1/100-inch units, origin at the bottom-left of the drawing
// area, Y increasing upward. Path segments accumulate until a paint call
// (Stroke, Fill, FillStroke) consumes the current path.
type Canvas interface {
	// Start begins a document. No other method may be called before it.
	Start(doc Document) error

	MoveTo(p coords.Point)
	LineTo(p coords.Point)
	CurveTo(c1, c2, end coords.Point)
	ClosePath()

	Stroke(style StrokeStyle)
	Fill(color record.Color)
	FillStroke(fill record.Color, stroke StrokeStyle)

	Text(run TextRun)
	Image(rect coords.Rect, img ImageData)

	// Finish ends the document and reports any accumulated output error.
	Finish() error
}
