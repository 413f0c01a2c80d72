// Package svg writes the neutral drawing-command stream as SVG markup.
// Schematic coordinates map onto the SVG plane by negating Y, so the
// sheet's bottom-left origin keeps Y increasing upward.
package svg

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"schlib/coords"
	"schlib/record"
	"schlib/render"
)

// Schematic units are 1/100 inch.
const unitsPerInch = 100

// margin is the blank band around the drawing area, in schematic units.
const margin = 30

// defaultTextSize matches a 10-unit schematic font at the 0.875 px/unit
// ratio used for the font table.
const defaultTextSize = 8.75

// Canvas implements render.Canvas by emitting SVG elements directly.
type Canvas struct {
	w    *bufio.Writer
	doc  render.Document
	path strings.Builder
	err  error
}

var _ render.Canvas = (*Canvas)(nil)

// New returns a canvas writing markup to w. Nothing is written until
// Start.
func New(w io.Writer) *Canvas {
	return &Canvas{w: bufio.NewWriter(w)}
}

func (c *Canvas) writef(format string, args ...interface{}) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format, args...)
}

// num renders a coordinate with just enough precision for bezier control
// points without the full float64 tail.
func num(f float64) string {
	f = math.Round(f*10000) / 10000
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c *Canvas) Start(doc render.Document) error {
	c.doc = doc
	w := doc.Width + 2*margin
	h := doc.Height + 2*margin
	c.writef("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	c.writef(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%sin" height="%sin" viewBox="%s %s %s %s">`+"\n",
		num(w/unitsPerInch), num(h/unitsPerInch),
		num(-margin), num(-(doc.Height + margin)), num(w), num(h))
	c.writeStyle()
	c.writef(`<rect x="0" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
		num(-doc.Height), num(doc.Width), num(doc.Height), doc.Background.Hex())
	return c.err
}

// writeStyle emits the font table as CSS classes, mirroring the sheet's
// 1-based FONTID numbering.
func (c *Canvas) writeStyle() {
	var b strings.Builder
	b.WriteString("text {\n  fill: currentColor;\n  dominant-baseline: text-after-edge;\n")
	fmt.Fprintf(&b, "  font-size: %spx;\n}\n", num(defaultTextSize))
	for i, f := range c.doc.Fonts {
		fmt.Fprintf(&b, ".font%d {\n", i+1)
		fmt.Fprintf(&b, "  font-size: %spx;\n", num(f.Size*0.875))
		fmt.Fprintf(&b, "  font-family: %s;\n", f.Family)
		if f.Italic {
			b.WriteString("  font-style: italic;\n")
		}
		if f.Bold {
			b.WriteString("  font-weight: bold;\n")
		}
		if f.Underline {
			b.WriteString("  text-decoration: underline;\n")
		}
		b.WriteString("}\n")
	}
	c.writef("<style type=\"text/css\">\n%s</style>\n", b.String())
}

func (c *Canvas) MoveTo(p coords.Point) {
	fmt.Fprintf(&c.path, "M%s,%s", num(p.X), num(-p.Y))
}

func (c *Canvas) LineTo(p coords.Point) {
	fmt.Fprintf(&c.path, "L%s,%s", num(p.X), num(-p.Y))
}

func (c *Canvas) CurveTo(c1, c2, end coords.Point) {
	fmt.Fprintf(&c.path, "C%s,%s %s,%s %s,%s",
		num(c1.X), num(-c1.Y), num(c2.X), num(-c2.Y), num(end.X), num(-end.Y))
}

func (c *Canvas) ClosePath() {
	c.path.WriteString("Z")
}

func (c *Canvas) takePath() string {
	d := c.path.String()
	c.path.Reset()
	return d
}

func (c *Canvas) Stroke(s render.StrokeStyle) {
	d := c.takePath()
	if d == "" {
		return
	}
	c.writef(`<path d="%s" fill="none" stroke="%s" stroke-width="%s"/>`+"\n",
		d, s.Color.Hex(), num(s.Width))
}

func (c *Canvas) Fill(color record.Color) {
	d := c.takePath()
	if d == "" {
		return
	}
	c.writef(`<path d="%s" fill="%s" stroke="none"/>`+"\n", d, color.Hex())
}

func (c *Canvas) FillStroke(fill record.Color, s render.StrokeStyle) {
	d := c.takePath()
	if d == "" {
		return
	}
	c.writef(`<path d="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
		d, fill.Hex(), s.Color.Hex(), num(s.Width))
}

// fontClass resolves a run's font id to a CSS class, falling through to
// the system font the way the sheet table does.
func (c *Canvas) fontClass(id int) (string, bool) {
	if id < 1 || id > len(c.doc.Fonts) {
		id = c.doc.SystemFont
	}
	if id < 1 || id > len(c.doc.Fonts) {
		return "", false
	}
	return fmt.Sprintf("font%d", id), true
}

func (c *Canvas) Text(run render.TextRun) {
	if len(run.Spans) == 0 {
		return
	}
	x, y := num(run.Pos.X), num(-run.Pos.Y)
	var attrs strings.Builder
	fmt.Fprintf(&attrs, ` x="%s" y="%s"`, x, y)
	if class, ok := c.fontClass(run.FontID); ok {
		fmt.Fprintf(&attrs, ` class="%s"`, class)
	}
	fmt.Fprintf(&attrs, ` fill="%s"`, run.Color.Hex())

	var style []string
	switch run.Anchor {
	case render.AnchorMiddle:
		style = append(style, "text-anchor: middle")
	case render.AnchorEnd:
		style = append(style, "text-anchor: end")
	}
	switch run.Baseline {
	case render.BaselineMiddle:
		style = append(style, "dominant-baseline: middle")
	case render.BaselineTop:
		style = append(style, "dominant-baseline: text-before-edge")
	}
	if len(style) > 0 {
		fmt.Fprintf(&attrs, ` style="%s"`, strings.Join(style, "; "))
	}
	if run.Angle != 0 {
		// Schematic rotation is counter-clockwise; SVG's is clockwise.
		fmt.Fprintf(&attrs, ` transform="rotate(%s, %s, %s)"`, num(-run.Angle), x, y)
	}

	c.writef("<text%s>", attrs.String())
	for _, span := range run.Spans {
		if span.Overline {
			c.writef(`<tspan style="text-decoration: overline">%s</tspan>`, escape(span.Text))
		} else {
			c.writef("%s", escape(span.Text))
		}
	}
	c.writef("</text>\n")
}

func (c *Canvas) Image(rect coords.Rect, img render.ImageData) {
	rect = rect.Canon()
	aspect := "none"
	if img.KeepAspect {
		aspect = "xMidYMid meet"
	}
	c.writef(`<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="%s" xlink:href="data:%s;base64,%s"/>`+"\n",
		num(rect.Min.X), num(-rect.Max.Y), num(rect.Width()), num(rect.Height()),
		aspect, img.MIME, base64.StdEncoding.EncodeToString(img.Data))
}

func (c *Canvas) Finish() error {
	c.writef("</svg>\n")
	if c.err != nil {
		return c.err
	}
	return c.w.Flush()
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string { return escaper.Replace(s) }
