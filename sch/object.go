// Package sch reconstructs the schematic object tree from decoded property
// records and exposes the typed object model.
package sch

import (
	"schlib/coords"
	"schlib/record"
)

// Common carries the fields shared by every schematic object. Each variant
// embeds it by value; there is no type hierarchy beyond the Object
// interface.
type Common struct {
	Index        int // position in the depth-first sequence, header excluded
	OwnerIndex   int // -1 attaches to the sheet root
	OwnerPartID  int
	IndexInSheet int

	// Display-mode filter; the key is optional and absence means
	// "all display modes".
	OwnerPartDisplayMode    int
	HasOwnerPartDisplayMode bool

	Props    record.Properties
	Children []int // arena indices, in file order
}

func (c *Common) Base() *Common { return c }

// Object is the tagged-variant interface. Concrete behaviour lives in
// exhaustive type switches in the renderer, not in methods here.
type Object interface {
	Base() *Common
	Kind() record.Kind
}

// LineStyle groups the stroke fields shared by drawable records.
// Width is the raw LINEWIDTH value in 1/100-inch units; the renderer maps
// zero to its hairline width.
type LineStyle struct {
	Width float64
	Color record.Color
}

// FillStyle groups the fill fields. Transparent overrides Solid.
type FillStyle struct {
	Color       record.Color
	Solid       bool
	Transparent bool
}

// TextStyle groups the fields shared by text-bearing records.
type TextStyle struct {
	Text          string
	FontID        int
	Color         record.Color
	Orientation   coords.Orientation
	Justification int
	Hidden        bool
	Mirrored      bool
}

type Component struct {
	Common
	Location         coords.Point
	LibReference     string
	Description      string
	PartCount        int // number of symbol variants; the file's +1 bias is removed at decode
	DisplayModeCount int
	CurrentPartID    int
	DisplayMode      int
	Orientation      coords.Orientation
	Mirrored         bool
}

func (*Component) Kind() record.Kind { return record.KindComponent }

type Pin struct {
	Common
	Location    coords.Point
	Length      float64
	Rotation    coords.Orientation
	ShowName    bool
	ShowDesig   bool
	Name        string
	Designator  string
	Electrical  int
	OuterEdge   int // non-zero draws the negative-logic bubble
	InnerEdge   int // 3 draws the clock-input arrow
	Description string
}

func (*Pin) Kind() record.Kind { return record.KindPin }

type Label struct {
	Common
	Location coords.Point
	TextStyle
}

func (*Label) Kind() record.Kind { return record.KindLabel }

type NetLabel struct {
	Common
	Location coords.Point
	TextStyle
}

func (*NetLabel) Kind() record.Kind { return record.KindNetLabel }

type SheetName struct {
	Common
	Location coords.Point
	TextStyle
}

func (*SheetName) Kind() record.Kind { return record.KindSheetName }

type SheetFileName struct {
	Common
	Location coords.Point
	TextStyle
}

func (*SheetFileName) Kind() record.Kind { return record.KindSheetFileName }

// WarningSign marks a deliberate rule violation with a short annotation.
type WarningSign struct {
	Common
	Location coords.Point
	TextStyle
}

func (*WarningSign) Kind() record.Kind { return record.KindWarningSign }

type Designator struct {
	Common
	Location coords.Point
	TextStyle
	Name          string
	ReadOnlyState int
}

func (*Designator) Kind() record.Kind { return record.KindDesignator }

type Parameter struct {
	Common
	Location coords.Point
	TextStyle
	Name          string
	ReadOnlyState int

	// Resolved holds the display text after symbolic "=NAME" indirection;
	// empty means Text is already literal.
	Resolved string
}

func (*Parameter) Kind() record.Kind { return record.KindParameter }

// DisplayText returns the text after indirection.
func (p *Parameter) DisplayText() string {
	if p.Resolved != "" {
		return p.Resolved
	}
	return p.Text
}

type Bezier struct {
	Common
	Points []coords.Point
	LineStyle
}

func (*Bezier) Kind() record.Kind { return record.KindBezier }

type Polyline struct {
	Common
	Points []coords.Point
	LineStyle
}

func (*Polyline) Kind() record.Kind { return record.KindPolyline }

type Polygon struct {
	Common
	Points []coords.Point
	LineStyle
	FillStyle
}

func (*Polygon) Kind() record.Kind { return record.KindPolygon }

type Wire struct {
	Common
	Points []coords.Point
	LineStyle
}

func (*Wire) Kind() record.Kind { return record.KindWire }

type Bus struct {
	Common
	Points []coords.Point
	LineStyle
}

func (*Bus) Kind() record.Kind { return record.KindBus }

type BusEntry struct {
	Common
	Location coords.Point
	Corner   coords.Point
	LineStyle
}

func (*BusEntry) Kind() record.Kind { return record.KindBusEntry }

type Ellipse struct {
	Common
	Center          coords.Point
	Radius          float64
	SecondaryRadius float64
	LineStyle
	FillStyle
}

func (*Ellipse) Kind() record.Kind { return record.KindEllipse }

// Arc covers both circular arcs (kind 12) and elliptical arcs (kind 11);
// each keeps its own record kind for exhaustive dispatch.
type Arc struct {
	Common
	kind            record.Kind
	Center          coords.Point
	Radius          float64
	SecondaryRadius float64
	StartAngle      float64
	EndAngle        float64
	LineStyle
}

func (a *Arc) Kind() record.Kind { return a.kind }

// FullEllipse reports whether the angles denote a closed ellipse.
func (a *Arc) FullEllipse() bool {
	return a.StartAngle == a.EndAngle || (a.StartAngle == 0 && a.EndAngle == 360)
}

type Line struct {
	Common
	A, B coords.Point
	LineStyle
}

func (*Line) Kind() record.Kind { return record.KindLine }

// Rectangle covers both plain (kind 14) and round (kind 10) rectangles.
type Rectangle struct {
	Common
	kind          record.Kind
	Rect          coords.Rect
	CornerXRadius float64
	CornerYRadius float64
	LineStyle
	FillStyle
}

func (r *Rectangle) Kind() record.Kind { return r.kind }

type SheetSymbol struct {
	Common
	Location coords.Point
	XSize    float64
	YSize    float64
	LineStyle
	FillStyle
}

func (*SheetSymbol) Kind() record.Kind { return record.KindSheetSymbol }

type PowerPort struct {
	Common
	Location    coords.Point
	Style       int
	Text        string
	ShowNetName bool
	Orientation coords.Orientation
	CrossSheet  bool
	Color       record.Color
	FontID      int
}

func (*PowerPort) Kind() record.Kind { return record.KindPowerPort }

type Port struct {
	Common
	Location  coords.Point
	Width     float64
	Height    float64
	IOType    int
	Style     int
	Alignment int
	Name      string
	Color     record.Color
	TextColor record.Color
	AreaColor record.Color
	FontID    int
}

func (*Port) Kind() record.Kind { return record.KindPort }

type NoERC struct {
	Common
	Location coords.Point
	Color    record.Color
}

func (*NoERC) Kind() record.Kind { return record.KindNoERC }

type Junction struct {
	Common
	Location coords.Point
	Color    record.Color
}

func (*Junction) Kind() record.Kind { return record.KindJunction }

type TextFrame struct {
	Common
	Rect coords.Rect
	TextStyle
	AreaColor  record.Color
	Alignment  int
	WordWrap   bool
	ClipToRect bool
	Solid      bool
}

func (*TextFrame) Kind() record.Kind { return record.KindTextFrame }

type Image struct {
	Common
	Rect       coords.Rect
	Embedded   bool
	Filename   string
	KeepAspect bool
}

func (*Image) Kind() record.Kind { return record.KindImage }

type Template struct {
	Common
	Filename string
}

func (*Template) Kind() record.Kind { return record.KindTemplate }

// Unknown retains records of undocumented kinds with their raw property
// map; the renderer skips them silently so new kinds never break a file.
type Unknown struct {
	Common
	RawKind record.Kind
}

func (u *Unknown) Kind() record.Kind { return u.RawKind }
