package sch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"schlib/coords"
	"schlib/record"
)

var (
	ErrNoHeader      = errors.New("file header record missing or undecodable")
	ErrDanglingOwner = errors.New("owner index references an object not yet built")
)

// Tree is the reconstructed document: the sheet root, the arena of all
// objects in file order, and the embedded files surfaced by the Storage
// stream. Immutable once built.
type Tree struct {
	Sheet    *Sheet
	Objects  []Object // arena indexed by depth-first position
	Roots    []int    // arena indices attached directly to the sheet
	Embedded map[string][]byte

	Header   record.Properties
	Weight   int
	Warnings []string
}

// Builder reconstructs the ownership forest from the decoded record
// sequence. Ownership is expressed purely by owner-index values, so no
// nesting stack is needed: owners always precede their children in file
// order.
type Builder struct {
	tree *Tree
}

func NewBuilder() *Builder {
	return &Builder{tree: &Tree{Embedded: make(map[string][]byte)}}
}

func (b *Builder) warnf(format string, args ...interface{}) {
	b.tree.Warnings = append(b.tree.Warnings, fmt.Sprintf(format, args...))
}

// Header consumes the header record, which carries no RECORD key and
// declares the expected object count (WEIGHT). A missing HEADER key is
// fatal: nothing else in the stream can be trusted.
func (b *Builder) Header(p record.Properties) error {
	if !p.Has("HEADER") {
		return fmt.Errorf("first record has keys %v: %w", p.Keys(), ErrNoHeader)
	}
	b.tree.Header = p
	b.tree.Weight = p.Int("WEIGHT")
	return nil
}

// Add decodes one object record and attaches it to its owner. Dangling
// owner references are repaired by attaching to the sheet root; the fault
// is recorded as a warning, never an error.
func (b *Builder) Add(p record.Properties) {
	index := len(b.tree.Objects)
	obj := decodeObject(p, index)
	b.tree.Objects = append(b.tree.Objects, obj)

	if s, ok := obj.(*Sheet); ok && b.tree.Sheet == nil {
		b.tree.Sheet = s
	}

	owner := obj.Base().OwnerIndex
	if owner >= index || owner < -1 {
		b.warnf("object %d (%s): %v: owner %d", index, obj.Kind(), ErrDanglingOwner, owner)
		obj.Base().OwnerIndex = -1
		owner = -1
	}
	if owner == -1 {
		b.tree.Roots = append(b.tree.Roots, index)
		return
	}
	parent := b.tree.Objects[owner].Base()
	parent.Children = append(parent.Children, index)
}

// AddEmbedded records one decompressed embedded file from the Storage
// stream.
func (b *Builder) AddEmbedded(name string, data []byte) {
	b.tree.Embedded[name] = data
}

// Finish runs the post-passes and returns the immutable tree.
func (b *Builder) Finish() *Tree {
	t := b.tree
	if t.Sheet == nil {
		b.warnf("no sheet record in file, using defaults")
		t.Sheet = defaultSheet()
	}
	if t.Weight != 0 && t.Weight != len(t.Objects) {
		b.warnf("header declares %d objects, found %d", t.Weight, len(t.Objects))
	}
	b.resolveParameters()
	return t
}

// Build is the one-shot form: header first, then every object record in
// file order.
func Build(records []record.Properties) (*Tree, error) {
	b := NewBuilder()
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	if err := b.Header(records[0]); err != nil {
		return nil, err
	}
	for _, p := range records[1:] {
		b.Add(p)
	}
	return b.Finish(), nil
}

// resolveParameters runs the symbolic "=NAME" indirection as a second
// pass: the referenced sibling may appear later in file order than the
// reference, so single-pass resolution cannot work.
func (b *Builder) resolveParameters() {
	for _, obj := range b.tree.Objects {
		param, ok := obj.(*Parameter)
		if !ok || !strings.HasPrefix(param.Text, "=") {
			continue
		}
		name := strings.TrimPrefix(param.Text, "=")
		name = strings.TrimPrefix(name, " ")
		if ref, ok := b.findSiblingParameter(param, name); ok {
			param.Resolved = ref.Text
			continue
		}
		b.warnf("parameter %d: no sibling named %q for %q", param.Index, name, param.Text)
	}
}

func (b *Builder) findSiblingParameter(param *Parameter, name string) (*Parameter, bool) {
	for _, obj := range b.tree.Objects {
		ref, ok := obj.(*Parameter)
		if !ok || ref == param || ref.OwnerIndex != param.OwnerIndex {
			continue
		}
		if strings.EqualFold(ref.Name, name) {
			return ref, true
		}
	}
	return nil, false
}

// Visible applies the part/display-mode filter: a child is drawn for a
// component's current selection iff its owner part is -1, 0 or the current
// part, and its display mode is unset or matches the component's.
func Visible(obj Object, owner *Component) bool {
	if owner == nil {
		return true
	}
	c := obj.Base()
	if c.OwnerPartID > 0 && c.OwnerPartID != owner.CurrentPartID {
		return false
	}
	if c.HasOwnerPartDisplayMode && c.OwnerPartDisplayMode != owner.DisplayMode {
		return false
	}
	return true
}

func itoa(i int) string { return strconv.Itoa(i) }

func decodeCommon(p record.Properties, index int) Common {
	c := Common{
		Index:        index,
		OwnerIndex:   p.IntDefault("OWNERINDEX", -1),
		OwnerPartID:  p.IntDefault("OWNERPARTID", -1),
		IndexInSheet: p.IntDefault("INDEXINSHEET", -1),
		Props:        p,
	}
	if p.Has("OWNERPARTDISPLAYMODE") {
		c.HasOwnerPartDisplayMode = true
		c.OwnerPartDisplayMode = p.Int("OWNERPARTDISPLAYMODE")
	}
	return c
}

func decodeLine(p record.Properties) LineStyle {
	return LineStyle{Width: float64(p.Int("LINEWIDTH")), Color: p.Color("COLOR")}
}

func decodeFill(p record.Properties) FillStyle {
	return FillStyle{
		Color:       p.Color("AREACOLOR"),
		Solid:       p.Bool("ISSOLID"),
		Transparent: p.Bool("TRANSPARENT"),
	}
}

func decodeText(p record.Properties) TextStyle {
	return TextStyle{
		Text:          p.Text("TEXT"),
		FontID:        p.Int("FONTID"),
		Color:         p.Color("COLOR"),
		Orientation:   coords.Orientation(p.Int("ORIENTATION")),
		Justification: p.Int("JUSTIFICATION"),
		Hidden:        p.Bool("ISHIDDEN"),
		Mirrored:      p.Bool("ISMIRRORED"),
	}
}

func decodeRect(p record.Properties) coords.Rect {
	return coords.Rect{Min: p.Point("LOCATION"), Max: p.Point("CORNER")}
}

// decodeObject dispatches on the RECORD discriminator. Unknown kinds are
// retained generically so undocumented records never break a file.
func decodeObject(p record.Properties, index int) Object {
	common := decodeCommon(p, index)
	switch kind := p.Kind(); kind {
	case record.KindSheet:
		return decodeSheet(p, index)

	case record.KindComponent:
		return &Component{
			Common:           common,
			Location:         p.Point("LOCATION"),
			LibReference:     p.Text("LIBREFERENCE"),
			Description:      p.Text("COMPONENTDESCRIPTION"),
			PartCount:        p.Int("PARTCOUNT") - 1,
			DisplayModeCount: p.Int("DISPLAYMODECOUNT"),
			CurrentPartID:    p.Int("CURRENTPARTID"),
			DisplayMode:      p.Int("DISPLAYMODE"),
			Orientation:      coords.Orientation(p.Int("ORIENTATION")),
			Mirrored:         p.Bool("ISMIRRORED"),
		}

	case record.KindPin:
		cong := p.PinConglomerate("PINCONGLOMERATE")
		return &Pin{
			Common:      common,
			Location:    p.Point("LOCATION"),
			Length:      p.Coord("PINLENGTH"),
			Rotation:    cong.Rotation,
			ShowName:    cong.ShowName,
			ShowDesig:   cong.ShowDesignator,
			Name:        p.Text("NAME"),
			Designator:  p.Text("DESIGNATOR"),
			Electrical:  p.Int("ELECTRICAL"),
			OuterEdge:   p.Int("SYMBOL_OUTEREDGE"),
			InnerEdge:   p.Int("SYMBOL_INNEREDGE"),
			Description: p.Text("DESCRIPTION"),
		}

	case record.KindLabel:
		return &Label{Common: common, Location: p.Point("LOCATION"), TextStyle: decodeText(p)}
	case record.KindNetLabel:
		return &NetLabel{Common: common, Location: p.Point("LOCATION"), TextStyle: decodeText(p)}
	case record.KindSheetName:
		return &SheetName{Common: common, Location: p.Point("LOCATION"), TextStyle: decodeText(p)}
	case record.KindSheetFileName:
		return &SheetFileName{Common: common, Location: p.Point("LOCATION"), TextStyle: decodeText(p)}

	case record.KindWarningSign:
		style := decodeText(p)
		// The annotation lives under NAME in most emitters.
		if style.Text == "" {
			style.Text = p.Text("NAME")
		}
		return &WarningSign{Common: common, Location: p.Point("LOCATION"), TextStyle: style}

	case record.KindDesignator:
		return &Designator{
			Common:        common,
			Location:      p.Point("LOCATION"),
			TextStyle:     decodeText(p),
			Name:          p.Text("NAME"),
			ReadOnlyState: p.Int("READONLYSTATE"),
		}

	case record.KindParameter:
		return &Parameter{
			Common:        common,
			Location:      p.Point("LOCATION"),
			TextStyle:     decodeText(p),
			Name:          p.Text("NAME"),
			ReadOnlyState: p.Int("READONLYSTATE"),
		}

	case record.KindBezier:
		return &Bezier{Common: common, Points: p.Points(), LineStyle: decodeLine(p)}
	case record.KindPolyline:
		return &Polyline{Common: common, Points: p.Points(), LineStyle: decodeLine(p)}
	case record.KindPolygon:
		return &Polygon{Common: common, Points: p.Points(), LineStyle: decodeLine(p), FillStyle: decodeFill(p)}
	case record.KindWire:
		return &Wire{Common: common, Points: p.Points(), LineStyle: decodeLine(p)}
	case record.KindBus:
		return &Bus{Common: common, Points: p.Points(), LineStyle: decodeLine(p)}
	case record.KindBusEntry:
		return &BusEntry{Common: common, Location: p.Point("LOCATION"), Corner: p.Point("CORNER"), LineStyle: decodeLine(p)}

	case record.KindEllipse:
		radius := p.Coord("RADIUS")
		secondary := radius
		if p.Has("SECONDARYRADIUS") {
			secondary = p.Coord("SECONDARYRADIUS")
		}
		return &Ellipse{
			Common:          common,
			Center:          p.Point("LOCATION"),
			Radius:          radius,
			SecondaryRadius: secondary,
			LineStyle:       decodeLine(p),
			FillStyle:       decodeFill(p),
		}

	case record.KindArc, record.KindEllipticalArc:
		radius := p.Coord("RADIUS")
		secondary := radius
		if p.Has("SECONDARYRADIUS") {
			secondary = p.Coord("SECONDARYRADIUS")
		}
		return &Arc{
			Common:          common,
			kind:            kind,
			Center:          p.Point("LOCATION"),
			Radius:          radius,
			SecondaryRadius: secondary,
			StartAngle:      p.Real("STARTANGLE"),
			EndAngle:        p.Real("ENDANGLE"),
			LineStyle:       decodeLine(p),
		}

	case record.KindLine:
		return &Line{Common: common, A: p.Point("LOCATION"), B: p.Point("CORNER"), LineStyle: decodeLine(p)}

	case record.KindRectangle, record.KindRoundRectangle:
		return &Rectangle{
			Common:        common,
			kind:          kind,
			Rect:          decodeRect(p),
			CornerXRadius: p.Coord("CORNERXRADIUS"),
			CornerYRadius: p.Coord("CORNERYRADIUS"),
			LineStyle:     decodeLine(p),
			FillStyle:     decodeFill(p),
		}

	case record.KindSheetSymbol:
		return &SheetSymbol{
			Common:    common,
			Location:  p.Point("LOCATION"),
			XSize:     p.Coord("XSIZE"),
			YSize:     p.Coord("YSIZE"),
			LineStyle: decodeLine(p),
			FillStyle: decodeFill(p),
		}

	case record.KindPowerPort:
		showName := true
		if raw, ok := p.Raw("SHOWNETNAME"); ok && raw == "F" {
			showName = false
		}
		return &PowerPort{
			Common:      common,
			Location:    p.Point("LOCATION"),
			Style:       p.Int("STYLE"),
			Text:        p.Text("TEXT"),
			ShowNetName: showName,
			Orientation: coords.Orientation(p.Int("ORIENTATION")),
			CrossSheet:  p.Bool("ISCROSSSHEETCONNECTOR"),
			Color:       p.Color("COLOR"),
			FontID:      p.Int("FONTID"),
		}

	case record.KindPort:
		return &Port{
			Common:    common,
			Location:  p.Point("LOCATION"),
			Width:     p.Coord("WIDTH"),
			Height:    p.Coord("HEIGHT"),
			IOType:    p.Int("IOTYPE"),
			Style:     p.Int("STYLE"),
			Alignment: p.Int("ALIGNMENT"),
			Name:      p.Text("NAME"),
			Color:     p.Color("COLOR"),
			TextColor: p.Color("TEXTCOLOR"),
			AreaColor: p.Color("AREACOLOR"),
			FontID:    p.Int("FONTID"),
		}

	case record.KindNoERC:
		return &NoERC{Common: common, Location: p.Point("LOCATION"), Color: p.Color("COLOR")}
	case record.KindJunction:
		return &Junction{Common: common, Location: p.Point("LOCATION"), Color: p.Color("COLOR")}

	case record.KindTextFrame:
		return &TextFrame{
			Common:     common,
			Rect:       decodeRect(p),
			TextStyle:  decodeText(p),
			AreaColor:  p.Color("AREACOLOR"),
			Alignment:  p.Int("ALIGNMENT"),
			WordWrap:   p.Bool("WORDWRAP"),
			ClipToRect: p.Bool("CLIPTORECT"),
			Solid:      p.Bool("ISSOLID"),
		}

	case record.KindImage:
		return &Image{
			Common:     common,
			Rect:       decodeRect(p),
			Embedded:   p.Bool("EMBEDIMAGE"),
			Filename:   p.Text("FILENAME"),
			KeepAspect: p.Bool("KEEPASPECT"),
		}

	case record.KindTemplate:
		return &Template{Common: common, Filename: p.Text("FILENAME")}

	default:
		return &Unknown{Common: common, RawKind: kind}
	}
}
