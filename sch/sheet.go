package sch

import (
	"schlib/record"
)

// Font is one entry of the sheet's font table. Text objects reference
// entries by FONTID; the table is read-only after parse, so a style can
// never be edited document-wide by accident.
type Font struct {
	Size      float64
	Family    string
	Rotation  float64
	Italic    bool
	Bold      bool
	Underline bool
}

// DefaultFont is used when the table is empty or a FONTID is out of range.
var DefaultFont = Font{Size: 10, Family: "Times New Roman"}

// Sheet is the document root (record kind 31). It owns the font table and
// the page geometry, and collects every object whose owner index is -1.
type Sheet struct {
	Common
	Style        int
	Width        float64 // drawing area, 1/100-inch units
	Height       float64
	CustomSheet  bool
	Fonts        []Font // FONTID 1 maps to Fonts[0]
	SystemFontID int
	BorderOn     bool
	TitleBlockOn bool
	AreaColor    record.Color
	GridColor    record.Color

	SnapGridOn      bool
	SnapGridSize    float64
	VisibleGridOn   bool
	VisibleGridSize float64
}

func (*Sheet) Kind() record.Kind { return record.KindSheet }

// Font resolves a FONTID, falling back to the system font and then to
// DefaultFont for id 0 or out-of-range references.
func (s *Sheet) Font(id int) Font {
	if id >= 1 && id <= len(s.Fonts) {
		return s.Fonts[id-1]
	}
	if s.SystemFontID >= 1 && s.SystemFontID <= len(s.Fonts) {
		return s.Fonts[s.SystemFontID-1]
	}
	if len(s.Fonts) > 0 {
		return s.Fonts[0]
	}
	return DefaultFont
}

// sheetSize is the closed SHEETSTYLE table: drawing-area width and height
// per style code.
type sheetSize struct {
	name string
	w, h float64
}

var sheetStyles = map[int]sheetSize{
	0:  {"A4", 1150, 760},
	1:  {"A3", 1550, 1150},
	2:  {"A2", 2230, 1570},
	3:  {"A1", 3150, 2230},
	4:  {"A0", 4460, 3150},
	5:  {"A", 950, 760},
	6:  {"B", 1500, 950},
	7:  {"C", 2000, 1500},
	8:  {"D", 3200, 2000},
	9:  {"E", 4200, 3200},
	10: {"Letter", 1100, 850},
	11: {"Legal", 1400, 850},
	12: {"Tabloid", 1700, 1100},
	13: {"OrCAD A", 990, 790},
	14: {"OrCAD B", 1540, 990},
	15: {"OrCAD C", 2060, 1560},
	16: {"OrCAD D", 3260, 2060},
	17: {"OrCAD E", 4280, 3280},
}

// StyleName returns the page-size name for the sheet's style code.
func (s *Sheet) StyleName() string {
	if s.CustomSheet {
		return "Custom"
	}
	if sz, ok := sheetStyles[s.Style]; ok {
		return sz.name
	}
	return "A4"
}

func decodeSheet(p record.Properties, index int) *Sheet {
	s := &Sheet{
		Common:       decodeCommon(p, index),
		Style:        p.Int("SHEETSTYLE"),
		SystemFontID: p.Int("SYSTEMFONT"),
		BorderOn:     p.Bool("BORDERON"),
		TitleBlockOn: p.Bool("TITLEBLOCKON"),
		AreaColor:    p.Color("AREACOLOR"),
		GridColor:    p.Color("GRIDCOLOR"),

		SnapGridOn:      p.Bool("SNAPGRIDON"),
		SnapGridSize:    p.Real("SNAPGRIDSIZE"),
		VisibleGridOn:   p.Bool("VISIBLEGRIDON"),
		VisibleGridSize: p.Real("VISIBLEGRIDSIZE"),
	}

	size, ok := sheetStyles[s.Style]
	if !ok {
		size = sheetStyles[0]
	}
	s.Width, s.Height = size.w, size.h
	if p.Bool("USECUSTOMSHEET") {
		if w := p.Coord("CUSTOMX"); w > 0 {
			if h := p.Coord("CUSTOMY"); h > 0 {
				s.CustomSheet = true
				s.Width, s.Height = w, h
			}
		}
	}

	for i := 1; i <= p.Int("FONTIDCOUNT"); i++ {
		n := itoa(i)
		s.Fonts = append(s.Fonts, Font{
			Size:      p.Real("SIZE" + n),
			Family:    p.Text("FONTNAME" + n),
			Rotation:  p.Real("ROTATION" + n),
			Italic:    p.Bool("ITALIC" + n),
			Bold:      p.Bool("BOLD" + n),
			Underline: p.Bool("UNDERLINE" + n),
		})
	}
	return s
}

// defaultSheet stands in when a file carries no sheet record; rendering
// still proceeds best-effort on an A4 page.
func defaultSheet() *Sheet {
	return &Sheet{
		Common: Common{Index: -1, OwnerIndex: -1, Props: record.Parse(nil)},
		Width:  sheetStyles[0].w,
		Height: sheetStyles[0].h,
	}
}
