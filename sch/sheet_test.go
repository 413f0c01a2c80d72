package sch

import (
	"testing"

	"schlib/record"
)

func decodeSheetPayload(t *testing.T, payload string) *Sheet {
	t.Helper()
	return decodeSheet(record.Parse([]byte(payload)), 0)
}

func TestSheetStyleTable(t *testing.T) {
	cases := []struct {
		style string
		name  string
		w, h  float64
	}{
		{"0", "A4", 1150, 760},
		{"1", "A3", 1550, 1150},
		{"5", "A", 950, 760},
		{"9", "E", 4200, 3200},
		{"17", "OrCAD E", 4280, 3280},
	}
	for _, c := range cases {
		s := decodeSheetPayload(t, "|RECORD=31|SHEETSTYLE="+c.style)
		if s.StyleName() != c.name || s.Width != c.w || s.Height != c.h {
			t.Errorf("style %s: got %s %vx%v, want %s %vx%v",
				c.style, s.StyleName(), s.Width, s.Height, c.name, c.w, c.h)
		}
	}
}

func TestSheetUnknownStyleFallsBackToA4(t *testing.T) {
	s := decodeSheetPayload(t, "|RECORD=31|SHEETSTYLE=99")
	if s.Width != 1150 || s.Height != 760 {
		t.Fatalf("unknown style should fall back to A4, got %vx%v", s.Width, s.Height)
	}
}

func TestSheetCustomSize(t *testing.T) {
	s := decodeSheetPayload(t, "|RECORD=31|SHEETSTYLE=0|USECUSTOMSHEET=T|CUSTOMX=2000|CUSTOMY=1200")
	if !s.CustomSheet || s.Width != 2000 || s.Height != 1200 {
		t.Fatalf("custom sheet = %v %vx%v", s.CustomSheet, s.Width, s.Height)
	}
	if s.StyleName() != "Custom" {
		t.Fatalf("StyleName = %q", s.StyleName())
	}
}

func TestSheetCustomSizeIgnoredWithoutDimensions(t *testing.T) {
	s := decodeSheetPayload(t, "|RECORD=31|SHEETSTYLE=1|USECUSTOMSHEET=T|CUSTOMX=|CUSTOMY=")
	if s.CustomSheet {
		t.Fatal("empty custom dimensions should keep the style size")
	}
	if s.Width != 1550 {
		t.Fatalf("width = %v, want A3 width", s.Width)
	}
}

func TestSheetFontTable(t *testing.T) {
	s := decodeSheetPayload(t, "|RECORD=31|FONTIDCOUNT=2"+
		"|SIZE1=10|FONTNAME1=Times New Roman"+
		"|SIZE2=12|FONTNAME2=Arial|ITALIC2=T|BOLD2=T|ROTATION2=90|SYSTEMFONT=1")
	if len(s.Fonts) != 2 {
		t.Fatalf("font table has %d entries", len(s.Fonts))
	}
	f := s.Font(2)
	if f.Family != "Arial" || f.Size != 12 || !f.Italic || !f.Bold || f.Rotation != 90 {
		t.Fatalf("font 2 = %+v", f)
	}
}

func TestFontLookupFallbacks(t *testing.T) {
	s := decodeSheetPayload(t, "|RECORD=31|FONTIDCOUNT=1|SIZE1=10|FONTNAME1=Times New Roman|SYSTEMFONT=1")
	// FONTID 0 and out-of-range ids resolve to the system font.
	if got := s.Font(0); got.Family != "Times New Roman" {
		t.Fatalf("Font(0) = %+v", got)
	}
	if got := s.Font(42); got.Family != "Times New Roman" {
		t.Fatalf("Font(42) = %+v", got)
	}
	// An empty table falls back to the fixed default.
	empty := decodeSheetPayload(t, "|RECORD=31")
	if got := empty.Font(1); got != DefaultFont {
		t.Fatalf("empty-table lookup = %+v, want DefaultFont", got)
	}
}
