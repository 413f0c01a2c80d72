package render

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"schlib/coords"
	"schlib/record"
	"schlib/sch"
)

// recorder captures canvas calls as a flat op log for assertions.
type recorder struct {
	doc      Document
	started  bool
	finished bool
	ops      []string
	texts    []TextRun
	images   []ImageData
}

func (r *recorder) Start(doc Document) error {
	r.started = true
	r.doc = doc
	return nil
}

func (r *recorder) MoveTo(p coords.Point) { r.op("M %.1f %.1f", p.X, p.Y) }
func (r *recorder) LineTo(p coords.Point) { r.op("L %.1f %.1f", p.X, p.Y) }
func (r *recorder) CurveTo(c1, c2, end coords.Point) {
	r.op("C %.1f %.1f", end.X, end.Y)
}
func (r *recorder) ClosePath() { r.op("Z") }

func (r *recorder) Stroke(s StrokeStyle) { r.op("stroke %s %.1f", s.Color.Hex(), s.Width) }
func (r *recorder) Fill(c record.Color)  { r.op("fill %s", c.Hex()) }
func (r *recorder) FillStroke(fill record.Color, s StrokeStyle) {
	r.op("fillstroke %s %s %.1f", fill.Hex(), s.Color.Hex(), s.Width)
}

func (r *recorder) Text(run TextRun) {
	r.texts = append(r.texts, run)
	var b strings.Builder
	for _, sp := range run.Spans {
		b.WriteString(sp.Text)
	}
	r.op("text %q", b.String())
}

func (r *recorder) Image(rect coords.Rect, img ImageData) {
	r.images = append(r.images, img)
	r.op("image %s", img.MIME)
}

func (r *recorder) Finish() error {
	r.finished = true
	return nil
}

func (r *recorder) op(format string, args ...interface{}) {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

func (r *recorder) countPrefix(prefix string) int {
	n := 0
	for _, op := range r.ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) textContent() []string {
	var out []string
	for _, run := range r.texts {
		var b strings.Builder
		for _, sp := range run.Spans {
			b.WriteString(sp.Text)
		}
		out = append(out, b.String())
	}
	return out
}

func renderPayloads(t *testing.T, payloads ...string) *recorder {
	t.Helper()
	records := []record.Properties{
		record.Parse([]byte(fmt.Sprintf("|HEADER=x|WEIGHT=%d", len(payloads)))),
	}
	for _, p := range payloads {
		records = append(records, record.Parse([]byte(p)))
	}
	tree, err := sch.Build(records)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rec := &recorder{}
	if err := Render(tree, rec, Options{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return rec
}

func TestMinimalSheetRendersNoShapes(t *testing.T) {
	rec := renderPayloads(t, "|RECORD=31|SHEETSTYLE=0")
	if !rec.started || !rec.finished {
		t.Fatal("canvas lifecycle not run")
	}
	if rec.doc.Width != 1150 || rec.doc.Height != 760 {
		t.Fatalf("document size %vx%v", rec.doc.Width, rec.doc.Height)
	}
	// Border is off, so a bare sheet contributes nothing drawable.
	if len(rec.ops) != 0 {
		t.Fatalf("expected empty op log, got %v", rec.ops)
	}
}

func TestSheetBorderAndZones(t *testing.T) {
	rec := renderPayloads(t, "|RECORD=31|SHEETSTYLE=0|BORDERON=T")
	// 4 digits and 4 letters per pair of edges.
	if got := len(rec.texts); got != 16 {
		t.Fatalf("zone labels = %d, want 16", got)
	}
	if rec.countPrefix("stroke") == 0 {
		t.Fatal("no border strokes recorded")
	}
}

func TestTitleBlockCells(t *testing.T) {
	records := []record.Properties{
		record.Parse([]byte("|HEADER=x|WEIGHT=1")),
		record.Parse([]byte("|RECORD=31|BORDERON=T|TITLEBLOCKON=T")),
	}
	tree, err := sch.Build(records)
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	opts := Options{Title: "Amplifier", FileName: "amp.SchDoc", DateStamp: "2024-05-01"}
	if err := Render(tree, rec, opts); err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(rec.textContent(), "\n")
	for _, want := range []string{"Title", "Amplifier", "amp.SchDoc", "2024-05-01", "Drawn By:", "A4"} {
		if !strings.Contains(joined, want) {
			t.Errorf("title block missing %q", want)
		}
	}
}

func TestWireStrokesPolyline(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=27|OWNERPARTID=-1|LINEWIDTH=1|COLOR=8388608|LOCATIONCOUNT=3|X1=10|Y1=10|X2=50|Y2=10|X3=50|Y3=40",
	)
	if rec.ops[0] != "M 10.0 10.0" || rec.ops[1] != "L 50.0 10.0" || rec.ops[2] != "L 50.0 40.0" {
		t.Fatalf("wire path = %v", rec.ops[:3])
	}
	if rec.ops[3] != "stroke #000080 1.0" {
		t.Fatalf("wire stroke = %v", rec.ops[3])
	}
}

func TestDegeneratePolylineRendersNothing(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=6|OWNERPARTID=-1|LOCATIONCOUNT=1|X1=10|Y1=10",
		"|RECORD=6|OWNERPARTID=-1|LOCATIONCOUNT=0",
	)
	if len(rec.ops) != 0 {
		t.Fatalf("degenerate polylines drew %v", rec.ops)
	}
}

func TestRectangleFillRules(t *testing.T) {
	base := "|RECORD=14|OWNERPARTID=-1|LOCATION.X=0|LOCATION.Y=0|CORNER.X=100|CORNER.Y=50|COLOR=128|AREACOLOR=32768"
	solid := renderPayloads(t, "|RECORD=31", base+"|ISSOLID=T")
	if solid.countPrefix("fillstroke") != 1 {
		t.Fatalf("solid rect ops = %v", solid.ops)
	}
	transparent := renderPayloads(t, "|RECORD=31", base+"|ISSOLID=T|TRANSPARENT=T")
	if transparent.countPrefix("fillstroke") != 0 || transparent.countPrefix("stroke") != 1 {
		t.Fatalf("transparent rect ops = %v", transparent.ops)
	}
	hollow := renderPayloads(t, "|RECORD=31", base)
	if hollow.countPrefix("fillstroke") != 0 || hollow.countPrefix("stroke") != 1 {
		t.Fatalf("hollow rect ops = %v", hollow.ops)
	}
}

func TestFullEllipseArcIsClosed(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=12|OWNERPARTID=-1|LOCATION.X=50|LOCATION.Y=50|RADIUS=20|STARTANGLE=0|ENDANGLE=360|COLOR=128",
	)
	if rec.countPrefix("Z") != 1 {
		t.Fatalf("full-circle arc should close its path: %v", rec.ops)
	}
}

func TestPartialArcEndpoints(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=12|OWNERPARTID=-1|LOCATION.X=100|LOCATION.Y=100|RADIUS=50|STARTANGLE=0|ENDANGLE=90|COLOR=128",
	)
	if rec.ops[0] != "M 150.0 100.0" {
		t.Fatalf("arc start = %v", rec.ops[0])
	}
	last := rec.ops[len(rec.ops)-2] // final curve before the stroke
	if last != "C 100.0 150.0" {
		t.Fatalf("arc end = %v", last)
	}
}

func TestPinTextVisibilityBits(t *testing.T) {
	component := "|RECORD=1|OWNERPARTID=-1|CURRENTPARTID=1|PARTCOUNT=2"
	pin := "|RECORD=2|OWNERINDEX=1|OWNERPARTID=1|LOCATION.X=100|LOCATION.Y=100|PINLENGTH=30|NAME=CLK|DESIGNATOR=7|PINCONGLOMERATE=%d"

	both := renderPayloads(t, "|RECORD=31", component, fmt.Sprintf(pin, 24))
	if got := both.textContent(); len(got) != 2 {
		t.Fatalf("conglomerate 24 texts = %v", got)
	}
	lineOnly := renderPayloads(t, "|RECORD=31", component, fmt.Sprintf(pin, 0))
	if got := lineOnly.textContent(); len(got) != 0 {
		t.Fatalf("conglomerate 0 texts = %v", got)
	}
}

func TestPinHiddenByPartFilter(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=1|OWNERPARTID=-1|CURRENTPARTID=1|PARTCOUNT=3",
		"|RECORD=2|OWNERINDEX=1|OWNERPARTID=2|LOCATION.X=0|LOCATION.Y=0|PINLENGTH=30|PINCONGLOMERATE=0",
	)
	if len(rec.ops) != 0 {
		t.Fatalf("pin for part 2 drawn while part 1 selected: %v", rec.ops)
	}
}

func TestPartOverrideSelectsOtherPart(t *testing.T) {
	records := []record.Properties{
		record.Parse([]byte("|HEADER=x|WEIGHT=3")),
		record.Parse([]byte("|RECORD=31")),
		record.Parse([]byte("|RECORD=1|OWNERPARTID=-1|CURRENTPARTID=1|PARTCOUNT=3")),
		record.Parse([]byte("|RECORD=2|OWNERINDEX=1|OWNERPARTID=2|LOCATION.X=0|LOCATION.Y=0|PINLENGTH=30|PINCONGLOMERATE=0")),
	}
	tree, err := sch.Build(records)
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	if err := Render(tree, rec, Options{Part: 2}); err != nil {
		t.Fatal(err)
	}
	if len(rec.ops) == 0 {
		t.Fatal("part override did not expose part 2 geometry")
	}
}

func TestDesignatorPartSuffix(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=1|OWNERPARTID=-1|CURRENTPARTID=2|PARTCOUNT=3",
		"|RECORD=34|OWNERINDEX=1|OWNERPARTID=-1|LOCATION.X=10|LOCATION.Y=10|NAME=Designator|TEXT=U1|FONTID=1",
	)
	if got := rec.textContent(); len(got) != 1 || got[0] != "U1B" {
		t.Fatalf("designator = %v, want [U1B]", got)
	}
}

func TestDesignatorNoSuffixForSinglePart(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=1|OWNERPARTID=-1|CURRENTPARTID=1|PARTCOUNT=2",
		"|RECORD=34|OWNERINDEX=1|OWNERPARTID=-1|LOCATION.X=10|LOCATION.Y=10|NAME=Designator|TEXT=R5|FONTID=1",
	)
	if got := rec.textContent(); len(got) != 1 || got[0] != "R5" {
		t.Fatalf("designator = %v, want [R5]", got)
	}
}

func TestHiddenParameterSkipped(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=41|OWNERPARTID=-1|LOCATION.X=0|LOCATION.Y=0|NAME=Value|TEXT=10uF|ISHIDDEN=T",
	)
	if len(rec.texts) != 0 {
		t.Fatalf("hidden parameter drawn: %v", rec.textContent())
	}
}

func TestPowerPortNetNamePlacement(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=17|OWNERPARTID=-1|LOCATION.X=100|LOCATION.Y=200|STYLE=2|TEXT=VCC|SHOWNETNAME=T|ORIENTATION=1|COLOR=128",
	)
	if len(rec.texts) != 1 {
		t.Fatalf("texts = %v", rec.textContent())
	}
	run := rec.texts[0]
	// Bar glyph: name sits 12 units past the rail, above for orientation 1.
	if run.Pos.X != 100 || run.Pos.Y != 212 {
		t.Fatalf("net name at %v", run.Pos)
	}
	if run.Anchor != AnchorMiddle || run.Baseline != BaselineBottom {
		t.Fatalf("net name placement %v/%v", run.Anchor, run.Baseline)
	}
}

func TestPowerPortNameSuppressed(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=17|OWNERPARTID=-1|LOCATION.X=0|LOCATION.Y=0|STYLE=4|TEXT=GND|SHOWNETNAME=F",
	)
	if len(rec.texts) != 0 {
		t.Fatalf("suppressed net name drawn: %v", rec.textContent())
	}
	if rec.countPrefix("stroke") == 0 {
		t.Fatal("ground glyph missing")
	}
}

func TestMissingEmbeddedImagePlaceholder(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=30|OWNERPARTID=-1|LOCATION.X=0|LOCATION.Y=0|CORNER.X=60|CORNER.Y=40|EMBEDIMAGE=T|FILENAME=logo.bmp",
	)
	if len(rec.images) != 0 {
		t.Fatal("missing chunk produced an image")
	}
	if rec.countPrefix("stroke") != 1 {
		t.Fatalf("placeholder outline ops = %v", rec.ops)
	}
}

func TestTextFrameWrapping(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=28|OWNERPARTID=-1|LOCATION.X=0|LOCATION.Y=0|CORNER.X=100|CORNER.Y=80|WORDWRAP=T|FONTID=1"+
			"|Text=first part~1tail",
	)
	got := rec.textContent()
	if len(got) < 2 {
		t.Fatalf("hard break ignored: %v", got)
	}
	if got[len(got)-1] != "tail" {
		t.Fatalf("last line = %q", got[len(got)-1])
	}
	// Lines stack downward from the frame's top edge.
	if !(rec.texts[0].Pos.Y > rec.texts[1].Pos.Y) {
		t.Fatalf("line positions %v then %v", rec.texts[0].Pos, rec.texts[1].Pos)
	}
}

func TestJunctionFilled(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=29|OWNERPARTID=-1|LOCATION.X=40|LOCATION.Y=40|COLOR=128",
	)
	if rec.countPrefix("fill #800000") != 1 {
		t.Fatalf("junction ops = %v", rec.ops)
	}
}

func TestUnknownKindSilent(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=215|OWNERPARTID=-1|SOMEKEY=1",
	)
	if len(rec.ops) != 0 {
		t.Fatalf("unknown kind drew %v", rec.ops)
	}
}

func TestOverlineSpans(t *testing.T) {
	cases := []struct {
		in   string
		want []Span
	}{
		{"CLK", []Span{{Text: "CLK"}}},
		{"R\\S\\T\\", []Span{{Text: "RST", Overline: true}}},
		{"W\\R\\", []Span{{Text: "WR", Overline: true}}},
		{"A\\B", []Span{{Text: "A", Overline: true}, {Text: "B"}}},
		{"AB\\", []Span{{Text: "A"}, {Text: "B", Overline: true}}},
	}
	for _, c := range cases {
		got := OverlineSpans(c.in)
		if len(got) != len(c.want) {
			t.Errorf("%q: spans %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%q: span %d = %v, want %v", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestWrapLine(t *testing.T) {
	got := wrapLine("the quick brown fox", 10)
	if len(got) != 2 || got[0] != "the quick" || got[1] != "brown fox" {
		t.Fatalf("wrap = %v", got)
	}
	if got := wrapLine("anything at all", 0); len(got) != 1 {
		t.Fatalf("unwrapped = %v", got)
	}
}

func TestCircleAngleAppliedToArcs(t *testing.T) {
	// An elliptical arc from 0 to 45 physical degrees must not end at the
	// 45-degree parameter point when the radii differ.
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=11|OWNERPARTID=-1|LOCATION.X=0|LOCATION.Y=0|RADIUS=50|SECONDARYRADIUS=100|STARTANGLE=0|ENDANGLE=45|COLOR=128",
	)
	last := rec.ops[len(rec.ops)-2]
	var x, y float64
	if _, err := fmt.Sscanf(last, "C %f %f", &x, &y); err != nil {
		t.Fatalf("unexpected op %q", last)
	}
	param := coords.CircleAngle(45, 50, 100) * math.Pi / 180
	wantX, wantY := 50*math.Cos(param), 100*math.Sin(param)
	if math.Abs(x-wantX) > 0.05 || math.Abs(y-wantY) > 0.05 {
		t.Fatalf("arc end (%v,%v), want (%v,%v)", x, y, wantX, wantY)
	}
}

func TestPortNameDefaultPlacement(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=18|OWNERPARTID=-1|LOCATION.X=40|LOCATION.Y=0|STYLE=3|WIDTH=60|NAME=CLK|COLOR=128|AREACOLOR=16317695|TEXTCOLOR=128",
	)
	if len(rec.texts) != 1 {
		t.Fatalf("texts = %v", rec.textContent())
	}
	run := rec.texts[0]
	// A horizontal port without an alignment key reads from the left edge.
	if run.Anchor != AnchorStart || run.Pos.X != 50 {
		t.Fatalf("port name anchor=%v pos=%v, want start at x=50", run.Anchor, run.Pos)
	}
	if run.Angle != 0 || run.Pos.Y != 0 {
		t.Fatalf("port name rotated or displaced: %v", run)
	}
}

func TestPortNameRightAligned(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=18|OWNERPARTID=-1|LOCATION.X=0|LOCATION.Y=0|STYLE=3|ALIGNMENT=2|WIDTH=60|NAME=CLK|COLOR=128|AREACOLOR=16317695|TEXTCOLOR=128",
	)
	if len(rec.texts) != 1 {
		t.Fatalf("texts = %v", rec.textContent())
	}
	run := rec.texts[0]
	if run.Anchor != AnchorEnd || run.Pos.X != 50 {
		t.Fatalf("port name anchor=%v pos=%v, want end at x=50", run.Anchor, run.Pos)
	}
}

func TestVerticalPortNameReadsFromBottom(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=18|OWNERPARTID=-1|LOCATION.X=0|LOCATION.Y=0|STYLE=7|WIDTH=60|NAME=CLK|COLOR=128|AREACOLOR=16317695|TEXTCOLOR=128",
	)
	if len(rec.texts) != 1 {
		t.Fatalf("texts = %v", rec.textContent())
	}
	run := rec.texts[0]
	if run.Anchor != AnchorEnd || run.Pos.Y != 50 || run.Angle != 90 {
		t.Fatalf("vertical port name anchor=%v pos=%v angle=%v", run.Anchor, run.Pos, run.Angle)
	}
}

func TestWarningSignRendersText(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=43|OWNERPARTID=-1|LOCATION.X=30|LOCATION.Y=40|NAME=DIFFPAIR|COLOR=128",
	)
	if got := rec.textContent(); len(got) != 1 || got[0] != "DIFFPAIR" {
		t.Fatalf("warning sign text = %v", got)
	}
	if rec.texts[0].Pos.X != 30 || rec.texts[0].Pos.Y != 40 {
		t.Fatalf("warning sign at %v", rec.texts[0].Pos)
	}
}

func TestInputPinMarkerMeetsLine(t *testing.T) {
	rec := renderPayloads(t,
		"|RECORD=31",
		"|RECORD=1|OWNERPARTID=-1|CURRENTPARTID=1|PARTCOUNT=2|LIBREFERENCE=U",
		"|RECORD=2|OWNERINDEX=1|OWNERPARTID=1|LOCATION.X=0|LOCATION.Y=0|PINLENGTH=20|PINCONGLOMERATE=0|ELECTRICAL=0|FORMALTYPE=1",
	)
	// The arrowhead straddles the pushed-out line start with its tip
	// reaching back to the attachment point.
	wantMarker := []string{"M 5.0 0.0", "L 7.0 -3.0", "L 0.0 0.0", "L 7.0 3.0", "Z"}
	for _, op := range wantMarker {
		if rec.countPrefix(op) == 0 {
			t.Fatalf("marker op %q missing from %v", op, rec.ops)
		}
	}
	if rec.countPrefix("M 5.0 0.0") == 0 || rec.countPrefix("L 20.0 0.0") == 0 {
		t.Fatalf("pin line should span 5..20: %v", rec.ops)
	}
}
