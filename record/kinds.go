package record

import "strconv"

// Kind is the integer RECORD discriminator of a schematic object.
// KindHeader is synthetic: the header record carries no RECORD key.
type Kind int

const (
	KindHeader         Kind = 0
	KindComponent      Kind = 1
	KindPin            Kind = 2
	KindIEEESymbol     Kind = 3
	KindLabel          Kind = 4
	KindBezier         Kind = 5
	KindPolyline       Kind = 6
	KindPolygon        Kind = 7
	KindEllipse        Kind = 8
	KindRoundRectangle Kind = 10
	KindEllipticalArc  Kind = 11
	KindArc            Kind = 12
	KindLine           Kind = 13
	KindRectangle      Kind = 14
	KindSheetSymbol    Kind = 15
	KindPowerPort      Kind = 17
	KindPort           Kind = 18
	KindNoERC          Kind = 22
	KindNetLabel       Kind = 25
	KindBus            Kind = 26
	KindWire           Kind = 27
	KindTextFrame      Kind = 28
	KindJunction       Kind = 29
	KindImage          Kind = 30
	KindSheet          Kind = 31
	KindSheetName      Kind = 32
	KindSheetFileName  Kind = 33
	KindDesignator     Kind = 34
	KindBusEntry       Kind = 37
	KindTemplate       Kind = 39
	KindParameter      Kind = 41
	KindWarningSign    Kind = 43
)

var kindNames = map[Kind]string{
	KindHeader:         "Header",
	KindComponent:      "Component",
	KindPin:            "Pin",
	KindIEEESymbol:     "IEEESymbol",
	KindLabel:          "Label",
	KindBezier:         "Bezier",
	KindPolyline:       "Polyline",
	KindPolygon:        "Polygon",
	KindEllipse:        "Ellipse",
	KindRoundRectangle: "RoundRectangle",
	KindEllipticalArc:  "EllipticalArc",
	KindArc:            "Arc",
	KindLine:           "Line",
	KindRectangle:      "Rectangle",
	KindSheetSymbol:    "SheetSymbol",
	KindPowerPort:      "PowerPort",
	KindPort:           "Port",
	KindNoERC:          "NoERC",
	KindNetLabel:       "NetLabel",
	KindBus:            "Bus",
	KindWire:           "Wire",
	KindTextFrame:      "TextFrame",
	KindJunction:       "Junction",
	KindImage:          "Image",
	KindSheet:          "Sheet",
	KindSheetName:      "SheetName",
	KindSheetFileName:  "SheetFileName",
	KindDesignator:     "Designator",
	KindBusEntry:       "BusEntry",
	KindTemplate:       "Template",
	KindParameter:      "Parameter",
	KindWarningSign:    "WarningSign",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Record" + strconv.Itoa(int(k))
}

// Kind reads the RECORD discriminator; records without one are header
// records.
func (p Properties) Kind() Kind {
	return Kind(p.Int("RECORD"))
}

// Pin electrical types.
const (
	PinInput = iota
	PinIO
	PinOutput
	PinOpenCollector
	PinPassive
	PinHiZ
	PinOpenEmitter
	PinPower
)

// Power port styles.
const (
	PowerStyleCircle = iota
	PowerStyleArrow
	PowerStyleBar
	PowerStyleWave
	PowerStyleGround
	PowerStyleSignalGround
	PowerStyleEarth
)
