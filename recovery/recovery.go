package recovery

// Strategy decides how the pipeline reacts to a structural fault.
// Field-level defaults are not routed through here; only framing,
// container and ownership problems are.
type Strategy interface {
	OnError(err error, location Location) Action
}

type Location struct {
	Stream      string
	RecordIndex int
	ByteOffset  int64
	Component   string
}

type Action int

const (
	ActionFail Action = iota
	ActionSkip
	ActionFix
	ActionWarn
)
