package recovery

import "fmt"

// StrictStrategy fails on the first structural fault.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(err error, location Location) Action {
	return ActionFail
}

// LenientStrategy keeps going on a best-effort basis, accumulating every
// fault so the caller can report them on its diagnostic channel after the
// document has been processed.
type LenientStrategy struct {
	Errors []error
}

func NewLenientStrategy() *LenientStrategy {
	return &LenientStrategy{}
}

func (s *LenientStrategy) OnError(err error, location Location) Action {
	s.Errors = append(s.Errors, fmt.Errorf("[%s] %s record %d offset %d: %w",
		location.Component, location.Stream, location.RecordIndex, location.ByteOffset, err))
	return ActionFix
}
