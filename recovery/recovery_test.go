package recovery

import (
	"errors"
	"strings"
	"testing"
)

func TestStrictStrategy(t *testing.T) {
	s := NewStrictStrategy()
	if got := s.OnError(errors.New("boom"), Location{}); got != ActionFail {
		t.Fatalf("strict strategy returned %v, want ActionFail", got)
	}
}

func TestLenientStrategyAccumulates(t *testing.T) {
	s := NewLenientStrategy()
	loc := Location{Stream: "FileHeader", RecordIndex: 3, ByteOffset: 42, Component: "framer"}
	if got := s.OnError(errors.New("truncated record"), loc); got != ActionFix {
		t.Fatalf("lenient strategy returned %v, want ActionFix", got)
	}
	if len(s.Errors) != 1 {
		t.Fatalf("expected 1 accumulated error, got %d", len(s.Errors))
	}
	msg := s.Errors[0].Error()
	for _, frag := range []string{"framer", "FileHeader", "record 3", "offset 42", "truncated record"} {
		if !strings.Contains(msg, frag) {
			t.Errorf("accumulated error %q missing %q", msg, frag)
		}
	}
}
