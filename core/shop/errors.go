package shop

import "fmt"

// UnhandledEventError reports an event/state pair absent from the transition
// table. It indicates either a client pressing a stale button or a missing
// table entry, so it must reach the operator instead of being swallowed.
type UnhandledEventError struct {
	State State
	Kind  EventKind
}

func (e *UnhandledEventError) Error() string {
	return fmt.Sprintf("shop: no transition for event %q in state %q", e.Kind, e.State)
}
