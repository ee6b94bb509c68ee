package table

import "fmt"

// ConflictError reports a divergent insert: two different destination
// states recorded for the same (from, token) pair.
type ConflictError struct {
	From     uint32
	Token    uint32
	Existing uint32
	Attempt  uint32
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"table: state %d token %d already transitions to %d, cannot also transition to %d",
		e.From, e.Token, e.Existing, e.Attempt,
	)
}
