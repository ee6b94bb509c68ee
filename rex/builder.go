package rex

import "fmt"

// Builder constructs an NFA incrementally. Compile uses it to translate a
// regexp/syntax AST into Thompson-construction states; it tracks byte class
// boundaries as each transition is added so the finished NFA carries its own
// alphabet reduction.
type Builder struct {
	states       []State
	start        StateID
	byteClassSet *ByteClassSet
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		states:       make([]State, 0, 16),
		start:        InvalidState,
		byteClassSet: NewByteClassSet(),
	}
}

// AddMatch adds an accepting state.
func (b *Builder) AddMatch() StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{id: id, kind: StateMatch})
	return id
}

// AddByteRange adds a state consuming one byte in [lo, hi], moving to next.
// For a single byte set lo == hi.
func (b *Builder) AddByteRange(lo, hi byte, next StateID) StateID {
	b.byteClassSet.SetRange(lo, hi)
	id := StateID(len(b.states))
	b.states = append(b.states, State{id: id, kind: StateByteRange, lo: lo, hi: hi, next: next})
	return id
}

// AddSparse adds a state with several disjoint byte-range arms, one per
// member of a character class. transitions is copied.
func (b *Builder) AddSparse(transitions []Transition) StateID {
	for _, tr := range transitions {
		b.byteClassSet.SetRange(tr.Lo, tr.Hi)
	}
	id := StateID(len(b.states))
	trans := make([]Transition, len(transitions))
	copy(trans, transitions)
	b.states = append(b.states, State{id: id, kind: StateSparse, transitions: trans})
	return id
}

// AddSplit adds a state with epsilon transitions to both left and right,
// used for alternation and repetition.
func (b *Builder) AddSplit(left, right StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{id: id, kind: StateSplit, left: left, right: right})
	return id
}

// AddEpsilon adds a state with a single epsilon transition.
func (b *Builder) AddEpsilon(next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{id: id, kind: StateEpsilon, next: next})
	return id
}

// AddFail adds a dead state with no transitions.
func (b *Builder) AddFail() StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{id: id, kind: StateFail})
	return id
}

// Patch rewrites the single "next" target of a ByteRange or Epsilon state.
// Compile uses this to close forward references left by repetition and
// concatenation.
func (b *Builder) Patch(stateID, target StateID) error {
	if int(stateID) >= len(b.states) {
		return &BuildError{Message: "state ID out of bounds", StateID: stateID}
	}
	s := &b.states[stateID]
	switch s.kind {
	case StateByteRange, StateEpsilon:
		s.next = target
		return nil
	default:
		return &BuildError{Message: fmt.Sprintf("cannot patch state of kind %s", s.kind), StateID: stateID}
	}
}

// PatchSplit rewrites both targets of a Split state.
func (b *Builder) PatchSplit(stateID StateID, left, right StateID) error {
	if int(stateID) >= len(b.states) {
		return &BuildError{Message: "state ID out of bounds", StateID: stateID}
	}
	s := &b.states[stateID]
	if s.kind != StateSplit {
		return &BuildError{Message: fmt.Sprintf("expected Split state, got %s", s.kind), StateID: stateID}
	}
	s.left, s.right = left, right
	return nil
}

// SetStart sets the NFA's single start state.
func (b *Builder) SetStart(start StateID) {
	b.start = start
}

// States returns the number of states added so far.
func (b *Builder) States() int {
	return len(b.states)
}

// Validate checks that the start state and every transition target refer to
// states that actually exist.
func (b *Builder) Validate() error {
	if b.start == InvalidState {
		return &BuildError{Message: "start state not set"}
	}
	if int(b.start) >= len(b.states) {
		return &BuildError{Message: "start state out of bounds", StateID: b.start}
	}
	for i, s := range b.states {
		id := StateID(i)
		switch s.kind {
		case StateByteRange, StateEpsilon:
			if s.next != InvalidState && int(s.next) >= len(b.states) {
				return &BuildError{Message: fmt.Sprintf("invalid next state %d", s.next), StateID: id}
			}
		case StateSplit:
			if s.left != InvalidState && int(s.left) >= len(b.states) {
				return &BuildError{Message: fmt.Sprintf("invalid left state %d", s.left), StateID: id}
			}
			if s.right != InvalidState && int(s.right) >= len(b.states) {
				return &BuildError{Message: fmt.Sprintf("invalid right state %d", s.right), StateID: id}
			}
		case StateSparse:
			for j, t := range s.transitions {
				if t.Next != InvalidState && int(t.Next) >= len(b.states) {
					return &BuildError{Message: fmt.Sprintf("invalid transition %d target %d", j, t.Next), StateID: id}
				}
			}
		}
	}
	return nil
}

// Build finalizes the NFA, computing its byte classes from the accumulated
// boundary set.
func (b *Builder) Build() (*NFA, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &NFA{
		states:      b.states,
		start:       b.start,
		byteClasses: b.byteClassSet.ByteClasses(),
	}, nil
}

// BuildError reports a malformed NFA detected by Builder.Validate.
type BuildError struct {
	Message string
	StateID StateID
}

func (e *BuildError) Error() string {
	if e.StateID != InvalidState {
		return fmt.Sprintf("rex: state %d: %s", e.StateID, e.Message)
	}
	return fmt.Sprintf("rex: %s", e.Message)
}
