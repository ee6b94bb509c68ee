package rex

import "github.com/tokendfa/tokendfa/internal/sparse"

// DeadState is the sentinel target for a class with no transition from a
// given state. A walker that reaches DeadState can stop exploring that
// branch: no suffix can ever lead to a match.
const DeadState StateID = 0xFFFFFFFE

// ByteDFA is a fully explored byte-level deterministic automaton: every
// state reachable from Start has already been computed, unlike a
// search-time DFA that discovers states lazily as it scans a haystack. This
// is what the construction pipeline calls the byte-DFA adapter (C2): it
// turns an NFA into the byte-class transition table the rest of the
// pipeline (dead-byte analysis, the prefix graph, the parallel walker) walks
// without ever touching regexp/syntax or Thompson states again.
type ByteDFA struct {
	classes     ByteClasses
	transitions [][]StateID // [state][class] -> next state or DeadState
	final       []bool
	start       StateID
}

// NewByteDFA compiles pattern and eagerly determinizes it into a ByteDFA.
func NewByteDFA(pattern string) (*ByteDFA, error) {
	n, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	return BuildByteDFA(n)
}

// BuildByteDFA runs eager subset construction over an already-compiled NFA.
func BuildByteDFA(n *NFA) (*ByteDFA, error) {
	classes := *n.ByteClasses()
	reps := classes.Representatives()
	alphabetLen := len(reps)

	d := &ByteDFA{classes: classes}

	scratch := sparse.NewSparseSet(uint32(n.States()))
	moveScratch := sparse.NewSparseSet(uint32(n.States()))

	startSet := closure(n, []StateID{n.Start()}, scratch)
	seen := map[string]StateID{}
	order := [][]StateID{}

	intern := func(set []StateID) StateID {
		key := stateKey(set)
		if id, ok := seen[key]; ok {
			return id
		}
		id := StateID(len(order))
		seen[key] = id
		order = append(order, set)
		return id
	}

	d.start = intern(startSet)

	// order grows as intern discovers new state sets; the loop bound is
	// re-read each iteration so newly discovered states get their own row.
	for i := 0; i < len(order); i++ {
		nfaSet := order[i]
		row := make([]StateID, alphabetLen)
		for c := range row {
			row[c] = DeadState
		}
		for classID, rep := range reps {
			targets := move(n, nfaSet, rep, moveScratch)
			if len(targets) == 0 {
				continue
			}
			closed := closure(n, targets, scratch)
			row[classID] = intern(closed)
		}
		d.transitions = append(d.transitions, row)
		d.final = append(d.final, isFinalSet(n, nfaSet))
	}

	return d, nil
}

func isFinalSet(n *NFA, set []StateID) bool {
	for _, id := range set {
		if s := n.State(id); s != nil && s.IsMatch() {
			return true
		}
	}
	return false
}

// StartState returns the DFA's initial state.
func (d *ByteDFA) StartState() StateID { return d.start }

// IsFinal reports whether state is an accepting state.
func (d *ByteDFA) IsFinal(state StateID) bool {
	if int(state) >= len(d.final) {
		return false
	}
	return d.final[state]
}

// IsDead reports whether state has no outgoing transitions at all, meaning
// no string extends it to a match.
func (d *ByteDFA) IsDead(state StateID) bool {
	if state == DeadState {
		return true
	}
	if int(state) >= len(d.transitions) {
		return true
	}
	for _, next := range d.transitions[state] {
		if next != DeadState {
			return false
		}
	}
	return !d.IsFinal(state)
}

// ByteClasses returns the alphabet reduction shared by every state's
// transition row.
func (d *ByteDFA) ByteClasses() ByteClasses { return d.classes }

// NumStates returns the number of states in the DFA. The DeadState
// sentinel is not counted.
func (d *ByteDFA) NumStates() int { return len(d.transitions) }

// Step returns the state reached from state on byte class class, or
// DeadState if there is no such transition.
func (d *ByteDFA) Step(state StateID, class byte) StateID {
	if int(state) >= len(d.transitions) {
		return DeadState
	}
	row := d.transitions[state]
	if int(class) >= len(row) {
		return DeadState
	}
	return row[class]
}

// StepByte is a convenience wrapper that maps a raw byte to its class
// before stepping.
func (d *ByteDFA) StepByte(state StateID, b byte) StateID {
	return d.Step(state, d.classes.Get(b))
}
