package rex

import (
	"github.com/tokendfa/tokendfa/internal/sortutil"
	"github.com/tokendfa/tokendfa/internal/sparse"
)

// closure computes the epsilon-closure of a set of NFA states: every state
// reachable from states by following Split and Epsilon transitions without
// consuming a byte. The result is sorted by id for a stable state key.
//
// set is a caller-provided scratch SparseSet, reused across closure calls
// during eager subset construction to avoid reallocating per state.
func closure(n *NFA, states []StateID, set *sparse.SparseSet) []StateID {
	set.Clear()
	stack := make([]StateID, 0, len(states)*2)

	for _, sid := range states {
		if !set.Contains(uint32(sid)) {
			set.Insert(uint32(sid))
			stack = append(stack, sid)
		}
	}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		state := n.State(current)
		if state == nil {
			continue
		}

		switch state.Kind() {
		case StateEpsilon:
			next := state.Epsilon()
			if next != InvalidState && !set.Contains(uint32(next)) {
				set.Insert(uint32(next))
				stack = append(stack, next)
			}
		case StateSplit:
			left, right := state.Split()
			if left != InvalidState && !set.Contains(uint32(left)) {
				set.Insert(uint32(left))
				stack = append(stack, left)
			}
			if right != InvalidState && !set.Contains(uint32(right)) {
				set.Insert(uint32(right))
				stack = append(stack, right)
			}
		}
	}

	values := set.Values()
	out := make([]StateID, len(values))
	for i, v := range values {
		out[i] = StateID(v)
	}
	sortStateIDs(out)
	return out
}

// move computes the set of NFA states reachable from states by consuming a
// single byte b, without closing over epsilon transitions. Callers close the
// result themselves; see BuildByteDFA.
func move(n *NFA, states []StateID, b byte, set *sparse.SparseSet) []StateID {
	set.Clear()
	for _, sid := range states {
		state := n.State(sid)
		if state == nil {
			continue
		}
		switch state.Kind() {
		case StateByteRange:
			lo, hi, next := state.ByteRange()
			if b >= lo && b <= hi {
				set.Insert(uint32(next))
			}
		case StateSparse:
			for _, tr := range state.Transitions() {
				if b >= tr.Lo && b <= tr.Hi {
					set.Insert(uint32(tr.Next))
				}
			}
		}
	}
	values := set.Values()
	out := make([]StateID, len(values))
	for i, v := range values {
		out[i] = StateID(v)
	}
	return out
}

func sortStateIDs(ids []StateID) {
	sortutil.Ascending(ids)
}

func stateKey(ids []StateID) string {
	buf := make([]byte, len(ids)*4)
	for i, id := range ids {
		buf[i*4] = byte(id)
		buf[i*4+1] = byte(id >> 8)
		buf[i*4+2] = byte(id >> 16)
		buf[i*4+3] = byte(id >> 24)
	}
	return string(buf)
}
