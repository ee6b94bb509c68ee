// Package rex compiles a regular expression into a fully explored byte-level
// DFA: every state reachable from the start state is materialized up front,
// rather than discovered lazily during a search. This is the byte-DFA
// adapter named C2 by the construction pipeline (see tokendfa's doc.go).
package rex

// ByteClasses maps each byte value to its equivalence class.
//
// Two bytes belong to the same class if the compiled automaton never makes
// a different transition decision between them in any state. Folding the
// input alphabet down to N classes (typically a few dozen) keeps per-state
// transition tables small without changing which strings the automaton
// accepts.
type ByteClasses struct {
	classes [256]byte
}

// NewByteClasses creates a ByteClasses where all bytes are in class 0.
func NewByteClasses() ByteClasses {
	return ByteClasses{}
}

// SingletonByteClasses creates a ByteClasses with no alphabet reduction:
// each byte is its own class.
func SingletonByteClasses() ByteClasses {
	var bc ByteClasses
	for i := 0; i < 256; i++ {
		bc.classes[i] = byte(i)
	}
	return bc
}

// Get returns the equivalence class for b.
func (bc *ByteClasses) Get(b byte) byte {
	return bc.classes[b]
}

// AlphabetLen returns the number of distinct equivalence classes.
func (bc *ByteClasses) AlphabetLen() int {
	maxClass := byte(0)
	for _, c := range bc.classes {
		if c > maxClass {
			maxClass = c
		}
	}
	return int(maxClass) + 1
}

// IsSingleton reports whether every byte is its own class.
func (bc *ByteClasses) IsSingleton() bool {
	return bc.AlphabetLen() == 256
}

// Representatives returns one byte per equivalence class, in class order.
// Feeding a representative through the NFA closure computes the transition
// for every byte in its class.
func (bc *ByteClasses) Representatives() []byte {
	seen := make([]bool, 256)
	var reps []byte
	for b := 0; b < 256; b++ {
		class := bc.classes[b]
		if !seen[class] {
			seen[class] = true
			reps = append(reps, byte(b))
		}
	}
	return reps
}

// Elements returns every byte belonging to class.
func (bc *ByteClasses) Elements(class byte) []byte {
	var elems []byte
	for b := 0; b < 256; b++ {
		if bc.classes[b] == class {
			elems = append(elems, byte(b))
		}
	}
	return elems
}

// ByteClassSet accumulates class boundaries while an NFA is compiled from
// a regex AST. Every byte range attached to a transition contributes a
// boundary at its endpoints; once compilation finishes, ByteClasses
// collapses the boundary set into a dense class table.
type ByteClassSet struct {
	bits [4]uint64
}

// NewByteClassSet creates an empty ByteClassSet with no boundaries, meaning
// the whole alphabet starts in a single class.
func NewByteClassSet() *ByteClassSet {
	return &ByteClassSet{}
}

// SetRange marks [start, end] as a range with a transition distinct from its
// neighbors, by flagging start-1 (the last byte before the range) and end
// (the last byte of the range) as class boundaries.
func (bcs *ByteClassSet) SetRange(start, end byte) {
	if start > 0 {
		bcs.setBit(start - 1)
	}
	bcs.setBit(end)
}

// SetByte puts b in a class of its own. Equivalent to SetRange(b, b).
func (bcs *ByteClassSet) SetByte(b byte) {
	bcs.SetRange(b, b)
}

func (bcs *ByteClassSet) setBit(b byte) {
	bcs.bits[b/64] |= 1 << (b % 64)
}

func (bcs *ByteClassSet) getBit(b byte) bool {
	return bcs.bits[b/64]&(1<<(b%64)) != 0
}

// ByteClasses collapses the accumulated boundaries into a lookup table by
// incrementing the class number at each boundary byte.
func (bcs *ByteClassSet) ByteClasses() ByteClasses {
	var bc ByteClasses
	class := byte(0)
	for b := 0; b < 256; b++ {
		bc.classes[b] = class
		if bcs.getBit(byte(b)) {
			class++
		}
	}
	return bc
}

// Merge folds other's boundaries into bcs, used when compiling composite
// regex nodes (concatenation, alternation) whose children each contribute
// boundaries independently.
func (bcs *ByteClassSet) Merge(other *ByteClassSet) {
	bcs.bits[0] |= other.bits[0]
	bcs.bits[1] |= other.bits[1]
	bcs.bits[2] |= other.bits[2]
	bcs.bits[3] |= other.bits[3]
}
