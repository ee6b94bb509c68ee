// Package vocab defines the tokenizer vocabulary contract consumed by the
// rest of tokendfa: an immutable mapping from token id to byte sequence plus
// a distinguished end-of-sequence token id.
//
// The vocabulary is read-only input to construction (spec.md §3 "Lifecycles").
// tokendfa never mutates it and never outlives a single Build call's need for
// it.
package vocab

import "fmt"

// TokenId identifies a vocabulary entry. Token ids are non-negative and are
// expected (but not required) to be dense in [0, Size).
type TokenId uint32

// Entry is one (token id, byte encoding) pair yielded by Vocabulary.Tokens.
type Entry struct {
	ID    TokenId
	Bytes []byte
}

// Vocabulary is the read-only tokenizer contract required by Build.
//
// Implementations must be safe for concurrent reads: Build may call Tokens
// and EOSTokenID from multiple goroutines during construction (never
// concurrently with mutation, since the contract has none).
type Vocabulary interface {
	// Size returns the number of entries in the vocabulary.
	Size() int

	// Tokens calls yield once per (token id, bytes) pair. Iteration order is
	// unspecified but must be stable across repeated calls within one Build.
	Tokens(yield func(Entry) bool)

	// EOSTokenID returns the distinguished end-of-sequence token id.
	EOSTokenID() TokenId
}

// Slice is a Vocabulary backed by a plain slice, indexed by token id.
//
// Example:
//
//	v := vocab.Slice{
//	    Entries: [][]byte{[]byte("a"), []byte("b"), []byte("<eos>")},
//	    EOS:     2,
//	}
type Slice struct {
	// Entries holds each token's byte encoding, indexed by TokenId.
	Entries [][]byte
	// EOS is the end-of-sequence token id.
	EOS TokenId
}

// Size returns the number of entries in the vocabulary.
func (s Slice) Size() int {
	return len(s.Entries)
}

// Tokens iterates entries in id order.
func (s Slice) Tokens(yield func(Entry) bool) {
	for id, b := range s.Entries {
		if !yield(Entry{ID: TokenId(id), Bytes: b}) {
			return
		}
	}
}

// EOSTokenID returns the configured end-of-sequence token id.
func (s Slice) EOSTokenID() TokenId {
	return s.EOS
}

// Validate checks the vocabulary against the invariants construction
// depends on: every token has a non-empty byte encoding (spec.md §9 Open
// Question 3: "this spec forbids [the empty token]") and the EOS id names an
// entry that actually exists.
//
// Build calls Validate itself; callers that want to fail fast before
// attempting a (possibly expensive) regex compile can call it directly.
func Validate(v Vocabulary) error {
	if v.Size() == 0 {
		return &ValidationError{Message: "vocabulary is empty"}
	}

	seenEOS := false
	var err error
	v.Tokens(func(e Entry) bool {
		if len(e.Bytes) == 0 {
			err = &ValidationError{
				Message: fmt.Sprintf("token %d has an empty byte encoding", e.ID),
			}
			return false
		}
		if e.ID == v.EOSTokenID() {
			seenEOS = true
		}
		return true
	})
	if err != nil {
		return err
	}
	if !seenEOS {
		return &ValidationError{
			Message: fmt.Sprintf("eos token id %d is not present in the vocabulary", v.EOSTokenID()),
		}
	}
	return nil
}

// ValidationError reports a vocabulary that violates tokendfa's invariants.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "vocab: " + e.Message
}
