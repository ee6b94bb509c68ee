// Package guide implements the guide (C7): a thin, single-threaded cursor
// over an immutable transitions table, exposing the allowed-token set for
// the current state and advancing that state one token at a time.
//
// A Guide holds only a shared read-only reference to its table plus a
// mutable current-state field. Many guides may read the same table
// concurrently without synchronization because the table never changes
// after C6's reduce step; each guide's own state is unsynchronized and
// must not be shared across goroutines.
package guide

import (
	"fmt"

	"github.com/tokendfa/tokendfa/rex"
	"github.com/tokendfa/tokendfa/table"
	"github.com/tokendfa/tokendfa/vocab"
)

// ErrorKind classifies guide errors.
type ErrorKind uint8

const (
	// RejectedTransition indicates Advance was called with a token id that
	// has no outgoing transition from the guide's current state.
	RejectedTransition ErrorKind = iota
)

func (k ErrorKind) String() string {
	switch k {
	case RejectedTransition:
		return "RejectedTransition"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// Error reports that a requested transition does not exist. The guide's
// cursor is left unchanged when this is returned.
type Error struct {
	Kind  ErrorKind
	State rex.StateID
	Token vocab.TokenId
}

func (e *Error) Error() string {
	return fmt.Sprintf("guide: token %d has no transition from state %d", e.Token, e.State)
}

// Guide is a cursor over (table, current_state). It is not safe for
// concurrent use by multiple goroutines; create one Guide per decode
// session and share the underlying table instead.
type Guide struct {
	table   *table.Table
	current rex.StateID
}

// New creates a Guide positioned at start over tbl. tbl must not be
// mutated for the lifetime of the returned Guide.
func New(tbl *table.Table, start rex.StateID) *Guide {
	return &Guide{table: tbl, current: start}
}

// State returns the guide's current automaton state.
func (g *Guide) State() rex.StateID {
	return g.current
}

// Tokens returns the set of token ids allowed from the current state. If
// buf is non-nil, the current allowed mask is written into it (which must
// be at least ceil(vocab_size/8) bytes long) and Tokens returns nil;
// otherwise a freshly allocated, ascending list of token ids is returned.
func (g *Guide) Tokens(buf []byte) []vocab.TokenId {
	mask := g.table.AllowedMask(g.current)
	if buf != nil {
		copy(buf, mask.Bytes())
		return nil
	}
	return maskTokens(mask)
}

// AllowedTokenCount returns the number of tokens allowed from the current
// state, without allocating the token list itself.
func (g *Guide) AllowedTokenCount() int {
	mask := g.table.AllowedMask(g.current)
	n := 0
	for i := 0; i < mask.Size(); i++ {
		if mask.Test(i) {
			n++
		}
	}
	return n
}

// Advance consults the transition for (current_state, token). If none
// exists, the cursor is left unchanged and a *Error with kind
// RejectedTransition is returned — including the end-of-sequence case,
// where token is the eos token id and the current state is not final (no
// accepting transition was ever recorded for it). On success the cursor
// moves to the destination state and Advance behaves exactly like Tokens
// for the new state.
func (g *Guide) Advance(token vocab.TokenId, buf []byte) ([]vocab.TokenId, error) {
	next, ok := g.table.NextState(g.current, token)
	if !ok {
		return nil, &Error{Kind: RejectedTransition, State: g.current, Token: token}
	}
	g.current = next
	return g.Tokens(buf), nil
}

func maskTokens(mask *table.Bitmask) []vocab.TokenId {
	set := mask.SetTokens()
	out := make([]vocab.TokenId, len(set))
	for i, tok := range set {
		out[i] = vocab.TokenId(tok)
	}
	return out
}
