// Package table implements the transitions table (C6): the per-state
// mapping from vocabulary token id to destination state that the guide
// consults at decode time, plus a cached allowed-token bitmask per state
// for amortized O(1) lookup.
//
// Transitions for a state are kept in an ordered btree.Map rather than a
// plain Go map, grounded on bufbuild-protocompile's interval map
// (internal/interval/map.go): an ordered map supports both the dense,
// sorted iteration AllowedMask needs to build a bitmask and the
// binary-search-style point lookup NextState needs, without keeping two
// separate structures in sync.
package table

import (
	"sort"
	"sync"

	"github.com/tidwall/btree"

	"github.com/tokendfa/tokendfa/rex"
	"github.com/tokendfa/tokendfa/vocab"
)

// MutedPair names a ghost token id and the real vocabulary token id it
// stands in for, as produced by literal muting.
type MutedPair struct {
	Ghost vocab.TokenId
	Real  vocab.TokenId
}

type stateRow struct {
	transitions btree.Map[vocab.TokenId, rex.StateID]
	mask        *Bitmask
}

// Table is the transitions table for one TokensDFA build: a set of
// per-state token-id to destination-state mappings plus cached masks.
//
// The parallel walker (package walk) assigns each reachable state to
// exactly one worker, so concurrent Insert calls never target the same
// row. mu guards the shared states map itself (Go maps aren't safe for
// concurrent writes even to disjoint keys) and the lazily built mask
// cache that AllowedMask fills in for concurrent readers; once a row
// exists, the worker that owns its state mutates its transitions without
// contention.
type Table struct {
	vocabSize int
	mu        sync.Mutex
	states    map[rex.StateID]*stateRow
}

// New creates an empty Table sized for a vocabulary of vocabSize tokens.
// vocabSize bounds every Bitmask returned by AllowedMask.
func New(vocabSize int) *Table {
	return &Table{
		vocabSize: vocabSize,
		states:    make(map[rex.StateID]*stateRow),
	}
}

func (t *Table) row(from rex.StateID) *stateRow {
	t.mu.Lock()
	r, ok := t.states[from]
	if !ok {
		r = &stateRow{}
		t.states[from] = r
	}
	t.mu.Unlock()
	return r
}

// Insert records a from-state to-state transition labeled by token. It is
// idempotent: inserting the same (from, token, to) triple twice is a
// no-op. Inserting a second, different destination for an existing
// (from, token) pair is an invariant violation and returns a
// *ConflictError, since the table must represent a function from
// (state, token) to at most one destination.
func (t *Table) Insert(from rex.StateID, token vocab.TokenId, to rex.StateID) error {
	r := t.row(from)
	if existing, ok := r.transitions.Get(token); ok {
		if existing == to {
			return nil
		}
		return &ConflictError{
			From:     uint32(from),
			Token:    uint32(token),
			Existing: uint32(existing),
			Attempt:  uint32(to),
		}
	}
	r.transitions.Set(token, to)
	r.mask = nil
	return nil
}

// NextState returns the destination state for (state, token), and whether
// that transition exists.
func (t *Table) NextState(state rex.StateID, token vocab.TokenId) (rex.StateID, bool) {
	r, ok := t.states[state]
	if !ok {
		return 0, false
	}
	return r.transitions.Get(token)
}

// AllowedMask returns the bitmask of tokens with a transition out of
// state. The mask is computed once per state and cached until the next
// Insert or Reduce call invalidates it, giving amortized O(1) lookups for
// a state queried repeatedly across a decode loop.
func (t *Table) AllowedMask(state rex.StateID) *Bitmask {
	r, ok := t.states[state]
	if !ok {
		return NewBitmask(t.vocabSize)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if r.mask != nil {
		return r.mask
	}
	mask := NewBitmask(t.vocabSize)
	r.transitions.Scan(func(token vocab.TokenId, _ rex.StateID) bool {
		if int(token) < t.vocabSize {
			mask.Set(int(token))
		}
		return true
	})
	r.mask = mask
	return mask
}

// Reduce rewrites every transition labeled by a ghost token id in muted to
// the real token id it stands for, then drops the ghost label. If a state
// holds transitions for both a ghost and its underlying real token with
// different destinations, the ghost's destination wins, since the ghost
// represents the only substring-consistent walk that survived muting.
// Reduce is idempotent: once a ghost label has been rewritten, it no
// longer appears in any row, so reapplying the same muted list is a
// no-op. Every affected state's cached mask is invalidated.
func (t *Table) Reduce(muted []MutedPair) {
	if len(muted) == 0 {
		return
	}
	ghostToReal := make(map[vocab.TokenId]vocab.TokenId, len(muted))
	for _, p := range muted {
		ghostToReal[p.Ghost] = p.Real
	}

	for _, r := range t.states {
		var rewrites []struct {
			real vocab.TokenId
			to   rex.StateID
		}
		r.transitions.Scan(func(token vocab.TokenId, to rex.StateID) bool {
			if real, isGhost := ghostToReal[token]; isGhost {
				rewrites = append(rewrites, struct {
					real vocab.TokenId
					to   rex.StateID
				}{real, to})
			}
			return true
		})
		if len(rewrites) == 0 {
			continue
		}
		for ghost := range ghostToReal {
			r.transitions.Delete(ghost)
		}
		for _, rw := range rewrites {
			r.transitions.Set(rw.real, rw.to)
		}
		r.mask = nil
	}
}

// States returns every from-state with at least one recorded transition,
// in ascending order.
func (t *Table) States() []rex.StateID {
	out := make([]rex.StateID, 0, len(t.states))
	for s := range t.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NumStates returns the number of states with at least one recorded
// transition.
func (t *Table) NumStates() int {
	return len(t.states)
}

// Transitions calls yield once per (token, to) pair recorded for state, in
// ascending token order. Used by serialization, which needs a stable,
// sorted enumeration of each state's outgoing edges.
func (t *Table) Transitions(state rex.StateID, yield func(token vocab.TokenId, to rex.StateID) bool) {
	r, ok := t.states[state]
	if !ok {
		return
	}
	r.transitions.Scan(func(token vocab.TokenId, to rex.StateID) bool {
		return yield(token, to)
	})
}

// NumTransitions returns the number of outgoing transitions recorded for
// state.
func (t *Table) NumTransitions(state rex.StateID) int {
	r, ok := t.states[state]
	if !ok {
		return 0
	}
	return r.transitions.Len()
}

// VocabSize returns the vocabulary size this table was built for, the
// width in bits of every Bitmask AllowedMask returns.
func (t *Table) VocabSize() int {
	return t.vocabSize
}
