// Package literal implements literal muting (C1): it finds maximal
// deterministic alphanumeric substrings in a regex pattern, covers each
// one with the fewest possible vocabulary tokens, and replaces both the
// pattern text and every vocabulary token's byte encoding with an opaque
// ghost byte sequence standing in for that cover. Muting lets the byte
// DFA and prefix graph treat a whole literal word as one alphabet symbol
// instead of walking it byte by byte.
package literal

import (
	"sort"
	"strconv"

	"github.com/tokendfa/tokendfa/prune"
	"github.com/tokendfa/tokendfa/rex"
	"github.com/tokendfa/tokendfa/table"
	"github.com/tokendfa/tokendfa/vocab"
)

// ghostFallback is the documented fallback sequence of control-byte
// prefixes (spec's Design Notes, "Ghost-token collisions"): 0x1C is
// tried first, then 0x1D, 0x1E, 0x1F in order.
var ghostFallback = [...]byte{0x1C, 0x1D, 0x1E, 0x1F}

// AlphabetExhaustedError reports that every fallback ghost-byte prefix
// collides with a byte already live in the original regex's alphabet.
type AlphabetExhaustedError struct{}

func (e *AlphabetExhaustedError) Error() string {
	return "literal: every ghost-byte prefix candidate collides with the regex's live alphabet"
}

// Muter covers literals found in a regex pattern with vocabulary tokens
// and rewrites both the pattern and the vocabulary to use the resulting
// ghost bytes in place of the muted text.
type Muter struct {
	idx    *tokenIndex
	prefix byte
	next   int
}

// NewMuter builds a Muter for vocabulary v, choosing a ghost-byte prefix
// that is dead (never reachable) in the original, un-muted pattern's byte
// DFA. classes and dead are that DFA's ByteClasses and DeadClasses
// output (package prune), supplied by the caller since both are already
// needed elsewhere in construction.
func NewMuter(v vocab.Vocabulary, classes rex.ByteClasses, dead []bool) (*Muter, error) {
	prefix, err := choosePrefix(classes, dead)
	if err != nil {
		return nil, err
	}
	return &Muter{idx: newTokenIndex(v), prefix: prefix, next: nextGhostID(v)}, nil
}

// nextGhostID returns one past the largest token id v exposes, including
// its eos id, so ghost ids assigned during Mute never collide with a real
// vocabulary token id (ids are only required to be non-negative, not
// dense, so this can't simply start from v.Size()). v may omit its eos
// entry from Tokens (callers typically mute a vocabulary with eos already
// excluded), so EOSTokenID is considered separately here.
func nextGhostID(v vocab.Vocabulary) int {
	max := int(v.EOSTokenID())
	v.Tokens(func(e vocab.Entry) bool {
		if int(e.ID) > max {
			max = int(e.ID)
		}
		return true
	})
	return max + 1
}

func choosePrefix(classes rex.ByteClasses, dead []bool) (byte, error) {
	for _, b := range ghostFallback {
		if !prune.IsLive(classes, dead, []byte{b}) {
			return b, nil
		}
	}
	return 0, &AlphabetExhaustedError{}
}

// Result is the outcome of muting one pattern.
type Result struct {
	// Pattern is the regex text with every successfully covered literal
	// replaced by its ghost byte sequence.
	Pattern string

	// Muted records, for every cover token used anywhere in Pattern, the
	// ghost token id assigned to it and the real vocabulary token id it
	// stands for. Passed to table.Table.Reduce after construction.
	Muted []table.MutedPair

	// Rewrites maps each successfully covered literal's original byte
	// string to the full ghost byte sequence substituted for it (the
	// concatenation of every cover piece's ghost bytes, in order). Used by
	// RewriteVocabulary to rewrite other tokens that merely contain a muted
	// literal as a substring (e.g. "https" containing muted "http").
	Rewrites map[string][]byte

	// TokenRewrites maps each cover token's own id to the ghost bytes
	// assigned to it alone. A cover token's encoding equals exactly one
	// piece of the literal it helps spell; RewriteVocabulary replaces that
	// token's entire byte encoding with this value rather than scanning it
	// for a substring match, since a multi-token cover's pieces are each
	// shorter than the literal itself and would never be found by a
	// substring search over Rewrites.
	TokenRewrites map[vocab.TokenId][]byte
}

type patternEdit struct {
	start, end int
	ghost      []byte
}

// Mute finds every qualifying literal in pattern, covers it with
// vocabulary tokens, and returns the rewritten pattern text plus the
// bookkeeping needed to reduce the transitions table and rewrite the
// vocabulary afterward. A literal with no cover (TokenizationMismatch) is
// left un-muted; this is not an error.
func (m *Muter) Mute(pattern string) *Result {
	spans := ExtractSpans(pattern)
	res := &Result{Rewrites: map[string][]byte{}, TokenRewrites: map[vocab.TokenId][]byte{}}
	if len(spans) == 0 {
		res.Pattern = pattern
		return res
	}

	var edits []patternEdit
	for _, sp := range spans {
		key := string(sp.Bytes)
		if ghost, ok := res.Rewrites[key]; ok {
			edits = append(edits, patternEdit{sp.Start, sp.End, ghost})
			continue
		}
		cover, ok := coalesce(sp.Bytes, m.idx)
		if !ok {
			continue
		}
		ghostBytes := make([]byte, 0, len(cover)*2)
		for _, ct := range cover {
			ghostID := vocab.TokenId(m.next)
			m.next++
			res.Muted = append(res.Muted, table.MutedPair{Ghost: ghostID, Real: ct.Token})
			chunk := append([]byte{m.prefix}, []byte(strconv.Itoa(int(ghostID)))...)
			res.TokenRewrites[ct.Token] = chunk
			ghostBytes = append(ghostBytes, chunk...)
		}
		res.Rewrites[key] = ghostBytes
		edits = append(edits, patternEdit{sp.Start, sp.End, ghostBytes})
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := []byte(pattern)
	for _, e := range edits {
		rest := append([]byte{}, out[e.end:]...)
		out = append(out[:e.start:e.start], e.ghost...)
		out = append(out, rest...)
	}
	res.Pattern = string(out)
	return res
}

// RewriteVocabulary produces a new entry list with muting applied to every
// affected token. A cover token (one of the pieces Muter.Mute used to spell
// out a literal) has its id present in tokenRewrites and its entire byte
// encoding is replaced by that single assignment, since such a token's
// whole encoding is exactly one piece of the literal — a multi-token
// cover's pieces are each shorter than the literal and would never be
// found by scanning for the literal's full text. Every other token is
// scanned for an occurrence of a muted literal's original byte string as a
// substring (e.g. "https" containing muted "http") and has that substring
// replaced by the literal's full ghost blob from textRewrites. A token
// touched by neither is returned unchanged (by value, new Bytes only
// allocated when a replacement actually happens).
func RewriteVocabulary(entries []vocab.Entry, tokenRewrites map[vocab.TokenId][]byte, textRewrites map[string][]byte) []vocab.Entry {
	if len(tokenRewrites) == 0 && len(textRewrites) == 0 {
		return entries
	}
	keys := make([][]byte, 0, len(textRewrites))
	for k := range textRewrites {
		keys = append(keys, []byte(k))
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	out := make([]vocab.Entry, len(entries))
	for idx, e := range entries {
		if ghost, ok := tokenRewrites[e.ID]; ok {
			out[idx] = vocab.Entry{ID: e.ID, Bytes: ghost}
			continue
		}
		out[idx] = vocab.Entry{ID: e.ID, Bytes: rewriteBytes(e.Bytes, keys, textRewrites)}
	}
	return out
}

func rewriteBytes(data []byte, keysByLenDesc [][]byte, rewrites map[string][]byte) []byte {
	var out []byte
	replaced := false
	i := 0
	for i < len(data) {
		matched := false
		for _, k := range keysByLenDesc {
			if len(k) == 0 || i+len(k) > len(data) {
				continue
			}
			if string(data[i:i+len(k)]) == string(k) {
				out = append(out, rewrites[string(k)]...)
				i += len(k)
				matched = true
				replaced = true
				break
			}
		}
		if !matched {
			out = append(out, data[i])
			i++
		}
	}
	if !replaced {
		return data
	}
	return out
}
