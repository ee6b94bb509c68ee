package literal

import (
	"github.com/tokendfa/tokendfa/vocab"
)

// trieNode is one node of a byte-level trie over vocabulary entries,
// used to find every token matching a literal as a prefix at a given
// position. A plain trie fits the coalescence search better than
// coregx/ahocorasick's single-match semantics, which give no documented
// guarantee about which match is returned when several tokens cover the
// same span (see DESIGN.md's "Open dependency decisions").
type trieNode struct {
	children [256]*trieNode
	token    vocab.TokenId
	hasToken bool
}

// tokenIndex is the byte-trie built once per Muter from the surviving
// vocabulary, used to answer "which tokens match L starting at position
// i" during coalescence.
type tokenIndex struct {
	root *trieNode
}

func newTokenIndex(v vocab.Vocabulary) *tokenIndex {
	idx := &tokenIndex{root: &trieNode{}}
	v.Tokens(func(e vocab.Entry) bool {
		idx.insert(e)
		return true
	})
	return idx
}

func (idx *tokenIndex) insert(e vocab.Entry) {
	n := idx.root
	for _, b := range e.Bytes {
		c := n.children[b]
		if c == nil {
			c = &trieNode{}
			n.children[b] = c
		}
		n = c
	}
	// On a byte-identical collision, keep the smaller token id so
	// coalescence is deterministic regardless of vocabulary iteration
	// order.
	if !n.hasToken || e.ID < n.token {
		n.token = e.ID
		n.hasToken = true
	}
}

// matchesAt returns every (length, token) pair matching data as a prefix
// starting at data[start:], in ascending length order.
func (idx *tokenIndex) matchesAt(data []byte, start int) []coverEdge {
	var out []coverEdge
	n := idx.root
	for i := start; i < len(data); i++ {
		n = n.children[data[i]]
		if n == nil {
			break
		}
		if n.hasToken {
			out = append(out, coverEdge{length: i - start + 1, token: n.token})
		}
	}
	return out
}

type coverEdge struct {
	length int
	token  vocab.TokenId
}

// CoverToken is one vocabulary token selected to cover part of a muted
// literal.
type CoverToken struct {
	Token vocab.TokenId
	Bytes []byte
}

const unreachable = 1<<31 - 1

// coalesce finds the minimum-cardinality cover of literal by idx's
// vocabulary: the fewest tokens whose concatenation equals literal
// byte-for-byte. Ties are broken toward the cover whose tokens are
// longest first, by always preferring the longest edge that still lies
// on a shortest path to the end.
//
// Grounded on spec's guidance (Design Notes, "Coalescence minimality"):
// shortest path over a DAG of literal positions, breadth-first, memoized
// by position. dist[i] holds that shortest distance from position i to
// len(literal), computed backward so the forward reconstruction can
// greedily prefer the longest edge at each step without re-deriving
// distances.
func coalesce(literal []byte, idx *tokenIndex) ([]CoverToken, bool) {
	n := len(literal)
	dist := make([]int, n+1)
	for i := range dist {
		dist[i] = unreachable
	}
	dist[n] = 0

	for i := n - 1; i >= 0; i-- {
		best := unreachable
		for _, e := range idx.matchesAt(literal, i) {
			j := i + e.length
			if dist[j] != unreachable && dist[j]+1 < best {
				best = dist[j] + 1
			}
		}
		dist[i] = best
	}

	if dist[0] == unreachable {
		return nil, false
	}

	var cover []CoverToken
	pos := 0
	for pos < n {
		edges := idx.matchesAt(literal, pos)
		var chosen *coverEdge
		for i := len(edges) - 1; i >= 0; i-- {
			e := edges[i]
			j := pos + e.length
			if dist[j] != unreachable && dist[j] == dist[pos]-1 {
				chosen = &edges[i]
				break
			}
		}
		if chosen == nil {
			return nil, false
		}
		cover = append(cover, CoverToken{
			Token: chosen.token,
			Bytes: literal[pos : pos+chosen.length],
		})
		pos += chosen.length
	}
	return cover, true
}
