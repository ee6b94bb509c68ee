// Package prefix builds the prefix-graph forest (C4) the parallel walker
// traverses: surviving vocabulary tokens are encoded as byte-class
// sequences and grouped into trees rooted at their first class, so a byte
// DFA walk along a shared prefix happens once for every token that shares
// it, not once per token.
package prefix

import (
	"github.com/tokendfa/tokendfa/internal/sortutil"
	"github.com/tokendfa/tokendfa/rex"
	"github.com/tokendfa/tokendfa/vocab"
)

// ClassSequence is a token's byte string re-expressed as byte classes.
type ClassSequence []byte

// Encode maps every byte of encoding through classes.
func Encode(classes rex.ByteClasses, encoding []byte) ClassSequence {
	seq := make(ClassSequence, len(encoding))
	for i, b := range encoding {
		seq[i] = classes.Get(b)
	}
	return seq
}

// Node is one node of a prefix tree, keyed by a ClassSequence prefix.
// Every token whose ClassSequence equals the root-to-node path is recorded
// in Tokens.
type Node struct {
	// Class is the byte class on the edge leading into this node. Roots
	// have no incoming edge; Class is meaningless for them.
	Class byte

	// Tokens holds every TokenId whose ClassSequence terminates exactly at
	// this node.
	Tokens []vocab.TokenId

	// Children maps the next byte class to the child reached by it.
	Children map[byte]*Node
}

func newNode(class byte) *Node {
	return &Node{Class: class}
}

func (n *Node) child(class byte) *Node {
	if n.Children == nil {
		n.Children = make(map[byte]*Node)
	}
	c, ok := n.Children[class]
	if !ok {
		c = newNode(class)
		n.Children[class] = c
	}
	return c
}

// Graph is a forest of prefix trees, one per distinct starting byte class.
// Roots are pairwise disjoint in their starting class: two tokens with
// different first bytes (after class reduction) always land in different
// trees, which is what licenses traversing each root independently and in
// parallel.
type Graph struct {
	Roots map[byte]*Node
}

// Build groups entries into a Graph keyed by classes. Entries with an
// empty byte encoding are skipped (vocab.Validate rejects these upstream;
// Build doesn't re-validate).
func Build(classes rex.ByteClasses, entries []vocab.Entry) *Graph {
	g := &Graph{Roots: make(map[byte]*Node)}
	for _, e := range entries {
		if len(e.Bytes) == 0 {
			continue
		}
		seq := Encode(classes, e.Bytes)
		root, ok := g.Roots[seq[0]]
		if !ok {
			root = newNode(seq[0])
			g.Roots[seq[0]] = root
		}
		node := root
		for _, class := range seq[1:] {
			node = node.child(class)
		}
		node.Tokens = append(node.Tokens, e.ID)
	}
	return g
}

// SortedRootClasses returns the graph's starting classes in ascending
// order, for deterministic iteration by the walker.
func (g *Graph) SortedRootClasses() []byte {
	out := make([]byte, 0, len(g.Roots))
	for c := range g.Roots {
		out = append(out, c)
	}
	sortutil.Ascending(out)
	return out
}

// NumRoots returns the number of distinct starting classes in the graph.
func (g *Graph) NumRoots() int {
	return len(g.Roots)
}
