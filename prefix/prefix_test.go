package prefix

import (
	"testing"

	"github.com/tokendfa/tokendfa/rex"
	"github.com/tokendfa/tokendfa/vocab"
)

func TestBuild_DisjointRoots(t *testing.T) {
	d, err := rex.NewByteDFA("cat|dog|car")
	if err != nil {
		t.Fatalf("NewByteDFA() error = %v", err)
	}
	classes := d.ByteClasses()

	entries := []vocab.Entry{
		{ID: 1, Bytes: []byte("cat")},
		{ID: 2, Bytes: []byte("car")},
		{ID: 3, Bytes: []byte("dog")},
	}
	g := Build(classes, entries)

	if g.NumRoots() != 2 {
		t.Fatalf("NumRoots() = %d, want 2 ('c' and 'd' starting classes)", g.NumRoots())
	}

	cRoot := g.Roots[classes.Get('c')]
	if cRoot == nil {
		t.Fatal("missing root for class of 'c'")
	}
	// cat and car share the "ca" prefix, diverging at the third byte.
	aNode := cRoot.Children[classes.Get('a')]
	if aNode == nil {
		t.Fatal("missing intermediate node for \"ca\"")
	}
	if len(aNode.Children) != 2 {
		t.Errorf("expected 2 children after \"ca\" (t and r), got %d", len(aNode.Children))
	}
}

func TestBuild_SharedClassSequenceMergesTokens(t *testing.T) {
	d, err := rex.NewByteDFA("[a-z]+")
	if err != nil {
		t.Fatalf("NewByteDFA() error = %v", err)
	}
	classes := d.ByteClasses()

	// Every lowercase letter shares one byte class under [a-z]+, so "ab"
	// and "zy" produce identical ClassSequences and must land on the same
	// terminal node.
	entries := []vocab.Entry{
		{ID: 1, Bytes: []byte("ab")},
		{ID: 2, Bytes: []byte("zy")},
	}
	g := Build(classes, entries)

	if g.NumRoots() != 1 {
		t.Fatalf("NumRoots() = %d, want 1 (single live class covers all letters)", g.NumRoots())
	}
	var terminal *Node
	for _, root := range g.Roots {
		for _, child := range root.Children {
			terminal = child
		}
	}
	if terminal == nil || len(terminal.Tokens) != 2 {
		t.Fatalf("expected both tokens on one terminal node, got %+v", terminal)
	}
}

func TestSortedRootClasses_Ascending(t *testing.T) {
	d, err := rex.NewByteDFA("a|b|c")
	if err != nil {
		t.Fatalf("NewByteDFA() error = %v", err)
	}
	classes := d.ByteClasses()

	entries := []vocab.Entry{
		{ID: 1, Bytes: []byte("c")},
		{ID: 2, Bytes: []byte("a")},
		{ID: 3, Bytes: []byte("b")},
	}
	g := Build(classes, entries)
	sorted := g.SortedRootClasses()
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1] > sorted[i] {
			t.Fatalf("SortedRootClasses() not ascending: %v", sorted)
		}
	}
}
