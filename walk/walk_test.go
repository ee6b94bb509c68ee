package walk

import (
	"context"
	"testing"

	"github.com/tokendfa/tokendfa/prefix"
	"github.com/tokendfa/tokendfa/prune"
	"github.com/tokendfa/tokendfa/rex"
	"github.com/tokendfa/tokendfa/table"
	"github.com/tokendfa/tokendfa/vocab"
)

// build runs C2-C5 for pattern/entries and returns the finished table plus
// the byte DFA it was walked against, for assertions against NextState.
func build(t *testing.T, pattern string, entries []vocab.Entry, eos vocab.TokenId, vocabSize int) (*rex.ByteDFA, *table.Table) {
	t.Helper()
	d, err := rex.NewByteDFA(pattern)
	if err != nil {
		t.Fatalf("NewByteDFA(%q) error = %v", pattern, err)
	}
	classes := d.ByteClasses()
	dead := prune.DeadClasses(d)
	kept := prune.Filter(vocab.Slice{Entries: toSlice(entries, vocabSize)}, classes, dead).Kept
	g := prefix.Build(classes, kept)

	tbl := table.New(vocabSize)
	if err := Run(context.Background(), d, g, tbl, eos, Config{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return d, tbl
}

// toSlice lays entries out by id; callers always supply one entry per id
// in [0, size), so there are no gaps to fill.
func toSlice(entries []vocab.Entry, size int) [][]byte {
	out := make([][]byte, size)
	for _, e := range entries {
		out[e.ID] = e.Bytes
	}
	return out
}

func TestRun_SimpleLiteralAccepted(t *testing.T) {
	entries := []vocab.Entry{
		{ID: 0, Bytes: []byte("<eos>")},
		{ID: 1, Bytes: []byte("a")},
		{ID: 2, Bytes: []byte("b")},
	}
	d, tbl := build(t, "^a$", entries, 0, 3)

	to, ok := tbl.NextState(d.StartState(), 1)
	if !ok {
		t.Fatal("expected a transition on token \"a\" from the start state")
	}
	if !d.IsFinal(to) {
		t.Error("destination of \"a\" should be a final byte-DFA state for pattern a")
	}
	if _, ok := tbl.NextState(d.StartState(), 2); ok {
		t.Error("token \"b\" should not be an allowed transition for pattern a")
	}

	eosTo, ok := tbl.NextState(to, 0)
	if !ok || eosTo != AcceptState {
		t.Errorf("NextState(final, eos) = (%v, %v), want (AcceptState, true)", eosTo, ok)
	}
}

func TestRun_EOSRejectedFromNonFinalState(t *testing.T) {
	entries := []vocab.Entry{
		{ID: 0, Bytes: []byte("<eos>")},
		{ID: 1, Bytes: []byte("a")},
	}
	d, tbl := build(t, "^ab$", entries, 0, 2)

	if _, ok := tbl.NextState(d.StartState(), 0); ok {
		t.Error("EOS should not be an allowed transition from a non-final state")
	}
}

func TestRun_DeadByteExcludesToken(t *testing.T) {
	entries := []vocab.Entry{
		{ID: 0, Bytes: []byte("<eos>")},
		{ID: 1, Bytes: []byte("a")},
		{ID: 2, Bytes: []byte("b")},
	}
	d, tbl := build(t, "[^a]", entries, 0, 3)

	if _, ok := tbl.NextState(d.StartState(), 1); ok {
		t.Error("token \"a\" should never transition for [^a]: it is globally dead")
	}
	to, ok := tbl.NextState(d.StartState(), 2)
	if !ok {
		t.Fatal("token \"b\" should transition for [^a]")
	}
	if !d.IsFinal(to) {
		t.Error("consuming \"b\" should reach a final state for [^a]")
	}
}

func TestRun_SharedPrefixBothBranchesRecorded(t *testing.T) {
	entries := []vocab.Entry{
		{ID: 0, Bytes: []byte("<eos>")},
		{ID: 1, Bytes: []byte("cat")},
		{ID: 2, Bytes: []byte("car")},
	}
	d, tbl := build(t, "^(cat|car)$", entries, 0, 3)

	catTo, ok := tbl.NextState(d.StartState(), 1)
	if !ok {
		t.Fatal("expected a transition for \"cat\"")
	}
	carTo, ok := tbl.NextState(d.StartState(), 2)
	if !ok {
		t.Fatal("expected a transition for \"car\"")
	}
	if !d.IsFinal(catTo) || !d.IsFinal(carTo) {
		t.Error("both \"cat\" and \"car\" should reach final states")
	}
}

func TestRun_MaxParallelismOne(t *testing.T) {
	entries := []vocab.Entry{
		{ID: 0, Bytes: []byte("<eos>")},
		{ID: 1, Bytes: []byte("a")},
	}
	d, err := rex.NewByteDFA("^a$")
	if err != nil {
		t.Fatalf("NewByteDFA() error = %v", err)
	}
	classes := d.ByteClasses()
	dead := prune.DeadClasses(d)
	kept := prune.Filter(vocab.Slice{Entries: toSlice(entries, 2)}, classes, dead).Kept
	g := prefix.Build(classes, kept)

	tbl := table.New(2)
	if err := Run(context.Background(), d, g, tbl, 0, Config{MaxParallelism: 1}); err != nil {
		t.Fatalf("Run() with MaxParallelism=1 error = %v", err)
	}
	if _, ok := tbl.NextState(d.StartState(), 1); !ok {
		t.Error("single-worker Run() should still record the expected transition")
	}
}
