// Package walk implements the parallel walker (C5): for every reachable
// byte-DFA state, it walks the prefix graph in lock-step with the byte
// DFA to discover which vocabulary tokens the state accepts and where
// each leads, recording the result into a transitions table.
//
// Work is partitioned one DFA state per task and run across a bounded
// worker pool, grounded on bufbuild-protocompile's compiler.go executor:
// a golang.org/x/sync/semaphore.Weighted caps in-flight goroutines while
// a result channel collects the first error, the same shape as that
// executor's semaphore-gated task dispatch. Each state writes only its
// own table row, so the recorded transitions are identical no matter how
// work is scheduled across workers or how many workers run.
package walk

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/tokendfa/tokendfa/internal/sortutil"
	"github.com/tokendfa/tokendfa/prefix"
	"github.com/tokendfa/tokendfa/rex"
	"github.com/tokendfa/tokendfa/table"
	"github.com/tokendfa/tokendfa/vocab"
)

// AcceptState is the synthetic sink every final byte-DFA state transitions
// to on the vocabulary's EOS token. It is distinct from every real byte-DFA
// state id, which are dense in [0, ByteDFA.NumStates()).
const AcceptState rex.StateID = 0xFFFFFFFD

// Config controls the walker's concurrency.
type Config struct {
	// MaxParallelism bounds the number of states walked concurrently. Zero
	// or negative means "use GOMAXPROCS, capped at NumCPU", matching the
	// teacher's executor sizing.
	MaxParallelism int
}

func (c Config) parallelism() int {
	if c.MaxParallelism > 0 {
		return c.MaxParallelism
	}
	par := runtime.GOMAXPROCS(-1)
	if cpus := runtime.NumCPU(); par > cpus {
		par = cpus
	}
	if par < 1 {
		par = 1
	}
	return par
}

// Run walks every reachable state of d against g, recording every live
// (state, token, destination) transition into tbl, and wiring every final
// state to AcceptState on eosToken. Every state in [0, d.NumStates()) is
// reachable by construction: BuildByteDFA's worklist only ever creates
// states discovered by stepping from the start state, so there is no
// separate reachability pass to run here (see package prune for the
// dead-class analysis that runs before the walk, over the vocabulary
// rather than over states).
func Run(ctx context.Context, d *rex.ByteDFA, g *prefix.Graph, tbl *table.Table, eosToken vocab.TokenId, cfg Config) error {
	numStates := d.NumStates()
	sem := semaphore.NewWeighted(int64(cfg.parallelism()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, numStates)
	for s := 0; s < numStates; s++ {
		state := rex.StateID(s)
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		go func() {
			defer sem.Release(1)
			errCh <- walkState(d, g, tbl, eosToken, state)
		}()
	}

	var firstErr error
	for i := 0; i < numStates; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	return firstErr
}

// walkState discovers every transition out of one byte-DFA state: one EOS
// transition if the state is final, and one transition per vocabulary
// token whose entire byte sequence leads to a non-dead destination.
func walkState(d *rex.ByteDFA, g *prefix.Graph, tbl *table.Table, eosToken vocab.TokenId, state rex.StateID) error {
	if d.IsFinal(state) {
		if err := tbl.Insert(state, eosToken, AcceptState); err != nil {
			return err
		}
	}
	if d.IsDead(state) {
		return nil
	}

	for _, class := range g.SortedRootClasses() {
		root := g.Roots[class]
		next := d.Step(state, root.Class)
		if err := walkNode(d, tbl, state, next, root); err != nil {
			return err
		}
	}
	return nil
}

// walkNode continues the lock-step DFS from dfaState/node. A token
// recorded at node is only inserted if dfaState is live: a dead
// destination means the regex can never match after consuming that
// token's bytes, which is exactly the "not allowed" outcome the table
// models by omitting the transition rather than recording one. Recursion
// stops at a dead dfaState, since every descendant would resolve to the
// same dead destination and contribute nothing.
func walkNode(d *rex.ByteDFA, tbl *table.Table, origin, dfaState rex.StateID, node *prefix.Node) error {
	if d.IsDead(dfaState) {
		return nil
	}
	for _, tok := range node.Tokens {
		if err := tbl.Insert(origin, tok, dfaState); err != nil {
			return err
		}
	}
	if len(node.Children) == 0 {
		return nil
	}

	classes := make([]byte, 0, len(node.Children))
	for c := range node.Children {
		classes = append(classes, c)
	}
	sortutil.Ascending(classes)

	for _, c := range classes {
		child := node.Children[c]
		next := d.Step(dfaState, c)
		if err := walkNode(d, tbl, origin, next, child); err != nil {
			return err
		}
	}
	return nil
}
