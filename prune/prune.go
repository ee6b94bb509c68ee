// Package prune implements the dead-byte/class analyzer (C3): it computes
// which byte classes can never lead to a match from any reachable state,
// then filters a vocabulary down to tokens built entirely from classes that
// remain live.
package prune

import (
	"github.com/tokendfa/tokendfa/rex"
	"github.com/tokendfa/tokendfa/vocab"
)

// DeadClasses returns, for each byte class of d, whether every reachable
// state of d treats that class as dead: d.Step(s, c) is dead for every
// reachable s. A class outside this set is "live" and may still be the
// first byte of a token that leads somewhere.
//
// This requires enumerating reachable states, which BuildByteDFA already
// did once during subset construction; DeadClasses redoes a cheap BFS over
// the finished table rather than threading reachability data through from
// construction, since d is the only state this package needs.
func DeadClasses(d *rex.ByteDFA) []bool {
	classes := d.ByteClasses()
	numClasses := classes.AlphabetLen()

	reachable := reachableStates(d)

	dead := make([]bool, numClasses)
	for c := 0; c < numClasses; c++ {
		dead[c] = true
		for _, s := range reachable {
			if !d.IsDead(d.Step(s, byte(c))) {
				dead[c] = false
				break
			}
		}
	}
	return dead
}

func reachableStates(d *rex.ByteDFA) []rex.StateID {
	classes := d.ByteClasses()
	numClasses := classes.AlphabetLen()

	seen := map[rex.StateID]bool{d.StartState(): true}
	frontier := []rex.StateID{d.StartState()}
	order := []rex.StateID{d.StartState()}

	for len(frontier) > 0 {
		var next []rex.StateID
		for _, s := range frontier {
			for c := 0; c < numClasses; c++ {
				t := d.Step(s, byte(c))
				if t == rex.DeadState || seen[t] {
					continue
				}
				seen[t] = true
				order = append(order, t)
				next = append(next, t)
			}
		}
		frontier = next
	}
	return order
}

// IsLive reports whether every byte of encoding belongs to a live class, as
// determined by deadClasses (the output of DeadClasses).
func IsLive(classes rex.ByteClasses, deadClasses []bool, encoding []byte) bool {
	for _, b := range encoding {
		class := classes.Get(b)
		if int(class) < len(deadClasses) && deadClasses[class] {
			return false
		}
	}
	return true
}

// Result is the outcome of filtering a vocabulary against dead classes.
type Result struct {
	// Kept holds the entries whose every byte belongs to a live class.
	Kept []vocab.Entry
	// PrunedCount is the number of entries dropped.
	PrunedCount int
}

// Filter keeps only the vocabulary entries whose byte encoding is entirely
// composed of live classes, per DeadClasses' output.
func Filter(v vocab.Vocabulary, classes rex.ByteClasses, deadClasses []bool) Result {
	var res Result
	v.Tokens(func(e vocab.Entry) bool {
		if IsLive(classes, deadClasses, e.Bytes) {
			res.Kept = append(res.Kept, e)
		} else {
			res.PrunedCount++
		}
		return true
	})
	return res
}
