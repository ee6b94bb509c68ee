// Package tokendfa precomputes, for every reachable state of a token-level
// automaton built from a regex and a tokenizer vocabulary, which
// vocabulary tokens may legally be emitted next. Build runs the full
// construction pipeline once; the resulting TokensDFA is then served
// through any number of independent Guides (package guide) without
// re-running any part of construction.
//
// The construction pipeline, in order:
//
//   - literal muting (package literal): find and cover multi-byte literal
//     runs with vocabulary tokens, so the byte DFA treats a whole literal
//     word as one alphabet symbol;
//   - byte-DFA compilation (package rex): compile the (muted) regex into a
//     deterministic byte automaton via subset construction;
//   - dead-byte analysis (package prune): find byte classes that can never
//     lead to a match and drop vocabulary tokens built from them;
//   - prefix-graph construction (package prefix): group the surviving
//     vocabulary into a trie over byte classes;
//   - the parallel walk (package walk): walk the byte DFA and the prefix
//     graph together to discover every (state, token) transition;
//   - table reduction (package table): fold ghost tokens introduced by
//     muting back onto the real tokens they stand for.
//
// Package serialize persists a built TokensDFA to the on-disk binary
// format and reconstructs one from it without re-running construction.
package tokendfa
