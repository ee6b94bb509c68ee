// Package tokendfa builds and serves a token-level automaton ("TokensDFA")
// from a regular expression and a tokenizer vocabulary: for every reachable
// state, which vocabulary tokens may be emitted next without the token
// sequence so far leaving the language the regex describes.
//
// Build runs the construction pipeline once; the resulting TokensDFA is
// immutable and safe to query concurrently through any number of Guides
// (package guide).
package tokendfa

import (
	"context"

	"github.com/tokendfa/tokendfa/guide"
	"github.com/tokendfa/tokendfa/literal"
	"github.com/tokendfa/tokendfa/prefix"
	"github.com/tokendfa/tokendfa/prune"
	"github.com/tokendfa/tokendfa/rex"
	"github.com/tokendfa/tokendfa/table"
	"github.com/tokendfa/tokendfa/vocab"
	"github.com/tokendfa/tokendfa/walk"
)

// BuildConfig controls Build's behavior. The zero value is the default
// configuration (the same value DefaultBuildConfig returns).
type BuildConfig struct {
	// MaxParallelism bounds the number of concurrent goroutines the
	// parallel walker (C5) runs at once. Zero means derive it from
	// runtime.GOMAXPROCS/NumCPU, matching walk.Config's own default.
	MaxParallelism int

	// RejectEmptyLanguage makes Build return an EmptyLanguage error
	// instead of succeeding with an index that accepts no token
	// sequences, for callers that consider an always-rejecting regex a
	// configuration mistake rather than a legitimate degenerate case.
	RejectEmptyLanguage bool
}

// DefaultBuildConfig returns Build's default configuration.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{}
}

// Validate reports whether c is internally consistent.
func (c BuildConfig) Validate() error {
	if c.MaxParallelism < 0 {
		return &ConfigError{Field: "MaxParallelism", Message: "must be >= 0"}
	}
	return nil
}

// ConfigError represents an invalid BuildConfig field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "tokendfa: invalid config: " + e.Field + ": " + e.Message
}

// BuildOption configures a BuildConfig; see WithMaxParallelism and
// WithRejectEmptyLanguage.
type BuildOption func(*BuildConfig)

// WithMaxParallelism sets the upper bound on concurrent walker goroutines.
func WithMaxParallelism(n int) BuildOption {
	return func(c *BuildConfig) { c.MaxParallelism = n }
}

// WithRejectEmptyLanguage makes Build fail fast with an EmptyLanguage
// error when the pattern matches no strings, instead of returning a
// usable index with no final states.
func WithRejectEmptyLanguage(reject bool) BuildOption {
	return func(c *BuildConfig) { c.RejectEmptyLanguage = reject }
}

// BuildReport summarizes the soft-failure conditions and sizing
// information of one Build call that the caller cannot otherwise observe:
// pruned vocabulary tokens, muted and un-muted literals, ghost tokens
// introduced, and the size of the constructed table.
type BuildReport struct {
	PrunedTokens int

	// UnmutedLiterals holds the text of every literal ExtractSpans found
	// that coalesce could not cover with any combination of vocabulary
	// tokens (TokenizationMismatch; not fatal, see spec's error kinds).
	UnmutedLiterals []string

	// MutedLiterals is the number of distinct literal texts successfully
	// muted (len(UnmutedLiterals) is how many were left alone).
	MutedLiterals int

	GhostTokens     int
	ReachableStates int
	Transitions     int
}

// TokensDFA is the constructed, immutable index described by spec.md §3:
// eos_token_id, start_state, final_states, and a transitions_table. It
// holds no mutable state of its own; every Guide built over it advances
// independently.
type TokensDFA struct {
	vocabSize int
	eos       vocab.TokenId
	start     rex.StateID
	final     map[rex.StateID]bool
	table     *table.Table
}

// NewGuide returns a Guide positioned at the automaton's start state.
func (d *TokensDFA) NewGuide() *guide.Guide {
	return guide.New(d.table, d.start)
}

// EOSTokenID returns the vocabulary's end-of-sequence token id.
func (d *TokensDFA) EOSTokenID() vocab.TokenId { return d.eos }

// StartState returns the automaton's initial state.
func (d *TokensDFA) StartState() rex.StateID { return d.start }

// IsFinal reports whether state is one of the automaton's final states.
func (d *TokensDFA) IsFinal(state rex.StateID) bool { return d.final[state] }

// FinalStates returns every final state, in no particular order.
func (d *TokensDFA) FinalStates() []rex.StateID {
	out := make([]rex.StateID, 0, len(d.final))
	for s := range d.final {
		out = append(out, s)
	}
	return out
}

// VocabSize returns the vocabulary size this index was built for.
func (d *TokensDFA) VocabSize() int { return d.vocabSize }

// Table exposes the underlying transitions table, e.g. for serialize.
func (d *TokensDFA) Table() *table.Table { return d.table }

// Build runs the construction pipeline (C1 through C6) and returns the
// resulting TokensDFA along with a BuildReport describing soft failures
// and sizing. Every error returned is a *Error (or, for a malformed
// config, a *ConfigError); no partial index is ever returned alongside a
// non-nil error.
func Build(pattern string, v vocab.Vocabulary, opts ...BuildOption) (*TokensDFA, *BuildReport, error) {
	cfg := DefaultBuildConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := vocab.Validate(v); err != nil {
		return nil, nil, &Error{Kind: InvalidVocabulary, Message: "invalid vocabulary", Cause: err}
	}

	origDFA, err := rex.NewByteDFA(pattern)
	if err != nil {
		return nil, nil, &Error{Kind: InvalidRegex, Message: "compiling pattern", Cause: err}
	}
	if cfg.RejectEmptyLanguage && languageEmpty(origDFA) {
		return nil, nil, &Error{Kind: EmptyLanguage, Message: "pattern matches no strings"}
	}

	dead := prune.DeadClasses(origDFA)
	nonEOS := excludeEOS(v)

	muter, err := literal.NewMuter(entryVocab{nonEOS, v.EOSTokenID()}, origDFA.ByteClasses(), dead)
	if err != nil {
		return nil, nil, &Error{Kind: InvalidRegex, Message: "choosing a ghost-byte prefix", Cause: err}
	}
	muted := muter.Mute(pattern)

	report := &BuildReport{
		MutedLiterals:   len(muted.Rewrites),
		GhostTokens:     len(muted.Muted),
		UnmutedLiterals: unmutedLiterals(pattern, muted.Rewrites),
	}

	mutedDFA, err := rex.NewByteDFA(muted.Pattern)
	if err != nil {
		return nil, nil, &Error{Kind: InvalidRegex, Message: "compiling muted pattern", Cause: err}
	}

	rewritten := literal.RewriteVocabulary(nonEOS, muted.TokenRewrites, muted.Rewrites)
	mutedDead := prune.DeadClasses(mutedDFA)
	filtered := prune.Filter(entryVocab{rewritten, v.EOSTokenID()}, mutedDFA.ByteClasses(), mutedDead)
	report.PrunedTokens = filtered.PrunedCount

	graph := prefix.Build(mutedDFA.ByteClasses(), filtered.Kept)

	tbl := table.New(v.Size())
	walkCfg := walk.Config{MaxParallelism: cfg.MaxParallelism}
	if err := walk.Run(context.Background(), mutedDFA, graph, tbl, v.EOSTokenID(), walkCfg); err != nil {
		return nil, nil, &Error{Kind: InvariantViolation, Message: "walking the prefix graph", Cause: err}
	}
	tbl.Reduce(muted.Muted)

	final := map[rex.StateID]bool{}
	for s := 0; s < mutedDFA.NumStates(); s++ {
		id := rex.StateID(s)
		if mutedDFA.IsFinal(id) {
			final[id] = true
		}
	}
	report.ReachableStates = mutedDFA.NumStates()
	report.Transitions = countTransitions(tbl)

	return &TokensDFA{
		vocabSize: v.Size(),
		eos:       v.EOSTokenID(),
		start:     mutedDFA.StartState(),
		final:     final,
		table:     tbl,
	}, report, nil
}

// languageEmpty reports whether d accepts no strings at all. Every state
// BuildByteDFA ever creates is reachable from the start state by
// construction (its worklist only grows by stepping from states already
// in it), so scanning every state for a final one is equivalent to a
// reachability-restricted scan without needing one.
func languageEmpty(d *rex.ByteDFA) bool {
	for s := 0; s < d.NumStates(); s++ {
		if d.IsFinal(rex.StateID(s)) {
			return false
		}
	}
	return true
}

func countTransitions(tbl *table.Table) int {
	total := 0
	for _, s := range tbl.States() {
		total += tbl.NumTransitions(s)
	}
	return total
}

// entryVocab adapts a plain entry slice to the vocab.Vocabulary interface
// for pipeline stages that must see a vocabulary without its eos token
// (the eos token is never a literal-spelling token and is inserted into
// the table directly by the walker).
type entryVocab struct {
	entries []vocab.Entry
	eos     vocab.TokenId
}

func (e entryVocab) Size() int { return len(e.entries) }

func (e entryVocab) Tokens(yield func(vocab.Entry) bool) {
	for _, en := range e.entries {
		if !yield(en) {
			return
		}
	}
}

func (e entryVocab) EOSTokenID() vocab.TokenId { return e.eos }

func excludeEOS(v vocab.Vocabulary) []vocab.Entry {
	out := make([]vocab.Entry, 0, v.Size())
	eos := v.EOSTokenID()
	v.Tokens(func(e vocab.Entry) bool {
		if e.ID != eos {
			out = append(out, e)
		}
		return true
	})
	return out
}

func unmutedLiterals(pattern string, rewrites map[string][]byte) []string {
	var out []string
	for _, sp := range literal.ExtractSpans(pattern) {
		if _, ok := rewrites[string(sp.Bytes)]; !ok {
			out = append(out, string(sp.Bytes))
		}
	}
	return out
}
