package rex

import (
	"fmt"
	"regexp/syntax"
)

// CompilerConfig configures Compile's behavior.
type CompilerConfig struct {
	// MaxRecursionDepth bounds the AST recursion depth, guarding against
	// pathological or adversarial patterns. Zero means DefaultCompilerConfig's
	// value.
	MaxRecursionDepth int

	// MaxClassExpansion bounds how many individual runes a character class
	// (or its negation) may expand into. Classes exceeding this are rejected
	// as ErrTooComplex rather than compiled via a byte-range UTF-8 splitter:
	// tokendfa's vocabularies are byte-oriented and a fully general Unicode
	// range compiler is not worth the complexity it would add here. Zero
	// means DefaultCompilerConfig's value.
	MaxClassExpansion int
}

// DefaultCompilerConfig returns sensible defaults.
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		MaxRecursionDepth: 100,
		MaxClassExpansion: 4096,
	}
}

// Compiler compiles a regexp/syntax AST into a byte-level Thompson NFA.
//
// Compiler always treats the pattern as anchored: constructs built from it
// describe the language of complete matches starting at the first byte, not
// a search over an unbounded haystack. ^, \A, $ and \z are therefore
// accepted but compiled as no-ops, and unanchored search prefixes (which the
// teacher's compiler builds for PikeVM-style scanning) are never generated.
//
// Capture groups, case folding, and word-boundary assertions have no
// meaning for a byte-DFA that only needs to decide membership, so OpCapture
// is compiled transparently and OpWordBoundary/OpNoWordBoundary are
// rejected as ErrUnsupported.
type Compiler struct {
	config  CompilerConfig
	builder *Builder
	depth   int
}

// NewCompiler creates a Compiler with the given configuration, filling in
// zero fields from DefaultCompilerConfig.
func NewCompiler(config CompilerConfig) *Compiler {
	def := DefaultCompilerConfig()
	if config.MaxRecursionDepth == 0 {
		config.MaxRecursionDepth = def.MaxRecursionDepth
	}
	if config.MaxClassExpansion == 0 {
		config.MaxClassExpansion = def.MaxClassExpansion
	}
	return &Compiler{config: config}
}

// Compile parses and compiles a regex pattern string into an NFA.
func Compile(pattern string) (*NFA, error) {
	return NewCompiler(DefaultCompilerConfig()).Compile(pattern)
}

// Compile parses pattern and compiles it into an NFA.
func (c *Compiler) Compile(pattern string) (*NFA, error) {
	re, err := syntax.Parse(pattern, syntax.Perl|syntax.DotNL)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	nfa, err := c.CompileRegexp(re)
	if err != nil {
		if ce, ok := err.(*CompileError); ok && ce.Pattern == "" {
			ce.Pattern = pattern
			return nil, ce
		}
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	return nfa, nil
}

// CompileRegexp compiles an already-parsed AST into an NFA.
func (c *Compiler) CompileRegexp(re *syntax.Regexp) (*NFA, error) {
	c.builder = NewBuilder()
	c.depth = 0

	start, end, err := c.compileRegexp(re)
	if err != nil {
		return nil, err
	}

	matchID := c.builder.AddMatch()
	if err := c.builder.Patch(end, matchID); err != nil {
		epsilon := c.builder.AddEpsilon(matchID)
		if err := c.builder.Patch(end, epsilon); err != nil {
			return nil, &CompileError{Err: fmt.Errorf("connecting to match state: %w", err)}
		}
	}

	c.builder.SetStart(start)

	nfa, err := c.builder.Build()
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	return nfa, nil
}

func (c *Compiler) compileRegexp(re *syntax.Regexp) (start, end StateID, err error) {
	c.depth++
	if c.depth > c.config.MaxRecursionDepth {
		c.depth--
		return InvalidState, InvalidState, &CompileError{Err: ErrTooComplex}
	}
	defer func() { c.depth-- }()

	switch re.Op {
	case syntax.OpLiteral:
		return c.compileLiteral(re.Rune)
	case syntax.OpCharClass:
		return c.compileCharClass(re.Rune)
	case syntax.OpAnyChar:
		return c.compileAnyByte()
	case syntax.OpAnyCharNotNL:
		return c.compileAnyByteNotNL()
	case syntax.OpConcat:
		return c.compileConcat(re.Sub)
	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)
	case syntax.OpStar:
		return c.compileStar(re.Sub[0])
	case syntax.OpPlus:
		return c.compilePlus(re.Sub[0])
	case syntax.OpQuest:
		return c.compileQuest(re.Sub[0])
	case syntax.OpRepeat:
		return c.compileRepeat(re.Sub[0], re.Min, re.Max)
	case syntax.OpCapture:
		return c.compileRegexp(re.Sub[0])
	case syntax.OpBeginText, syntax.OpEndText, syntax.OpBeginLine, syntax.OpEndLine:
		// Every pattern is implicitly anchored at both ends already; these
		// assertions are accepted for compatibility but add no constraint.
		return c.compileEmptyMatch()
	case syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return InvalidState, InvalidState, &CompileError{
			Err: fmt.Errorf("%w: word boundary assertions", ErrUnsupported),
		}
	case syntax.OpEmptyMatch:
		return c.compileEmptyMatch()
	default:
		return InvalidState, InvalidState, &CompileError{
			Err: fmt.Errorf("%w: regex operation %v", ErrUnsupported, re.Op),
		}
	}
}

func (c *Compiler) compileLiteral(runes []rune) (start, end StateID, err error) {
	if len(runes) == 0 {
		return c.compileEmptyMatch()
	}
	prev := InvalidState
	first := InvalidState
	for _, r := range runes {
		var buf [4]byte
		n := encodeRune(buf[:], r)
		for i := 0; i < n; i++ {
			b := buf[i]
			id := c.builder.AddByteRange(b, b, InvalidState)
			if first == InvalidState {
				first = id
			}
			if prev != InvalidState {
				if err := c.builder.Patch(prev, id); err != nil {
					return InvalidState, InvalidState, err
				}
			}
			prev = id
		}
	}
	return first, prev, nil
}

func (c *Compiler) compileCharClass(ranges []rune) (start, end StateID, err error) {
	if len(ranges) == 0 {
		return c.compileNoMatch()
	}

	allASCII := true
	for _, r := range ranges {
		if r > 127 {
			allASCII = false
			break
		}
	}

	if allASCII {
		var transitions []Transition
		for i := 0; i < len(ranges); i += 2 {
			transitions = append(transitions, Transition{Lo: byte(ranges[i]), Hi: byte(ranges[i+1]), Next: InvalidState})
		}
		if len(transitions) == 1 {
			t := transitions[0]
			id := c.builder.AddByteRange(t.Lo, t.Hi, InvalidState)
			return id, id, nil
		}
		target := c.builder.AddEpsilon(InvalidState)
		for i := range transitions {
			transitions[i].Next = target
		}
		id := c.builder.AddSparse(transitions)
		return id, target, nil
	}

	return c.compileUnicodeClass(ranges)
}

// compileUnicodeClass expands a class containing non-ASCII runes into an
// alternation of single-rune literals, each compiled to its UTF-8 encoding.
// Bounded by MaxClassExpansion.
func (c *Compiler) compileUnicodeClass(ranges []rune) (start, end StateID, err error) {
	total := int64(0)
	for i := 0; i < len(ranges); i += 2 {
		total += int64(ranges[i+1]-ranges[i]) + 1
		if total > int64(c.config.MaxClassExpansion) {
			return InvalidState, InvalidState, &CompileError{
				Err: fmt.Errorf("%w: character class expands to more than %d runes", ErrTooComplex, c.config.MaxClassExpansion),
			}
		}
	}

	var alts [][]rune
	for i := 0; i < len(ranges); i += 2 {
		for r := ranges[i]; r <= ranges[i+1]; r++ {
			alts = append(alts, []rune{r})
		}
	}
	if len(alts) == 1 {
		return c.compileLiteral(alts[0])
	}

	starts := make([]StateID, 0, len(alts))
	ends := make([]StateID, 0, len(alts))
	for _, a := range alts {
		s, e, err := c.compileLiteral(a)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		starts = append(starts, s)
		ends = append(ends, e)
	}
	split := c.buildSplitChain(starts)
	join := c.builder.AddEpsilon(InvalidState)
	for _, e := range ends {
		_ = c.builder.Patch(e, join)
	}
	return split, join, nil
}

// compileAnyByte compiles '.' to match any single byte, including newline.
// tokendfa operates on raw token bytes rather than validated UTF-8 text, so
// '.' is given byte semantics instead of the teacher's UTF-8-codepoint
// semantics; a pattern author who wants a Unicode codepoint should spell it
// out as a character class.
func (c *Compiler) compileAnyByte() (start, end StateID, err error) {
	id := c.builder.AddByteRange(0x00, 0xFF, InvalidState)
	return id, id, nil
}

// compileAnyByteNotNL compiles '.' excluding the newline byte.
func (c *Compiler) compileAnyByteNotNL() (start, end StateID, err error) {
	end = c.builder.AddEpsilon(InvalidState)
	transitions := []Transition{
		{Lo: 0x00, Hi: 0x09, Next: end},
		{Lo: 0x0B, Hi: 0xFF, Next: end},
	}
	id := c.builder.AddSparse(transitions)
	return id, end, nil
}

func (c *Compiler) compileConcat(subs []*syntax.Regexp) (start, end StateID, err error) {
	if len(subs) == 0 {
		return c.compileEmptyMatch()
	}
	if len(subs) == 1 {
		return c.compileRegexp(subs[0])
	}

	start, end, err = c.compileRegexp(subs[0])
	if err != nil {
		return InvalidState, InvalidState, err
	}
	for i := 1; i < len(subs); i++ {
		nextStart, nextEnd, err := c.compileRegexp(subs[i])
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if err := c.builder.Patch(end, nextStart); err != nil {
			epsilon := c.builder.AddEpsilon(nextStart)
			if err := c.builder.Patch(end, epsilon); err != nil {
				return InvalidState, InvalidState, err
			}
		}
		end = nextEnd
	}
	return start, end, nil
}

func (c *Compiler) compileAlternate(subs []*syntax.Regexp) (start, end StateID, err error) {
	if len(subs) == 0 {
		return c.compileEmptyMatch()
	}
	if len(subs) == 1 {
		return c.compileRegexp(subs[0])
	}

	starts := make([]StateID, 0, len(subs))
	ends := make([]StateID, 0, len(subs))
	for _, sub := range subs {
		s, e, err := c.compileRegexp(sub)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		starts = append(starts, s)
		ends = append(ends, e)
	}

	split := c.buildSplitChain(starts)
	join := c.builder.AddEpsilon(InvalidState)
	for _, e := range ends {
		_ = c.builder.Patch(e, join)
	}
	return split, join, nil
}

func (c *Compiler) buildSplitChain(targets []StateID) StateID {
	if len(targets) == 1 {
		return targets[0]
	}
	if len(targets) == 2 {
		return c.builder.AddSplit(targets[0], targets[1])
	}
	right := c.buildSplitChain(targets[1:])
	return c.builder.AddSplit(targets[0], right)
}

// compileStar, compilePlus and compileQuest build the usual loop/optional
// fragments. Language membership doesn't depend on greedy vs. non-greedy
// preference the way leftmost-first search does, so both split arms are
// explored during subset construction regardless of which branch is "left".
func (c *Compiler) compileStar(sub *syntax.Regexp) (start, end StateID, err error) {
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	end = c.builder.AddEpsilon(InvalidState)
	split := c.builder.AddSplit(subStart, end)
	if err := c.builder.Patch(subEnd, split); err != nil {
		epsilon := c.builder.AddEpsilon(split)
		if err := c.builder.Patch(subEnd, epsilon); err != nil {
			return InvalidState, InvalidState, err
		}
	}
	return split, end, nil
}

func (c *Compiler) compilePlus(sub *syntax.Regexp) (start, end StateID, err error) {
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	end = c.builder.AddEpsilon(InvalidState)
	split := c.builder.AddSplit(subStart, end)
	if err := c.builder.Patch(subEnd, split); err != nil {
		epsilon := c.builder.AddEpsilon(split)
		if err := c.builder.Patch(subEnd, epsilon); err != nil {
			return InvalidState, InvalidState, err
		}
	}
	return subStart, end, nil
}

func (c *Compiler) compileQuest(sub *syntax.Regexp) (start, end StateID, err error) {
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	end = c.builder.AddEpsilon(InvalidState)
	split := c.builder.AddSplit(subStart, end)
	if err := c.builder.Patch(subEnd, end); err != nil {
		epsilon := c.builder.AddEpsilon(end)
		if err := c.builder.Patch(subEnd, epsilon); err != nil {
			return InvalidState, InvalidState, err
		}
	}
	return split, end, nil
}

func (c *Compiler) compileRepeat(sub *syntax.Regexp, minCount, maxCount int) (start, end StateID, err error) {
	if maxCount == -1 {
		return c.compileRepeatMin(sub, minCount)
	}
	if minCount == maxCount {
		return c.compileRepeatExact(sub, minCount)
	}
	return c.compileRepeatRange(sub, minCount, maxCount)
}

func (c *Compiler) compileRepeatExact(sub *syntax.Regexp, n int) (start, end StateID, err error) {
	if n == 0 {
		return c.compileEmptyMatch()
	}
	if n == 1 {
		return c.compileRegexp(sub)
	}
	subs := make([]*syntax.Regexp, n)
	for i := range subs {
		subs[i] = sub
	}
	return c.compileConcat(subs)
}

func (c *Compiler) compileRepeatMin(sub *syntax.Regexp, minCount int) (start, end StateID, err error) {
	if minCount == 0 {
		return c.compileStar(sub)
	}
	subs := make([]*syntax.Regexp, minCount, minCount+1)
	for i := range subs {
		subs[i] = sub
	}
	subs = append(subs, &syntax.Regexp{Op: syntax.OpStar, Sub: []*syntax.Regexp{sub}})
	return c.compileConcat(subs)
}

func (c *Compiler) compileRepeatRange(sub *syntax.Regexp, minCount, maxCount int) (start, end StateID, err error) {
	if minCount > maxCount {
		return InvalidState, InvalidState, &CompileError{Err: fmt.Errorf("invalid repeat range {%d,%d}", minCount, maxCount)}
	}
	subs := make([]*syntax.Regexp, 0, maxCount)
	for i := 0; i < minCount; i++ {
		subs = append(subs, sub)
	}
	for i := 0; i < maxCount-minCount; i++ {
		subs = append(subs, &syntax.Regexp{Op: syntax.OpQuest, Sub: []*syntax.Regexp{sub}})
	}
	return c.compileConcat(subs)
}

func (c *Compiler) compileEmptyMatch() (start, end StateID, err error) {
	id := c.builder.AddEpsilon(InvalidState)
	return id, id, nil
}

// compileNoMatch compiles a fragment that can never reach its end state, for
// an empty character class such as [^\x00-\x{10FFFF}].
func (c *Compiler) compileNoMatch() (start, end StateID, err error) {
	start = c.builder.AddEpsilon(InvalidState)
	end = c.builder.AddEpsilon(InvalidState)
	return start, end, nil
}

// encodeRune writes r's UTF-8 encoding into buf (capacity >= 4) and returns
// the number of bytes written.
func encodeRune(buf []byte, r rune) int {
	switch {
	case r < 0x80:
		buf[0] = byte(r)
		return 1
	case r < 0x800:
		buf[0] = byte(0xC0 | (r >> 6))
		buf[1] = byte(0x80 | (r & 0x3F))
		return 2
	case r < 0x10000:
		buf[0] = byte(0xE0 | (r >> 12))
		buf[1] = byte(0x80 | ((r >> 6) & 0x3F))
		buf[2] = byte(0x80 | (r & 0x3F))
		return 3
	default:
		buf[0] = byte(0xF0 | (r >> 18))
		buf[1] = byte(0x80 | ((r >> 12) & 0x3F))
		buf[2] = byte(0x80 | ((r >> 6) & 0x3F))
		buf[3] = byte(0x80 | (r & 0x3F))
		return 4
	}
}
