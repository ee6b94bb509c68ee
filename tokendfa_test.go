package tokendfa

import (
	"errors"
	"testing"

	"github.com/tokendfa/tokendfa/vocab"
	"github.com/tokendfa/tokendfa/walk"
)

func TestBuild_SingleLiteral(t *testing.T) {
	v := vocab.Slice{Entries: [][]byte{[]byte("<eos>"), []byte("a"), []byte("b")}, EOS: 0}

	d, report, err := Build("^a$", v)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if report == nil {
		t.Fatal("Build() report = nil")
	}

	g := d.NewGuide()
	tokens := g.Tokens(nil)
	if len(tokens) != 1 || tokens[0] != 1 {
		t.Errorf("start tokens = %v, want [1]", tokens)
	}

	got, err := g.Advance(1, nil)
	if err != nil {
		t.Fatalf("Advance(1) error = %v", err)
	}
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("tokens after advancing on \"a\" = %v, want [0] (eos only)", got)
	}
	if !d.IsFinal(g.State()) {
		t.Error("state after consuming \"a\" should be final")
	}
}

func TestBuild_CharClassAllowsEveryLetter(t *testing.T) {
	entries := [][]byte{[]byte("<eos>")}
	for c := byte('a'); c <= 'z'; c++ {
		entries = append(entries, []byte{c})
	}
	v := vocab.Slice{Entries: entries, EOS: 0}

	d, _, err := Build("^[a-z]$", v)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	g := d.NewGuide()
	if got := g.AllowedTokenCount(); got != 26 {
		t.Errorf("start allowed count = %d, want 26", got)
	}

	if _, err := g.Advance(vocab.TokenId(1), nil); err != nil {
		t.Fatalf("Advance(%q) error = %v", "a", err)
	}
	if got := g.AllowedTokenCount(); got != 1 {
		t.Errorf("allowed count after one letter = %d, want 1 (eos only)", got)
	}
}

func TestBuild_OptionalSuffixWithWholeTokenAlternative(t *testing.T) {
	v := vocab.Slice{Entries: [][]byte{
		[]byte("<eos>"), []byte("a"), []byte("b"), []byte("ab"),
	}, EOS: 0}

	d, _, err := Build("^ab?$", v)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	g := d.NewGuide()
	start := map[vocab.TokenId]bool{}
	for _, tok := range g.Tokens(nil) {
		start[tok] = true
	}
	if !start[1] || !start[3] {
		t.Errorf("start tokens = %v, want to include \"a\"(1) and \"ab\"(3)", g.Tokens(nil))
	}

	g2 := d.NewGuide()
	afterA, err := g2.Advance(1, nil)
	if err != nil {
		t.Fatalf("Advance(\"a\") error = %v", err)
	}
	afterASet := map[vocab.TokenId]bool{}
	for _, tok := range afterA {
		afterASet[tok] = true
	}
	if !afterASet[0] || !afterASet[2] {
		t.Errorf("tokens after \"a\" = %v, want eos(0) and \"b\"(2)", afterA)
	}

	g3 := d.NewGuide()
	afterAB, err := g3.Advance(3, nil)
	if err != nil {
		t.Fatalf("Advance(\"ab\") error = %v", err)
	}
	if len(afterAB) != 1 || afterAB[0] != 0 {
		t.Errorf("tokens after \"ab\" = %v, want [0] (eos only)", afterAB)
	}
}

func TestBuild_MutesHTTPScheme(t *testing.T) {
	v := vocab.Slice{Entries: [][]byte{
		[]byte("<eos>"), []byte("http"), []byte("https"), []byte("://"),
	}, EOS: 0}

	d, report, err := Build("^https?://$", v)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if report.GhostTokens == 0 {
		t.Error("report.GhostTokens = 0, want > 0 (muting should have introduced ghost tokens)")
	}

	g := d.NewGuide()
	start := map[vocab.TokenId]bool{}
	for _, tok := range g.Tokens(nil) {
		start[tok] = true
	}
	if !start[1] || !start[2] {
		t.Errorf("start tokens = %v, want to include \"http\"(1) and \"https\"(2)", g.Tokens(nil))
	}

	if _, err := g.Advance(2, nil); err != nil {
		t.Fatalf("Advance(\"https\") error = %v", err)
	}
	next := g.Tokens(nil)
	if len(next) != 1 || next[0] != 3 {
		t.Errorf("tokens after \"https\" = %v, want [3] (\"://\" only)", next)
	}
}

func TestBuild_DeadByteAnalysisPrunesToken(t *testing.T) {
	v := vocab.Slice{Entries: [][]byte{[]byte("<eos>"), []byte("a"), []byte("b")}, EOS: 0}

	d, report, err := Build("^[^a]$", v)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if report.PrunedTokens == 0 {
		t.Error("report.PrunedTokens = 0, want > 0 (token \"a\" should be pruned)")
	}

	g := d.NewGuide()
	tokens := g.Tokens(nil)
	if len(tokens) != 1 || tokens[0] != 2 {
		t.Errorf("start tokens = %v, want [2] (\"b\" only, \"a\" pruned)", tokens)
	}
}

func TestBuild_EOSMisuseAtNonFinalStartIsRejected(t *testing.T) {
	v := vocab.Slice{Entries: [][]byte{[]byte("<eos>"), []byte("a")}, EOS: 0}

	d, _, err := Build("^a$", v)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if d.IsFinal(d.StartState()) {
		t.Fatal("start state should not be final for \"^a$\"")
	}

	g := d.NewGuide()
	_, err = g.Advance(0, nil)
	if err == nil {
		t.Fatal("Advance(eos) at non-final start should error")
	}
}

// emptyLanguagePattern matches no strings at all: the negated class spans
// every rune, so regexp/syntax resolves it to an empty range list and the
// compiler emits compileNoMatch's unreachable fragment (see its doc
// comment in rex/compile.go, which names this exact pattern).
const emptyLanguagePattern = `[^\x00-\x{10FFFF}]`

func TestBuild_RejectEmptyLanguage(t *testing.T) {
	v := vocab.Slice{Entries: [][]byte{[]byte("<eos>"), []byte("a")}, EOS: 0}

	_, _, err := Build(emptyLanguagePattern, v, WithRejectEmptyLanguage(true))
	if err == nil {
		t.Fatal("Build() with RejectEmptyLanguage should error on a pattern matching no strings")
	}
	var tErr *Error
	if !errors.As(err, &tErr) || tErr.Kind != EmptyLanguage {
		t.Errorf("Build() error = %v, want *Error{Kind: EmptyLanguage}", err)
	}
}

func TestBuild_EmptyLanguageSucceedsByDefault(t *testing.T) {
	v := vocab.Slice{Entries: [][]byte{[]byte("<eos>"), []byte("a")}, EOS: 0}

	d, _, err := Build(emptyLanguagePattern, v)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	g := d.NewGuide()
	if len(g.Tokens(nil)) != 0 {
		t.Errorf("start tokens = %v, want none (the pattern matches no strings)", g.Tokens(nil))
	}
}

func TestBuild_InvalidRegexReturnsTypedError(t *testing.T) {
	v := vocab.Slice{Entries: [][]byte{[]byte("<eos>"), []byte("a")}, EOS: 0}

	_, _, err := Build("(", v)
	if err == nil {
		t.Fatal("Build() with malformed regex should error")
	}
	var tErr *Error
	if !errors.As(err, &tErr) || tErr.Kind != InvalidRegex {
		t.Errorf("Build() error = %v, want *Error{Kind: InvalidRegex}", err)
	}
}

func TestBuild_InvalidVocabularyReturnsTypedError(t *testing.T) {
	v := vocab.Slice{Entries: nil, EOS: 0}

	_, _, err := Build("^a$", v)
	if err == nil {
		t.Fatal("Build() with empty vocabulary should error")
	}
	var tErr *Error
	if !errors.As(err, &tErr) || tErr.Kind != InvalidVocabulary {
		t.Errorf("Build() error = %v, want *Error{Kind: InvalidVocabulary}", err)
	}
}

func TestBuildConfig_Validate_RejectsNegativeParallelism(t *testing.T) {
	v := vocab.Slice{Entries: [][]byte{[]byte("<eos>"), []byte("a")}, EOS: 0}

	_, _, err := Build("^a$", v, WithMaxParallelism(-1))
	if err == nil {
		t.Fatal("Build() with negative MaxParallelism should error")
	}
	var cErr *ConfigError
	if !errors.As(err, &cErr) {
		t.Errorf("Build() error = %v (%T), want *ConfigError", err, err)
	}
}

func TestBuild_FinalStateWiredToAcceptSink(t *testing.T) {
	v := vocab.Slice{Entries: [][]byte{[]byte("<eos>"), []byte("a")}, EOS: 0}

	d, _, err := Build("^a$", v)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	g := d.NewGuide()
	if _, err := g.Advance(1, nil); err != nil {
		t.Fatalf("Advance(\"a\") error = %v", err)
	}
	if !d.IsFinal(g.State()) {
		t.Fatalf("guide state %v should be final after consuming \"a\"", g.State())
	}
	if _, err := g.Advance(0, nil); err != nil {
		t.Fatalf("Advance(eos) from final state error = %v", err)
	}
	if g.State() != walk.AcceptState {
		t.Errorf("guide state after eos = %v, want walk.AcceptState", g.State())
	}
}
