package literal

import "testing"

func spanStrings(spans []Span) []string {
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = string(s.Bytes)
	}
	return out
}

func TestExtractSpans_SimpleLiteral(t *testing.T) {
	got := spanStrings(ExtractSpans("^hello$"))
	want := []string{"hello"}
	assertStrings(t, got, want)
}

func TestExtractSpans_TooShortLiteralDropped(t *testing.T) {
	got := spanStrings(ExtractSpans("^a$"))
	if len(got) != 0 {
		t.Fatalf("ExtractSpans() = %v, want no spans (length < 2)", got)
	}
}

func TestExtractSpans_TrailingQuantifierSplitsRun(t *testing.T) {
	got := spanStrings(ExtractSpans("^https?://$"))
	want := []string{"http"}
	assertStrings(t, got, want)
}

func TestExtractSpans_CharClassIsSkipped(t *testing.T) {
	got := spanStrings(ExtractSpans("^foo[0-9]bar$"))
	want := []string{"foo", "bar"}
	assertStrings(t, got, want)
}

func TestExtractSpans_OptionalGroup(t *testing.T) {
	got := spanStrings(ExtractSpans("^colou(rs)?$"))
	want := []string{"colou", "rs"}
	assertStrings(t, got, want)
}

func TestExtractSpans_OptionalGroupTooShortDropped(t *testing.T) {
	got := spanStrings(ExtractSpans("^colou(r)?$"))
	want := []string{"colou"}
	assertStrings(t, got, want)
}

func TestExtractSpans_EscapedCharBreaksRun(t *testing.T) {
	got := spanStrings(ExtractSpans(`^fo\.bar$`))
	want := []string{"fo", "bar"}
	assertStrings(t, got, want)
}

func TestExtractSpans_SpanPositionsAreByteOffsets(t *testing.T) {
	pattern := "^xy foo$"
	spans := ExtractSpans(pattern)
	if len(spans) != 2 {
		t.Fatalf("ExtractSpans() = %v, want 2 spans", spans)
	}
	for _, sp := range spans {
		if pattern[sp.Start:sp.End] != string(sp.Bytes) {
			t.Errorf("Span{Start:%d,End:%d} does not locate %q in %q", sp.Start, sp.End, sp.Bytes, pattern)
		}
	}
}

func assertStrings(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
