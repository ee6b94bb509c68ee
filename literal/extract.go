package literal

// ExtractSpans scans pattern's text for maximal literal alphanumeric runs
// that qualify for muting: the run's characters are plain literal bytes
// (not inside a character class, not themselves quantified), the run has
// length >= 2, and it isn't split by a trailing single-character optional
// suffix (`x?`, `x*`, `x+`, `x{m,n}`), since a quantifier binds only to
// the one atom immediately before it.
//
// A parenthesized group whose entire content is a plain alphanumeric run
// followed immediately by `?` — e.g. `colou(r)?` or `colou(rs)?` — is
// also a candidate: the group's content, not the surrounding parens or
// `?`, is the span. This is the only "optional sub-literal" shape
// extracted; arbitrary nested groups and alternations are left
// un-muted, which is always safe (an un-muted literal just loses the
// table-compression benefit, never correctness).
//
// This is a text scanner, not an AST walk: regexp/syntax discards source
// byte offsets during parsing, so there is no AST position to rewrite
// pattern text at. The scanner tracks only enough regex structure
// (character classes, escapes, trailing quantifiers, optional groups) to
// find literal runs safely.
func ExtractSpans(pattern string) []Span {
	var spans []Span
	runStart := -1

	flush := func(end int) {
		if runStart < 0 {
			return
		}
		if end-runStart >= 2 {
			spans = append(spans, Span{
				Bytes: []byte(pattern[runStart:end]),
				Start: runStart,
				End:   end,
			})
		}
		runStart = -1
	}

	// splitTrailingQuantifier ends the run one byte early: the final
	// character of the run binds to the quantifier at i, so it cannot be
	// part of a guaranteed-present span.
	splitTrailingQuantifier := func(i int) {
		if runStart < 0 {
			return
		}
		flush(i - 1)
	}

	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch {
		case c == '\\':
			flush(i)
			i += 2
			continue

		case c == '[':
			flush(i)
			i = skipClass(pattern, i)
			continue

		case c == '(':
			flush(i)
			if span, next, ok := tryOptionalGroup(pattern, i); ok {
				spans = append(spans, span)
				i = next
				continue
			}
			i++
			continue

		case isLiteralByte(c):
			if runStart < 0 {
				runStart = i
			}
			i++

		case c == '?' || c == '*' || c == '+':
			splitTrailingQuantifier(i)
			i++

		case c == '{':
			if end := skipRepeat(pattern, i); end > i {
				splitTrailingQuantifier(i)
				i = end
				continue
			}
			flush(i)
			i++

		default:
			flush(i)
			i++
		}
	}
	flush(len(pattern))
	return spans
}

// isLiteralByte reports whether c is a plain ASCII alphanumeric character,
// the conservative subset condition (i) of the muting contract requires.
func isLiteralByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// skipClass returns the index just past a `[...]` character class starting
// at i (pattern[i] == '['), handling a leading `^` and a leading `]` (both
// of which don't close the class per regex syntax).
func skipClass(pattern string, i int) int {
	j := i + 1
	if j < len(pattern) && pattern[j] == '^' {
		j++
	}
	if j < len(pattern) && pattern[j] == ']' {
		j++
	}
	for j < len(pattern) {
		if pattern[j] == '\\' {
			j += 2
			continue
		}
		if pattern[j] == ']' {
			return j + 1
		}
		j++
	}
	return j
}

// skipRepeat returns the index just past a `{m,n}` bound starting at i
// (pattern[i] == '{'), or i if what follows isn't a well-formed bound (in
// which case the brace is just a literal character to the caller).
func skipRepeat(pattern string, i int) int {
	j := i + 1
	sawDigit := false
	for j < len(pattern) && (pattern[j] == ',' || (pattern[j] >= '0' && pattern[j] <= '9')) {
		if pattern[j] != ',' {
			sawDigit = true
		}
		j++
	}
	if !sawDigit || j >= len(pattern) || pattern[j] != '}' {
		return i
	}
	return j + 1
}

// tryOptionalGroup recognizes `(<alnum run>)?` starting at i (pattern[i]
// == '('). On success it returns the inner run as a Span (positioned at
// the inner text, not the parens) and the index just past the `?`.
func tryOptionalGroup(pattern string, i int) (Span, int, bool) {
	j := i + 1
	start := j
	for j < len(pattern) && isLiteralByte(pattern[j]) {
		j++
	}
	if j == start || j >= len(pattern) || pattern[j] != ')' {
		return Span{}, 0, false
	}
	closeIdx := j
	if closeIdx+1 >= len(pattern) || pattern[closeIdx+1] != '?' {
		return Span{}, 0, false
	}
	if closeIdx-start < 2 {
		return Span{}, 0, false
	}
	return Span{
		Bytes: []byte(pattern[start:closeIdx]),
		Start: start,
		End:   closeIdx,
	}, closeIdx + 2, true
}
