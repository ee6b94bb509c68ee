// Package literal provides the byte-sequence container used by literal muting
// (see Muter) to track candidate substrings extracted from a regex pattern.
package literal

// Span is a literal byte sequence found at a specific position in a regex
// pattern.
//
// Unlike a prefilter literal, a Span is tied to one exact position in the
// source pattern: two Spans with identical Bytes are never interchangeable,
// because muting rewrites the pattern text itself at that position.
type Span struct {
	// Bytes is the literal's byte sequence as it appears in the pattern.
	Bytes []byte

	// Start and End are byte offsets into the original pattern text,
	// End exclusive.
	Start, End int
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return len(s.Bytes)
}
