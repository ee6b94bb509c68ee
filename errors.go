package tokendfa

import "fmt"

// ErrorKind classifies tokendfa errors into the categories defined by
// spec.md §7 "Error handling design".
type ErrorKind uint8

const (
	// InvalidRegex indicates a syntax error or an unsupported regex feature,
	// raised before construction begins.
	InvalidRegex ErrorKind = iota

	// EmptyLanguage indicates the byte DFA accepts no strings at all.
	// Construction still succeeds and produces an empty table; this kind is
	// only used when a caller explicitly asks Build to treat that as fatal
	// (see BuildConfig.RejectEmptyLanguage).
	EmptyLanguage

	// TokenizationMismatch indicates the literal muter could not cover a
	// literal with any combination of vocabulary tokens. Not fatal: the
	// literal is left un-muted and recorded in BuildReport.
	TokenizationMismatch

	// RejectedTransition indicates Guide.Advance was called with a token id
	// that has no outgoing transition from the current state.
	RejectedTransition

	// InvalidVocabulary indicates the vocabulary violates a precondition of
	// construction (currently: contains a zero-length token, or an eos id
	// that does not name an entry).
	InvalidVocabulary

	// InvariantViolation indicates an internal invariant was violated, e.g.
	// a divergent insert into the transitions table. This signals a bug in
	// the byte-DFA compiler or the literal muter, not a user error, and is
	// never recovered from.
	InvariantViolation
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case InvalidRegex:
		return "InvalidRegex"
	case EmptyLanguage:
		return "EmptyLanguage"
	case TokenizationMismatch:
		return "TokenizationMismatch"
	case RejectedTransition:
		return "RejectedTransition"
	case InvalidVocabulary:
		return "InvalidVocabulary"
	case InvariantViolation:
		return "InvariantViolation"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// Error is the single error type returned across the tokendfa API, keyed by
// ErrorKind so callers can branch with errors.Is against one of the
// package-level sentinels below.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tokendfa: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("tokendfa: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any, for errors.As/errors.Unwrap.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by kind for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel errors for errors.Is comparisons against a specific kind without
// constructing a full *Error.
var (
	ErrInvalidRegex       = &Error{Kind: InvalidRegex, Message: "invalid regex"}
	ErrEmptyLanguage      = &Error{Kind: EmptyLanguage, Message: "regex matches no strings"}
	ErrRejectedTransition = &Error{Kind: RejectedTransition, Message: "token not allowed from current state"}
	ErrInvalidVocabulary  = &Error{Kind: InvalidVocabulary, Message: "invalid vocabulary"}
	ErrInvariantViolation = &Error{Kind: InvariantViolation, Message: "internal invariant violated"}
)
