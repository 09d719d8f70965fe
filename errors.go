// errors.go — the three phase error kinds and their canonical rendering.
//
// Grounded on the teacher's errors.go: one concrete error struct per phase
// (there, *LexError/*ParseError/*RuntimeError; here ParseError/TypeError/
// RuntimeError), all carrying a source position, rendered through a single
// shared formatter. Corrosion's wire format is pinned by spec §6 exactly —
// "Error: <Kind>: <message> at line L, column C" — so, unlike the teacher's
// multi-line caret snippet, the formatter here is a one-liner.
package corrosion

import "fmt"

// ParseError is returned by the lexer and parser.
type ParseError struct {
	Span    Span
	Message string
	// Incomplete marks a parse error caused by running out of input where
	// more tokens were expected, rather than by a malformed token. The
	// REPL (cmd/corrosion) uses this to decide whether to prompt for a
	// continuation line instead of reporting a hard failure, grounded on
	// the teacher's IsIncomplete/readByParseProbe continuation convention.
	Incomplete bool
}

func (e *ParseError) Error() string { return formatError("Parse error", e.Span, true, e.Message) }

// TypeError is returned by the type checker.
type TypeError struct {
	Span    Span
	Message string
	// HasSpan is false for the "Type mismatch"/"Invalid binary operation"
	// messages, which already embed their own "at L:C" clause per spec
	// §4.2's exact wording — appending a second trailing clause would
	// duplicate it. All other type errors use the generic trailing clause.
	HasSpan bool
}

func (e *TypeError) Error() string { return formatError("Type error", e.Span, e.HasSpan, e.Message) }

// RuntimeError is returned by the evaluator.
type RuntimeError struct {
	Span    Span
	Message string
	// HasSpan is false for runtime errors that have no meaningful source
	// position. The clause is part of the wire contract in spec §6:
	// "omitted only if no span is known".
	HasSpan bool
}

func (e *RuntimeError) Error() string {
	return formatError("Runtime error", e.Span, e.HasSpan, e.Message)
}

func newRuntimeError(span Span, format string, args ...any) *RuntimeError {
	return &RuntimeError{Span: span, HasSpan: true, Message: fmt.Sprintf(format, args...)}
}

func newParseError(span Span, format string, args ...any) *ParseError {
	return &ParseError{Span: span, Message: fmt.Sprintf(format, args...)}
}

func newTypeError(span Span, format string, args ...any) *TypeError {
	return &TypeError{Span: span, HasSpan: true, Message: fmt.Sprintf(format, args...)}
}

// newTypeErrorWithLocation builds a type error whose message already
// embeds "at L:C" (the "Type mismatch"/"Invalid binary operation" wording
// from spec §4.2), so the generic trailing location clause is suppressed.
func newTypeErrorWithLocation(span Span, format string, args ...any) *TypeError {
	return &TypeError{Span: span, HasSpan: false, Message: fmt.Sprintf(format, args...)}
}

// formatError renders any phase error in the canonical wire format from
// spec §6: "Error: <Kind>: <human message> at line L, column C". The
// location clause is dropped entirely when hasSpan is false.
func formatError(kind string, span Span, hasSpan bool, message string) string {
	if !hasSpan {
		return fmt.Sprintf("Error: %s: %s", kind, message)
	}
	return fmt.Sprintf("Error: %s: %s at line %d, column %d", kind, message, span.Line, span.Column)
}
