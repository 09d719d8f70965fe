// spans.go — source positions shared by every phase.
//
// Every token and AST node in Corrosion carries a Span directly (unlike
// MindScript's S-expression AST, which needs a sidecar index keyed by
// structural path because its nodes are untyped []any trees). Corrosion's
// AST is a closed set of typed Go structs, so each node simply embeds the
// Span of the source it was built from; there is nothing to index.
package corrosion

import "fmt"

// Span identifies a single point in source text: the position of the first
// byte/rune of whatever token or node it is attached to. Only line/column
// are tracked — diagnostics never need byte offsets.
type Span struct {
	Line   int // 1-based
	Column int // 1-based
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Spanned is implemented by every AST node.
type Spanned interface {
	Pos() Span
}
