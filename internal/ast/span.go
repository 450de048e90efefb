// Package ast defines the in-memory tree of expressions, type annotations and
// statements produced by internal/parser, together with the source spans
// attached to every node for diagnostics.
package ast

import "fmt"

// Span is a half-open byte range [Start, End) into the source text that
// produced a node. Every AST node carries exactly one Span.
type Span struct {
	Start int
	End   int
}

// String renders a span as "start..end" for debug output and golden files.
func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Join returns the smallest span covering both s and o.
func (s Span) Join(o Span) Span {
	start := s.Start
	if o.Start < start {
		start = o.Start
	}
	end := s.End
	if o.End > end {
		end = o.End
	}
	return Span{Start: start, End: end}
}
