// Package kerrors formats the two kinds of diagnostics the runtime
// surfaces to a human: compile-time SyntaxErrors raised before any
// bytecode exists, and the traceback of a raised exception unwinding
// through call frames (§4.5). Grounded on the teacher's
// internal/errors/errors.go (SentraError's caret-underline formatting
// and CallStack rendering), split into two purpose-built types instead
// of one do-everything struct since a SyntaxError never has a
// traceback and a runtime traceback never has a single caret position.
package kerrors

import (
	"fmt"
	"strings"

	"kuro/internal/kobject"
)

// SyntaxError is returned by internal/kcompiler when source text fails
// to parse (§4.3's synchronize()/panic-mode recovery collects these).
type SyntaxError struct {
	Message string
	File    string
	Line    int
	Column  int
	// SourceLine is the offending line's raw text, for the caret
	// underline; empty when unavailable.
	SourceLine string
}

func NewSyntaxError(message, file string, line, column int) *SyntaxError {
	return &SyntaxError{Message: message, File: file, Line: line, Column: column}
}

func (e *SyntaxError) WithSourceLine(line string) *SyntaxError {
	e.SourceLine = line
	return e
}

func (e *SyntaxError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SyntaxError: %s\n", e.Message))
	if e.File != "" {
		sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n", e.File, e.Line, e.Column))
	}
	if e.SourceLine != "" {
		sb.WriteString(fmt.Sprintf("\n  %d | %s\n", e.Line, e.SourceLine))
		gutter := len(fmt.Sprintf("%d | ", e.Line))
		sb.WriteString(strings.Repeat(" ", gutter))
		if e.Column > 0 {
			sb.WriteString(strings.Repeat(" ", e.Column-1))
		}
		sb.WriteString("^\n")
	}
	return sb.String()
}

// FormatTraceback renders an exception's traceback chain the way a
// user sees an uncaught exception: innermost call last, the chained
// __context__/__cause__ printed ahead of it the way a naturally
// propagating or explicitly `raise ... from ...` exception is shown
// (§4.5).
func FormatTraceback(exc *kobject.Exception) string {
	var sb strings.Builder
	if exc.Cause.IsObject() {
		if cause, ok := exc.Cause.AsObject().(*kobject.Exception); ok {
			sb.WriteString(FormatTraceback(cause))
			sb.WriteString("\nThe above exception was the direct cause of the following exception:\n\n")
		}
	} else if exc.Context.IsObject() {
		if ctx, ok := exc.Context.AsObject().(*kobject.Exception); ok {
			sb.WriteString(FormatTraceback(ctx))
			sb.WriteString("\nDuring handling of the above exception, another exception occurred:\n\n")
		}
	}

	sb.WriteString("Traceback (most recent call last):\n")
	// Traceback is recorded innermost-first (PushFrame), so walk it
	// backwards to print the innermost call last.
	for i := len(exc.Traceback) - 1; i >= 0; i-- {
		frame := exc.Traceback[i]
		code := frame.Closure.Code
		line := code.Chunk.LineOf(frame.Offset)
		sb.WriteString(fmt.Sprintf("  File \"%s\", line %d, in %s\n", code.Filename, line, code.Name))
	}
	sb.WriteString(exc.TypeName())
	if exc.Arg.IsObject() {
		if s, ok := exc.Arg.AsObject().(*kobject.String); ok {
			sb.WriteString(": " + s.Go())
		}
	}
	sb.WriteString("\n")
	return sb.String()
}
