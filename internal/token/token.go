// Package token defines the token stream contract between the scanner
// (an external collaborator, §6) and the compiler.
package token

// Kind enumerates the fixed set of token kinds the scanner must produce.
type Kind int

const (
	EOF Kind = iota
	Error

	Identifier
	Number
	String  // optionally b/f prefixed; see Token.Prefix
	Indentation
	EOL

	// Keywords
	And
	As
	Assert
	Async
	Await
	Break
	Class
	Continue
	Def
	Del
	Elif
	Else
	Except
	Finally
	For
	From
	Global
	If
	Import
	In
	Is
	Lambda
	Let
	Nonlocal
	Not
	None
	Or
	Pass
	Raise
	Return
	SelfKw
	Try
	While
	With
	Yield
	True_
	False_

	// Operators and punctuation
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Comma
	Dot
	Colon
	Semicolon
	Plus
	Minus
	Star
	StarStar
	Slash
	SlashSlash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	ShiftLeft
	ShiftRight
	Equal
	PlusEqual
	MinusEqual
	StarEqual
	SlashEqual
	Arrow
	BangEqual
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual
	At
)

// Token is one lexical unit, with enough positional data for the
// compiler to build SyntaxError sites and the line map.
type Token struct {
	Kind   Kind
	Lexeme string // the raw source text (or decoded literal value for String/Number)
	Prefix byte   // 0, 'b', or 'f' for string literals; 0 otherwise
	Line   int
	Column int
	Width  int // visible column width of the lexeme, for caret underlines
	// LineStart points at the first byte of the token's source line, so
	// SyntaxError can render the offending line without re-scanning.
	LineStart int
	LineEnd   int
}

// Scanner is the contract the compiler requires of its token source
// (§6). A concrete implementation lives in internal/klexer; this
// interface is what internal/kcompiler actually depends on, so an
// alternate scanner can be substituted without touching the compiler.
type Scanner interface {
	// Next returns the next token, consuming it.
	Next() Token
	// Unget pushes a single token back; at most one pending ungot
	// token is supported at a time.
	Unget(t Token)

	// Mark snapshots scanner position for the parser's rewind-and-reparse
	// technique (multi-assignment, ternary, comprehension re-parse, §4.3/§9).
	Mark() State
	// Reset restores a previously captured State.
	Reset(s State)
}

// State is an opaque scanner snapshot returned by Mark and consumed by
// Reset. Concrete scanners define what it holds; the compiler never
// looks inside it.
type State interface{}
