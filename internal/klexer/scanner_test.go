package klexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kuro/internal/token"
)

func kindsOf(t *testing.T, source string) []token.Kind {
	t.Helper()
	s := New(source)
	var kinds []token.Kind
	for {
		tok := s.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			return kinds
		}
		require.Less(t, len(kinds), 1000, "scanner did not reach EOF for %q", source)
	}
}

func TestIndentationTokens(t *testing.T) {
	src := "if x:\n    y\n    z\nw\n"
	kinds := kindsOf(t, src)
	want := []token.Kind{
		token.If, token.Identifier, token.Colon, token.EOL,
		token.Indentation, token.Identifier, token.EOL,
		token.Identifier, token.EOL,
		token.Indentation, token.Identifier, token.EOL,
		token.EOF,
	}
	assert.Equal(t, want, kinds)
}

func TestMultipleDedentsAtOnce(t *testing.T) {
	src := "if a:\n    if b:\n        c\nd\n"
	s := New(src)
	var indentDepths []int
	for {
		tok := s.Next()
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind == token.Indentation {
			indentDepths = append(indentDepths, len(tok.Lexeme))
		}
		require.Less(t, len(indentDepths), 20)
	}
	// two indents in, then a two-level dedent back to 0 before `d`,
	// reported as two separate Indentation tokens (one per popped level)
	assert.Len(t, indentDepths, 4)
}

func TestParenSuppressesNewline(t *testing.T) {
	// Three newlines appear inside the parens and one after the closing
	// paren; only the trailing one should surface as an EOL token.
	src := "f(\n1,\n2\n)\n"
	kinds := kindsOf(t, src)
	eols := 0
	for _, k := range kinds {
		if k == token.EOL {
			eols++
		}
	}
	assert.Equal(t, 1, eols, "only the EOL after the closing paren should surface: %v", kinds)
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"newline", `"a\nb"`, "a\nb"},
		{"tab", `"a\tb"`, "a\tb"},
		{"hex", `"\x41"`, "A"},
		{"unicode4", `"\u00e9"`, "é"},
		{"unicode8", `"\U0001F600"`, "\U0001F600"},
		{"octal", `"\101"`, "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.src)
			tok := s.Next()
			require.Equal(t, token.String, tok.Kind, "error: %q", tok.Lexeme)
			assert.Equal(t, tt.want, tok.Lexeme)
		})
	}
}

func TestBytesPrefixSuppressesUnicodeEscape(t *testing.T) {
	s := New(`b"\u00e9"`)
	tok := s.Next()
	require.Equal(t, token.String, tok.Kind)
	require.EqualValues(t, 'b', tok.Prefix)
	assert.Equal(t, `\u00e9`, tok.Lexeme, "b-prefixed strings should not decode \\u")
}

func TestFPrefixDecodesNormally(t *testing.T) {
	s := New(`f"\n"`)
	tok := s.Next()
	require.Equal(t, token.String, tok.Kind)
	require.EqualValues(t, 'f', tok.Prefix)
	assert.Equal(t, "\n", tok.Lexeme)
}

func TestUnterminatedString(t *testing.T) {
	s := New(`"abc`)
	tok := s.Next()
	assert.Equal(t, token.Error, tok.Kind)
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct{ src, want string }{
		{"123", "123"},
		{"1_000", "1000"},
		{"3.14", "3.14"},
		{"1e10", "1e10"},
		{"1.5e-3", "1.5e-3"},
		{"0xFF", "0xFF"},
		{"0x1_0", "0x10"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			s := New(tt.src)
			tok := s.Next()
			require.Equal(t, token.Number, tok.Kind)
			assert.Equal(t, tt.want, tok.Lexeme)
		})
	}
}

func TestKeywordsVsIdentifiers(t *testing.T) {
	s := New("class Foo")
	tok := s.Next()
	require.Equal(t, token.Class, tok.Kind)
	tok = s.Next()
	require.Equal(t, token.Identifier, tok.Kind)
	assert.Equal(t, "Foo", tok.Lexeme)
}

func TestUngetPushesBackOneToken(t *testing.T) {
	s := New("a b")
	s.Next() // a
	second := s.Next()
	s.Unget(second)
	replay := s.Next()
	assert.Equal(t, second, replay)
	third := s.Next()
	assert.Equal(t, token.EOF, third.Kind)
}

func TestMarkResetRewindsScanPosition(t *testing.T) {
	s := New("a = b + c")
	s.Next() // a
	mark := s.Mark()
	eq := s.Next() // =
	s.Next()       // b
	s.Reset(mark)
	replay := s.Next()
	assert.Equal(t, eq.Kind, replay.Kind)
	assert.Equal(t, eq.Lexeme, replay.Lexeme)
}

func TestOperatorCompounds(t *testing.T) {
	tests := []struct {
		src  string
		want token.Kind
	}{
		{"+=", token.PlusEqual}, {"->", token.Arrow}, {"**", token.StarStar},
		{"//", token.SlashSlash}, {"==", token.EqualEqual}, {"!=", token.BangEqual},
		{"<=", token.LessEqual}, {">=", token.GreaterEqual},
		{"<<", token.ShiftLeft}, {">>", token.ShiftRight},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			s := New(tt.src)
			tok := s.Next()
			assert.Equal(t, tt.want, tok.Kind)
		})
	}
}
