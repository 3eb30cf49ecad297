package asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	l := NewLexer()
	l.PushFile("t.s", []byte(src))

	var toks []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)

		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

func TestLexerIdentAndPunct(t *testing.T) {
	toks := lexAll(t, "foo: bar = foo + 4\n")

	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}

	require.Equal(t, []Kind{Ident, Colon, Ident, Equals, Ident, Plus, Int, EndOfStatement, EOF}, kinds)
}

func TestLexerNumberBases(t *testing.T) {
	toks := lexAll(t, "10 0x1f 0b101 0o17\n")

	require.Equal(t, int64(10), toks[0].IVal)
	require.Equal(t, int64(0x1f), toks[1].IVal)
	require.Equal(t, int64(0b101), toks[2].IVal)
	require.Equal(t, int64(0o17), toks[3].IVal)
}

func TestLexerStringEscapes(t *testing.T) {
	toks := lexAll(t, `"a\nb\t\\\"\x41"` + "\n")

	require.Equal(t, String, toks[0].Kind)
	require.Equal(t, "a\nb\t\\\"A", toks[0].Text)
}

func TestLexerUnterminatedString(t *testing.T) {
	l := NewLexer()
	l.PushFile("t.s", []byte(`"abc`))

	_, err := l.Next()
	require.Error(t, err)
}

func TestLexerComments(t *testing.T) {
	toks := lexAll(t, "foo # comment\nbar // line\nbaz /* block */ qux\n")

	var idents []string
	for _, tok := range toks {
		if tok.Kind == Ident {
			idents = append(idents, tok.Text)
		}
	}

	require.Equal(t, []string{"foo", "bar", "baz", "qux"}, idents)
}

func TestLexerCollapsesBlankLines(t *testing.T) {
	toks := lexAll(t, "foo\n\n\nbar")

	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}

	// three consecutive newlines between "foo" and "bar" collapse into
	// a single EndOfStatement token.
	count := 0
	for _, k := range kinds {
		if k == EndOfStatement {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestLexerComparisonAndLogicalPunct(t *testing.T) {
	toks := lexAll(t, "! < <= <> > >= == != && ||\n")

	var kinds []Kind
	for _, tok := range toks {
		if tok.Kind != EndOfStatement && tok.Kind != EOF {
			kinds = append(kinds, tok.Kind)
		}
	}

	require.Equal(t, []Kind{
		Exclaim, Less, LessEqual, LessGreater, Greater, GreaterEqual,
		EqualEqual, ExclaimEqual, AmpAmp, PipePipe,
	}, kinds)
}

func TestLexerDotIdentifier(t *testing.T) {
	toks := lexAll(t, ".byte 1\n")

	require.Equal(t, Ident, toks[0].Kind)
	require.Equal(t, ".byte", toks[0].Text)
}

func TestLexerRoundTripTokenSequence(t *testing.T) {
	src := "foo: bar = foo + 4\n.byte bar\n"

	first := lexAll(t, src)
	second := lexAll(t, src)

	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].Kind, second[i].Kind)
		require.Equal(t, first[i].Text, second[i].Text)
		require.Equal(t, first[i].IVal, second[i].IVal)
	}
}
