package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(t *testing.T, src string) []Type {
	t.Helper()
	toks, err := New(src).Tokenize()
	require.NoError(t, err)
	var types []Type
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	return types
}

func TestTokenizeKeywordsAndIdentifiers(t *testing.T) {
	toks, err := New("class Widget { Int count; }").Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 8) // class Widget { Int count ; } EOF
	assert.Equal(t, CLASS, toks[0].Type)
	assert.Equal(t, IDENT, toks[1].Type)
	assert.Equal(t, "Widget", toks[1].Literal)
	assert.Equal(t, INT, toks[3].Type)
	assert.Equal(t, EOF, toks[len(toks)-1].Type)
}

func TestTokenizeOperators(t *testing.T) {
	types := tokenTypes(t, "a += b; a <<= 2; a == b && c != d;")
	assert.Contains(t, types, PLUS_ASSIGN)
	assert.Contains(t, types, SHL_ASSIGN)
	assert.Contains(t, types, EQ_EQ)
	assert.Contains(t, types, AND_AND)
	assert.Contains(t, types, NOT_EQ)
}

func TestTokenizeNumberSuffixes(t *testing.T) {
	toks, err := New("1 1L 1.5 1.5f").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, INT_LIT, toks[0].Type)
	assert.Equal(t, LONG_LIT, toks[1].Type)
	assert.Equal(t, DOUBLE_LIT, toks[2].Type)
	assert.Equal(t, FLOAT_LIT, toks[3].Type)
}

func TestTokenizeRejectsFloatWithLongSuffix(t *testing.T) {
	_, err := New("1.5L").Tokenize()
	assert.Error(t, err)
}

func TestLineCommentsAndLineNumbers(t *testing.T) {
	toks, err := New("Int a; // comment\nInt b;").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, 1, toks[0].Line)
	var line2 bool
	for _, tok := range toks {
		if tok.Line == 2 {
			line2 = true
		}
	}
	assert.True(t, line2)
}

func TestTokenizeRejectsUnknownCharacter(t *testing.T) {
	_, err := New("Int a = @;").Tokenize()
	assert.Error(t, err)
}
