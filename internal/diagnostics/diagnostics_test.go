package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkAccumulatesInEmissionOrder(t *testing.T) {
	s := NewSink("a.vex")
	assert.False(t, s.HasErrors())
	s.Report(Type, 3, MsgIncompatibleAssign, "Int", "Bool")
	s.Report(Scope, 1, MsgUndeclaredVariable, "x")
	require.True(t, s.HasErrors())
	got := s.Diagnostics()
	require.Len(t, got, 2)
	assert.Equal(t, Type, got[0].Kind)
	assert.Equal(t, 3, got[0].Line)
	assert.Equal(t, `incompatible types in assignment: cannot assign Int to Bool`, got[0].Message)
	assert.Equal(t, Scope, got[1].Kind)
}

func TestDiagnosticsReturnsACopy(t *testing.T) {
	s := NewSink("a.vex")
	s.Report(Syntax, 1, "boom")
	got := s.Diagnostics()
	got[0].Message = "mutated"
	assert.Equal(t, "boom", s.Diagnostics()[0].Message)
}

func TestStringIncludesFileAndLine(t *testing.T) {
	d := Diagnostic{File: "a.vex", Line: 7, Message: "oops"}
	assert.Equal(t, "a.vex:7: oops", d.String())
}

func TestRenderWithoutColorIncludesKindAndLocation(t *testing.T) {
	s := NewSink("a.vex")
	s.Report(Structural, 5, "bad shape")
	out := s.Render(false)
	assert.Contains(t, out, "error[structural]")
	assert.Contains(t, out, "a.vex:5")
	assert.Contains(t, out, "bad shape")
}
