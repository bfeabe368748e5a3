package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/assembler"
	"github.com/vexlang/vexc/internal/diagnostics"
	"github.com/vexlang/vexc/internal/ir"
	"github.com/vexlang/vexc/internal/parser"
)

func compileClass(t *testing.T, src string) *ir.Class {
	t.Helper()
	root, err := parser.Parse(src)
	require.NoError(t, err)
	sink := diagnostics.NewSink("t.vex")
	class := assembler.New(sink).AssembleClass(root.Child(0))
	require.False(t, sink.HasErrors(), "unexpected diagnostics: %v", sink.Diagnostics())
	return class
}

func TestScenario1_EmitsPrintOfArithmetic(t *testing.T) {
	class := compileClass(t, `class Main { void main() { print(1+2*3); } }`)
	src := New(class).Source()
	assert.Contains(t, src, "vexrt::print(")
	assert.Contains(t, src, "void Main::main()")
}

func TestScenario2_EmitsCallAndReturn(t *testing.T) {
	class := compileClass(t, `class Main {
		Int add(Int a, Int b) { return a+b; }
		void main() { println(add(2,3)); }
	}`)
	src := New(class).Source()
	assert.Contains(t, src, "int32_t Main::add(int32_t a, int32_t b)")
	assert.Contains(t, src, "return")
	assert.Contains(t, src, "add(")
	assert.Contains(t, src, "vexrt::println(")
}

func TestHeaderDeclaresFieldsAndMethods(t *testing.T) {
	class := compileClass(t, `class C { Int total = 0; Int get() { return total; } }`)
	hdr := New(class).Header()
	assert.Contains(t, hdr, "class C {")
	assert.Contains(t, hdr, "int32_t total;")
	assert.Contains(t, hdr, "int32_t get(")
	assert.Contains(t, hdr, `#include "vexrt.hpp"`)
}

func TestDeclareLocalsPredeclaresTemporariesBeforeAnyLabel(t *testing.T) {
	class := compileClass(t, `class C {
		void m(Bool b) { Int x; if (b) { x = 1; } else { x = 2; } print(x); }
	}`)
	src := New(class).Source()
	declIdx := indexOf(src, "int32_t x{};")
	labelIdx := indexOfAny(src, ":\n")
	require.GreaterOrEqual(t, declIdx, 0)
	require.GreaterOrEqual(t, labelIdx, 0)
	assert.Less(t, declIdx, labelIdx)
}

func TestRuntimeHeaderDefinesArrayAndPrintHelpers(t *testing.T) {
	assert.Contains(t, RuntimeHeader, "namespace vexrt")
	assert.Contains(t, RuntimeHeader, "inline void print(")
	assert.Contains(t, RuntimeHeader, "inline Object array_get(")
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func indexOfAny(s, substr string) int {
	return indexOf(s, substr)
}
