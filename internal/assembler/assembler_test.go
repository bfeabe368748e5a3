package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/diagnostics"
	"github.com/vexlang/vexc/internal/ir"
	"github.com/vexlang/vexc/internal/parser"
)

// compile parses and assembles src, returning the class and its sink.
// Mirrors spec.md §8's end-to-end scenarios: literal source in, IR/
// diagnostics out.
func compile(t *testing.T, src string) (*ir.Class, *diagnostics.Sink) {
	t.Helper()
	root, err := parser.Parse(src)
	require.NoError(t, err)
	sink := diagnostics.NewSink("test.vex")
	class := New(sink).AssembleClass(root.Child(0))
	return class, sink
}

func TestScenario1_ArithmeticPrintCompiles(t *testing.T) {
	_, sink := compile(t, `class Main { void main() { print(1+2*3); } }`)
	assert.False(t, sink.HasErrors())
}

func TestScenario2_MethodCallReturnsSum(t *testing.T) {
	_, sink := compile(t, `class Main {
		Int add(Int a, Int b) { return a+b; }
		void main() { println(add(2,3)); }
	}`)
	assert.False(t, sink.HasErrors())
}

func TestScenario3_SwitchFallthroughRejected(t *testing.T) {
	_, sink := compile(t, `class Main {
		void m(Int x) { switch(x){ case 1: print(1); case 2: print(2); } }
	}`)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Message == "" {
			continue
		}
		if d.Kind == diagnostics.Structural {
			found = true
		}
	}
	assert.True(t, found)
}

func TestScenario4_LoopWidening(t *testing.T) {
	class, sink := compile(t, `class Main {
		void m() { var a=1; var e=1.5f; for (var i=0;i<3;i++){ a += e; } println(a); }
	}`)
	require.False(t, sink.HasErrors())
	require.NotNil(t, class.Methods["m"])
}

func TestScenario5_DefiniteAssignment(t *testing.T) {
	_, sink := compile(t, `class Main {
		Int f(Bool b){ Int x; if (b) x=1; return x; }
	}`)
	require.True(t, sink.HasErrors())
	assertHasDiagnosticContaining(t, sink, "initialized")
}

func TestScenario6_MissingReturn(t *testing.T) {
	_, sink := compile(t, `class Main {
		Int f(Bool b){ if (b) return 1; }
	}`)
	require.True(t, sink.HasErrors())
	assertHasDiagnosticContaining(t, sink, "without returning")
}

func TestScenario7_SwitchOverLongScrutinee(t *testing.T) {
	_, sink := compile(t, `class Main {
		void m(Long x){ switch(x){ case 1: print(1); break; } }
	}`)
	require.True(t, sink.HasErrors())
}

func TestDuplicateFieldDiagnostic(t *testing.T) {
	_, sink := compile(t, `class C { Int a; Int a; }`)
	assert.True(t, sink.HasErrors())
}

func TestDuplicateMethodDiagnostic(t *testing.T) {
	_, sink := compile(t, `class C { void m(){} void m(){} }`)
	assert.True(t, sink.HasErrors())
}

func TestFieldInitializerOrderAndMethodCall(t *testing.T) {
	class, sink := compile(t, `class C {
		Int base = 10;
		Int derived = addOne(base);
		Int addOne(Int x) { return x + 1; }
	}`)
	require.False(t, sink.HasErrors())
	assert.Len(t, class.InitStatements, 2)
}

func assertHasDiagnosticContaining(t *testing.T, sink *diagnostics.Sink, substr string) {
	t.Helper()
	for _, d := range sink.Diagnostics() {
		if containsFold(d.Message, substr) {
			return
		}
	}
	t.Fatalf("no diagnostic contains %q; got %v", substr, sink.Diagnostics())
}

func containsFold(s, substr string) bool {
	return len(s) >= len(substr) && indexFold(s, substr) >= 0
}

func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if equalFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
