package typeeval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diagnostics"
	"github.com/vexlang/vexc/internal/parser"
	"github.com/vexlang/vexc/internal/scope"
	"github.com/vexlang/vexc/internal/types"
)

// methodFixture parses src (expected to declare exactly one method on
// its one class) and returns everything an Evaluator needs to run over
// that method's body: the resolved scope ids, the body node itself, and
// the method's own declared argument types/return type.
func methodFixture(t *testing.T, src string) (body *ast.Node, resolved map[*ast.Node]int, argTypes map[string]types.Type, returnType types.Type, sink *diagnostics.Sink) {
	t.Helper()
	root, err := parser.Parse(src)
	require.NoError(t, err)
	method := root.Child(0).Child(1).Child(0)
	require.Equal(t, ast.TagMethodDefinition, method.Tag)

	returnType = nodeToType(method.Child(0))
	var argNames []string
	argTypes = map[string]types.Type{}
	for c := method.Child(1); c != nil; c = c.Child(1) {
		arg := c.Child(0)
		if arg == nil {
			continue
		}
		argNames = append(argNames, arg.Token)
		argTypes[arg.Token] = nodeToType(arg.Child(0))
	}

	body = method.Child(2)
	sink = diagnostics.NewSink("t.vex")
	resolved = scope.Resolve(body, argNames, map[string]bool{}, sink)
	return body, resolved, argTypes, returnType, sink
}

func TestArithmeticExpressionGetsWidenedType(t *testing.T) {
	body, resolved, argTypes, returnType, sink := methodFixture(t, `class C { void m() { Int a = 1; Float b = 2.5f; print(a + b); } }`)
	ev := New(sink, resolved, map[string]types.Type{}, argTypes, map[string]MethodSig{
		"print": {IsVoid: true, ArgTypes: []types.Type{types.Object()}},
	}, returnType, true)
	ev.EvalBody(body)
	assert.False(t, sink.HasErrors())

	call := body.Child(0).Child(1).Child(1).Child(0).Child(0) // third stmt: print(a + b)
	require.Equal(t, ast.TagCall, call.Tag)
	add := call.Child(1).Child(0)
	require.Equal(t, ast.TagAdd, add.Tag)
	got, ok := ev.NodeTypes()[add]
	require.True(t, ok)
	assert.Equal(t, types.RFloat, got.Reduce())
}

func TestIfElseBranchesMergeToLeastCommonType(t *testing.T) {
	body, resolved, argTypes, returnType, sink := methodFixture(t, `class C {
		void m(Bool cond) {
			var x = 1;
			if (cond) { x = 1; } else { x = 2.5f; }
			print(x);
		}
	}`)
	ev := New(sink, resolved, map[string]types.Type{}, argTypes, map[string]MethodSig{
		"print": {IsVoid: true, ArgTypes: []types.Type{types.Object()}},
	}, returnType, true)
	ev.EvalBody(body)
	assert.False(t, sink.HasErrors())

	ifElse := body.Child(0).Child(1).Child(0)
	require.Equal(t, ast.TagIfElse, ifElse.Tag)
	decl := body.Child(0).Child(0)
	require.Equal(t, ast.TagVarDeclaration, decl.Tag)
	id, ok := resolved[decl]
	require.True(t, ok)
	final, ok := ev.VarTypeAt(id)
	require.True(t, ok)
	assert.Equal(t, types.RFloat, final.Reduce())
}

func TestLoopFixpointWidensAccumulatorAcrossIterations(t *testing.T) {
	// Mirrors the canonical widening scenario: an Int accumulator that
	// only becomes Float inside the loop body must still end up Float
	// after the fixpoint settles, even though its declaration alone
	// looked like Int.
	body, resolved, argTypes, returnType, sink := methodFixture(t, `class C {
		void m() {
			var a = 1;
			var e = 1.5f;
			for (var i = 0; i < 3; i++) { a += e; }
			println(a);
		}
	}`)
	ev := New(sink, resolved, map[string]types.Type{}, argTypes, map[string]MethodSig{
		"println": {IsVoid: true, ArgTypes: []types.Type{types.Object()}},
	}, returnType, true)
	ev.EvalBody(body)
	require.False(t, sink.HasErrors())

	aDecl := body.Child(0).Child(0)
	require.Equal(t, ast.TagVarDeclaration, aDecl.Tag)
	id, ok := resolved[aDecl]
	require.True(t, ok)
	final, ok := ev.VarTypeAt(id)
	require.True(t, ok)
	assert.Equal(t, types.RFloat, final.Reduce())
}

func TestUsedBeforeInitIsFlagged(t *testing.T) {
	body, resolved, argTypes, returnType, sink := methodFixture(t, `class C {
		Int f(Bool b) { Int x; if (b) { x = 1; } return x; }
	}`)
	ev := New(sink, resolved, map[string]types.Type{}, argTypes, map[string]MethodSig{}, returnType, false)
	ev.EvalBody(body)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Kind == diagnostics.DefiniteAssign {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTernaryMergesBranchTypes(t *testing.T) {
	body, resolved, argTypes, returnType, sink := methodFixture(t, `class C {
		void m(Bool cond) { print(cond ? 1 : 2.5f); }
	}`)
	ev := New(sink, resolved, map[string]types.Type{}, argTypes, map[string]MethodSig{
		"print": {IsVoid: true, ArgTypes: []types.Type{types.Object()}},
	}, returnType, true)
	ev.EvalBody(body)
	assert.False(t, sink.HasErrors())

	call := body.Child(0).Child(0).Child(0)
	require.Equal(t, ast.TagCall, call.Tag)
	ternary := call.Child(1).Child(0)
	require.Equal(t, ast.TagTernary, ternary.Tag)
	got, ok := ev.NodeTypes()[ternary]
	require.True(t, ok)
	assert.Equal(t, types.RFloat, got.Reduce())
}

func TestArrayLiteralElementTypeIsLeastCommonTypeOfAllElements(t *testing.T) {
	body, resolved, argTypes, returnType, sink := methodFixture(t, `class C {
		void m() { var xs = [1, 2, 3, 4, 5.5f]; print(xs); }
	}`)
	ev := New(sink, resolved, map[string]types.Type{}, argTypes, map[string]MethodSig{
		"print": {IsVoid: true, ArgTypes: []types.Type{types.Object()}},
	}, returnType, true)
	ev.EvalBody(body)
	assert.False(t, sink.HasErrors())

	decl := body.Child(0).Child(0)
	require.Equal(t, ast.TagVarDeclaration, decl.Tag)
	lit := decl.Child(2)
	require.Equal(t, ast.TagArrayLit, lit.Tag)
	got, ok := ev.NodeTypes()[lit]
	require.True(t, ok)
	// Every one of the five elements (beyond the four-slot array cap on
	// ast.Node.Children) must have contributed to the merge, so the
	// float fifth element still widens the result.
	assert.Equal(t, 1, got.Dims)
	assert.Equal(t, types.RFloat, types.Type{Class: got.Class}.Reduce())
}

func TestMissingReturnIsNotThisPackagesConcern(t *testing.T) {
	// EvalBody only tracks reachability; reporting MsgMissingReturn at
	// the method level is cfgbuild's responsibility (it owns the method
	// line and the final reachability check). This test documents that
	// boundary so a future change doesn't accidentally duplicate it here.
	body, resolved, argTypes, returnType, sink := methodFixture(t, `class C {
		Int f(Bool b) { if (b) { return 1; } }
	}`)
	ev := New(sink, resolved, map[string]types.Type{}, argTypes, map[string]MethodSig{}, returnType, false)
	ev.EvalBody(body)
	assert.False(t, sink.HasErrors())
	assert.True(t, ev.Reachable())
}
