package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/ast"
)

func TestParseMinimalClass(t *testing.T) {
	root, err := Parse(`class Widget { void main() { print(1+2*3); } }`)
	require.NoError(t, err)
	require.Equal(t, ast.TagFile, root.Tag)

	class := root.Child(0)
	require.Equal(t, ast.TagClassDefinition, class.Tag)
	assert.Equal(t, "Widget", class.Token)

	item := class.Child(1)
	require.NotNil(t, item)
	method := item.Child(0)
	require.Equal(t, ast.TagMethodDefinition, method.Tag)
	assert.Equal(t, "main", method.Token)
	assert.Equal(t, ast.TagVoid, method.Child(0).Tag)
}

func TestParseFieldWithInitializer(t *testing.T) {
	root, err := Parse(`class C { Int total = 0; }`)
	require.NoError(t, err)
	item := root.Child(0).Child(1)
	field := item.Child(0)
	require.Equal(t, ast.TagFieldDeclaration, field.Tag)
	assert.Equal(t, "total", field.Token)
	assert.Equal(t, ast.TagType, field.Child(0).Tag)
	assert.Equal(t, "Int", field.Child(0).Token)
	require.NotNil(t, field.Child(2))
	assert.Equal(t, ast.TagIntLit, field.Child(2).Tag)
}

func TestParseArrayType(t *testing.T) {
	root, err := Parse(`class C { Int[] nums; }`)
	require.NoError(t, err)
	field := root.Child(0).Child(1).Child(0)
	arrType := field.Child(0)
	require.Equal(t, ast.TagTypeArray, arrType.Tag)
	assert.Equal(t, ast.TagType, arrType.Child(0).Tag)
	assert.Equal(t, "Int", arrType.Child(0).Token)
}

func TestParseIfElse(t *testing.T) {
	root, err := Parse(`class C { void m(Bool b) { if (b) { print(1); } else { print(2); } } }`)
	require.NoError(t, err)
	method := root.Child(0).Child(1).Child(0)
	body := method.Child(2)
	stmt := body.Child(0).Child(0)
	require.Equal(t, ast.TagIfElse, stmt.Tag)
}

func TestParseForLoop(t *testing.T) {
	root, err := Parse(`class C { void m() { for (var i=0;i<3;i++) { print(i); } } }`)
	require.NoError(t, err)
	method := root.Child(0).Child(1).Child(0)
	stmt := method.Child(2).Child(0).Child(0)
	require.Equal(t, ast.TagFor, stmt.Tag)
	assert.Equal(t, ast.TagVarDeclaration, stmt.Child(0).Tag)
	assert.Equal(t, ast.TagLt, stmt.Child(1).Tag)
	assert.Equal(t, ast.TagPostInc, stmt.Child(2).Tag)
}

func TestParseForIn(t *testing.T) {
	root, err := Parse(`class C { void m(Int[] xs) { for (var x in xs) { print(x); } } }`)
	require.NoError(t, err)
	method := root.Child(0).Child(1).Child(0)
	stmt := method.Child(2).Child(0).Child(0)
	require.Equal(t, ast.TagForIn, stmt.Tag)
	assert.Equal(t, "x", stmt.Child(0).Token)
}

func TestParseSwitch(t *testing.T) {
	src := `class C { void m(Int x) { switch (x) { case 1: print(1); case 2: print(2); default: print(0); } } }`
	root, err := Parse(src)
	require.NoError(t, err)
	method := root.Child(0).Child(1).Child(0)
	stmt := method.Child(2).Child(0).Child(0)
	require.Equal(t, ast.TagSwitch, stmt.Tag)

	var cases []*ast.Node
	for c := stmt.Child(1); c != nil; c = c.Child(1) {
		cases = append(cases, c.Child(0))
	}
	require.Len(t, cases, 3)
	assert.Equal(t, ast.TagCase, cases[0].Tag)
	assert.Equal(t, ast.TagCase, cases[1].Tag)
	assert.Equal(t, ast.TagDefault, cases[2].Tag)
}

func TestParseTernaryAndAssignPrecedence(t *testing.T) {
	root, err := Parse(`class C { void m(Bool b) { Int x = b ? 1 : 2; } }`)
	require.NoError(t, err)
	method := root.Child(0).Child(1).Child(0)
	decl := method.Child(2).Child(0).Child(0)
	require.Equal(t, ast.TagVarDeclaration, decl.Tag)
	init := decl.Child(2)
	require.Equal(t, ast.TagTernary, init.Tag)
}

func TestParseCallArguments(t *testing.T) {
	root, err := Parse(`class C { Int add(Int a, Int b) { return add(a, b); } }`)
	require.NoError(t, err)
	method := root.Child(0).Child(1).Child(0)
	ret := method.Child(2).Child(0).Child(0)
	require.Equal(t, ast.TagReturn, ret.Tag)
	call := ret.Child(0)
	require.Equal(t, ast.TagCall, call.Tag)
	assert.Equal(t, "add", call.Child(0).Token)
	var args []*ast.Node
	for c := call.Child(1); c != nil; c = c.Child(1) {
		args = append(args, c.Child(0))
	}
	require.Len(t, args, 2)
}

func TestParseSyntaxErrorHasLine(t *testing.T) {
	_, err := Parse(`class C { void m( { } }`)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Greater(t, perr.Line, 0)
}

func TestParseMultiDeclaratorVarStatement(t *testing.T) {
	root, err := Parse(`class C { void m() { var a=1, b=2, c=3; } }`)
	require.NoError(t, err)
	method := root.Child(0).Child(1).Child(0)
	stmt := method.Child(2).Child(0).Child(0)
	require.Equal(t, ast.TagVarDeclarationList, stmt.Tag)
	assert.Equal(t, 3, stmt.ChildCount())
}
