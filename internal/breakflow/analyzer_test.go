package breakflow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vexlang/vexc/internal/ast"
)

func block(stmts ...*ast.Node) *ast.Node {
	if len(stmts) == 0 {
		return nil
	}
	tail := block(stmts[1:]...)
	return ast.NewNode(ast.TagBlock, 1, "", stmts[0], tail)
}

func TestReturnAlwaysBreaksAtAnyLevel(t *testing.T) {
	a := New()
	ret := ast.NewNode(ast.TagReturn, 1, "")
	assert.True(t, a.AlwaysBreaks(ret, 0))
	assert.Equal(t, math.MinInt32, a.MaxBreakLevel(ret))
}

func TestBreakWithNoCountTargetsImmediateLevel(t *testing.T) {
	a := New()
	brk := ast.NewNode(ast.TagBreak, 1, "")
	assert.Equal(t, -1, a.MaxBreakLevel(brk))
}

func TestBreakWithExplicitCount(t *testing.T) {
	a := New()
	count := ast.NewNode(ast.TagIntLit, 1, "3")
	brk := ast.NewNode(ast.TagBreak, 1, "", count)
	assert.Equal(t, -3, a.MaxBreakLevel(brk))
}

func TestIfWithoutElseNeverAlwaysBreaks(t *testing.T) {
	a := New()
	stmt := ast.NewNode(ast.TagIf, 1, "")
	assert.False(t, a.AlwaysBreaks(stmt, 0))
}

func TestIfElseBreaksOnlyWhenBothBranchesBreak(t *testing.T) {
	a := New()
	brk := ast.NewNode(ast.TagBreak, 1, "")
	ret := ast.NewNode(ast.TagReturn, 1, "")
	bothBreak := ast.NewNode(ast.TagIfElse, 1, "", nil, brk, ret)
	assert.True(t, a.AlwaysBreaks(bothBreak, 0))

	fallsThrough := ast.NewNode(ast.TagIfElse, 1, "", nil, ret, ast.NewNode(ast.TagEmpty, 1, ""))
	assert.False(t, a.AlwaysBreaks(fallsThrough, 0))
}

func TestSequenceStopsAtFirstDepartingStatement(t *testing.T) {
	a := New()
	brk := ast.NewNode(ast.TagBreak, 1, "")
	unreachablePrint := ast.NewNode(ast.TagExprStmt, 1, "")
	seq := ast.NewNode(ast.TagBlock, 1, "", block(brk, unreachablePrint))
	assert.Equal(t, -1, a.MaxBreakLevel(seq))
}

func TestSwitchWithDefaultAlwaysDepartsAtLevelZero(t *testing.T) {
	a := New()
	def := ast.NewNode(ast.TagDefault, 1, "")
	caseList := ast.NewNode(ast.TagCaseList, 1, "", def, nil)
	sw := ast.NewNode(ast.TagSwitch, 1, "", nil, caseList)
	assert.Equal(t, 0, a.MaxBreakLevel(sw))
}

func TestSwitchWithoutDefaultNeverAlwaysBreaks(t *testing.T) {
	a := New()
	c := ast.NewNode(ast.TagCase, 1, "")
	caseList := ast.NewNode(ast.TagCaseList, 1, "", c, nil)
	sw := ast.NewNode(ast.TagSwitch, 1, "", nil, caseList)
	assert.False(t, a.AlwaysBreaks(sw, 0))
}

func TestLoopsNeverAlwaysBreakOutward(t *testing.T) {
	a := New()
	for _, tag := range []ast.Tag{ast.TagWhile, ast.TagDoWhile, ast.TagFor, ast.TagForIn} {
		loop := ast.NewNode(tag, 1, "")
		assert.False(t, a.AlwaysBreaks(loop, 0), "tag %v", tag)
	}
}

func TestMaxBreakLevelIsMemoized(t *testing.T) {
	a := New()
	ret := ast.NewNode(ast.TagReturn, 1, "")
	first := a.MaxBreakLevel(ret)
	second := a.MaxBreakLevel(ret)
	assert.Equal(t, first, second)
}
