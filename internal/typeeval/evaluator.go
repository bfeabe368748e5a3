// Package typeeval implements the expression type evaluator (spec.md
// §4.3): it computes one compile-time Type per expression AST node
// across an entire method, handling branches, short-circuit booleans,
// ternaries, and loop fixpoints.
//
// Grounded on the teacher's pkg/interpreter/typechecker.go TypeChecker
// (typeDefs/typeScope-driven CheckType with numeric coercion),
// generalized from a single-pass runtime-value checker into a
// compile-time, branch-merging, loop-fixpoint evaluator. Where spec.md §9
// describes a manually reference-counted persistent linked list of
// branch-local type snapshots, this implementation instead clones and
// restores plain maps around each branch arm — idiomatic in a
// garbage-collected target language, and behaviorally equivalent since
// the spec never requires sub-linear memory, only that the fixpoint
// terminates and that memory stays bounded per method (Go's GC already
// guarantees the latter once a snapshot is unreferenced).
package typeeval

import (
	"math"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diagnostics"
	"github.com/vexlang/vexc/internal/types"
)

// MethodSig is the signature an evaluator needs to type-check calls.
type MethodSig struct {
	ReturnType types.Type
	ArgTypes   []types.Type
	IsVoid     bool
}

// varState is the per-local state tracked during evaluation: either
// "initialized with a type" or absent (uninitialized).
type varState map[int]types.Type

func (v varState) clone() varState {
	c := make(varState, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}

// target is one open break or continue target: the loop/switch
// collects, at each break/continue statement aimed at it, a snapshot of
// the var state reaching that point, to be merged back in when the
// target closes.
type target struct {
	incoming []varState
}

// Evaluator computes Types for every expression node in one method body.
type Evaluator struct {
	sink       *diagnostics.Sink
	resolved   map[*ast.Node]int
	fieldTypes map[string]types.Type
	argTypes   map[string]types.Type
	methods    map[string]MethodSig
	returnType types.Type
	isVoid     bool

	nodeTypes map[*ast.Node]types.Type

	vars varState
	// declaredTypes holds the explicit (non-auto) type a local was
	// declared with, independent of whether it has been initialized yet.
	// A bare "Int x;" populates this without touching vars, so a plain
	// assignment later still type-checks against the declaration's type
	// instead of silently adopting whatever the first assignment's RHS
	// happens to be.
	declaredTypes map[int]types.Type
	// reachable is false once the current point can provably not be
	// reached (e.g. after a return/break/continue on every path).
	reachable bool

	breakTargets    []*target
	continueTargets []*target

	isCheckingLoop bool
	hasChanged     bool
}

// New constructs an Evaluator for one method.
func New(sink *diagnostics.Sink, resolved map[*ast.Node]int, fieldTypes map[string]types.Type, argTypes map[string]types.Type, methods map[string]MethodSig, returnType types.Type, isVoid bool) *Evaluator {
	return &Evaluator{
		sink:          sink,
		resolved:      resolved,
		fieldTypes:    fieldTypes,
		argTypes:      argTypes,
		methods:       methods,
		returnType:    returnType,
		isVoid:        isVoid,
		nodeTypes:     make(map[*ast.Node]types.Type),
		vars:          make(varState),
		declaredTypes: make(map[int]types.Type),
		reachable:     true,
	}
}

// NodeTypes returns the computed type of every visited expression node.
func (e *Evaluator) NodeTypes() map[*ast.Node]types.Type { return e.nodeTypes }

// VarTypeAt returns the current (final) type of local id, if any.
func (e *Evaluator) VarTypeAt(id int) (types.Type, bool) {
	t, ok := e.vars[id]
	return t, ok
}

// Reachable reports whether the point just after the last visited
// statement can still be reached.
func (e *Evaluator) Reachable() bool { return e.reachable }

// EvalBody runs the evaluator over a method's body block node (a
// TagBlock whose Child(0) is the statement list) starting from an empty
// local var state. Arguments carry no local id
// (the scope resolver maps them to FieldOrArg) and are read straight out
// of argTypes by visitVarUse/visitAssign, so they need no seeding here.
func (e *Evaluator) EvalBody(body *ast.Node) {
	e.visitStmt(body)
}

// setType records t as node's type, taking the least-common-type with
// any prior value so repeated loop passes only ever widen (spec.md §4.3:
// "if nodeTypes[node] already contains a type, the returned type is the
// least-common-type of that and the current entry").
func (e *Evaluator) setType(n *ast.Node, t types.Type) types.Type {
	old, existed := e.nodeTypes[n]
	final := t
	if existed {
		final = types.LeastCommonType(old, t)
	}
	if !existed || !final.Equal(old) {
		e.hasChanged = true
		e.nodeTypes[n] = final
	}
	return final
}

func (e *Evaluator) report(line int, format string, args ...interface{}) {
	if e.isCheckingLoop {
		return
	}
	e.sink.Report(diagnostics.Type, line, format, args...)
}

// ---- statement visiting ----

func (e *Evaluator) visitStmtList(n *ast.Node) {
	for cur := n; cur != nil; cur = cur.Child(1) {
		head := cur.Child(0)
		if head == nil {
			continue
		}
		e.visitStmt(head)
	}
}

func (e *Evaluator) visitStmt(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Tag {
	case ast.TagBlock:
		e.visitStmtList(n.Child(0))

	case ast.TagExprStmt:
		e.visitExpr(n.Child(0))

	case ast.TagVarDeclaration:
		e.visitVarDecl(n)

	case ast.TagVarDeclarationList:
		// More than four declarators in one statement nest further
		// TagVarDeclarationList nodes in the fourth slot (ast.Node has a
		// fixed four-child array), so this dispatches back through
		// visitStmt rather than assuming every child is a bare
		// TagVarDeclaration.
		for _, ch := range n.Children {
			if ch != nil {
				e.visitStmt(ch)
			}
		}

	case ast.TagIf:
		e.visitIf(n)

	case ast.TagIfElse:
		e.visitIfElse(n)

	case ast.TagWhile:
		e.visitWhile(n)

	case ast.TagDoWhile:
		e.visitDoWhile(n)

	case ast.TagFor:
		e.visitFor(n)

	case ast.TagForIn:
		e.visitForIn(n)

	case ast.TagSwitch:
		e.visitSwitch(n)

	case ast.TagBreak:
		e.visitBreakContinue(n, true)

	case ast.TagContinue:
		e.visitBreakContinue(n, false)

	case ast.TagReturn:
		e.visitReturn(n)

	case ast.TagEmpty:
		// no-op

	default:
		e.visitExpr(n)
	}
}

// visitVarDecl visits one declarator ("Int x;", "Int x = 1;", or
// "var x = 1;"). Grounded on the original TypeEvaluator.cpp's
// visitVarDeclarationItem: a bare-identifier declarator (no initializer)
// is a pure no-op that updates no var-type state, since a declaration
// alone does not initialize the variable. Only a declarator with an
// initializer writes e.vars, so a declared-but-unassigned local is still
// reported as used-before-initialized at its first read.
func (e *Evaluator) visitVarDecl(n *ast.Node) {
	id, ok := e.resolved[n]
	if !ok {
		return
	}
	declared := n.Child(0) // type node, or auto
	init := n.Child(2)
	hasExplicitType := declared != nil && declared.Tag != ast.TagAuto
	if hasExplicitType {
		e.declaredTypes[id] = nodeToType(declared)
	}
	if init == nil {
		return
	}
	t := e.visitExpr(init)
	if hasExplicitType {
		declType := e.declaredTypes[id]
		if !e.isCheckingLoop && !assignable(t, declType) {
			e.report(n.Line, diagnostics.MsgIncompatibleAssign, t, declType)
		}
		t = declType
	}
	if e.reachable {
		e.vars[id] = t
	}
}

// pushBranch clones the current var state so an arm can mutate freely;
// the caller restores with the returned snapshot before visiting a
// sibling arm.
func (e *Evaluator) pushBranch() varState { return e.vars.clone() }

// mergeArms computes the join of the var states reaching the end of each
// reachable arm (unreachable arms, i.e. those that always depart via
// break/continue/return, contribute nothing), per spec.md §4.3.
func mergeArms(arms []varState, reach []bool) varState {
	merged := make(varState)
	present := make(map[int]int)
	any := false
	for i, arm := range arms {
		if !reach[i] {
			continue
		}
		any = true
		for id, t := range arm {
			if cur, ok := merged[id]; ok {
				merged[id] = types.LeastCommonType(cur, t)
			} else {
				merged[id] = t
			}
			present[id]++
		}
	}
	if !any {
		return merged
	}
	reachableArms := 0
	for _, r := range reach {
		if r {
			reachableArms++
		}
	}
	out := make(varState)
	for id, count := range present {
		if count == reachableArms {
			out[id] = merged[id]
		}
	}
	return out
}

func (e *Evaluator) visitIf(n *ast.Node) {
	cond := n.Child(0)
	e.visitBoolExpr(cond)
	before := e.pushBranch()
	beforeReachable := e.reachable
	e.visitStmt(n.Child(1))
	thenState, thenReach := e.vars, e.reachable
	e.vars = before
	e.reachable = beforeReachable
	e.vars = mergeArms([]varState{thenState, before}, []bool{thenReach, true})
}

func (e *Evaluator) visitIfElse(n *ast.Node) {
	cond := n.Child(0)
	e.visitBoolExpr(cond)
	outerReachable := e.reachable
	before := e.pushBranch()

	e.visitStmt(n.Child(1))
	thenState, thenReach := e.vars, e.reachable

	e.vars = before
	e.reachable = outerReachable
	e.visitStmt(n.Child(2))
	elseState, elseReach := e.vars, e.reachable

	e.vars = mergeArms([]varState{thenState, elseState}, []bool{thenReach, elseReach})
	e.reachable = outerReachable && (thenReach || elseReach)
}

func (e *Evaluator) pushLoopTargets() (*target, *target) {
	bt := &target{}
	ct := &target{}
	e.breakTargets = append(e.breakTargets, bt)
	e.continueTargets = append(e.continueTargets, ct)
	return bt, ct
}

func (e *Evaluator) popLoopTargets() (*target, *target) {
	bt := e.breakTargets[len(e.breakTargets)-1]
	ct := e.continueTargets[len(e.continueTargets)-1]
	e.breakTargets = e.breakTargets[:len(e.breakTargets)-1]
	e.continueTargets = e.continueTargets[:len(e.continueTargets)-1]
	return bt, ct
}

// runLoopFixpoint repeatedly visits body until a pass changes no
// expression type (spec.md §4.3), suppressing diagnostics on trial
// passes, then runs one final non-suppressing pass.
func (e *Evaluator) runLoopFixpoint(visitBody func()) {
	savedChecking := e.isCheckingLoop
	e.isCheckingLoop = true
	entry := e.pushBranch()
	entryReachable := e.reachable
	for {
		e.vars = entry.clone()
		e.reachable = entryReachable
		e.hasChanged = false
		visitBody()
		if !e.hasChanged {
			break
		}
		// Widen the entry state with whatever the body produced so the
		// next pass starts from the widened types, guaranteeing
		// monotonic convergence.
		entry = mergeArms([]varState{entry, e.vars}, []bool{true, e.reachable})
	}
	e.isCheckingLoop = savedChecking
	// Final non-suppressing pass to emit diagnostics against the
	// converged state.
	e.vars = entry.clone()
	e.reachable = entryReachable
	visitBody()
}

func (e *Evaluator) visitWhile(n *ast.Node) {
	bt, ct := e.pushLoopTargets()
	entry := e.pushBranch()
	entryReachable := e.reachable
	e.runLoopFixpoint(func() {
		e.visitBoolExpr(n.Child(0))
		e.visitStmt(n.Child(1))
	})
	_ = ct
	e.popLoopTargets()
	after := e.closeLoop(bt, entry, entryReachable)
	e.vars = after
	e.reachable = true
}

func (e *Evaluator) visitDoWhile(n *ast.Node) {
	bt, ct := e.pushLoopTargets()
	entry := e.pushBranch()
	entryReachable := e.reachable
	e.runLoopFixpoint(func() {
		e.visitStmt(n.Child(0))
		e.visitBoolExpr(n.Child(1))
	})
	_ = ct
	e.popLoopTargets()
	after := e.closeLoop(bt, entry, entryReachable)
	e.vars = after
	e.reachable = true
}

func (e *Evaluator) visitFor(n *ast.Node) {
	// Child(0) init, Child(1) condition, Child(2) step, Child(3) body.
	e.visitStmt(n.Child(0))
	bt, ct := e.pushLoopTargets()
	entry := e.pushBranch()
	entryReachable := e.reachable
	e.runLoopFixpoint(func() {
		if n.Child(1) != nil {
			e.visitBoolExpr(n.Child(1))
		}
		e.visitStmt(n.Child(3))
		if n.Child(2) != nil {
			e.visitExpr(n.Child(2))
		}
	})
	_ = ct
	e.popLoopTargets()
	after := e.closeLoop(bt, entry, entryReachable)
	e.vars = after
	e.reachable = true
}

func (e *Evaluator) visitForIn(n *ast.Node) {
	collection := n.Child(1)
	collType := e.visitExpr(collection)
	elemType := types.Object()
	if collType.Dims > 0 {
		elemType = types.Type{Class: collType.Class, Dims: collType.Dims - 1}
	}
	declared := n.Child(0)
	loopVarType := elemType
	if dt := declared.Child(0); dt != nil && dt.Tag != ast.TagAuto {
		loopVarType = nodeToType(dt)
	}
	if id, ok := e.resolved[declared]; ok {
		e.vars[id] = loopVarType
	}

	bt, ct := e.pushLoopTargets()
	entry := e.pushBranch()
	entryReachable := e.reachable
	e.runLoopFixpoint(func() {
		if id, ok := e.resolved[declared]; ok {
			e.vars[id] = loopVarType
		}
		e.visitStmt(n.Child(2))
	})
	_ = ct
	e.popLoopTargets()
	after := e.closeLoop(bt, entry, entryReachable)
	e.vars = after
	e.reachable = true
}

// closeLoop merges the loop's entry state, the state at the end of the
// final fixpoint pass, and the break-target's incoming snapshots
// (gathered on every pass), producing the var state visible immediately
// after the loop.
func (e *Evaluator) closeLoop(bt *target, entry varState, entryReachable bool) varState {
	arms := []varState{entry, e.vars}
	reach := []bool{entryReachable, e.reachable}
	for _, snap := range bt.incoming {
		arms = append(arms, snap)
		reach = append(reach, true)
	}
	return mergeArms(arms, reach)
}

func (e *Evaluator) visitSwitch(n *ast.Node) {
	scrutinee := n.Child(0)
	st := e.visitExpr(scrutinee)
	if !e.isCheckingLoop && !st.IsIntegerLike() {
		e.report(scrutinee.Line, diagnostics.MsgSwitchScrutineeType)
	}

	bt := &target{}
	e.breakTargets = append(e.breakTargets, bt)

	before := e.pushBranch()
	beforeReachable := e.reachable
	hasDefault := false

	var armStates []varState
	var armReach []bool

	for c := n.Child(1); c != nil; c = c.Child(1) {
		item := c.Child(0)
		if item == nil {
			continue
		}
		e.vars = before.clone()
		e.reachable = beforeReachable
		var body *ast.Node
		if item.Tag == ast.TagDefault {
			hasDefault = true
			body = item.Child(0)
		} else {
			e.visitExpr(item.Child(0))
			body = item.Child(1)
		}
		e.visitStmtList(body)
		armStates = append(armStates, e.vars)
		armReach = append(armReach, e.reachable)
	}

	e.breakTargets = e.breakTargets[:len(e.breakTargets)-1]

	if !hasDefault {
		armStates = append(armStates, before)
		armReach = append(armReach, true)
	}
	for _, snap := range bt.incoming {
		armStates = append(armStates, snap)
		armReach = append(armReach, true)
	}

	e.vars = mergeArms(armStates, armReach)
	e.reachable = beforeReachable
}

func (e *Evaluator) visitBreakContinue(n *ast.Node, isBreak bool) {
	var targets []*target
	if isBreak {
		targets = e.breakTargets
	} else {
		targets = e.continueTargets
	}
	// Structural validation of the jump count and depth (must be a
	// positive Int literal, must target an open loop/switch) is the
	// CFG builder's responsibility (spec.md §4.4, §7 Structural); this
	// pass only needs the flow effect: the point after a break/continue
	// is unreachable, and the target (if resolvable) gathers the var
	// state reaching it.
	count := 1
	if arg := n.Child(0); arg != nil && arg.Tag == ast.TagIntLit {
		count = int(parseClampedInt(arg.Token))
	}
	if count <= 0 {
		count = 1
	}
	idx := len(targets) - count
	if idx >= 0 && idx < len(targets) && e.reachable {
		targets[idx].incoming = append(targets[idx].incoming, e.vars.clone())
	}
	e.reachable = false
}

func (e *Evaluator) visitReturn(n *ast.Node) {
	val := n.Child(0)
	if val != nil {
		t := e.visitExpr(val)
		if e.isVoid {
			e.report(n.Line, diagnostics.MsgReturnVoidValue)
		} else if !assignable(t, e.returnType) {
			e.report(n.Line, diagnostics.MsgReturnMismatch, e.returnType, t)
		}
	} else if !e.isVoid {
		e.report(n.Line, diagnostics.MsgReturnPresence, e.returnType)
	}
	e.reachable = false
}

// ---- expression visiting ----

func (e *Evaluator) visitBoolExpr(n *ast.Node) {
	t := e.visitExpr(n)
	if !e.isCheckingLoop && !t.IsBool() {
		e.report(lineOf(n), diagnostics.MsgOperandNotBool)
	}
}

func lineOf(n *ast.Node) int {
	if n == nil {
		return 0
	}
	return n.Line
}

func (e *Evaluator) visitExpr(n *ast.Node) types.Type {
	if n == nil {
		return types.Object()
	}
	switch n.Tag {
	case ast.TagIntLit:
		return e.setType(n, types.Int())
	case ast.TagLongLit:
		return e.setType(n, types.Long())
	case ast.TagFloatLit:
		return e.setType(n, types.Float())
	case ast.TagDoubleLit:
		return e.setType(n, types.Double())
	case ast.TagBoolLit:
		return e.setType(n, types.Bool())

	case ast.TagIdentifier:
		return e.visitVarUse(n)

	case ast.TagAdd, ast.TagSub, ast.TagMul, ast.TagDiv:
		l := e.visitExpr(n.Child(0))
		r := e.visitExpr(n.Child(1))
		if !e.isCheckingLoop && (!l.IsNumeric() || !r.IsNumeric()) {
			e.report(n.Line, diagnostics.MsgOperandNotNumber)
		}
		return e.setType(n, types.LeastCommonType(l, r))

	case ast.TagMod, ast.TagBitAnd, ast.TagBitOr, ast.TagBitXor:
		l := e.visitExpr(n.Child(0))
		r := e.visitExpr(n.Child(1))
		if !e.isCheckingLoop && (!l.IsIntegerLike() || !r.IsIntegerLike()) {
			e.report(n.Line, diagnostics.MsgOperandNotInteger)
		}
		return e.setType(n, types.LeastCommonType(l, r))

	case ast.TagShl, ast.TagShr:
		l := e.visitExpr(n.Child(0))
		r := e.visitExpr(n.Child(1))
		if !e.isCheckingLoop {
			if !l.IsIntegerLike() {
				e.report(n.Line, diagnostics.MsgOperandNotInteger)
			}
			if !(r.Equal(types.Byte()) || r.Equal(types.Int())) {
				e.report(n.Line, diagnostics.MsgShiftOperand)
			}
		}
		return e.setType(n, l)

	case ast.TagLt, ast.TagLe, ast.TagGt, ast.TagGe:
		l := e.visitExpr(n.Child(0))
		r := e.visitExpr(n.Child(1))
		if !e.isCheckingLoop && (!l.IsNumeric() || !r.IsNumeric()) {
			e.report(n.Line, diagnostics.MsgOperandNotNumber)
		}
		return e.setType(n, types.Bool())

	case ast.TagEq, ast.TagNe:
		e.visitExpr(n.Child(0))
		e.visitExpr(n.Child(1))
		return e.setType(n, types.Bool())

	case ast.TagAnd, ast.TagOr:
		e.visitBoolExpr(n.Child(0))
		before := e.pushBranch()
		e.visitBoolExpr(n.Child(1))
		e.vars = before
		return e.setType(n, types.Bool())

	case ast.TagNot:
		e.visitBoolExpr(n.Child(0))
		return e.setType(n, types.Bool())

	case ast.TagNeg:
		t := e.visitExpr(n.Child(0))
		if !e.isCheckingLoop && !t.IsNumeric() {
			e.report(n.Line, diagnostics.MsgOperandNotNumber)
		}
		return e.setType(n, t)

	case ast.TagInvert:
		t := e.visitExpr(n.Child(0))
		if !e.isCheckingLoop && !t.IsIntegerLike() {
			e.report(n.Line, diagnostics.MsgOperandNotInteger)
		}
		return e.setType(n, t)

	case ast.TagPreInc, ast.TagPreDec, ast.TagPostInc, ast.TagPostDec:
		t := e.lvalueType(n.Child(0))
		if !e.isCheckingLoop && !t.IsNumeric() {
			e.report(n.Line, diagnostics.MsgOperandNotNumber)
		}
		return e.setType(n, t)

	case ast.TagTernary:
		e.visitBoolExpr(n.Child(0))
		before := e.pushBranch()
		beforeReachable := e.reachable
		thenT := e.visitExpr(n.Child(1))
		thenState, thenReach := e.vars, e.reachable
		e.vars = before
		e.reachable = beforeReachable
		elseT := e.visitExpr(n.Child(2))
		elseState, elseReach := e.vars, e.reachable
		e.vars = mergeArms([]varState{thenState, elseState}, []bool{thenReach, elseReach})
		e.reachable = beforeReachable
		return e.setType(n, types.LeastCommonType(thenT, elseT))

	case ast.TagAssign:
		return e.visitAssign(n)

	case ast.TagAddAssign, ast.TagSubAssign, ast.TagMulAssign, ast.TagDivAssign,
		ast.TagModAssign, ast.TagAndAssign, ast.TagOrAssign, ast.TagXorAssign,
		ast.TagShlAssign, ast.TagShrAssign:
		return e.visitCompoundAssign(n)

	case ast.TagArrayGet:
		arr := e.visitExpr(n.Child(0))
		idx := e.visitExpr(n.Child(1))
		if !e.isCheckingLoop {
			if arr.Dims <= 0 {
				e.report(n.Line, diagnostics.MsgOperandNotArray)
			}
			if !idx.IsIntegerLike() || idx.Equal(types.Long()) {
				e.report(n.Line, diagnostics.MsgArrayIndexNotInt)
			}
		}
		elem := types.Object()
		if arr.Dims > 0 {
			elem = types.Type{Class: arr.Class, Dims: arr.Dims - 1}
		}
		return e.setType(n, elem)

	case ast.TagLength:
		arr := e.visitExpr(n.Child(0))
		if !e.isCheckingLoop && arr.Dims <= 0 {
			e.report(n.Line, diagnostics.MsgOperandNotArray)
		}
		return e.setType(n, types.Int())

	case ast.TagArrayLit:
		elem := types.Object()
		first := true
		for cur := n.Child(0); cur != nil; cur = cur.Child(1) {
			ch := cur.Child(0)
			if ch == nil {
				continue
			}
			t := e.visitExpr(ch)
			if first {
				elem = t
				first = false
			} else {
				elem = types.LeastCommonType(elem, t)
			}
		}
		return e.setType(n, types.Type{Class: elem.Class, Dims: elem.Dims + 1})

	case ast.TagCall:
		return e.visitCall(n)

	default:
		return e.setType(n, types.Object())
	}
}

func (e *Evaluator) visitVarUse(n *ast.Node) types.Type {
	id, ok := e.resolved[n]
	if !ok || id < 0 {
		if t, ok := e.fieldTypes[n.Token]; ok {
			return e.setType(n, t)
		}
		if t, ok := e.argTypes[n.Token]; ok {
			return e.setType(n, t)
		}
		return e.setType(n, types.Object())
	}
	t, initialized := e.vars[id]
	if !initialized {
		if e.reachable && !e.isCheckingLoop {
			e.sink.Report(diagnostics.DefiniteAssign, n.Line, diagnostics.MsgUsedBeforeInit, n.Token)
		}
		return e.setType(n, types.Object())
	}
	return e.setType(n, t)
}

func (e *Evaluator) lvalueType(n *ast.Node) types.Type {
	switch n.Tag {
	case ast.TagIdentifier:
		return e.visitVarUse(n)
	case ast.TagArrayGet:
		return e.visitExpr(n)
	default:
		// Invalid-LHS is a structural diagnostic owned by the CFG
		// builder; here we just need a placeholder type to keep
		// evaluating.
		return types.Object()
	}
}

func (e *Evaluator) visitAssign(n *ast.Node) types.Type {
	lhs := n.Child(0)
	rhs := n.Child(1)
	rt := e.visitExpr(rhs)

	switch lhs.Tag {
	case ast.TagIdentifier:
		id, ok := e.resolved[lhs]
		var lt types.Type
		if ok && id >= 0 {
			if dt, declared := e.declaredTypes[id]; declared {
				lt = dt
			} else {
				lt = rt
			}
		} else if t, ok := e.fieldTypes[lhs.Token]; ok {
			lt = t
		} else {
			lt = rt
		}
		if !e.isCheckingLoop && !assignable(rt, lt) {
			e.report(n.Line, diagnostics.MsgIncompatibleAssign, rt, lt)
		}
		if ok && id >= 0 && e.reachable {
			e.vars[id] = lt
		}
		e.setType(lhs, lt)
		return e.setType(n, lt)

	case ast.TagArrayGet:
		lt := e.visitExpr(lhs)
		if !e.isCheckingLoop && !assignable(rt, lt) {
			e.report(n.Line, diagnostics.MsgIncompatibleAssign, rt, lt)
		}
		return e.setType(n, lt)

	default:
		e.report(n.Line, diagnostics.MsgInvalidLHS)
		return e.setType(n, rt)
	}
}

func (e *Evaluator) visitCompoundAssign(n *ast.Node) types.Type {
	lhs := n.Child(0)
	lt := e.lvalueType(lhs)
	rt := e.visitExpr(n.Child(1))
	result := types.LeastCommonType(lt, rt)
	// A local declared with var takes the widened type; any other
	// left-hand side keeps its type and must accept the result.
	autoLocal := false
	if lhs.Tag == ast.TagIdentifier {
		if id, ok := e.resolved[lhs]; ok && id >= 0 {
			_, declared := e.declaredTypes[id]
			autoLocal = !declared
		}
	}
	if !e.isCheckingLoop {
		switch n.Tag {
		case ast.TagModAssign, ast.TagAndAssign, ast.TagOrAssign, ast.TagXorAssign:
			if !lt.IsIntegerLike() || !rt.IsIntegerLike() {
				e.report(n.Line, diagnostics.MsgOperandNotInteger)
			}
		case ast.TagShlAssign, ast.TagShrAssign:
			if !lt.IsIntegerLike() {
				e.report(n.Line, diagnostics.MsgOperandNotInteger)
			}
			result = lt
		default:
			if !lt.IsNumeric() || !rt.IsNumeric() {
				e.report(n.Line, diagnostics.MsgOperandNotNumber)
			}
		}
		if !autoLocal && !assignable(result, lt) {
			e.report(n.Line, diagnostics.MsgIncompatibleAssign, result, lt)
		}
	}
	if autoLocal {
		lt = result
	}
	if lhs.Tag == ast.TagIdentifier {
		if id, ok := e.resolved[lhs]; ok && id >= 0 && e.reachable {
			e.vars[id] = lt
		}
	}
	return e.setType(n, lt)
}

func (e *Evaluator) visitCall(n *ast.Node) types.Type {
	name := n.Child(0).Token
	var argTypes []types.Type
	for cur := n.Child(1); cur != nil; cur = cur.Child(1) {
		arg := cur.Child(0)
		if arg == nil {
			continue
		}
		argTypes = append(argTypes, e.visitExpr(arg))
	}
	sig, ok := e.methods[name]
	if !ok {
		if !e.isCheckingLoop {
			e.report(n.Line, diagnostics.MsgUndeclaredMethod, name)
		}
		return e.setType(n, types.Object())
	}
	if !e.isCheckingLoop {
		if len(argTypes) != len(sig.ArgTypes) {
			e.report(n.Line, diagnostics.MsgArgCount, name, len(sig.ArgTypes), len(argTypes))
		} else {
			for i, at := range argTypes {
				if !assignable(at, sig.ArgTypes[i]) {
					e.report(n.Line, diagnostics.MsgArgType, i+1, name, sig.ArgTypes[i], at)
				}
			}
		}
	}
	if sig.IsVoid {
		return e.setType(n, types.Object())
	}
	return e.setType(n, sig.ReturnType)
}

// assignable reports whether a value of type src may be assigned/passed
// to a destination of type dst: identical types, or src numeric
// promotable (not narrowing) to dst.
func assignable(src, dst types.Type) bool {
	if src.Equal(dst) {
		return true
	}
	if dst.IsObjectClass() && dst.Dims == 0 {
		return true
	}
	if src.IsNumeric() && dst.IsNumeric() {
		return promotionRank(src) <= promotionRank(dst)
	}
	return false
}

func promotionRank(t types.Type) int {
	switch t.Class {
	case "Byte":
		return 0
	case "Int":
		return 1
	case "Long":
		return 2
	case "Float":
		return 3
	case "Double":
		return 4
	default:
		return -1
	}
}

func nodeToType(n *ast.Node) types.Type {
	if n == nil {
		return types.Object()
	}
	switch n.Tag {
	case ast.TagType:
		return types.Type{Class: n.Token}
	case ast.TagTypeArray:
		inner := nodeToType(n.Child(0))
		return types.Type{Class: inner.Class, Dims: inner.Dims + 1}
	case ast.TagVoid:
		return types.Void()
	default:
		return types.Object()
	}
}

func parseClampedInt(tok string) int64 {
	var v int64
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if c < '0' || c > '9' {
			break
		}
		v = v*10 + int64(c-'0')
		if v > math.MaxInt32 {
			return math.MaxInt32
		}
	}
	return v
}
