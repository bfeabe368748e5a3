// Package cfgbuild implements the CFG builder (spec.md §4.4): it walks
// one method AST at a time and emits a linear list of three-address
// statements with labels, consulting the scope resolver, the type
// evaluator, and the break-flow analyzer, and emitting the structural
// diagnostics that are this pass's responsibility (invalid break/continue
// targets, switch-case duplicates and fallthrough).
//
// Grounded on the teacher's pkg/compiler/compiler.go Compiler
// (CompileRoute driving one compileX method per AST statement kind, a
// label/temp counter), generalized from bytecode emission to
// three-address statement emission with explicit jump labels, and on
// pkg/compiler/optimizer.go's "emit into a slice, then walk it" shape.
//
// Conditions jump only on the outcome that leaves the construct (to the
// else, exit, or loop-end label) and fall through into the body on the
// other; the ends of branches, loop bodies, and switch arms use explicit
// jumps, and a switch dispatches to every arm through its own label.
package cfgbuild

import (
	"fmt"
	"strconv"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/breakflow"
	"github.com/vexlang/vexc/internal/diagnostics"
	"github.com/vexlang/vexc/internal/ir"
	"github.com/vexlang/vexc/internal/scope"
	"github.com/vexlang/vexc/internal/types"
	"github.com/vexlang/vexc/internal/typeeval"
	"github.com/vexlang/vexc/internal/universe"
)

// Builder compiles one method AST into an *ir.Method at a time, sharing a
// diagnostics sink and the enclosing class's field/method tables across
// every method it compiles.
type Builder struct {
	sink          *diagnostics.Sink
	methods       map[string]typeeval.MethodSig
	fieldTypes    map[string]types.Type
	fieldOperands map[string]*ir.Operand

	method        *ir.Method
	resolved      map[*ast.Node]int
	nodeTypes     map[*ast.Node]types.Type
	localTypes    map[int]types.Type // final type per local id, from the type evaluator
	varOperands   map[int]*ir.Operand
	argOperands   map[string]*ir.Operand
	breakAnalyzer *breakflow.Analyzer

	tempCounter  int
	labelCounter int
	labelIDs     map[*ir.Label]int

	breakStack    []*ir.Label // loops and switches
	continueStack []*ir.Label // loops only

	// reachable is false once the current point in the method can
	// provably not be reached (mirrors typeeval's identically-named
	// field so the two passes agree on where control departs).
	reachable bool
}

// New creates a Builder for one class, sharing fieldTypes/fieldOperands
// and the class's method signature table (built-ins included) across
// every method compiled with it.
func New(sink *diagnostics.Sink, methods map[string]typeeval.MethodSig, fieldTypes map[string]types.Type, fieldOperands map[string]*ir.Operand) *Builder {
	return &Builder{sink: sink, methods: methods, fieldTypes: fieldTypes, fieldOperands: fieldOperands}
}

// BuildMethod runs the §4.4 driver sequence for one method: resolve
// scope, run the type evaluator, then walk the body emitting statements.
func (b *Builder) BuildMethod(identifier string, returnType types.Type, argNames []string, argTypes []types.Type, bodyAST *ast.Node, line int) *ir.Method {
	b.method = &ir.Method{
		Identifier: identifier,
		ReturnType: returnType,
		ArgTypes:   append([]types.Type(nil), argTypes...),
	}
	b.tempCounter = 0
	b.labelCounter = 0
	b.labelIDs = make(map[*ir.Label]int)
	b.breakStack = nil
	b.continueStack = nil
	b.reachable = true
	b.breakAnalyzer = breakflow.New()
	b.varOperands = make(map[int]*ir.Operand)
	b.argOperands = make(map[string]*ir.Operand, len(argNames))

	for i, name := range argNames {
		op := ir.NewVariable(argTypes[i].Reduce(), name, false)
		b.method.Args = append(b.method.Args, op)
		b.argOperands[name] = op
	}

	fieldIdentifiers := make(map[string]bool, len(b.fieldTypes))
	for f := range b.fieldTypes {
		fieldIdentifiers[f] = true
	}
	b.resolved = scope.Resolve(bodyAST, argNames, fieldIdentifiers, b.sink)

	argTypesByName := make(map[string]types.Type, len(argNames))
	for i, name := range argNames {
		argTypesByName[name] = argTypes[i]
	}
	ev := typeeval.New(b.sink, b.resolved, b.fieldTypes, argTypesByName, b.methods, returnType, returnType.IsVoid())
	ev.EvalBody(bodyAST)
	b.nodeTypes = ev.NodeTypes()

	b.localTypes = make(map[int]types.Type)
	for _, id := range b.resolved {
		if id < 0 {
			continue
		}
		if t, ok := ev.VarTypeAt(id); ok {
			b.localTypes[id] = t
		}
	}

	if !returnType.IsVoid() {
		b.method.ReturnOp = ir.NewVariable(returnType.Reduce(), "", false)
	}
	b.method.ReturnLabel = b.newLabel()

	b.compileStmt(bodyAST)

	if !returnType.IsVoid() && b.reachable {
		b.sink.Report(diagnostics.DefiniteAssign, line, diagnostics.MsgMissingReturn)
	}

	b.emitLabel(b.method.ReturnLabel)
	b.checkLabelInvariant()
	return b.method
}

// checkLabelInvariant enforces spec.md §4's IR invariant that every label
// mentioned in a jump's auxiliary list refers to a statement in the same
// method's statement vector. Violating it means a compiler bug, not a
// user-visible diagnostic, so it panics rather than reporting through the
// sink (spec.md §7's "Fatal (internal)" error kind).
//
// Uses internal/universe so the defined/referenced membership check runs
// over a dense bit-set keyed by this method's own label counter instead
// of a pair of throwaway maps.
func (b *Builder) checkLabelInvariant() {
	defined := universe.New(b.labelCounter + 1)
	referenced := universe.New(b.labelCounter + 1)
	for _, stmt := range b.method.Statements {
		if stmt.Label != nil {
			defined.Add(b.labelIDs[stmt.Label])
		}
		for _, t := range stmt.Targets {
			if t.Label != nil {
				referenced.Add(b.labelIDs[t.Label])
			}
		}
	}
	missing := referenced.Difference(defined)
	if missing.Len() > 0 {
		panic(fmt.Sprintf("cfgbuild: method %q jumps to %d label(s) with no defining statement", b.method.Identifier, missing.Len()))
	}
}

// ---- low-level emission helpers ----

func (b *Builder) newLabel() *ir.Label {
	b.labelCounter++
	lbl := ir.NewLabel(labelName(b.labelCounter))
	b.labelIDs[lbl] = b.labelCounter
	return lbl
}

func labelName(n int) string {
	if n == 0 {
		return "L0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return "L" + string(digits)
}

func (b *Builder) newTemp(t types.Reduced) *ir.Operand {
	b.tempCounter++
	return ir.NewTemp(t, b.tempCounter)
}

func (b *Builder) emit(s *ir.Statement) {
	b.method.Statements = append(b.method.Statements, s)
}

// emitLabel appends a No-op statement carrying lbl, used as a jump
// target placeholder.
func (b *Builder) emitLabel(lbl *ir.Label) {
	b.emit(&ir.Statement{Op: ir.OpNoop, Label: lbl})
}

func (b *Builder) emitJump(lbl *ir.Label) {
	b.emit(&ir.Statement{Op: ir.OpJump, Targets: []ir.JumpTarget{{IsDefault: true, Label: lbl}}})
}

// emitCondJump emits a conditional branch on op. Either label may be nil,
// meaning "fall through to the next statement" for that outcome.
func (b *Builder) emitCondJump(op *ir.Operand, trueLabel, falseLabel *ir.Label) {
	var targets []ir.JumpTarget
	if trueLabel != nil {
		targets = append(targets, ir.JumpTarget{Label: trueLabel})
	}
	if falseLabel != nil {
		targets = append(targets, ir.JumpTarget{IsDefault: true, Label: falseLabel})
	}
	if len(targets) == 0 {
		return
	}
	b.emit(&ir.Statement{Op: ir.OpIf, Arg1: op, Targets: targets})
}

func (b *Builder) pushLoop(breakLabel, continueLabel *ir.Label) {
	b.breakStack = append(b.breakStack, breakLabel)
	if continueLabel != nil {
		b.continueStack = append(b.continueStack, continueLabel)
	}
}

func (b *Builder) popLoop(continueLabel *ir.Label) {
	b.breakStack = b.breakStack[:len(b.breakStack)-1]
	if continueLabel != nil {
		b.continueStack = b.continueStack[:len(b.continueStack)-1]
	}
}

// ---- operand lookup ----

func (b *Builder) nodeType(n *ast.Node) types.Type {
	if t, ok := b.nodeTypes[n]; ok {
		return t
	}
	return types.Object()
}

func (b *Builder) reduceOf(n *ast.Node) types.Reduced { return b.nodeType(n).Reduce() }

func (b *Builder) localOperand(id int, name string) *ir.Operand {
	if op, ok := b.varOperands[id]; ok {
		return op
	}
	t := types.RObject
	if lt, ok := b.localTypes[id]; ok {
		t = lt.Reduce()
	}
	op := ir.NewVariable(t, name, false)
	b.varOperands[id] = op
	return op
}

// identOperand resolves an identifier-leaf node to the Operand it reads
// or writes: a local variable, a method argument, or a class field.
func (b *Builder) identOperand(n *ast.Node) *ir.Operand {
	if id, ok := b.resolved[n]; ok && id >= 0 {
		return b.localOperand(id, n.Token)
	}
	if op, ok := b.argOperands[n.Token]; ok {
		return op
	}
	if op, ok := b.fieldOperands[n.Token]; ok {
		return op
	}
	// Undeclared identifier: the scope resolver already reported this.
	return b.newTemp(types.RObject)
}

func oneLiteral(r types.Reduced) *ir.Operand {
	switch r {
	case types.RLong:
		return ir.LongLiteral(1)
	case types.RFloat:
		return ir.FloatLiteral(1)
	case types.RDouble:
		return ir.DoubleLiteral(1)
	default:
		return ir.IntLiteral(1)
	}
}

// ---- lvalues ----

// lvalueSlot captures an identifier or array-element lvalue so reads and
// writes to it can share one evaluation of the array/index subexpressions
// (needed by compound assignment and increment/decrement, which both read
// and then write the same slot).
type lvalueSlot struct {
	isArray bool
	ident   *ir.Operand
	arr     *ir.Operand
	idx     *ir.Operand
	elem    types.Reduced
}

func (b *Builder) resolveLValue(n *ast.Node) lvalueSlot {
	if n.Tag == ast.TagArrayGet {
		return lvalueSlot{
			isArray: true,
			arr:     b.compileExpr(n.Child(0)),
			idx:     b.compileExpr(n.Child(1)),
			elem:    b.reduceOf(n),
		}
	}
	return lvalueSlot{ident: b.identOperand(n)}
}

func (s lvalueSlot) read(b *Builder) *ir.Operand {
	if !s.isArray {
		return s.ident
	}
	dest := b.newTemp(s.elem)
	b.emit(&ir.Statement{Op: ir.OpArrayGet, Arg1: s.arr, Arg2: s.idx, Dest: dest})
	return dest
}

// write stores val into the slot. For an array element, Arg1/Arg2 carry
// the array and index and Dest carries the value being stored (OpArraySet
// has no destination of its own).
func (s lvalueSlot) write(b *Builder, val *ir.Operand) {
	if s.isArray {
		b.emit(&ir.Statement{Op: ir.OpArraySet, Arg1: s.arr, Arg2: s.idx, Dest: val})
		return
	}
	b.emit(&ir.Statement{Op: ir.OpAssign, Arg1: val, Dest: s.ident})
}

// ---- statements ----

func (b *Builder) compileStmtList(n *ast.Node) {
	for cur := n; cur != nil; cur = cur.Child(1) {
		head := cur.Child(0)
		if head == nil {
			continue
		}
		b.compileStmt(head)
	}
}

func (b *Builder) compileStmt(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Tag {
	case ast.TagBlock:
		b.compileStmtList(n.Child(0))
	case ast.TagExprStmt:
		b.compileExpr(n.Child(0))
	case ast.TagVarDeclaration:
		b.compileVarDecl(n)
	case ast.TagVarDeclarationList:
		// More than four declarators nest further TagVarDeclarationList
		// nodes in the fourth slot, so dispatch back through compileStmt
		// rather than assuming every child is a bare TagVarDeclaration.
		for _, ch := range n.Children {
			if ch != nil {
				b.compileStmt(ch)
			}
		}
	case ast.TagIf:
		b.compileIf(n)
	case ast.TagIfElse:
		b.compileIfElse(n)
	case ast.TagWhile:
		b.compileWhile(n)
	case ast.TagDoWhile:
		b.compileDoWhile(n)
	case ast.TagFor:
		b.compileFor(n)
	case ast.TagForIn:
		b.compileForIn(n)
	case ast.TagSwitch:
		b.compileSwitch(n)
	case ast.TagBreak:
		b.compileBreakContinue(n, true)
	case ast.TagContinue:
		b.compileBreakContinue(n, false)
	case ast.TagReturn:
		b.compileReturn(n)
	case ast.TagEmpty:
		// no-op
	default:
		b.compileExpr(n)
	}
}

func (b *Builder) compileVarDecl(n *ast.Node) {
	id, ok := b.resolved[n]
	if !ok {
		return
	}
	op := b.localOperand(id, n.Token)
	if init := n.Child(2); init != nil {
		val := b.compileExpr(init)
		b.emit(&ir.Statement{Op: ir.OpAssign, Arg1: val, Dest: op})
	}
}

func (b *Builder) compileIf(n *ast.Node) {
	endLabel := b.newLabel()
	b.compileBranch(n.Child(0), nil, endLabel)
	b.compileStmt(n.Child(1))
	b.emitLabel(endLabel)
	// An if without an else can always fall through from the untaken
	// branch, so the point after it is reachable regardless of whether
	// the then-branch departs.
	b.reachable = true
}

func (b *Builder) compileIfElse(n *ast.Node) {
	elseLabel := b.newLabel()
	endLabel := b.newLabel()
	b.compileBranch(n.Child(0), nil, elseLabel)
	b.compileStmt(n.Child(1))
	thenReachable := b.reachable
	b.emitJump(endLabel)
	b.emitLabel(elseLabel)
	b.reachable = true
	b.compileStmt(n.Child(2))
	elseReachable := b.reachable
	b.emitLabel(endLabel)
	b.reachable = thenReachable || elseReachable
}

// compileBranch lowers a boolean-valued subtree as a jump: And/Or get
// short-circuit treatment (the right operand is only evaluated when it
// can affect the outcome); everything else is evaluated as a plain value
// and tested once. Either label may be nil, meaning "fall through" for
// that outcome.
func (b *Builder) compileBranch(n *ast.Node, trueLabel, falseLabel *ir.Label) {
	switch n.Tag {
	case ast.TagAnd:
		if falseLabel == nil {
			synth := b.newLabel()
			b.compileBranch(n.Child(0), nil, synth)
			b.compileBranch(n.Child(1), trueLabel, synth)
			b.emitLabel(synth)
			return
		}
		b.compileBranch(n.Child(0), nil, falseLabel)
		b.compileBranch(n.Child(1), trueLabel, falseLabel)
	case ast.TagOr:
		if trueLabel == nil {
			synth := b.newLabel()
			b.compileBranch(n.Child(0), synth, nil)
			b.compileBranch(n.Child(1), synth, falseLabel)
			b.emitLabel(synth)
			return
		}
		b.compileBranch(n.Child(0), trueLabel, nil)
		b.compileBranch(n.Child(1), trueLabel, falseLabel)
	default:
		op := b.compileExpr(n)
		b.emitCondJump(op, trueLabel, falseLabel)
	}
}

// compileBoolValue materializes a condition's boolean result into a
// temporary, for use where And/Or/Not appear as ordinary expression
// values rather than as a statement's controlling condition.
func (b *Builder) compileBoolValue(n *ast.Node) *ir.Operand {
	dest := b.newTemp(types.RBool)
	trueLbl, falseLbl, endLbl := b.newLabel(), b.newLabel(), b.newLabel()
	b.compileBranch(n, trueLbl, falseLbl)
	b.emitLabel(trueLbl)
	b.emit(&ir.Statement{Op: ir.OpAssign, Arg1: ir.BoolLiteral(true), Dest: dest})
	b.emitJump(endLbl)
	b.emitLabel(falseLbl)
	b.emit(&ir.Statement{Op: ir.OpAssign, Arg1: ir.BoolLiteral(false), Dest: dest})
	b.emitLabel(endLbl)
	return dest
}

func (b *Builder) compileWhile(n *ast.Node) {
	startLabel, endLabel := b.newLabel(), b.newLabel()
	b.emitLabel(startLabel)
	b.compileBranch(n.Child(0), nil, endLabel)
	b.pushLoop(endLabel, startLabel)
	b.compileStmt(n.Child(1))
	b.popLoop(startLabel)
	b.emitJump(startLabel)
	b.emitLabel(endLabel)
	b.reachable = true
}

func (b *Builder) compileDoWhile(n *ast.Node) {
	startLabel, continueLabel, endLabel := b.newLabel(), b.newLabel(), b.newLabel()
	b.emitLabel(startLabel)
	b.pushLoop(endLabel, continueLabel)
	b.compileStmt(n.Child(0))
	b.popLoop(continueLabel)
	b.emitLabel(continueLabel)
	b.compileBranch(n.Child(1), startLabel, nil)
	b.emitLabel(endLabel)
	b.reachable = true
}

func (b *Builder) compileFor(n *ast.Node) {
	// Child(0) init, Child(1) condition (optional), Child(2) step
	// (optional), Child(3) body.
	b.compileStmt(n.Child(0))
	startLabel, continueLabel, endLabel := b.newLabel(), b.newLabel(), b.newLabel()
	b.emitLabel(startLabel)
	if cond := n.Child(1); cond != nil {
		b.compileBranch(cond, nil, endLabel)
	}
	b.pushLoop(endLabel, continueLabel)
	b.compileStmt(n.Child(3))
	b.popLoop(continueLabel)
	b.emitLabel(continueLabel)
	if step := n.Child(2); step != nil {
		b.compileExpr(step)
	}
	b.emitJump(startLabel)
	b.emitLabel(endLabel)
	b.reachable = true
}

func (b *Builder) compileForIn(n *ast.Node) {
	declared := n.Child(0)
	collOp := b.compileExpr(n.Child(1))

	idxOp := b.newTemp(types.RInt)
	b.emit(&ir.Statement{Op: ir.OpAssign, Arg1: ir.IntLiteral(0), Dest: idxOp})
	lenOp := b.newTemp(types.RInt)
	b.emit(&ir.Statement{Op: ir.OpArrayLength, Arg1: collOp, Dest: lenOp})

	startLabel, continueLabel, endLabel := b.newLabel(), b.newLabel(), b.newLabel()
	b.emitLabel(startLabel)
	condOp := b.newTemp(types.RBool)
	b.emit(&ir.Statement{Op: ir.OpLt, Arg1: idxOp, Arg2: lenOp, Dest: condOp})
	b.emitCondJump(condOp, nil, endLabel)

	loopVarOp := b.identOperand(declared)
	b.emit(&ir.Statement{Op: ir.OpArrayGet, Arg1: collOp, Arg2: idxOp, Dest: loopVarOp})

	b.pushLoop(endLabel, continueLabel)
	b.compileStmt(n.Child(2))
	b.popLoop(continueLabel)

	b.emitLabel(continueLabel)
	b.emit(&ir.Statement{Op: ir.OpAdd, Arg1: idxOp, Arg2: ir.IntLiteral(1), Dest: idxOp})
	b.emitJump(startLabel)
	b.emitLabel(endLabel)
	b.reachable = true
}

// compileSwitch lowers a switch into a computed OpSwitch jump followed by
// each case's body, each ending in an explicit jump to the end label
// (so a case that is not actually last in source order, but whose body
// always departs on its own, produces no extra dead fallthrough edge —
// the extra jump after an already-departing body is simply unreachable).
// Falling off the end of a non-last case without departing is flagged as
// MsgFallthrough: the language requires every case but the last to
// explicitly break/return/continue.
func (b *Builder) compileSwitch(n *ast.Node) {
	scrutinee := n.Child(0)
	scrut := b.compileExpr(scrutinee)

	endLabel := b.newLabel()
	b.pushLoop(endLabel, nil)

	type arm struct {
		label *ir.Label
		body  *ast.Node
	}
	var arms []arm
	var targets []ir.JumpTarget
	var defaultLabel *ir.Label
	hasDefault := false
	seen := map[int32]bool{}

	for c := n.Child(1); c != nil; c = c.Child(1) {
		item := c.Child(0)
		if item == nil {
			continue
		}
		lbl := b.newLabel()
		if item.Tag == ast.TagDefault {
			if hasDefault {
				b.sink.Report(diagnostics.Structural, item.Line, diagnostics.MsgDuplicateDefault)
			}
			hasDefault = true
			defaultLabel = lbl
			arms = append(arms, arm{label: lbl, body: item.Child(0)})
			continue
		}
		valNode := item.Child(0)
		v := int32(parseClampedInt64(valNode.Token))
		if seen[v] {
			b.sink.Report(diagnostics.Structural, item.Line, diagnostics.MsgDuplicateCase, v)
		}
		seen[v] = true
		targets = append(targets, ir.JumpTarget{IntValue: v, Label: lbl})
		arms = append(arms, arm{label: lbl, body: item.Child(1)})
	}
	if defaultLabel == nil {
		defaultLabel = endLabel
	}
	targets = append(targets, ir.JumpTarget{IsDefault: true, Label: defaultLabel})
	b.emit(&ir.Statement{Op: ir.OpSwitch, Arg1: scrut, Targets: targets})

	var armReach []bool
	for i, a := range arms {
		b.emitLabel(a.label)
		b.reachable = true
		wrapper := ast.NewNode(ast.TagBlock, 0, "", a.body)
		if i != len(arms)-1 && !b.breakAnalyzer.AlwaysBreaks(wrapper, 0) {
			b.sink.Report(diagnostics.Structural, lineOf(a.body), diagnostics.MsgFallthrough)
		}
		b.compileStmtList(a.body)
		armReach = append(armReach, b.reachable)
		b.emitJump(endLabel)
	}

	b.popLoop(nil)
	b.emitLabel(endLabel)

	anyReach := !hasDefault // falling through the switch entirely is itself a reachable path
	for _, r := range armReach {
		if r {
			anyReach = true
		}
	}
	b.reachable = anyReach
}

func lineOf(n *ast.Node) int {
	if n == nil {
		return 0
	}
	return n.Line
}

func (b *Builder) compileBreakContinue(n *ast.Node, isBreak bool) {
	count := int32(1)
	if arg := n.Child(0); arg != nil {
		if arg.Tag != ast.TagIntLit {
			b.sink.Report(diagnostics.Structural, n.Line, diagnostics.MsgBreakCountNotIntLit)
		} else {
			count = int32(parseClampedInt64(arg.Token))
			if count <= 0 {
				b.sink.Report(diagnostics.Structural, n.Line, diagnostics.MsgBreakCountPositive)
				count = 1
			}
		}
	}

	stack := b.continueStack
	if isBreak {
		stack = b.breakStack
	}
	idx := len(stack) - int(count)
	if idx < 0 || idx >= len(stack) {
		b.sink.Report(diagnostics.Structural, n.Line, diagnostics.MsgBreakOutsideLoop)
	} else if b.reachable {
		b.emitJump(stack[idx])
	}
	b.reachable = false
}

func (b *Builder) compileReturn(n *ast.Node) {
	if val := n.Child(0); val != nil {
		op := b.compileExpr(val)
		if b.reachable && b.method.ReturnOp != nil {
			b.emit(&ir.Statement{Op: ir.OpAssign, Arg1: op, Dest: b.method.ReturnOp})
		}
	}
	if b.reachable {
		b.emitJump(b.method.ReturnLabel)
	}
	b.reachable = false
}

// ---- expressions ----

var arithOp = map[ast.Tag]ir.Op{
	ast.TagAdd: ir.OpAdd, ast.TagSub: ir.OpSub, ast.TagMul: ir.OpMul, ast.TagDiv: ir.OpDiv,
	ast.TagMod: ir.OpMod, ast.TagBitAnd: ir.OpBitAnd, ast.TagBitOr: ir.OpBitOr, ast.TagBitXor: ir.OpBitXor,
	ast.TagShl: ir.OpShl, ast.TagShr: ir.OpShr,
	ast.TagLt: ir.OpLt, ast.TagLe: ir.OpLe, ast.TagGt: ir.OpGt, ast.TagGe: ir.OpGe,
	ast.TagEq: ir.OpEq, ast.TagNe: ir.OpNe,
}

var compoundOp = map[ast.Tag]ir.Op{
	ast.TagAddAssign: ir.OpAdd, ast.TagSubAssign: ir.OpSub, ast.TagMulAssign: ir.OpMul, ast.TagDivAssign: ir.OpDiv,
	ast.TagModAssign: ir.OpMod, ast.TagAndAssign: ir.OpBitAnd, ast.TagOrAssign: ir.OpBitOr, ast.TagXorAssign: ir.OpBitXor,
	ast.TagShlAssign: ir.OpShl, ast.TagShrAssign: ir.OpShr,
}

func (b *Builder) compileExpr(n *ast.Node) *ir.Operand {
	if n == nil {
		return b.newTemp(types.RObject)
	}
	switch n.Tag {
	case ast.TagIntLit:
		return ir.IntLiteral(int32(parseClampedInt64(n.Token)))
	case ast.TagLongLit:
		v, _ := strconv.ParseInt(n.Token, 10, 64)
		return ir.LongLiteral(v)
	case ast.TagFloatLit:
		v, _ := strconv.ParseFloat(n.Token, 32)
		return ir.FloatLiteral(float32(v))
	case ast.TagDoubleLit:
		v, _ := strconv.ParseFloat(n.Token, 64)
		return ir.DoubleLiteral(v)
	case ast.TagBoolLit:
		return ir.BoolLiteral(n.Token == "true")

	case ast.TagIdentifier:
		return b.identOperand(n)

	case ast.TagAnd, ast.TagOr:
		return b.compileBoolValue(n)

	case ast.TagNot:
		op := b.compileExpr(n.Child(0))
		dest := b.newTemp(types.RBool)
		b.emit(&ir.Statement{Op: ir.OpNot, Arg1: op, Dest: dest})
		return dest

	case ast.TagNeg:
		op := b.compileExpr(n.Child(0))
		dest := b.newTemp(b.reduceOf(n))
		b.emit(&ir.Statement{Op: ir.OpNeg, Arg1: op, Dest: dest})
		return dest

	case ast.TagInvert:
		op := b.compileExpr(n.Child(0))
		dest := b.newTemp(b.reduceOf(n))
		b.emit(&ir.Statement{Op: ir.OpInvert, Arg1: op, Dest: dest})
		return dest

	case ast.TagPreInc, ast.TagPreDec, ast.TagPostInc, ast.TagPostDec:
		return b.compileIncDec(n)

	case ast.TagTernary:
		return b.compileTernary(n)

	case ast.TagAssign:
		return b.compileAssign(n)

	case ast.TagAddAssign, ast.TagSubAssign, ast.TagMulAssign, ast.TagDivAssign,
		ast.TagModAssign, ast.TagAndAssign, ast.TagOrAssign, ast.TagXorAssign,
		ast.TagShlAssign, ast.TagShrAssign:
		return b.compileCompoundAssign(n)

	case ast.TagArrayGet:
		arr := b.compileExpr(n.Child(0))
		idx := b.compileExpr(n.Child(1))
		dest := b.newTemp(b.reduceOf(n))
		b.emit(&ir.Statement{Op: ir.OpArrayGet, Arg1: arr, Arg2: idx, Dest: dest})
		return dest

	case ast.TagLength:
		arr := b.compileExpr(n.Child(0))
		dest := b.newTemp(types.RInt)
		b.emit(&ir.Statement{Op: ir.OpArrayLength, Arg1: arr, Dest: dest})
		return dest

	case ast.TagArrayLit:
		count := int32(0)
		for cur := n.Child(0); cur != nil; cur = cur.Child(1) {
			if cur.Child(0) != nil {
				count++
			}
		}
		dest := b.newTemp(b.reduceOf(n))
		b.emit(&ir.Statement{Op: ir.OpArrayNew, Arg1: ir.IntLiteral(count), Dest: dest})
		i := int32(0)
		for cur := n.Child(0); cur != nil; cur = cur.Child(1) {
			ch := cur.Child(0)
			if ch == nil {
				continue
			}
			val := b.compileExpr(ch)
			b.emit(&ir.Statement{Op: ir.OpArraySet, Arg1: dest, Arg2: ir.IntLiteral(i), Dest: val})
			i++
		}
		return dest

	case ast.TagNew:
		size := b.compileExpr(n.Child(1))
		dest := b.newTemp(b.reduceOf(n))
		b.emit(&ir.Statement{Op: ir.OpArrayNew, Arg1: size, Dest: dest})
		return dest

	case ast.TagCall:
		return b.compileCall(n)

	default:
		if op, ok := arithOp[n.Tag]; ok {
			l := b.compileExpr(n.Child(0))
			r := b.compileExpr(n.Child(1))
			dest := b.newTemp(b.reduceOf(n))
			b.emit(&ir.Statement{Op: op, Arg1: l, Arg2: r, Dest: dest})
			return dest
		}
		return b.newTemp(types.RObject)
	}
}

func (b *Builder) compileIncDec(n *ast.Node) *ir.Operand {
	slot := b.resolveLValue(n.Child(0))
	cur := slot.read(b)
	one := oneLiteral(b.reduceOf(n))
	isInc := n.Tag == ast.TagPreInc || n.Tag == ast.TagPostInc
	op := ir.OpSub
	if isInc {
		op = ir.OpAdd
	}
	newVal := b.newTemp(b.reduceOf(n))
	b.emit(&ir.Statement{Op: op, Arg1: cur, Arg2: one, Dest: newVal})
	slot.write(b, newVal)
	if n.Tag == ast.TagPreInc || n.Tag == ast.TagPreDec {
		return newVal
	}
	return cur
}

func (b *Builder) compileTernary(n *ast.Node) *ir.Operand {
	dest := b.newTemp(b.reduceOf(n))
	elseLabel, endLabel := b.newLabel(), b.newLabel()
	b.compileBranch(n.Child(0), nil, elseLabel)
	thenVal := b.compileExpr(n.Child(1))
	b.emit(&ir.Statement{Op: ir.OpAssign, Arg1: thenVal, Dest: dest})
	b.emitJump(endLabel)
	b.emitLabel(elseLabel)
	elseVal := b.compileExpr(n.Child(2))
	b.emit(&ir.Statement{Op: ir.OpAssign, Arg1: elseVal, Dest: dest})
	b.emitLabel(endLabel)
	return dest
}

func (b *Builder) compileAssign(n *ast.Node) *ir.Operand {
	slot := b.resolveLValue(n.Child(0))
	val := b.compileExpr(n.Child(1))
	slot.write(b, val)
	return val
}

func (b *Builder) compileCompoundAssign(n *ast.Node) *ir.Operand {
	slot := b.resolveLValue(n.Child(0))
	cur := slot.read(b)
	rhs := b.compileExpr(n.Child(1))
	dest := b.newTemp(b.reduceOf(n))
	b.emit(&ir.Statement{Op: compoundOp[n.Tag], Arg1: cur, Arg2: rhs, Dest: dest})
	slot.write(b, dest)
	return dest
}

func (b *Builder) compileCall(n *ast.Node) *ir.Operand {
	name := n.Child(0).Token
	var args []*ir.Operand
	for cur := n.Child(1); cur != nil; cur = cur.Child(1) {
		arg := cur.Child(0)
		if arg == nil {
			continue
		}
		args = append(args, b.compileExpr(arg))
	}
	sig, ok := b.methods[name]
	var dest *ir.Operand
	if ok && !sig.IsVoid {
		dest = b.newTemp(sig.ReturnType.Reduce())
	}
	b.emit(&ir.Statement{Op: ir.OpCall, Call: &ir.CallAux{Method: name, Args: args}, Dest: dest})
	if dest == nil {
		// Void result used in an expression position; the type evaluator
		// already rejects this program, so the value is never read.
		return b.newTemp(types.RObject)
	}
	return dest
}

// parseClampedInt64 reads the integer spelled in a literal token,
// saturating at int32 bounds on overflow rather than erroring.
func parseClampedInt64(tok string) int64 {
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		if v > 0 {
			return 1<<31 - 1
		}
		return -(1 << 31)
	}
	if v > 1<<31-1 {
		return 1<<31 - 1
	}
	if v < -(1 << 31) {
		return -(1 << 31)
	}
	return v
}
