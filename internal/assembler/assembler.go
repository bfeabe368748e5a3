// Package assembler implements the class assembler (spec.md §4.5): given
// one class-definition AST, it registers fields and method signatures
// ahead of any method body compilation (so forward references and
// recursion both resolve), then drives the CFG builder once per method
// and assembles the results into one *ir.Class.
//
// Grounded on the teacher's pkg/compiler/compiler.go top-level
// Compile/CompileRoute dispatch loop, which likewise walks a class's
// declarations once to register names before compiling bodies.
package assembler

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/cfgbuild"
	"github.com/vexlang/vexc/internal/diagnostics"
	"github.com/vexlang/vexc/internal/ir"
	"github.com/vexlang/vexc/internal/typeeval"
	"github.com/vexlang/vexc/internal/types"
)

// builtins lists the print/println intrinsics every class body may call,
// supplementing the declared-method table (spec.md's original feature
// set never specified I/O, but a class-based language without any way
// to observe a computed result is untestable end-to-end; grounded on how
// the teacher's pkg/interpreter/executor.go special-cases its own
// built-in functions ahead of user-defined ones).
var builtins = map[string]typeeval.MethodSig{
	"print":   {IsVoid: true, ArgTypes: []types.Type{types.Object()}},
	"println": {IsVoid: true, ArgTypes: []types.Type{types.Object()}},
}

// Assembler assembles one compiled class from its AST.
type Assembler struct {
	sink *diagnostics.Sink
}

// New creates an Assembler reporting into sink.
func New(sink *diagnostics.Sink) *Assembler {
	return &Assembler{sink: sink}
}

// AssembleClass compiles every field and method of a TagClassDefinition
// node into an *ir.Class. Per spec.md §7, the caller should discard the
// result (never emit or archive it) if sink.HasErrors() afterward.
func (as *Assembler) AssembleClass(root *ast.Node) *ir.Class {
	class := ir.NewClass(root.Token)

	fieldTypes := make(map[string]types.Type)
	fieldOperands := make(map[string]*ir.Operand)
	var fieldDecls []*ast.Node
	var methods []compiledMethod

	for item := root.Child(1); item != nil; item = item.Child(1) {
		decl := item.Child(0)
		if decl == nil {
			continue
		}
		switch decl.Tag {
		case ast.TagFieldDeclaration:
			fieldDecls = append(fieldDecls, decl)
		case ast.TagMethodDefinition:
			argNames, argTypes := as.argNamesAndTypes(decl.Child(1))
			methods = append(methods, compiledMethod{
				node:       decl,
				returnType: nodeToType(decl.Child(0)),
				argNames:   argNames,
				argTypes:   argTypes,
			})
		}
	}

	// Method signatures are registered before any body is compiled or any
	// field initializer is lowered, so forward references, recursion, and
	// field initializers that call a method all resolve.
	methodSigs := make(map[string]typeeval.MethodSig, len(methods)+len(builtins))
	for name, sig := range builtins {
		methodSigs[name] = sig
	}
	for _, m := range methods {
		name := m.node.Token
		if _, exists := methodSigs[name]; exists {
			as.sink.Report(diagnostics.Structural, m.node.Line, diagnostics.MsgDuplicateMethod, name)
			continue
		}
		methodSigs[name] = typeeval.MethodSig{ReturnType: m.returnType, ArgTypes: m.argTypes, IsVoid: m.returnType.IsVoid()}
	}

	for _, decl := range fieldDecls {
		as.registerField(decl, class, fieldTypes, fieldOperands, methodSigs)
	}

	builder := cfgbuild.New(as.sink, methodSigs, fieldTypes, fieldOperands)
	for _, m := range methods {
		body := m.node.Child(2)
		compiled := builder.BuildMethod(m.node.Token, m.returnType, m.argNames, m.argTypes, body, m.node.Line)
		class.AddMethod(compiled) // false means already reported above; first definition wins
	}

	return class
}

type compiledMethod struct {
	node       *ast.Node
	returnType types.Type
	argNames   []string
	argTypes   []types.Type
}

func (as *Assembler) registerField(decl *ast.Node, class *ir.Class, fieldTypes map[string]types.Type, fieldOperands map[string]*ir.Operand, methodSigs map[string]typeeval.MethodSig) {
	name := decl.Token
	t := nodeToType(decl.Child(0))
	op := ir.NewVariable(t.Reduce(), name, true)
	if !class.AddField(name, op, t) {
		as.sink.Report(diagnostics.Structural, decl.Line, diagnostics.MsgDuplicateField, name)
		return
	}
	fieldTypes[name] = t
	fieldOperands[name] = op

	if init := decl.Child(2); init != nil {
		class.InitStatements = append(class.InitStatements, as.compileFieldInit(op, t, init, fieldTypes, fieldOperands, methodSigs))
	}
}

// compileFieldInit lowers a field initializer using a throwaway CFG
// builder scoped to no locals/arguments but the fields declared so far
// and every method signature (spec.md §4.5: initializers run before any
// constructor body, in declaration order, and may reference any field
// already declared or call a method).
func (as *Assembler) compileFieldInit(dest *ir.Operand, t types.Type, init *ast.Node, fieldTypes map[string]types.Type, fieldOperands map[string]*ir.Operand, methodSigs map[string]typeeval.MethodSig) *ir.Statement {
	b := cfgbuild.New(as.sink, methodSigs, fieldTypes, fieldOperands)
	returnNode := ast.NewNode(ast.TagReturn, init.Line, "", init)
	body := ast.NewNode(ast.TagBlock, init.Line, "", ast.NewNode(ast.TagBlock, init.Line, "", returnNode))
	m := b.BuildMethod("<field-init>", t, nil, nil, body, init.Line)
	// BuildMethod ends with the assignment into m.ReturnOp, a jump to the
	// return label, and the return-label No-op. Field initializers reuse
	// that assignment, retargeted at dest.
	for _, s := range m.Statements {
		if s.Op == ir.OpAssign && s.Dest == m.ReturnOp {
			return &ir.Statement{Op: ir.OpAssign, Arg1: s.Arg1, Dest: dest}
		}
	}
	return &ir.Statement{Op: ir.OpAssign, Arg1: ir.NewVariable(t.Reduce(), "", false), Dest: dest}
}

func (as *Assembler) argNamesAndTypes(argList *ast.Node) ([]string, []types.Type) {
	var names []string
	var ts []types.Type
	seen := map[string]bool{}
	for c := argList; c != nil; c = c.Child(1) {
		arg := c.Child(0)
		if arg == nil {
			continue
		}
		if seen[arg.Token] {
			as.sink.Report(diagnostics.Scope, arg.Line, diagnostics.MsgDuplicateArgument, arg.Token)
		}
		seen[arg.Token] = true
		names = append(names, arg.Token)
		ts = append(ts, nodeToType(arg.Child(0)))
	}
	return names, ts
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
