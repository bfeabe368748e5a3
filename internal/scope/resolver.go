// Package scope implements the variable-scope resolver (spec.md §4.1): a
// pre-order walk of one method body that assigns every identifier
// occurrence a stable integer identity.
//
// Grounded on the teacher's pkg/compiler/symbols.go SymbolTable (a
// parent-linked chain of scopes with Define/Resolve/EnterScope),
// generalized here to hand out fresh integer ids instead of constant-pool
// indices, and to feed a diagnostics.Sink instead of returning a bool.
package scope

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diagnostics"
)

// FieldOrArg is the id assigned to an identifier that resolves to a
// class field or a method argument: these are not locals, so the scope
// resolver gives them no fresh id of their own.
const FieldOrArg = -1

// frame is one nested scope of local declarations.
type frame struct {
	ids map[string]int
}

// Resolver assigns identities for a single method AST.
type Resolver struct {
	fields map[string]bool
	args   map[string]bool
	frames []*frame
	nextID int
	flat   map[*ast.Node]int
	sink   *diagnostics.Sink

	// declaredAnywhere tracks every identifier ever declared as a local
	// in this method, regardless of which frame it's currently in, so
	// that re-declaring the same name in a sibling block is still
	// flagged as a collision the way spec.md §4.1 requires ("duplicate
	// declarations in the same enclosing-method scope").
	declaredAnywhere map[string]bool
}

// blockTags lists the AST tags that open a new scope frame for locals.
var blockTags = map[ast.Tag]bool{
	ast.TagBlock:    true,
	ast.TagDoWhile:  true,
	ast.TagFor:      true,
	ast.TagForIn:    true,
	ast.TagSwitch:   true,
	ast.TagWhile:    true,
}

// Resolve walks methodAST, returning a map from every identifier-use and
// identifier-declaration node to its assigned id (FieldOrArg for fields,
// arguments, and unresolved identifiers).
func Resolve(methodAST *ast.Node, argIdentifiers []string, fieldIdentifiers map[string]bool, sink *diagnostics.Sink) map[*ast.Node]int {
	r := &Resolver{
		fields:           fieldIdentifiers,
		args:             make(map[string]bool),
		flat:             make(map[*ast.Node]int),
		sink:             sink,
		declaredAnywhere: make(map[string]bool),
	}
	for _, a := range argIdentifiers {
		r.args[a] = true
	}
	r.pushFrame()
	r.walk(methodAST)
	r.popFrame()
	return r.flat
}

func (r *Resolver) pushFrame() { r.frames = append(r.frames, &frame{ids: make(map[string]int)}) }
func (r *Resolver) popFrame()  { r.frames = r.frames[:len(r.frames)-1] }

func (r *Resolver) top() *frame { return r.frames[len(r.frames)-1] }

// declare assigns a fresh id to identifier in the current frame,
// reporting a diagnostic on collision with an argument, field, or an
// identifier already declared anywhere in this method.
func (r *Resolver) declare(node *ast.Node, identifier string, line int) int {
	id := r.nextID
	r.nextID++

	collision := r.args[identifier] || r.fields[identifier] || r.declaredAnywhere[identifier]
	if collision {
		r.sink.Report(diagnostics.Scope, line, diagnostics.MsgDuplicateVariable, identifier)
	}
	r.declaredAnywhere[identifier] = true
	r.top().ids[identifier] = id
	r.flat[node] = id
	return id
}

// use resolves an identifier occurrence that is not a declaration.
func (r *Resolver) use(node *ast.Node, identifier string, line int) {
	for i := len(r.frames) - 1; i >= 0; i-- {
		if id, ok := r.frames[i].ids[identifier]; ok {
			r.flat[node] = id
			return
		}
	}
	if r.args[identifier] || r.fields[identifier] {
		r.flat[node] = FieldOrArg
		return
	}
	r.sink.Report(diagnostics.Scope, line, diagnostics.MsgUndeclaredVariable, identifier)
	r.flat[node] = FieldOrArg
}

// walk performs the pre-order traversal described in spec.md §4.1.
func (r *Resolver) walk(n *ast.Node) {
	if n == nil {
		return
	}

	opensFrame := blockTags[n.Tag]
	if opensFrame {
		r.pushFrame()
	}

	switch n.Tag {
	case ast.TagIdentifier:
		r.use(n, n.Token, n.Line)
		return // leaf

	case ast.TagVarDeclaration:
		// Children[0] = type node (skip), Children[1] = identifier leaf
		// (or this node itself carries the token), Children[2] =
		// optional initializer.
		r.declare(n, n.Token, n.Line)
		r.walk(n.Child(2))
		if opensFrame {
			r.popFrame()
		}
		return

	case ast.TagVarDeclarationList:
		for _, ch := range n.Children {
			r.walk(ch)
		}
		if opensFrame {
			r.popFrame()
		}
		return

	case ast.TagForIn:
		// Child(0) = loop variable declaration (token carries the
		// identifier), Child(1) = collection expr, Child(2) = body.
		r.declare(n.Child(0), n.Child(0).Token, n.Child(0).Line)
		r.walk(n.Child(1))
		r.walk(n.Child(2))
		if opensFrame {
			r.popFrame()
		}
		return

	case ast.TagCall:
		// Child(0) carries the method name token and is not a variable
		// occurrence; only walk the argument list.
		r.walk(n.Child(1))
		if opensFrame {
			r.popFrame()
		}
		return

	case ast.TagType, ast.TagTypeArray, ast.TagAuto, ast.TagVoid:
		if opensFrame {
			r.popFrame()
		}
		return
	}

	for _, ch := range n.Children {
		r.walk(ch)
	}
	if opensFrame {
		r.popFrame()
	}
}
