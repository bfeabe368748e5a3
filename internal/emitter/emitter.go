// Package emitter translates a compiled ir.Class into the C++ source
// pair spec.md §6 names as the external emitter's one job: `<Class>.hpp`
// and `<Class>.cpp`, handed next to the host C++ compiler. This is
// explicitly one of the "external collaborators" spec.md §1 calls
// mechanical and out of the core's design scope, so the translation
// stays direct: every reduced type maps to one C++ type, every label
// becomes a goto target, and the only runtime support is the small
// array/print shim in internal/emitter/runtime.go's text.
//
// Grounded on the teacher's pkg/codegen/typescript.go and
// pkg/codegen/python.go (one Generator type per target language, a
// strings.Builder walked once per construct, a per-AST-node-kind
// generate method), adapted from the teacher's module/route source
// model to walking ir.Class/ir.Method/ir.Statement instead.
package emitter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vexlang/vexc/internal/ir"
	"github.com/vexlang/vexc/internal/types"
)

// Generator emits one class's C++ header and source text.
type Generator struct {
	class *ir.Class
}

// New creates a Generator for class.
func New(class *ir.Class) *Generator {
	return &Generator{class: class}
}

// cppType maps a Reduced type to its C++ spelling. Arrays and object
// references both reduce to Object at the ir layer (spec.md §3), so
// both are represented uniformly by the runtime shim's Object alias.
func cppType(r types.Reduced) string {
	switch r {
	case types.RBool:
		return "bool"
	case types.RByte:
		return "int8_t"
	case types.RInt:
		return "int32_t"
	case types.RLong:
		return "int64_t"
	case types.RFloat:
		return "float"
	case types.RDouble:
		return "double"
	default:
		return "vexrt::Object"
	}
}

// Header renders the `<Class>.hpp` text.
func (g *Generator) Header() string {
	var sb strings.Builder
	c := g.class
	guard := strings.ToUpper(c.Identifier) + "_HPP"
	fmt.Fprintf(&sb, "#ifndef %s\n#define %s\n\n", guard, guard)
	sb.WriteString("#include \"vexrt.hpp\"\n\n")
	fmt.Fprintf(&sb, "class %s {\npublic:\n", c.Identifier)
	fmt.Fprintf(&sb, "    %s();\n", c.Identifier)
	for _, id := range c.FieldOrder {
		fmt.Fprintf(&sb, "    %s %s;\n", cppType(c.FieldTypes[id].Reduce()), id)
	}
	sb.WriteString("\n")
	for _, id := range c.MethodOrder {
		m := c.Methods[id]
		fmt.Fprintf(&sb, "    %s %s;\n", retPrefix(m), methodSignature(m))
	}
	sb.WriteString("};\n\n")
	fmt.Fprintf(&sb, "#endif // %s\n", guard)
	return sb.String()
}

func methodSignature(m *ir.Method) string {
	var params []string
	for _, arg := range m.Args {
		params = append(params, fmt.Sprintf("%s %s", cppType(arg.Type), arg.SourceName))
	}
	return fmt.Sprintf("%s(%s)", m.Identifier, strings.Join(params, ", "))
}

// Source renders the `<Class>.cpp` text.
func (g *Generator) Source() string {
	var sb strings.Builder
	c := g.class
	fmt.Fprintf(&sb, "#include \"%s.hpp\"\n\n", c.Identifier)

	fmt.Fprintf(&sb, "%s::%s() {\n", c.Identifier, c.Identifier)
	e := &methodEmitter{sb: &sb, class: c, indent: "    "}
	e.emitStatements(c.InitStatements)
	sb.WriteString("}\n\n")

	for _, id := range c.MethodOrder {
		m := c.Methods[id]
		fmt.Fprintf(&sb, "%s %s::%s\n{\n", retPrefix(m), c.Identifier, methodSignature(m))
		me := &methodEmitter{sb: &sb, class: c, method: m, indent: "    "}
		me.declareLocals()
		me.emitStatements(m.Statements)
		if m.ReturnOp != nil {
			fmt.Fprintf(&sb, "    return %s;\n", operandExpr(m.ReturnOp))
		}
		sb.WriteString("}\n\n")
	}
	return sb.String()
}

func retPrefix(m *ir.Method) string {
	if m.ReturnOp != nil {
		return cppType(m.ReturnOp.Type)
	}
	return "void"
}

type methodEmitter struct {
	sb     *strings.Builder
	class  *ir.Class
	method *ir.Method
	indent string
}

// declareLocals predeclares every non-argument, non-field variable the
// method statements touch, before any label, so that later goto targets
// never jump over a C++ variable's scope entry (spec.md §4.4's labels
// become goto targets; C++ requires every local a goto can skip to
// already be in scope).
func (e *methodEmitter) declareLocals() {
	seen := map[string]bool{}
	type decl struct {
		name string
		typ  string
	}
	var decls []decl
	note := func(op *ir.Operand) {
		if op == nil || op.IsLiteral || op.IsField {
			return
		}
		name := operandName(op)
		if name == "" || seen[name] {
			return
		}
		for _, arg := range e.method.Args {
			if operandName(arg) == name {
				return
			}
		}
		seen[name] = true
		decls = append(decls, decl{name: name, typ: cppType(op.Type)})
	}
	for _, s := range e.method.Statements {
		note(s.Arg1)
		note(s.Arg2)
		note(s.Dest)
		if s.Call != nil {
			for _, a := range s.Call.Args {
				note(a)
			}
		}
	}
	if e.method.ReturnOp != nil && operandName(e.method.ReturnOp) != "" {
		note(e.method.ReturnOp)
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].name < decls[j].name })
	for _, d := range decls {
		fmt.Fprintf(e.sb, "%s%s %s{};\n", e.indent, d.typ, d.name)
	}
}

func operandName(op *ir.Operand) string {
	if op.SourceName != "" {
		return op.SourceName
	}
	if op.TempID != 0 {
		return fmt.Sprintf("t%d", op.TempID)
	}
	return ""
}

func operandExpr(op *ir.Operand) string {
	if op == nil {
		return ""
	}
	if op.IsField {
		return "this->" + op.SourceName
	}
	if !op.IsLiteral {
		return operandName(op)
	}
	switch op.Type {
	case types.RBool:
		if op.BoolVal {
			return "true"
		}
		return "false"
	case types.RByte, types.RInt:
		return strconv.FormatInt(int64(op.IntVal), 10)
	case types.RLong:
		return strconv.FormatInt(op.LongVal, 10) + "LL"
	case types.RFloat:
		return strconv.FormatFloat(float64(op.FloatVal), 'g', -1, 32) + "f"
	case types.RDouble:
		return strconv.FormatFloat(op.DoubleVal, 'g', -1, 64)
	default:
		return "vexrt::Object{}"
	}
}

var binOp = map[ir.Op]string{
	ir.OpAdd: "+", ir.OpSub: "-", ir.OpMul: "*", ir.OpDiv: "/", ir.OpMod: "%",
	ir.OpBitAnd: "&", ir.OpBitOr: "|", ir.OpBitXor: "^", ir.OpShl: "<<", ir.OpShr: ">>",
	ir.OpLt: "<", ir.OpLe: "<=", ir.OpGt: ">", ir.OpGe: ">=", ir.OpEq: "==", ir.OpNe: "!=",
}

func (e *methodEmitter) emitStatements(stmts []*ir.Statement) {
	for _, s := range stmts {
		if s.Label != nil {
			fmt.Fprintf(e.sb, "%s:\n", s.Label.Name)
		}
		e.emitOne(s)
	}
}

func (e *methodEmitter) emitOne(s *ir.Statement) {
	ind := e.indent
	dest := ""
	if s.Dest != nil {
		dest = destExpr(s.Dest)
	}
	switch s.Op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod,
		ir.OpBitAnd, ir.OpBitOr, ir.OpBitXor, ir.OpShl, ir.OpShr,
		ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe, ir.OpEq, ir.OpNe:
		fmt.Fprintf(e.sb, "%s%s = %s %s %s;\n", ind, dest, operandExpr(s.Arg1), binOp[s.Op], operandExpr(s.Arg2))
	case ir.OpNeg:
		fmt.Fprintf(e.sb, "%s%s = -%s;\n", ind, dest, operandExpr(s.Arg1))
	case ir.OpNot:
		fmt.Fprintf(e.sb, "%s%s = !%s;\n", ind, dest, operandExpr(s.Arg1))
	case ir.OpInvert:
		fmt.Fprintf(e.sb, "%s%s = ~%s;\n", ind, dest, operandExpr(s.Arg1))
	case ir.OpAssign:
		fmt.Fprintf(e.sb, "%s%s = %s;\n", ind, dest, operandExpr(s.Arg1))
	case ir.OpArrayGet:
		fmt.Fprintf(e.sb, "%s%s = vexrt::array_get(%s, %s);\n", ind, dest, operandExpr(s.Arg1), operandExpr(s.Arg2))
	case ir.OpArraySet:
		fmt.Fprintf(e.sb, "%svexrt::array_set(%s, %s, %s);\n", ind, operandExpr(s.Arg1), operandExpr(s.Arg2), dest)
	case ir.OpArrayLength:
		fmt.Fprintf(e.sb, "%s%s = vexrt::array_length(%s);\n", ind, dest, operandExpr(s.Arg1))
	case ir.OpArrayNew:
		fmt.Fprintf(e.sb, "%s%s = vexrt::make_array(%s);\n", ind, dest, operandExpr(s.Arg1))
	case ir.OpJump:
		fmt.Fprintf(e.sb, "%sgoto %s;\n", ind, s.Targets[0].Label.Name)
	case ir.OpIf:
		e.emitIf(s)
	case ir.OpSwitch:
		e.emitSwitch(s)
	case ir.OpCall:
		e.emitCall(s, dest)
	case ir.OpNoop:
		fmt.Fprintf(e.sb, "%s;\n", ind)
	}
}

func destExpr(op *ir.Operand) string {
	if op.IsField {
		return "this->" + op.SourceName
	}
	return operandName(op)
}

func (e *methodEmitter) emitIf(s *ir.Statement) {
	cond := operandExpr(s.Arg1)
	var trueLbl, falseLbl string
	for _, t := range s.Targets {
		if t.IsDefault {
			falseLbl = t.Label.Name
		} else {
			trueLbl = t.Label.Name
		}
	}
	if trueLbl != "" {
		fmt.Fprintf(e.sb, "%sif (%s) goto %s;\n", e.indent, cond, trueLbl)
	}
	if falseLbl != "" {
		if trueLbl != "" {
			fmt.Fprintf(e.sb, "%sgoto %s;\n", e.indent, falseLbl)
		} else {
			fmt.Fprintf(e.sb, "%sif (!(%s)) goto %s;\n", e.indent, cond, falseLbl)
		}
	}
}

func (e *methodEmitter) emitSwitch(s *ir.Statement) {
	fmt.Fprintf(e.sb, "%sswitch (%s) {\n", e.indent, operandExpr(s.Arg1))
	for _, t := range s.Targets {
		if t.IsDefault {
			fmt.Fprintf(e.sb, "%s    default: goto %s;\n", e.indent, t.Label.Name)
		} else {
			fmt.Fprintf(e.sb, "%s    case %d: goto %s;\n", e.indent, t.IntValue, t.Label.Name)
		}
	}
	fmt.Fprintf(e.sb, "%s}\n", e.indent)
}

func (e *methodEmitter) emitCall(s *ir.Statement, dest string) {
	var args []string
	for _, a := range s.Call.Args {
		args = append(args, operandExpr(a))
	}
	call := fmt.Sprintf("%s(%s)", builtinOrQualified(e.class, s.Call.Method), strings.Join(args, ", "))
	if dest != "" {
		fmt.Fprintf(e.sb, "%s%s = %s;\n", e.indent, dest, call)
	} else {
		fmt.Fprintf(e.sb, "%s%s;\n", e.indent, call)
	}
}

func builtinOrQualified(c *ir.Class, method string) string {
	switch method {
	case "print":
		return "vexrt::print"
	case "println":
		return "vexrt::println"
	default:
		return method
	}
}
