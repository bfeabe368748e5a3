// Package diagnostics implements the compiler's append-only error sink
// (spec.md §7): every non-fatal diagnostic is recorded with a file name,
// line number, and message, and emission is never suppressed by earlier
// errors so a single invocation can surface every problem in the source
// file.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Kind classifies a diagnostic by the subsystem that raised it.
type Kind string

const (
	Syntax           Kind = "syntax"
	Scope            Kind = "scope"
	DefiniteAssign   Kind = "definite-assignment"
	Type             Kind = "type"
	Structural       Kind = "structural"
)

// Diagnostic is one recorded error.
type Diagnostic struct {
	Kind    Kind
	File    string
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	if d.File != "" {
		return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Message)
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Sink collects diagnostics for one compilation unit. The zero value is
// ready to use.
type Sink struct {
	File  string
	items []Diagnostic
}

// NewSink creates a Sink for the named source file.
func NewSink(file string) *Sink { return &Sink{File: file} }

// Report appends a diagnostic. It never returns an error and never stops
// the caller — per spec.md §7, compilation continues after every
// non-fatal diagnostic using a placeholder type or synthetic operand.
func (s *Sink) Report(kind Kind, line int, format string, args ...interface{}) {
	s.items = append(s.items, Diagnostic{
		Kind:    kind,
		File:    s.File,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether any diagnostic has been recorded. Per
// spec.md §7, a class with any recorded diagnostic is not materialized
// for output.
func (s *Sink) HasErrors() bool { return len(s.items) > 0 }

// Diagnostics returns the recorded diagnostics in emission order.
func (s *Sink) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), s.items...)
}

// Render formats all diagnostics for terminal output, colorizing the
// kind and location the way the teacher's CLI colorizes compiler errors.
func (s *Sink) Render(useColor bool) string {
	var b strings.Builder
	red := color.New(color.FgRed, color.Bold)
	gray := color.New(color.FgHiBlack)
	for _, d := range s.items {
		if useColor {
			b.WriteString(red.Sprintf("error[%s]", d.Kind))
			b.WriteString(" ")
			b.WriteString(gray.Sprintf("%s:%d", d.File, d.Line))
			b.WriteString(": ")
			b.WriteString(d.Message)
		} else {
			b.WriteString(fmt.Sprintf("error[%s] %s:%d: %s", d.Kind, d.File, d.Line, d.Message))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Well-known diagnostic messages, named to match spec.md §7 exactly so
// the CFG builder, scope resolver, and type evaluator can share wording.
const (
	MsgUndeclaredVariable   = "undeclared variable %q"
	MsgDuplicateVariable    = "multiple variables with the same identifier %q"
	MsgDuplicateArgument    = "multiple arguments with the same identifier %q"
	MsgUsedBeforeInit       = "variable %q may be used before it is initialized"
	MsgMissingReturn        = "method may finish without returning a value"
	MsgIncompatibleAssign   = "incompatible types in assignment: cannot assign %s to %s"
	MsgOperandNotNumber     = "operand must be a number"
	MsgOperandNotInteger    = "operand must be an integer-like type"
	MsgOperandNotBool       = "operand must be a boolean"
	MsgOperandNotArray      = "operand must be an array"
	MsgOperandNotIntLit     = "operand must be an integer literal"
	MsgShiftOperand         = "operand to bit shift must be Byte or Int"
	MsgArrayIndexNotInt     = "array index must be an integer"
	MsgReturnMismatch       = "return value type mismatch: expected %s, got %s"
	MsgReturnPresence       = "return statement must have a value of type %s"
	MsgReturnVoidValue      = "void method must not return a value"
	MsgArgCount             = "wrong number of arguments to %q: expected %d, got %d"
	MsgArgType              = "wrong type for argument %d of %q: expected %s, got %s"
	MsgVoidCallValue        = "cannot use the return value of void method %q"
	MsgSwitchScrutineeType  = "switch scrutinee must be Int or Byte"
	MsgDuplicateCase        = "duplicate case label %v"
	MsgDuplicateDefault     = "duplicate default label"
	MsgFallthrough          = "falling through in a switch statement is not permitted"
	MsgInvalidLHS           = "invalid left-hand side of assignment"
	MsgBreakOutsideLoop     = "cannot break or continue outside a loop or switch"
	MsgBreakCountPositive   = "break/continue count must be positive"
	MsgBreakCountNotIntLit  = "break count must be an Int literal, not Long"
	MsgUndeclaredMethod     = "call to undeclared method %q"
	MsgDuplicateField       = "multiple fields with the same identifier %q"
	MsgDuplicateMethod      = "multiple methods with the same identifier %q (overloading is not supported)"
)
