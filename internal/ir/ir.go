// Package ir defines the three-address-code intermediate representation
// the CFG builder (internal/cfgbuild) produces: operands, labels,
// statements, methods, classes, and the externally-visible class
// interface (spec.md §3).
//
// Ownership follows spec.md §5: a Class owns its Methods, the methods'
// Statements, and every Operand and Label they reference. There are no
// cycles — jumps reference Labels by pointer, and Labels carry no back
// reference to the statements that target them.
package ir

import "github.com/vexlang/vexc/internal/types"

// Op identifies the three-address operation a Statement performs.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpNeg
	OpNot
	OpInvert
	OpAssign
	OpArrayGet
	OpArraySet
	OpArrayLength
	OpArrayNew
	OpIf
	OpJump
	OpSwitch
	OpCall
	OpNoop
)

// Label is an identity jump target with no payload.
type Label struct {
	// Name is a diagnostic-only label name (e.g. "L3"); it carries no
	// semantic weight and is not used for equality.
	Name string
}

// NewLabel allocates a fresh, distinct Label.
func NewLabel(name string) *Label { return &Label{Name: name} }

// Operand is either a literal or a variable reference.
type Operand struct {
	IsLiteral bool
	Type      types.Reduced

	// Literal payload, meaningful only when IsLiteral.
	BoolVal   bool
	IntVal    int32
	LongVal   int64
	FloatVal  float32
	DoubleVal float64

	// Variable payload, meaningful only when !IsLiteral.
	// SourceName is empty for compiler-generated temporaries.
	SourceName string
	IsField    bool

	// TempID names a compiler-generated temporary for the emitter's
	// benefit (spec.md §4.4: "named by an internal counter, preserved
	// for the emitter"). Zero for non-temporaries.
	TempID int
}

// BoolLiteral, IntLiteral, LongLiteral, FloatLiteral, DoubleLiteral
// construct literal operands.
func BoolLiteral(v bool) *Operand  { return &Operand{IsLiteral: true, Type: types.RBool, BoolVal: v} }
func IntLiteral(v int32) *Operand  { return &Operand{IsLiteral: true, Type: types.RInt, IntVal: v} }
func LongLiteral(v int64) *Operand { return &Operand{IsLiteral: true, Type: types.RLong, LongVal: v} }
func FloatLiteral(v float32) *Operand {
	return &Operand{IsLiteral: true, Type: types.RFloat, FloatVal: v}
}
func DoubleLiteral(v float64) *Operand {
	return &Operand{IsLiteral: true, Type: types.RDouble, DoubleVal: v}
}

// NewVariable constructs a variable operand. sourceName is empty for a
// compiler-generated temporary.
func NewVariable(t types.Reduced, sourceName string, isField bool) *Operand {
	return &Operand{Type: t, SourceName: sourceName, IsField: isField}
}

// NewTemp constructs a compiler-generated temporary of type t, named by
// the internal counter id for the emitter.
func NewTemp(t types.Reduced, id int) *Operand {
	return &Operand{Type: t, TempID: id}
}

// IsTemp reports whether this is a compiler-generated temporary.
func (o *Operand) IsTemp() bool { return !o.IsLiteral && o.SourceName == "" }

// JumpTarget is one (value, label) entry in a branch/switch's auxiliary
// list. For an If statement, IsDefault distinguishes the false branch
// from the true branch; for a Switch, IntValue is the case's Int
// literal, or IsDefault marks the default case; for a Jump, there is
// exactly one entry with IsDefault set.
type JumpTarget struct {
	IsDefault bool
	IntValue  int32
	Label     *Label
}

// CallAux is the auxiliary payload of an OpCall statement.
type CallAux struct {
	Method string
	Args   []*Operand
}

// Statement is a single three-address-code instruction.
type Statement struct {
	Op   Op
	Arg1 *Operand
	Arg2 *Operand
	Dest *Operand // nil when the op has no destination

	// Label, if non-nil, makes this statement a jump target.
	Label *Label

	// Targets holds the auxiliary jump-target list for If/Jump/Switch.
	Targets []JumpTarget

	// Call holds the auxiliary payload for OpCall.
	Call *CallAux
}

// Method is one compiled method: its signature and its linear statement
// list, terminated by a label-only No-op that every return jumps to.
type Method struct {
	Identifier  string
	ReturnType  types.Type // IsVoid() true for void methods
	ReturnOp    *Operand   // nil for void methods
	Args        []*Operand
	ArgTypes    []types.Type
	Statements  []*Statement
	ReturnLabel *Label
}

// Class is the fully compiled class: its fields, its methods, and the
// statement sequence that initializes fields before any constructor
// runs.
type Class struct {
	Identifier     string
	FieldOrder     []string
	FieldOperands  map[string]*Operand
	FieldTypes     map[string]types.Type
	Methods        map[string]*Method
	MethodOrder    []string
	InitStatements []*Statement
}

// NewClass allocates an empty Class ready for the assembler to populate.
func NewClass(identifier string) *Class {
	return &Class{
		Identifier:    identifier,
		FieldOperands: make(map[string]*Operand),
		FieldTypes:    make(map[string]types.Type),
		Methods:       make(map[string]*Method),
	}
}

// AddField registers a field in declaration order. Returns false if the
// identifier is already a field (caller should treat as a diagnostic).
func (c *Class) AddField(identifier string, op *Operand, t types.Type) bool {
	if _, exists := c.FieldOperands[identifier]; exists {
		return false
	}
	c.FieldOrder = append(c.FieldOrder, identifier)
	c.FieldOperands[identifier] = op
	c.FieldTypes[identifier] = t
	return true
}

// AddMethod registers a method. Returns false if the identifier is
// already a method (method overloading is unsupported, spec.md §1).
func (c *Class) AddMethod(m *Method) bool {
	if _, exists := c.Methods[m.Identifier]; exists {
		return false
	}
	c.MethodOrder = append(c.MethodOrder, m.Identifier)
	c.Methods[m.Identifier] = m
	return true
}

// ClassInterface is the externally visible shape of a Class: the only
// thing that crosses compilation-unit boundaries (spec.md §3).
type ClassInterface struct {
	Identifier string
	Fields     []FieldInterface
	Methods    []MethodInterface
}

// FieldInterface describes one field's identifier and type.
type FieldInterface struct {
	Identifier string
	Type       types.Type
}

// MethodInterface describes one method's identifier, return type, and
// positional argument types.
type MethodInterface struct {
	Identifier string
	ReturnType types.Type
	ArgTypes   []types.Type
}

// Interface projects a compiled Class down to its ClassInterface.
func (c *Class) Interface() ClassInterface {
	ci := ClassInterface{Identifier: c.Identifier}
	for _, id := range c.FieldOrder {
		ci.Fields = append(ci.Fields, FieldInterface{Identifier: id, Type: c.FieldTypes[id]})
	}
	for _, id := range c.MethodOrder {
		m := c.Methods[id]
		ci.Methods = append(ci.Methods, MethodInterface{
			Identifier: m.Identifier,
			ReturnType: m.ReturnType,
			ArgTypes:   append([]types.Type(nil), m.ArgTypes...),
		})
	}
	return ci
}

// Equal reports whether two interfaces are equal on names, fields, and
// methods (spec.md §8 interface round-trip property).
func (a ClassInterface) Equal(b ClassInterface) bool {
	if a.Identifier != b.Identifier {
		return false
	}
	if len(a.Fields) != len(b.Fields) || len(a.Methods) != len(b.Methods) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i].Identifier != b.Fields[i].Identifier || !a.Fields[i].Type.Equal(b.Fields[i].Type) {
			return false
		}
	}
	for i := range a.Methods {
		am, bm := a.Methods[i], b.Methods[i]
		if am.Identifier != bm.Identifier || !am.ReturnType.Equal(bm.ReturnType) {
			return false
		}
		if len(am.ArgTypes) != len(bm.ArgTypes) {
			return false
		}
		for j := range am.ArgTypes {
			if !am.ArgTypes[j].Equal(bm.ArgTypes[j]) {
				return false
			}
		}
	}
	return true
}
