// Package types implements the Vex type model: named primitive or object
// types at some array dimension, the numeric promotion lattice, and the
// reduced-type projection the emitter consumes.
package types

import (
	"fmt"
	"strings"
)

// Type is a pair of (class name, array dimension). Dimension 0 means a
// scalar; dimension N means N levels of array nesting over the class.
type Type struct {
	Class string
	Dims  int
}

// Reduced is the emitter-facing projection of Type: the primitive enum
// plus Object. Every Type with Dims > 0, and every Type whose class is not
// one of the recognized primitives, reduces to Object.
type Reduced int

const (
	RBool Reduced = iota
	RByte
	RInt
	RLong
	RFloat
	RDouble
	RObject
)

func (r Reduced) String() string {
	switch r {
	case RBool:
		return "Bool"
	case RByte:
		return "Byte"
	case RInt:
		return "Int"
	case RLong:
		return "Long"
	case RFloat:
		return "Float"
	case RDouble:
		return "Double"
	case RObject:
		return "Object"
	default:
		return "Object"
	}
}

// primitiveOrder is the total promotion order of the numeric primitives:
// Byte < Int < Long < Float < Double.
var primitiveOrder = map[string]int{
	"Byte":   0,
	"Int":    1,
	"Long":   2,
	"Float":  3,
	"Double": 4,
}

var primitiveReduced = map[string]Reduced{
	"Bool":   RBool,
	"Byte":   RByte,
	"Int":    RInt,
	"Long":   RLong,
	"Float":  RFloat,
	"Double": RDouble,
}

// Bool, Int, Long, Float, Double, Byte, Object are scalar-type
// constructors for readability at call sites.
func Bool() Type   { return Type{Class: "Bool"} }
func Byte() Type   { return Type{Class: "Byte"} }
func Int() Type    { return Type{Class: "Int"} }
func Long() Type   { return Type{Class: "Long"} }
func Float() Type  { return Type{Class: "Float"} }
func Double() Type { return Type{Class: "Double"} }
func Object() Type { return Type{Class: "Object"} }
func Void() Type   { return Type{Class: "void"} }

// IsVoid reports whether t denotes the absence of a return value.
func (t Type) IsVoid() bool { return t.Dims == 0 && t.Class == "void" }

// IsBool reports whether t is the scalar Bool type.
func (t Type) IsBool() bool { return t.Dims == 0 && t.Class == "Bool" }

// IsNumeric reports whether t is a scalar numeric primitive.
func (t Type) IsNumeric() bool {
	if t.Dims != 0 {
		return false
	}
	_, ok := primitiveOrder[t.Class]
	return ok
}

// IsIntegerLike reports whether t is Byte, Int, or Long at dimension 0.
func (t Type) IsIntegerLike() bool {
	if t.Dims != 0 {
		return false
	}
	switch t.Class {
	case "Byte", "Int", "Long":
		return true
	default:
		return false
	}
}

// IsObjectClass reports whether t's class name is not one of the six
// recognized primitives (it may still be an array of a primitive).
func (t Type) IsObjectClass() bool {
	_, ok := primitiveOrder[t.Class]
	if ok {
		return false
	}
	return t.Class != "Bool"
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	return t.Class == o.Class && t.Dims == o.Dims
}

// promotionRank returns the numeric's rank in the promotion order, or -1
// if t is not a scalar numeric.
func (t Type) promotionRank() int {
	if t.Dims != 0 {
		return -1
	}
	r, ok := primitiveOrder[t.Class]
	if !ok {
		return -1
	}
	return r
}

// LeastCommonType computes the least-common-type of a and b per spec.md
// §3: identical types reduce to themselves; any array dimension > 0 on
// either side (when they differ) reduces to Object; two scalar numerics
// reduce to the more-promoted of the two; anything else reduces to
// Object/0.
func LeastCommonType(a, b Type) Type {
	if a.Equal(b) {
		return a
	}
	if a.Dims > 0 || b.Dims > 0 {
		return Object()
	}
	ra, aNum := a.promotionRank(), a.promotionRank() >= 0
	rb, bNum := b.promotionRank(), b.promotionRank() >= 0
	if aNum && bNum {
		if ra >= rb {
			return a
		}
		return b
	}
	return Object()
}

// Reduce projects t onto the Reduced enum used by the emitter.
func (t Type) Reduce() Reduced {
	if t.Dims > 0 {
		return RObject
	}
	if r, ok := primitiveReduced[t.Class]; ok {
		return r
	}
	return RObject
}

// String serializes t as its class name followed by zero or more `[]`
// pairs, e.g. "Int[][]".
func (t Type) String() string {
	var b strings.Builder
	b.WriteString(t.Class)
	for i := 0; i < t.Dims; i++ {
		b.WriteString("[]")
	}
	return b.String()
}

// FromString parses the serialized form produced by String, returning an
// error for malformed input (anything that is not an identifier followed
// by zero or more literal "[]" pairs).
func FromString(s string) (Type, error) {
	idx := strings.IndexByte(s, '[')
	class := s
	rest := ""
	if idx >= 0 {
		class = s[:idx]
		rest = s[idx:]
	}
	if class == "" {
		return Type{}, fmt.Errorf("types: empty class name in %q", s)
	}
	dims := 0
	for len(rest) > 0 {
		if len(rest) < 2 || rest[0] != '[' || rest[1] != ']' {
			return Type{}, fmt.Errorf("types: malformed array suffix in %q", s)
		}
		dims++
		rest = rest[2:]
	}
	return Type{Class: class, Dims: dims}, nil
}
