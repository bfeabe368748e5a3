// Package iface encodes and decodes the ClassInterface wire format
// spec.md §6 defines for separate-compilation consumers: the
// `<Class>.int` JSON file listing a class's identifier, typed fields,
// and typed method signatures.
//
// Grounded on the teacher's pkg/logging JSON entries and pkg/ir's wire
// structs, both of which lean on encoding/json rather than a
// third-party JSON library for every interop format the teacher owns —
// no example repo in the pack reaches for a different JSON encoder, so
// this stays on the standard library per spec.md §6's own grammar
// (standard JSON numbers/strings/escapes), with a thin post-processing
// step layered on top for the two places encoding/json's defaults
// diverge from the spec: non-ASCII code points are re-escaped to
// `\uXXXX` (encoding/json leaves valid UTF-8 as-is), and decode
// explicitly rejects trailing non-whitespace after the JSON value
// (encoding/json's Unmarshal silently ignores it).
package iface

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/vexlang/vexc/internal/ir"
	"github.com/vexlang/vexc/internal/types"
)

type wireField struct {
	Identifier string `json:"identifier"`
	Type       string `json:"type"`
}

type wireMethod struct {
	Identifier string   `json:"identifier"`
	ReturnType string   `json:"returnType"`
	ArgTypes   []string `json:"argTypes"`
}

type wireClass struct {
	Identifier string       `json:"identifier"`
	Fields     []wireField  `json:"fields"`
	Methods    []wireMethod `json:"methods"`
}

func toWire(ci ir.ClassInterface) wireClass {
	w := wireClass{Identifier: ci.Identifier}
	for _, f := range ci.Fields {
		w.Fields = append(w.Fields, wireField{Identifier: f.Identifier, Type: f.Type.String()})
	}
	for _, m := range ci.Methods {
		argTypes := make([]string, len(m.ArgTypes))
		for i, t := range m.ArgTypes {
			argTypes[i] = t.String()
		}
		retType := "void"
		if !m.ReturnType.IsVoid() {
			retType = m.ReturnType.String()
		}
		w.Methods = append(w.Methods, wireMethod{Identifier: m.Identifier, ReturnType: retType, ArgTypes: argTypes})
	}
	return w
}

func fromWire(w wireClass) (ir.ClassInterface, error) {
	ci := ir.ClassInterface{Identifier: w.Identifier}
	for _, f := range w.Fields {
		t, err := types.FromString(f.Type)
		if err != nil {
			return ir.ClassInterface{}, fmt.Errorf("iface: field %q: %w", f.Identifier, err)
		}
		ci.Fields = append(ci.Fields, ir.FieldInterface{Identifier: f.Identifier, Type: t})
	}
	for _, m := range w.Methods {
		retType := types.Void()
		if m.ReturnType != "void" {
			var err error
			retType, err = types.FromString(m.ReturnType)
			if err != nil {
				return ir.ClassInterface{}, fmt.Errorf("iface: method %q return type: %w", m.Identifier, err)
			}
		}
		argTypes := make([]types.Type, len(m.ArgTypes))
		for i, s := range m.ArgTypes {
			t, err := types.FromString(s)
			if err != nil {
				return ir.ClassInterface{}, fmt.Errorf("iface: method %q argument %d: %w", m.Identifier, i, err)
			}
			argTypes[i] = t
		}
		ci.Methods = append(ci.Methods, ir.MethodInterface{Identifier: m.Identifier, ReturnType: retType, ArgTypes: argTypes})
	}
	return ci, nil
}

// Encode renders ci as indented JSON, indentWidth spaces per nesting
// level (spec.md §6 allows two or four), with non-ASCII code points
// escaped as `\uXXXX`.
func Encode(ci ir.ClassInterface, indentWidth int) ([]byte, error) {
	indent := bytes.Repeat([]byte{' '}, indentWidth)
	data, err := json.MarshalIndent(toWire(ci), "", string(indent))
	if err != nil {
		return nil, fmt.Errorf("iface: encoding %q: %w", ci.Identifier, err)
	}
	return escapeNonASCII(data), nil
}

// escapeNonASCII rewrites every non-ASCII rune encoding/json left as raw
// UTF-8 into a `\uXXXX` escape (surrogate pairs for code points above
// U+FFFF), matching spec.md §6's encoding rule.
func escapeNonASCII(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r < utf8.RuneSelf {
			out.WriteByte(data[i])
			i++
			continue
		}
		if r > 0xFFFF {
			r1, r2 := utf16Surrogates(r)
			fmt.Fprintf(&out, `\u%04x\u%04x`, r1, r2)
		} else {
			fmt.Fprintf(&out, `\u%04x`, r)
		}
		i += size
	}
	return out.Bytes()
}

func utf16Surrogates(r rune) (rune, rune) {
	r -= 0x10000
	return 0xD800 + (r >> 10), 0xDC00 + (r & 0x3FF)
}

// Decode parses data as a ClassInterface, rejecting any non-whitespace
// trailing the JSON value (spec.md §6).
func Decode(data []byte) (ir.ClassInterface, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var w wireClass
	if err := dec.Decode(&w); err != nil {
		return ir.ClassInterface{}, fmt.Errorf("iface: decoding: %w", err)
	}
	offset := dec.InputOffset()
	if trailing := bytes.TrimSpace(data[offset:]); len(trailing) > 0 {
		return ir.ClassInterface{}, fmt.Errorf("iface: trailing non-whitespace after JSON value: %q", trailing)
	}
	return fromWire(w)
}
