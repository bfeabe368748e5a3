package iface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/ir"
	"github.com/vexlang/vexc/internal/types"
)

func sampleInterface() ir.ClassInterface {
	return ir.ClassInterface{
		Identifier: "Widget",
		Fields: []ir.FieldInterface{
			{Identifier: "count", Type: types.Int()},
			{Identifier: "matrix", Type: types.Type{Class: "Int", Dims: 2}},
		},
		Methods: []ir.MethodInterface{
			{Identifier: "main", ReturnType: types.Void(), ArgTypes: nil},
			{Identifier: "add", ReturnType: types.Int(), ArgTypes: []types.Type{types.Int(), types.Int()}},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ci := sampleInterface()
	data, err := Encode(ci, 2)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, ci.Equal(got))
}

func TestEncodeUsesVoidForVoidMethods(t *testing.T) {
	data, err := Encode(sampleInterface(), 2)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"returnType": "void"`)
}

func TestEncodeArrayTypeSuffix(t *testing.T) {
	data, err := Encode(sampleInterface(), 2)
	require.NoError(t, err)
	assert.Contains(t, string(data), `Int[][]`)
}

func TestDecodeRejectsTrailingNonWhitespace(t *testing.T) {
	data, err := Encode(sampleInterface(), 2)
	require.NoError(t, err)
	data = append(data, []byte("garbage")...)
	_, err = Decode(data)
	assert.Error(t, err)
}

func TestDecodeAcceptsTrailingWhitespace(t *testing.T) {
	data, err := Encode(sampleInterface(), 2)
	require.NoError(t, err)
	data = append(data, []byte("\n\t  \n")...)
	_, err = Decode(data)
	assert.NoError(t, err)
}

func TestDecodeRejectsMalformedType(t *testing.T) {
	_, err := Decode([]byte(`{"identifier":"X","fields":[{"identifier":"a","type":"Int["}],"methods":[]}`))
	assert.Error(t, err)
}
