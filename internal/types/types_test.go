package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringRoundTrip(t *testing.T) {
	cases := []Type{
		Int(),
		Double(),
		Object(),
		{Class: "Int", Dims: 2},
		{Class: "Widget", Dims: 1},
	}
	for _, c := range cases {
		s := c.String()
		got, err := FromString(s)
		require.NoError(t, err)
		assert.True(t, c.Equal(got), "round trip %v -> %q -> %v", c, s, got)
	}
}

func TestFromStringRejectsMalformed(t *testing.T) {
	_, err := FromString("Int[")
	assert.Error(t, err)
	_, err = FromString("[]Int")
	assert.Error(t, err)
	_, err = FromString("")
	assert.Error(t, err)
}

func TestLeastCommonTypeNumericPromotion(t *testing.T) {
	assert.True(t, LeastCommonType(Int(), Long()).Equal(Long()))
	assert.True(t, LeastCommonType(Long(), Int()).Equal(Long()))
	assert.True(t, LeastCommonType(Byte(), Double()).Equal(Double()))
	assert.True(t, LeastCommonType(Int(), Int()).Equal(Int()))
}

func TestLeastCommonTypeArraysAndObjectsReduceToObject(t *testing.T) {
	arr := Type{Class: "Int", Dims: 1}
	assert.True(t, LeastCommonType(arr, Int()).Equal(Object()))
	assert.True(t, LeastCommonType(Bool(), Object()).Equal(Object()))
}

func TestReduceCollapsesArraysAndObjectsToRObject(t *testing.T) {
	assert.Equal(t, RInt, Int().Reduce())
	assert.Equal(t, RObject, Type{Class: "Int", Dims: 1}.Reduce())
	assert.Equal(t, RObject, Type{Class: "Widget"}.Reduce())
	assert.Equal(t, RBool, Bool().Reduce())
}

func TestIsIntegerLikeAndIsNumeric(t *testing.T) {
	assert.True(t, Int().IsIntegerLike())
	assert.True(t, Long().IsIntegerLike())
	assert.False(t, Float().IsIntegerLike())
	assert.True(t, Float().IsNumeric())
	assert.False(t, Bool().IsNumeric())
}

func TestIsObjectClass(t *testing.T) {
	assert.False(t, Int().IsObjectClass())
	assert.False(t, Bool().IsObjectClass())
	assert.True(t, Type{Class: "Widget"}.IsObjectClass())
}

func TestVoidType(t *testing.T) {
	assert.True(t, Void().IsVoid())
	assert.False(t, Int().IsVoid())
}
