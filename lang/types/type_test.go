package types

import (
	"testing"

	"github.com/quillang/quill/lang/object"
	"github.com/stretchr/testify/require"
)

func TestSameTypePrimitives(t *testing.T) {
	require.True(t, SameType(Int, Int))
	require.False(t, SameType(Int, Float))
	require.True(t, SameType(Nil, Int))
	require.True(t, SameType(Int, Nil))
}

func TestSameTypeOptionChainSymmetry(t *testing.T) {
	printParam := WithOpt(&Type{Kind: KString}, WithOpt(&Type{Kind: KInt}, &Type{Kind: KFloat}))
	cases := []*Type{Int, Float, String, Bool, Byte}
	for _, c := range cases {
		require.Equal(t, SameType(printParam, c), SameType(c, printParam), "case %v", c)
	}
}

func TestSameTypeListAndMap(t *testing.T) {
	require.True(t, SameType(NewList(Int), NewList(Int)))
	require.False(t, SameType(NewList(Int), NewList(Float)))
	require.True(t, SameType(NewMap(String), NewMap(String)))
}

func TestSameTypeFun(t *testing.T) {
	a := NewFun([]*Type{Int, String}, []*Type{Bool})
	b := NewFun([]*Type{Int, String}, []*Type{Bool})
	c := NewFun([]*Type{Int}, []*Type{Bool})
	require.True(t, SameType(a, b))
	require.False(t, SameType(a, c))
}

func TestIsSubstruct(t *testing.T) {
	animal := NewStruct(object.NewString([]byte("Animal")), nil)
	dog := NewStruct(object.NewString([]byte("Dog")), animal)
	cat := NewStruct(object.NewString([]byte("Cat")), animal)

	require.True(t, IsSubstruct(dog, animal))
	require.True(t, IsSubstruct(dog, dog))
	require.False(t, IsSubstruct(dog, cat))
	require.False(t, IsSubstruct(animal, dog))
}
