package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableSetGetDelete(t *testing.T) {
	tbl := NewTable()
	a := NewString([]byte("a"))
	b := NewString([]byte("b"))

	require.True(t, tbl.Set(a, Int(1)))
	require.False(t, tbl.Set(a, Int(2))) // overwrite, not a new key
	v, ok := tbl.Get(a)
	require.True(t, ok)
	require.Equal(t, Int(2), v)

	_, ok = tbl.Get(b)
	require.False(t, ok)

	require.True(t, tbl.Delete(a))
	_, ok = tbl.Get(a)
	require.False(t, ok)
	require.False(t, tbl.Delete(a))
}

func TestTableGrowsPastLoadFactor(t *testing.T) {
	tbl := NewTable()
	keys := make([]*String, 0, 100)
	for i := 0; i < 100; i++ {
		k := NewString([]byte{byte(i), byte(i >> 8)})
		keys = append(keys, k)
		tbl.Set(k, Int(int32(i)))
	}
	require.Equal(t, 100, tbl.Len())
	for i, k := range keys {
		v, ok := tbl.Get(k)
		require.True(t, ok)
		require.Equal(t, Int(int32(i)), v)
	}
}

func TestListSetSizeTruncatesAndFillsDefault(t *testing.T) {
	l := NewList(Int(0))
	l.Append(Int(1))
	l.Append(Int(2))
	l.Append(Int(3))

	l.SetSize(1)
	require.Equal(t, 1, l.Len())

	l.SetSize(3)
	require.Equal(t, 3, l.Len())
	v, _ := l.Get(1)
	require.Equal(t, Int(0), v)
	v, _ = l.Get(2)
	require.Equal(t, Int(0), v)
}
