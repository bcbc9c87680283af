package natives

import (
	"bytes"
	"strings"
	"testing"

	"github.com/quillang/quill/lang/compiler"
	"github.com/quillang/quill/lang/gc"
	"github.com/quillang/quill/lang/object"
	"github.com/quillang/quill/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSet(t *testing.T, stdin string) (*Set, *gc.Heap, *bytes.Buffer) {
	t.Helper()
	h := gc.NewHeap()
	out := &bytes.Buffer{}
	return New(h, out, strings.NewReader(stdin)), h, out
}

func nativeByName(t *testing.T, s *Set, name string) (compiler.NativeBinding, object.Value) {
	t.Helper()
	bindings, values := s.Bindings(), s.Values()
	for i, b := range bindings {
		if b.Name == name {
			return b, values[i]
		}
	}
	t.Fatalf("no native named %q", name)
	return compiler.NativeBinding{}, object.Value{}
}

func callNative(v object.Value, args ...object.Value) (object.Value, error) {
	return v.Obj.(*object.Native).Fn(args)
}

func TestBindingsAndValuesStayInOrder(t *testing.T) {
	s, _, _ := newSet(t, "")
	bindings, values := s.Bindings(), s.Values()
	require.Equal(t, len(bindings), len(values))
	for i, b := range bindings {
		n, ok := values[i].Obj.(*object.Native)
		require.True(t, ok)
		assert.Equal(t, b.Name, n.Name.String())
	}
}

func TestPrintExpandsEscapesAndAddsNewline(t *testing.T) {
	s, h, out := newSet(t, "")
	_, v := nativeByName(t, s, "print")
	str := h.Intern([]byte(`a\tb\n`))
	_, err := callNative(v, object.FromObj(str))
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n\n", out.String())
}

func TestPrintAcceptsNonStringValues(t *testing.T) {
	s, _, out := newSet(t, "")
	_, v := nativeByName(t, s, "print")
	_, err := callNative(v, object.Int(42))
	require.NoError(t, err)
	assert.Equal(t, "42\n", out.String())
}

func TestInputStripsNewline(t *testing.T) {
	s, _, _ := newSet(t, "hello world\nsecond line\n")
	_, v := nativeByName(t, s, "input")
	got, err := callNative(v)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Obj.(*object.String).String())
}

func TestIsDigitAndIsAlpha(t *testing.T) {
	s, h, _ := newSet(t, "")
	_, digit := nativeByName(t, s, "is_digit")
	_, alpha := nativeByName(t, s, "is_alpha")

	got, err := callNative(digit, object.FromObj(h.Intern([]byte("123"))))
	require.NoError(t, err)
	assert.True(t, got.B)

	got, err = callNative(digit, object.FromObj(h.Intern([]byte("12a"))))
	require.NoError(t, err)
	assert.False(t, got.B)

	got, err = callNative(alpha, object.FromObj(h.Intern([]byte("abcXYZ"))))
	require.NoError(t, err)
	assert.True(t, got.B)

	got, err = callNative(alpha, object.FromObj(h.Intern([]byte(""))))
	require.NoError(t, err)
	assert.False(t, got.B)
}

func TestExpAcceptsIntByteAndFloat(t *testing.T) {
	s, _, _ := newSet(t, "")
	_, exp := nativeByName(t, s, "exp")

	got, err := callNative(exp, object.Int(0))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.F, 1e-9)

	got, err = callNative(exp, object.Byte(0))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.F, 1e-9)
}

func TestRandomUniformStaysInRange(t *testing.T) {
	s, _, _ := newSet(t, "")
	_, ru := nativeByName(t, s, "random_uniform")
	for i := 0; i < 20; i++ {
		got, err := callNative(ru, object.Float(1), object.Float(2))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.F, 1.0)
		assert.Less(t, got.F, 2.0)
	}
}

func TestClockIsMonotonicNonNegative(t *testing.T) {
	s, _, _ := newSet(t, "")
	_, clock := nativeByName(t, s, "clock")
	got, err := callNative(clock)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.F, 0.0)
}

func TestPrintTypeAcceptsAnyEnum(t *testing.T) {
	s, _, _ := newSet(t, "")
	binding, _ := nativeByName(t, s, "print")
	enumName := object.NewString([]byte("Color"))
	someEnum := types.NewEnum(enumName)
	assert.True(t, typeChainAccepts(binding.Type.Params[0], someEnum))
}

// typeChainAccepts mirrors lang/compiler's typeCompatible for this test's
// own assertions; typeCompatible is unexported, so this package cannot call
// it directly.
func typeChainAccepts(param, arg *types.Type) bool {
	for t := param; t != nil; t = t.Opt {
		if types.SameType(t, arg) {
			return true
		}
	}
	return false
}
