package machine

import (
	"testing"

	"github.com/quillang/quill/lang/compiler"
	"github.com/quillang/quill/lang/object"
	"github.com/quillang/quill/lang/parser"
	"github.com/stretchr/testify/require"
)

// testAlloc is a minimal object.Allocator for VM tests: interning dedups by
// content the same way the real lang/gc.Heap does, and Track just appends
// to a slice since these tests never exercise collection.
type testAlloc struct {
	interned map[string]*object.String
	tracked  []object.Obj
}

func newTestAlloc() *testAlloc {
	return &testAlloc{interned: map[string]*object.String{}}
}

func (a *testAlloc) Intern(b []byte) *object.String {
	if s, ok := a.interned[string(b)]; ok {
		return s
	}
	s := object.NewString(b)
	a.interned[string(b)] = s
	return s
}

func (a *testAlloc) Track(o object.Obj) { a.tracked = append(a.tracked, o) }

func run(t *testing.T, src string) object.Value {
	t.Helper()
	prog, err := parser.New([]byte(src)).ParseProgram()
	require.NoError(t, err)
	alloc := newTestAlloc()
	fn, err := compiler.Compile(prog, alloc, nil)
	require.NoError(t, err)
	vm := New(alloc)
	v, err := vm.Run(fn)
	require.NoError(t, err)
	return v
}

func runLast(t *testing.T, decls string, expr string) object.Value {
	t.Helper()
	return run(t, decls+"\nreturn "+expr)
}

func TestArithmetic(t *testing.T) {
	v := runLast(t, ``, `1 + 2 * 3`)
	require.Equal(t, object.Int(7), v)

	v = runLast(t, ``, `7 / 2`)
	require.Equal(t, object.Int(3), v)

	v = runLast(t, ``, `7 % 2`)
	require.Equal(t, object.Int(1), v)

	v = runLast(t, ``, `1.5 + 2.5`)
	require.Equal(t, object.Float(4), v)
}

func TestStringConcatAndSize(t *testing.T) {
	v := runLast(t, `s := "foo" + "bar"`, `s.size`)
	require.Equal(t, object.Int(6), v)
}

func TestIfElse(t *testing.T) {
	v := runLast(t, `
x := 0
if 1 < 2 {
	x = 10
} else {
	x = 20
}`, `x`)
	require.Equal(t, object.Int(10), v)
}

func TestWhileLoop(t *testing.T) {
	v := runLast(t, `
i := 0
sum := 0
while i < 5 {
	sum = sum + i
	i = i + 1
}`, `sum`)
	require.Equal(t, object.Int(10), v)
}

func TestForLoop(t *testing.T) {
	v := runLast(t, `
sum := 0
for i := 0, i < 5, i = i + 1 {
	sum = sum + i
}`, `sum`)
	require.Equal(t, object.Int(10), v)
}

func TestRecursion(t *testing.T) {
	v := runLast(t, `
fact :: (n: int) -> int {
	if n < 2 {
		return 1
	}
	return n * fact(n - 1)
}`, `fact(5)`)
	require.Equal(t, object.Int(120), v)
}

func TestClosureCapturesAndMutatesUpvalue(t *testing.T) {
	v := runLast(t, `
make_counter :: () -> () -> int {
	count := 0
	inc := () -> int {
		count = count + 1
		return count
	}
	return inc
}
c := make_counter()
c()
c()`, `c()`)
	require.Equal(t, object.Int(3), v)
}

func TestStructConstructAndProps(t *testing.T) {
	v := runLast(t, `
Point :: struct {
	x: int = 1,
	y: int = 2,
}
p := Point()
p.x = p.x + 10`, `p.x + p.y`)
	require.Equal(t, object.Int(13), v)
}

func TestStructInheritanceDefaults(t *testing.T) {
	v := runLast(t, `
Shape :: struct {
	sides: int = 0,
}
Square :: struct < Shape {
	size: int = 4,
}
s := Square()`, `s.sides + s.size`)
	require.Equal(t, object.Int(4), v)
}

func TestListGrowAndSize(t *testing.T) {
	v := runLast(t, `
xs := List<int>()
xs.size = 3
xs[0] = 7`, `xs.size + xs[0] + xs[1]`)
	require.Equal(t, object.Int(10), v)
}

func TestMapPutAndGet(t *testing.T) {
	v := runLast(t, `
m := Map<int>()
m["a"] = 1
m["b"] = 2`, `m["a"] + m["b"]`)
	require.Equal(t, object.Int(3), v)
}

func TestWhenDispatch(t *testing.T) {
	v := runLast(t, `
x := 2
y := 0
when x {
	is 1 { y = 10 }
	is 2 { y = 20 }
	else { y = 30 }
}`, `y`)
	require.Equal(t, object.Int(20), v)
}

func TestCastIntToFloatAndBack(t *testing.T) {
	v := runLast(t, ``, `(3 as float) as int`)
	require.Equal(t, object.Int(3), v)
}
