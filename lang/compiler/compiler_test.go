package compiler

import (
	"testing"

	"github.com/quillang/quill/lang/object"
	"github.com/quillang/quill/lang/parser"
	"github.com/stretchr/testify/require"
)

// testInterner is a minimal object.Interner for compiler tests: the real
// intern table lives in lang/gc.Heap, but the compiler only needs Intern's
// dedup behavior, not garbage collection.
type testInterner struct {
	m map[string]*object.String
}

func newTestInterner() *testInterner {
	return &testInterner{m: map[string]*object.String{}}
}

func (in *testInterner) Intern(b []byte) *object.String {
	if s, ok := in.m[string(b)]; ok {
		return s
	}
	s := object.NewString(b)
	in.m[string(b)] = s
	return s
}

func compileOK(t *testing.T, src string) *object.Function {
	t.Helper()
	p := parser.New([]byte(src))
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	fn, err := Compile(prog, newTestInterner(), nil)
	require.NoError(t, err)
	return fn
}

func compileErr(t *testing.T, src string) error {
	t.Helper()
	p := parser.New([]byte(src))
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	_, err = Compile(prog, newTestInterner(), nil)
	require.Error(t, err)
	return err
}

func TestCompileVarDecl(t *testing.T) {
	fn := compileOK(t, `x := 1`)
	require.Contains(t, fn.Chunk.Code, byte(CONSTANT))
}

func TestCompileVarDeclTypeMismatchReportsLine(t *testing.T) {
	err := compileErr(t, "\n\nx: int = \"nope\"")
	require.Contains(t, err.Error(), "[line 3]")
}

func TestCompileIfElseEmitsJumps(t *testing.T) {
	fn := compileOK(t, `
if true {
	1
} else {
	2
}`)
	// The lowering needs a conditional jump to the else branch and an
	// unconditional jump over it; only their presence is checked here.
	require.Contains(t, fn.Chunk.Code, byte(JUMP_IF_FALSE))
	require.Contains(t, fn.Chunk.Code, byte(JUMP))
}

func TestCompileWhileLoopJumpsBack(t *testing.T) {
	fn := compileOK(t, `
i := 0
while i < 3 {
	i = i + 1
}`)
	require.Contains(t, fn.Chunk.Code, byte(JUMP_BACK))
}

func TestCompileForLoop(t *testing.T) {
	fn := compileOK(t, `
for i := 0, i < 3, i = i + 1 {
	i
}`)
	require.Contains(t, fn.Chunk.Code, byte(JUMP_BACK))
	require.Contains(t, fn.Chunk.Code, byte(JUMP_IF_FALSE))
}

func TestCompileFunSelfRecursion(t *testing.T) {
	fn := compileOK(t, `
fact :: (n: int) -> int {
	if n < 2 {
		return 1
	}
	return n * fact(n - 1)
}`)
	require.Contains(t, fn.Chunk.Code, byte(FUN))
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	fn := compileOK(t, `
make_counter :: () -> () -> int {
	count := 0
	inc := () -> int {
		count = count + 1
		return count
	}
	return inc
}`)
	require.Contains(t, fn.Chunk.Code, byte(FUN))
}

func TestCompileStructDeclAndConstruct(t *testing.T) {
	fn := compileOK(t, `
Point :: struct {
	x: int = 0,
	y: int = 0,
}
p := Point()`)
	require.Contains(t, fn.Chunk.Code, byte(CLASS))
	require.Contains(t, fn.Chunk.Code, byte(ADD_PROP))
	require.Contains(t, fn.Chunk.Code, byte(INSTANCE))
}

func TestCompileStructInheritancePropertyTypeConflict(t *testing.T) {
	err := compileErr(t, `
Shape :: struct {
	name: string = "",
}
Circle :: struct < Shape {
	name: int = 0,
}`)
	require.Error(t, err)
}

func TestCompileEnumDecl(t *testing.T) {
	fn := compileOK(t, `
Color :: enum {
	Red,
	Green,
	Blue = 5,
}`)
	require.Contains(t, fn.Chunk.Code, byte(CONSTANT))
}

func TestCompileWhenNoFallthrough(t *testing.T) {
	fn := compileOK(t, `
x := 1
when x {
	is 1 { x = 10 }
	is 2 { x = 20 }
	else { x = 30 }
}`)
	require.Contains(t, fn.Chunk.Code, byte(EQUAL))
	require.Contains(t, fn.Chunk.Code, byte(GET_LOCAL))
}

func TestCompileCast(t *testing.T) {
	fn := compileOK(t, `x := 1.5 as int`)
	require.Contains(t, fn.Chunk.Code, byte(CAST))
}

func TestCompileUndefinedIdentifier(t *testing.T) {
	compileErr(t, `x = 1`)
}

func TestCompileListMapConstructors(t *testing.T) {
	fn := compileOK(t, `
xs := List<int>()
m := Map<int>()`)
	require.Contains(t, fn.Chunk.Code, byte(LIST))
	require.Contains(t, fn.Chunk.Code, byte(MAP))
}
