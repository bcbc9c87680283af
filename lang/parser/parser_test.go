package parser

import (
	"testing"

	"github.com/quillang/quill/lang/ast"
	"github.com/quillang/quill/lang/token"
	"github.com/quillang/quill/lang/types"
	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, src string) *ast.NodeList {
	t.Helper()
	p := New([]byte(src))
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	return prog
}

func TestParseVarDeclTyped(t *testing.T) {
	prog := parseOK(t, `x: int = 1`)
	require.Len(t, prog.Nodes, 1)
	decl := prog.Nodes[0].(*ast.DeclVar)
	require.Equal(t, "x", decl.Name.Raw)
	require.False(t, decl.Infer)
	require.True(t, types.SameType(types.Int, decl.Type))
}

func TestParseVarDeclInfer(t *testing.T) {
	prog := parseOK(t, `x := 1`)
	decl := prog.Nodes[0].(*ast.DeclVar)
	require.True(t, decl.Infer)
	require.Nil(t, decl.Type)
}

func TestParseStructDecl(t *testing.T) {
	prog := parseOK(t, `
Point :: struct {
	x: int,
	y: int = 0,
}`)
	decl := prog.Nodes[0].(*ast.DeclStruct)
	require.Equal(t, "Point", decl.Name.Raw)
	require.Len(t, decl.Fields.Entries, 2)
	require.Equal(t, "x", decl.Fields.Entries[0].Name.Raw)
	require.NotNil(t, decl.Fields.Entries[1].Default)
}

func TestParseStructDeclWithSuper(t *testing.T) {
	prog := parseOK(t, `
Shape :: struct {
	name: string,
}
Circle :: struct < Shape {
	r: float,
}`)
	circle := prog.Nodes[1].(*ast.DeclStruct)
	require.Equal(t, "Shape", circle.Super.Raw)
}

func TestParseEnumDecl(t *testing.T) {
	prog := parseOK(t, `
Color :: enum {
	Red,
	Green,
	Blue,
}`)
	decl := prog.Nodes[0].(*ast.DeclEnum)
	require.Len(t, decl.Members.Entries, 3)
	require.Nil(t, decl.Members.Entries[0].Type)
}

func TestParseFunDecl(t *testing.T) {
	prog := parseOK(t, `
add :: (a: int, b: int) -> int {
	return a + b
}`)
	decl := prog.Nodes[0].(*ast.DeclFun)
	require.Equal(t, "add", decl.Name.Raw)
	require.Len(t, decl.Params, 2)
	require.Len(t, decl.Returns, 1)
	require.Len(t, decl.Body.Nodes, 1)
	ret := decl.Body.Nodes[0].(*ast.Return)
	bin := ret.Result.(*ast.Binary)
	require.Equal(t, token.PLUS, bin.Op)
}

func TestParseIfElseChain(t *testing.T) {
	prog := parseOK(t, `
if x < 1 {
	y := 1
} else if x < 2 {
	y := 2
} else {
	y := 3
}`)
	ifElse := prog.Nodes[0].(*ast.IfElse)
	require.NotNil(t, ifElse.Then)
	elseIf, ok := ifElse.Else.(*ast.IfElse)
	require.True(t, ok)
	require.NotNil(t, elseIf.Else)
	_, ok = elseIf.Else.(*ast.Block)
	require.True(t, ok)
}

func TestParseWhile(t *testing.T) {
	prog := parseOK(t, `
while x < 10 {
	x = x + 1
}`)
	w := prog.Nodes[0].(*ast.While)
	require.NotNil(t, w.Cond)
	require.Len(t, w.Body.Body.Nodes, 1)
}

func TestParseForThreeClause(t *testing.T) {
	prog := parseOK(t, `
for i := 0, i < 10, i = i + 1 {
	x := i
}`)
	f := prog.Nodes[0].(*ast.For)
	initDecl := f.Init.(*ast.DeclVar)
	require.True(t, initDecl.Infer)
	require.NotNil(t, f.Cond)
	require.NotNil(t, f.Post)
}

func TestParseForeachDesugarsToFor(t *testing.T) {
	prog := parseOK(t, `
foreach e in xs {
	print(e)
}`)
	f := prog.Nodes[0].(*ast.For)

	initDecl := f.Init.(*ast.DeclVar)
	require.Equal(t, "_idx_", initDecl.Name.Raw)
	require.Equal(t, -1, func() int { l, _ := initDecl.Name.Pos.LineCol(); return l }())
	require.True(t, types.SameType(types.Int, initDecl.Type))

	cond := f.Cond.(*ast.Binary)
	require.Equal(t, token.LT, cond.Op)
	require.Equal(t, "_idx_", cond.Left.(*ast.GetVar).Name.Raw)
	prop := cond.Right.(*ast.GetProp)
	require.Equal(t, "size", prop.Name.Raw)

	post := f.Post.(*ast.ExprStmt).X.(*ast.SetVar)
	require.Equal(t, "_idx_", post.Name.Raw)

	require.Len(t, f.Body.Body.Nodes, 2)
	elemDecl := f.Body.Body.Nodes[0].(*ast.DeclVar)
	require.Equal(t, "e", elemDecl.Name.Raw)
	require.True(t, elemDecl.Infer)
	getElem := elemDecl.Init.(*ast.GetElement)
	require.Equal(t, "_idx_", getElem.Index.(*ast.GetVar).Name.Raw)
}

func TestParseWhenIsElse(t *testing.T) {
	prog := parseOK(t, `
when c {
	is 1 {
		x := 1
	}
	is 2 {
		x := 2
	}
	else {
		x := 3
	}
}`)
	w := prog.Nodes[0].(*ast.When)
	require.Len(t, w.Cases, 2)
	require.NotNil(t, w.Default)
}

func TestParseReturnBareAndWithValue(t *testing.T) {
	prog := parseOK(t, `
f :: () -> int {
	return
}`)
	decl := prog.Nodes[0].(*ast.DeclFun)
	ret := decl.Body.Nodes[0].(*ast.Return)
	require.Nil(t, ret.Result)
}

func TestParseExprPrecedence(t *testing.T) {
	prog := parseOK(t, `x := 1 + 2 * 3`)
	decl := prog.Nodes[0].(*ast.DeclVar)
	bin := decl.Init.(*ast.Binary)
	require.Equal(t, token.PLUS, bin.Op)
	rhs := bin.Right.(*ast.Binary)
	require.Equal(t, token.STAR, rhs.Op)
}

func TestParseExprComparisonAndLogical(t *testing.T) {
	prog := parseOK(t, `x := a < b and c > d or e == f`)
	decl := prog.Nodes[0].(*ast.DeclVar)
	top := decl.Init.(*ast.Logical)
	require.Equal(t, token.OR, top.Op)
	left := top.Left.(*ast.Logical)
	require.Equal(t, token.AND, left.Op)
}

func TestParseAssignmentTargets(t *testing.T) {
	prog := parseOK(t, `
x = 1
obj.field = 2
arr[0] = 3`)
	_, ok := prog.Nodes[0].(*ast.ExprStmt).X.(*ast.SetVar)
	require.True(t, ok)
	_, ok = prog.Nodes[1].(*ast.ExprStmt).X.(*ast.SetProp)
	require.True(t, ok)
	_, ok = prog.Nodes[2].(*ast.ExprStmt).X.(*ast.SetElement)
	require.True(t, ok)
}

func TestParseFunLiteral(t *testing.T) {
	prog := parseOK(t, `x := (n: int) -> int { return n }`)
	decl := prog.Nodes[0].(*ast.DeclVar)
	fn := decl.Init.(*ast.DeclFun)
	require.Len(t, fn.Params, 1)
	require.Equal(t, "n", fn.Params[0].Name.Raw)
}

func TestParseFunLiteralNoParamsArrow(t *testing.T) {
	prog := parseOK(t, `x := () -> int { return 1 }`)
	decl := prog.Nodes[0].(*ast.DeclVar)
	_, ok := decl.Init.(*ast.DeclFun)
	require.True(t, ok)
}

func TestParseParenExprNotFunLiteral(t *testing.T) {
	prog := parseOK(t, `x := (1 + 2) * 3`)
	decl := prog.Nodes[0].(*ast.DeclVar)
	bin := decl.Init.(*ast.Binary)
	require.Equal(t, token.STAR, bin.Op)
	_, ok := bin.Left.(*ast.Binary)
	require.True(t, ok)
}

func TestParseCast(t *testing.T) {
	prog := parseOK(t, `x := y as float`)
	decl := prog.Nodes[0].(*ast.DeclVar)
	cast := decl.Init.(*ast.Cast)
	require.True(t, types.SameType(types.Float, cast.Type))
}

func TestParseListAndMapType(t *testing.T) {
	prog := parseOK(t, `
xs: List<int> = ys
m: Map<string> = zs`)
	xs := prog.Nodes[0].(*ast.DeclVar)
	require.Equal(t, types.KList, xs.Type.Kind)
	require.True(t, types.SameType(types.Int, xs.Type.Element))

	m := prog.Nodes[1].(*ast.DeclVar)
	require.Equal(t, types.KMap, m.Type.Kind)
	require.True(t, types.SameType(types.String, m.Type.Value))
}

func TestParseCallAndIndex(t *testing.T) {
	prog := parseOK(t, `x := f(1, 2)[0]`)
	decl := prog.Nodes[0].(*ast.DeclVar)
	idx := decl.Init.(*ast.GetElement)
	call := idx.Collection.(*ast.Call)
	require.Len(t, call.Args, 2)
}

func TestParseErrorSynchronizationRecoversNextStmt(t *testing.T) {
	p := New([]byte(`
x: int = @@@
if x < 1 {
	y := 1
}`))
	prog, err := p.ParseProgram()
	require.Error(t, err)
	found := false
	for _, n := range prog.Nodes {
		if _, ok := n.(*ast.IfElse); ok {
			found = true
		}
	}
	require.True(t, found, "parser should resynchronize at the following if statement")
}
