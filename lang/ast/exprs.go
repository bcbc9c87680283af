package ast

import (
	"github.com/quillang/quill/lang/token"
	"github.com/quillang/quill/lang/types"
)

// Literal is an Int, Float, String, Byte or Bool constant.
type Literal struct {
	Tok   token.Token // INT, FLOAT, STRING, BYTE, TRUE or FALSE
	Value token.Value
}

func (n *Literal) Pos() token.Pos { return n.Value.Pos }
func (n *Literal) node()          {}
func (n *Literal) expr()          {}
func (n *Literal) Walk(v Visitor) {}

// Nil is the `nil` literal.
type Nil struct {
	TokPos token.Pos
}

func (n *Nil) Pos() token.Pos { return n.TokPos }
func (n *Nil) node()          {}
func (n *Nil) expr()          {}
func (n *Nil) Walk(v Visitor) {}

// Unary is `-x` or `!x`.
type Unary struct {
	Op    token.Token
	OpPos token.Pos
	X     Expr
}

func (n *Unary) Pos() token.Pos { return n.OpPos }
func (n *Unary) node()          {}
func (n *Unary) expr()          {}
func (n *Unary) Walk(v Visitor) { Walk(v, n.X) }

// Binary is an arithmetic, comparison or `in` binary expression.
type Binary struct {
	Op    token.Token
	OpPos token.Pos
	Left  Expr
	Right Expr
}

func (n *Binary) Pos() token.Pos { return n.Left.Pos() }
func (n *Binary) node()          {}
func (n *Binary) expr()          {}
func (n *Binary) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

// Logical is `and`/`or`, kept distinct from Binary because it short-circuits
// at compile time via jump patching rather than an opcode.
type Logical struct {
	Op    token.Token
	OpPos token.Pos
	Left  Expr
	Right Expr
}

func (n *Logical) Pos() token.Pos { return n.Left.Pos() }
func (n *Logical) node()          {}
func (n *Logical) expr()          {}
func (n *Logical) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

// GetVar is a bare identifier reference, resolved by the compiler to a
// local slot, an upvalue or a global.
type GetVar struct {
	Name token.Value
}

func (n *GetVar) Pos() token.Pos { return n.Name.Pos }
func (n *GetVar) node()          {}
func (n *GetVar) expr()          {}
func (n *GetVar) Walk(v Visitor) {}

// SetVar is `name = value`.
type SetVar struct {
	Name  token.Value
	Value Expr
}

func (n *SetVar) Pos() token.Pos { return n.Name.Pos }
func (n *SetVar) node()          {}
func (n *SetVar) expr()          {}
func (n *SetVar) Walk(v Visitor) { Walk(v, n.Value) }

// GetProp is `obj.name`.
type GetProp struct {
	Obj  Expr
	Name token.Value
}

func (n *GetProp) Pos() token.Pos { return n.Obj.Pos() }
func (n *GetProp) node()          {}
func (n *GetProp) expr()          {}
func (n *GetProp) Walk(v Visitor) { Walk(v, n.Obj) }

// SetProp is `obj.name = value`.
type SetProp struct {
	Obj   Expr
	Name  token.Value
	Value Expr
}

func (n *SetProp) Pos() token.Pos { return n.Obj.Pos() }
func (n *SetProp) node()          {}
func (n *SetProp) expr()          {}
func (n *SetProp) Walk(v Visitor) {
	Walk(v, n.Obj)
	Walk(v, n.Value)
}

// GetElement is `collection[index]`.
type GetElement struct {
	Collection Expr
	Index      Expr
}

func (n *GetElement) Pos() token.Pos { return n.Collection.Pos() }
func (n *GetElement) node()          {}
func (n *GetElement) expr()          {}
func (n *GetElement) Walk(v Visitor) {
	Walk(v, n.Collection)
	Walk(v, n.Index)
}

// SetElement is `collection[index] = value`.
type SetElement struct {
	Collection Expr
	Index      Expr
	Value      Expr
}

func (n *SetElement) Pos() token.Pos { return n.Collection.Pos() }
func (n *SetElement) node()          {}
func (n *SetElement) expr()          {}
func (n *SetElement) Walk(v Visitor) {
	Walk(v, n.Collection)
	Walk(v, n.Index)
	Walk(v, n.Value)
}

// SliceString is `s[lo:hi]`. Parsed but rejected at compile time (spec.md
// §9 open question resolution recorded in SPEC_FULL.md §4: no byte-slicing
// opcode is specified, so the compiler reports it as unsupported rather
// than silently miscompiling).
type SliceString struct {
	Str Expr
	Lo  Expr // may be nil
	Hi  Expr // may be nil
}

func (n *SliceString) Pos() token.Pos { return n.Str.Pos() }
func (n *SliceString) node()          {}
func (n *SliceString) expr()          {}
func (n *SliceString) Walk(v Visitor) {
	Walk(v, n.Str)
	if n.Lo != nil {
		Walk(v, n.Lo)
	}
	if n.Hi != nil {
		Walk(v, n.Hi)
	}
}

// Call is `callee(args)`, or a collection-constructor call `List<T>()` /
// `Map<T>()` when CollType is non-nil (spec.md §4.4: "On a List<T> or
// Map<V> literal expression, emits LIST/MAP with zero arguments"); Callee
// is nil in that case since `List`/`Map` are type syntax, not expressions.
type Call struct {
	StartPos token.Pos
	Callee   Expr // nil when CollType != nil
	Args     []Expr
	EndPos   token.Pos
	CollType *types.Type // non-nil for List<T>()/Map<T>() constructor calls
}

func (n *Call) Pos() token.Pos { return n.StartPos }
func (n *Call) node()          {}
func (n *Call) expr()          {}
func (n *Call) Walk(v Visitor) {
	if n.Callee != nil {
		Walk(v, n.Callee)
	}
	for _, a := range n.Args {
		Walk(v, a)
	}
}

// Cast is an explicit `expr as type` conversion.
type Cast struct {
	X    Expr
	Type *types.Type
}

func (n *Cast) Pos() token.Pos { return n.X.Pos() }
func (n *Cast) node()          {}
func (n *Cast) expr()          {}
func (n *Cast) Walk(v Visitor) { Walk(v, n.X) }
