package ast

import (
	"github.com/quillang/quill/lang/token"
	"github.com/quillang/quill/lang/types"
)

// ContainerEntry is one member of a DeclContainer: a name, its declared
// type (nil when inferred or, for enum members, simply absent) and an
// optional default-value initializer.
type ContainerEntry struct {
	Name    token.Value
	Type    *types.Type // nil if omitted (enum members have no declared type)
	Default Expr        // nil if omitted
}

// DeclContainer is the shared ordered member list backing both DeclStruct's
// fields and DeclEnum's variants, so the two don't duplicate member-parsing
// and member-walking logic (spec.md §3 lists DeclContainer as its own
// variant without describing its shape; this is the grounding decision
// recorded in DESIGN.md).
type DeclContainer struct {
	StartPos token.Pos
	Entries  []ContainerEntry
}

func (n *DeclContainer) Pos() token.Pos { return n.StartPos }
func (n *DeclContainer) node()          {}
func (n *DeclContainer) decl()          {}
func (n *DeclContainer) Walk(v Visitor) {
	for _, e := range n.Entries {
		if e.Default != nil {
			Walk(v, e.Default)
		}
	}
}

// DeclVar is `name : type = init` (or `name := init`, Infer true and Type
// nil, filled in by the compiler from Init's compiled type), spec.md
// §4.2's varDecl production. Type is built directly by the parser (per
// spec.md §2's dependency order, Type precedes Token/Lexer/AST/Parser):
// primitive and generic forms resolve immediately, struct/enum names
// become a types.KIdentifier the compiler resolves at first use.
type DeclVar struct {
	StartPos token.Pos
	Name     token.Value
	Type     *types.Type // nil for `:=`
	Infer    bool
	Init     Expr
}

func (n *DeclVar) Pos() token.Pos { return n.StartPos }
func (n *DeclVar) node()          {}
func (n *DeclVar) decl()          {}
func (n *DeclVar) stmt()          {}
func (n *DeclVar) Walk(v Visitor) {
	if n.Init != nil {
		Walk(v, n.Init)
	}
}

// Param is one function parameter: `name : type`.
type Param struct {
	Name token.Value
	Type *types.Type
}

// DeclFun is a function literal or named function declaration:
// `name :: (params) -> returns { body }`.
type DeclFun struct {
	StartPos token.Pos
	Name     token.Value // zero Value (empty Raw) for anonymous function literals
	Params   []Param
	Returns  []*types.Type
	Body     *NodeList
}

func (n *DeclFun) Pos() token.Pos { return n.StartPos }
func (n *DeclFun) node()          {}
func (n *DeclFun) decl()          {}
func (n *DeclFun) stmt()          {}
func (n *DeclFun) expr()          {}
func (n *DeclFun) Walk(v Visitor) { Walk(v, n.Body) }

// DeclStruct is `name :: struct<super> { fields }`.
type DeclStruct struct {
	StartPos token.Pos
	Name     token.Value
	Super    token.Value // zero Value if no superclass named
	Fields   *DeclContainer
}

func (n *DeclStruct) Pos() token.Pos { return n.StartPos }
func (n *DeclStruct) node()          {}
func (n *DeclStruct) decl()          {}
func (n *DeclStruct) stmt()          {}
func (n *DeclStruct) Walk(v Visitor) { Walk(v, n.Fields) }

// DeclEnum is `name :: enum { variants }`.
type DeclEnum struct {
	StartPos token.Pos
	Name     token.Value
	Members  *DeclContainer
}

func (n *DeclEnum) Pos() token.Pos { return n.StartPos }
func (n *DeclEnum) node()          {}
func (n *DeclEnum) decl()          {}
func (n *DeclEnum) stmt()          {}
func (n *DeclEnum) Walk(v Visitor) { Walk(v, n.Members) }
