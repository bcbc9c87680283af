// Package ast defines the tree of typed AST nodes the parser produces and
// the compiler consumes. Node is a closed variant: every concrete node type
// lives in this package and implements the sealed node() method, mirroring
// spec.md §9's "native tagged variant" replacement for inheritance-style
// tagged unions — in Go that sum type is expressed as a small closed
// interface over a fixed set of concrete structs, not one C-style struct
// with a kind tag and a union of every field (grounded on
// mna-nenuphar/lang/ast/ast.go's Node/Expr/Stmt split).
package ast

import "github.com/quillang/quill/lang/token"

// Node is any participant in the AST.
type Node interface {
	Pos() token.Pos
	Walk(v Visitor)
	node()
}

// Decl is a top-level or block-level declaration.
type Decl interface {
	Node
	decl()
}

// Stmt is a statement.
type Stmt interface {
	Node
	stmt()
}

// Expr is an expression.
type Expr interface {
	Node
	expr()
}

// NodeList is an ordered sequence of declarations/statements, used for a
// Block's body and the top-level program (spec.md §3: "NodeList (ordered
// sequence)").
type NodeList struct {
	StartPos token.Pos
	Nodes    []Node
}

func (n *NodeList) Pos() token.Pos { return n.StartPos }
func (n *NodeList) node()          {}
func (n *NodeList) Walk(v Visitor) {
	for _, c := range n.Nodes {
		Walk(v, c)
	}
}

// Sequence groups expressions produced by comma-separated contexts;
// spec.md §3 lists it alongside NodeList as a plain variant.
type Sequence struct {
	StartPos token.Pos
	Exprs    []Expr
}

func (n *Sequence) Pos() token.Pos { return n.StartPos }
func (n *Sequence) node()          {}
func (n *Sequence) expr()          {}
func (n *Sequence) Walk(v Visitor) {
	for _, e := range n.Exprs {
		Walk(v, e)
	}
}
