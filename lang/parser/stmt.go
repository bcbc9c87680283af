package parser

import (
	"github.com/quillang/quill/lang/ast"
	"github.com/quillang/quill/lang/token"
	"github.com/quillang/quill/lang/types"
)

// parseStmt implements the non-declaration alternatives of spec.md §4.2's
// `decl` production: block, if, while, for, foreach (desugared to for),
// when, return and bare expression statements.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.curTok {
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIfElse()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.FOREACH:
		return p.parseForeach()
	case token.WHEN:
		return p.parseWhen()
	case token.RETURN:
		return p.parseReturn()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.curVal.Pos
	body := p.parseBlockBody()
	return &ast.Block{StartPos: start, EndPos: p.prevVal.Pos, Body: body}
}

func (p *Parser) parseIfElse() *ast.IfElse {
	start := p.expect(token.IF).Pos
	cond := p.parseExpr()
	then := p.parseBlock()
	var els ast.Stmt
	if p.curTok == token.ELSE {
		p.advance()
		if p.curTok == token.IF {
			els = p.parseIfElse()
		} else {
			els = p.parseBlock()
		}
	}
	return &ast.IfElse{StartPos: start, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() *ast.While {
	start := p.expect(token.WHILE).Pos
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.While{StartPos: start, Cond: cond, Body: body}
}

// parseFor parses the 3-clause for loop: `for init, cond, post { body }`.
func (p *Parser) parseFor() *ast.For {
	start := p.expect(token.FOR).Pos
	var init ast.Stmt
	if p.curTok == token.IDENT && (p.nextTok == token.COLON || p.nextTok == token.COLONEQ) {
		if p.nextTok == token.COLON {
			init = p.parseVarDecl()
		} else {
			init = p.parseVarDeclInfer()
		}
	} else if p.curTok != token.COMMA {
		init = p.parseExprStmt()
	}
	p.expect(token.COMMA)
	cond := p.parseExpr()
	p.expect(token.COMMA)
	post := p.parseExprStmt()
	body := p.parseBlock()
	return &ast.For{StartPos: start, Init: init, Cond: cond, Post: post, Body: body}
}

// parseForeach desugars `foreach e in xs { body }` into the equivalent
// 3-clause for loop at parse time, per spec.md §4.2:
//
//	for _idx_:int = 0, _idx_ < xs.size, _idx_ = _idx_+1 { e := xs[_idx_]; body }
//
// the synthesized `_idx_` token uses line -1.
func (p *Parser) parseForeach() *ast.For {
	start := p.expect(token.FOREACH).Pos
	elemName := p.expect(token.IDENT)
	p.expect(token.IN)
	xs := p.parseExpr()
	body := p.parseBlock()

	idx := token.Value{Raw: "_idx_", Pos: token.MakePos(-1, 1)}

	initDecl := &ast.DeclVar{StartPos: idx.Pos, Name: idx, Type: types.Int, Init: &ast.Literal{Tok: token.INT, Value: token.Value{Int: 0, Pos: idx.Pos}}}
	cond := &ast.Binary{
		Op:    token.LT,
		Left:  &ast.GetVar{Name: idx},
		Right: &ast.GetProp{Obj: xs, Name: token.Value{Raw: "size", Pos: idx.Pos}},
	}
	post := &ast.ExprStmt{X: &ast.SetVar{
		Name: idx,
		Value: &ast.Binary{
			Op:    token.PLUS,
			Left:  &ast.GetVar{Name: idx},
			Right: &ast.Literal{Tok: token.INT, Value: token.Value{Int: 1, Pos: idx.Pos}},
		},
	}}

	elemDecl := &ast.DeclVar{
		StartPos: elemName.Pos,
		Name:     elemName,
		Infer:    true,
		Init:     &ast.GetElement{Collection: xs, Index: &ast.GetVar{Name: idx}},
	}
	bodyList := &ast.NodeList{StartPos: body.StartPos}
	bodyList.Nodes = append(bodyList.Nodes, elemDecl)
	bodyList.Nodes = append(bodyList.Nodes, body.Body.Nodes...)
	wrappedBody := &ast.Block{StartPos: body.StartPos, EndPos: body.EndPos, Body: bodyList}

	return &ast.For{StartPos: start, Init: initDecl, Cond: cond, Post: post, Body: wrappedBody}
}

func (p *Parser) parseWhen() *ast.When {
	start := p.expect(token.WHEN).Pos
	subject := p.parseExpr()
	p.expect(token.LBRACE)
	w := &ast.When{StartPos: start, Subject: subject}
	for p.curTok == token.IS {
		p.advance()
		val := p.parseExpr()
		body := p.parseBlock()
		w.Cases = append(w.Cases, ast.WhenCase{Value: val, Body: body})
	}
	if p.curTok == token.ELSE {
		p.advance()
		w.Default = p.parseBlock()
	}
	p.expect(token.RBRACE)
	return w
}

func (p *Parser) parseReturn() *ast.Return {
	start := p.expect(token.RETURN).Pos
	var result ast.Expr
	if p.curTok != token.RBRACE && p.curTok != token.EOF {
		result = p.parseExpr()
	}
	return &ast.Return{StartPos: start, Result: result}
}

func (p *Parser) parseExprStmt() *ast.ExprStmt {
	start := p.curVal.Pos
	x := p.parseExpr()
	return &ast.ExprStmt{StartPos: start, X: x}
}
