package parser

import (
	"github.com/quillang/quill/lang/ast"
	"github.com/quillang/quill/lang/token"
	"github.com/quillang/quill/lang/types"
)

// parseDecl implements spec.md §4.2's `decl` production, using the
// four-token lookahead window to pick between a variable declaration, a
// `::`-introduced function/struct/enum declaration and a plain statement.
func (p *Parser) parseDecl() ast.Node {
	if p.curTok == token.IDENT {
		switch p.nextTok {
		case token.COLON:
			return p.parseVarDecl()
		case token.COLONEQ:
			return p.parseVarDeclInfer()
		case token.COLONCOLON:
			return p.parseDoubleColonDecl()
		}
	}
	return p.parseStmt()
}

func (p *Parser) parseVarDecl() *ast.DeclVar {
	start := p.curVal.Pos
	name := p.expect(token.IDENT)
	p.expect(token.COLON)
	typ := p.parseType()
	p.expect(token.EQ)
	init := p.parseExpr()
	return &ast.DeclVar{StartPos: start, Name: name, Type: typ, Init: init}
}

func (p *Parser) parseVarDeclInfer() *ast.DeclVar {
	start := p.curVal.Pos
	name := p.expect(token.IDENT)
	p.expect(token.COLONEQ)
	init := p.parseExpr()
	return &ast.DeclVar{StartPos: start, Name: name, Infer: true, Init: init}
}

// parseDoubleColonDecl handles `name :: struct ...`, `name :: enum ...` and
// `name :: (params) -> returns { body }` (a named function).
func (p *Parser) parseDoubleColonDecl() ast.Node {
	start := p.curVal.Pos
	name := p.expect(token.IDENT)
	p.expect(token.COLONCOLON)

	switch p.curTok {
	case token.STRUCT:
		return p.parseDeclStruct(start, name)
	case token.ENUM:
		return p.parseDeclEnum(start, name)
	case token.LPAREN:
		return p.parseDeclFun(start, name)
	default:
		p.errorf(p.curVal.Pos, "expected struct, enum or function literal, got %s", p.curTok.GoString())
		panic(errPanicMode)
	}
}

func (p *Parser) parseDeclStruct(start token.Pos, name token.Value) *ast.DeclStruct {
	p.expect(token.STRUCT)
	var super token.Value
	if p.curTok == token.LT {
		p.advance()
		super = p.expect(token.IDENT)
	}
	fields := p.parseContainerBody(false)
	return &ast.DeclStruct{StartPos: start, Name: name, Super: super, Fields: fields}
}

func (p *Parser) parseDeclEnum(start token.Pos, name token.Value) *ast.DeclEnum {
	p.expect(token.ENUM)
	members := p.parseContainerBody(true)
	return &ast.DeclEnum{StartPos: start, Name: name, Members: members}
}

// parseContainerBody parses the shared `{ member* }` body used by struct
// fields and enum variants (spec.md §3's DeclContainer). Enum members have
// no declared type; struct fields require one.
func (p *Parser) parseContainerBody(isEnum bool) *ast.DeclContainer {
	start := p.curVal.Pos
	p.expect(token.LBRACE)
	c := &ast.DeclContainer{StartPos: start}
	for p.curTok != token.RBRACE && p.curTok != token.EOF {
		entryName := p.expect(token.IDENT)
		var entry ast.ContainerEntry
		entry.Name = entryName
		if !isEnum {
			p.expect(token.COLON)
			entry.Type = p.parseType()
		}
		if p.curTok == token.EQ {
			p.advance()
			entry.Default = p.parseExpr()
		}
		c.Entries = append(c.Entries, entry)
		if p.curTok == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return c
}

func (p *Parser) parseDeclFun(start token.Pos, name token.Value) *ast.DeclFun {
	params := p.parseParams()
	rets := p.parseReturns()
	body := p.parseBlockBody()
	return &ast.DeclFun{StartPos: start, Name: name, Params: params, Returns: rets, Body: body}
}

func (p *Parser) parseParams() []ast.Param {
	p.expect(token.LPAREN)
	var params []ast.Param
	for p.curTok != token.RPAREN {
		pname := p.expect(token.IDENT)
		p.expect(token.COLON)
		ptyp := p.parseType()
		params = append(params, ast.Param{Name: pname, Type: ptyp})
		if p.curTok != token.COMMA {
			break
		}
		p.advance()
	}
	p.expect(token.RPAREN)
	return params
}

// parseReturns parses the optional `-> type (, type)*` return-type list.
func (p *Parser) parseReturns() []*types.Type {
	if p.curTok != token.ARROW {
		return nil
	}
	p.advance()
	var rets []*types.Type
	rets = append(rets, p.parseType())
	for p.curTok == token.COMMA {
		p.advance()
		rets = append(rets, p.parseType())
	}
	return rets
}

func (p *Parser) parseBlockBody() *ast.NodeList {
	start := p.curVal.Pos
	p.expect(token.LBRACE)
	list := &ast.NodeList{StartPos: start}
	for p.curTok != token.RBRACE && p.curTok != token.EOF {
		if n := p.parseDeclSync(); n != nil {
			list.Nodes = append(list.Nodes, n)
		}
	}
	p.expect(token.RBRACE)
	return list
}
