package parser

import (
	"github.com/quillang/quill/lang/ast"
	"github.com/quillang/quill/lang/token"
)

// parseExpr implements spec.md §4.2's `expr := assignment` entry point.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

// assignment := or ( '=' expr )?
func (p *Parser) parseAssignment() ast.Expr {
	left := p.parseOr()
	if p.curTok != token.EQ {
		return left
	}
	p.advance()
	value := p.parseExpr()
	switch l := left.(type) {
	case *ast.GetVar:
		return &ast.SetVar{Name: l.Name, Value: value}
	case *ast.GetProp:
		return &ast.SetProp{Obj: l.Obj, Name: l.Name, Value: value}
	case *ast.GetElement:
		return &ast.SetElement{Collection: l.Collection, Index: l.Index, Value: value}
	default:
		p.errorf(left.Pos(), "invalid assignment target")
		panic(errPanicMode)
	}
}

// or := and ( 'or' and )*
func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.curTok == token.OR {
		op := p.curTok
		p.advance()
		right := p.parseAnd()
		left = &ast.Logical{Op: op, Left: left, Right: right}
	}
	return left
}

// and := equality ( 'and' equality )*
func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.curTok == token.AND {
		op := p.curTok
		p.advance()
		right := p.parseEquality()
		left = &ast.Logical{Op: op, Left: left, Right: right}
	}
	return left
}

// equality := relation ( ('=='|'!='|'in') relation )*
func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelation()
	for p.curTok == token.EQEQ || p.curTok == token.NEQ || p.curTok == token.IN {
		op := p.curTok
		opPos := p.curVal.Pos
		p.advance()
		right := p.parseRelation()
		left = &ast.Binary{Op: op, OpPos: opPos, Left: left, Right: right}
	}
	return left
}

// relation := term ( ('<'|'<='|'>'|'>=') term )*
func (p *Parser) parseRelation() ast.Expr {
	left := p.parseTerm()
	for p.curTok == token.LT || p.curTok == token.LE || p.curTok == token.GT || p.curTok == token.GE {
		op := p.curTok
		opPos := p.curVal.Pos
		p.advance()
		right := p.parseTerm()
		left = &ast.Binary{Op: op, OpPos: opPos, Left: left, Right: right}
	}
	return left
}

// term := factor ( ('+'|'-') factor )*
func (p *Parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for p.curTok == token.PLUS || p.curTok == token.MINUS {
		op := p.curTok
		opPos := p.curVal.Pos
		p.advance()
		right := p.parseFactor()
		left = &ast.Binary{Op: op, OpPos: opPos, Left: left, Right: right}
	}
	return left
}

// factor := unary ( ('*'|'/'|'%') unary )*
func (p *Parser) parseFactor() ast.Expr {
	left := p.parseUnary()
	for p.curTok == token.STAR || p.curTok == token.SLASH || p.curTok == token.PERCENT {
		op := p.curTok
		opPos := p.curVal.Pos
		p.advance()
		right := p.parseUnary()
		left = &ast.Binary{Op: op, OpPos: opPos, Left: left, Right: right}
	}
	return left
}

// unary := ('-'|'!')? call
func (p *Parser) parseUnary() ast.Expr {
	if p.curTok == token.MINUS || p.curTok == token.BANG {
		op := p.curTok
		opPos := p.curVal.Pos
		p.advance()
		x := p.parseUnary()
		return &ast.Unary{Op: op, OpPos: opPos, X: x}
	}
	return p.parseCall()
}

// call := primary ( '.' IDENT | '(' args ')' | '[' expr ']' )* ( 'as' type )?
func (p *Parser) parseCall() ast.Expr {
	start := p.curVal.Pos
	x := p.parsePrimary()
	for {
		switch p.curTok {
		case token.DOT:
			p.advance()
			name := p.expect(token.IDENT)
			x = &ast.GetProp{Obj: x, Name: name}
		case token.LPAREN:
			p.advance()
			var args []ast.Expr
			for p.curTok != token.RPAREN {
				args = append(args, p.parseExpr())
				if p.curTok != token.COMMA {
					break
				}
				p.advance()
			}
			end := p.expect(token.RPAREN)
			x = &ast.Call{StartPos: start, Callee: x, Args: args, EndPos: end.Pos}
		case token.LBRACK:
			p.advance()
			x = p.parseIndexOrSlice(x)
		default:
			if p.curTok == token.AS {
				p.advance()
				typ := p.parseType()
				x = &ast.Cast{X: x, Type: typ}
				continue
			}
			return x
		}
	}
}

// parseIndexOrSlice parses the remainder of `collection[` once '[' has been
// consumed, producing GetElement for `[i]` or SliceString for `[lo:hi]`
// (SliceString is parsed but rejected by the compiler; see DESIGN.md).
func (p *Parser) parseIndexOrSlice(collection ast.Expr) ast.Expr {
	var lo ast.Expr
	if p.curTok != token.COLON {
		lo = p.parseExpr()
	}
	if p.curTok == token.COLON {
		p.advance()
		var hi ast.Expr
		if p.curTok != token.RBRACK {
			hi = p.parseExpr()
		}
		p.expect(token.RBRACK)
		return &ast.SliceString{Str: collection, Lo: lo, Hi: hi}
	}
	p.expect(token.RBRACK)
	return &ast.GetElement{Collection: collection, Index: lo}
}

// primary := literal | IDENT | 'nil' | '(' expr ')' | funLiteral | structLiteral
func (p *Parser) parsePrimary() ast.Expr {
	switch p.curTok {
	case token.INT, token.FLOAT, token.STRING:
		v := p.curVal
		tok := p.curTok
		p.advance()
		return &ast.Literal{Tok: tok, Value: v}
	case token.TRUE, token.FALSE:
		v := p.curVal
		tok := p.curTok
		p.advance()
		return &ast.Literal{Tok: tok, Value: v}
	case token.NIL:
		pos := p.curVal.Pos
		p.advance()
		return &ast.Nil{TokPos: pos}
	case token.IDENT:
		v := p.curVal
		p.advance()
		return &ast.GetVar{Name: v}
	case token.LPAREN:
		if p.isFunLiteralStart() {
			return p.parseFunLiteral()
		}
		p.advance()
		x := p.parseExpr()
		p.expect(token.RPAREN)
		return x
	case token.LIST, token.MAP:
		return p.parseCollCtor()
	default:
		p.errorf(p.curVal.Pos, "unexpected token %s", p.curTok.GoString())
		panic(errPanicMode)
	}
}

// parseCollCtor parses `List<type>()` / `Map<type>()`, the zero-argument
// constructor call spec.md §4.4 describes as "a List<T> or Map<V> literal
// expression" emitting LIST/MAP. `List`/`Map` are type syntax, not
// expressions, so the resulting Call carries CollType instead of a Callee.
func (p *Parser) parseCollCtor() *ast.Call {
	start := p.curVal.Pos
	typ := p.parseType()
	p.expect(token.LPAREN)
	end := p.expect(token.RPAREN)
	return &ast.Call{StartPos: start, EndPos: end.Pos, CollType: typ}
}

// isFunLiteralStart implements spec.md §4.2's disambiguation rule: "( IDENT
// COLON" or "( )" followed by "->" starts a function literal, using only
// the four-token lookahead window (curTok is always LPAREN here).
func (p *Parser) isFunLiteralStart() bool {
	if p.nextTok == token.IDENT && p.next2Tok == token.COLON {
		return true
	}
	return p.nextTok == token.RPAREN && p.next2Tok == token.ARROW
}

func (p *Parser) parseFunLiteral() *ast.DeclFun {
	start := p.curVal.Pos
	params := p.parseParams()
	rets := p.parseReturns()
	body := p.parseBlockBody()
	return &ast.DeclFun{StartPos: start, Params: params, Returns: rets, Body: body}
}
