package parser

import (
	"github.com/quillang/quill/lang/object"
	"github.com/quillang/quill/lang/token"
	"github.com/quillang/quill/lang/types"
)

// intern returns a shared *object.String for s, deduped within this parse
// (not the VM's runtime intern table, which does not exist yet at parse
// time — the compiler re-interns name strings against the real table when
// it lowers these types to runtime Tables; see DESIGN.md).
func (p *Parser) intern(s string) *object.String {
	if v, ok := p.interned[s]; ok {
		return v
	}
	str := object.NewString([]byte(s))
	p.interned[s] = str
	return str
}

// parseType implements spec.md §4.2's `type` production: primitives,
// List<T>/Map<T> generics, function arrow types and bare identifiers
// (resolved by the compiler against enclosing struct/enum declarations).
func (p *Parser) parseType() *types.Type {
	switch p.curTok {
	case token.INT_KW:
		p.advance()
		return types.Int
	case token.FLOAT_KW:
		p.advance()
		return types.Float
	case token.BOOL:
		p.advance()
		return types.Bool
	case token.BYTE:
		p.advance()
		return types.Byte
	case token.STRING_KW:
		p.advance()
		return types.String
	case token.NIL:
		p.advance()
		return types.Nil
	case token.FILE_KW:
		p.advance()
		return types.File
	case token.LIST:
		p.advance()
		p.expect(token.LT)
		elem := p.parseType()
		p.expect(token.GT)
		return types.NewList(elem)
	case token.MAP:
		p.advance()
		p.expect(token.LT)
		val := p.parseType()
		p.expect(token.GT)
		return types.NewMap(val)
	case token.LPAREN:
		p.advance()
		var params []*types.Type
		for p.curTok != token.RPAREN {
			params = append(params, p.parseType())
			if p.curTok != token.COMMA {
				break
			}
			p.advance()
		}
		p.expect(token.RPAREN)
		p.expect(token.ARROW)
		ret := p.parseType()
		return types.NewFun(params, []*types.Type{ret})
	case token.IDENT:
		name := p.curVal
		p.advance()
		return types.NewIdentifier(p.intern(name.Raw))
	default:
		p.errorf(p.curVal.Pos, "expected a type, got %s", p.curTok.GoString())
		panic(errPanicMode)
	}
}
