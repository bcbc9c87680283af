// Package parser implements Quill's recursive-descent parser: source bytes
// in, a typed *ast.NodeList out. Error recovery follows the teacher's
// panic/recover-at-statement-boundary idiom (mna-nenuphar/lang/parser/
// parser.go's errPanicMode + chunk.go's parseStmt recover), adapted to
// spec.md §4.2's four-token lookahead window and its own synchronization
// rule instead of the teacher's BadStmt-producing one.
package parser

import (
	"fmt"

	"github.com/quillang/quill/lang/ast"
	"github.com/quillang/quill/lang/object"
	"github.com/quillang/quill/lang/scanner"
	"github.com/quillang/quill/lang/token"
)

// errPanicMode unwinds to the nearest recover point after a syntax error
// has already been recorded.
type panicMode struct{}

var errPanicMode = panicMode{}

// Parser turns a token stream into an AST. It keeps a four-token lookahead
// window (previous, current, next, next_next) to disambiguate productions
// that share a prefix (spec.md §4.2: "IDENT COLON begins a variable
// declaration; IDENT COLON COLON starts a constant/struct; ( IDENT COLON
// or ( ) followed by -> starts a function literal").
type Parser struct {
	sc   scanner.Scanner
	errs token.ErrorList

	prevTok, curTok, nextTok, next2Tok token.Token
	prevVal, curVal, nextVal, next2Val token.Value

	interned map[string]*object.String
}

// New creates a Parser over src and primes its lookahead window.
func New(src []byte) *Parser {
	p := &Parser{interned: map[string]*object.String{}}
	p.sc.Init(src, func(pos token.Pos, msg string) { p.errs.Add(pos, msg) })
	p.curTok, p.curVal = p.scan()
	p.nextTok, p.nextVal = p.scan()
	p.next2Tok, p.next2Val = p.scan()
	return p
}

func (p *Parser) scan() (token.Token, token.Value) {
	var v token.Value
	t := p.sc.Next(&v)
	return t, v
}

func (p *Parser) advance() {
	p.prevTok, p.prevVal = p.curTok, p.curVal
	p.curTok, p.curVal = p.nextTok, p.nextVal
	p.nextTok, p.nextVal = p.next2Tok, p.next2Val
	p.next2Tok, p.next2Val = p.scan()
}

// expect consumes curTok if it matches, otherwise records an error and
// unwinds via errPanicMode to the enclosing recover point.
func (p *Parser) expect(tok token.Token) token.Value {
	if p.curTok != tok {
		p.errorf(p.curVal.Pos, "expected %s, got %s", tok.GoString(), p.curTok.GoString())
		panic(errPanicMode)
	}
	v := p.curVal
	p.advance()
	return v
}

func (p *Parser) errorf(pos token.Pos, format string, args ...any) {
	p.errs.Add(pos, fmt.Sprintf(format, args...))
}

// ParseProgram parses the whole token stream into a top-level NodeList. Any
// errors recorded during parsing are returned as a token.ErrorList (stable
// sorted by line/column) after parsing completes, per spec.md §4.2.
func (p *Parser) ParseProgram() (*ast.NodeList, error) {
	prog := &ast.NodeList{StartPos: p.curVal.Pos}
	for p.curTok != token.EOF {
		if n := p.parseDeclSync(); n != nil {
			prog.Nodes = append(prog.Nodes, n)
		}
	}
	p.errs.Sort()
	return prog, p.errs.Err()
}

// parseDeclSync wraps parseDecl with the panic/recover synchronization
// boundary: on error, advance until a statement-starting token per
// spec.md §4.2's rule (if/while/for/foreach, or IDENT ':' / IDENT '(').
func (p *Parser) parseDeclSync() (n ast.Node) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(panicMode); ok {
				p.synchronize()
				n = nil
				return
			}
			panic(r)
		}
	}()
	return p.parseDecl()
}

func (p *Parser) synchronize() {
	for p.curTok != token.EOF {
		switch p.curTok {
		case token.IF, token.WHILE, token.FOR, token.FOREACH:
			return
		case token.IDENT:
			if p.nextTok == token.COLON || p.nextTok == token.LPAREN {
				return
			}
		}
		p.advance()
	}
}
