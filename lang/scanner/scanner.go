// Package scanner turns Quill source bytes into a stream of tokens. Quill
// treats source text as a byte sequence throughout (spec.md Non-goals:
// no Unicode-aware string handling), so unlike the teacher's scanner this
// one never decodes UTF-8 runes; identifiers and whitespace are recognized
// byte by byte, matching the "byte-to-token conversion" role spec.md §2
// assigns the lexer.
package scanner

import (
	"fmt"

	"github.com/quillang/quill/lang/token"
)

// Scanner tokenizes a single source file for the parser to consume.
type Scanner struct {
	src []byte
	err func(pos token.Pos, msg string)

	cur  byte // current byte, 0 at EOF
	off  int  // offset of cur
	roff int  // offset following cur
	line int
}

// Init initializes (or reinitializes) the scanner to tokenize src. errHandler
// is called, possibly more than once, for each malformed token encountered;
// it may be nil.
func (s *Scanner) Init(src []byte, errHandler func(token.Pos, string)) {
	s.src = src
	s.err = errHandler
	s.off = 0
	s.roff = 0
	s.line = 1
	s.cur = 0
	s.advance()
}

func (s *Scanner) pos() token.Pos { return token.MakePos(s.line, s.off+1) }

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = 0
		return
	}
	if s.cur == '\n' {
		s.line++
	}
	s.off = s.roff
	s.cur = s.src[s.roff]
	s.roff++
}

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) errorf(pos token.Pos, format string, args ...any) {
	if s.err != nil {
		s.err(pos, fmt.Sprintf(format, args...))
	}
}

// advanceIf advances past cur if it equals b, reporting whether it did.
func (s *Scanner) advanceIf(b byte) bool {
	if s.cur == b {
		s.advance()
		return true
	}
	return false
}

func isLetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || b == '_'
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch s.cur {
		case ' ', '\t', '\r', '\n':
			s.advance()
		case '/':
			if s.peek() != '/' {
				return
			}
			for s.cur != '\n' && s.cur != 0 {
				s.advance()
			}
		default:
			return
		}
	}
}

// Next scans and returns the next token, filling tokVal with its literal
// text and any decoded value. Next returns token.EOF, repeatedly, once the
// end of the source is reached.
func (s *Scanner) Next(tokVal *token.Value) token.Token {
	s.skipWhitespaceAndComments()

	pos := s.pos()
	start := s.off

	switch {
	case isLetter(s.cur):
		lit := s.ident()
		tok := token.LookupKw(lit)
		*tokVal = token.Value{Raw: lit, Pos: pos}
		return tok

	case isDigit(s.cur) || (s.cur == '.' && isDigit(s.peek())):
		return s.number(tokVal, pos)

	case s.cur == '"':
		return s.string(tokVal, pos)
	}

	cur := s.cur
	if cur == 0 {
		*tokVal = token.Value{Raw: "", Pos: pos}
		return token.EOF
	}
	s.advance()

	var tok token.Token
	switch cur {
	case '(':
		tok = token.LPAREN
	case ')':
		tok = token.RPAREN
	case '{':
		tok = token.LBRACE
	case '}':
		tok = token.RBRACE
	case '[':
		tok = token.LBRACK
	case ']':
		tok = token.RBRACK
	case ',':
		tok = token.COMMA
	case '+':
		tok = token.PLUS
		if s.advanceIf('+') {
			tok = token.PLUSPLUS
		}
	case '-':
		tok = token.MINUS
		if s.advanceIf('>') {
			tok = token.ARROW
		}
	case '*':
		tok = token.STAR
	case '/':
		tok = token.SLASH
	case '%':
		tok = token.PERCENT
	case '.':
		tok = token.DOT
	case ':':
		tok = token.COLON
		if s.advanceIf(':') {
			tok = token.COLONCOLON
		} else if s.advanceIf('=') {
			tok = token.COLONEQ
		}
	case '=':
		tok = token.EQ
		if s.advanceIf('=') {
			tok = token.EQEQ
		}
	case '!':
		tok = token.BANG
		if s.advanceIf('=') {
			tok = token.NEQ
		}
	case '<':
		tok = token.LT
		if s.advanceIf('=') {
			tok = token.LE
		}
	case '>':
		tok = token.GT
		if s.advanceIf('=') {
			tok = token.GE
		}
	default:
		s.errorf(pos, "unexpected character %q", cur)
		*tokVal = token.Value{Raw: string(cur), Pos: pos}
		return token.DUMMY
	}
	*tokVal = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}
	return tok
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// number scans an integer or float literal. Quill numbers are a digit-run
// with an optional '.' digit-run; a leading '.' yields a Float. There is no
// exponent form (spec.md §4.1).
func (s *Scanner) number(tokVal *token.Value, pos token.Pos) token.Token {
	start := s.off
	isFloat := false
	for isDigit(s.cur) {
		s.advance()
	}
	if s.cur == '.' && isDigit(s.peek()) {
		isFloat = true
		s.advance() // '.'
		for isDigit(s.cur) {
			s.advance()
		}
	}

	lit := string(s.src[start:s.off])
	*tokVal = token.Value{Raw: lit, Pos: pos}
	if isFloat {
		tokVal.Float = parseFloat(lit)
		return token.FLOAT
	}
	tokVal.Int = parseInt(lit)
	return token.INT
}

func parseInt(lit string) int64 {
	var n int64
	for i := 0; i < len(lit); i++ {
		n = n*10 + int64(lit[i]-'0')
	}
	return n
}

func parseFloat(lit string) float64 {
	var intPart, fracPart int64
	var fracLen int
	i := 0
	for i < len(lit) && lit[i] != '.' {
		intPart = intPart*10 + int64(lit[i]-'0')
		i++
	}
	if i < len(lit) && lit[i] == '.' {
		i++
		for i < len(lit) {
			fracPart = fracPart*10 + int64(lit[i]-'0')
			fracLen++
			i++
		}
	}
	f := float64(intPart)
	if fracLen > 0 {
		div := 1.0
		for n := 0; n < fracLen; n++ {
			div *= 10
		}
		f += float64(fracPart) / div
	}
	return f
}

// string scans a double-quoted string literal. Backslash escapes are kept
// verbatim in both Raw and String; expansion happens in the print natives
// (spec.md §4.1, §6), not here.
func (s *Scanner) string(tokVal *token.Value, pos token.Pos) token.Token {
	start := s.off
	s.advance() // opening quote
	contentStart := s.off
	for s.cur != '"' && s.cur != 0 {
		if s.cur == '\\' {
			s.advance()
			if s.cur == 0 {
				break
			}
		}
		s.advance()
	}
	content := string(s.src[contentStart:s.off])
	if s.cur != '"' {
		s.errorf(pos, "unterminated string literal")
		*tokVal = token.Value{Raw: string(s.src[start:s.off]), Pos: pos, String: content}
		return token.DUMMY
	}
	s.advance() // closing quote
	*tokVal = token.Value{Raw: string(s.src[start:s.off]), Pos: pos, String: content}
	return token.STRING
}
