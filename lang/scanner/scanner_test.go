package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillang/quill/lang/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, []token.Value) {
	t.Helper()
	var s Scanner
	var errs token.ErrorList
	s.Init([]byte(src), errs.Add)

	var toks []token.Token
	var vals []token.Value
	for {
		var v token.Value
		tok := s.Next(&v)
		toks = append(toks, tok)
		vals = append(vals, v)
		if tok == token.EOF {
			break
		}
	}
	require.NoError(t, errs.Err())
	return toks, vals
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks, _ := scanAll(t, "x : int = 1 foreach struct")
	require.Equal(t, []token.Token{
		token.IDENT, token.COLON, token.INT_KW, token.EQ, token.INT,
		token.FOREACH, token.STRUCT, token.EOF,
	}, toks)
}

func TestScanNumbers(t *testing.T) {
	toks, vals := scanAll(t, "123 1.5 .25")
	require.Equal(t, []token.Token{token.INT, token.FLOAT, token.FLOAT, token.EOF}, toks)
	require.Equal(t, int64(123), vals[0].Int)
	require.Equal(t, 1.5, vals[1].Float)
	require.Equal(t, 0.25, vals[2].Float)
}

func TestScanString(t *testing.T) {
	toks, vals := scanAll(t, `"hello\nworld"`)
	require.Equal(t, []token.Token{token.STRING, token.EOF}, toks)
	require.Equal(t, `hello\nworld`, vals[0].String)
}

func TestScanPunctuation(t *testing.T) {
	toks, _ := scanAll(t, ":: := -> ++ == != <= >=")
	require.Equal(t, []token.Token{
		token.COLONCOLON, token.COLONEQ, token.ARROW, token.PLUSPLUS,
		token.EQEQ, token.NEQ, token.LE, token.GE, token.EOF,
	}, toks)
}

func TestScanLineComment(t *testing.T) {
	toks, _ := scanAll(t, "x // comment\ny")
	require.Equal(t, []token.Token{token.IDENT, token.IDENT, token.EOF}, toks)
}

func TestScanLineTracking(t *testing.T) {
	_, vals := scanAll(t, "x\ny\nz")
	line1, _ := vals[0].Pos.LineCol()
	line2, _ := vals[1].Pos.LineCol()
	line3, _ := vals[2].Pos.LineCol()
	require.Equal(t, 1, line1)
	require.Equal(t, 2, line2)
	require.Equal(t, 3, line3)
}

func TestScanUnknownByteIsDummy(t *testing.T) {
	var s Scanner
	var errCount int
	s.Init([]byte("x @ y"), func(token.Pos, string) { errCount++ })

	var v token.Value
	require.Equal(t, token.IDENT, s.Next(&v))
	require.Equal(t, token.DUMMY, s.Next(&v))
	require.Equal(t, token.IDENT, s.Next(&v))
	require.Equal(t, token.EOF, s.Next(&v))
	require.Equal(t, 1, errCount)
}

// Round-trip tokenization: relexing the raw text of each token in a stream
// must reproduce the same token kind, one of spec.md §8's testable
// properties.
func TestRoundTripTokenization(t *testing.T) {
	src := `make : () -> int = () -> int { return 1 } x : int = make()`
	toks, vals := scanAll(t, src)
	for i, tok := range toks {
		if tok == token.EOF {
			continue
		}
		var s2 Scanner
		var v2 token.Value
		s2.Init([]byte(vals[i].Raw), nil)
		got := s2.Next(&v2)
		require.Equal(t, tok, got, "token %d (%s)", i, vals[i].Raw)
	}
}
