package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupKw(t *testing.T) {
	for tok := AND; tok < maxToken; tok++ {
		got := LookupKw(tok.String())
		require.Equal(t, tok, got, tok.String())
	}
	require.Equal(t, IDENT, LookupKw("notAKeyword"))
}

func TestPosLineCol(t *testing.T) {
	p := MakePos(12, 5)
	line, col := p.LineCol()
	require.Equal(t, 12, line)
	require.Equal(t, 5, col)
	require.False(t, p.Unknown())
	require.True(t, Pos(0).Unknown())
}

func TestErrorListSortAndErr(t *testing.T) {
	var el ErrorList
	require.Nil(t, el.Err())

	el.Add(MakePos(3, 1), "third")
	el.Add(MakePos(1, 1), "first")
	el.Add(MakePos(2, 1), "second")

	err := el.Err()
	require.Error(t, err)
	require.Equal(t, "[line 1] first\n[line 2] second\n[line 3] third", err.Error())
}
