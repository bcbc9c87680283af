package ast

import (
	"testing"

	"github.com/quillang/quill/lang/token"
	"github.com/stretchr/testify/require"
)

func TestWalkVisitsChildren(t *testing.T) {
	bin := &Binary{
		Op:    token.PLUS,
		Left:  &Literal{Tok: token.INT, Value: token.Value{Int: 1}},
		Right: &Literal{Tok: token.INT, Value: token.Value{Int: 2}},
	}

	var seen []Node
	Walk(VisitorFunc(func(n Node, dir VisitDirection) Visitor {
		if dir == VisitEnter {
			seen = append(seen, n)
		}
		return VisitorFunc(func(n Node, dir VisitDirection) Visitor {
			if dir == VisitEnter {
				seen = append(seen, n)
			}
			return nil
		})
	}), bin)

	require.Len(t, seen, 3)
	require.Equal(t, bin, seen[0])
	require.Equal(t, bin.Left, seen[1])
	require.Equal(t, bin.Right, seen[2])
}

func TestWalkStopsWhenVisitorReturnsNil(t *testing.T) {
	lit := &Literal{Tok: token.INT}
	count := 0
	Walk(VisitorFunc(func(n Node, dir VisitDirection) Visitor {
		count++
		return nil
	}), lit)
	require.Equal(t, 1, count)
}
