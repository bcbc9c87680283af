package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mna/mainer"
	"github.com/quillang/quill/lang/ast"
)

// Parse runs the lexer+parser phase over each file and prints the resulting
// AST, kept from the teacher's own CLI surface (mna-nenuphar/internal/
// maincmd/parse.go) as a diagnostic command.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var failed error
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = err
			continue
		}
		prog, err := parseSource(src)
		if prog != nil {
			printAST(stdio.Stdout, prog)
		}
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = err
		}
	}
	return failed
}

// printAST dumps the node type and source position of every node in prog,
// indented by nesting depth via ast.Walk's enter/exit callbacks.
func printAST(w io.Writer, prog *ast.NodeList) {
	depth := 0
	var visit ast.VisitorFunc
	visit = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitExit {
			depth--
			return nil
		}
		line, col := n.Pos().LineCol()
		fmt.Fprintf(w, "%s%T [line %d col %d]\n", strings.Repeat("  ", depth), n, line, col)
		depth++
		return visit
	}
	ast.Walk(visit, prog)
}
