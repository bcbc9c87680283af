package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/quillang/quill/lang/scanner"
	"github.com/quillang/quill/lang/token"
)

// Tokenize runs the lexer phase alone over each file and prints its tokens,
// kept from the teacher's own CLI surface (mna-nenuphar/internal/maincmd/
// tokenize.go) as a diagnostic command.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var failed error
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = err
			continue
		}
		if err := tokenizeSource(stdio, src); err != nil {
			failed = err
		}
	}
	return failed
}

func tokenizeSource(stdio mainer.Stdio, src []byte) error {
	var errs token.ErrorList
	var sc scanner.Scanner
	sc.Init(src, func(pos token.Pos, msg string) { errs.Add(pos, msg) })

	for {
		var v token.Value
		tok := sc.Next(&v)
		if tok == token.EOF {
			break
		}
		line, col := v.Pos.LineCol()
		fmt.Fprintf(stdio.Stdout, "[line %d col %d] %s %s\n", line, col, tok, v.Raw)
	}

	if err := errs.Err(); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
