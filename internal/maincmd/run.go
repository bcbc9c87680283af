package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

// Run implements spec.md §6's file-invocation mode: compile and execute a
// single source file, printing any pipeline error to stderr.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	cfg, err := c.resolvedConfig()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	if err := runSource(cfg, stdio.Stdout, stdio.Stdin, src); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
