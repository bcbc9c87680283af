package maincmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mna/mainer"
)

// Repl implements spec.md §6's interactive mode: prompt "> ", read a line,
// compile and run it as a standalone program, loop until the line begins
// with 'q'. Each line gets its own heap and VM (runSource), since Quill has
// no global binding a later line could observe from an earlier one anyway.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := c.resolvedConfig()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt: "> ",
		Stdout: stdio.Stdout,
		Stderr: stdio.Stderr,
	})
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		if strings.HasPrefix(strings.TrimSpace(line), "q") {
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := runSource(cfg, stdio.Stdout, stdio.Stdin, []byte(line)); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}
