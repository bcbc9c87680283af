package maincmd

import (
	"io"

	"github.com/quillang/quill/internal/config"
	"github.com/quillang/quill/internal/natives"
	"github.com/quillang/quill/lang/ast"
	"github.com/quillang/quill/lang/compiler"
	"github.com/quillang/quill/lang/gc"
	"github.com/quillang/quill/lang/machine"
	"github.com/quillang/quill/lang/parser"
)

// resolvedConfig loads internal/config.Config from the environment, then
// lets any explicitly-passed CLI flag override it — the same precedence
// SPEC_FULL.md §1.3 specifies for --stress-gc/--trace over
// QUILL_GC_STRESS/QUILL_TRACE.
func (c *Cmd) resolvedConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.flags["stress-gc"] {
		cfg.StressGC = c.StressGC
	}
	if c.flags["trace"] {
		cfg.TraceExec = c.Trace
	}
	return cfg, nil
}

// parseSource runs the lexer+parser over src, returning the parsed program
// even on error so a diagnostic command can still print whatever it has.
func parseSource(src []byte) (*ast.NodeList, error) {
	p := parser.New(src)
	return p.ParseProgram()
}

// runSource runs the full pipeline — parse, compile, execute — over src,
// printing to stdout/reading from stdin through the native functions bound
// by internal/natives. Each call gets its own heap and VM, so a REPL line
// and a `run` invocation share the exact same execution path.
func runSource(cfg *config.Config, stdout io.Writer, stdin io.Reader, src []byte) error {
	prog, err := parseSource(src)
	if err != nil {
		return err
	}

	heap := gc.NewHeap()
	heap.Stress = cfg.StressGC
	heap.SetInitialThreshold(cfg.GCInitialThreshold)

	ns := natives.New(heap, stdout, stdin)

	fn, err := compiler.Compile(prog, heap, ns.Bindings())
	if err != nil {
		return err
	}

	vm := machine.New(heap)
	vm.Trace = cfg.TraceExec
	heap.Attach(vm)

	_, err = vm.Run(fn, ns.Values()...)
	return err
}
