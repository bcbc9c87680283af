package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/quillang/quill/internal/maincmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.ql")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunPrintsOutput(t *testing.T) {
	path := writeSource(t, `x : int = 1 + 2 * 3 - 4
print(x as string)
`)
	var out, errBuf bytes.Buffer
	c := &maincmd.Cmd{}
	code := c.Main([]string{"quill", "run", path}, mainer.Stdio{Stdout: &out, Stderr: &errBuf})
	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "3\n", out.String())
	assert.Empty(t, errBuf.String())
}

func TestRunReportsPipelineFailure(t *testing.T) {
	path := writeSource(t, `x : int = "not an int"
`)
	var out, errBuf bytes.Buffer
	c := &maincmd.Cmd{}
	code := c.Main([]string{"quill", "run", path}, mainer.Stdio{Stdout: &out, Stderr: &errBuf})
	assert.Equal(t, mainer.Failure, code)
	assert.NotEmpty(t, errBuf.String())
}

func TestTokenizePrintsTokens(t *testing.T) {
	path := writeSource(t, `x : int = 1`)
	var out, errBuf bytes.Buffer
	c := &maincmd.Cmd{}
	code := c.Main([]string{"quill", "tokenize", path}, mainer.Stdio{Stdout: &out, Stderr: &errBuf})
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out.String(), "identifier x")
}

func TestHelpAndVersion(t *testing.T) {
	var out bytes.Buffer
	c := &maincmd.Cmd{BuildVersion: "1.0", BuildDate: "2026-01-01"}
	code := c.Main([]string{"quill", "--version"}, mainer.Stdio{Stdout: &out})
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out.String(), "1.0")
}

func TestUnknownCommand(t *testing.T) {
	var errBuf bytes.Buffer
	c := &maincmd.Cmd{}
	code := c.Main([]string{"quill", "bogus"}, mainer.Stdio{Stderr: &errBuf})
	assert.Equal(t, mainer.InvalidArgs, code)
}
