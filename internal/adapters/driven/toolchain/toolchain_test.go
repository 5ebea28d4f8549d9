package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pelagia/internal/core/domain"
)

type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitStatus) ExitCode() int { return int(e) }

func TestLocator_LookPath(t *testing.T) {
	l := &Locator{lookPath: func(name string) (string, error) {
		if name == "pandoc" {
			return "/usr/bin/pandoc", nil
		}
		return "", exec.ErrNotFound
	}}

	path, err := l.LookPath(domain.ToolPandoc)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/pandoc", path)

	_, err = l.LookPath(domain.ToolMermaid)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrToolMissing)
	assert.Equal(t, "missing `mmdc` in PATH. Install: npm i -g @mermaid-js/mermaid-cli", err.Error())
}

func TestExitCode(t *testing.T) {
	code, ok := ExitCode(fmt.Errorf("wrapped: %w", exitStatus(3)))
	assert.True(t, ok)
	assert.Equal(t, 3, code)

	_, ok = ExitCode(errors.New("no status"))
	assert.False(t, ok)
}

func TestExec(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	var stdout, stderr bytes.Buffer
	err := Exec(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", "echo out; echo err >&2; exit 4"},
		Stdout: &stdout,
		Stderr: &stderr,
	})

	code, ok := ExitCode(err)
	assert.True(t, ok)
	assert.Equal(t, 4, code)
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}
