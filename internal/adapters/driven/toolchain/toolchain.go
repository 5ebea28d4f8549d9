// Package toolchain finds and runs the external binaries pelagia drives.
package toolchain

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
)

// Ensure Locator implements the interface.
var _ driven.ToolLocator = (*Locator)(nil)

// Locator looks binaries up on PATH.
type Locator struct {
	lookPath func(string) (string, error)
}

// NewLocator creates a locator backed by exec.LookPath.
func NewLocator() *Locator {
	return &Locator{lookPath: exec.LookPath}
}

// LookPath returns the full path of the required binary.
func (l *Locator) LookPath(req domain.ToolRequirement) (string, error) {
	path, err := l.lookPath(req.Name)
	if err != nil {
		return "", &domain.ToolError{Tool: req.Name, Hint: req.Hint}
	}
	return path, nil
}

// Command is one external process invocation.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// Runner starts a command and waits for it to finish.
type Runner func(ctx context.Context, cmd Command) error

// waitDelay bounds how long output pipes are drained after the process is
// killed. Headless browsers spawned by renderers can outlive their parent.
const waitDelay = 5 * time.Second

// Exec runs cmd as a subprocess. Cancelling ctx kills the process.
func Exec(ctx context.Context, cmd Command) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr
	c.WaitDelay = waitDelay
	return c.Run()
}

// ExitCode extracts a process exit status from err. ok is false when err
// does not carry one, e.g. when the binary could not be started.
func ExitCode(err error) (code int, ok bool) {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode(), true
	}
	return 0, false
}
