// Package mermaid renders diagram source to PNG with the mermaid CLI (mmdc).
package mermaid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/custodia-labs/pelagia/internal/adapters/driven/toolchain"
	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.DiagramRenderer = (*Renderer)(nil)

// DefaultBinary is the mermaid CLI executable name.
const DefaultBinary = "mmdc"

// Renderer invokes mmdc once per diagram.
type Renderer struct {
	binary  string
	timeout time.Duration
	run     toolchain.Runner
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTimeout kills a render that runs longer than d. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) { r.timeout = d }
}

// WithRunner replaces the subprocess runner.
func WithRunner(run toolchain.Runner) Option {
	return func(r *Renderer) { r.run = run }
}

// New creates a renderer for binary, defaulting to mmdc.
func New(binary string, opts ...Option) *Renderer {
	if binary == "" {
		binary = DefaultBinary
	}
	r := &Renderer{binary: binary, run: toolchain.Exec}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Requirements returns the mermaid CLI.
func (r *Renderer) Requirements() []domain.ToolRequirement {
	return []domain.ToolRequirement{{Name: r.binary, Hint: domain.ToolMermaid.Hint}}
}

// Render writes the source next to the output and runs mmdc on it with a
// transparent background.
func (r *Renderer) Render(ctx context.Context, job driven.RenderJob) error {
	if err := os.WriteFile(job.InputPath, []byte(job.Source), 0o644); err != nil {
		return &domain.RenderError{Ordinal: job.Ordinal, Err: fmt.Errorf("write source: %w", err)}
	}

	timeout := r.timeout
	if job.Timeout > 0 {
		timeout = job.Timeout
	}
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	err := r.run(runCtx, toolchain.Command{
		Name: r.binary,
		Args: []string{
			"-i", job.InputPath,
			"-o", job.OutputPath,
			"-w", strconv.Itoa(job.Geometry.Width),
			"-H", strconv.Itoa(job.Geometry.Height),
			"-b", "transparent",
		},
		Stdout: io.Discard,
		Stderr: &stderr,
	})
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return &domain.RenderError{
			Ordinal: job.Ordinal,
			Stderr:  stderr.String(),
			Err:     fmt.Errorf("timed out after %s", timeout),
		}
	}
	if err != nil {
		return &domain.RenderError{Ordinal: job.Ordinal, Stderr: stderr.String(), Err: err}
	}

	if _, err := os.Stat(job.OutputPath); err != nil {
		return &domain.RenderError{
			Ordinal: job.Ordinal,
			Stderr:  stderr.String(),
			Err:     errors.New("renderer exited cleanly but wrote no image"),
		}
	}
	return nil
}
