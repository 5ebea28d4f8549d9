package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent failures of a build run.
// Fatal errors abort the run; render failures are reported and absorbed.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorpusMissing indicates the corpus folder does not exist.
	ErrCorpusMissing = errors.New("folder does not exist")

	// ErrEmptyCorpus indicates no markdown files were discovered.
	ErrEmptyCorpus = errors.New("no markdown files found")

	// ErrStartNotFound indicates the start file is not among the discovered files.
	ErrStartNotFound = errors.New("start file not found in folder scan")

	// ErrNotMarkdown indicates a path that should name a markdown file does not.
	ErrNotMarkdown = errors.New("not a markdown file")

	// ErrOutsideRoot indicates a document path does not lie inside the corpus root.
	ErrOutsideRoot = errors.New("path is outside the corpus root")

	// ErrUnterminatedDiagram indicates a diagram fence without a closing fence.
	ErrUnterminatedDiagram = errors.New("unterminated ```mermaid block")

	// ErrToolMissing indicates a required external binary is not on PATH.
	ErrToolMissing = errors.New("missing external tool")

	// ErrRenderFailed indicates a diagram could not be rendered.
	// Render failures are local: the block is replaced with a placeholder.
	ErrRenderFailed = errors.New("diagram render failed")

	// ErrTypesetFailed indicates the typesetting collaborator failed.
	ErrTypesetFailed = errors.New("typesetting failed")
)

// StructureError reports a malformed document.
type StructureError struct {
	// Path is the document path relative to the corpus root.
	Path string
	// Line is the 1-based line where the offending construct starts.
	Line int
	// Err is the underlying sentinel.
	Err error
}

func (e *StructureError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *StructureError) Unwrap() error {
	return e.Err
}

// RenderError reports a single failed diagram render.
type RenderError struct {
	// Ordinal is the block's position within its document.
	Ordinal int
	// Stderr holds the collaborator's error output.
	Stderr string
	// Err is the underlying cause (exit status, timeout).
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("mermaid diagram %d: %v", e.Ordinal, e.Err)
}

func (e *RenderError) Unwrap() []error {
	return []error{ErrRenderFailed, e.Err}
}

// Excerpt returns at most n characters of the collaborator's error output.
func (e *RenderError) Excerpt(n int) string {
	count := 0
	for i := range e.Stderr {
		if count == n {
			return e.Stderr[:i]
		}
		count++
	}
	return e.Stderr
}

// ToolError reports a missing external binary.
type ToolError struct {
	// Tool is the binary name looked up on PATH.
	Tool string
	// Hint tells the user how to install it.
	Hint string
}

func (e *ToolError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("missing `%s` in PATH", e.Tool)
	}
	return fmt.Sprintf("missing `%s` in PATH. Install: %s", e.Tool, e.Hint)
}

func (e *ToolError) Unwrap() error {
	return ErrToolMissing
}

// TypesetError reports a non-zero exit of the typesetting collaborator.
type TypesetError struct {
	// Tool is the collaborator name.
	Tool string
	// ExitCode is the process exit status.
	ExitCode int
}

func (e *TypesetError) Error() string {
	return fmt.Sprintf("%s failed with exit code %d", e.Tool, e.ExitCode)
}

func (e *TypesetError) Unwrap() error {
	return ErrTypesetFailed
}
