package domain

import (
	"errors"
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrCorpusMissing", ErrCorpusMissing},
		{"ErrEmptyCorpus", ErrEmptyCorpus},
		{"ErrStartNotFound", ErrStartNotFound},
		{"ErrNotMarkdown", ErrNotMarkdown},
		{"ErrOutsideRoot", ErrOutsideRoot},
		{"ErrUnterminatedDiagram", ErrUnterminatedDiagram},
		{"ErrToolMissing", ErrToolMissing},
		{"ErrRenderFailed", ErrRenderFailed},
		{"ErrTypesetFailed", ErrTypesetFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestStructureError(t *testing.T) {
	err := &StructureError{Path: "guide/setup.md", Line: 12, Err: ErrUnterminatedDiagram}

	assert.Equal(t, "guide/setup.md:12: unterminated ```mermaid block", err.Error())
	assert.ErrorIs(t, err, ErrUnterminatedDiagram)

	wrapped := fmt.Errorf("process document: %w", err)
	var se *StructureError
	assert.True(t, errors.As(wrapped, &se))
	assert.Equal(t, 12, se.Line)
}

func TestStructureError_NoLine(t *testing.T) {
	err := &StructureError{Path: "a.md", Err: ErrInvalidInput}
	assert.Equal(t, "a.md: invalid input", err.Error())
}

func TestRenderError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &RenderError{Ordinal: 3, Stderr: "Parse error on line 2", Err: cause}

	assert.Equal(t, "mermaid diagram 3: exit status 1", err.Error())
	assert.ErrorIs(t, err, ErrRenderFailed)
	assert.ErrorIs(t, err, cause)
}

func TestRenderError_Excerpt(t *testing.T) {
	err := &RenderError{Stderr: "0123456789"}

	assert.Equal(t, "01234", err.Excerpt(5))
	assert.Equal(t, "0123456789", err.Excerpt(200))
	assert.Equal(t, "0123456789", err.Excerpt(10))
	assert.Empty(t, err.Excerpt(0))

	multibyte := &RenderError{Stderr: "ërrör: ünexpected"}
	got := multibyte.Excerpt(4)
	assert.Equal(t, "ërrö", got)
	assert.True(t, utf8.ValidString(got))
}

func TestToolError(t *testing.T) {
	t.Run("with hint", func(t *testing.T) {
		err := &ToolError{Tool: "pandoc", Hint: "brew install pandoc"}
		assert.Equal(t, "missing `pandoc` in PATH. Install: brew install pandoc", err.Error())
		assert.ErrorIs(t, err, ErrToolMissing)
	})

	t.Run("without hint", func(t *testing.T) {
		err := &ToolError{Tool: "mmdc"}
		assert.Equal(t, "missing `mmdc` in PATH", err.Error())
	})
}

func TestTypesetError(t *testing.T) {
	err := &TypesetError{Tool: "pandoc", ExitCode: 43}

	assert.Equal(t, "pandoc failed with exit code 43", err.Error())
	assert.ErrorIs(t, err, ErrTypesetFailed)
	assert.False(t, errors.Is(err, ErrRenderFailed))
}
