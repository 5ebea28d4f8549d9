// Package markdown writes the combined body as a standalone markdown file.
// The file starts with a YAML metadata block that pandoc understands, so it
// can be typeset later without pelagia.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
)

// Ensure Typesetter implements the interface.
var _ driven.Typesetter = (*Typesetter)(nil)

// DefaultTOCDepth is used when the request does not set one.
const DefaultTOCDepth = 3

// Typesetter writes markdown.
type Typesetter struct{}

// New creates a markdown typesetter.
func New() *Typesetter {
	return &Typesetter{}
}

// metadata is the pandoc metadata block.
type metadata struct {
	Title    string `yaml:"title,omitempty"`
	TOC      bool   `yaml:"toc"`
	TOCDepth int    `yaml:"toc-depth"`
}

// Format returns "markdown".
func (t *Typesetter) Format() string { return "markdown" }

// PersistentArtifacts is true: the file refers to diagram images on disk.
func (t *Typesetter) PersistentArtifacts() bool { return true }

// Requirements is empty.
func (t *Typesetter) Requirements() []domain.ToolRequirement { return nil }

// Typeset writes the metadata block followed by the body.
func (t *Typesetter) Typeset(ctx context.Context, req driven.TypesetRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	depth := req.TOCDepth
	if depth <= 0 {
		depth = DefaultTOCDepth
	}
	meta, err := yaml.Marshal(metadata{Title: req.Title, TOC: true, TOCDepth: depth})
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("---\n")
	out.Write(meta)
	out.WriteString("---\n\n")
	out.WriteString(req.Body)

	if err := os.WriteFile(req.OutputPath, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", req.OutputPath, err)
	}
	return nil
}
