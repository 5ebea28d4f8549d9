// Package pandoc typesets the combined markdown into a PDF with pandoc and
// a LaTeX engine.
package pandoc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/pelagia/internal/adapters/driven/toolchain"
	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
)

// Ensure Typesetter implements the interface.
var _ driven.Typesetter = (*Typesetter)(nil)

// Defaults for the collaborators.
const (
	DefaultBinary    = "pandoc"
	DefaultPDFEngine = "tectonic"
	DefaultTOCDepth  = 3
)

// headerTeX makes the table of contents end with a page break.
const headerTeX = `\let\oldtableofcontents\tableofcontents
\renewcommand{\tableofcontents}{%
  \oldtableofcontents
  \newpage
}
`

// Typesetter runs pandoc.
type Typesetter struct {
	binary string
	engine string
	run    toolchain.Runner
	output io.Writer
}

// Option configures a Typesetter.
type Option func(*Typesetter)

// WithRunner replaces the subprocess runner.
func WithRunner(run toolchain.Runner) Option {
	return func(t *Typesetter) { t.run = run }
}

// WithOutput sets where pandoc's own messages go. Defaults to stderr.
func WithOutput(w io.Writer) Option {
	return func(t *Typesetter) { t.output = w }
}

// New creates a pandoc typesetter. Empty arguments select the defaults.
func New(binary, engine string, opts ...Option) *Typesetter {
	if binary == "" {
		binary = DefaultBinary
	}
	if engine == "" {
		engine = DefaultPDFEngine
	}
	t := &Typesetter{binary: binary, engine: engine, run: toolchain.Exec, output: os.Stderr}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Format returns "pdf".
func (t *Typesetter) Format() string { return "pdf" }

// PersistentArtifacts is false: images are embedded in the PDF.
func (t *Typesetter) PersistentArtifacts() bool { return false }

// Requirements returns pandoc and the PDF engine.
func (t *Typesetter) Requirements() []domain.ToolRequirement {
	engineHint := "install a LaTeX engine supported by pandoc"
	if filepath.Base(t.engine) == DefaultPDFEngine {
		engineHint = domain.ToolTectonic.Hint
	}
	return []domain.ToolRequirement{
		{Name: t.binary, Hint: domain.ToolPandoc.Hint},
		{Name: t.engine, Hint: engineHint},
	}
}

// Typeset writes the body and LaTeX header into the work directory and
// runs pandoc. Pandoc's own output is passed through to stderr.
func (t *Typesetter) Typeset(ctx context.Context, req driven.TypesetRequest) error {
	combined := filepath.Join(req.WorkDir, "combined.md")
	if err := os.WriteFile(combined, []byte(req.Body), 0o644); err != nil {
		return fmt.Errorf("write combined markdown: %w", err)
	}
	header := filepath.Join(req.WorkDir, "header.tex")
	if err := os.WriteFile(header, []byte(headerTeX), 0o644); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	err := t.run(ctx, toolchain.Command{
		Name:   t.binary,
		Args:   t.args(combined, header, req),
		Dir:    req.WorkDir,
		Stdout: t.output,
		Stderr: t.output,
	})
	if err == nil {
		return nil
	}
	if code, ok := toolchain.ExitCode(err); ok && code > 0 {
		return &domain.TypesetError{Tool: "pandoc", ExitCode: code}
	}
	return fmt.Errorf("run pandoc: %w: %w", domain.ErrTypesetFailed, err)
}

func (t *Typesetter) args(combined, header string, req driven.TypesetRequest) []string {
	depth := req.TOCDepth
	if depth <= 0 {
		depth = DefaultTOCDepth
	}
	args := []string{
		combined,
		"--pdf-engine=" + t.engine,
		"--resource-path=" + strings.Join(req.ResourcePaths, string(os.PathListSeparator)),
		"--toc",
		"--toc-depth=" + strconv.Itoa(depth),
		"--include-in-header=" + header,
		"-V", "colorlinks=true",
		"-V", "linkcolor=blue",
		"-V", "urlcolor=blue",
		"-o", req.OutputPath,
	}
	if req.Title != "" {
		args = append(args, "-V", "title="+req.Title)
	}
	return args
}
