package driven

import (
	"context"

	"github.com/custodia-labs/pelagia/internal/core/domain"
)

// Typesetter writes the combined body in an output format.
type Typesetter interface {
	// Format is the name selected with --format.
	Format() string

	// PersistentArtifacts reports whether the output refers to diagram
	// images at run time (html, markdown) rather than embedding them.
	// When true, images are kept next to the output file.
	PersistentArtifacts() bool

	// Requirements lists the binaries Typeset needs.
	Requirements() []domain.ToolRequirement

	// Typeset writes req.Body to req.OutputPath.
	Typeset(ctx context.Context, req TypesetRequest) error
}

// TypesetRequest is the input to a typesetter.
type TypesetRequest struct {
	// Body is the assembled markdown.
	Body string

	// WorkDir is a scratch directory removed after the run.
	WorkDir string

	// OutputPath is the file to write.
	OutputPath string

	// ResourcePaths are searched for relative image references.
	ResourcePaths []string

	// Title is the document title. Empty means none.
	Title string

	// TOCDepth is the deepest heading level in the table of contents.
	TOCDepth int
}

// ToolLocator finds external binaries.
type ToolLocator interface {
	// LookPath returns the full path of name or a *domain.ToolError.
	LookPath(req domain.ToolRequirement) (string, error)
}
