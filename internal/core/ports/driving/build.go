package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/pelagia/internal/core/domain"
)

// BuildService turns a markdown folder into one output document.
type BuildService interface {
	// Build runs the whole pipeline once. Render failures and unresolved
	// links are counted in the result; only fatal conditions return an error.
	Build(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest describes one build.
type BuildRequest struct {
	// Folder is the corpus root.
	Folder string `json:"folder"`

	// Start is the first document, relative to Folder unless absolute.
	Start string `json:"start"`

	// Output is the file to write.
	Output string `json:"output"`

	// Title overrides the start document's front-matter title.
	Title string `json:"title"`

	// Width and Height are the base diagram size in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Scale multiplies Width and Height.
	Scale float64 `json:"scale"`

	// FlowDirection rewrites flowchart directions when set.
	FlowDirection string `json:"flow_direction"`

	// Jobs bounds concurrent renders.
	Jobs int `json:"jobs"`

	// RenderTimeout bounds each render. Zero means no limit.
	RenderTimeout time.Duration `json:"render_timeout"`

	// StrictFragments falls back to document anchors for unknown fragments.
	StrictFragments bool `json:"strict_fragments"`

	// TOCDepth is the deepest heading level listed in the table of contents.
	TOCDepth int `json:"toc_depth"`
}

// Geometry returns the scaled diagram size.
func (r BuildRequest) Geometry() domain.Geometry {
	return domain.Geometry{Width: r.Width, Height: r.Height}.Scaled(r.Scale)
}

// BuildResult summarises a finished build.
type BuildResult struct {
	// RunID identifies the run in logs and scratch paths.
	RunID string

	// Output is the file written.
	Output string

	// Title is the title handed to the typesetter.
	Title string

	Documents int
	Headings  int

	LinksRewritten  int
	LinksUnresolved int
	LinksDangling   int

	DiagramsRendered int
	DiagramsCached   int
	DiagramsFailed   int

	// Failures lists the render errors in document order.
	Failures []DiagramFailure

	// Duration is the wall time of the build.
	Duration time.Duration
}

// DiagramFailure is one diagram that fell back to the placeholder.
type DiagramFailure struct {
	Document string
	Ordinal  int
	Err      error
}
