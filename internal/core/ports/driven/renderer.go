package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/pelagia/internal/core/domain"
)

// DiagramRenderer turns diagram source into an image file.
// Implementations must be safe for concurrent use.
type DiagramRenderer interface {
	// Render writes the image for job.Source to job.OutputPath.
	// A failure is reported as a *domain.RenderError.
	Render(ctx context.Context, job RenderJob) error

	// Requirements lists the binaries Render needs.
	Requirements() []domain.ToolRequirement
}

// RenderJob is one diagram to render.
type RenderJob struct {
	// Ordinal is the block's position within its document.
	Ordinal int

	// Source is the repaired diagram source.
	Source string

	// InputPath is where the source is written for the renderer.
	InputPath string

	// OutputPath is where the image must be written.
	OutputPath string

	// Geometry is the requested image size.
	Geometry domain.Geometry

	// Timeout overrides the renderer's own limit when positive.
	Timeout time.Duration
}

// DiagramCache stores rendered images keyed by domain.CacheKey.
// Implementations must be safe for concurrent use.
type DiagramCache interface {
	// Get returns the image for key. ok is false on a miss.
	Get(ctx context.Context, key string) (image []byte, ok bool, err error)

	// Put stores the image for key, replacing any previous value.
	Put(ctx context.Context, key string, image []byte) error

	// Close releases resources.
	Close() error
}
