package domain

import "fmt"

// DiagramBlock is a fenced diagram extracted from a document.
type DiagramBlock struct {
	// DocumentSlug is the slug of the owning document.
	DocumentSlug string

	// DocumentPath is the relative path of the owning document.
	DocumentPath string

	// Ordinal is the block's position within its document, from 0.
	Ordinal int

	// Line is the 1-based line of the opening fence.
	Line int

	// Raw is the block body exactly as written.
	Raw string

	// Source is the repaired diagram source handed to the renderer.
	Source string

	// Fingerprint is the first 12 hex digits of SHA-1 over Source.
	Fingerprint string
}

// Key returns the artifact file stem. It is unique per block within a run.
func (b DiagramBlock) Key() string {
	return fmt.Sprintf("mermaid-%s-%d-%s", b.DocumentSlug, b.Ordinal, b.Fingerprint)
}

// Geometry is the pixel size requested from the renderer.
type Geometry struct {
	Width  int
	Height int
}

// Scaled applies a scale factor, clamping each side to at least one pixel.
func (g Geometry) Scaled(scale float64) Geometry {
	return Geometry{
		Width:  max(1, int(float64(g.Width)*scale)),
		Height: max(1, int(float64(g.Height)*scale)),
	}
}

// RenderStatus is the outcome of one render job.
type RenderStatus int

// Render outcomes.
const (
	RenderPending RenderStatus = iota
	RenderOK
	RenderCached
	RenderFailed
)

// RenderOutcome is the result for one diagram block.
type RenderOutcome struct {
	// ArtifactPath is the image file written for the block.
	ArtifactPath string

	// Status is how the artifact was produced.
	Status RenderStatus

	// Err holds the failure when Status is RenderFailed.
	Err error
}

// Succeeded reports whether an artifact exists for the block.
func (o RenderOutcome) Succeeded() bool {
	return o.Status == RenderOK || o.Status == RenderCached
}

// CacheKey identifies a rendered artifact independent of where a block
// appears. Identical sources at the same geometry share one artifact.
func CacheKey(fingerprint string, g Geometry) string {
	return fmt.Sprintf("%s-%dx%d", fingerprint, g.Width, g.Height)
}
