package driven

import (
	"context"

	"github.com/custodia-labs/pelagia/internal/core/domain"
)

// Normaliser prepares a source document for the rewriting stages.
type Normaliser interface {
	// Normalise strips front matter from the document text.
	Normalise(ctx context.Context, doc domain.SourceDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Body is the document text without front matter.
	Body string

	// Title is the front-matter title, else the first level-one
	// heading, else a name derived from the file name.
	Title string

	// FrontMatter is the stripped metadata block. Its Title is empty
	// when the block had no title key.
	FrontMatter domain.FrontMatter
}
