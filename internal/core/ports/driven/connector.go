package driven

import (
	"context"

	"github.com/custodia-labs/pelagia/internal/core/domain"
)

// CorpusLoader discovers and reads the documents of a corpus.
type CorpusLoader interface {
	// Load discovers every markdown file under root, orders them by
	// case-folded relative path and rotates the order to begin at start.
	// start is relative to root unless absolute.
	Load(ctx context.Context, root, start string) (*domain.Corpus, error)
}

// Watcher reports changes to markdown files under a corpus root.
type Watcher interface {
	// Watch emits changes until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context, root string) (<-chan domain.Change, error)
}
