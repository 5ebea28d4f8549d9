package domain

// SourceDocument is one markdown file discovered under the corpus root.
// It is immutable once read.
type SourceDocument struct {
	// RelPath is the slash-separated path relative to the corpus root.
	// It is the document's identity.
	RelPath string

	// AbsPath is the resolved absolute path on disk.
	AbsPath string

	// Content is the raw text as read from disk.
	Content string
}

// Corpus is the ordered set of documents for one run.
type Corpus struct {
	// Root is the resolved absolute corpus directory.
	Root string

	// Documents are in discovery order, rotated to begin at the start file.
	Documents []SourceDocument
}

// RelPaths returns the relative paths of all documents in corpus order.
func (c *Corpus) RelPaths() []string {
	paths := make([]string, len(c.Documents))
	for i := range c.Documents {
		paths[i] = c.Documents[i].RelPath
	}
	return paths
}

// FrontMatter holds the metadata block stripped from the top of a document.
type FrontMatter struct {
	// Title is the front-matter title, if any.
	Title string

	// Raw contains every key found in the block.
	Raw map[string]any
}

// ProcessedDocument is a document after all rewriting stages.
type ProcessedDocument struct {
	Source SourceDocument
	Slug   string
	Title  string
	Text   string
}
