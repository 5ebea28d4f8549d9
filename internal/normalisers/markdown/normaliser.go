// Package markdown strips front matter from markdown documents and
// derives a display title for each.
package markdown

import (
	"context"
	"path"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
	"github.com/custodia-labs/pelagia/internal/mdscan"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles markdown documents.
type Normaliser struct{}

// New creates a new markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise strips a leading YAML, TOML or JSON front-matter block.
// A block that fails to parse is left in the text, so a document that
// merely opens with a horizontal rule is not mangled.
func (n *Normaliser) Normalise(ctx context.Context, doc domain.SourceDocument) (*driven.NormaliseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, meta := splitFrontMatter(doc.Content)

	fm := domain.FrontMatter{Raw: meta}
	if t, ok := meta["title"].(string); ok {
		fm.Title = strings.TrimSpace(t)
	}

	title := fm.Title
	if title == "" {
		title = extractMarkdownTitle(body, doc.RelPath)
	}

	return &driven.NormaliseResult{
		Body:        body,
		Title:       title,
		FrontMatter: fm,
	}, nil
}

func splitFrontMatter(content string) (string, map[string]any) {
	var meta map[string]any
	rest, err := frontmatter.Parse(strings.NewReader(content), &meta)
	if err != nil {
		return content, nil
	}
	if meta == nil {
		// No block: the library hands back the input unchanged.
		return content, nil
	}
	return string(rest), meta
}

// extractMarkdownTitle returns the first level-one heading outside fenced
// code, falling back to the file name with separators turned into spaces.
func extractMarkdownTitle(content, relPath string) string {
	var fence mdscan.Fence
	for _, line := range mdscan.Lines(content) {
		if fence.Observe(line) {
			continue
		}
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := path.Base(relPath)
	if ext := path.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
