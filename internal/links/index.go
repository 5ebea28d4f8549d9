package links

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/slug"
)

// Index maps corpus-relative document paths to slugs and answers
// path lookups with the resolution strategies in order.
// It is built once per run and read-only afterwards.
type Index struct {
	root     string
	rootName string
	slugs    map[string]string
	byName   map[string][]string
}

// NewIndex builds the index for the documents under root.
// relPaths must be slash-separated and relative to root.
func NewIndex(root string, relPaths []string) *Index {
	ix := &Index{
		root:     root,
		rootName: filepath.Base(root),
		slugs:    make(map[string]string, len(relPaths)),
		byName:   make(map[string][]string),
	}
	for _, rel := range relPaths {
		ix.slugs[rel] = slug.FromRelPath(rel)
		name := path.Base(rel)
		ix.byName[name] = append(ix.byName[name], rel)
	}
	return ix
}

// Slug returns the slug of a known document.
func (ix *Index) Slug(rel string) (string, bool) {
	s, ok := ix.slugs[rel]
	return s, ok
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.slugs)
}

// Resolve finds the document a link path refers to. fromAbs is the
// absolute path of the linking document. The first strategy that finds
// a known document wins.
func (ix *Index) Resolve(fromAbs, pathPart string) (string, domain.ResolveStrategy) {
	normalized := strings.ReplaceAll(pathPart, `\`, "/")

	if _, ok := ix.slugs[normalized]; ok {
		return normalized, domain.StrategyExact
	}

	if rel, ok := ix.resolveRelative(fromAbs, pathPart); ok {
		return rel, domain.StrategyRelative
	}

	if trimmed, ok := strings.CutPrefix(normalized, ix.rootName+"/"); ok {
		if _, known := ix.slugs[trimmed]; known {
			return trimmed, domain.StrategyRootPrefixed
		}
	}

	if strings.Contains(normalized, "/") {
		// Ambiguous names resolve to nothing rather than to a guess.
		if matches := ix.byName[path.Base(normalized)]; len(matches) == 1 {
			return matches[0], domain.StrategyFilename
		}
	}

	return "", domain.StrategyNone
}

// resolveRelative interprets pathPart relative to the linking document's directory.
func (ix *Index) resolveRelative(fromAbs, pathPart string) (string, bool) {
	if fromAbs == "" || filepath.IsAbs(pathPart) {
		return "", false
	}
	resolved := filepath.Join(filepath.Dir(fromAbs), filepath.FromSlash(pathPart))
	if real, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = real
	}
	rel, err := slug.RelPath(ix.root, resolved)
	if err != nil {
		return "", false
	}
	if _, ok := ix.slugs[rel]; !ok {
		return "", false
	}
	return rel, true
}
