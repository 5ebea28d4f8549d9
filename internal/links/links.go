// Package links rewrites local markdown links into anchor links.
//
// Only links whose path ends in a markdown extension are candidates.
// URLs, mailto links and same-document fragments are never touched, and a
// link that no strategy resolves is emitted exactly as written.
package links

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/mdscan"
	"github.com/custodia-labs/pelagia/internal/slug"
)

var (
	linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	urlPattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+\-.]*://`)
)

// markdownExts are the extensions that make a link a cross-document candidate.
var markdownExts = []string{".md", ".markdown"}

// Options tunes fragment handling.
type Options struct {
	// Anchors holds the ids issued in each document. When nil, fragment
	// aliases are not checked.
	Anchors domain.DocumentAnchors

	// StrictFragments falls back to the whole-document anchor when a
	// fragment alias matches no issued id.
	StrictFragments bool
}

// Resolver rewrites links for one run.
type Resolver struct {
	index *Index
	opts  Options
}

// NewResolver creates a resolver over index.
func NewResolver(index *Index, opts Options) *Resolver {
	return &Resolver{index: index, opts: opts}
}

// Rewrite rewrites every candidate link in text, which belongs to doc.
// Links inside fenced code are left alone. It returns the new text and one
// edge per candidate link, resolved or not.
func (r *Resolver) Rewrite(text string, doc domain.SourceDocument) (string, []domain.LinkEdge) {
	if text == "" {
		return "", nil
	}
	var (
		out   []string
		prose []string
		fence mdscan.Fence
		edges []domain.LinkEdge
	)

	flush := func() {
		if len(prose) == 0 {
			return
		}
		block := strings.Join(prose, "\n")
		block = linkPattern.ReplaceAllStringFunc(block, func(match string) string {
			rewritten, edge, candidate := r.rewriteLink(match, doc)
			if candidate {
				edges = append(edges, edge)
			}
			return rewritten
		})
		out = append(out, block)
		prose = nil
	}

	for _, line := range mdscan.Lines(text) {
		if fence.Observe(line) {
			flush()
			out = append(out, line)
			continue
		}
		prose = append(prose, line)
	}
	flush()

	return mdscan.Join(out), edges
}

// rewriteLink handles one [label](target) match. candidate is false for
// links that never enter resolution.
func (r *Resolver) rewriteLink(match string, doc domain.SourceDocument) (string, domain.LinkEdge, bool) {
	m := linkPattern.FindStringSubmatch(match)
	label := m[1]
	target := strings.TrimSpace(m[2])

	if IsExternal(target) {
		return match, domain.LinkEdge{}, false
	}

	pathPart, fragment, _ := strings.Cut(target, "#")
	pathPart = strings.TrimSpace(pathPart)
	if pathPart == "" || strings.HasPrefix(pathPart, "#") || !hasMarkdownExt(pathPart) {
		return match, domain.LinkEdge{}, false
	}

	edge := domain.LinkEdge{
		Source:   doc.RelPath,
		Label:    label,
		Target:   target,
		Fragment: fragment,
	}

	dest, strategy := r.index.Resolve(doc.AbsPath, pathPart)
	if strategy == domain.StrategyNone {
		return match, edge, true
	}
	destSlug, _ := r.index.Slug(dest)
	edge.Destination = dest
	edge.Strategy = strategy
	edge.AnchorID = r.anchorFor(dest, destSlug, fragment, &edge)

	return "[" + label + "](#" + edge.AnchorID + ")", edge, true
}

// anchorFor picks the anchor id for a link resolved to the document at
// dest. Without a fragment the link targets the document anchor; with one
// it targets the fragment alias, subject to the strictness option. Only ids
// issued in dest itself count as matches.
func (r *Resolver) anchorFor(dest, destSlug, fragment string, edge *domain.LinkEdge) string {
	if fragment == "" {
		return destSlug
	}
	alias := destSlug + "-" + slug.Slugify(fragment)
	if r.opts.Anchors == nil || r.opts.Anchors.Has(dest, alias) {
		return alias
	}
	if !r.opts.StrictFragments {
		edge.Dangling = true
		return alias
	}
	// An author-supplied {#id} is addressed by its literal name.
	if r.opts.Anchors.Has(dest, fragment) {
		return fragment
	}
	edge.Dangling = true
	return destSlug
}

// IsExternal reports whether target is an absolute URL or mailto link.
func IsExternal(target string) bool {
	return urlPattern.MatchString(target) || strings.HasPrefix(target, "mailto:")
}

func hasMarkdownExt(p string) bool {
	lower := strings.ToLower(p)
	for _, ext := range markdownExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
