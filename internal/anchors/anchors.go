// Package anchors assigns corpus-unique ids to markdown headings.
//
// Each document gets a zero-width anchor carrying its slug at the very top,
// and every ATX heading outside fenced code gets an id derived from the slug
// and the heading text. Headings that already carry an explicit {#id} are
// left as written.
package anchors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/mdscan"
	"github.com/custodia-labs/pelagia/internal/slug"
)

// explicitMarker in a heading title suppresses automatic id assignment.
const explicitMarker = "{#"

var (
	headingPattern    = regexp.MustCompile(`^(#{1,6})[` + slug.Space + `]+(.+?)[` + slug.Space + `]*$`)
	explicitIDPattern = regexp.MustCompile(`\{#([^}` + slug.Space + `]+)`)
)

// Marker returns the zero-width anchor for id.
func Marker(id string) string {
	return "[]{#" + id + "}"
}

// Result is a rewritten document and the anchors issued for it.
type Result struct {
	Text    string
	Anchors []domain.HeadingAnchor
}

// IDs returns the ids of every anchor in the result, the document anchor first.
func (r Result) IDs(documentSlug string) []string {
	ids := make([]string, 0, len(r.Anchors)+1)
	ids = append(ids, documentSlug)
	for _, a := range r.Anchors {
		if a.ID != "" {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Rewrite annotates every heading in text with an id and prepends the
// document anchor.
func Rewrite(text, documentSlug string) Result {
	lines := mdscan.Lines(text)
	counter := newCounter(documentSlug)

	// Author-supplied ids are reserved up front so generated ids never take them.
	forEachHeading(lines, func(_ int, _ string, title string) {
		if m := explicitIDPattern.FindStringSubmatch(title); m != nil {
			counter.reserve(m[1])
		}
	})

	out := make([]string, 0, len(lines)+2)
	out = append(out, Marker(documentSlug), "")

	var anchors []domain.HeadingAnchor
	rewritten := make(map[int]string)
	forEachHeading(lines, func(i int, hashes, title string) {
		anchor := domain.HeadingAnchor{
			DocumentSlug: documentSlug,
			Level:        len(hashes),
		}
		if strings.Contains(title, explicitMarker) {
			anchor.Explicit = true
			anchor.Title = strings.TrimSpace(explicitIDPattern.Split(title, 2)[0])
			if m := explicitIDPattern.FindStringSubmatch(title); m != nil {
				anchor.ID = m[1]
			}
			anchors = append(anchors, anchor)
			return
		}
		clean := strings.TrimSpace(title)
		anchor.Title = clean
		anchor.ID = counter.next(documentSlug + "-" + slug.Slugify(clean))
		anchors = append(anchors, anchor)
		rewritten[i] = fmt.Sprintf("%s %s {#%s}", hashes, clean, anchor.ID)
	})

	for i, line := range lines {
		if r, ok := rewritten[i]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, line)
	}
	return Result{Text: mdscan.Join(out), Anchors: anchors}
}

// forEachHeading calls fn for every heading line outside fenced code.
func forEachHeading(lines []string, fn func(index int, hashes, title string)) {
	var fence mdscan.Fence
	for i, line := range lines {
		if fence.Observe(line) {
			continue
		}
		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fn(i, m[1], m[2])
	}
}

// counter issues per-document ids. The first use of a base id yields the
// base itself, later uses append -2, -3, ... skipping ids already taken.
type counter struct {
	counts map[string]int
	issued map[string]struct{}
}

func newCounter(documentSlug string) *counter {
	c := &counter{
		counts: make(map[string]int),
		issued: make(map[string]struct{}),
	}
	c.reserve(documentSlug)
	return c
}

func (c *counter) reserve(id string) {
	c.issued[id] = struct{}{}
}

func (c *counter) next(base string) string {
	n := c.counts[base] + 1
	id := candidate(base, n)
	for {
		if _, taken := c.issued[id]; !taken {
			break
		}
		n++
		id = candidate(base, n)
	}
	c.counts[base] = n
	c.reserve(id)
	return id
}

func candidate(base string, n int) string {
	if n == 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
