package diagrams

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/mdscan"
)

// Placeholder replaces a block whose render failed.
const Placeholder = "*[Mermaid diagram could not be rendered - check syntax]*"

var (
	diagramOpen  = regexp.MustCompile("(?i)^```mermaid\\s*$")
	diagramClose = regexp.MustCompile("^```\\s*$")
)

type scanState int

const (
	outside scanState = iota
	inDiagram
	inCode
)

// segment is either a run of plain lines or a reference to a block.
type segment struct {
	lines []string
	block int
}

// Plan is a document with its diagram blocks cut out, ready for splicing.
type Plan struct {
	// Blocks are the extracted diagrams in document order.
	Blocks []domain.DiagramBlock

	segments []segment
}

// Extract scans a document for mermaid blocks. A block that is never
// closed is a structural error for the whole document.
func Extract(relPath, text, slug string, rules Rules) (*Plan, error) {
	plan := &Plan{}
	state := outside
	var fence mdscan.Fence
	var plain, body []string
	openLine := 0

	flushPlain := func() {
		if len(plain) > 0 {
			plan.segments = append(plan.segments, segment{lines: plain, block: -1})
			plain = nil
		}
	}

	for i, line := range mdscan.Lines(text) {
		switch state {
		case outside:
			if diagramOpen.MatchString(line) {
				flushPlain()
				state = inDiagram
				openLine = i + 1
				body = nil
				continue
			}
			if fence.Observe(line) {
				state = inCode
			}
			plain = append(plain, line)

		case inCode:
			fence.Observe(line)
			if !fence.Inside() {
				state = outside
			}
			plain = append(plain, line)

		case inDiagram:
			if !diagramClose.MatchString(line) {
				body = append(body, line)
				continue
			}
			raw := strings.Join(body, "\n")
			src := Repair(strings.TrimSpace(raw)+"\n", rules)
			block := domain.DiagramBlock{
				DocumentSlug: slug,
				DocumentPath: relPath,
				Ordinal:      len(plan.Blocks),
				Line:         openLine,
				Raw:          raw,
				Source:       src,
				Fingerprint:  Fingerprint(src),
			}
			plan.Blocks = append(plan.Blocks, block)
			plan.segments = append(plan.segments, segment{block: block.Ordinal})
			state = outside
		}
	}

	if state == inDiagram {
		return nil, &domain.StructureError{Path: relPath, Line: openLine, Err: domain.ErrUnterminatedDiagram}
	}
	flushPlain()
	return plan, nil
}

// Splice rebuilds the document text. outcomes is indexed by block ordinal;
// a missing or failed outcome yields the placeholder.
func (p *Plan) Splice(outcomes []domain.RenderOutcome) string {
	var lines []string
	for _, seg := range p.segments {
		if seg.block < 0 {
			lines = append(lines, seg.lines...)
			continue
		}
		if seg.block < len(outcomes) && outcomes[seg.block].Succeeded() {
			lines = append(lines, ArtifactRef(outcomes[seg.block].ArtifactPath))
			continue
		}
		lines = append(lines, Placeholder)
	}
	return mdscan.Join(lines)
}

// ArtifactRef is the image reference that replaces a rendered block.
func ArtifactRef(path string) string {
	return fmt.Sprintf("![](%s)", filepath.ToSlash(path))
}

// ArtifactPaths returns the renderer input and output paths for a block.
func ArtifactPaths(dir string, block domain.DiagramBlock) (input, output string) {
	stem := filepath.Join(dir, block.Key())
	return stem + ".mmd", stem + ".png"
}
