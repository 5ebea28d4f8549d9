// Package html typesets the combined markdown into a single HTML page with
// a generated table of contents. It needs no external binaries.
package html

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	rhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/pelagia/internal/assembler"
	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
	"github.com/custodia-labs/pelagia/internal/mdscan"
)

// Ensure Typesetter implements the interface.
var _ driven.Typesetter = (*Typesetter)(nil)

// DefaultTOCDepth is used when the request does not set one.
const DefaultTOCDepth = 3

const pageBreakHTML = `<div class="page-break"></div>`

// spanAnchor matches the empty bracketed span that marks a document start.
var spanAnchor = regexp.MustCompile(`\[\]\{#([^}\s]+)\}`)

// Typesetter renders markdown with goldmark.
type Typesetter struct {
	md goldmark.Markdown
}

// New creates an HTML typesetter with GFM extensions, heading attributes
// and raw HTML pass-through enabled.
func New() *Typesetter {
	return &Typesetter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAttribute()),
			goldmark.WithRendererOptions(rhtml.WithUnsafe()),
		),
	}
}

// Format returns "html".
func (t *Typesetter) Format() string { return "html" }

// PersistentArtifacts is true: the page links to diagram images on disk.
func (t *Typesetter) PersistentArtifacts() bool { return true }

// Requirements is empty.
func (t *Typesetter) Requirements() []domain.ToolRequirement { return nil }

// TOCEntry is one heading listed in the table of contents.
type TOCEntry struct {
	Level int
	ID    string
	Title string
}

// Typeset renders req.Body and writes the page to req.OutputPath.
func (t *Typesetter) Typeset(ctx context.Context, req driven.TypesetRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src := []byte(prepare(req.Body))
	doc := t.md.Parser().Parse(text.NewReader(src))

	depth := req.TOCDepth
	if depth <= 0 {
		depth = DefaultTOCDepth
	}
	toc := collectTOC(doc, src, depth)

	var body bytes.Buffer
	if err := t.md.Renderer().Render(&body, src, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, pageData{
		Title: req.Title,
		TOC:   toc,
		Body:  template.HTML(body.String()), //nolint:gosec // rendered from the corpus, which is trusted input
	})
	if err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}

	if err := os.WriteFile(req.OutputPath, page.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", req.OutputPath, err)
	}
	return nil
}

// prepare turns the pandoc-specific constructs of the combined body into
// their HTML equivalents: page breaks become divs and document anchors
// become empty named anchors. Fenced code is left untouched.
func prepare(body string) string {
	docs := assembler.Split(body)
	for i, doc := range docs {
		docs[i] = replaceSpanAnchors(doc)
	}
	return strings.Join(docs, "\n"+pageBreakHTML+"\n")
}

func replaceSpanAnchors(doc string) string {
	lines := mdscan.Lines(doc)
	var fence mdscan.Fence
	for i, line := range lines {
		if fence.Observe(line) {
			continue
		}
		lines[i] = spanAnchor.ReplaceAllString(line, `<a id="$1"></a>`)
	}
	if len(lines) == 0 {
		return doc
	}
	return mdscan.Join(lines)
}

// collectTOC walks the document for headings up to maxLevel that carry an id.
func collectTOC(doc ast.Node, src []byte, maxLevel int) []TOCEntry {
	var toc []TOCEntry
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if heading.Level <= maxLevel {
			if id, ok := heading.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					toc = append(toc, TOCEntry{
						Level: heading.Level,
						ID:    string(b),
						Title: string(heading.Text(src)), //nolint:staticcheck // plain text is all the TOC needs
					})
				}
			}
		}
		return ast.WalkSkipChildren, nil
	})
	return toc
}

type pageData struct {
	Title string
	TOC   []TOCEntry
	Body  template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .Title}}{{.Title}}{{else}}Document{{end}}</title>
<style>
body { max-width: 50rem; margin: 2rem auto; padding: 0 1rem; font-family: sans-serif; line-height: 1.5; }
a { color: blue; }
img { max-width: 100%; }
nav.toc ul { list-style: none; padding-left: 0; }
nav.toc li.level-2 { padding-left: 1.5rem; }
nav.toc li.level-3 { padding-left: 3rem; }
nav.toc li.level-4 { padding-left: 4.5rem; }
nav.toc li.level-5 { padding-left: 6rem; }
nav.toc li.level-6 { padding-left: 7.5rem; }
.page-break { break-after: page; border-top: 1px solid #ccc; margin: 3rem 0; }
</style>
</head>
<body>
{{if .Title}}<h1 class="title">{{.Title}}</h1>
{{end}}{{if .TOC}}<nav class="toc">
<ul>
{{range .TOC}}<li class="level-{{.Level}}"><a href="#{{.ID}}">{{.Title}}</a></li>
{{end}}</ul>
</nav>
<div class="page-break"></div>
{{end}}<main>
{{.Body}}</main>
</body>
</html>
`))
