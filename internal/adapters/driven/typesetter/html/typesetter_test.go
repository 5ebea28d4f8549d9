package html

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pelagia/internal/assembler"
	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
)

func typeset(t *testing.T, req driven.TypesetRequest) string {
	t.Helper()
	req.OutputPath = filepath.Join(t.TempDir(), "out.html")
	require.NoError(t, New().Typeset(context.Background(), req))
	data, err := os.ReadFile(req.OutputPath)
	require.NoError(t, err)
	return string(data)
}

func combined(texts ...string) string {
	docs := make([]domain.ProcessedDocument, len(texts))
	for i, text := range texts {
		docs[i] = domain.ProcessedDocument{Text: text}
	}
	return assembler.Assemble(docs)
}

func TestTypesetter_Metadata(t *testing.T) {
	ts := New()
	assert.Equal(t, "html", ts.Format())
	assert.True(t, ts.PersistentArtifacts())
	assert.Empty(t, ts.Requirements())
}

func TestTypeset_HeadingIDsAndTOC(t *testing.T) {
	body := combined(
		"[]{#a-1}\n\n# Intro {#a-1-intro}\n\nSee [b](#b-2-setup).\n",
		"[]{#b-2}\n\n## Setup {#b-2-setup}\n\n#### Deep {#b-2-deep}\n",
	)

	page := typeset(t, driven.TypesetRequest{Body: body, Title: "Guide", TOCDepth: 3})

	assert.Contains(t, page, `<title>Guide</title>`)
	assert.Contains(t, page, `<h1 id="a-1-intro">Intro</h1>`)
	assert.Contains(t, page, `<h2 id="b-2-setup">Setup</h2>`)
	assert.Contains(t, page, `<a href="#b-2-setup">b</a>`)
	assert.Contains(t, page, `<li class="level-1"><a href="#a-1-intro">Intro</a></li>`)
	assert.Contains(t, page, `<li class="level-2"><a href="#b-2-setup">Setup</a></li>`)
	assert.NotContains(t, page, `href="#b-2-deep"`, "level 4 is below the TOC depth")
}

func TestTypeset_DocumentAnchorsAndPageBreaks(t *testing.T) {
	body := combined("[]{#a-1}\n\ntext a\n", "[]{#b-2}\n\ntext b\n")

	page := typeset(t, driven.TypesetRequest{Body: body})

	assert.Contains(t, page, `<a id="a-1"></a>`)
	assert.Contains(t, page, `<a id="b-2"></a>`)
	assert.NotContains(t, page, `\newpage`)
	assert.NotContains(t, page, `[]{#`)
	// One break after the TOC is absent without headings; one between documents.
	assert.Equal(t, 1, strings.Count(page, `<div class="page-break"></div>`))
}

func TestTypeset_FencedCodeIsNotRewritten(t *testing.T) {
	body := "```\n[]{#literal}\n```\n"

	page := typeset(t, driven.TypesetRequest{Body: body})

	assert.Contains(t, page, "[]{#literal}")
	assert.NotContains(t, page, `<a id="literal">`)
}

func TestTypeset_Images(t *testing.T) {
	page := typeset(t, driven.TypesetRequest{Body: "![](out_diagrams/mermaid-x-0-abc.png)\n"})
	assert.Contains(t, page, `<img src="out_diagrams/mermaid-x-0-abc.png" alt="">`)
}

func TestTypeset_EscapesTitle(t *testing.T) {
	page := typeset(t, driven.TypesetRequest{Body: "x\n", Title: "<b>&</b>"})
	assert.Contains(t, page, "&lt;b&gt;&amp;&lt;/b&gt;")
}

func TestTypeset_DefaultTitle(t *testing.T) {
	page := typeset(t, driven.TypesetRequest{Body: "x\n"})
	assert.Contains(t, page, "<title>Document</title>")
	assert.NotContains(t, page, `class="title"`)
}

func TestTypeset_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Typeset(ctx, driven.TypesetRequest{OutputPath: filepath.Join(t.TempDir(), "o.html")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrepare(t *testing.T) {
	got := prepare(combined("[]{#a}\n\nA\n", "B\n"))
	assert.Equal(t, "<a id=\"a\"></a>\n\nA\n\n"+pageBreakHTML+"\nB\n", got)
}
