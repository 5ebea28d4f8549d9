package diagrams

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pelagia/internal/core/domain"
)

const testSlug = "guide-setupmd-0123abcd"

func TestExtract_NoBlocks(t *testing.T) {
	plan, err := Extract("guide/setup.md", "# Title\n\ntext\n", testSlug, Rules{})
	require.NoError(t, err)

	assert.Empty(t, plan.Blocks)
	assert.Equal(t, "# Title\n\ntext\n", plan.Splice(nil))
}

func TestExtract_Blocks(t *testing.T) {
	text := "intro\n```mermaid\ngraph TD\n  A -->|ok (x)| B\n```\nmiddle\n```Mermaid  \ngraph LR\n  C --> D\n```\nend\n"

	plan, err := Extract("guide/setup.md", text, testSlug, Rules{})
	require.NoError(t, err)
	require.Len(t, plan.Blocks, 2)

	first := plan.Blocks[0]
	assert.Equal(t, 0, first.Ordinal)
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, testSlug, first.DocumentSlug)
	assert.Equal(t, "guide/setup.md", first.DocumentPath)
	assert.Equal(t, "graph TD\n  A -->|ok (x)| B", first.Raw)
	assert.Equal(t, "graph TD\n  A -->|\"ok (x)\"| B\n", first.Source)
	assert.Equal(t, Fingerprint(first.Source), first.Fingerprint)

	second := plan.Blocks[1]
	assert.Equal(t, 1, second.Ordinal)
	assert.Equal(t, 7, second.Line)
	assert.Equal(t, "graph LR\n  C --> D\n", second.Source)
}

func TestExtract_IdenticalBlocksGetDistinctKeys(t *testing.T) {
	text := "```mermaid\ngraph TD\nA-->B\n```\n```mermaid\ngraph TD\nA-->B\n```\n"

	plan, err := Extract("a.md", text, testSlug, Rules{})
	require.NoError(t, err)
	require.Len(t, plan.Blocks, 2)

	assert.Equal(t, plan.Blocks[0].Fingerprint, plan.Blocks[1].Fingerprint)
	assert.NotEqual(t, plan.Blocks[0].Key(), plan.Blocks[1].Key())
}

func TestExtract_SourceIsTrimmed(t *testing.T) {
	text := "```mermaid\n\n  graph TD\n  A-->B  \n\n```\n"

	plan, err := Extract("a.md", text, testSlug, Rules{})
	require.NoError(t, err)
	require.Len(t, plan.Blocks, 1)
	assert.Equal(t, "graph TD\n  A-->B\n", plan.Blocks[0].Source)
}

func TestExtract_FlowDirectionRule(t *testing.T) {
	text := "```mermaid\nflowchart TD\nA-->B\n```\n"

	plan, err := Extract("a.md", text, testSlug, Rules{FlowDirection: "LR"})
	require.NoError(t, err)
	assert.Equal(t, "flowchart LR\nA-->B\n", plan.Blocks[0].Source)
}

func TestExtract_Unterminated(t *testing.T) {
	text := "intro\n\n```mermaid\ngraph TD\nA-->B\n"

	plan, err := Extract("guide/setup.md", text, testSlug, Rules{})
	assert.Nil(t, plan)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnterminatedDiagram)

	var se *domain.StructureError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "guide/setup.md", se.Path)
	assert.Equal(t, 3, se.Line)
}

func TestExtract_MermaidInsideOtherFenceIsContent(t *testing.T) {
	text := "````markdown\n```mermaid\ngraph TD\n```\n````\n"

	plan, err := Extract("a.md", text, testSlug, Rules{})
	require.NoError(t, err)
	assert.Empty(t, plan.Blocks)
	assert.Equal(t, text, plan.Splice(nil))
}

func TestExtract_CodeBlockBeforeDiagram(t *testing.T) {
	text := "```bash\necho hi\n```\n```mermaid\ngraph TD\n```\n"

	plan, err := Extract("a.md", text, testSlug, Rules{})
	require.NoError(t, err)
	assert.Len(t, plan.Blocks, 1)
}

func TestPlan_Splice(t *testing.T) {
	text := "before\n```mermaid\ngraph TD\nA-->B\n```\nbetween\n```mermaid\nbroken\n```\nafter\n"
	plan, err := Extract("a.md", text, testSlug, Rules{})
	require.NoError(t, err)

	outcomes := []domain.RenderOutcome{
		{ArtifactPath: filepath.Join("/tmp", "d", "x.png"), Status: domain.RenderOK},
		{Status: domain.RenderFailed},
	}

	got := plan.Splice(outcomes)
	assert.Equal(t, "before\n![](/tmp/d/x.png)\nbetween\n"+Placeholder+"\nafter\n", got)
}

func TestPlan_SpliceCachedOutcome(t *testing.T) {
	plan, err := Extract("a.md", "```mermaid\ngraph TD\n```\n", testSlug, Rules{})
	require.NoError(t, err)

	got := plan.Splice([]domain.RenderOutcome{{ArtifactPath: "/a/b.png", Status: domain.RenderCached}})
	assert.Equal(t, "![](/a/b.png)\n", got)
}

func TestPlan_SpliceMissingOutcomesUsePlaceholder(t *testing.T) {
	plan, err := Extract("a.md", "```mermaid\ngraph TD\n```\ntail\n", testSlug, Rules{})
	require.NoError(t, err)

	assert.Equal(t, Placeholder+"\ntail\n", plan.Splice(nil))
}

func TestArtifactPaths(t *testing.T) {
	block := domain.DiagramBlock{DocumentSlug: testSlug, Ordinal: 4, Fingerprint: "abcdefabcdef"}

	in, out := ArtifactPaths("/work/diagrams", block)
	assert.Equal(t, filepath.Join("/work/diagrams", "mermaid-"+testSlug+"-4-abcdefabcdef.mmd"), in)
	assert.Equal(t, filepath.Join("/work/diagrams", "mermaid-"+testSlug+"-4-abcdefabcdef.png"), out)
}
